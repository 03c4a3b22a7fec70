package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkdash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdash/internal/httpserver/handlers"
)

func init() { Register("links", registerLinks) }

func registerLinks(r chi.Router, d deps.Deps) {
	a := api(r, d)
	a.Get("/api/links", handlers.ListLinks(d))
	a.Post("/api/links", handlers.CreateLink(d))
	a.Put("/api/links/{id}", handlers.UpdateLink(d))
	a.Delete("/api/links/{id}", handlers.DeleteLink(d))
	a.Post("/api/links/{id}/duplicate", handlers.DuplicateLink(d))
	a.Get("/api/groups", handlers.Groups(d))
}
