package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkdash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdash/internal/httpserver/handlers"
)

func init() { Register("order", registerOrder) }

func registerOrder(r chi.Router, d deps.Deps) {
	a := api(r, d)
	a.Get("/api/order", handlers.OrderState(d))
	a.Post("/api/order/move", handlers.MoveLink(d))
	a.Post("/api/order/save", handlers.SaveOrder(d))
}
