package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkdash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdash/internal/httpserver/mw"
)

// api returns the middlewares shared by every /api route: host check, then
// identity resolution.
func api(r chi.Router, d deps.Deps) chi.Router {
	return r.With(
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.Identity(d.Resolver, d.Sessions, d.Logger),
	)
}
