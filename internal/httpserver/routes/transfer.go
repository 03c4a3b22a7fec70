package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkdash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdash/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkdash/internal/httpserver/mw"
)

func init() { Register("transfer", registerTransfer) }

func registerTransfer(r chi.Router, d deps.Deps) {
	a := api(r, d)
	a.Get("/api/export", handlers.Export(d))

	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.ImportBurst,
		RefillPerMin: d.ImportPerMin,
		TrustProxy:   d.TrustProxy,
	})
	a.With(limit).Post("/api/import", handlers.Import(d))
}
