package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkdash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
)

type readyzResponse struct {
	Ready   bool   `json:"ready"`
	Storage string `json:"storage,omitempty"`
}

// Readyz reports whether the primary storage adapter answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		status := http.StatusOK
		ready := true
		if d.StoragePing != nil {
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			defer cancel()
			if err := d.StoragePing(ctx); err != nil {
				d.Logger.Warn("storage not ready",
					logger.String("storage", d.StorageName),
					logger.Error(err))
				status = http.StatusServiceUnavailable
				ready = false
			}
		}

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(readyzResponse{
			Ready:   ready,
			Storage: d.StorageName,
		})
	}
}
