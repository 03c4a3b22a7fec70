package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkdash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
)

type reloadResponse struct {
	Reloaded bool `json:"reloaded"`
	Links    int  `json:"links"`
}

// Reload re-reads the caller's collections from storage, dropping unsaved
// changes.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		if dirty := s.Store.Dirty(); dirty.Any() {
			d.Logger.Warn("reload discards unsaved changes",
				logger.String("user", s.Username),
				logger.Bool("global", dirty.Global),
				logger.Strings("personal", dirty.Personal))
		}

		s.Store.LoadAll(r.Context())
		d.Logger.Info("manual reload triggered via endpoint",
			logger.String("user", s.Username),
			logger.String("remote_ip", r.RemoteAddr))

		writeJSON(w, http.StatusOK, reloadResponse{Reloaded: true, Links: len(s.Store.All())})
	}
}
