package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkdash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdash/internal/version"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Storage       string  `json:"storage,omitempty"`
	Sessions      int     `json:"sessions"`
	version.Info
}

// Healthz reports liveness and build metadata. It never touches storage.
func Healthz(d deps.Deps) http.HandlerFunc {
	now := d.TimeNow
	if now == nil {
		now = time.Now
	}
	info := version.Info{
		Version:   d.Version,
		Commit:    d.Commit,
		BuildDate: d.BuildDate,
		GoVersion: d.GoVersion,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		sessions := 0
		if d.Sessions != nil {
			sessions = d.Sessions.Count()
		}
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: now().Sub(d.StartTime).Seconds(),
			Storage:       d.StorageName,
			Sessions:      sessions,
			Info:          info,
		})
	}
}
