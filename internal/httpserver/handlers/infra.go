package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkdash/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Count      *int   `json:"count,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		components := map[string]componentStatus{
			"storage":  checkStorage(r.Context(), d),
			"cache":    checkCache(r.Context(), d),
			"sessions": sessionStatus(d),
		}

		response := infraResponse{
			Mode:       determineMode(components),
			Components: components,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func determineMode(components map[string]componentStatus) string {
	// Primary storage down: edits only live in memory.
	if storage, exists := components["storage"]; exists && !storage.OK {
		return "critical"
	}

	// Cache down: reads still work, but there is no fallback when storage fails.
	if cache, exists := components["cache"]; exists && !cache.OK {
		return "degraded"
	}

	return "optimal"
}

func checkStorage(ctx context.Context, d deps.Deps) componentStatus {
	if d.StoragePing == nil {
		return componentStatus{OK: true, Mode: d.StorageName}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.StoragePing(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.StorageName,
			Impact: "changes-not-persisted",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true, Mode: d.StorageName}
}

func checkCache(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     true,
			Mode:   "memory",
			Impact: "fallback-lost-on-restart",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "redis",
			Impact: "no-read-fallback",
			Error:  "timeout",
		}
	}

	return componentStatus{OK: true, Mode: "redis"}
}

func sessionStatus(d deps.Deps) componentStatus {
	if d.Sessions == nil {
		return componentStatus{OK: false, Error: "not initialized"}
	}

	count := d.Sessions.Count()
	latest := time.Time{}
	for _, s := range d.Sessions.Sessions() {
		if last := s.Store.LastRebuild(); last.After(latest) {
			latest = last
		}
	}
	lastReload := "never"
	if !latest.IsZero() {
		lastReload = latest.Format("2006-01-02 15:04:05")
	}

	return componentStatus{
		OK:         true,
		Count:      &count,
		LastReload: lastReload,
	}
}
