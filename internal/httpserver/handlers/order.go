package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/linkdash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
)

type moveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// MoveLink reorders within one collection; nothing is saved until SaveOrder.
func MoveLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		var req moveRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDraftBytes)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		if err := s.Store.Move(req.From, req.To); err != nil {
			writeError(w, d.Logger, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, s.Store.Dirty())
	}
}

// SaveOrder writes every collection with unsaved changes.
func SaveOrder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		if err := s.Store.SaveOrder(r.Context()); err != nil {
			d.Logger.Warn("order not fully saved",
				logger.String("user", s.Username),
				logger.Error(err))
			writeError(w, d.Logger, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, s.Store.Dirty())
	}
}

// OrderState reports which collections have unsaved changes.
func OrderState(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, s.Store.Dirty())
	}
}
