package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
	"github.com/MrSnakeDoc/linkdash/internal/httpserver/mw"
	"github.com/MrSnakeDoc/linkdash/internal/linkstore"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
	"github.com/MrSnakeDoc/linkdash/internal/session"
)

// linkResponse is a link as seen by the caller, with its ownership and
// whether they may edit it.
type linkResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Group       string    `json:"group"`
	Description string    `json:"description"`
	OpenInFrame bool      `json:"open_in_frame"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Layer       string    `json:"layer"`
	Owner       string    `json:"owner,omitempty"`
	CanEdit     bool      `json:"can_edit"`
}

func toResponse(store *linkstore.Store, l domain.Link) linkResponse {
	return linkResponse{
		ID:          l.ID,
		Name:        l.Name,
		URL:         l.URL,
		Group:       l.Group,
		Description: l.Description,
		OpenInFrame: l.OpenInFrame,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
		Layer:       string(l.Layer),
		Owner:       l.Owner,
		CanEdit:     store.CanEdit(l),
	}
}

type errorResponse struct {
	Error   string        `json:"error,omitempty"`
	Warning string        `json:"warning,omitempty"`
	Link    *linkResponse `json:"link,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps store errors to HTTP statuses.
func statusFor(err error) int {
	var (
		verr *domain.ValidationError
		ferr *domain.FormatError
		perr *domain.PersistenceError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &ferr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotPermitted):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCrossCollectionMove):
		return http.StatusConflict
	case errors.As(err, &perr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err. Persistence failures are warnings: the change is
// kept in memory, so link (when given) is still returned.
func writeError(w http.ResponseWriter, log logger.Logger, err error, link *linkResponse) {
	status := statusFor(err)
	switch status {
	case http.StatusBadGateway:
		writeJSON(w, status, errorResponse{Warning: err.Error(), Link: link})
	case http.StatusInternalServerError:
		log.Error("request failed", logger.Error(err))
		writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
	default:
		writeJSON(w, status, errorResponse{Error: err.Error()})
	}
}

// sessionOrFail returns the request session; routes without the Identity
// middleware get a 500.
func sessionOrFail(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := mw.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "no session"})
		return nil, false
	}
	return s, true
}
