package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
	"github.com/MrSnakeDoc/linkdash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdash/internal/linkstore"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
)

const maxDraftBytes = 64 << 10

type draftRequest struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Group       string `json:"group"`
	Description string `json:"description"`
	OpenInFrame bool   `json:"open_in_frame"`
	Layer       string `json:"layer"` // "global" is honoured for administrators only
}

func (req draftRequest) link() domain.Link {
	return domain.Link{
		Name:        req.Name,
		URL:         req.URL,
		Group:       req.Group,
		Description: req.Description,
		OpenInFrame: req.OpenInFrame,
		Layer:       domain.Layer(req.Layer),
	}
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (draftRequest, bool) {
	var req draftRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDraftBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return req, false
	}
	return req, true
}

// ListLinks returns the filtered merged view (?q=&group=).
func ListLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		links := s.Store.Filter(linkstore.Query{
			Text:  r.URL.Query().Get("q"),
			Group: r.URL.Query().Get("group"),
		})
		out := make([]linkResponse, 0, len(links))
		for _, l := range links {
			out = append(out, toResponse(s.Store, l))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// Groups returns the group picker values.
func Groups(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, s.Store.Groups())
	}
}

// CreateLink adds a link.
func CreateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		req, ok := decodeDraft(w, r)
		if !ok {
			return
		}

		created, err := s.Store.Upsert(r.Context(), req.link(), nil)
		if err != nil {
			respondAfterWrite(w, d, s.Store, created, err)
			return
		}

		d.Logger.Info("link created",
			logger.String("user", s.Username),
			logger.String("id", created.ID),
			logger.String("layer", string(created.Layer)))
		writeJSON(w, http.StatusCreated, toResponse(s.Store, created))
	}
}

// UpdateLink replaces the link {id}, possibly moving it to another layer.
func UpdateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		previous, found := s.Store.Find(chi.URLParam(r, "id"))
		if !found {
			writeError(w, d.Logger, domain.ErrNotFound, nil)
			return
		}
		req, ok := decodeDraft(w, r)
		if !ok {
			return
		}

		updated, err := s.Store.Upsert(r.Context(), req.link(), &previous)
		if err != nil {
			respondAfterWrite(w, d, s.Store, updated, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(s.Store, updated))
	}
}

// DuplicateLink clones the link {id}.
func DuplicateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		source, found := s.Store.Find(chi.URLParam(r, "id"))
		if !found {
			writeError(w, d.Logger, domain.ErrNotFound, nil)
			return
		}

		clone, err := s.Store.Duplicate(r.Context(), source)
		if err != nil {
			respondAfterWrite(w, d, s.Store, clone, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(s.Store, clone))
	}
}

// DeleteLink removes the link {id}.
func DeleteLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		link, found := s.Store.Find(chi.URLParam(r, "id"))
		if !found {
			writeError(w, d.Logger, domain.ErrNotFound, nil)
			return
		}

		if err := s.Store.Remove(r.Context(), link); err != nil {
			writeError(w, d.Logger, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// respondAfterWrite reports a failed mutation. When only the write failed the
// record exists in memory and is returned with the warning.
func respondAfterWrite(w http.ResponseWriter, d deps.Deps, store *linkstore.Store, l domain.Link, err error) {
	if statusFor(err) == http.StatusBadGateway && l.ID != "" {
		resp := toResponse(store, l)
		writeError(w, d.Logger, err, &resp)
		return
	}
	writeError(w, d.Logger, err, nil)
}
