package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
	"github.com/MrSnakeDoc/linkdash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
)

const maxImportBytes = 8 << 20

type importResponse struct {
	Imported bool `json:"imported"`
	Links    int  `json:"links"`
}

// Import replaces collections from an uploaded JSON bundle. Administrators only.
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		if !s.Oracle.IsAdministrator() {
			writeError(w, d.Logger, domain.ErrNotPermitted, nil)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "import too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		bundle, err := s.Store.ParseBundle(body)
		if err != nil {
			writeError(w, d.Logger, err, nil)
			return
		}

		count := len(bundle.Global)
		for _, links := range bundle.Personal {
			count += len(links)
		}

		if err := s.Store.ImportBundle(r.Context(), bundle); err != nil {
			writeError(w, d.Logger, err, nil)
			return
		}

		d.Logger.Info("import applied",
			logger.String("user", s.Username),
			logger.Int("links", count))
		writeJSON(w, http.StatusOK, importResponse{Imported: true, Links: count})
	}
}

// Export downloads every collection visible to the caller.
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="linkdash.json"`)
		writeJSON(w, http.StatusOK, s.Store.Export())
	}
}
