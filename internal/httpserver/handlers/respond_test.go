package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &domain.ValidationError{Message: "Name is required."}, http.StatusBadRequest},
		{"format", &domain.FormatError{}, http.StatusBadRequest},
		{"not permitted", domain.ErrNotPermitted, http.StatusForbidden},
		{"wrapped not permitted", fmt.Errorf("save: %w", domain.ErrNotPermitted), http.StatusForbidden},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"cross collection", domain.ErrCrossCollectionMove, http.StatusConflict},
		{"persistence", &domain.PersistenceError{Op: "write", Key: "global", Err: errors.New("boom")}, http.StatusBadGateway},
		{"joined persistence", errors.Join(&domain.PersistenceError{Op: "write", Key: "users/a", Err: errors.New("x")}), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
