package mw

import (
	"context"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/linkdash/internal/identity"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
	"github.com/MrSnakeDoc/linkdash/internal/session"
)

type sessionKey struct{}

// Identity resolves the caller and attaches their session to the request
// context. Requests without a usable identity get 401.
func Identity(resolver identity.Resolver, sessions *session.Manager, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := resolver.Resolve(r)
			if err != nil {
				if !errors.Is(err, identity.ErrNoIdentity) {
					log.Debug("identity rejected", logger.Error(err))
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="linkdash"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			recordUser(r.Context(), id.Username)

			s, err := sessions.Acquire(r.Context(), id.Username, id.Admin)
			if err != nil {
				log.Debug("session refused",
					logger.String("user", id.Username),
					logger.Error(err))
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session attached by Identity.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*session.Session)
	return s, ok
}
