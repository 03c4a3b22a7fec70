package mw

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/linkdash/internal/logger"
)

// statusWriter captures status code and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// userSlot is filled by Identity so the access log, which wraps it, can name
// the caller.
type userSlot struct {
	name string
}

type userSlotKey struct{}

func recordUser(ctx context.Context, username string) {
	if slot, ok := ctx.Value(userSlotKey{}).(*userSlot); ok {
		slot.name = username
	}
}

// Log returns a middleware that logs one line per HTTP request. Server errors
// log at error level, client errors at warn.
func Log(loggerClient logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w}
			slot := &userSlot{}

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), userSlotKey{}, slot)))

			status := ww.status
			if status == 0 {
				status = http.StatusOK
			}

			log := loggerClient.Info
			switch {
			case status >= 500:
				log = loggerClient.Error
			case status >= 400:
				log = loggerClient.Warn
			}

			log("http_request",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", status),
				logger.Int("bytes", ww.bytes),
				logger.Duration("duration", time.Since(start)),
				logger.String("user", slot.name),
				logger.String("remote_ip", r.RemoteAddr),
				logger.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
