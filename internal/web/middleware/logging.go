// Package middleware provides HTTP middleware for the dashboard server.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/agrimap/internal/logging"
)

type accessKey struct{}

// accessEntry collects fields set by handlers further down the chain.
type accessEntry struct {
	sessionID string
}

// SetSessionID adds the session id to the access log line of the request
// carrying ctx. It is a no-op outside Logger.
func SetSessionID(ctx context.Context, id string) {
	if e, ok := ctx.Value(accessKey{}).(*accessEntry); ok {
		e.sessionID = id
	}
}

// Logger logs one structured line per request with its status and duration.
// The entry carries the chi request id and the session id, when the session
// middleware reported one. Static assets and health checks log at debug.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		entry := &accessEntry{}
		r = r.WithContext(context.WithValue(r.Context(), accessKey{}, entry))
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		level := slog.LevelInfo
		switch {
		case ww.status >= http.StatusInternalServerError:
			level = slog.LevelError
		case isQuiet(r.URL.Path):
			level = slog.LevelDebug
		}

		logger := logging.FromContext(r.Context())
		if entry.sessionID != "" {
			logger = logger.With("session_id", entry.sessionID)
		}
		logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"bytes", ww.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)
	})
}

func isQuiet(path string) bool {
	return path == "/healthz" || strings.HasPrefix(path, "/static/")
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Unwrap provides access to the underlying ResponseWriter for
// http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
