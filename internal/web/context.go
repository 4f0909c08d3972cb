package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/agrimap/internal/core"
)

type contextKey string

const ctxKeySession contextKey = "session"

// withSession stores sess in the request context, along with its id for
// request-scoped logging.
func withSession(r *http.Request, sess *Session) *http.Request {
	ctx := context.WithValue(r.Context(), ctxKeySession, sess)
	ctx = core.ContextWithSessionID(ctx, sess.ID)
	return r.WithContext(ctx)
}

// sessionFrom returns the session attached by the session middleware.
func sessionFrom(ctx context.Context) *Session {
	sess, _ := ctx.Value(ctxKeySession).(*Session)
	return sess
}
