package core

import "context"

type contextKey string

const ctxKeySessionID contextKey = "dashboard_session"

// ContextWithSessionID tags ctx with the dashboard session it acts on.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeySessionID, id)
}

// SessionIDFromContext returns the session id set by ContextWithSessionID.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySessionID).(string); ok {
		return v
	}
	return ""
}
