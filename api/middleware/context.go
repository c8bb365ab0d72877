package middleware

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/session"
)

type contextKey string

const (
	ctxSession contextKey = "session"
	ctxUserID  contextKey = "user_id"
	ctxIsAuth  contextKey = "is_auth"
	ctxIsAdmin contextKey = "is_admin"
)

// SessionFromContext returns the request's session, nil when the session
// middleware did not run.
func SessionFromContext(ctx context.Context) *session.Session {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxSession).(*session.Session); ok {
		return v
	}
	return nil
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(ctxIsAuth).(bool)
	return v
}

func IsAdmin(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(ctxIsAdmin).(bool)
	return v
}

// WithSession injects the session into the context.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, sess)
}

// WithAuthStatus injects the authenticated user's identity flags.
func WithAuthStatus(ctx context.Context, uid string, isAdmin bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, uid)
	ctx = context.WithValue(ctx, ctxIsAuth, true)
	return context.WithValue(ctx, ctxIsAdmin, isAdmin)
}
