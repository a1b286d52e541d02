package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var sessionCtxKey = &contextKey{"session"}

type contextKey struct {
	name string
}

// WithSessionContext sets the Session in the given context
func WithSessionContext(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, session)
}

// SessionFromContext finds the session from the context.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(*Session)
	if !ok || raw == nil {
		return nil, false
	}
	return raw, true
}

// RouterSession extracts the session the guard middleware stored for the
// current request.
func RouterSession(c router.Context) (*Session, bool) {
	raw := c.Locals(SessionLocalsKey)
	if raw == nil {
		return nil, false
	}
	session, ok := raw.(*Session)
	if !ok || session == nil {
		return nil, false
	}
	return session, true
}

// HasRole reports whether the context carries a session with the role.
func HasRole(ctx context.Context, role Role) bool {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return false
	}
	return session.Role == role
}
