package auth

import (
	"net/http"
	"time"

	"github.com/goliatone/go-router"
)

// SessionLocalsKey is where the guard middleware exposes the active session
// to downstream handlers and templates.
var SessionLocalsKey = "portal_session"

const defaultRejectedRouteKey = "rejected_route"

// RouteGuard wires the access guard into HTTP routing: every protected
// area declares the single role it requires, denied visitors are sent to
// the login entry point with the rejected route remembered in a cookie.
type RouteGuard struct {
	store       *SessionStore
	rejectedKey string
	Logger      Logger
}

type RouteGuardOption func(*RouteGuard)

// WithRejectedRouteKey overrides the cookie name used to remember where a
// denied visitor was headed.
func WithRejectedRouteKey(key string) RouteGuardOption {
	return func(g *RouteGuard) {
		if key != "" {
			g.rejectedKey = key
		}
	}
}

func WithGuardLogger(logger Logger) RouteGuardOption {
	return func(g *RouteGuard) {
		if logger != nil {
			g.Logger = logger
		}
	}
}

func NewRouteGuard(store *SessionStore, opts ...RouteGuardOption) *RouteGuard {
	g := &RouteGuard{
		store:       store,
		rejectedKey: defaultRejectedRouteKey,
		Logger:      defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Protected gates an area behind the given role. The check is the strict
// access guard decision: no session or the wrong role both redirect to the
// login entry point, never to another role's area.
func (g *RouteGuard) Protected(required Role) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			session := g.store.Get()
			decision := Check(required, session)
			if decision.Allowed {
				c.Locals(SessionLocalsKey, session)
				return next(c)
			}

			g.Logger.Info("access denied for %q, redirecting to %s", c.OriginalURL(), decision.RedirectTo)
			g.SetRedirect(c)

			statusCode := http.StatusSeeOther
			if c.Method() == string(router.GET) {
				statusCode = http.StatusFound
			}
			return c.Redirect(decision.RedirectTo, statusCode)
		}
	}
}

// ProtectedArea derives the required role from the route itself via the
// role router. Unprotected routes pass through untouched.
func (g *RouteGuard) ProtectedArea(route string) router.MiddlewareFunc {
	required, ok := RequiredRole(route)
	if !ok {
		return func(next router.HandlerFunc) router.HandlerFunc {
			return next
		}
	}
	return g.Protected(required)
}

// SetRedirect remembers the route the visitor was denied on so a later
// successful login can send them back.
func (g *RouteGuard) SetRedirect(c router.Context) {
	c.Cookie(&router.Cookie{
		Name:     g.rejectedKey,
		Value:    c.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// GetRedirect consumes the remembered rejected route, falling back to the
// provided default.
func (g *RouteGuard) GetRedirect(c router.Context, def ...string) string {
	r := c.Cookies(g.rejectedKey)
	if r == "" && len(def) > 0 {
		return def[0]
	}
	g.cookieDel(c, g.rejectedKey)
	return r
}

func (g *RouteGuard) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}
