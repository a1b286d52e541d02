package auth

// Decision is the outcome of an access check: either the visitor may view
// the area, or they are redirected. Denials never carry an error message,
// they are routing decisions.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

// Allow grants access to the protected area.
func Allow() Decision {
	return Decision{Allowed: true}
}

// DenyRedirect refuses access and names the route to send the visitor to.
func DenyRedirect(target string) Decision {
	return Decision{RedirectTo: target}
}

// Check decides whether the session may view an area requiring the given
// role. The check is strict equality: there is no role hierarchy, and a
// session holding the wrong role is treated exactly like an unauthenticated
// visitor. Denials always target the login entry point, never another
// role's area.
func Check(required Role, session *Session) Decision {
	if session == nil {
		return DenyRedirect(LoginRoute)
	}
	if session.Role != required {
		return DenyRedirect(LoginRoute)
	}
	return Allow()
}

// CheckRoute resolves the route's required role through the role router and
// applies Check. Routes that are not protected areas are always allowed.
func CheckRoute(route string, session *Session) Decision {
	required, ok := RequiredRole(route)
	if !ok {
		return Allow()
	}
	return Check(required, session)
}
