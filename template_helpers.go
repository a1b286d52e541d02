package auth

// TemplateSessionKey is the name templates use to reach the current session.
var TemplateSessionKey = "current_session"

// TemplateHelpers returns helper functions and data for the template
// renderer's global scope.
//
// In templates:
//
//	{% if is_authenticated() %}
//	{% if has_role("doctor") %}
//	<a href="{{ home_route() }}">Dashboard</a>
func TemplateHelpers(store *SessionStore) map[string]any {
	labels := map[string]string{}
	for _, role := range AllRoles() {
		labels[string(role)] = role.Label()
	}

	return map[string]any{
		"is_authenticated": func() bool {
			return store.Get() != nil
		},
		"current_role": func() string {
			if session := store.Get(); session != nil {
				return string(session.Role)
			}
			return ""
		},
		"current_name": func() string {
			if session := store.Get(); session != nil {
				return session.Profile.FullName
			}
			return ""
		},
		"has_role": func(role string) bool {
			session := store.Get()
			return session != nil && string(session.Role) == role
		},
		"home_route": func() string {
			if session := store.Get(); session != nil {
				return HomeRoute(session.Role)
			}
			return LoginRoute
		},
		"remembered_email": func() string {
			return store.RememberedEmail()
		},

		// Role constants for easy template access
		"roles": labels,
	}
}
