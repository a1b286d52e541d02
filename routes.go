package auth

import "strings"

// LoginRoute is the single entry point unauthenticated and role-mismatched
// visitors are redirected to. It is intentionally not a protected area.
const LoginRoute = "/login"

// HomeRoute maps a role to the application area it lands on after
// authentication. The mapping is total: every valid role has exactly one
// home route. Adding a role without extending this switch sends it to the
// login entry, which the round-trip test catches.
func HomeRoute(role Role) string {
	switch role {
	case RoleAdmin:
		return "/admin"
	case RoleDoctor:
		return "/doctor"
	case RoleCaregiver:
		return "/caregiver"
	case RoleFamily:
		return "/family"
	default:
		return LoginRoute
	}
}

// protectedAreas is derived from HomeRoute so the forward and reverse
// mappings cannot drift apart.
var protectedAreas = func() map[string]Role {
	areas := make(map[string]Role, len(AllRoles()))
	for _, role := range AllRoles() {
		areas[HomeRoute(role)] = role
	}
	return areas
}()

// RequiredRole reports which role a route demands, if any. Nested paths
// inherit the requirement of their area, so "/doctor/appointments" requires
// RoleDoctor just like "/doctor" does.
func RequiredRole(route string) (Role, bool) {
	role, ok := protectedAreas[areaOf(route)]
	return role, ok
}

// areaOf reduces a route to its top-level area ("/admin/residents/4" ->
// "/admin"). Query strings and trailing slashes are ignored.
func areaOf(route string) string {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	route = "/" + strings.Trim(route, "/")
	if i := strings.Index(route[1:], "/"); i >= 0 {
		route = route[:i+1]
	}
	return route
}
