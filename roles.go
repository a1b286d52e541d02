package auth

import "strings"

// Role is one of the four portal roles
type Role string

const (
	// RoleAdmin manages staff, residents and portal configuration
	RoleAdmin Role = "admin"
	// RoleDoctor reviews residents, prescriptions and appointments
	RoleDoctor Role = "doctor"
	// RoleCaregiver tracks daily care tasks and resident vitals
	RoleCaregiver Role = "caregiver"
	// RoleFamily follows a resident's wellbeing and visit schedule
	RoleFamily Role = "family"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleCaregiver, RoleFamily:
		return true
	default:
		return false
	}
}

// Label returns the human readable name for the role
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleDoctor:
		return "Doctor"
	case RoleCaregiver:
		return "Caregiver"
	case RoleFamily:
		return "Family Member"
	default:
		return ""
	}
}

func (r Role) String() string {
	return string(r)
}

// AllRoles returns all predefined roles
func AllRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleDoctor,
		RoleCaregiver,
		RoleFamily,
	}
}

// ParseRole safely parses a string into a Role type. Input is matched
// case-insensitively so "Admin" and "admin" resolve to the same role.
func ParseRole(roleStr string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(roleStr)))
	return role, role.IsValid()
}
