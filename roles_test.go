package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	auth "github.com/carebridge/portal-auth"
)

func TestRoleIsValid(t *testing.T) {
	for _, role := range auth.AllRoles() {
		assert.True(t, role.IsValid(), "expected %s to be valid", role)
	}

	assert.False(t, auth.Role("").IsValid())
	assert.False(t, auth.Role("owner").IsValid())
	assert.False(t, auth.Role("superadmin").IsValid())
}

func TestParseRole(t *testing.T) {
	testCases := []struct {
		input string
		role  auth.Role
		ok    bool
	}{
		{"admin", auth.RoleAdmin, true},
		{"Admin", auth.RoleAdmin, true},
		{"  DOCTOR  ", auth.RoleDoctor, true},
		{"caregiver", auth.RoleCaregiver, true},
		{"family", auth.RoleFamily, true},
		{"nurse", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		role, ok := auth.ParseRole(tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
		if tc.ok {
			assert.Equal(t, tc.role, role, "input %q", tc.input)
		}
	}
}

func TestRoleLabel(t *testing.T) {
	for _, role := range auth.AllRoles() {
		assert.NotEmpty(t, role.Label(), "every role needs a label")
	}
	assert.Equal(t, "Administrator", auth.RoleAdmin.Label())
	assert.Equal(t, "Family Member", auth.RoleFamily.Label())
	assert.Empty(t, auth.Role("nurse").Label())
}
