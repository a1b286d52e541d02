package auth_test

import (
	"net/http"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auth "github.com/carebridge/portal-auth"
)

func TestRouteGuardAllowsMatchingRole(t *testing.T) {
	store := auth.NewSessionStore()
	session := sessionWithRole(auth.RoleDoctor)
	require.NoError(t, store.Set(session))

	guard := auth.NewRouteGuard(store)

	mockCtx := new(MockContext)
	mockCtx.On("Locals", auth.SessionLocalsKey, session).Return(nil)

	nextCalled := false
	next := func(c router.Context) error {
		nextCalled = true
		return nil
	}

	err := guard.Protected(auth.RoleDoctor)(next)(mockCtx)
	require.NoError(t, err)

	assert.True(t, nextCalled, "matching role reaches the handler")
	mockCtx.AssertExpectations(t)
}

func TestRouteGuardDeniesWrongRole(t *testing.T) {
	store := auth.NewSessionStore()
	require.NoError(t, store.Set(sessionWithRole(auth.RoleFamily)))

	guard := auth.NewRouteGuard(store)

	mockCtx := new(MockContext)
	mockCtx.On("OriginalURL").Return("/admin/residents")
	mockCtx.On("Method").Return("GET")
	mockCtx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
		return c.Name == "rejected_route" && c.Value == "/admin/residents" && c.HTTPOnly
	})).Return()
	mockCtx.On("Redirect", auth.LoginRoute, []int{http.StatusFound}).Return(nil)

	nextCalled := false
	next := func(c router.Context) error {
		nextCalled = true
		return nil
	}

	err := guard.Protected(auth.RoleAdmin)(next)(mockCtx)
	require.NoError(t, err)

	assert.False(t, nextCalled, "wrong role never reaches the handler")
	mockCtx.AssertExpectations(t)
}

func TestRouteGuardDeniesAnonymous(t *testing.T) {
	guard := auth.NewRouteGuard(auth.NewSessionStore())

	mockCtx := new(MockContext)
	mockCtx.On("OriginalURL").Return("/family")
	mockCtx.On("Method").Return("POST")
	mockCtx.On("Cookie", mock.Anything).Return()
	mockCtx.On("Redirect", auth.LoginRoute, []int{http.StatusSeeOther}).Return(nil)

	next := func(c router.Context) error {
		t.Fatal("handler must not run")
		return nil
	}

	err := guard.Protected(auth.RoleFamily)(next)(mockCtx)
	require.NoError(t, err)
	mockCtx.AssertExpectations(t)
}

func TestProtectedAreaPassesThroughUnprotectedRoutes(t *testing.T) {
	guard := auth.NewRouteGuard(auth.NewSessionStore())

	mockCtx := new(MockContext)
	nextCalled := false
	next := func(c router.Context) error {
		nextCalled = true
		return nil
	}

	err := guard.ProtectedArea("/about")(next)(mockCtx)
	require.NoError(t, err)
	assert.True(t, nextCalled)
	mockCtx.AssertExpectations(t)
}

func TestProtectedAreaDerivesRole(t *testing.T) {
	store := auth.NewSessionStore()
	session := sessionWithRole(auth.RoleCaregiver)
	require.NoError(t, store.Set(session))

	guard := auth.NewRouteGuard(store)

	mockCtx := new(MockContext)
	mockCtx.On("Locals", auth.SessionLocalsKey, session).Return(nil)

	nextCalled := false
	next := func(c router.Context) error {
		nextCalled = true
		return nil
	}

	err := guard.ProtectedArea("/caregiver/tasks")(next)(mockCtx)
	require.NoError(t, err)
	assert.True(t, nextCalled)
}

func TestRouteGuardRedirectCookie(t *testing.T) {
	guard := auth.NewRouteGuard(auth.NewSessionStore(),
		auth.WithRejectedRouteKey("come_back_to"))

	mockCtx := new(MockContext)
	mockCtx.On("OriginalURL").Return("/doctor/schedule")
	mockCtx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
		return c.Name == "come_back_to" && c.Value == "/doctor/schedule"
	})).Return()

	guard.SetRedirect(mockCtx)
	mockCtx.AssertExpectations(t)

	// consuming it returns the value and deletes the cookie
	mockCtx = new(MockContext)
	mockCtx.On("Cookies", "come_back_to").Return("/doctor/schedule")
	mockCtx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
		return c.Name == "come_back_to" && c.Value == ""
	})).Return()

	assert.Equal(t, "/doctor/schedule", guard.GetRedirect(mockCtx, "/fallback"))
	mockCtx.AssertExpectations(t)
}

func TestRouteGuardRedirectFallback(t *testing.T) {
	guard := auth.NewRouteGuard(auth.NewSessionStore())

	mockCtx := new(MockContext)
	mockCtx.On("Cookies", "rejected_route").Return("")

	assert.Equal(t, auth.LoginRoute, guard.GetRedirect(mockCtx, auth.LoginRoute))
	mockCtx.AssertExpectations(t)
}
