package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/carebridge/portal-auth"
)

func newVerifier(url string) *auth.HTTPVerifier {
	return auth.NewHTTPVerifier(auth.ClientConfig{
		BaseURL:        url,
		RequestTimeout: 2,
	})
}

func TestHTTPVerifierSignIn(t *testing.T) {
	var gotPath, gotEmail string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotEmail = body["email"]

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"token":     "tok-123",
			"role":      "doctor",
			"full_name": "Dana Osei",
			"email":     body["email"],
		})
	}))
	defer server.Close()

	session, err := newVerifier(server.URL).SignIn(context.Background(), "doc@x.com", "Secret#1")
	require.NoError(t, err)

	assert.Equal(t, "/auth/signin", gotPath)
	assert.Equal(t, "doc@x.com", gotEmail)
	assert.Equal(t, "tok-123", session.Token)
	assert.Equal(t, auth.RoleDoctor, session.Role)
	assert.Equal(t, "Dana Osei", session.Profile.FullName)
}

// The verifier's rejection message is surfaced verbatim.
func TestHTTPVerifierSignInRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid email or password"})
	}))
	defer server.Close()

	_, err := newVerifier(server.URL).SignIn(context.Background(), "doc@x.com", "wrong")
	require.Error(t, err)

	assert.True(t, auth.IsAuthenticationError(err))
	assert.Contains(t, err.Error(), "Invalid email or password")
}

func TestHTTPVerifierUnknownRole(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"token":     "tok-123",
			"role":      "janitor",
			"full_name": "X",
			"email":     "x@x.com",
		})
	}))
	defer server.Close()

	_, err := newVerifier(server.URL).SignIn(context.Background(), "x@x.com", "pw")
	assert.Error(t, err)
	assert.False(t, auth.IsAuthenticationError(err))
}

func TestHTTPVerifierNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	_, err := newVerifier(server.URL).SignIn(context.Background(), "doc@x.com", "pw")
	require.Error(t, err)
	assert.True(t, auth.IsNetworkError(err))
}

func TestHTTPVerifierTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := newVerifier(server.URL).SignIn(ctx, "doc@x.com", "pw")
	require.Error(t, err)
	assert.True(t, auth.IsNetworkError(err), "timeouts map to the network outcome")
}

// Authenticated endpoints attach the session token as a bearer credential.
func TestHTTPVerifierAttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))
	defer server.Close()

	v := newVerifier(server.URL)

	require.NoError(t, v.SignOut(context.Background(), "tok-999"))
	assert.Equal(t, "Bearer tok-999", gotAuth)

	_, err := v.DeleteAccount(context.Background(), "tok-999", "doc@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-999", gotAuth)
}

func TestHTTPVerifierSignUpMessageOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/signup", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"message": "Account created"})
	}))
	defer server.Close()

	result, err := newVerifier(server.URL).SignUp(context.Background(), auth.SignupSubmission{
		FullName: "Priya Nair",
		Email:    "priya@x.com",
		Password: "Secret#1a",
		Role:     auth.RoleCaregiver,
	})
	require.NoError(t, err)

	assert.Nil(t, result.Session)
	assert.Equal(t, "Account created", result.Message)
}

func TestHTTPVerifierSignUpWithSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"token":     "tok-new",
			"role":      "caregiver",
			"full_name": "Priya Nair",
			"email":     "priya@x.com",
		})
	}))
	defer server.Close()

	result, err := newVerifier(server.URL).SignUp(context.Background(), auth.SignupSubmission{
		FullName: "Priya Nair",
		Email:    "priya@x.com",
		Password: "Secret#1a",
		Role:     auth.RoleCaregiver,
	})
	require.NoError(t, err)

	require.NotNil(t, result.Session)
	assert.Equal(t, auth.RoleCaregiver, result.Session.Role)
}
