package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Verifier is the contract with the external credential authority. It owns
// user storage and password hashing; this package only consumes its
// responses.
type Verifier interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, sub SignupSubmission) (*SignupResult, error)
	SignOut(ctx context.Context, token string) error
	DeleteAccount(ctx context.Context, token, email string) (string, error)
}

// PasswordResetRequester is implemented by verifiers that support initiating
// a password reset. The flow treats the call as best-effort and never
// surfaces its result to the caller.
type PasswordResetRequester interface {
	RequestPasswordReset(ctx context.Context, email string, role Role) error
}

// SignupSubmission is the payload sent to the verifier's signup endpoint,
// after local validation and normalization.
type SignupSubmission struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	Password      string `json:"password"`
	Role          Role   `json:"role"`
}

// SignupResult is what the verifier answered a signup with. Session is
// populated when the verifier signs the new account in directly; otherwise
// only Message is set and the caller is expected to log in.
type SignupResult struct {
	Session *Session
	Message string
}

// Config holds the externally visible knobs of the verifier client
type Config interface {
	GetBaseURL() string
	GetRequestTimeout() int
	GetAuthScheme() string
}

// ClientConfig is a plain Config implementation for callers that do not
// have their own configuration layer.
type ClientConfig struct {
	BaseURL string
	// RequestTimeout bounds each verifier round trip, in seconds.
	RequestTimeout int
	AuthScheme     string
}

func (c ClientConfig) GetBaseURL() string {
	return c.BaseURL
}

func (c ClientConfig) GetRequestTimeout() int {
	return c.RequestTimeout
}

func (c ClientConfig) GetAuthScheme() string {
	return c.AuthScheme
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
