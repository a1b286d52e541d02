package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	signinPath        = "/auth/signin"
	signupPath        = "/auth/signup"
	logoutPath        = "/auth/logout"
	deleteAccountPath = "/auth/delete"
	passwordResetPath = "/auth/password-reset"
)

const maxResponseBytes = 1 << 20

// HTTPVerifier talks to the external credential authority over its JSON
// contract. Authenticated calls attach the session token as a bearer
// credential.
type HTTPVerifier struct {
	baseURL string
	scheme  string
	client  *http.Client
	logger  Logger
}

var _ Verifier = (*HTTPVerifier)(nil)
var _ PasswordResetRequester = (*HTTPVerifier)(nil)

// NewHTTPVerifier returns a verifier client for the configured base URL.
func NewHTTPVerifier(cfg Config) *HTTPVerifier {
	timeout := 10 * time.Second
	if cfg.GetRequestTimeout() > 0 {
		timeout = time.Duration(cfg.GetRequestTimeout()) * time.Second
	}

	scheme := cfg.GetAuthScheme()
	if scheme == "" {
		scheme = "Bearer"
	}

	return &HTTPVerifier{
		baseURL: strings.TrimRight(cfg.GetBaseURL(), "/"),
		scheme:  scheme,
		client:  &http.Client{Timeout: timeout},
		logger:  defLogger{},
	}
}

func (v *HTTPVerifier) WithLogger(logger Logger) *HTTPVerifier {
	if logger != nil {
		v.logger = logger
	}
	return v
}

// WithHTTPClient overrides the underlying client (useful for tests and
// custom transports).
func (v *HTTPVerifier) WithHTTPClient(client *http.Client) *HTTPVerifier {
	if client != nil {
		v.client = client
	}
	return v
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token         string `json:"token"`
	Role          string `json:"role"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	Message       string `json:"message,omitempty"`
}

// SignIn exchanges credentials for a session. Rejections carry the
// verifier's message verbatim; transport failures map to the generic
// network outcome.
func (v *HTTPVerifier) SignIn(ctx context.Context, email, password string) (*Session, error) {
	payload := signinRequest{Email: email, Password: password}

	var resp sessionResponse
	if err := v.post(ctx, signinPath, payload, "", &resp); err != nil {
		return nil, err
	}

	return sessionFromResponse(resp)
}

// SignUp registers a new account. Verifiers that sign the account in
// directly answer with a full session payload; others answer with a
// message only.
func (v *HTTPVerifier) SignUp(ctx context.Context, sub SignupSubmission) (*SignupResult, error) {
	var resp sessionResponse
	if err := v.post(ctx, signupPath, sub, "", &resp); err != nil {
		return nil, err
	}

	result := &SignupResult{Message: resp.Message}
	if resp.Token != "" {
		session, err := sessionFromResponse(resp)
		if err != nil {
			return nil, err
		}
		result.Session = session
	}
	return result, nil
}

// SignOut asks the verifier to invalidate the token. Callers clear local
// state regardless of the result.
func (v *HTTPVerifier) SignOut(ctx context.Context, token string) error {
	return v.post(ctx, logoutPath, struct{}{}, token, nil)
}

// DeleteAccount removes the account behind the session. The local session
// must be cleared immediately on success.
func (v *HTTPVerifier) DeleteAccount(ctx context.Context, token, email string) (string, error) {
	payload := map[string]string{"email": email}

	var resp struct {
		Message string `json:"message"`
	}
	if err := v.post(ctx, deleteAccountPath, payload, token, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// RequestPasswordReset initiates a reset. The flow ignores the result to
// keep the outcome indistinguishable for unknown emails.
func (v *HTTPVerifier) RequestPasswordReset(ctx context.Context, email string, role Role) error {
	payload := map[string]string{
		"email": email,
		"role":  string(role),
	}
	return v.post(ctx, passwordResetPath, payload, "", nil)
}

func (v *HTTPVerifier) post(ctx context.Context, path string, payload any, token string, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode verifier request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build verifier request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", v.scheme+" "+token)
	}

	res, err := v.client.Do(req)
	if err != nil {
		v.logger.Debug("verifier call %s failed: %v", path, err)
		return goerrors.Wrap(err, goerrors.CategoryOperation, NetworkFailureMessage).
			WithTextCode(textCodeVerifierUnreachable)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, NetworkFailureMessage).
			WithTextCode(textCodeVerifierUnreachable)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return goerrors.New(rejectionMessage(data), goerrors.CategoryAuth).
			WithTextCode(textCodeVerifierRejected).
			WithCode(res.StatusCode)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return verifierContractError("verifier returned an unreadable response body")
		}
	}
	return nil
}

// rejectionMessage extracts the verifier's human readable message so it can
// be surfaced verbatim. A fallback covers bodies that are not the expected
// {message} shape.
func rejectionMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return "Authentication failed"
}

func sessionFromResponse(resp sessionResponse) (*Session, error) {
	if resp.Token == "" {
		return nil, verifierContractError("verifier response is missing a token")
	}

	role, ok := ParseRole(resp.Role)
	if !ok {
		return nil, verifierContractError("verifier returned an unknown role").
			WithMetadata(map[string]any{"role": resp.Role})
	}

	session := &Session{
		Token: resp.Token,
		Role:  role,
		Profile: Profile{
			FullName:      resp.FullName,
			Email:         resp.Email,
			ContactNumber: resp.ContactNumber,
			UserID:        resp.UserID,
		},
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}
	return session, nil
}

func verifierContractError(msg string) *goerrors.Error {
	return goerrors.New(msg, goerrors.CategoryInternal).
		WithTextCode(textCodeVerifierContract).
		WithCode(goerrors.CodeInternal)
}
