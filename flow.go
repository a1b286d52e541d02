package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Outcome is the result of a flow operation: the state the submission ended
// in, where to send the user next, and the message to show them.
type Outcome struct {
	State    FlowState
	Redirect string
	Message  string
	Err      error
}

// Failed reports whether the operation ended in a failure outcome.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// AuthFlow orchestrates login, signup, password reset and logout against
// the credential verifier, and is the only writer of the session store.
//
// Only one login/signup submission may be in flight at a time; a second
// submission is rejected locally without a network call. Responses that
// arrive after Close or Reset are discarded and never touch the store.
type AuthFlow struct {
	verifier Verifier
	store    *SessionStore
	logger   Logger
	timeout  time.Duration

	mu     sync.Mutex
	state  FlowState
	seq    uint64
	closed bool
}

// NewAuthFlow returns a flow controller bound to the verifier and store.
func NewAuthFlow(verifier Verifier, store *SessionStore) *AuthFlow {
	return &AuthFlow{
		verifier: verifier,
		store:    store,
		logger:   defLogger{},
		timeout:  15 * time.Second,
	}
}

func (f *AuthFlow) WithLogger(logger Logger) *AuthFlow {
	if logger != nil {
		f.logger = logger
	}
	return f
}

// WithTimeout bounds each verifier round trip so a submission always
// terminates in Succeeded or Failed.
func (f *AuthFlow) WithTimeout(timeout time.Duration) *AuthFlow {
	if timeout > 0 {
		f.timeout = timeout
	}
	return f
}

// State returns the current flow state.
func (f *AuthFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Reset returns the flow to Idle, e.g. when the user switches between the
// login and signup forms. A submission still in flight is superseded: its
// response will be discarded.
func (f *AuthFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.seq++
	f.state = FlowIdle
}

// Close tears the controller down. In-flight responses are discarded and
// further submissions are rejected. The session store is left as is.
func (f *AuthFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.seq++
}

// Login authenticates the user and, on success, populates the session
// store and resolves the role's home route. The password is forwarded to
// the verifier and never retained. Failure messages from the verifier are
// surfaced verbatim.
func (f *AuthFlow) Login(ctx context.Context, email, password string) Outcome {
	req := LoginRequest{Email: normalizeEmail(email), Password: password}
	if err := req.Validate(); err != nil {
		return f.failedLocally(err)
	}

	seq, err := f.begin()
	if err != nil {
		return Outcome{State: f.State(), Message: "A request is already in progress.", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	session, err := f.verifier.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return f.fail(seq, err)
	}

	return f.succeedWithSession(seq, session)
}

// Signup registers a new account. Validation rules run in order and the
// first failure short-circuits without a network call. When the verifier
// answers with a session the store is populated exactly as after login;
// otherwise the caller is sent to the login entry with the verifier's
// message.
func (f *AuthFlow) Signup(ctx context.Context, req SignupRequest) Outcome {
	if err := req.Validate(); err != nil {
		return f.failedLocally(err)
	}

	seq, err := f.begin()
	if err != nil {
		return Outcome{State: f.State(), Message: "A request is already in progress.", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	result, err := f.verifier.SignUp(ctx, req.Submission())
	if err != nil {
		return f.fail(seq, err)
	}

	if result.Session != nil {
		return f.succeedWithSession(seq, result.Session)
	}

	message := result.Message
	if message == "" {
		message = "Account created. Please sign in."
	}
	if !f.complete(seq, FlowSucceeded, nil) {
		return discardedOutcome()
	}
	return Outcome{State: FlowSucceeded, Redirect: LoginRoute, Message: message}
}

// RequestPasswordReset always reports success without revealing whether
// the email exists. The verifier call, when supported, is best-effort and
// its result is never surfaced.
func (f *AuthFlow) RequestPasswordReset(ctx context.Context, email string, role Role) Outcome {
	email = normalizeEmail(email)

	label := role.Label()
	if label == "" {
		label = string(role)
	}
	message := fmt.Sprintf(
		"If %s is registered as %s, password reset instructions have been sent to it.",
		email, label,
	)

	if requester, ok := f.verifier.(PasswordResetRequester); ok {
		ctx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()
		if err := requester.RequestPasswordReset(ctx, email, role); err != nil {
			f.logger.Debug("password reset request not delivered: %v", err)
		}
	}

	return Outcome{State: FlowSucceeded, Message: message}
}

// Logout clears the local session unconditionally. Remote invalidation is
// attempted but its result does not affect correctness; the destination is
// always the login entry point.
func (f *AuthFlow) Logout(ctx context.Context) Outcome {
	if session := f.store.Get(); session != nil {
		ctx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()
		if err := f.verifier.SignOut(ctx, session.Token); err != nil {
			f.logger.Info("remote sign-out failed, clearing local session anyway: %v", err)
		}
	}

	f.store.Clear()
	return Outcome{State: FlowSucceeded, Redirect: LoginRoute}
}

// DeleteAccount removes the authenticated user's account. The local
// session is cleared immediately on success.
func (f *AuthFlow) DeleteAccount(ctx context.Context) Outcome {
	session := f.store.Get()
	if session == nil {
		return Outcome{State: FlowFailed, Message: "You are not signed in.", Err: ErrNotAuthenticated}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	message, err := f.verifier.DeleteAccount(ctx, session.Token, session.Profile.Email)
	if err != nil {
		return Outcome{State: FlowFailed, Message: messageFor(err), Err: err}
	}

	f.store.Clear()
	if message == "" {
		message = "Account deleted."
	}
	return Outcome{State: FlowSucceeded, Redirect: LoginRoute, Message: message}
}

// begin claims the single submission slot and returns the sequence number
// identifying this submission.
func (f *AuthFlow) begin() (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, ErrFlowClosed
	}
	if f.state == FlowSubmitting {
		return 0, ErrSubmissionInFlight
	}
	if !f.state.canTransition(FlowSubmitting) {
		return 0, cloneWithMetadata(ErrSubmissionInFlight, map[string]any{"state": f.state.String()})
	}

	f.state = FlowSubmitting
	f.seq++
	return f.seq, nil
}

// complete moves the machine out of Submitting and runs commit while the
// submission is still current. Stale completions, after Close or Reset,
// are dropped; commit never runs for them.
func (f *AuthFlow) complete(seq uint64, to FlowState, commit func()) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || seq != f.seq || !f.state.canTransition(to) {
		return false
	}

	f.state = to
	if commit != nil {
		commit()
	}
	return true
}

func (f *AuthFlow) fail(seq uint64, err error) Outcome {
	if !f.complete(seq, FlowFailed, nil) {
		return discardedOutcome()
	}
	return Outcome{State: FlowFailed, Message: messageFor(err), Err: err}
}

func (f *AuthFlow) succeedWithSession(seq uint64, session *Session) Outcome {
	if session == nil {
		return f.fail(seq, verifierContractError("verifier reported success without a session"))
	}
	if err := session.Validate(); err != nil {
		return f.fail(seq, err)
	}

	if !f.complete(seq, FlowSucceeded, func() {
		// cannot fail: the session was validated above
		_ = f.store.Set(session)
	}) {
		return discardedOutcome()
	}

	return Outcome{State: FlowSucceeded, Redirect: HomeRoute(session.Role)}
}

// failedLocally reports a validation failure. The flow state is left
// untouched: no submission ever started.
func (f *AuthFlow) failedLocally(err error) Outcome {
	return Outcome{State: FlowFailed, Message: messageFor(err), Err: err}
}

func discardedOutcome() Outcome {
	return Outcome{State: FlowIdle, Err: ErrSubmissionDiscarded}
}

// messageFor picks the user-visible message: verifier rejections verbatim,
// the generic fallback for network failures, the error text otherwise.
func messageFor(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		if rich.TextCode == textCodeVerifierUnreachable {
			return NetworkFailureMessage
		}
		return rich.Message
	}
	return err.Error()
}
