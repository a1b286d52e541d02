package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeMissingFields       = "MISSING_FIELDS"
	textCodePasswordMismatch    = "PASSWORD_MISMATCH"
	textCodeInvalidContact      = "INVALID_CONTACT_NUMBER"
	textCodeWeakPassword        = "WEAK_PASSWORD"
	textCodeInvalidRole         = "INVALID_ROLE"
	textCodePartialSession      = "PARTIAL_SESSION"
	textCodeSubmissionInFlight  = "SUBMISSION_IN_FLIGHT"
	textCodeSubmissionDiscarded = "SUBMISSION_DISCARDED"
	textCodeFlowClosed          = "FLOW_CLOSED"
	textCodeNotAuthenticated    = "NOT_AUTHENTICATED"
	textCodeVerifierRejected    = "VERIFIER_REJECTED"
	textCodeVerifierUnreachable = "VERIFIER_UNREACHABLE"
	textCodeVerifierContract    = "VERIFIER_CONTRACT"
)

// NetworkFailureMessage is the fallback shown when the credential verifier
// cannot be reached or does not answer in time.
const NetworkFailureMessage = "Unable to reach the portal service. Please check your connection and try again."

// ErrMissingFields is returned when a form is submitted with required fields empty.
var ErrMissingFields = goerrors.New("required fields are missing", goerrors.CategoryValidation).
	WithTextCode(textCodeMissingFields).
	WithCode(goerrors.CodeBadRequest)

// ErrPasswordMismatch is returned when password and confirmation differ.
var ErrPasswordMismatch = goerrors.New("passwords do not match", goerrors.CategoryValidation).
	WithTextCode(textCodePasswordMismatch).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidContactNumber is returned when the contact number does not
// normalize to exactly ten digits.
var ErrInvalidContactNumber = goerrors.New("contact number must be exactly 10 digits", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidContact).
	WithCode(goerrors.CodeBadRequest)

// ErrWeakPassword is returned when the password fails the complexity policy.
var ErrWeakPassword = goerrors.New("password must include a lowercase letter, an uppercase letter, a digit and a symbol", goerrors.CategoryValidation).
	WithTextCode(textCodeWeakPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidRole is returned when a role outside the closed set is supplied.
var ErrInvalidRole = goerrors.New("unknown role", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidRole).
	WithCode(goerrors.CodeBadRequest)

// ErrPartialSession is returned when a session missing its token, role or
// profile is written to the store. This is a programming error, not a user
// facing condition.
var ErrPartialSession = goerrors.New("session must be fully populated or nil", goerrors.CategoryBadInput).
	WithTextCode(textCodePartialSession).
	WithCode(goerrors.CodeBadRequest)

// ErrSubmissionInFlight is returned when a login or signup is attempted
// while another submission is still pending.
var ErrSubmissionInFlight = goerrors.New("a submission is already in progress", goerrors.CategoryConflict).
	WithTextCode(textCodeSubmissionInFlight).
	WithCode(goerrors.CodeConflict)

// ErrSubmissionDiscarded is returned when a verifier response arrives after
// the flow was closed or reset; the result is dropped without touching the
// session store.
var ErrSubmissionDiscarded = goerrors.New("submission superseded, response discarded", goerrors.CategoryConflict).
	WithTextCode(textCodeSubmissionDiscarded).
	WithCode(goerrors.CodeConflict)

// ErrFlowClosed is returned when operating on a torn-down flow controller.
var ErrFlowClosed = goerrors.New("auth flow has been closed", goerrors.CategoryConflict).
	WithTextCode(textCodeFlowClosed).
	WithCode(goerrors.CodeConflict)

// ErrNotAuthenticated is returned by operations that need an active session.
var ErrNotAuthenticated = goerrors.New("no active session", goerrors.CategoryAuth).
	WithTextCode(textCodeNotAuthenticated).
	WithCode(goerrors.CodeUnauthorized)

// cloneWithMetadata attaches call-scoped metadata to a copy of the error.
// WithMetadata writes into the receiver's map in place, so it must never be
// called on the shared package-level values.
func cloneWithMetadata(base *goerrors.Error, meta map[string]any) error {
	clone := base.Clone()
	if clone == nil {
		return base
	}
	return clone.WithMetadata(meta)
}

// IsValidationError checks for local, pre-network validation failures.
func IsValidationError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.Category == goerrors.CategoryValidation
}

// IsAuthenticationError checks whether the verifier rejected the credentials.
func IsAuthenticationError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.Category == goerrors.CategoryAuth && rich.TextCode == textCodeVerifierRejected
}

// IsNetworkError checks for transport or timeout failures reaching the verifier.
func IsNetworkError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == textCodeVerifierUnreachable
}

// IsSubmissionInFlight checks for the local duplicate-submission rejection.
func IsSubmissionInFlight(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == textCodeSubmissionInFlight
}
