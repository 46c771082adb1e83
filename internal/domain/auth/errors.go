package auth

import (
	"errors"
	"fmt"
)

// Reason tags an authentication or authorization failure.
// Values are stable and safe to expose to clients.
type Reason string

const (
	ReasonNoToken                Reason = "no_token"
	ReasonBadToken               Reason = "bad_token"
	ReasonSessionNotFound        Reason = "session_not_found"
	ReasonSessionRevoked         Reason = "session_revoked"
	ReasonSessionExpired         Reason = "session_expired"
	ReasonUserDisabled           Reason = "user_disabled"
	ReasonSubjectMismatch        Reason = "subject_mismatch"
	ReasonSessionLookupFailed    Reason = "session_lookup_failed"
	ReasonAuthenticationRequired Reason = "authentication_required"
	ReasonNoRoleAssigned         Reason = "no_role_assigned"
	ReasonInsufficientRole       Reason = "insufficient_role"
)

var reasonMessages = map[Reason]string{
	ReasonNoToken:                "authentication token is missing",
	ReasonBadToken:               "authentication token is invalid or expired; please log in again",
	ReasonSessionNotFound:        "session not found; please log in again",
	ReasonSessionRevoked:         "session has been revoked; please log in again",
	ReasonSessionExpired:         "session has expired; please log in again",
	ReasonUserDisabled:           "account is disabled; please contact support",
	ReasonSubjectMismatch:        "token does not belong to this session",
	ReasonSessionLookupFailed:    "unable to verify session; please try again",
	ReasonAuthenticationRequired: "authentication required",
	ReasonNoRoleAssigned:         "no role assigned to this account",
	ReasonInsufficientRole:       "insufficient role for this resource",
}

// Message returns the stable client-facing message for the reason.
func (r Reason) Message() string {
	if m, ok := reasonMessages[r]; ok {
		return m
	}
	return string(r)
}

// Forbidden reports whether the reason is an authorization (as opposed to authentication) failure.
func (r Reason) Forbidden() bool {
	return r == ReasonNoRoleAssigned || r == ReasonInsufficientRole
}

// VerifyFailure classifies why the token verifier rejected a token.
type VerifyFailure string

const (
	VerifyBadSignature VerifyFailure = "bad_signature"
	VerifyExpired      VerifyFailure = "expired"
	VerifyMalformed    VerifyFailure = "malformed"
)

// Error is the failure type for the token validation pipeline and the role gate.
// Two Errors match under errors.Is when their reasons are equal.
type Error struct {
	Reason Reason
	// Detail narrows BadToken failures; empty for every other reason.
	Detail VerifyFailure
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Reason.Message()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Detail)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches on reason so wrapped failures compare equal to the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Reason == t.Reason
}

// Sentinels for errors.Is checks.
var (
	ErrNoToken                = &Error{Reason: ReasonNoToken}
	ErrBadToken               = &Error{Reason: ReasonBadToken}
	ErrSessionNotFound        = &Error{Reason: ReasonSessionNotFound}
	ErrSessionRevoked         = &Error{Reason: ReasonSessionRevoked}
	ErrSessionExpired         = &Error{Reason: ReasonSessionExpired}
	ErrUserDisabled           = &Error{Reason: ReasonUserDisabled}
	ErrSubjectMismatch        = &Error{Reason: ReasonSubjectMismatch}
	ErrSessionLookupFailed    = &Error{Reason: ReasonSessionLookupFailed}
	ErrAuthenticationRequired = &Error{Reason: ReasonAuthenticationRequired}
	ErrNoRoleAssigned         = &Error{Reason: ReasonNoRoleAssigned}
	ErrInsufficientRole       = &Error{Reason: ReasonInsufficientRole}
)

// BadToken wraps a verifier or claim-schema failure.
func BadToken(detail VerifyFailure, cause error) *Error {
	return &Error{Reason: ReasonBadToken, Detail: detail, Cause: cause}
}

// SessionLookupFailed wraps a session store failure. The session's state is unknown, so the
// request fails closed.
func SessionLookupFailed(cause error) *Error {
	return &Error{Reason: ReasonSessionLookupFailed, Cause: cause}
}

// ReasonOf extracts the failure reason from err, or "" when err is not an auth failure.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
