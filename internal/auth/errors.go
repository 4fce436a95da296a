// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// Storage sentinels. Repositories wrap these so services can branch with errors.Is.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUsernameConflict is returned when a write violates username uniqueness.
	ErrUsernameConflict = errors.New("username already stored")

	// ErrEmailConflict is returned when a write violates e-mail uniqueness.
	ErrEmailConflict = errors.New("email already stored")
)

// Error domains. The same code may appear in more than one domain, so
// callers must classify on the (domain, code) pair, see KindOf.
const (
	DomainSignup        = "signup"
	DomainSignin        = "signin"
	DomainSignout       = "signout"
	DomainAuthorization = "authorization"
)

// Error codes surfaced to clients.
const (
	CodeUsernameTaken   = "SGR-001"
	CodeEmailTaken      = "SGR-002"
	CodeUnknownUsername = "ATH-001"
	CodePasswordFailed  = "ATH-002"
	CodeNotSignedIn     = "ATHR-001"
	CodeSignedOut       = "ATHR-002"
	CodeNoSession       = "SGR-001"
	CodeInvalidInput    = "AUTH_INVALID_INPUT"
)

// Kind classifies an error returned by this package.
type Kind int

// Error kinds.
const (
	KindNone Kind = iota
	KindInfrastructure
	KindInvalidInput
	KindDuplicateUsername
	KindDuplicateEmail
	KindUnknownUser
	KindBadCredentials
	KindUnauthenticated
	KindSessionInactive
	KindNoActiveSession
)

var kindNames = map[Kind]string{
	KindNone:              "none",
	KindInfrastructure:    "infrastructure",
	KindInvalidInput:      "invalid_input",
	KindDuplicateUsername: "duplicate_username",
	KindDuplicateEmail:    "duplicate_email",
	KindUnknownUser:       "unknown_user",
	KindBadCredentials:    "bad_credentials",
	KindUnauthenticated:   "unauthenticated",
	KindSessionInactive:   "session_inactive",
	KindNoActiveSession:   "no_active_session",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

type tag struct {
	domain string
	code   string
}

var kindsByTag = map[tag]Kind{
	{DomainSignup, CodeUsernameTaken}:      KindDuplicateUsername,
	{DomainSignup, CodeEmailTaken}:         KindDuplicateEmail,
	{DomainSignin, CodeUnknownUsername}:    KindUnknownUser,
	{DomainSignin, CodePasswordFailed}:     KindBadCredentials,
	{DomainAuthorization, CodeNotSignedIn}: KindUnauthenticated,
	{DomainAuthorization, CodeSignedOut}:   KindSessionInactive,
	{DomainSignout, CodeNoSession}:         KindNoActiveSession,
}

// KindOf resolves the kind of err from its domain and code.
// Errors without a known tag are KindInfrastructure; nil is KindNone.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return KindInfrastructure
	}
	code, _ := oopsErr.Code().(string)
	if code == CodeInvalidInput {
		return KindInvalidInput
	}
	if kind, ok := kindsByTag[tag{domain: oopsErr.Domain(), code: code}]; ok {
		return kind
	}
	return KindInfrastructure
}

// ErrCode returns the client-facing code of err, or "" when it has none.
func ErrCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// ErrUsernameTaken reports that the username is already registered.
func ErrUsernameTaken(username string) error {
	return oops.In(DomainSignup).Code(CodeUsernameTaken).
		With("username", username).
		Errorf("Try any other Username, this Username has already been taken")
}

// ErrEmailTaken reports that the e-mail is already registered.
func ErrEmailTaken(email string) error {
	return oops.In(DomainSignup).Code(CodeEmailTaken).
		With("email", email).
		Errorf("This user has already been registered, try with any other emailId")
}

// ErrUnknownUsername reports a sign-in attempt for a username that does not exist.
func ErrUnknownUsername(username string) error {
	return oops.In(DomainSignin).Code(CodeUnknownUsername).
		With("username", username).
		Errorf("This username does not exist")
}

// ErrPasswordFailed reports a sign-in attempt with the wrong password.
func ErrPasswordFailed() error {
	return oops.In(DomainSignin).Code(CodePasswordFailed).Errorf("Password failed")
}

// ErrNotSignedIn reports that no session matches the presented token.
func ErrNotSignedIn() error {
	return oops.In(DomainAuthorization).Code(CodeNotSignedIn).Errorf("User has not signed in")
}

// ErrSignedOut reports that the matching session is no longer active.
func ErrSignedOut(state SessionState) error {
	return oops.In(DomainAuthorization).Code(CodeSignedOut).
		With("session_state", state.String()).
		Errorf("User is signed out. Sign in first to continue")
}

// ErrNoSession reports a sign-out with a token that matches no session.
func ErrNoSession() error {
	return oops.In(DomainSignout).Code(CodeNoSession).Errorf("User is not Signed in")
}
