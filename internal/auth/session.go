// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SessionTTL is how long a session stays valid after sign-in.
const SessionTTL = 8 * time.Hour

// SessionState is the lifecycle state of a Session at a point in time.
type SessionState int

// Session states. Expired and LoggedOut are terminal.
const (
	SessionActive SessionState = iota
	SessionExpired
	SessionLoggedOut
)

func (s SessionState) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionExpired:
		return "expired"
	case SessionLoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// Session is a record of one successful sign-in. It is never deleted.
type Session struct {
	ID          ulid.ULID
	UserID      ulid.ULID
	TokenHash   string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	LoggedOutAt *time.Time

	// AccessToken is the plaintext bearer token. It is set only on the
	// session returned from sign-in and is never persisted.
	AccessToken string
}

// NewSession creates a validated Session issued at issuedAt.
func NewSession(userID ulid.ULID, token string, issuedAt time.Time) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if token == "" {
		return nil, oops.Code("SESSION_TOKEN_EMPTY").Errorf("session token cannot be empty")
	}
	if issuedAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_ISSUED_AT").Errorf("issue time cannot be zero")
	}
	return &Session{
		ID:          ulid.Make(),
		UserID:      userID,
		TokenHash:   HashToken(token),
		IssuedAt:    issuedAt,
		ExpiresAt:   issuedAt.Add(SessionTTL),
		AccessToken: token,
	}, nil
}

// StateAt returns the state of the session at t.
// Logout takes precedence over expiry.
func (s *Session) StateAt(t time.Time) SessionState {
	if s.LoggedOutAt != nil {
		return SessionLoggedOut
	}
	if !t.Before(s.ExpiresAt) {
		return SessionExpired
	}
	return SessionActive
}

// IsActiveAt reports whether the session is usable at t.
func (s *Session) IsActiveAt(t time.Time) bool {
	return s.StateAt(t) == SessionActive
}

// MarkLoggedOut stamps the logout time, overwriting any previous one.
func (s *Session) MarkLoggedOut(at time.Time) {
	s.LoggedOutAt = &at
}

// HashToken computes the SHA256 hash of a bearer token.
// Sessions are stored and looked up by this hash.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByID retrieves a session by its ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Session, error)

	// GetByTokenHash retrieves a session by its token hash.
	// Returns ErrNotFound if no session matches.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// Update persists a mutated session.
	Update(ctx context.Context, session *Session) error
}
