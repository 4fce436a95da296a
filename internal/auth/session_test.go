// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumqa/quorum/internal/auth"
	"github.com/quorumqa/quorum/pkg/errutil"
)

func TestNewSession(t *testing.T) {
	issued := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	userID := ulid.Make()

	t.Run("expires eight hours after issue", func(t *testing.T) {
		s, err := auth.NewSession(userID, "tok", issued)
		require.NoError(t, err)
		assert.Equal(t, issued.Add(8*time.Hour), s.ExpiresAt)
		assert.Equal(t, userID, s.UserID)
		assert.Nil(t, s.LoggedOutAt)
	})

	t.Run("stores only the token hash", func(t *testing.T) {
		s, err := auth.NewSession(userID, "tok", issued)
		require.NoError(t, err)
		assert.Equal(t, auth.HashToken("tok"), s.TokenHash)
		assert.NotEqual(t, "tok", s.TokenHash)
		assert.Equal(t, "tok", s.AccessToken)
	})

	tests := []struct {
		name   string
		userID ulid.ULID
		token  string
		issued time.Time
		code   string
	}{
		{"zero user", ulid.ULID{}, "tok", issued, "SESSION_INVALID_USER"},
		{"empty token", userID, "", issued, "SESSION_TOKEN_EMPTY"},
		{"zero issue time", userID, "tok", time.Time{}, "SESSION_INVALID_ISSUED_AT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.NewSession(tt.userID, tt.token, tt.issued)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.code)
		})
	}
}

func TestSession_StateAt(t *testing.T) {
	issued := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	s, err := auth.NewSession(ulid.Make(), "tok", issued)
	require.NoError(t, err)

	assert.Equal(t, auth.SessionActive, s.StateAt(issued))
	assert.Equal(t, auth.SessionActive, s.StateAt(issued.Add(auth.SessionTTL-time.Nanosecond)))
	assert.Equal(t, auth.SessionExpired, s.StateAt(issued.Add(auth.SessionTTL)))
	assert.False(t, s.IsActiveAt(issued.Add(9*time.Hour)))

	s.MarkLoggedOut(issued.Add(time.Hour))
	assert.Equal(t, auth.SessionLoggedOut, s.StateAt(issued.Add(2*time.Hour)))
	assert.Equal(t, auth.SessionLoggedOut, s.StateAt(issued.Add(9*time.Hour)), "logout wins over expiry")
}

func TestHashToken(t *testing.T) {
	assert.Equal(t, auth.HashToken("abc"), auth.HashToken("abc"))
	assert.NotEqual(t, auth.HashToken("abc"), auth.HashToken("abd"))
	assert.Len(t, auth.HashToken("abc"), 64)
}
