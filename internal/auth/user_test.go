// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumqa/quorum/internal/auth"
	"github.com/quorumqa/quorum/pkg/errutil"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"simple", "alice", false},
		{"dotted", "john.doe", false},
		{"two characters", "al", false},
		{"leading digit", "1alice", false},
		{"dashed", "bob-smith", false},
		{"long", strings.Repeat("a", 100), false},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateUsername(tt.username)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, auth.KindInvalidInput, auth.KindOf(err))
				errutil.AssertErrorContext(t, err, "field", "username")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"a@x.io", false},
		{"First.Last@Example.com", false},
		{"no-at-sign", false},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := auth.ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorContext(t, err, "field", "email")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewUser(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	in := auth.RegisterInput{Username: "alice", Email: "a@x.io", Password: "pw"}

	t.Run("defaults role and status", func(t *testing.T) {
		u, err := auth.NewUser(in, "salt", "hash", now)
		require.NoError(t, err)
		assert.Equal(t, auth.UserStatusActive, u.Status)
		assert.Equal(t, auth.RoleNonAdmin, u.Role)
		assert.Equal(t, now, u.CreatedAt)
		assert.Nil(t, u.LastLoginAt)
	})

	t.Run("keeps explicit role", func(t *testing.T) {
		admin := in
		admin.Role = auth.RoleAdmin
		u, err := auth.NewUser(admin, "salt", "hash", now)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, u.Role)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		bad := in
		bad.Role = "root"
		_, err := auth.NewUser(bad, "salt", "hash", now)
		assert.Equal(t, auth.KindInvalidInput, auth.KindOf(err))
	})

	t.Run("requires credentials", func(t *testing.T) {
		_, err := auth.NewUser(in, "", "hash", now)
		errutil.AssertErrorCode(t, err, "USER_INVALID_CREDENTIALS")
	})

	t.Run("record login stamps both times", func(t *testing.T) {
		u, err := auth.NewUser(in, "salt", "hash", now)
		require.NoError(t, err)
		later := now.Add(time.Hour)
		u.RecordLogin(later)
		require.NotNil(t, u.LastLoginAt)
		assert.Equal(t, later, *u.LastLoginAt)
		assert.Equal(t, later, u.UpdatedAt)
	})
}
