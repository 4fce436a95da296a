// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumqa/quorum/internal/auth"
	"github.com/quorumqa/quorum/pkg/errutil"
)

func TestArgon2idCipher_HashNew(t *testing.T) {
	cipher := auth.NewArgon2idCipher()

	t.Run("produces salt and hash", func(t *testing.T) {
		salt, hash, err := cipher.HashNew("password123")
		require.NoError(t, err)
		assert.NotEmpty(t, salt)
		assert.NotEmpty(t, hash)
		assert.NotEqual(t, salt, hash)
	})

	t.Run("same password gets a fresh salt each time", func(t *testing.T) {
		salt1, hash1, err := cipher.HashNew("samepassword")
		require.NoError(t, err)
		salt2, hash2, err := cipher.HashNew("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, salt1, salt2)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, _, err := cipher.HashNew("")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_EMPTY_PASSWORD")
	})
}

func TestArgon2idCipher_Hash(t *testing.T) {
	cipher := auth.NewArgon2idCipher()
	salt, hash, err := cipher.HashNew("s3cret")
	require.NoError(t, err)

	t.Run("is deterministic for a salt", func(t *testing.T) {
		again, err := cipher.Hash("s3cret", salt)
		require.NoError(t, err)
		assert.Equal(t, hash, again)
	})

	t.Run("differs for another password", func(t *testing.T) {
		other, err := cipher.Hash("s3cret!", salt)
		require.NoError(t, err)
		assert.NotEqual(t, hash, other)
	})

	t.Run("rejects malformed salt", func(t *testing.T) {
		_, err := cipher.Hash("s3cret", "%%%")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_SALT")
	})

	t.Run("rejects empty salt", func(t *testing.T) {
		_, err := cipher.Hash("s3cret", "")
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_SALT")
	})
}

func TestVerifyPassword(t *testing.T) {
	cipher := auth.NewArgon2idCipher()
	salt, hash, err := cipher.HashNew("correctpassword")
	require.NoError(t, err)

	ok, err := auth.VerifyPassword(cipher, "correctpassword", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.VerifyPassword(cipher, "wrongpassword", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = auth.VerifyPassword(cipher, "correctpassword", "%%%", hash)
	assert.Error(t, err)
}
