// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordCipher derives salted password hashes.
type PasswordCipher interface {
	// HashNew draws a fresh salt and hashes plaintext with it.
	HashNew(plaintext string) (salt, hash string, err error)

	// Hash re-derives the hash of plaintext under an existing salt.
	// The result is deterministic for a given (plaintext, salt).
	Hash(plaintext, salt string) (string, error)
}

// Argon2idCipher implements PasswordCipher using argon2id.
// Salts and hashes are encoded as unpadded standard base64.
type Argon2idCipher struct{}

// NewArgon2idCipher creates a new Argon2idCipher.
func NewArgon2idCipher() *Argon2idCipher {
	return &Argon2idCipher{}
}

// HashNew draws a random salt and hashes plaintext with it.
func (c *Argon2idCipher) HashNew(plaintext string) (salt, hash string, err error) {
	if plaintext == "" {
		return "", "", ErrEmptyPassword
	}

	saltBytes := make([]byte, argon2SaltLen)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	salt = base64.RawStdEncoding.EncodeToString(saltBytes)
	return salt, c.derive(plaintext, saltBytes), nil
}

// Hash re-derives the hash of plaintext under salt.
func (c *Argon2idCipher) Hash(plaintext, salt string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	saltBytes, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil {
		return "", oops.Code("AUTH_INVALID_SALT").Wrap(err)
	}
	if len(saltBytes) == 0 {
		return "", oops.Code("AUTH_INVALID_SALT").Errorf("salt cannot be empty")
	}
	return c.derive(plaintext, saltBytes), nil
}

func (c *Argon2idCipher) derive(plaintext string, salt []byte) string {
	key := argon2.IDKey([]byte(plaintext), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return base64.RawStdEncoding.EncodeToString(key)
}

// VerifyPassword re-derives the hash of candidate and compares it with
// storedHash in constant time. Returns (false, nil) on mismatch.
func VerifyPassword(cipher PasswordCipher, candidate, salt, storedHash string) (bool, error) {
	computed, err := cipher.Hash(candidate, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1, nil
}

var _ PasswordCipher = (*Argon2idCipher)(nil)
