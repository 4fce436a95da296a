// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Token configuration.
const (
	OpaqueTokenBytes   = 32 // 32 bytes = 64 hex chars
	MinJWTSecretLength = 32
	DefaultJWTIssuer   = "quorum"
)

// TokenIssuer mints bearer tokens for new sessions. Tokens are opaque to
// callers; validity is always decided by session lookup, never by parsing.
type TokenIssuer interface {
	Issue(userID ulid.ULID, issuedAt, expiresAt time.Time) (string, error)
}

// OpaqueIssuer issues random hex tokens.
type OpaqueIssuer struct{}

// NewOpaqueIssuer creates a new OpaqueIssuer.
func NewOpaqueIssuer() *OpaqueIssuer {
	return &OpaqueIssuer{}
}

// Issue returns a fresh random token. The arguments are not encoded.
func (i *OpaqueIssuer) Issue(_ ulid.ULID, _, _ time.Time) (string, error) {
	b := make([]byte, OpaqueTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", oops.Code("TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", OpaqueTokenBytes).
			Wrap(err)
	}
	return hex.EncodeToString(b), nil
}

// JWTIssuer issues HS256-signed JWTs keyed by a server secret.
type JWTIssuer struct {
	secret []byte
	issuer string
}

// NewJWTIssuer creates a JWTIssuer. The secret must be at least
// MinJWTSecretLength bytes.
func NewJWTIssuer(secret []byte, issuer string) (*JWTIssuer, error) {
	if len(secret) < MinJWTSecretLength {
		return nil, oops.Code("TOKEN_INVALID_SECRET").
			With("min", MinJWTSecretLength).
			Errorf("jwt secret must be at least %d bytes", MinJWTSecretLength)
	}
	if issuer == "" {
		issuer = DefaultJWTIssuer
	}
	return &JWTIssuer{secret: secret, issuer: issuer}, nil
}

// Issue signs a token for userID. Every token carries a fresh jti so two
// sign-ins in the same second still yield distinct tokens.
func (i *JWTIssuer) Issue(userID ulid.ULID, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    i.issuer,
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        ulid.Make().String(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return signed, nil
}

// Parse verifies the signature of token and returns its claims, evaluating
// expiry at now. It is a diagnostic aid; authorization never relies on it.
func (i *JWTIssuer) Parse(token string, now time.Time) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, oops.Code("TOKEN_INVALID").Wrap(err)
	}
	return claims, nil
}

var (
	_ TokenIssuer = (*OpaqueIssuer)(nil)
	_ TokenIssuer = (*JWTIssuer)(nil)
)
