// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quorumqa/quorum/internal/auth"
)

// Unique index names from the migrations.
const (
	usernameIndex  = "users_username_key"
	emailIndex     = "users_email_key"
	tokenHashIndex = "sessions_token_hash_key"
)

// violatedIndex returns the index named by a unique violation, or "".
func violatedIndex(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return ""
	}
	return pgErr.ConstraintName
}

// conflictSentinel maps a unique violation to the auth sentinel for the
// violated index. Returns nil for any other error.
func conflictSentinel(err error) error {
	switch violatedIndex(err) {
	case usernameIndex:
		return auth.ErrUsernameConflict
	case emailIndex:
		return auth.ErrEmailConflict
	}
	return nil
}
