// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/quorumqa/quorum/internal/auth"
	"github.com/quorumqa/quorum/internal/store"
)

const sessionColumns = `id, user_id, token_hash, issued_at, expires_at, logged_out_at`

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	pool store.Querier
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool store.Querier) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	_, err := store.QuerierFrom(ctx, r.pool).Exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		session.ID.String(),
		session.UserID.String(),
		session.TokenHash,
		session.IssuedAt,
		session.ExpiresAt,
		session.LoggedOutAt,
	)
	if violatedIndex(err) == tokenHashIndex {
		return oops.Code("SESSION_TOKEN_COLLISION").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Session, error) {
	row := store.QuerierFrom(ctx, r.pool).QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id.String())

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_BY_ID_FAILED").
			With("operation", "get session by id").
			With("id", id.String()).
			Wrap(err)
	}
	return session, nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	row := store.QuerierFrom(ctx, r.pool).QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token_hash = $1`, tokenHash)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_BY_TOKEN_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}
	return session, nil
}

// Update persists the logout stamp of a session. The other columns are
// immutable once a session is issued.
func (r *SessionRepository) Update(ctx context.Context, session *auth.Session) error {
	result, err := store.QuerierFrom(ctx, r.pool).Exec(ctx,
		`UPDATE sessions SET logged_out_at = $2 WHERE id = $1`,
		session.ID.String(), session.LoggedOutAt)
	if err != nil {
		return oops.Code("SESSION_UPDATE_FAILED").
			With("operation", "update logged_out_at").
			With("id", session.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").
			With("id", session.ID.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

func scanSession(row pgx.Row) (*auth.Session, error) {
	var (
		idStr, userIDStr string
		loggedOutAt      *time.Time
		session          auth.Session
	)
	err := row.Scan(&idStr, &userIDStr, &session.TokenHash, &session.IssuedAt, &session.ExpiresAt, &loggedOutAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("SESSION_SCAN_FAILED").
			With("operation", "scan session").
			Wrap(err)
	}

	if session.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("SESSION_INVALID_ID").With("id", idStr).Wrap(err)
	}
	if session.UserID, err = ulid.Parse(userIDStr); err != nil {
		return nil, oops.Code("SESSION_INVALID_USER_ID").With("user_id", userIDStr).Wrap(err)
	}
	session.LoggedOutAt = loggedOutAt
	return &session, nil
}

var _ auth.SessionRepository = (*SessionRepository)(nil)
