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

const userColumns = `id, username, email, salt, password_hash, status, role,
	first_name, last_name, about_me, date_of_birth, country, contact_number,
	created_at, updated_at, last_login_at`

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool store.Querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool store.Querier) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := store.QuerierFrom(ctx, r.pool).Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		user.ID.String(),
		user.Username,
		user.Email,
		user.Salt,
		user.PasswordHash,
		string(user.Status),
		string(user.Role),
		user.Profile.FirstName,
		user.Profile.LastName,
		user.Profile.AboutMe,
		user.Profile.DateOfBirth,
		user.Profile.Country,
		user.Profile.ContactNumber,
		user.CreatedAt,
		user.UpdatedAt,
		user.LastLoginAt,
	)
	if err != nil {
		if sentinel := conflictSentinel(err); sentinel != nil {
			return oops.Code("USER_CONFLICT").
				With("username", user.Username).
				Wrap(errors.Join(sentinel, err))
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	row := store.QuerierFrom(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id.String())
	return r.get(row, "id", id.String())
}

// GetByUsername retrieves a user by exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := store.QuerierFrom(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return r.get(row, "username", username)
}

// GetByEmail retrieves a user by exact e-mail.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := store.QuerierFrom(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return r.get(row, "email", email)
}

// Update updates an existing user.
func (r *UserRepository) Update(ctx context.Context, user *auth.User) error {
	result, err := store.QuerierFrom(ctx, r.pool).Exec(ctx, `
		UPDATE users SET
			email = $2, status = $3, role = $4,
			first_name = $5, last_name = $6, about_me = $7,
			date_of_birth = $8, country = $9, contact_number = $10,
			updated_at = $11, last_login_at = $12
		WHERE id = $1
	`,
		user.ID.String(),
		user.Email,
		string(user.Status),
		string(user.Role),
		user.Profile.FirstName,
		user.Profile.LastName,
		user.Profile.AboutMe,
		user.Profile.DateOfBirth,
		user.Profile.Country,
		user.Profile.ContactNumber,
		user.UpdatedAt,
		user.LastLoginAt,
	)
	if err != nil {
		if sentinel := conflictSentinel(err); sentinel != nil {
			return oops.Code("USER_CONFLICT").
				With("id", user.ID.String()).
				Wrap(errors.Join(sentinel, err))
		}
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update user").
			With("id", user.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", user.ID.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) get(row pgx.Row, key, value string) (*auth.User, error) {
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With(key, value).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "get user by "+key).
			With(key, value).
			Wrap(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		idStr       string
		status      string
		role        string
		lastLoginAt *time.Time
		user        auth.User
	)

	err := row.Scan(
		&idStr,
		&user.Username,
		&user.Email,
		&user.Salt,
		&user.PasswordHash,
		&status,
		&role,
		&user.Profile.FirstName,
		&user.Profile.LastName,
		&user.Profile.AboutMe,
		&user.Profile.DateOfBirth,
		&user.Profile.Country,
		&user.Profile.ContactNumber,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLoginAt,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("USER_SCAN_FAILED").
			With("operation", "scan user").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_INVALID_ID").
			With("operation", "parse user id").
			With("id", idStr).
			Wrap(err)
	}

	user.ID = id
	user.Status = auth.UserStatus(status)
	user.Role = auth.Role(role)
	user.LastLoginAt = lastLoginAt
	return &user, nil
}

var _ auth.UserRepository = (*UserRepository)(nil)
