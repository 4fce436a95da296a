// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// UserStatus is the account state of a User.
type UserStatus string

// User statuses.
const (
	UserStatusActive UserStatus = "active"
)

// Role is the authorization role of a User.
type Role string

// Roles.
const (
	RoleNonAdmin Role = "nonadmin"
	RoleAdmin    Role = "admin"
)

// Profile holds the optional descriptive fields collected at sign-up.
type Profile struct {
	FirstName     string
	LastName      string
	AboutMe       string
	DateOfBirth   string
	Country       string
	ContactNumber string
}

// User is a registered account. Salt and PasswordHash never leave the service.
type User struct {
	ID           ulid.ULID
	Username     string
	Email        string
	Salt         string
	PasswordHash string
	Status       UserStatus
	Role         Role
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// RegisterInput carries the fields accepted by SessionManager.Register.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     Role
	Profile  Profile
}

// Validate checks the registration fields.
func (in RegisterInput) Validate() error {
	if err := ValidateUsername(in.Username); err != nil {
		return err
	}
	if err := ValidateEmail(in.Email); err != nil {
		return err
	}
	if in.Password == "" {
		return invalidInput("password", "password cannot be empty")
	}
	switch in.Role {
	case "", RoleNonAdmin, RoleAdmin:
	default:
		return oops.Code(CodeInvalidInput).
			With("field", "role").
			With("role", string(in.Role)).
			Errorf("unknown role %q", in.Role)
	}
	return nil
}

// NewUser creates an active User from validated input and derived credentials.
func NewUser(in RegisterInput, salt, passwordHash string, now time.Time) (*User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if salt == "" || passwordHash == "" {
		return nil, oops.Code("USER_INVALID_CREDENTIALS").Errorf("salt and password hash are required")
	}
	role := in.Role
	if role == "" {
		role = RoleNonAdmin
	}
	return &User{
		ID:           ulid.Make(),
		Username:     in.Username,
		Email:        in.Email,
		Salt:         salt,
		PasswordHash: passwordHash,
		Status:       UserStatusActive,
		Role:         role,
		Profile:      in.Profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// RecordLogin stamps a successful sign-in.
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.UpdatedAt = at
}

// ValidateUsername rejects an empty username. Any other value is accepted
// and stored exactly as given.
func ValidateUsername(username string) error {
	if username == "" {
		return invalidInput("username", "username cannot be empty")
	}
	return nil
}

// ValidateEmail rejects an empty e-mail address. Any other value is accepted
// and stored exactly as given.
func ValidateEmail(email string) error {
	if email == "" {
		return invalidInput("email", "email cannot be empty")
	}
	return nil
}

func invalidInput(field, msg string) error {
	return oops.Code(CodeInvalidInput).With("field", field).Errorf("%s", msg)
}

// UserRepository manages user persistence. Lookups by username and e-mail
// match exactly, case included, and return ErrNotFound when nothing matches.
type UserRepository interface {
	// Create stores a new user. Returns ErrUsernameConflict or
	// ErrEmailConflict when a uniqueness constraint rejects the write.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByEmail retrieves a user by e-mail.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *User) error
}
