// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("quorum/auth")

// Transactor runs fn as one atomic unit of work. Repositories called with
// the context passed to fn participate in it. A non-nil error from fn
// rolls everything back and is returned unchanged.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SessionManager implements sign-up, sign-in and sign-out.
type SessionManager struct {
	users    UserRepository
	sessions SessionRepository
	cipher   PasswordCipher
	issuer   TokenIssuer
	tx       Transactor
	logger   *slog.Logger
	now      func() time.Time
}

// ManagerOption configures a SessionManager during construction.
type ManagerOption func(*SessionManager)

// WithManagerLogger sets the logger. Defaults to slog.Default().
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *SessionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithManagerClock overrides the time source.
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *SessionManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewSessionManager creates a SessionManager. Every dependency is required.
func NewSessionManager(
	users UserRepository,
	sessions SessionRepository,
	cipher PasswordCipher,
	issuer TokenIssuer,
	tx Transactor,
	opts ...ManagerOption,
) (*SessionManager, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("sessions repository is required")
	}
	if cipher == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("password cipher is required")
	}
	if issuer == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("token issuer is required")
	}
	if tx == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("transactor is required")
	}
	m := &SessionManager{
		users:    users,
		sessions: sessions,
		cipher:   cipher,
		issuer:   issuer,
		tx:       tx,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Register creates an active user. The username is checked before the
// e-mail, so a request that collides on both reports SGR-001.
func (m *SessionManager) Register(ctx context.Context, in RegisterInput) (user *User, err error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	start := time.Now()
	defer func() { observe(ctx, m.logger, span, OpRegister, start, err) }()

	if err = in.Validate(); err != nil {
		return nil, err
	}

	err = m.tx.InTransaction(ctx, func(ctx context.Context) error {
		if _, lookupErr := m.users.GetByUsername(ctx, in.Username); lookupErr == nil {
			return ErrUsernameTaken(in.Username)
		} else if !errors.Is(lookupErr, ErrNotFound) {
			return oops.Code("AUTH_REGISTER_FAILED").
				With("operation", "get user by username").
				Wrap(lookupErr)
		}

		if _, lookupErr := m.users.GetByEmail(ctx, in.Email); lookupErr == nil {
			return ErrEmailTaken(in.Email)
		} else if !errors.Is(lookupErr, ErrNotFound) {
			return oops.Code("AUTH_REGISTER_FAILED").
				With("operation", "get user by email").
				Wrap(lookupErr)
		}

		salt, hash, hashErr := m.cipher.HashNew(in.Password)
		if hashErr != nil {
			return oops.Code("AUTH_REGISTER_FAILED").
				With("operation", "hash password").
				Wrap(hashErr)
		}

		u, newErr := NewUser(in, salt, hash, m.now())
		if newErr != nil {
			return newErr
		}

		if createErr := m.users.Create(ctx, u); createErr != nil {
			switch {
			case errors.Is(createErr, ErrUsernameConflict):
				return ErrUsernameTaken(in.Username)
			case errors.Is(createErr, ErrEmailConflict):
				return ErrEmailTaken(in.Email)
			}
			return oops.Code("AUTH_REGISTER_FAILED").
				With("operation", "persist user").
				Wrap(createErr)
		}

		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("user.id", user.ID.String()))
	return user, nil
}

// Authenticate verifies credentials and opens an 8-hour session. The
// returned session carries the plaintext token in AccessToken.
func (m *SessionManager) Authenticate(ctx context.Context, username, password string) (session *Session, err error) {
	ctx, span := tracer.Start(ctx, "auth.authenticate")
	start := time.Now()
	defer func() { observe(ctx, m.logger, span, OpAuthenticate, start, err) }()

	err = m.tx.InTransaction(ctx, func(ctx context.Context) error {
		u, lookupErr := m.users.GetByUsername(ctx, username)
		if errors.Is(lookupErr, ErrNotFound) {
			return ErrUnknownUsername(username)
		}
		if lookupErr != nil {
			return oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by username").
				Wrap(lookupErr)
		}

		// An empty candidate can never match a stored hash.
		if password == "" {
			return ErrPasswordFailed()
		}
		valid, verifyErr := VerifyPassword(m.cipher, password, u.Salt, u.PasswordHash)
		if verifyErr != nil {
			return oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "verify password").
				With("user_id", u.ID.String()).
				Wrap(verifyErr)
		}
		if !valid {
			return ErrPasswordFailed()
		}

		now := m.now()
		token, issueErr := m.issuer.Issue(u.ID, now, now.Add(SessionTTL))
		if issueErr != nil {
			return oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "issue token").
				Wrap(issueErr)
		}

		s, newErr := NewSession(u.ID, token, now)
		if newErr != nil {
			return oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "create session").
				Wrap(newErr)
		}
		if createErr := m.sessions.Create(ctx, s); createErr != nil {
			return oops.Code("AUTH_SESSION_CREATE_FAILED").
				With("operation", "persist session").
				Wrap(createErr)
		}

		u.RecordLogin(now)
		if updateErr := m.users.Update(ctx, u); updateErr != nil {
			return oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "record login").
				With("user_id", u.ID.String()).
				Wrap(updateErr)
		}

		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("user.id", session.UserID.String()),
		attribute.String("session.id", session.ID.String()),
	)
	return session, nil
}

// Terminate signs the session identified by token out and returns its
// owner. Sessions that are already expired or logged out are stamped again.
func (m *SessionManager) Terminate(ctx context.Context, token string) (user *User, err error) {
	ctx, span := tracer.Start(ctx, "auth.terminate")
	start := time.Now()
	defer func() { observe(ctx, m.logger, span, OpTerminate, start, err) }()

	if token == "" {
		return nil, ErrNoSession()
	}

	err = m.tx.InTransaction(ctx, func(ctx context.Context) error {
		s, lookupErr := m.sessions.GetByTokenHash(ctx, HashToken(token))
		if errors.Is(lookupErr, ErrNotFound) {
			return ErrNoSession()
		}
		if lookupErr != nil {
			return oops.Code("AUTH_LOGOUT_FAILED").
				With("operation", "get session by token hash").
				Wrap(lookupErr)
		}

		s.MarkLoggedOut(m.now())
		if updateErr := m.sessions.Update(ctx, s); updateErr != nil {
			return oops.Code("AUTH_LOGOUT_FAILED").
				With("operation", "persist logout").
				With("session_id", s.ID.String()).
				Wrap(updateErr)
		}

		u, userErr := m.users.GetByID(ctx, s.UserID)
		if userErr != nil {
			return oops.Code("AUTH_LOGOUT_FAILED").
				With("operation", "get session owner").
				With("user_id", s.UserID.String()).
				Wrap(userErr)
		}

		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
