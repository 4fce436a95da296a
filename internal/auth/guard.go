// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/attribute"
)

// Policy decides which sessions AuthorizationGuard accepts.
type Policy int

// Authorization policies.
const (
	// PolicyStrict accepts only sessions that are neither logged out nor expired.
	PolicyStrict Policy = iota
	// PolicyExistence accepts any session whose token is on record.
	PolicyExistence
)

func (p Policy) String() string {
	switch p {
	case PolicyStrict:
		return "strict"
	case PolicyExistence:
		return "existence"
	default:
		return "unknown"
	}
}

// ParsePolicy parses a policy name. The empty string selects PolicyStrict.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return PolicyStrict, nil
	case "existence":
		return PolicyExistence, nil
	default:
		return 0, oops.Code("AUTH_INVALID_POLICY").
			With("policy", s).
			Errorf("unknown session policy %q (want strict or existence)", s)
	}
}

// AuthorizationGuard resolves a bearer token to the signed-in user.
// It runs inside the caller's unit of work and opens none of its own.
type AuthorizationGuard struct {
	sessions SessionRepository
	users    UserRepository
	policy   Policy
	logger   *slog.Logger
	now      func() time.Time
}

// GuardOption configures an AuthorizationGuard during construction.
type GuardOption func(*AuthorizationGuard)

// WithPolicy sets the liveness policy. Defaults to PolicyStrict.
func WithPolicy(p Policy) GuardOption {
	return func(g *AuthorizationGuard) {
		g.policy = p
	}
}

// WithGuardLogger sets the logger. Defaults to slog.Default().
func WithGuardLogger(logger *slog.Logger) GuardOption {
	return func(g *AuthorizationGuard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithGuardClock overrides the time source.
func WithGuardClock(now func() time.Time) GuardOption {
	return func(g *AuthorizationGuard) {
		if now != nil {
			g.now = now
		}
	}
}

// NewAuthorizationGuard creates an AuthorizationGuard.
func NewAuthorizationGuard(sessions SessionRepository, users UserRepository, opts ...GuardOption) (*AuthorizationGuard, error) {
	if sessions == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("sessions repository is required")
	}
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("users repository is required")
	}
	g := &AuthorizationGuard{
		sessions: sessions,
		users:    users,
		policy:   PolicyStrict,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Policy returns the configured liveness policy.
func (g *AuthorizationGuard) Policy() Policy {
	return g.policy
}

// Authorize returns the owner of the session identified by token.
func (g *AuthorizationGuard) Authorize(ctx context.Context, token string) (user *User, err error) {
	ctx, span := tracer.Start(ctx, "auth.authorize")
	start := time.Now()
	defer func() { observe(ctx, g.logger, span, OpAuthorize, start, err) }()
	span.SetAttributes(attribute.String("auth.policy", g.policy.String()))

	if token == "" {
		return nil, ErrNotSignedIn()
	}

	s, err := g.sessions.GetByTokenHash(ctx, HashToken(token))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotSignedIn()
	}
	if err != nil {
		return nil, oops.Code("AUTH_AUTHORIZE_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if g.policy == PolicyStrict {
		if state := s.StateAt(g.now()); state != SessionActive {
			return nil, ErrSignedOut(state)
		}
	}

	u, err := g.users.GetByID(ctx, s.UserID)
	if err != nil {
		return nil, oops.Code("AUTH_AUTHORIZE_FAILED").
			With("operation", "get session owner").
			With("user_id", s.UserID.String()).
			Wrap(err)
	}

	span.SetAttributes(attribute.String("user.id", u.ID.String()))
	return u, nil
}
