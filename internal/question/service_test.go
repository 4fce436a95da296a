// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package question_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumqa/quorum/internal/auth"
	"github.com/quorumqa/quorum/internal/memstore"
	"github.com/quorumqa/quorum/internal/question"
	"github.com/quorumqa/quorum/pkg/errutil"
)

type stubAuthorizer struct {
	user *auth.User
	err  error
}

func (s stubAuthorizer) Authorize(context.Context, string) (*auth.User, error) {
	return s.user, s.err
}

type failingRepo struct{}

func (failingRepo) Create(context.Context, *question.Question) error { return errors.New("disk full") }

func (failingRepo) GetByID(context.Context, ulid.ULID) (*question.Question, error) {
	return nil, errors.New("disk full")
}

type env struct {
	db      *memstore.DB
	manager *auth.SessionManager
	service *question.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := memstore.New()
	manager, err := auth.NewSessionManager(db.Users(), db.Sessions(), auth.NewArgon2idCipher(), auth.NewOpaqueIssuer(), db)
	require.NoError(t, err)
	guard, err := auth.NewAuthorizationGuard(db.Sessions(), db.Users())
	require.NoError(t, err)
	service, err := question.NewService(guard, db.Questions(), db, nil)
	require.NoError(t, err)
	return &env{db: db, manager: manager, service: service}
}

func (e *env) signIn(t *testing.T) *auth.Session {
	t.Helper()
	ctx := context.Background()
	_, err := e.manager.Register(ctx, auth.RegisterInput{Username: "alice", Email: "a@x.io", Password: "s3cret"})
	require.NoError(t, err)
	s, err := e.manager.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	return s
}

func TestNewService_NilDependencies(t *testing.T) {
	db := memstore.New()
	guard := stubAuthorizer{}

	_, err := question.NewService(nil, db.Questions(), db, nil)
	assert.ErrorContains(t, err, "authorizer is required")
	_, err = question.NewService(guard, nil, db, nil)
	assert.ErrorContains(t, err, "questions repository is required")
	_, err = question.NewService(guard, db.Questions(), nil, nil)
	assert.ErrorContains(t, err, "transactor is required")
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores question for the caller", func(t *testing.T) {
		e := newEnv(t)
		s := e.signIn(t)

		q, err := e.service.Create(ctx, s.AccessToken, "What is a goroutine?")
		require.NoError(t, err)
		assert.Equal(t, s.UserID, q.UserID)

		stored, err := e.db.Questions().GetByID(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, "What is a goroutine?", stored.Content)
	})

	t.Run("unknown token is ATHR-001", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.service.Create(ctx, "bogus", "Why?")
		assert.Equal(t, auth.KindUnauthenticated, auth.KindOf(err))
	})

	t.Run("signed out caller is ATHR-002", func(t *testing.T) {
		e := newEnv(t)
		s := e.signIn(t)
		_, err := e.manager.Terminate(ctx, s.AccessToken)
		require.NoError(t, err)

		_, err = e.service.Create(ctx, s.AccessToken, "Why?")
		assert.Equal(t, auth.KindSessionInactive, auth.KindOf(err))
		errutil.AssertErrorCode(t, err, "ATHR-002")
	})

	t.Run("authorization is checked before content", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.service.Create(ctx, "bogus", "")
		assert.Equal(t, auth.KindUnauthenticated, auth.KindOf(err))
	})

	t.Run("empty content is QUES-001", func(t *testing.T) {
		e := newEnv(t)
		s := e.signIn(t)
		_, err := e.service.Create(ctx, s.AccessToken, "   ")
		assert.True(t, question.IsInvalidContent(err))
	})

	t.Run("persistence failure is wrapped", func(t *testing.T) {
		db := memstore.New()
		svc, err := question.NewService(stubAuthorizer{user: &auth.User{ID: ulid.Make()}}, failingRepo{}, db, nil)
		require.NoError(t, err)

		_, err = svc.Create(ctx, "tok", "Why?")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "QUESTION_CREATE_FAILED")
		assert.Equal(t, auth.KindInfrastructure, auth.KindOf(err))
	})
}
