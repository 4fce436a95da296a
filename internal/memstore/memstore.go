// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

// Package memstore implements the auth and question repositories in memory
// for development and testing. Units of work are serialized and a failed
// unit restores the state it started from.
package memstore

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/quorumqa/quorum/internal/auth"
	"github.com/quorumqa/quorum/internal/question"
)

// DB holds all entities. The zero value is not usable; call New.
type DB struct {
	txMu sync.Mutex // serializes units of work
	mu   sync.Mutex // guards the maps below
	data state
}

type state struct {
	users           map[ulid.ULID]auth.User
	usersByUsername map[string]ulid.ULID
	usersByEmail    map[string]ulid.ULID
	sessions        map[ulid.ULID]auth.Session
	sessionsByHash  map[string]ulid.ULID
	questions       map[ulid.ULID]question.Question
}

func newState() state {
	return state{
		users:           make(map[ulid.ULID]auth.User),
		usersByUsername: make(map[string]ulid.ULID),
		usersByEmail:    make(map[string]ulid.ULID),
		sessions:        make(map[ulid.ULID]auth.Session),
		sessionsByHash:  make(map[string]ulid.ULID),
		questions:       make(map[ulid.ULID]question.Question),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.usersByUsername {
		c.usersByUsername[k] = v
	}
	for k, v := range s.usersByEmail {
		c.usersByEmail[k] = v
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	for k, v := range s.sessionsByHash {
		c.sessionsByHash[k] = v
	}
	for k, v := range s.questions {
		c.questions[k] = v
	}
	return c
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{data: newState()}
}

type txKey struct{}

// InTransaction runs fn with exclusive access to the database. If fn
// returns an error every write it made is discarded. Nested calls join the
// outer unit; a unit of work on another DB does not.
func (db *DB) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if owner, _ := ctx.Value(txKey{}).(*DB); owner == db {
		return fn(ctx)
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.Lock()
	snapshot := db.data.clone()
	db.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, db)); err != nil {
		db.mu.Lock()
		db.data = snapshot
		db.mu.Unlock()
		return err
	}
	return nil
}

// Ping always succeeds. It lets DB serve as a readiness check.
func (db *DB) Ping(context.Context) error {
	return nil
}

// Users returns the auth.UserRepository view of db.
func (db *DB) Users() *UserRepository {
	return &UserRepository{db: db}
}

// Sessions returns the auth.SessionRepository view of db.
func (db *DB) Sessions() *SessionRepository {
	return &SessionRepository{db: db}
}

// Questions returns the question.Repository view of db.
func (db *DB) Questions() *QuestionRepository {
	return &QuestionRepository{db: db}
}

// --- UserRepository ---

// UserRepository implements auth.UserRepository.
type UserRepository struct {
	db *DB
}

// Create stores a new user, enforcing username and e-mail uniqueness.
func (r *UserRepository) Create(_ context.Context, user *auth.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	d := &r.db.data
	if _, ok := d.usersByUsername[user.Username]; ok {
		return oops.Code("USER_CONFLICT").With("username", user.Username).Wrap(auth.ErrUsernameConflict)
	}
	if _, ok := d.usersByEmail[user.Email]; ok {
		return oops.Code("USER_CONFLICT").With("email", user.Email).Wrap(auth.ErrEmailConflict)
	}
	d.users[user.ID] = *user
	d.usersByUsername[user.Username] = user.ID
	d.usersByEmail[user.Email] = user.ID
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.lookup(id, "id", id.String())
}

// GetByUsername retrieves a user by exact username.
func (r *UserRepository) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	id, ok := r.db.data.usersByUsername[username]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").With("username", username).Wrap(auth.ErrNotFound)
	}
	return r.lookup(id, "username", username)
}

// GetByEmail retrieves a user by exact e-mail.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	id, ok := r.db.data.usersByEmail[email]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").With("email", email).Wrap(auth.ErrNotFound)
	}
	return r.lookup(id, "email", email)
}

// Update replaces a stored user. Username changes are not supported.
func (r *UserRepository) Update(_ context.Context, user *auth.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	d := &r.db.data
	old, ok := d.users[user.ID]
	if !ok {
		return oops.Code("USER_NOT_FOUND").With("id", user.ID.String()).Wrap(auth.ErrNotFound)
	}
	if old.Email != user.Email {
		if _, taken := d.usersByEmail[user.Email]; taken {
			return oops.Code("USER_CONFLICT").With("email", user.Email).Wrap(auth.ErrEmailConflict)
		}
		delete(d.usersByEmail, old.Email)
		d.usersByEmail[user.Email] = user.ID
	}
	updated := *user
	updated.Username = old.Username
	d.users[user.ID] = updated
	return nil
}

// lookup must be called with mu held.
func (r *UserRepository) lookup(id ulid.ULID, key, value string) (*auth.User, error) {
	u, ok := r.db.data.users[id]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").With(key, value).Wrap(auth.ErrNotFound)
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		u.LastLoginAt = &t
	}
	return &u, nil
}

// --- SessionRepository ---

// SessionRepository implements auth.SessionRepository.
type SessionRepository struct {
	db *DB
}

// Create stores a new session. The plaintext token is not retained.
func (r *SessionRepository) Create(_ context.Context, session *auth.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	d := &r.db.data
	if _, ok := d.sessionsByHash[session.TokenHash]; ok {
		return oops.Code("SESSION_TOKEN_COLLISION").
			With("user_id", session.UserID.String()).
			Errorf("token hash already stored")
	}
	stored := *session
	stored.AccessToken = ""
	d.sessions[session.ID] = stored
	d.sessionsByHash[session.TokenHash] = session.ID
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(_ context.Context, id ulid.ULID) (*auth.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.lookup(id)
}

// GetByTokenHash retrieves a session by its token hash.
func (r *SessionRepository) GetByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	id, ok := r.db.data.sessionsByHash[tokenHash]
	if !ok {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return r.lookup(id)
}

// Update persists the logout stamp of a session.
func (r *SessionRepository) Update(_ context.Context, session *auth.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.data.sessions[session.ID]
	if !ok {
		return oops.Code("SESSION_NOT_FOUND").With("id", session.ID.String()).Wrap(auth.ErrNotFound)
	}
	if session.LoggedOutAt != nil {
		t := *session.LoggedOutAt
		stored.LoggedOutAt = &t
	} else {
		stored.LoggedOutAt = nil
	}
	r.db.data.sessions[session.ID] = stored
	return nil
}

// lookup must be called with mu held.
func (r *SessionRepository) lookup(id ulid.ULID) (*auth.Session, error) {
	s, ok := r.db.data.sessions[id]
	if !ok {
		return nil, oops.Code("SESSION_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	if s.LoggedOutAt != nil {
		t := *s.LoggedOutAt
		s.LoggedOutAt = &t
	}
	return &s, nil
}

// --- QuestionRepository ---

// QuestionRepository implements question.Repository.
type QuestionRepository struct {
	db *DB
}

// Create stores a new question.
func (r *QuestionRepository) Create(_ context.Context, q *question.Question) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.users[q.UserID]; !ok {
		return oops.Code("QUESTION_INSERT_FAILED").
			With("user_id", q.UserID.String()).
			Errorf("question owner does not exist")
	}
	r.db.data.questions[q.ID] = *q
	return nil
}

// GetByID retrieves a question by ID.
func (r *QuestionRepository) GetByID(_ context.Context, id ulid.ULID) (*question.Question, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	q, ok := r.db.data.questions[id]
	if !ok {
		return nil, oops.Code("QUESTION_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	return &q, nil
}

// Ensure interfaces are met.
var (
	_ auth.Transactor        = (*DB)(nil)
	_ auth.UserRepository    = (*UserRepository)(nil)
	_ auth.SessionRepository = (*SessionRepository)(nil)
	_ question.Repository    = (*QuestionRepository)(nil)
)
