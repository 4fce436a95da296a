// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

// Package postgres implements question.Repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/quorumqa/quorum/internal/auth"
	"github.com/quorumqa/quorum/internal/question"
	"github.com/quorumqa/quorum/internal/store"
)

// QuestionRepository implements question.Repository using PostgreSQL.
type QuestionRepository struct {
	pool store.Querier
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool store.Querier) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Create stores a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *question.Question) error {
	_, err := store.QuerierFrom(ctx, r.pool).Exec(ctx, `
		INSERT INTO questions (id, content, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, q.ID.String(), q.Content, q.UserID.String(), q.CreatedAt)
	if err != nil {
		return oops.Code("QUESTION_INSERT_FAILED").
			With("operation", "insert question").
			With("user_id", q.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a question by ID.
func (r *QuestionRepository) GetByID(ctx context.Context, id ulid.ULID) (*question.Question, error) {
	var (
		idStr, userIDStr string
		q                question.Question
	)
	err := store.QuerierFrom(ctx, r.pool).QueryRow(ctx, `
		SELECT id, content, user_id, created_at FROM questions WHERE id = $1
	`, id.String()).Scan(&idStr, &q.Content, &userIDStr, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("QUESTION_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("QUESTION_GET_FAILED").
			With("operation", "get question by id").
			With("id", id.String()).
			Wrap(err)
	}
	if q.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("QUESTION_INVALID_ID").With("id", idStr).Wrap(err)
	}
	if q.UserID, err = ulid.Parse(userIDStr); err != nil {
		return nil, oops.Code("QUESTION_INVALID_USER_ID").With("user_id", userIDStr).Wrap(err)
	}
	return &q, nil
}

var _ question.Repository = (*QuestionRepository)(nil)
