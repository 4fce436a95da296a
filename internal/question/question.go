// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

// Package question implements the protected "create question" action.
package question

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Domain and codes for question errors.
const (
	Domain             = "question"
	CodeInvalidContent = "QUES-001"
)

// MaxContentLength bounds question text, in runes.
const MaxContentLength = 500

// Question is a question posted by a signed-in user.
type Question struct {
	ID        ulid.ULID
	Content   string
	UserID    ulid.ULID
	CreatedAt time.Time
}

// NewQuestion creates a Question owned by userID. Content is trimmed and
// must be non-empty.
func NewQuestion(content string, userID ulid.ULID, now time.Time) (*Question, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrInvalidContent("question content cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, ErrInvalidContent("question content is too long")
	}
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("QUESTION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	return &Question{
		ID:        ulid.Make(),
		Content:   content,
		UserID:    userID,
		CreatedAt: now,
	}, nil
}

// ErrInvalidContent reports unusable question text.
func ErrInvalidContent(reason string) error {
	return oops.In(Domain).Code(CodeInvalidContent).Errorf("%s", reason)
}

// IsInvalidContent reports whether err is a QUES-001 error.
func IsInvalidContent(err error) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	code, _ := oopsErr.Code().(string)
	return oopsErr.Domain() == Domain && code == CodeInvalidContent
}

// Repository manages question persistence.
type Repository interface {
	// Create stores a new question.
	Create(ctx context.Context, q *Question) error

	// GetByID retrieves a question by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Question, error)
}
