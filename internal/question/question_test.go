// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package question_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumqa/quorum/internal/question"
	"github.com/quorumqa/quorum/pkg/errutil"
)

func TestNewQuestion(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	owner := ulid.Make()

	tests := []struct {
		name      string
		content   string
		userID    ulid.ULID
		wantCode  string
		wantValue string
	}{
		{name: "trims content", content: "  How do I test?\n", userID: owner, wantValue: "How do I test?"},
		{name: "max length accepted", content: strings.Repeat("q", question.MaxContentLength), userID: owner,
			wantValue: strings.Repeat("q", question.MaxContentLength)},
		{name: "empty", content: "", userID: owner, wantCode: "QUES-001"},
		{name: "whitespace only", content: " \t ", userID: owner, wantCode: "QUES-001"},
		{name: "too long", content: strings.Repeat("q", question.MaxContentLength+1), userID: owner, wantCode: "QUES-001"},
		{name: "zero owner", content: "why?", wantCode: "QUESTION_INVALID_USER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := question.NewQuestion(tt.content, tt.userID, now)
			if tt.wantCode != "" {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, q.Content)
			assert.Equal(t, owner, q.UserID)
			assert.Equal(t, now, q.CreatedAt)
			assert.NotEqual(t, ulid.ULID{}, q.ID)
		})
	}
}

func TestIsInvalidContent(t *testing.T) {
	assert.True(t, question.IsInvalidContent(question.ErrInvalidContent("bad")))
	assert.False(t, question.IsInvalidContent(errors.New("bad")))
	assert.False(t, question.IsInvalidContent(nil))
}
