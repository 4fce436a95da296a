// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package question

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/quorumqa/quorum/internal/auth"
	"github.com/quorumqa/quorum/pkg/errutil"
)

var tracer = otel.Tracer("quorum/question")

// Created counts questions persisted.
// Use RegisterMetrics to register this with a Prometheus registry.
var Created = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "quorum_questions_created_total",
	Help: "Total number of questions created",
})

// RegisterMetrics registers question package metrics with the given Prometheus registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Created)
}

// Authorizer resolves a bearer token to its user.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*auth.User, error)
}

// Service creates questions on behalf of signed-in users.
type Service struct {
	guard     Authorizer
	questions Repository
	tx        auth.Transactor
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a Service. A nil logger selects slog.Default().
func NewService(guard Authorizer, questions Repository, tx auth.Transactor, logger *slog.Logger) (*Service, error) {
	if guard == nil {
		return nil, oops.Code("QUESTION_INVALID_DEPENDENCY").Errorf("authorizer is required")
	}
	if questions == nil {
		return nil, oops.Code("QUESTION_INVALID_DEPENDENCY").Errorf("questions repository is required")
	}
	if tx == nil {
		return nil, oops.Code("QUESTION_INVALID_DEPENDENCY").Errorf("transactor is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{guard: guard, questions: questions, tx: tx, logger: logger, now: time.Now}, nil
}

// Create authorizes token and stores a question owned by its user, in one
// unit of work. Authorization failures are returned unchanged.
func (s *Service) Create(ctx context.Context, token, content string) (q *Question, err error) {
	ctx, span := tracer.Start(ctx, "question.create")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		user, authErr := s.guard.Authorize(ctx, token)
		if authErr != nil {
			return authErr
		}

		created, newErr := NewQuestion(content, user.ID, s.now())
		if newErr != nil {
			return newErr
		}
		if createErr := s.questions.Create(ctx, created); createErr != nil {
			return oops.Code("QUESTION_CREATE_FAILED").
				With("operation", "persist question").
				With("user_id", user.ID.String()).
				Wrap(createErr)
		}
		q = created
		return nil
	})
	if err != nil {
		if auth.KindOf(err) == auth.KindInfrastructure && !IsInvalidContent(err) {
			errutil.LogError(ctx, s.logger, "create question failed", err)
		}
		return nil, err
	}

	Created.Inc()
	span.SetAttributes(
		attribute.String("question.id", q.ID.String()),
		attribute.String("user.id", q.UserID.String()),
	)
	return q, nil
}
