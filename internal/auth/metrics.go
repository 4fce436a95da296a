// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quorumqa/quorum/pkg/errutil"
)

// Operation labels for auth metrics.
const (
	OpRegister     = "register"
	OpAuthenticate = "authenticate"
	OpTerminate    = "terminate"
	OpAuthorize    = "authorize"
)

// OutcomeSuccess labels operations that returned no error. Failed operations
// are labelled with their Kind.
const OutcomeSuccess = "success"

// Operations is the counter for auth operations by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Operations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quorum_auth_operations_total",
		Help: "Total number of auth operations",
	},
	[]string{"operation", "outcome"},
)

// OperationDuration is the histogram for auth operation duration.
// Use RegisterMetrics to register this with a Prometheus registry.
var OperationDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "quorum_auth_operation_duration_seconds",
		Help:    "Auth operation duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// RegisterMetrics registers auth package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Operations)
	reg.MustRegister(OperationDuration)
}

// observe closes out one operation: span status, metrics, and a log line
// for anything that is not a plain success.
func observe(ctx context.Context, logger *slog.Logger, span trace.Span, op string, start time.Time, err error) {
	defer span.End()
	OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err == nil {
		Operations.WithLabelValues(op, OutcomeSuccess).Inc()
		return
	}

	kind := KindOf(err)
	Operations.WithLabelValues(op, kind.String()).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if kind == KindInfrastructure {
		errutil.LogError(ctx, logger, op+" failed", err)
		return
	}
	logger.InfoContext(ctx, "auth operation rejected",
		"operation", op,
		"kind", kind.String(),
		"code", ErrCode(err))
}
