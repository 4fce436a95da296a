// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

// Package api exposes the sign-up, sign-in, sign-out and question endpoints
// over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/oops"

	"github.com/quorumqa/quorum/internal/auth"
	"github.com/quorumqa/quorum/internal/observability"
	"github.com/quorumqa/quorum/internal/question"
)

// Route paths.
const (
	RouteSignup         = "/user/signup"
	RouteSignin         = "/user/signin"
	RouteSignout        = "/user/signout"
	RouteCreateQuestion = "/question/create"
)

// AccessTokenHeader carries the token issued on sign-in.
const AccessTokenHeader = "access-token"

// Sessions is the account surface the API drives.
type Sessions interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.User, error)
	Authenticate(ctx context.Context, username, password string) (*auth.Session, error)
	Terminate(ctx context.Context, token string) (*auth.User, error)
}

// Questions creates questions on behalf of a token holder.
type Questions interface {
	Create(ctx context.Context, token, content string) (*question.Question, error)
}

// Server serves the HTTP API.
type Server struct {
	addr       string
	echo       *echo.Echo
	sessions   Sessions
	questions  Questions
	logger     *slog.Logger
	metrics    *observability.Metrics
	legacy     bool
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records request counts and latencies into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLegacyStatusCodes answers every client error with 401.
func WithLegacyStatusCodes(enabled bool) Option {
	return func(s *Server) {
		s.legacy = enabled
	}
}

// NewServer creates a Server listening on addr once started.
func NewServer(addr string, sessions Sessions, questions Questions, opts ...Option) (*Server, error) {
	if sessions == nil {
		return nil, oops.Code("API_INVALID_DEPENDENCY").Errorf("sessions service is required")
	}
	if questions == nil {
		return nil, oops.Code("API_INVALID_DEPENDENCY").Errorf("questions service is required")
	}

	s := &Server{
		addr:      addr,
		sessions:  sessions,
		questions: questions,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(s.observe)

	e.POST(RouteSignup, s.signup)
	e.POST(RouteSignin, s.signin)
	e.POST(RouteSignout, s.signout)
	e.POST(RouteCreateQuestion, s.createQuestion)

	s.echo = e
	return s, nil
}

// Handler returns the API as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start begins serving. The returned channel receives a serve error, if
// any, and is closed when the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}
	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
