// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/quorumqa/quorum/internal/api"
	"github.com/quorumqa/quorum/internal/auth"
	authpg "github.com/quorumqa/quorum/internal/auth/postgres"
	"github.com/quorumqa/quorum/internal/config"
	"github.com/quorumqa/quorum/internal/logging"
	"github.com/quorumqa/quorum/internal/memstore"
	"github.com/quorumqa/quorum/internal/observability"
	"github.com/quorumqa/quorum/internal/question"
	questionpg "github.com/quorumqa/quorum/internal/question/postgres"
	"github.com/quorumqa/quorum/internal/store"
	"github.com/quorumqa/quorum/internal/xdg"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API and, unless --metrics-addr is empty, the
metrics and health endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(xdg.ResolveConfigPath(configFile), cmd.Flags(), os.Getenv)
			if err != nil {
				return oops.With("operation", "load configuration").Wrap(err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, nil)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// backend is the persistence wiring for one store driver.
type backend struct {
	users     auth.UserRepository
	sessions  auth.SessionRepository
	questions question.Repository
	tx        auth.Transactor
	ping      func(ctx context.Context) error
	close     func()
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	if cfg.Store.Driver == config.DriverMemory {
		db := memstore.New()
		logger.WarnContext(ctx, "using in-memory store; data is lost on exit")
		return &backend{
			users:     db.Users(),
			sessions:  db.Sessions(),
			questions: db.Questions(),
			tx:        db,
			ping:      db.Ping,
			close:     func() {},
		}, nil
	}

	pool, err := store.Connect(ctx, cfg.Database.URL, store.ConnectOptions{Logger: logger})
	if err != nil {
		return nil, err
	}
	return &backend{
		users:     authpg.NewUserRepository(pool),
		sessions:  authpg.NewSessionRepository(pool),
		questions: questionpg.NewQuestionRepository(pool),
		tx:        store.NewTransactor(pool),
		ping:      pool.Ping,
		close:     pool.Close,
	}, nil
}

func newIssuer(cfg *config.Config) (auth.TokenIssuer, error) {
	if cfg.Auth.TokenFormat == config.TokenJWT {
		return auth.NewJWTIssuer([]byte(cfg.Auth.JWTSecret), auth.DefaultJWTIssuer)
	}
	return auth.NewOpaqueIssuer(), nil
}

// serveHooks lets tests observe a running server.
type serveHooks struct {
	// OnReady is called once both listeners are bound.
	OnReady func(apiAddr, metricsAddr string)
}

// runServe wires the services for cfg and serves until ctx is cancelled
// or a listener fails.
func runServe(ctx context.Context, cfg *config.Config, hooks *serveHooks) error {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := logging.SetDefault("quorum", version, cfg.Log.Format, level)

	logger.InfoContext(ctx, "starting quorum",
		"http_addr", cfg.HTTP.Addr,
		"store", cfg.Store.Driver,
		"session_policy", cfg.Auth.SessionPolicy,
		"token_format", cfg.Auth.TokenFormat)

	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return oops.With("operation", "open store").Wrap(err)
	}
	defer be.close()

	issuer, err := newIssuer(cfg)
	if err != nil {
		return oops.With("operation", "create token issuer").Wrap(err)
	}
	policy, err := auth.ParsePolicy(cfg.Auth.SessionPolicy)
	if err != nil {
		return err
	}

	manager, err := auth.NewSessionManager(be.users, be.sessions, auth.NewArgon2idCipher(), issuer, be.tx,
		auth.WithManagerLogger(logger))
	if err != nil {
		return err
	}
	guard, err := auth.NewAuthorizationGuard(be.sessions, be.users,
		auth.WithPolicy(policy), auth.WithGuardLogger(logger))
	if err != nil {
		return err
	}
	questions, err := question.NewService(guard, be.questions, be.tx, logger)
	if err != nil {
		return err
	}

	failed := make(chan error, 2)

	apiOpts := []api.Option{
		api.WithLogger(logger),
		api.WithLegacyStatusCodes(cfg.API.LegacyStatusCodes),
	}

	var obsServer *observability.Server
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServer(cfg.Metrics.Addr, be.ping, logger)
		auth.RegisterMetrics(obsServer.Registry())
		question.RegisterMetrics(obsServer.Registry())
		apiOpts = append(apiOpts, api.WithMetrics(obsServer.Metrics()))

		obsErrCh, startErr := obsServer.Start()
		if startErr != nil {
			return oops.With("operation", "start observability server").Wrap(startErr)
		}
		go monitorServerErrors(obsErrCh, failed, "observability", logger)
	}

	apiServer, err := api.NewServer(cfg.HTTP.Addr, manager, questions, apiOpts...)
	if err != nil {
		stopServers(logger, obsServer, nil)
		return err
	}
	apiErrCh, err := apiServer.Start()
	if err != nil {
		stopServers(logger, obsServer, nil)
		return oops.With("operation", "start api server").Wrap(err)
	}
	go monitorServerErrors(apiErrCh, failed, "api", logger)

	if hooks != nil && hooks.OnReady != nil {
		metricsAddr := ""
		if obsServer != nil {
			metricsAddr = obsServer.Addr()
		}
		hooks.OnReady(apiServer.Addr(), metricsAddr)
	}
	logger.InfoContext(ctx, "quorum ready", "api_addr", apiServer.Addr())

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-failed:
	}

	logger.Info("shutting down")
	stopServers(logger, obsServer, apiServer)
	logger.Info("shutdown complete")
	return serveErr
}

func stopServers(logger *slog.Logger, obs *observability.Server, apiServer *api.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if apiServer != nil {
		if err := apiServer.Stop(ctx); err != nil {
			logger.Warn("error stopping api server", "error", err)
		}
	}
	if obs != nil {
		if err := obs.Stop(ctx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}
}

// monitorServerErrors forwards a serve error from errCh to failed. It
// returns when errCh is closed.
func monitorServerErrors(errCh <-chan error, failed chan<- error, name string, logger *slog.Logger) {
	for err := range errCh {
		logger.Error("server failed", "server", name, "error", err)
		failed <- oops.With("server", name).Wrap(err)
	}
}
