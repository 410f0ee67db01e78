package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"portfolio/internal/auth"
	"portfolio/internal/config"
	"portfolio/internal/logging"
	"portfolio/internal/metrics"
	"portfolio/internal/server"
	"portfolio/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("info", "console")
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.Logger = logger

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Server stopped")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	if cfg.SecretGenerated {
		logger.Warn().Msg("Generated new session secret. Set SESSION_SECRET to keep sessions valid across restarts.")
	}

	db, err := storage.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	var m *metrics.Metrics
	var observer auth.Observer
	if cfg.MetricsEnabled {
		m = metrics.New()
		observer = m
	}

	service := auth.NewService(db, logger.With().Str("component", "auth").Logger(), observer)
	sessions := auth.NewSessions(db, server.NewJar(cfg),
		auth.WithSessionLogger(logger.With().Str("component", "session").Logger()),
		auth.WithSessionObserver(observer),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := service.Bootstrap(ctx, cfg.BootstrapEmail, cfg.BootstrapName); err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: server.NewRouter(server.Deps{
			DB:       db,
			Service:  service,
			Sessions: sessions,
			Metrics:  m,
			Logger:   logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info().
		Str("addr", srv.Addr).
		Str("env", cfg.Env).
		Str("database_driver", cfg.DatabaseDriver).
		Str("session_mode", cfg.SessionMode).
		Bool("metrics", cfg.MetricsEnabled).
		Msg("Starting portfolio server")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
