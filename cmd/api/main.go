package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-wellness/internal/adapters/auth/remote"
	"pet-wellness/internal/config"
	"pet-wellness/internal/platform/logger"
	"pet-wellness/internal/ports/auth"
	"pet-wellness/internal/router"
)

// @title Pet Wellness API
// @version 1.0
// @description Scoring de bienestar y analítica de comportamiento para mascotas.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("invalid configuration", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	log := logger.New(cfg.LoggerOptions())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log logger.Logger) error {
	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	stores, err := router.OpenStores(startCtx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = stores.Close() }()

	cache, closeCache, err := router.OpenCache(startCtx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeCache() }()

	// sin verifier = modo dev (X-Debug-User-ID)
	var verifier auth.AuthVerifier
	if cfg.AuthVerifyURL != "" {
		v, err := remote.NewVerifier(remote.Config{BaseURL: cfg.AuthVerifyURL, APIKey: cfg.AuthAPIKey})
		if err != nil {
			return err
		}
		verifier = v
	} else {
		log.Warn("auth verifier not configured, dev mode enabled", nil)
	}

	weights := cfg.Weights()
	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Logger:       log,
		Stores:       stores,
		Cache:        cache,
		Weights:      &weights,
		Location:     cfg.Location(),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Addr(), "store": stores.Backend})
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

	log.Info("shutting down", nil)
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}
