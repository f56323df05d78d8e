package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code-review-assistant/backend/internal/grpcserver"
	"code-review-assistant/backend/internal/repository"
	"code-review-assistant/backend/pkg/config"
	"code-review-assistant/backend/pkg/di"
	"code-review-assistant/backend/pkg/logger"
	"code-review-assistant/backend/pkg/router"
	"code-review-assistant/backend/pkg/secrets"
)

func main() {
	cfg := config.Load()

	// Initialize structured logger
	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting application", "version", cfg.Server.Version, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.LogError(err, "Server exited with error")
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if cfg.Vault.Enabled {
		vm, err := secrets.NewVaultManager(secrets.VaultConfig{
			Address:     cfg.Vault.Address,
			Token:       cfg.Vault.Token,
			Namespace:   cfg.Vault.Namespace,
			SecretsPath: cfg.Vault.SecretsPath,
		}, log)
		if err != nil {
			return err
		}
		if err := secrets.Apply(ctx, vm, cfg, log); err != nil {
			return err
		}
	}
	if cfg.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}

	db, err := config.NewDB(cfg, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := repository.Migrate(db); err != nil {
		return err
	}

	container, err := di.New(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := container.Close(shutdownCtx); err != nil {
			log.LogError(err, "Failed to release resources")
		}
	}()

	container.Health.Start(ctx, 30*time.Second)

	r := router.New(container)
	r.SetupRoutes()
	defer r.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var grpcSrv *grpcserver.Server
	if cfg.GRPC.Enabled {
		grpcSrv = grpcserver.New(container.Health, log)
		go func() {
			if err := grpcSrv.ListenAndServe(cfg.GRPC.Port); err != nil {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case runErr = <-errCh:
		log.LogError(runErr, "Server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcSrv != nil {
		grpcSrv.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}
	return runErr
}
