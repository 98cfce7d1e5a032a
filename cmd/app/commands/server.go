package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/credstore/internal/app"
	"github.com/allisson/credstore/internal/config"
)

// RunServer verifies every configured encryption key, moves stored credentials onto
// the active key in the background and serves the ops listener. Blocks until
// SIGINT/SIGTERM or a fatal error; the listener gets DBConnMaxLifetime to drain.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gin.SetMode(cfg.GetGinMode())

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))
	defer closeContainer(container, logger)

	registry, err := container.VerifiedKeyRegistry(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify encryption keys: %w", err)
	}
	logger.Info("encryption keys verified",
		slog.String("active_key_id", registry.ActiveKeyID().String()),
		slog.Int("keys", len(registry.KeyIDs())),
	)

	rotation, err := container.RotationUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize rotation: %w", err)
	}

	server, err := container.OpsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize ops server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(gctx)
	})

	// A failed rotation leaves versions on their old key, which stays readable.
	g.Go(func() error {
		rotated, err := rotation.Rotate(gctx, cfg.RotationBatchSize)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("credential rotation failed", slog.Int("rotated", rotated), slog.Any("error", err))
			return nil
		}
		logger.Info("credential rotation finished", slog.Int("rotated", rotated))
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ops server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
