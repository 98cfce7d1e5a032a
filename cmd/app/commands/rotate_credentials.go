package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	credentialUseCase "github.com/allisson/credstore/internal/credential/usecase"
)

// RunRotateCredentials re-encrypts every stored credential version that is not yet
// under the active key. Safe to interrupt and re-run: finished versions are skipped.
func RunRotateCredentials(
	ctx context.Context,
	rotation credentialUseCase.RotationUseCase,
	logger *slog.Logger,
	writer io.Writer,
	batchSize int,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if batchSize < 1 {
		return fmt.Errorf("batch size must be at least 1")
	}

	logger.Info("rotating credentials", slog.Int("batch_size", batchSize))

	rotated, err := rotation.Rotate(ctx, batchSize)
	if err != nil {
		return fmt.Errorf("failed to rotate credentials after %d version(s): %w", rotated, err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{"rotated": rotated}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Rotated %d credential version(s)\n", rotated)
	}

	logger.Info("credential rotation completed", slog.Int("rotated", rotated))
	return nil
}
