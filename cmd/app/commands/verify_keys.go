package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// KeyVerifier checks every configured key against its stored canary.
type KeyVerifier interface {
	Verify(ctx context.Context) error
	ActiveKeyID() uuid.UUID
	KeyIDs() []uuid.UUID
}

// RunVerifyKeys verifies the configured encryption keys and prints them. A key seen
// for the first time gets its canary stored, so running this once after adding a key
// to ENCRYPTION_KEYS prepares it for the server.
func RunVerifyKeys(
	ctx context.Context,
	verifier KeyVerifier,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("verifying encryption keys")

	if err := verifier.Verify(ctx); err != nil {
		return fmt.Errorf("failed to verify encryption keys: %w", err)
	}

	active := verifier.ActiveKeyID()
	keyIDs := verifier.KeyIDs()

	if format == "json" {
		ids := make([]string, 0, len(keyIDs))
		for _, id := range keyIDs {
			ids = append(ids, id.String())
		}
		if err := writeJSON(writer, map[string]any{
			"active_key_id": active.String(),
			"key_ids":       ids,
			"verified":      true,
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Verified %d encryption key(s)\n\n", len(keyIDs))
		for _, id := range keyIDs {
			marker := " "
			if id == active {
				marker = "*"
			}
			_, _ = fmt.Fprintf(writer, "%s %s\n", marker, id)
		}
	}

	logger.Info("encryption keys verified",
		slog.String("active_key_id", active.String()),
		slog.Int("keys", len(keyIDs)),
	)
	return nil
}
