package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/credstore/internal/auth/domain"
	authUseCase "github.com/allisson/credstore/internal/auth/usecase"
)

// RunGrantPermission writes the (actor, path) permission entry directly, replacing
// the operations of an existing one. It bypasses the write_acl check, which is what
// bootstraps the first operator.
func RunGrantPermission(
	ctx context.Context,
	repo authUseCase.PermissionRepository,
	logger *slog.Logger,
	writer io.Writer,
	actor, path string,
	operations []string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if strings.TrimSpace(actor) == "" {
		return fmt.Errorf("actor is required")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}
	if len(operations) == 0 {
		return fmt.Errorf("at least one operation is required")
	}

	ops := make([]authDomain.PermissionOperation, 0, len(operations))
	for _, raw := range operations {
		op, err := authDomain.ParsePermissionOperation(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid operation: %w", err)
		}
		ops = append(ops, op)
	}

	entry := &authDomain.PermissionEntry{
		ID:         uuid.Must(uuid.NewV7()),
		Actor:      actor,
		Path:       path,
		Operations: ops,
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.Save(ctx, entry); err != nil {
		return fmt.Errorf("failed to save permission: %w", err)
	}

	logger.Info("permission granted",
		slog.String("actor", actor),
		slog.String("path", path),
		slog.Any("operations", operations),
	)

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"actor":      actor,
			"path":       path,
			"operations": ops,
		})
	}
	_, _ = fmt.Fprintf(writer, "Granted %s on %s to %s\n", joinOperations(ops), path, actor)
	return nil
}

// RunRevokePermission removes the (actor, path) permission entry.
func RunRevokePermission(
	ctx context.Context,
	repo authUseCase.PermissionRepository,
	logger *slog.Logger,
	writer io.Writer,
	actor, path string,
) error {
	deleted, err := repo.Delete(ctx, actor, path)
	if err != nil {
		return fmt.Errorf("failed to delete permission: %w", err)
	}
	if !deleted {
		return fmt.Errorf("no permission for %s on %s", actor, path)
	}

	logger.Info("permission revoked", slog.String("actor", actor), slog.String("path", path))
	_, _ = fmt.Fprintf(writer, "Revoked every operation on %s from %s\n", path, actor)
	return nil
}

// RunListPermissions prints the entries defined on path, or those granted to actor
// when path is empty.
func RunListPermissions(
	ctx context.Context,
	repo authUseCase.PermissionRepository,
	writer io.Writer,
	actor, path string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	var (
		entries []*authDomain.PermissionEntry
		err     error
	)
	switch {
	case path != "":
		entries, err = repo.ListByPath(ctx, path)
	case actor != "":
		entries, err = repo.ListByActor(ctx, actor)
	default:
		return fmt.Errorf("either actor or path is required")
	}
	if err != nil {
		return fmt.Errorf("failed to list permissions: %w", err)
	}

	if format == "json" {
		result := make([]map[string]any, 0, len(entries))
		for _, entry := range entries {
			result = append(result, map[string]any{
				"actor":      entry.Actor,
				"path":       entry.Path,
				"operations": entry.Operations,
			})
		}
		return writeJSON(writer, result)
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintf(writer, "No permissions found\n")
		return nil
	}
	for _, entry := range entries {
		_, _ = fmt.Fprintf(writer, "%-40s %-40s %s\n", entry.Actor, entry.Path, joinOperations(entry.Operations))
	}
	return nil
}

func joinOperations(ops []authDomain.PermissionOperation) string {
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		names = append(names, string(op))
	}
	return strings.Join(names, ",")
}
