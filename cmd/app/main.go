// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:     "credstore",
		Usage:    "Encrypted, versioned credential store with path-based permissions and a signed audit trail",
		Version:  version,
		Commands: getCommands(version),
	}

	// Interrupts cancel the command context, which also stops key verification
	// waiting on an unavailable provider.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Run(ctx, os.Args)
	stop()

	if err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
