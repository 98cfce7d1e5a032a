package main

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/credstore/internal/app"
	"github.com/allisson/credstore/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getKeyCommands()...)
	cmds = append(cmds, getCredentialCommands()...)
	cmds = append(cmds, getPermissionCommands()...)
	return cmds
}

// loadContainer loads and validates the configuration and builds the container.
func loadContainer() (*app.Container, *config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.NewContainer(cfg), cfg, nil
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}
