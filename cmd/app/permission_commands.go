package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/credstore/cmd/app/commands"
)

func actorFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "actor",
		Aliases:  []string{"a"},
		Required: required,
		Usage:    "Actor (e.g., uaa-client:ops, uaa-user:<id>, mtls-app:<client id>)",
	}
}

func pathFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "path",
		Aliases:  []string{"p"},
		Required: required,
		Usage:    "Credential path pattern (e.g., /team/app/db-password, /team/*, *)",
	}
}

func getPermissionCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "grant-permission",
			Usage: "Grant operations on a credential path to an actor",
			Flags: []cli.Flag{
				actorFlag(true),
				pathFlag(true),
				&cli.StringSliceFlag{
					Name:     "operation",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Operation: read, write, delete, read_acl or write_acl (repeatable)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, _, err := loadContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				repo, err := container.PermissionRepository()
				if err != nil {
					return err
				}

				return commands.RunGrantPermission(
					ctx,
					repo,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("actor"),
					cmd.String("path"),
					cmd.StringSlice("operation"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "revoke-permission",
			Usage: "Revoke every operation an actor holds on a credential path",
			Flags: []cli.Flag{actorFlag(true), pathFlag(true)},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, _, err := loadContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				repo, err := container.PermissionRepository()
				if err != nil {
					return err
				}

				return commands.RunRevokePermission(
					ctx,
					repo,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("actor"),
					cmd.String("path"),
				)
			},
		},
		{
			Name:  "list-permissions",
			Usage: "List the permissions defined on a path or granted to an actor",
			Flags: []cli.Flag{actorFlag(false), pathFlag(false), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, _, err := loadContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				repo, err := container.PermissionRepository()
				if err != nil {
					return err
				}

				return commands.RunListPermissions(
					ctx,
					repo,
					commands.DefaultIO().Writer,
					cmd.String("actor"),
					cmd.String("path"),
					cmd.String("format"),
				)
			},
		},
	}
}
