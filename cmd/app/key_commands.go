package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/credstore/cmd/app/commands"
	cryptoService "github.com/allisson/credstore/internal/crypto/service"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-encryption-key",
			Usage: "Generate a new encryption key entry for ENCRYPTION_KEYS",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "provider",
					Aliases: []string{"p"},
					Value:   "internal",
					Usage:   "Key provider: 'internal' or 'kms'",
				},
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "Keeper that wraps the key (e.g., gcpkms://projects/.../cryptoKeys/..., hashivault://mykey)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunCreateEncryptionKey(
					ctx,
					cryptoService.NewKMSService(),
					commands.DefaultIO().Writer,
					cmd.String("provider"),
					cmd.String("kms-key-uri"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "verify-keys",
			Usage: "Check every configured encryption key against its stored canary",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, _, err := loadContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				registry, err := container.KeyRegistry()
				if err != nil {
					return err
				}

				return commands.RunVerifyKeys(
					ctx,
					registry,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "rotate-credentials",
			Usage: "Re-encrypt stored credential versions under the active encryption key",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "batch-size",
					Aliases: []string{"b"},
					Value:   0,
					Usage:   "Versions re-encrypted per batch (defaults to ROTATION_BATCH_SIZE)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, cfg, err := loadContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				if _, err := container.VerifiedKeyRegistry(ctx); err != nil {
					return err
				}
				rotation, err := container.RotationUseCase()
				if err != nil {
					return err
				}

				batchSize := int(cmd.Int("batch-size"))
				if batchSize == 0 {
					batchSize = cfg.RotationBatchSize
				}

				return commands.RunRotateCredentials(
					ctx,
					rotation,
					container.Logger(),
					commands.DefaultIO().Writer,
					batchSize,
					cmd.String("format"),
				)
			},
		},
	}
}
