package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/credstore/cmd/app/commands"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	"github.com/allisson/credstore/internal/generator"
)

func getCredentialCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "generate-credential",
			Usage: "Generate a new version of a password, user, rsa, ssh or certificate credential",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Credential name (e.g., /team/app/db-password)",
				},
				&cli.StringFlag{
					Name:     "type",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Credential type: password, user, rsa, ssh or certificate",
				},
				&cli.StringFlag{
					Name:     "client-id",
					Required: true,
					Usage:    "Operator client id; the write is checked and audited as uaa-client:<client-id>",
				},
				&cli.IntFlag{
					Name:  "length",
					Usage: "Password length (password and user)",
				},
				&cli.BoolFlag{
					Name:  "exclude-upper",
					Usage: "Exclude upper case letters (password and user)",
				},
				&cli.BoolFlag{
					Name:  "exclude-lower",
					Usage: "Exclude lower case letters (password and user)",
				},
				&cli.BoolFlag{
					Name:  "exclude-number",
					Usage: "Exclude digits (password and user)",
				},
				&cli.BoolFlag{
					Name:  "include-special",
					Usage: "Include special characters (password and user)",
				},
				&cli.StringFlag{
					Name:  "username",
					Usage: "Username (user)",
				},
				&cli.IntFlag{
					Name:  "key-length",
					Usage: "RSA modulus size: 2048, 3072 or 4096 (rsa, ssh and certificate)",
				},
				&cli.StringFlag{
					Name:  "ssh-comment",
					Usage: "Comment appended to the public key (ssh)",
				},
				&cli.StringFlag{
					Name:  "common-name",
					Usage: "Subject common name (certificate)",
				},
				&cli.StringFlag{
					Name:  "organization",
					Usage: "Subject organization (certificate)",
				},
				&cli.StringFlag{
					Name:  "organization-unit",
					Usage: "Subject organization unit (certificate)",
				},
				&cli.StringFlag{
					Name:  "locality",
					Usage: "Subject locality (certificate)",
				},
				&cli.StringFlag{
					Name:  "state",
					Usage: "Subject state (certificate)",
				},
				&cli.StringFlag{
					Name:  "country",
					Usage: "Subject two-letter country (certificate)",
				},
				&cli.StringSliceFlag{
					Name:  "alternative-name",
					Usage: "DNS name or IP address, repeatable (certificate)",
				},
				&cli.StringSliceFlag{
					Name:  "key-usage",
					Usage: "Key usage such as digital_signature or key_cert_sign, repeatable (certificate)",
				},
				&cli.StringSliceFlag{
					Name:  "extended-key-usage",
					Usage: "Extended key usage such as server_auth or client_auth, repeatable (certificate)",
				},
				&cli.IntFlag{
					Name:  "duration",
					Usage: "Validity in days (certificate, defaults to CERTIFICATE_DEFAULT_DURATION_DAYS)",
				},
				&cli.BoolFlag{
					Name:  "is-ca",
					Usage: "Issue a certificate authority (certificate)",
				},
				&cli.StringFlag{
					Name:  "ca",
					Usage: "Name of the CA credential that signs the certificate; self-signed when omitted",
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
				gen, err := container.CredentialGenerator()
				if err != nil {
					return err
				}
				service, err := container.AuditingCredentialService()
				if err != nil {
					return err
				}

				duration := int(cmd.Int("duration"))
				if duration == 0 {
					duration = cfg.CertificateDefaultDurationDays
				}

				req := commands.GenerateCredentialRequest{
					Name:     cmd.String("name"),
					Type:     credentialDomain.CredentialType(cmd.String("type")),
					ClientID: cmd.String("client-id"),
					Password: generator.PasswordParameters{
						Length:         int(cmd.Int("length")),
						ExcludeUpper:   cmd.Bool("exclude-upper"),
						ExcludeLower:   cmd.Bool("exclude-lower"),
						ExcludeNumber:  cmd.Bool("exclude-number"),
						IncludeSpecial: cmd.Bool("include-special"),
					},
					Username:   cmd.String("username"),
					KeyLength:  int(cmd.Int("key-length")),
					SSHComment: cmd.String("ssh-comment"),
					Certificate: generator.CertificateParameters{
						CommonName:       cmd.String("common-name"),
						Organization:     cmd.String("organization"),
						OrganizationUnit: cmd.String("organization-unit"),
						Locality:         cmd.String("locality"),
						State:            cmd.String("state"),
						Country:          cmd.String("country"),
						AlternativeNames: cmd.StringSlice("alternative-name"),
						KeyUsage:         cmd.StringSlice("key-usage"),
						ExtendedKeyUsage: cmd.StringSlice("extended-key-usage"),
						DurationDays:     duration,
						KeyLength:        int(cmd.Int("key-length")),
						IsCA:             cmd.Bool("is-ca"),
					},
					CaName: cmd.String("ca"),
				}

				return commands.RunGenerateCredential(
					ctx,
					gen,
					service,
					container.Logger(),
					commands.DefaultIO().Writer,
					req,
					cmd.String("format"),
				)
			},
		},
	}
}
