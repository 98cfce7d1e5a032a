package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/credstore/internal/auth/domain"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	credentialUseCase "github.com/allisson/credstore/internal/credential/usecase"
	apperrors "github.com/allisson/credstore/internal/errors"
	"github.com/allisson/credstore/internal/generator"
)

// CredentialGenerator builds unsaved credential versions.
type CredentialGenerator interface {
	Password(ctx context.Context, name string, params generator.PasswordParameters) (*credentialDomain.Credential, error)
	User(
		ctx context.Context,
		name, username string,
		params generator.PasswordParameters,
	) (*credentialDomain.Credential, error)
	RSA(ctx context.Context, name string, keyLength int) (*credentialDomain.Credential, error)
	SSH(ctx context.Context, name string, keyLength int, comment string) (*credentialDomain.Credential, error)
	Certificate(
		ctx context.Context,
		name string,
		params generator.CertificateParameters,
		ca *credentialDomain.Credential,
	) (*credentialDomain.Credential, error)
}

// GenerateCredentialRequest describes one generated version.
type GenerateCredentialRequest struct {
	Name string
	Type credentialDomain.CredentialType
	// ClientID is the operator's client id. The version is written as
	// "uaa-client:<ClientID>", which needs write on Name and read on CaName.
	ClientID string

	Password generator.PasswordParameters
	Username string

	KeyLength  int
	SSHComment string

	Certificate generator.CertificateParameters
	// CaName signs the certificate with the newest version of that credential. Empty
	// means self-signed.
	CaName string
}

// RunGenerateCredential generates a new version of a password, user, rsa, ssh or
// certificate credential and writes it through the audited credential service, so the
// write is permission checked and leaves an audit record like any other caller's.
// Only non-secret attributes are printed.
func RunGenerateCredential(
	ctx context.Context,
	gen CredentialGenerator,
	service credentialUseCase.AuditingCredentialService,
	logger *slog.Logger,
	writer io.Writer,
	req GenerateCredentialRequest,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if req.ClientID == "" {
		return fmt.Errorf("client id is required")
	}

	user := operatorContext(req.ClientID)

	cred, err := generateCredential(ctx, gen, service, req, user)
	if err != nil {
		return fmt.Errorf("failed to generate credential: %w", err)
	}

	if err := service.SetCredential(ctx, uuid.New(), cred, user); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}

	logger.Info("credential generated",
		slog.String("name", cred.Name),
		slog.String("type", string(cred.Type)),
		slog.String("version_id", cred.ID.String()),
		slog.String("actor", user.Actor()),
	)

	summary, err := describeCredential(cred)
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(writer, summary)
	}

	_, _ = fmt.Fprintf(writer, "Credential generated\n\n")
	_, _ = fmt.Fprintf(writer, "Name:        %s\n", cred.Name)
	_, _ = fmt.Fprintf(writer, "Type:        %s\n", cred.Type)
	_, _ = fmt.Fprintf(writer, "Version ID:  %s\n", cred.ID)
	_, _ = fmt.Fprintf(writer, "Created At:  %s\n", cred.CreatedAt.Format(time.RFC3339))
	if caName, ok := summary["ca_name"]; ok {
		_, _ = fmt.Fprintf(writer, "CA Name:     %s\n", caName)
	}
	if fingerprint, ok := summary["fingerprint"]; ok {
		_, _ = fmt.Fprintf(writer, "Fingerprint: %s\n", fingerprint)
	}
	if keyLength, ok := summary["key_length"]; ok {
		_, _ = fmt.Fprintf(writer, "Key Length:  %d\n", keyLength)
	}
	return nil
}

func generateCredential(
	ctx context.Context,
	gen CredentialGenerator,
	service credentialUseCase.AuditingCredentialService,
	req GenerateCredentialRequest,
	user authDomain.UserContext,
) (*credentialDomain.Credential, error) {
	switch req.Type {
	case credentialDomain.TypePassword:
		return gen.Password(ctx, req.Name, req.Password)
	case credentialDomain.TypeUser:
		if req.Username == "" {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "username is required for user credentials")
		}
		return gen.User(ctx, req.Name, req.Username, req.Password)
	case credentialDomain.TypeRSA:
		return gen.RSA(ctx, req.Name, req.KeyLength)
	case credentialDomain.TypeSSH:
		return gen.SSH(ctx, req.Name, req.KeyLength, req.SSHComment)
	case credentialDomain.TypeCertificate:
		var ca *credentialDomain.Credential
		if req.CaName != "" {
			found, err := service.GetMostRecentCredentialVersion(ctx, uuid.New(), req.CaName, user)
			if errors.Is(err, credentialDomain.ErrEntryNotFound) {
				return nil, apperrors.Wrapf(generator.ErrCaNotFound, "%s", req.CaName)
			}
			if err != nil {
				return nil, err
			}
			ca = found
		}
		return gen.Certificate(ctx, req.Name, req.Certificate, ca)
	default:
		return nil, apperrors.Wrapf(
			apperrors.ErrInvalidInput,
			"cannot generate %q credentials (valid options: password, user, rsa, ssh, certificate)",
			req.Type,
		)
	}
}

// describeCredential collects the attributes that are safe to print.
func describeCredential(cred *credentialDomain.Credential) (map[string]any, error) {
	summary := map[string]any{
		"name":       cred.Name,
		"type":       string(cred.Type),
		"version_id": cred.ID.String(),
		"created_at": cred.CreatedAt.Format(time.RFC3339),
	}

	switch cred.Type {
	case credentialDomain.TypeUser:
		summary["username"] = cred.Username
	case credentialDomain.TypeRSA:
		keyLength, err := cred.RSAKeyLength()
		if err != nil {
			return nil, err
		}
		summary["key_length"] = keyLength
		summary["public_key"] = cred.PublicKey
	case credentialDomain.TypeSSH:
		fingerprint, err := cred.SSHFingerprint()
		if err != nil {
			return nil, err
		}
		summary["fingerprint"] = fingerprint
		summary["public_key"] = cred.PublicKey
	case credentialDomain.TypeCertificate:
		summary["certificate"] = cred.Certificate
		if caName := cred.CaName(); caName != nil {
			summary["ca_name"] = *caName
		}
	}

	return summary, nil
}
