package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
	cryptoService "github.com/allisson/credstore/internal/crypto/service"
)

// RunCreateEncryptionKey generates a new 32-byte key and prints the ENCRYPTION_KEYS
// entry that configures it. Nothing is stored: the operator appends the entry and,
// once every instance has it, points ACTIVE_ENCRYPTION_KEY_ID at the new id.
//
// provider "internal" prints the key itself. provider "kms" wraps the key with the
// keeper at kmsKeyURI and prints "id:kms:uri|wrapped"; the plaintext never leaves
// this process.
func RunCreateEncryptionKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	writer io.Writer,
	provider, kmsKeyURI, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate key id: %w", err)
	}

	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	defer cryptoDomain.Zero(key)

	var material string
	switch cryptoDomain.ProviderType(provider) {
	case cryptoDomain.ProviderInternal:
		material = base64.StdEncoding.EncodeToString(key)
	case cryptoDomain.ProviderKMS:
		if kmsKeyURI == "" {
			return fmt.Errorf("--kms-key-uri is required for the kms provider")
		}
		wrapped, err := wrapWithKMS(ctx, kmsService, kmsKeyURI, key)
		if err != nil {
			return err
		}
		material = kmsKeyURI + "|" + base64.StdEncoding.EncodeToString(wrapped)
	default:
		return fmt.Errorf("invalid provider: %s (valid options: internal, kms)", provider)
	}

	entry := fmt.Sprintf("%s:%s:%s", id, provider, material)

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"id":       id.String(),
			"provider": provider,
			"entry":    entry,
		})
	}

	_, _ = fmt.Fprintf(writer, "# Append to ENCRYPTION_KEYS (comma separated):\n")
	_, _ = fmt.Fprintf(writer, "%s\n\n", entry)
	_, _ = fmt.Fprintf(writer, "# Then activate it:\n")
	_, _ = fmt.Fprintf(writer, "ACTIVE_ENCRYPTION_KEY_ID=\"%s\"\n", id)
	return nil
}

func wrapWithKMS(ctx context.Context, kmsService cryptoService.KMSService, keyURI string, key []byte) ([]byte, error) {
	keeper, err := kmsService.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, err
	}
	defer func() { _ = keeper.Close() }()

	wrapped, err := keeper.Encrypt(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap key with KMS: %w", err)
	}
	return wrapped, nil
}
