package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// KMSKeeper is the subset of a gocloud secrets.Keeper used to unwrap data keys.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KeyConfig describes one configured encryption key before its provider is built.
//
// Material depends on Provider:
//   - internal: the decoded 32-byte key
//   - password: the passphrase bytes
//   - kms: the wrapped data key, with KMSKeyURI naming the keeper that unwraps it
//   - noop: empty
type KeyConfig struct {
	ID        uuid.UUID
	Provider  ProviderType
	Material  []byte
	KMSKeyURI string
	Active    bool
}

// Close zeroes the key material held by the configuration.
func (k *KeyConfig) Close() {
	Zero(k.Material)
	k.Material = nil
}

// ParseKeyConfigs parses the ENCRYPTION_KEYS format and marks the active key.
//
// raw is a comma-separated list of "id:provider:material" entries, for example:
//
//	ENCRYPTION_KEYS="0190a6b0-...:internal:YWJj...,0190a6b1-...:kms:base64key://smGbjm71...|CiQA..."
//	ACTIVE_ENCRYPTION_KEY_ID="0190a6b1-..."
//
// Entries keep their configured order. Exactly one entry must match activeID.
func ParseKeyConfigs(raw, activeID string) ([]KeyConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrKeysNotSet
	}
	if strings.TrimSpace(activeID) == "" {
		return nil, ErrActiveKeyIDNotSet
	}

	active, err := uuid.Parse(strings.TrimSpace(activeID))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKeyID, activeID)
	}

	configs := make([]KeyConfig, 0)
	seen := make(map[uuid.UUID]struct{})
	closeAll := func() {
		for i := range configs {
			configs[i].Close()
		}
	}

	for entry := range strings.SplitSeq(raw, ",") {
		cfg, err := parseKeyEntry(strings.TrimSpace(entry))
		if err != nil {
			closeAll()
			return nil, err
		}
		if _, dup := seen[cfg.ID]; dup {
			cfg.Close()
			closeAll()
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKeyID, cfg.ID)
		}
		seen[cfg.ID] = struct{}{}
		cfg.Active = cfg.ID == active
		configs = append(configs, cfg)
	}

	if _, ok := seen[active]; !ok {
		closeAll()
		return nil, fmt.Errorf("%w: ACTIVE_ENCRYPTION_KEY_ID=%s", ErrNoActiveKey, active)
	}

	return configs, nil
}

func parseKeyEntry(entry string) (KeyConfig, error) {
	parts := strings.SplitN(entry, ":", 3)
	if len(parts) != 3 {
		return KeyConfig{}, fmt.Errorf("%w: %q", ErrInvalidKeysFormat, entry)
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		return KeyConfig{}, fmt.Errorf("%w: %q", ErrInvalidKeyID, parts[0])
	}

	cfg := KeyConfig{ID: id, Provider: ProviderType(parts[1])}
	material := parts[2]

	switch cfg.Provider {
	case ProviderInternal:
		key, err := base64.StdEncoding.DecodeString(material)
		if err != nil {
			return KeyConfig{}, fmt.Errorf("%w for %s: %v", ErrInvalidKeyBase64, id, err)
		}
		if len(key) != KeySize {
			Zero(key)
			return KeyConfig{}, fmt.Errorf("%w: key %s must be %d bytes", ErrInvalidKeySize, id, KeySize)
		}
		cfg.Material = key
	case ProviderPassword:
		if material == "" {
			return KeyConfig{}, fmt.Errorf("%w: key %s has an empty passphrase", ErrInvalidKeysFormat, id)
		}
		cfg.Material = []byte(material)
	case ProviderKMS:
		uri, wrapped, ok := strings.Cut(material, "|")
		if !ok || uri == "" || wrapped == "" {
			return KeyConfig{}, fmt.Errorf("%w: key %s needs \"uri|wrapped-key\"", ErrInvalidKeysFormat, id)
		}
		key, err := base64.StdEncoding.DecodeString(wrapped)
		if err != nil {
			return KeyConfig{}, fmt.Errorf("%w for %s: %v", ErrInvalidKeyBase64, id, err)
		}
		cfg.KMSKeyURI = uri
		cfg.Material = key
	case ProviderNoop:
	default:
		return KeyConfig{}, fmt.Errorf("%w: %q", ErrUnknownProvider, parts[1])
	}

	return cfg, nil
}
