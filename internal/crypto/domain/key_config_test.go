package domain

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/credstore/internal/errors"
)

func TestParseKeyConfigs(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", KeySize)))
	wrapped := base64.StdEncoding.EncodeToString([]byte("wrapped-data-key"))
	id1 := uuid.New()
	id2 := uuid.New()
	id3 := uuid.New()
	id4 := uuid.New()

	t.Run("Success_AllProviders", func(t *testing.T) {
		raw := strings.Join([]string{
			id1.String() + ":internal:" + key,
			id2.String() + ":password:correct horse",
			id3.String() + ":kms:base64key://abc|" + wrapped,
			id4.String() + ":noop:",
		}, ",")

		configs, err := ParseKeyConfigs(raw, id3.String())
		require.NoError(t, err)
		require.Len(t, configs, 4)

		assert.Equal(t, id1, configs[0].ID)
		assert.Equal(t, ProviderInternal, configs[0].Provider)
		assert.Len(t, configs[0].Material, KeySize)
		assert.False(t, configs[0].Active)

		assert.Equal(t, ProviderPassword, configs[1].Provider)
		assert.Equal(t, []byte("correct horse"), configs[1].Material)

		assert.Equal(t, ProviderKMS, configs[2].Provider)
		assert.Equal(t, "base64key://abc", configs[2].KMSKeyURI)
		assert.Equal(t, []byte("wrapped-data-key"), configs[2].Material)
		assert.True(t, configs[2].Active)

		assert.Equal(t, ProviderNoop, configs[3].Provider)
		assert.Empty(t, configs[3].Material)
	})

	tests := []struct {
		name     string
		raw      string
		active   string
		expected error
	}{
		{"Error_EmptyKeys", "", id1.String(), ErrKeysNotSet},
		{"Error_EmptyActive", id1.String() + ":noop:", "", ErrActiveKeyIDNotSet},
		{"Error_InvalidActive", id1.String() + ":noop:", "not-a-uuid", ErrInvalidKeyID},
		{"Error_MissingParts", id1.String() + ":noop", id1.String(), ErrInvalidKeysFormat},
		{"Error_InvalidID", "abc:noop:", id1.String(), ErrInvalidKeyID},
		{"Error_UnknownProvider", id1.String() + ":vault:x", id1.String(), ErrUnknownProvider},
		{"Error_InvalidBase64", id1.String() + ":internal:%%%", id1.String(), ErrInvalidKeyBase64},
		{"Error_ShortKey", id1.String() + ":internal:YWJj", id1.String(), ErrInvalidKeySize},
		{"Error_EmptyPassphrase", id1.String() + ":password:", id1.String(), ErrInvalidKeysFormat},
		{"Error_KMSWithoutWrappedKey", id1.String() + ":kms:base64key://abc", id1.String(), ErrInvalidKeysFormat},
		{
			"Error_DuplicateID",
			id1.String() + ":noop:," + id1.String() + ":noop:",
			id1.String(),
			ErrDuplicateKeyID,
		},
		{"Error_ActiveNotConfigured", id1.String() + ":noop:", id2.String(), ErrNoActiveKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configs, err := ParseKeyConfigs(tt.raw, tt.active)
			assert.Nil(t, configs)
			assert.ErrorIs(t, err, tt.expected)
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

func TestKeyConfig_Close(t *testing.T) {
	material := []byte("secret")
	cfg := KeyConfig{Material: material}
	cfg.Close()

	assert.Nil(t, cfg.Material)
	assert.Equal(t, make([]byte, 6), material)
}
