package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	credentialMocks "github.com/allisson/credstore/internal/credential/usecase/mocks"
	cryptoService "github.com/allisson/credstore/internal/crypto/service"
	"github.com/allisson/credstore/internal/generator"
)

type noopEncryptor struct {
	*cryptoService.NoopProvider
}

func (e noopEncryptor) ActiveKeyID() uuid.UUID {
	return e.KeyID()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func newTestGenerator() *generator.CredentialGenerator {
	return generator.NewCredentialGenerator(
		noopEncryptor{cryptoService.NewNoopProvider(uuid.New())},
		generator.NewCertificateGenerator(systemClock{}, generator.NewRandomSerialNumberGenerator()),
		generator.NewKeyPairGenerator(),
		generator.NewPasswordGenerator(),
	)
}

func TestRunGenerateCredential(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	gen := newTestGenerator()
	operator := operatorContext("cli-operator")

	t.Run("Success_Password", func(t *testing.T) {
		service := &credentialMocks.MockAuditingCredentialService{}
		service.On("SetCredential", ctx, mock.AnythingOfType("uuid.UUID"), mock.MatchedBy(
			func(cred *credentialDomain.Credential) bool {
				return cred.Name == "/app/db-password" && cred.Type == credentialDomain.TypePassword
			},
		), operator).Return(nil)

		var out bytes.Buffer
		err := RunGenerateCredential(ctx, gen, service, logger, &out, GenerateCredentialRequest{
			Name:     "app/db-password",
			Type:     credentialDomain.TypePassword,
			ClientID: "cli-operator",
			Password: generator.PasswordParameters{Length: 24},
		}, "json")
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, "/app/db-password", result["name"])
		assert.Equal(t, "password", result["type"])
		assert.NotContains(t, out.String(), "\"password\":")
		service.AssertExpectations(t)
	})

	t.Run("Success_SSH", func(t *testing.T) {
		service := &credentialMocks.MockAuditingCredentialService{}
		service.On("SetCredential", ctx, mock.Anything, mock.Anything, operator).Return(nil)

		var out bytes.Buffer
		err := RunGenerateCredential(ctx, gen, service, logger, &out, GenerateCredentialRequest{
			Name:       "/deploy/key",
			Type:       credentialDomain.TypeSSH,
			ClientID:   "cli-operator",
			SSHComment: "deploy@example.com",
		}, "text")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Type:        ssh")
		assert.Contains(t, out.String(), "Fingerprint: SHA256:")
	})

	t.Run("Success_CertificateSignedByCA", func(t *testing.T) {
		ca, err := gen.Certificate(ctx, "/pki/root", generator.CertificateParameters{
			CommonName: "root",
			IsCA:       true,
			KeyUsage:   []string{"key_cert_sign", "crl_sign"},
		}, nil)
		require.NoError(t, err)

		service := &credentialMocks.MockAuditingCredentialService{}
		service.On("GetMostRecentCredentialVersion", ctx, mock.Anything, "/pki/root", operator).Return(ca, nil)
		service.On("SetCredential", ctx, mock.Anything, mock.MatchedBy(
			func(cred *credentialDomain.Credential) bool {
				return cred.Ca == ca.Certificate
			},
		), operator).Return(nil)

		var out bytes.Buffer
		err = RunGenerateCredential(ctx, gen, service, logger, &out, GenerateCredentialRequest{
			Name:     "/pki/api",
			Type:     credentialDomain.TypeCertificate,
			ClientID: "cli-operator",
			CaName:   "/pki/root",
			Certificate: generator.CertificateParameters{
				CommonName:       "api.example.com",
				AlternativeNames: []string{"api.example.com"},
			},
		}, "json")
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, "/pki/root", result["ca_name"])
		assert.Contains(t, result["certificate"], "BEGIN CERTIFICATE")
		service.AssertExpectations(t)
	})

	t.Run("Error_CaNotReadable", func(t *testing.T) {
		service := &credentialMocks.MockAuditingCredentialService{}
		service.On("GetMostRecentCredentialVersion", ctx, mock.Anything, "/pki/root", operator).
			Return(nil, credentialDomain.ErrEntryNotFound)

		err := RunGenerateCredential(ctx, gen, service, logger, &bytes.Buffer{}, GenerateCredentialRequest{
			Name:        "/pki/api",
			Type:        credentialDomain.TypeCertificate,
			ClientID:    "cli-operator",
			CaName:      "/pki/root",
			Certificate: generator.CertificateParameters{CommonName: "api"},
		}, "text")
		require.ErrorIs(t, err, generator.ErrCaNotFound)
		service.AssertNotCalled(t, "SetCredential", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_SaveDenied", func(t *testing.T) {
		service := &credentialMocks.MockAuditingCredentialService{}
		service.On("SetCredential", ctx, mock.Anything, mock.Anything, operator).
			Return(credentialDomain.ErrEntryNotFound)

		var out bytes.Buffer
		err := RunGenerateCredential(ctx, gen, service, logger, &out, GenerateCredentialRequest{
			Name:     "/app/db-password",
			Type:     credentialDomain.TypePassword,
			ClientID: "cli-operator",
		}, "text")
		require.ErrorIs(t, err, credentialDomain.ErrEntryNotFound)
		assert.Empty(t, out.String())
	})

	t.Run("Error_UserWithoutUsername", func(t *testing.T) {
		service := &credentialMocks.MockAuditingCredentialService{}

		err := RunGenerateCredential(ctx, gen, service, logger, &bytes.Buffer{}, GenerateCredentialRequest{
			Name:     "/app/user",
			Type:     credentialDomain.TypeUser,
			ClientID: "cli-operator",
		}, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "username is required")
	})

	t.Run("Error_UnsupportedType", func(t *testing.T) {
		service := &credentialMocks.MockAuditingCredentialService{}

		err := RunGenerateCredential(ctx, gen, service, logger, &bytes.Buffer{}, GenerateCredentialRequest{
			Name:     "/app/value",
			Type:     credentialDomain.TypeValue,
			ClientID: "cli-operator",
		}, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot generate")
	})

	t.Run("Error_MissingClientID", func(t *testing.T) {
		err := RunGenerateCredential(ctx, gen, nil, logger, &bytes.Buffer{}, GenerateCredentialRequest{
			Name: "/app/db-password",
			Type: credentialDomain.TypePassword,
		}, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "client id is required")
	})
}
