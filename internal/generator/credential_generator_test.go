package generator_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	cryptoService "github.com/allisson/credstore/internal/crypto/service"
	"github.com/allisson/credstore/internal/generator"
)

type noopEncryptor struct {
	*cryptoService.NoopProvider
}

func (e noopEncryptor) ActiveKeyID() uuid.UUID {
	return e.KeyID()
}

func newCredentialGenerator() (*generator.CredentialGenerator, noopEncryptor) {
	encryptor := noopEncryptor{cryptoService.NewNoopProvider(uuid.New())}
	return generator.NewCredentialGenerator(
		encryptor,
		generator.NewCertificateGenerator(generator.NewSystemClock(), generator.NewRandomSerialNumberGenerator()),
		generator.NewKeyPairGenerator(),
		generator.NewPasswordGenerator(),
	), encryptor
}

func TestCredentialGenerator_Password(t *testing.T) {
	ctx := context.Background()
	gen, encryptor := newCredentialGenerator()

	t.Run("Success", func(t *testing.T) {
		cred, err := gen.Password(ctx, "DB/Password", generator.PasswordParameters{Length: 16})
		require.NoError(t, err)

		assert.Equal(t, "/DB/Password", cred.Name)
		assert.Equal(t, credentialDomain.TypePassword, cred.Type)

		enc, ok := cred.SecretEncryption()
		require.True(t, ok)
		assert.Equal(t, encryptor.KeyID(), enc.KeyID)

		password, err := cred.Password(ctx)
		require.NoError(t, err)
		assert.Len(t, password, 16)

		var params generator.PasswordParameters
		found, err := cred.GenerationParameters(ctx, &params)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 16, params.Length)
	})

	t.Run("Error_InvalidParameters", func(t *testing.T) {
		_, err := gen.Password(ctx, "/db/password", generator.PasswordParameters{Length: 500})
		assert.ErrorIs(t, err, generator.ErrInvalidParameters)
	})
}

func TestCredentialGenerator_User(t *testing.T) {
	ctx := context.Background()
	gen, _ := newCredentialGenerator()

	cred, err := gen.User(ctx, "/app/user", "svc-app", generator.PasswordParameters{})
	require.NoError(t, err)

	assert.Equal(t, credentialDomain.TypeUser, cred.Type)
	assert.Equal(t, "svc-app", cred.Username)
	assert.NotEmpty(t, cred.Salt)

	password, err := cred.Password(ctx)
	require.NoError(t, err)
	assert.Len(t, password, generator.DefaultPasswordLength)

	var params generator.PasswordParameters
	_, err = cred.GenerationParameters(ctx, &params)
	require.NoError(t, err)
	assert.Equal(t, generator.DefaultPasswordLength, params.Length)
}

func TestCredentialGenerator_KeyPairs(t *testing.T) {
	ctx := context.Background()
	gen, _ := newCredentialGenerator()

	t.Run("Success_RSA", func(t *testing.T) {
		cred, err := gen.RSA(ctx, "/keys/rsa", 3072)
		require.NoError(t, err)

		assert.Equal(t, credentialDomain.TypeRSA, cred.Type)
		length, err := cred.RSAKeyLength()
		require.NoError(t, err)
		assert.Equal(t, 3072, length)

		privateKey, err := cred.PrivateKey(ctx)
		require.NoError(t, err)
		assert.Contains(t, privateKey, "RSA PRIVATE KEY")
	})

	t.Run("Success_SSH", func(t *testing.T) {
		cred, err := gen.SSH(ctx, "/keys/ssh", 0, "deploy")
		require.NoError(t, err)

		assert.Equal(t, credentialDomain.TypeSSH, cred.Type)
		fingerprint, err := cred.SSHFingerprint()
		require.NoError(t, err)
		assert.Contains(t, fingerprint, "SHA256:")
	})

	t.Run("Error_UnsupportedLength", func(t *testing.T) {
		_, err := gen.RSA(ctx, "/keys/rsa", 512)
		assert.ErrorIs(t, err, generator.ErrInvalidParameters)
	})
}

func TestCredentialGenerator_Certificate(t *testing.T) {
	ctx := context.Background()
	gen, _ := newCredentialGenerator()

	ca, err := gen.Certificate(ctx, "/pki/ca", generator.CertificateParameters{
		CommonName: "root",
		KeyUsage:   []string{"key_cert_sign"},
		IsCA:       true,
	}, nil)
	require.NoError(t, err)

	t.Run("Success_SelfSignedDefaults", func(t *testing.T) {
		assert.Equal(t, credentialDomain.TypeCertificate, ca.Type)
		assert.Equal(t, ca.Certificate, ca.Ca)
		assert.Nil(t, ca.CaName())

		cert, err := generator.ParseCertificate(ca.Certificate)
		require.NoError(t, err)
		assert.True(t, cert.IsCA)
		assert.Equal(t, cert.NotBefore.Add(generator.DefaultDurationDays*24*time.Hour), cert.NotAfter)
	})

	t.Run("Success_SignedByCA", func(t *testing.T) {
		leaf, err := gen.Certificate(ctx, "/pki/leaf", generator.CertificateParameters{
			CommonName:       "leaf",
			AlternativeNames: []string{"leaf.internal"},
		}, ca)
		require.NoError(t, err)

		assert.Equal(t, ca.Certificate, leaf.Ca)
		require.NotNil(t, leaf.CaName())
		assert.Equal(t, "/pki/ca", *leaf.CaName())

		caCert, err := generator.ParseCertificate(ca.Certificate)
		require.NoError(t, err)
		cert, err := generator.ParseCertificate(leaf.Certificate)
		require.NoError(t, err)
		assert.NoError(t, cert.CheckSignatureFrom(caCert))
		assert.Equal(t, []string{"leaf.internal"}, cert.DNSNames)

		privateKey, err := leaf.PrivateKey(ctx)
		require.NoError(t, err)
		key, err := generator.ParseRSAPrivateKey(privateKey)
		require.NoError(t, err)
		assert.True(t, key.PublicKey.Equal(cert.PublicKey))
	})

	t.Run("Error_IssuerIsNotCA", func(t *testing.T) {
		leaf, err := gen.Certificate(ctx, "/pki/leaf", generator.CertificateParameters{CommonName: "leaf"}, ca)
		require.NoError(t, err)

		_, err = gen.Certificate(ctx, "/pki/other", generator.CertificateParameters{CommonName: "other"}, leaf)
		assert.ErrorIs(t, err, generator.ErrCaNotFound)
	})

	t.Run("Error_IssuerIsNotCertificate", func(t *testing.T) {
		password, err := gen.Password(ctx, "/db/password", generator.PasswordParameters{})
		require.NoError(t, err)

		_, err = gen.Certificate(ctx, "/pki/other", generator.CertificateParameters{CommonName: "other"}, password)
		assert.ErrorIs(t, err, generator.ErrCaNotFound)
	})

	t.Run("Error_InvalidParameters", func(t *testing.T) {
		_, err := gen.Certificate(ctx, "/pki/bad", generator.CertificateParameters{}, nil)
		assert.ErrorIs(t, err, generator.ErrInvalidParameters)
	})
}
