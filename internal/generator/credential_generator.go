package generator

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
	apperrors "github.com/allisson/credstore/internal/errors"
)

const userSaltSize = 16

// CredentialGenerator builds new credential versions from generated material. Every
// secret is encrypted under the active key before it is returned; nothing is stored.
type CredentialGenerator struct {
	encryptor cryptoDomain.Encryptor
	certs     *CertificateGenerator
	keys      *KeyPairGenerator
	passwords *PasswordGenerator
}

// NewCredentialGenerator creates a CredentialGenerator.
func NewCredentialGenerator(
	encryptor cryptoDomain.Encryptor,
	certs *CertificateGenerator,
	keys *KeyPairGenerator,
	passwords *PasswordGenerator,
) *CredentialGenerator {
	return &CredentialGenerator{
		encryptor: encryptor,
		certs:     certs,
		keys:      keys,
		passwords: passwords,
	}
}

// Password generates a password credential and keeps params with it.
func (g *CredentialGenerator) Password(
	ctx context.Context,
	name string,
	params PasswordParameters,
) (*credentialDomain.Credential, error) {
	cred := credentialDomain.NewCredential(credentialDomain.TypePassword, name, g.encryptor)
	if err := g.fillPassword(ctx, cred, params); err != nil {
		return nil, err
	}
	return cred, nil
}

// User generates a user credential for username with a random salt.
func (g *CredentialGenerator) User(
	ctx context.Context,
	name, username string,
	params PasswordParameters,
) (*credentialDomain.Credential, error) {
	salt := make([]byte, userSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate salt")
	}

	cred := credentialDomain.NewCredential(credentialDomain.TypeUser, name, g.encryptor)
	cred.Username = username
	cred.Salt = base64.RawStdEncoding.EncodeToString(salt)
	if err := g.fillPassword(ctx, cred, params); err != nil {
		return nil, err
	}
	return cred, nil
}

// RSA generates an rsa credential.
func (g *CredentialGenerator) RSA(
	ctx context.Context,
	name string,
	keyLength int,
) (*credentialDomain.Credential, error) {
	pair, err := g.keys.GenerateRSA(keyLength)
	if err != nil {
		return nil, err
	}
	return g.keyPairCredential(ctx, credentialDomain.TypeRSA, name, pair)
}

// SSH generates an ssh credential whose public key carries comment.
func (g *CredentialGenerator) SSH(
	ctx context.Context,
	name string,
	keyLength int,
	comment string,
) (*credentialDomain.Credential, error) {
	pair, err := g.keys.GenerateSSH(keyLength, comment)
	if err != nil {
		return nil, err
	}
	return g.keyPairCredential(ctx, credentialDomain.TypeSSH, name, pair)
}

// Certificate generates a certificate credential. A nil ca yields a self-signed
// certificate; otherwise ca must be a certificate credential holding a CA
// certificate and an Encryptor able to read its private key.
func (g *CredentialGenerator) Certificate(
	ctx context.Context,
	name string,
	params CertificateParameters,
	ca *credentialDomain.Credential,
) (*credentialDomain.Credential, error) {
	if params.DurationDays == 0 {
		params.DurationDays = DefaultDurationDays
	}
	if params.KeyLength == 0 {
		params.KeyLength = DefaultKeyLength
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	key, err := g.keys.GenerateRSAKey(params.KeyLength)
	if err != nil {
		return nil, err
	}

	cred := credentialDomain.NewCredential(credentialDomain.TypeCertificate, name, g.encryptor)
	if ca == nil {
		cert, err := g.certs.SelfSign(key, params)
		if err != nil {
			return nil, err
		}
		cred.Certificate = EncodeCertificate(cert)
		cred.Ca = cred.Certificate
	} else {
		issuer, err := g.issuer(ctx, ca)
		if err != nil {
			return nil, err
		}
		cert, err := g.certs.SignByIssuer(key, params, issuer)
		if err != nil {
			return nil, err
		}
		cred.Certificate = EncodeCertificate(cert)
		cred.Ca = ca.Certificate
		cred.SetCaName(&ca.Name)
	}

	pair, err := EncodeRSAKeyPair(key)
	if err != nil {
		return nil, err
	}
	if err := cred.SetPrivateKey(ctx, pair.PrivateKey); err != nil {
		return nil, err
	}
	return cred, nil
}

func (g *CredentialGenerator) issuer(ctx context.Context, ca *credentialDomain.Credential) (Issuer, error) {
	if ca.Type != credentialDomain.TypeCertificate {
		return Issuer{}, ErrCaNotFound
	}
	caCert, err := ParseCertificate(ca.Certificate)
	if err != nil {
		return Issuer{}, apperrors.Wrap(ErrCertificateIssuance, err.Error())
	}
	if !caCert.IsCA {
		return Issuer{}, ErrCaNotFound
	}

	privateKey, err := ca.PrivateKey(ctx)
	if err != nil {
		return Issuer{}, err
	}
	return Issuer{CertificatePEM: ca.Certificate, PrivateKeyPEM: privateKey}, nil
}

func (g *CredentialGenerator) fillPassword(
	ctx context.Context,
	cred *credentialDomain.Credential,
	params PasswordParameters,
) error {
	if params.Length == 0 {
		params.Length = DefaultPasswordLength
	}
	password, err := g.passwords.Generate(params)
	if err != nil {
		return err
	}
	if err := cred.SetPassword(ctx, password); err != nil {
		return err
	}
	return cred.SetGenerationParameters(ctx, params)
}

func (g *CredentialGenerator) keyPairCredential(
	ctx context.Context,
	typ credentialDomain.CredentialType,
	name string,
	pair *KeyPair,
) (*credentialDomain.Credential, error) {
	cred := credentialDomain.NewCredential(typ, name, g.encryptor)
	cred.PublicKey = pair.PublicKey
	if err := cred.SetPrivateKey(ctx, pair.PrivateKey); err != nil {
		return nil, err
	}
	return cred, nil
}
