// Package domain defines the versioned credential model. Every sensitive field is
// kept as an encryption envelope naming the key that produced it, and plaintext is
// only materialized on demand through an Encryptor.
package domain

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"slices"
	"sync/atomic"
	"time"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// Credential is one immutable version of a named secret. Type selects which of the
// fields below are meaningful.
//
// Sensitive values live in two envelope slots: secret holds the value, password or
// private key, and parameters holds the generation parameters of password and user
// credentials. Each slot is replaced as a whole so a reader never sees a ciphertext
// paired with another write's nonce or key id.
type Credential struct {
	// ID identifies this version.
	ID uuid.UUID
	// Name is the normalized credential name shared by all versions.
	Name string
	// Type is the variant tag.
	Type CredentialType
	// CreatedAt is when this version was written.
	CreatedAt time.Time

	// Ca is the PEM CA certificate of a certificate credential.
	Ca string
	// Certificate is the PEM certificate of a certificate credential.
	Certificate string
	// PublicKey is the public half of ssh (authorized_keys format) and rsa (PEM) credentials.
	PublicKey string
	// Username belongs to user credentials.
	Username string
	// Salt is the hashing salt of user credentials.
	Salt string

	caName     *string
	secret     atomic.Pointer[cryptoDomain.Encryption]
	parameters atomic.Pointer[cryptoDomain.Encryption]
	encryptor  cryptoDomain.Encryptor
}

// NewCredential creates a new, empty version of name.
func NewCredential(typ CredentialType, name string, encryptor cryptoDomain.Encryptor) *Credential {
	return &Credential{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      NormalizeName(name),
		Type:      typ,
		CreatedAt: time.Now().UTC(),
		encryptor: encryptor,
	}
}

// SetEncryptor attaches the Encryptor used by the getters and setters. Repositories
// return credentials without one.
func (c *Credential) SetEncryptor(encryptor cryptoDomain.Encryptor) *Credential {
	c.encryptor = encryptor
	return c
}

// CaName returns the normalized CA name of a certificate credential, or nil.
func (c *Credential) CaName() *string {
	return c.caName
}

// SetCaName stores name normalized with NormalizeNamePtr.
func (c *Credential) SetCaName(name *string) {
	c.caName = NormalizeNamePtr(name)
}

// SecretEncryption returns the envelope in the secret slot.
func (c *Credential) SecretEncryption() (cryptoDomain.Encryption, bool) {
	return load(&c.secret)
}

// ParametersEncryption returns the envelope in the parameters slot.
func (c *Credential) ParametersEncryption() (cryptoDomain.Encryption, bool) {
	return load(&c.parameters)
}

// RestoreSecret installs a stored envelope without encrypting anything.
func (c *Credential) RestoreSecret(enc cryptoDomain.Encryption) {
	store(&c.secret, enc)
}

// RestoreParameters installs a stored parameters envelope without encrypting anything.
func (c *Credential) RestoreParameters(enc cryptoDomain.Encryption) {
	store(&c.parameters, enc)
}

// Encryptions lists every envelope the credential currently holds.
func (c *Credential) Encryptions() []cryptoDomain.Encryption {
	encryptions := make([]cryptoDomain.Encryption, 0, 2)
	if enc, ok := c.SecretEncryption(); ok {
		encryptions = append(encryptions, enc)
	}
	if enc, ok := c.ParametersEncryption(); ok {
		encryptions = append(encryptions, enc)
	}
	return encryptions
}

// SetValue sets the value of a value credential.
func (c *Credential) SetValue(ctx context.Context, value string) error {
	return c.encryptInto(ctx, &c.secret, []byte(value), TypeValue)
}

// Value returns the decrypted value of a value credential.
func (c *Credential) Value(ctx context.Context) (string, error) {
	plaintext, err := c.decryptFrom(ctx, &c.secret, TypeValue)
	return string(plaintext), err
}

// SetPassword sets the password of a password or user credential.
func (c *Credential) SetPassword(ctx context.Context, password string) error {
	return c.encryptInto(ctx, &c.secret, []byte(password), TypePassword, TypeUser)
}

// Password returns the decrypted password of a password or user credential.
func (c *Credential) Password(ctx context.Context) (string, error) {
	plaintext, err := c.decryptFrom(ctx, &c.secret, TypePassword, TypeUser)
	return string(plaintext), err
}

// SetPrivateKey sets the PEM private key of a certificate, ssh or rsa credential.
func (c *Credential) SetPrivateKey(ctx context.Context, privateKey string) error {
	return c.encryptInto(ctx, &c.secret, []byte(privateKey), TypeCertificate, TypeSSH, TypeRSA)
}

// PrivateKey returns the decrypted private key of a certificate, ssh or rsa credential.
func (c *Credential) PrivateKey(ctx context.Context) (string, error) {
	plaintext, err := c.decryptFrom(ctx, &c.secret, TypeCertificate, TypeSSH, TypeRSA)
	return string(plaintext), err
}

// SetJSONValue sets the document of a json credential.
func (c *Credential) SetJSONValue(ctx context.Context, value map[string]any) error {
	if c.Type != TypeJSON {
		return ErrWrongCredentialType
	}
	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	return c.encryptInto(ctx, &c.secret, data, TypeJSON)
}

// JSONValue returns the decrypted document of a json credential. An unset document
// is returned as nil.
func (c *Credential) JSONValue(ctx context.Context) (map[string]any, error) {
	plaintext, err := c.decryptFrom(ctx, &c.secret, TypeJSON)
	if err != nil || len(plaintext) == 0 {
		return nil, err
	}
	var value map[string]any
	if err := json.Unmarshal(plaintext, &value); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode json credential")
	}
	return value, nil
}

// SetGenerationParameters stores the parameters a password or user credential was
// generated with, encrypted because they describe the secret's shape.
func (c *Credential) SetGenerationParameters(ctx context.Context, params any) error {
	if c.Type != TypePassword && c.Type != TypeUser {
		return ErrWrongCredentialType
	}
	data, err := json.Marshal(params)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	return c.encryptInto(ctx, &c.parameters, data, TypePassword, TypeUser)
}

// GenerationParameters decodes the stored generation parameters into out. It reports
// false when none were stored.
func (c *Credential) GenerationParameters(ctx context.Context, out any) (bool, error) {
	plaintext, err := c.decryptFrom(ctx, &c.parameters, TypePassword, TypeUser)
	if err != nil || len(plaintext) == 0 {
		return false, err
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return false, apperrors.Wrap(err, "failed to decode generation parameters")
	}
	return true, nil
}

// RSAKeyLength is the modulus size in bits of PublicKey, or 0 when no key is set.
func (c *Credential) RSAKeyLength() (int, error) {
	if c.PublicKey == "" {
		return 0, nil
	}

	block, _ := pem.Decode([]byte(c.PublicKey))
	if block == nil {
		return 0, ErrInvalidPublicKey
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return 0, apperrors.Wrap(ErrInvalidPublicKey, err.Error())
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return 0, apperrors.Wrap(ErrInvalidPublicKey, "not an rsa key")
	}
	return rsaPub.N.BitLen(), nil
}

// SSHFingerprint is the SHA256 fingerprint of an ssh credential's public key, or an
// empty string when no key is set.
func (c *Credential) SSHFingerprint() (string, error) {
	if c.Type != TypeSSH {
		return "", ErrWrongCredentialType
	}
	if c.PublicKey == "" {
		return "", nil
	}
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(c.PublicKey))
	if err != nil {
		return "", apperrors.Wrap(ErrInvalidPublicKey, err.Error())
	}
	return ssh.FingerprintSHA256(pub), nil
}

// PasswordHash hashes the decrypted password of a user credential.
func (c *Credential) PasswordHash(ctx context.Context, hasher *pwdhash.PasswordHasher) (string, error) {
	if c.Type != TypeUser {
		return "", ErrWrongCredentialType
	}
	password, err := c.Password(ctx)
	if err != nil {
		return "", err
	}
	hash, err := hasher.Hash([]byte(password))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash user password")
	}
	return hash, nil
}

// ReEncrypt moves every envelope not under the active key onto it. It reports whether
// anything changed, so a second call is a no-op.
func (c *Credential) ReEncrypt(ctx context.Context) (bool, error) {
	if c.encryptor == nil {
		return false, cryptoDomain.ErrKeyUnavailable
	}

	changed := false
	for _, slot := range []*atomic.Pointer[cryptoDomain.Encryption]{&c.secret, &c.parameters} {
		current := slot.Load()
		if current == nil || current.KeyID == c.encryptor.ActiveKeyID() {
			continue
		}

		plaintext, err := c.encryptor.Decrypt(ctx, *current)
		if err != nil {
			return changed, err
		}
		enc, err := c.encryptor.Encrypt(ctx, plaintext)
		cryptoDomain.Zero(plaintext)
		if err != nil {
			return changed, err
		}
		slot.Store(&enc)
		changed = true
	}

	return changed, nil
}

func (c *Credential) encryptInto(
	ctx context.Context,
	slot *atomic.Pointer[cryptoDomain.Encryption],
	plaintext []byte,
	allowed ...CredentialType,
) error {
	if !slices.Contains(allowed, c.Type) {
		return ErrWrongCredentialType
	}
	if c.encryptor == nil {
		return cryptoDomain.ErrKeyUnavailable
	}

	enc, err := c.encryptor.Encrypt(ctx, plaintext)
	if err != nil {
		return err
	}
	slot.Store(&enc)
	return nil
}

func (c *Credential) decryptFrom(
	ctx context.Context,
	slot *atomic.Pointer[cryptoDomain.Encryption],
	allowed ...CredentialType,
) ([]byte, error) {
	if !slices.Contains(allowed, c.Type) {
		return nil, ErrWrongCredentialType
	}

	enc := slot.Load()
	if enc == nil {
		return nil, nil
	}
	if c.encryptor == nil {
		return nil, cryptoDomain.ErrKeyUnavailable
	}
	return c.encryptor.Decrypt(ctx, *enc)
}

func load(slot *atomic.Pointer[cryptoDomain.Encryption]) (cryptoDomain.Encryption, bool) {
	enc := slot.Load()
	if enc == nil {
		return cryptoDomain.Encryption{}, false
	}
	return *enc, true
}

func store(slot *atomic.Pointer[cryptoDomain.Encryption], enc cryptoDomain.Encryption) {
	if enc.IsZero() {
		slot.Store(nil)
		return
	}
	slot.Store(&enc)
}
