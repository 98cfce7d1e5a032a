package generator

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"

	"golang.org/x/crypto/ssh"

	apperrors "github.com/allisson/credstore/internal/errors"
)

// DefaultKeyLength is used when a request names no RSA modulus size.
const DefaultKeyLength = 2048

// KeyPair is a PEM private key with its public half.
type KeyPair struct {
	PrivateKey string
	PublicKey  string
}

// KeyPairGenerator creates RSA and SSH key pairs.
type KeyPairGenerator struct{}

// NewKeyPairGenerator creates a KeyPairGenerator.
func NewKeyPairGenerator() *KeyPairGenerator {
	return &KeyPairGenerator{}
}

// GenerateRSAKey returns a new RSA private key of bits length.
func (g *KeyPairGenerator) GenerateRSAKey(bits int) (*rsa.PrivateKey, error) {
	if bits == 0 {
		bits = DefaultKeyLength
	}
	switch bits {
	case 2048, 3072, 4096:
	default:
		return nil, apperrors.Wrapf(ErrInvalidParameters, "unsupported key length %d", bits)
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate rsa key")
	}
	return key, nil
}

// GenerateRSA returns a PKCS#1 private key and a PKIX public key, both PEM encoded.
func (g *KeyPairGenerator) GenerateRSA(bits int) (*KeyPair, error) {
	key, err := g.GenerateRSAKey(bits)
	if err != nil {
		return nil, err
	}
	return EncodeRSAKeyPair(key)
}

// GenerateSSH returns an OpenSSH private key and an authorized_keys line carrying
// comment.
func (g *KeyPairGenerator) GenerateSSH(bits int, comment string) (*KeyPair, error) {
	key, err := g.GenerateRSAKey(bits)
	if err != nil {
		return nil, err
	}

	block, err := ssh.MarshalPrivateKey(key, comment)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal ssh private key")
	}
	pub, err := ssh.NewPublicKey(&key.PublicKey)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal ssh public key")
	}

	authorizedKey := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(pub)))
	if comment != "" {
		authorizedKey += " " + comment
	}

	return &KeyPair{
		PrivateKey: string(pem.EncodeToMemory(block)),
		PublicKey:  authorizedKey,
	}, nil
}

// EncodeRSAKeyPair PEM encodes key and its public half.
func EncodeRSAKeyPair(key *rsa.PrivateKey) (*KeyPair, error) {
	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal rsa public key")
	}
	return &KeyPair{
		PrivateKey: string(pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		})),
		PublicKey: string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub})),
	}, nil
}
