// Package generator issues X.509 certificates and generates key pairs and passwords
// for new credential versions.
package generator

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // RFC 5280 subject key identifier method 1
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"time"

	apperrors "github.com/allisson/credstore/internal/errors"
)

// Clock supplies the issuance time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystemClock returns a Clock reading the wall clock.
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Issuer is the CA a certificate is signed by, in PEM form.
type Issuer struct {
	CertificatePEM string
	PrivateKeyPEM  string
}

// CertificateGenerator builds and signs certificates. It is safe for concurrent use.
type CertificateGenerator struct {
	clock   Clock
	serials SerialNumberGenerator
}

// NewCertificateGenerator creates a CertificateGenerator.
func NewCertificateGenerator(clock Clock, serials SerialNumberGenerator) *CertificateGenerator {
	return &CertificateGenerator{clock: clock, serials: serials}
}

// SelfSign issues a certificate for keyPair signed by keyPair itself.
func (g *CertificateGenerator) SelfSign(
	keyPair *rsa.PrivateKey,
	params CertificateParameters,
) (*x509.Certificate, error) {
	template, err := g.template(keyPair, params)
	if err != nil {
		return nil, err
	}
	return sign(template, template, &keyPair.PublicKey, keyPair)
}

// SignByIssuer issues a certificate for keyPair signed by issuer. The issuer subject
// is read from the issuer certificate.
func (g *CertificateGenerator) SignByIssuer(
	keyPair *rsa.PrivateKey,
	params CertificateParameters,
	issuer Issuer,
) (*x509.Certificate, error) {
	issuerKey, err := ParseRSAPrivateKey(issuer.PrivateKeyPEM)
	if err != nil {
		return nil, apperrors.Wrap(ErrCertificateIssuance, err.Error())
	}
	issuerCert, err := ParseCertificate(issuer.CertificatePEM)
	if err != nil {
		return nil, apperrors.Wrap(ErrCertificateIssuance, err.Error())
	}

	template, err := g.template(keyPair, params)
	if err != nil {
		return nil, err
	}
	return sign(template, issuerCert, &keyPair.PublicKey, issuerKey)
}

func (g *CertificateGenerator) template(
	keyPair *rsa.PrivateKey,
	params CertificateParameters,
) (*x509.Certificate, error) {
	serial, err := g.serials.Generate()
	if err != nil {
		return nil, err
	}
	subjectKeyID, err := subjectKeyIdentifier(&keyPair.PublicKey)
	if err != nil {
		return nil, apperrors.Wrap(ErrCertificateIssuance, err.Error())
	}

	notBefore := g.clock.Now().UTC().Truncate(time.Second)
	dnsNames, ips := params.alternativeNames()

	return &x509.Certificate{
		SerialNumber:          serial,
		Subject:               params.Subject(),
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(time.Duration(params.DurationDays) * 24 * time.Hour),
		SubjectKeyId:          subjectKeyID,
		DNSNames:              dnsNames,
		IPAddresses:           ips,
		KeyUsage:              params.keyUsage(),
		ExtKeyUsage:           params.extKeyUsage(),
		BasicConstraintsValid: true,
		IsCA:                  params.IsCA,
		SignatureAlgorithm:    x509.SHA256WithRSA,
	}, nil
}

func sign(template, parent *x509.Certificate, pub *rsa.PublicKey, priv *rsa.PrivateKey) (*x509.Certificate, error) {
	der, err := x509.CreateCertificate(rand.Reader, template, parent, pub, priv)
	if err != nil {
		return nil, apperrors.Wrap(ErrCertificateIssuance, err.Error())
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, apperrors.Wrap(ErrCertificateIssuance, err.Error())
	}
	return cert, nil
}

// subjectKeyIdentifier is the SHA-1 of the subjectPublicKey bit string.
func subjectKeyIdentifier(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	var info struct {
		Algorithm pkix.AlgorithmIdentifier
		PublicKey asn1.BitString
	}
	if _, err := asn1.Unmarshal(der, &info); err != nil {
		return nil, err
	}
	sum := sha1.Sum(info.PublicKey.Bytes) //nolint:gosec
	return sum[:], nil
}

// ParseCertificate decodes the first PEM certificate in s.
func ParseCertificate(s string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, apperrors.New("no PEM certificate found")
	}
	return x509.ParseCertificate(block.Bytes)
}

// ParseRSAPrivateKey decodes a PKCS#1 or PKCS#8 PEM RSA private key.
func ParseRSAPrivateKey(s string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil {
		return nil, apperrors.New("no PEM private key found")
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, apperrors.New("private key is not an RSA key")
		}
		return rsaKey, nil
	default:
		return nil, apperrors.New("unsupported private key type " + block.Type)
	}
}

// EncodeCertificate returns cert in PEM form.
func EncodeCertificate(cert *x509.Certificate) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}))
}
