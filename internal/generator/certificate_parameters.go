package generator

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"net"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/credstore/internal/errors"
	appValidation "github.com/allisson/credstore/internal/validation"
)

// Default and maximum certificate lifetimes, in days.
const (
	DefaultDurationDays = 365
	MaxDurationDays     = 3650
)

var keyUsages = map[string]x509.KeyUsage{
	"digital_signature": x509.KeyUsageDigitalSignature,
	"non_repudiation":   x509.KeyUsageContentCommitment,
	"key_encipherment":  x509.KeyUsageKeyEncipherment,
	"data_encipherment": x509.KeyUsageDataEncipherment,
	"key_agreement":     x509.KeyUsageKeyAgreement,
	"key_cert_sign":     x509.KeyUsageCertSign,
	"crl_sign":          x509.KeyUsageCRLSign,
	"encipher_only":     x509.KeyUsageEncipherOnly,
	"decipher_only":     x509.KeyUsageDecipherOnly,
}

var extKeyUsages = map[string]x509.ExtKeyUsage{
	"server_auth":      x509.ExtKeyUsageServerAuth,
	"client_auth":      x509.ExtKeyUsageClientAuth,
	"code_signing":     x509.ExtKeyUsageCodeSigning,
	"email_protection": x509.ExtKeyUsageEmailProtection,
	"timestamping":     x509.ExtKeyUsageTimeStamping,
}

// CertificateParameters describes one certificate to issue.
type CertificateParameters struct {
	CommonName       string
	Organization     string
	OrganizationUnit string
	Locality         string
	State            string
	Country          string

	// AlternativeNames are DNS names or IP addresses.
	AlternativeNames []string
	// KeyUsage holds names such as "digital_signature" or "key_cert_sign".
	KeyUsage []string
	// ExtendedKeyUsage holds names such as "server_auth" or "client_auth".
	ExtendedKeyUsage []string

	DurationDays int
	KeyLength    int
	IsCA         bool
}

// Validate checks the parameters. A subject needs a common name or an organization.
func (p CertificateParameters) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.CommonName,
			validation.When(p.Organization == "", validation.Required),
			validation.Length(0, 64),
		),
		validation.Field(&p.Organization, validation.Length(0, 64)),
		validation.Field(&p.Country, validation.Length(2, 2)),
		validation.Field(&p.DurationDays, validation.Required, validation.Min(1), validation.Max(MaxDurationDays)),
		validation.Field(&p.KeyLength, validation.Required, validation.In(2048, 3072, 4096)),
		validation.Field(&p.AlternativeNames, validation.Each(appValidation.AlternativeName)),
		validation.Field(&p.KeyUsage, validation.Each(validation.In(mapKeys(keyUsages)...))),
		validation.Field(&p.ExtendedKeyUsage, validation.Each(validation.In(mapKeys(extKeyUsages)...))),
	)
	if err != nil {
		return apperrors.Wrap(ErrInvalidParameters, err.Error())
	}
	return nil
}

// Subject is the distinguished name built from the subject fields.
func (p CertificateParameters) Subject() pkix.Name {
	name := pkix.Name{CommonName: p.CommonName}
	if p.Organization != "" {
		name.Organization = []string{p.Organization}
	}
	if p.OrganizationUnit != "" {
		name.OrganizationalUnit = []string{p.OrganizationUnit}
	}
	if p.Locality != "" {
		name.Locality = []string{p.Locality}
	}
	if p.State != "" {
		name.Province = []string{p.State}
	}
	if p.Country != "" {
		name.Country = []string{p.Country}
	}
	return name
}

func (p CertificateParameters) keyUsage() x509.KeyUsage {
	var usage x509.KeyUsage
	for _, name := range p.KeyUsage {
		usage |= keyUsages[name]
	}
	return usage
}

func (p CertificateParameters) extKeyUsage() []x509.ExtKeyUsage {
	if len(p.ExtendedKeyUsage) == 0 {
		return nil
	}
	usages := make([]x509.ExtKeyUsage, 0, len(p.ExtendedKeyUsage))
	for _, name := range p.ExtendedKeyUsage {
		usages = append(usages, extKeyUsages[name])
	}
	return usages
}

func (p CertificateParameters) alternativeNames() ([]string, []net.IP) {
	var dnsNames []string
	var ips []net.IP
	for _, name := range p.AlternativeNames {
		if ip := net.ParseIP(name); ip != nil {
			ips = append(ips, ip)
			continue
		}
		dnsNames = append(dnsNames, name)
	}
	return dnsNames, ips
}

func mapKeys[V any](m map[string]V) []any {
	keys := make([]any, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
