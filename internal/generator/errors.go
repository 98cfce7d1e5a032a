package generator

import (
	apperrors "github.com/allisson/credstore/internal/errors"
)

var (
	// ErrCertificateIssuance indicates the issuer key or certificate could not be used.
	// No certificate is returned alongside it.
	ErrCertificateIssuance = apperrors.Wrap(apperrors.ErrInvalidInput, "error.certificate_issuance")

	// ErrInvalidParameters indicates generation parameters failed validation.
	ErrInvalidParameters = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid generation parameters")

	// ErrCaNotFound indicates the named CA does not exist or is not a certificate authority.
	ErrCaNotFound = apperrors.Wrap(apperrors.ErrNotFound, "error.generation.ca_not_found")
)
