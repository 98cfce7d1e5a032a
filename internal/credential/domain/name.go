package domain

import (
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/credstore/internal/errors"
	appValidation "github.com/allisson/credstore/internal/validation"
)

// Separator starts every normalized credential name.
const Separator = "/"

// NormalizeName prepends Separator when missing. An empty name stays empty.
func NormalizeName(name string) string {
	if name == "" || strings.HasPrefix(name, Separator) {
		return name
	}
	return Separator + name
}

// NormalizeNamePtr is NormalizeName for optional names; nil stays nil.
func NormalizeNamePtr(name *string) *string {
	if name == nil {
		return nil
	}
	normalized := NormalizeName(*name)
	return &normalized
}

// ValidateName checks a credential name before it is stored.
func ValidateName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		appValidation.NotBlank,
		appValidation.NoWhitespace,
		validation.Length(1, 1024),
		appValidation.CredentialPath,
	)
	if err != nil {
		return apperrors.Wrap(ErrInvalidName, err.Error())
	}
	return nil
}
