// Package validation provides custom validation rules for the application.
package validation

import (
	"net"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/credstore/internal/errors"
)

var (
	credentialPathRegex = regexp.MustCompile(`^/?[A-Za-z0-9_.\-]+(/[A-Za-z0-9_.\-]+)*$`)
	dnsNameRegex        = regexp.MustCompile(`^(\*\.)?([A-Za-z0-9]([A-Za-z0-9\-]{0,61}[A-Za-z0-9])?\.)*[A-Za-z0-9]([A-Za-z0-9\-]{0,61}[A-Za-z0-9])?$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// CredentialPath accepts slash separated names made of letters, digits, '_', '-' and
// '.', with an optional leading slash. Empty segments and ".." are rejected.
var CredentialPath = validation.NewStringRuleWithError(
	func(s string) bool {
		if !credentialPathRegex.MatchString(s) {
			return false
		}
		for _, segment := range strings.Split(strings.TrimPrefix(s, "/"), "/") {
			if segment == "." || segment == ".." {
				return false
			}
		}
		return true
	},
	validation.NewError("validation_credential_path", "must be a valid credential path"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// AlternativeName accepts an IP address or a DNS name, optionally with a leading
// "*." wildcard label.
var AlternativeName = validation.NewStringRuleWithError(
	func(s string) bool {
		if net.ParseIP(s) != nil {
			return true
		}
		return len(s) <= 253 && dnsNameRegex.MatchString(s)
	},
	validation.NewError("validation_alternative_name", "must be a DNS name or an IP address"),
)
