package generator

import (
	"crypto/rand"
	"math/big"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/credstore/internal/errors"
)

const (
	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	numberChars  = "0123456789"
	specialChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

	// DefaultPasswordLength is used when parameters leave Length unset.
	DefaultPasswordLength = 30
)

// PasswordParameters selects the alphabet and length of a generated password. They
// are stored encrypted with password and user credentials.
type PasswordParameters struct {
	Length         int  `json:"length"`
	ExcludeUpper   bool `json:"exclude_upper"`
	ExcludeLower   bool `json:"exclude_lower"`
	ExcludeNumber  bool `json:"exclude_number"`
	IncludeSpecial bool `json:"include_special"`
}

// Validate checks the length and that at least one character class remains.
func (p PasswordParameters) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Length, validation.Min(4), validation.Max(200)),
	)
	if err != nil {
		return apperrors.Wrap(ErrInvalidParameters, err.Error())
	}
	if len(p.charsets()) == 0 {
		return apperrors.Wrap(ErrInvalidParameters, "no characters left to generate from")
	}
	return nil
}

func (p PasswordParameters) charsets() []string {
	sets := make([]string, 0, 4)
	if !p.ExcludeUpper {
		sets = append(sets, upperChars)
	}
	if !p.ExcludeLower {
		sets = append(sets, lowerChars)
	}
	if !p.ExcludeNumber {
		sets = append(sets, numberChars)
	}
	if p.IncludeSpecial {
		sets = append(sets, specialChars)
	}
	return sets
}

// PasswordGenerator creates random passwords from crypto/rand.
type PasswordGenerator struct{}

// NewPasswordGenerator creates a PasswordGenerator.
func NewPasswordGenerator() *PasswordGenerator {
	return &PasswordGenerator{}
}

// Generate returns a password holding at least one character of every enabled class.
func (g *PasswordGenerator) Generate(params PasswordParameters) (string, error) {
	if params.Length == 0 {
		params.Length = DefaultPasswordLength
	}
	if err := params.Validate(); err != nil {
		return "", err
	}

	sets := params.charsets()
	alphabet := strings.Join(sets, "")

	password := make([]byte, params.Length)
	for i := range password {
		source := alphabet
		if i < len(sets) {
			source = sets[i]
		}
		c, err := randomChar(source)
		if err != nil {
			return "", err
		}
		password[i] = c
	}

	if err := shuffle(password); err != nil {
		return "", err
	}
	return string(password), nil
}

func randomChar(source string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(source))))
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read random data")
	}
	return source[n.Int64()], nil
}

func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return apperrors.Wrap(err, "failed to read random data")
		}
		j := n.Int64()
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
