package generator

import (
	"crypto/rand"
	"io"
	"math/big"

	apperrors "github.com/allisson/credstore/internal/errors"
)

// serialNumberBits keeps serials positive and within the 20 octets RFC 5280 allows.
const serialNumberBits = 159

// SerialNumberGenerator produces certificate serial numbers.
type SerialNumberGenerator interface {
	Generate() (*big.Int, error)
}

type randomSerialNumberGenerator struct {
	random io.Reader
}

// Generate returns a random integer in (0, 2^159).
func (g *randomSerialNumberGenerator) Generate() (*big.Int, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), serialNumberBits)
	for {
		serial, err := rand.Int(g.random, limit)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to generate serial number")
		}
		if serial.Sign() > 0 {
			return serial, nil
		}
	}
}

// NewRandomSerialNumberGenerator returns a SerialNumberGenerator reading crypto/rand.
func NewRandomSerialNumberGenerator() SerialNumberGenerator {
	return &randomSerialNumberGenerator{random: rand.Reader}
}
