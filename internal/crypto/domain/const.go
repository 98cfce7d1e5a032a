package domain

// Algorithm is the AEAD used by software encryption providers. Both options take a
// 256-bit key and a 96-bit random nonce.
type Algorithm string

const (
	// AESGCM is AES-256 in Galois/Counter Mode. Preferred on hardware with AES-NI.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305. Preferred where AES is not hardware accelerated.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// ParseAlgorithm maps a configuration string to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM, ChaCha20:
		return Algorithm(s), nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}

// ProviderType names the backend that holds a key's material.
type ProviderType string

const (
	// ProviderInternal keeps a raw 32-byte key in process memory.
	ProviderInternal ProviderType = "internal"

	// ProviderPassword derives its key from a passphrase and the salt stored on the key's canary.
	ProviderPassword ProviderType = "password"

	// ProviderKMS unwraps a data key with an external KMS or HSM at start-up.
	ProviderKMS ProviderType = "kms"

	// ProviderNoop performs no encryption. Test and development use only.
	ProviderNoop ProviderType = "noop"
)

// KeySize is the length in bytes of every symmetric key handled by the providers.
const KeySize = 32

// SaltSize is the length in bytes of the salt generated for password-derived keys.
const SaltSize = 16
