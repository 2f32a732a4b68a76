// Package contentenc implements the authenticated symmetric ciphers used to
// protect a JWE payload: the AES-GCM family and the AES-CBC-HMAC-SHA2 family.
//
// Every Cipher releases plaintext only after the authentication tag has been
// verified. A failed verification returns ErrAuthenticationFailed and no data.
package contentenc

import (
	"errors"
	"fmt"
	"io"

	"github.com/secureclaims/go-jwe-middleware/jwa"
)

var (
	// ErrAuthenticationFailed is returned by Open for any tag mismatch or
	// malformed input. Callers cannot tell which check failed.
	ErrAuthenticationFailed = errors.New("jwe: decryption failed")

	// ErrKeySize is returned by Seal when the CEK length does not match the algorithm.
	ErrKeySize = errors.New("invalid content encryption key size")

	// ErrNonceSize is returned by Seal when the IV length does not match the algorithm.
	ErrNonceSize = errors.New("invalid initialization vector size")

	// ErrUnsupported is returned by New for an unknown algorithm.
	ErrUnsupported = errors.New("unsupported content encryption algorithm")
)

// Cipher seals and opens a payload for one content encryption algorithm.
// Implementations hold no mutable state and are safe for concurrent use.
type Cipher interface {
	Algorithm() jwa.ContentEncryption
	KeySize() int
	NonceSize() int
	TagSize() int
	Seal(cek, iv, plaintext, aad []byte) (ciphertext, tag []byte, err error)
	Open(cek, iv, ciphertext, tag, aad []byte) ([]byte, error)
}

// New returns the Cipher registered for enc.
func New(enc jwa.ContentEncryption) (Cipher, error) {
	switch enc {
	case jwa.A128GCM, jwa.A192GCM, jwa.A256GCM:
		return &gcmCipher{alg: enc, keySize: enc.KeySize()}, nil
	case jwa.A128CBC_HS256, jwa.A192CBC_HS384, jwa.A256CBC_HS512:
		return newCBCHMAC(enc), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, enc)
	}
}

// GenerateKey draws a fresh content encryption key of size bytes from r.
func GenerateKey(r io.Reader, size int) ([]byte, error) {
	return random(r, size, "content encryption key")
}

// GenerateNonce draws a fresh initialization vector of size bytes from r.
func GenerateNonce(r io.Reader, size int) ([]byte, error) {
	return random(r, size, "initialization vector")
}

func random(r io.Reader, size int, what string) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid %s size %d", what, size)
	}
	b := make([]byte, size)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", what, err)
	}
	return b, nil
}
