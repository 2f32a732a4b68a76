// Package keywrap implements the JWE key management algorithms: protecting
// the per-message content encryption key (CEK) for a recipient.
//
// Two classes of failure are distinguished. ErrKeyEncryption covers problems
// with the caller's key object (wrong type, modulus too small) and can be
// reported as-is. ErrUnwrap covers every failure that depends on token data
// (bad padding, wrong ciphertext length, wrong private key); Unwrap returns it
// through a single code path so callers cannot tell the causes apart.
package keywrap

import (
	"errors"
	"fmt"
	"io"

	"github.com/secureclaims/go-jwe-middleware/jwa"
)

var (
	// ErrKeyEncryption is returned when the supplied key cannot serve the algorithm.
	ErrKeyEncryption = errors.New("jwe: key encryption failed")

	// ErrUnwrap is the uniform data-dependent unwrap failure.
	ErrUnwrap = errors.New("jwe: key unwrap failed")

	// ErrUnsupported is returned by New for an unknown algorithm.
	ErrUnsupported = errors.New("unsupported key management algorithm")
)

// KeyWrapper wraps and unwraps a CEK for one key management algorithm.
// Implementations hold no mutable state and are safe for concurrent use.
type KeyWrapper interface {
	Algorithm() jwa.KeyAlgorithm
	Wrap(rand io.Reader, cek []byte, key any) ([]byte, error)
	Unwrap(wrapped []byte, key any) ([]byte, error)
}

// ContentKeyer is implemented by algorithms where the recipient key itself is
// the CEK and the encrypted key segment is empty.
type ContentKeyer interface {
	ContentKey(key any, size int) ([]byte, error)
}

// New returns the KeyWrapper registered for alg.
func New(alg jwa.KeyAlgorithm) (KeyWrapper, error) {
	switch alg {
	case jwa.RSA_OAEP, jwa.RSA_OAEP_256, jwa.RSA_OAEP_384, jwa.RSA_OAEP_512:
		return newRSAOAEP(alg), nil
	case jwa.DIRECT:
		return direct{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, alg)
	}
}
