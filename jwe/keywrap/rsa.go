package keywrap

import (
	"crypto"
	"crypto/rsa"
	"fmt"
	"io"

	// Register the OAEP hash functions with crypto.Hash.
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"

	"github.com/secureclaims/go-jwe-middleware/jwa"
)

type rsaOAEP struct {
	alg  jwa.KeyAlgorithm
	hash crypto.Hash
}

func newRSAOAEP(alg jwa.KeyAlgorithm) *rsaOAEP {
	w := &rsaOAEP{alg: alg}
	switch alg {
	case jwa.RSA_OAEP:
		w.hash = crypto.SHA1
	case jwa.RSA_OAEP_256:
		w.hash = crypto.SHA256
	case jwa.RSA_OAEP_384:
		w.hash = crypto.SHA384
	default:
		w.hash = crypto.SHA512
	}
	return w
}

func (w *rsaOAEP) Algorithm() jwa.KeyAlgorithm { return w.alg }

// Wrap encrypts cek to the recipient's RSA public key. A private key is
// accepted and its public half used.
func (w *rsaOAEP) Wrap(rand io.Reader, cek []byte, key any) ([]byte, error) {
	pub, err := rsaPublicKey(w.alg, key)
	if err != nil {
		return nil, err
	}

	// OAEP carries at most k - 2*hLen - 2 message bytes.
	if max := pub.Size() - 2*w.hash.Size() - 2; len(cek) > max {
		return nil, fmt.Errorf("%w: %d-bit modulus cannot carry a %d-byte key with %s (max %d bytes)",
			ErrKeyEncryption, pub.N.BitLen(), len(cek), w.alg, max)
	}

	// The size check above leaves the random source as the only failure.
	wrapped, err := rsa.EncryptOAEP(w.hash.New(), rand, pub, cek, nil)
	if err != nil {
		return nil, fmt.Errorf("keywrap: %s wrap failed: %w", w.alg, err)
	}
	return wrapped, nil
}

// Unwrap decrypts the encrypted key with the recipient's private key. Every
// failure after the key type check yields ErrUnwrap.
func (w *rsaOAEP) Unwrap(wrapped []byte, key any) ([]byte, error) {
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires an *rsa.PrivateKey, got %T", ErrKeyEncryption, w.alg, key)
	}
	if priv.Size() < 2*w.hash.Size()+2 {
		return nil, fmt.Errorf("%w: %d-bit modulus is too small for %s", ErrKeyEncryption, priv.N.BitLen(), w.alg)
	}

	cek, err := rsa.DecryptOAEP(w.hash.New(), nil, priv, wrapped, nil)
	if err != nil {
		return nil, ErrUnwrap
	}
	return cek, nil
}

func rsaPublicKey(alg jwa.KeyAlgorithm, key any) (*rsa.PublicKey, error) {
	switch k := key.(type) {
	case *rsa.PublicKey:
		if k != nil {
			return k, nil
		}
	case *rsa.PrivateKey:
		if k != nil {
			return &k.PublicKey, nil
		}
	}
	return nil, fmt.Errorf("%w: %s requires an RSA public key, got %T", ErrKeyEncryption, alg, key)
}
