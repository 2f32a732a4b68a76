package contentenc

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/secureclaims/go-jwe-middleware/jwa"
)

const (
	gcmNonceSize = 12 // 96 bits
	gcmTagSize   = 16 // 128 bits
)

type gcmCipher struct {
	alg     jwa.ContentEncryption
	keySize int
}

func (c *gcmCipher) Algorithm() jwa.ContentEncryption { return c.alg }
func (c *gcmCipher) KeySize() int                     { return c.keySize }
func (c *gcmCipher) NonceSize() int                   { return gcmNonceSize }
func (c *gcmCipher) TagSize() int                     { return gcmTagSize }

func (c *gcmCipher) aead(cek []byte) (cipher.AEAD, error) {
	if len(cek) != c.keySize {
		return nil, fmt.Errorf("%w: %s requires %d bytes, got %d", ErrKeySize, c.alg, c.keySize, len(cek))
	}
	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (c *gcmCipher) Seal(cek, iv, plaintext, aad []byte) ([]byte, []byte, error) {
	if len(iv) != gcmNonceSize {
		return nil, nil, fmt.Errorf("%w: %s requires %d bytes, got %d", ErrNonceSize, c.alg, gcmNonceSize, len(iv))
	}
	g, err := c.aead(cek)
	if err != nil {
		return nil, nil, err
	}

	sealed := g.Seal(nil, iv, plaintext, aad)
	split := len(sealed) - g.Overhead()
	return sealed[:split], sealed[split:], nil
}

func (c *gcmCipher) Open(cek, iv, ciphertext, tag, aad []byte) ([]byte, error) {
	if len(iv) != gcmNonceSize || len(tag) != gcmTagSize {
		return nil, ErrAuthenticationFailed
	}
	g, err := c.aead(cek)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	// cipher.AEAD verifies the tag before decrypting anything.
	plaintext, err := g.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}
