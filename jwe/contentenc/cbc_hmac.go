package contentenc

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/secureclaims/go-jwe-middleware/jwa"
)

// cbcHMAC implements AES_CBC_HMAC_SHA2 (RFC 7518 section 5.2). The CEK is
// split into a MAC key (first half) and an encryption key (second half); the
// tag is the first half of the HMAC output.
type cbcHMAC struct {
	alg     jwa.ContentEncryption
	keySize int
	hash    func() hash.Hash
}

func newCBCHMAC(enc jwa.ContentEncryption) *cbcHMAC {
	c := &cbcHMAC{alg: enc, keySize: enc.KeySize()}
	switch enc {
	case jwa.A128CBC_HS256:
		c.hash = sha256.New
	case jwa.A192CBC_HS384:
		c.hash = sha512.New384
	default:
		c.hash = sha512.New
	}
	return c
}

func (c *cbcHMAC) Algorithm() jwa.ContentEncryption { return c.alg }
func (c *cbcHMAC) KeySize() int                     { return c.keySize }
func (c *cbcHMAC) NonceSize() int                   { return aes.BlockSize }
func (c *cbcHMAC) TagSize() int                     { return c.keySize / 2 }

func (c *cbcHMAC) Seal(cek, iv, plaintext, aad []byte) ([]byte, []byte, error) {
	if len(cek) != c.keySize {
		return nil, nil, fmt.Errorf("%w: %s requires %d bytes, got %d", ErrKeySize, c.alg, c.keySize, len(cek))
	}
	if len(iv) != aes.BlockSize {
		return nil, nil, fmt.Errorf("%w: %s requires %d bytes, got %d", ErrNonceSize, c.alg, aes.BlockSize, len(iv))
	}

	macKey, encKey := cek[:c.keySize/2], cek[c.keySize/2:]
	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, nil, err
	}

	ciphertext := pad(plaintext, aes.BlockSize)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, ciphertext)

	return ciphertext, c.tag(macKey, aad, iv, ciphertext), nil
}

func (c *cbcHMAC) Open(cek, iv, ciphertext, tag, aad []byte) ([]byte, error) {
	if len(cek) != c.keySize || len(iv) != aes.BlockSize || len(tag) != c.TagSize() {
		return nil, ErrAuthenticationFailed
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrAuthenticationFailed
	}

	macKey, encKey := cek[:c.keySize/2], cek[c.keySize/2:]
	if subtle.ConstantTimeCompare(c.tag(macKey, aad, iv, ciphertext), tag) != 1 {
		return nil, ErrAuthenticationFailed
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	plaintext, ok := unpad(plaintext, aes.BlockSize)
	if !ok {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// tag computes HMAC(AAD || IV || ciphertext || AL) truncated to TagSize, where
// AL is the AAD length in bits as a 64-bit big-endian integer.
func (c *cbcHMAC) tag(macKey, aad, iv, ciphertext []byte) []byte {
	var al [8]byte
	binary.BigEndian.PutUint64(al[:], uint64(len(aad))*8)

	m := hmac.New(c.hash, macKey)
	m.Write(aad)
	m.Write(iv)
	m.Write(ciphertext)
	m.Write(al[:])
	return m.Sum(nil)[:c.TagSize()]
}

// pad applies PKCS#7 padding into a new slice.
func pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(b []byte, blockSize int) ([]byte, bool) {
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, false
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
