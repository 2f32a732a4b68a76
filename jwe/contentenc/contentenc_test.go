package contentenc

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secureclaims/go-jwe-middleware/jwa"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestNew(t *testing.T) {
	for _, enc := range jwa.ContentEncryptions() {
		t.Run(enc.String(), func(t *testing.T) {
			c, err := New(enc)
			require.NoError(t, err)
			assert.Equal(t, enc, c.Algorithm())
			assert.Equal(t, enc.KeySize(), c.KeySize())
		})
	}

	_, err := New(jwa.ContentEncryption("A128CTR"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestCipher_RoundTrip(t *testing.T) {
	aad := []byte("eyJhbGciOiJSU0EtT0FFUCIsImVuYyI6IkExMjhHQ00ifQ")

	for _, enc := range jwa.ContentEncryptions() {
		t.Run(enc.String(), func(t *testing.T) {
			c, err := New(enc)
			require.NoError(t, err)

			for _, plaintext := range [][]byte{nil, []byte("x"), bytes.Repeat([]byte("claims"), 100)} {
				cek, err := GenerateKey(rand.Reader, c.KeySize())
				require.NoError(t, err)
				iv, err := GenerateNonce(rand.Reader, c.NonceSize())
				require.NoError(t, err)

				ciphertext, tag, err := c.Seal(cek, iv, plaintext, aad)
				require.NoError(t, err)
				assert.Len(t, tag, c.TagSize())

				opened, err := c.Open(cek, iv, ciphertext, tag, aad)
				require.NoError(t, err)
				assert.Equal(t, string(plaintext), string(opened))
			}
		})
	}
}

func TestCipher_TamperDetection(t *testing.T) {
	aad := []byte("header")
	plaintext := []byte(`{"iss":"https:devgluu.saminet.local","sub":"testing"}`)

	for _, enc := range jwa.ContentEncryptions() {
		t.Run(enc.String(), func(t *testing.T) {
			c, err := New(enc)
			require.NoError(t, err)
			cek, err := GenerateKey(rand.Reader, c.KeySize())
			require.NoError(t, err)
			iv, err := GenerateNonce(rand.Reader, c.NonceSize())
			require.NoError(t, err)
			ciphertext, tag, err := c.Seal(cek, iv, plaintext, aad)
			require.NoError(t, err)

			flip := func(b []byte, i int) []byte {
				out := append([]byte(nil), b...)
				out[i] ^= 0x01
				return out
			}

			for i := range ciphertext {
				opened, err := c.Open(cek, iv, flip(ciphertext, i), tag, aad)
				require.ErrorIs(t, err, ErrAuthenticationFailed)
				require.Nil(t, opened)
			}
			for i := range tag {
				opened, err := c.Open(cek, iv, ciphertext, flip(tag, i), aad)
				require.ErrorIs(t, err, ErrAuthenticationFailed)
				require.Nil(t, opened)
			}

			opened, err := c.Open(cek, iv, ciphertext, tag, []byte("other header"))
			assert.ErrorIs(t, err, ErrAuthenticationFailed)
			assert.Nil(t, opened)

			opened, err = c.Open(cek, flip(iv, 0), ciphertext, tag, aad)
			assert.ErrorIs(t, err, ErrAuthenticationFailed)
			assert.Nil(t, opened)

			opened, err = c.Open(cek[:len(cek)-1], iv, ciphertext, tag, aad)
			assert.ErrorIs(t, err, ErrAuthenticationFailed)
			assert.Nil(t, opened)

			opened, err = c.Open(cek, iv, ciphertext, tag[:len(tag)-1], aad)
			assert.ErrorIs(t, err, ErrAuthenticationFailed)
			assert.Nil(t, opened)
		})
	}
}

func TestGCM_KnownAnswer(t *testing.T) {
	// NIST GCM test case 2.
	c, err := New(jwa.A128GCM)
	require.NoError(t, err)

	key := make([]byte, 16)
	iv := make([]byte, 12)
	plaintext := make([]byte, 16)

	ciphertext, tag, err := c.Seal(key, iv, plaintext, nil)
	require.NoError(t, err)
	assert.Equal(t, "0388dace60b6a392f328c2b971b2fe78", hex.EncodeToString(ciphertext))
	assert.Equal(t, "ab6e47d42cec13bdf53a67b21257bddf", hex.EncodeToString(tag))
}

func TestCBCHMAC_KnownAnswer(t *testing.T) {
	// RFC 7518 appendix B.1.
	c, err := New(jwa.A128CBC_HS256)
	require.NoError(t, err)

	key := mustHex(t, "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	iv := mustHex(t, "1af38c2dc2b96ffdd86694092341bc04")
	plaintext := []byte("A cipher system must not be required to be secret, and it must be able to fall into the hands of the enemy without inconvenience")
	aad := []byte("The second principle of Auguste Kerckhoffs")

	ciphertext, tag, err := c.Seal(key, iv, plaintext, aad)
	require.NoError(t, err)
	assert.Equal(t, "c80edfa32ddf39d5ef00c0b468834279a2e46a1b8049f792f76bfe54b903a9c9"+
		"a94ac9b47ad2655c5f10f9aef71427e2fc6f9b3f399a221489f16362c7032336"+
		"09d45ac69864e3321cf82935ac4096c86e133314c54019e8ca7980dfa4b9cf1b"+
		"384c486f3a54c51078158ee5d79de59fbd34d848b3d69550a67646344427ade5"+
		"4b8851ffb598f7f80074b9473c82e2db", hex.EncodeToString(ciphertext))
	assert.Equal(t, "652c3fa36b0a7c5b3219fab3a30bc1c4", hex.EncodeToString(tag))

	opened, err := c.Open(key, iv, ciphertext, tag, aad)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestCipher_SealRejectsBadSizes(t *testing.T) {
	c, err := New(jwa.A256GCM)
	require.NoError(t, err)

	_, _, err = c.Seal(make([]byte, 16), make([]byte, 12), []byte("p"), nil)
	assert.ErrorIs(t, err, ErrKeySize)

	_, _, err = c.Seal(make([]byte, 32), make([]byte, 16), []byte("p"), nil)
	assert.ErrorIs(t, err, ErrNonceSize)

	cbc, err := New(jwa.A128CBC_HS256)
	require.NoError(t, err)
	_, _, err = cbc.Seal(make([]byte, 16), make([]byte, 16), []byte("p"), nil)
	assert.ErrorIs(t, err, ErrKeySize)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerate(t *testing.T) {
	a, err := GenerateKey(rand.Reader, 16)
	require.NoError(t, err)
	b, err := GenerateKey(rand.Reader, 16)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	_, err = GenerateNonce(failingReader{}, 12)
	assert.EqualError(t, err, "failed to generate initialization vector: entropy exhausted")

	_, err = GenerateKey(rand.Reader, 0)
	assert.Error(t, err)
}
