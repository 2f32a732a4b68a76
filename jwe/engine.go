package jwe

import (
	"errors"
	"fmt"
	"io"

	"github.com/secureclaims/go-jwe-middleware/claims"
	"github.com/secureclaims/go-jwe-middleware/jwa"
	"github.com/secureclaims/go-jwe-middleware/jwe/contentenc"
	"github.com/secureclaims/go-jwe-middleware/jwe/keywrap"
)

// Logger defines an optional logging interface for the engine.
// It is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// KeyFunc resolves the key for a token from its protected header. It is
// called only after the header's algorithms passed the allow-list.
type KeyFunc func(Header) (any, error)

// Engine encrypts and decrypts compact tokens. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	keyAlgorithms      map[jwa.KeyAlgorithm]bool
	contentEncryptions map[jwa.ContentEncryption]bool
	random             io.Reader
	codec              claims.Codec
	logger             Logger
	maxTokenSize       int
}

// Encrypt protects payload for the holder of key.
//
// For the RSA-OAEP family key is the recipient's *rsa.PublicKey (an
// *rsa.PrivateKey is also accepted). For dir it is the shared []byte CEK.
func (e *Engine) Encrypt(h Header, payload []byte, key any) (string, error) {
	wrapper, cipher, err := e.primitives(h)
	if err != nil {
		return "", err
	}

	encodedHeader, err := h.Encode()
	if err != nil {
		return "", err
	}

	var cek, wrapped []byte
	if keyer, ok := wrapper.(keywrap.ContentKeyer); ok {
		cek, err = keyer.ContentKey(key, cipher.KeySize())
		if err != nil {
			return "", newError(ErrKeyEncryption, ErrorCodeKeyInvalid, "jwe: unusable key", err)
		}
		wrapped = []byte{}
	} else {
		cek, err = contentenc.GenerateKey(e.random, cipher.KeySize())
		if err != nil {
			return "", newError(ErrKeyEncryption, ErrorCodeEncryptionFailed, "jwe: encryption failed", err)
		}
		wrapped, err = wrapper.Wrap(e.random, cek, key)
		if err != nil {
			clear(cek)
			if errors.Is(err, keywrap.ErrKeyEncryption) {
				return "", newError(ErrKeyEncryption, ErrorCodeKeyInvalid, "jwe: unusable key", err)
			}
			return "", newError(ErrKeyEncryption, ErrorCodeEncryptionFailed, "jwe: encryption failed", err)
		}
	}
	defer clear(cek)

	iv, err := contentenc.GenerateNonce(e.random, cipher.NonceSize())
	if err != nil {
		return "", newError(ErrKeyEncryption, ErrorCodeEncryptionFailed, "jwe: encryption failed", err)
	}

	ciphertext, tag, err := cipher.Seal(cek, iv, payload, encodedHeader)
	if err != nil {
		return "", newError(ErrKeyEncryption, ErrorCodeEncryptionFailed, "jwe: encryption failed", err)
	}

	return Compact{
		ProtectedHeader: encodedHeader,
		EncryptedKey:    wrapped,
		IV:              iv,
		Ciphertext:      ciphertext,
		Tag:             tag,
	}.Serialize(), nil
}

// Decrypt returns the payload of token, decrypted with key. For the RSA-OAEP
// family key is the recipient's *rsa.PrivateKey; for dir the shared []byte.
func (e *Engine) Decrypt(token string, key any) ([]byte, error) {
	return e.DecryptWithKeyFunc(token, func(Header) (any, error) { return key, nil })
}

// DecryptWithKeyFunc is Decrypt with the key chosen from the token's header.
//
// Steps run in order and the first failure is returned:
//   - the token is split and decoded (ErrMalformedToken)
//   - alg and enc are checked against the allow-lists (ErrUnsupportedAlgorithm)
//   - keyFunc resolves the key (ErrKeyEncryption)
//   - the CEK is unwrapped and the payload authenticated and decrypted
//     (ErrAuthenticationFailed)
func (e *Engine) DecryptWithKeyFunc(token string, keyFunc KeyFunc) ([]byte, error) {
	if keyFunc == nil {
		return nil, newError(ErrInvalidConfig, ErrorCodeConfigInvalid, "jwe: key func cannot be nil", nil)
	}

	compact, h, err := e.parse(token)
	if err != nil {
		return nil, err
	}

	wrapper, cipher, err := e.primitives(h)
	if err != nil {
		return nil, err
	}
	if len(compact.IV) != cipher.NonceSize() {
		return nil, malformed(fmt.Sprintf("%s requires a %d-byte initialization vector, got %d",
			h.EncryptionAlgorithm, cipher.NonceSize(), len(compact.IV)), nil)
	}
	if len(compact.Tag) != cipher.TagSize() {
		return nil, malformed(fmt.Sprintf("%s requires a %d-byte authentication tag, got %d",
			h.EncryptionAlgorithm, cipher.TagSize(), len(compact.Tag)), nil)
	}

	key, err := keyFunc(h)
	if err != nil {
		return nil, newError(ErrKeyEncryption, ErrorCodeKeyNotFound, "jwe: no key for token", err)
	}

	cek, unwrapped, err := e.contentKey(wrapper, cipher.KeySize(), compact.EncryptedKey, key)
	if err != nil {
		return nil, err
	}
	defer clear(cek)

	plaintext, err := cipher.Open(cek, compact.IV, compact.Ciphertext, compact.Tag, compact.ProtectedHeader)
	if err != nil || !unwrapped {
		stage := "content_decrypt"
		if !unwrapped {
			stage = "key_unwrap"
		}
		if e.logger != nil {
			e.logger.Debug("Token decryption failed",
				"stage", stage, "alg", h.Algorithm, "enc", h.EncryptionAlgorithm, "kid", h.KeyID)
		}
		return nil, decryptionFailed()
	}

	return plaintext, nil
}

// contentKey recovers the CEK. When unwrapping fails for a reason that
// depends on the token, a random key of the right size is returned with
// unwrapped set to false, and content decryption still runs with it.
func (e *Engine) contentKey(wrapper keywrap.KeyWrapper, size int, encryptedKey []byte, key any) ([]byte, bool, error) {
	if keyer, ok := wrapper.(keywrap.ContentKeyer); ok {
		cek, err := keyer.ContentKey(key, size)
		if err != nil {
			return nil, false, newError(ErrKeyEncryption, ErrorCodeKeyInvalid, "jwe: unusable key", err)
		}
		if len(encryptedKey) != 0 {
			clear(cek)
			return nil, false, malformed(fmt.Sprintf("%s tokens must have an empty encrypted key", wrapper.Algorithm()), nil)
		}
		return cek, true, nil
	}

	fallback, err := contentenc.GenerateKey(e.random, size)
	if err != nil {
		return nil, false, newError(ErrKeyEncryption, ErrorCodeEncryptionFailed, "jwe: decryption failed", err)
	}

	cek, err := wrapper.Unwrap(encryptedKey, key)
	if err != nil && !errors.Is(err, keywrap.ErrUnwrap) {
		return nil, false, newError(ErrKeyEncryption, ErrorCodeKeyInvalid, "jwe: unusable key", err)
	}
	if err != nil || len(cek) != size {
		clear(cek)
		return fallback, false, nil
	}
	clear(fallback)
	return cek, true, nil
}

// EncryptClaims serializes c with the configured codec and encrypts it.
func (e *Engine) EncryptClaims(h Header, c claims.Claims, key any) (string, error) {
	payload, err := e.codec.Serialize(c)
	if err != nil {
		return "", newError(ErrClaimsParse, ErrorCodeClaimsInvalid, "jwe: claims could not be serialized", err)
	}
	return e.Encrypt(h, payload, key)
}

// DecryptClaims decrypts token and parses its payload with the configured
// codec.
func (e *Engine) DecryptClaims(token string, key any) (claims.Claims, error) {
	return e.DecryptClaimsWithKeyFunc(token, func(Header) (any, error) { return key, nil })
}

// DecryptClaimsWithKeyFunc is DecryptClaims with the key chosen from the
// token's header.
func (e *Engine) DecryptClaimsWithKeyFunc(token string, keyFunc KeyFunc) (claims.Claims, error) {
	payload, err := e.DecryptWithKeyFunc(token, keyFunc)
	if err != nil {
		return claims.Claims{}, err
	}
	c, err := e.codec.Parse(payload)
	if err != nil {
		return claims.Claims{}, newError(ErrClaimsParse, ErrorCodeClaimsInvalid, ErrClaimsParse.Error(), err)
	}
	return c, nil
}

// Inspect decodes the protected header of token without decrypting it.
// Nothing in the returned header is authenticated.
func (e *Engine) Inspect(token string) (Header, error) {
	_, h, err := e.parse(token)
	return h, err
}

func (e *Engine) parse(token string) (*Compact, Header, error) {
	if len(token) > e.maxTokenSize {
		return nil, Header{}, newError(ErrMalformedToken, ErrorCodeTokenTooLarge,
			fmt.Sprintf("jwe: token exceeds %d bytes", e.maxTokenSize), nil)
	}

	compact, err := ParseCompact(token)
	if err != nil {
		return nil, Header{}, err
	}

	h, original, err := DecodeHeader(compact.ProtectedHeader)
	if err != nil {
		return nil, Header{}, err
	}
	compact.ProtectedHeader = original

	return compact, h, nil
}

// primitives checks the header against the allow-lists and returns the
// matching implementations.
func (e *Engine) primitives(h Header) (keywrap.KeyWrapper, contentenc.Cipher, error) {
	if !e.keyAlgorithms[h.Algorithm] {
		return nil, nil, newError(ErrUnsupportedAlgorithm, ErrorCodeAlgorithmNotAllowed,
			fmt.Sprintf("jwe: key management algorithm %q is not allowed", h.Algorithm), nil)
	}
	if !e.contentEncryptions[h.EncryptionAlgorithm] {
		return nil, nil, newError(ErrUnsupportedAlgorithm, ErrorCodeAlgorithmNotAllowed,
			fmt.Sprintf("jwe: content encryption algorithm %q is not allowed", h.EncryptionAlgorithm), nil)
	}

	wrapper, err := keywrap.New(h.Algorithm)
	if err != nil {
		return nil, nil, newError(ErrUnsupportedAlgorithm, ErrorCodeAlgorithmNotAllowed, "jwe: unsupported algorithm", err)
	}
	cipher, err := contentenc.New(h.EncryptionAlgorithm)
	if err != nil {
		return nil, nil, newError(ErrUnsupportedAlgorithm, ErrorCodeAlgorithmNotAllowed, "jwe: unsupported algorithm", err)
	}
	return wrapper, cipher, nil
}
