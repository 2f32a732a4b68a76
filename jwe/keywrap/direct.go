package keywrap

import (
	"fmt"
	"io"

	"github.com/secureclaims/go-jwe-middleware/jwa"
)

// direct is "dir": the shared symmetric key is used as the CEK.
type direct struct{}

func (direct) Algorithm() jwa.KeyAlgorithm { return jwa.DIRECT }

func (direct) Wrap(_ io.Reader, _ []byte, key any) ([]byte, error) {
	if _, ok := key.([]byte); !ok {
		return nil, fmt.Errorf("%w: dir requires a []byte key, got %T", ErrKeyEncryption, key)
	}
	return []byte{}, nil
}

func (direct) Unwrap(wrapped []byte, key any) ([]byte, error) {
	k, ok := key.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: dir requires a []byte key, got %T", ErrKeyEncryption, key)
	}
	if len(wrapped) != 0 {
		return nil, ErrUnwrap
	}
	return append([]byte(nil), k...), nil
}

func (direct) ContentKey(key any, size int) ([]byte, error) {
	k, ok := key.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: dir requires a []byte key, got %T", ErrKeyEncryption, key)
	}
	if len(k) != size {
		return nil, fmt.Errorf("%w: dir key is %d bytes, content encryption requires %d", ErrKeyEncryption, len(k), size)
	}
	return append([]byte(nil), k...), nil
}
