package keysource

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/secureclaims/go-jwe-middleware/jwa"
	"github.com/secureclaims/go-jwe-middleware/jwe"
)

// Resolver finds the decryption key for a token header.
type Resolver interface {
	Resolve(ctx context.Context, h jwe.Header) (any, error)
}

// StaticSet is a fixed list of keys. It is safe for concurrent use.
type StaticSet struct {
	keys []*Material
}

// NewStaticSet builds a set from keys, in order.
func NewStaticSet(keys ...*Material) *StaticSet {
	return &StaticSet{keys: append([]*Material(nil), keys...)}
}

// ParseSet parses a JWK Set document.
func ParseSet(data []byte) (*StaticSet, error) {
	set, err := jwk.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}
	return FromJWKSet(set)
}

// FromJWKSet converts a parsed jwx key set. Keys of unsupported types fail
// the whole set.
func FromJWKSet(set jwk.Set) (*StaticSet, error) {
	keys := make([]*Material, 0, set.Len())
	for i := 0; i < set.Len(); i++ {
		key, ok := set.Key(i)
		if !ok {
			continue
		}
		m, err := FromJWK(key)
		if err != nil {
			return nil, err
		}
		keys = append(keys, m)
	}
	return &StaticSet{keys: keys}, nil
}

// Keys returns the keys in the set.
func (s *StaticSet) Keys() []*Material {
	return append([]*Material(nil), s.keys...)
}

// Len returns the number of keys in the set.
func (s *StaticSet) Len() int { return len(s.keys) }

// Lookup returns the encryption key for h.
//
// Keys whose use is set to anything other than "enc" are never returned,
// nor are keys pinned by their "alg" member to a different key management
// algorithm. A header with a kid selects by kid. A header without one
// resolves only when exactly one key qualifies.
func (s *StaticSet) Lookup(h jwe.Header) (*Material, error) {
	var candidates []*Material
	for _, m := range s.keys {
		if m.Use != "" && m.Use != UseEncryption {
			continue
		}
		if alg, err := jwa.ParseKeyAlgorithm(m.Algorithm); err == nil && alg != h.Algorithm {
			continue
		}
		if h.KeyID != "" && m.KeyID != h.KeyID {
			continue
		}
		candidates = append(candidates, m)
	}

	switch {
	case len(candidates) == 1:
		return candidates[0], nil
	case len(candidates) > 1 && h.KeyID != "":
		return candidates[0], nil
	case h.KeyID != "":
		return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, h.KeyID)
	default:
		return nil, fmt.Errorf("%w: token has no kid and %d keys qualify", ErrKeyNotFound, len(candidates))
	}
}

// Resolve implements Resolver by returning the private part of the key
// Lookup selects.
func (s *StaticSet) Resolve(_ context.Context, h jwe.Header) (any, error) {
	m, err := s.Lookup(h)
	if err != nil {
		return nil, err
	}
	if m.Private == nil {
		return nil, fmt.Errorf("%w: kid %q", ErrNoPrivateKey, m.KeyID)
	}
	return m.Private, nil
}

// KeyFunc adapts the set for jwe.Engine.DecryptWithKeyFunc.
func (s *StaticSet) KeyFunc() jwe.KeyFunc {
	return func(h jwe.Header) (any, error) {
		return s.Resolve(context.Background(), h)
	}
}
