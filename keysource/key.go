package keysource

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

var (
	// ErrUnsupportedKey is returned for key types the engine cannot use.
	ErrUnsupportedKey = errors.New("unsupported key type")

	// ErrKeyNotFound is returned when no key in a set matches a token.
	ErrKeyNotFound = errors.New("no matching encryption key")

	// ErrNoPrivateKey is returned when a matching key has no private part.
	ErrNoPrivateKey = errors.New("key has no private part")
)

// UseEncryption is the "use" value of keys meant for encryption.
const UseEncryption = "enc"

// Material is a key taken from a JWK.
//
// For RSA keys Public is an *rsa.PublicKey and Private, when present, an
// *rsa.PrivateKey. For symmetric ("oct") keys both hold the same []byte.
type Material struct {
	KeyID     string
	Use       string
	Algorithm string
	Public    any
	Private   any
}

// ParseKey parses a single JWK.
func ParseKey(data []byte) (*Material, error) {
	key, err := jwk.ParseKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWK: %w", err)
	}
	return FromJWK(key)
}

// FromJWK converts a parsed jwx key.
func FromJWK(key jwk.Key) (*Material, error) {
	m := &Material{
		KeyID: key.KeyID(),
		Use:   key.KeyUsage(),
	}
	if alg := key.Algorithm(); alg != nil {
		m.Algorithm = alg.String()
	}

	switch k := key.(type) {
	case jwk.RSAPrivateKey:
		priv, err := rsaPrivateKey(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", m.KeyID, err)
		}
		m.Private = priv
		m.Public = &priv.PublicKey
	case jwk.RSAPublicKey:
		var pub rsa.PublicKey
		if err := k.Raw(&pub); err != nil {
			return nil, fmt.Errorf("key %q: %w", m.KeyID, err)
		}
		m.Public = &pub
	case jwk.SymmetricKey:
		secret := append([]byte(nil), k.Octets()...)
		m.Public = secret
		m.Private = secret
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKey, key.KeyType())
	}
	return m, nil
}

// rsaPrivateKey builds the private key from its JWK members. Keys published
// with only n, e and d get their primes recovered.
func rsaPrivateKey(k jwk.RSAPrivateKey) (*rsa.PrivateKey, error) {
	n := new(big.Int).SetBytes(k.N())
	e := new(big.Int).SetBytes(k.E())
	d := new(big.Int).SetBytes(k.D())
	if n.Sign() == 0 || e.Sign() == 0 || d.Sign() == 0 {
		return nil, errors.New("RSA private key is missing n, e or d")
	}
	if !e.IsInt64() || e.Int64() > 1<<31-1 {
		return nil, errors.New("RSA public exponent is too large")
	}

	var p, q *big.Int
	if len(k.P()) > 0 && len(k.Q()) > 0 {
		p = new(big.Int).SetBytes(k.P())
		q = new(big.Int).SetBytes(k.Q())
	} else {
		var err error
		p, q, err = recoverPrimes(n, e, d)
		if err != nil {
			return nil, err
		}
	}

	priv := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{N: n, E: int(e.Int64())},
		D:         d,
		Primes:    []*big.Int{p, q},
	}
	if err := priv.Validate(); err != nil {
		return nil, fmt.Errorf("invalid RSA private key: %w", err)
	}
	priv.Precompute()
	return priv, nil
}

// recoverPrimes factors n given the exponents (NIST SP 800-56B, appendix C).
func recoverPrimes(n, e, d *big.Int) (*big.Int, *big.Int, error) {
	one := big.NewInt(1)
	nMinusOne := new(big.Int).Sub(n, one)

	// k = d*e - 1 = 2^t * r with r odd.
	k := new(big.Int).Mul(d, e)
	k.Sub(k, one)
	if k.Bit(0) != 0 {
		return nil, nil, errors.New("cannot recover RSA primes: d*e-1 is odd")
	}
	t := 0
	r := new(big.Int).Set(k)
	for r.Bit(0) == 0 {
		r.Rsh(r, 1)
		t++
	}

	y := new(big.Int)
	x := new(big.Int)
	for g := int64(2); g < 1000; g++ {
		y.Exp(big.NewInt(g), r, n)
		if y.Cmp(one) == 0 || y.Cmp(nMinusOne) == 0 {
			continue
		}
		for j := 1; j <= t; j++ {
			x.Exp(y, big.NewInt(2), n)
			if x.Cmp(one) == 0 {
				// y is a non-trivial square root of 1 mod n.
				p := new(big.Int).GCD(nil, nil, new(big.Int).Sub(y, one), n)
				q := new(big.Int).Div(n, p)
				if p.Cmp(q) < 0 {
					p, q = q, p
				}
				return p, q, nil
			}
			if x.Cmp(nMinusOne) == 0 {
				break
			}
			y.Set(x)
		}
	}
	return nil, nil, errors.New("cannot recover RSA primes from n, e and d")
}
