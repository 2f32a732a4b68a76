package decrypter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/secureclaims/go-jwe-middleware/claims"
	"github.com/secureclaims/go-jwe-middleware/jwe"
	"github.com/secureclaims/go-jwe-middleware/keysource"
)

// DecryptedClaims is the value returned by DecryptToken and stored in the
// request context. CustomClaims is nil unless WithCustomClaims is given.
type DecryptedClaims struct {
	Claims       claims.Claims
	CustomClaims CustomClaims
}

// CustomClaims receives the token's claims JSON. The Decrypter calls
// Validate after the registered claims have been checked.
type CustomClaims interface {
	Validate(context.Context) error
}

// Decrypter decrypts JWE tokens and checks their claims.
type Decrypter struct {
	engine             *jwe.Engine        // Required.
	resolver           keysource.Resolver // Required.
	issuer             string
	audiences          []string
	allowedClockSkew   time.Duration
	expirationRequired bool
	customClaims       func() CustomClaims
}

// New sets up a Decrypter. WithEngine and WithResolver are required.
//
//	d, err := decrypter.New(
//	    decrypter.WithEngine(engine),
//	    decrypter.WithResolver(provider),
//	    decrypter.WithIssuer("https://idp.example.com"),
//	)
func New(opts ...Option) (*Decrypter, error) {
	d := &Decrypter{}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Decrypter) validate() error {
	if d.engine == nil {
		return errors.New("engine is required (use WithEngine)")
	}
	if d.resolver == nil {
		return errors.New("key resolver is required (use WithResolver)")
	}
	return nil
}

// DecryptToken decrypts token with the key the resolver selects for its
// header, then checks the registered claims and any custom claims. The
// result is a *DecryptedClaims.
func (d *Decrypter) DecryptToken(ctx context.Context, token string) (any, error) {
	keyFunc := func(h jwe.Header) (any, error) {
		return d.resolver.Resolve(ctx, h)
	}

	decrypted, err := d.engine.DecryptClaimsWithKeyFunc(token, keyFunc)
	if err != nil {
		return nil, fmt.Errorf("could not decrypt the token: %w", err)
	}

	if err := decrypted.Validate(d.parserOptions()...); err != nil {
		return nil, fmt.Errorf("expected claims not validated: %w", err)
	}

	var custom CustomClaims
	if d.customClaimsExist() {
		custom, err = d.decodeCustomClaims(decrypted)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize token claims: %w", err)
		}
		if err := custom.Validate(ctx); err != nil {
			return nil, fmt.Errorf("custom claims not validated: %w", err)
		}
	}

	return &DecryptedClaims{Claims: decrypted, CustomClaims: custom}, nil
}

func (d *Decrypter) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{jwt.WithLeeway(d.allowedClockSkew), jwt.WithIssuedAt()}
	if d.issuer != "" {
		opts = append(opts, jwt.WithIssuer(d.issuer))
	}
	if len(d.audiences) > 0 {
		opts = append(opts, jwt.WithAudience(d.audiences...))
	}
	if d.expirationRequired {
		opts = append(opts, jwt.WithExpirationRequired())
	}
	return opts
}

func (d *Decrypter) customClaimsExist() bool {
	return d.customClaims != nil && d.customClaims() != nil
}

func (d *Decrypter) decodeCustomClaims(c claims.Claims) (CustomClaims, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	custom := d.customClaims()
	if err := json.Unmarshal(data, custom); err != nil {
		return nil, err
	}
	return custom, nil
}
