package decrypter

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/secureclaims/go-jwe-middleware/jwe"
	"github.com/secureclaims/go-jwe-middleware/keysource"
)

// Option is how options for the Decrypter are set up.
type Option func(*Decrypter) error

// WithEngine sets the JWE engine. Its allow-lists decide which algorithms
// are accepted. This is a required option.
func WithEngine(engine *jwe.Engine) Option {
	return func(d *Decrypter) error {
		if engine == nil {
			return errors.New("engine cannot be nil")
		}
		d.engine = engine
		return nil
	}
}

// WithResolver sets where decryption keys come from: a keysource.StaticSet,
// Provider or CachingProvider. This is a required option.
func WithResolver(resolver keysource.Resolver) Option {
	return func(d *Decrypter) error {
		if resolver == nil {
			return errors.New("resolver cannot be nil")
		}
		d.resolver = resolver
		return nil
	}
}

// WithIssuer requires the iss claim to equal issuerURL.
func WithIssuer(issuerURL string) Option {
	return func(d *Decrypter) error {
		if issuerURL == "" {
			return errors.New("issuer cannot be empty")
		}
		if _, err := url.Parse(issuerURL); err != nil {
			return fmt.Errorf("invalid issuer URL: %w", err)
		}
		d.issuer = issuerURL
		return nil
	}
}

// WithAudiences requires the aud claim to contain at least one of audiences.
func WithAudiences(audiences ...string) Option {
	return func(d *Decrypter) error {
		if len(audiences) == 0 {
			return errors.New("audiences cannot be empty")
		}
		for i, aud := range audiences {
			if aud == "" {
				return fmt.Errorf("audience at index %d cannot be empty", i)
			}
		}
		d.audiences = audiences
		return nil
	}
}

// WithAllowedClockSkew sets the tolerance applied to exp, nbf and iat.
func WithAllowedClockSkew(skew time.Duration) Option {
	return func(d *Decrypter) error {
		if skew < 0 {
			return errors.New("clock skew cannot be negative")
		}
		d.allowedClockSkew = skew
		return nil
	}
}

// WithExpirationRequired rejects tokens without an exp claim.
func WithExpirationRequired() Option {
	return func(d *Decrypter) error {
		d.expirationRequired = true
		return nil
	}
}

// WithCustomClaims sets a constructor for a custom claims value. The token's
// claims JSON is unmarshalled into a fresh value for every token.
func WithCustomClaims(f func() CustomClaims) Option {
	return func(d *Decrypter) error {
		if f == nil {
			return errors.New("custom claims function cannot be nil")
		}
		d.customClaims = f
		return nil
	}
}
