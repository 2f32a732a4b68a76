package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/secureclaims/go-jwe-middleware/claims"
	"github.com/secureclaims/go-jwe-middleware/decrypter"
	"github.com/secureclaims/go-jwe-middleware/jwa"
	"github.com/secureclaims/go-jwe-middleware/jwe"
	"github.com/secureclaims/go-jwe-middleware/keysource"
)

// NewEngine builds the engine described by c.Engine. Extra options, such as
// jwe.WithLogger, are applied after the configured ones.
func (c *Config) NewEngine(opts ...jwe.Option) (*jwe.Engine, error) {
	algs := make([]jwa.KeyAlgorithm, 0, len(c.Engine.KeyAlgorithms))
	for _, s := range c.Engine.KeyAlgorithms {
		alg, err := jwa.ParseKeyAlgorithm(s)
		if err != nil {
			return nil, err
		}
		algs = append(algs, alg)
	}

	encs := make([]jwa.ContentEncryption, 0, len(c.Engine.ContentEncryptions))
	for _, s := range c.Engine.ContentEncryptions {
		enc, err := jwa.ParseContentEncryption(s)
		if err != nil {
			return nil, err
		}
		encs = append(encs, enc)
	}

	engineOpts := []jwe.Option{
		jwe.WithKeyAlgorithms(algs...),
		jwe.WithContentEncryptions(encs...),
		jwe.WithClaimsCodec(c.claimsCodec()),
	}
	if c.Engine.MaxTokenSize > 0 {
		engineOpts = append(engineOpts, jwe.WithMaxTokenSize(c.Engine.MaxTokenSize))
	}

	return jwe.New(append(engineOpts, opts...)...)
}

func (c *Config) claimsCodec() claims.Codec {
	if c.Engine.ClaimsCodec == CodecBase64URL {
		return claims.Base64URLCodec{}
	}
	return claims.JSONCodec{}
}

// NewResolver builds the key source described by c.Keys. A key file yields a
// *keysource.StaticSet; a remote key set yields a *keysource.CachingProvider
// using client, or the provider's default client when client is nil.
func (c *Config) NewResolver(client *http.Client) (keysource.Resolver, error) {
	if c.Keys.File != "" {
		return LoadKeyFile(c.Keys.File)
	}

	issuerURL, err := parseAbsoluteURL(c.Keys.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("keys.issuer-url: %w", err)
	}

	opts := []any{keysource.WithIssuerURL(issuerURL), keysource.WithCacheTTL(c.Keys.CacheTTL)}
	if c.Keys.JWKSURI != "" {
		jwksURI, err := parseAbsoluteURL(c.Keys.JWKSURI)
		if err != nil {
			return nil, fmt.Errorf("keys.jwks-uri: %w", err)
		}
		opts = append(opts, keysource.WithCustomJWKSURI(jwksURI))
	}
	if client != nil {
		opts = append(opts, keysource.WithCustomClient(client))
	}

	return keysource.NewCachingProvider(opts...)
}

// NewDecrypter wires engine and resolver together with the claim checks in
// c.Validation.
func (c *Config) NewDecrypter(engine *jwe.Engine, resolver keysource.Resolver, opts ...decrypter.Option) (*decrypter.Decrypter, error) {
	decrypterOpts := []decrypter.Option{
		decrypter.WithEngine(engine),
		decrypter.WithResolver(resolver),
		decrypter.WithAllowedClockSkew(c.Validation.AllowedClockSkew),
	}
	if c.Validation.Issuer != "" {
		decrypterOpts = append(decrypterOpts, decrypter.WithIssuer(c.Validation.Issuer))
	}
	if len(c.Validation.Audiences) > 0 {
		decrypterOpts = append(decrypterOpts, decrypter.WithAudiences(c.Validation.Audiences...))
	}
	if c.Validation.ExpirationRequired {
		decrypterOpts = append(decrypterOpts, decrypter.WithExpirationRequired())
	}

	return decrypter.New(append(decrypterOpts, opts...)...)
}

// LoadKeyFile reads a JWK or a JWK Set from path.
func LoadKeyFile(path string) (*keysource.StaticSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return ParseKeys(data)
}

// ParseKeys accepts either a JWK Set (an object with a "keys" member) or a
// single JWK.
func ParseKeys(data []byte) (*keysource.StaticSet, error) {
	var probe struct {
		Keys json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse key file: %w", err)
	}

	if probe.Keys != nil {
		return keysource.ParseSet(data)
	}

	m, err := keysource.ParseKey(data)
	if err != nil {
		return nil, err
	}
	return keysource.NewStaticSet(m), nil
}
