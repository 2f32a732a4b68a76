// Package config loads a YAML description of the JWE engine, its key source
// and the claim checks applied after decryption.
//
//	engine:
//	  key-algorithms: [RSA-OAEP-256]
//	  content-encryptions: [A128GCM, A256GCM]
//	keys:
//	  issuer-url: https://idp.example.com
//	  cache-ttl: 10m
//	validation:
//	  issuer: https://idp.example.com
//	  audiences: [orders-api]
//	  allowed-clock-skew: 30s
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/secureclaims/go-jwe-middleware/jwa"
)

// Claims codec names accepted by Engine.ClaimsCodec.
const (
	CodecJSON      = "json"
	CodecBase64URL = "base64url"
)

// Config is the root of the YAML document.
type Config struct {
	Engine     Engine     `yaml:"engine"`
	Keys       Keys       `yaml:"keys"`
	Validation Validation `yaml:"validation"`
}

// Engine holds the algorithm allow-lists. Both lists are required.
type Engine struct {
	KeyAlgorithms      []string `yaml:"key-algorithms"`
	ContentEncryptions []string `yaml:"content-encryptions"`
	ClaimsCodec        string   `yaml:"claims-codec,omitempty"`
	MaxTokenSize       int      `yaml:"max-token-size,omitempty"`
}

// Keys names exactly one key location: a local JWK or JWK Set file, or a
// remote key set found through the issuer's discovery document or an
// explicit JWKS URI.
type Keys struct {
	File      string        `yaml:"file,omitempty"`
	IssuerURL string        `yaml:"issuer-url,omitempty"`
	JWKSURI   string        `yaml:"jwks-uri,omitempty"`
	CacheTTL  time.Duration `yaml:"cache-ttl,omitempty"`
}

// Validation configures the claim checks run after decryption.
type Validation struct {
	Issuer             string        `yaml:"issuer,omitempty"`
	Audiences          []string      `yaml:"audiences,omitempty"`
	AllowedClockSkew   time.Duration `yaml:"allowed-clock-skew,omitempty"`
	ExpirationRequired bool          `yaml:"expiration-required,omitempty"`
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML document. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var c Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Dump renders the configuration as YAML.
func (c *Config) Dump() (string, error) {
	d, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to generate YAML dump of config: %w", err)
	}
	return string(d), nil
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if len(c.Engine.KeyAlgorithms) == 0 {
		result = multierror.Append(result, errors.New("engine.key-algorithms is required"))
	}
	for _, alg := range c.Engine.KeyAlgorithms {
		if _, err := jwa.ParseKeyAlgorithm(alg); err != nil {
			result = multierror.Append(result, fmt.Errorf("engine.key-algorithms: %w", err))
		}
	}

	if len(c.Engine.ContentEncryptions) == 0 {
		result = multierror.Append(result, errors.New("engine.content-encryptions is required"))
	}
	for _, enc := range c.Engine.ContentEncryptions {
		if _, err := jwa.ParseContentEncryption(enc); err != nil {
			result = multierror.Append(result, fmt.Errorf("engine.content-encryptions: %w", err))
		}
	}

	switch c.Engine.ClaimsCodec {
	case "", CodecJSON, CodecBase64URL:
	default:
		result = multierror.Append(result, fmt.Errorf("engine.claims-codec must be %q or %q, got %q",
			CodecJSON, CodecBase64URL, c.Engine.ClaimsCodec))
	}
	if c.Engine.MaxTokenSize < 0 {
		result = multierror.Append(result, errors.New("engine.max-token-size cannot be negative"))
	}

	remote := c.Keys.IssuerURL != "" || c.Keys.JWKSURI != ""
	switch {
	case c.Keys.File == "" && !remote:
		result = multierror.Append(result, errors.New("keys: one of file, issuer-url or jwks-uri is required"))
	case c.Keys.File != "" && remote:
		result = multierror.Append(result, errors.New("keys: file cannot be combined with issuer-url or jwks-uri"))
	}
	if c.Keys.JWKSURI != "" && c.Keys.IssuerURL == "" {
		result = multierror.Append(result, errors.New("keys.jwks-uri requires keys.issuer-url"))
	}
	if c.Keys.IssuerURL != "" {
		if _, err := parseAbsoluteURL(c.Keys.IssuerURL); err != nil {
			result = multierror.Append(result, fmt.Errorf("keys.issuer-url: %w", err))
		}
	}
	if c.Keys.JWKSURI != "" {
		if _, err := parseAbsoluteURL(c.Keys.JWKSURI); err != nil {
			result = multierror.Append(result, fmt.Errorf("keys.jwks-uri: %w", err))
		}
	}
	if c.Keys.CacheTTL < 0 {
		result = multierror.Append(result, errors.New("keys.cache-ttl cannot be negative"))
	}

	if c.Validation.AllowedClockSkew < 0 {
		result = multierror.Append(result, errors.New("validation.allowed-clock-skew cannot be negative"))
	}

	return result.ErrorOrNil()
}

func parseAbsoluteURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute URL", raw)
	}
	return u, nil
}
