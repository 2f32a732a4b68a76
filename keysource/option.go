package keysource

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ProviderOption configures a Provider. It is also accepted by
// NewCachingProvider.
type ProviderOption func(*Provider) error

// WithIssuerURL sets the issuer whose discovery document names the key set.
func WithIssuerURL(issuerURL *url.URL) ProviderOption {
	return func(p *Provider) error {
		if issuerURL == nil {
			return fmt.Errorf("issuer URL cannot be nil")
		}
		p.IssuerURL = issuerURL
		return nil
	}
}

// WithCustomJWKSURI sets the key set URI directly, skipping discovery.
func WithCustomJWKSURI(jwksURI *url.URL) ProviderOption {
	return func(p *Provider) error {
		if jwksURI == nil {
			return fmt.Errorf("custom JWKS URI cannot be nil")
		}
		p.CustomJWKSURI = jwksURI
		return nil
	}
}

// WithCustomClient sets the HTTP client. TLS trust configuration belongs
// on the client's transport.
func WithCustomClient(c *http.Client) ProviderOption {
	return func(p *Provider) error {
		if c == nil {
			return fmt.Errorf("HTTP client cannot be nil")
		}
		p.Client = c
		return nil
	}
}

// CachingProviderOption configures a CachingProvider.
type CachingProviderOption func(*cachingProviderConfig) error

type cachingProviderConfig struct {
	issuerURL     *url.URL
	customJWKSURI *url.URL
	httpClient    *http.Client
	cacheTTL      time.Duration
}

// WithCacheTTL sets how long key sets are cached. Zero selects the default.
func WithCacheTTL(ttl time.Duration) CachingProviderOption {
	return func(c *cachingProviderConfig) error {
		if ttl < 0 {
			return fmt.Errorf("cache TTL cannot be negative")
		}
		if ttl == 0 {
			ttl = DefaultCacheTTL
		}
		c.cacheTTL = ttl
		return nil
	}
}
