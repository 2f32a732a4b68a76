package keysource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pmylund/go-cache"

	"github.com/secureclaims/go-jwe-middleware/jwe"
)

// DefaultCacheTTL is how long a fetched key set is kept when neither
// WithCacheTTL nor the response's Cache-Control says otherwise.
const DefaultCacheTTL = 15 * time.Minute

const discoveryKeyPrefix = "discovery:"

// CachingProvider fetches an issuer's key set and keeps it for a TTL.
// Concurrent callers share one fetch per key set URI. Fetch failures are
// returned to the caller and are not cached.
type CachingProvider struct {
	issuerURL     *url.URL
	customJWKSURI *url.URL
	httpClient    *http.Client
	ttl           time.Duration

	store *cache.Cache

	fetchMu sync.Mutex
	fetches map[string]*sync.Mutex
}

// NewCachingProvider builds and returns a new CachingProvider.
//
// Accepts both ProviderOption and CachingProviderOption values.
//
// Required options:
//   - WithIssuerURL: issuer URL for discovery
//
// Optional options:
//   - WithCacheTTL: how long key sets are kept (default: 15 minutes)
//   - WithCustomJWKSURI: key set URI (skips discovery)
//   - WithCustomClient: HTTP client
//
// Example:
//
//	provider, err := keysource.NewCachingProvider(
//	    keysource.WithIssuerURL(issuerURL),
//	    keysource.WithCacheTTL(5*time.Minute),
//	)
func NewCachingProvider(opts ...any) (*CachingProvider, error) {
	config := &cachingProviderConfig{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cacheTTL:   DefaultCacheTTL,
	}

	for _, opt := range opts {
		switch v := opt.(type) {
		case CachingProviderOption:
			if err := v(config); err != nil {
				return nil, fmt.Errorf("invalid option: %w", err)
			}
		case ProviderOption:
			tempProvider := &Provider{}
			if err := v(tempProvider); err != nil {
				return nil, fmt.Errorf("invalid option: %w", err)
			}
			if tempProvider.IssuerURL != nil {
				config.issuerURL = tempProvider.IssuerURL
			}
			if tempProvider.CustomJWKSURI != nil {
				config.customJWKSURI = tempProvider.CustomJWKSURI
			}
			if tempProvider.Client != nil {
				config.httpClient = tempProvider.Client
			}
		default:
			return nil, fmt.Errorf("invalid option type: %T (must be ProviderOption or CachingProviderOption)", opt)
		}
	}

	if config.issuerURL == nil {
		return nil, fmt.Errorf("issuer URL is required (use WithIssuerURL)")
	}

	return &CachingProvider{
		issuerURL:     config.issuerURL,
		customJWKSURI: config.customJWKSURI,
		httpClient:    config.httpClient,
		ttl:           config.cacheTTL,
		store:         cache.New(config.cacheTTL, 2*config.cacheTTL),
		fetches:       make(map[string]*sync.Mutex),
	}, nil
}

// KeySet returns the issuer's key set, fetching it when the cached copy is
// missing or expired.
func (c *CachingProvider) KeySet(ctx context.Context) (*StaticSet, error) {
	jwksURI, err := c.jwksURI(ctx)
	if err != nil {
		return nil, err
	}

	if set, ok := c.store.Get(jwksURI); ok {
		return set.(*StaticSet), nil
	}

	mu := c.fetchLock(jwksURI)
	mu.Lock()
	defer mu.Unlock()

	// Another caller may have fetched while this one waited.
	if set, ok := c.store.Get(jwksURI); ok {
		return set.(*StaticSet), nil
	}

	set, cacheTTL, err := fetchSet(ctx, c.httpClient, jwksURI)
	if err != nil {
		return nil, fmt.Errorf("could not fetch JWKS: %w", err)
	}

	// A longer max-age from the server extends the configured TTL.
	ttl := c.ttl
	if cacheTTL > ttl {
		ttl = cacheTTL
	}
	c.store.Set(jwksURI, set, ttl)

	return set, nil
}

// Resolve implements Resolver.
func (c *CachingProvider) Resolve(ctx context.Context, h jwe.Header) (any, error) {
	set, err := c.KeySet(ctx)
	if err != nil {
		return nil, err
	}
	return set.Resolve(ctx, h)
}

// Invalidate drops the cached key set, so the next call fetches it again.
func (c *CachingProvider) Invalidate(ctx context.Context) error {
	jwksURI, err := c.jwksURI(ctx)
	if err != nil {
		return err
	}
	c.store.Delete(jwksURI)
	return nil
}

func (c *CachingProvider) jwksURI(ctx context.Context) (string, error) {
	if c.customJWKSURI != nil {
		return c.customJWKSURI.String(), nil
	}

	key := discoveryKeyPrefix + c.issuerURL.String()
	if uri, ok := c.store.Get(key); ok {
		return uri.(string), nil
	}

	p := &Provider{IssuerURL: c.issuerURL, Client: c.httpClient}
	uri, err := p.jwksURI(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to discover JWKS URI: %w", err)
	}
	c.store.Set(key, uri, c.ttl)
	return uri, nil
}

func (c *CachingProvider) fetchLock(jwksURI string) *sync.Mutex {
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	mu, ok := c.fetches[jwksURI]
	if !ok {
		mu = &sync.Mutex{}
		c.fetches[jwksURI] = mu
	}
	return mu
}
