package keysource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/secureclaims/go-jwe-middleware/internal/oidc"
	"github.com/secureclaims/go-jwe-middleware/jwe"
)

// maxJWKSBytes bounds a key set response body.
const maxJWKSBytes = 1 << 20

// Provider fetches the key set of a remote issuer on every call. Most
// callers want CachingProvider instead.
type Provider struct {
	IssuerURL     *url.URL // Required.
	CustomJWKSURI *url.URL // Optional.
	Client        *http.Client
}

// NewProvider builds and returns a new *Provider.
// Required options:
//   - WithIssuerURL: issuer URL for discovery
//
// Optional options:
//   - WithCustomJWKSURI: key set URI (skips discovery)
//   - WithCustomClient: HTTP client
//
// Example:
//
//	provider, err := keysource.NewProvider(
//	    keysource.WithIssuerURL(issuerURL),
//	    keysource.WithCustomClient(myHTTPClient),
//	)
func NewProvider(opts ...ProviderOption) (*Provider, error) {
	p := &Provider{
		Client: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if p.IssuerURL == nil {
		return nil, fmt.Errorf("issuer URL is required (use WithIssuerURL)")
	}

	return p, nil
}

// KeySet fetches the issuer's current key set.
func (p *Provider) KeySet(ctx context.Context) (*StaticSet, error) {
	jwksURI, err := p.jwksURI(ctx)
	if err != nil {
		return nil, err
	}
	set, _, err := fetchSet(ctx, p.Client, jwksURI)
	if err != nil {
		return nil, fmt.Errorf("could not fetch JWKS: %w", err)
	}
	return set, nil
}

// Resolve implements Resolver.
func (p *Provider) Resolve(ctx context.Context, h jwe.Header) (any, error) {
	set, err := p.KeySet(ctx)
	if err != nil {
		return nil, err
	}
	return set.Resolve(ctx, h)
}

func (p *Provider) jwksURI(ctx context.Context) (string, error) {
	if p.CustomJWKSURI != nil {
		return p.CustomJWKSURI.String(), nil
	}

	wkEndpoints, err := oidc.GetWellKnownEndpointsFromIssuerURL(ctx, p.Client, *p.IssuerURL, p.IssuerURL.String())
	if err != nil {
		return "", err
	}

	jwksURI, err := url.Parse(wkEndpoints.JWKSURI)
	if err != nil {
		return "", fmt.Errorf("could not parse JWKS URI from well known endpoints: %w", err)
	}
	return jwksURI.String(), nil
}

// fetchSet fetches and parses a key set. The returned duration is the
// response's Cache-Control max-age, or 0.
func fetchSet(ctx context.Context, client *http.Client, jwksURI string) (*StaticSet, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURI, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("request returned status %d, expected 200", resp.StatusCode)
	}

	var cacheTTL time.Duration
	if cacheControl := resp.Header.Get("Cache-Control"); cacheControl != "" {
		cacheTTL = parseCacheControl(cacheControl)
	}

	parsed, err := jwk.ParseReader(io.LimitReader(resp.Body, maxJWKSBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse JWKS: %w", err)
	}
	set, err := FromJWKSet(parsed)
	if err != nil {
		return nil, 0, err
	}

	return set, cacheTTL, nil
}

// parseCacheControl returns the max-age directive of a Cache-Control header.
// Values outside one second to seven days are ignored.
func parseCacheControl(cacheControl string) time.Duration {
	const (
		maxAgePrefix = "max-age="
		minTTL       = time.Second
		maxTTL       = 7 * 24 * time.Hour
	)

	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(directive)
		if !strings.HasPrefix(directive, maxAgePrefix) {
			continue
		}
		seconds, err := strconv.ParseInt(strings.TrimPrefix(directive, maxAgePrefix), 10, 64)
		if err != nil || seconds <= 0 {
			continue
		}
		if seconds > int64(maxTTL/time.Second) {
			return 0
		}
		return max(time.Duration(seconds)*time.Second, minTTL)
	}

	return 0
}
