package jwemiddleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// TokenExtractor returns the compact JWE carried by a request. It returns an
// empty string without error when no token is present, and an error only
// when a token was supplied in a form it cannot read.
type TokenExtractor func(r *http.Request) (string, error)

// Extractor errors. The middleware wraps them so they also match
// ErrTokenExtraction.
var (
	ErrMultipleAuthHeaders = errors.New("multiple Authorization headers cannot carry a JWE")
	ErrInvalidAuthFormat   = errors.New("authorization header format must be Bearer {compact JWE}")
	ErrUnsupportedScheme   = errors.New("unsupported authorization scheme for a JWE, expected Bearer")
)

// AuthHeaderTokenExtractor reads the token from an
// "Authorization: Bearer <compact JWE>" header.
func AuthHeaderTokenExtractor(r *http.Request) (string, error) {
	values := r.Header.Values("Authorization")
	switch len(values) {
	case 0:
		return "", nil
	case 1:
	default:
		return "", ErrMultipleAuthHeaders
	}
	if values[0] == "" {
		return "", nil
	}

	parts := strings.Fields(values[0])
	if len(parts) != 2 {
		return "", ErrInvalidAuthFormat
	}
	if !strings.EqualFold(parts[0], "bearer") {
		return "", ErrUnsupportedScheme
	}

	return parts[1], nil
}

// HeaderTokenExtractor reads the raw token from the named header, for
// deployments that forward the encrypted token outside Authorization.
func HeaderTokenExtractor(header string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		values := r.Header.Values(header)
		if len(values) > 1 {
			return "", fmt.Errorf("multiple %s headers cannot carry a JWE", header)
		}
		return strings.TrimSpace(r.Header.Get(header)), nil
	}
}

// CookieTokenExtractor reads the token from the named cookie.
func CookieTokenExtractor(cookieName string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(cookieName)
		if errors.Is(err, http.ErrNoCookie) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("reading JWE cookie %q: %w", cookieName, err)
		}
		return cookie.Value, nil
	}
}

// ParameterTokenExtractor reads the token from a query string parameter.
func ParameterTokenExtractor(param string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		return r.URL.Query().Get(param), nil
	}
}

// MultiTokenExtractor tries extractors in order. The first non-empty token
// wins; the first error ends the search.
func MultiTokenExtractor(extractors ...TokenExtractor) TokenExtractor {
	return func(r *http.Request) (string, error) {
		for _, extract := range extractors {
			token, err := extract(r)
			if err != nil {
				return "", err
			}
			if token != "" {
				return token, nil
			}
		}
		return "", nil
	}
}
