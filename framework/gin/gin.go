// Package jwegin adapts the JWE middleware to gin.
package jwegin

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	jwemiddleware "github.com/secureclaims/go-jwe-middleware"
	"github.com/secureclaims/go-jwe-middleware/decrypter"
)

// DefaultClaimsKey is the gin context key claims are stored under.
const DefaultClaimsKey = "jwe"

var (
	ErrMissingClaims = errors.New("no JWE claims found in context")
	ErrInvalidClaims = errors.New("invalid JWE claims type")
)

type ginContextKey struct{}

type middlewareConfig struct {
	errorHandler      func(*gin.Context, error)
	contextKey        string
	middlewareOptions []jwemiddleware.Option
}

// NewMiddleware creates a gin middleware that decrypts the request's token
// with d. Rejected requests are aborted after the error handler runs; the
// default handler writes the same response as jwemiddleware.DefaultErrorHandler.
func NewMiddleware(d jwemiddleware.TokenDecrypter, opts ...Option) (gin.HandlerFunc, error) {
	config := &middlewareConfig{
		errorHandler: defaultErrorHandler,
		contextKey:   DefaultClaimsKey,
	}
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	middlewareOpts := append([]jwemiddleware.Option{jwemiddleware.WithDecrypter(d)}, config.middlewareOptions...)
	middlewareOpts = append(middlewareOpts, jwemiddleware.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
		c, ok := r.Context().Value(ginContextKey{}).(*gin.Context)
		if !ok {
			jwemiddleware.DefaultErrorHandler(w, r, err)
			return
		}
		config.errorHandler(c, err)
	}))

	middleware, err := jwemiddleware.New(middlewareOpts...)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		passed := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			if claims, err := jwemiddleware.GetClaims[any](r.Context()); err == nil {
				c.Set(config.contextKey, claims)
			}
			c.Next()
		})

		r := c.Request.WithContext(context.WithValue(c.Request.Context(), ginContextKey{}, c))
		middleware.CheckJWE(next).ServeHTTP(c.Writer, r)

		if !passed {
			c.Abort()
		}
	}, nil
}

func defaultErrorHandler(c *gin.Context, err error) {
	jwemiddleware.DefaultErrorHandler(c.Writer, c.Request, err)
	c.Abort()
}

// GetClaims returns the decrypted claims stored by the middleware. An empty
// contextKey selects DefaultClaimsKey.
func GetClaims(c *gin.Context, contextKey string) (*decrypter.DecryptedClaims, error) {
	if contextKey == "" {
		contextKey = DefaultClaimsKey
	}
	claims, exists := c.Get(contextKey)
	if !exists {
		return nil, ErrMissingClaims
	}

	decrypted, ok := claims.(*decrypter.DecryptedClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	return decrypted, nil
}
