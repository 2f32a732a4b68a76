// Package jweecho adapts the JWE middleware to echo.
package jweecho

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	jwemiddleware "github.com/secureclaims/go-jwe-middleware"
	"github.com/secureclaims/go-jwe-middleware/decrypter"
)

// DefaultClaimsKey is the echo context key claims are stored under.
const DefaultClaimsKey = "jwe"

var (
	ErrMissingClaims = errors.New("no JWE claims found in context")
	ErrInvalidClaims = errors.New("invalid JWE claims type")
)

// ErrorHandler handles a rejected request. Its return value is returned
// from the middleware.
type ErrorHandler func(echo.Context, error) error

type echoContextKey struct{}

type middlewareConfig struct {
	errorHandler      ErrorHandler
	contextKey        string
	middlewareOptions []jwemiddleware.Option
}

// NewMiddleware creates an echo middleware that decrypts the request's token
// with d. The default error handler writes the same response as
// jwemiddleware.DefaultErrorHandler.
func NewMiddleware(d jwemiddleware.TokenDecrypter, opts ...Option) (echo.MiddlewareFunc, error) {
	config := &middlewareConfig{
		errorHandler: defaultErrorHandler,
		contextKey:   DefaultClaimsKey,
	}
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	// The middleware's error handler only records the failure; the echo
	// error handler runs once CheckJWE returns.
	middlewareOpts := append([]jwemiddleware.Option{jwemiddleware.WithDecrypter(d)}, config.middlewareOptions...)
	middlewareOpts = append(middlewareOpts, jwemiddleware.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
		if failure, ok := r.Context().Value(echoContextKey{}).(*error); ok {
			*failure = err
			return
		}
		jwemiddleware.DefaultErrorHandler(w, r, err)
	}))

	middleware, err := jwemiddleware.New(middlewareOpts...)
	if err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var failure error
			var nextErr error
			passed := false

			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				passed = true
				c.SetRequest(r)
				if claims, err := jwemiddleware.GetClaims[any](r.Context()); err == nil {
					c.Set(config.contextKey, claims)
				}
				nextErr = next(c)
			})

			r := c.Request()
			r = r.WithContext(context.WithValue(r.Context(), echoContextKey{}, &failure))
			middleware.CheckJWE(inner).ServeHTTP(c.Response(), r)

			if failure != nil {
				return config.errorHandler(c, failure)
			}
			if !passed {
				return nil
			}
			return nextErr
		}
	}, nil
}

func defaultErrorHandler(c echo.Context, err error) error {
	jwemiddleware.DefaultErrorHandler(c.Response(), c.Request(), err)
	return nil
}

// GetClaims returns the decrypted claims stored by the middleware. An empty
// contextKey selects DefaultClaimsKey.
func GetClaims(c echo.Context, contextKey string) (*decrypter.DecryptedClaims, error) {
	if contextKey == "" {
		contextKey = DefaultClaimsKey
	}
	claims := c.Get(contextKey)
	if claims == nil {
		return nil, ErrMissingClaims
	}

	decrypted, ok := claims.(*decrypter.DecryptedClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	return decrypted, nil
}
