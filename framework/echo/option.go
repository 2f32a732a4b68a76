package jweecho

import (
	"errors"

	jwemiddleware "github.com/secureclaims/go-jwe-middleware"
)

// Option configures the echo middleware.
type Option func(*middlewareConfig) error

// WithErrorHandler sets the handler for rejected requests. Returning an
// echo.HTTPError hands the response to echo's HTTPErrorHandler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(config *middlewareConfig) error {
		if handler == nil {
			return errors.New("error handler cannot be nil")
		}
		config.errorHandler = handler
		return nil
	}
}

// WithContextKey sets the echo context key claims are stored under.
func WithContextKey(key string) Option {
	return func(config *middlewareConfig) error {
		if key == "" {
			return errors.New("context key cannot be empty")
		}
		config.contextKey = key
		return nil
	}
}

// WithMiddlewareOptions passes options such as WithTokenExtractor,
// WithLogger or WithMetrics to the underlying middleware.
func WithMiddlewareOptions(opts ...jwemiddleware.Option) Option {
	return func(config *middlewareConfig) error {
		config.middlewareOptions = append(config.middlewareOptions, opts...)
		return nil
	}
}
