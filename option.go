package jwemiddleware

import (
	"context"
	"errors"
	"net/http"
)

// Option configures the JWEMiddleware.
type Option func(*JWEMiddleware) error

// TokenDecrypter is satisfied by *decrypter.Decrypter.
type TokenDecrypter interface {
	DecryptToken(ctx context.Context, token string) (any, error)
}

// WithDecrypter sets what decrypts and checks tokens. This is required.
//
//	d, err := decrypter.New(
//	    decrypter.WithEngine(engine),
//	    decrypter.WithResolver(keySet),
//	    decrypter.WithIssuer("https://idp.example.com"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	middleware, err := jwemiddleware.New(jwemiddleware.WithDecrypter(d))
func WithDecrypter(d TokenDecrypter) Option {
	return func(m *JWEMiddleware) error {
		if d == nil {
			return ErrDecrypterNil
		}
		m.decrypter = d
		return nil
	}
}

// WithCredentialsOptional sets whether requests without a token pass
// through without claims.
//
// Default: false (credentials required)
func WithCredentialsOptional(value bool) Option {
	return func(m *JWEMiddleware) error {
		m.credentialsOptional = value
		return nil
	}
}

// WithDecryptOnOptions sets whether OPTIONS requests are checked.
//
// Default: true
func WithDecryptOnOptions(value bool) Option {
	return func(m *JWEMiddleware) error {
		m.decryptOnOptions = value
		return nil
	}
}

// WithErrorHandler sets the handler called when a request is rejected.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *JWEMiddleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.errorHandler = h
		return nil
	}
}

// WithTokenExtractor sets how the token is read from the request.
//
// Default: AuthHeaderTokenExtractor
func WithTokenExtractor(e TokenExtractor) Option {
	return func(m *JWEMiddleware) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		m.tokenExtractor = e
		return nil
	}
}

// WithExclusionURLs skips decryption for requests whose full URL or path
// equals one of exclusions.
func WithExclusionURLs(exclusions []string) Option {
	return func(m *JWEMiddleware) error {
		if len(exclusions) == 0 {
			return ErrExclusionURLsEmpty
		}
		m.exclusionURLHandler = func(r *http.Request) bool {
			requestFullURL := r.URL.String()
			requestPath := r.URL.Path

			for _, exclusion := range exclusions {
				if requestFullURL == exclusion || requestPath == exclusion {
					return true
				}
			}
			return false
		}
		return nil
	}
}

// WithLogger sets an optional logger for the middleware and core.
// *slog.Logger satisfies Logger; NewLogrusLogger adapts logrus.
func WithLogger(logger Logger) Option {
	return func(m *JWEMiddleware) error {
		if logger == nil {
			return ErrLoggerNil
		}
		m.logger = logger
		return nil
	}
}

// WithMetrics records request outcomes and decryption latency.
//
// Default: NoopMetrics
func WithMetrics(metrics Metrics) Option {
	return func(m *JWEMiddleware) error {
		if metrics == nil {
			return ErrMetricsNil
		}
		m.metrics = metrics
		return nil
	}
}

// WithTracer wraps each check in a span.
//
// Default: a no-op OpenTelemetry tracer
func WithTracer(tracer Tracer) Option {
	return func(m *JWEMiddleware) error {
		if tracer == nil {
			return ErrTracerNil
		}
		m.tracer = tracer
		return nil
	}
}

// Sentinel errors for configuration validation
var (
	ErrDecrypterNil       = errors.New("decrypter cannot be nil (use WithDecrypter)")
	ErrErrorHandlerNil    = errors.New("errorHandler cannot be nil")
	ErrTokenExtractorNil  = errors.New("tokenExtractor cannot be nil")
	ErrExclusionURLsEmpty = errors.New("exclusion URLs list cannot be empty")
	ErrLoggerNil          = errors.New("logger cannot be nil")
	ErrMetricsNil         = errors.New("metrics cannot be nil")
	ErrTracerNil          = errors.New("tracer cannot be nil")
)
