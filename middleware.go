package jwemiddleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/secureclaims/go-jwe-middleware/core"
)

// JWEMiddleware decrypts the JWE token carried by a request and stores the
// resulting claims in the request context.
type JWEMiddleware struct {
	core                *core.Core
	errorHandler        ErrorHandler
	tokenExtractor      TokenExtractor
	decryptOnOptions    bool
	exclusionURLHandler ExclusionURLHandler
	logger              Logger
	metrics             Metrics
	tracer              Tracer

	// Temporary fields used during construction
	decrypter           TokenDecrypter
	credentialsOptional bool
}

// Logger defines an optional logging interface compatible with log/slog.
// It is the same interface used by core.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ExclusionURLHandler reports whether a request skips token decryption.
type ExclusionURLHandler func(r *http.Request) bool

// Metric names recorded by the middleware.
const (
	MetricRequestsTotal   = "jwe_middleware_requests_total"
	MetricDecryptDuration = "jwe_middleware_decrypt_duration_seconds"
)

// New constructs a new JWEMiddleware instance with the supplied options.
// WithDecrypter is required.
//
//	middleware, err := jwemiddleware.New(
//	    jwemiddleware.WithDecrypter(d),
//	    jwemiddleware.WithCredentialsOptional(false),
//	)
//	if err != nil {
//	    log.Fatalf("failed to create middleware: %v", err)
//	}
func New(opts ...Option) (*JWEMiddleware, error) {
	m := &JWEMiddleware{
		decryptOnOptions:    true,
		credentialsOptional: false,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid middleware configuration: %w", err)
	}

	m.applyDefaults()

	if err := m.createCore(); err != nil {
		return nil, fmt.Errorf("failed to create core: %w", err)
	}

	return m, nil
}

func (m *JWEMiddleware) validate() error {
	if m.decrypter == nil {
		return ErrDecrypterNil
	}
	return nil
}

func (m *JWEMiddleware) createCore() error {
	coreOpts := []core.Option{
		core.WithDecrypter(m.decrypter),
		core.WithCredentialsOptional(m.credentialsOptional),
	}
	if m.logger != nil {
		coreOpts = append(coreOpts, core.WithLogger(m.logger))
	}

	c, err := core.New(coreOpts...)
	if err != nil {
		return err
	}
	m.core = c
	return nil
}

func (m *JWEMiddleware) applyDefaults() {
	if m.errorHandler == nil {
		m.errorHandler = DefaultErrorHandler
	}
	if m.tokenExtractor == nil {
		m.tokenExtractor = AuthHeaderTokenExtractor
	}
	if m.metrics == nil {
		m.metrics = NoopMetrics{}
	}
	if m.tracer == nil {
		m.tracer = NewNoopTracer()
	}
}

// GetClaims retrieves claims from the context with type safety using generics.
//
//	decrypted, err := jwemiddleware.GetClaims[*decrypter.DecryptedClaims](r.Context())
//	if err != nil {
//	    http.Error(w, "failed to get claims", http.StatusInternalServerError)
//	    return
//	}
func GetClaims[T any](ctx context.Context) (T, error) {
	return core.GetClaims[T](ctx)
}

// MustGetClaims retrieves claims from the context or panics.
// Use only when the middleware is known to have stored claims.
func MustGetClaims[T any](ctx context.Context) T {
	claims, err := core.GetClaims[T](ctx)
	if err != nil {
		panic(err)
	}
	return claims
}

// HasClaims checks if claims exist in the context.
func HasClaims(ctx context.Context) bool {
	return core.HasClaims(ctx)
}

// CheckJWE wraps next so that it only runs for requests whose token
// decrypts and passes the claim checks.
func (m *JWEMiddleware) CheckJWE(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.exclusionURLHandler != nil && m.exclusionURLHandler(r) {
			if m.logger != nil {
				m.logger.Debug("skipping token decryption for excluded URL",
					"method", r.Method,
					"path", r.URL.Path)
			}
			next.ServeHTTP(w, r)
			return
		}
		if !m.decryptOnOptions && r.Method == http.MethodOptions {
			if m.logger != nil {
				m.logger.Debug("skipping token decryption for OPTIONS request")
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx, span := m.tracer.Start(r.Context(), "jwemiddleware.CheckJWE")
		defer span.End()
		span.SetAttribute("http.method", r.Method)
		span.SetAttribute("http.path", r.URL.Path)

		token, err := m.tokenExtractor(r)
		if err != nil {
			// An extractor error means a token was present but badly formed,
			// not that it was missing.
			if m.logger != nil {
				m.logger.Error("failed to extract token from request",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path)
			}
			m.record("extract_error", "", 0)
			span.RecordError(err)
			m.errorHandler(w, r, &extractError{details: err})
			return
		}

		start := time.Now()
		claims, err := m.core.CheckToken(ctx, token)
		duration := time.Since(start)

		if err != nil {
			code := rejectionCode(err)
			if m.logger != nil {
				m.logger.Warn("token decryption failed",
					"code", code,
					"method", r.Method,
					"path", r.URL.Path)
			}
			m.record("rejected", code, duration)
			span.SetAttribute("jwe.error_code", code)
			span.RecordError(err)
			m.errorHandler(w, r, err)
			return
		}

		if claims == nil {
			if m.logger != nil {
				m.logger.Debug("no credentials provided, continuing without claims (credentials optional)")
			}
			m.record("anonymous", "", 0)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		m.record("accepted", "", duration)
		r = r.Clone(core.SetClaims(ctx, claims))
		next.ServeHTTP(w, r)
	})
}

func (m *JWEMiddleware) record(outcome, code string, duration time.Duration) {
	m.metrics.IncCounter(MetricRequestsTotal, map[string]string{"outcome": outcome, "code": code})
	if duration > 0 {
		m.metrics.ObserveHistogram(MetricDecryptDuration, duration.Seconds(), map[string]string{"outcome": outcome})
	}
}

// rejectionCode labels a failed check for logs, metrics and spans.
func rejectionCode(err error) string {
	if errors.Is(err, core.ErrTokenMissing) {
		return core.ErrorCodeTokenMissing
	}
	var tokenErr *core.TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr.Code
	}
	return core.ErrorCodeInvalidToken
}
