package jwegrpc

import (
	"errors"

	"github.com/secureclaims/go-jwe-middleware/core"
)

// Option configures the interceptor.
type Option func(*JWEInterceptor) error

// Logger is the same slog-compatible interface core uses.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type coreBuilder struct {
	decrypter           core.Decrypter
	credentialsOptional bool
	logger              Logger
}

func (b *coreBuilder) build() (*core.Core, error) {
	opts := []core.Option{
		core.WithDecrypter(b.decrypter),
		core.WithCredentialsOptional(b.credentialsOptional),
	}
	if b.logger != nil {
		opts = append(opts, core.WithLogger(b.logger))
	}
	return core.New(opts...)
}

func (i *JWEInterceptor) builder() *coreBuilder {
	if i.coreBuilder == nil {
		i.coreBuilder = &coreBuilder{}
	}
	return i.coreBuilder
}

// WithDecrypter sets the token decrypter (required), usually a
// *decrypter.Decrypter.
//
//	interceptor, err := jwegrpc.New(
//	    jwegrpc.WithDecrypter(d),
//	    jwegrpc.WithExcludedMethods("/grpc.health.v1.Health/Check"),
//	)
func WithDecrypter(d core.Decrypter) Option {
	return func(i *JWEInterceptor) error {
		if d == nil {
			return errors.New("decrypter cannot be nil")
		}
		i.builder().decrypter = d
		return nil
	}
}

// WithCredentialsOptional lets calls without a token through without claims.
func WithCredentialsOptional(optional bool) Option {
	return func(i *JWEInterceptor) error {
		i.builder().credentialsOptional = optional
		return nil
	}
}

// WithLogger sets the logger used by the interceptor and its core.
func WithLogger(logger Logger) Option {
	return func(i *JWEInterceptor) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		i.builder().logger = logger
		i.logger = logger
		return nil
	}
}

// WithTokenExtractor replaces MetadataTokenExtractor.
func WithTokenExtractor(extractor TokenExtractor) Option {
	return func(i *JWEInterceptor) error {
		if extractor == nil {
			return errors.New("token extractor cannot be nil")
		}
		i.tokenExtractor = extractor
		return nil
	}
}

// WithErrorHandler replaces DefaultErrorHandler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(i *JWEInterceptor) error {
		if handler == nil {
			return errors.New("error handler cannot be nil")
		}
		i.errorHandler = handler
		return nil
	}
}

// WithExcludedMethods skips decryption for full method names such as
// "/grpc.health.v1.Health/Check".
func WithExcludedMethods(methods ...string) Option {
	return func(i *JWEInterceptor) error {
		for _, method := range methods {
			i.excludedMethods[method] = true
		}
		return nil
	}
}
