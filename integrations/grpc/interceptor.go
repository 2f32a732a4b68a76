package jwegrpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"

	"github.com/secureclaims/go-jwe-middleware/core"
)

// JWEInterceptor decrypts JWE tokens carried in gRPC metadata.
type JWEInterceptor struct {
	core            *core.Core
	tokenExtractor  TokenExtractor
	errorHandler    ErrorHandler
	excludedMethods map[string]bool
	logger          Logger

	coreBuilder *coreBuilder
}

// New creates a gRPC interceptor. WithDecrypter is required.
func New(opts ...Option) (*JWEInterceptor, error) {
	interceptor := &JWEInterceptor{
		tokenExtractor:  MetadataTokenExtractor,
		errorHandler:    DefaultErrorHandler,
		excludedMethods: make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(interceptor); err != nil {
			return nil, err
		}
	}

	if interceptor.coreBuilder == nil || interceptor.coreBuilder.decrypter == nil {
		return nil, errors.New("decrypter is required, use WithDecrypter option")
	}

	c, err := interceptor.coreBuilder.build()
	if err != nil {
		return nil, err
	}
	interceptor.core = c

	return interceptor, nil
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that decrypts
// the caller's token and puts its claims in the handler's context.
func (i *JWEInterceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("skipping token decryption for excluded method", "method", info.FullMethod)
			}
			return handler(ctx, req)
		}

		ctx, err := i.checkRequest(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that
// decrypts the caller's token and puts its claims in the stream's context.
func (i *JWEInterceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("skipping token decryption for excluded method", "method", info.FullMethod)
			}
			return handler(srv, ss)
		}

		ctx, err := i.checkRequest(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})
	}
}

func (i *JWEInterceptor) checkRequest(ctx context.Context, method string) (context.Context, error) {
	token, err := i.tokenExtractor(ctx)
	if err != nil {
		if i.logger != nil {
			i.logger.Error("failed to extract token from gRPC metadata", "error", err, "method", method)
		}
		return ctx, i.errorHandler(err)
	}

	claims, err := i.core.CheckToken(ctx, token)
	if err != nil {
		if i.logger != nil {
			i.logger.Warn("token decryption failed", "error", err, "method", method)
		}
		return ctx, i.errorHandler(err)
	}

	if claims == nil {
		if i.logger != nil {
			i.logger.Debug("no credentials provided, continuing without claims", "method", method)
		}
		return ctx, nil
	}

	return core.SetClaims(ctx, claims), nil
}

type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
