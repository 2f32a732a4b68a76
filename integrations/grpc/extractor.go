package jwegrpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/metadata"
)

// TokenExtractor pulls a token out of the incoming call. An empty token with
// a nil error means the call carries none.
type TokenExtractor func(ctx context.Context) (string, error)

var (
	ErrMultipleAuthHeaders = errors.New("multiple authorization metadata entries are not allowed")
	ErrInvalidAuthFormat   = errors.New("invalid authorization metadata format, expected: Bearer <token>")
	ErrUnsupportedScheme   = errors.New("unsupported authorization scheme, expected: Bearer")
)

// MetadataTokenExtractor reads "Bearer <token>" from the "authorization"
// metadata key. gRPC lowercases incoming keys.
func MetadataTokenExtractor(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil
	}

	authHeaders := md.Get("authorization")
	switch len(authHeaders) {
	case 0:
		return "", nil
	case 1:
	default:
		return "", ErrMultipleAuthHeaders
	}

	parts := strings.Fields(authHeaders[0])
	if len(parts) != 2 {
		return "", ErrInvalidAuthFormat
	}
	if !strings.EqualFold(parts[0], "bearer") {
		return "", ErrUnsupportedScheme
	}

	return parts[1], nil
}
