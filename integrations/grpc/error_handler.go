package jwegrpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/secureclaims/go-jwe-middleware/core"
)

// ErrorHandler converts a rejection into the error returned to the client.
type ErrorHandler func(error) error

// DefaultErrorHandler maps rejections to gRPC status errors. Messages are
// fixed per error code and never include the underlying error.
func DefaultErrorHandler(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, core.ErrTokenMissing) {
		return status.Error(codes.Unauthenticated, "missing credentials")
	}

	if errors.Is(err, ErrMultipleAuthHeaders) ||
		errors.Is(err, ErrInvalidAuthFormat) ||
		errors.Is(err, ErrUnsupportedScheme) {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	var tokenErr *core.TokenError
	if errors.As(err, &tokenErr) {
		return mapTokenError(tokenErr)
	}

	return status.Error(codes.Unauthenticated, "invalid token")
}

func mapTokenError(err *core.TokenError) error {
	switch err.Code {
	case core.ErrorCodeTokenMissing:
		return status.Error(codes.Unauthenticated, "missing credentials")
	case core.ErrorCodeTokenMalformed:
		return status.Error(codes.InvalidArgument, "malformed token")
	case core.ErrorCodeTokenExpired:
		return status.Error(codes.Unauthenticated, "token expired")
	case core.ErrorCodeTokenNotYetValid:
		return status.Error(codes.Unauthenticated, "token not yet valid")
	case core.ErrorCodeDecryptionFailed:
		return status.Error(codes.Unauthenticated, "token could not be decrypted")
	case core.ErrorCodeInvalidAlgorithm:
		return status.Error(codes.Unauthenticated, "unsupported algorithm")
	case core.ErrorCodeInvalidIssuer:
		return status.Error(codes.PermissionDenied, "invalid issuer")
	case core.ErrorCodeInvalidAudience:
		return status.Error(codes.PermissionDenied, "invalid audience")
	case core.ErrorCodeInvalidClaims:
		return status.Error(codes.Unauthenticated, "invalid claims")
	case core.ErrorCodeRequestCancelled:
		return status.Error(codes.Canceled, "request cancelled")
	case core.ErrorCodeConfigInvalid, core.ErrorCodeDecrypterNotSet:
		return status.Error(codes.Internal, "unable to decrypt token")
	default:
		return status.Error(codes.Unauthenticated, "invalid token")
	}
}
