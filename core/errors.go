package core

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/secureclaims/go-jwe-middleware/jwe"
)

// Sentinel errors for token checks.
var (
	// ErrTokenMissing is returned when the token is missing from the request.
	ErrTokenMissing = errors.New("token missing")

	// ErrTokenInvalid is returned when the token could not be decrypted or
	// its claims were rejected. *TokenError matches it.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrClaimsNotFound is returned when claims cannot be retrieved from context.
	ErrClaimsNotFound = errors.New("claims not found in context")
)

// TokenError wraps token check failures with a machine-readable code that
// transport adapters map onto their own status codes.
type TokenError struct {
	// Code is a machine-readable error code (e.g., "token_expired", "decryption_failed")
	Code string

	// Message is a human-readable error message
	Message string

	// Details contains the underlying error
	Details error
}

// Error implements the error interface.
func (e *TokenError) Error() string {
	if e.Details != nil {
		return e.Message + ": " + e.Details.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *TokenError) Unwrap() error {
	return e.Details
}

// Is allows the error to be compared with ErrTokenInvalid.
func (e *TokenError) Is(target error) bool {
	return target == ErrTokenInvalid
}

// Common error codes
const (
	ErrorCodeTokenMissing     = "token_missing"
	ErrorCodeTokenMalformed   = "token_malformed"
	ErrorCodeTokenExpired     = "token_expired"
	ErrorCodeTokenNotYetValid = "token_not_yet_valid"
	ErrorCodeDecryptionFailed = "decryption_failed"
	ErrorCodeInvalidAlgorithm = "invalid_algorithm"
	ErrorCodeInvalidIssuer    = "invalid_issuer"
	ErrorCodeInvalidAudience  = "invalid_audience"
	ErrorCodeInvalidClaims    = "invalid_claims"
	ErrorCodeInvalidToken     = "invalid_token"
	ErrorCodeConfigInvalid    = "config_invalid"
	ErrorCodeDecrypterNotSet  = "decrypter_not_set"
	ErrorCodeClaimsNotFound   = "claims_not_found"
	ErrorCodeRequestCancelled = "request_cancelled"
)

// NewTokenError creates a new TokenError with the given code and message.
func NewTokenError(code, message string, details error) *TokenError {
	return &TokenError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Classify maps an error from a Decrypter onto a *TokenError. Errors that are
// already *TokenError are returned unchanged.
func Classify(err error) *TokenError {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewTokenError(ErrorCodeRequestCancelled, "request cancelled", err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return NewTokenError(ErrorCodeTokenExpired, "token expired", err)
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return NewTokenError(ErrorCodeTokenNotYetValid, "token not yet valid", err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return NewTokenError(ErrorCodeInvalidIssuer, "invalid issuer", err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return NewTokenError(ErrorCodeInvalidAudience, "invalid audience", err)
	case errors.Is(err, jwt.ErrTokenInvalidClaims), errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return NewTokenError(ErrorCodeInvalidClaims, "invalid claims", err)
	}

	switch {
	case errors.Is(err, jwe.ErrMalformedToken):
		return NewTokenError(ErrorCodeTokenMalformed, "malformed token", err)
	case errors.Is(err, jwe.ErrUnsupportedAlgorithm):
		return NewTokenError(ErrorCodeInvalidAlgorithm, "algorithm not allowed", err)
	case errors.Is(err, jwe.ErrKeyEncryption), errors.Is(err, jwe.ErrAuthenticationFailed):
		// Key resolution and unwrap failures must look like tag failures.
		return NewTokenError(ErrorCodeDecryptionFailed, "decryption failed", err)
	case errors.Is(err, jwe.ErrClaimsParse):
		return NewTokenError(ErrorCodeInvalidClaims, "invalid claims", err)
	case errors.Is(err, jwe.ErrInvalidConfig):
		return NewTokenError(ErrorCodeConfigInvalid, "invalid configuration", err)
	}

	return NewTokenError(ErrorCodeInvalidToken, "token invalid", err)
}
