package jwe

import (
	"errors"

	"github.com/secureclaims/go-jwe-middleware/jwe/contentenc"
	"github.com/secureclaims/go-jwe-middleware/jwe/keywrap"
)

// Sentinel errors for the engine. Every error returned by an Engine method
// matches exactly one of these with errors.Is.
var (
	// ErrMalformedToken is returned when a token is not a structurally valid
	// compact serialization: wrong segment count, bad base64url, a header that
	// is not a JSON object, or IV and tag lengths the algorithm cannot use.
	ErrMalformedToken = errors.New("jwe: malformed token")

	// ErrUnsupportedAlgorithm is returned when the header names a key
	// management or content encryption algorithm the engine does not allow.
	ErrUnsupportedAlgorithm = errors.New("jwe: unsupported algorithm")

	// ErrKeyEncryption is returned for unusable key material: the wrong key
	// type, a modulus too small for the algorithm, or a direct key of the
	// wrong size.
	ErrKeyEncryption = keywrap.ErrKeyEncryption

	// ErrAuthenticationFailed is returned whenever decryption fails for a
	// reason that depends on token contents. Unwrap failures, tag mismatches
	// and padding errors all surface as this one error.
	ErrAuthenticationFailed = contentenc.ErrAuthenticationFailed

	// ErrClaimsParse is returned when a decrypted payload is not valid claims.
	ErrClaimsParse = errors.New("jwe: claims could not be parsed")

	// ErrInvalidConfig is returned by New for an unusable configuration.
	ErrInvalidConfig = errors.New("jwe: invalid engine configuration")
)

// Error carries a machine-readable code next to one of the sentinel kinds.
type Error struct {
	// Code is a machine-readable error code (e.g., "token_malformed").
	Code string

	// Message is a human-readable error message.
	Message string

	// Details contains the underlying error, if any.
	Details error

	kind error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != nil {
		return e.Message + ": " + e.Details.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Details
}

// Is reports whether target is the sentinel kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.kind
}

// Kind returns the sentinel error this error matches.
func (e *Error) Kind() error {
	return e.kind
}

// Error codes
const (
	ErrorCodeTokenMalformed      = "token_malformed"
	ErrorCodeTokenTooLarge       = "token_too_large"
	ErrorCodeHeaderInvalid       = "header_invalid"
	ErrorCodeAlgorithmNotAllowed = "algorithm_not_allowed"
	ErrorCodeKeyNotFound         = "key_not_found"
	ErrorCodeKeyInvalid          = "key_invalid"
	ErrorCodeEncryptionFailed    = "encryption_failed"
	ErrorCodeDecryptionFailed    = "decryption_failed"
	ErrorCodeClaimsInvalid       = "claims_invalid"
	ErrorCodeConfigInvalid       = "config_invalid"
)

func newError(kind error, code, message string, details error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: details,
		kind:    kind,
	}
}

func malformed(message string, details error) *Error {
	return newError(ErrMalformedToken, ErrorCodeTokenMalformed, "jwe: malformed token: "+message, details)
}

func invalidHeader(message string, details error) *Error {
	return newError(ErrMalformedToken, ErrorCodeHeaderInvalid, "jwe: invalid protected header: "+message, details)
}

// decryptionFailed carries no details so that failures cannot be told apart.
func decryptionFailed() *Error {
	return newError(ErrAuthenticationFailed, ErrorCodeDecryptionFailed, ErrAuthenticationFailed.Error(), nil)
}
