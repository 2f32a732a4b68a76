package jwemiddleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/secureclaims/go-jwe-middleware/core"
)

var (
	// ErrTokenMissing is returned when the request carries no token.
	ErrTokenMissing = core.ErrTokenMissing

	// ErrTokenInvalid is matched by every decryption or claims failure.
	ErrTokenInvalid = core.ErrTokenInvalid

	// ErrTokenExtraction is matched when a token was present but the
	// extractor could not read it.
	ErrTokenExtraction = errors.New("token extraction failed")
)

// ErrorHandler is called when the middleware rejects a request. err matches
// ErrTokenMissing, ErrTokenExtraction or ErrTokenInvalid (with a
// *core.TokenError carrying the code); anything else is an internal failure.
// A custom ErrorHandler must still end the request with a response.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ErrorResponse is the JSON body written by DefaultErrorHandler.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorCode        string `json:"error_code,omitempty"`
}

// DefaultErrorHandler writes an RFC 6750 style response: a Bearer
// WWW-Authenticate challenge plus an ErrorResponse body. Descriptions are
// fixed per error code and never include the underlying error.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := mapError(err)

	w.Header().Set("Content-Type", "application/json")
	if challenge := bearerChallenge(status, resp, err); challenge != "" {
		w.Header().Set("WWW-Authenticate", challenge)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func mapError(err error) (int, ErrorResponse) {
	if errors.Is(err, ErrTokenMissing) {
		return http.StatusUnauthorized, ErrorResponse{Error: "invalid_token"}
	}

	if errors.Is(err, ErrTokenExtraction) {
		return http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "The request does not carry a well-formed access token",
		}
	}

	var tokenErr *core.TokenError
	if errors.As(err, &tokenErr) {
		return mapTokenError(tokenErr)
	}

	if errors.Is(err, ErrTokenInvalid) {
		return http.StatusUnauthorized, ErrorResponse{
			Error:            "invalid_token",
			ErrorDescription: "The access token is invalid",
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error:            "server_error",
		ErrorDescription: "An internal error occurred while processing the request",
	}
}

func mapTokenError(err *core.TokenError) (int, ErrorResponse) {
	resp := ErrorResponse{Error: "invalid_token", ErrorCode: err.Code}
	status := http.StatusUnauthorized

	switch err.Code {
	case core.ErrorCodeTokenMalformed:
		status = http.StatusBadRequest
		resp.Error = "invalid_request"
		resp.ErrorDescription = "The access token is malformed"
	case core.ErrorCodeTokenExpired:
		resp.ErrorDescription = "The access token expired"
	case core.ErrorCodeTokenNotYetValid:
		resp.ErrorDescription = "The access token is not yet valid"
	case core.ErrorCodeDecryptionFailed:
		resp.ErrorDescription = "The access token could not be decrypted"
	case core.ErrorCodeInvalidAlgorithm:
		resp.ErrorDescription = "The access token uses an unsupported algorithm"
	case core.ErrorCodeInvalidIssuer:
		status = http.StatusForbidden
		resp.Error = "insufficient_scope"
		resp.ErrorDescription = "The access token was issued by an untrusted issuer"
	case core.ErrorCodeInvalidAudience:
		status = http.StatusForbidden
		resp.Error = "insufficient_scope"
		resp.ErrorDescription = "The access token audience does not match"
	case core.ErrorCodeInvalidClaims:
		resp.ErrorDescription = "The access token claims are invalid"
	case core.ErrorCodeConfigInvalid:
		return http.StatusInternalServerError, ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "An internal error occurred while processing the request",
		}
	default:
		resp.ErrorDescription = "The access token is invalid"
	}

	return status, resp
}

// bearerChallenge builds the WWW-Authenticate value. A missing token gets a
// bare challenge; server errors get none.
func bearerChallenge(status int, resp ErrorResponse, err error) string {
	if status == http.StatusInternalServerError {
		return ""
	}
	if errors.Is(err, ErrTokenMissing) {
		return "Bearer"
	}
	return fmt.Sprintf(`Bearer error=%q, error_description=%q`, resp.Error, resp.ErrorDescription)
}

// extractError wraps a TokenExtractor failure. It matches
// ErrTokenExtraction and unwraps to the extractor's error.
type extractError struct {
	details error
}

func (e *extractError) Is(target error) bool {
	return target == ErrTokenExtraction
}

func (e *extractError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTokenExtraction, e.details)
}

func (e *extractError) Unwrap() error {
	return e.details
}
