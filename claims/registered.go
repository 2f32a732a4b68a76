package claims

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Registered claim names (RFC 7519 section 4.1).
const (
	Issuer         = "iss"
	Subject        = "sub"
	Audience       = "aud"
	ExpirationTime = "exp"
	NotBefore      = "nbf"
	IssuedAt       = "iat"
	JWTID          = "jti"
)

var _ jwt.Claims = Claims{}

// Validate checks the registered time, issuer, subject and audience claims
// with golang-jwt's validator. Options such as jwt.WithIssuer,
// jwt.WithAudience and jwt.WithLeeway select what is checked.
func (c Claims) Validate(opts ...jwt.ParserOption) error {
	return jwt.NewValidator(opts...).Validate(c)
}

// GetExpirationTime implements jwt.Claims.
func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return c.numericDate(ExpirationTime)
}

// GetNotBefore implements jwt.Claims.
func (c Claims) GetNotBefore() (*jwt.NumericDate, error) {
	return c.numericDate(NotBefore)
}

// GetIssuedAt implements jwt.Claims.
func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return c.numericDate(IssuedAt)
}

// GetIssuer implements jwt.Claims.
func (c Claims) GetIssuer() (string, error) {
	return c.stringClaim(Issuer)
}

// GetSubject implements jwt.Claims.
func (c Claims) GetSubject() (string, error) {
	return c.stringClaim(Subject)
}

// GetAudience implements jwt.Claims. A single string audience is returned as
// a one-element list.
func (c Claims) GetAudience() (jwt.ClaimStrings, error) {
	v, ok := c.Get(Audience)
	if !ok || v == nil {
		return nil, nil
	}

	switch aud := v.(type) {
	case string:
		return jwt.ClaimStrings{aud}, nil
	case []string:
		return jwt.ClaimStrings(aud), nil
	case []any:
		out := make(jwt.ClaimStrings, 0, len(aud))
		for _, a := range aud {
			s, ok := a.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s is invalid", jwt.ErrInvalidType, Audience)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s is invalid", jwt.ErrInvalidType, Audience)
	}
}

func (c Claims) stringClaim(name string) (string, error) {
	v, ok := c.Get(name)
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is invalid", jwt.ErrInvalidType, name)
	}
	return s, nil
}

func (c Claims) numericDate(name string) (*jwt.NumericDate, error) {
	v, ok := c.Get(name)
	if !ok || v == nil {
		return nil, nil
	}

	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %s is invalid", jwt.ErrInvalidType, name)
		}
		return secondsToDate(f), nil
	case float64:
		return secondsToDate(n), nil
	case int64:
		return jwt.NewNumericDate(time.Unix(n, 0)), nil
	case int:
		return jwt.NewNumericDate(time.Unix(int64(n), 0)), nil
	case time.Time:
		return jwt.NewNumericDate(n), nil
	case *jwt.NumericDate:
		return n, nil
	default:
		return nil, fmt.Errorf("%w: %s is invalid", jwt.ErrInvalidType, name)
	}
}

func secondsToDate(f float64) *jwt.NumericDate {
	sec, frac := math.Modf(f)
	return jwt.NewNumericDate(time.Unix(int64(sec), int64(frac*1e9)))
}
