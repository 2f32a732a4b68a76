package core

import (
	"context"
	"time"
)

// Decrypter decrypts a compact JWE token and returns its checked claims.
// *decrypter.Decrypter satisfies it.
type Decrypter interface {
	DecryptToken(ctx context.Context, token string) (any, error)
}

// Logger defines an optional logging interface for the core middleware.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Core is the framework-agnostic token check. It holds no transport state.
type Core struct {
	decrypter           Decrypter
	credentialsOptional bool
	logger              Logger
}

// CheckToken decrypts a token string and returns its claims.
//
//   - If token is empty and credentialsOptional is true, returns (nil, nil)
//   - If token is empty and credentialsOptional is false, returns ErrTokenMissing
//   - Otherwise, decrypts the token using the configured decrypter
//
// Failures are returned as *TokenError carrying a machine-readable code.
// The returned claims should be type-asserted by the caller, typically to
// *decrypter.DecryptedClaims.
func (c *Core) CheckToken(ctx context.Context, token string) (any, error) {
	if token == "" {
		if c.credentialsOptional {
			if c.logger != nil {
				c.logger.Debug("No token provided, but credentials are optional")
			}
			return nil, nil
		}

		if c.logger != nil {
			c.logger.Warn("No token provided and credentials are required")
		}

		return nil, ErrTokenMissing
	}

	start := time.Now()
	claims, err := c.decrypter.DecryptToken(ctx, token)
	duration := time.Since(start)

	if err != nil {
		tokenErr := Classify(err)
		if c.logger != nil {
			c.logger.Error("Token decryption failed", "code", tokenErr.Code, "duration", duration)
			c.logger.Debug("Token decryption failure cause", "error", err)
		}
		return nil, tokenErr
	}

	if c.logger != nil {
		c.logger.Debug("Token decrypted successfully", "duration", duration)
	}

	return claims, nil
}
