package jwegrpc

import (
	"context"

	"github.com/secureclaims/go-jwe-middleware/core"
)

// GetClaims returns the claims the interceptor stored in ctx.
//
//	decrypted, err := jwegrpc.GetClaims[*decrypter.DecryptedClaims](ctx)
func GetClaims[T any](ctx context.Context) (T, error) {
	return core.GetClaims[T](ctx)
}

// MustGetClaims is GetClaims for handlers behind the interceptor. It panics
// when the claims are absent.
func MustGetClaims[T any](ctx context.Context) T {
	claims, err := core.GetClaims[T](ctx)
	if err != nil {
		panic(err)
	}
	return claims
}

// HasClaims reports whether ctx carries claims.
func HasClaims(ctx context.Context) bool {
	return core.HasClaims(ctx)
}
