package core

import (
	"context"
	"fmt"
)

// contextKey is unexported so only this package can create its context keys.
type contextKey int

const (
	claimsKey contextKey = iota
)

// GetClaims retrieves claims from the context with type safety using generics.
//
// It returns ErrClaimsNotFound when nothing is stored and a *TokenError with
// code claims_not_found when the stored value is not a T.
//
//	decrypted, err := core.GetClaims[*decrypter.DecryptedClaims](ctx)
//	if err != nil {
//	    return err
//	}
//	sub, _ := decrypted.Claims.GetSubject()
func GetClaims[T any](ctx context.Context) (T, error) {
	var zero T

	val := ctx.Value(claimsKey)
	if val == nil {
		return zero, ErrClaimsNotFound
	}

	claims, ok := val.(T)
	if !ok {
		return zero, NewTokenError(
			ErrorCodeClaimsNotFound,
			fmt.Sprintf("claims in context are %T", val),
			ErrClaimsNotFound,
		)
	}

	return claims, nil
}

// SetClaims stores claims in the context. Adapters call it after a token
// has been decrypted.
func SetClaims(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// HasClaims checks if claims exist in the context without retrieving them.
func HasClaims(ctx context.Context) bool {
	return ctx.Value(claimsKey) != nil
}
