/*
Package decrypter turns a compact JWE token into checked claims.

A Decrypter combines a jwe.Engine (algorithm allow-list and cryptography), a
keysource.Resolver (which key opens the token) and claim checks run by
golang-jwt's validator:

	engine, err := jwe.New(
	    jwe.WithKeyAlgorithms(jwa.RSA_OAEP_256),
	    jwe.WithContentEncryptions(jwa.A256GCM),
	)
	if err != nil {
	    return err
	}

	d, err := decrypter.New(
	    decrypter.WithEngine(engine),
	    decrypter.WithResolver(keySet),
	    decrypter.WithIssuer("https://idp.example.com"),
	    decrypter.WithAudiences("my-api"),
	    decrypter.WithAllowedClockSkew(30*time.Second),
	)

	result, err := d.DecryptToken(ctx, token)
	if err != nil {
	    return err
	}
	decrypted := result.(*decrypter.DecryptedClaims)

Issuer and audience are only checked when configured. Time claims (exp, nbf,
iat) are always checked when present.

# Custom claims

	type AppClaims struct {
	    Scope string `json:"scope"`
	}

	func (c *AppClaims) Validate(ctx context.Context) error {
	    if c.Scope == "" {
	        return errors.New("scope is required")
	    }
	    return nil
	}

	d, err := decrypter.New(
	    decrypter.WithEngine(engine),
	    decrypter.WithResolver(keySet),
	    decrypter.WithCustomClaims(func() decrypter.CustomClaims { return &AppClaims{} }),
	)

# Errors

Decryption errors keep their jwe kind, so errors.Is(err,
jwe.ErrAuthenticationFailed) still holds after wrapping. Claim failures wrap
golang-jwt's errors such as jwt.ErrTokenExpired.
*/
package decrypter
