/*
Package keysource turns JSON Web Keys into key material the JWE engine can
use and picks the right key for a token.

# Static keys

	set, err := keysource.ParseSet(jwksJSON)
	if err != nil {
	    return err
	}
	payload, err := engine.DecryptWithKeyFunc(token, set.KeyFunc())

RSA private keys published with only n, e and d are accepted; their prime
factors are recovered when the key is parsed.

# Remote keys

Provider fetches an issuer's key set on every call. CachingProvider keeps
fetched sets for a TTL (15 minutes by default, extended by a longer
Cache-Control max-age) and shares one fetch between concurrent callers.

	provider, err := keysource.NewCachingProvider(
	    keysource.WithIssuerURL(issuerURL),
	    keysource.WithCacheTTL(5*time.Minute),
	)

The key set URI is taken from the issuer's discovery document unless
WithCustomJWKSURI is given. Responses other than 200 fail the fetch, and
failures are returned without retrying.

# Key selection

Only keys with use "enc" (or no use) are considered. A key whose alg member
names a different key management algorithm than the token is skipped. A
token with a kid gets the key with that kid; a token without one resolves
only when exactly one key qualifies.
*/
package keysource
