/*
Package core provides the transport-agnostic token check shared by the HTTP
middleware, the gin and echo adapters and the gRPC interceptors.

	┌──────────────────────────────────────────────┐
	│  Transport adapters (net/http, gin, echo,    │
	│  gRPC)                                       │
	└──────────────────────┬───────────────────────┘
	                       ▼
	┌──────────────────────────────────────────────┐
	│  core.Core: empty-token policy, logging,     │
	│  error classification                        │
	└──────────────────────┬───────────────────────┘
	                       ▼
	┌──────────────────────────────────────────────┐
	│  decrypter.Decrypter: JWE decryption, key    │
	│  selection, claim checks                     │
	└──────────────────────────────────────────────┘

# Basic Usage

	d, err := decrypter.New(
	    decrypter.WithEngine(engine),
	    decrypter.WithResolver(keySet),
	)
	if err != nil {
	    log.Fatal(err)
	}

	c, err := core.New(core.WithDecrypter(d))
	if err != nil {
	    log.Fatal(err)
	}

	claims, err := c.CheckToken(ctx, tokenString)

# Context Helpers

	ctx = core.SetClaims(ctx, claims)

	decrypted, err := core.GetClaims[*decrypter.DecryptedClaims](ctx)
	if err != nil {
	    // Claims not found
	}

	if core.HasClaims(ctx) {
	    // Claims are present
	}

# Error Handling

CheckToken returns ErrTokenMissing for an absent token and a *TokenError
otherwise. Every *TokenError matches ErrTokenInvalid and carries a code:

	_, err := c.CheckToken(ctx, tokenString)
	var tokenErr *core.TokenError
	if errors.As(err, &tokenErr) {
	    switch tokenErr.Code {
	    case core.ErrorCodeTokenExpired:
	        // Ask the client to refresh
	    case core.ErrorCodeDecryptionFailed:
	        // Wrong key, tampering or a corrupted token; nothing more is known
	    }
	}

Classify performs the same mapping for errors produced elsewhere.
*/
package core
