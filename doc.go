/*
Package jwemiddleware provides net/http middleware for encrypted (JWE)
bearer tokens.

The middleware reads a compact JWE token from the request, decrypts it with
a key chosen from the token's header, checks the registered claims and
stores the claims in the request context. Decryption itself lives in the
jwe package; this package is the HTTP adapter over core.

# Quick Start

	import (
	    jwemiddleware "github.com/secureclaims/go-jwe-middleware"
	    "github.com/secureclaims/go-jwe-middleware/decrypter"
	    "github.com/secureclaims/go-jwe-middleware/jwa"
	    "github.com/secureclaims/go-jwe-middleware/jwe"
	    "github.com/secureclaims/go-jwe-middleware/keysource"
	)

	func main() {
	    engine, err := jwe.New(
	        jwe.WithKeyAlgorithms(jwa.RSA_OAEP_256),
	        jwe.WithContentEncryptions(jwa.A256GCM),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    keys, err := keysource.ParseSet(privateJWKS)
	    if err != nil {
	        log.Fatal(err)
	    }

	    d, err := decrypter.New(
	        decrypter.WithEngine(engine),
	        decrypter.WithResolver(keys),
	        decrypter.WithIssuer("https://idp.example.com"),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    middleware, err := jwemiddleware.New(jwemiddleware.WithDecrypter(d))
	    if err != nil {
	        log.Fatal(err)
	    }

	    http.Handle("/api/", middleware.CheckJWE(apiHandler))
	    http.ListenAndServe(":8080", nil)
	}

# Accessing Claims

	func apiHandler(w http.ResponseWriter, r *http.Request) {
	    decrypted, err := jwemiddleware.GetClaims[*decrypter.DecryptedClaims](r.Context())
	    if err != nil {
	        http.Error(w, "Unauthorized", http.StatusUnauthorized)
	        return
	    }
	    sub, _ := decrypted.Claims.GetSubject()
	    fmt.Fprintf(w, "hello %s", sub)
	}

# Token Extraction

AuthHeaderTokenExtractor (the default) reads "Authorization: Bearer".
CookieTokenExtractor, ParameterTokenExtractor and HeaderTokenExtractor read
other locations, and MultiTokenExtractor tries several in order.

# Errors

DefaultErrorHandler answers with a Bearer WWW-Authenticate challenge and a
JSON ErrorResponse. A token that fails to decrypt for any reason gets the
same "decryption_failed" answer: the middleware does not reveal whether the
key, the ciphertext or the tag was at fault.

	Missing token            401  invalid_token
	Malformed token          400  invalid_request       token_malformed
	Decryption failed        401  invalid_token         decryption_failed
	Algorithm not allowed    401  invalid_token         invalid_algorithm
	Expired / not yet valid  401  invalid_token         token_expired, token_not_yet_valid
	Wrong issuer / audience  403  insufficient_scope    invalid_issuer, invalid_audience
	Other errors             500  server_error

# Observability

WithLogger accepts any slog-style logger; NewLogrusLogger adapts logrus.
WithMetrics with NewPrometheusMetrics records
jwe_middleware_requests_total{outcome,code} and
jwe_middleware_decrypt_duration_seconds{outcome}. WithTracer with
NewOpenTelemetryTracer wraps each check in a server span.
*/
package jwemiddleware
