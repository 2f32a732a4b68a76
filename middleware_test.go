package jwemiddleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secureclaims/go-jwe-middleware/claims"
	"github.com/secureclaims/go-jwe-middleware/core"
	"github.com/secureclaims/go-jwe-middleware/decrypter"
	"github.com/secureclaims/go-jwe-middleware/internal/testfixture"
	"github.com/secureclaims/go-jwe-middleware/jwa"
	"github.com/secureclaims/go-jwe-middleware/jwe"
	"github.com/secureclaims/go-jwe-middleware/keysource"
)

const testIssuer = "https://idp.example.com"

type mockLogger struct {
	mu    sync.Mutex
	calls []string
}

func (m *mockLogger) log(level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, level+": "+msg)
}

func (m *mockLogger) Debug(msg string, _ ...any) { m.log("debug", msg) }
func (m *mockLogger) Info(msg string, _ ...any)  { m.log("info", msg) }
func (m *mockLogger) Warn(msg string, _ ...any)  { m.log("warn", msg) }
func (m *mockLogger) Error(msg string, _ ...any) { m.log("error", msg) }

func testEngine(t *testing.T) *jwe.Engine {
	t.Helper()
	e, err := jwe.New(
		jwe.WithKeyAlgorithms(jwa.RSA_OAEP, jwa.RSA_OAEP_256),
		jwe.WithContentEncryptions(jwa.A128GCM, jwa.A256GCM),
	)
	require.NoError(t, err)
	return e
}

func testDecrypter(t *testing.T) *decrypter.Decrypter {
	t.Helper()
	key := testfixture.RecipientKey()
	set := keysource.NewStaticSet(&keysource.Material{
		KeyID:   "2",
		Use:     keysource.UseEncryption,
		Public:  &key.PublicKey,
		Private: key,
	})
	d, err := decrypter.New(
		decrypter.WithEngine(testEngine(t)),
		decrypter.WithResolver(set),
		decrypter.WithIssuer(testIssuer),
	)
	require.NoError(t, err)
	return d
}

func testToken(t *testing.T, entries ...claims.Claim) string {
	t.Helper()
	c, err := claims.New(entries...)
	require.NoError(t, err)
	token, err := testEngine(t).EncryptClaims(
		jwe.Header{Algorithm: jwa.RSA_OAEP_256, EncryptionAlgorithm: jwa.A256GCM, Type: "JWT", KeyID: "2"},
		c,
		&testfixture.RecipientKey().PublicKey,
	)
	require.NoError(t, err)
	return token
}

// subjectHandler echoes the sub claim of the decrypted token.
var subjectHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !HasClaims(r.Context()) {
		_, _ = w.Write([]byte(`{"subject":""}`))
		return
	}
	decrypted := MustGetClaims[*decrypter.DecryptedClaims](r.Context())
	sub, _ := decrypted.Claims.GetSubject()
	_ = json.NewEncoder(w).Encode(map[string]string{"subject": sub})
})

func Test_CheckJWE(t *testing.T) {
	validToken := testToken(t,
		claims.Claim{Name: claims.Issuer, Value: testIssuer},
		claims.Claim{Name: claims.Subject, Value: "alice"},
		claims.Claim{Name: claims.ExpirationTime, Value: time.Now().Add(time.Hour).Unix()},
	)
	expiredToken := testToken(t,
		claims.Claim{Name: claims.Issuer, Value: testIssuer},
		claims.Claim{Name: claims.ExpirationTime, Value: time.Now().Add(-time.Hour).Unix()},
	)
	otherIssuerToken := testToken(t, claims.Claim{Name: claims.Issuer, Value: "https://evil.example.com"})

	testCases := []struct {
		name           string
		options        []Option
		method         string
		path           string
		authHeader     string
		wantStatusCode int
		wantBody       string
	}{
		{
			name:           "it decrypts a valid token",
			authHeader:     "Bearer " + validToken,
			wantStatusCode: http.StatusOK,
			wantBody:       `{"subject":"alice"}`,
		},
		{
			name:           "it decrypts on OPTIONS by default",
			method:         http.MethodOptions,
			authHeader:     "Bearer " + validToken,
			wantStatusCode: http.StatusOK,
			wantBody:       `{"subject":"alice"}`,
		},
		{
			name:           "it skips OPTIONS when configured",
			options:        []Option{WithDecryptOnOptions(false)},
			method:         http.MethodOptions,
			wantStatusCode: http.StatusOK,
			wantBody:       `{"subject":""}`,
		},
		{
			name:           "it rejects a missing token",
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"error":"invalid_token"}`,
		},
		{
			name:           "it lets a missing token through when credentials are optional",
			options:        []Option{WithCredentialsOptional(true)},
			wantStatusCode: http.StatusOK,
			wantBody:       `{"subject":""}`,
		},
		{
			name:           "it still rejects a bad token when credentials are optional",
			options:        []Option{WithCredentialsOptional(true)},
			authHeader:     "Bearer " + testfixture.LegacyGluuToken,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"error":"invalid_token","error_description":"The access token could not be decrypted","error_code":"decryption_failed"}`,
		},
		{
			name:           "it rejects a badly formed Authorization header",
			authHeader:     "Token " + validToken,
			wantStatusCode: http.StatusBadRequest,
			wantBody:       `{"error":"invalid_request","error_description":"The request does not carry a well-formed access token"}`,
		},
		{
			name:           "it rejects a malformed token",
			authHeader:     "Bearer not.a.token",
			wantStatusCode: http.StatusBadRequest,
			wantBody:       `{"error":"invalid_request","error_description":"The access token is malformed","error_code":"token_malformed"}`,
		},
		{
			name:           "it rejects an expired token",
			authHeader:     "Bearer " + expiredToken,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"error":"invalid_token","error_description":"The access token expired","error_code":"token_expired"}`,
		},
		{
			name:           "it rejects a token from another issuer",
			authHeader:     "Bearer " + otherIssuerToken,
			wantStatusCode: http.StatusForbidden,
			wantBody:       `{"error":"insufficient_scope","error_description":"The access token was issued by an untrusted issuer","error_code":"invalid_issuer"}`,
		},
		{
			name:           "it skips excluded URLs",
			options:        []Option{WithExclusionURLs([]string{"/health"})},
			path:           "/health",
			wantStatusCode: http.StatusOK,
			wantBody:       `{"subject":""}`,
		},
		{
			name: "it reads the token with a custom extractor",
			options: []Option{WithTokenExtractor(
				MultiTokenExtractor(CookieTokenExtractor("missing"), ParameterTokenExtractor("token")),
			)},
			path:           "/api?token=" + validToken,
			wantStatusCode: http.StatusOK,
			wantBody:       `{"subject":"alice"}`,
		},
		{
			name: "it calls the custom error handler",
			options: []Option{WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				w.WriteHeader(http.StatusTeapot)
				_, _ = fmt.Fprintf(w, `{"missing":%t}`, errors.Is(err, ErrTokenMissing))
			})},
			wantStatusCode: http.StatusTeapot,
			wantBody:       `{"missing":true}`,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			opts := append([]Option{WithDecrypter(testDecrypter(t))}, testCase.options...)
			middleware, err := New(opts...)
			require.NoError(t, err)

			server := httptest.NewServer(middleware.CheckJWE(subjectHandler))
			defer server.Close()

			method := testCase.method
			if method == "" {
				method = http.MethodGet
			}
			path := testCase.path
			if path == "" {
				path = "/api"
			}

			request, err := http.NewRequest(method, server.URL+path, nil)
			require.NoError(t, err)
			if testCase.authHeader != "" {
				request.Header.Add("Authorization", testCase.authHeader)
			}

			response, err := server.Client().Do(request)
			require.NoError(t, err)
			defer response.Body.Close()

			body, err := io.ReadAll(response.Body)
			require.NoError(t, err)

			assert.Equal(t, testCase.wantStatusCode, response.StatusCode)
			assert.JSONEq(t, testCase.wantBody, string(body))
		})
	}
}

func Test_CheckJWE_Observability(t *testing.T) {
	validToken := testToken(t, claims.Claim{Name: claims.Issuer, Value: testIssuer})

	registry := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(registry)
	logger := &mockLogger{}

	middleware, err := New(
		WithDecrypter(testDecrypter(t)),
		WithMetrics(metrics),
		WithLogger(logger),
		WithTracer(NewNoopTracer()),
	)
	require.NoError(t, err)
	handler := middleware.CheckJWE(subjectHandler)

	do := func(authHeader string) int {
		r := httptest.NewRequest(http.MethodGet, "/api", nil)
		if authHeader != "" {
			r.Header.Set("Authorization", authHeader)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("Bearer "+validToken))
	assert.Equal(t, http.StatusOK, do("Bearer "+validToken))
	assert.Equal(t, http.StatusForbidden, do("Bearer "+testfixture.OpenSSLTokenA128GCM))
	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, http.StatusBadRequest, do("Basic abc"))

	counter := metrics.counters[MetricRequestsTotal]
	require.NotNil(t, counter)
	assert.Equal(t, 2.0, testutil.ToFloat64(counter.With(prometheus.Labels{"outcome": "accepted", "code": ""})))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.With(prometheus.Labels{"outcome": "rejected", "code": "invalid_issuer"})))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.With(prometheus.Labels{"outcome": "rejected", "code": "token_missing"})))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.With(prometheus.Labels{"outcome": "extract_error", "code": ""})))
	count, err := testutil.GatherAndCount(registry, MetricDecryptDuration)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Contains(t, logger.calls, "warn: token decryption failed")
	assert.Contains(t, logger.calls, "error: failed to extract token from request")
	assert.Contains(t, logger.calls, "debug: Token decrypted successfully")
}

func Test_CheckJWE_DecryptionFailuresLookAlike(t *testing.T) {
	middleware, err := New(WithDecrypter(testDecrypter(t)))
	require.NoError(t, err)
	handler := middleware.CheckJWE(subjectHandler)

	// Zero-filled segments of the right sizes for RSA-OAEP-256 with A256GCM
	// and a 2048-bit recipient key.
	zeroToken := func(kid string) string {
		encoded, err := jwe.Header{
			Algorithm:           jwa.RSA_OAEP_256,
			EncryptionAlgorithm: jwa.A256GCM,
			KeyID:               kid,
		}.Encode()
		require.NoError(t, err)
		return jwe.Compact{
			ProtectedHeader: encoded,
			EncryptedKey:    make([]byte, 256),
			IV:              make([]byte, 12),
			Ciphertext:      make([]byte, 16),
			Tag:             make([]byte, 16),
		}.Serialize()
	}

	do := func(token string) (int, http.Header, string) {
		r := httptest.NewRequest(http.MethodGet, "/api", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code, w.Header(), w.Body.String()
	}

	knownStatus, knownHeader, knownBody := do(zeroToken("2"))
	unknownStatus, unknownHeader, unknownBody := do(zeroToken("nope"))

	assert.Equal(t, http.StatusUnauthorized, knownStatus)
	assert.JSONEq(t,
		`{"error":"invalid_token","error_description":"The access token could not be decrypted","error_code":"decryption_failed"}`,
		knownBody)
	assert.Equal(t, knownStatus, unknownStatus)
	assert.Equal(t, knownBody, unknownBody)
	assert.Equal(t, knownHeader.Get("WWW-Authenticate"), unknownHeader.Get("WWW-Authenticate"))
}

func Test_rejectionCode(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{"missing token", ErrTokenMissing, "token_missing"},
		{"classified failure", fmt.Errorf("check: %w", core.Classify(jwe.ErrAuthenticationFailed)), "decryption_failed"},
		{"unclassified failure", errors.New("boom"), "invalid_token"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, rejectionCode(testCase.err))
		})
	}
}

func Test_CheckJWE_PassesRequestContext(t *testing.T) {
	type ctxKey struct{}
	var seen any
	middleware, err := New(WithDecrypter(decrypterFunc(func(ctx context.Context, token string) (any, error) {
		seen = ctx.Value(ctxKey{})
		return "claims", nil
	})))
	require.NoError(t, err)

	var got string
	handler := middleware.CheckJWE(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = MustGetClaims[string](r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, "request-scoped"))
	r.Header.Set("Authorization", "Bearer opaque")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "request-scoped", seen)
	assert.Equal(t, "claims", got)
}

type decrypterFunc func(ctx context.Context, token string) (any, error)

func (f decrypterFunc) DecryptToken(ctx context.Context, token string) (any, error) {
	return f(ctx, token)
}
