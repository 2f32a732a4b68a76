package decrypter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secureclaims/go-jwe-middleware/claims"
	"github.com/secureclaims/go-jwe-middleware/internal/testfixture"
	"github.com/secureclaims/go-jwe-middleware/jwa"
	"github.com/secureclaims/go-jwe-middleware/jwe"
	"github.com/secureclaims/go-jwe-middleware/keysource"
)

const (
	issuer   = "https://idp.example.com"
	audience = "https://api.example.com"
)

type testClaims struct {
	Scope       string `json:"scope"`
	ReturnError error  `json:"-"`
}

func (tc *testClaims) Validate(context.Context) error {
	return tc.ReturnError
}

type resolverFunc func(context.Context, jwe.Header) (any, error)

func (f resolverFunc) Resolve(ctx context.Context, h jwe.Header) (any, error) {
	return f(ctx, h)
}

func testEngine(t *testing.T) *jwe.Engine {
	t.Helper()
	e, err := jwe.New(
		jwe.WithKeyAlgorithms(jwa.RSA_OAEP, jwa.RSA_OAEP_256),
		jwe.WithContentEncryptions(jwa.A128GCM, jwa.A256GCM),
	)
	require.NoError(t, err)
	return e
}

func recipientSet() *keysource.StaticSet {
	key := testfixture.RecipientKey()
	return keysource.NewStaticSet(&keysource.Material{
		KeyID:   "2",
		Use:     keysource.UseEncryption,
		Public:  &key.PublicKey,
		Private: key,
	})
}

func encryptClaims(t *testing.T, e *jwe.Engine, entries ...claims.Claim) string {
	t.Helper()
	c, err := claims.New(entries...)
	require.NoError(t, err)
	token, err := e.EncryptClaims(
		jwe.Header{Algorithm: jwa.RSA_OAEP_256, EncryptionAlgorithm: jwa.A256GCM, KeyID: "2"},
		c,
		&testfixture.RecipientKey().PublicKey,
	)
	require.NoError(t, err)
	return token
}

func TestDecrypter_DecryptToken(t *testing.T) {
	e := testEngine(t)
	now := time.Now()

	validToken := encryptClaims(t, e,
		claims.Claim{Name: claims.Issuer, Value: issuer},
		claims.Claim{Name: claims.Subject, Value: "1234567890"},
		claims.Claim{Name: claims.Audience, Value: []string{audience}},
		claims.Claim{Name: claims.ExpirationTime, Value: now.Add(time.Hour).Unix()},
		claims.Claim{Name: "scope", Value: "read:messages"},
	)

	testCases := []struct {
		name          string
		token         string
		opts          []Option
		expectedError error
		expectedMsg   string
		expectedScope string
	}{
		{
			name:  "it decrypts a token and checks issuer and audience",
			token: validToken,
			opts:  []Option{WithIssuer(issuer), WithAudiences("other", audience)},
		},
		{
			name:  "it decrypts a token with custom claims",
			token: validToken,
			opts: []Option{WithCustomClaims(func() CustomClaims {
				return &testClaims{}
			})},
			expectedScope: "read:messages",
		},
		{
			name:          "it rejects a token from a different issuer",
			token:         validToken,
			opts:          []Option{WithIssuer("https://other.example.com")},
			expectedError: jwt.ErrTokenInvalidIssuer,
		},
		{
			name:          "it rejects a token for a different audience",
			token:         validToken,
			opts:          []Option{WithAudiences("https://other-api.example.com")},
			expectedError: jwt.ErrTokenInvalidAudience,
		},
		{
			name: "it rejects an expired token",
			token: encryptClaims(t, e,
				claims.Claim{Name: claims.ExpirationTime, Value: now.Add(-time.Hour).Unix()},
			),
			expectedError: jwt.ErrTokenExpired,
		},
		{
			name: "it accepts a recently expired token within the clock skew",
			token: encryptClaims(t, e,
				claims.Claim{Name: claims.ExpirationTime, Value: now.Add(-10 * time.Second).Unix()},
			),
			opts: []Option{WithAllowedClockSkew(time.Minute)},
		},
		{
			name: "it rejects a token that is not valid yet",
			token: encryptClaims(t, e,
				claims.Claim{Name: claims.NotBefore, Value: now.Add(time.Hour).Unix()},
			),
			expectedError: jwt.ErrTokenNotValidYet,
		},
		{
			name: "it rejects a token issued in the future",
			token: encryptClaims(t, e,
				claims.Claim{Name: claims.IssuedAt, Value: now.Add(time.Hour).Unix()},
			),
			expectedError: jwt.ErrTokenUsedBeforeIssued,
		},
		{
			name:          "it requires exp when configured",
			token:         encryptClaims(t, e, claims.Claim{Name: claims.Subject, Value: "x"}),
			opts:          []Option{WithExpirationRequired()},
			expectedError: jwt.ErrTokenRequiredClaimMissing,
		},
		{
			name:  "it fails custom claims validation",
			token: validToken,
			opts: []Option{WithCustomClaims(func() CustomClaims {
				return &testClaims{ReturnError: errors.New("scope denied")}
			})},
			expectedMsg: "custom claims not validated: scope denied",
		},
		{
			name:          "it rejects a tampered token",
			token:         tamper(validToken),
			expectedError: jwe.ErrAuthenticationFailed,
		},
		{
			name:          "it rejects a malformed token",
			token:         "a.b.c",
			expectedError: jwe.ErrMalformedToken,
		},
		{
			name:          "it rejects a disallowed algorithm",
			token:         encryptWith(t, jwa.RSA_OAEP_512),
			expectedError: jwe.ErrUnsupportedAlgorithm,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			opts := append([]Option{WithEngine(e), WithResolver(recipientSet())}, testCase.opts...)
			d, err := New(opts...)
			require.NoError(t, err)

			result, err := d.DecryptToken(context.Background(), testCase.token)
			if testCase.expectedError != nil || testCase.expectedMsg != "" {
				require.Error(t, err)
				if testCase.expectedError != nil {
					assert.ErrorIs(t, err, testCase.expectedError)
				}
				if testCase.expectedMsg != "" {
					assert.EqualError(t, err, testCase.expectedMsg)
				}
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			decrypted, ok := result.(*DecryptedClaims)
			require.True(t, ok)
			if testCase.expectedScope != "" {
				require.NotNil(t, decrypted.CustomClaims)
				assert.Equal(t, testCase.expectedScope, decrypted.CustomClaims.(*testClaims).Scope)
			} else {
				assert.Nil(t, decrypted.CustomClaims)
			}
		})
	}
}

// tamper changes the second to last character of the authentication tag.
func tamper(token string) string {
	replacement := "A"
	if token[len(token)-2] == 'A' {
		replacement = "B"
	}
	return token[:len(token)-2] + replacement + token[len(token)-1:]
}

func encryptWith(t *testing.T, alg jwa.KeyAlgorithm) string {
	t.Helper()
	e, err := jwe.New(jwe.WithKeyAlgorithms(alg), jwe.WithContentEncryptions(jwa.A256GCM))
	require.NoError(t, err)
	token, err := e.Encrypt(
		jwe.Header{Algorithm: alg, EncryptionAlgorithm: jwa.A256GCM, KeyID: "2"},
		[]byte(`{}`),
		&testfixture.RecipientKey().PublicKey,
	)
	require.NoError(t, err)
	return token
}

func TestDecrypter_FixtureToken(t *testing.T) {
	d, err := New(
		WithEngine(testEngine(t)),
		WithResolver(recipientSet()),
		WithIssuer("https:devgluu.saminet.local"),
	)
	require.NoError(t, err)

	result, err := d.DecryptToken(context.Background(), testfixture.OpenSSLTokenA128GCM)
	require.NoError(t, err)

	got := result.(*DecryptedClaims).Claims
	want := []claims.Claim{
		{Name: claims.Issuer, Value: "https:devgluu.saminet.local"},
		{Name: claims.Subject, Value: "testing"},
	}
	if diff := cmp.Diff(want, got.Entries()); diff != "" {
		t.Errorf("claims mismatch (-want +got):\n%s", diff)
	}

	_, err = d.DecryptToken(context.Background(), testfixture.LegacyGluuToken)
	assert.ErrorIs(t, err, jwe.ErrAuthenticationFailed)
}

func TestDecrypter_ResolverReceivesContext(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "request-1")

	var seen any
	var seenKID string
	resolver := resolverFunc(func(ctx context.Context, h jwe.Header) (any, error) {
		seen = ctx.Value(ctxKey{})
		seenKID = h.KeyID
		return testfixture.RecipientKey(), nil
	})

	d, err := New(WithEngine(testEngine(t)), WithResolver(resolver))
	require.NoError(t, err)

	_, err = d.DecryptToken(ctx, testfixture.OpenSSLTokenA256GCM)
	require.NoError(t, err)
	assert.Equal(t, "request-1", seen)
	assert.Equal(t, "2", seenKID)

	failing := resolverFunc(func(context.Context, jwe.Header) (any, error) {
		return nil, keysource.ErrKeyNotFound
	})
	d, err = New(WithEngine(testEngine(t)), WithResolver(failing))
	require.NoError(t, err)

	_, err = d.DecryptToken(ctx, testfixture.OpenSSLTokenA256GCM)
	assert.ErrorIs(t, err, keysource.ErrKeyNotFound)
	assert.ErrorIs(t, err, jwe.ErrKeyEncryption)
}
