package keysource

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secureclaims/go-jwe-middleware/internal/testfixture"
	"github.com/secureclaims/go-jwe-middleware/jwa"
	"github.com/secureclaims/go-jwe-middleware/jwe"
)

func marshalJWK(t *testing.T, raw any, kid, use string) []byte {
	t.Helper()
	key, err := jwk.FromRaw(raw)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, kid))
	if use != "" {
		require.NoError(t, key.Set(jwk.KeyUsageKey, use))
	}
	data, err := json.Marshal(key)
	require.NoError(t, err)
	return data
}

func TestParseKey_RecipientWithoutPrimes(t *testing.T) {
	m, err := ParseKey([]byte(testfixture.RecipientJWK))
	require.NoError(t, err)

	assert.Equal(t, "2", m.KeyID)
	assert.Equal(t, UseEncryption, m.Use)
	assert.Equal(t, "RS256", m.Algorithm)

	priv, ok := m.Private.(*rsa.PrivateKey)
	require.True(t, ok, "expected *rsa.PrivateKey, got %T", m.Private)
	assert.Same(t, &priv.PublicKey, m.Public)

	want := testfixture.RecipientKey()
	assert.Equal(t, 0, want.N.Cmp(priv.N))
	require.Len(t, priv.Primes, 2)
	assert.ElementsMatch(t,
		[]string{want.Primes[0].String(), want.Primes[1].String()},
		[]string{priv.Primes[0].String(), priv.Primes[1].String()})
	require.NoError(t, priv.Validate())

	e, err := jwe.New(jwe.WithKeyAlgorithms(jwa.RSA_OAEP, jwa.RSA_OAEP_256), jwe.WithContentEncryptions(jwa.A128GCM, jwa.A256GCM))
	require.NoError(t, err)
	for _, token := range []string{testfixture.OpenSSLTokenA128GCM, testfixture.OpenSSLTokenA256GCM} {
		payload, err := e.Decrypt(token, m.Private)
		require.NoError(t, err)
		assert.Equal(t, testfixture.Payload, string(payload))
	}
}

func TestParseKey(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	t.Run("full RSA private key", func(t *testing.T) {
		m, err := ParseKey(marshalJWK(t, priv, "full", "enc"))
		require.NoError(t, err)
		got := m.Private.(*rsa.PrivateKey)
		assert.True(t, priv.Equal(got))
	})

	t.Run("RSA public key", func(t *testing.T) {
		m, err := ParseKey(marshalJWK(t, &priv.PublicKey, "pub", "enc"))
		require.NoError(t, err)
		assert.Nil(t, m.Private)
		assert.True(t, priv.PublicKey.Equal(m.Public))
	})

	t.Run("symmetric key", func(t *testing.T) {
		secret := []byte("0123456789abcdef0123456789abcdef")
		m, err := ParseKey(marshalJWK(t, secret, "oct", ""))
		require.NoError(t, err)
		assert.Equal(t, secret, m.Private)
		assert.Equal(t, secret, m.Public)
	})

	t.Run("EC keys are unsupported", func(t *testing.T) {
		ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
		_, err = ParseKey(marshalJWK(t, ecKey, "ec", "enc"))
		assert.ErrorIs(t, err, ErrUnsupportedKey)
	})

	t.Run("not a JWK", func(t *testing.T) {
		_, err := ParseKey([]byte(`{"kty":"nope"}`))
		assert.Error(t, err)
		_, err = ParseKey([]byte(`not json`))
		assert.Error(t, err)
	})

	t.Run("inconsistent private exponent", func(t *testing.T) {
		var fields map[string]any
		require.NoError(t, json.Unmarshal([]byte(testfixture.RecipientJWK), &fields))
		fields["d"] = "AQAB"
		data, err := json.Marshal(fields)
		require.NoError(t, err)

		_, err = ParseKey(data)
		assert.Error(t, err)
	})
}

func TestRecoverPrimes(t *testing.T) {
	for i := 0; i < 3; i++ {
		priv, err := rsa.GenerateKey(rand.Reader, 1024)
		require.NoError(t, err)

		p, q, err := recoverPrimes(priv.N, big.NewInt(int64(priv.E)), priv.D)
		require.NoError(t, err)
		assert.Equal(t, 0, new(big.Int).Mul(p, q).Cmp(priv.N))
		assert.ElementsMatch(t,
			[]string{priv.Primes[0].String(), priv.Primes[1].String()},
			[]string{p.String(), q.String()})
	}

	_, _, err := recoverPrimes(big.NewInt(15), big.NewInt(2), big.NewInt(1))
	assert.Error(t, err)
}
