package keysource

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secureclaims/go-jwe-middleware/internal/testfixture"
	"github.com/secureclaims/go-jwe-middleware/jwa"
	"github.com/secureclaims/go-jwe-middleware/jwe"
)

func fixtureSetJSON() string {
	return fmt.Sprintf(`{"keys":[%s,%s]}`, testfixture.SenderJWK, testfixture.RecipientJWK)
}

func TestParseSet(t *testing.T) {
	set, err := ParseSet([]byte(fixtureSetJSON()))
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	keys := set.Keys()
	assert.Equal(t, "1", keys[0].KeyID)
	assert.Equal(t, "sig", keys[0].Use)
	assert.Equal(t, "2", keys[1].KeyID)

	_, err = ParseSet([]byte(`{"keys":[{"kty":"EC","crv":"P-256","x":"f83OJ3D2xF1Bg8vub9tLe1gHMzV76e8Tus9uPHvRVEU","y":"x_FEzRu9m36HLN_tue659LNpXW6pCyStikYjKIWI5a0"}]}`))
	assert.ErrorIs(t, err, ErrUnsupportedKey)

	_, err = ParseSet([]byte(`{"keys":`))
	assert.Error(t, err)
}

func TestStaticSet_Lookup(t *testing.T) {
	set, err := ParseSet([]byte(fixtureSetJSON()))
	require.NoError(t, err)

	t.Run("by kid", func(t *testing.T) {
		m, err := set.Lookup(jwe.Header{Algorithm: jwa.RSA_OAEP, KeyID: "2"})
		require.NoError(t, err)
		assert.Equal(t, "2", m.KeyID)
	})

	t.Run("signing key is never selected", func(t *testing.T) {
		_, err := set.Lookup(jwe.Header{Algorithm: jwa.RSA_OAEP, KeyID: "1"})
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("sole encryption key without kid", func(t *testing.T) {
		m, err := set.Lookup(jwe.Header{Algorithm: jwa.RSA_OAEP})
		require.NoError(t, err)
		assert.Equal(t, "2", m.KeyID)
	})

	t.Run("unknown kid", func(t *testing.T) {
		_, err := set.Lookup(jwe.Header{Algorithm: jwa.RSA_OAEP, KeyID: "3"})
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pinned := &Material{KeyID: "pinned", Use: "enc", Algorithm: "RSA-OAEP-256", Public: &priv.PublicKey, Private: priv}
	unpinned := &Material{KeyID: "any", Public: &priv.PublicKey, Private: priv}

	t.Run("alg pin", func(t *testing.T) {
		s := NewStaticSet(pinned)
		_, err := s.Lookup(jwe.Header{Algorithm: jwa.RSA_OAEP, KeyID: "pinned"})
		assert.ErrorIs(t, err, ErrKeyNotFound)

		m, err := s.Lookup(jwe.Header{Algorithm: jwa.RSA_OAEP_256, KeyID: "pinned"})
		require.NoError(t, err)
		assert.Same(t, pinned, m)
	})

	t.Run("ambiguous without kid", func(t *testing.T) {
		s := NewStaticSet(pinned, unpinned)
		_, err := s.Lookup(jwe.Header{Algorithm: jwa.RSA_OAEP_256})
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("empty set", func(t *testing.T) {
		_, err := NewStaticSet().Lookup(jwe.Header{Algorithm: jwa.RSA_OAEP})
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestStaticSet_Resolve(t *testing.T) {
	set, err := ParseSet([]byte(fixtureSetJSON()))
	require.NoError(t, err)

	e, err := jwe.New(jwe.WithKeyAlgorithms(jwa.RSA_OAEP), jwe.WithContentEncryptions(jwa.A128GCM))
	require.NoError(t, err)

	payload, err := e.DecryptWithKeyFunc(testfixture.OpenSSLTokenA128GCM, set.KeyFunc())
	require.NoError(t, err)
	assert.Equal(t, testfixture.Payload, string(payload))

	// The legacy token also names kid 2; the key resolves but the tag fails.
	_, err = e.DecryptWithKeyFunc(testfixture.LegacyGluuToken, set.KeyFunc())
	assert.ErrorIs(t, err, jwe.ErrAuthenticationFailed)

	t.Run("public key only", func(t *testing.T) {
		pub := NewStaticSet(&Material{KeyID: "2", Public: &testfixture.RecipientKey().PublicKey})
		_, err := pub.Resolve(context.Background(), jwe.Header{Algorithm: jwa.RSA_OAEP, KeyID: "2"})
		assert.ErrorIs(t, err, ErrNoPrivateKey)

		_, err = e.DecryptWithKeyFunc(testfixture.OpenSSLTokenA128GCM, pub.KeyFunc())
		assert.ErrorIs(t, err, jwe.ErrKeyEncryption)
		assert.ErrorIs(t, err, ErrNoPrivateKey)
	})

	t.Run("keys is a copy", func(t *testing.T) {
		keys := set.Keys()
		keys[0] = nil
		assert.NotNil(t, set.Keys()[0])
	})
}
