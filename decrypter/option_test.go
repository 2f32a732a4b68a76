package decrypter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	e := testEngine(t)
	set := recipientSet()

	testCases := []struct {
		name        string
		opts        []Option
		expectedErr string
	}{
		{
			name: "minimal configuration",
			opts: []Option{WithEngine(e), WithResolver(set)},
		},
		{
			name: "full configuration",
			opts: []Option{
				WithEngine(e),
				WithResolver(set),
				WithIssuer(issuer),
				WithAudiences(audience),
				WithAllowedClockSkew(time.Minute),
				WithExpirationRequired(),
				WithCustomClaims(func() CustomClaims { return &testClaims{} }),
			},
		},
		{
			name:        "missing engine",
			opts:        []Option{WithResolver(set)},
			expectedErr: "engine is required",
		},
		{
			name:        "missing resolver",
			opts:        []Option{WithEngine(e)},
			expectedErr: "key resolver is required",
		},
		{
			name:        "nil engine",
			opts:        []Option{WithEngine(nil), WithResolver(set)},
			expectedErr: "engine cannot be nil",
		},
		{
			name:        "nil resolver",
			opts:        []Option{WithEngine(e), WithResolver(nil)},
			expectedErr: "resolver cannot be nil",
		},
		{
			name:        "empty issuer",
			opts:        []Option{WithEngine(e), WithResolver(set), WithIssuer("")},
			expectedErr: "issuer cannot be empty",
		},
		{
			name:        "invalid issuer URL",
			opts:        []Option{WithEngine(e), WithResolver(set), WithIssuer("://bad")},
			expectedErr: "invalid issuer URL",
		},
		{
			name:        "no audiences",
			opts:        []Option{WithEngine(e), WithResolver(set), WithAudiences()},
			expectedErr: "audiences cannot be empty",
		},
		{
			name:        "empty audience",
			opts:        []Option{WithEngine(e), WithResolver(set), WithAudiences("api", "")},
			expectedErr: "audience at index 1 cannot be empty",
		},
		{
			name:        "negative clock skew",
			opts:        []Option{WithEngine(e), WithResolver(set), WithAllowedClockSkew(-time.Second)},
			expectedErr: "clock skew cannot be negative",
		},
		{
			name:        "nil custom claims",
			opts:        []Option{WithEngine(e), WithResolver(set), WithCustomClaims(nil)},
			expectedErr: "custom claims function cannot be nil",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			d, err := New(testCase.opts...)
			if testCase.expectedErr != "" {
				assert.ErrorContains(t, err, testCase.expectedErr)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, d)
		})
	}
}
