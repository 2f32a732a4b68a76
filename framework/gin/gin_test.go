package jwegin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwemiddleware "github.com/secureclaims/go-jwe-middleware"
	"github.com/secureclaims/go-jwe-middleware/claims"
	"github.com/secureclaims/go-jwe-middleware/decrypter"
	"github.com/secureclaims/go-jwe-middleware/jwe"
)

const validToken = "valid-token"

type stubDecrypter struct{}

func (stubDecrypter) DecryptToken(_ context.Context, token string) (any, error) {
	if token != validToken {
		return nil, jwe.ErrAuthenticationFailed
	}
	c, err := claims.New(claims.Claim{Name: claims.Subject, Value: "user-1"})
	if err != nil {
		return nil, err
	}
	return &decrypter.DecryptedClaims{Claims: c}, nil
}

func newRouter(t *testing.T, opts ...Option) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mw, err := NewMiddleware(stubDecrypter{}, opts...)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/", mw, func(c *gin.Context) {
		decrypted, err := GetClaims(c, DefaultClaimsKey)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		sub, _ := decrypted.Claims.GetSubject()
		ok := jwemiddleware.HasClaims(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"sub": sub, "request_context": ok})
	})
	return router
}

func TestNewMiddleware(t *testing.T) {
	testCases := []struct {
		name          string
		authorization string
		wantStatus    int
		wantBody      string
		wantChallenge string
	}{
		{
			name:          "valid token",
			authorization: "Bearer " + validToken,
			wantStatus:    http.StatusOK,
			wantBody:      `{"request_context":true,"sub":"user-1"}`,
		},
		{
			name:          "missing token",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      `{"error":"invalid_token"}`,
			wantChallenge: "Bearer",
		},
		{
			name:          "undecryptable token",
			authorization: "Bearer tampered",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      `{"error":"invalid_token","error_description":"The access token could not be decrypted","error_code":"decryption_failed"}`,
			wantChallenge: `Bearer error="invalid_token", error_description="The access token could not be decrypted"`,
		},
		{
			name:          "malformed header",
			authorization: "Basic abc",
			wantStatus:    http.StatusBadRequest,
		},
	}

	router := newRouter(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.authorization != "" {
				req.Header.Set("Authorization", tc.authorization)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantBody != "" {
				assert.JSONEq(t, tc.wantBody, rec.Body.String())
			}
			if tc.wantChallenge != "" {
				assert.Equal(t, tc.wantChallenge, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestNewMiddleware_Options(t *testing.T) {
	t.Run("custom error handler aborts the chain", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		var handled error
		mw, err := NewMiddleware(stubDecrypter{}, WithErrorHandler(func(c *gin.Context, err error) {
			handled = err
			c.JSON(http.StatusTeapot, gin.H{"rejected": true})
		}))
		require.NoError(t, err)

		reached := false
		router := gin.New()
		router.GET("/", mw, func(c *gin.Context) { reached = true })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.False(t, reached)
		assert.ErrorIs(t, handled, jwe.ErrAuthenticationFailed)
	})

	t.Run("custom context key and extractor", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		mw, err := NewMiddleware(stubDecrypter{},
			WithContextKey("token"),
			WithMiddlewareOptions(jwemiddleware.WithTokenExtractor(jwemiddleware.HeaderTokenExtractor("X-Token"))),
		)
		require.NoError(t, err)

		router := gin.New()
		router.GET("/", mw, func(c *gin.Context) {
			_, err := GetClaims(c, DefaultClaimsKey)
			assert.ErrorIs(t, err, ErrMissingClaims)
			decrypted, err := GetClaims(c, "token")
			require.NoError(t, err)
			sub, _ := decrypted.Claims.GetSubject()
			c.String(http.StatusOK, sub)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Token", validToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", rec.Body.String())
	})

	t.Run("credentials optional passes anonymous requests", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		mw, err := NewMiddleware(stubDecrypter{}, WithMiddlewareOptions(jwemiddleware.WithCredentialsOptional(true)))
		require.NoError(t, err)

		router := gin.New()
		router.GET("/", mw, func(c *gin.Context) {
			_, err := GetClaims(c, "")
			assert.ErrorIs(t, err, ErrMissingClaims)
			c.Status(http.StatusNoContent)
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := NewMiddleware(stubDecrypter{}, WithErrorHandler(nil))
		assert.ErrorContains(t, err, "error handler cannot be nil")
		_, err = NewMiddleware(stubDecrypter{}, WithContextKey(""))
		assert.ErrorContains(t, err, "context key cannot be empty")
		_, err = NewMiddleware(nil)
		assert.ErrorIs(t, err, jwemiddleware.ErrDecrypterNil)
	})
}

func TestGetClaims_WrongType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(DefaultClaimsKey, "not claims")

	_, err := GetClaims(c, DefaultClaimsKey)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}
