package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer = "foyer-test"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func mintToken(t *testing.T, secret []byte, claims AdminClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func adminClaims(sub string, scopes ...string) AdminClaims {
	return AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Scopes: scopes,
	}
}

func TestAuthnMiddleware(t *testing.T) {
	t.Parallel()

	var gotAdmin string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAdmin = AdminIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := Chain(inner, AuthnMiddleware(testSecret, testIssuer))

	t.Run("valid token passes and injects subject", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, adminClaims("admin-1", "admission:read")))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "admin-1", gotAdmin)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, []byte("wrong-secret-wrong-secret-wrong!"), adminClaims("admin-1")))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		claims := adminClaims("admin-1")
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, claims))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong issuer rejected", func(t *testing.T) {
		claims := adminClaims("admin-1")
		claims.Issuer = "someone-else"
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, claims))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing subject rejected", func(t *testing.T) {
		claims := adminClaims("")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, claims))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAnyScope(t *testing.T) {
	t.Parallel()

	inner := okHandler()
	h := Chain(inner,
		AuthnMiddleware(testSecret, testIssuer),
		RequireAnyScope("admission:write"),
	)

	t.Run("scope present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, adminClaims("admin-1", "admission:write")))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("scope missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, adminClaims("admin-1", "admission:read")))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}
