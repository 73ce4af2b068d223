package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openfoyer/foyer/pkg/slogx"
)

// AdminClaims are the claims the surrounding application places in admin
// bearer tokens. The admission service only verifies these tokens; it never
// issues them.
type AdminClaims struct {
	jwt.RegisteredClaims

	// Scopes granted to the administrator, e.g. "admission:read admission:write".
	Scopes []string `json:"scopes,omitempty"`
}

// AuthnMiddleware verifies the Authorization bearer token against the shared
// HS256 secret and injects the admin subject and scopes into the request
// context. Requests without a valid token are rejected; there is no fallback
// identity.
func AuthnMiddleware(secret []byte, issuer string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims := &AdminClaims{}
			_, err := jwt.ParseWithClaims(raw, claims,
				func(t *jwt.Token) (any, error) { return secret, nil },
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
				jwt.WithIssuer(issuer),
				jwt.WithExpirationRequired(),
			)
			if err != nil {
				log.Warn("admin token verification failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			if claims.Subject == "" {
				writeBearerError(w, "token has no subject")
				return
			}

			ctx = context.WithValue(ctx, CtxKeyAdminID, claims.Subject)
			ctx = context.WithValue(ctx, CtxKeyScopes, claims.Scopes)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
