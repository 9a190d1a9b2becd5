package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mentorhood/mentorhood/internal/http/response"
	"github.com/mentorhood/mentorhood/pkg/auth"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

type ctxKey string

const CtxClaims ctxKey = "claims"

func bearer(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
}

func withClaims(r *http.Request, claims *auth.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), CtxClaims, claims)
	ctx = context.WithValue(ctx, logger.UserIDKey, claims.Sub)
	return r.WithContext(ctx)
}

// RequireJWT rejects requests without a valid bearer token. A non-empty
// role restricts access to that role (admins always pass).
func RequireJWT(secret, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearer(r)
			if raw == "" {
				response.Unauthorized(w, "missing or invalid authorization header")
				return
			}
			claims, err := auth.Parse(raw, secret)
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, "invalid authorization token", response.CodeInvalidToken)
				return
			}
			if role != "" && claims.Role != role && claims.Role != "admin" {
				response.Forbidden(w, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, withClaims(r, claims))
		})
	}
}

// OptionalJWT attaches claims when a valid token is present and otherwise
// lets the request through untouched.
func OptionalJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := bearer(r); raw != "" {
				if claims, err := auth.Parse(raw, secret); err == nil {
					r = withClaims(r, claims)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func Claims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(CtxClaims).(*auth.Claims)
	return claims
}
