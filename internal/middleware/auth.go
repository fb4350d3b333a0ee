package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/persona-fest/server-go/internal/errors"
	"github.com/persona-fest/server-go/internal/service"
	"github.com/persona-fest/server-go/internal/token"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

// GetClaims returns the verified token claims set by the auth middleware,
// or nil when the request was not authenticated.
func GetClaims(ctx context.Context) *token.Claims {
	if claims, ok := ctx.Value(ClaimsContextKey).(*token.Claims); ok {
		return claims
	}
	return nil
}

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Handler rejects requests without a valid bearer token and stores the
// decoded claims in the request context.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, err := token.FromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, apperrors.Unauthorized("missing authentication token"))
			return
		}

		claims, err := m.auth.Authorize(tok)
		if err != nil {
			log.Warn().Str("path", r.URL.Path).Msg("auth middleware: invalid token attempt")
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates admin-only routes. It must run after Handler. The
// privilege decision lives in the auth service, not here.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		if claims == nil {
			writeError(w, apperrors.Unauthorized("missing authentication token"))
			return
		}
		if !m.auth.IsPrivileged(claims) {
			log.Warn().Str("email", claims.Email).Str("path", r.URL.Path).Msg("non-admin access to admin route denied")
			writeError(w, apperrors.Forbidden("admin privileges required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
