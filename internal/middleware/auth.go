package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fraudsight/transaction-service/internal/config"
	"github.com/fraudsight/transaction-service/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// Claims is the JWT payload issued at login.
type Claims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the bearer token and attaches the caller identity
// to the request context. Requests without a valid identity never reach a
// handler.
func AuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized: no token provided", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				http.Error(w, "Unauthorized: invalid token format", http.StatusUnauthorized)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(cfg.JWTSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			ident := models.Identity{ID: claims.ID, Email: claims.Email, Role: claims.Role}
			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom extracts the authenticated caller from the request context.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(models.Identity)
	return ident, ok
}

// WithIdentity returns a context carrying the given identity. Used by tests
// and internal invocations that bypass the HTTP layer.
func WithIdentity(ctx context.Context, ident models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}
