package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	SessionRoleKey contextKey = "session_role"
)

// AuthMiddleware validates admin session tokens issued by the login
// endpoint and stores the session role in the request context.
func AuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				respondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				respondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})

			if err != nil {
				logger.Debug("Session token validation failed", zap.Error(err))
				if err == jwt.ErrTokenExpired {
					respondWithError(w, http.StatusUnauthorized, "session expired")
				} else {
					respondWithError(w, http.StatusUnauthorized, "invalid session token")
				}
				return
			}

			if !token.Valid {
				respondWithError(w, http.StatusUnauthorized, "invalid session token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				logger.Error("Failed to extract claims from session token")
				respondWithError(w, http.StatusUnauthorized, "invalid session claims")
				return
			}

			role, ok := claims["role"].(string)
			if !ok {
				logger.Error("Missing role in session claims")
				respondWithError(w, http.StatusUnauthorized, "invalid session claims")
				return
			}

			ctx := context.WithValue(r.Context(), SessionRoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionRole extracts the session role from the request context.
func GetSessionRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(SessionRoleKey).(string)
	return role, ok
}

// RequireAdmin ensures the session carries the admin role.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetSessionRole(r.Context())
			if !ok || role != "admin" {
				logger.Warn("Non-admin session attempted to access admin endpoint",
					zap.String("role", role),
				)
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
