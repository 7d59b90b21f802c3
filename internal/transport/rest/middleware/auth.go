package middleware

import (
	"context"
	"net/http"
	"strings"

	"createform/internal/model"
)

type contextKey string

const (
	OwnerIDKey contextKey = "ownerId"
)

// TokenValidator validates owner tokens (implemented by service.AuthService)
type TokenValidator interface {
	ValidateOwnerToken(token string) (*model.OwnerClaims, error)
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	tokens TokenValidator
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireOwner validates the owner JWT from the Authorization header
func (m *AuthMiddleware) RequireOwner(next http.Handler) http.Handler {
	return m.requireOwner(next, false)
}

// RequireOwnerStream also accepts the token query param, for WebSocket clients that cannot set headers
func (m *AuthMiddleware) RequireOwnerStream(next http.Handler) http.Handler {
	return m.requireOwner(next, true)
}

func (m *AuthMiddleware) requireOwner(next http.Handler, allowQuery bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token := extractBearerToken(r)
		if token == "" && allowQuery {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.tokens.ValidateOwnerToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), OwnerIDKey, claims.OwnerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalOwner attaches the owner id when a valid bearer token is present and never rejects
func (m *AuthMiddleware) OptionalOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := extractBearerToken(r); token != "" {
			if claims, err := m.tokens.ValidateOwnerToken(token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), OwnerIDKey, claims.OwnerID))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// GetOwnerID extracts owner ID from context
func GetOwnerID(ctx context.Context) string {
	if v := ctx.Value(OwnerIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// WithOwnerID returns a context carrying the owner id
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, OwnerIDKey, ownerID)
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
