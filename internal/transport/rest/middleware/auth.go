package middleware

import (
	"context"
	"net/http"
	"strings"

	"paperbuilder/internal/service"
)

type contextKey string

const (
	AuthorIDKey contextKey = "authorId"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireAuthor validates the author JWT from the Authorization header
func (m *AuthMiddleware) RequireAuthor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateAuthorToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), AuthorIDKey, claims.AuthorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAuthorID extracts author ID from context
func GetAuthorID(ctx context.Context) string {
	if v := ctx.Value(AuthorIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// WithAuthorID returns a context carrying authorID, as RequireAuthor would
func WithAuthorID(ctx context.Context, authorID string) context.Context {
	return context.WithValue(ctx, AuthorIDKey, authorID)
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
