// middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sharehood/sharehoodback/api/auth"
	"github.com/sharehood/sharehoodback/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const UserContextKey contextKey = "user"

// AuthMiddleware verifies the bearer token and stores the claims in context.
// Requests without a valid token pass through anonymous; handlers decide
// whether identity is required.
func AuthMiddleware(manager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := manager.VerifyToken(tokenString)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUserID extracts the authenticated user id from context.
func CurrentUserID(ctx context.Context) (primitive.ObjectID, error) {
	claims, ok := ctx.Value(UserContextKey).(*auth.JWTClaims)
	if !ok {
		return primitive.NilObjectID, models.ErrUnauthenticated
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, models.ErrUnauthenticated
	}
	return id, nil
}
