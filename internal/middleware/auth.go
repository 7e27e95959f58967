package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/types"
)

type AuthenticatedUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RequireAuth verifies the Authorization bearer token and stashes the
// resolved principal in the request context. Deactivated accounts are
// rejected even with a valid token.
func RequireAuth(tokens *auth.TokenManager, users *store.Store) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			abortUnauthorized(ctx, "Missing token", "Please provide an authorization token")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(ctx, "Invalid token", "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := tokens.VerifyAccess(parts[1])

		if err != nil {
			abortUnauthorized(ctx, "Invalid token", "Please provide a valid token")
			return
		}

		user, err := users.UserByID(claims.UserID)

		if err != nil || !user.IsActive {
			abortUnauthorized(ctx, "Invalid token", "Please login again")
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		})
		ctx.Next()
	}
}

func abortUnauthorized(ctx *gin.Context, errMsg, message string) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   errMsg,
		"message": message,
		"status":  http.StatusUnauthorized,
	})
}
