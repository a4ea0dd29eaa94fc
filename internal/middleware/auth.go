package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pairhub/signalhub/internal/auth"
	"github.com/pairhub/signalhub/internal/models"
	"github.com/pairhub/signalhub/internal/repository"
)

// ContextKeyUser is where the resolved User is stashed in gin.Context.
const ContextKeyUser = "user"

// Auth returns a Gin middleware that validates a hub bearer token and
// resolves it to a User via the Persistence Adapter (spec §4.3 step 1).
//
// The token is read from the "Authorization: Bearer <token>" header, or
// failing that a "token" query parameter — a browser WebSocket client can't
// set arbitrary headers on the upgrade request, so the query parameter is
// the only way it can carry a bearer token.
func Auth(secret string, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing bearer token",
			})
			return
		}

		claims, err := auth.ParseBearerToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		user, err := users.GetByEmail(c.Request.Context(), claims.Email)
		if err != nil || user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unknown user",
			})
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

func extractToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1], true
		}
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}

// GetUser returns the resolved User attached by Auth, or nil if the request
// never passed through it.
func GetUser(c *gin.Context) *models.User {
	val, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	user, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return user
}
