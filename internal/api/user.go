package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pairhub/signalhub/internal/middleware"
)

// UserHandler serves the caller's own identity. The hub never writes user
// data — signup/login are external collaborators (spec.md §1) — so this is
// read-only.
type UserHandler struct {
	logger *zap.Logger
}

func NewUserHandler(logger *zap.Logger) *UserHandler {
	return &UserHandler{logger: logger}
}

// Me handles GET /api/auth/me: returns the authenticated user's profile.
// middleware.Auth has already resolved the bearer token to a User by the
// time this handler runs, so there's no repository call left to make here.
func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	c.JSON(http.StatusOK, user)
}
