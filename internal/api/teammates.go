package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pairhub/signalhub/internal/middleware"
	"github.com/pairhub/signalhub/internal/models"
	"github.com/pairhub/signalhub/internal/presence"
	"github.com/pairhub/signalhub/internal/repository"
)

// TeammatesHandler answers "who's on my team, and who's online right now" —
// the list backs the caller-picker UI, the presence lookup is what the
// original implementation did against Redis's PubSubChannels directly.
type TeammatesHandler struct {
	users    repository.UserRepository
	presence *presence.Registry
	logger   *zap.Logger
}

func NewTeammatesHandler(users repository.UserRepository, reg *presence.Registry, logger *zap.Logger) *TeammatesHandler {
	return &TeammatesHandler{users: users, presence: reg, logger: logger}
}

// List handles GET /api/auth/teammates.
func (h *TeammatesHandler) List(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	teammates, err := h.users.ListTeammates(c.Request.Context(), user.TeamID, user.ID)
	if err != nil {
		h.logger.Error("list teammates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list teammates"})
		return
	}

	annotated := make([]models.UserWithActivity, 0, len(teammates))
	for _, mate := range teammates {
		online, err := h.presence.IsPresent(c.Request.Context(), mate.ID.String())
		if err != nil {
			h.logger.Warn("presence check failed", zap.String("user_id", mate.ID.String()), zap.Error(err))
			online = false
		}
		annotated = append(annotated, models.UserWithActivity{User: mate, IsActive: online})
	}

	c.JSON(http.StatusOK, annotated)
}
