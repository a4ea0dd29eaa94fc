package api

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pairhub/signalhub/internal/auth"
	"github.com/pairhub/signalhub/internal/grant"
	"github.com/pairhub/signalhub/internal/middleware"
	"github.com/pairhub/signalhub/internal/models"
	"github.com/pairhub/signalhub/internal/repository"
)

// WatercoolerHandler serves the always-on team room: joining it directly
// (authenticated), generating a time-boxed invite link for a guest
// (authenticated), and redeeming that link (anonymous). Grounded on
// original_source/backend/internal/handlers/handlers.go's Watercooler /
// WatercoolerAnonymous / WatercoolerMeetRedirect trio.
type WatercoolerHandler struct {
	issuer        *grant.Issuer
	teams         repository.TeamRepository
	sessionSecret string
	livekitURL    string
	logger        *zap.Logger
}

func NewWatercoolerHandler(issuer *grant.Issuer, teams repository.TeamRepository, sessionSecret, livekitURL string, logger *zap.Logger) *WatercoolerHandler {
	return &WatercoolerHandler{issuer: issuer, teams: teams, sessionSecret: sessionSecret, livekitURL: livekitURL, logger: logger}
}

type watercoolerTokens struct {
	AudioToken  string `json:"audioToken"`
	VideoToken  string `json:"videoToken"`
	Participant string `json:"participant"`
}

// Join handles GET /api/auth/watercooler.
func (h *WatercoolerHandler) Join(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	room := (models.Team{ID: user.TeamID}).WatercoolerRoom()
	video, audio, err := h.issuer.IssueWatercoolerTokens(c.Request.Context(), room, user.ID.String(), user.DisplayName)
	if err != nil {
		h.logger.Error("issue watercooler tokens", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate tokens"})
		return
	}

	c.JSON(http.StatusOK, watercoolerTokens{
		AudioToken:  audio,
		VideoToken:  video,
		Participant: user.ID.String(),
	})
}

// Anonymous handles GET /api/auth/watercooler/anonymous: mints a 10-minute
// team-scoped token and hands back the redirect URL an invited guest visits
// without ever authenticating.
func (h *WatercoolerHandler) Anonymous(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	token, err := auth.GenerateAnonymousToken(user.TeamID, h.sessionSecret)
	if err != nil {
		h.logger.Error("generate anonymous token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"redirect_url": fmt.Sprintf("/api/watercooler/meet-redirect?token=%s", token),
	})
}

// MeetRedirect handles GET /api/watercooler/meet-redirect: the only
// unauthenticated endpoint in the control surface, gated entirely by the
// anonymous token's signature, expiry, and purpose.
func (h *WatercoolerHandler) MeetRedirect(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token parameter"})
		return
	}

	claims, err := auth.ParseAnonymousToken(tokenString, h.sessionSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	team, err := h.teams.GetByID(c.Request.Context(), claims.TeamID)
	if err != nil {
		h.logger.Error("look up team for anonymous redirect", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	if team == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "team no longer exists"})
		return
	}

	room := team.WatercoolerRoom()
	anonymousID := "anonymous-" + randomSuffix()

	livekitToken, err := h.issuer.IssueMeetRedirectToken(c.Request.Context(), room, anonymousID)
	if err != nil {
		h.logger.Error("issue meet-redirect token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("https://meet.livekit.io/custom?liveKitUrl=%s&token=%s", h.livekitURL, livekitToken))
}

func randomSuffix() string {
	buf := make([]byte, 2)
	if _, err := rand.Read(buf); err != nil {
		return "0000"
	}
	return hex.EncodeToString(buf)
}
