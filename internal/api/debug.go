package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pairhub/signalhub/internal/grant"
	"github.com/pairhub/signalhub/internal/repository"
)

// DebugHandler backs the ENABLE_DEBUG_ENDPOINTS-gated debug surface, mirroring
// the original implementation's GenerateDebugCallToken: mint a call-shaped
// media grant for a user by email without going through the full
// call_request/call_accept handshake, for manually exercising the SFU
// integration. Never registered unless cfg.Debug is set.
type DebugHandler struct {
	issuer *grant.Issuer
	users  repository.UserRepository
	logger *zap.Logger
}

func NewDebugHandler(issuer *grant.Issuer, users repository.UserRepository, logger *zap.Logger) *DebugHandler {
	return &DebugHandler{issuer: issuer, users: users, logger: logger}
}

type debugCallToken struct {
	AudioToken  string `json:"audioToken"`
	VideoToken  string `json:"videoToken"`
	Participant string `json:"participant"`
}

// CallToken handles GET /debug/call-token?email=<email>: mints a call grant
// for the named user in a throwaway room, bypassing the signaling protocol
// entirely.
func (h *DebugHandler) CallToken(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email parameter"})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		h.logger.Error("look up debug user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	video, audio, err := h.issuer.IssueCallTokens(c.Request.Context(), "debug-room", user.ID.String(), user.DisplayName)
	if err != nil {
		h.logger.Error("issue debug call tokens", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, debugCallToken{
		AudioToken:  audio,
		VideoToken:  video,
		Participant: user.ID.String(),
	})
}
