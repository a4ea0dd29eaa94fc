package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairhub/signalhub/internal/middleware"
)

// SFUHandler hands out the SFU's public URL so a client knows which server
// to open a LiveKit connection against.
type SFUHandler struct {
	serverURL string
}

func NewSFUHandler(serverURL string) *SFUHandler {
	return &SFUHandler{serverURL: serverURL}
}

// ServerURL handles GET /api/auth/livekit/server-url.
func (h *SFUHandler) ServerURL(c *gin.Context) {
	if middleware.GetUser(c) == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": h.serverURL})
}
