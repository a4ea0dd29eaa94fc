package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pairhub/signalhub/internal/middleware"
	"github.com/pairhub/signalhub/internal/signaling"
)

// upgrader is shared process-wide — gorilla's Upgrader holds no
// per-connection state, only buffer sizes, so one instance is safe to reuse
// across every request. CheckOrigin is permissive: this hub is consumed by
// the desktop app's embedded webview and the meet-redirect flow, neither of
// which sends a browser Origin the default same-origin check would accept.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebSocketHandler upgrades an authenticated request to a Session and runs
// it until the connection closes, grounded on
// original_source/backend/internal/handlers/websocketHandlers.go's
// connection lifecycle.
type WebSocketHandler struct {
	router *signaling.Router
	logger *zap.Logger
}

func NewWebSocketHandler(router *signaling.Router, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{router: router, logger: logger}
}

// Upgrade handles GET /api/auth/websocket.
func (h *WebSocketHandler) Upgrade(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	session := signaling.NewSession(conn, *user, h.router, h.logger)

	greeting, err := signaling.EncodeSuccess("subscribed")
	if err == nil {
		conn.WriteMessage(websocket.TextMessage, greeting)
	}

	if err := session.Run(c.Request.Context()); err != nil {
		h.logger.Debug("session ended", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}
