package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pairhub/signalhub/internal/middleware"
	"github.com/pairhub/signalhub/internal/repository"
)

// CallHistoryHandler backs the supplemented GET /api/auth/calls/history
// route (SPEC_FULL.md §3): a metadata-only, cursor-paginated audit trail,
// the equivalent of the teacher's message history endpoint applied to call
// records instead of chat messages.
type CallHistoryHandler struct {
	calls  repository.CallRecordRepository
	logger *zap.Logger
}

func NewCallHistoryHandler(calls repository.CallRecordRepository, logger *zap.Logger) *CallHistoryHandler {
	return &CallHistoryHandler{calls: calls, logger: logger}
}

const defaultHistoryPageSize = 50

// List handles GET /api/auth/calls/history?before=<id>&limit=<n>.
func (h *CallHistoryHandler) List(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	before, _ := strconv.ParseInt(c.Query("before"), 10, 64)
	limit := defaultHistoryPageSize
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}

	records, err := h.calls.ListByTeam(c.Request.Context(), user.TeamID, before, limit)
	if err != nil {
		h.logger.Error("list call history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list call history"})
		return
	}

	c.JSON(http.StatusOK, records)
}
