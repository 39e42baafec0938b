package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/api/response"
)

type ConflictHandler struct {
	conflicts ConflictService
	logger    *zap.Logger
}

func NewConflictHandler(conflicts ConflictService, logger *zap.Logger) *ConflictHandler {
	return &ConflictHandler{conflicts: conflicts, logger: logger}
}

// CountConflicts GET /api/v1/conflicts
func (h *ConflictHandler) CountConflicts(c *gin.Context) {
	report, err := h.conflicts.CountConflicts(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, "success", report)
}
