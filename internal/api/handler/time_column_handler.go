package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/api/response"
	"github.com/Freeeeeet/timetable/internal/model"
)

type ReplaceTimeColumnsRequest struct {
	Times []model.TimeColumnInput `json:"times" binding:"required"`
}

type TimeColumnHandler struct {
	columns TimeColumnService
	logger  *zap.Logger
}

func NewTimeColumnHandler(columns TimeColumnService, logger *zap.Logger) *TimeColumnHandler {
	return &TimeColumnHandler{columns: columns, logger: logger}
}

// ReplaceTimeColumns PUT /api/v1/sections/:id/time-columns
func (h *TimeColumnHandler) ReplaceTimeColumns(c *gin.Context) {
	id, ok := sectionID(c)
	if !ok {
		return
	}
	var req ReplaceTimeColumnsRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.columns.ReplaceSectionTimeColumns(c.Request.Context(), id, req.Times); err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.OK(c, "Time columns saved", nil)
}

// GetTimeColumns GET /api/v1/sections/:id/time-columns
func (h *TimeColumnHandler) GetTimeColumns(c *gin.Context) {
	id, ok := sectionID(c)
	if !ok {
		return
	}

	columns, err := h.columns.GetSectionTimeColumns(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.OK(c, "success", columns)
}
