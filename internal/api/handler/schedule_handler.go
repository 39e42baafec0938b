package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/api/response"
	"github.com/Freeeeeet/timetable/internal/model"
)

// ReplaceScheduleRequest is the body of POST /sections/:id/schedule.
type ReplaceScheduleRequest struct {
	Schedule model.WeeklySchedule `json:"schedule" binding:"required"`
}

type ScheduleHandler struct {
	schedules ScheduleService
	logger    *zap.Logger
}

func NewScheduleHandler(schedules ScheduleService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, logger: logger}
}

// ReplaceSchedule stores a section's weekly schedule.
// POST /api/v1/sections/:id/schedule
func (h *ScheduleHandler) ReplaceSchedule(c *gin.Context) {
	id, ok := sectionID(c)
	if !ok {
		return
	}
	var req ReplaceScheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.schedules.ReplaceSectionSchedule(c.Request.Context(), id, req.Schedule)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.OK(c, replaceMessage(result), result)
}

func replaceMessage(r *model.ReplaceResult) string {
	switch len(r.Skipped) {
	case 0:
		return "Schedule saved"
	case 1:
		return "Schedule saved; 1 session could not be scheduled"
	default:
		return fmt.Sprintf("Schedule saved; %d sessions could not be scheduled", len(r.Skipped))
	}
}

// GetSchedule returns day -> range -> session for a section.
// GET /api/v1/sections/:id/schedule
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	id, ok := sectionID(c)
	if !ok {
		return
	}

	schedule, err := h.schedules.GetSectionSchedule(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.OK(c, "success", schedule)
}

// ListAll returns every stored assignment row.
// GET /api/v1/schedules
func (h *ScheduleHandler) ListAll(c *gin.Context) {
	rows, err := h.schedules.ListAllAssignments(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, "success", rows)
}

// ListAllDetailed returns every row with section, subject, room and teacher data.
// GET /api/v1/schedules/details
func (h *ScheduleHandler) ListAllDetailed(c *gin.Context) {
	rows, err := h.schedules.ListAllDetailed(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, "success", rows)
}
