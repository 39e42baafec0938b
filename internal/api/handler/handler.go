package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/api/response"
	"github.com/Freeeeeet/timetable/internal/model"
	"github.com/Freeeeeet/timetable/internal/service"
)

type ScheduleService interface {
	ReplaceSectionSchedule(ctx context.Context, sectionID int64, schedule model.WeeklySchedule) (*model.ReplaceResult, error)
	GetSectionSchedule(ctx context.Context, sectionID int64) (model.SectionSchedule, error)
	ListAllAssignments(ctx context.Context) ([]model.Assignment, error)
	ListAllDetailed(ctx context.Context) ([]model.AssignmentDetail, error)
}

type TimeColumnService interface {
	ReplaceSectionTimeColumns(ctx context.Context, sectionID int64, columns []model.TimeColumnInput) error
	GetSectionTimeColumns(ctx context.Context, sectionID int64) ([]model.TimeColumn, error)
}

type ConflictService interface {
	CountConflicts(ctx context.Context) (*model.ConflictReport, error)
}

type ExportService interface {
	ConflictReportXLSX(ctx context.Context) (*bytes.Buffer, string, error)
	SectionScheduleICS(ctx context.Context, sectionID int64) ([]byte, error)
	SectionSchedulePNG(ctx context.Context, sectionID int64) ([]byte, error)
}

// Handler groups the HTTP handlers of every module.
type Handler struct {
	Schedule   *ScheduleHandler
	TimeColumn *TimeColumnHandler
	Conflict   *ConflictHandler
	Export     *ExportHandler
}

// Services are the dependencies of NewHandler.
type Services struct {
	Schedules   ScheduleService
	TimeColumns TimeColumnService
	Conflicts   ConflictService
	Exports     ExportService
}

func NewHandler(svc Services, logger *zap.Logger) *Handler {
	return &Handler{
		Schedule:   NewScheduleHandler(svc.Schedules, logger),
		TimeColumn: NewTimeColumnHandler(svc.TimeColumns, logger),
		Conflict:   NewConflictHandler(svc.Conflicts, logger),
		Export:     NewExportHandler(svc.Exports, logger),
	}
}

// sectionID reads the :id path parameter. On failure a 400 has already been written.
func sectionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "section id must be an integer")
		return 0, false
	}
	return id, true
}

// bindJSON decodes the body into req. On failure a 400 or 413 has already been written.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		response.BadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// writeError maps service errors onto the failure envelope.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Invalid(c, verr.Error(), verr.Fields)
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, "section not found")
	default:
		_ = c.Error(err)
		logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		response.InternalError(c)
	}
}
