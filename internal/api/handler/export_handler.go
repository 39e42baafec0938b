package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
	contentTypePNG  = "image/png"
)

type ExportHandler struct {
	exports ExportService
	logger  *zap.Logger
}

func NewExportHandler(exports ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{exports: exports, logger: logger}
}

// ConflictsXLSX downloads the conflict report workbook.
// GET /api/v1/conflicts/export.xlsx
func (h *ExportHandler) ConflictsXLSX(c *gin.Context) {
	buf, filename, err := h.exports.ConflictReportXLSX(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	attachment(c, filename)
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

// ScheduleICS GET /api/v1/sections/:id/schedule.ics
func (h *ExportHandler) ScheduleICS(c *gin.Context) {
	id, ok := sectionID(c)
	if !ok {
		return
	}

	data, err := h.exports.SectionScheduleICS(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	attachment(c, fmt.Sprintf("section-%d.ics", id))
	c.Data(http.StatusOK, contentTypeICS, data)
}

// SchedulePNG GET /api/v1/sections/:id/schedule.png
func (h *ExportHandler) SchedulePNG(c *gin.Context) {
	id, ok := sectionID(c)
	if !ok {
		return
	}

	img, err := h.exports.SectionSchedulePNG(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Data(http.StatusOK, contentTypePNG, img)
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}
