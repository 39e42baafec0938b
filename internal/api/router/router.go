package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/api/handler"
	"github.com/Freeeeeet/timetable/internal/api/middleware"
)

// maxBodyBytes bounds schedule and time-column submissions.
const maxBodyBytes = 1 << 20

// Setup builds the gin engine. The caller chooses the gin mode.
func Setup(h *handler.Handler, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")
	{
		sections := v1.Group("/sections/:id")
		{
			sections.POST("/schedule", h.Schedule.ReplaceSchedule)
			sections.GET("/schedule", h.Schedule.GetSchedule)
			sections.GET("/schedule.png", h.Export.SchedulePNG)
			sections.GET("/schedule.ics", h.Export.ScheduleICS)
			sections.PUT("/time-columns", h.TimeColumn.ReplaceTimeColumns)
			sections.GET("/time-columns", h.TimeColumn.GetTimeColumns)
		}

		v1.GET("/schedules", h.Schedule.ListAll)
		v1.GET("/schedules/details", h.Schedule.ListAllDetailed)

		v1.GET("/conflicts", h.Conflict.CountConflicts)
		v1.GET("/conflicts/export.xlsx", h.Export.ConflictsXLSX)
	}

	return r
}
