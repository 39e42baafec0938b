package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/model"
)

type ScheduleReader interface {
	GetSectionSchedule(ctx context.Context, sectionID int64) (model.SectionSchedule, error)
}

type TimeColumnReader interface {
	GetSectionTimeColumns(ctx context.Context, sectionID int64) ([]model.TimeColumn, error)
}

type ConflictCounter interface {
	CountConflicts(ctx context.Context) (*model.ConflictReport, error)
}

type ScheduleRenderer interface {
	SectionSchedulePNG(ctx context.Context, sectionID int64) ([]byte, error)
}

// Handlers holds the dependencies of the bot commands.
type Handlers struct {
	schedules ScheduleReader
	columns   TimeColumnReader
	conflicts ConflictCounter
	renderer  ScheduleRenderer
	logger    *zap.Logger
}

func NewHandlers(
	schedules ScheduleReader,
	columns TimeColumnReader,
	conflicts ConflictCounter,
	renderer ScheduleRenderer,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		schedules: schedules,
		columns:   columns,
		conflicts: conflicts,
		renderer:  renderer,
		logger:    logger,
	}
}
