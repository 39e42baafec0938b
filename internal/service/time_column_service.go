package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/model"
)

// TimeColumnStore persists display time columns.
type TimeColumnStore interface {
	ReplaceForSection(ctx context.Context, sectionID int64, columns []model.TimeColumnInput) error
	ListBySection(ctx context.Context, sectionID int64) ([]model.TimeColumn, error)
}

// TimeColumnService keeps the header labels of a section's grid. The labels
// are not parsed and play no part in conflict detection.
type TimeColumnService struct {
	columns TimeColumnStore
	logger  *zap.Logger
}

func NewTimeColumnService(columns TimeColumnStore, logger *zap.Logger) *TimeColumnService {
	return &TimeColumnService{
		columns: columns,
		logger:  logger,
	}
}

// ReplaceSectionTimeColumns swaps the section's columns for the given list, in order.
func (s *TimeColumnService) ReplaceSectionTimeColumns(ctx context.Context, sectionID int64, columns []model.TimeColumnInput) error {
	if err := validateSectionID(sectionID); err != nil {
		return err
	}

	var fields []FieldError
	for i, c := range columns {
		fields = append(fields, validateStruct(c, "times["+strconv.Itoa(i)+"]")...)
	}
	if len(fields) > 0 {
		return NewValidationError(ErrInvalidTimeColumns, fields...)
	}

	if err := s.columns.ReplaceForSection(ctx, sectionID, columns); err != nil {
		s.logger.Error("Failed to replace time columns",
			zap.Int64("section_id", sectionID),
			zap.Error(err))
		return fmt.Errorf("replace time columns: %w", err)
	}

	s.logger.Info("Time columns replaced",
		zap.Int64("section_id", sectionID),
		zap.Int("count", len(columns)))

	return nil
}

// GetSectionTimeColumns returns the columns in insertion order.
func (s *TimeColumnService) GetSectionTimeColumns(ctx context.Context, sectionID int64) ([]model.TimeColumn, error) {
	if err := validateSectionID(sectionID); err != nil {
		return nil, err
	}

	columns, err := s.columns.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("get time columns: %w", err)
	}
	if columns == nil {
		columns = []model.TimeColumn{}
	}
	return columns, nil
}
