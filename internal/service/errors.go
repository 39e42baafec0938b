package service

import (
	"errors"
	"strings"

	"github.com/Freeeeeet/timetable/internal/repository"
)

var (
	ErrInvalidSection     = errors.New("invalid section id")
	ErrInvalidSchedule    = errors.New("invalid schedule")
	ErrInvalidTimeColumns = errors.New("invalid time columns")

	// ErrSectionNotFound is returned when writing to a section that does not exist.
	ErrSectionNotFound = repository.ErrSectionNotFound
)

// FieldError is a problem with one input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError is returned before any write when input is rejected.
// Fields lists every problem found, not only the first.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	if len(err.Fields) == 0 {
		return err.Err.Error()
	}

	parts := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		parts = append(parts, f.Field+": "+f.Error)
	}
	return err.Err.Error() + ": " + strings.Join(parts, "; ")
}

func (err *ValidationError) Unwrap() error {
	return err.Err
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

func validateSectionID(sectionID int64) error {
	if sectionID <= 0 {
		return NewValidationError(ErrInvalidSection, FieldError{Field: "section_id", Error: "must be a positive integer"})
	}
	return nil
}
