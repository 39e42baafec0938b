package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/metrics"
	"github.com/Freeeeeet/timetable/internal/model"
)

// Directory resolves names to ids. A nil id with a nil error means "not found".
type Directory interface {
	ResolveSubjectID(ctx context.Context, name string) (*int64, error)
	ResolveRoomID(ctx context.Context, code string) (*int64, error)
	ResolveTeacherID(ctx context.Context, displayName string) (*int64, error)
}

// AssignmentStore persists schedule rows.
type AssignmentStore interface {
	ReplaceForSection(ctx context.Context, sectionID int64, rows []model.NewAssignment) (int, error)
	ListBySection(ctx context.Context, sectionID int64) ([]model.AssignmentDetail, error)
	ListAll(ctx context.Context) ([]model.Assignment, error)
	ListAllDetailed(ctx context.Context) ([]model.AssignmentDetail, error)
}

// Invalidator is told after every successful schedule write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type ScheduleService struct {
	directory   Directory
	assignments AssignmentStore
	invalidator Invalidator
	metrics     *metrics.Metrics
	locks       *sectionLocks
	logger      *zap.Logger
}

func NewScheduleService(
	directory Directory,
	assignments AssignmentStore,
	invalidator Invalidator,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		directory:   directory,
		assignments: assignments,
		invalidator: invalidator,
		metrics:     m,
		locks:       newSectionLocks(),
		logger:      logger,
	}
}

// plannedSession is a validated entry waiting for name resolution.
type plannedSession struct {
	rng   model.TimeRange
	input model.SessionInput
}

// ReplaceSectionSchedule validates schedule, resolves its names and swaps it
// in for every row the section had. Entries whose subject, room or teacher
// cannot be resolved are skipped and listed in the result. Nothing is written
// when validation fails or the store returns an error.
func (s *ScheduleService) ReplaceSectionSchedule(ctx context.Context, sectionID int64, schedule model.WeeklySchedule) (*model.ReplaceResult, error) {
	s.logger.Info("ReplaceSectionSchedule called",
		zap.Int64("section_id", sectionID),
		zap.Int("days", len(schedule)))

	planned, err := planSchedule(sectionID, schedule)
	if err != nil {
		s.metrics.ObserveReplace(metrics.ReplaceInvalid, 0)
		s.logger.Warn("Schedule rejected",
			zap.Int64("section_id", sectionID),
			zap.Error(err))
		return nil, err
	}

	rows, skipped, err := s.resolve(ctx, sectionID, planned)
	if err != nil {
		s.metrics.ObserveReplace(metrics.ReplaceError, 0)
		return nil, err
	}

	unlock := s.locks.Lock(sectionID)
	inserted, err := s.assignments.ReplaceForSection(ctx, sectionID, rows)
	unlock()
	if err != nil {
		s.metrics.ObserveReplace(metrics.ReplaceError, 0)
		s.logger.Error("Failed to replace section schedule",
			zap.Int64("section_id", sectionID),
			zap.Error(err))
		return nil, fmt.Errorf("replace section schedule: %w", err)
	}

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx); err != nil {
			s.logger.Warn("Failed to invalidate conflict cache", zap.Error(err))
		}
	}

	s.metrics.ObserveReplace(metrics.ReplaceOK, len(skipped))
	s.logger.Info("Section schedule replaced",
		zap.Int64("section_id", sectionID),
		zap.Int("inserted", inserted),
		zap.Int("skipped", len(skipped)))

	return &model.ReplaceResult{
		SectionID: sectionID,
		Inserted:  inserted,
		Skipped:   skipped,
	}, nil
}

// planSchedule checks every entry and returns them in canonical order:
// Monday..Sunday, then by start and end minute.
func planSchedule(sectionID int64, schedule model.WeeklySchedule) ([]plannedSession, error) {
	if err := validateSectionID(sectionID); err != nil {
		return nil, err
	}

	var (
		planned []plannedSession
		fields  []FieldError
		seen    = make(map[model.TimeRange]string)
	)

	for _, dayKey := range slices.Sorted(maps.Keys(schedule)) {
		day, err := model.ParseDay(dayKey)
		if err != nil {
			fields = append(fields, FieldError{Field: dayKey, Error: "unknown day of week"})
			continue
		}

		sessions := schedule[dayKey]
		for _, token := range slices.Sorted(maps.Keys(sessions)) {
			field := dayKey + "." + token

			rng, err := model.ParseTimeRange(day, token)
			if err != nil {
				fields = append(fields, FieldError{Field: field, Error: err.Error()})
				continue
			}

			input := sessions[token]
			if errs := validateStruct(input, field); len(errs) > 0 {
				fields = append(fields, errs...)
				continue
			}

			if prev, dup := seen[rng]; dup {
				fields = append(fields, FieldError{Field: field, Error: "same day and time as " + prev})
				continue
			}
			seen[rng] = field

			planned = append(planned, plannedSession{rng: rng, input: input})
		}
	}

	if len(fields) > 0 {
		return nil, NewValidationError(ErrInvalidSchedule, fields...)
	}

	sort.Slice(planned, func(i, j int) bool {
		a, b := planned[i].rng, planned[j].rng
		if a.Day != b.Day {
			return a.Day.Index() < b.Day.Index()
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End < b.End
	})

	return planned, nil
}

func (s *ScheduleService) resolve(ctx context.Context, sectionID int64, planned []plannedSession) ([]model.NewAssignment, []model.SkippedSession, error) {
	rows := make([]model.NewAssignment, 0, len(planned))
	skipped := []model.SkippedSession{}

	for _, p := range planned {
		subjectID, err := s.directory.ResolveSubjectID(ctx, p.input.Subject)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve subject %q: %w", p.input.Subject, err)
		}
		roomID, err := s.directory.ResolveRoomID(ctx, p.input.Room)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve room %q: %w", p.input.Room, err)
		}
		teacherID, err := s.directory.ResolveTeacherID(ctx, p.input.Teacher)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve teacher %q: %w", p.input.Teacher, err)
		}

		var missing []model.Lookup
		if subjectID == nil {
			missing = append(missing, model.LookupSubject)
		}
		if roomID == nil {
			missing = append(missing, model.LookupRoom)
		}
		if teacherID == nil {
			missing = append(missing, model.LookupTeacher)
		}

		if len(missing) > 0 {
			s.logger.Warn("Skipping session with unresolved references",
				zap.Int64("section_id", sectionID),
				zap.String("day", string(p.rng.Day)),
				zap.String("range", p.rng.Label()),
				zap.String("subject", p.input.Subject),
				zap.String("room", p.input.Room),
				zap.String("teacher", p.input.Teacher),
				zap.Any("missing", missing))

			skipped = append(skipped, model.SkippedSession{
				Day:     p.rng.Day,
				Range:   p.rng.Label(),
				Subject: p.input.Subject,
				Room:    p.input.Room,
				Teacher: p.input.Teacher,
				Missing: missing,
			})
			continue
		}

		rows = append(rows, model.NewAssignment{
			SectionID:   sectionID,
			TeacherID:   teacherID,
			RoomID:      roomID,
			SubjectID:   subjectID,
			Range:       p.rng,
			SessionType: strings.TrimSpace(p.input.Type),
		})
	}

	return rows, skipped, nil
}

// GetSectionSchedule returns the section's sessions keyed by day and
// "HH:MM-HH:MM". An unknown section yields an empty schedule.
func (s *ScheduleService) GetSectionSchedule(ctx context.Context, sectionID int64) (model.SectionSchedule, error) {
	if err := validateSectionID(sectionID); err != nil {
		return nil, err
	}

	details, err := s.assignments.ListBySection(ctx, sectionID)
	if err != nil {
		s.logger.Error("Failed to load section schedule",
			zap.Int64("section_id", sectionID),
			zap.Error(err))
		return nil, fmt.Errorf("get section schedule: %w", err)
	}

	out := make(model.SectionSchedule)
	for _, d := range details {
		byLabel, ok := out[d.Day]
		if !ok {
			byLabel = make(map[string]model.SessionDetail)
			out[d.Day] = byLabel
		}
		byLabel[d.Range().Label()] = sessionDetail(d)
	}

	return out, nil
}

// sessionDetail renders display fields, using the placeholder for anything
// whose row no longer exists.
func sessionDetail(d model.AssignmentDetail) model.SessionDetail {
	out := model.SessionDetail{
		SubjectCode: orUnresolved(d.SubjectCode),
		Subject:     orUnresolved(d.SubjectName),
		Room:        orUnresolved(d.RoomCode),
		Teacher:     model.Unresolved,
		Gender:      model.Unresolved,
		Type:        d.SessionType,
	}
	if name, ok := d.TeacherDisplay(); ok {
		out.Teacher = name
		out.Gender = orUnresolved(d.TeacherGender)
	}
	return out
}

func orUnresolved(v *string) string {
	if v == nil {
		return model.Unresolved
	}
	return *v
}

// ListAllAssignments returns every stored row.
func (s *ScheduleService) ListAllAssignments(ctx context.Context) ([]model.Assignment, error) {
	rows, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	if rows == nil {
		rows = []model.Assignment{}
	}
	return rows, nil
}

// ListAllDetailed returns every stored row joined with section, subject, room
// and teacher display data.
func (s *ScheduleService) ListAllDetailed(ctx context.Context) ([]model.AssignmentDetail, error) {
	rows, err := s.assignments.ListAllDetailed(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignment details: %w", err)
	}
	if rows == nil {
		rows = []model.AssignmentDetail{}
	}
	return rows, nil
}
