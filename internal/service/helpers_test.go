package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/cache"
	"github.com/Freeeeeet/timetable/internal/conflict"
	"github.com/Freeeeeet/timetable/internal/model"
	"github.com/Freeeeeet/timetable/internal/repository/memstore"
)

// fixture is a seeded in-memory directory with two sections.
type fixture struct {
	store     *memstore.Store
	schedules *ScheduleService
	conflicts *ConflictService
	columns   *TimeColumnService

	s1, s2      int64
	algebra     int64
	r101, r102  int64
	juan, maria int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	store := memstore.New()

	f := &fixture{store: store}
	f.algebra = store.AddSubject("Algebra", "MATH101")
	store.AddSubject("Physics", "PHYS101")
	f.r101 = store.AddRoom("R101", "Lecture")
	f.r102 = store.AddRoom("R102", "Lecture")
	f.juan = store.AddTeacher("Juan", "Dela Cruz", "Male")
	f.maria = store.AddTeacher("Maria", "Santos", "Female")
	f.s1 = store.AddSection("BSCS 1-A", "Regular")
	f.s2 = store.AddSection("BSIT 1-B", "Regular")

	f.conflicts = NewConflictService(store.Assignments(), conflict.Sweep{}, cache.NewMemory(), nil, logger)
	f.schedules = NewScheduleService(store.Directory(), store.Assignments(), f.conflicts, nil, logger)
	f.columns = NewTimeColumnService(store.TimeColumns(), logger)
	store.OnChange(func() { _ = f.conflicts.Invalidate(context.Background()) })
	return f
}

func session(subject, room, teacher, typ string) model.SessionInput {
	return model.SessionInput{Subject: subject, Room: room, Teacher: teacher, Type: typ}
}

// rowShape drops store-assigned ids so row sets from different replaces compare.
type rowShape struct {
	SectionID   int64
	TeacherID   int64
	RoomID      int64
	SubjectID   int64
	Day         model.Day
	Start, End  int
	SessionType string
}

func shapes(t *testing.T, rows []model.Assignment) []rowShape {
	t.Helper()
	deref := func(p *int64) int64 {
		if p == nil {
			return 0
		}
		return *p
	}
	out := make([]rowShape, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowShape{
			SectionID:   r.SectionID,
			TeacherID:   deref(r.TeacherID),
			RoomID:      deref(r.RoomID),
			SubjectID:   deref(r.SubjectID),
			Day:         r.Day,
			Start:       r.StartMinute,
			End:         r.EndMinute,
			SessionType: r.SessionType,
		})
	}
	return out
}

var errStorage = errors.New("storage unavailable")

// failingDirectory fails every lookup.
type failingDirectory struct{}

func (failingDirectory) ResolveSubjectID(context.Context, string) (*int64, error) {
	return nil, errStorage
}

func (failingDirectory) ResolveRoomID(context.Context, string) (*int64, error) {
	return nil, errStorage
}

func (failingDirectory) ResolveTeacherID(context.Context, string) (*int64, error) {
	return nil, errStorage
}

// countingScanner counts full-table reads.
type countingScanner struct {
	AssignmentScanner
	calls int
	err   error
}

func (c *countingScanner) ListAll(ctx context.Context) ([]model.Assignment, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.AssignmentScanner.ListAll(ctx)
}
