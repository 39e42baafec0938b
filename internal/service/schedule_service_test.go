package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/model"
)

func TestReplaceAndGetSchedule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, err := f.schedules.ReplaceSectionSchedule(ctx, f.s1, model.WeeklySchedule{
		"Monday": {"07:00-09:00": session("Algebra", "R101", "Dela Cruz, Juan", "Lecture")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Empty(t, result.Skipped)

	got, err := f.schedules.GetSectionSchedule(ctx, f.s1)
	require.NoError(t, err)
	assert.Equal(t, model.SectionSchedule{
		model.Monday: {
			"07:00-09:00": {
				SubjectCode: "MATH101",
				Subject:     "Algebra",
				Room:        "R101",
				Teacher:     "Dela Cruz, Juan",
				Gender:      "Male",
				Type:        "Lecture",
			},
		},
	}, got)
}

func TestReplaceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	schedule := model.WeeklySchedule{
		"Tuesday": {
			"13:00-14:30": session("Physics", "R102", "Santos, Maria", "Lab"),
			"08:00-09:00": session("Algebra", "R101", "Dela Cruz, Juan", "Lecture"),
		},
		"mon": {"07:00-09:00": session("Algebra", "R101", "Dela Cruz, Juan", "Lecture")},
	}

	_, err := f.schedules.ReplaceSectionSchedule(ctx, f.s1, schedule)
	require.NoError(t, err)
	once, err := f.schedules.ListAllAssignments(ctx)
	require.NoError(t, err)

	_, err = f.schedules.ReplaceSectionSchedule(ctx, f.s1, schedule)
	require.NoError(t, err)
	twice, err := f.schedules.ListAllAssignments(ctx)
	require.NoError(t, err)

	require.Len(t, once, 3)
	assert.Equal(t, shapes(t, once), shapes(t, twice))

	// Canonical order: Monday first, then by start time.
	assert.Equal(t, model.Monday, once[0].Day)
	assert.Equal(t, 8*60, once[1].StartMinute)
	assert.Equal(t, 13*60, once[2].StartMinute)
}

func TestReplaceLeavesOtherSectionsUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.schedules.ReplaceSectionSchedule(ctx, f.s2, model.WeeklySchedule{
		"Wednesday": {"10:00-11:00": session("Physics", "R102", "Santos, Maria", "Lecture")},
	})
	require.NoError(t, err)
	before, err := f.schedules.GetSectionSchedule(ctx, f.s2)
	require.NoError(t, err)

	_, err = f.schedules.ReplaceSectionSchedule(ctx, f.s1, model.WeeklySchedule{
		"Wednesday": {"10:00-11:00": session("Algebra", "R101", "Dela Cruz, Juan", "Lecture")},
	})
	require.NoError(t, err)
	_, err = f.schedules.ReplaceSectionSchedule(ctx, f.s1, model.WeeklySchedule{})
	require.NoError(t, err)

	after, err := f.schedules.GetSectionSchedule(ctx, f.s2)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	s1, err := f.schedules.GetSectionSchedule(ctx, f.s1)
	require.NoError(t, err)
	assert.Empty(t, s1)
}

func TestReplaceSkipsUnresolvedEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, err := f.schedules.ReplaceSectionSchedule(ctx, f.s1, model.WeeklySchedule{
		"Monday": {
			"07:00-09:00": session("Algebra", "R101", "Dela Cruz, Juan", "Lecture"),
			"09:00-10:00": session("Algebra", "R999", "Dela Cruz, Juan", "Lecture"),
		},
		"Friday": {
			"13:00-14:00": session("Chemistry", "R101", "Nobody, No", "Lab"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	require.Len(t, result.Skipped, 2)

	assert.Equal(t, model.SkippedSession{
		Day:     model.Monday,
		Range:   "09:00-10:00",
		Subject: "Algebra",
		Room:    "R999",
		Teacher: "Dela Cruz, Juan",
		Missing: []model.Lookup{model.LookupRoom},
	}, result.Skipped[0])
	assert.Equal(t, []model.Lookup{model.LookupSubject, model.LookupTeacher}, result.Skipped[1].Missing)

	got, err := f.schedules.GetSectionSchedule(ctx, f.s1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Sessions())
	assert.Contains(t, got[model.Monday], "07:00-09:00")
}

func TestReplaceRejectsInvalidInput(t *testing.T) {
	valid := session("Algebra", "R101", "Dela Cruz, Juan", "Lecture")

	tests := []struct {
		name      string
		section   int64
		schedule  model.WeeklySchedule
		wantField string
	}{
		{
			name:      "unknown day",
			schedule:  model.WeeklySchedule{"Funday": {"07:00-09:00": valid}},
			wantField: "Funday",
		},
		{
			name:      "malformed range",
			schedule:  model.WeeklySchedule{"Monday": {"7am-9am": valid}},
			wantField: "Monday.7am-9am",
		},
		{
			name:      "start after end",
			schedule:  model.WeeklySchedule{"Monday": {"10:00-09:00": valid}},
			wantField: "Monday.10:00-09:00",
		},
		{
			name:      "zero length",
			schedule:  model.WeeklySchedule{"Monday": {"09:00-09:00": valid}},
			wantField: "Monday.09:00-09:00",
		},
		{
			name:      "minute out of range",
			schedule:  model.WeeklySchedule{"Monday": {"23:00-24:30": valid}},
			wantField: "Monday.23:00-24:30",
		},
		{
			name:      "blank room",
			schedule:  model.WeeklySchedule{"Monday": {"07:00-09:00": session("Algebra", "  ", "Dela Cruz, Juan", "")}},
			wantField: "Monday.07:00-09:00.room",
		},
		{
			name: "same slot twice",
			schedule: model.WeeklySchedule{
				"Monday": {"07:00-09:00": valid},
				"mon":    {"7:00-09:00": valid},
			},
			wantField: "mon.7:00-09:00",
		},
		{
			name:      "non-positive section",
			section:   -1,
			schedule:  model.WeeklySchedule{},
			wantField: "section_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			_, err := f.schedules.ReplaceSectionSchedule(ctx, f.s1, model.WeeklySchedule{
				"Friday": {"08:00-09:00": valid},
			})
			require.NoError(t, err)
			before, err := f.schedules.ListAllAssignments(ctx)
			require.NoError(t, err)

			section := f.s1
			if tt.section != 0 {
				section = tt.section
			}
			_, err = f.schedules.ReplaceSectionSchedule(ctx, section, tt.schedule)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, IsValidation(err))
			fields := make([]string, 0, len(verr.Fields))
			for _, fe := range verr.Fields {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.wantField)

			after, err := f.schedules.ListAllAssignments(ctx)
			require.NoError(t, err)
			assert.Equal(t, before, after, "rejected input must not write")
		})
	}
}

func TestReplaceReportsEveryProblem(t *testing.T) {
	f := newFixture(t)
	_, err := f.schedules.ReplaceSectionSchedule(context.Background(), f.s1, model.WeeklySchedule{
		"Monday":  {"09:00-08:00": session("Algebra", "R101", "Dela Cruz, Juan", "")},
		"Tuesday": {"08:00-09:00": session("", "", "", "")},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrInvalidSchedule)
	assert.Len(t, verr.Fields, 4)
	assert.Contains(t, err.Error(), "Tuesday.08:00-09:00.subject")
}

func TestReplaceStorageFailureKeepsPreviousSchedule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.schedules.ReplaceSectionSchedule(ctx, f.s1, model.WeeklySchedule{
		"Monday": {"07:00-09:00": session("Algebra", "R101", "Dela Cruz, Juan", "Lecture")},
	})
	require.NoError(t, err)
	before, err := f.schedules.GetSectionSchedule(ctx, f.s1)
	require.NoError(t, err)

	calls := 0
	f.store.SetInsertHook(func(model.NewAssignment) error {
		calls++
		if calls == 2 {
			return errStorage
		}
		return nil
	})

	_, err = f.schedules.ReplaceSectionSchedule(ctx, f.s1, model.WeeklySchedule{
		"Tuesday":  {"07:00-09:00": session("Algebra", "R101", "Dela Cruz, Juan", "Lecture")},
		"Thursday": {"07:00-09:00": session("Algebra", "R101", "Dela Cruz, Juan", "Lecture")},
	})
	require.ErrorIs(t, err, errStorage)
	assert.False(t, IsValidation(err))

	after, err := f.schedules.GetSectionSchedule(ctx, f.s1)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReplaceUnknownSection(t *testing.T) {
	f := newFixture(t)
	_, err := f.schedules.ReplaceSectionSchedule(context.Background(), 9999, model.WeeklySchedule{
		"Monday": {"07:00-09:00": session("Algebra", "R101", "Dela Cruz, Juan", "Lecture")},
	})
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestReplaceDirectoryFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewScheduleService(failingDirectory{}, f.store.Assignments(), nil, nil, zap.NewNop())

	_, err := svc.ReplaceSectionSchedule(ctx, f.s1, model.WeeklySchedule{
		"Monday": {"07:00-09:00": session("Algebra", "R101", "Dela Cruz, Juan", "Lecture")},
	})
	require.ErrorIs(t, err, errStorage)

	rows, err := svc.ListAllAssignments(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGetScheduleShowsUnresolvedReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.schedules.ReplaceSectionSchedule(ctx, f.s1, model.WeeklySchedule{
		"Monday": {"07:00-09:00": session("Algebra", "R101", "Dela Cruz, Juan", "Lecture")},
	})
	require.NoError(t, err)

	f.store.DeleteRoom(f.r101)
	f.store.DeleteTeacher(f.juan)

	got, err := f.schedules.GetSectionSchedule(ctx, f.s1)
	require.NoError(t, err)
	detail := got[model.Monday]["07:00-09:00"]
	assert.Equal(t, "Algebra", detail.Subject)
	assert.Equal(t, model.Unresolved, detail.Room)
	assert.Equal(t, model.Unresolved, detail.Teacher)
	assert.Equal(t, model.Unresolved, detail.Gender)
}

func TestGetScheduleUnknownSectionIsEmpty(t *testing.T) {
	f := newFixture(t)
	got, err := f.schedules.GetSectionSchedule(context.Background(), 424242)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = f.schedules.GetSectionSchedule(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidSection)
}

func TestSectionDeletionCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.schedules.ReplaceSectionSchedule(ctx, f.s1, model.WeeklySchedule{
		"Monday": {"07:00-09:00": session("Algebra", "R101", "Dela Cruz, Juan", "Lecture")},
	})
	require.NoError(t, err)
	_, err = f.schedules.ReplaceSectionSchedule(ctx, f.s2, model.WeeklySchedule{
		"Monday": {"07:00-09:00": session("Algebra", "R101", "Santos, Maria", "Lecture")},
	})
	require.NoError(t, err)

	report, err := f.conflicts.CountConflicts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.ConflictCount)

	f.store.DeleteSection(f.s1)

	report, err = f.conflicts.CountConflicts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.ConflictCount)
	assert.Equal(t, 1, report.RowsScanned)

	got, err := f.schedules.GetSectionSchedule(ctx, f.s1)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = f.schedules.ReplaceSectionSchedule(ctx, f.s1, model.WeeklySchedule{})
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestConcurrentReplaceSameSection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Writer i submits i+1 sessions tagged with its number.
			sessions := make(map[string]model.SessionInput)
			for j := 0; j <= i; j++ {
				token := fmt.Sprintf("%s-%s", model.FormatClock(j*60), model.FormatClock(j*60+30))
				sessions[token] = session("Algebra", "R101", "Dela Cruz, Juan", fmt.Sprintf("writer-%d", i))
			}
			_, err := f.schedules.ReplaceSectionSchedule(ctx, f.s1, model.WeeklySchedule{"Monday": sessions})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	rows, err := f.schedules.ListAllAssignments(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	tag := rows[0].SessionType
	var writer int
	_, err = fmt.Sscanf(tag, "writer-%d", &writer)
	require.NoError(t, err)
	assert.Len(t, rows, writer+1, "exactly one writer's rows must survive")
	for _, r := range rows {
		assert.Equal(t, tag, r.SessionType)
	}
	assert.Zero(t, f.schedules.locks.size())
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError(ErrInvalidSchedule,
		FieldError{Field: "Monday.x", Error: "bad"},
		FieldError{Field: "Tuesday.y", Error: "worse"},
	)
	assert.Equal(t, "invalid schedule: Monday.x: bad; Tuesday.y: worse", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidSchedule))
}
