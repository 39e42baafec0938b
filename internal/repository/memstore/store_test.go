package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/timetable/internal/model"
	"github.com/Freeeeeet/timetable/internal/repository"
)

func newRow(t *testing.T, section int64, day model.Day, token string, room int64) model.NewAssignment {
	t.Helper()
	r, err := model.ParseTimeRange(day, token)
	require.NoError(t, err)
	return model.NewAssignment{SectionID: section, RoomID: model.Int64Ptr(room), Range: r, SessionType: "Lecture"}
}

func TestDirectoryResolve(t *testing.T) {
	ctx := context.Background()
	s := New()
	algebra := s.AddSubject("Algebra", "MATH101")
	room := s.AddRoom("R101", "Lecture Hall")
	teacher := s.AddTeacher("Juan", "Dela Cruz", "Male")
	dir := s.Directory()

	id, err := dir.ResolveSubjectID(ctx, "Algebra")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, algebra, *id)

	id, err = dir.ResolveRoomID(ctx, " R101 ")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, room, *id)

	id, err = dir.ResolveTeacherID(ctx, "Dela Cruz, Juan")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, teacher, *id)

	id, err = dir.ResolveTeacherID(ctx, "Juan Dela Cruz")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = dir.ResolveRoomID(ctx, "R999")
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestReplaceForSectionKeepsOtherSections(t *testing.T) {
	ctx := context.Background()
	s := New()
	room := s.AddRoom("R101", "")
	x := s.AddSection("BSCS", "Regular")
	y := s.AddSection("BSIT", "Regular")
	store := s.Assignments()

	_, err := store.ReplaceForSection(ctx, y, []model.NewAssignment{newRow(t, y, model.Tuesday, "09:00-10:00", room)})
	require.NoError(t, err)
	before, err := store.ListBySection(ctx, y)
	require.NoError(t, err)

	n, err := store.ReplaceForSection(ctx, x, []model.NewAssignment{
		newRow(t, x, model.Monday, "07:00-09:00", room),
		newRow(t, x, model.Monday, "09:00-10:00", room),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.ReplaceForSection(ctx, x, []model.NewAssignment{newRow(t, x, model.Friday, "13:00-14:00", room)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := store.ListBySection(ctx, x)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.Friday, rows[0].Day)

	after, err := store.ListBySection(ctx, y)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReplaceForSectionUnknownSection(t *testing.T) {
	s := New()
	_, err := s.Assignments().ReplaceForSection(context.Background(), 42, nil)
	assert.ErrorIs(t, err, repository.ErrSectionNotFound)

	err = s.TimeColumns().ReplaceForSection(context.Background(), 42, nil)
	assert.ErrorIs(t, err, repository.ErrSectionNotFound)
}

func TestReplaceForSectionHookFailureKeepsPreviousRows(t *testing.T) {
	ctx := context.Background()
	s := New()
	room := s.AddRoom("R101", "")
	sec := s.AddSection("BSCS", "")
	store := s.Assignments()

	_, err := store.ReplaceForSection(ctx, sec, []model.NewAssignment{newRow(t, sec, model.Monday, "07:00-09:00", room)})
	require.NoError(t, err)
	before, err := store.ListAll(ctx)
	require.NoError(t, err)

	boom := errors.New("disk full")
	calls := 0
	s.SetInsertHook(func(model.NewAssignment) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})

	_, err = store.ReplaceForSection(ctx, sec, []model.NewAssignment{
		newRow(t, sec, model.Tuesday, "07:00-09:00", room),
		newRow(t, sec, model.Wednesday, "07:00-09:00", room),
	})
	assert.ErrorIs(t, err, boom)

	after, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	room := s.AddRoom("R101", "")
	sec := s.AddSection("BSCS", "")
	other := s.AddSection("BSIT", "")

	_, err := s.Assignments().ReplaceForSection(ctx, sec, []model.NewAssignment{newRow(t, sec, model.Monday, "07:00-09:00", room)})
	require.NoError(t, err)
	_, err = s.Assignments().ReplaceForSection(ctx, other, []model.NewAssignment{newRow(t, other, model.Monday, "10:00-11:00", room)})
	require.NoError(t, err)
	require.NoError(t, s.TimeColumns().ReplaceForSection(ctx, sec, []model.TimeColumnInput{{Start: "7:00", End: "8:00"}}))

	s.DeleteRoom(room)
	rows, err := s.Assignments().ListBySection(ctx, other)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].RoomID)
	assert.Nil(t, rows[0].RoomCode)

	s.DeleteSection(sec)
	all, err := s.Assignments().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, other, all[0].SectionID)

	cols, err := s.TimeColumns().ListBySection(ctx, sec)
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestDeleteNotifiesOnChange(t *testing.T) {
	s := New()
	room := s.AddRoom("R101", "")
	teacher := s.AddTeacher("Juan", "Dela Cruz", "Male")
	subject := s.AddSubject("Algebra", "MATH101")
	sec := s.AddSection("BSCS", "")

	calls := 0
	s.OnChange(func() {
		calls++
		// The hook may read the store.
		_, _ = s.Assignments().ListAll(context.Background())
	})

	s.DeleteRoom(room)
	s.DeleteTeacher(teacher)
	s.DeleteSubject(subject)
	s.DeleteSection(sec)
	assert.Equal(t, 4, calls)
}

func TestTimeColumnsPreserveOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	sec := s.AddSection("BSCS", "")
	cols := s.TimeColumns()

	input := []model.TimeColumnInput{
		{Start: "10:00", End: "11:00"},
		{Start: "7:00", End: "8:00"},
		{Start: "noon", End: "1pm"},
	}
	require.NoError(t, cols.ReplaceForSection(ctx, sec, input))

	got, err := cols.ListBySection(ctx, sec)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, c := range got {
		assert.Equal(t, input[i].Start, c.Start)
		assert.Equal(t, input[i].End, c.End)
		if i > 0 {
			assert.Greater(t, c.ID, got[i-1].ID)
		}
	}
}
