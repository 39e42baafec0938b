package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRange(t *testing.T, day Day, token string) TimeRange {
	t.Helper()
	r, err := ParseTimeRange(day, token)
	require.NoError(t, err)
	return r
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		in      string
		want    Day
		wantErr bool
	}{
		{in: "Monday", want: Monday},
		{in: "monday", want: Monday},
		{in: " TUESDAY ", want: Tuesday},
		{in: "Wed", want: Wednesday},
		{in: "thu", want: Thursday},
		{in: "SUN", want: Sunday},
		{in: "Funday", wantErr: true},
		{in: "", wantErr: true},
		{in: "Mo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDay(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDay)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "7:00", want: 420},
		{in: "09:30", want: 570},
		{in: "23:59", want: 1439},
		{in: "24:00", want: 1440},
		{in: "24:01", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "1230", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "123:00", wantErr: true},
		{in: "12:5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimeRange(t *testing.T) {
	r := mustRange(t, Monday, "07:00-09:00")
	assert.Equal(t, TimeRange{Day: Monday, Start: 420, End: 540}, r)
	assert.Equal(t, "07:00-09:00", r.Label())
	assert.Equal(t, "Monday 07:00-09:00", r.String())
	assert.Equal(t, 120, r.Duration())

	for _, token := range []string{"09:00-09:00", "10:00-09:00", "09:00", "09:00-10:00-11:00", "9-10", ""} {
		_, err := ParseTimeRange(Monday, token)
		assert.ErrorIs(t, err, ErrInvalidTimeRange, token)
	}
}

func TestTimeRangeValidate(t *testing.T) {
	assert.NoError(t, TimeRange{Day: Friday, Start: 0, End: MinutesPerDay}.Validate())
	assert.ErrorIs(t, TimeRange{Day: "Someday", Start: 0, End: 60}.Validate(), ErrInvalidDay)
	assert.ErrorIs(t, TimeRange{Day: Friday, Start: -1, End: 60}.Validate(), ErrInvalidTimeRange)
	assert.ErrorIs(t, TimeRange{Day: Friday, Start: 0, End: MinutesPerDay + 1}.Validate(), ErrInvalidTimeRange)
	assert.ErrorIs(t, TimeRange{Day: Friday, Start: 60, End: 60}.Validate(), ErrInvalidTimeRange)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b TimeRange
		want bool
	}{
		{"adjacent", mustRange(t, Monday, "09:00-10:00"), mustRange(t, Monday, "10:00-11:00"), false},
		{"partial", mustRange(t, Monday, "09:00-10:30"), mustRange(t, Monday, "10:00-11:00"), true},
		{"contained", mustRange(t, Monday, "08:00-12:00"), mustRange(t, Monday, "09:00-10:00"), true},
		{"identical", mustRange(t, Monday, "09:00-10:00"), mustRange(t, Monday, "09:00-10:00"), true},
		{"disjoint", mustRange(t, Monday, "07:00-08:00"), mustRange(t, Monday, "13:00-14:00"), false},
		{"other day", mustRange(t, Monday, "09:00-10:00"), mustRange(t, Tuesday, "09:00-10:00"), false},
		{"one minute", mustRange(t, Monday, "09:00-10:01"), mustRange(t, Monday, "10:00-11:00"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			assert.Equal(t, tt.want, Overlaps(tt.b, tt.a), "overlap must be symmetric")
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
		})
	}
}

func TestOverlapsSymmetricAndReflexive(t *testing.T) {
	// Every range on a 30-minute grid between 08:00 and 12:00.
	var ranges []TimeRange
	for start := 480; start < 720; start += 30 {
		for end := start + 30; end <= 720; end += 30 {
			ranges = append(ranges, TimeRange{Day: Wednesday, Start: start, End: end})
		}
	}

	for _, a := range ranges {
		assert.True(t, Overlaps(a, a), a.String())
		for _, b := range ranges {
			assert.Equal(t, Overlaps(a, b), Overlaps(b, a), "%s vs %s", a, b)
		}
	}
}

func TestConflictReasons(t *testing.T) {
	a := Assignment{ID: 1, SectionID: 1, TeacherID: Int64Ptr(7), RoomID: Int64Ptr(3)}
	b := Assignment{ID: 2, SectionID: 2, TeacherID: Int64Ptr(8), RoomID: Int64Ptr(3)}
	assert.Equal(t, []ConflictReason{ReasonRoom}, ConflictReasons(a, b))

	b.TeacherID = Int64Ptr(7)
	b.SectionID = 1
	assert.Equal(t, []ConflictReason{ReasonTeacher, ReasonRoom, ReasonSection}, ConflictReasons(a, b))

	// Missing rooms never match each other.
	c := Assignment{ID: 3, SectionID: 3}
	d := Assignment{ID: 4, SectionID: 4}
	assert.Empty(t, ConflictReasons(c, d))
}

func TestTeacherDisplayName(t *testing.T) {
	assert.Equal(t, "Dela Cruz, Juan", Teacher{FirstName: "Juan", LastName: "Dela Cruz"}.DisplayName())

	d := AssignmentDetail{TeacherFirstName: StringPtr("Juan"), TeacherLastName: StringPtr("Dela Cruz")}
	name, ok := d.TeacherDisplay()
	assert.True(t, ok)
	assert.Equal(t, "Dela Cruz, Juan", name)

	_, ok = AssignmentDetail{}.TeacherDisplay()
	assert.False(t, ok)
}
