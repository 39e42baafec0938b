package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/timetable/internal/model"
)

func TestWeekGrid(t *testing.T) {
	schedule := model.SectionSchedule{
		model.Monday: {
			"07:00-09:00": {Subject: "Algebra", Room: "R101", Teacher: "Dela Cruz, Juan", Type: "Lecture"},
		},
		model.Thursday: {
			"13:00-16:00": {Subject: model.Unresolved, Room: "Lab 2", Teacher: model.Unresolved, Type: "Lab"},
		},
	}
	columns := []model.TimeColumn{{Start: "7:00", End: "8:00"}, {Start: "8:00", End: "9:00"}}

	data, err := WeekGrid("BSCS 1-A", schedule, columns)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, img.Bounds().Dx())
	assert.Equal(t, imageHeight, img.Bounds().Dy())
}

func TestWeekGridEmpty(t *testing.T) {
	data, err := WeekGrid("empty", model.SectionSchedule{}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestCalculateHourRange(t *testing.T) {
	sessions := []session{
		{rng: model.TimeRange{Day: model.Monday, Start: 7 * 60, End: 9*60 + 30}},
		{rng: model.TimeRange{Day: model.Friday, Start: 13 * 60, End: 16 * 60}},
	}
	assert.Equal(t, hourRange{start: 6, end: 17, total: 11}, calculateHourRange(sessions))

	late := []session{{rng: model.TimeRange{Day: model.Monday, Start: 22 * 60, End: 24 * 60}}}
	assert.Equal(t, hourRange{start: 21, end: 24, total: 3}, calculateHourRange(late))

	assert.Equal(t, hourRange{start: 6, end: 19, total: 13}, calculateHourRange(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Algebra", truncate("Algebra", 10))
	assert.Equal(t, "Introduc...", truncate("Introduction to Proofs", 11))
}
