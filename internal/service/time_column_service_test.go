package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/timetable/internal/model"
)

func TestTimeColumnsReplaceAndGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.columns.ReplaceSectionTimeColumns(ctx, f.s1, []model.TimeColumnInput{
		{Start: "7:00 AM", End: "8:00 AM"},
		{Start: "8:00 AM", End: "9:00 AM"},
	}))
	require.NoError(t, f.columns.ReplaceSectionTimeColumns(ctx, f.s1, []model.TimeColumnInput{
		{Start: "1st period", End: "end"},
		{Start: "09:00", End: "10:00"},
		{Start: "10:00", End: "11:00"},
	}))

	got, err := f.columns.GetSectionTimeColumns(ctx, f.s1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "1st period", got[0].Start)
	assert.Equal(t, "10:00", got[2].Start)

	other, err := f.columns.GetSectionTimeColumns(ctx, f.s2)
	require.NoError(t, err)
	assert.NotNil(t, other)
	assert.Empty(t, other)
}

func TestTimeColumnsValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.columns.ReplaceSectionTimeColumns(ctx, f.s1, []model.TimeColumnInput{
		{Start: "7:00", End: "8:00"},
		{Start: "", End: "9:00"},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrInvalidTimeColumns)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "times[1].start", verr.Fields[0].Field)

	err = f.columns.ReplaceSectionTimeColumns(ctx, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidSection)

	err = f.columns.ReplaceSectionTimeColumns(ctx, 777, nil)
	assert.ErrorIs(t, err, ErrSectionNotFound)
}
