package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m int) time.Time {
	return time.Date(2024, 3, 6, h, m, 0, 0, time.UTC)
}

func TestLayout_Empty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Layout(nil))
}

func TestLayout_NonOverlappingShareOneColumn(t *testing.T) {
	t.Parallel()

	events := []Event{
		{ID: "a", Start: at(9, 0), End: at(10, 0)},
		{ID: "b", Start: at(10, 0), End: at(11, 0)},
		{ID: "c", Start: at(14, 0), End: at(15, 0)},
	}

	got := Layout(events)

	require.Len(t, got, 3)

	for _, p := range got {
		assert.Equal(t, 0, p.Column)
		assert.Equal(t, 1, p.Columns)
		assert.Equal(t, 0.0, p.Left)
		assert.Equal(t, 100.0, p.Width)
	}
}

func TestLayout_TwoOverlappingSplitFifty(t *testing.T) {
	t.Parallel()

	events := []Event{
		{ID: "a", Start: at(9, 0), End: at(11, 0)},
		{ID: "b", Start: at(10, 0), End: at(12, 0)},
	}

	got := Layout(events)

	require.Len(t, got, 2)

	byID := make(map[string]Positioned)
	for _, p := range got {
		byID[p.ID] = p
	}

	assert.Equal(t, 0, byID["a"].Column)
	assert.Equal(t, 1, byID["b"].Column)

	for _, p := range got {
		assert.Equal(t, 2, p.Columns)
		assert.Equal(t, 50.0, p.Width)
	}

	assert.Equal(t, 0.0, byID["a"].Left)
	assert.Equal(t, 50.0, byID["b"].Left)
}

func TestLayout_CliqueOfThree(t *testing.T) {
	t.Parallel()

	events := []Event{
		{ID: "a", Start: at(9, 0), End: at(12, 0)},
		{ID: "b", Start: at(9, 30), End: at(11, 0)},
		{ID: "c", Start: at(10, 0), End: at(11, 30)},
	}

	got := Layout(events)

	require.Len(t, got, 3)

	for _, p := range got {
		assert.Equal(t, 3, p.Columns)
		assert.InDelta(t, 100.0/3, p.Width, 1e-9)
	}
}

func TestLayout_ColumnsNeverOverlap(t *testing.T) {
	t.Parallel()

	events := []Event{
		{ID: "a", Start: at(9, 0), End: at(10, 30)},
		{ID: "b", Start: at(9, 15), End: at(9, 45)},
		{ID: "c", Start: at(10, 30), End: at(12, 0)},
		{ID: "d", Start: at(11, 0), End: at(11, 30)},
		{ID: "e", Start: at(9, 45), End: at(11, 0)},
		{ID: "f", Start: at(13, 0), End: at(14, 0)},
	}

	got := Layout(events)
	require.Len(t, got, len(events))

	byColumn := make(map[int][]Positioned)
	for _, p := range got {
		byColumn[p.Column] = append(byColumn[p.Column], p)
	}

	for col, placed := range byColumn {
		for i := 0; i < len(placed); i++ {
			for j := i + 1; j < len(placed); j++ {
				a, b := placed[i], placed[j]
				assert.False(t, Overlaps(a.Start, a.End, b.Start, b.End),
					"column %d holds overlapping events %s and %s", col, a.ID, b.ID)
			}
		}
	}
}

func TestLayout_Geometry(t *testing.T) {
	t.Parallel()

	events := []Event{
		{ID: "a", Start: at(9, 30), End: at(10, 15)},
	}

	got := Layout(events)

	require.Len(t, got, 1)
	assert.Equal(t, 9.5, got[0].StartOffsetHours)
	assert.Equal(t, 45, got[0].DurationMinutes)
}

func TestLayout_UnsortedInput(t *testing.T) {
	t.Parallel()

	events := []Event{
		{ID: "late", Start: at(15, 0), End: at(16, 0)},
		{ID: "early", Start: at(8, 0), End: at(9, 0)},
	}

	got := Layout(events)

	require.Len(t, got, 2)

	for _, p := range got {
		assert.Equal(t, 1, p.Columns)
	}
}
