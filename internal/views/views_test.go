package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseflow/board/internal"
)

func newDue(t time.Time) *time.Time {
	return &t
}

func TestAnnotateUrgency(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tasks := []internal.Task{
		{ID: "soon", DueDate: newDue(now.Add(2 * time.Hour)), Status: internal.StatusNotStarted},
		{ID: "later", DueDate: newDue(now.AddDate(0, 0, 3)), Status: internal.StatusNotStarted},
		{ID: "done", DueDate: newDue(now.Add(2 * time.Hour)), Status: internal.StatusDone},
	}

	got := AnnotateUrgency(tasks, now)

	require.Len(t, got, 3)
	assert.True(t, got[0].IsUrgent)
	assert.False(t, got[1].IsUrgent)
	assert.False(t, got[2].IsUrgent)
}

func TestFilter_All(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tasks := AnnotateUrgency(internal.DefaultSnapshot(now).Tasks, now)

	got := Filter(tasks, nil, internal.FilterAll, now)

	assert.Equal(t, tasks, got)

	// The result is a copy, not an alias.
	got[0].Title = "changed"
	assert.NotEqual(t, got[0].Title, tasks[0].Title)
}

func TestFilter_ThisWeek(t *testing.T) {
	t.Parallel()

	// A Wednesday; the containing week is Mon 2024-03-04 .. Sun 2024-03-10.
	now := time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)

	in := AnnotateUrgency([]internal.Task{
		{ID: "monday", DueDate: newDue(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))},
		{ID: "sunday", DueDate: newDue(time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC))},
		{ID: "next-monday", DueDate: newDue(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC))},
		{ID: "undated"},
	}, now)

	got := Filter(in, nil, internal.FilterThisWeek, now)

	require.Len(t, got, 2)
	assert.Equal(t, "monday", got[0].ID)
	assert.Equal(t, "sunday", got[1].ID)
}

func TestFilter_ThisMonth(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	in := AnnotateUrgency([]internal.Task{
		{ID: "first", DueDate: newDue(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))},
		{ID: "last", DueDate: newDue(time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC))},
		{ID: "april", DueDate: newDue(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))},
		{ID: "undated"},
	}, now)

	got := Filter(in, nil, internal.FilterThisMonth, now)

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].ID)
	assert.Equal(t, "last", got[1].ID)
}

func TestFilter_Group(t *testing.T) {
	t.Parallel()

	now := time.Now()
	snap := internal.DefaultSnapshot(now)

	got := Filter(AnnotateUrgency(snap.Tasks, now), snap.Courses, internal.Filter("group-1"), now)

	require.Len(t, got, 5)
	for _, task := range got {
		assert.Contains(t, []string{"course-1", "course-2", "course-3"}, task.CourseID)
	}
}

func TestFilter_UnknownGroupKeepsNothing(t *testing.T) {
	t.Parallel()

	now := time.Now()
	snap := internal.DefaultSnapshot(now)

	got := Filter(AnnotateUrgency(snap.Tasks, now), snap.Courses, internal.Filter("group-gone"), now)

	assert.Empty(t, got)
}

func TestKeyTasks(t *testing.T) {
	t.Parallel()

	now := time.Now()
	snap := internal.DefaultSnapshot(now)

	got := KeyTasks(snap.Tasks, snap.Courses, "", "")

	// Only the three dated tasks survive, in due date order.
	require.Len(t, got, 3)
	assert.Equal(t, "task-6", got[0].ID)
	assert.Equal(t, "task-1", got[1].ID)
	assert.Equal(t, "task-3", got[2].ID)
}

func TestKeyTasks_ScopedToGroupAndCourse(t *testing.T) {
	t.Parallel()

	now := time.Now()
	snap := internal.DefaultSnapshot(now)

	byGroup := KeyTasks(snap.Tasks, snap.Courses, "group-1", "")
	require.Len(t, byGroup, 2)
	assert.Equal(t, "task-1", byGroup[0].ID)
	assert.Equal(t, "task-3", byGroup[1].ID)

	byCourse := KeyTasks(snap.Tasks, snap.Courses, "", "course-3")
	require.Len(t, byCourse, 1)
	assert.Equal(t, "task-3", byCourse[0].ID)
}

func TestStartOfWeek(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "wednesday",
			in:   time.Date(2024, 3, 6, 15, 30, 0, 0, time.UTC),
			want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday maps to itself",
			in:   time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday belongs to the week before",
			in:   time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, StartOfWeek(tt.in))
		})
	}
}
