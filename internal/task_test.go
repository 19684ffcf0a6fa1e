package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_IsUrgent(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	newDue := func(d time.Duration) *time.Time {
		due := now.Add(d)
		return &due
	}

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{
			name: "due in an hour",
			task: Task{DueDate: newDue(time.Hour), Status: StatusInProgress},
			want: true,
		},
		{
			name: "overdue",
			task: Task{DueDate: newDue(-48 * time.Hour), Status: StatusNotStarted},
			want: true,
		},
		{
			name: "due in two days",
			task: Task{DueDate: newDue(48 * time.Hour), Status: StatusNotStarted},
			want: false,
		},
		{
			name: "no due date",
			task: Task{Status: StatusInProgress},
			want: false,
		},
		{
			name: "done is never urgent",
			task: Task{DueDate: newDue(time.Hour), Status: StatusDone},
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.task.IsUrgent(now))
		})
	}
}

func TestTask_Movable(t *testing.T) {
	t.Parallel()

	assert.True(t, Task{Status: StatusNotStarted}.Movable())
	assert.True(t, Task{Status: StatusInProgress}.Movable())
	assert.False(t, Task{Status: StatusDone}.Movable())
}

func TestStatus_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, StatusNotStarted.Validate())
	require.NoError(t, StatusInProgress.Validate())
	require.NoError(t, StatusDone.Validate())

	err := Status("archived").Validate()
	require.Error(t, err)

	var ierr *Error
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, ErrorCodeInvalidArgument, ierr.Code())
}

func TestCreateTaskParams_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, CreateTaskParams{Title: "Write report", CourseID: "course-1"}.Validate())

	require.Error(t, CreateTaskParams{CourseID: "course-1"}.Validate())
	require.Error(t, CreateTaskParams{Title: "Write report"}.Validate())
}

func TestEditTaskParams_Validate(t *testing.T) {
	t.Parallel()

	valid := EditTaskParams{
		ID:       "task-1",
		Title:    "Write report",
		Status:   StatusInProgress,
		CourseID: "course-1",
	}
	require.NoError(t, valid.Validate())

	invalid := valid
	invalid.Status = "unknown"
	require.Error(t, invalid.Validate())
}
