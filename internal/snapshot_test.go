package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Clone(t *testing.T) {
	t.Parallel()

	orig := DefaultSnapshot(time.Now())
	clone := orig.Clone()

	clone.Tasks[0].Title = "changed"
	clone.Courses[0].Name = "changed"
	clone.Groups[0].Name = "changed"

	assert.NotEqual(t, clone.Tasks[0].Title, orig.Tasks[0].Title)
	assert.NotEqual(t, clone.Courses[0].Name, orig.Courses[0].Name)
	assert.NotEqual(t, clone.Groups[0].Name, orig.Groups[0].Name)
}

func TestSnapshot_RemoveGroup(t *testing.T) {
	t.Parallel()

	snap := DefaultSnapshot(time.Now())

	// group-1 owns course-1, course-2 and course-3, which own five tasks.
	out := snap.RemoveGroup("group-1")

	_, ok := out.GroupByID("group-1")
	assert.False(t, ok)

	for _, courseID := range []string{"course-1", "course-2", "course-3"} {
		_, ok := out.CourseByID(courseID)
		assert.False(t, ok, courseID)
	}

	for _, task := range out.Tasks {
		assert.NotContains(t, []string{"course-1", "course-2", "course-3"}, task.CourseID)
	}

	assert.Len(t, out.Tasks, 2)

	// Unrelated records survive.
	_, ok = out.CourseByID("course-4")
	assert.True(t, ok)

	// The input snapshot is untouched.
	require.Len(t, snap.Tasks, 7)
	require.Len(t, snap.Courses, 5)
	require.Len(t, snap.Groups, 3)
}

func TestSnapshot_RemoveCourse(t *testing.T) {
	t.Parallel()

	snap := DefaultSnapshot(time.Now())

	// course-3 owns task-3 and task-7.
	out := snap.RemoveCourse("course-3")

	_, ok := out.CourseByID("course-3")
	assert.False(t, ok)

	for _, id := range []string{"task-3", "task-7"} {
		_, ok := out.TaskByID(id)
		assert.False(t, ok, id)
	}

	assert.Len(t, out.Tasks, 5)

	// The owning group stays.
	_, ok = out.GroupByID("group-1")
	assert.True(t, ok)
}

func TestSnapshot_CourseIDsOfGroup(t *testing.T) {
	t.Parallel()

	snap := DefaultSnapshot(time.Now())

	got := snap.CourseIDsOfGroup("group-1")

	assert.Len(t, got, 3)
	assert.Contains(t, got, "course-1")
	assert.Contains(t, got, "course-2")
	assert.Contains(t, got, "course-3")
}

func TestDefaultSnapshot(t *testing.T) {
	t.Parallel()

	snap := DefaultSnapshot(time.Now())

	require.Len(t, snap.Groups, 3)
	require.Len(t, snap.Courses, 5)
	require.Len(t, snap.Tasks, 7)

	for _, task := range snap.Tasks {
		course, ok := snap.CourseByID(task.CourseID)
		require.True(t, ok, task.ID)
		assert.Equal(t, course.Color, task.Color, task.ID)
	}

	for _, course := range snap.Courses {
		_, ok := snap.GroupByID(course.GroupID)
		require.True(t, ok, course.ID)
	}
}
