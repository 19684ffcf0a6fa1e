// Package views computes derived, render-ready projections of a board
// snapshot. Everything here is a pure function: inputs are never mutated and
// no I/O happens.
package views

import (
	"sort"
	"time"

	"github.com/courseflow/board/internal"
)

// AnnotatedTask pairs a task with its derived urgency flag.
type AnnotatedTask struct {
	internal.Task

	IsUrgent bool
}

// AnnotateUrgency flags every task due within one day of now and not yet
// done. The input slice is left untouched.
func AnnotateUrgency(tasks []internal.Task, now time.Time) []AnnotatedTask {
	out := make([]AnnotatedTask, len(tasks))

	for i, t := range tasks {
		out[i] = AnnotatedTask{Task: t, IsUrgent: t.IsUrgent(now)}
	}

	return out
}

// Filter keeps the tasks selected by the given filter. "all" is the
// identity; the week and month filters keep tasks whose due date falls in
// the ISO week (Monday start) or calendar month containing now, dropping
// undated tasks; any other value is treated as a group id and keeps tasks
// whose course belongs to that group.
func Filter(tasks []AnnotatedTask, courses []internal.Course, filter internal.Filter, now time.Time) []AnnotatedTask {
	switch filter {
	case internal.FilterAll:
		out := make([]AnnotatedTask, len(tasks))
		copy(out, tasks)

		return out
	case internal.FilterThisWeek:
		start := StartOfWeek(now)

		return keepDueBetween(tasks, start, start.AddDate(0, 0, 7))
	case internal.FilterThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

		return keepDueBetween(tasks, start, start.AddDate(0, 1, 0))
	}

	owned := make(map[string]struct{})
	for _, c := range courses {
		if c.GroupID == string(filter) {
			owned[c.ID] = struct{}{}
		}
	}

	out := make([]AnnotatedTask, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := owned[t.CourseID]; ok {
			out = append(out, t)
		}
	}

	return out
}

// KeyTasks returns the dated subset of tasks sorted ascending by due date,
// optionally restricted to one group and/or one course. This feeds the
// "key events" sidebar next to the calendar.
func KeyTasks(tasks []internal.Task, courses []internal.Course, groupID, courseID string) []internal.Task {
	groupCourses := make(map[string]struct{})
	for _, c := range courses {
		if groupID == "" || c.GroupID == groupID {
			groupCourses[c.ID] = struct{}{}
		}
	}

	out := make([]internal.Task, 0, len(tasks))

	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}

		if _, ok := groupCourses[t.CourseID]; !ok {
			continue
		}

		if courseID != "" && t.CourseID != courseID {
			continue
		}

		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(*out[j].DueDate)
	})

	return out
}

// StartOfWeek returns midnight of the Monday of the ISO week containing t.
func StartOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	offset := (int(day.Weekday()) + 6) % 7 // Monday == 0

	return day.AddDate(0, 0, -offset)
}

func keepDueBetween(tasks []AnnotatedTask, start, end time.Time) []AnnotatedTask {
	out := make([]AnnotatedTask, 0, len(tasks))

	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}

		if !t.DueDate.Before(start) && t.DueDate.Before(end) {
			out = append(out, t)
		}
	}

	return out
}
