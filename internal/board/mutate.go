package board

import (
	"time"

	"github.com/courseflow/board/internal"
)

// The functions in this file are the board's state transitions. Each one
// takes a snapshot and returns a new one, leaving the input untouched, so
// they can be tested without a Board and without any I/O.

// addTask appends a new task with the given fresh id. Status always starts
// at NotStarted and the color is copied from the owning course.
func addTask(s internal.Snapshot, p internal.CreateTaskParams, id string) (internal.Snapshot, internal.Task, error) {
	if err := p.Validate(); err != nil {
		return s, internal.Task{}, err
	}

	course, ok := s.CourseByID(p.CourseID)
	if !ok {
		return s, internal.Task{}, internal.NewErrorf(internal.ErrorCodeInvalidArgument, "course %q does not exist", p.CourseID)
	}

	task := internal.Task{
		ID:          id,
		Title:       p.Title,
		Description: p.Description,
		DueDate:     p.DueDate,
		Status:      internal.StatusNotStarted,
		CourseID:    p.CourseID,
		Color:       course.Color,
	}

	out := s.Clone()
	out.Tasks = append(out.Tasks, task)

	return out, task, nil
}

// editTask replaces a task wholesale, matching by id. When the course
// changed, the color is re-copied from the new course.
func editTask(s internal.Snapshot, p internal.EditTaskParams) (internal.Snapshot, internal.Task, error) {
	if err := p.Validate(); err != nil {
		return s, internal.Task{}, err
	}

	prev, ok := s.TaskByID(p.ID)
	if !ok {
		return s, internal.Task{}, internal.NewErrorf(internal.ErrorCodeInvalidArgument, "task %q does not exist", p.ID)
	}

	course, ok := s.CourseByID(p.CourseID)
	if !ok {
		return s, internal.Task{}, internal.NewErrorf(internal.ErrorCodeInvalidArgument, "course %q does not exist", p.CourseID)
	}

	task := internal.Task{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		DueDate:     p.DueDate,
		Status:      p.Status,
		CourseID:    p.CourseID,
		Color:       prev.Color,
	}

	if p.CourseID != prev.CourseID {
		task.Color = course.Color
	}

	out := s.Clone()
	for i := range out.Tasks {
		if out.Tasks[i].ID == p.ID {
			out.Tasks[i] = task
			break
		}
	}

	return out, task, nil
}

// deleteTask removes a task by id. Deleting an absent task is a no-op, not
// an error.
func deleteTask(s internal.Snapshot, id string) (internal.Snapshot, bool) {
	if _, ok := s.TaskByID(id); !ok {
		return s, false
	}

	out := s.Clone()
	out.Tasks = out.Tasks[:0]

	for _, t := range s.Tasks {
		if t.ID != id {
			out.Tasks = append(out.Tasks, t)
		}
	}

	return out, true
}

func addGroup(s internal.Snapshot, p internal.CreateGroupParams, id string) (internal.Snapshot, internal.Group, error) {
	if err := p.Validate(); err != nil {
		return s, internal.Group{}, err
	}

	group := internal.Group{ID: id, Name: p.Name}

	out := s.Clone()
	out.Groups = append(out.Groups, group)

	return out, group, nil
}

func addCourse(s internal.Snapshot, p internal.CreateCourseParams, id string) (internal.Snapshot, internal.Course, error) {
	if err := p.Validate(); err != nil {
		return s, internal.Course{}, err
	}

	if _, ok := s.GroupByID(p.GroupID); !ok {
		return s, internal.Course{}, internal.NewErrorf(internal.ErrorCodeInvalidArgument, "group %q does not exist", p.GroupID)
	}

	course := internal.Course{ID: id, Name: p.Name, Color: p.Color, GroupID: p.GroupID}

	out := s.Clone()
	out.Courses = append(out.Courses, course)

	return out, course, nil
}

// moveResult describes what a status move triggered beyond the snapshot
// change itself.
type moveResult struct {
	task      internal.Task
	completed bool
	archive   bool
}

// moveTask transitions a task to a new column. Moving into Done from any
// other status marks the task completed; a completed task that is overdue
// or undated is additionally flagged for grace-period archival.
func moveTask(s internal.Snapshot, id string, status internal.Status, now time.Time) (internal.Snapshot, moveResult, error) {
	if err := status.Validate(); err != nil {
		return s, moveResult{}, err
	}

	prev, ok := s.TaskByID(id)
	if !ok {
		return s, moveResult{}, internal.NewErrorf(internal.ErrorCodeNotFound, "task %q does not exist", id)
	}

	task := prev
	task.Status = status

	out := s.Clone()
	for i := range out.Tasks {
		if out.Tasks[i].ID == id {
			out.Tasks[i] = task
			break
		}
	}

	res := moveResult{task: task}

	if status == internal.StatusDone && prev.Status != internal.StatusDone {
		res.completed = true
		res.archive = prev.DueDate == nil || prev.DueBefore(now)
	}

	return out, res, nil
}
