package internal

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Status indicates the board column a task currently belongs to.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Validate ...
func (s Status) Validate() error {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusDone:
		return nil
	}

	return NewErrorf(ErrorCodeInvalidArgument, "unknown status %q", string(s))
}

// Task is a unit of work owned by exactly one Course. Color is denormalized
// from the owning Course for rendering; Course.Color stays authoritative.
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     *time.Time
	Status      Status
	CourseID    string
	Color       string
}

// IsUrgent reports whether the task is due within one day of now and not
// already done. Derived, never persisted.
func (t Task) IsUrgent(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusDone {
		return false
	}

	return t.DueDate.Before(now.Add(24 * time.Hour))
}

// Movable reports whether the UI may drag this task to another column.
// Done tasks are pinned; MoveTask itself still accepts any transition so a
// programmatic caller can revert one.
func (t Task) Movable() bool {
	return t.Status != StatusDone
}

// DueBefore reports whether the task has a due date strictly before the
// given instant.
func (t Task) DueBefore(instant time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(instant)
}

// CreateTaskParams defines the values required to create a new task.
type CreateTaskParams struct {
	Title       string
	Description string
	DueDate     *time.Time
	CourseID    string
}

// Validate ...
func (p CreateTaskParams) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.CourseID, validation.Required),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation.ValidateStruct")
	}

	return nil
}

// EditTaskParams defines the full replacement values for an existing task,
// matching it by ID.
type EditTaskParams struct {
	ID          string
	Title       string
	Description string
	DueDate     *time.Time
	Status      Status
	CourseID    string
}

// Validate ...
func (p EditTaskParams) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.CourseID, validation.Required),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation.ValidateStruct")
	}

	if err := p.Status.Validate(); err != nil {
		return err
	}

	return nil
}
