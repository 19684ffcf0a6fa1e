package internal

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Course is a category of tasks, always owned by exactly one Group.
type Course struct {
	ID      string
	Name    string
	Color   string
	GroupID string
}

// CreateCourseParams defines the values required to create a new course.
type CreateCourseParams struct {
	Name    string
	Color   string
	GroupID string
}

// Validate ...
func (p CreateCourseParams) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Color, validation.Required, is.HexColor),
		validation.Field(&p.GroupID, validation.Required),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation.ValidateStruct")
	}

	return nil
}
