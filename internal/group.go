package internal

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Group is a top-level organizational bucket, e.g. "University" or "Work".
type Group struct {
	ID   string
	Name string
}

// CreateGroupParams defines the values required to create a new group.
type CreateGroupParams struct {
	Name string
}

// Validate ...
func (p CreateGroupParams) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation.ValidateStruct")
	}

	return nil
}
