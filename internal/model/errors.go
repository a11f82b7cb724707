package model

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// NotFoundError reports a failed point lookup in the reference model.
type NotFoundError struct {
	Kind string
	ID   int
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %q: not found", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s %d: not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// BuildError reports a structural defect detected while building the
// reference model: a dangling foreign key, a duplicate id, or a parameter
// array whose length does not match the horizon.
type BuildError struct {
	Kind  string
	ID    int
	Field string
	Msg   string
}

func (e *BuildError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %d: field %s: %s", e.Kind, e.ID, e.Field, e.Msg)
	}
	return fmt.Sprintf("%s %d: %s", e.Kind, e.ID, e.Msg)
}
