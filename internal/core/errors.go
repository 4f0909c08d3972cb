package core

import "errors"

var (
	// ErrUnknownField is returned when sorting by a column the schema does not define.
	ErrUnknownField = errors.New("unknown sort field")

	// ErrInvalidViewMode is returned for a view mode other than map or table.
	ErrInvalidViewMode = errors.New("invalid view mode")

	// ErrUnknownAction is returned when an action type has no transition.
	ErrUnknownAction = errors.New("unknown action")

	// ErrDataLoad marks a failure to obtain the dataset from its source.
	ErrDataLoad = errors.New("data load failure")
)
