package schema

import "errors"

// Sentinel kinds for configuration resolution errors. All are fatal to a
// run; nothing is computable without a valid mapping.
var (
	ErrUnknownField    = errors.New("unknown canonical field")
	ErrUnmappedField   = errors.New("required field has no source column")
	ErrEmptyStages     = errors.New("stage list is empty")
	ErrDuplicateStage  = errors.New("duplicate stage name")
	ErrInvalidCalendar = errors.New("invalid business calendar window")
)
