package evaluation

import "errors"

// Sentinel kinds for evaluation errors.
var (
	ErrInvalidScore     = errors.New("score must be between 1 and 5")
	ErrUnknownCriterion = errors.New("unknown criterion")
)
