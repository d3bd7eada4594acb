package grouping

import "errors"

// Sentinel kinds for allocation errors.
var (
	ErrInvalidGroupCount = errors.New("invalid group count")
)
