package schedule

import "errors"

// Sentinel kinds for schedule errors.
var (
	ErrNotEnoughTeams = errors.New("bracket needs at least two teams")
)
