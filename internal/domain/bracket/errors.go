package bracket

import "errors"

// Sentinel kinds for knockout errors.
var (
	ErrNotKnockout      = errors.New("not a knockout match")
	ErrUnscheduled      = errors.New("match teams are not known yet")
	ErrIncompleteScore  = errors.New("both scores are required")
	ErrTie              = errors.New("knockout match needs a strict winner")
	ErrAlreadyCompleted = errors.New("match already completed")
	ErrWrongPhase       = errors.New("tournament is not in the group phase")
	ErrNoGroupMatches   = errors.New("no group matches scheduled")
	ErrGroupIncomplete  = errors.New("group matches still open")
)
