package bracket

import "github.com/okian/pong/internal/domain/model"

// Readiness returns nil when t may enter the knockout phase, or the reason it may not.
func Readiness(t *model.Tournament) error {
	if t.CurrentPhase != model.PhaseGroup || t.Status != model.StatusGroup {
		return ErrWrongPhase
	}
	matches := t.GroupMatches()
	if len(matches) == 0 {
		return ErrNoGroupMatches
	}
	for _, m := range matches {
		if !m.Completed {
			return ErrGroupIncomplete
		}
	}
	return nil
}

// CanStartKnockout reports whether every group match is completed and the
// tournament is still in the group phase.
func CanStartKnockout(t *model.Tournament) bool {
	return Readiness(t) == nil
}
