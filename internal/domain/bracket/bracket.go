// Package bracket advances knockout results through a single-elimination bracket.
package bracket

import (
	"fmt"

	"github.com/okian/pong/internal/domain/model"
)

// State is the lifecycle of a knockout match.
type State string

// Match states.
const (
	Unscheduled State = "unscheduled"
	Scheduled   State = "scheduled"
	Completed   State = "completed"
)

// StateOf reports where m is in its lifecycle.
func StateOf(m *model.KnockoutMatch) State {
	switch {
	case m.Completed:
		return Completed
	case m.HasTeams():
		return Scheduled
	default:
		return Unscheduled
	}
}

// Complete marks the knockout match matchID completed and moves its winner
// to round r+1, position p/2. A semifinal loser drops into the third-place
// playoff when there is one. Once every final-round match is completed the
// tournament is completed. On error t is left untouched.
func Complete(t *model.Tournament, matchID string) error {
	km, ok := t.FindMatch(matchID).(*model.KnockoutMatch)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotKnockout, matchID)
	}
	if km.Completed {
		return fmt.Errorf("%w: %s", ErrAlreadyCompleted, matchID)
	}
	if !km.HasTeams() {
		return fmt.Errorf("%w: %s", ErrUnscheduled, matchID)
	}
	if !km.HasScores() {
		return fmt.Errorf("%w: %s", ErrIncompleteScore, matchID)
	}
	winner, loser, decided := km.Decide()
	if !decided {
		return fmt.Errorf("%w: %s", ErrTie, matchID)
	}

	km.Completed = true
	km.WinnerID = winner

	final := t.FinalRound()
	if km.ThirdPlace || km.Round >= final {
		if finished(t, final) {
			t.Status = model.StatusCompleted
		}
		return nil
	}
	if next := t.KnockoutMatch(km.Round+1, km.Position/2); next != nil {
		next.Place(winner)
	}
	if km.Round == final-1 {
		if third := t.ThirdPlace(); third != nil {
			third.Place(loser)
		}
	}
	return nil
}

func finished(t *model.Tournament, final int) bool {
	if final == 0 {
		return false
	}
	for _, km := range t.KnockoutMatches() {
		if km.Round == final && !km.Completed {
			return false
		}
	}
	return true
}

// Finished reports whether every final-round match of t is completed.
func Finished(t *model.Tournament) bool {
	return finished(t, t.FinalRound())
}

// Champion returns the winner of the final, if decided.
func Champion(t *model.Tournament) (string, bool) {
	final := t.KnockoutMatch(t.FinalRound(), 0)
	if final == nil || !final.Completed {
		return "", false
	}
	return final.WinnerID, true
}

// RoundName labels a bracket round counted from 1 out of total rounds.
func RoundName(round, total int) string {
	switch total - round {
	case 0:
		return "Final"
	case 1:
		return "Semi-finals"
	case 2:
		return "Quarter-finals"
	case 3:
		return "Octofinals"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}

// MatchName labels a knockout match by its round, or as the third-place playoff.
func MatchName(m *model.KnockoutMatch, total int) string {
	if m.ThirdPlace {
		return "Third place"
	}
	return RoundName(m.Round, total)
}
