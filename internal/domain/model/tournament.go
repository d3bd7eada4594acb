// Package model contains the tournament entities shared by every layer.
package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Status is a tournament's lifecycle stage.
type Status string

// Tournament statuses.
const (
	StatusGroup     Status = "group"
	StatusKnockout  Status = "knockout"
	StatusCompleted Status = "completed"
)

// Tournament configuration defaults.
const (
	DefaultNumberOfGroups     = 1
	DefaultKnockoutQualifiers = 2
	DefaultMaxScore           = 10
)

// Tournament owns its teams, groups and matches.
type Tournament struct {
	ID           string
	Name         string
	Date         string
	Description  string
	Status       Status
	CurrentPhase Phase

	NumberOfGroups int
	// KnockoutQualifiers is the number of teams per group entering the bracket; 0 means all.
	KnockoutQualifiers int
	ThirdPlaceMatch    bool
	MaxScore           int

	Teams   TeamSet
	Groups  [][]string
	Matches []Match
}

// NewID returns a fresh random identifier.
func NewID() string { return uuid.NewString() }

// New returns a tournament in the group phase with default configuration.
func New(id, name, date, description string) *Tournament {
	return &Tournament{
		ID:                 id,
		Name:               name,
		Date:               date,
		Description:        description,
		Status:             StatusGroup,
		CurrentPhase:       PhaseGroup,
		NumberOfGroups:     DefaultNumberOfGroups,
		KnockoutQualifiers: DefaultKnockoutQualifiers,
		MaxScore:           DefaultMaxScore,
	}
}

// TeamsPerGroup is the size of the largest group for the current configuration.
func (t *Tournament) TeamsPerGroup() int {
	g := t.NumberOfGroups
	if g < 1 {
		g = 1
	}
	return (t.Teams.Len() + g - 1) / g
}

// Clone returns a deep copy that shares no mutable state with t.
func (t *Tournament) Clone() *Tournament {
	c := *t
	c.Teams = t.Teams.Clone()
	c.Groups = make([][]string, len(t.Groups))
	for i, g := range t.Groups {
		c.Groups[i] = append([]string(nil), g...)
	}
	c.Matches = make([]Match, len(t.Matches))
	for i, m := range t.Matches {
		c.Matches[i] = m.cloneMatch()
	}
	return &c
}

// GroupMatches returns the group-phase matches in schedule order.
func (t *Tournament) GroupMatches() []*GroupMatch {
	var out []*GroupMatch
	for _, m := range t.Matches {
		if gm, ok := m.(*GroupMatch); ok {
			out = append(out, gm)
		}
	}
	return out
}

// KnockoutMatches returns bracket matches ordered by round then position.
func (t *Tournament) KnockoutMatches() []*KnockoutMatch {
	var out []*KnockoutMatch
	for _, m := range t.Matches {
		if km, ok := m.(*KnockoutMatch); ok {
			out = append(out, km)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		if out[i].ThirdPlace != out[j].ThirdPlace {
			return !out[i].ThirdPlace
		}
		return out[i].Position < out[j].Position
	})
	return out
}

// KnockoutMatch returns the main-bracket match at (round, position).
func (t *Tournament) KnockoutMatch(round, position int) *KnockoutMatch {
	for _, m := range t.Matches {
		if km, ok := m.(*KnockoutMatch); ok && !km.ThirdPlace && km.Round == round && km.Position == position {
			return km
		}
	}
	return nil
}

// ThirdPlace returns the third-place playoff, if the bracket has one.
func (t *Tournament) ThirdPlace() *KnockoutMatch {
	for _, m := range t.Matches {
		if km, ok := m.(*KnockoutMatch); ok && km.ThirdPlace {
			return km
		}
	}
	return nil
}

// FinalRound returns the highest knockout round, or 0 without a bracket.
func (t *Tournament) FinalRound() int {
	final := 0
	for _, m := range t.Matches {
		if km, ok := m.(*KnockoutMatch); ok && km.Round > final {
			final = km.Round
		}
	}
	return final
}

// FindMatch returns the match with id, or nil.
func (t *Tournament) FindMatch(id string) Match {
	for _, m := range t.Matches {
		if m.Base().ID == id {
			return m
		}
	}
	return nil
}

// GroupOf returns the index of the group holding teamID, or -1.
func (t *Tournament) GroupOf(teamID string) int {
	for i, g := range t.Groups {
		for _, id := range g {
			if id == teamID {
				return i
			}
		}
	}
	return -1
}

// Validate checks the structural invariants of a tournament record.
func (t *Tournament) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTournament)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidTournament)
	}
	switch t.Status {
	case StatusGroup, StatusKnockout, StatusCompleted:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTournament, t.Status)
	}
	switch t.CurrentPhase {
	case PhaseGroup, PhaseKnockout:
	default:
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidTournament, t.CurrentPhase)
	}
	if t.NumberOfGroups < 1 {
		return fmt.Errorf("%w: numberOfGroups must be at least 1", ErrInvalidTournament)
	}
	if t.KnockoutQualifiers < 0 {
		return fmt.Errorf("%w: knockoutQualifiers must not be negative", ErrInvalidTournament)
	}
	if t.MaxScore < 1 {
		return fmt.Errorf("%w: maxScore must be positive", ErrInvalidTournament)
	}
	for _, team := range t.Teams.All() {
		if err := team.Validate(); err != nil {
			return err
		}
	}
	if err := t.validateGroups(); err != nil {
		return err
	}
	return t.validateMatches()
}

func (t *Tournament) validateGroups() error {
	if len(t.Groups) == 0 {
		return nil
	}
	seen := make(map[string]bool, t.Teams.Len())
	for _, g := range t.Groups {
		for _, id := range g {
			if !t.Teams.Has(id) {
				return fmt.Errorf("%w: group references unknown team %s", ErrInvalidTournament, id)
			}
			if seen[id] {
				return fmt.Errorf("%w: team %s is in two groups", ErrInvalidTournament, id)
			}
			seen[id] = true
		}
	}
	if len(seen) != t.Teams.Len() {
		return fmt.Errorf("%w: groups do not cover every team", ErrInvalidTournament)
	}
	return nil
}

func (t *Tournament) validateMatches() error {
	ids := make(map[string]bool, len(t.Matches))
	for _, m := range t.Matches {
		b := m.Base()
		if b.ID == "" || ids[b.ID] {
			return fmt.Errorf("%w: missing or duplicate id %q", ErrInvalidMatch, b.ID)
		}
		ids[b.ID] = true
		for _, id := range []string{b.Team1ID, b.Team2ID} {
			if id != "" && !t.Teams.Has(id) {
				return fmt.Errorf("%w: match %s references unknown team %s", ErrInvalidMatch, b.ID, id)
			}
		}
		if b.Team1ID != "" && b.Team1ID == b.Team2ID {
			return fmt.Errorf("%w: match %s pairs a team with itself", ErrInvalidMatch, b.ID)
		}
		if !b.Completed {
			continue
		}
		if !b.HasTeams() || !b.HasScores() {
			return fmt.Errorf("%w: completed match %s lacks teams or scores", ErrInvalidMatch, b.ID)
		}
		if km, ok := m.(*KnockoutMatch); ok {
			winner, _, decided := b.Decide()
			if !decided || km.WinnerID != winner {
				return fmt.Errorf("%w: knockout match %s has no strict winner", ErrInvalidMatch, b.ID)
			}
		}
	}
	return nil
}
