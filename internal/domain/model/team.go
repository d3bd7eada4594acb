package model

import (
	"fmt"
	"strings"
)

// Team size bounds.
const (
	MinPlayers = 2
	MaxPlayers = 4
)

// Tally is a team's group-phase record.
type Tally struct {
	Points int `json:"points"`
	Wins   int `json:"wins"`
	Draws  int `json:"draws"`
	Losses int `json:"losses"`
}

// Played returns the number of completed matches counted in the tally.
func (t Tally) Played() int { return t.Wins + t.Draws + t.Losses }

// Team is a registered pair (or trio, or quartet) of players.
type Team struct {
	ID      string
	Name    string
	Players []string
	Tally   Tally
}

// Validate checks the team's name and roster size.
func (t *Team) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTeam)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidTeam)
	}
	if n := len(t.Players); n < MinPlayers || n > MaxPlayers {
		return fmt.Errorf("%w: %d players, want %d-%d", ErrInvalidTeam, n, MinPlayers, MaxPlayers)
	}
	for i, p := range t.Players {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: player %d has no name", ErrInvalidTeam, i+1)
		}
	}
	return nil
}

func (t *Team) clone() *Team {
	c := *t
	c.Players = append([]string(nil), t.Players...)
	return &c
}

// TeamSet is an id-keyed team collection that remembers insertion order.
// The zero value is an empty set.
type TeamSet struct {
	order []string
	byID  map[string]*Team
}

// Len returns the number of teams.
func (s *TeamSet) Len() int { return len(s.order) }

// Get returns the team with id.
func (s *TeamSet) Get(id string) (*Team, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// Has reports whether id is registered.
func (s *TeamSet) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Add appends a team. Ids must be unique.
func (s *TeamSet) Add(t *Team) error {
	if s.byID == nil {
		s.byID = make(map[string]*Team)
	}
	if _, ok := s.byID[t.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTeam, t.ID)
	}
	s.byID[t.ID] = t
	s.order = append(s.order, t.ID)
	return nil
}

// Remove deletes the team with id and reports whether it existed.
func (s *TeamSet) Remove(id string) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// IDs returns team ids in insertion order.
func (s *TeamSet) IDs() []string {
	return append([]string(nil), s.order...)
}

// All returns teams in insertion order.
func (s *TeamSet) All() []*Team {
	out := make([]*Team, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// ResetTallies zeroes every team's tally.
func (s *TeamSet) ResetTallies() {
	for _, t := range s.byID {
		t.Tally = Tally{}
	}
}

// Clone deep-copies the set.
func (s *TeamSet) Clone() TeamSet {
	c := TeamSet{
		order: append([]string(nil), s.order...),
		byID:  make(map[string]*Team, len(s.byID)),
	}
	for id, t := range s.byID {
		c.byID[id] = t.clone()
	}
	return c
}
