// Package standings derives group tables from completed matches.
package standings

import (
	"sort"

	"github.com/okian/pong/internal/domain/model"
)

// Default points policy: three for a win, one for a draw, none for a loss.
const (
	defaultWinPoints  = 3
	defaultDrawPoints = 1
	defaultLossPoints = 0
)

// Row is one line of a group table.
type Row struct {
	Rank   int         `json:"rank"`
	TeamID string      `json:"teamId"`
	Tally  model.Tally `json:"tally"`
}

// Calculator folds completed group matches into tallies.
type Calculator struct {
	win, draw, loss int
}

// NewCalculator creates a calculator with the 3/1/0 policy unless overridden.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		win:  defaultWinPoints,
		draw: defaultDrawPoints,
		loss: defaultLossPoints,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compute returns a tally for every team in teamIDs, counting only completed
// matches between known teams. The result does not depend on match order.
func (c *Calculator) Compute(teamIDs []string, matches []*model.GroupMatch) map[string]model.Tally {
	tallies := make(map[string]model.Tally, len(teamIDs))
	for _, id := range teamIDs {
		tallies[id] = model.Tally{}
	}
	for _, m := range matches {
		if !m.Completed || !m.HasScores() {
			continue
		}
		t1, ok1 := tallies[m.Team1ID]
		t2, ok2 := tallies[m.Team2ID]
		if !ok1 || !ok2 {
			continue
		}
		s1, s2 := m.Scores()
		switch {
		case s1 > s2:
			c.credit(&t1, &t2)
		case s2 > s1:
			c.credit(&t2, &t1)
		default:
			t1.Draws++
			t2.Draws++
			t1.Points += c.draw
			t2.Points += c.draw
		}
		tallies[m.Team1ID] = t1
		tallies[m.Team2ID] = t2
	}
	return tallies
}

func (c *Calculator) credit(winner, loser *model.Tally) {
	winner.Wins++
	winner.Points += c.win
	loser.Losses++
	loser.Points += c.loss
}

// Apply recomputes every team's tally in t from its group matches.
func (c *Calculator) Apply(t *model.Tournament) {
	tallies := c.Compute(t.Teams.IDs(), t.GroupMatches())
	for _, team := range t.Teams.All() {
		team.Tally = tallies[team.ID]
	}
}

// Table orders a group by points, then wins, then the group's own order.
func Table(group []string, tallies map[string]model.Tally) []Row {
	rows := make([]Row, 0, len(group))
	for _, id := range group {
		rows = append(rows, Row{TeamID: id, Tally: tallies[id]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Tally, rows[j].Tally
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.Wins > b.Wins
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// Tables builds the table of every group of t from the teams' current tallies.
func Tables(t *model.Tournament) [][]Row {
	tallies := make(map[string]model.Tally, t.Teams.Len())
	for _, team := range t.Teams.All() {
		tallies[team.ID] = team.Tally
	}
	out := make([][]Row, len(t.Groups))
	for i, g := range t.Groups {
		out[i] = Table(g, tallies)
	}
	return out
}
