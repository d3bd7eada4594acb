package service

import (
	"context"
	"fmt"

	"github.com/okian/pong/internal/domain/bracket"
	"github.com/okian/pong/internal/domain/model"
	"github.com/okian/pong/internal/domain/standings"
)

// StandingRow is one team's line in a group table.
type StandingRow struct {
	Rank     int    `json:"rank"`
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
	Played   int    `json:"played"`
	Points   int    `json:"points"`
	Wins     int    `json:"wins"`
	Draws    int    `json:"draws"`
	Losses   int    `json:"losses"`
}

// GroupStandings is the ordered table of one group.
type GroupStandings struct {
	Group int           `json:"group"`
	Name  string        `json:"name"`
	Rows  []StandingRow `json:"rows"`
}

// StandingsView holds every group table of a tournament.
type StandingsView struct {
	TournamentID string           `json:"tournamentId"`
	Groups       []GroupStandings `json:"groups"`
}

// BracketMatch is a knockout match with display names resolved.
type BracketMatch struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Round      int           `json:"round"`
	Position   int           `json:"position"`
	State      bracket.State `json:"state"`
	Team1ID    string        `json:"team1Id,omitempty"`
	Team2ID    string        `json:"team2Id,omitempty"`
	Team1Name  string        `json:"team1Name,omitempty"`
	Team2Name  string        `json:"team2Name,omitempty"`
	Team1Score *int          `json:"team1Score,omitempty"`
	Team2Score *int          `json:"team2Score,omitempty"`
	Completed  bool          `json:"completed"`
	WinnerID   string        `json:"winnerId,omitempty"`
	ThirdPlace bool          `json:"thirdPlace,omitempty"`
}

// BracketRound groups the main-bracket matches of one round.
type BracketRound struct {
	Round   int            `json:"round"`
	Name    string         `json:"name"`
	Matches []BracketMatch `json:"matches"`
}

// BracketView is the knockout tree of a tournament.
type BracketView struct {
	TournamentID string         `json:"tournamentId"`
	Status       model.Status   `json:"status"`
	Rounds       []BracketRound `json:"rounds"`
	ThirdPlace   *BracketMatch  `json:"thirdPlace,omitempty"`
	ChampionID   string         `json:"championId,omitempty"`
	ChampionName string         `json:"championName,omitempty"`
}

// ReadinessView tells whether the knockout phase can start.
type ReadinessView struct {
	TournamentID     string `json:"tournamentId"`
	CanStartKnockout bool   `json:"canStartKnockout"`
	Reason           string `json:"reason,omitempty"`
}

// Standings returns the ordered group tables of tournament id.
func (s *Service) Standings(ctx context.Context, id string) (*StandingsView, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &StandingsView{TournamentID: t.ID, Groups: make([]GroupStandings, 0, len(t.Groups))}
	for i, table := range standings.Tables(t) {
		g := GroupStandings{Group: i, Name: GroupName(i), Rows: make([]StandingRow, 0, len(table))}
		for _, row := range table {
			g.Rows = append(g.Rows, StandingRow{
				Rank:     row.Rank,
				TeamID:   row.TeamID,
				TeamName: teamName(t, row.TeamID),
				Played:   row.Tally.Played(),
				Points:   row.Tally.Points,
				Wins:     row.Tally.Wins,
				Draws:    row.Tally.Draws,
				Losses:   row.Tally.Losses,
			})
		}
		view.Groups = append(view.Groups, g)
	}
	return view, nil
}

// Bracket returns the knockout rounds of tournament id. Before the knockout
// starts the view has no rounds.
func (s *Service) Bracket(ctx context.Context, id string) (*BracketView, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &BracketView{TournamentID: t.ID, Status: t.Status, Rounds: []BracketRound{}}
	total := t.FinalRound()
	for _, m := range t.KnockoutMatches() {
		bm := bracketMatch(t, m, total)
		if m.ThirdPlace {
			view.ThirdPlace = &bm
			continue
		}
		if n := len(view.Rounds); n == 0 || view.Rounds[n-1].Round != m.Round {
			view.Rounds = append(view.Rounds, BracketRound{Round: m.Round, Name: bracket.RoundName(m.Round, total)})
		}
		last := &view.Rounds[len(view.Rounds)-1]
		last.Matches = append(last.Matches, bm)
	}
	if champion, ok := bracket.Champion(t); ok {
		view.ChampionID = champion
		view.ChampionName = teamName(t, champion)
	}
	return view, nil
}

// Readiness reports whether tournament id may enter the knockout phase.
func (s *Service) Readiness(ctx context.Context, id string) (*ReadinessView, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &ReadinessView{TournamentID: t.ID, CanStartKnockout: true}
	if err := bracket.Readiness(t); err != nil {
		view.CanStartKnockout = false
		view.Reason = err.Error()
	}
	return view, nil
}

// GroupName labels group i as "Group A", "Group B" and so on.
func GroupName(i int) string {
	if i >= 0 && i < 26 {
		return "Group " + string(rune('A'+i))
	}
	return fmt.Sprintf("Group %d", i+1)
}

func bracketMatch(t *model.Tournament, m *model.KnockoutMatch, total int) BracketMatch {
	return BracketMatch{
		ID:         m.ID,
		Name:       bracket.MatchName(m, total),
		Round:      m.Round,
		Position:   m.Position,
		State:      bracket.StateOf(m),
		Team1ID:    m.Team1ID,
		Team2ID:    m.Team2ID,
		Team1Name:  teamName(t, m.Team1ID),
		Team2Name:  teamName(t, m.Team2ID),
		Team1Score: m.Score1,
		Team2Score: m.Score2,
		Completed:  m.Completed,
		WinnerID:   m.WinnerID,
		ThirdPlace: m.ThirdPlace,
	}
}

func teamName(t *model.Tournament, id string) string {
	if team, ok := t.Teams.Get(id); ok {
		return team.Name
	}
	return ""
}
