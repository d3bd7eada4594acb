package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type teamRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Players     []string `json:"players"`
	GroupPoints int      `json:"groupPoints"`
	GroupWins   int      `json:"groupWins"`
	GroupDraws  int      `json:"groupDraws"`
	GroupLosses int      `json:"groupLosses"`
}

// teamRef accepts records that embed whole team objects instead of ids.
type teamRef struct {
	ID string `json:"id"`
}

type matchRecord struct {
	ID         string   `json:"id"`
	Phase      Phase    `json:"phase,omitempty"`
	Team1ID    string   `json:"team1Id,omitempty"`
	Team2ID    string   `json:"team2Id,omitempty"`
	Team1      *teamRef `json:"team1,omitempty"`
	Team2      *teamRef `json:"team2,omitempty"`
	Team1Score *int     `json:"team1Score,omitempty"`
	Team2Score *int     `json:"team2Score,omitempty"`
	Completed  bool     `json:"completed"`
	GroupIndex *int     `json:"groupIndex,omitempty"`
	Round      int      `json:"round,omitempty"`
	Position   *int     `json:"position,omitempty"`
	WinnerID   string   `json:"winnerId,omitempty"`
	ThirdPlace bool     `json:"thirdPlace,omitempty"`
}

type tournamentRecord struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Date               string        `json:"date"`
	Description        string        `json:"description"`
	Status             Status        `json:"status"`
	CurrentPhase       Phase         `json:"currentPhase"`
	TeamsPerGroup      int           `json:"teamsPerGroup"`
	NumberOfGroups     int           `json:"numberOfGroups"`
	KnockoutQualifiers *int          `json:"knockoutQualifiers"`
	ThirdPlaceMatch    bool          `json:"thirdPlaceMatch"`
	MaxScore           int           `json:"maxScore"`
	Teams              []teamRecord  `json:"teams"`
	Matches            []matchRecord `json:"matches"`
	Groups             [][]string    `json:"groups"`
}

// Encode serializes tournaments into the persisted array format.
func Encode(tournaments []*Tournament) ([]byte, error) {
	records := make([]tournamentRecord, 0, len(tournaments))
	for _, t := range tournaments {
		records = append(records, t.record())
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode tournaments: %w", err)
	}
	return data, nil
}

// Decode parses the persisted array format. Unusable records are skipped and
// reported through the returned error alongside the tournaments that did load;
// a payload that is not a JSON array yields no tournaments.
func Decode(data []byte) ([]*Tournament, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	var (
		out  = make([]*Tournament, 0, len(raws))
		seen = make(map[string]bool, len(raws))
		errs []error
	)
	for i, raw := range raws {
		var rec tournamentRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			errs = append(errs, fmt.Errorf("%w: record %d: %w", ErrCorruptRecord, i, err))
			continue
		}
		if rec.ID == "" || seen[rec.ID] {
			errs = append(errs, fmt.Errorf("%w: record %d: missing or duplicate id %q", ErrCorruptRecord, i, rec.ID))
			continue
		}
		seen[rec.ID] = true
		t, err := rec.tournament()
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
		}
		out = append(out, t)
	}
	return out, errors.Join(errs...)
}

// MarshalJSON renders the tournament in its persisted shape.
func (t *Tournament) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.record())
}

// UnmarshalJSON reads a single tournament record with the lenient load rules.
func (t *Tournament) UnmarshalJSON(data []byte) error {
	var rec tournamentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	out, err := rec.tournament()
	*t = *out
	return err
}

func (t *Tournament) record() tournamentRecord {
	qualifiers := t.KnockoutQualifiers
	rec := tournamentRecord{
		ID:                 t.ID,
		Name:               t.Name,
		Date:               t.Date,
		Description:        t.Description,
		Status:             t.Status,
		CurrentPhase:       t.CurrentPhase,
		TeamsPerGroup:      t.TeamsPerGroup(),
		NumberOfGroups:     t.NumberOfGroups,
		KnockoutQualifiers: &qualifiers,
		ThirdPlaceMatch:    t.ThirdPlaceMatch,
		MaxScore:           t.MaxScore,
		Teams:              make([]teamRecord, 0, t.Teams.Len()),
		Matches:            make([]matchRecord, 0, len(t.Matches)),
		Groups:             make([][]string, 0, len(t.Groups)),
	}
	for _, team := range t.Teams.All() {
		rec.Teams = append(rec.Teams, teamRecord{
			ID:          team.ID,
			Name:        team.Name,
			Players:     append([]string{}, team.Players...),
			GroupPoints: team.Tally.Points,
			GroupWins:   team.Tally.Wins,
			GroupDraws:  team.Tally.Draws,
			GroupLosses: team.Tally.Losses,
		})
	}
	for _, g := range t.Groups {
		rec.Groups = append(rec.Groups, append([]string{}, g...))
	}
	for _, m := range t.Matches {
		rec.Matches = append(rec.Matches, matchToRecord(m))
	}
	return rec
}

func matchToRecord(m Match) matchRecord {
	b := m.Base()
	mr := matchRecord{
		ID:         b.ID,
		Phase:      m.Phase(),
		Team1ID:    b.Team1ID,
		Team2ID:    b.Team2ID,
		Team1Score: b.Score1,
		Team2Score: b.Score2,
		Completed:  b.Completed,
	}
	switch v := m.(type) {
	case *GroupMatch:
		g := v.Group
		mr.GroupIndex = &g
	case *KnockoutMatch:
		p := v.Position
		mr.Round = v.Round
		mr.Position = &p
		mr.WinnerID = v.WinnerID
		mr.ThirdPlace = v.ThirdPlace
	}
	return mr
}

// tournament rebuilds an entity, defaulting or dropping whatever is missing or inconsistent.
// tournament rebuilds the record, dropping what cannot be reconciled. Dropped
// duplicate teams are reported as ErrCorruptRecord alongside the result.
func (rec *tournamentRecord) tournament() (*Tournament, error) {
	t := New(rec.ID, rec.Name, rec.Date, rec.Description)

	switch rec.Status {
	case StatusGroup, StatusKnockout, StatusCompleted:
		t.Status = rec.Status
	}
	switch rec.CurrentPhase {
	case PhaseGroup, PhaseKnockout:
		t.CurrentPhase = rec.CurrentPhase
	default:
		if t.Status != StatusGroup {
			t.CurrentPhase = PhaseKnockout
		}
	}
	if rec.NumberOfGroups > 0 {
		t.NumberOfGroups = rec.NumberOfGroups
	}
	if rec.KnockoutQualifiers != nil && *rec.KnockoutQualifiers >= 0 {
		t.KnockoutQualifiers = *rec.KnockoutQualifiers
	}
	if rec.MaxScore > 0 {
		t.MaxScore = rec.MaxScore
	}
	t.ThirdPlaceMatch = rec.ThirdPlaceMatch

	var errs []error
	for _, tr := range rec.Teams {
		if tr.ID == "" {
			continue
		}
		err := t.Teams.Add(&Team{
			ID:      tr.ID,
			Name:    tr.Name,
			Players: append([]string{}, tr.Players...),
			Tally: Tally{
				Points: tr.GroupPoints,
				Wins:   tr.GroupWins,
				Draws:  tr.GroupDraws,
				Losses: tr.GroupLosses,
			},
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: tournament %s: %w", ErrCorruptRecord, rec.ID, err))
		}
	}

	placed := make(map[string]bool, t.Teams.Len())
	for _, g := range rec.Groups {
		group := make([]string, 0, len(g))
		for _, id := range g {
			if t.Teams.Has(id) && !placed[id] {
				placed[id] = true
				group = append(group, id)
			}
		}
		t.Groups = append(t.Groups, group)
	}

	matchIDs := make(map[string]bool, len(rec.Matches))
	for i := range rec.Matches {
		m, ok := rec.Matches[i].match(t, t.MaxScore)
		if !ok || matchIDs[m.Base().ID] {
			continue
		}
		matchIDs[m.Base().ID] = true
		t.Matches = append(t.Matches, m)
	}
	return t, errors.Join(errs...)
}

func (mr *matchRecord) match(t *Tournament, maxScore int) (Match, bool) {
	team1, team2 := mr.Team1ID, mr.Team2ID
	if team1 == "" && mr.Team1 != nil {
		team1 = mr.Team1.ID
	}
	if team2 == "" && mr.Team2 != nil {
		team2 = mr.Team2.ID
	}
	for _, id := range []string{team1, team2} {
		if id != "" && !t.Teams.Has(id) {
			return nil, false
		}
	}
	if mr.ID == "" || (team1 != "" && team1 == team2) {
		return nil, false
	}

	base := MatchBase{ID: mr.ID, Team1ID: team1, Team2ID: team2, Completed: mr.Completed}
	if mr.Team1Score != nil {
		v := ClampScore(*mr.Team1Score, maxScore)
		base.Score1 = &v
	}
	if mr.Team2Score != nil {
		v := ClampScore(*mr.Team2Score, maxScore)
		base.Score2 = &v
	}
	if base.Completed && (!base.HasTeams() || !base.HasScores()) {
		base.Completed = false
	}

	phase := mr.Phase
	if phase == "" {
		phase = PhaseGroup
		if mr.Round > 0 {
			phase = PhaseKnockout
		}
	}
	switch phase {
	case PhaseKnockout:
		km := &KnockoutMatch{MatchBase: base, Round: mr.Round, ThirdPlace: mr.ThirdPlace}
		if km.Round < 1 {
			km.Round = 1
		}
		if mr.Position != nil && *mr.Position >= 0 {
			km.Position = *mr.Position
		}
		if km.Completed {
			winner, _, ok := km.Decide()
			if !ok {
				km.Completed = false
			} else {
				km.WinnerID = winner
			}
		}
		return km, true
	case PhaseGroup:
		if !base.HasTeams() {
			return nil, false
		}
		gm := &GroupMatch{MatchBase: base}
		if mr.GroupIndex != nil && *mr.GroupIndex >= 0 {
			gm.Group = *mr.GroupIndex
		}
		return gm, true
	default:
		return nil, false
	}
}
