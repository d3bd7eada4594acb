package model

// Phase tags a match (and a tournament's current stage).
type Phase string

// Match phases.
const (
	PhaseGroup    Phase = "group"
	PhaseKnockout Phase = "knockout"
)

// Match is either a *GroupMatch or a *KnockoutMatch.
type Match interface {
	Base() *MatchBase
	Phase() Phase
	cloneMatch() Match
}

// MatchBase holds the fields shared by every match.
type MatchBase struct {
	ID        string
	Team1ID   string
	Team2ID   string
	Score1    *int
	Score2    *int
	Completed bool
}

// Base returns the shared match fields.
func (b *MatchBase) Base() *MatchBase { return b }

// HasTeams reports whether both team slots are filled.
func (b *MatchBase) HasTeams() bool { return b.Team1ID != "" && b.Team2ID != "" }

// HasScores reports whether both scores are recorded.
func (b *MatchBase) HasScores() bool { return b.Score1 != nil && b.Score2 != nil }

// Involves reports whether teamID plays in the match.
func (b *MatchBase) Involves(teamID string) bool {
	return teamID != "" && (b.Team1ID == teamID || b.Team2ID == teamID)
}

// Scores returns the recorded scores, zero when unset.
func (b *MatchBase) Scores() (int, int) {
	var s1, s2 int
	if b.Score1 != nil {
		s1 = *b.Score1
	}
	if b.Score2 != nil {
		s2 = *b.Score2
	}
	return s1, s2
}

// SetScores records both scores clamped to [0, maxScore].
func (b *MatchBase) SetScores(s1, s2, maxScore int) {
	c1, c2 := ClampScore(s1, maxScore), ClampScore(s2, maxScore)
	b.Score1, b.Score2 = &c1, &c2
}

// Decide returns the winner and loser when both scores are set and differ.
func (b *MatchBase) Decide() (winner, loser string, ok bool) {
	if !b.HasTeams() || !b.HasScores() {
		return "", "", false
	}
	s1, s2 := b.Scores()
	switch {
	case s1 > s2:
		return b.Team1ID, b.Team2ID, true
	case s2 > s1:
		return b.Team2ID, b.Team1ID, true
	default:
		return "", "", false
	}
}

func (b MatchBase) clone() MatchBase {
	c := b
	if b.Score1 != nil {
		v := *b.Score1
		c.Score1 = &v
	}
	if b.Score2 != nil {
		v := *b.Score2
		c.Score2 = &v
	}
	return c
}

// ClampScore bounds a score to [0, maxScore]. A non-positive maxScore disables the cap.
func ClampScore(v, maxScore int) int {
	if v < 0 {
		return 0
	}
	if maxScore > 0 && v > maxScore {
		return maxScore
	}
	return v
}

// GroupMatch is a round-robin match inside one group.
type GroupMatch struct {
	MatchBase
	Group int
}

// Phase implements Match.
func (m *GroupMatch) Phase() Phase { return PhaseGroup }

func (m *GroupMatch) cloneMatch() Match {
	return &GroupMatch{MatchBase: m.MatchBase.clone(), Group: m.Group}
}

// KnockoutMatch is a single-elimination bracket slot addressed by round and position.
type KnockoutMatch struct {
	MatchBase
	Round      int
	Position   int
	WinnerID   string
	ThirdPlace bool
}

// Phase implements Match.
func (m *KnockoutMatch) Phase() Phase { return PhaseKnockout }

func (m *KnockoutMatch) cloneMatch() Match {
	c := *m
	c.MatchBase = m.MatchBase.clone()
	return &c
}

// Place puts teamID into the first empty slot and reports whether a slot was free.
func (m *KnockoutMatch) Place(teamID string) bool {
	switch {
	case m.Team1ID == "":
		m.Team1ID = teamID
	case m.Team2ID == "":
		m.Team2ID = teamID
	default:
		return false
	}
	return true
}
