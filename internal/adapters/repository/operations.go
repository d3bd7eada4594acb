package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/pong/internal/domain/bracket"
	"github.com/okian/pong/internal/domain/model"
	"github.com/okian/pong/internal/domain/schedule"
	"github.com/okian/pong/internal/domain/standings"
	"github.com/okian/pong/pkg/metrics"
)

// Create implements Store.Create. A missing id is generated; zero
// configuration fields get defaults.
func (s *SnapshotStore) Create(ctx context.Context, t *model.Tournament) (*model.Tournament, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil tournament", ErrInvalidConfig)
	}
	c := t.Clone()
	if strings.TrimSpace(c.ID) == "" {
		c.ID = s.newID()
	}

	// The allocator is only touched under the write lock.
	err := s.commit(ctx, "create", model.ChangeCreated, c.ID, func(next *snapshot) error {
		if _, ok := next.byID[c.ID]; ok {
			return fmt.Errorf("%w: tournament %s already exists", ErrInvalidConfig, c.ID)
		}
		if err := s.prepare(c, true); err != nil {
			return err
		}
		next.put(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Replace implements Store.Replace.
func (s *SnapshotStore) Replace(ctx context.Context, t *model.Tournament) (*model.Tournament, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil tournament", ErrInvalidConfig)
	}
	c := t.Clone()

	err := s.commit(ctx, "replace", model.ChangeUpdated, c.ID, func(next *snapshot) error {
		if _, ok := next.byID[c.ID]; !ok {
			return fmt.Errorf("%w: tournament %s", ErrNotFound, c.ID)
		}
		if err := s.prepare(c, false); err != nil {
			return err
		}
		next.put(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// prepare fills defaults, validates t and refolds its standings. With group
// set, a group-phase tournament without groups is allocated first.
func (s *SnapshotStore) prepare(t *model.Tournament, group bool) error {
	s.fillDefaults(t)
	if group && t.Status == model.StatusGroup && len(t.Groups) == 0 {
		if err := s.regroup(t); err != nil {
			return err
		}
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	s.calculator.Apply(t)
	return nil
}

// Delete implements Store.Delete.
func (s *SnapshotStore) Delete(ctx context.Context, id string) error {
	return s.commit(ctx, "delete", model.ChangeDeleted, id, func(next *snapshot) error {
		if _, ok := next.byID[id]; !ok {
			return fmt.Errorf("%w: tournament %s", ErrNotFound, id)
		}
		next.remove(id)
		return nil
	})
}

// AddTeam implements Store.AddTeam. Groups and the group schedule are rebuilt.
func (s *SnapshotStore) AddTeam(ctx context.Context, id string, in TeamInput) (*model.Tournament, error) {
	team := &model.Team{ID: strings.TrimSpace(in.ID), Name: strings.TrimSpace(in.Name), Players: trimAll(in.Players)}
	if team.ID == "" {
		team.ID = s.newID()
	}
	if err := team.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return s.mutate(ctx, "add_team", id, func(t *model.Tournament) error {
		if err := groupPhase(t); err != nil {
			return err
		}
		if err := t.Teams.Add(team); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return s.regroup(t)
	})
}

// UpdateTeam implements Store.UpdateTeam. Empty fields keep their value; the
// schedule is untouched.
func (s *SnapshotStore) UpdateTeam(ctx context.Context, id string, in TeamInput) (*model.Tournament, error) {
	return s.mutate(ctx, "update_team", id, func(t *model.Tournament) error {
		team, ok := t.Teams.Get(in.ID)
		if !ok {
			return fmt.Errorf("%w: team %s", ErrNotFound, in.ID)
		}
		if name := strings.TrimSpace(in.Name); name != "" {
			team.Name = name
		}
		if in.Players != nil {
			team.Players = trimAll(in.Players)
		}
		if err := team.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return nil
	})
}

// RemoveTeam implements Store.RemoveTeam. Matches involving the team go with
// it; groups and the group schedule are rebuilt.
func (s *SnapshotStore) RemoveTeam(ctx context.Context, id, teamID string) (*model.Tournament, error) {
	return s.mutate(ctx, "remove_team", id, func(t *model.Tournament) error {
		if err := groupPhase(t); err != nil {
			return err
		}
		if !t.Teams.Remove(teamID) {
			return fmt.Errorf("%w: team %s", ErrNotFound, teamID)
		}
		return s.regroup(t)
	})
}

// SetGroupCount implements Store.SetGroupCount.
func (s *SnapshotStore) SetGroupCount(ctx context.Context, id string, groups int) (*model.Tournament, error) {
	return s.mutate(ctx, "set_group_count", id, func(t *model.Tournament) error {
		if err := groupPhase(t); err != nil {
			return err
		}
		if n := t.Teams.Len(); groups < 1 || (n > 0 && groups > n) {
			return fmt.Errorf("%w: %d groups for %d teams", ErrInvalidConfig, groups, n)
		}
		t.NumberOfGroups = groups
		return s.regroup(t)
	})
}

// Reshuffle implements Store.Reshuffle.
func (s *SnapshotStore) Reshuffle(ctx context.Context, id string) (*model.Tournament, error) {
	return s.mutate(ctx, "reshuffle", id, func(t *model.Tournament) error {
		if err := groupPhase(t); err != nil {
			return err
		}
		return s.regroup(t)
	})
}

// RecordScore implements Store.RecordScore.
func (s *SnapshotStore) RecordScore(ctx context.Context, id, matchID string, score1, score2 int, complete bool) (*model.Tournament, error) {
	var finished bool
	out, err := s.mutate(ctx, "record_score", id, func(t *model.Tournament) error {
		switch m := t.FindMatch(matchID).(type) {
		case *model.GroupMatch:
			if err := groupPhase(t); err != nil {
				return err
			}
			m.SetScores(score1, score2, t.MaxScore)
			if complete {
				m.Completed = true
			}
			if m.Completed {
				s.calculator.Apply(t)
			}
			return nil
		case *model.KnockoutMatch:
			if m.Completed {
				return fmt.Errorf("%w: %s", ErrMatchLocked, matchID)
			}
			if !m.HasTeams() {
				return fmt.Errorf("%w: %w", ErrInvalidCompletion, bracket.ErrUnscheduled)
			}
			m.SetScores(score1, score2, t.MaxScore)
			if !complete {
				return nil
			}
			var err error
			finished, err = completeKnockout(t, m)
			return err
		default:
			return fmt.Errorf("%w: match %s", ErrNotFound, matchID)
		}
	})
	if err == nil && finished {
		metrics.RecordTournamentCompleted()
	}
	return out, err
}

// CompleteMatch implements Store.CompleteMatch.
func (s *SnapshotStore) CompleteMatch(ctx context.Context, id, matchID string) (*model.Tournament, error) {
	var finished bool
	out, err := s.mutate(ctx, "complete_match", id, func(t *model.Tournament) error {
		switch m := t.FindMatch(matchID).(type) {
		case *model.GroupMatch:
			if err := groupPhase(t); err != nil {
				return err
			}
			if !m.HasScores() {
				return fmt.Errorf("%w: %w", ErrInvalidCompletion, bracket.ErrIncompleteScore)
			}
			m.Completed = true
			s.calculator.Apply(t)
			return nil
		case *model.KnockoutMatch:
			var err error
			finished, err = completeKnockout(t, m)
			return err
		default:
			return fmt.Errorf("%w: match %s", ErrNotFound, matchID)
		}
	})
	if err == nil && finished {
		metrics.RecordTournamentCompleted()
	}
	return out, err
}

// StartKnockout implements Store.StartKnockout. Group tables are seeded into
// a single-elimination bracket.
func (s *SnapshotStore) StartKnockout(ctx context.Context, id string) (*model.Tournament, error) {
	out, err := s.mutate(ctx, "start_knockout", id, func(t *model.Tournament) error {
		if err := bracket.Readiness(t); err != nil {
			if errors.Is(err, bracket.ErrWrongPhase) {
				return fmt.Errorf("%w: %w", ErrPhaseLocked, err)
			}
			return fmt.Errorf("%w: %w", ErrNotReady, err)
		}
		s.calculator.Apply(t)
		seeds := schedule.Seeds(standings.Tables(t), t.KnockoutQualifiers)
		matches, err := schedule.Bracket(seeds, t.ThirdPlaceMatch, s.newID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNotReady, err)
		}
		for _, m := range matches {
			t.Matches = append(t.Matches, m)
		}
		t.Status = model.StatusKnockout
		t.CurrentPhase = model.PhaseKnockout
		return nil
	})
	if err == nil {
		metrics.RecordKnockoutStarted()
	}
	return out, err
}

// completeKnockout runs the bracket propagator and reports whether the
// tournament finished.
func completeKnockout(t *model.Tournament, m *model.KnockoutMatch) (bool, error) {
	if err := bracket.Complete(t, m.ID); err != nil {
		if errors.Is(err, bracket.ErrAlreadyCompleted) {
			return false, fmt.Errorf("%w: %w", ErrMatchLocked, err)
		}
		return false, fmt.Errorf("%w: %w", ErrInvalidCompletion, err)
	}
	return t.Status == model.StatusCompleted, nil
}

// regroup reallocates every team and rebuilds the group schedule. When there
// are fewer teams than configured groups, each team gets its own group.
func (s *SnapshotStore) regroup(t *model.Tournament) error {
	ids := t.Teams.IDs()
	g := t.NumberOfGroups
	if n := len(ids); n > 0 && n < g {
		g = n
	}
	groups, err := s.allocator.Allocate(ids, g)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	t.Groups = groups

	kept := make([]model.Match, 0, len(t.Matches))
	for _, m := range t.Matches {
		if m.Phase() != model.PhaseGroup {
			kept = append(kept, m)
		}
	}
	for _, m := range schedule.GroupMatches(groups, s.newID) {
		kept = append(kept, m)
	}
	t.Matches = kept
	t.Teams.ResetTallies()
	return nil
}

func (s *SnapshotStore) fillDefaults(t *model.Tournament) {
	if t.Status == "" {
		t.Status = model.StatusGroup
	}
	if t.CurrentPhase == "" {
		t.CurrentPhase = model.PhaseGroup
		if t.Status != model.StatusGroup {
			t.CurrentPhase = model.PhaseKnockout
		}
	}
	if t.NumberOfGroups == 0 {
		t.NumberOfGroups = model.DefaultNumberOfGroups
	}
	if t.MaxScore == 0 {
		t.MaxScore = s.defaultMaxScore
	}
}

// groupPhase rejects changes to teams, groups and group results once the
// bracket exists.
func groupPhase(t *model.Tournament) error {
	if t.CurrentPhase != model.PhaseGroup || t.Status != model.StatusGroup {
		return fmt.Errorf("%w: tournament %s is in the %s phase", ErrPhaseLocked, t.ID, t.Status)
	}
	return nil
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
