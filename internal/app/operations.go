package service

import (
	"context"

	"github.com/okian/pong/internal/adapters/repository"
	"github.com/okian/pong/internal/domain/dedupe"
	"github.com/okian/pong/internal/domain/model"
	"github.com/okian/pong/pkg/logger"
	"github.com/okian/pong/pkg/metrics"
)

// TeamInput is the caller-supplied part of a team.
type TeamInput = repository.TeamInput

// List returns every tournament in creation order.
func (s *Service) List(ctx context.Context) ([]*model.Tournament, error) {
	st, err := s.current()
	if err != nil {
		return nil, err
	}
	return st.List(ctx), nil
}

// Get returns one tournament.
func (s *Service) Get(ctx context.Context, id string) (*model.Tournament, error) {
	st, err := s.current()
	if err != nil {
		return nil, err
	}
	return st.Get(ctx, id)
}

// Create registers a new tournament; groups and the group schedule are built
// from whatever teams it carries.
func (s *Service) Create(ctx context.Context, t *model.Tournament) (*model.Tournament, error) {
	return s.run(ctx, "create", "", func(st repository.Store) (*model.Tournament, error) {
		return st.Create(ctx, t)
	})
}

// Replace overwrites a stored tournament.
func (s *Service) Replace(ctx context.Context, t *model.Tournament) (*model.Tournament, error) {
	id := ""
	if t != nil {
		id = t.ID
	}
	return s.run(ctx, "replace", id, func(st repository.Store) (*model.Tournament, error) {
		return st.Replace(ctx, t)
	})
}

// Delete removes a tournament.
func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.run(ctx, "delete", id, func(st repository.Store) (*model.Tournament, error) {
		return nil, st.Delete(ctx, id)
	})
	return err
}

// AddTeam registers a team and regenerates the groups.
func (s *Service) AddTeam(ctx context.Context, id string, team TeamInput) (*model.Tournament, error) {
	return s.run(ctx, "add_team", id, func(st repository.Store) (*model.Tournament, error) {
		return st.AddTeam(ctx, id, team)
	})
}

// UpdateTeam renames a team or changes its players.
func (s *Service) UpdateTeam(ctx context.Context, id string, team TeamInput) (*model.Tournament, error) {
	return s.run(ctx, "update_team", id, func(st repository.Store) (*model.Tournament, error) {
		return st.UpdateTeam(ctx, id, team)
	})
}

// RemoveTeam drops a team with its matches and regenerates the groups.
func (s *Service) RemoveTeam(ctx context.Context, id, teamID string) (*model.Tournament, error) {
	return s.run(ctx, "remove_team", id, func(st repository.Store) (*model.Tournament, error) {
		return st.RemoveTeam(ctx, id, teamID)
	})
}

// SetGroupCount changes the number of groups and regenerates them.
func (s *Service) SetGroupCount(ctx context.Context, id string, groups int) (*model.Tournament, error) {
	return s.run(ctx, "set_group_count", id, func(st repository.Store) (*model.Tournament, error) {
		return st.SetGroupCount(ctx, id, groups)
	})
}

// Reshuffle reallocates the teams into fresh random groups.
func (s *Service) Reshuffle(ctx context.Context, id string) (*model.Tournament, error) {
	return s.run(ctx, "reshuffle", id, func(st repository.Store) (*model.Tournament, error) {
		return st.Reshuffle(ctx, id)
	})
}

// RecordScore stores a match result, completing the match when asked.
func (s *Service) RecordScore(ctx context.Context, id, matchID string, score1, score2 int, complete bool) (*model.Tournament, error) {
	return s.run(ctx, "record_score", id, func(st repository.Store) (*model.Tournament, error) {
		return st.RecordScore(ctx, id, matchID, score1, score2, complete)
	})
}

// CompleteMatch completes a scored match.
func (s *Service) CompleteMatch(ctx context.Context, id, matchID string) (*model.Tournament, error) {
	return s.run(ctx, "complete_match", id, func(st repository.Store) (*model.Tournament, error) {
		return st.CompleteMatch(ctx, id, matchID)
	})
}

// StartKnockout seeds the bracket from the group tables.
func (s *Service) StartKnockout(ctx context.Context, id string) (*model.Tournament, error) {
	return s.run(ctx, "start_knockout", id, func(st repository.Store) (*model.Tournament, error) {
		return st.StartKnockout(ctx, id)
	})
}

func (s *Service) run(ctx context.Context, op, id string, fn func(st repository.Store) (*model.Tournament, error)) (*model.Tournament, error) {
	st, err := s.current()
	if err != nil {
		return nil, err
	}
	t, err := fn(st)
	if err != nil {
		s.logger.Debug(ctx, "operation failed",
			logger.String("op", op), logger.String("tournament", id), logger.Error(err))
		return nil, err
	}
	fields := []logger.Field{logger.String("op", op), logger.String("tournament", id)}
	if t != nil {
		fields = []logger.Field{
			logger.String("op", op),
			logger.String("tournament", t.ID),
			logger.String("status", string(t.Status)),
		}
	}
	s.logger.Info(ctx, "tournament updated", fields...)
	return t, nil
}

// SeenAndRecord atomically checks if an idempotency key was seen and records
// it if not. Returns true if the key was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, key string) bool {
	d := s.keys()
	if d == nil {
		return false
	}
	seen := d.SeenAndRecord(ctx, key)
	if seen {
		metrics.RecordIdempotentReplay()
	}
	return seen
}

// Unrecord forgets an idempotency key so the request can be retried.
func (s *Service) Unrecord(ctx context.Context, key string) {
	if d := s.keys(); d != nil {
		d.Unrecord(ctx, key)
	}
}

// Bind remembers which tournament an idempotency key produced.
func (s *Service) Bind(ctx context.Context, key, tournamentID string) {
	if d := s.keys(); d != nil {
		d.Bind(ctx, key, tournamentID)
	}
}

// Lookup returns the tournament an idempotency key produced.
func (s *Service) Lookup(ctx context.Context, key string) (string, bool) {
	d := s.keys()
	if d == nil {
		return "", false
	}
	return d.Lookup(ctx, key)
}

func (s *Service) keys() dedupe.Deduper {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil
	}
	return s.deduper
}
