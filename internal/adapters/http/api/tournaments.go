package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/pong/internal/domain/model"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
)

// mutateFunc applies one engine mutation for a request. A nil tournament
// means the tournament no longer exists (delete).
type mutateFunc func(w http.ResponseWriter, r *http.Request) (*model.Tournament, error)

// mutation adapts fn into a handler that honors the Idempotency-Key header:
// a replayed key answers with the current state without applying fn again,
// and a failed mutation releases its key.
func (s *Server) mutation(op string, status int, fn mutateFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
		scoped := ""
		if key != "" {
			scoped = r.Method + " " + r.URL.Path + " " + key
			if s.deps.SeenAndRecord(ctx, scoped) {
				s.replay(w, r, op, scoped)
				return
			}
		}

		t, err := fn(w, r)
		if err != nil {
			if scoped != "" {
				s.deps.Unrecord(ctx, scoped)
			}
			s.fail(w, r, err)
			return
		}

		if scoped != "" {
			ref := chi.URLParam(r, "id")
			if t != nil {
				ref = t.ID
			}
			s.deps.Bind(ctx, scoped, ref)
		}
		if t == nil {
			w.WriteHeader(status)
			return
		}
		writeJSON(w, status, t)
	}
}

func (s *Server) replay(w http.ResponseWriter, r *http.Request, op, scoped string) {
	ref, ok := s.deps.Lookup(r.Context(), scoped)
	if !ok {
		s.fail(w, r, NewKind("api."+op, ErrIdempotentInFlight))
		return
	}
	w.Header().Set(replayedHeader, "true")
	t, err := s.deps.Get(r.Context(), ref)
	if err != nil {
		// The tournament is gone, which is the outcome a replayed delete expects.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleList handles GET /tournaments.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.List(r.Context())
	if err != nil {
		s.fail(w, r, Wrap("api.list", err))
		return
	}
	if list == nil {
		list = []*model.Tournament{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGet handles GET /tournaments/{id}.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.deps.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, Wrap("api.get", err))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) (*model.Tournament, error) {
	const op = "api.create"
	var req tournamentRequest
	if err := decode(w, r, op, &req); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, WrapKind(op, ErrBadRequest, err)
	}
	t, err := req.tournament()
	if err != nil {
		return nil, WrapKind(op, ErrBadRequest, err)
	}
	return s.deps.Create(r.Context(), t)
}

// replace takes a full tournament record, in the persisted shape.
func (s *Server) replace(w http.ResponseWriter, r *http.Request) (*model.Tournament, error) {
	const op = "api.replace"
	raw := json.RawMessage{}
	if err := decode(w, r, op, &raw); err != nil {
		return nil, err
	}
	var t model.Tournament
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, WrapKind(op, ErrBadRequest, err)
	}
	t.ID = chi.URLParam(r, "id")
	return s.deps.Replace(r.Context(), &t)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) (*model.Tournament, error) {
	return nil, s.deps.Delete(r.Context(), chi.URLParam(r, "id"))
}

func (s *Server) addTeam(w http.ResponseWriter, r *http.Request) (*model.Tournament, error) {
	var req teamRequest
	if err := decode(w, r, "api.add_team", &req); err != nil {
		return nil, err
	}
	return s.deps.AddTeam(r.Context(), chi.URLParam(r, "id"), req.input(""))
}

func (s *Server) updateTeam(w http.ResponseWriter, r *http.Request) (*model.Tournament, error) {
	var req teamRequest
	if err := decode(w, r, "api.update_team", &req); err != nil {
		return nil, err
	}
	return s.deps.UpdateTeam(r.Context(), chi.URLParam(r, "id"), req.input(chi.URLParam(r, "teamID")))
}

func (s *Server) removeTeam(w http.ResponseWriter, r *http.Request) (*model.Tournament, error) {
	return s.deps.RemoveTeam(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "teamID"))
}

func (s *Server) setGroups(w http.ResponseWriter, r *http.Request) (*model.Tournament, error) {
	const op = "api.set_group_count"
	var req groupsRequest
	if err := decode(w, r, op, &req); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, WrapKind(op, ErrBadRequest, err)
	}
	return s.deps.SetGroupCount(r.Context(), chi.URLParam(r, "id"), req.NumberOfGroups)
}

func (s *Server) reshuffle(w http.ResponseWriter, r *http.Request) (*model.Tournament, error) {
	return s.deps.Reshuffle(r.Context(), chi.URLParam(r, "id"))
}

func (s *Server) recordScore(w http.ResponseWriter, r *http.Request) (*model.Tournament, error) {
	const op = "api.record_score"
	var req scoreRequest
	if err := decode(w, r, op, &req); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, WrapKind(op, ErrBadRequest, err)
	}
	return s.deps.RecordScore(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "matchID"),
		*req.Team1Score, *req.Team2Score, req.Complete)
}

func (s *Server) completeMatch(w http.ResponseWriter, r *http.Request) (*model.Tournament, error) {
	return s.deps.CompleteMatch(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "matchID"))
}

func (s *Server) startKnockout(w http.ResponseWriter, r *http.Request) (*model.Tournament, error) {
	return s.deps.StartKnockout(r.Context(), chi.URLParam(r, "id"))
}

// handleReadiness handles GET /tournaments/{id}/knockout/readiness.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Readiness(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, Wrap("api.readiness", err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleStandings handles GET /tournaments/{id}/standings.
func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Standings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, Wrap("api.standings", err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleBracket handles GET /tournaments/{id}/bracket.
func (s *Server) handleBracket(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Bracket(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, Wrap("api.bracket", err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}
