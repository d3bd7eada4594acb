// Package api exposes the tournament engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/pong/internal/adapters/repository"
	service "github.com/okian/pong/internal/app"
	"github.com/okian/pong/internal/domain/model"
	"github.com/okian/pong/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	List(ctx context.Context) ([]*model.Tournament, error)
	Get(ctx context.Context, id string) (*model.Tournament, error)
	Create(ctx context.Context, t *model.Tournament) (*model.Tournament, error)
	Replace(ctx context.Context, t *model.Tournament) (*model.Tournament, error)
	Delete(ctx context.Context, id string) error

	AddTeam(ctx context.Context, id string, team service.TeamInput) (*model.Tournament, error)
	UpdateTeam(ctx context.Context, id string, team service.TeamInput) (*model.Tournament, error)
	RemoveTeam(ctx context.Context, id, teamID string) (*model.Tournament, error)
	SetGroupCount(ctx context.Context, id string, groups int) (*model.Tournament, error)
	Reshuffle(ctx context.Context, id string) (*model.Tournament, error)

	RecordScore(ctx context.Context, id, matchID string, score1, score2 int, complete bool) (*model.Tournament, error)
	CompleteMatch(ctx context.Context, id, matchID string) (*model.Tournament, error)
	StartKnockout(ctx context.Context, id string) (*model.Tournament, error)

	Standings(ctx context.Context, id string) (*service.StandingsView, error)
	Bracket(ctx context.Context, id string) (*service.BracketView, error)
	Readiness(ctx context.Context, id string) (*service.ReadinessView, error)

	// Idempotency keys.
	SeenAndRecord(ctx context.Context, key string) bool
	Unrecord(ctx context.Context, key string)
	Bind(ctx context.Context, key, tournamentID string)
	Lookup(ctx context.Context, key string) (string, bool)
}

type mount struct {
	pattern string
	handler http.Handler
}

// Server wires HTTP routes for the tournament API.
type Server struct {
	deps    Dependencies
	stats   StatsProvider
	health  *HealthHandler
	limiter *ipLimiter

	rps     float64
	burst   int
	origins []string
	mounts  []mount
	logger  logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:    deps,
		stats:   stats,
		health:  NewHealthHandler(),
		burst:   1,
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.NamedOrDiscard("api")
	}
	if s.rps > 0 {
		s.limiter = newIPLimiter(s.rps, s.burst)
	}
	return s
}

// Routes builds the router with every API route and mounted handler.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", idempotencyHeader},
		ExposedHeaders:   []string{replayedHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}

	r.Get("/healthz", MetricsMiddleware(s.health.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(NewStatsHandler(s.stats).HandleStats, "stats"))

	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.handleList, "list_tournaments"))
		r.Post("/", MetricsMiddleware(s.mutation("create", http.StatusCreated, s.create), "create_tournament"))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", MetricsMiddleware(s.handleGet, "get_tournament"))
			r.Put("/", MetricsMiddleware(s.mutation("replace", http.StatusOK, s.replace), "replace_tournament"))
			r.Delete("/", MetricsMiddleware(s.mutation("delete", http.StatusNoContent, s.delete), "delete_tournament"))

			r.Post("/teams", MetricsMiddleware(s.mutation("add_team", http.StatusCreated, s.addTeam), "add_team"))
			r.Put("/teams/{teamID}", MetricsMiddleware(s.mutation("update_team", http.StatusOK, s.updateTeam), "update_team"))
			r.Delete("/teams/{teamID}", MetricsMiddleware(s.mutation("remove_team", http.StatusOK, s.removeTeam), "remove_team"))

			r.Put("/groups", MetricsMiddleware(s.mutation("set_group_count", http.StatusOK, s.setGroups), "set_group_count"))
			r.Post("/groups/shuffle", MetricsMiddleware(s.mutation("reshuffle", http.StatusOK, s.reshuffle), "reshuffle"))

			r.Put("/matches/{matchID}/score", MetricsMiddleware(s.mutation("record_score", http.StatusOK, s.recordScore), "record_score"))
			r.Post("/matches/{matchID}/complete", MetricsMiddleware(s.mutation("complete_match", http.StatusOK, s.completeMatch), "complete_match"))

			r.Post("/knockout", MetricsMiddleware(s.mutation("start_knockout", http.StatusOK, s.startKnockout), "start_knockout"))
			r.Get("/knockout/readiness", MetricsMiddleware(s.handleReadiness, "readiness"))
			r.Get("/standings", MetricsMiddleware(s.handleStandings, "standings"))
			r.Get("/bracket", MetricsMiddleware(s.handleBracket, "bracket"))
		})
	})

	for _, m := range s.mounts {
		r.Mount(m.pattern, m.handler)
	}
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps engine errors to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrInvalidConfig):
		return http.StatusBadRequest, "invalid_config"
	case errors.Is(err, repository.ErrInvalidCompletion):
		return http.StatusBadRequest, "invalid_completion"
	case errors.Is(err, repository.ErrPhaseLocked):
		return http.StatusConflict, "phase_locked"
	case errors.Is(err, repository.ErrMatchLocked):
		return http.StatusConflict, "match_locked"
	case errors.Is(err, repository.ErrNotReady):
		return http.StatusConflict, "not_ready"
	case errors.Is(err, ErrIdempotentInFlight):
		return http.StatusConflict, "idempotency_conflict"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// fail writes err with its mapped status; server-side failures are logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path), logger.String("method", r.Method), logger.Error(err))
	}
	writeError(w, status, code, err)
}

// decode reads a JSON body of at most maxBodyBytes into v.
func decode(w http.ResponseWriter, r *http.Request, op string, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return NewKind(op, ErrBadRequest)
		}
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}
