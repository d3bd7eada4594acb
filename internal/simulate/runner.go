package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	service "github.com/okian/pong/internal/app"
	"github.com/okian/pong/internal/domain/model"
	"github.com/okian/pong/pkg/logger"
)

type createRequest struct {
	Name               string `json:"name"`
	Date               string `json:"date"`
	Description        string `json:"description"`
	KnockoutQualifiers int    `json:"knockoutQualifiers"`
	ThirdPlaceMatch    bool   `json:"thirdPlaceMatch"`
	MaxScore           int    `json:"maxScore"`
}

type teamRequest struct {
	Name    string   `json:"name"`
	Players []string `json:"players"`
}

type scoreRequest struct {
	Team1Score int  `json:"team1Score"`
	Team2Score int  `json:"team2Score"`
	Complete   bool `json:"complete"`
}

// Runner plays one simulated tournament against a server.
type Runner struct {
	cfg    Config
	client *client
	logger logger.Logger
	names  *namer

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRunner validates cfg and fills its defaults.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	}
	if cfg.Teams == 0 {
		cfg.Teams = DefaultTeams
	}
	if cfg.Groups == 0 {
		cfg.Groups = DefaultGroups
	}
	if cfg.MaxScore == 0 {
		cfg.MaxScore = DefaultMaxScore
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}
	switch {
	case cfg.Teams < 2:
		return nil, fmt.Errorf("%w: need at least 2 teams, got %d", ErrInvalidConfig, cfg.Teams)
	case cfg.Groups < 1 || cfg.Groups > cfg.Teams:
		return nil, fmt.Errorf("%w: %d groups for %d teams", ErrInvalidConfig, cfg.Groups, cfg.Teams)
	case cfg.Qualifiers < 0:
		return nil, fmt.Errorf("%w: qualifiers must not be negative", ErrInvalidConfig)
	case cfg.MaxScore < 1:
		return nil, fmt.Errorf("%w: max score must be positive", ErrInvalidConfig)
	}

	l := logger.Get().Named("simulate")
	return &Runner{
		cfg:    cfg,
		client: newClient(cfg.BaseURL, cfg.Timeout, cfg.Verbose, l),
		logger: l,
		names:  newNamer(rand.New(rand.NewPCG(cfg.Seed, cfg.Seed>>1|1))),
		rnd:    rand.New(rand.NewPCG(cfg.Seed^0x9e3779b97f4a7c15, cfg.Seed)),
	}, nil
}

// Run executes the whole tournament and returns its statistics.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now(), Teams: r.cfg.Teams, Groups: r.cfg.Groups}
	defer func() {
		stats.EndTime = time.Now()
		stats.Duration = stats.EndTime.Sub(stats.StartTime)
		stats.Requests = r.client.requests.Load()
		stats.Failed = r.client.failed.Load()
		stats.Replays = r.client.replays.Load()
	}()

	r.logger.Info(ctx, "starting tournament simulation",
		logger.String("baseURL", r.cfg.BaseURL),
		logger.Int("teams", r.cfg.Teams),
		logger.Int("groups", r.cfg.Groups),
		logger.Int("qualifiers", r.cfg.Qualifiers),
		logger.Bool("thirdPlace", r.cfg.ThirdPlace),
		logger.Int("concurrency", r.cfg.Concurrency),
		logger.Any("seed", r.cfg.Seed))

	// Step 1: Check service health
	if err := r.checkHealth(ctx); err != nil {
		return stats, err
	}

	// Step 2: Create the tournament
	t, err := r.create(ctx)
	if err != nil {
		return stats, fmt.Errorf("create tournament: %w", err)
	}
	stats.TournamentID = t.ID
	base := "/tournaments/" + t.ID

	// Step 3: Register teams
	if err := r.registerTeams(ctx, base); err != nil {
		return stats, fmt.Errorf("register teams: %w", err)
	}

	// Step 4: Set the group count
	if err := r.client.mutate(ctx, http.MethodPut, base+"/groups",
		map[string]int{"numberOfGroups": r.cfg.Groups}, t); err != nil {
		return stats, fmt.Errorf("set groups: %w", err)
	}

	// Step 5: Play the group phase
	played, err := r.playGroups(ctx, base, t)
	if err != nil {
		return stats, fmt.Errorf("group phase: %w", err)
	}
	stats.GroupMatches = played

	// Step 6: Check readiness
	var ready service.ReadinessView
	if err := r.client.get(ctx, base+"/knockout/readiness", &ready); err != nil {
		return stats, fmt.Errorf("readiness: %w", err)
	}
	if !ready.CanStartKnockout {
		return stats, fmt.Errorf("%w: %s", ErrNotReady, ready.Reason)
	}

	// Step 7: Start the knockout
	if err := r.client.mutate(ctx, http.MethodPost, base+"/knockout", nil, t); err != nil {
		return stats, fmt.Errorf("start knockout: %w", err)
	}

	// Step 8: Play the bracket
	rounds, matches, err := r.playKnockout(ctx, base, t)
	stats.Rounds, stats.KnockoutMatches = rounds, matches
	if err != nil {
		return stats, fmt.Errorf("knockout: %w", err)
	}

	// Step 9: Verify the champion
	var bracket service.BracketView
	if err := r.client.get(ctx, base+"/bracket", &bracket); err != nil {
		return stats, fmt.Errorf("bracket: %w", err)
	}
	if bracket.Status != model.StatusCompleted || bracket.ChampionID == "" {
		return stats, ErrNoChampion
	}
	stats.Champion = bracket.ChampionName

	r.logger.Info(ctx, "tournament completed",
		logger.String("tournament", t.ID),
		logger.String("champion", bracket.ChampionName))
	return stats, nil
}

func (r *Runner) checkHealth(ctx context.Context) error {
	r.logger.Info(ctx, "checking service health")
	if err := r.client.get(ctx, "/healthz", nil); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	r.logger.Info(ctx, "service is healthy")
	return nil
}

func (r *Runner) create(ctx context.Context) (*model.Tournament, error) {
	name := r.cfg.Name
	if name == "" {
		name = r.names.tournament()
	}
	var t model.Tournament
	err := r.client.mutate(ctx, http.MethodPost, "/tournaments", createRequest{
		Name:               name,
		Date:               time.Now().Format(time.DateOnly),
		Description:        "Simulated tournament",
		KnockoutQualifiers: r.cfg.Qualifiers,
		ThirdPlaceMatch:    r.cfg.ThirdPlace,
		MaxScore:           r.cfg.MaxScore,
	}, &t)
	if err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "tournament created", logger.String("tournament", t.ID), logger.String("name", t.Name))
	return &t, nil
}

// registerTeams adds teams one at a time; every registration regroups the
// tournament, so concurrent adds would only contend on the store.
func (r *Runner) registerTeams(ctx context.Context, base string) error {
	for i := 0; i < r.cfg.Teams; i++ {
		players := make([]string, model.MinPlayers+r.intN(model.MaxPlayers-model.MinPlayers+1))
		for j := range players {
			players[j] = r.names.player()
		}
		req := teamRequest{Name: r.names.team(), Players: players}
		if err := r.client.mutate(ctx, http.MethodPost, base+"/teams", req, nil); err != nil {
			return err
		}
	}
	r.logger.Info(ctx, "teams registered", logger.Int("count", r.cfg.Teams))
	return nil
}

// playGroups scores every group match concurrently. The first submission is
// sent twice with the same key to check that the replay is not applied again.
func (r *Runner) playGroups(ctx context.Context, base string, t *model.Tournament) (int, error) {
	matches := t.GroupMatches()
	if len(matches) == 0 {
		return 0, nil
	}
	if err := r.checkReplay(ctx, base, matches[0]); err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for _, m := range matches[1:] {
		g.Go(func() error {
			s1, s2 := r.score(true)
			return r.client.mutate(gctx, http.MethodPut, base+"/matches/"+m.ID+"/score",
				scoreRequest{Team1Score: s1, Team2Score: s2, Complete: true}, nil)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	r.logger.Info(ctx, "group phase played", logger.Int("matches", len(matches)))
	return len(matches), nil
}

func (r *Runner) checkReplay(ctx context.Context, base string, m *model.GroupMatch) error {
	path := base + "/matches/" + m.ID + "/score"
	key := "simulate-" + m.ID
	s1, s2 := r.score(true)
	body := scoreRequest{Team1Score: s1, Team2Score: s2, Complete: true}
	if _, err := r.client.call(ctx, http.MethodPut, path, key, body, nil); err != nil {
		return err
	}
	replayed, err := r.client.call(ctx, http.MethodPut, path, key, body, nil)
	if err != nil {
		return err
	}
	if !replayed {
		return ErrReplayIgnored
	}
	return nil
}

// playKnockout plays every playable bracket match, wave by wave, until the
// tournament completes.
func (r *Runner) playKnockout(ctx context.Context, base string, t *model.Tournament) (int, int, error) {
	rounds := map[int]struct{}{}
	played := 0
	for {
		if err := r.client.get(ctx, base, t); err != nil {
			return len(rounds), played, err
		}
		if t.Status == model.StatusCompleted {
			return len(rounds), played, nil
		}

		var wave []*model.KnockoutMatch
		for _, m := range t.KnockoutMatches() {
			if !m.Completed && m.HasTeams() {
				wave = append(wave, m)
			}
		}
		if len(wave) == 0 {
			return len(rounds), played, ErrStalled
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.cfg.Concurrency)
		for _, m := range wave {
			rounds[m.Round] = struct{}{}
			g.Go(func() error {
				s1, s2 := r.score(false)
				return r.client.mutate(gctx, http.MethodPut, base+"/matches/"+m.ID+"/score",
					scoreRequest{Team1Score: s1, Team2Score: s2, Complete: true}, nil)
			})
		}
		if err := g.Wait(); err != nil {
			return len(rounds), played, err
		}
		played += len(wave)
		r.logger.Info(ctx, "knockout wave played", logger.Int("matches", len(wave)))
	}
}

// score draws a result. Knockout results never tie: the winner sinks every cup.
func (r *Runner) score(allowDraw bool) (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	top := r.cfg.MaxScore
	s1, s2 := r.rnd.IntN(top+1), r.rnd.IntN(top+1)
	if allowDraw || s1 != s2 {
		return s1, s2
	}
	if r.rnd.IntN(2) == 0 {
		return top, r.rnd.IntN(top)
	}
	return r.rnd.IntN(top), top
}

func (r *Runner) intN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}

// IsAPIError reports whether err carries a server answer with the given status.
func IsAPIError(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
