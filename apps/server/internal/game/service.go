// Package game runs server-side negotiations: one attempt per player per
// day, persisted between turns, scored and ranked when it ends.
package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"negotiator-lite/apps/server/internal/attempt"
	"negotiator-lite/apps/server/internal/auth"
	"negotiator-lite/apps/server/internal/events"
	"negotiator-lite/apps/server/internal/ledger"
	"negotiator-lite/apps/server/internal/progress"
	"negotiator-lite/negotiation"
	"negotiator-lite/negotiation/suspect"
)

var (
	ErrAlreadyPlayed = errors.New("already played today")
	ErrNotFound      = errors.New("attempt not found")
	ErrNoScenario    = errors.New("no scenario available")
	ErrNotFinished   = errors.New("attempt still running")
)

type Config struct {
	// DailyLimit allows one finished attempt per player per UTC day.
	DailyLimit bool
	// InitialTrust and MaxTurns feed negotiation.Config; zero takes defaults.
	InitialTrust int
	MaxTurns     int
	// Seed fixes the engine RNG for every turn; 0 draws a fresh seed.
	Seed int64
	// Now defaults to time.Now.
	Now func() time.Time
}

type Deps struct {
	Registry *suspect.Registry
	Director *suspect.Director
	Attempts attempt.Store
	Ledger   ledger.Service
	Progress progress.Service
	Events   events.Publisher
	Metrics  *Metrics
}

type Service struct {
	cfg  Config
	deps Deps

	mu    sync.Mutex
	locks map[string]*sync.Mutex // attempt id -> turn lock
}

func NewService(cfg Config, deps Deps) (*Service, error) {
	if deps.Registry == nil || deps.Director == nil || deps.Attempts == nil ||
		deps.Ledger == nil || deps.Progress == nil {
		return nil, fmt.Errorf("game: missing dependency")
	}
	if deps.Events == nil {
		deps.Events = events.Noop{}
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(prometheus.NewRegistry())
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{cfg: cfg, deps: deps, locks: make(map[string]*sync.Mutex)}, nil
}

func (s *Service) engineConfig() negotiation.Config {
	return negotiation.Config{InitialTrust: s.cfg.InitialTrust, MaxTurns: s.cfg.MaxTurns, Seed: s.cfg.Seed}
}

func (s *Service) today() string {
	return attempt.Day(s.cfg.Now())
}

func (s *Service) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (s *Service) forget(id string) {
	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()
}

// DailyScenario returns today's scenario.
func (s *Service) DailyScenario() (ScenarioView, error) {
	sc, ok := s.deps.Registry.Daily(s.cfg.Now())
	if !ok {
		return ScenarioView{}, ErrNoScenario
	}
	return scenarioView(sc), nil
}

// Start opens today's attempt for player, or resumes the one in progress.
func (s *Service) Start(ctx context.Context, player auth.Account) (*View, error) {
	now := s.cfg.Now()
	day := attempt.Day(now)

	latest, err := s.deps.Attempts.Latest(ctx, player.ID, day)
	switch {
	case err == nil && !latest.Finished:
		state, err := latest.State(s.engineConfig())
		if err != nil {
			return nil, err
		}
		log.Printf("[Game] Player %d resumed attempt %s", player.ID, latest.ID)
		return newView(latest, state), nil
	case err == nil && s.cfg.DailyLimit:
		return nil, ErrAlreadyPlayed
	case err != nil && !errors.Is(err, attempt.ErrNotFound):
		return nil, err
	}

	if s.cfg.DailyLimit {
		prog, err := s.deps.Progress.Get(ctx, player.ID)
		if err != nil {
			return nil, err
		}
		if prog.HasPlayed(day) {
			return nil, ErrAlreadyPlayed
		}
	}

	sc, ok := s.deps.Registry.Daily(now)
	if !ok {
		return nil, ErrNoScenario
	}
	state, err := negotiation.NewState(sc, s.engineConfig())
	if err != nil {
		return nil, err
	}
	a := attempt.New(player.ID, player.Username, day, state)
	if err := s.deps.Attempts.Create(ctx, a); err != nil {
		return nil, err
	}

	s.deps.Metrics.attemptsStarted.Inc()
	if err := s.deps.Events.Started(ctx, events.Started{
		AttemptID:  a.ID,
		PlayerID:   player.ID,
		ScenarioID: sc.ID,
		Day:        day,
		At:         a.CreatedAt,
	}); err != nil {
		log.Printf("[Game] Publish started event for %s failed: %v", a.ID, err)
	}
	log.Printf("[Game] Player %d started attempt %s (scenario=%s)", player.ID, a.ID, sc.ID)
	return newView(a, state), nil
}

// load fetches an attempt owned by player. Foreign attempts look missing.
func (s *Service) load(ctx context.Context, player auth.Account, id string) (*attempt.Attempt, *negotiation.State, error) {
	a, err := s.deps.Attempts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, attempt.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if a.PlayerID != player.ID {
		return nil, nil, ErrNotFound
	}
	state, err := a.State(s.engineConfig())
	if err != nil {
		return nil, nil, err
	}
	return a, state, nil
}

func (s *Service) Get(ctx context.Context, player auth.Account, id string) (*View, error) {
	a, state, err := s.load(ctx, player, id)
	if err != nil {
		return nil, err
	}
	return newView(a, state), nil
}

// Say plays one player turn. A rejected turn returns a
// *negotiation.TransitionError and leaves the attempt unchanged.
func (s *Service) Say(ctx context.Context, player auth.Account, id, text string) (*View, error) {
	unlock := s.lock(id)
	defer unlock()

	a, state, err := s.load(ctx, player, id)
	if err != nil {
		return nil, err
	}
	category, err := state.Submit(text)
	if err != nil {
		return nil, err
	}
	s.deps.Metrics.turn(category)

	fallback := false
	if !state.GameOver() {
		reply := s.deps.Director.Respond(ctx, state, text)
		if reply.Fallback {
			fallback = true
			s.deps.Metrics.fallbacks.Inc()
		}
		if err := state.IntegrateReply(reply); err != nil {
			return nil, err
		}
	}

	a.Update(state)
	if err := s.deps.Attempts.Save(ctx, a); err != nil {
		return nil, err
	}
	if state.GameOver() {
		s.finish(ctx, a, state)
	}

	v := newView(a, state)
	v.Fallback = fallback
	return v, nil
}

// finish records a terminal attempt. Failures are logged; the attempt itself
// is already saved.
func (s *Service) finish(ctx context.Context, a *attempt.Attempt, state *negotiation.State) {
	defer s.forget(a.ID)

	score, _ := negotiation.Score(state)
	success := state.Success()
	turns := state.Turn()

	if err := s.deps.Ledger.Record(ctx, ledger.Entry{
		AttemptID:  a.ID,
		PlayerID:   a.PlayerID,
		Username:   a.Username,
		ScenarioID: a.ScenarioID,
		Score:      score,
		Success:    success,
		Turns:      turns,
		Day:        a.Day,
		CreatedAt:  a.UpdatedAt,
	}); err != nil {
		log.Printf("[Game] Record score for %s failed: %v", a.ID, err)
	}
	if _, err := s.deps.Progress.RecordOutcome(ctx, a.PlayerID, a.Day, success); err != nil {
		log.Printf("[Game] Record progress for player %d failed: %v", a.PlayerID, err)
	}
	if err := s.deps.Events.Finished(ctx, events.Finished{
		AttemptID:  a.ID,
		PlayerID:   a.PlayerID,
		Username:   a.Username,
		ScenarioID: a.ScenarioID,
		Day:        a.Day,
		Success:    success,
		Score:      score,
		Turns:      turns,
		Hostages:   state.Hostages(),
		At:         a.UpdatedAt,
	}); err != nil {
		log.Printf("[Game] Publish finished event for %s failed: %v", a.ID, err)
	}
	s.deps.Metrics.outcome(success, score)
	log.Printf("[Game] Attempt %s finished success=%v score=%.2f turns=%d", a.ID, success, score, turns)
}

func (s *Service) Debrief(ctx context.Context, player auth.Account, id string) (*suspect.Debrief, error) {
	_, state, err := s.load(ctx, player, id)
	if err != nil {
		return nil, err
	}
	d, err := s.deps.Director.Debrief(ctx, state)
	if err != nil {
		if errors.Is(err, suspect.ErrStillRunning) {
			return nil, ErrNotFinished
		}
		return nil, err
	}
	return &d, nil
}

type Stats struct {
	progress.Progress
	ledger.Stats
	PlayedToday bool `json:"played_today"`
}

func (s *Service) Stats(ctx context.Context, player auth.Account) (*Stats, error) {
	day := s.today()
	prog, err := s.deps.Progress.Get(ctx, player.ID)
	if err != nil {
		return nil, err
	}
	scores, err := s.deps.Ledger.PlayerStats(ctx, player.ID, day)
	if err != nil {
		return nil, err
	}
	return &Stats{Progress: *prog, Stats: scores, PlayedToday: prog.HasPlayed(day)}, nil
}

type Leaderboard struct {
	Day     string         `json:"day"`
	Daily   []ledger.Entry `json:"daily"`
	AllTime []ledger.Entry `json:"all_time"`
}

func (s *Service) Leaderboard(ctx context.Context, limit int) (*Leaderboard, error) {
	day := s.today()
	daily, err := s.deps.Ledger.DailyTop(ctx, day, limit)
	if err != nil {
		return nil, err
	}
	allTime, err := s.deps.Ledger.AllTimeTop(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &Leaderboard{Day: day, Daily: daily, AllTime: allTime}, nil
}
