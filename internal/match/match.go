// Package match plays one capture game between two registered teams.
package match

import (
	"context"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/cartridge/capture/internal/config"
	"github.com/cartridge/capture/internal/game"
	"github.com/cartridge/capture/internal/metrics"
	"github.com/cartridge/capture/internal/policy"
	"github.com/cartridge/capture/internal/sim"
	"github.com/cartridge/capture/internal/team"
	"github.com/cartridge/capture/internal/trace"
)

// Team names as reported in results.
const (
	Red  = "red"
	Blue = "blue"
)

// Result summarises a finished match
type Result struct {
	MatchID  uuid.UUID
	Score    float64
	Winner   string // "red", "blue" or "tie"
	Moves    int
	Forfeit  string // team that forfeited, if any
	Warnings []int  // budget overruns per agent
	Duration time.Duration
	Final    *sim.Game
}

// Runner drives a match between two teams
type Runner struct {
	Config   *config.Config
	Registry *team.Registry
	Logger   zerolog.Logger
	Metrics  *metrics.Collector
	Trace    trace.Store
}

// New creates a runner with the built-in agents, a metrics collector on logger
// and an in-memory decision trace sized from cfg.
func New(cfg *config.Config, logger zerolog.Logger) *Runner {
	return &Runner{
		Config:   cfg,
		Registry: team.Default(),
		Logger:   logger,
		Metrics:  metrics.NewCollector(logger),
		Trace:    trace.NewMemoryStore(cfg.TraceCapacity),
	}
}

// recorder keeps the last decision an agent reported. Agents are driven one
// at a time so no locking is needed.
type recorder struct {
	last *policy.Decision
}

func (r *recorder) ObserveDecision(d policy.Decision) { r.last = &d }

func (r *recorder) take() *policy.Decision {
	d := r.last
	r.last = nil
	return d
}

type match struct {
	*Runner
	id       uuid.UUID
	game     *sim.Game
	agents   []policy.Agent
	rec      *recorder
	warnings []int
	forfeit  string
}

// Run plays a full match and returns its result. Agent errors other than
// budget overruns end the match with an error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.Config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	m, err := r.setup()
	if err != nil {
		return nil, err
	}

	log := r.Logger.With().Str("match_id", m.id.String()).Logger()
	log.Info().
		Strs("red", []string{m.agents[0].Name(), m.agents[2].Name()}).
		Strs("blue", []string{m.agents[1].Name(), m.agents[3].Name()}).
		Int("max_moves", r.Config.MaxMoves).
		Msg("Match starting")

	start := time.Now()
	if err := m.initialize(ctx, log); err != nil {
		return nil, err
	}

	for m.forfeit == "" && !m.game.IsOver() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := m.step(ctx, log); err != nil {
			return nil, err
		}
	}

	res := &Result{
		MatchID:  m.id,
		Score:    m.game.Score(),
		Winner:   m.game.Winner(),
		Moves:    m.game.Moves(),
		Forfeit:  m.forfeit,
		Warnings: m.warnings,
		Duration: time.Since(start),
		Final:    m.game,
	}
	if m.forfeit != "" {
		res.Winner = opponent(m.forfeit)
	}

	r.Metrics.MatchFinished(m.id.String(), res.Winner, res.Score, res.Moves, res.Duration)
	log.Info().
		Str("winner", res.Winner).
		Float64("score", res.Score).
		Int("moves", res.Moves).
		Str("forfeit", res.Forfeit).
		Msg("Match finished")

	return res, nil
}

func (r *Runner) setup() (*match, error) {
	layout, err := r.loadLayout()
	if err != nil {
		return nil, err
	}
	if layout.NumAgents() != sim.MaxAgents {
		return nil, errors.Errorf("layout seats %d agents, need %d", layout.NumAgents(), sim.MaxAgents)
	}

	seed := r.Config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	dist := sim.NewDistancer(layout)
	rec := &recorder{}
	opts := policy.Options{
		Rand:            rand.New(rand.NewSource(seed)),
		Observer:        rec,
		ScaredThreshold: r.Config.ScaredThreshold,
	}

	red, err := r.Registry.CreateTeam(0, 2, true, r.Config.RedFirst, r.Config.RedSecond, dist, opts)
	if err != nil {
		return nil, errors.Wrap(err, "red team")
	}
	blue, err := r.Registry.CreateTeam(1, 3, false, r.Config.BlueFirst, r.Config.BlueSecond, dist, opts)
	if err != nil {
		return nil, errors.Wrap(err, "blue team")
	}

	return &match{
		Runner:   r,
		id:       uuid.New(),
		game:     sim.New(layout, sim.WithMaxMoves(r.Config.MaxMoves)),
		agents:   []policy.Agent{red[0], blue[0], red[1], blue[1]},
		rec:      rec,
		warnings: make([]int, sim.MaxAgents),
	}, nil
}

func (r *Runner) loadLayout() (*sim.Layout, error) {
	if r.Config.Layout == "" {
		return sim.ParseLayout(sim.DefaultLayout)
	}
	data, err := os.ReadFile(r.Config.Layout)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read layout")
	}
	l, err := sim.ParseLayout(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "layout %s", r.Config.Layout)
	}
	return l, nil
}

// initialize gives agents that want it one look at the starting state.
func (m *match) initialize(ctx context.Context, log zerolog.Logger) error {
	for i, a := range m.agents {
		in, ok := a.(policy.Initializer)
		if !ok {
			continue
		}

		setupCtx, cancel := context.WithTimeout(ctx, m.Config.SetupTimeout)
		start := time.Now()
		err := in.RegisterInitialState(setupCtx, m.game.Observe(i, m.Config.SightRange))
		elapsed := time.Since(start)
		cancel()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if elapsed > m.Config.SetupTimeout || errors.Is(err, context.DeadlineExceeded) {
			m.forfeit = teamOf(i)
			log.Warn().Int("agent", i).Dur("elapsed", elapsed).Msg("Setup budget exceeded, team forfeits")
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "agent %d: initial state", i)
		}
	}
	return nil
}

// step asks the agent whose turn it is for an action and applies it.
func (m *match) step(ctx context.Context, log zerolog.Logger) error {
	turn := m.game.Moves()
	i := turn % len(m.agents)
	agent := m.agents[i]
	view := m.game.Observe(i, m.Config.SightRange)

	moveCtx, cancel := context.WithTimeout(ctx, m.Config.MoveTimeout)
	m.rec.take()
	start := time.Now()
	action, err := agent.ChooseAction(moveCtx, view)
	elapsed := time.Since(start)
	cancel()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	overrun := elapsed > m.Config.MoveTimeout || errors.Is(err, context.DeadlineExceeded)
	decision := m.rec.take()
	switch {
	case overrun:
		m.warnings[i]++
		m.Metrics.MoveTimeout(m.id.String(), i, elapsed, m.warnings[i])
		log.Warn().
			Int("agent", i).
			Dur("elapsed", elapsed).
			Int("warnings", m.warnings[i]).
			Msg("Move budget exceeded, agent stops")
		action, decision = game.Stop, nil
		if m.warnings[i] > m.Config.MaxWarnings {
			m.forfeit = teamOf(i)
			log.Warn().Int("agent", i).Str("team", m.forfeit).Msg("Too many warnings, team forfeits")
		}
	case err != nil:
		return errors.Wrapf(err, "agent %d (%s)", i, agent.Name())
	}

	next, err := m.game.Apply(i, action)
	if err != nil {
		return errors.Wrapf(err, "agent %d (%s)", i, agent.Name())
	}
	m.game = next

	score := 0.0
	var candidates []trace.Candidate
	if decision != nil && decision.Chosen == action {
		score = decision.Score
		candidates = make([]trace.Candidate, len(decision.Candidates))
		for k, c := range decision.Candidates {
			candidates[k] = trace.Candidate{Action: string(c.Action), Score: c.Score}
		}
	}

	m.Metrics.Decision(m.id.String(), i, agent.Name(), string(action), score, elapsed)
	return m.Trace.Record(ctx, &trace.Decision{
		MatchID:    m.id.String(),
		Turn:       turn,
		Agent:      i,
		Name:       agent.Name(),
		Action:     string(action),
		Score:      score,
		Candidates: candidates,
		Elapsed:    elapsed,
		Timeout:    overrun,
	})
}

func teamOf(agent int) string {
	if agent%2 == 0 {
		return Red
	}
	return Blue
}

func opponent(t string) string {
	if t == Red {
		return Blue
	}
	return Red
}
