package policy

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/cartridge/capture/internal/game"
)

// Reflex picks the action whose successor scores highest under its evaluator,
// breaking ties uniformly at random.
type Reflex struct {
	name     string
	seat     game.Seat
	eval     Evaluator
	rng      *rand.Rand
	observer Observer
}

// NewReflex creates a reflex agent. A nil opts.Rand gets a time seeded source.
func NewReflex(name string, seat game.Seat, eval Evaluator, opts Options) *Reflex {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Reflex{
		name:     name,
		seat:     seat,
		eval:     eval,
		rng:      rng,
		observer: opts.Observer,
	}
}

// Name implements Agent
func (r *Reflex) Name() string { return r.name }

// Seat implements Agent
func (r *Reflex) Seat() game.Seat { return r.seat }

// ChooseAction implements Agent
func (r *Reflex) ChooseAction(ctx context.Context, state game.State) (game.Action, error) {
	actions := state.LegalActions(r.seat.Index)
	if len(actions) == 0 {
		return "", errors.Wrapf(game.ErrNoLegalActions, "agent %d", r.seat.Index)
	}

	candidates := make([]Candidate, 0, len(actions))
	best := math.Inf(-1)
	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return "", errors.Wrapf(err, "agent %d: evaluating %s", r.seat.Index, a)
		}
		score, err := r.evaluate(state, a)
		if err != nil {
			return "", err
		}
		candidates = append(candidates, Candidate{Action: a, Score: score})
		if score > best {
			best = score
		}
	}

	var top []game.Action
	for _, c := range candidates {
		if c.Score == best {
			top = append(top, c.Action)
		}
	}
	if len(top) == 0 {
		return "", errors.Errorf("agent %d: no comparable score among %d actions", r.seat.Index, len(actions))
	}
	chosen := top[r.rng.Intn(len(top))]

	if r.observer != nil {
		r.observer.ObserveDecision(Decision{
			Agent:      r.seat.Index,
			Name:       r.name,
			Chosen:     chosen,
			Score:      best,
			Candidates: candidates,
		})
	}
	return chosen, nil
}

func (r *Reflex) evaluate(state game.State, a game.Action) (float64, error) {
	next, err := Successor(state, r.seat.Index, a)
	if err != nil {
		return 0, err
	}
	score, err := r.eval.Evaluate(r.seat, state, next, a)
	if err != nil {
		return 0, errors.Wrapf(err, "agent %d: scoring %s", r.seat.Index, a)
	}
	return score, nil
}

// Successor applies action for agent and, when the engine only moved the agent
// part of the way, applies it a second time so the agent lands on a cell.
func Successor(state game.State, agent int, action game.Action) (game.State, error) {
	next, err := state.Successor(agent, action)
	if err != nil {
		return nil, errors.Wrapf(err, "agent %d: successor for %s", agent, action)
	}
	if next.Agent(agent).Pos.IsGrid() {
		return next, nil
	}
	next, err = next.Successor(agent, action)
	if err != nil {
		return nil, errors.Wrapf(err, "agent %d: completing %s", agent, action)
	}
	return next, nil
}
