package policy

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/cartridge/capture/internal/game"
)

// RandomPolicy selects a uniformly random legal action
type RandomPolicy struct {
	seat     game.Seat
	rng      *rand.Rand
	observer Observer
}

// NewRandom creates a new random policy for the given seat
func NewRandom(seat game.Seat, opts Options) *RandomPolicy {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomPolicy{seat: seat, rng: rng, observer: opts.Observer}
}

// Name implements Agent
func (p *RandomPolicy) Name() string { return NameRandom }

// Seat implements Agent
func (p *RandomPolicy) Seat() game.Seat { return p.seat }

// ChooseAction implements Agent
func (p *RandomPolicy) ChooseAction(ctx context.Context, state game.State) (game.Action, error) {
	actions := state.LegalActions(p.seat.Index)
	if len(actions) == 0 {
		return "", errors.Wrapf(game.ErrNoLegalActions, "agent %d", p.seat.Index)
	}

	action := actions[p.rng.Intn(len(actions))]

	if p.observer != nil {
		candidates := make([]Candidate, len(actions))
		for i, a := range actions {
			candidates[i] = Candidate{Action: a}
		}
		p.observer.ObserveDecision(Decision{
			Agent:      p.seat.Index,
			Name:       NameRandom,
			Chosen:     action,
			Candidates: candidates,
		})
	}
	return action, nil
}
