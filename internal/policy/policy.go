// Package policy provides action selection strategies for capture agents
package policy

import (
	"context"
	"math/rand"

	"github.com/cartridge/capture/internal/game"
)

// DefaultScaredThreshold is the number of remaining scared moves below which a
// defender is still treated as a threat when it is adjacent.
const DefaultScaredThreshold = 2

// Agent chooses one action per turn for a single seat
type Agent interface {
	// Name is the registry name of the agent variant
	Name() string
	// Seat returns the identity the agent was constructed with
	Seat() game.Seat
	// ChooseAction picks a legal action for the current state
	ChooseAction(ctx context.Context, state game.State) (game.Action, error)
}

// Initializer is implemented by agents that want to inspect the starting
// state once before the first move.
type Initializer interface {
	RegisterInitialState(ctx context.Context, state game.State) error
}

// Candidate is one scored action considered during a decision.
type Candidate struct {
	Action game.Action
	Score  float64
}

// Decision describes a completed call to ChooseAction.
type Decision struct {
	Agent      int
	Name       string
	Chosen     game.Action
	Score      float64
	Candidates []Candidate
}

// Observer receives every decision an agent makes.
type Observer interface {
	ObserveDecision(d Decision)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Decision)

// ObserveDecision implements Observer
func (f ObserverFunc) ObserveDecision(d Decision) { f(d) }

// Options carries the collaborators an agent is constructed with.
type Options struct {
	// Rand is the match-wide random source used for tie-breaking.
	Rand *rand.Rand
	// Observer, when set, is told about each decision.
	Observer Observer
	// ScaredThreshold tunes the priority heuristic; 0 selects DefaultScaredThreshold.
	ScaredThreshold int
}

func (o Options) scaredThreshold() int {
	if o.ScaredThreshold <= 0 {
		return DefaultScaredThreshold
	}
	return o.ScaredThreshold
}
