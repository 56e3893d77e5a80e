// Package team builds agent teams from registered variant names.
package team

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/cartridge/capture/internal/game"
	"github.com/cartridge/capture/internal/policy"
)

// ErrUnknownAgent is returned when a team asks for a name nobody registered.
var ErrUnknownAgent = errors.New("unknown agent")

// Default names used when a team is created without explicit choices.
const (
	DefaultFirst  = policy.NameNomNom
	DefaultSecond = policy.NameOffense
)

// Constructor builds one agent for a seat.
type Constructor func(seat game.Seat, opts policy.Options) policy.Agent

// Registry maps agent variant names to constructors
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Default returns a registry holding every built-in variant.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(policy.NameBaseline, func(s game.Seat, o policy.Options) policy.Agent { return policy.NewBaseline(s, o) })
	r.MustRegister(policy.NameOffense, func(s game.Seat, o policy.Options) policy.Agent { return policy.NewOffense(s, o) })
	r.MustRegister(policy.NameDefense, func(s game.Seat, o policy.Options) policy.Agent { return policy.NewDefense(s, o) })
	r.MustRegister(policy.NameNomNom, func(s game.Seat, o policy.Options) policy.Agent { return policy.NewNomNom(s, o) })
	r.MustRegister(policy.NameRandom, func(s game.Seat, o policy.Options) policy.Agent { return policy.NewRandom(s, o) })
	return r
}

// Register adds a constructor under name. Names must be unique.
func (r *Registry) Register(name string, c Constructor) error {
	if name == "" {
		return errors.New("agent name is required")
	}
	if c == nil {
		return fmt.Errorf("agent %q: nil constructor", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; exists {
		return fmt.Errorf("agent %q already registered", name)
	}
	r.constructors[name] = c
	return nil
}

// MustRegister is Register that panics on error, for use during setup.
func (r *Registry) MustRegister(name string, c Constructor) {
	if err := r.Register(name, c); err != nil {
		panic(err)
	}
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs a single agent by name.
func (r *Registry) New(name string, seat game.Seat, opts policy.Options) (policy.Agent, error) {
	r.mu.RLock()
	c, ok := r.constructors[name]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrUnknownAgent, "%q", name)
	}
	return c(seat, opts), nil
}

// CreateTeam returns the two agents of one team, seated at first and second.
// Empty names fall back to DefaultFirst and DefaultSecond.
func (r *Registry) CreateTeam(first, second int, red bool, firstName, secondName string, dist game.Distancer, opts policy.Options) ([2]policy.Agent, error) {
	var team [2]policy.Agent

	if firstName == "" {
		firstName = DefaultFirst
	}
	if secondName == "" {
		secondName = DefaultSecond
	}

	a, err := r.New(firstName, game.NewSeat(first, red, dist), opts)
	if err != nil {
		return team, err
	}
	b, err := r.New(secondName, game.NewSeat(second, red, dist), opts)
	if err != nil {
		return team, err
	}

	team[0], team[1] = a, b
	return team, nil
}
