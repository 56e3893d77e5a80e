package policy

import (
	"sort"

	"github.com/cartridge/capture/internal/game"
)

// Features maps a feature name to the signal it produced for one (state, action)
// pair.
type Features map[string]float64

// Weights holds the linear coefficients for a feature set.
type Weights map[string]float64

// Dot returns the inner product of f and w over their shared keys. Terms are
// summed in key order so equal inputs always give bit-identical scores.
func (f Features) Dot(w Weights) float64 {
	keys := make([]string, 0, len(f))
	for k := range f {
		if _, ok := w[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var total float64
	for _, k := range keys {
		total += f[k] * w[k]
	}
	return total
}

// Extractor turns a state and action into named signals. successor is the
// state after the action has been applied and snapped to a cell.
type Extractor interface {
	Features(seat game.Seat, state, successor game.State, action game.Action) (Features, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(seat game.Seat, state, successor game.State, action game.Action) (Features, error)

// Features implements Extractor
func (f ExtractorFunc) Features(seat game.Seat, state, successor game.State, action game.Action) (Features, error) {
	return f(seat, state, successor, action)
}

// WeightPolicy supplies the coefficients paired with an Extractor. It is called
// once per action per decision.
type WeightPolicy interface {
	Weights(seat game.Seat, state game.State, action game.Action) Weights
}

// StaticWeights is a weight vector fixed for the agent's lifetime.
type StaticWeights Weights

// Weights implements WeightPolicy
func (w StaticWeights) Weights(game.Seat, game.State, game.Action) Weights {
	return Weights(w)
}

// WeightFunc adapts a function to WeightPolicy for state dependent weights.
type WeightFunc func(seat game.Seat, state game.State, action game.Action) Weights

// Weights implements WeightPolicy
func (f WeightFunc) Weights(seat game.Seat, state game.State, action game.Action) Weights {
	return f(seat, state, action)
}

// Evaluator scores one candidate action.
type Evaluator interface {
	Evaluate(seat game.Seat, state, successor game.State, action game.Action) (float64, error)
}

// Linear scores actions as the dot product of extracted features and weights.
type Linear struct {
	Extractor Extractor
	Weights   WeightPolicy
}

// Evaluate implements Evaluator
func (l Linear) Evaluate(seat game.Seat, state, successor game.State, action game.Action) (float64, error) {
	f, err := l.Extractor.Features(seat, state, successor, action)
	if err != nil {
		return 0, err
	}
	return f.Dot(l.Weights.Weights(seat, state, action)), nil
}
