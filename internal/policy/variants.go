package policy

import (
	"github.com/cartridge/capture/internal/game"
)

// Registry names of the built-in variants.
const (
	NameBaseline = "baseline"
	NameOffense  = "offense"
	NameDefense  = "defense"
	NameNomNom   = "nomnom"
	NameRandom   = "random"
)

// NewBaseline returns a reflex agent that only looks at the score.
func NewBaseline(seat game.Seat, opts Options) *Reflex {
	return NewReflex(NameBaseline, seat, Linear{
		Extractor: ExtractorFunc(BaselineFeatures),
		Weights:   BaselineWeights,
	}, opts)
}

// NewOffense returns a food seeking reflex agent.
func NewOffense(seat game.Seat, opts Options) *Reflex {
	return NewReflex(NameOffense, seat, Linear{
		Extractor: ExtractorFunc(OffenseFeatures),
		Weights:   OffenseWeights,
	}, opts)
}

// NewDefense returns a reflex agent that guards its own half.
func NewDefense(seat game.Seat, opts Options) *Reflex {
	return NewReflex(NameDefense, seat, Linear{
		Extractor: ExtractorFunc(DefenseFeatures),
		Weights:   DefenseWeights,
	}, opts)
}

// NewNomNom returns a reflex agent driven by the priority rule chain.
func NewNomNom(seat game.Seat, opts Options) *Reflex {
	return NewReflex(NameNomNom, seat, NewPriority(opts.scaredThreshold()), opts)
}
