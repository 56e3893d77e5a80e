package policy

import (
	"math"

	"github.com/cartridge/capture/internal/game"
)

// Feature names shared by the linear variants.
const (
	FeatureSuccessorScore  = "successorScore"
	FeatureFood            = "food"
	FeatureClosestFood     = "closestFood"
	FeatureGhost           = "ghost"
	FeatureScore           = "score"
	FeatureOnDefense       = "onDefense"
	FeatureNumInvaders     = "numInvaders"
	FeatureInvaderDistance = "invaderDistance"
	FeatureStop            = "stop"
	FeatureReverse         = "reverse"
)

// BaselineWeights scores a move by the resulting score alone.
var BaselineWeights = StaticWeights{FeatureSuccessorScore: 1.0}

// OffenseWeights favour eating and steer hard away from live defenders.
var OffenseWeights = StaticWeights{
	FeatureFood:        500,
	FeatureClosestFood: 100,
	FeatureGhost:       -1000,
	FeatureScore:       1,
}

// DefenseWeights keep the agent home and on top of invaders.
var DefenseWeights = StaticWeights{
	FeatureNumInvaders:     -1000,
	FeatureOnDefense:       100,
	FeatureInvaderDistance: -10,
	FeatureStop:            -100,
	FeatureReverse:         -2,
}

// BaselineFeatures reports the team's score differential after the move.
func BaselineFeatures(seat game.Seat, _, successor game.State, _ game.Action) (Features, error) {
	return Features{FeatureSuccessorScore: seat.Score(successor)}, nil
}

// OffenseFeatures rewards landing on food and closing in on the nearest pellet,
// and reports how close the nearest live defender is.
func OffenseFeatures(seat game.Seat, state, successor game.State, action game.Action) (Features, error) {
	pos := seat.Destination(state, action)

	f := Features{
		FeatureFood:        0,
		FeatureClosestFood: 0,
		FeatureGhost:       0,
		FeatureScore:       seat.Score(successor),
	}

	for _, food := range seat.Food(state) {
		if food == pos {
			f[FeatureFood] = 1
			break
		}
	}

	if d, ok := nearest(seat, pos, seat.Food(successor)); ok && d > 0 {
		f[FeatureClosestFood] = 1 / float64(d)
	}

	if d, ok := nearestThreat(seat, successor, pos); ok {
		if d < 1 {
			d = 1
		}
		f[FeatureGhost] = 1 / math.Pow(d, 4)
	}
	return f, nil
}

// DefenseFeatures reports whether the agent stays home, how many invaders it can
// see and how far the nearest one is, plus penalties for stalling and turning back.
func DefenseFeatures(seat game.Seat, state, successor game.State, action game.Action) (Features, error) {
	me := seat.Self(successor)
	pos := me.Pos.NearestPoint()

	f := Features{FeatureOnDefense: 1}
	if me.Pacman {
		f[FeatureOnDefense] = 0
	}

	var invaders []game.Position
	for _, i := range seat.Opponents(successor) {
		a := successor.Agent(i)
		if a.Pacman && a.Visible {
			invaders = append(invaders, a.Pos)
		}
	}
	f[FeatureNumInvaders] = float64(len(invaders))
	if d, ok := nearest(seat, pos, invaders); ok {
		f[FeatureInvaderDistance] = float64(d)
	}

	if action == game.Stop {
		f[FeatureStop] = 1
	}
	if action == seat.Self(state).Direction.Reverse() {
		f[FeatureReverse] = 1
	}
	return f, nil
}

// nearest returns the smallest maze distance from pos to any target. ok is false
// when targets is empty.
func nearest(seat game.Seat, pos game.Position, targets []game.Position) (int, bool) {
	best, ok := 0, false
	for _, t := range targets {
		d := seat.Distance(pos, t)
		if !ok || d < best {
			best, ok = d, true
		}
	}
	return best, ok
}

// nearestThreat returns the Manhattan distance to the closest visible opponent
// that is a ghost and not scared.
func nearestThreat(seat game.Seat, s game.State, pos game.Position) (float64, bool) {
	best, ok := 0.0, false
	for _, i := range seat.Opponents(s) {
		a := s.Agent(i)
		if a.Pacman || !a.Visible || a.Scared > 0 {
			continue
		}
		d := pos.Manhattan(a.Pos)
		if !ok || d < best {
			best, ok = d, true
		}
	}
	return best, ok
}
