package policy

import (
	"github.com/cartridge/capture/internal/game"
)

// Ordinal scores produced by the priority rules. Higher is better.
const (
	PriorityCapture    = 999
	PriorityLethal     = 0
	PriorityThreatened = 1
	PriorityDeadEnd    = 2
	PriorityNoTarget   = 3
	// PrioritySeek is the score of standing on a target; it drops by one per
	// step of maze distance and stays below PriorityCapture.
	PrioritySeek = PriorityCapture - 1
)

const (
	clusterDistance = 4
	clusterPenalty  = 2
)

// Rule is one step of an ordered rule chain. Apply returns ok=true when the rule
// decides the score, which ends the chain.
type Rule struct {
	Name  string
	Apply func(e *Eval) (score float64, ok bool)
}

// Eval holds what the rules need to know about one candidate move.
type Eval struct {
	Seat      game.Seat
	State     game.State
	Successor game.State
	Action    game.Action
	// Dest is the cell the agent steps into, even if the move gets it eaten.
	Dest game.Position
	// Threshold is the scared timer below which an adjacent defender is dangerous.
	Threshold int

	targets []game.Position
}

// Defenders returns the visible opposing ghosts in the successor state.
func (e *Eval) Defenders() []game.AgentState {
	var out []game.AgentState
	for _, i := range e.Seat.Opponents(e.Successor) {
		a := e.Successor.Agent(i)
		if !a.Pacman && a.Visible {
			out = append(out, a)
		}
	}
	return out
}

// Targets returns food, capsules and, unless the agent is scared, visible
// opposing Pacmen. The list is computed once per move.
func (e *Eval) Targets() []game.Position {
	if e.targets != nil {
		return e.targets
	}
	targets := append([]game.Position{}, e.Seat.Food(e.State)...)
	if e.Seat.Self(e.State).Scared == 0 {
		for _, i := range e.Seat.Opponents(e.Successor) {
			a := e.Successor.Agent(i)
			if a.Pacman && a.Visible {
				targets = append(targets, a.Pos.NearestPoint())
			}
		}
	}
	targets = append(targets, e.Seat.Capsules(e.State)...)
	e.targets = targets
	return targets
}

// IsTarget reports whether the destination holds something to eat.
func (e *Eval) IsTarget() bool {
	for _, t := range e.Targets() {
		if t == e.Dest {
			return true
		}
	}
	return false
}

// Priority scores moves with an ordered rule chain. The first rule that applies
// decides the score, so a higher rule always dominates a lower one whatever the
// magnitudes involved.
type Priority struct {
	Rules     []Rule
	Threshold int
}

// NewPriority returns the standard rule chain.
func NewPriority(threshold int) *Priority {
	if threshold <= 0 {
		threshold = DefaultScaredThreshold
	}
	return &Priority{
		Threshold: threshold,
		Rules: []Rule{
			{Name: "capture", Apply: ruleCapture},
			{Name: "lethal", Apply: ruleLethal},
			{Name: "threatened", Apply: ruleThreatened},
			{Name: "deadEnd", Apply: ruleDeadEnd},
			{Name: "seek", Apply: ruleSeek},
		},
	}
}

// Evaluate implements Evaluator
func (p *Priority) Evaluate(seat game.Seat, state, successor game.State, action game.Action) (float64, error) {
	score, _ := p.Explain(seat, state, successor, action)
	return score, nil
}

// Explain returns the score along with the name of the rule that produced it.
func (p *Priority) Explain(seat game.Seat, state, successor game.State, action game.Action) (float64, string) {
	e := &Eval{
		Seat:      seat,
		State:     state,
		Successor: successor,
		Action:    action,
		Dest:      seat.Destination(state, action),
		Threshold: p.Threshold,
	}
	for _, r := range p.Rules {
		if score, ok := r.Apply(e); ok {
			return score, r.Name
		}
	}
	return PriorityNoTarget, ""
}

// ruleCapture eats an invader standing on the destination, provided we arrive
// as an unscared ghost.
func ruleCapture(e *Eval) (float64, bool) {
	if e.Seat.Self(e.Successor).Pacman || e.Seat.Self(e.State).Scared != 0 {
		return 0, false
	}
	for _, i := range e.Seat.Opponents(e.State) {
		a := e.State.Agent(i)
		if a.Visible && a.Pacman && a.Pos.NearestPoint() == e.Dest {
			return PriorityCapture, true
		}
	}
	return 0, false
}

func ruleLethal(e *Eval) (float64, bool) {
	for _, g := range e.Defenders() {
		if g.Scared == 0 && g.Pos.NearestPoint() == e.Dest {
			return PriorityLethal, true
		}
	}
	return 0, false
}

func ruleThreatened(e *Eval) (float64, bool) {
	for _, g := range e.Defenders() {
		if g.Scared < e.Threshold && e.Seat.Distance(e.Dest, g.Pos) < 2 {
			return PriorityThreatened, true
		}
	}
	return 0, false
}

// ruleDeadEnd avoids empty cells walled in on three or more sides.
func ruleDeadEnd(e *Eval) (float64, bool) {
	if e.IsTarget() {
		return 0, false
	}
	x, y := e.Dest.Cell()
	walls := 0
	for _, a := range []game.Action{game.East, game.North, game.West, game.South} {
		dx, dy := a.Vector()
		if e.Successor.HasWall(x+dx, y+dy) {
			walls++
		}
	}
	if walls >= 3 {
		return PriorityDeadEnd, true
	}
	return 0, false
}

func ruleSeek(e *Eval) (float64, bool) {
	d, ok := nearest(e.Seat, e.Dest, e.Targets())
	if !ok {
		return PriorityNoTarget, true
	}
	score := float64(PrioritySeek - d)
	if clustered(e) {
		score -= clusterPenalty
	}
	// Far or unreachable targets must not sink below the hazard rules.
	if score <= PriorityNoTarget {
		score = PriorityNoTarget + 1
	}
	return score, true
}

// clustered reports whether the first two teammates are both raiding and close
// to each other after the move.
func clustered(e *Eval) bool {
	team := e.Seat.Team(e.Successor)
	if len(team) < 2 {
		return false
	}
	a, b := e.Successor.Agent(team[0]), e.Successor.Agent(team[1])
	if !a.Pacman || !b.Pacman {
		return false
	}
	return e.Seat.Distance(a.Pos, b.Pos) < clusterDistance
}
