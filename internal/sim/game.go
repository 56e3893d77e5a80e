package sim

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/cartridge/capture/internal/game"
)

// Engine defaults.
const (
	DefaultMaxMoves   = 1200
	DefaultScaredTime = 40
	DefaultMinFood    = 2
)

type agent struct {
	game.AgentState
	carrying []game.Position
}

// Game is an immutable snapshot of a match. Successor returns a new snapshot.
type Game struct {
	layout   *Layout
	agents   []agent
	food     map[game.Position]bool
	capsules map[game.Position]bool
	score    float64
	moves    int

	maxMoves   int
	scaredTime int
	minFood    int

	// visible is nil for a full view, otherwise a per-agent mask
	visible []bool
}

// Option tunes a new Game.
type Option func(*Game)

// WithMaxMoves ends the match after n agent moves in total.
func WithMaxMoves(n int) Option {
	return func(g *Game) { g.maxMoves = n }
}

// WithScaredTime sets how many moves a capsule scares the opposing team.
func WithScaredTime(n int) Option {
	return func(g *Game) { g.scaredTime = n }
}

// WithMinFood ends the match once a team has at most n pellets left to defend.
func WithMinFood(n int) Option {
	return func(g *Game) { g.minFood = n }
}

// New starts a match on layout l with every agent at its start as a ghost.
func New(l *Layout, opts ...Option) *Game {
	g := &Game{
		layout:     l,
		agents:     make([]agent, l.NumAgents()),
		food:       make(map[game.Position]bool, len(l.Food)),
		capsules:   make(map[game.Position]bool, len(l.Capsules)),
		maxMoves:   DefaultMaxMoves,
		scaredTime: DefaultScaredTime,
		minFood:    DefaultMinFood,
	}
	for _, opt := range opts {
		opt(g)
	}
	for i, p := range l.Starts {
		g.agents[i] = agent{AgentState: game.AgentState{
			Pos:       p,
			Visible:   true,
			Red:       i%2 == 0,
			Direction: game.Stop,
		}}
	}
	for _, p := range l.Food {
		g.food[p] = true
	}
	for _, p := range l.Capsules {
		g.capsules[p] = true
	}
	return g
}

// Layout returns the board the match is played on.
func (g *Game) Layout() *Layout { return g.layout }

// Moves returns the number of agent moves made so far.
func (g *Game) Moves() int { return g.moves }

// NumAgents implements game.State
func (g *Game) NumAgents() int { return len(g.agents) }

// IsRed implements game.State
func (g *Game) IsRed(i int) bool { return i%2 == 0 }

// Agent implements game.State. Agents hidden from the current view report
// Visible=false and a zero position.
func (g *Game) Agent(i int) game.AgentState {
	if i < 0 || i >= len(g.agents) {
		return game.AgentState{}
	}
	s := g.agents[i].AgentState
	if g.hidden(i) {
		s.Pos = game.Position{}
		s.Visible = false
	}
	return s
}

// Carrying returns how many pellets agent i holds.
func (g *Game) Carrying(i int) int {
	return len(g.agents[i].carrying)
}

// Food implements game.State
func (g *Game) Food(red bool) []game.Position {
	return g.onSide(g.food, red)
}

// Capsules implements game.State
func (g *Game) Capsules(red bool) []game.Position {
	return g.onSide(g.capsules, red)
}

func (g *Game) onSide(cells map[game.Position]bool, red bool) []game.Position {
	var out []game.Position
	for p := range cells {
		if g.layout.IsRedSide(p) == red {
			out = append(out, p)
		}
	}
	sortPositions(out)
	return out
}

// HasWall implements game.State
func (g *Game) HasWall(x, y int) bool { return g.layout.HasWall(x, y) }

// Score implements game.State
func (g *Game) Score() float64 { return g.score }

// LegalActions implements game.State. Stop is always legal.
func (g *Game) LegalActions(i int) []game.Action {
	if i < 0 || i >= len(g.agents) {
		return nil
	}
	x, y := g.agents[i].Pos.Cell()
	actions := []game.Action{game.Stop}
	for _, a := range game.Actions {
		if a == game.Stop {
			continue
		}
		dx, dy := a.Vector()
		if !g.layout.HasWall(x+dx, y+dy) {
			actions = append(actions, a)
		}
	}
	return actions
}

// Successor implements game.State
func (g *Game) Successor(i int, action game.Action) (game.State, error) {
	return g.Apply(i, action)
}

// Apply is Successor returning the concrete type.
func (g *Game) Apply(i int, action game.Action) (*Game, error) {
	if i < 0 || i >= len(g.agents) {
		return nil, errors.Wrapf(game.ErrAgentIndex, "agent %d", i)
	}
	if !g.isLegal(i, action) {
		return nil, errors.Wrapf(game.ErrIllegalAction, "agent %d cannot move %s from %s", i, action, g.agents[i].Pos)
	}

	next := g.clone()
	me := &next.agents[i]
	me.Pos = me.Pos.Add(action)
	me.Direction = action
	me.Pacman = next.layout.IsRedSide(me.Pos) != me.Red
	if me.Scared > 0 {
		me.Scared--
	}

	if me.Pacman {
		next.eat(i)
	} else if len(me.carrying) > 0 {
		next.deposit(i)
	}
	next.collide(i)
	next.moves++
	return next, nil
}

func (g *Game) isLegal(i int, action game.Action) bool {
	for _, a := range g.LegalActions(i) {
		if a == action {
			return true
		}
	}
	return false
}

// eat picks up food or a capsule under a raiding agent.
func (g *Game) eat(i int) {
	me := &g.agents[i]
	if g.food[me.Pos] {
		delete(g.food, me.Pos)
		me.carrying = append(me.carrying, me.Pos)
	}
	if g.capsules[me.Pos] {
		delete(g.capsules, me.Pos)
		for j := range g.agents {
			if g.agents[j].Red != me.Red {
				g.agents[j].Scared = g.scaredTime
			}
		}
	}
}

// deposit scores everything an agent carried home.
func (g *Game) deposit(i int) {
	me := &g.agents[i]
	n := float64(len(me.carrying))
	if me.Red {
		g.score += n
	} else {
		g.score -= n
	}
	me.carrying = nil
}

// collide resolves agent i sharing a cell with opponents. Inside a view,
// agents hidden from the observer take no part.
func (g *Game) collide(i int) {
	if g.hidden(i) {
		return
	}
	for j := range g.agents {
		if g.agents[j].Red == g.agents[i].Red || g.agents[j].Pos != g.agents[i].Pos || g.hidden(j) {
			continue
		}
		raider, defender := i, j
		if !g.agents[i].Pacman {
			raider, defender = j, i
		}
		if g.agents[raider].Pacman == g.agents[defender].Pacman {
			continue
		}
		if g.agents[defender].Scared > 0 {
			g.respawn(defender)
		} else {
			g.respawn(raider)
		}
	}
}

func (g *Game) hidden(i int) bool {
	return g.visible != nil && !g.visible[i]
}

// respawn sends an eaten agent home and returns its food to the board.
func (g *Game) respawn(i int) {
	a := &g.agents[i]
	for _, p := range a.carrying {
		g.food[p] = true
	}
	a.carrying = nil
	a.Pos = g.layout.Starts[i]
	a.Pacman = false
	a.Scared = 0
	a.Direction = game.Stop
}

func (g *Game) clone() *Game {
	c := *g
	c.agents = make([]agent, len(g.agents))
	for i, a := range g.agents {
		c.agents[i] = a
		c.agents[i].carrying = append([]game.Position(nil), a.carrying...)
	}
	c.food = make(map[game.Position]bool, len(g.food))
	for p := range g.food {
		c.food[p] = true
	}
	c.capsules = make(map[game.Position]bool, len(g.capsules))
	for p := range g.capsules {
		c.capsules[p] = true
	}
	if g.visible != nil {
		c.visible = append([]bool(nil), g.visible...)
	}
	return &c
}

// Observe returns agent i's view of the match. Opponents farther than
// sightRange (Manhattan) from every member of i's team are hidden. A
// sightRange of 0 or less hides nothing.
func (g *Game) Observe(i int, sightRange int) *Game {
	if sightRange <= 0 {
		return g
	}
	view := g.clone()
	view.visible = make([]bool, len(g.agents))
	red := g.IsRed(i)
	for j, a := range g.agents {
		if g.IsRed(j) == red {
			view.visible[j] = true
			continue
		}
		for k, mate := range g.agents {
			if g.IsRed(k) == red && mate.Pos.Manhattan(a.Pos) <= float64(sightRange) {
				view.visible[j] = true
				break
			}
		}
	}
	return view
}

// remaining counts pellets a team still has to defend, including those being
// carried by opposing raiders.
func (g *Game) remaining(red bool) int {
	n := len(g.Food(red))
	for _, a := range g.agents {
		if a.Red != red {
			n += len(a.carrying)
		}
	}
	return n
}

// IsOver reports whether the match has ended.
func (g *Game) IsOver() bool {
	if g.maxMoves > 0 && g.moves >= g.maxMoves {
		return true
	}
	return g.remaining(true) <= g.minFood || g.remaining(false) <= g.minFood
}

// Winner returns "red", "blue" or "tie" from the current score.
func (g *Game) Winner() string {
	switch {
	case g.score > 0:
		return "red"
	case g.score < 0:
		return "blue"
	default:
		return "tie"
	}
}

// Render draws the board as text, top row first. Agents are shown by their
// layout digit.
func (g *Game) Render() string {
	l := g.layout
	var b strings.Builder
	for y := l.Height - 1; y >= 0; y-- {
		for x := 0; x < l.Width; x++ {
			p := game.Pos(x, y)
			c := byte(symEmpty)
			switch {
			case l.HasWall(x, y):
				c = symWall
			case g.food[p]:
				c = symFood
			case g.capsules[p]:
				c = symCapsule
			}
			for i, a := range g.agents {
				if a.Pos == p {
					c = byte('1' + i)
				}
			}
			b.WriteByte(c)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
