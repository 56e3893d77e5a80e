// Package game defines the boundary between agents and the engine that hosts them.
//
// Agents never own the board. They read a State, ask it for successor states and
// consult a Distancer for maze distances. Any engine that implements these
// interfaces can run the agents in internal/policy.
package game

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoLegalActions is returned when the engine offers an agent nothing to do.
	ErrNoLegalActions = errors.New("no legal actions")
	// ErrIllegalAction is returned by engines asked to apply a move that is not legal.
	ErrIllegalAction = errors.New("illegal action")
	// ErrAgentIndex is returned for agent indices outside the match.
	ErrAgentIndex = errors.New("agent index out of range")
)

// Action is one of the discrete moves an agent can make
type Action string

const (
	Stop  Action = "Stop"
	North Action = "North"
	South Action = "South"
	East  Action = "East"
	West  Action = "West"
)

// Actions lists every action in a fixed order. Engines are free to return
// legal actions in any order.
var Actions = []Action{North, South, East, West, Stop}

// Reverse returns the opposite direction. Stop reverses to Stop.
func (a Action) Reverse() Action {
	switch a {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		return Stop
	}
}

// Vector returns the unit displacement of the action.
func (a Action) Vector() (dx, dy int) {
	switch a {
	case North:
		return 0, 1
	case South:
		return 0, -1
	case East:
		return 1, 0
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

// ParseAction converts a name such as "North" into an Action.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Position is a board coordinate. Engines that move agents in half steps may
// report positions between cells.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pos is shorthand for a cell position.
func Pos(x, y int) Position {
	return Position{X: float64(x), Y: float64(y)}
}

// NearestPoint snaps p to the closest cell.
func (p Position) NearestPoint() Position {
	return Position{X: math.Floor(p.X + 0.5), Y: math.Floor(p.Y + 0.5)}
}

// IsGrid reports whether p lies exactly on a cell.
func (p Position) IsGrid() bool {
	return p == p.NearestPoint()
}

// Cell returns the integer coordinates of the cell nearest to p.
func (p Position) Cell() (x, y int) {
	n := p.NearestPoint()
	return int(n.X), int(n.Y)
}

// Add returns p moved by one step of a.
func (p Position) Add(a Action) Position {
	dx, dy := a.Vector()
	return Position{X: p.X + float64(dx), Y: p.Y + float64(dy)}
}

// Manhattan returns |dx| + |dy| between p and o.
func (p Position) Manhattan(o Position) float64 {
	return math.Abs(p.X-o.X) + math.Abs(p.Y-o.Y)
}

func (p Position) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// AgentState is the engine's view of a single agent.
type AgentState struct {
	Pos       Position
	Visible   bool   // false when the engine hides this agent's position
	Pacman    bool   // true while the agent is on the opposing half
	Red       bool   // team colour
	Scared    int    // remaining scared moves; 0 means not scared
	Direction Action // last move made
}

// State is a read-only snapshot of a match. Implementations must not mutate
// the receiver when producing successors.
type State interface {
	// NumAgents returns the number of agents in the match.
	NumAgents() int
	// IsRed reports the team of an agent index.
	IsRed(agent int) bool
	// LegalActions returns the moves available to agent, in no particular order.
	LegalActions(agent int) []Action
	// Successor returns the state after agent applies action.
	Successor(agent int, action Action) (State, error)
	// Agent returns the state of an agent.
	Agent(agent int) AgentState
	// Food returns the pellets lying on the given half.
	Food(red bool) []Position
	// Capsules returns the capsules lying on the given half.
	Capsules(red bool) []Position
	// HasWall reports whether the cell at (x, y) is a wall.
	HasWall(x, y int) bool
	// Score is the score differential; positive favours red.
	Score() float64
}

// Distancer answers maze distance queries between cells.
type Distancer interface {
	Distance(a, b Position) int
}
