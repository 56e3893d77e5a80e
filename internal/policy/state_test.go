package policy

import (
	"github.com/stretchr/testify/mock"

	"github.com/cartridge/capture/internal/game"
)

// boardState is a small in-memory game.State for exercising agents without an
// engine. Moving an agent only changes its position and direction; if half is
// set a move covers half a cell.
type boardState struct {
	agents   []game.AgentState
	legal    map[int][]game.Action
	walls    map[game.Position]bool
	food     map[bool][]game.Position
	capsules map[bool][]game.Position
	score    float64
	half     bool
	calls    *int
}

func newBoard(agents ...game.AgentState) *boardState {
	return &boardState{
		agents:   agents,
		legal:    map[int][]game.Action{},
		walls:    map[game.Position]bool{},
		food:     map[bool][]game.Position{},
		capsules: map[bool][]game.Position{},
	}
}

func (b *boardState) clone() *boardState {
	c := *b
	c.agents = append([]game.AgentState{}, b.agents...)
	return &c
}

func (b *boardState) NumAgents() int       { return len(b.agents) }
func (b *boardState) IsRed(agent int) bool { return b.agents[agent].Red }

func (b *boardState) LegalActions(agent int) []game.Action { return b.legal[agent] }

func (b *boardState) Successor(agent int, action game.Action) (game.State, error) {
	if b.calls != nil {
		*b.calls++
	}
	next := b.clone()
	a := next.agents[agent]
	dx, dy := action.Vector()
	step := 1.0
	if b.half {
		step = 0.5
	}
	a.Pos = game.Position{X: a.Pos.X + float64(dx)*step, Y: a.Pos.Y + float64(dy)*step}
	a.Direction = action
	next.agents[agent] = a
	return next, nil
}

func (b *boardState) Agent(agent int) game.AgentState   { return b.agents[agent] }
func (b *boardState) Food(red bool) []game.Position     { return b.food[red] }
func (b *boardState) Capsules(red bool) []game.Position { return b.capsules[red] }
func (b *boardState) HasWall(x, y int) bool             { return b.walls[game.Pos(x, y)] }
func (b *boardState) Score() float64                    { return b.score }

func (b *boardState) wall(cells ...game.Position) *boardState {
	for _, c := range cells {
		b.walls[c] = true
	}
	return b
}

// manhattan stands in for a maze distancer on open boards.
type manhattan struct{}

func (manhattan) Distance(a, b game.Position) int { return int(a.Manhattan(b)) }

func ghost(x, y int, red bool) game.AgentState {
	return game.AgentState{Pos: game.Pos(x, y), Visible: true, Red: red, Direction: game.Stop}
}

func pacman(x, y int, red bool) game.AgentState {
	a := ghost(x, y, red)
	a.Pacman = true
	return a
}

func hidden(red bool) game.AgentState {
	return game.AgentState{Pos: game.Pos(-100, -100), Red: red, Direction: game.Stop}
}

// tableEval scores actions from a fixed table.
type tableEval map[game.Action]float64

func (t tableEval) Evaluate(_ game.Seat, _, _ game.State, a game.Action) (float64, error) {
	return t[a], nil
}

// mockState is a testify mock of the engine boundary.
type mockState struct {
	mock.Mock
}

func (m *mockState) NumAgents() int       { return m.Called().Int(0) }
func (m *mockState) IsRed(agent int) bool { return m.Called(agent).Bool(0) }

func (m *mockState) LegalActions(agent int) []game.Action {
	return m.Called(agent).Get(0).([]game.Action)
}

func (m *mockState) Successor(agent int, action game.Action) (game.State, error) {
	args := m.Called(agent, action)
	next, _ := args.Get(0).(game.State)
	return next, args.Error(1)
}

func (m *mockState) Agent(agent int) game.AgentState {
	return m.Called(agent).Get(0).(game.AgentState)
}

func (m *mockState) Food(red bool) []game.Position {
	return m.Called(red).Get(0).([]game.Position)
}

func (m *mockState) Capsules(red bool) []game.Position {
	return m.Called(red).Get(0).([]game.Position)
}

func (m *mockState) HasWall(x, y int) bool { return m.Called(x, y).Bool(0) }
func (m *mockState) Score() float64        { return m.Called().Get(0).(float64) }
