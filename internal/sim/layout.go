// Package sim is a small reference engine for the capture game. It implements
// game.State so agents can be played and tested without an external engine.
package sim

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cartridge/capture/internal/game"
)

// Layout symbols.
const (
	symWall    = '%'
	symFood    = '.'
	symCapsule = 'o'
	symEmpty   = ' '
)

// MaxAgents is the largest number of agents a layout can seat.
const MaxAgents = 4

// DefaultLayout is a small two-team maze, symmetric under a half turn.
const DefaultLayout = `%%%%%%%%%%%%%%%%%%%%
%1 . .  %.. .  . .o%
%3%%. %. o . %%  . %
%. .  %. . . . .%. %
% .%. . . . .%  . .%
% .  %% . o .% .%%4%
%o. .  . ..%  . . 2%
%%%%%%%%%%%%%%%%%%%%`

// Layout is a parsed maze. Row 0 of the text is the top of the board, so y
// grows upward.
type Layout struct {
	Width    int
	Height   int
	Food     []game.Position
	Capsules []game.Position
	Starts   []game.Position // indexed by agent

	walls []bool // x*Height + y
}

// ParseLayout reads a layout. Walls are '%', food '.', capsules 'o' and agent
// starts the digits '1' to '4' (agent index digit-1). Even indices play red.
func ParseLayout(text string) (*Layout, error) {
	lines := strings.Split(strings.Trim(strings.ReplaceAll(text, "\r", ""), "\n"), "\n")
	if len(lines) == 0 || len(lines[0]) == 0 {
		return nil, fmt.Errorf("layout is empty")
	}

	l := &Layout{Width: len(lines[0]), Height: len(lines)}
	l.walls = make([]bool, l.Width*l.Height)
	starts := map[int]game.Position{}

	for row, line := range lines {
		if len(line) != l.Width {
			return nil, fmt.Errorf("layout row %d has width %d, want %d", row, len(line), l.Width)
		}
		y := l.Height - 1 - row
		for x, c := range line {
			p := game.Pos(x, y)
			switch {
			case c == symWall:
				l.walls[x*l.Height+y] = true
			case c == symFood:
				l.Food = append(l.Food, p)
			case c == symCapsule:
				l.Capsules = append(l.Capsules, p)
			case c >= '1' && c <= '0'+MaxAgents:
				idx := int(c - '1')
				if _, dup := starts[idx]; dup {
					return nil, fmt.Errorf("agent %c placed twice", c)
				}
				starts[idx] = p
			case c == symEmpty:
			default:
				return nil, fmt.Errorf("unknown layout symbol %q at row %d col %d", c, row, x)
			}
		}
	}

	if len(starts) < 2 || len(starts)%2 != 0 {
		return nil, fmt.Errorf("layout needs an even number of agents, got %d", len(starts))
	}
	l.Starts = make([]game.Position, len(starts))
	for i := range l.Starts {
		p, ok := starts[i]
		if !ok {
			return nil, fmt.Errorf("layout is missing agent %d", i+1)
		}
		l.Starts[i] = p
	}
	for i, p := range l.Starts {
		if l.IsRedSide(p) != (i%2 == 0) {
			return nil, fmt.Errorf("agent %d starts on the wrong half", i+1)
		}
	}

	sortPositions(l.Food)
	sortPositions(l.Capsules)
	return l, nil
}

// MustParseLayout is ParseLayout that panics, for built-in layouts.
func MustParseLayout(text string) *Layout {
	l, err := ParseLayout(text)
	if err != nil {
		panic(err)
	}
	return l
}

// InBounds reports whether (x, y) lies on the board.
func (l *Layout) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < l.Width && y < l.Height
}

// HasWall reports whether (x, y) is a wall. Cells off the board count as walls.
func (l *Layout) HasWall(x, y int) bool {
	if !l.InBounds(x, y) {
		return true
	}
	return l.walls[x*l.Height+y]
}

// IsRedSide reports whether p lies on the red (left) half.
func (l *Layout) IsRedSide(p game.Position) bool {
	x, _ := p.Cell()
	return x < l.Width/2
}

// NumAgents returns the number of agent starts.
func (l *Layout) NumAgents() int {
	return len(l.Starts)
}

func sortPositions(ps []game.Position) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].X != ps[j].X {
			return ps[i].X < ps[j].X
		}
		return ps[i].Y < ps[j].Y
	})
}
