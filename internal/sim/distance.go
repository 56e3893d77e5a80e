package sim

import (
	"github.com/cartridge/capture/internal/game"
)

// Unreachable is the distance reported between cells with no path, or when a
// position is a wall or off the board.
const Unreachable = 1 << 20

// Distancer holds maze distances between every pair of open cells.
type Distancer struct {
	layout *Layout
	cells  int
	dist   []int32 // from*cells + to
}

// NewDistancer runs a breadth-first search from every open cell of l.
func NewDistancer(l *Layout) *Distancer {
	n := l.Width * l.Height
	d := &Distancer{layout: l, cells: n, dist: make([]int32, n*n)}
	for i := range d.dist {
		d.dist[i] = Unreachable
	}

	queue := make([]int, 0, n)
	for x := 0; x < l.Width; x++ {
		for y := 0; y < l.Height; y++ {
			if l.HasWall(x, y) {
				continue
			}
			from := x*l.Height + y
			row := d.dist[from*n : (from+1)*n]
			row[from] = 0
			queue = append(queue[:0], from)
			for i := 0; i < len(queue); i++ {
				cur := queue[i]
				cx, cy := cur/l.Height, cur%l.Height
				for _, a := range game.Actions[:4] {
					dx, dy := a.Vector()
					nx, ny := cx+dx, cy+dy
					if l.HasWall(nx, ny) {
						continue
					}
					next := nx*l.Height + ny
					if row[next] > row[cur]+1 {
						row[next] = row[cur] + 1
						queue = append(queue, next)
					}
				}
			}
		}
	}
	return d
}

// Distance implements game.Distancer
func (d *Distancer) Distance(a, b game.Position) int {
	ai, ok := d.index(a)
	if !ok {
		return Unreachable
	}
	bi, ok := d.index(b)
	if !ok {
		return Unreachable
	}
	return int(d.dist[ai*d.cells+bi])
}

func (d *Distancer) index(p game.Position) (int, bool) {
	x, y := p.Cell()
	if d.layout.HasWall(x, y) {
		return 0, false
	}
	return x*d.layout.Height + y, true
}
