package pathfinding

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"
)

// asciiGrid builds a grid with interval 1 and origin (0,0). rows[y][x] == '#'
// marks a wall; rows[0] is y = 0.
func asciiGrid(t *testing.T, rows ...string) *Grid {
	t.Helper()
	height := len(rows)
	width := len(rows[0])
	walls := ObstacleFunc(func(p Point, _ float64) bool {
		x, y := int(math.Round(p.X)), int(math.Round(p.Y))
		return rows[y][x] == '#'
	})
	g, err := BuildGrid(Bounds{TopRight: Point{X: float64(width - 1), Y: float64(height - 1)}}, 1, walls, 0)
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	if g.Width() != width || g.Height() != height {
		t.Fatalf("expected %dx%d grid, got %dx%d", width, height, g.Width(), g.Height())
	}
	return g
}

func openRows(width, height int) []string {
	rows := make([]string, height)
	for y := range rows {
		b := make([]byte, width)
		for x := range b {
			b[x] = '.'
		}
		rows[y] = string(b)
	}
	return rows
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFinder(t *testing.T, g *Grid, rg *RegionGraph, opts ...Option) *Finder {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	f, err := NewFinder(g, rg, opts...)
	if err != nil {
		t.Fatalf("NewFinder: %v", err)
	}
	return f
}

func pt(x, y float64) Point { return Point{X: x, Y: y} }

// runToEnd ticks until the finder leaves StateCalculating.
func runToEnd(t *testing.T, f *Finder) Result {
	t.Helper()
	for i := 0; i < 1_000_000; i++ {
		r := f.Tick()
		if r.State != StateCalculating {
			return r
		}
	}
	t.Fatalf("search did not finish")
	return Result{}
}

// dijkstra is the reference shortest-path cost over the same 8-connected,
// 10/14 graph; -1 when unreachable.
func dijkstra(g *Grid, from, to Cell) int {
	n := g.Width() * g.Height()
	dist := make([]int, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = math.MaxInt
	}
	dist[g.index(from)] = 0
	for {
		cur := -1
		for i := 0; i < n; i++ {
			if !done[i] && dist[i] != math.MaxInt && (cur < 0 || dist[i] < dist[cur]) {
				cur = i
			}
		}
		if cur < 0 {
			return -1
		}
		if cur == g.index(to) {
			return dist[cur]
		}
		done[cur] = true
		c := g.cell(cur)
		for dir := 0; dir < 8; dir++ {
			next := Cell{X: c.X + stepX[dir], Y: c.Y + stepY[dir]}
			if !g.InBounds(next) || g.nodes[g.index(next)].Wall {
				continue
			}
			step := diagonalCost
			if stepX[dir] == 0 || stepY[dir] == 0 {
				step = orthogonalCost
			}
			ni := g.index(next)
			if d := dist[cur] + step; d < dist[ni] {
				dist[ni] = d
			}
		}
	}
}

// walkCost checks a path is a chain of walkable neighbours and returns its cost.
func walkCost(t *testing.T, path []Node) int {
	t.Helper()
	total := 0
	for i, n := range path {
		if n.Wall {
			t.Fatalf("path crosses wall at %v", n.Key)
		}
		if i == 0 {
			continue
		}
		dx := n.Key.X - path[i-1].Key.X
		dy := n.Key.Y - path[i-1].Key.Y
		switch {
		case dx == 0 && dy == 0, dx < -1, dx > 1, dy < -1, dy > 1:
			t.Fatalf("path jumps from %v to %v", path[i-1].Key, n.Key)
		case dx == 0 || dy == 0:
			total += orthogonalCost
		default:
			total += diagonalCost
		}
	}
	return total
}

func keys(path []Node) []Cell {
	out := make([]Cell, len(path))
	for i, n := range path {
		out[i] = n.Key
	}
	return out
}

// stepClock advances by step on every reading.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}
