package pathfinding

import (
	"errors"
	"math"
	"testing"
)

func TestBuildGridRejectsBadConfiguration(t *testing.T) {
	square := Bounds{TopRight: Point{X: 4, Y: 4}}
	cases := []struct {
		name     string
		bounds   Bounds
		interval float64
	}{
		{"zero_interval", square, 0},
		{"negative_interval", square, -0.5},
		{"nan_interval", square, math.NaN()},
		{"inverted_bounds", Bounds{BottomLeft: Point{X: 4, Y: 4}}, 1},
		{"too_many_nodes", Bounds{TopRight: Point{X: 1e6, Y: 1e6}}, 0.01},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g, err := BuildGrid(c.bounds, c.interval, nil, 0)
			if g != nil {
				t.Fatalf("expected no grid")
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
			var ce *ConfigurationError
			if !errors.As(err, &ce) || ce.Reason == "" {
				t.Fatalf("expected a ConfigurationError with a reason, got %#v", err)
			}
		})
	}
}

func TestBuildGridCoversBounds(t *testing.T) {
	cases := []struct {
		name          string
		bounds        Bounds
		interval      float64
		width, height int
	}{
		{"unit_square", Bounds{TopRight: Point{X: 4, Y: 4}}, 1, 5, 5},
		{"fractional_corners", Bounds{BottomLeft: Point{X: -1.5, Y: -0.2}, TopRight: Point{X: 2.2, Y: 1.1}}, 1, 6, 4},
		{"half_interval", Bounds{TopRight: Point{X: 2, Y: 1}}, 0.5, 5, 3},
		{"single_point", Bounds{BottomLeft: Point{X: 3, Y: 3}, TopRight: Point{X: 3, Y: 3}}, 1, 1, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g, err := BuildGrid(c.bounds, c.interval, nil, 0)
			if err != nil {
				t.Fatalf("BuildGrid: %v", err)
			}
			if g.Width() != c.width || g.Height() != c.height {
				t.Fatalf("expected %dx%d, got %dx%d", c.width, c.height, g.Width(), g.Height())
			}
			last := g.WorldPos(Cell{X: g.Width() - 1, Y: g.Height() - 1})
			if last.X < c.bounds.TopRight.X || last.Y < c.bounds.TopRight.Y {
				t.Fatalf("grid ends at %v, short of %v", last, c.bounds.TopRight)
			}
		})
	}
}

func TestBuildGridKeepsUnroundedOrigin(t *testing.T) {
	bounds := Bounds{BottomLeft: Point{X: -1.5, Y: -0.2}, TopRight: Point{X: 2.2, Y: 1.1}}
	g, err := BuildGrid(bounds, 1, nil, 0)
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	if g.Origin() != bounds.BottomLeft {
		t.Fatalf("origin %v, expected %v", g.Origin(), bounds.BottomLeft)
	}
	last := g.WorldPos(Cell{X: g.Width() - 1, Y: g.Height() - 1})
	if want := (Point{X: 3.5, Y: 2.8}); math.Abs(last.X-want.X) > 1e-9 || math.Abs(last.Y-want.Y) > 1e-9 {
		t.Fatalf("last node at %v, expected %v", last, want)
	}
}

func TestBuildGridQueriesEveryNodeOnce(t *testing.T) {
	calls := map[Point]int{}
	var radii []float64
	query := ObstacleFunc(func(p Point, r float64) bool {
		calls[p]++
		radii = append(radii, r)
		return p.X == 1 && p.Y == 2
	})

	g, err := BuildGrid(Bounds{TopRight: Point{X: 3, Y: 3}}, 1, query, 0)
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	if len(calls) != 16 {
		t.Fatalf("expected 16 distinct query points, got %d", len(calls))
	}
	for p, n := range calls {
		if n != 1 {
			t.Fatalf("point %v queried %d times", p, n)
		}
	}
	for _, r := range radii {
		if r != DefaultProbeRadius {
			t.Fatalf("expected default radius, got %v", r)
		}
	}
	if g.WallCount() != 1 {
		t.Fatalf("expected 1 wall, got %d", g.WallCount())
	}
	n, ok := g.Node(Cell{X: 1, Y: 2})
	if !ok || !n.Wall || n.Pos != (Point{X: 1, Y: 2}) {
		t.Fatalf("unexpected node %+v ok=%v", n, ok)
	}
}

func TestGridCellOf(t *testing.T) {
	g, err := BuildGrid(Bounds{BottomLeft: Point{X: -1, Y: -1}, TopRight: Point{X: 1, Y: 1}}, 0.5, nil, 0)
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}

	cases := []struct {
		name string
		p    Point
		want Cell
		ok   bool
	}{
		{"origin", Point{X: -1, Y: -1}, Cell{0, 0}, true},
		{"rounds_to_nearest", Point{X: -0.3, Y: 0.2}, Cell{1, 2}, true},
		{"top_right", Point{X: 1, Y: 1}, Cell{4, 4}, true},
		{"left_of_grid", Point{X: -1.4, Y: 0}, Cell{-1, 2}, false},
		{"above_grid", Point{X: 0, Y: 1.3}, Cell{2, 5}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := g.CellOf(c.p)
			if got != c.want {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
			if c.ok && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if !c.ok && !errors.Is(err, ErrBounds) {
				t.Fatalf("expected ErrBounds, got %v", err)
			}
		})
	}
}

func TestAnyBlocked(t *testing.T) {
	left := ObstacleFunc(func(p Point, _ float64) bool { return p.X < 0 })
	right := ObstacleFunc(func(p Point, _ float64) bool { return p.X > 10 })
	q := AnyBlocked(left, nil, right)

	for _, c := range []struct {
		x    float64
		want bool
	}{{-1, true}, {5, false}, {11, true}} {
		if got := q.Blocked(Point{X: c.x}, 0.1); got != c.want {
			t.Fatalf("x=%v: expected %v, got %v", c.x, c.want, got)
		}
	}
}

func TestRestoreGridMatchesBuiltGrid(t *testing.T) {
	built := asciiGrid(t,
		"..#.",
		".##.",
		"....",
	)

	restored, err := RestoreGrid(built.Origin(), built.Interval(), built.Width(), built.Height(), built.Walls(), built.ProbeRadius())
	if err != nil {
		t.Fatalf("RestoreGrid: %v", err)
	}
	if restored.WallCount() != built.WallCount() {
		t.Fatalf("expected %d walls, got %d", built.WallCount(), restored.WallCount())
	}
	for i, n := range built.Nodes() {
		if restored.Nodes()[i] != n {
			t.Fatalf("node %d: expected %+v, got %+v", i, n, restored.Nodes()[i])
		}
	}

	if _, err := RestoreGrid(Point{}, 1, 2, 2, []bool{true}, 0); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for a short mask, got %v", err)
	}
	if _, err := RestoreGrid(Point{}, 0, 2, 2, make([]bool, 4), 0); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for a zero interval, got %v", err)
	}
}
