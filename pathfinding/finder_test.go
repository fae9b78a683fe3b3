package pathfinding

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"
)

func TestFinderOpenGridDiagonal(t *testing.T) {
	g := asciiGrid(t, openRows(5, 5)...)
	f := newTestFinder(t, g, nil)

	if err := f.Start(ModeBasic, pt(0, 0), pt(4, 4)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r := runToEnd(t, f)
	if r.State != StateComplete {
		t.Fatalf("expected complete, got %v", r.State)
	}
	if r.Cost != 56 {
		t.Fatalf("expected cost 56, got %d", r.Cost)
	}
	want := []Cell{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}}
	if !slices.Equal(keys(r.Path), want) {
		t.Fatalf("expected %v, got %v", want, keys(r.Path))
	}
	if walkCost(t, r.Path) != r.Cost {
		t.Fatalf("reported cost %d disagrees with walked cost", r.Cost)
	}
}

func TestFinderAvoidsCentreWall(t *testing.T) {
	g := asciiGrid(t,
		"...",
		".#.",
		"...",
	)
	f := newTestFinder(t, g, nil)

	if err := f.Start(ModeBasic, pt(0, 0), pt(2, 2)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r := runToEnd(t, f)
	if r.State != StateComplete {
		t.Fatalf("expected complete, got %v", r.State)
	}
	if slices.Contains(keys(r.Path), Cell{1, 1}) {
		t.Fatalf("path %v crosses the wall", keys(r.Path))
	}
	want := dijkstra(g, Cell{0, 0}, Cell{2, 2})
	if r.Cost != want || walkCost(t, r.Path) != want {
		t.Fatalf("expected cost %d, got %d", want, r.Cost)
	}
}

func TestFinderEnclosedStartNotFound(t *testing.T) {
	g := asciiGrid(t,
		".......",
		".#####.",
		".#...#.",
		".#...#.",
		".#...#.",
		".#####.",
		".......",
	)
	f := newTestFinder(t, g, nil)

	if err := f.Start(ModeBasic, pt(3, 3), pt(0, 0)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r := runToEnd(t, f)
	if r.State != StateNotFound {
		t.Fatalf("expected not found, got %v", r.State)
	}
	if r.Path != nil || r.Cost != 0 {
		t.Fatalf("not-found result should carry no path, got %v cost %d", keys(r.Path), r.Cost)
	}
	if r.Visited != 9 {
		t.Fatalf("expected the 9 enclosed cells to be visited, got %d", r.Visited)
	}
}

func TestFinderWalledTargetEndsImmediately(t *testing.T) {
	g := asciiGrid(t,
		"...",
		"..#",
	)
	f := newTestFinder(t, g, nil)
	if err := f.Start(ModeBasic, pt(0, 0), pt(2, 1)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if f.State() != StateNotFound {
		t.Fatalf("expected not found right after Start, got %v", f.State())
	}
	if r := f.Tick(); r.Visited != 0 {
		t.Fatalf("expected no expansion, got %d", r.Visited)
	}
}

func TestFinderMatchesDijkstra(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	for trial := 0; trial < 40; trial++ {
		width, height := 6+rng.IntN(10), 6+rng.IntN(10)
		rows := openRows(width, height)
		for y := range rows {
			b := []byte(rows[y])
			for x := range b {
				if rng.IntN(100) < 28 {
					b[x] = '#'
				}
			}
			rows[y] = string(b)
		}
		start := Cell{rng.IntN(width), rng.IntN(height)}
		target := Cell{rng.IntN(width), rng.IntN(height)}
		rows[start.Y] = rows[start.Y][:start.X] + "." + rows[start.Y][start.X+1:]
		rows[target.Y] = rows[target.Y][:target.X] + "." + rows[target.Y][target.X+1:]

		g := asciiGrid(t, rows...)
		f := newTestFinder(t, g, nil)
		if err := f.Start(ModeBasic, g.WorldPos(start), g.WorldPos(target)); err != nil {
			t.Fatalf("trial %d: Start: %v", trial, err)
		}
		r := runToEnd(t, f)

		want := dijkstra(g, start, target)
		if want < 0 {
			if r.State != StateNotFound {
				t.Fatalf("trial %d: expected not found, got %v", trial, r.State)
			}
			continue
		}
		if r.State != StateComplete {
			t.Fatalf("trial %d: expected complete (cost %d), got %v", trial, want, r.State)
		}
		if r.Cost != want {
			t.Fatalf("trial %d: expected optimal cost %d, got %d", trial, want, r.Cost)
		}
		if got := walkCost(t, r.Path); got != want {
			t.Fatalf("trial %d: walked cost %d, expected %d", trial, got, want)
		}
		if r.Path[0].Key != start || r.Path[len(r.Path)-1].Key != target {
			t.Fatalf("trial %d: path runs %v..%v, expected %v..%v",
				trial, r.Path[0].Key, r.Path[len(r.Path)-1].Key, start, target)
		}
	}
}

func mazeRows() []string {
	return []string{
		"....................",
		".#################..",
		".#...............#..",
		".#.#############.#..",
		".#.#...........#.#..",
		".#.#.#########.#.#..",
		".#.#.#.......#.#.#..",
		".#...#.#####.#...#..",
		".#####.#...#.#####..",
		".......#.#.........#",
	}
}

func TestFinderDeterministic(t *testing.T) {
	g := asciiGrid(t, mazeRows()...)
	var first []Cell
	for run := 0; run < 5; run++ {
		f := newTestFinder(t, g, nil)
		if err := f.Start(ModeBasic, pt(0, 0), pt(9, 6)); err != nil {
			t.Fatalf("Start: %v", err)
		}
		r := runToEnd(t, f)
		if r.State != StateComplete {
			t.Fatalf("run %d: expected complete, got %v", run, r.State)
		}
		if run == 0 {
			first = keys(r.Path)
			continue
		}
		if !slices.Equal(first, keys(r.Path)) {
			t.Fatalf("run %d: path differs\nfirst %v\ngot   %v", run, first, keys(r.Path))
		}
	}
}

func TestFinderResumesAcrossSlices(t *testing.T) {
	g := asciiGrid(t, mazeRows()...)

	whole := newTestFinder(t, g, nil, WithSliceBudget(time.Hour))
	if err := whole.Start(ModeBasic, pt(0, 0), pt(9, 6)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if whole.State() != StateComplete {
		t.Fatalf("unbounded slice should finish inside Start, got %v", whole.State())
	}
	want := whole.Tick()

	cases := []struct {
		name string
		opts []Option
	}{
		{"one_expansion_per_tick", []Option{WithExpansionLimit(1)}},
		{"three_expansions_per_tick", []Option{WithExpansionLimit(3)}},
		{"clock_deadline", []Option{WithClock((&stepClock{step: time.Millisecond}).Now)}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newTestFinder(t, g, nil, c.opts...)
			if err := f.Start(ModeBasic, pt(0, 0), pt(9, 6)); err != nil {
				t.Fatalf("Start: %v", err)
			}
			if f.State() != StateCalculating {
				t.Fatalf("expected search to span several ticks, got %v", f.State())
			}
			got := runToEnd(t, f)
			if got.Ticks < 2 {
				t.Fatalf("expected several ticks, got %d", got.Ticks)
			}
			if got.Cost != want.Cost || !slices.Equal(keys(got.Path), keys(want.Path)) {
				t.Fatalf("sliced search diverged: cost %d vs %d\n%v\n%v",
					got.Cost, want.Cost, keys(got.Path), keys(want.Path))
			}
			if got.Visited != want.Visited {
				t.Fatalf("expected %d visited, got %d", want.Visited, got.Visited)
			}
		})
	}
}

func TestFinderExpansionLimitBoundsTick(t *testing.T) {
	g := asciiGrid(t, openRows(30, 30)...)
	f := newTestFinder(t, g, nil, WithExpansionLimit(4), WithSliceBudget(time.Hour))
	if err := f.Start(ModeBasic, pt(0, 0), pt(29, 17)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	prev := f.Tick().Visited
	if prev != 8 {
		t.Fatalf("expected 8 visited after Start and one Tick, got %d", prev)
	}
	for f.State() == StateCalculating {
		r := f.Tick()
		if r.Visited-prev > 4 {
			t.Fatalf("tick expanded %d nodes", r.Visited-prev)
		}
		prev = r.Visited
	}
}

func TestFinderResetRestoresSentinels(t *testing.T) {
	g := asciiGrid(t, mazeRows()...)

	cases := []struct {
		name   string
		target Point
		state  State
	}{
		{"after_complete", pt(9, 6), StateComplete},
		{"after_not_found", pt(19, 0), StateNotFound},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rows := mazeRows()
			if c.state == StateNotFound {
				rows[0] = rows[0][:18] + "#."
				rows[1] = rows[1][:18] + "##"
			}
			g := asciiGrid(t, rows...)
			f := newTestFinder(t, g, nil)
			if err := f.Start(ModeBasic, pt(0, 0), c.target); err != nil {
				t.Fatalf("Start: %v", err)
			}
			if r := runToEnd(t, f); r.State != c.state {
				t.Fatalf("expected %v, got %v", c.state, r.State)
			}

			f.Reset()
			assertPristine(t, f, g)
			if r := f.Tick(); r.State != StateNone || r.Mode != ModeNone || r.Visited != 0 {
				t.Fatalf("expected idle result after reset, got %+v", r)
			}
		})
	}

	t.Run("mid_search", func(t *testing.T) {
		f := newTestFinder(t, g, nil, WithExpansionLimit(2))
		if err := f.Start(ModeBasic, pt(0, 0), pt(9, 6)); err != nil {
			t.Fatalf("Start: %v", err)
		}
		f.Tick()
		f.Reset()
		assertPristine(t, f, g)

		if err := f.Start(ModeBasic, pt(0, 0), pt(9, 6)); err != nil {
			t.Fatalf("restart: %v", err)
		}
		if r := runToEnd(t, f); r.State != StateComplete || r.Cost != dijkstra(g, Cell{0, 0}, Cell{9, 6}) {
			t.Fatalf("restarted search returned %v cost %d", r.State, r.Cost)
		}
	})
}

func assertPristine(t *testing.T, f *Finder, g *Grid) {
	t.Helper()
	for _, n := range g.Nodes() {
		c, _ := f.NodeCost(n.Key)
		if c.G != -1 || c.H != -1 || c.HasParent {
			t.Fatalf("node %v not reset: %+v", n.Key, c)
		}
	}
	if f.State() != StateNone || f.Mode() != ModeNone {
		t.Fatalf("expected idle finder, got %v/%v", f.State(), f.Mode())
	}
}

func TestFinderStartValidation(t *testing.T) {
	g := asciiGrid(t, openRows(4, 4)...)

	t.Run("out_of_bounds", func(t *testing.T) {
		f := newTestFinder(t, g, nil)
		for _, c := range []struct{ from, to Point }{
			{pt(-2, 0), pt(1, 1)},
			{pt(0, 0), pt(1, 9)},
		} {
			err := f.Start(ModeBasic, c.from, c.to)
			if !errors.Is(err, ErrBounds) {
				t.Fatalf("expected ErrBounds, got %v", err)
			}
			if f.State() != StateNone {
				t.Fatalf("rejected start changed state to %v", f.State())
			}
			assertPristine(t, f, g)
		}
	})

	t.Run("region_mode_without_graph", func(t *testing.T) {
		f := newTestFinder(t, g, nil)
		if err := f.Start(ModeRegion, pt(0, 0), pt(1, 1)); !errors.Is(err, ErrConfiguration) {
			t.Fatalf("expected ErrConfiguration, got %v", err)
		}
	})

	t.Run("unknown_mode", func(t *testing.T) {
		f := newTestFinder(t, g, nil)
		if err := f.Start(ModeNone, pt(0, 0), pt(1, 1)); !errors.Is(err, ErrConfiguration) {
			t.Fatalf("expected ErrConfiguration, got %v", err)
		}
	})

	t.Run("second_start", func(t *testing.T) {
		f := newTestFinder(t, g, nil)
		if err := f.Start(ModeBasic, pt(0, 0), pt(3, 3)); err != nil {
			t.Fatalf("Start: %v", err)
		}
		if err := f.Start(ModeBasic, pt(0, 0), pt(1, 1)); !errors.Is(err, ErrSearchActive) {
			t.Fatalf("expected ErrSearchActive, got %v", err)
		}
		f.Reset()
		if err := f.Start(ModeBasic, pt(0, 0), pt(1, 1)); err != nil {
			t.Fatalf("Start after reset: %v", err)
		}
	})
}

func TestFinderCompleteResultIsStable(t *testing.T) {
	g := asciiGrid(t, openRows(6, 3)...)
	f := newTestFinder(t, g, nil)
	if err := f.Start(ModeBasic, pt(0, 0), pt(5, 2)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	a := runToEnd(t, f)
	b := f.Tick()
	if a.State != StateComplete || b.State != StateComplete {
		t.Fatalf("expected complete twice, got %v and %v", a.State, b.State)
	}
	if a.Ticks != b.Ticks || !slices.Equal(keys(a.Path), keys(b.Path)) {
		t.Fatalf("ticking a finished search changed its result")
	}
}

func TestFinderSharedGridConcurrentSearches(t *testing.T) {
	g := asciiGrid(t, mazeRows()...)
	want := dijkstra(g, Cell{0, 0}, Cell{9, 6})

	done := make(chan Result, 4)
	for i := 0; i < 4; i++ {
		go func() {
			f, err := NewFinder(g, nil, WithLogger(quietLogger()), WithExpansionLimit(1+i))
			if err != nil {
				done <- Result{}
				return
			}
			if err := f.Start(ModeBasic, pt(0, 0), pt(9, 6)); err != nil {
				done <- Result{}
				return
			}
			for f.State() == StateCalculating {
				f.Tick()
			}
			done <- f.Tick()
		}()
	}
	for i := 0; i < 4; i++ {
		r := <-done
		if r.State != StateComplete || r.Cost != want {
			t.Fatalf("concurrent search returned %v cost %d, want cost %d", r.State, r.Cost, want)
		}
	}
}

func TestFinderRunStopsOnCancelledContext(t *testing.T) {
	g := asciiGrid(t, openRows(30, 30)...)
	f := newTestFinder(t, g, nil, WithExpansionLimit(1))

	if err := f.Start(ModeBasic, pt(0, 0), pt(29, 29)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := f.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if r.State != StateCalculating {
		t.Fatalf("expected the search to stay calculating, got %v", r.State)
	}

	r, err = f.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.State != StateComplete || r.Cost != 29*diagonalCost {
		t.Fatalf("expected a complete diagonal path, got %v cost %d", r.State, r.Cost)
	}
}
