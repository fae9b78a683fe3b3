package pathfinding

import (
	"context"
	"log/slog"
	"time"
)

// State is the lifecycle of a Finder.
type State int

const (
	StateNone State = iota
	StateCalculating
	StateComplete
	StateNotFound
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateCalculating:
		return "calculating"
	case StateComplete:
		return "complete"
	case StateNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Mode selects the search algorithm for one search.
type Mode int

const (
	ModeNone Mode = iota
	// ModeBasic runs single-level A* over the node grid.
	ModeBasic
	// ModeRegion routes over the region graph first, then solves node
	// segments along that corridor.
	ModeRegion
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeBasic:
		return "basic"
	case ModeRegion:
		return "region"
	default:
		return "unknown"
	}
}

// Result is what Tick reports. Path and Cost are set only in StateComplete.
type Result struct {
	State   State
	Mode    Mode
	Path    []Node
	Regions []string
	Cost    int
	Visited int
	Ticks   int
	Elapsed time.Duration
}

// Finder drives one search at a time against a shared, read-only Grid.
// It is meant to be ticked from a single goroutine, typically once per
// frame of the host loop; separate Finders may search the same Grid
// concurrently.
type Finder struct {
	grid    *Grid
	regions *RegionGraph
	opts    Options
	log     *slog.Logger
	metrics *searchMetrics

	state  State
	mode   Mode
	nodes  *nodeSearch
	region *regionSearch

	corridor  *corridor
	start     Cell
	target    Cell
	targetIdx int
	// path accumulates node indices of finished segments.
	path []int
	cost int

	startedAt time.Time
	elapsed   time.Duration
	ticks     int
	result    []Node
}

// NewFinder returns an idle finder over grid. regions may be nil, in which
// case only ModeBasic searches can start.
func NewFinder(grid *Grid, regions *RegionGraph, options ...Option) (*Finder, error) {
	if grid == nil {
		return nil, configErrorf("finder needs a grid")
	}
	if regions != nil && regions.grid != grid {
		return nil, configErrorf("region graph was built for a different grid")
	}
	opts := buildOptions(options)
	f := &Finder{
		grid:    grid,
		regions: regions,
		opts:    opts,
		log:     opts.Logger,
		metrics: newSearchMetrics(opts.MeterProvider),
		nodes:   newNodeSearch(grid, opts.QueueCapacity),
	}
	if regions != nil {
		f.region = newRegionSearch(regions)
	}
	return f, nil
}

// State returns the current lifecycle state.
func (f *Finder) State() State { return f.state }

// Mode returns the mode of the current search, ModeNone when idle.
func (f *Finder) Mode() Mode { return f.mode }

// Start validates both endpoints and begins a search, running its first time
// slice. Endpoints are checked before any search state is touched.
func (f *Finder) Start(mode Mode, from, to Point) error {
	if f.state != StateNone {
		return ErrSearchActive
	}

	start, err := f.grid.CellOf(from)
	if err != nil {
		return err
	}
	target, err := f.grid.CellOf(to)
	if err != nil {
		return err
	}

	var startRegion, targetRegion int
	switch mode {
	case ModeBasic:
	case ModeRegion:
		if f.regions == nil {
			return configErrorf("region search needs a region graph")
		}
		var ok bool
		if startRegion, ok = f.regions.RegionAt(start); !ok {
			return &BoundsError{Point: from, Cell: start, Reason: "start lies in no region"}
		}
		if targetRegion, ok = f.regions.RegionAt(target); !ok {
			return &BoundsError{Point: to, Cell: target, Reason: "target lies in no region"}
		}
	default:
		return configErrorf("unknown search mode %d", mode)
	}

	f.mode = mode
	f.state = StateCalculating
	f.start = start
	f.target = target
	f.targetIdx = f.grid.index(target)
	f.startedAt = f.opts.Now()
	f.log.Debug("pathfinding: search started",
		"mode", mode.String(),
		"start", start,
		"target", target,
	)

	if f.grid.nodes[f.targetIdx].Wall {
		f.finish(StateNotFound)
		return nil
	}

	startIdx := f.grid.index(start)
	if mode == ModeRegion {
		route := f.region.route(startRegion, targetRegion)
		if route == nil {
			f.finish(StateNotFound)
			return nil
		}
		f.corridor = newCorridor(f.regions, route)
		f.beginSegment(startIdx)
	} else {
		f.nodes.begin(startIdx, target, f.isTarget, nil)
	}

	f.step()
	return nil
}

// Tick advances a calculating search by at most one time slice. In any other
// state it does no work and reports the current outcome.
func (f *Finder) Tick() Result {
	if f.state == StateCalculating {
		f.step()
	}
	return f.snapshot()
}

// Run ticks f until the search reaches a final state or ctx is done, in
// which case the search is left calculating and ctx's error is returned.
func (f *Finder) Run(ctx context.Context) (Result, error) {
	r := f.Tick()
	for r.State == StateCalculating {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		r = f.Tick()
	}
	return r, nil
}

// Reset abandons any search and restores every touched node and region to
// the unvisited sentinel. It is valid in every state.
func (f *Finder) Reset() {
	f.nodes.reset()
	if f.region != nil {
		f.region.reset()
	}
	f.corridor = nil
	f.path = f.path[:0]
	f.cost = 0
	f.result = nil
	f.ticks = 0
	f.elapsed = 0
	f.mode = ModeNone
	f.state = StateNone
}

// NodeCost returns the current search state of the node at c.
func (f *Finder) NodeCost(c Cell) (NodeCost, bool) {
	if !f.grid.InBounds(c) {
		return NodeCost{}, false
	}
	i := f.grid.index(c)
	costs := f.nodes.costs
	nc := NodeCost{G: costs.g[i], H: costs.h[i]}
	if p := costs.parent[i]; p != unvisited {
		nc.Parent = f.grid.cell(int(p))
		nc.HasParent = true
	}
	return nc, true
}

// RegionCost returns the current search state of the named region.
func (f *Finder) RegionCost(name string) (RegionCost, bool) {
	if f.regions == nil {
		return RegionCost{}, false
	}
	i, ok := f.regions.Index(name)
	if !ok {
		return RegionCost{}, false
	}
	return f.region.cost(i), true
}

func (f *Finder) isTarget(idx int) bool { return idx == f.targetIdx }

// beginSegment seeds the next node-level leg of a region search.
func (f *Finder) beginSegment(from int) {
	c := f.corridor
	if c.final() {
		f.nodes.begin(from, f.target, f.isTarget, c.allows)
		return
	}
	next := c.target()
	f.nodes.begin(from, next.Anchor, func(idx int) bool {
		return next.Contains(f.grid.cell(idx))
	}, c.allows)
}

func (f *Finder) step() {
	f.ticks++
	budget := &slice{
		now:       f.opts.Now,
		deadline:  f.opts.Now().Add(f.opts.SliceBudget),
		remaining: -1,
	}
	if f.opts.ExpansionLimit > 0 {
		budget.remaining = f.opts.ExpansionLimit
	}

	for {
		switch f.nodes.run(budget) {
		case searching:
			return
		case exhausted:
			f.finish(StateNotFound)
			return
		}

		f.appendSegment()
		if f.mode == ModeBasic || f.corridor.final() {
			f.finish(StateComplete)
			return
		}

		f.corridor.next++
		f.beginSegment(f.path[len(f.path)-1])
		if budget.exhausted() {
			return
		}
	}
}

// appendSegment moves the finished segment onto the assembled path. The
// joint node shared by consecutive segments is kept once.
func (f *Finder) appendSegment() {
	seg := f.nodes.path()
	if len(f.path) > 0 && len(seg) > 0 {
		seg = seg[1:]
	}
	f.path = append(f.path, seg...)
	f.cost += f.nodes.pathCost()
}

func (f *Finder) finish(state State) {
	f.state = state
	f.elapsed = f.opts.Now().Sub(f.startedAt)

	if state == StateComplete {
		f.result = make([]Node, len(f.path))
		for i, idx := range f.path {
			f.result[i] = f.grid.nodes[idx]
		}
		f.log.Info("pathfinding: search complete",
			"mode", f.mode.String(),
			"path_nodes", len(f.result),
			"cost", f.cost,
			"visited", f.nodes.visited,
			"ticks", f.ticks,
			"elapsed", f.elapsed,
		)
	} else {
		f.log.Info("pathfinding: path not found",
			"mode", f.mode.String(),
			"visited", f.nodes.visited,
			"ticks", f.ticks,
			"elapsed", f.elapsed,
		)
	}
	f.metrics.record(context.Background(), f.mode, state, f.elapsed, f.nodes.visited, f.ticks)
}

func (f *Finder) snapshot() Result {
	r := Result{
		State:   f.state,
		Mode:    f.mode,
		Visited: f.nodes.visited,
		Ticks:   f.ticks,
		Elapsed: f.elapsed,
	}
	if f.state == StateCalculating {
		r.Elapsed = f.opts.Now().Sub(f.startedAt)
	}
	if f.corridor != nil {
		r.Regions = f.corridor.names()
	}
	if f.state == StateComplete {
		r.Path = f.result
		r.Cost = f.cost
	}
	return r
}
