package pathfinding

import "time"

type searchStatus int

const (
	searching searchStatus = iota
	found
	exhausted
)

// openEntry is a queued node together with the F it had when pushed. A node
// that improves is pushed again; the older entry stays in the queue and is
// simply expanded a second time when it surfaces.
type openEntry struct {
	node int32
	f    int
}

func openCost(e openEntry) int { return e.f }

// slice bounds the work of one Tick.
type slice struct {
	now      func() time.Time
	deadline time.Time
	// remaining expansions, or -1 for no cap.
	remaining int
	expanded  int
}

func (s *slice) exhausted() bool {
	if s.expanded == 0 {
		return false
	}
	if s.remaining == 0 {
		return true
	}
	return s.now().After(s.deadline)
}

func (s *slice) spend() {
	s.expanded++
	if s.remaining > 0 {
		s.remaining--
	}
}

// nodeSearch is a resumable single-level A* over the grid.
type nodeSearch struct {
	grid  *Grid
	costs *costArena
	open  *PriorityQueue[openEntry]

	start int
	goal  Cell
	// reached decides when a popped node ends the search.
	reached func(idx int) bool
	// allowed restricts expansion; nil allows every walkable node.
	allowed func(idx int) bool

	end     int
	visited int
}

func newNodeSearch(grid *Grid, queueCapacity int) *nodeSearch {
	return &nodeSearch{
		grid:  grid,
		costs: newCostArena(len(grid.nodes)),
		open:  NewPriorityQueue(queueCapacity, openCost),
		end:   unvisited,
	}
}

// begin clears the previous segment and seeds start. goal is only used by
// the heuristic; reached decides termination.
func (s *nodeSearch) begin(start int, goal Cell, reached, allowed func(int) bool) {
	s.costs.reset()
	s.open.Clear()
	s.start = start
	s.goal = goal
	s.reached = reached
	s.allowed = allowed
	s.end = unvisited

	s.costs.visit(start, 0, octile(s.grid.cell(start), goal), unvisited)
	s.open.Add(openEntry{node: int32(start), f: s.costs.f(start)})
}

// run expands nodes until the search ends or the slice runs out. State is
// left intact between calls so the next call resumes exactly.
func (s *nodeSearch) run(budget *slice) searchStatus {
	grid := s.grid
	for s.open.Len() > 0 {
		if budget.exhausted() {
			return searching
		}

		entry, _ := s.open.Pop()
		budget.spend()
		s.visited++

		cur := int(entry.node)
		if s.reached(cur) {
			s.end = cur
			return found
		}

		curCell := grid.cell(cur)
		curG := s.costs.g[cur]
		for dir := 0; dir < len(stepX); dir++ {
			next := Cell{X: curCell.X + stepX[dir], Y: curCell.Y + stepY[dir]}
			if !grid.InBounds(next) {
				continue
			}
			ni := grid.index(next)
			if grid.nodes[ni].Wall {
				continue
			}
			if s.allowed != nil && !s.allowed(ni) {
				continue
			}

			step := diagonalCost
			if stepX[dir] == 0 || stepY[dir] == 0 {
				step = orthogonalCost
			}
			g := curG + step

			if !s.costs.visited(ni) {
				s.costs.visit(ni, g, octile(next, s.goal), cur)
			} else if g < s.costs.g[ni] {
				s.costs.improve(ni, g, cur)
			} else {
				continue
			}
			s.open.Add(openEntry{node: int32(ni), f: s.costs.f(ni)})
		}
	}
	return exhausted
}

// path returns the found chain from the segment start to its end node.
func (s *nodeSearch) path() []int {
	if s.end == unvisited {
		return nil
	}
	return s.costs.backtrack(s.end)
}

// pathCost is the G of the end node.
func (s *nodeSearch) pathCost() int {
	if s.end == unvisited {
		return 0
	}
	return s.costs.g[s.end]
}

func (s *nodeSearch) reset() {
	s.costs.reset()
	s.open.Clear()
	s.reached = nil
	s.allowed = nil
	s.end = unvisited
	s.visited = 0
}
