package pathfinding

// RegionCost is the search-scoped state of a region. H < 0 means unvisited.
type RegionCost struct {
	G      int
	H      int
	Parent string
}

// F is the region's A* priority.
func (c RegionCost) F() int { return c.G + c.H }

// regionSearch runs A* over the region adjacency graph. It is not time
// sliced: region graphs are small enough to finish in one call.
type regionSearch struct {
	graph *RegionGraph
	costs *costArena
	open  *PriorityQueue[openEntry]
}

func newRegionSearch(graph *RegionGraph) *regionSearch {
	return &regionSearch{
		graph: graph,
		costs: newCostArena(graph.Len()),
		open:  NewPriorityQueue(graph.Len(), openCost),
	}
}

// route returns region indices from `from` to `to` inclusive, or nil when the
// adjacency graph does not connect them.
func (s *regionSearch) route(from, to int) []int {
	regions := s.graph.regions
	goal := regions[to].Anchor

	s.costs.visit(from, 0, octile(regions[from].Anchor, goal), unvisited)
	s.open.Add(openEntry{node: int32(from), f: s.costs.f(from)})

	for s.open.Len() > 0 {
		entry, _ := s.open.Pop()
		cur := int(entry.node)
		if cur == to {
			return s.costs.backtrack(cur)
		}
		curAnchor := regions[cur].Anchor
		for _, next := range regions[cur].adjacent {
			g := s.costs.g[cur] + octile(curAnchor, regions[next].Anchor)
			if !s.costs.visited(next) {
				s.costs.visit(next, g, octile(regions[next].Anchor, goal), cur)
			} else if g < s.costs.g[next] {
				s.costs.improve(next, g, cur)
			} else {
				continue
			}
			s.open.Add(openEntry{node: int32(next), f: s.costs.f(next)})
		}
	}
	return nil
}

func (s *regionSearch) cost(i int) RegionCost {
	c := RegionCost{G: s.costs.g[i], H: s.costs.h[i]}
	if p := s.costs.parent[i]; p != unvisited {
		c.Parent = s.graph.regions[p].Name
	}
	return c
}

func (s *regionSearch) reset() {
	s.costs.reset()
	s.open.Clear()
}

// corridor is the set of regions a hierarchical search may cross, plus the
// segment bookkeeping of phase two.
type corridor struct {
	graph   *RegionGraph
	regions []int
	// next is the index into regions of the region the current segment heads
	// for; len(regions) means the final segment to the exact target.
	next int
}

func newCorridor(graph *RegionGraph, regions []int) *corridor {
	return &corridor{
		graph:   graph,
		regions: regions,
		next:    1,
	}
}

// allows reports whether the node at idx lies within the bounds of any
// corridor region. Ownership in the lookup table does not matter here: a
// cell shared with a region off the route is still walkable.
func (c *corridor) allows(idx int) bool {
	cell := c.graph.grid.cell(idx)
	for _, r := range c.regions {
		if c.graph.regions[r].Contains(cell) {
			return true
		}
	}
	return false
}

func (c *corridor) final() bool { return c.next >= len(c.regions) }

func (c *corridor) target() *Region { return &c.graph.regions[c.regions[c.next]] }

func (c *corridor) names() []string {
	out := make([]string, len(c.regions))
	for i, r := range c.regions {
		out[i] = c.graph.regions[r].Name
	}
	return out
}
