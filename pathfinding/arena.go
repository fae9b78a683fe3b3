package pathfinding

// costArena holds G/H/parent for every node (or region) of one search,
// indexed by the entity's dense index. Only touched entries are restored on
// reset, so clearing after a short search is cheap on a large grid.
type costArena struct {
	g       []int
	h       []int
	parent  []int32
	touched []int32
}

func newCostArena(n int) *costArena {
	a := &costArena{
		g:      make([]int, n),
		h:      make([]int, n),
		parent: make([]int32, n),
	}
	for i := 0; i < n; i++ {
		a.g[i] = unvisited
		a.h[i] = unvisited
		a.parent[i] = unvisited
	}
	return a
}

func (a *costArena) visited(i int) bool { return a.h[i] >= 0 }

// visit records the first arrival at i.
func (a *costArena) visit(i, g, h, parent int) {
	a.g[i] = g
	a.h[i] = h
	a.parent[i] = int32(parent)
	a.touched = append(a.touched, int32(i))
}

// improve lowers the G of an already visited entry.
func (a *costArena) improve(i, g, parent int) {
	a.g[i] = g
	a.parent[i] = int32(parent)
}

func (a *costArena) f(i int) int { return a.g[i] + a.h[i] }

// backtrack follows parents from end and returns the chain in start-to-end order.
func (a *costArena) backtrack(end int) []int {
	chain := make([]int, 0, 32)
	for i := end; i != unvisited; i = int(a.parent[i]) {
		chain = append(chain, i)
	}
	for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
		chain[l], chain[r] = chain[r], chain[l]
	}
	return chain
}

func (a *costArena) reset() {
	for _, i := range a.touched {
		a.g[i] = unvisited
		a.h[i] = unvisited
		a.parent[i] = unvisited
	}
	a.touched = a.touched[:0]
}

func (a *costArena) touchedCount() int { return len(a.touched) }
