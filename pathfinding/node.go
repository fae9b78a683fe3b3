package pathfinding

// Point is a world-space position.
type Point struct {
	X float64
	Y float64
}

// Cell is an integer grid coordinate and the key of a Node.
type Cell struct {
	X int
	Y int
}

// Node is one grid cell. Its geometry is fixed when the grid is built;
// search costs are kept per search, see NodeCost.
type Node struct {
	Key  Cell
	Pos  Point
	Wall bool
}

// unvisited is the G/H sentinel for an entity the current search has not reached.
const unvisited = -1

// NodeCost is the search-scoped state of a node or region.
// H < 0 means the entity was not visited by the current search.
type NodeCost struct {
	G         int
	H         int
	Parent    Cell
	HasParent bool
}

// F is the A* priority, always derived from G and H.
func (c NodeCost) F() int { return c.G + c.H }

// Visited reports whether the current search has reached the entity.
func (c NodeCost) Visited() bool { return c.H >= 0 }

const (
	orthogonalCost = 10
	diagonalCost   = 14
)

// neighbour offsets, clockwise from north.
var (
	stepX = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
	stepY = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
)

// octile is the 10/14 octile distance between two cells. It is both the
// diagonal-aware heuristic and the region edge cost.
func octile(a, b Cell) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	straight, diag := dx-dy, dy
	if dy > dx {
		straight, diag = dy-dx, dx
	}
	return straight*orthogonalCost + diag*diagonalCost
}
