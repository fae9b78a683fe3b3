package pathfinding

import (
	"math"
)

// DefaultProbeRadius is the radius handed to the obstacle query for every node.
const DefaultProbeRadius = 0.1

const maxGridNodes = 1 << 24

// ObstacleQuery answers whether a circle at p with the given radius overlaps solid geometry.
type ObstacleQuery interface {
	Blocked(p Point, radius float64) bool
}

// ObstacleFunc adapts a function to ObstacleQuery.
type ObstacleFunc func(p Point, radius float64) bool

func (f ObstacleFunc) Blocked(p Point, radius float64) bool { return f(p, radius) }

// AnyBlocked reports a point as blocked when any of the queries does. Nil
// queries are skipped.
func AnyBlocked(queries ...ObstacleQuery) ObstacleQuery {
	return ObstacleFunc(func(p Point, radius float64) bool {
		for _, q := range queries {
			if q != nil && q.Blocked(p, radius) {
				return true
			}
		}
		return false
	})
}

// Bounds is the world rectangle sampled into a grid.
type Bounds struct {
	BottomLeft Point
	TopRight   Point
}

// Grid is the immutable node board. It may be shared by any number of finders.
type Grid struct {
	origin      Point
	interval    float64
	inverse     float64
	width       int
	height      int
	nodes       []Node
	wallCount   int
	probeRadius float64
}

// BuildGrid samples bounds every interval world units and asks obstacles once
// per node whether it is solid. probeRadius <= 0 uses DefaultProbeRadius.
//
// The node count per axis comes from the corners rounded outward to the
// interval lattice, but node (0, 0) sits at the unrounded BottomLeft. When
// BottomLeft is off the lattice every node shifts with it, and the last
// column or row may lie up to two intervals past TopRight.
func BuildGrid(bounds Bounds, interval float64, obstacles ObstacleQuery, probeRadius float64) (*Grid, error) {
	if math.IsNaN(interval) || math.IsInf(interval, 0) || interval <= 0 {
		return nil, configErrorf("interval must be positive, got %v", interval)
	}
	if bounds.TopRight.X < bounds.BottomLeft.X || bounds.TopRight.Y < bounds.BottomLeft.Y {
		return nil, configErrorf("top-right corner (%v, %v) lies below or left of bottom-left (%v, %v)",
			bounds.TopRight.X, bounds.TopRight.Y, bounds.BottomLeft.X, bounds.BottomLeft.Y)
	}
	if probeRadius <= 0 {
		probeRadius = DefaultProbeRadius
	}

	inverse := 1 / interval
	// top-right rounds outward with ceil, bottom-left with floor; both corners get a node.
	maxX := math.Ceil(bounds.TopRight.X * inverse)
	maxY := math.Ceil(bounds.TopRight.Y * inverse)
	minX := math.Floor(bounds.BottomLeft.X * inverse)
	minY := math.Floor(bounds.BottomLeft.Y * inverse)
	spanX := maxX - minX + 1
	spanY := maxY - minY + 1
	if spanX < 1 || spanY < 1 || spanX*spanY > maxGridNodes {
		return nil, configErrorf("grid over (%v, %v)-(%v, %v) at interval %v has unusable size %vx%v",
			bounds.BottomLeft.X, bounds.BottomLeft.Y, bounds.TopRight.X, bounds.TopRight.Y, interval, spanX, spanY)
	}
	width, height := int(spanX), int(spanY)

	g := newGrid(bounds.BottomLeft, interval, width, height, probeRadius)
	for i := range g.nodes {
		n := &g.nodes[i]
		n.Wall = obstacles != nil && obstacles.Blocked(n.Pos, probeRadius)
		if n.Wall {
			g.wallCount++
		}
	}
	return g, nil
}

// RestoreGrid rebuilds a grid from a wall mask captured with Walls, without
// querying any obstacles.
func RestoreGrid(origin Point, interval float64, width, height int, walls []bool, probeRadius float64) (*Grid, error) {
	if math.IsNaN(interval) || math.IsInf(interval, 0) || interval <= 0 {
		return nil, configErrorf("interval must be positive, got %v", interval)
	}
	if width < 1 || height < 1 || width*height > maxGridNodes {
		return nil, configErrorf("unusable grid size %dx%d", width, height)
	}
	if len(walls) != width*height {
		return nil, configErrorf("wall mask has %d entries, want %d", len(walls), width*height)
	}
	if probeRadius <= 0 {
		probeRadius = DefaultProbeRadius
	}
	g := newGrid(origin, interval, width, height, probeRadius)
	for i, wall := range walls {
		g.nodes[i].Wall = wall
		if wall {
			g.wallCount++
		}
	}
	return g, nil
}

func newGrid(origin Point, interval float64, width, height int, probeRadius float64) *Grid {
	g := &Grid{
		origin:      origin,
		interval:    interval,
		inverse:     1 / interval,
		width:       width,
		height:      height,
		nodes:       make([]Node, width*height),
		probeRadius: probeRadius,
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := Cell{X: x, Y: y}
			g.nodes[g.index(c)] = Node{Key: c, Pos: g.WorldPos(c)}
		}
	}
	return g
}

// Width is the number of columns.
func (g *Grid) Width() int { return g.width }

// Height is the number of rows.
func (g *Grid) Height() int { return g.height }

// Interval is the world distance between neighbouring nodes.
func (g *Grid) Interval() float64 { return g.interval }

// Origin is the world position of node (0, 0).
func (g *Grid) Origin() Point { return g.origin }

// WallCount is the number of walled nodes.
func (g *Grid) WallCount() int { return g.wallCount }

// ProbeRadius is the radius used for obstacle queries at build time.
func (g *Grid) ProbeRadius() float64 { return g.probeRadius }

// InBounds reports whether c addresses a node.
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.width && c.Y < g.height
}

// Node returns the node at c.
func (g *Grid) Node(c Cell) (Node, bool) {
	if !g.InBounds(c) {
		return Node{}, false
	}
	return g.nodes[g.index(c)], true
}

// Nodes returns the backing node slice in row-major order. Callers must not modify it.
func (g *Grid) Nodes() []Node { return g.nodes }

// Walls returns a row-major copy of the wall flags.
func (g *Grid) Walls() []bool {
	walls := make([]bool, len(g.nodes))
	for i, n := range g.nodes {
		walls[i] = n.Wall
	}
	return walls
}

// CellOf maps a world point to its nearest grid cell, rejecting points off the grid.
func (g *Grid) CellOf(p Point) (Cell, error) {
	c := g.nearestCell(p)
	if !g.InBounds(c) {
		return c, &BoundsError{Point: p, Cell: c, Reason: "outside grid"}
	}
	return c, nil
}

// WorldPos returns the world position of cell c, whether or not it is on the grid.
func (g *Grid) WorldPos(c Cell) Point {
	return Point{
		X: g.origin.X + float64(c.X)*g.interval,
		Y: g.origin.Y + float64(c.Y)*g.interval,
	}
}

func (g *Grid) nearestCell(p Point) Cell {
	return Cell{
		X: int(math.Round((p.X - g.origin.X) * g.inverse)),
		Y: int(math.Round((p.Y - g.origin.Y) * g.inverse)),
	}
}

func (g *Grid) index(c Cell) int { return c.Y*g.width + c.X }

func (g *Grid) cell(idx int) Cell { return Cell{X: idx % g.width, Y: idx / g.width} }
