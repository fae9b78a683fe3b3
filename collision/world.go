package collision

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gridnav/pathfinding"
)

const collisionTypeSolid cp.CollisionType = 1

// World owns a Chipmunk space holding static solid geometry and answers
// point-in-solid queries against it. It implements pathfinding.ObstacleQuery.
type World struct {
	space  *cp.Space
	filter cp.ShapeFilter
	shapes int
}

// NewWorld returns an empty world.
func NewWorld() *World {
	return &World{
		space:  cp.NewSpace(),
		filter: cp.SHAPE_FILTER_ALL,
	}
}

// Space returns the underlying Chipmunk space.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

// ShapeCount is the number of solid shapes added so far.
func (w *World) ShapeCount() int {
	if w == nil {
		return 0
	}
	return w.shapes
}

// AddBox adds an axis-aligned solid rectangle spanning min..max.
func (w *World) AddBox(min, max pathfinding.Point) {
	if max.X < min.X {
		min.X, max.X = max.X, min.X
	}
	if max.Y < min.Y {
		min.Y, max.Y = max.Y, min.Y
	}
	bb := cp.BB{L: min.X, B: min.Y, R: max.X, T: max.Y}
	w.add(cp.NewBox2(w.space.StaticBody, bb, 0))
}

// AddCircle adds a solid disc.
func (w *World) AddCircle(center pathfinding.Point, radius float64) {
	if radius <= 0 {
		return
	}
	w.add(cp.NewCircle(w.space.StaticBody, radius, toVector(center)))
}

// AddSegment adds a solid capsule from a to b with the given thickness radius.
func (w *World) AddSegment(a, b pathfinding.Point, thickness float64) {
	w.add(cp.NewSegment(w.space.StaticBody, toVector(a), toVector(b), thickness))
}

// AddPolygon adds a solid convex polygon with counter-clockwise winding.
// Fewer than three vertices are ignored.
func (w *World) AddPolygon(verts []pathfinding.Point) {
	if len(verts) < 3 {
		return
	}
	cpVerts := make([]cp.Vector, len(verts))
	for i, v := range verts {
		cpVerts[i] = toVector(v)
	}
	w.add(cp.NewPolyShapeRaw(w.space.StaticBody, len(cpVerts), cpVerts, 0))
}

func (w *World) add(shape *cp.Shape) {
	shape.SetCollisionType(collisionTypeSolid)
	shape.SetFilter(w.filter)
	w.space.AddShape(shape)
	w.shapes++
}

// Blocked reports whether a circle of radius at p touches or overlaps any
// solid shape.
func (w *World) Blocked(p pathfinding.Point, radius float64) bool {
	if w == nil || w.shapes == 0 {
		return false
	}
	if radius < 0 {
		radius = 0
	}
	info := w.space.PointQueryNearest(toVector(p), radius, w.filter)
	return info != nil && info.Shape != nil
}

func toVector(p pathfinding.Point) cp.Vector {
	return cp.Vector{X: p.X, Y: p.Y}
}
