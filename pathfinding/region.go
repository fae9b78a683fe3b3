package pathfinding

import (
	"math"
)

const noRegion = -1

// RegionSpec is the authored description of one region: its origin, two
// opposite corners and the names of the regions reachable from it.
type RegionSpec struct {
	Name       string
	Position   Point
	TopRight   Point
	BottomLeft Point
	Adjacent   []string
}

// Region is a named rectangle of grid cells with a fixed adjacency list.
type Region struct {
	Name string
	// Anchor is the grid cell of the authored origin; region-level costs are
	// measured between anchors.
	Anchor Cell
	// Min and Max bound the region inclusively. Authored corners round inward:
	// the bottom-left with ceil and the top-right with floor.
	Min      Cell
	Max      Cell
	Adjacent []string

	adjacent []int
}

// Contains reports whether c lies inside the region bounds.
func (r *Region) Contains(c Cell) bool {
	return c.X >= r.Min.X && c.Y >= r.Min.Y && c.X <= r.Max.X && c.Y <= r.Max.Y
}

// RegionGraph is the static region adjacency of a grid plus a direct
// cell-to-region table. Both are fixed for the life of the grid.
type RegionGraph struct {
	grid    *Grid
	regions []Region
	byName  map[string]int
	lookup  []int32
}

// NewRegionGraph validates specs against grid and precomputes the region of
// every cell. Where regions overlap, a cell belongs to the first region in
// authoring order.
func NewRegionGraph(grid *Grid, specs []RegionSpec) (*RegionGraph, error) {
	if grid == nil {
		return nil, configErrorf("region graph needs a grid")
	}
	if len(specs) == 0 {
		return nil, configErrorf("region graph needs at least one region")
	}

	rg := &RegionGraph{
		grid:    grid,
		regions: make([]Region, len(specs)),
		byName:  make(map[string]int, len(specs)),
		lookup:  make([]int32, grid.width*grid.height),
	}
	for i, spec := range specs {
		if spec.Name == "" {
			return nil, configErrorf("region %d has no name", i)
		}
		if _, dup := rg.byName[spec.Name]; dup {
			return nil, configErrorf("region %q defined twice", spec.Name)
		}
		rg.byName[spec.Name] = i
		rg.regions[i] = newRegion(grid, spec)
		if rg.regions[i].Min.X > rg.regions[i].Max.X || rg.regions[i].Min.Y > rg.regions[i].Max.Y {
			return nil, configErrorf("region %q covers no grid cell", spec.Name)
		}
	}

	for i := range rg.regions {
		r := &rg.regions[i]
		r.adjacent = make([]int, 0, len(r.Adjacent))
		for _, name := range r.Adjacent {
			j, ok := rg.byName[name]
			if !ok {
				return nil, configErrorf("region %q lists unknown neighbour %q", r.Name, name)
			}
			if j == i {
				continue
			}
			r.adjacent = append(r.adjacent, j)
		}
	}

	for i := range rg.lookup {
		rg.lookup[i] = noRegion
	}
	for i := len(rg.regions) - 1; i >= 0; i-- {
		r := &rg.regions[i]
		minX, minY := max(r.Min.X, 0), max(r.Min.Y, 0)
		maxX, maxY := min(r.Max.X, grid.width-1), min(r.Max.Y, grid.height-1)
		for y := minY; y <= maxY; y++ {
			row := y * grid.width
			for x := minX; x <= maxX; x++ {
				rg.lookup[row+x] = int32(i)
			}
		}
	}
	return rg, nil
}

func newRegion(grid *Grid, spec RegionSpec) Region {
	toGrid := func(v, origin float64, round func(float64) float64) int {
		return int(round((v - origin) * grid.inverse))
	}
	return Region{
		Name: spec.Name,
		Anchor: Cell{
			X: toGrid(spec.Position.X, grid.origin.X, math.Round),
			Y: toGrid(spec.Position.Y, grid.origin.Y, math.Round),
		},
		Max: Cell{
			X: toGrid(spec.TopRight.X, grid.origin.X, math.Floor),
			Y: toGrid(spec.TopRight.Y, grid.origin.Y, math.Floor),
		},
		Min: Cell{
			X: toGrid(spec.BottomLeft.X, grid.origin.X, math.Ceil),
			Y: toGrid(spec.BottomLeft.Y, grid.origin.Y, math.Ceil),
		},
		Adjacent: append([]string(nil), spec.Adjacent...),
	}
}

// Len is the number of regions.
func (rg *RegionGraph) Len() int { return len(rg.regions) }

// Region returns the region at index i.
func (rg *RegionGraph) Region(i int) *Region { return &rg.regions[i] }

// Index returns the index of the named region.
func (rg *RegionGraph) Index(name string) (int, bool) {
	i, ok := rg.byName[name]
	return i, ok
}

// Grid is the grid the regions were computed against.
func (rg *RegionGraph) Grid() *Grid { return rg.grid }

// RegionAt returns the index of the region owning c.
func (rg *RegionGraph) RegionAt(c Cell) (int, bool) {
	if !rg.grid.InBounds(c) {
		return noRegion, false
	}
	i := rg.lookup[rg.grid.index(c)]
	return int(i), i != noRegion
}

// CheckCoverage returns a ConfigurationError when a walkable cell belongs to
// no region; such a cell could never start or end a region search.
func (rg *RegionGraph) CheckCoverage() error {
	missing := 0
	var first Cell
	for idx, r := range rg.lookup {
		if r != noRegion || rg.grid.nodes[idx].Wall {
			continue
		}
		if missing == 0 {
			first = rg.grid.cell(idx)
		}
		missing++
	}
	if missing > 0 {
		return configErrorf("%d walkable cells lie outside every region, first at (%d, %d)", missing, first.X, first.Y)
	}
	return nil
}
