package scene

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/milk9111/gridnav/collision"
	"github.com/milk9111/gridnav/pathfinding"
)

// Scene is a built scene: its collision world, the sampled grid and the
// region graph over it. Regions is nil when the scene authors none.
type Scene struct {
	Spec    *Spec
	World   *collision.World
	Script  *ScriptQuery
	Grid    *pathfinding.Grid
	Regions *pathfinding.RegionGraph
}

// Build samples spec into a grid and region graph. Scenes with regions must
// cover every walkable cell with at least one region.
func Build(spec *Spec, logger *slog.Logger) (*Scene, error) {
	if spec == nil {
		return nil, fmt.Errorf("scene: nil spec")
	}
	if logger == nil {
		logger = slog.Default()
	}

	world, err := buildWorld(spec)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", spec.Name, err)
	}

	queries := []pathfinding.ObstacleQuery{world}
	var script *ScriptQuery
	if src, err := scriptSource(spec); err != nil {
		return nil, fmt.Errorf("scene %s: %w", spec.Name, err)
	} else if src != nil {
		script, err = NewScriptQuery(src)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", spec.Name, err)
		}
		queries = append(queries, script)
	}

	bounds := pathfinding.Bounds{
		BottomLeft: spec.Bounds.BottomLeft.Point(),
		TopRight:   spec.Bounds.TopRight.Point(),
	}
	grid, err := pathfinding.BuildGrid(bounds, spec.Interval, pathfinding.AnyBlocked(queries...), spec.ProbeRadius)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", spec.Name, err)
	}
	if script != nil {
		if err := script.Err(); err != nil {
			return nil, fmt.Errorf("scene %s: %w", spec.Name, err)
		}
	}

	sc := &Scene{Spec: spec, World: world, Script: script, Grid: grid}
	if err := sc.attachRegions(); err != nil {
		return nil, err
	}

	logger.Info("scene: built grid",
		"scene", spec.Name,
		"width", grid.Width(),
		"height", grid.Height(),
		"walls", grid.WallCount(),
		"shapes", world.ShapeCount(),
		"regions", sc.regionCount(),
	)
	return sc, nil
}

// Restore wraps a previously baked grid, rebuilding only the region graph.
func Restore(spec *Spec, grid *pathfinding.Grid) (*Scene, error) {
	if spec == nil || grid == nil {
		return nil, fmt.Errorf("scene: restore needs a spec and a grid")
	}
	sc := &Scene{Spec: spec, Grid: grid}
	if err := sc.attachRegions(); err != nil {
		return nil, err
	}
	return sc, nil
}

// NewFinder returns a finder over the scene using the scene's search
// tuning followed by opts.
func (s *Scene) NewFinder(opts ...pathfinding.Option) (*pathfinding.Finder, error) {
	all := append(s.Spec.FinderOptions(), opts...)
	return pathfinding.NewFinder(s.Grid, s.Regions, all...)
}

func (s *Scene) attachRegions() error {
	if len(s.Spec.Regions) == 0 {
		return nil
	}
	rg, err := pathfinding.NewRegionGraph(s.Grid, s.Spec.regionSpecs())
	if err != nil {
		return fmt.Errorf("scene %s: %w", s.Spec.Name, err)
	}
	if err := rg.CheckCoverage(); err != nil {
		return fmt.Errorf("scene %s: %w", s.Spec.Name, err)
	}
	s.Regions = rg
	return nil
}

func (s *Scene) regionCount() int {
	if s.Regions == nil {
		return 0
	}
	return s.Regions.Len()
}

func buildWorld(spec *Spec) (*collision.World, error) {
	world := collision.NewWorld()

	if spec.Tiles != nil {
		layer, err := tileLayer(spec.Tiles)
		if err != nil {
			return nil, err
		}
		if _, err := world.AddTiles(layer); err != nil {
			return nil, err
		}
	}

	for i, s := range spec.Solids {
		switch strings.ToLower(s.Kind) {
		case "box":
			world.AddBox(s.Min.Point(), s.Max.Point())
		case "circle":
			if s.Radius <= 0 {
				return nil, fmt.Errorf("solid %d: circle radius must be positive", i)
			}
			world.AddCircle(s.Center.Point(), s.Radius)
		case "segment":
			world.AddSegment(s.A.Point(), s.B.Point(), s.Thickness)
		case "polygon":
			if len(s.Points) < 3 {
				return nil, fmt.Errorf("solid %d: polygon needs at least 3 points", i)
			}
			pts := make([]pathfinding.Point, len(s.Points))
			for j, p := range s.Points {
				pts[j] = p.Point()
			}
			world.AddPolygon(pts)
		default:
			return nil, fmt.Errorf("solid %d: unknown kind %q", i, s.Kind)
		}
	}
	return world, nil
}

// tileLayer flips the authored rows so row 0 of the layer is the bottom row.
func tileLayer(t *TilesSpec) (collision.TileLayer, error) {
	if len(t.Rows) == 0 {
		return collision.TileLayer{}, fmt.Errorf("tiles: no rows")
	}
	width := len(t.Rows[0])
	height := len(t.Rows)
	tiles := make([]int, width*height)
	for i, row := range t.Rows {
		if len(row) != width {
			return collision.TileLayer{}, fmt.Errorf("tiles: row %d has %d columns, want %d", i, len(row), width)
		}
		y := height - 1 - i
		for x := 0; x < width; x++ {
			if row[x] == '#' {
				tiles[y*width+x] = 1
			}
		}
	}
	size := t.Size
	if size <= 0 {
		size = 1
	}
	return collision.TileLayer{
		Width:    width,
		Height:   height,
		Tiles:    tiles,
		Origin:   t.Origin.Point(),
		TileSize: size,
	}, nil
}

func scriptSource(spec *Spec) ([]byte, error) {
	switch {
	case spec.Script != "" && spec.ScriptFile != "":
		return nil, fmt.Errorf("script and script_file are mutually exclusive")
	case spec.Script != "":
		return []byte(spec.Script), nil
	case spec.ScriptFile != "":
		src, err := Load(spec.ScriptFile)
		if err != nil {
			return nil, fmt.Errorf("load script %s: %w", spec.ScriptFile, err)
		}
		return src, nil
	}
	return nil, nil
}
