package scene

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/milk9111/gridnav/pathfinding"
	"gopkg.in/yaml.v3"
)

// Spec is the authored description of a navigable scene.
type Spec struct {
	Name        string       `yaml:"name"`
	Bounds      BoundsSpec   `yaml:"bounds"`
	Interval    float64      `yaml:"interval"`
	ProbeRadius float64      `yaml:"probe_radius"`
	Search      SearchSpec   `yaml:"search"`
	Tiles       *TilesSpec   `yaml:"tiles"`
	Solids      []SolidSpec  `yaml:"solids"`
	Script      string       `yaml:"script"`
	ScriptFile  string       `yaml:"script_file"`
	Regions     []RegionSpec `yaml:"regions"`
}

type BoundsSpec struct {
	BottomLeft Vec2 `yaml:"bottom_left"`
	TopRight   Vec2 `yaml:"top_right"`
}

// SearchSpec holds per-scene finder tuning.
type SearchSpec struct {
	SliceBudget    time.Duration `yaml:"slice_budget"`
	ExpansionLimit int           `yaml:"expansion_limit"`
}

// TilesSpec is a character map of solid tiles. Rows are listed top row
// first; '#' marks a solid tile.
type TilesSpec struct {
	Origin Vec2     `yaml:"origin"`
	Size   float64  `yaml:"size"`
	Rows   []string `yaml:"rows"`
}

// SolidSpec is one piece of static geometry. Kind selects which of the
// remaining fields apply: box (min, max), circle (center, radius),
// segment (a, b, thickness) or polygon (points).
type SolidSpec struct {
	Kind      string  `yaml:"kind"`
	Min       Vec2    `yaml:"min"`
	Max       Vec2    `yaml:"max"`
	Center    Vec2    `yaml:"center"`
	Radius    float64 `yaml:"radius"`
	A         Vec2    `yaml:"a"`
	B         Vec2    `yaml:"b"`
	Thickness float64 `yaml:"thickness"`
	Points    []Vec2  `yaml:"points"`
}

type RegionSpec struct {
	Name       string   `yaml:"name"`
	Position   Vec2     `yaml:"position"`
	TopRight   Vec2     `yaml:"top_right"`
	BottomLeft Vec2     `yaml:"bottom_left"`
	Adjacent   []string `yaml:"adjacent"`
}

// Vec2 is a world point. In YAML it may be written as "x,y", [x, y] or
// {x: .., y: ..}.
type Vec2 pathfinding.Point

func (v Vec2) Point() pathfinding.Point { return pathfinding.Point(v) }

func (v *Vec2) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parts := strings.Split(value.Value, ",")
		if len(parts) != 2 {
			return fmt.Errorf("line %d: point must be \"x,y\", got %q", value.Line, value.Value)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return fmt.Errorf("line %d: point x: %w", value.Line, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return fmt.Errorf("line %d: point y: %w", value.Line, err)
		}
		v.X, v.Y = x, y
		return nil
	case yaml.SequenceNode:
		var xy []float64
		if err := value.Decode(&xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("line %d: point must have two coordinates, got %d", value.Line, len(xy))
		}
		v.X, v.Y = xy[0], xy[1]
		return nil
	case yaml.MappingNode:
		var xy struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
		}
		if err := value.Decode(&xy); err != nil {
			return err
		}
		v.X, v.Y = xy.X, xy.Y
		return nil
	default:
		return fmt.Errorf("line %d: unsupported point format", value.Line)
	}
}

// Parse decodes a scene from YAML.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// LoadSpec loads and decodes a YAML file from the scene directory or the
// embedded scenes.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("scene: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("scene: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadScene loads a scene by file name, e.g. "ship.yaml".
func LoadScene(name string) (*Spec, error) {
	spec, err := LoadSpec[Spec](name)
	if err != nil {
		return nil, err
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(cleanScenePath(name), ".yaml")
	}
	return &spec, nil
}

// FinderOptions converts the scene's search tuning into finder options.
func (s *Spec) FinderOptions() []pathfinding.Option {
	var opts []pathfinding.Option
	if s.Search.SliceBudget > 0 {
		opts = append(opts, pathfinding.WithSliceBudget(s.Search.SliceBudget))
	}
	if s.Search.ExpansionLimit > 0 {
		opts = append(opts, pathfinding.WithExpansionLimit(s.Search.ExpansionLimit))
	}
	return opts
}

func (s *Spec) regionSpecs() []pathfinding.RegionSpec {
	specs := make([]pathfinding.RegionSpec, len(s.Regions))
	for i, r := range s.Regions {
		specs[i] = pathfinding.RegionSpec{
			Name:       r.Name,
			Position:   r.Position.Point(),
			TopRight:   r.TopRight.Point(),
			BottomLeft: r.BottomLeft.Point(),
			Adjacent:   r.Adjacent,
		}
	}
	return specs
}
