package collision

import (
	"fmt"

	"github.com/milk9111/gridnav/pathfinding"
)

// TileLayer is a row-major grid of tiles; any non-zero value is solid.
// Row 0 is the bottom row in world space.
type TileLayer struct {
	Width    int
	Height   int
	Tiles    []int
	Origin   pathfinding.Point
	TileSize float64
}

// AddTiles adds the solid tiles of layer as static boxes and returns how
// many boxes were created. Contiguous solid tiles are merged into larger
// rectangles so the space holds fewer shapes than tiles.
func (w *World) AddTiles(layer TileLayer) (int, error) {
	if layer.Width <= 0 || layer.Height <= 0 {
		return 0, fmt.Errorf("collision: tile layer size %dx%d", layer.Width, layer.Height)
	}
	if len(layer.Tiles) != layer.Width*layer.Height {
		return 0, fmt.Errorf("collision: tile layer has %d tiles, want %d", len(layer.Tiles), layer.Width*layer.Height)
	}
	if layer.TileSize <= 0 {
		return 0, fmt.Errorf("collision: tile size must be positive, got %v", layer.TileSize)
	}

	boxes := 0
	processed := make([]bool, len(layer.Tiles))
	solid := func(idx int) bool { return !processed[idx] && layer.Tiles[idx] != 0 }

	for y := 0; y < layer.Height; y++ {
		for x := 0; x < layer.Width; x++ {
			idx := y*layer.Width + x
			if !solid(idx) {
				processed[idx] = true
				continue
			}

			w1 := 1
			for x+w1 < layer.Width && solid(y*layer.Width+x+w1) {
				w1++
			}

			h := 1
		heightLoop:
			for y+h < layer.Height {
				for xi := x; xi < x+w1; xi++ {
					if !solid((y+h)*layer.Width + xi) {
						break heightLoop
					}
				}
				h++
			}

			x0 := layer.Origin.X + float64(x)*layer.TileSize
			y0 := layer.Origin.Y + float64(y)*layer.TileSize
			w.AddBox(
				pathfinding.Point{X: x0, Y: y0},
				pathfinding.Point{X: x0 + float64(w1)*layer.TileSize, Y: y0 + float64(h)*layer.TileSize},
			)
			boxes++

			for yy := y; yy < y+h; yy++ {
				for xx := x; xx < x+w1; xx++ {
					processed[yy*layer.Width+xx] = true
				}
			}
		}
	}
	return boxes, nil
}
