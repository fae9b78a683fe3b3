package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/milk9111/gridnav/pathfinding"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720
	// panelWidth is reserved on the left for the control panel.
	panelWidth = 200
)

// view maps grid cells to screen pixels. Grid row 0 is at the bottom of the
// screen.
type view struct {
	width, height int
	cell          float64
	offX, offY    float64
}

func newView(width, height int) view {
	availW := float64(baseWidth - panelWidth)
	availH := float64(baseHeight)
	cell := math.Floor(math.Min(availW/float64(width), availH/float64(height)))
	if cell < 1 {
		cell = 1
	}
	return view{
		width:  width,
		height: height,
		cell:   cell,
		offX:   panelWidth + (availW-cell*float64(width))/2,
		offY:   (availH - cell*float64(height)) / 2,
	}
}

// rect is the top-left corner of c on screen.
func (v view) rect(c pathfinding.Cell) (x, y float64) {
	return v.offX + float64(c.X)*v.cell, v.offY + float64(v.height-1-c.Y)*v.cell
}

func (v view) centre(c pathfinding.Cell) (x, y float32) {
	rx, ry := v.rect(c)
	return float32(rx + v.cell/2), float32(ry + v.cell/2)
}

// cellAt is the cell under the screen pixel, if any.
func (v view) cellAt(sx, sy int) (pathfinding.Cell, bool) {
	fx := (float64(sx) - v.offX) / v.cell
	fy := (float64(sy) - v.offY) / v.cell
	if fx < 0 || fy < 0 {
		return pathfinding.Cell{}, false
	}
	c := pathfinding.Cell{X: int(fx), Y: v.height - 1 - int(fy)}
	if c.X >= v.width || c.Y < 0 {
		return pathfinding.Cell{}, false
	}
	return c, true
}

var regionPalette = []color.RGBA{
	colornames.Steelblue,
	colornames.Seagreen,
	colornames.Darkorange,
	colornames.Mediumpurple,
	colornames.Indianred,
	colornames.Cadetblue,
	colornames.Olivedrab,
	colornames.Goldenrod,
}

// regionColor is a translucent tint for region i.
func regionColor(i int) color.NRGBA {
	c := regionPalette[i%len(regionPalette)]
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 70}
}

// pathText renders a path as one "x,y" world position per line.
func pathText(path []pathfinding.Node) string {
	var sb strings.Builder
	for _, n := range path {
		fmt.Fprintf(&sb, "%g,%g\n", n.Pos.X, n.Pos.Y)
	}
	return sb.String()
}

// statusLine summarises a search for the overlay.
func statusLine(r pathfinding.Result) string {
	switch r.State {
	case pathfinding.StateNone:
		return "idle: left click sets start, right click sets target"
	case pathfinding.StateCalculating:
		return fmt.Sprintf("%s search: calculating, %d visited over %d ticks", r.Mode, r.Visited, r.Ticks)
	case pathfinding.StateComplete:
		s := fmt.Sprintf("%s search: cost %d, %d nodes, %d visited, %d ticks, %s",
			r.Mode, r.Cost, len(r.Path), r.Visited, r.Ticks, r.Elapsed)
		if len(r.Regions) > 0 {
			s += "\nregions: " + strings.Join(r.Regions, " > ")
		}
		return s
	default:
		return fmt.Sprintf("%s search: %s after %d visited", r.Mode, r.State, r.Visited)
	}
}
