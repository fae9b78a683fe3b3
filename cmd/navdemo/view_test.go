package main

import (
	"testing"

	"github.com/milk9111/gridnav/pathfinding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewRoundTrip(t *testing.T) {
	v := newView(64, 36)
	assert.Equal(t, 16.0, v.cell, "64 columns in 1080px, 36 rows in 720px")

	for _, c := range []pathfinding.Cell{{X: 0, Y: 0}, {X: 63, Y: 35}, {X: 10, Y: 20}} {
		x, y := v.rect(c)
		got, ok := v.cellAt(int(x)+1, int(y)+1)
		require.True(t, ok)
		assert.Equal(t, c, got)
	}

	_, y0 := v.rect(pathfinding.Cell{X: 0, Y: 0})
	_, y1 := v.rect(pathfinding.Cell{X: 0, Y: 1})
	assert.Greater(t, y0, y1, "row 0 is drawn at the bottom")
}

func TestViewCellAtOutside(t *testing.T) {
	v := newView(4, 4)
	cases := []struct {
		name string
		x, y int
	}{
		{"panel", 10, 10},
		{"left of grid", int(v.offX) - 1, int(v.offY) + 1},
		{"right of grid", int(v.offX + 4*v.cell), int(v.offY) + 1},
		{"below grid", int(v.offX) + 1, int(v.offY + 4*v.cell)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := v.cellAt(tc.x, tc.y)
			assert.False(t, ok)
		})
	}
}

func TestPathText(t *testing.T) {
	path := []pathfinding.Node{
		{Pos: pathfinding.Point{X: 1, Y: 2}},
		{Pos: pathfinding.Point{X: 1.5, Y: -3}},
	}
	assert.Equal(t, "1,2\n1.5,-3\n", pathText(path))
	assert.Empty(t, pathText(nil))
}

func TestStatusLine(t *testing.T) {
	assert.Contains(t, statusLine(pathfinding.Result{}), "left click")

	done := pathfinding.Result{
		State:   pathfinding.StateComplete,
		Mode:    pathfinding.ModeRegion,
		Cost:    42,
		Regions: []string{"A", "B"},
	}
	assert.Contains(t, statusLine(done), "cost 42")
	assert.Contains(t, statusLine(done), "A > B")

	lost := pathfinding.Result{State: pathfinding.StateNotFound, Mode: pathfinding.ModeBasic}
	assert.Contains(t, statusLine(lost), "not_found")
}

func TestRegionColorCycles(t *testing.T) {
	assert.Equal(t, regionColor(0), regionColor(len(regionPalette)))
	assert.NotEqual(t, regionColor(0), regionColor(1))
	assert.Equal(t, uint8(70), regionColor(3).A)
}
