package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"slices"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/gridnav/pathfinding"
	"github.com/milk9111/gridnav/scene"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
)

type Game struct {
	frames int

	name string
	log  *slog.Logger
	opts []pathfinding.Option

	scene  *scene.Scene
	finder *pathfinding.Finder
	view   view

	mode     pathfinding.Mode
	from, to pathfinding.Cell
	hasFrom  bool
	hasTo    bool
	last     pathfinding.Result
	message  string

	clipboardOK bool
	watcher     *scene.Watcher
	ui          *ebitenui.UI
}

func NewGame(name string, logger *slog.Logger, opts ...pathfinding.Option) (*Game, error) {
	g := &Game{
		name: name,
		log:  logger,
		opts: opts,
		mode: pathfinding.ModeBasic,
	}
	if err := g.load(); err != nil {
		return nil, err
	}

	if err := clipboard.Init(); err != nil {
		logger.Warn("navdemo: clipboard unavailable", "error", err)
	} else {
		g.clipboardOK = true
	}

	if w, err := scene.NewWatcher(scene.Dir); err != nil {
		logger.Info("navdemo: not watching scenes", "dir", scene.Dir, "error", err)
	} else {
		g.watcher = w
	}

	g.ui = newPanel(g)
	return g, nil
}

// Close stops the scene watcher.
func (g *Game) Close() error {
	if g.watcher != nil {
		return g.watcher.Close()
	}
	return nil
}

// load builds the scene and a fresh finder, replacing the current ones only
// on success.
func (g *Game) load() error {
	spec, err := scene.LoadScene(g.name)
	if err != nil {
		return err
	}
	sc, err := scene.Build(spec, g.log)
	if err != nil {
		return err
	}
	f, err := sc.NewFinder(append([]pathfinding.Option{pathfinding.WithLogger(g.log)}, g.opts...)...)
	if err != nil {
		return err
	}
	g.scene = sc
	g.finder = f
	g.view = newView(sc.Grid.Width(), sc.Grid.Height())
	g.last = pathfinding.Result{}
	if g.hasFrom && !sc.Grid.InBounds(g.from) {
		g.hasFrom = false
	}
	if g.hasTo && !sc.Grid.InBounds(g.to) {
		g.hasTo = false
	}
	return nil
}

func (g *Game) reload() {
	if err := g.load(); err != nil {
		g.log.Error("navdemo: rebuild failed", "scene", g.name, "error", err)
		g.message = "rebuild failed: " + err.Error()
		return
	}
	g.message = fmt.Sprintf("rebuilt %s: %dx%d, %d walls",
		g.name, g.scene.Grid.Width(), g.scene.Grid.Height(), g.scene.Grid.WallCount())
	g.search()
}

func (g *Game) reset() {
	g.finder.Reset()
	g.last = pathfinding.Result{}
	g.hasFrom, g.hasTo = false, false
	g.message = ""
}

func (g *Game) setMode(m pathfinding.Mode) {
	g.mode = m
	g.search()
}

// search restarts the finder for the current endpoints and mode.
func (g *Game) search() {
	g.finder.Reset()
	g.last = pathfinding.Result{}
	if !g.hasFrom || !g.hasTo {
		return
	}
	grid := g.scene.Grid
	if err := g.finder.Start(g.mode, grid.WorldPos(g.from), grid.WorldPos(g.to)); err != nil {
		g.message = err.Error()
		return
	}
	g.message = ""
	g.last = g.finder.Tick()
}

func (g *Game) copyPath() {
	if g.last.State != pathfinding.StateComplete {
		g.message = "no path to copy"
		return
	}
	if !g.clipboardOK {
		g.message = "clipboard unavailable"
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(pathText(g.last.Path)))
	g.message = fmt.Sprintf("copied %d nodes", len(g.last.Path))
}

// drainWatcher rebuilds when a change touches this scene.
func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Changes:
			if !ok {
				g.watcher = nil
				return
			}
			if slices.Contains(change.Scenes, g.name) {
				g.log.Info("navdemo: scene changed", "file", change.File)
				g.reload()
			}
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.log.Warn("navdemo: watch error", "error", err)
		default:
			return
		}
	}
}

func (g *Game) Update() error {
	g.frames++

	g.drainWatcher()
	g.ui.Update()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF1):
		g.reload()
	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		g.setMode(pathfinding.ModeBasic)
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		g.setMode(pathfinding.ModeRegion)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.copyPath()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	}

	mx, my := ebiten.CursorPosition()
	if c, ok := g.view.cellAt(mx, my); ok {
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.from, g.hasFrom = c, true
			g.search()
		} else if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
			g.to, g.hasTo = c, true
			g.search()
		}
	}

	if g.finder.State() == pathfinding.StateCalculating {
		g.last = g.finder.Tick()
		if g.last.State != pathfinding.StateCalculating {
			g.log.Debug("navdemo: search finished", "state", g.last.State.String(), "ticks", g.last.Ticks)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)

	grid := g.scene.Grid
	regions := g.scene.Regions
	cell := float32(g.view.cell)
	calculating := g.finder.State() == pathfinding.StateCalculating

	for _, n := range grid.Nodes() {
		x, y := g.view.rect(n.Key)
		fx, fy := float32(x), float32(y)
		if n.Wall {
			vector.FillRect(screen, fx, fy, cell, cell, colornames.Dimgray, false)
			continue
		}
		if regions != nil {
			if i, ok := regions.RegionAt(n.Key); ok {
				vector.FillRect(screen, fx, fy, cell, cell, regionColor(i), false)
			}
		}
		if calculating {
			if nc, ok := g.finder.NodeCost(n.Key); ok && nc.Visited() {
				vector.FillRect(screen, fx, fy, cell, cell, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 40}, false)
			}
		}
	}

	path := g.last.Path
	for i := 1; i < len(path); i++ {
		ax, ay := g.view.centre(path[i-1].Key)
		bx, by := g.view.centre(path[i].Key)
		vector.StrokeLine(screen, ax, ay, bx, by, 3, colornames.Gold, true)
	}

	if g.hasFrom {
		g.drawMarker(screen, g.from, colornames.Lime)
	}
	if g.hasTo {
		g.drawMarker(screen, g.to, colornames.Red)
	}

	g.ui.Draw(screen)

	status := statusLine(g.last)
	if g.message != "" {
		status += "\n" + g.message
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.2f  mode: %s", ebiten.ActualFPS(), g.mode), 8, 4)
	ebitenutil.DebugPrintAt(screen, status, panelWidth+8, 4)
}

func (g *Game) drawMarker(screen *ebiten.Image, c pathfinding.Cell, col color.Color) {
	x, y := g.view.rect(c)
	inset := g.view.cell / 4
	size := float32(g.view.cell - 2*inset)
	vector.FillRect(screen, float32(x+inset), float32(y+inset), size, size, col, true)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
