// Command navdemo is an interactive viewer for scene grids. It ticks one
// path search per frame so the time slicing is visible.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/gridnav/pathfinding"
	"github.com/milk9111/gridnav/scene"
)

func main() {
	sceneName := flag.String("scene", "ship", "scene name in -scene-dir or the embedded set")
	sceneDir := flag.String("scene-dir", scene.Dir, "directory that overrides embedded scenes")
	budget := flag.Duration("budget", 0, "time budget per frame (0 uses the scene's)")
	limit := flag.Int("limit", 0, "node expansions per frame (0 uses the scene's)")
	debug := flag.Bool("debug", false, "log every search at debug level")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	scene.Dir = *sceneDir

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var opts []pathfinding.Option
	if *budget > 0 {
		opts = append(opts, pathfinding.WithSliceBudget(*budget))
	}
	if *limit > 0 {
		opts = append(opts, pathfinding.WithExpansionLimit(*limit))
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	game, err := NewGame(*sceneName, logger, opts...)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("navdemo: " + *sceneName)
	ebiten.SetTPS(60)

	start := time.Now()
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
	logger.Info("navdemo: closed", "uptime", time.Since(start).Round(time.Second))
}
