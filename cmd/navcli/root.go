package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/milk9111/gridnav/pathfinding"
	"github.com/milk9111/gridnav/scene"
	"github.com/milk9111/gridnav/store"
	"github.com/milk9111/gridnav/telemetry"
	"github.com/spf13/cobra"
)

// cli carries the persistent flags and the state they set up.
type cli struct {
	sceneDir string
	logLevel string
	metrics  string
	dbPath   string

	logger    *slog.Logger
	telemetry *telemetry.Telemetry
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "navcli",
		Short: "Build scenes and run grid path searches headless",
		Long: `navcli builds navigation grids from scene files and runs
time-sliced A* searches over them without a window.

Examples:
  navcli scenes
  navcli solve ship --from 4,30 --to 51,5 --mode region
  navcli bench ship --queries 500 --workers 8
  navcli serve --addr :8080 --metrics prometheus`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.telemetry.Shutdown(context.Background())
		},
	}

	root.PersistentFlags().StringVar(&c.sceneDir, "scene-dir", scene.Dir, "directory whose scene files override the embedded ones")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&c.metrics, "metrics", "none", "metric exporter: none, stdout or prometheus")
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "SQLite file holding baked grids and bench history")

	root.AddCommand(
		newScenesCmd(c),
		newSolveCmd(c),
		newBenchCmd(c),
		newBakeCmd(c),
		newHistoryCmd(c),
		newServeCmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	scene.Dir = c.sceneDir

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
		return fmt.Errorf("bad --log-level %q: %w", c.logLevel, err)
	}
	c.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	tel, err := telemetry.Init(telemetry.Config{
		ServiceName:    "navcli",
		MetricExporter: c.metrics,
		Writer:         cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	c.telemetry = tel
	return nil
}

// finderOptions are the options every finder built by the CLI starts with.
func (c *cli) finderOptions() []pathfinding.Option {
	opts := []pathfinding.Option{pathfinding.WithLogger(c.logger)}
	if c.telemetry != nil {
		opts = append(opts, pathfinding.WithMeterProvider(c.telemetry.Provider))
	}
	return opts
}

func (c *cli) openStore() (*store.Store, error) {
	if c.dbPath == "" {
		return nil, nil
	}
	return store.Open(c.dbPath)
}

// loadScene builds the named scene, reusing a baked grid from --db when one
// exists.
func (c *cli) loadScene(name string) (*scene.Scene, error) {
	spec, err := scene.LoadScene(name)
	if err != nil {
		return nil, err
	}

	st, err := c.openStore()
	if err != nil {
		return nil, err
	}
	if st != nil {
		defer st.Close()
		grid, err := st.LoadGrid(spec.Name)
		if err != nil {
			return nil, err
		}
		if grid != nil {
			c.logger.Debug("navcli: using baked grid", "scene", spec.Name)
			return scene.Restore(spec, grid)
		}
	}
	return scene.Build(spec, c.logger)
}

func sceneName(arg string) string {
	return strings.TrimSuffix(arg, ".yaml")
}

func newScenesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List the embedded and on-disk scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range scene.List() {
				fmt.Fprintln(cmd.OutOrStdout(), sceneName(name))
			}
			return nil
		},
	}
}
