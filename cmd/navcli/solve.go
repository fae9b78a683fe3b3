package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/milk9111/gridnav/pathapi"
	"github.com/milk9111/gridnav/pathfinding"
	"github.com/spf13/cobra"
)

type solveFlags struct {
	from     string
	to       string
	mode     string
	budget   time.Duration
	limit    int
	jsonOut  bool
	drawGrid bool
}

func newSolveCmd(c *cli) *cobra.Command {
	f := &solveFlags{}
	cmd := &cobra.Command{
		Use:   "solve <scene>",
		Short: "Run one path search to completion and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.solve(cmd.Context(), cmd.OutOrStdout(), sceneName(args[0]), f)
		},
	}
	cmd.Flags().StringVar(&f.from, "from", "", "start point as x,y (required)")
	cmd.Flags().StringVar(&f.to, "to", "", "target point as x,y (required)")
	cmd.Flags().StringVar(&f.mode, "mode", "basic", "search mode: basic or region")
	cmd.Flags().DurationVar(&f.budget, "budget", 0, "per-tick time budget (0 keeps the scene's)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "per-tick expansion cap (0 keeps the scene's)")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&f.drawGrid, "draw", false, "print the grid with the path marked")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (c *cli) solve(ctx context.Context, out io.Writer, name string, f *solveFlags) error {
	from, err := pathapi.ParsePoint(f.from)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := pathapi.ParsePoint(f.to)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}
	mode, err := pathapi.ParseMode(f.mode)
	if err != nil {
		return err
	}

	sc, err := c.loadScene(name)
	if err != nil {
		return err
	}
	opts := c.finderOptions()
	if f.budget > 0 {
		opts = append(opts, pathfinding.WithSliceBudget(f.budget))
	}
	if f.limit > 0 {
		opts = append(opts, pathfinding.WithExpansionLimit(f.limit))
	}
	finder, err := sc.NewFinder(opts...)
	if err != nil {
		return err
	}
	if err := finder.Start(mode, from, to); err != nil {
		return err
	}
	r, err := finder.Run(ctx)
	if err != nil {
		return err
	}

	if f.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(pathapi.NewPathRsp(r))
	}
	printResult(out, r)
	if f.drawGrid {
		drawGrid(out, sc.Grid, r.Path)
	}
	return nil
}

func printResult(out io.Writer, r pathfinding.Result) {
	fmt.Fprintf(out, "state:   %s\n", r.State)
	fmt.Fprintf(out, "mode:    %s\n", r.Mode)
	fmt.Fprintf(out, "visited: %d\n", r.Visited)
	fmt.Fprintf(out, "ticks:   %d\n", r.Ticks)
	fmt.Fprintf(out, "elapsed: %s\n", r.Elapsed)
	if len(r.Regions) > 0 {
		fmt.Fprintf(out, "regions: %s\n", strings.Join(r.Regions, " > "))
	}
	if r.State != pathfinding.StateComplete {
		return
	}
	fmt.Fprintf(out, "cost:    %d\n", r.Cost)
	fmt.Fprintf(out, "path:    %d nodes\n", len(r.Path))
	for _, n := range r.Path {
		fmt.Fprintf(out, "  %d,%d\n", n.Key.X, n.Key.Y)
	}
}

// drawGrid prints the grid top row first: '#' walls, '*' path, '.' open.
func drawGrid(out io.Writer, g *pathfinding.Grid, path []pathfinding.Node) {
	onPath := make(map[pathfinding.Cell]bool, len(path))
	for _, n := range path {
		onPath[n.Key] = true
	}
	var sb strings.Builder
	for y := g.Height() - 1; y >= 0; y-- {
		for x := 0; x < g.Width(); x++ {
			c := pathfinding.Cell{X: x, Y: y}
			n, _ := g.Node(c)
			switch {
			case onPath[c]:
				sb.WriteByte('*')
			case n.Wall:
				sb.WriteByte('#')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	fmt.Fprint(out, sb.String())
}
