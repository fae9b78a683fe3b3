package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/milk9111/gridnav/pathapi"
	"github.com/milk9111/gridnav/pathfinding"
	"github.com/milk9111/gridnav/scene"
	"github.com/milk9111/gridnav/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type benchFlags struct {
	queries int
	workers int
	seed    uint64
	mode    string
	record  bool
}

// benchSummary aggregates the outcome of every query in a bench run.
type benchSummary struct {
	Queries  int
	Complete int
	NotFound int
	Visited  int64
	Ticks    int64
	Elapsed  time.Duration
}

func newBenchCmd(c *cli) *cobra.Command {
	f := &benchFlags{}
	cmd := &cobra.Command{
		Use:   "bench <scene>",
		Short: "Run many random searches in parallel over one shared grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.bench(cmd.Context(), cmd.OutOrStdout(), sceneName(args[0]), f)
		},
	}
	cmd.Flags().IntVar(&f.queries, "queries", 200, "number of random start/target pairs")
	cmd.Flags().IntVar(&f.workers, "workers", runtime.GOMAXPROCS(0), "concurrent finders")
	cmd.Flags().Uint64Var(&f.seed, "seed", 1, "seed for the query generator")
	cmd.Flags().StringVar(&f.mode, "mode", "basic", "search mode: basic or region")
	cmd.Flags().BoolVar(&f.record, "record", false, "store the run in --db")
	return cmd
}

func (c *cli) bench(ctx context.Context, out io.Writer, name string, f *benchFlags) error {
	if f.queries < 1 || f.workers < 1 {
		return fmt.Errorf("--queries and --workers must be positive")
	}
	if f.record && c.dbPath == "" {
		return fmt.Errorf("--record needs --db")
	}
	mode, err := pathapi.ParseMode(f.mode)
	if err != nil {
		return err
	}
	sc, err := c.loadScene(name)
	if err != nil {
		return err
	}
	pairs, err := randomPairs(sc.Grid, f.queries, f.seed)
	if err != nil {
		return err
	}

	start := time.Now()
	sum, err := runBench(ctx, sc, mode, pairs, f.workers, c.finderOptions())
	if err != nil {
		return err
	}
	sum.Elapsed = time.Since(start)

	fmt.Fprintf(out, "scene %s, %s mode, %d queries on %d workers\n", sc.Spec.Name, mode, sum.Queries, f.workers)
	fmt.Fprintf(out, "  complete:  %d\n", sum.Complete)
	fmt.Fprintf(out, "  not found: %d\n", sum.NotFound)
	fmt.Fprintf(out, "  visited:   %d (%.1f per query)\n", sum.Visited, float64(sum.Visited)/float64(sum.Queries))
	fmt.Fprintf(out, "  ticks:     %d\n", sum.Ticks)
	fmt.Fprintf(out, "  elapsed:   %s\n", sum.Elapsed)

	if !f.record {
		return nil
	}
	st, err := c.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return st.RecordBench(&store.BenchRun{
		Scene:    sc.Spec.Name,
		Mode:     mode.String(),
		Queries:  sum.Queries,
		Workers:  f.workers,
		Complete: sum.Complete,
		NotFound: sum.NotFound,
		Visited:  sum.Visited,
		Ticks:    sum.Ticks,
		Elapsed:  sum.Elapsed,
	})
}

type queryPair struct {
	from, to pathfinding.Point
}

// randomPairs picks n start/target pairs among the walkable nodes of g.
func randomPairs(g *pathfinding.Grid, n int, seed uint64) ([]queryPair, error) {
	var open []pathfinding.Point
	for _, node := range g.Nodes() {
		if !node.Wall {
			open = append(open, node.Pos)
		}
	}
	if len(open) == 0 {
		return nil, fmt.Errorf("grid has no walkable node")
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pairs := make([]queryPair, n)
	for i := range pairs {
		pairs[i] = queryPair{
			from: open[rng.IntN(len(open))],
			to:   open[rng.IntN(len(open))],
		}
	}
	return pairs, nil
}

// runBench shares sc's grid between workers; each worker owns one Finder and
// resets it between queries.
func runBench(ctx context.Context, sc *scene.Scene, mode pathfinding.Mode, pairs []queryPair, workers int, opts []pathfinding.Option) (benchSummary, error) {
	var (
		mu  sync.Mutex
		sum = benchSummary{Queries: len(pairs)}
	)
	jobs := make(chan queryPair)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for _, p := range pairs {
			select {
			case jobs <- p:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			finder, err := sc.NewFinder(opts...)
			if err != nil {
				return err
			}
			var local benchSummary
			for p := range jobs {
				if err := finder.Start(mode, p.from, p.to); err != nil {
					return err
				}
				r, err := finder.Run(gctx)
				if err != nil {
					return err
				}
				if r.State == pathfinding.StateComplete {
					local.Complete++
				} else {
					local.NotFound++
				}
				local.Visited += int64(r.Visited)
				local.Ticks += int64(r.Ticks)
				finder.Reset()
			}
			mu.Lock()
			sum.Complete += local.Complete
			sum.NotFound += local.NotFound
			sum.Visited += local.Visited
			sum.Ticks += local.Ticks
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return benchSummary{}, err
	}
	return sum, nil
}
