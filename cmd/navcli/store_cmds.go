package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/milk9111/gridnav/scene"
	"github.com/spf13/cobra"
)

func newBakeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "bake <scene>",
		Short: "Build a scene's grid and store it in --db for later runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.dbPath == "" {
				return fmt.Errorf("bake needs --db")
			}
			spec, err := scene.LoadScene(sceneName(args[0]))
			if err != nil {
				return err
			}
			sc, err := scene.Build(spec, c.logger)
			if err != nil {
				return err
			}
			st, err := c.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.SaveGrid(spec.Name, sc.Grid); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "baked %s: %dx%d, %d walls\n",
				spec.Name, sc.Grid.Width(), sc.Grid.Height(), sc.Grid.WallCount())
			return nil
		},
	}
}

func newHistoryCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [scene]",
		Short: "Show recorded bench runs from --db, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.dbPath == "" {
				return fmt.Errorf("history needs --db")
			}
			st, err := c.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			name := ""
			if len(args) == 1 {
				name = sceneName(args[0])
			}
			runs, err := st.BenchRuns(name, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSCENE\tMODE\tQUERIES\tWORKERS\tCOMPLETE\tNOT FOUND\tVISITED\tELAPSED\tWHEN")
			for _, r := range runs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
					r.ID, r.Scene, r.Mode, r.Queries, r.Workers, r.Complete, r.NotFound, r.Visited,
					r.Elapsed, r.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to show (0 for all)")
	return cmd
}
