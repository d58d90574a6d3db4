package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/neuronpath/pkg/chain"
	pio "github.com/matzehuels/neuronpath/pkg/io"
	"github.com/matzehuels/neuronpath/pkg/pipeline"
)

// decomposeCommand creates the decompose command: edges to chains.
func (c *CLI) decomposeCommand() *cobra.Command {
	var (
		in       inputOpts
		output   string
		asJSON   bool
		refresh  bool
		validate bool
	)

	cmd := &cobra.Command{
		Use:   "decompose [paths.json|-]",
		Short: "Split paths into simple chains and linker edges",
		Long: `Split paths into simple chains and linker edges.

Chains are chosen greedily, longest first, and together cover every node.
Edges not on any chain are listed as linkers. Recomposing the chains and
linkers gives back the original edge set.

By default a table is printed. Use --json for the machine-readable form
accepted by 'recompose'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := loadPathSet(cmd, args[0], in)
			if err != nil {
				return err
			}
			opts := c.pipelineOptions()
			opts.Refresh = refresh

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, "Decomposing paths...")
			spinner.Start()

			results := make(map[string]chain.Decomposition[pipeline.Key], len(ps.Paths))
			stats := make([]pipeline.Stats, 0, len(ps.Paths))
			hits := make([]bool, 0, len(ps.Paths))
			var table bytes.Buffer
			for _, p := range ps.Paths {
				g, _ := pipeline.DistinctGraph(p)
				d, hit, err := runner.DecomposeWithCacheInfo(ctx, p.Name, g, opts)
				if err != nil {
					spinner.StopWithError("Decomposition failed")
					return fmt.Errorf("decompose %s: %w", p.Name, err)
				}
				if validate {
					if err := pipeline.VerifyDecomposition(g, d); err != nil {
						spinner.StopWithError("Verification failed")
						return fmt.Errorf("%s: %w", p.Name, err)
					}
				}
				results[p.Name] = d
				if !asJSON {
					fmt.Fprintln(&table, StyleTitle.Render(p.Name))
					fmt.Fprintln(&table, chainTable(d))
				}
				stats = append(stats, pipeline.Stats{
					NodeCount:   len(g.Nodes()),
					EdgeCount:   g.Len(),
					ChainCount:  len(d.Chains),
					LinkerCount: len(d.Linkers),
				})
				hits = append(hits, hit)
			}
			spinner.Stop()
			for i := range stats {
				printStats(stats[i], hits[i])
			}

			if !asJSON {
				return writeOutput(cmd, output, table.Bytes())
			}
			var data []byte
			if len(ps.Paths) == 1 {
				data, err = json.MarshalIndent(results[ps.Paths[0].Name], "", "  ")
			} else {
				data, err = json.MarshalIndent(results, "", "  ")
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, append(data, '\n'))
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write JSON instead of a table")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().BoolVar(&validate, "verify", false, "check that the chains recompose to the input edges")

	return cmd
}

// recomposeCommand creates the recompose command: chains to edges.
func (c *CLI) recomposeCommand() *cobra.Command {
	var out outputOpts

	cmd := &cobra.Command{
		Use:   "recompose [chains.json|-]",
		Short: "Rebuild an edge list from chains and linkers",
		Long: `Rebuild an edge list from chains and linkers.

The input is the JSON written by 'decompose --json':
  {"chains": [["a", "b@L5", "c"]], "linkers": [{"from": "a", "to": "c"}]}
An edge named twice is rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			d, err := pipeline.ParseDecomposition(data)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			edges, err := runner.Recompose(cmd.Context(), out.name, d)
			if err != nil {
				return err
			}
			return out.write(cmd, pio.Path{Name: out.name, Edges: edges})
		},
	}

	out.register(cmd)
	return cmd
}
