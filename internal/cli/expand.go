package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/neuronpath/pkg/io"
	"github.com/matzehuels/neuronpath/pkg/pipeline"
)

// expandCommand creates the expand command: edges to nested forest.
func (c *CLI) expandCommand() *cobra.Command {
	var (
		in      inputOpts
		output  string
		refresh bool
		verify  bool
	)

	cmd := &cobra.Command{
		Use:   "expand [paths.json|-]",
		Short: "Expand edge lists into canonical nested trees",
		Long: `Expand edge lists into canonical nested trees.

Each path is written as one s-expression. A path with zero or several roots
is wrapped in a list headed by "blank". When more than one path is
selected every line is prefixed with the path name.

Results are cached under a hash of the edge set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := loadPathSet(cmd, args[0], in)
			if err != nil {
				return err
			}
			opts := c.pipelineOptions()
			opts.Refresh = refresh
			opts.Verify = verify

			var buf bytes.Buffer
			if err := c.runExpand(cmd.Context(), ps, opts, &buf); err != nil {
				return err
			}
			return writeOutput(cmd, output, buf.Bytes())
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().BoolVar(&verify, "verify", false, "check that every tree collapses back to its edges")

	return cmd
}

// runExpand writes the forest of every path in ps to w.
func (c *CLI) runExpand(ctx context.Context, ps *pio.PathSet, opts pipeline.Options, w io.Writer) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	for _, p := range ps.Paths {
		g, dup := pipeline.DistinctGraph(p)
		if dup > 0 {
			printWarning("%s: dropped %d duplicate edge(s)", p.Name, dup)
		}
		forest, hit, err := runner.ExpandWithCacheInfo(ctx, p.Name, g, opts)
		if err != nil {
			return fmt.Errorf("expand %s: %w", p.Name, err)
		}
		if opts.Verify {
			if err := pipeline.VerifyForest(g, forest); err != nil {
				return fmt.Errorf("%s: %w", p.Name, err)
			}
		}
		printStats(pipeline.Stats{NodeCount: len(g.Nodes()), EdgeCount: g.Len()}, hit)
		if len(ps.Paths) > 1 {
			fmt.Fprintf(w, "%s\t", p.Name)
		}
		fmt.Fprintln(w, forest.String())
	}
	prog.done(fmt.Sprintf("Expanded %d path(s)", len(ps.Paths)))
	return nil
}

// collapseCommand creates the collapse command: nested forest to edges.
func (c *CLI) collapseCommand() *cobra.Command {
	var out outputOpts

	cmd := &cobra.Command{
		Use:   "collapse [forest.txt|-]",
		Short: "Collapse a nested tree back into its edge list",
		Long: `Collapse a nested tree back into its edge list.

The input is one s-expression as written by 'expand', for example
  (a (b@L5 c) c)
The edges are written as a path set in the selected format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			forest, err := pipeline.ParseForest(string(data))
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			edges, err := runner.Collapse(cmd.Context(), out.name, forest)
			if err != nil {
				return err
			}
			return out.write(cmd, pio.Path{Name: out.name, Edges: edges})
		},
	}

	out.register(cmd)
	return cmd
}

// outputOpts holds the flags of commands that write a path set.
type outputOpts struct {
	output string
	format string
	name   string
}

func (o *outputOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "path set format: json, toml, csv (default from --output, else json)")
	cmd.Flags().StringVar(&o.name, "name", pio.DefaultPathName, "name of the written path")
}

// write encodes p as a one-path set and writes it.
func (o *outputOpts) write(cmd *cobra.Command, p pio.Path) error {
	format := o.format
	if format == "" {
		format = pio.FormatJSON
		if o.output != "" && o.output != stdinArg {
			if f, err := pio.FormatFromPath(o.output); err == nil {
				format = f
			}
		}
	}
	ps := &pio.PathSet{Paths: []pio.Path{p}}
	if err := ps.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := pio.Write(ps, &buf, format); err != nil {
		return err
	}
	return writeOutput(cmd, o.output, buf.Bytes())
}
