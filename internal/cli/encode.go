package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/neuronpath/pkg/graph"
	pio "github.com/matzehuels/neuronpath/pkg/io"
	"github.com/matzehuels/neuronpath/pkg/pipeline"
	"github.com/matzehuels/neuronpath/pkg/rdflist"
)

// Encoding output styles.
const (
	styleSexpr   = "sexpr"
	styleJSON    = "json"
	styleTriples = "triples"
)

// encodeCommand creates the encode command: edges to nested-list encoding.
func (c *CLI) encodeCommand() *cobra.Command {
	var (
		in      inputOpts
		output  string
		style   string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "encode [paths.json|-]",
		Short: "Encode paths as nested lists of terms",
		Long: `Encode paths as nested lists of terms.

Every path is expanded and its tree written in the nested-list form used by
published documents. A layered node becomes a two-item list of the layer
predicate and (region layer); see --layer-term.

Styles:
  sexpr    one s-expression per path (default)
  json     nested JSON arrays of strings
  triples  first/rest list statements, one per line`,
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

			var buf bytes.Buffer
			for _, p := range ps.Paths {
				g, _ := pipeline.DistinctGraph(p)
				forest, _, err := runner.ExpandWithCacheInfo(ctx, p.Name, g, opts)
				if err != nil {
					return fmt.Errorf("expand %s: %w", p.Name, err)
				}
				cell, hit, err := runner.EncodeWithCacheInfo(ctx, p.Name, graph.Hash(g), forest, opts)
				if err != nil {
					return fmt.Errorf("encode %s: %w", p.Name, err)
				}
				printStats(pipeline.Stats{NodeCount: len(g.Nodes()), EdgeCount: g.Len()}, hit)
				if len(ps.Paths) > 1 && style != styleTriples {
					fmt.Fprintf(&buf, "%s\t", p.Name)
				}
				if err := writeCell(&buf, p.Name, cell, style); err != nil {
					return err
				}
			}
			return writeOutput(cmd, output, buf.Bytes())
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&style, "style", "s", styleSexpr, "output style: sexpr, json, triples")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if cached")

	return cmd
}

func writeCell(buf *bytes.Buffer, name string, cell rdflist.Cell, style string) error {
	switch style {
	case styleSexpr, "":
		fmt.Fprintln(buf, cell.String())
	case styleJSON:
		data, err := json.Marshal(cell)
		if err != nil {
			return err
		}
		buf.Write(data)
		buf.WriteByte('\n')
	case styleTriples:
		root, stmts, err := rdflist.Linearize(cell)
		if err != nil {
			return fmt.Errorf("linearize %s: %w", name, err)
		}
		fmt.Fprintf(buf, "# %s root %s\n", name, root)
		if err := rdflist.WriteStatements(buf, stmts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown style %q (want sexpr, json or triples)", style)
	}
	return nil
}

// decodeCommand creates the decode command: nested-list encoding to tree.
func (c *CLI) decodeCommand() *cobra.Command {
	var (
		out   outputOpts
		edges bool
	)

	cmd := &cobra.Command{
		Use:   "decode [encoded.txt|-]",
		Short: "Decode a nested-list encoding back into a tree",
		Long: `Decode a nested-list encoding back into a tree.

The input is either an s-expression of quoted terms or the JSON written by
'encode --style json'. With --edges the tree is collapsed further and
written as a path set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			cell, err := pipeline.ParseEncoded(data)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			forest, err := runner.Decode(ctx, out.name, cell, c.pipelineOptions())
			if err != nil {
				return err
			}
			if !edges {
				return writeOutput(cmd, out.output, []byte(forest.String()+"\n"))
			}
			es, err := runner.Collapse(ctx, out.name, forest)
			if err != nil {
				return err
			}
			return out.write(cmd, pio.Path{Name: out.name, Edges: es})
		},
	}

	out.register(cmd)
	cmd.Flags().BoolVar(&edges, "edges", false, "write the collapsed edge list instead of the tree")
	return cmd
}
