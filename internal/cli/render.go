package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/neuronpath/pkg/chain"
	"github.com/matzehuels/neuronpath/pkg/pipeline"
	"github.com/matzehuels/neuronpath/pkg/render"
)

// renderCommand creates the render command for node-link drawings.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		in         inputOpts
		formatsStr string
		output     string
		plain      bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [paths.json|-]",
		Short: "Draw paths as node-link diagrams",
		Long: `Draw paths as node-link diagrams with Graphviz.

Chain members share a fill colour and chain steps are drawn bold; linker
edges are dashed. Use --plain to draw the edges without the decomposition.

With one path and one format, --output names the file. Otherwise --output is
a base path and files are named <base>-<path>.<format>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := render.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			ps, err := loadPathSet(cmd, args[0], in)
			if err != nil {
				return err
			}
			base := c.pipelineOptions()
			opts.LayerTerm, opts.Strict = base.LayerTerm, base.Strict

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, "Rendering...")
			spinner.Start()

			var written []string
			for _, p := range ps.Paths {
				g, _ := pipeline.DistinctGraph(p)
				var chains *chain.Decomposition[pipeline.Key]
				if !plain {
					d, _, err := runner.DecomposeWithCacheInfo(ctx, p.Name, g, opts)
					if err != nil {
						spinner.StopWithError("Rendering failed")
						return fmt.Errorf("decompose %s: %w", p.Name, err)
					}
					chains = &d
				}
				artifacts, err := runner.Render(ctx, p.Name, g.Edges(), chains, opts)
				if err != nil {
					spinner.StopWithError("Rendering failed")
					return fmt.Errorf("render %s: %w", p.Name, err)
				}
				paths, err := writeArtifacts(artifacts, output, baseName(args[0]), p.Name, len(ps.Paths) > 1)
				if err != nil {
					spinner.StopWithError("Rendering failed")
					return err
				}
				written = append(written, paths...)
			}
			spinner.StopWithSuccess(fmt.Sprintf("Rendered %d path(s)", len(ps.Paths)))
			for _, path := range written {
				printFile(path)
			}
			return nil
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.LeftToRight, "left-to-right", false, "lay out chains horizontally")
	cmd.Flags().BoolVar(&plain, "plain", false, "draw edges without chain highlighting")

	return cmd
}

// writeArtifacts writes one file per format and returns the written paths.
func writeArtifacts(artifacts map[string][]byte, output, inputBase, pathName string, many bool) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	var written []string
	for _, format := range formats {
		path := artifactPath(output, inputBase, pathName, format, many, len(formats) > 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return written, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// artifactPath names the output file for one rendering. A single output is
// written to output verbatim; otherwise output (or the input name) is a base
// path extended with the path name and format.
func artifactPath(output, inputBase, pathName, format string, manyPaths, manyFormats bool) string {
	if output != "" && !manyPaths && !manyFormats {
		return output
	}
	base := inputBase
	if output != "" {
		base = trimExt(output)
	}
	if manyPaths {
		base += "-" + pathName
	}
	return base + "." + format
}

func trimExt(p string) string {
	if ext := filepath.Ext(p); ext != "" {
		return p[:len(p)-len(ext)]
	}
	return p
}
