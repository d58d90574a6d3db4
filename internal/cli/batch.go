package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/neuronpath/pkg/errors"
)

// batchCommand creates the batch command: every stage for every path.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		in      inputOpts
		output  string
		workers int
		refresh bool
		verify  bool
	)

	cmd := &cobra.Command{
		Use:   "batch [paths.json|-]",
		Short: "Expand, encode and decompose every path of a set",
		Long: `Expand, encode and decompose every path of a set concurrently.

The results are written as one JSON document with a run id, one entry per
successful path and one entry per failed path. A failing path does not
stop the others, but the command exits with an error if any path failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := loadPathSet(cmd, args[0], in)
			if err != nil {
				return err
			}
			opts := c.pipelineOptions()
			opts.Refresh = refresh
			opts.Verify = verify
			if !cmd.Flags().Changed("workers") {
				workers = c.Config.Batch.Workers
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, "Processing paths...")
			runner.OnBatchProgress = spinner.SetProgress
			spinner.SetProgress(0, len(ps.Paths))
			spinner.Start()
			res, err := runner.ProcessBatch(ctx, ps, opts, workers)
			if err != nil {
				spinner.StopWithError("Batch aborted")
				return err
			}
			spinner.Stop()

			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			if err := writeOutput(cmd, output, append(data, '\n')); err != nil {
				return err
			}

			printKeyValue("Run", res.RunID)
			printKeyValue("Succeeded", StyleNumber.Render(fmt.Sprint(len(res.Results))))
			printKeyValue("Duration", res.Duration.Round(time.Millisecond).String())
			for _, f := range res.Failed {
				printError("%s: %s %s", f.Name, f.Code, f.Message)
			}
			if len(res.Failed) > 0 {
				return errors.New(errors.ErrCodeInvalidInput, "%d of %d paths failed", len(res.Failed), len(ps.Paths))
			}
			return nil
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "paths processed concurrently (default from config)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().BoolVar(&verify, "verify", false, "check every stage by running its inverse")

	return cmd
}
