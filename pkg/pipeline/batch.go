package pipeline

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/neuronpath/pkg/errors"
	pio "github.com/matzehuels/neuronpath/pkg/io"
)

// BatchResult holds the outcome of [Runner.ProcessBatch]. Results keep the
// order of the input path set; failed paths are listed in Failed instead.
type BatchResult struct {
	RunID    string         `json:"run_id"`
	Results  []*Result      `json:"results"`
	Failed   []BatchFailure `json:"failed,omitempty"`
	Duration time.Duration  `json:"duration_ns"`
}

// BatchFailure records why one path failed.
type BatchFailure struct {
	Name    string      `json:"name"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// ProcessBatch runs [Runner.Execute] on every path of ps with at most
// workers paths in flight. workers <= 0 means GOMAXPROCS. A failing path
// does not stop the others; only context cancellation aborts the batch.
func (r *Runner) ProcessBatch(ctx context.Context, ps *pio.PathSet, opts Options, workers int) (*BatchResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	runID := uuid.NewString()
	logger := r.Logger.With("run", runID)
	logger.Info("starting batch", "paths", len(ps.Paths), "workers", workers)
	start := time.Now()

	results := make([]*Result, len(ps.Paths))
	failures := make([]*BatchFailure, len(ps.Paths))
	var finished atomic.Int64
	report := func() {
		n := int(finished.Add(1))
		if r.OnBatchProgress != nil {
			r.OnBatchProgress(n, len(ps.Paths))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range ps.Paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.Execute(gctx, p, opts)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Error("path failed", "path", p.Name, "error", err)
				failures[i] = &BatchFailure{Name: p.Name, Code: errors.GetCode(err), Message: errors.UserMessage(err)}
				report()
				return nil
			}
			results[i] = res
			report()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &BatchResult{RunID: runID, Duration: time.Since(start)}
	for i := range ps.Paths {
		if results[i] != nil {
			out.Results = append(out.Results, results[i])
		}
		if failures[i] != nil {
			out.Failed = append(out.Failed, *failures[i])
		}
	}
	logger.Info("finished batch",
		"succeeded", len(out.Results),
		"failed", len(out.Failed),
		"duration", out.Duration)
	return out, nil
}
