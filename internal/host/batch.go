package host

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"stringact/internal/logging"
)

// Batch runs calls concurrently, each with its own sink. Results are in call
// order. The returned error combines every failed call; a failure never
// cancels the other calls, but a cancelled ctx stops calls not yet started.
func (e *Evaluator) Batch(ctx context.Context, calls []Call) ([]*Result, error) {
	results := make([]*Result, len(calls))
	audit := logging.Audit()
	audit.BatchStart(len(calls))
	start := time.Now()

	var eg errgroup.Group
	if e.concurrency > 0 {
		eg.SetLimit(e.concurrency)
	}
	for i, call := range calls {
		eg.Go(func() error {
			results[i] = e.invoke(ctx, call, true)
			return nil
		})
	}
	_ = eg.Wait()

	var err error
	failed := 0
	for i, res := range results {
		if res.Err != nil {
			failed++
			err = multierr.Append(err, fmt.Errorf("call %d (%s): %w", i, calls[i].Action, res.Err))
		}
	}

	audit.BatchComplete(len(calls), failed, time.Since(start))
	logging.HostDebug("batch of %d finished with %d failures", len(calls), failed)
	return results, err
}
