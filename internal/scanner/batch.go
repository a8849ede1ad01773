package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/ghbuster/internal/heuristic"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is how many heuristics or sub-scans run at once.
const DefaultConcurrency = 4

// Dispatcher runs the sub-scans composite heuristics ask for. It
// implements heuristic.SubScanner.
type Dispatcher struct {
	env         *heuristic.Env
	concurrency int
	logger      *slog.Logger
}

// NewDispatcher creates a Dispatcher running at most concurrency sub-scans
// at once against env.
func NewDispatcher(env *heuristic.Env, concurrency int, logger *slog.Logger) *Dispatcher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{env: env, concurrency: concurrency, logger: logger}
}

// SubScan runs every request and returns the results in request order.
// The first failure cancels the requests still running and is returned.
func (d *Dispatcher) SubScan(ctx context.Context, requests []heuristic.SubScanRequest) ([]heuristic.SubScanResult, error) {
	d.logger.Debug("starting sub-scans",
		"total", len(requests),
		"concurrency", d.concurrency,
	)
	start := time.Now()

	results := make([]heuristic.SubScanResult, len(requests))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, req := range requests {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			res, err := heuristic.RunSubScan(ctx, d.env, req)
			if err != nil {
				return fmt.Errorf("sub-scan of %s: %w", req.Target, err)
			}
			// Each goroutine owns its slot.
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.logger.Debug("sub-scans complete",
		"total", len(requests),
		"elapsed", time.Since(start),
	)
	return results, nil
}
