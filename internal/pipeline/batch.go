package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/publintel/mfascan/internal/model"
)

// defaultConcurrency bounds simultaneous scans when no batch size was
// configured.
const defaultConcurrency = 10

// BatchProcessor scores multiple observations concurrently. It uses
// errgroup to manage goroutines and respect the concurrency limit.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because it keeps the Pipeline focused
// on single-scan execution and leaves room for different batch
// strategies.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline per scan so state never
	// leaks between observations.
	pipelineFactory func() *Pipeline

	concurrency int
	logger      *slog.Logger

	results []*Scan
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent scans.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor around a pipeline factory.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     defaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch scores multiple observations concurrently, preserving
// input order in the returned slice.
//
// Scan-level failures are recorded on the scan and do not abort the
// batch; the error return covers cancellation only.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, observations []*model.CrawlObservation) ([]*Scan, error) {
	bp.logger.Info("starting batch scoring",
		"total_observations", len(observations),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	bp.results = make([]*Scan, len(observations))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, obs := range observations {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			scan := NewScan(obs)
			if err := bp.pipelineFactory().Execute(ctx, scan); err != nil {
				bp.logger.Warn("scan failed",
					"url", obs.URL,
					"error", err,
				)
			}

			bp.mu.Lock()
			bp.results[i] = scan
			bp.mu.Unlock()
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch scoring complete",
		"total_observations", len(observations),
		"elapsed", time.Since(startTime),
	)
	return bp.results, err
}

// ProcessBatchWithCallback scores multiple observations and invokes the
// callback for each completed scan, useful for streaming output. The
// callback runs on the scanning goroutine and must be thread-safe.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	observations []*model.CrawlObservation,
	callback func(scan *Scan, index int),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, obs := range observations {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			scan := NewScan(obs)
			_ = bp.pipelineFactory().Execute(ctx, scan) //nolint:errcheck // recorded on the scan

			callback(scan, i)
			return nil
		})
	}

	return g.Wait()
}
