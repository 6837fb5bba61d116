package filter

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/joshrmcdaniel/overseerr-requests-bot/overseerr"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if workers > 0 {
			e.workerCount = workers
		}
	}
}

// WithBatchSize sets the batch size for chunked processing
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// ConcurrentEvaluator implements both Evaluator and BatchEvaluator interfaces
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate evaluates a single filter against all requests
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, requests []overseerr.Request) ([]overseerr.Request, error) {
	if len(requests) == 0 {
		return []overseerr.Request{}, nil
	}

	// Small lists aren't worth the goroutines
	if len(requests) < e.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return evaluateChunk(filter, requests), nil
	}

	return e.evaluateConcurrent(ctx, filter, requests)
}

// EvaluateBatch evaluates multiple filters against requests concurrently.
// The first failure cancels the remaining filters.
func (e *ConcurrentEvaluator) EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, requests []overseerr.Request) (map[string][]overseerr.Request, error) {
	results := make(map[string][]overseerr.Request, len(filters))
	if len(filters) == 0 {
		return results, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for name, filter := range filters {
		g.Go(func() error {
			matches, err := e.Evaluate(gctx, filter, requests)
			if err != nil {
				return err
			}
			mu.Lock()
			results[name] = matches
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func evaluateChunk(filter CompiledFilter, requests []overseerr.Request) []overseerr.Request {
	matches := make([]overseerr.Request, 0, len(requests)/10)
	for _, req := range requests {
		if filter.Evaluate(req) {
			matches = append(matches, req)
		}
	}
	return matches
}

// evaluateConcurrent splits requests into ordered chunks and evaluates them in parallel
func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, requests []overseerr.Request) ([]overseerr.Request, error) {
	chunkSize := max(len(requests)/e.workerCount, e.batchSize)
	chunks := (len(requests) + chunkSize - 1) / chunkSize
	results := make([][]overseerr.Request, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for i := range chunks {
		start := i * chunkSize
		end := min(start+chunkSize, len(requests))

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each goroutine owns its own slot
			results[i] = evaluateChunk(filter, requests[start:end])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}

	matches := make([]overseerr.Request, 0, total)
	for _, r := range results {
		matches = append(matches, r...)
	}
	return matches, nil
}
