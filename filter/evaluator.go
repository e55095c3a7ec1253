package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/linkup/readings"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*Evaluator)

// WithWorkers sets the number of chunks evaluated at once
func WithWorkers(workers int) EvaluatorOption {
	return func(e *Evaluator) {
		if workers > 0 {
			e.workers = workers
		}
	}
}

// WithBatchSize sets the chunk size; smaller inputs are evaluated inline
func WithBatchSize(size int) EvaluatorOption {
	return func(e *Evaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// Evaluator runs a filter over readings in concurrent chunks
type Evaluator struct {
	workers   int
	batchSize int
}

// NewEvaluator creates a new evaluator
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		workers:   runtime.GOMAXPROCS(0),
		batchSize: 288, // one day of 5 minute readings
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate returns the readings that match filter, in input order. The first
// evaluation error stops the remaining chunks and is returned.
func (e *Evaluator) Evaluate(ctx context.Context, filter CompiledFilter, rs []readings.Reading) ([]readings.Reading, error) {
	if len(rs) == 0 {
		return []readings.Reading{}, nil
	}

	if len(rs) <= e.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return matchChunk(filter, rs)
	}

	chunkSize := max(len(rs)/e.workers, e.batchSize)
	chunks := (len(rs) + chunkSize - 1) / chunkSize
	results := make([][]readings.Reading, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range chunks {
		start := i * chunkSize
		chunk := rs[start:min(start+chunkSize, len(rs))]

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			matches, err := matchChunk(filter, chunk)
			if err != nil {
				return err
			}
			results[i] = matches
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, m := range results {
		total += len(m)
	}
	out := make([]readings.Reading, 0, total)
	for _, m := range results {
		out = append(out, m...)
	}
	return out, nil
}

func matchChunk(filter CompiledFilter, chunk []readings.Reading) ([]readings.Reading, error) {
	matches := make([]readings.Reading, 0, len(chunk)/4)
	for _, r := range chunk {
		ok, err := filter.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, r)
		}
	}
	return matches, nil
}
