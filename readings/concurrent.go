package readings

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Concurrency limits for graph fetching
const (
	DefaultConcurrency = 4
	MaxConcurrency     = 10
)

// Graphs fetches the graphs of several connections concurrently. A graph that
// fails to load is logged and left out; the remaining series keep the order of
// connectionIDs. The call fails when the context is cancelled or when every
// graph failed, in which case the first failure is returned.
func (o *Operations) Graphs(ctx context.Context, connectionIDs []string) ([]Series, error) {
	if len(connectionIDs) == 0 {
		return nil, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	// Each goroutine owns one slot, no locking needed
	slots := make([]*Series, len(connectionIDs))
	errs := make([]error, len(connectionIDs))

	for i, id := range connectionIDs {
		g.Go(func() error {
			series, err := o.Series(gctx, id)
			if err != nil {
				o.logger.Warn().
					Err(err).
					Str("connection", id).
					Msg("Failed to fetch connection graph")
				errs[i] = err
				return nil
			}
			slots[i] = series
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]Series, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			results = append(results, *s)
		}
	}
	if len(results) == 0 {
		for _, err := range errs {
			if err != nil {
				return nil, fmt.Errorf("failed to fetch any of %d connection graphs: %w", len(connectionIDs), err)
			}
		}
	}

	o.logger.Debug().
		Int("requested", len(connectionIDs)).
		Int("fetched", len(results)).
		Msg("Fetched connection graphs")
	return results, nil
}
