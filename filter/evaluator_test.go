package filter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/linkup/librelinkup"
	"github.com/s0up4200/linkup/readings"
)

func series(n int) []readings.Reading {
	rs := make([]readings.Reading, n)
	for i := range rs {
		rs[i] = reading(float64(40+i%300), librelinkup.TrendStable, time.Duration(n-i)*5*time.Minute)
	}
	return rs
}

func TestEvaluatorEvaluate(t *testing.T) {
	c := NewExprCompiler(WithClock(fixedClock))
	f, err := c.Compile(`ValueMgDl > 180`)
	require.NoError(t, err)

	tests := []struct {
		name string
		eval *Evaluator
		n    int
	}{
		{"empty", NewEvaluator(), 0},
		{"inline", NewEvaluator(WithBatchSize(100)), 50},
		{"chunked", NewEvaluator(WithWorkers(3), WithBatchSize(10)), 1000},
		{"single worker", NewEvaluator(WithWorkers(1), WithBatchSize(7)), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := series(tt.n)

			var want []readings.Reading
			for _, r := range rs {
				if r.ValueMgDl > 180 {
					want = append(want, r)
				}
			}

			got, err := tt.eval.Evaluate(context.Background(), f, rs)
			require.NoError(t, err)
			require.Len(t, got, len(want))
			for i := range want {
				assert.Equal(t, want[i].Time, got[i].Time, "order preserved at %d", i)
			}
		})
	}
}

// failingFilter errors on one value
type failingFilter struct{ bad float64 }

func (f failingFilter) Evaluate(r readings.Reading) bool {
	ok, _ := f.Match(r)
	return ok
}

func (f failingFilter) Expression() string { return "failing" }

func (f failingFilter) Match(r readings.Reading) (bool, error) {
	if r.ValueMgDl == f.bad {
		return false, &EvaluationError{Expression: "failing", Reading: r, Reason: "boom", Err: errors.New("boom")}
	}
	return true, nil
}

func TestEvaluatorErrors(t *testing.T) {
	rs := series(500)
	e := NewEvaluator(WithWorkers(4), WithBatchSize(20))

	_, err := e.Evaluate(context.Background(), failingFilter{bad: 100}, rs)
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, 100.0, evalErr.Reading.ValueMgDl)
	assert.Contains(t, err.Error(), "boom")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Evaluate(ctx, failingFilter{bad: -1}, rs)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = e.Evaluate(ctx, failingFilter{bad: -1}, rs[:5])
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatchRuntimeError(t *testing.T) {
	c := NewExprCompiler(WithCustomFunctions(map[string]any{
		"explode": func() (bool, error) { return false, errors.New("exploded") },
	}))
	f, err := c.Compile(`explode()`)
	require.NoError(t, err)

	_, err = f.Match(reading(100, librelinkup.TrendStable, 0))
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "explode()", evalErr.Expression)
	assert.False(t, f.Evaluate(reading(100, librelinkup.TrendStable, 0)))
}
