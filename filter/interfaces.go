package filter

import (
	"context"

	"github.com/s0up4200/linkup/readings"
)

// Filter decides whether a reading should be kept
type Filter interface {
	// Evaluate checks if a reading matches the filter criteria
	Evaluate(r readings.Reading) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Match is Evaluate with the evaluation error exposed
	Match(r readings.Reading) (bool, error)

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// ReadingEvaluator applies a filter to a batch of readings
type ReadingEvaluator interface {
	Evaluate(ctx context.Context, filter CompiledFilter, rs []readings.Reading) ([]readings.Reading, error)
}

var (
	_ CachingCompiler  = (*exprCompiler)(nil)
	_ CompiledFilter   = (*exprFilter)(nil)
	_ ReadingEvaluator = (*Evaluator)(nil)
)
