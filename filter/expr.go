package filter

import (
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/linkup/librelinkup"
	"github.com/s0up4200/linkup/readings"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	clock      func() time.Time
	extra      map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[string, CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.extra, funcs)
	}
}

// WithClock replaces time.Now for relative helpers such as MinutesAgo
func WithClock(clock func() time.Time) ExprCompilerOption {
	return func(c *exprCompiler) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		clock: time.Now,
		extra: make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	clock func() time.Time
	extra map[string]any
	cache *lruCache[string, CompiledFilter]
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
			Position:   -1,
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Type-check against the environment of a zero reading
	program, err := expr.Compile(expression,
		expr.Env(newEnvironment(readings.Reading{}, c.clock, c.extra)),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Position:   -1,
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		clock:      c.clock,
		extra:      c.extra,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Match runs the filter against a reading
func (f *exprFilter) Match(r readings.Reading) (bool, error) {
	result, err := expr.Run(f.program, newEnvironment(r, f.clock, f.extra))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			Reading:    r,
			Reason:     "failed to run expression",
			Err:        err,
		}
	}

	// AsBool guarantees the type
	return result.(bool), nil
}

// Evaluate reports whether the reading matches; evaluation errors count as no match
func (f *exprFilter) Evaluate(r readings.Reading) bool {
	ok, err := f.Match(r)
	return err == nil && ok
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// newEnvironment builds the variables and helpers visible to an expression
func newEnvironment(r readings.Reading, clock func() time.Time, extra map[string]any) map[string]any {
	env := make(map[string]any, 24+len(extra))
	now := clock()

	env["Value"] = r.Value()
	env["ValueMgDl"] = r.ValueMgDl
	env["Mmol"] = r.Mmol()
	env["Unit"] = r.Unit.String()
	env["Patient"] = r.Patient
	env["PatientID"] = r.PatientID
	env["ConnectionID"] = r.ConnectionID
	env["Trend"] = r.Trend.String()
	env["IsHigh"] = r.IsHigh
	env["IsLow"] = r.IsLow
	env["Range"] = string(r.Range())
	env["Time"] = r.Time
	env["MinutesAgo"] = int(r.Age(now).Minutes())
	env["TargetLow"] = r.TargetLow
	env["TargetHigh"] = r.TargetHigh

	trend := r.Trend
	env["rising"] = func() bool {
		return trend == librelinkup.TrendRising || trend == librelinkup.TrendRisingQuickly
	}
	env["falling"] = func() bool {
		return trend == librelinkup.TrendFalling || trend == librelinkup.TrendFallingQuickly
	}
	rng := r.Range()
	env["inRange"] = func() bool {
		return rng == readings.RangeInRange
	}

	env["minutesSince"] = func(t time.Time) int {
		return int(now.Sub(t).Minutes())
	}
	env["hoursAgo"] = func(hours int) time.Time {
		return now.Add(-time.Duration(hours) * time.Hour)
	}
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	env["now"] = func() time.Time { return now }

	maps.Copy(env, extra)
	return env
}
