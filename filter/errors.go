package filter

import (
	"errors"
	"fmt"

	"github.com/s0up4200/linkup/readings"
)

// ErrUnknownPreset is returned when a named preset does not exist
var ErrUnknownPreset = errors.New("unknown filter preset")

// Error types for filter operations
type (
	// CompilationError indicates a filter expression could not be compiled
	CompilationError struct {
		Expression string
		Reason     string
		Position   int // -1 if position is unknown
		Err        error
	}

	// EvaluationError indicates a filter could not be run against a reading
	EvaluationError struct {
		Expression string
		Reading    readings.Reading
		Reason     string
		Err        error
	}
)

func (e *CompilationError) Error() string {
	msg := fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
	if e.Position >= 0 {
		msg = fmt.Sprintf("compilation error at position %d in '%s': %s", e.Position, e.Expression, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

func (e *EvaluationError) Error() string {
	at := "unknown time"
	if !e.Reading.Time.IsZero() {
		at = e.Reading.Time.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("evaluation error for '%s' on reading at %s: %s", e.Expression, at, e.Reason)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
