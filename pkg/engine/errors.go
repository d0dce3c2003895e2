package engine

import "fmt"

// ComputationError is an explicit failure reported by the worker for one
// operation. Timeouts and worker unavailability never surface as errors —
// they resolve through the synchronous fallback instead.
type ComputationError struct {
	Action string
	Err    error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("worker computation %s failed: %v", e.Action, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
