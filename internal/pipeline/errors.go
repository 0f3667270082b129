package pipeline

import "fmt"

// ValidationError rejects a submission synchronously; no job is created
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProcessingError wraps a failure inside one job's pipeline run. It is
// caught per job and never propagates to other jobs or the worker pool.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
