package update

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a closed coordinator.
	ErrClosed = errors.New("update coordinator closed")
	// ErrHalted wraps the fatal error that stopped the coordinator.
	ErrHalted = errors.New("update coordinator halted")
)

// InconsistentDataSourceError reports that the data source's shape disagrees
// with the shape implied by the applied commands. The data source must reflect
// every change before the matching command is enqueued.
type InconsistentDataSourceError struct {
	// Expected holds the simulated item counts; -1 marks a section whose count
	// is taken from the data source.
	Expected []int
	Actual   []int
	Reason   string
	// Cause is set when a queued command could not be simulated at all.
	Cause error
}

func (e *InconsistentDataSourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("inconsistent data source: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("inconsistent data source: %s (expected %v, actual %v)", e.Reason, e.Expected, e.Actual)
}

func (e *InconsistentDataSourceError) Unwrap() error {
	return e.Cause
}

func halted(err error) error {
	return fmt.Errorf("%w: %w", ErrHalted, err)
}
