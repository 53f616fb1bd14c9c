package datasource

import (
	"errors"
	"fmt"
)

var (
	// ErrReleased is returned when a handle is used after Release.
	ErrReleased = errors.New("datasource: handle already released")
	// ErrDetached is returned when the collaborator behind a Ref is gone.
	ErrDetached = errors.New("datasource: collaborator detached")
	// ErrNoNode is returned when the data source produced no node for an index.
	ErrNoNode = errors.New("datasource: data source returned no node")
)

// ReentrantLockError reports a second acquisition from the operation that already
// holds the data source lock.
type ReentrantLockError struct {
	Operation string
}

func (e *ReentrantLockError) Error() string {
	if e.Operation == "" {
		return "datasource: lock acquired twice by the same operation"
	}
	return fmt.Sprintf("datasource: lock acquired twice by %s", e.Operation)
}
