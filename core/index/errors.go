package index

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is the sentinel wrapped by every OutOfRangeError.
var ErrOutOfRange = errors.New("index out of range")

// OutOfRangeError reports an index or section outside the current bounds.
type OutOfRangeError struct {
	// Op names the rejected operation.
	Op string
	// Index is the offending index. Item is -1 for section-level errors.
	Index Index
	// Limit is the exclusive bound the value was checked against.
	Limit int
}

// SectionOutOfRange builds a section-level error.
func SectionOutOfRange(op string, section, limit int) *OutOfRangeError {
	return &OutOfRangeError{Op: op, Index: Index{Section: section, Item: -1}, Limit: limit}
}

// ItemOutOfRange builds an item-level error.
func ItemOutOfRange(op string, idx Index, limit int) *OutOfRangeError {
	return &OutOfRangeError{Op: op, Index: idx, Limit: limit}
}

func (e *OutOfRangeError) Error() string {
	if e.Index.Item < 0 {
		return fmt.Sprintf("%s: section %d out of range [0,%d)", e.Op, e.Index.Section, e.Limit)
	}
	return fmt.Sprintf("%s: index %s out of range (limit %d)", e.Op, e.Index, e.Limit)
}

func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}
