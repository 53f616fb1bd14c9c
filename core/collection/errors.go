package collection

import "errors"

// ErrNotAvailable is returned by synchronous reads of a slot that holds no ready
// node (or, for sizes, no measured size) yet.
var ErrNotAvailable = errors.New("node not available yet")

// ErrClosed is returned by operations on a closed view.
var ErrClosed = errors.New("view closed")
