// Package node defines the unit of displayable content managed by nodegrid.
//
// A Node is produced by the data source and measured off the apply goroutine before
// it is ever shown. Nodes may additionally implement Loader to fetch heavy content
// when they enter the working range and Purger to drop it again on eviction.
package node

import (
	"context"
	"fmt"
)

// Size is a measured extent. Height is the scroll-axis extent.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// Node is an opaque, measurable unit of content.
type Node interface {
	// Measure computes the node's size. It is called from materialization
	// goroutines and must be safe to call concurrently with other nodes.
	Measure(ctx context.Context) (Size, error)
}

// Loader is implemented by nodes that hold heavy content which should only be
// resident while the node is inside the working range.
type Loader interface {
	Load(ctx context.Context) error
}

// Purger is implemented by nodes that can release heavy content on eviction.
// The node's size stays valid after Purge.
type Purger interface {
	Purge()
}
