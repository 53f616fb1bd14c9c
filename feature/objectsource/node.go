package objectsource

import (
	"context"
	"math"
	"sync"

	"nodegrid/core/node"
)

// DefaultWidth is the wrap width used to estimate a body's line count.
const DefaultWidth = 80

// Node is an object whose body is loaded on demand.
type Node struct {
	Key  string
	Size int64

	bodies *bodyGroup
	width  int

	mu   sync.Mutex
	body []byte
}

var (
	_ node.Loader = (*Node)(nil)
	_ node.Purger = (*Node)(nil)
)

// Measure is one header line plus the body's wrapped line count.
func (n *Node) Measure(ctx context.Context) (node.Size, error) {
	if err := ctx.Err(); err != nil {
		return node.Size{}, err
	}
	lines := 1 + math.Ceil(float64(n.Size)/float64(n.width))
	return node.Size{Width: float64(n.width), Height: lines}, nil
}

// Load downloads the body unless it is already resident.
func (n *Node) Load(ctx context.Context) error {
	n.mu.Lock()
	loaded := n.body != nil
	n.mu.Unlock()
	if loaded {
		return nil
	}

	data, err := n.bodies.fetch(ctx, n.Key)
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.body = data
	n.mu.Unlock()
	return nil
}

// Purge drops the body.
func (n *Node) Purge() {
	n.mu.Lock()
	n.body = nil
	n.mu.Unlock()
}

// Body returns the resident body, or nil.
func (n *Node) Body() []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.body
}
