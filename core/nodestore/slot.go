package nodestore

import (
	"nodegrid/core/node"
)

// State is the lifecycle state of a slot.
type State uint8

const (
	Empty State = iota
	Pending
	Ready
	Evicted
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Evicted:
		return "evicted"
	default:
		return "unknown"
	}
}

// Slot is the per-index state.
type Slot struct {
	State State `json:"state"`
	// Token identifies the fetch that owns the slot. Empty slots have none.
	Token string `json:"token,omitempty"`
	// Node is set once the index has been fetched in this generation, whatever the
	// state. Evicted nodes may have been purged.
	Node node.Node `json:"-"`
	// Size is valid when Measured is true.
	Size     node.Size `json:"size"`
	Measured bool      `json:"measured"`
}

// Available reports whether the node may be handed to a reader.
func (s Slot) Available() bool {
	return s.State == Ready && s.Node != nil && s.Measured
}
