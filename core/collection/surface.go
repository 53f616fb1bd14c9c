package collection

import (
	"nodegrid/core/index"
	"nodegrid/core/node"
	"nodegrid/core/update"
)

// Surface is the host's visual surface. Every call arrives on the view's apply
// goroutine, in order.
type Surface interface {
	// ReloadData replaces everything shown with shape. Nodes follow as they
	// become ready.
	ReloadData(shape index.Shape)
	// ApplyBatch applies a structural batch; b.Mapping translates old positions.
	ApplyBatch(b *update.Batch)
	// RefreshItem shows a node that became ready while visible.
	RefreshItem(idx index.Index, n node.Node, size node.Size)
}

// NopSurface ignores every call. It suits headless views.
type NopSurface struct{}

func (NopSurface) ReloadData(index.Shape)                        {}
func (NopSurface) ApplyBatch(*update.Batch)                      {}
func (NopSurface) RefreshItem(index.Index, node.Node, node.Size) {}
