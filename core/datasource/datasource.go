package datasource

import (
	"nodegrid/core/index"
	"nodegrid/core/node"
)

// DataSource is the external collaborator that owns the content.
//
// NumberOfSections, NumberOfItems and NodeForItem are only called between a
// LockDataSource/UnlockDataSource pair. NodeForItem must be safe to call from any
// goroutine and should not reuse nodes: it is called at most once per index per
// structural generation.
type DataSource interface {
	NumberOfSections() int
	NumberOfItems(section int) int
	NodeForItem(idx index.Index) node.Node

	// LockDataSource is called before nodegrid starts reading. The application must
	// not mutate the data source until UnlockDataSource is called.
	LockDataSource()
	// UnlockDataSource ends a read scope started by LockDataSource.
	UnlockDataSource()
}
