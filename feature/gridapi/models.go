package gridapi

import (
	"nodegrid/core/index"
	"nodegrid/core/node"
	"nodegrid/feature/memsource"
)

// CommandsRequest is the body of POST /grid/commands. Edits apply one after
// another.
type CommandsRequest struct {
	Edits []memsource.Edit `json:"edits"`
}

// ViewportRequest is the body of POST /grid/viewport. A zero extent keeps the
// current one.
type ViewportRequest struct {
	Offset float64 `json:"offset"`
	Extent float64 `json:"extent"`
}

// BatchCompleteRequest is the body of POST /grid/batch/complete.
type BatchCompleteRequest struct {
	Success bool `json:"success"`
}

// NodeReport describes one slot.
type NodeReport struct {
	Index    index.Index `json:"index"`
	State    string      `json:"state"`
	Measured bool        `json:"measured"`
	Size     node.Size   `json:"size"`
	ID       string      `json:"id,omitempty"`
	Content  string      `json:"content,omitempty"`
}

// ViewportReport is the answer to a viewport change.
type ViewportReport struct {
	Preload []index.Index `json:"preload"`
	Evict   []index.Index `json:"evict"`
	Visible []index.Index `json:"visible"`
}

// BatchReport is the batch fetch state.
type BatchReport struct {
	State          string  `json:"state"`
	LeadingScreens float64 `json:"leadingScreens"`
	Began          int     `json:"began"`
	Completed      int     `json:"completed"`
	LastSucceeded  bool    `json:"lastSucceeded"`
}

// StateReport is the answer to GET /grid/state.
type StateReport struct {
	Shape         index.Shape `json:"shape"`
	Offset        float64     `json:"offset"`
	Extent        float64     `json:"extent"`
	Direction     string      `json:"direction"`
	ContentExtent float64     `json:"contentExtent"`
	WorkingRange  int         `json:"workingRange"`
	Batch         BatchReport `json:"batch"`
	Error         string      `json:"error,omitempty"`
}
