package gridapi

import (
	"sync/atomic"

	"nodegrid/core/batchfetch"

	"go.uber.org/zap"
)

// Delegate allows batch fetching and leaves each fetch outstanding for a client
// to complete.
type Delegate struct {
	logger  *zap.Logger
	enabled atomic.Bool
}

// NewDelegate creates a delegate with batch fetching enabled.
func NewDelegate(logger *zap.Logger) *Delegate {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Delegate{logger: logger}
	d.enabled.Store(true)
	return d
}

// SetEnabled turns batch fetching on or off.
func (d *Delegate) SetEnabled(on bool) {
	d.enabled.Store(on)
}

func (d *Delegate) ShouldBatchFetch() bool {
	return d.enabled.Load()
}

func (d *Delegate) BeginBatchFetching(*batchfetch.Context) {
	d.logger.Info("Batch fetch requested, waiting for a client to complete it")
}
