package collection

import (
	"nodegrid/core/batchfetch"
	"nodegrid/core/index"
)

// DisplayObserver is implemented by delegates that track which items are shown.
type DisplayObserver interface {
	WillDisplay(idx index.Index)
	DidEndDisplaying(idx index.Index)
}

// A delegate may implement any of DisplayObserver, batchfetch.Gate and
// batchfetch.Fetcher. Unimplemented capabilities fall back to doing nothing,
// except the gate, which allows fetching.
var (
	_ DisplayObserver    = DelegateFuncs{}
	_ batchfetch.Gate    = DelegateFuncs{}
	_ batchfetch.Fetcher = DelegateFuncs{}
)

// DelegateFuncs adapts plain functions to the delegate capabilities. Nil fields
// are skipped; a nil BeginBatchFetchingFunc disables batch fetching.
type DelegateFuncs struct {
	WillDisplayFunc        func(idx index.Index)
	DidEndDisplayingFunc   func(idx index.Index)
	ShouldBatchFetchFunc   func() bool
	BeginBatchFetchingFunc func(bc *batchfetch.Context)
}

func (d DelegateFuncs) WillDisplay(idx index.Index) {
	if d.WillDisplayFunc != nil {
		d.WillDisplayFunc(idx)
	}
}

func (d DelegateFuncs) DidEndDisplaying(idx index.Index) {
	if d.DidEndDisplayingFunc != nil {
		d.DidEndDisplayingFunc(idx)
	}
}

func (d DelegateFuncs) ShouldBatchFetch() bool {
	if d.ShouldBatchFetchFunc != nil {
		return d.ShouldBatchFetchFunc()
	}
	return true
}

func (d DelegateFuncs) BeginBatchFetching(bc *batchfetch.Context) {
	if d.BeginBatchFetchingFunc != nil {
		d.BeginBatchFetchingFunc(bc)
	}
}

// fetcherOf returns d's fetch capability, if it has a usable one.
func fetcherOf(d any) batchfetch.Fetcher {
	switch f := d.(type) {
	case DelegateFuncs:
		if f.BeginBatchFetchingFunc == nil {
			return nil
		}
		return f
	case *DelegateFuncs:
		if f == nil || f.BeginBatchFetchingFunc == nil {
			return nil
		}
		return f
	case batchfetch.Fetcher:
		return f
	}
	return nil
}
