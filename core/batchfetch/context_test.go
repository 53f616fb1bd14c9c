package batchfetch

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockDelegate struct {
	mock.Mock
}

func (m *mockDelegate) ShouldBatchFetch() bool {
	return m.Called().Bool(0)
}

func (m *mockDelegate) BeginBatchFetching(bc *Context) {
	m.Called(bc)
}

type countingFetcher struct {
	calls atomic.Int32
}

func (c *countingFetcher) BeginBatchFetching(*Context) {
	c.calls.Add(1)
}

// nearEnd is 100 from the end of 1000 content with a 100 viewport.
var nearEnd = Position{Offset: 800, Extent: 100, Content: 1000, Forward: true}

func TestShouldFetch(t *testing.T) {
	tests := []struct {
		name    string
		pos     Position
		leading float64
		want    bool
	}{
		{"far from end", Position{Offset: 0, Extent: 100, Content: 1000, Forward: true}, 1, false},
		{"within one screen", Position{Offset: 850, Extent: 100, Content: 1000, Forward: true}, 1, true},
		{"exactly at threshold", Position{Offset: 800, Extent: 100, Content: 1000, Forward: true}, 1, true},
		{"just outside threshold", Position{Offset: 799, Extent: 100, Content: 1000, Forward: true}, 1, false},
		{"two screens", Position{Offset: 700, Extent: 100, Content: 1000, Forward: true}, 2, true},
		{"small content", Position{Offset: 0, Extent: 100, Content: 40, Forward: true}, 1, true},
		{"empty content", Position{Offset: 0, Extent: 100, Content: 0, Forward: true}, 1, true},
		{"backward", Position{Offset: 800, Extent: 100, Content: 1000}, 1, false},
		{"disabled", nearEnd, 0, false},
		{"no viewport", Position{Offset: 0, Extent: 0, Content: 0, Forward: true}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldFetch(tt.pos, tt.leading))
		})
	}
}

func TestContext_BeginsOnce(t *testing.T) {
	bc := New(DefaultLeadingScreens, nil)
	f := &countingFetcher{}

	assert.True(t, bc.Consider(nearEnd, nil, f))
	assert.Equal(t, Fetching, bc.State())

	assert.False(t, bc.Consider(nearEnd, nil, f))
	assert.False(t, bc.Consider(Position{Offset: 900, Extent: 100, Content: 1000, Forward: true}, nil, f))
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestContext_CompleteFalseDoesNotRefetchByItself(t *testing.T) {
	bc := New(DefaultLeadingScreens, nil)
	f := &countingFetcher{}

	bc.Consider(nearEnd, nil, f)
	assert.True(t, bc.Complete(false))
	assert.Equal(t, Idle, bc.State())
	assert.Equal(t, int32(1), f.calls.Load())

	began, completed, ok := bc.Stats()
	assert.Equal(t, 1, began)
	assert.Equal(t, 1, completed)
	assert.False(t, ok)
}

func TestContext_CompleteTrueThenCrossingFetchesOnce(t *testing.T) {
	bc := New(DefaultLeadingScreens, nil)
	f := &countingFetcher{}

	bc.Consider(nearEnd, nil, f)
	assert.True(t, bc.Complete(true))

	// Content grew; scrolling towards the new end crosses the threshold again.
	grown := Position{Offset: 1800, Extent: 100, Content: 2000, Forward: true}
	assert.True(t, bc.Consider(grown, nil, f))
	assert.False(t, bc.Consider(grown, nil, f))
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestContext_CompleteWhenIdle(t *testing.T) {
	bc := New(DefaultLeadingScreens, nil)
	assert.False(t, bc.Complete(true))
}

func TestContext_GateVeto(t *testing.T) {
	bc := New(DefaultLeadingScreens, nil)
	d := &mockDelegate{}
	d.On("ShouldBatchFetch").Return(false).Once()

	assert.False(t, bc.Consider(nearEnd, d, d))
	assert.Equal(t, Idle, bc.State())
	d.AssertNotCalled(t, "BeginBatchFetching", mock.Anything)

	d.On("ShouldBatchFetch").Return(true).Once()
	d.On("BeginBatchFetching", bc).Once()
	assert.True(t, bc.Consider(nearEnd, d, d))
	d.AssertExpectations(t)
}

func TestContext_NoFetcher(t *testing.T) {
	bc := New(DefaultLeadingScreens, nil)
	assert.False(t, bc.Consider(nearEnd, nil, nil))
	assert.Equal(t, Idle, bc.State())
}

func TestContext_ConcurrentTriggers(t *testing.T) {
	bc := New(DefaultLeadingScreens, nil)
	f := &countingFetcher{}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bc.Consider(nearEnd, nil, f)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
}

func TestContext_SetLeadingScreens(t *testing.T) {
	bc := New(DefaultLeadingScreens, nil)
	bc.SetLeadingScreens(0)
	assert.False(t, bc.Consider(nearEnd, nil, &countingFetcher{}))
	assert.Equal(t, float64(0), bc.LeadingScreens())
}
