package node_test

import (
	"context"
	"testing"

	"nodegrid/core/node"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_MeasureWraps(t *testing.T) {
	n := node.NewText("a", "one two three four", 9)

	size, err := n.Measure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(9), size.Width)
	assert.Greater(t, size.Height, float64(1))
	assert.NotEmpty(t, n.Rendered())
}

func TestText_PurgeAndLoad(t *testing.T) {
	n := node.NewText("a", "hello", 0)
	_, err := n.Measure(context.Background())
	require.NoError(t, err)

	n.Purge()
	assert.Empty(t, n.Rendered())

	require.NoError(t, n.Load(context.Background()))
	assert.Equal(t, "hello", n.Rendered())
}

func TestText_MeasureCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := node.NewText("a", "x", 0).Measure(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
