package memsource

import (
	"context"
	"errors"
	"testing"

	"nodegrid/core/index"
	"nodegrid/core/node"
	"nodegrid/core/update"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCommitter struct {
	mock.Mock
}

func (m *mockCommitter) Submit(cmd update.Command) error {
	return m.Called(cmd).Error(0)
}

func (m *mockCommitter) SubmitBatch(cmds ...update.Command) error {
	return m.Called(cmds).Error(0)
}

func (m *mockCommitter) Drain(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestGenerate(t *testing.T) {
	src := Generate(2, 3, 20)
	assert.Equal(t, index.Shape{3, 3}, src.Shape())

	it, ok := src.Item(index.New(1, 2))
	require.True(t, ok)
	assert.Equal(t, "s1-2", it.ID)

	src.LockDataSource()
	n := src.NodeForItem(index.New(1, 2))
	src.UnlockDataSource()
	text, ok := n.(*node.Text)
	require.True(t, ok)
	assert.Equal(t, "Section 1, row 2", text.Body)
}

func TestMutateSubmitsEachEdit(t *testing.T) {
	ctx := context.Background()
	src := Generate(1, 3, 0)
	c := new(mockCommitter)
	c.On("Submit", mock.Anything).Return(nil)
	c.On("Drain", ctx).Return(nil)

	err := src.Mutate(ctx, c, func(e *Editor) error {
		require.NoError(t, e.InsertItem(index.New(0, 0), Item{ID: "head"}))
		require.NoError(t, e.DeleteItem(index.New(0, 3)))
		return e.MoveItem(index.New(0, 0), index.New(0, 2))
	})
	require.NoError(t, err)

	assert.Equal(t, index.Shape{3}, src.Shape())
	last, _ := src.Item(index.New(0, 2))
	assert.Equal(t, "head", last.ID)

	c.AssertNumberOfCalls(t, "Submit", 3)
	c.AssertCalled(t, "Submit", update.NewInsertItems(index.New(0, 0)))
	c.AssertCalled(t, "Submit", update.NewDeleteItems(index.New(0, 3)))
	c.AssertCalled(t, "Submit", update.NewMoveItem(index.New(0, 0), index.New(0, 2)))
	c.AssertNumberOfCalls(t, "Drain", 1)
}

func TestMutateKeepsEditsBeforeFailure(t *testing.T) {
	ctx := context.Background()
	src := Generate(1, 2, 0)
	c := new(mockCommitter)
	c.On("Submit", mock.Anything).Return(nil)
	c.On("Drain", ctx).Return(nil)

	err := src.Mutate(ctx, c, func(e *Editor) error {
		require.NoError(t, e.DeleteItem(index.New(0, 0)))
		return e.DeleteItem(index.New(0, 5))
	})
	assert.ErrorIs(t, err, index.ErrOutOfRange)
	assert.Equal(t, index.Shape{1}, src.Shape())
	c.AssertNumberOfCalls(t, "Submit", 1)
}

func TestMutateReportsSubmitFailure(t *testing.T) {
	ctx := context.Background()
	src := Generate(1, 2, 0)
	c := new(mockCommitter)
	c.On("Submit", mock.Anything).Return(errors.New("closed"))

	err := src.Append(ctx, c, 0, Item{ID: "x"})
	assert.ErrorContains(t, err, "closed")
	c.AssertNotCalled(t, "Drain", mock.Anything)
}

func TestEditorSections(t *testing.T) {
	src := Generate(2, 1, 0)

	err := src.Mutate(context.Background(), nil, func(e *Editor) error {
		require.NoError(t, e.InsertSection(1, Item{ID: "mid"}))
		require.NoError(t, e.MoveSection(0, 2))
		require.NoError(t, e.ReplaceSection(0, Item{ID: "a"}, Item{ID: "b"}))
		require.NoError(t, e.DeleteSection(1))
		assert.Equal(t, []update.Command{
			update.NewInsertSections(index.Sections(1)),
			update.NewMoveSection(0, 2),
			update.NewReloadSections(index.Sections(0)),
			update.NewDeleteSections(index.Sections(1)),
		}, e.Commands())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, index.Shape{2, 1}, src.Shape())
}

func TestEditorRejectsOutOfRange(t *testing.T) {
	src := Generate(1, 2, 0)
	_ = src.Mutate(context.Background(), nil, func(e *Editor) error {
		assert.ErrorIs(t, e.InsertItem(index.New(0, 3), Item{}), index.ErrOutOfRange)
		assert.ErrorIs(t, e.InsertItem(index.New(1, 0), Item{}), index.ErrOutOfRange)
		assert.ErrorIs(t, e.ReplaceItem(index.New(0, 2), Item{}), index.ErrOutOfRange)
		assert.ErrorIs(t, e.MoveItem(index.New(0, 0), index.New(0, 2)), index.ErrOutOfRange)
		assert.ErrorIs(t, e.InsertSection(3), index.ErrOutOfRange)
		assert.Empty(t, e.Commands())
		return nil
	})
}

func TestResetSubmitsReload(t *testing.T) {
	ctx := context.Background()
	src := Generate(1, 2, 0)
	c := new(mockCommitter)
	c.On("Submit", update.NewReloadAll()).Return(nil)
	c.On("Drain", ctx).Return(nil)

	require.NoError(t, src.Reset(ctx, c, [][]Item{{{ID: "a"}}, {}}))
	assert.Equal(t, index.Shape{1, 0}, src.Shape())
	c.AssertExpectations(t)
}
