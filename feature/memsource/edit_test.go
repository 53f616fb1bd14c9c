package memsource

import (
	"context"
	"testing"

	"nodegrid/core/index"
	"nodegrid/core/update"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func bodies(src *Source, section int) []string {
	src.mu.Lock()
	defer src.mu.Unlock()
	var out []string
	for _, it := range src.sections[section] {
		out = append(out, it.Body)
	}
	return out
}

func TestApplyMultiIndexEdits(t *testing.T) {
	src := New(0, []Item{{Body: "a"}, {Body: "b"}, {Body: "c"}, {Body: "d"}})

	err := src.Mutate(context.Background(), nil, func(e *Editor) error {
		require.NoError(t, e.Apply(Edit{Doc: update.NewDeleteItems(index.New(0, 3), index.New(0, 1)).Doc()}))
		require.NoError(t, e.Apply(Edit{
			Doc:    update.NewInsertItems(index.New(0, 0), index.New(0, 3)).Doc(),
			Bodies: []string{"x", "y"},
		}))
		require.NoError(t, e.Apply(Edit{Doc: update.NewReloadItems(index.New(0, 1)).Doc(), Bodies: []string{"A"}}))
		assert.Len(t, e.Commands(), 3)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "A", "c", "y"}, bodies(src, 0))
}

func TestApplySections(t *testing.T) {
	src := Generate(3, 1, 0)

	err := src.Mutate(context.Background(), nil, func(e *Editor) error {
		require.NoError(t, e.Apply(Edit{Doc: update.NewDeleteSections(index.Sections(0, 2)).Doc()}))
		require.NoError(t, e.Apply(Edit{Doc: update.NewInsertSections(index.Sections(0, 2)).Doc(), Bodies: []string{"first"}}))
		require.NoError(t, e.Apply(Edit{Doc: update.NewMoveSection(0, 1).Doc()}))
		require.NoError(t, e.Apply(Edit{Doc: update.NewReloadAll().Doc()}))
		assert.Len(t, e.Commands(), 4)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, index.Shape{1, 1, 0}, src.Shape())
	assert.Equal(t, []string{"first"}, bodies(src, 1))
}

func TestApplyRejectsWithoutEditing(t *testing.T) {
	src := Generate(1, 2, 0)

	_ = src.Mutate(context.Background(), nil, func(e *Editor) error {
		assert.ErrorIs(t, e.Apply(Edit{Doc: update.NewInsertItems(index.New(0, 0), index.New(0, 4)).Doc()}), index.ErrOutOfRange)
		assert.ErrorIs(t, e.Apply(Edit{Doc: update.NewDeleteItems(index.New(0, 1), index.New(0, 2)).Doc()}), index.ErrOutOfRange)
		assert.ErrorIs(t, e.Apply(Edit{Doc: update.NewInsertSections(index.Sections(3)).Doc()}), index.ErrOutOfRange)
		assert.Error(t, e.Apply(Edit{Doc: update.Doc{Op: "explode"}}))
		assert.Empty(t, e.Commands())
		return nil
	})
	assert.Equal(t, index.Shape{2}, src.Shape())
}

func TestEditYAML(t *testing.T) {
	var ed Edit
	require.NoError(t, yaml.Unmarshal([]byte("op: insertItems\nitems: [{section: 0, item: 1}]\nbodies: [hello]\n"), &ed))
	assert.Equal(t, "insertItems", ed.Op)
	assert.Equal(t, []index.Index{index.New(0, 1)}, ed.Items)
	assert.Equal(t, []string{"hello"}, ed.Bodies)
}
