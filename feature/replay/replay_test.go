package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"nodegrid/core/collection"
	"nodegrid/core/index"
	"nodegrid/feature/memsource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const script = `
sections: 2
items: 3
steps:
  - edits:
      - op: insertItems
        items: [{section: 0, item: 0}]
        bodies: [hello]
      - op: deleteItems
        items: [{section: 1, item: 2}]
  - edits:
      - op: moveSection
        from: {section: 0, item: 0}
        to: {section: 1, item: 0}
`

func syncConfig() collection.Config {
	cfg := collection.DefaultConfig()
	cfg.AsyncDataFetching = false
	return cfg
}

func TestRun(t *testing.T) {
	s, err := Parse([]byte(script))
	require.NoError(t, err)
	require.Len(t, s.Steps, 2)

	reports, err := Run(context.Background(), s, syncConfig(), nil)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	first := reports[0]
	assert.Equal(t, 0, first.Step)
	assert.Len(t, first.Commands, 2)
	assert.Equal(t, index.Shape{4, 2}, first.Shape)
	assert.Equal(t, []index.Index{index.New(0, 0)}, first.Inserted)
	assert.Equal(t, []index.Index{index.New(1, 2)}, first.Removed)
	assert.Equal(t, []Move{
		{From: index.New(0, 0), To: index.New(0, 1)},
		{From: index.New(0, 1), To: index.New(0, 2)},
		{From: index.New(0, 2), To: index.New(0, 3)},
	}, first.Moved)

	second := reports[1]
	assert.Equal(t, index.Shape{2, 4}, second.Shape)
	assert.Empty(t, second.Inserted)
	assert.Empty(t, second.Removed)
}

func TestRunStopsAtFailingStep(t *testing.T) {
	s := &Script{
		Content: [][]string{{"a", "b"}},
		Steps: []Step{
			{},
			{Edits: mustEdits(t, `[{op: deleteSections, sections: [4]}]`)},
		},
	}

	reports, err := Run(context.Background(), s, syncConfig(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1")
	assert.Empty(t, reports)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte("content: [[a, b], [c]]\nsteps: []\n"), 0o644))

	s, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, index.Shape{2, 1}, s.source(0).Shape())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("sections: -1"))
	assert.Error(t, err)
}

func mustEdits(t *testing.T, raw string) []memsource.Edit {
	t.Helper()
	var edits []memsource.Edit
	require.NoError(t, yaml.Unmarshal([]byte(raw), &edits))
	return edits
}
