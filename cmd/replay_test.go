package cmd

import (
	"bytes"
	"testing"

	"nodegrid/core/index"
	"nodegrid/feature/replay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestReplayCommand(t *testing.T) {
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs([]string{"replay", "../testdata/script.yaml"})
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetArgs(nil)
	})

	require.NoError(t, RootCmd.Execute())

	var reports []replay.Report
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &reports))
	require.Len(t, reports, 3)
	assert.Equal(t, index.Shape{7, 4}, reports[0].Shape)
	assert.Equal(t, index.Shape{6, 5}, reports[1].Shape)
	assert.Equal(t, index.Shape{1, 5, 6}, reports[2].Shape)
}

func TestReplayCommandRequiresScript(t *testing.T) {
	RootCmd.SetArgs([]string{"replay"})
	t.Cleanup(func() { RootCmd.SetArgs(nil) })

	assert.Error(t, RootCmd.Execute())
}
