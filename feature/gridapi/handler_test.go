package gridapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"nodegrid/core/collection"
	"nodegrid/core/index"
	"nodegrid/core/update"
	"nodegrid/feature/gridapi"
	"nodegrid/feature/memsource"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T, editable bool) (*fiber.App, *collection.View) {
	t.Helper()
	cfg := collection.DefaultConfig()
	cfg.AsyncDataFetching = false
	cfg.EstimatedItemExtent = 1

	src := memsource.Generate(1, 40, 40)
	view, err := collection.New(context.Background(), src, nil, cfg,
		collection.WithDelegate(gridapi.NewDelegate(zap.NewNop())))
	require.NoError(t, err)
	t.Cleanup(func() { _ = view.Close() })

	var source gridapi.Editable
	if editable {
		source = src
	}
	app := fiber.New()
	feature := gridapi.NewFeature(view, source, zap.NewNop())
	assert.Equal(t, "grid", feature.Name())
	assert.True(t, feature.IsEnabled())
	require.NoError(t, feature.Load(app))
	return app, view
}

func send(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestHandleViewportAndVisible(t *testing.T) {
	app, _ := setup(t, false)

	status, body := send(t, app, http.MethodPost, "/grid/viewport", gridapi.ViewportRequest{Offset: 0, Extent: 10})
	require.Equal(t, http.StatusOK, status)
	var report gridapi.ViewportReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Len(t, report.Preload, 30)
	assert.Empty(t, report.Evict)
	assert.Len(t, report.Visible, 10)

	status, body = send(t, app, http.MethodGet, "/grid/visible", nil)
	require.Equal(t, http.StatusOK, status)
	var visible []gridapi.NodeReport
	require.NoError(t, json.Unmarshal(body, &visible))
	require.Len(t, visible, 10)
	assert.Equal(t, "s0-3", visible[3].ID)
	assert.Equal(t, "Section 0, row 3", visible[3].Content)

	status, _ = send(t, app, http.MethodPost, "/grid/viewport", gridapi.ViewportRequest{Offset: -1})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandleNode(t *testing.T) {
	app, _ := setup(t, false)
	send(t, app, http.MethodPost, "/grid/viewport", gridapi.ViewportRequest{Extent: 10})

	tests := []struct {
		name   string
		path   string
		status int
		state  string
	}{
		{"ready", "/grid/nodes/0/5", http.StatusOK, "ready"},
		{"outside working range", "/grid/nodes/0/35", http.StatusOK, "empty"},
		{"out of range", "/grid/nodes/0/40", http.StatusNotFound, ""},
		{"unknown section", "/grid/nodes/3/0", http.StatusNotFound, ""},
		{"not a number", "/grid/nodes/x/0", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := send(t, app, http.MethodGet, tt.path, nil)
			require.Equal(t, tt.status, status)
			if tt.state == "" {
				return
			}
			var report gridapi.NodeReport
			require.NoError(t, json.Unmarshal(body, &report))
			assert.Equal(t, tt.state, report.State)
		})
	}
}

func TestHandleCommands(t *testing.T) {
	app, view := setup(t, true)

	req := gridapi.CommandsRequest{Edits: []memsource.Edit{
		{Doc: docOf(t, `{"op":"insertItems","items":[{"section":0,"item":0}]}`), Bodies: []string{"head"}},
		{Doc: docOf(t, `{"op":"insertSections","sections":[1]}`)},
	}}
	status, body := send(t, app, http.MethodPost, "/grid/commands", req)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, index.Shape{41, 0}, view.Shape())

	send(t, app, http.MethodPost, "/grid/viewport", gridapi.ViewportRequest{Extent: 10})
	status, body = send(t, app, http.MethodGet, "/grid/nodes/0/0", nil)
	require.Equal(t, http.StatusOK, status)
	var report gridapi.NodeReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, "head", report.Content)
}

func TestHandleCommandsRejects(t *testing.T) {
	app, view := setup(t, true)

	bad := gridapi.CommandsRequest{Edits: []memsource.Edit{
		{Doc: docOf(t, `{"op":"deleteItems","items":[{"section":0,"item":99}]}`)},
	}}
	status, _ := send(t, app, http.MethodPost, "/grid/commands", bad)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, index.Shape{40}, view.Shape())

	readOnly, _ := setup(t, false)
	status, _ = send(t, readOnly, http.MethodPost, "/grid/commands", gridapi.CommandsRequest{})
	assert.Equal(t, http.StatusNotImplemented, status)
}

func TestHandleBatchComplete(t *testing.T) {
	app, view := setup(t, true)

	status, _ := send(t, app, http.MethodPost, "/grid/batch/complete", gridapi.BatchCompleteRequest{Success: true})
	assert.Equal(t, http.StatusConflict, status)

	send(t, app, http.MethodPost, "/grid/viewport", gridapi.ViewportRequest{Extent: 10})
	send(t, app, http.MethodPost, "/grid/viewport", gridapi.ViewportRequest{Offset: 25})
	require.NoError(t, view.Flush(context.Background()))
	assert.True(t, view.BatchContext().IsFetching())

	status, body := send(t, app, http.MethodGet, "/grid/state", nil)
	require.Equal(t, http.StatusOK, status)
	var state gridapi.StateReport
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, "fetching", state.Batch.State)
	assert.Equal(t, "forward", state.Direction)
	assert.InDelta(t, 10, state.Extent, 0.001)

	status, body = send(t, app, http.MethodPost, "/grid/batch/complete", gridapi.BatchCompleteRequest{Success: true})
	require.Equal(t, http.StatusOK, status)
	var batch gridapi.BatchReport
	require.NoError(t, json.Unmarshal(body, &batch))
	assert.Equal(t, "idle", batch.State)
	assert.Equal(t, 1, batch.Completed)
	assert.True(t, batch.LastSucceeded)
}

func TestDelegateGate(t *testing.T) {
	d := gridapi.NewDelegate(nil)
	assert.True(t, d.ShouldBatchFetch())
	d.SetEnabled(false)
	assert.False(t, d.ShouldBatchFetch())
}

func docOf(t *testing.T, raw string) (d update.Doc) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	return d
}
