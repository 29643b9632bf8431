package commands

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/leapcheck/internal/cli/testutil"
	"github.com/leapstack-labs/leapcheck/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderRuns_Empty(t *testing.T) {
	cc, tr := newTestContext(t)

	require.NoError(t, renderRuns(cc, nil))
	assert.Contains(t, tr.Output(), "No runs recorded yet")

	jr := testutil.NewTestRendererJSON()
	cc.Renderer = jr.Renderer
	require.NoError(t, renderRuns(cc, nil))
	assert.Equal(t, "[]", jr.Output()[:2])
}

func TestRenderRuns_AfterValidate(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cc, tr := newTestContext(t)
	ctx := context.Background()

	_, err := validateOnce(ctx, cc, &ValidateOptions{Rules: p.Rules, Data: p.Data})
	require.Error(t, err)
	tr.Reset()

	store, err := cc.OpenStore()
	require.NoError(t, err)
	runs, err := store.ListRuns(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, runs, 1)

	require.NoError(t, renderRuns(cc, runs))
	out := tr.Output()
	assert.Contains(t, out, "# Validation runs (1)")
	assert.Contains(t, out, "| "+shortID(runs[0].ID)+" |")
	assert.Contains(t, out, "| failed |")
	testutil.AssertValidMarkdown(t, out)
}

func TestRenderRuns_JSON(t *testing.T) {
	cc, _ := newTestContext(t)
	tr := testutil.NewTestRendererJSON()
	cc.Renderer = tr.Renderer

	runs := []*state.Run{{
		ID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		RulesFile: "a.rules",
		DataFile:  "a.csv",
		Status:    state.RunStatusError,
		Error:     "failed to read data file",
	}}
	require.NoError(t, renderRuns(cc, runs))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "error", decoded[0]["status"])
}

func TestRenderRuns_ShowsErrors(t *testing.T) {
	cc, tr := newTestContext(t)

	runs := []*state.Run{{
		ID:     "0f8fad5b-d9cb-469f-a165-70867728950e",
		Status: state.RunStatusError,
		Error:  "failed to read data file",
	}}
	require.NoError(t, renderRuns(cc, runs))
	assert.Contains(t, tr.Output(), "0f8fad5b: failed to read data file")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0f8fad5b", shortID("0f8fad5b-d9cb-469f-a165-70867728950e"))
	assert.Equal(t, "abc", shortID("abc"))
}
