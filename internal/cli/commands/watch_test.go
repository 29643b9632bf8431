package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leapstack-labs/leapcheck/internal/cli/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchValidate_RerunsOnChange(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cc, out, errOut := newSyncContext(t)
	cc.Cfg.History = false
	cc.Cfg.WatchDebounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchValidate(ctx, cc, &ValidateOptions{Rules: p.Rules, Data: p.Data})
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(errOut.String(), "Watching for changes")
	}, 10*time.Second, 20*time.Millisecond)
	assert.Contains(t, out.String(), "FAILED: 3 rows")

	fixed := strings.Replace(testutil.PeopleCSV, "3,Cid,12", "3,Cid,22", 1)
	require.NoError(t, os.WriteFile(p.Data, []byte(fixed), 0o600))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "PASSED: 3 rows")
	}, 10*time.Second, 20*time.Millisecond)
	assert.Contains(t, errOut.String(), "Change detected: "+filepath.Base(p.Data))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchValidate_IgnoresOtherFiles(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cc, out, errOut := newSyncContext(t)
	cc.Cfg.History = false
	cc.Cfg.WatchDebounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- watchValidate(ctx, cc, &ValidateOptions{Rules: p.Rules, Data: p.Data})
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(errOut.String(), "Watching for changes")
	}, 10*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(p.Dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(200 * time.Millisecond)

	assert.NotContains(t, errOut.String(), "Change detected")
	assert.Equal(t, 1, strings.Count(out.String(), "FAILED: 3 rows"))

	cancel()
	require.NoError(t, <-done)
}

func TestWatchValidate_NothingToWatch(t *testing.T) {
	cc, _, _ := newSyncContext(t)
	missing := filepath.Join(t.TempDir(), "missing.rules")

	err := watchValidate(context.Background(), cc, &ValidateOptions{Rules: missing, Data: missing + ".csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to watch")
}
