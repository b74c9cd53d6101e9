package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"camelize/internal/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Watch(t *testing.T) {
	dir := writeTree(t, map[string]string{"src/main.ts": "const first_value = 1;\n"})
	cfg := config.Default()
	cfg.Watch.Debounce = 50 * time.Millisecond
	cfg.Watch.MaxRunsPerMinute = 0
	svc := newService(t, dir, cfg, nil)

	reports := make(chan *Report, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Watch(ctx, []string{filepath.Join(dir, "src")}, WatchOptions{
			OnReport: func(r *Report, err error) {
				if err == nil {
					reports <- r
				}
			},
		})
	}()

	next := func() *Report {
		t.Helper()
		select {
		case r := <-reports:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a watch run")
			return nil
		}
	}

	initial := next()
	assert.Equal(t, 1, initial.Stats.Renamed)
	assert.Equal(t, "const firstValue = 1;\n", readFile(t, dir, "src/main.ts"))

	// Give the watcher time to register before the edit.
	time.Sleep(200 * time.Millisecond)
	added := filepath.Join(dir, "src", "added.ts")
	require.NoError(t, os.WriteFile(added, []byte("let second_value = 2;\n"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		var r *Report
		select {
		case r = <-reports:
		case <-deadline:
			t.Fatal("timed out waiting for the edit to be converted")
		}
		if r.Stats.Renamed > 0 {
			break
		}
	}
	assert.Equal(t, "let secondValue = 2;\n", readFile(t, dir, "src/added.ts"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchRoots(t *testing.T) {
	dir := writeTree(t, map[string]string{"src/a.ts": "", "src/b.ts": ""})
	got := watchRoots([]string{
		filepath.Join(dir, "src", "a.ts"),
		filepath.Join(dir, "src", "b.ts"),
		filepath.Join(dir, "src"),
	})
	assert.Equal(t, []string{filepath.Join(dir, "src")}, got)
}
