package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"camelize/internal/core/app"
	"camelize/internal/core/decision"
	"camelize/internal/data/history"
	"camelize/internal/engine/rename"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = "const user_name = 1;\nexport const total = user_name;\n"

// project writes a config and one source file, returning the config path.
func project(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.ts"), []byte(source), 0o644))
	cfgPath := filepath.Join(dir, "camelize.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("version = 1\npaths = [\"src\"]\n"+extra), 0o644))
	return cfgPath
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "camelize v1.0.0\n", out)
}

func TestConvertCmd(t *testing.T) {
	cfgPath := project(t, "")
	out, errOut, err := execute(t, "--config", cfgPath, "convert")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(filepath.Dir(cfgPath), "src", "a.ts"))
	require.NoError(t, err)
	assert.Equal(t, "const userName = 1;\nexport const total = userName;\n", string(data))

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, decision.DefaultPrefix+"timestamp,filename,identifier,status,reason,shorthandHandled", lines[0])
	assert.Contains(t, lines[1], `"user_name","success"`)
	assert.Contains(t, errOut, "renamed")
}

func TestConvertCmd_DryRunDiff(t *testing.T) {
	cfgPath := project(t, "")
	out, errOut, err := execute(t, "--config", cfgPath, "convert", "--dry-run", "--diff", "--decisions", "stderr")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(filepath.Dir(cfgPath), "src", "a.ts"))
	require.NoError(t, err)
	assert.Equal(t, source, string(data))

	assert.Contains(t, out, "-const user_name = 1;")
	assert.Contains(t, out, "+const userName = 1;")
	assert.NotContains(t, out, decision.DefaultPrefix)
	assert.Contains(t, errOut, decision.DefaultPrefix)
	assert.Contains(t, errOut, "not written")
}

func TestConvertCmd_MissingPath(t *testing.T) {
	cfgPath := project(t, "")
	_, _, err := execute(t, "--config", cfgPath, "convert", filepath.Join(t.TempDir(), "missing.ts"))
	assert.Error(t, err)
}

func TestHistoryCmd(t *testing.T) {
	cfgPath := project(t, "[history]\nenabled = true\n")
	_, _, err := execute(t, "--config", cfgPath, "convert")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(filepath.Dir(cfgPath), ".camelize", "history.db"))

	out, _, err := execute(t, "--config", cfgPath, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "1 files, 1 renamed, 0 skipped, 1 changed")

	store, err := history.Open(filepath.Join(filepath.Dir(cfgPath), ".camelize", "history.db"))
	require.NoError(t, err)
	runs, err := store.ListRuns(1)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, runs, 1)

	out, _, err = execute(t, "--config", cfgPath, "history", "--run", runs[0].ID)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"user_name","success"`)
}

func TestOpenDecisionSink(t *testing.T) {
	var stdout, stderr bytes.Buffer
	rec := decision.Success(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "a.ts", "user_name", false)

	for _, output := range []string{"", "stdout", "-"} {
		stdout.Reset()
		sink, closeFn, err := openDecisionSink(output, decision.DefaultPrefix, &stdout, &stderr)
		require.NoError(t, err)
		require.NoError(t, sink.Emit(rec))
		require.NoError(t, closeFn())
		assert.Contains(t, stdout.String(), `"user_name"`, output)
	}
	assert.Empty(t, stderr.String())

	path := filepath.Join(t.TempDir(), "logs", "decisions.csv")
	sink, closeFn, err := openDecisionSink(path, "LOG:", &stdout, &stderr)
	require.NoError(t, err)
	require.NoError(t, sink.Emit(rec))
	require.NoError(t, closeFn())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "LOG:timestamp"))
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	renderSummary(&buf, &app.Report{
		RunID:    "run-1",
		DryRun:   true,
		Loaded:   1200,
		Failed:   []app.FileError{{Path: "broken.ts", Err: errors.New("syntax error")}},
		Stats:    rename.Stats{Candidates: 5, Renamed: 2, Skipped: 3},
		Dirty:    []string{"a.ts"},
		Duration: 1500 * time.Millisecond,
		SkippedByReason: map[decision.Reason]int{
			decision.ReasonWouldShadow: 1,
			decision.ReasonShorthand:   2,
		},
	})
	out := buf.String()
	assert.Contains(t, out, "run-1 (dry run)")
	assert.Contains(t, out, "1,200 loaded")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, "1 file")
	assert.Contains(t, out, "broken.ts: syntax error")
	assert.Contains(t, out, "1.5s")
	assert.Less(t, strings.Index(out, string(decision.ReasonShorthand)), strings.Index(out, string(decision.ReasonWouldShadow)))
}

func TestRenderRuns(t *testing.T) {
	var buf bytes.Buffer
	renderRuns(&buf, nil, time.Now())
	assert.Contains(t, buf.String(), "no runs recorded")

	buf.Reset()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	renderRuns(&buf, []history.Run{{
		ID:         "abc",
		StartedAt:  now.Add(-2 * time.Hour),
		FinishedAt: now.Add(-2*time.Hour + time.Second),
		Files:      3,
		Renamed:    2,
	}}, now)
	assert.Contains(t, buf.String(), "abc")
	assert.Contains(t, buf.String(), "2 hours ago")
	assert.Contains(t, buf.String(), "3 files, 2 renamed")
}

func TestObservabilityServer_Health(t *testing.T) {
	status := newRunStatus()
	srv := NewObservabilityServer("127.0.0.1:0", status.Health)
	handler := srv.Handler()

	get := func() (int, HealthStatus) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		var body HealthStatus
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		return rec.Code, body
	}

	code, body := get()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pending", body.Components["last_run"])

	status.Record(&app.Report{RunID: "run-1"}, nil)
	_, body = get()
	assert.Equal(t, "run-1", body.Components["last_run"])

	status.Record(nil, errors.New("boom"))
	code, body = get()
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body.Status)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestObservabilityServer_StartStop(t *testing.T) {
	srv := NewObservabilityServer("127.0.0.1:0", newRunStatus().Health)
	require.NoError(t, srv.Start(t.Context()))
	assert.NotEqual(t, "127.0.0.1:0", srv.Addr())

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Stop(ctx))
}
