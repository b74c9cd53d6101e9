package rename

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"camelize/internal/core/decision"
	"camelize/internal/engine/enginetest"
	"camelize/internal/engine/syntax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

type run struct {
	prog    *syntax.Program
	dirty   *DirtySet
	records []decision.Record
	stats   Stats
}

// convertAll loads files and converts every unit in path order with one engine.
func convertAll(t *testing.T, files map[string]string, exclude func(string) bool) run {
	t.Helper()
	prog := enginetest.Load(t, files)
	var sink decision.Collector
	engine := NewEngine(prog, Options{Sink: &sink, Now: fixedNow})
	dirty := NewDirtySet()

	var total Stats
	for _, u := range prog.Units() {
		stats, err := engine.Convert(u, exclude, dirty)
		require.NoError(t, err)
		total.Add(stats)
	}
	return run{prog: prog, dirty: dirty, records: sink.Records(), stats: total}
}

func (r run) text(t *testing.T, path string) string {
	t.Helper()
	u, ok := r.prog.UnitByPath(path)
	require.True(t, ok, "unit %s", path)
	return string(r.prog.Serialize(u))
}

func (r run) record(t *testing.T, identifier string) decision.Record {
	t.Helper()
	for _, rec := range r.records {
		if rec.Identifier == identifier {
			return rec
		}
	}
	t.Fatalf("no decision for %s", identifier)
	return decision.Record{}
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		want       string
		identifier string
		status     decision.Status
		reason     decision.Reason
		shorthand  bool
	}{
		{
			name:       "no shadow",
			src:        "const user_name = 1; function test(){ const email_address = 2; }",
			want:       "const userName = 1; function test(){ const emailAddress = 2; }",
			identifier: "user_name",
			status:     decision.StatusSuccess,
		},
		{
			name:       "would shadow",
			src:        "const userName = 1; function test(){ const user_name = 2; }",
			want:       "const userName = 1; function test(){ const user_name = 2; }",
			identifier: "user_name",
			status:     decision.StatusSkip,
			reason:     decision.ReasonWouldShadow,
		},
		{
			name:       "would be shadowed",
			src:        "function test(){ const userName = 1; } const user_name = 2;",
			want:       "function test(){ const userName = 1; } const user_name = 2;",
			identifier: "user_name",
			status:     decision.StatusSkip,
			reason:     decision.ReasonWouldBeShadowed,
		},
		{
			name:       "shorthand destructuring",
			src:        "const { user_name } = obj;",
			want:       "const { user_name } = obj;",
			identifier: "user_name",
			status:     decision.StatusSkip,
			reason:     decision.ReasonShorthand,
		},
		{
			name:       "explicit destructuring",
			src:        "const { user_name: email_address } = obj;",
			want:       "const { user_name: emailAddress } = obj;",
			identifier: "email_address",
			status:     decision.StatusSuccess,
		},
		{
			name:       "interface property untouched",
			src:        "interface T { user_name: string } const user_name = 1;",
			want:       "interface T { user_name: string } const userName = 1;",
			identifier: "user_name",
			status:     decision.StatusSuccess,
		},
		{
			name:       "reference reaches interface property",
			src:        "interface T { user_name: string } const user_name = 'a'; const t: T = { user_name };",
			want:       "interface T { user_name: string } const user_name = 'a'; const t: T = { user_name };",
			identifier: "user_name",
			status:     decision.StatusSkip,
			reason:     decision.ReasonTypeProperty,
		},
		{
			name:       "object literal shorthand",
			src:        "const user_name = 1; const o = { user_name };",
			want:       "const userName = 1; const o = { user_name: userName };",
			identifier: "user_name",
			status:     decision.StatusSuccess,
			shorthand:  true,
		},
		{
			name:       "assignment pattern shorthand",
			src:        "let page_size = 1;\n({ page_size } = { page_size: 2 });\n",
			want:       "let pageSize = 1;\n({ page_size: pageSize } = { page_size: 2 });\n",
			identifier: "page_size",
			status:     decision.StatusSuccess,
			shorthand:  true,
		},
		{
			name:       "arrow parameter checked against unit",
			src:        "function a(){ const userName = 1; } const f = (user_name) => user_name;",
			want:       "function a(){ const userName = 1; } const f = (user_name) => user_name;",
			identifier: "user_name",
			status:     decision.StatusSkip,
			reason:     decision.ReasonWouldBeShadowed,
		},
		{
			name:       "parameter",
			src:        "function f(max_items: number) { return max_items; }",
			want:       "function f(maxItems: number) { return maxItems; }",
			identifier: "max_items",
			status:     decision.StatusSuccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := convertAll(t, map[string]string{"src/main.ts": tt.src}, nil)
			assert.Equal(t, tt.want, r.text(t, "src/main.ts"))

			rec := r.record(t, tt.identifier)
			assert.Equal(t, tt.status, rec.Status)
			assert.Equal(t, tt.reason, rec.Reason)
			assert.Equal(t, tt.shorthand, rec.ShorthandHandled)
			assert.Equal(t, "src/main.ts", rec.File)

			if tt.status == decision.StatusSuccess {
				assert.True(t, r.dirty.Has("src/main.ts"))
			} else if len(r.records) == 1 {
				assert.Zero(t, r.dirty.Len())
			}
		})
	}
}

func TestSilentNonCandidates(t *testing.T) {
	r := convertAll(t, map[string]string{
		"src/main.ts": "function load_user() {}\nclass user_store {}\nconst o = { first_name: 1 };\nconsole.log(o.first_name, load_user);\n",
	}, nil)
	assert.Empty(t, r.records)
	assert.Zero(t, r.stats.Candidates)
	assert.Zero(t, r.dirty.Len())
}

func fixture(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestFixtures(t *testing.T) {
	for _, name := range []string{"user.ts", "utils.ts", "classes.ts", "functions.ts", "variables.ts", "destructuring.ts", "shadowing.ts"} {
		t.Run(name, func(t *testing.T) {
			r := convertAll(t, map[string]string{name: fixture(t, "from", name)}, nil)
			assert.Equal(t, fixture(t, "to", name), r.text(t, name))
			assert.True(t, r.dirty.Has(name))

			for _, rec := range r.records {
				assert.NotEmpty(t, rec.File)
				if rec.Status == decision.StatusSuccess {
					assert.Empty(t, rec.Reason)
				} else {
					assert.NotEmpty(t, rec.Reason)
				}
			}
			assert.Equal(t, r.stats.Candidates, len(r.records))
			assert.Equal(t, r.stats.Renamed+r.stats.Skipped, r.stats.Candidates)
		})
	}
}

func TestFixture_UserAndUtilsTogether(t *testing.T) {
	r := convertAll(t, map[string]string{
		"user.ts":  fixture(t, "from", "user.ts"),
		"utils.ts": fixture(t, "from", "utils.ts"),
	}, nil)
	assert.Equal(t, fixture(t, "to", "user.ts"), r.text(t, "user.ts"))
	assert.Equal(t, fixture(t, "to", "utils.ts"), r.text(t, "utils.ts"))
	assert.Equal(t, []string{"user.ts", "utils.ts"}, r.dirty.Paths())
}

func TestFixture_Decisions(t *testing.T) {
	r := convertAll(t, map[string]string{"classes.ts": fixture(t, "from", "classes.ts")}, nil)

	byName := make(map[string][]decision.Record)
	for _, rec := range r.records {
		byName[rec.Identifier] = append(byName[rec.Identifier], rec)
	}
	require.Len(t, byName["create_user"], 1)
	assert.Equal(t, decision.ReasonWouldShadow, byName["create_user"][0].Reason)
	require.Len(t, byName["user_data"], 2)
	assert.Equal(t, decision.StatusSuccess, byName["user_data"][0].Status)
	assert.Equal(t, decision.ReasonWouldBeShadowed, byName["user_data"][1].Reason)
	require.Len(t, byName["get_user_count"], 1)
	assert.Equal(t, decision.StatusSuccess, byName["get_user_count"][0].Status)
}

func TestIdempotent(t *testing.T) {
	for _, name := range []string{"user.ts", "destructuring.ts", "shadowing.ts"} {
		t.Run(name, func(t *testing.T) {
			first := convertAll(t, map[string]string{name: fixture(t, "from", name)}, nil)
			once := first.text(t, name)

			second := convertAll(t, map[string]string{name: once}, nil)
			assert.Equal(t, once, second.text(t, name))
			assert.Zero(t, second.stats.Renamed)
			assert.Zero(t, second.dirty.Len())
		})
	}
}

func TestCrossFileRename(t *testing.T) {
	files := map[string]string{
		"src/a.ts": "export const page_size = 10;\n",
		"src/b.ts": "import { page_size } from './a';\nexport const total = page_size * 2;\n",
	}

	t.Run("renames importers", func(t *testing.T) {
		r := convertAll(t, files, nil)
		assert.Equal(t, "export const pageSize = 10;\n", r.text(t, "src/a.ts"))
		assert.Equal(t, "import { pageSize } from './a';\nexport const total = pageSize * 2;\n", r.text(t, "src/b.ts"))
		assert.Equal(t, []string{"src/a.ts", "src/b.ts"}, r.dirty.Paths())
		require.Len(t, r.records, 1)
		assert.Equal(t, "src/a.ts", r.records[0].File)
	})

	t.Run("excluded importer blocks rename", func(t *testing.T) {
		r := convertAll(t, files, func(path string) bool { return path == "src/b.ts" })
		assert.Equal(t, files["src/a.ts"], r.text(t, "src/a.ts"))
		assert.Equal(t, files["src/b.ts"], r.text(t, "src/b.ts"))
		assert.Zero(t, r.dirty.Len())
		require.Len(t, r.records, 1)
		assert.Equal(t, decision.ReasonExcludedFile, r.records[0].Reason)
	})

	t.Run("excluded unit is silent", func(t *testing.T) {
		r := convertAll(t, files, func(path string) bool { return path == "src/a.ts" })
		assert.Empty(t, r.records)
		assert.Zero(t, r.dirty.Len())
	})
}

func TestCSVLog(t *testing.T) {
	prog := enginetest.Load(t, map[string]string{
		"src/main.ts": "const { user_name } = obj;\nconst user_id = 1;\nconst o = { user_id };\n",
	})
	var buf bytes.Buffer
	engine := NewEngine(prog, Options{Sink: decision.NewCSVSink(&buf, decision.DefaultPrefix), Now: fixedNow})
	u, _ := prog.UnitByPath("src/main.ts")

	_, err := engine.Convert(u, nil, NewDirtySet())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, []string{
		"SNAKE_TO_CAMEL_CSV:timestamp,filename,identifier,status,reason,shorthandHandled",
		`SNAKE_TO_CAMEL_CSV:"2024-01-02T03:04:05.000Z","src/main.ts","user_name","skip","shorthand destructuring",""`,
		`SNAKE_TO_CAMEL_CSV:"2024-01-02T03:04:05.000Z","src/main.ts","user_id","success","","true"`,
	}, lines)
}

func TestConvert_UnknownUnit(t *testing.T) {
	prog := syntax.NewProgram(0)
	engine := NewEngine(prog, Options{})
	_, err := engine.Convert(syntax.UnitID(7), nil, NewDirtySet())
	assert.Error(t, err)
}
