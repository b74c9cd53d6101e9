package app

import (
	"path/filepath"
	"testing"

	"camelize/internal/core/config"
	"camelize/internal/core/errors"
)

func TestDiscover(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"src/b.ts":              "",
		"src/a.tsx":             "",
		"src/index.d.ts":        "",
		"src/app.js":            "",
		"src/dist/out.ts":       "",
		"src/.git/hooks/pre.ts": "",
		"lib/c.ts":              "",
	})
	m, err := NewMatcher(config.Default(), dir)
	if err != nil {
		t.Fatal(err)
	}

	files, err := Discover([]string{filepath.Join(dir, "src"), filepath.Join(dir, "lib", "c.ts"), filepath.Join(dir, "src")}, m)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{
		filepath.Join(dir, "lib", "c.ts"),
		filepath.Join(dir, "src", "a.tsx"),
		filepath.Join(dir, "src", "b.ts"),
	}
	if len(files) != len(want) {
		t.Fatalf("expected %v, got %v", want, files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("file %d: expected %s, got %s", i, want[i], files[i])
		}
	}

	if _, err := Discover([]string{filepath.Join(dir, "src", "app.js")}, m); !errors.IsCode(err, errors.CodeNotSupported) {
		t.Errorf("expected NOT_SUPPORTED for a disabled extension, got %v", err)
	}
	if _, err := Discover([]string{filepath.Join(dir, "nope")}, m); !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestMatcher(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Exclude.Files = []string{"*.d.ts", "generated/*.ts"}
	cfg.Exclude.Readonly = []string{"vendor/**", "legacy.ts"}
	m, err := NewMatcher(cfg, dir)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		accept   bool
		readonly bool
	}{
		{"plain", "src/main.ts", true, false},
		{"tsx upper", "src/View.TSX", true, false},
		{"declaration", "src/types.d.ts", false, false},
		{"relative glob", "generated/api.ts", false, false},
		{"excluded dir", "src/node_modules/pkg/index.ts", false, false},
		{"unsupported", "src/main.py", false, false},
		{"readonly tree", "vendor/lib/util.ts", true, true},
		{"readonly base", "src/legacy.ts", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, filepath.FromSlash(tt.path))
			if got := m.Accept(path); got != tt.accept {
				t.Errorf("Accept: expected %v, got %v", tt.accept, got)
			}
			if got := m.Readonly(path); got != tt.readonly {
				t.Errorf("Readonly: expected %v, got %v", tt.readonly, got)
			}
		})
	}

	if !m.SkipDir(filepath.Join(dir, "node_modules")) || m.SkipDir(filepath.Join(dir, "src")) {
		t.Error("unexpected SkipDir result")
	}

	bad := config.Default()
	bad.Exclude.Readonly = []string{"[a"}
	if _, err := NewMatcher(bad, dir); !errors.IsCode(err, errors.CodeValidationError) {
		t.Errorf("expected VALIDATION_ERROR for a bad glob, got %v", err)
	}
}
