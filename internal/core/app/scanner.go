// # internal/core/app/scanner.go
package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"camelize/internal/core/config"
	"camelize/internal/core/errors"
	"camelize/internal/shared/util"

	"github.com/gobwas/glob"
)

// Matcher applies the configured extension and exclude rules. File globs match either the
// base name or the slash-separated path relative to root.
type Matcher struct {
	root       string
	extensions map[string]bool
	dirs       []glob.Glob
	files      []glob.Glob
	readonly   []glob.Glob
}

func NewMatcher(cfg *config.Config, root string) (*Matcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	m := &Matcher{root: absRoot, extensions: make(map[string]bool, len(cfg.Extensions))}
	for _, ext := range cfg.Extensions {
		m.extensions[strings.ToLower(ext)] = true
	}
	if m.dirs, err = compileGlobs("exclude dir", cfg.Exclude.Dirs); err != nil {
		return nil, err
	}
	if m.files, err = compileGlobs("exclude file", cfg.Exclude.Files); err != nil {
		return nil, err
	}
	if m.readonly, err = compileGlobs("readonly", cfg.Exclude.Readonly); err != nil {
		return nil, err
	}
	return m, nil
}

func compileGlobs(kind string, patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid %s pattern %q", kind, p))
		}
		out = append(out, g)
	}
	return out, nil
}

// SkipDir reports whether a directory's base name matches an exclude-dir glob.
func (m *Matcher) SkipDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range m.dirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// Supported reports whether the file has an enabled extension.
func (m *Matcher) Supported(path string) bool {
	return m.extensions[strings.ToLower(filepath.Ext(path))]
}

// Accept reports whether a discovered file is converted.
func (m *Matcher) Accept(path string) bool {
	return m.Supported(path) && !m.match(m.files, path) && !m.underSkippedDir(path)
}

// Readonly reports whether a loaded file must never be mutated.
func (m *Matcher) Readonly(path string) bool {
	return m.match(m.readonly, path)
}

func (m *Matcher) match(globs []glob.Glob, path string) bool {
	if len(globs) == 0 {
		return false
	}
	base := filepath.Base(path)
	rel := m.relative(path)
	for _, g := range globs {
		if g.Match(base) || (rel != "" && g.Match(rel)) {
			return true
		}
	}
	return false
}

func (m *Matcher) relative(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil || !util.HasPathPrefix(abs, m.root) {
		return util.NormalizePatternPath(path)
	}
	rel, err := filepath.Rel(m.root, abs)
	if err != nil {
		return util.NormalizePatternPath(path)
	}
	return util.NormalizePatternPath(rel)
}

// underSkippedDir catches files reported by the watcher from inside an excluded directory.
func (m *Matcher) underSkippedDir(path string) bool {
	rel := m.relative(path)
	if !util.ContainsPathSeparator(rel) {
		return false
	}
	parts := strings.Split(rel, "/")
	for _, dir := range parts[:len(parts)-1] {
		for _, g := range m.dirs {
			if g.Match(dir) {
				return true
			}
		}
	}
	return false
}

// Discover expands paths into the sorted, deduplicated list of files to load. Directories are
// walked with the exclude rules; explicit files only need an enabled extension.
func Discover(paths []string, m *Matcher) ([]string, error) {
	seen := make(map[string]struct{})
	for _, root := range paths {
		root = filepath.Clean(root)
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "path not found"), errors.CtxPath, root)
			}
			return nil, err
		}
		if !info.IsDir() {
			if !m.Supported(root) {
				return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported file extension"), errors.CtxPath, root)
			}
			seen[root] = struct{}{}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && m.SkipDir(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || !m.Supported(path) || m.match(m.files, path) {
				return nil
			}
			seen[filepath.Clean(path)] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return util.SortedStringKeys(seen), nil
}

func sortedUnique(values []string) []string {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return util.SortedStringKeys(set)
}
