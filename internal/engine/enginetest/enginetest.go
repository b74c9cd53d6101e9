package enginetest

import (
	"sort"
	"testing"

	"camelize/internal/engine/parser"
	"camelize/internal/engine/syntax"
)

// Parser returns a parser with TypeScript, TSX and JavaScript enabled.
func Parser(t testing.TB) *parser.Parser {
	t.Helper()
	loader, err := parser.NewGrammarLoader([]string{".ts", ".tsx", ".js", ".jsx"})
	if err != nil {
		t.Fatalf("grammar loader: %v", err)
	}
	return parser.NewParser(loader)
}

// Load parses files (path -> source) into one program, in path order.
func Load(t testing.TB, files map[string]string) *syntax.Program {
	t.Helper()
	p := Parser(t)
	prog := syntax.NewProgram(0)
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if _, err := p.Load(prog, path, []byte(files[path])); err != nil {
			t.Fatalf("load %s: %v", path, err)
		}
	}
	return prog
}

// LoadOne parses a single source as src/main.ts and returns its unit.
func LoadOne(t testing.TB, src string) (*syntax.Program, syntax.UnitID) {
	t.Helper()
	prog := Load(t, map[string]string{"src/main.ts": src})
	u, _ := prog.UnitByPath("src/main.ts")
	return prog, u
}

// Find returns the nth (0-based) node of kind with the given text in the unit at path.
func Find(t testing.TB, prog *syntax.Program, path, text string, kind syntax.Kind, nth int) syntax.NodeID {
	t.Helper()
	u, ok := prog.UnitByPath(path)
	if !ok {
		t.Fatalf("no unit %s", path)
	}
	found := syntax.NoNode
	seen := 0
	prog.Walk(prog.Unit(u).Root, func(n syntax.NodeID) bool {
		if found.IsValid() {
			return false
		}
		if prog.Kind(n) == kind && prog.Text(n) == text {
			if seen == nth {
				found = n
				return false
			}
			seen++
		}
		return true
	})
	if !found.IsValid() {
		t.Fatalf("no %s %q #%d in %s", kind, text, nth, path)
	}
	return found
}

// Ident is Find for identifiers.
func Ident(t testing.TB, prog *syntax.Program, path, text string, nth int) syntax.NodeID {
	t.Helper()
	return Find(t, prog, path, text, syntax.KindIdentifier, nth)
}
