package resolver

import (
	"path/filepath"
	"strings"

	"camelize/internal/engine/syntax"
)

var moduleExtensions = []string{".ts", ".tsx", ".d.ts", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}

// emitted extensions map to the sources they are compiled from
var sourceExtensions = map[string][]string{
	".js":  {".ts", ".tsx"},
	".jsx": {".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

func moduleSpecifier(text string) string {
	return strings.Trim(text, "\"'`")
}

// ResolveModule maps a relative module specifier written in unit from to a loaded unit. Bare
// package specifiers never resolve.
func (r *Resolver) ResolveModule(from syntax.UnitID, specifier string) (syntax.UnitID, bool) {
	if !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") {
		return syntax.NoUnit, false
	}
	base := filepath.Join(filepath.Dir(r.prog.Unit(from).Path), filepath.FromSlash(specifier))
	for _, candidate := range moduleCandidates(base) {
		if u, ok := r.prog.UnitByPath(candidate); ok && u != from {
			return u, true
		}
	}
	return syntax.NoUnit, false
}

func moduleCandidates(base string) []string {
	out := []string{base}
	ext := filepath.Ext(base)
	if sources, ok := sourceExtensions[ext]; ok {
		trimmed := strings.TrimSuffix(base, ext)
		for _, s := range sources {
			out = append(out, trimmed+s)
		}
	}
	for _, e := range moduleExtensions {
		out = append(out, base+e)
	}
	for _, e := range moduleExtensions {
		out = append(out, filepath.Join(base, "index"+e))
	}
	return out
}
