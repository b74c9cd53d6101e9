package parser

import (
	"fmt"
	"sort"
	"strings"

	"camelize/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

const (
	LangTypeScript = "typescript"
	LangTSX        = "tsx"
	LangJavaScript = "javascript"
)

// defaultExtensions maps every extension a grammar can handle to its language id.
var defaultExtensions = map[string]string{
	".ts":  LangTypeScript,
	".mts": LangTypeScript,
	".cts": LangTypeScript,
	".tsx": LangTSX,
	".js":  LangJavaScript,
	".jsx": LangJavaScript,
	".mjs": LangJavaScript,
	".cjs": LangJavaScript,
}

// GrammarLoader holds the tree-sitter languages for the enabled extensions.
type GrammarLoader struct {
	languages  map[string]*sitter.Language
	extensions map[string]string
}

// NewGrammarLoader enables the grammars needed for the given extensions. An empty list enables
// TypeScript and TSX.
func NewGrammarLoader(extensions []string) (*GrammarLoader, error) {
	if len(extensions) == 0 {
		extensions = []string{".ts", ".tsx"}
	}

	gl := &GrammarLoader{
		languages:  make(map[string]*sitter.Language),
		extensions: make(map[string]string),
	}

	for _, raw := range extensions {
		ext := strings.ToLower(strings.TrimSpace(raw))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		langID, ok := defaultExtensions[ext]
		if !ok {
			return nil, fmt.Errorf("extension %q has no grammar", raw)
		}
		gl.extensions[ext] = langID
	}

	for _, langID := range util.SortedStringKeys(invert(gl.extensions)) {
		switch langID {
		case LangTypeScript:
			gl.languages[LangTypeScript] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		case LangTSX:
			gl.languages[LangTSX] = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
		case LangJavaScript:
			gl.languages[LangJavaScript] = sitter.NewLanguage(tree_sitter_javascript.Language())
		default:
			return nil, fmt.Errorf("language %q is enabled but runtime grammar loading is not implemented", langID)
		}
	}

	return gl, nil
}

func invert(m map[string]string) map[string]struct{} {
	out := make(map[string]struct{}, len(m))
	for _, v := range m {
		out[v] = struct{}{}
	}
	return out
}

// Language returns the loaded grammar for a language id.
func (gl *GrammarLoader) Language(langID string) *sitter.Language {
	return gl.languages[langID]
}

// LanguageFor returns the language id for a path's extension, or "".
func (gl *GrammarLoader) LanguageFor(path string) string {
	ext := strings.ToLower(extOf(path))
	return gl.extensions[ext]
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	out := make([]string, 0, len(gl.extensions))
	for ext := range gl.extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// extOf handles compound extensions such as .d.ts by returning only the last segment.
func extOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 || strings.ContainsAny(path[idx:], `/\`) {
		return ""
	}
	return path[idx:]
}
