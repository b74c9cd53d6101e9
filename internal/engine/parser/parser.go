// # internal/engine/parser/parser.go
package parser

import (
	"fmt"
	"time"

	"camelize/internal/core/errors"
	"camelize/internal/engine/syntax"
	"camelize/internal/shared/observability"

	"fortio.org/safecast"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Parser struct {
	loader *GrammarLoader
	pools  map[string]*ParserPool
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader: loader,
		pools:  make(map[string]*ParserPool),
	}
	for langID, lang := range loader.languages {
		p.pools[langID] = NewParserPool(lang)
	}
	return p
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.loader.LanguageFor(path) != ""
}

func (p *Parser) SupportedExtensions() []string {
	return p.loader.SupportedExtensions()
}

// Load parses content and adds it to prog as a new unit. Sources with syntax errors are
// rejected so a rename never runs over a recovered tree.
func (p *Parser) Load(prog *syntax.Program, path string, content []byte) (syntax.UnitID, error) {
	langID := p.loader.LanguageFor(path)
	if langID == "" {
		return syntax.NoUnit, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxPath, path)
	}
	pool := p.pools[langID]
	if pool == nil {
		return syntax.NoUnit, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", langID))
	}
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		return syntax.NoUnit, errors.Wrap(err, errors.CodeNotSupported, "source too large")
	}

	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(langID).Observe(time.Since(start).Seconds())
	}()

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return syntax.NoUnit, errors.New(errors.CodeInternal, "parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line, col := firstError(root)
		return syntax.NoUnit, &errors.DomainError{
			Code:    errors.CodeParse,
			Message: fmt.Sprintf("syntax error at %d:%d", line, col),
			Context: map[string]interface{}{errors.CtxPath: path, errors.CtxLanguage: langID},
		}
	}

	unit, err := prog.AddUnit(path, langID, content)
	if err != nil {
		return syntax.NoUnit, errors.Wrap(err, errors.CodeConflict, "add unit")
	}
	b := &builder{prog: prog, unit: unit, src: content}
	rootID := b.visit(root, syntax.NoNode, "")
	if b.err != nil {
		prog.RemoveUnit(unit)
		return syntax.NoUnit, errors.Wrap(b.err, errors.CodeInternal, "build syntax arena")
	}
	prog.SetRoot(unit, rootID)
	return unit, nil
}

// firstError returns the 1-based position of the first error or missing node.
func firstError(n *sitter.Node) (int, int) {
	if n.IsError() || n.IsMissing() {
		pos := n.StartPosition()
		return int(pos.Row) + 1, int(pos.Column) + 1
	}
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		return firstError(child)
	}
	pos := n.StartPosition()
	return int(pos.Row) + 1, int(pos.Column) + 1
}
