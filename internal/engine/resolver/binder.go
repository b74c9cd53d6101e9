package resolver

import "camelize/internal/engine/syntax"

// unitIndex records, for one unit, which scope each declared name binds in.
type unitIndex struct {
	scopeOf  map[syntax.NodeID]syntax.NodeID
	bindings map[syntax.NodeID]map[string]syntax.NodeID
}

func isBlockScope(k syntax.Kind) bool {
	switch k {
	case syntax.KindProgram, syntax.KindBlock, syntax.KindForStatement, syntax.KindCatchClause:
		return true
	default:
		return false
	}
}

func isVarScope(k syntax.Kind) bool {
	return k == syntax.KindProgram || k.IsFunctionLike()
}

// nearest returns from itself or its closest ancestor matching match.
func nearest(p *syntax.Program, from syntax.NodeID, match func(syntax.Kind) bool) syntax.NodeID {
	for n := from; n.IsValid(); n = p.Parent(n) {
		if match(p.Kind(n)) {
			return n
		}
	}
	return syntax.NoNode
}

func buildIndex(p *syntax.Program, unit syntax.UnitID) *unitIndex {
	idx := &unitIndex{
		scopeOf:  make(map[syntax.NodeID]syntax.NodeID),
		bindings: make(map[syntax.NodeID]map[string]syntax.NodeID),
	}
	root := p.Unit(unit).Root

	p.Walk(root, func(n syntax.NodeID) bool {
		switch p.Kind(n) {
		case syntax.KindVariableDeclaration:
			parent := p.Parent(n)
			scope := nearest(p, parent, isBlockScope)
			if p.Kind(parent) == syntax.KindVariableStatement && p.VariableKeyword(parent) == "var" {
				scope = nearest(p, parent, isVarScope)
			}
			idx.bindAll(p, scope, p.BindingNames(p.ChildByField(n, syntax.FieldName)))
		case syntax.KindParameter:
			owner := p.Parent(n)
			if p.Kind(owner) == syntax.KindParameters {
				owner = p.Parent(owner)
			}
			// Parameters of signatures and function types bind nothing.
			if p.Kind(owner).IsFunctionLike() {
				idx.bindAll(p, owner, p.BindingNames(p.ChildByField(n, syntax.FieldName)))
			}
		case syntax.KindFunctionDeclaration, syntax.KindEnumDeclaration:
			idx.bindName(p, nearest(p, p.Parent(n), isBlockScope), n)
		case syntax.KindClassDeclaration:
			if p.Raw(n) != "class" {
				idx.bindName(p, nearest(p, p.Parent(n), isBlockScope), n)
			}
		case syntax.KindFunctionExpression:
			idx.bindName(p, n, n)
		case syntax.KindImportDeclaration:
			idx.bindAll(p, root, p.ImportBindings(n))
		}
		return true
	})
	return idx
}

func (idx *unitIndex) bindName(p *syntax.Program, scope, construct syntax.NodeID) {
	if name, _ := p.NameNode(construct); name.IsValid() {
		idx.bind(p, scope, name)
	}
}

func (idx *unitIndex) bindAll(p *syntax.Program, scope syntax.NodeID, names []syntax.NodeID) {
	for _, n := range names {
		idx.bind(p, scope, n)
	}
}

// bind keeps the first declaration of a name in a scope.
func (idx *unitIndex) bind(p *syntax.Program, scope, name syntax.NodeID) {
	if !scope.IsValid() {
		return
	}
	names, ok := idx.bindings[scope]
	if !ok {
		names = make(map[string]syntax.NodeID)
		idx.bindings[scope] = names
	}
	text := p.Text(name)
	if _, exists := names[text]; exists {
		return
	}
	names[text] = name
	idx.scopeOf[name] = scope
}

// resolve returns the declaration an identifier binds to, or NoNode for globals.
func (idx *unitIndex) resolve(p *syntax.Program, ref syntax.NodeID) syntax.NodeID {
	name := p.Text(ref)
	for n := ref; n.IsValid(); n = p.Parent(n) {
		if names, ok := idx.bindings[n]; ok {
			if decl, ok := names[name]; ok {
				return decl
			}
		}
	}
	return syntax.NoNode
}
