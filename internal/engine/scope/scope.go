package scope

import (
	"camelize/internal/core/errors"
	"camelize/internal/engine/syntax"
)

// Kind classifies syntax kinds as scopes.
type Kind uint8

const (
	KindNone Kind = iota
	KindBlock
	KindUnit
	KindClass
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindUnit:
		return "unit"
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	default:
		return "none"
	}
}

// Classify maps every syntax kind to its scope kind.
func Classify(k syntax.Kind) Kind {
	switch k {
	case syntax.KindBlock, syntax.KindForStatement, syntax.KindCatchClause:
		return KindBlock
	case syntax.KindProgram:
		return KindUnit
	case syntax.KindClassDeclaration:
		return KindClass
	case syntax.KindFunctionDeclaration, syntax.KindFunctionExpression, syntax.KindArrowFunction,
		syntax.KindMethod, syntax.KindConstructor:
		return KindFunction
	case syntax.KindInvalid, syntax.KindVariableStatement, syntax.KindVariableDeclaration,
		syntax.KindObjectBindingPattern, syntax.KindArrayBindingPattern, syntax.KindBindingElement,
		syntax.KindParameters, syntax.KindParameter, syntax.KindModifier, syntax.KindClassBody,
		syntax.KindPropertyDeclaration, syntax.KindMethodSignature, syntax.KindInterfaceDeclaration,
		syntax.KindTypeAliasDeclaration, syntax.KindTypeLiteral, syntax.KindPropertySignature,
		syntax.KindEnumDeclaration, syntax.KindImportDeclaration, syntax.KindImportClause,
		syntax.KindNamespaceImport, syntax.KindNamedImports, syntax.KindImportSpecifier,
		syntax.KindExportDeclaration, syntax.KindNamedExports, syntax.KindExportSpecifier,
		syntax.KindObjectLiteral, syntax.KindPropertyAssignment, syntax.KindShorthandProperty,
		syntax.KindPropertyAccess, syntax.KindReturnStatement, syntax.KindTypeAnnotation,
		syntax.KindAsExpression, syntax.KindIdentifier, syntax.KindPropertyName, syntax.KindTypeName,
		syntax.KindOther:
		return KindNone
	default:
		return KindNone
	}
}

// isAnchor reports the scopes a descendant-shadow search may start from. Methods, constructors,
// arrows and function expressions are not anchors; their parameters are checked against the
// whole enclosing body.
func isAnchor(k syntax.Kind) bool {
	switch Classify(k) {
	case KindBlock, KindUnit, KindClass:
		return true
	case KindFunction:
		return k == syntax.KindFunctionDeclaration
	default:
		return false
	}
}

type cacheKey struct {
	scope     syntax.NodeID
	instances bool
}

// Model computes enclosing scopes and direct declarations over one program. The memo of
// declared names is dropped whenever the program's version changes.
type Model struct {
	prog    *syntax.Program
	cache   map[cacheKey][]syntax.NodeID
	version uint64
}

func NewModel(prog *syntax.Program) *Model {
	return &Model{
		prog:    prog,
		cache:   make(map[cacheKey][]syntax.NodeID),
		version: prog.Version(),
	}
}

// EnclosingScopes returns the scopes containing node, nearest first, node itself included when
// it is a scope. The walk must end at a program root.
func (m *Model) EnclosingScopes(node syntax.NodeID) ([]syntax.NodeID, error) {
	var out []syntax.NodeID
	for n := node; n.IsValid(); n = m.prog.Parent(n) {
		k := m.prog.Kind(n)
		if Classify(k) == KindNone {
			continue
		}
		out = append(out, n)
		if k == syntax.KindProgram {
			return out, nil
		}
	}
	return nil, errors.Newf(errors.CodeInvariant, "node %d has no enclosing program", node)
}

// DirectDeclaredNames returns the names scope declares without passing through a nested scope.
func (m *Model) DirectDeclaredNames(scope, querying syntax.NodeID) []string {
	nodes := m.DirectDeclaredNameNodes(scope, querying)
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, m.prog.Text(n))
	}
	return out
}

// DirectDeclaredNameNodes is DirectDeclaredNames returning the declaring name nodes.
func (m *Model) DirectDeclaredNameNodes(scope, querying syntax.NodeID) []syntax.NodeID {
	if m.version != m.prog.Version() {
		m.cache = make(map[cacheKey][]syntax.NodeID)
		m.version = m.prog.Version()
	}
	key := cacheKey{scope: scope}
	if Classify(m.prog.Kind(scope)) == KindClass {
		key.instances = m.IsConstructorParameterProperty(querying)
	}
	if cached, ok := m.cache[key]; ok {
		return cached
	}
	names := m.collect(scope, key.instances)
	m.cache[key] = names
	return names
}

func (m *Model) collect(scope syntax.NodeID, instances bool) []syntax.NodeID {
	p := m.prog
	kind := p.Kind(scope)
	switch Classify(kind) {
	case KindBlock, KindUnit:
		var out []syntax.NodeID
		for _, stmt := range p.Statements(scope) {
			out = append(out, m.statementNames(stmt, kind == syntax.KindProgram)...)
		}
		return out
	case KindClass:
		return m.classNames(scope, instances)
	case KindFunction:
		var out []syntax.NodeID
		for _, param := range p.Parameters(scope) {
			out = append(out, p.BindingNames(p.ChildByField(param, syntax.FieldName))...)
		}
		return out
	default:
		return nil
	}
}

func (m *Model) statementNames(stmt syntax.NodeID, unit bool) []syntax.NodeID {
	p := m.prog
	switch p.Kind(stmt) {
	case syntax.KindVariableStatement:
		var out []syntax.NodeID
		for _, decl := range p.ChildrenOfKind(stmt, syntax.KindVariableDeclaration) {
			out = append(out, p.BindingNames(p.ChildByField(decl, syntax.FieldName))...)
		}
		return out
	case syntax.KindVariableDeclaration:
		// for-of heads and catch parameters
		return p.BindingNames(p.ChildByField(stmt, syntax.FieldName))
	case syntax.KindImportDeclaration:
		if unit {
			return p.ImportBindings(stmt)
		}
		return nil
	case syntax.KindFunctionDeclaration, syntax.KindClassDeclaration, syntax.KindInterfaceDeclaration,
		syntax.KindTypeAliasDeclaration, syntax.KindEnumDeclaration:
		if name, _ := p.NameNode(stmt); name.IsValid() {
			return []syntax.NodeID{name}
		}
		return nil
	default:
		return nil
	}
}

func (m *Model) classNames(class syntax.NodeID, instances bool) []syntax.NodeID {
	p := m.prog
	body := p.ChildByField(class, syntax.FieldBody)
	var out []syntax.NodeID
	for _, member := range p.Children(body) {
		switch p.Kind(member) {
		case syntax.KindPropertyDeclaration, syntax.KindMethod, syntax.KindMethodSignature:
			if !instances && !p.IsStatic(member) {
				continue
			}
			if name, _ := p.NameNode(member); name.IsValid() {
				out = append(out, name)
			}
		case syntax.KindConstructor:
			if !instances {
				continue
			}
			for _, param := range p.Parameters(member) {
				if isPropertyParameter(p, param) {
					out = append(out, p.BindingNames(p.ChildByField(param, syntax.FieldName))...)
				}
			}
		}
	}
	return out
}

// IsConstructorParameterProperty reports whether node is, or sits inside, a constructor
// parameter that also declares an instance property.
func (m *Model) IsConstructorParameterProperty(node syntax.NodeID) bool {
	p := m.prog
	param := node
	if p.Kind(param) != syntax.KindParameter {
		param = p.Ancestor(node, func(k syntax.Kind) bool { return k == syntax.KindParameter })
	}
	if !param.IsValid() {
		return false
	}
	ctor := p.Ancestor(param, func(k syntax.Kind) bool { return k == syntax.KindConstructor })
	return ctor.IsValid() && isPropertyParameter(p, param)
}

func isPropertyParameter(p *syntax.Program, param syntax.NodeID) bool {
	return p.HasModifier(param, "public", "private", "protected", "readonly", "override")
}

// WouldShadowAncestor reports whether any scope enclosing decl's parent already declares name
// through a node other than decl.
func (m *Model) WouldShadowAncestor(decl syntax.NodeID, name string) (bool, error) {
	scopes, err := m.EnclosingScopes(m.prog.Parent(decl))
	if err != nil {
		return false, err
	}
	for _, s := range scopes {
		if m.declares(s, decl, name) {
			return true, nil
		}
	}
	return false, nil
}

// WouldShadowDescendant reports whether decl's anchor scope, or any scope nested in it, declares
// name through a node other than decl.
func (m *Model) WouldShadowDescendant(decl syntax.NodeID, name string) (bool, error) {
	anchor := decl
	for anchor.IsValid() && !isAnchor(m.prog.Kind(anchor)) {
		anchor = m.prog.Parent(anchor)
	}
	if !anchor.IsValid() {
		return false, errors.Newf(errors.CodeInvariant, "node %d has no enclosing scope", decl)
	}

	found := false
	m.prog.Walk(anchor, func(n syntax.NodeID) bool {
		if found {
			return false
		}
		if Classify(m.prog.Kind(n)) != KindNone && m.declares(n, decl, name) {
			found = true
			return false
		}
		return true
	})
	return found, nil
}

func (m *Model) declares(scope, decl syntax.NodeID, name string) bool {
	for _, n := range m.DirectDeclaredNameNodes(scope, decl) {
		if n != decl && m.prog.Text(n) == name {
			return true
		}
	}
	return false
}
