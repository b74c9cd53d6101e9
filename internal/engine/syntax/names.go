package syntax

// NameNode returns the name sub-node of identifier-bearing constructs. ok is false for kinds
// without a name accessor; a construct that has one but is anonymous returns NoNode, true.
func (p *Program) NameNode(id NodeID) (NodeID, bool) {
	switch p.Kind(id) {
	case KindVariableDeclaration, KindParameter, KindBindingElement,
		KindFunctionDeclaration, KindFunctionExpression, KindMethod, KindConstructor,
		KindClassDeclaration, KindInterfaceDeclaration, KindTypeAliasDeclaration,
		KindEnumDeclaration, KindPropertySignature, KindMethodSignature,
		KindShorthandProperty, KindImportSpecifier, KindExportSpecifier:
		return p.ChildByField(id, FieldName), true
	case KindPropertyDeclaration:
		if name := p.ChildByField(id, FieldName); name.IsValid() {
			return name, true
		}
		return p.ChildByField(id, FieldProperty), true
	case KindPropertyAssignment:
		return p.ChildByField(id, FieldKey), true
	case KindPropertyAccess:
		return p.ChildByField(id, FieldProperty), true
	case KindNamespaceImport:
		ids := p.ChildrenOfKind(id, KindIdentifier)
		if len(ids) == 0 {
			return NoNode, true
		}
		return ids[0], true
	default:
		return NoNode, false
	}
}

// BindingNames unpacks a binding target into its bound identifiers, recursing through object and
// array patterns.
func (p *Program) BindingNames(target NodeID) []NodeID {
	var out []NodeID
	p.collectBindingNames(target, &out)
	return out
}

func (p *Program) collectBindingNames(target NodeID, out *[]NodeID) {
	switch p.Kind(target) {
	case KindIdentifier:
		*out = append(*out, target)
	case KindObjectBindingPattern, KindArrayBindingPattern:
		for _, el := range p.ChildrenOfKind(target, KindBindingElement) {
			p.collectBindingNames(p.ChildByField(el, FieldName), out)
		}
	}
}

// HasModifier reports whether a direct modifier child has one of the given texts.
func (p *Program) HasModifier(id NodeID, texts ...string) bool {
	for _, c := range p.ChildrenOfKind(id, KindModifier) {
		t := p.Text(c)
		for _, want := range texts {
			if t == want {
				return true
			}
		}
	}
	return false
}

// Parameters returns the parameter nodes of a function-like node.
func (p *Program) Parameters(fn NodeID) []NodeID {
	var out []NodeID
	for _, c := range p.Children(fn) {
		switch p.Kind(c) {
		case KindParameter:
			out = append(out, c)
		case KindParameters:
			out = append(out, p.ChildrenOfKind(c, KindParameter)...)
		}
	}
	return out
}

// Statements returns the statement children of a scope, unwrapping export declarations to the
// declaration they carry.
func (p *Program) Statements(scope NodeID) []NodeID {
	children := p.Children(scope)
	out := make([]NodeID, 0, len(children))
	for _, c := range children {
		if p.Kind(c) == KindExportDeclaration {
			if decl := p.ChildByField(c, FieldDecl); decl.IsValid() {
				out = append(out, decl)
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

// ImportBindings returns the local names bound by an import declaration.
func (p *Program) ImportBindings(decl NodeID) []NodeID {
	var out []NodeID
	for _, clause := range p.ChildrenOfKind(decl, KindImportClause) {
		for _, c := range p.Children(clause) {
			switch p.Kind(c) {
			case KindIdentifier:
				out = append(out, c)
			case KindNamespaceImport:
				if name, _ := p.NameNode(c); name.IsValid() {
					out = append(out, name)
				}
			case KindNamedImports:
				for _, spec := range p.ChildrenOfKind(c, KindImportSpecifier) {
					if local := p.ImportLocal(spec); local.IsValid() {
						out = append(out, local)
					}
				}
			}
		}
	}
	return out
}

// ImportLocal returns the identifier an import specifier binds locally: the alias when present.
func (p *Program) ImportLocal(spec NodeID) NodeID {
	if alias := p.ChildByField(spec, FieldAlias); alias.IsValid() {
		return alias
	}
	return p.ChildByField(spec, FieldName)
}

// IsStatic reports whether a class member carries the static modifier.
func (p *Program) IsStatic(member NodeID) bool {
	return p.HasModifier(member, "static")
}

// VariableKeyword returns "var", "let" or "const" for a variable statement, or "".
func (p *Program) VariableKeyword(stmt NodeID) string {
	for _, c := range p.ChildrenOfKind(stmt, KindModifier) {
		switch t := p.Text(c); t {
		case "var", "let", "const":
			return t
		}
	}
	return ""
}
