package resolver

import (
	"strings"

	"camelize/internal/engine/syntax"
)

const maxTypeDepth = 8

// utility types whose members are those of their first type argument
var passthroughGenerics = map[string]bool{
	"Partial":  true,
	"Readonly": true,
	"Required": true,
}

// contextualProperties returns the property signature names that shorthand references in refs
// also populate through the object literal's contextual type.
func (r *Resolver) contextualProperties(refs []syntax.NodeID) []syntax.NodeID {
	p := r.prog
	var out []syntax.NodeID
	for _, ref := range refs {
		prop := p.Parent(ref)
		if p.Kind(ref) != syntax.KindIdentifier || p.Kind(prop) != syntax.KindShorthandProperty {
			continue
		}
		name := p.Text(ref)
		for _, sig := range r.contextualMembers(p.Parent(prop), 0) {
			if key, _ := p.NameNode(sig); p.Text(key) == name {
				out = append(out, key)
			}
		}
	}
	return out
}

// contextualMembers returns the property signatures of the type an object literal is checked
// against, when that type is spelled out nearby.
func (r *Resolver) contextualMembers(obj syntax.NodeID, depth int) []syntax.NodeID {
	p := r.prog
	if depth > maxTypeDepth || p.Kind(obj) != syntax.KindObjectLiteral {
		return nil
	}
	child := obj
	parent := p.Parent(obj)
	for p.Raw(parent) == "parenthesized_expression" {
		child, parent = parent, p.Parent(parent)
	}

	switch p.Kind(parent) {
	case syntax.KindVariableDeclaration:
		if p.Field(child) == syntax.FieldValue {
			return r.typeMembers(p.ChildByField(parent, syntax.FieldType), depth+1)
		}
	case syntax.KindReturnStatement:
		fn := p.Ancestor(parent, func(k syntax.Kind) bool { return k.IsFunctionLike() })
		return r.typeMembers(p.ChildByField(fn, syntax.FieldReturnType), depth+1)
	case syntax.KindArrowFunction:
		if p.Field(child) == syntax.FieldBody {
			return r.typeMembers(p.ChildByField(parent, syntax.FieldReturnType), depth+1)
		}
	case syntax.KindAsExpression:
		for _, c := range p.Children(parent) {
			if c != child {
				return r.typeMembers(c, depth+1)
			}
		}
	case syntax.KindPropertyAssignment:
		if p.Field(child) != syntax.FieldValue {
			return nil
		}
		key, _ := p.NameNode(parent)
		keyText := strings.Trim(p.Text(key), "\"'")
		for _, sig := range r.contextualMembers(p.Parent(parent), depth+1) {
			if name, _ := p.NameNode(sig); p.Text(name) == keyText {
				return r.typeMembers(p.ChildByField(sig, syntax.FieldType), depth+1)
			}
		}
	}
	return nil
}

// typeMembers expands a type node into the property signatures it declares.
func (r *Resolver) typeMembers(t syntax.NodeID, depth int) []syntax.NodeID {
	p := r.prog
	if !t.IsValid() || depth > maxTypeDepth {
		return nil
	}
	switch p.Kind(t) {
	case syntax.KindTypeAnnotation:
		var out []syntax.NodeID
		for _, c := range p.Children(t) {
			out = append(out, r.typeMembers(c, depth+1)...)
		}
		return out
	case syntax.KindTypeLiteral:
		return p.ChildrenOfKind(t, syntax.KindPropertySignature)
	case syntax.KindTypeName:
		return r.namedTypeMembers(p.UnitOf(t), p.Text(t), depth+1)
	}

	switch p.Raw(t) {
	case "union_type", "intersection_type", "parenthesized_type":
		var out []syntax.NodeID
		for _, c := range p.Children(t) {
			out = append(out, r.typeMembers(c, depth+1)...)
		}
		return out
	case "generic_type":
		name := p.ChildByField(t, syntax.FieldName)
		if !passthroughGenerics[p.Text(name)] {
			return r.typeMembers(name, depth+1)
		}
		for _, args := range p.Children(t) {
			if p.Raw(args) != "type_arguments" {
				continue
			}
			if list := p.Children(args); len(list) > 0 {
				return r.typeMembers(list[0], depth+1)
			}
		}
	}
	return nil
}

// namedTypeMembers resolves an interface or type alias by name in unit, following imports.
func (r *Resolver) namedTypeMembers(unit syntax.UnitID, name string, depth int) []syntax.NodeID {
	p := r.prog
	if depth > maxTypeDepth {
		return nil
	}
	decl := r.findTypeDeclaration(unit, name)
	switch p.Kind(decl) {
	case syntax.KindInterfaceDeclaration:
		out := r.typeMembers(p.ChildByField(decl, syntax.FieldBody), depth+1)
		for _, c := range p.Children(decl) {
			if p.Raw(c) != "extends_type_clause" {
				continue
			}
			for _, base := range p.Children(c) {
				out = append(out, r.typeMembers(base, depth+1)...)
			}
		}
		return out
	case syntax.KindTypeAliasDeclaration:
		return r.typeMembers(p.ChildByField(decl, syntax.FieldValue), depth+1)
	}

	target, exported, ok := r.importedType(unit, name)
	if !ok {
		return nil
	}
	return r.namedTypeMembers(target, exported, depth+1)
}

func (r *Resolver) findTypeDeclaration(unit syntax.UnitID, name string) syntax.NodeID {
	p := r.prog
	found := syntax.NoNode
	p.Walk(p.Unit(unit).Root, func(n syntax.NodeID) bool {
		if found.IsValid() {
			return false
		}
		switch p.Kind(n) {
		case syntax.KindInterfaceDeclaration, syntax.KindTypeAliasDeclaration:
			if id, _ := p.NameNode(n); p.Text(id) == name {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

// importedType finds the unit and exported name behind a locally imported type name.
func (r *Resolver) importedType(unit syntax.UnitID, name string) (syntax.UnitID, string, bool) {
	p := r.prog
	for _, stmt := range p.ChildrenOfKind(p.Unit(unit).Root, syntax.KindImportDeclaration) {
		for _, spec := range descendantsOfKind(p, stmt, syntax.KindImportSpecifier) {
			if p.Text(p.ImportLocal(spec)) != name {
				continue
			}
			src := p.ChildByField(stmt, syntax.FieldSource)
			target, ok := r.ResolveModule(unit, moduleSpecifier(p.Text(src)))
			if !ok {
				return syntax.NoUnit, "", false
			}
			return target, p.Text(p.ChildByField(spec, syntax.FieldName)), true
		}
	}
	return syntax.NoUnit, "", false
}
