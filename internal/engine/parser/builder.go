package parser

import (
	"fmt"

	"camelize/internal/engine/syntax"

	"fortio.org/safecast"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// rawKinds maps grammar kinds to normalized kinds. Kinds absent here become syntax.KindOther.
var rawKinds = map[string]syntax.Kind{
	"program":                        syntax.KindProgram,
	"statement_block":                syntax.KindBlock,
	"for_statement":                  syntax.KindForStatement,
	"lexical_declaration":            syntax.KindVariableStatement,
	"variable_declaration":           syntax.KindVariableStatement,
	"variable_declarator":            syntax.KindVariableDeclaration,
	"object_pattern":                 syntax.KindObjectBindingPattern,
	"function_declaration":           syntax.KindFunctionDeclaration,
	"generator_function_declaration": syntax.KindFunctionDeclaration,
	"function_signature":             syntax.KindFunctionDeclaration,
	"function_expression":            syntax.KindFunctionExpression,
	"function":                       syntax.KindFunctionExpression,
	"generator_function":             syntax.KindFunctionExpression,
	"class_declaration":              syntax.KindClassDeclaration,
	"abstract_class_declaration":     syntax.KindClassDeclaration,
	"class":                          syntax.KindClassDeclaration,
	"class_body":                     syntax.KindClassBody,
	"public_field_definition":        syntax.KindPropertyDeclaration,
	"field_definition":               syntax.KindPropertyDeclaration,
	"method_signature":               syntax.KindMethodSignature,
	"abstract_method_signature":      syntax.KindMethodSignature,
	"interface_declaration":          syntax.KindInterfaceDeclaration,
	"type_alias_declaration":         syntax.KindTypeAliasDeclaration,
	"object_type":                    syntax.KindTypeLiteral,
	"interface_body":                 syntax.KindTypeLiteral,
	"property_signature":             syntax.KindPropertySignature,
	"enum_declaration":               syntax.KindEnumDeclaration,
	"import_statement":               syntax.KindImportDeclaration,
	"import_clause":                  syntax.KindImportClause,
	"namespace_import":               syntax.KindNamespaceImport,
	"named_imports":                  syntax.KindNamedImports,
	"import_specifier":               syntax.KindImportSpecifier,
	"export_statement":               syntax.KindExportDeclaration,
	"export_clause":                  syntax.KindNamedExports,
	"export_specifier":               syntax.KindExportSpecifier,
	"object":                         syntax.KindObjectLiteral,
	"pair":                           syntax.KindPropertyAssignment,
	"member_expression":              syntax.KindPropertyAccess,
	"return_statement":               syntax.KindReturnStatement,
	"type_annotation":                syntax.KindTypeAnnotation,
	"as_expression":                  syntax.KindAsExpression,
	"satisfies_expression":           syntax.KindAsExpression,
	"identifier":                     syntax.KindIdentifier,
	"property_identifier":            syntax.KindPropertyName,
	"private_property_identifier":    syntax.KindPropertyName,
	"type_identifier":                syntax.KindTypeName,
	"accessibility_modifier":         syntax.KindModifier,
	"override_modifier":              syntax.KindModifier,
}

// keptTokens are anonymous keyword tokens the scope model needs to see.
var keptTokens = map[string]bool{
	"static":   true,
	"readonly": true,
	"abstract": true,
	"declare":  true,
	"const":    true,
	"let":      true,
	"var":      true,
}

// builder converts a tree-sitter CST into normalized arena nodes.
type builder struct {
	prog *syntax.Program
	unit syntax.UnitID
	src  []byte
	err  error
}

func (b *builder) offset(v uint) uint32 {
	out, err := safecast.Conv[uint32](v)
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("byte offset %d overflows: %w", v, err)
	}
	return out
}

func (b *builder) span(n *sitter.Node) syntax.Span {
	return syntax.Span{Start: b.offset(n.StartByte()), End: b.offset(n.EndByte())}
}

func (b *builder) add(kind syntax.Kind, raw, field string, parent syntax.NodeID, n *sitter.Node) syntax.NodeID {
	return b.prog.AddNode(b.unit, kind, raw, field, parent, b.span(n))
}

func (b *builder) text(n *sitter.Node) string {
	return string(b.src[n.StartByte():n.EndByte()])
}

func (b *builder) visit(n *sitter.Node, parent syntax.NodeID, field string) syntax.NodeID {
	raw := n.Kind()
	switch raw {
	case "shorthand_property_identifier_pattern":
		el := b.add(syntax.KindBindingElement, raw, field, parent, n)
		b.add(syntax.KindIdentifier, "identifier", syntax.FieldName, el, n)
		return el

	case "shorthand_property_identifier":
		prop := b.add(syntax.KindShorthandProperty, raw, field, parent, n)
		b.add(syntax.KindIdentifier, "identifier", syntax.FieldName, prop, n)
		return prop

	case "pair_pattern":
		el := b.add(syntax.KindBindingElement, raw, field, parent, n)
		b.eachChild(n, func(child *sitter.Node, f string) {
			switch f {
			case "key":
				b.visit(child, el, syntax.FieldProperty)
			case "value":
				b.bindingTarget(child, el)
			default:
				b.visit(child, el, f)
			}
		})
		return el

	case "object_assignment_pattern":
		el := b.add(syntax.KindBindingElement, raw, field, parent, n)
		if left := n.ChildByFieldName("left"); left != nil {
			if left.Kind() == "shorthand_property_identifier_pattern" {
				b.add(syntax.KindIdentifier, "identifier", syntax.FieldName, el, left)
			} else {
				b.visit(left, el, syntax.FieldName)
			}
		}
		if right := n.ChildByFieldName("right"); right != nil {
			b.visit(right, el, syntax.FieldValue)
		}
		return el

	case "rest_pattern":
		el := b.add(syntax.KindBindingElement, raw, field, parent, n)
		b.eachChild(n, func(child *sitter.Node, _ string) {
			b.visit(child, el, syntax.FieldName)
		})
		return el

	case "array_pattern":
		arr := b.add(syntax.KindArrayBindingPattern, raw, field, parent, n)
		b.eachChild(n, func(child *sitter.Node, _ string) {
			b.arrayElement(child, arr)
		})
		return arr

	case "required_parameter", "optional_parameter":
		param := b.add(syntax.KindParameter, raw, field, parent, n)
		b.eachToken(n, param, func(child *sitter.Node, f string) {
			if f == "pattern" {
				b.parameterTarget(child, param)
				return
			}
			b.visit(child, param, f)
		})
		return param

	case "formal_parameters":
		params := b.add(syntax.KindParameters, raw, field, parent, n)
		b.eachChild(n, func(child *sitter.Node, f string) {
			switch child.Kind() {
			case "required_parameter", "optional_parameter", "comment":
				b.visit(child, params, f)
			default:
				// JavaScript grammars list patterns directly.
				param := b.add(syntax.KindParameter, child.Kind(), "", params, child)
				b.parameterTarget(child, param)
			}
		})
		return params

	case "arrow_function":
		fn := b.add(syntax.KindArrowFunction, raw, field, parent, n)
		b.eachToken(n, fn, func(child *sitter.Node, f string) {
			if f == syntax.FieldParameter {
				param := b.add(syntax.KindParameter, child.Kind(), syntax.FieldParameter, fn, child)
				b.parameterTarget(child, param)
				return
			}
			b.visit(child, fn, f)
		})
		return fn

	case "for_in_statement":
		loop := b.add(syntax.KindForStatement, raw, field, parent, n)
		declares := n.ChildByFieldName("kind") != nil
		b.eachToken(n, loop, func(child *sitter.Node, f string) {
			if f == syntax.FieldLeft && declares {
				decl := b.add(syntax.KindVariableDeclaration, child.Kind(), syntax.FieldLeft, loop, child)
				b.visit(child, decl, syntax.FieldName)
				return
			}
			b.visit(child, loop, f)
		})
		return loop

	case "catch_clause":
		clause := b.add(syntax.KindCatchClause, raw, field, parent, n)
		b.eachChild(n, func(child *sitter.Node, f string) {
			if f == syntax.FieldParameter {
				decl := b.add(syntax.KindVariableDeclaration, child.Kind(), syntax.FieldParameter, clause, child)
				b.visit(child, decl, syntax.FieldName)
				return
			}
			b.visit(child, clause, f)
		})
		return clause

	case "method_definition":
		kind := syntax.KindMethod
		if name := n.ChildByFieldName("name"); name != nil && b.text(name) == "constructor" {
			kind = syntax.KindConstructor
		}
		id := b.add(kind, raw, field, parent, n)
		b.eachToken(n, id, func(child *sitter.Node, f string) {
			b.visit(child, id, f)
		})
		return id
	}

	kind, ok := rawKinds[raw]
	if !ok {
		kind = syntax.KindOther
	}
	id := b.add(kind, raw, field, parent, n)
	b.eachToken(n, id, func(child *sitter.Node, f string) {
		b.visit(child, id, f)
	})
	return id
}

// bindingTarget attaches the value side of a pair pattern, flattening `key: name = default`.
func (b *builder) bindingTarget(child *sitter.Node, el syntax.NodeID) {
	if child.Kind() == "assignment_pattern" {
		if left := child.ChildByFieldName("left"); left != nil {
			b.visit(left, el, syntax.FieldName)
		}
		if right := child.ChildByFieldName("right"); right != nil {
			b.visit(right, el, syntax.FieldValue)
		}
		return
	}
	b.visit(child, el, syntax.FieldName)
}

func (b *builder) arrayElement(child *sitter.Node, arr syntax.NodeID) {
	switch child.Kind() {
	case "rest_pattern", "comment":
		b.visit(child, arr, "")
	case "assignment_pattern":
		el := b.add(syntax.KindBindingElement, child.Kind(), "", arr, child)
		b.bindingTarget(child, el)
	default:
		el := b.add(syntax.KindBindingElement, child.Kind(), "", arr, child)
		b.visit(child, el, syntax.FieldName)
	}
}

// parameterTarget attaches a parameter's bound pattern, flattening rest and default syntax.
func (b *builder) parameterTarget(child *sitter.Node, param syntax.NodeID) {
	switch child.Kind() {
	case "rest_pattern":
		b.eachChild(child, func(inner *sitter.Node, _ string) {
			b.visit(inner, param, syntax.FieldName)
		})
	case "assignment_pattern":
		b.bindingTarget(child, param)
	default:
		b.visit(child, param, syntax.FieldName)
	}
}

// eachChild calls fn for every named child with its field label.
func (b *builder) eachChild(n *sitter.Node, fn func(child *sitter.Node, field string)) {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		fn(child, n.FieldNameForChild(uint32(i)))
	}
}

// eachToken is eachChild that also records kept keyword tokens as modifiers of parent.
func (b *builder) eachToken(n *sitter.Node, parent syntax.NodeID, fn func(child *sitter.Node, field string)) {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		field := n.FieldNameForChild(uint32(i))
		if !child.IsNamed() {
			if keptTokens[child.Kind()] {
				b.add(syntax.KindModifier, child.Kind(), field, parent, child)
			}
			continue
		}
		fn(child, field)
	}
}
