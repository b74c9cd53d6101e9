package syntax

import (
	"camelize/internal/core/errors"
)

// Rename replaces the text of an identifier-like leaf.
func (p *Program) Rename(id NodeID, text string) error {
	if !p.validNode(id) || !p.nodes[id].kind.IsIdentifier() {
		return errors.Newf(errors.CodeInvariant, "rename target %d is not an identifier", id)
	}
	if text == "" {
		return errors.New(errors.CodeValidationError, "rename to empty text")
	}
	p.nodes[id].text = text
	p.version++
	return nil
}

// IsShorthand reports whether id is a shorthand property in an object literal or an object
// pattern element without a property name.
func (p *Program) IsShorthand(id NodeID) bool {
	switch p.Kind(id) {
	case KindShorthandProperty:
		return true
	case KindBindingElement:
		return p.Kind(p.Parent(id)) == KindObjectBindingPattern && p.Raw(id) != "rest_pattern" &&
			!p.ChildByField(id, FieldProperty).IsValid() &&
			p.Kind(p.ChildByField(id, FieldName)) == KindIdentifier
	default:
		return false
	}
}

// ExpandShorthand turns `{ name }` into `{ key: name }` in place. A shorthand property becomes
// a property assignment; a shorthand binding element gains a property name. The existing
// identifier keeps its NodeID and parent.
func (p *Program) ExpandShorthand(id NodeID, key string) error {
	if !p.IsShorthand(id) {
		return errors.Newf(errors.CodeInvariant, "node %d (%s) is not shorthand syntax", id, p.Kind(id))
	}
	if key == "" {
		return errors.New(errors.CodeValidationError, "shorthand key is empty")
	}

	n := &p.nodes[id]
	keyField := FieldProperty
	if n.kind == KindShorthandProperty {
		keyField = FieldKey
	}

	value := p.ChildByField(id, FieldName)
	if value.IsValid() && n.kind == KindShorthandProperty {
		p.nodes[value].field = FieldValue
	}

	keyID := p.AddNode(n.unit, KindPropertyName, "property_identifier", keyField, NoNode, Span{Start: n.span.Start, End: n.span.Start})
	p.nodes[keyID].parent = id
	p.nodes[keyID].synthetic = true
	p.nodes[keyID].text = key
	p.nodes[keyID].trail = ": "

	// AddNode may have grown the arena; reacquire the node.
	n = &p.nodes[id]
	n.children = append([]NodeID{keyID}, n.children...)
	if n.kind == KindShorthandProperty {
		n.kind = KindPropertyAssignment
		n.raw = "pair"
	}
	p.version++
	return nil
}
