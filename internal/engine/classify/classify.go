package classify

import "camelize/internal/engine/syntax"

type Destructuring uint8

const (
	NotDestructuring Destructuring = iota
	ShorthandDestructuring
	ExplicitDestructuring
)

func (d Destructuring) String() string {
	switch d {
	case ShorthandDestructuring:
		return "shorthand destructuring"
	case ExplicitDestructuring:
		return "explicit destructuring"
	default:
		return "not destructuring"
	}
}

// ClassifyDestructuring inspects a binding element directly inside an object binding pattern
// of a variable declaration. Anything else, including parameter patterns and nested patterns,
// is not destructuring.
func ClassifyDestructuring(p *syntax.Program, node syntax.NodeID) Destructuring {
	if p.Kind(node) != syntax.KindBindingElement {
		return NotDestructuring
	}
	pattern := p.Parent(node)
	if p.Kind(pattern) != syntax.KindObjectBindingPattern {
		return NotDestructuring
	}
	if p.Kind(p.Parent(pattern)) != syntax.KindVariableDeclaration {
		return NotDestructuring
	}
	if p.ChildByField(node, syntax.FieldProperty).IsValid() {
		return ExplicitDestructuring
	}
	return ShorthandDestructuring
}

// IsEligibleDeclaration reports whether the declaring construct may have its name renamed:
// a variable declaration, an explicitly destructured binding or a parameter.
func IsEligibleDeclaration(p *syntax.Program, node syntax.NodeID) bool {
	switch p.Kind(node) {
	case syntax.KindVariableDeclaration, syntax.KindParameter:
		return true
	case syntax.KindBindingElement:
		return ClassifyDestructuring(p, node) == ExplicitDestructuring
	default:
		return false
	}
}

// IsTypeOrInterfacePropertyReference reports whether node names a property signature of an
// interface, type alias or type literal.
func IsTypeOrInterfacePropertyReference(p *syntax.Program, node syntax.NodeID) bool {
	if p.Kind(p.Parent(node)) != syntax.KindPropertySignature {
		return false
	}
	owner := p.Ancestor(node, func(k syntax.Kind) bool {
		switch k {
		case syntax.KindInterfaceDeclaration, syntax.KindTypeAliasDeclaration, syntax.KindTypeLiteral:
			return true
		default:
			return false
		}
	})
	return owner.IsValid()
}
