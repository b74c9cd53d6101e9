package classify

import (
	"testing"

	"camelize/internal/engine/enginetest"
	"camelize/internal/engine/syntax"
)

const path = "src/main.ts"

func TestClassifyDestructuring(t *testing.T) {
	prog, _ := enginetest.LoadOne(t, `const { user_name, email: contact_email } = obj;
function f({ param_key }) {}
const plain_value = 1;
`)
	tests := []struct {
		ident string
		want  Destructuring
	}{
		{"user_name", ShorthandDestructuring},
		{"contact_email", ExplicitDestructuring},
		{"param_key", NotDestructuring},
		{"plain_value", NotDestructuring},
	}
	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			owner := prog.Parent(enginetest.Ident(t, prog, path, tt.ident, 0))
			if got := ClassifyDestructuring(prog, owner); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestIsEligibleDeclaration(t *testing.T) {
	prog, _ := enginetest.LoadOne(t, `const { user_name, email: contact_email } = obj;
function load_user(user_id: string) {}
const plain_value = 1;
class user_store {}
`)
	tests := []struct {
		ident string
		kind  syntax.Kind
		want  bool
	}{
		{"user_name", syntax.KindIdentifier, false},
		{"contact_email", syntax.KindIdentifier, true},
		{"load_user", syntax.KindIdentifier, false},
		{"user_id", syntax.KindIdentifier, true},
		{"plain_value", syntax.KindIdentifier, true},
		{"user_store", syntax.KindTypeName, false},
	}
	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			owner := prog.Parent(enginetest.Find(t, prog, path, tt.ident, tt.kind, 0))
			if got := IsEligibleDeclaration(prog, owner); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsTypeOrInterfacePropertyReference(t *testing.T) {
	prog, _ := enginetest.LoadOne(t, `interface A { in_interface: string }
type B = { in_alias: number };
let c: { in_literal: boolean };
const d = { in_object: 1 };
`)
	tests := []struct {
		name string
		want bool
	}{
		{"in_interface", true},
		{"in_alias", true},
		{"in_literal", true},
		{"in_object", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := enginetest.Find(t, prog, path, tt.name, syntax.KindPropertyName, 0)
			if got := IsTypeOrInterfacePropertyReference(prog, node); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
