package syntax

import (
	"testing"

	"camelize/internal/core/errors"
)

// declProgram builds `const a_b = 1;` by hand.
func declProgram(t *testing.T) (*Program, UnitID, NodeID) {
	t.Helper()
	p := NewProgram(0)
	src := []byte("const a_b = 1;\n")
	u, err := p.AddUnit("a.ts", "typescript", src)
	if err != nil {
		t.Fatalf("AddUnit: %v", err)
	}
	root := p.AddNode(u, KindProgram, "program", "", NoNode, Span{0, 15})
	stmt := p.AddNode(u, KindVariableStatement, "lexical_declaration", "", root, Span{0, 14})
	p.AddNode(u, KindModifier, "const", "kind", stmt, Span{0, 5})
	decl := p.AddNode(u, KindVariableDeclaration, "variable_declarator", "", stmt, Span{6, 13})
	name := p.AddNode(u, KindIdentifier, "identifier", FieldName, decl, Span{6, 9})
	p.AddNode(u, KindOther, "number", FieldValue, decl, Span{12, 13})
	p.SetRoot(u, root)
	return p, u, name
}

func TestSerializeRoundTrip(t *testing.T) {
	p, u, _ := declProgram(t)
	if got := string(p.Serialize(u)); got != "const a_b = 1;\n" {
		t.Fatalf("expected lossless output, got %q", got)
	}
}

func TestRename(t *testing.T) {
	p, u, name := declProgram(t)
	before := p.Version()

	if err := p.Rename(name, "aB"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if p.Version() == before {
		t.Error("expected version to change after rename")
	}
	if got := string(p.Serialize(u)); got != "const aB = 1;\n" {
		t.Errorf("unexpected output %q", got)
	}
	if p.Text(name) != "aB" {
		t.Errorf("expected text aB, got %q", p.Text(name))
	}

	stmt := p.Children(p.Unit(u).Root)[0]
	if err := p.Rename(stmt, "x"); !errors.IsCode(err, errors.CodeInvariant) {
		t.Errorf("expected invariant error renaming a statement, got %v", err)
	}
}

func TestNavigation(t *testing.T) {
	p, u, name := declProgram(t)
	decl := p.Parent(name)

	if p.Kind(decl) != KindVariableDeclaration {
		t.Fatalf("expected variable declaration parent, got %s", p.Kind(decl))
	}
	if got, ok := p.NameNode(decl); !ok || got != name {
		t.Errorf("expected NameNode to return the identifier, got %d ok=%v", got, ok)
	}
	if p.VariableKeyword(p.Parent(decl)) != "const" {
		t.Errorf("expected const keyword, got %q", p.VariableKeyword(p.Parent(decl)))
	}
	if line, col := p.Position(name); line != 1 || col != 7 {
		t.Errorf("expected 1:7, got %d:%d", line, col)
	}
	if !p.Contains(p.Unit(u).Root, name) {
		t.Error("expected root to contain the identifier")
	}
	if _, ok := p.NameNode(p.Unit(u).Root); ok {
		t.Error("expected program to have no name accessor")
	}
	if _, err := p.AddUnit("a.ts", "typescript", nil); err == nil {
		t.Error("expected duplicate unit path to fail")
	}
}

func TestExpandShorthand(t *testing.T) {
	p := NewProgram(0)
	src := []byte("x = { a_b };")
	u, err := p.AddUnit("s.ts", "typescript", src)
	if err != nil {
		t.Fatal(err)
	}
	root := p.AddNode(u, KindProgram, "program", "", NoNode, Span{0, 12})
	stmt := p.AddNode(u, KindOther, "expression_statement", "", root, Span{0, 12})
	assign := p.AddNode(u, KindOther, "assignment_expression", "", stmt, Span{0, 11})
	p.AddNode(u, KindIdentifier, "identifier", FieldLeft, assign, Span{0, 1})
	obj := p.AddNode(u, KindObjectLiteral, "object", "right", assign, Span{4, 11})
	prop := p.AddNode(u, KindShorthandProperty, "shorthand_property_identifier", "", obj, Span{6, 9})
	ident := p.AddNode(u, KindIdentifier, "identifier", FieldName, prop, Span{6, 9})
	p.SetRoot(u, root)

	if !p.IsShorthand(prop) {
		t.Fatal("expected shorthand property")
	}
	if err := p.Rename(ident, "aB"); err != nil {
		t.Fatal(err)
	}
	if err := p.ExpandShorthand(prop, "a_b"); err != nil {
		t.Fatalf("ExpandShorthand: %v", err)
	}

	if got := string(p.Serialize(u)); got != "x = { a_b: aB };" {
		t.Errorf("unexpected output %q", got)
	}
	if p.Kind(prop) != KindPropertyAssignment {
		t.Errorf("expected property assignment, got %s", p.Kind(prop))
	}
	key, _ := p.NameNode(prop)
	if p.Text(key) != "a_b" || !p.IsSynthetic(key) {
		t.Errorf("expected synthetic key a_b, got %q", p.Text(key))
	}
	if p.Parent(ident) != prop || p.Field(ident) != FieldValue {
		t.Error("expected identifier to stay under the rewritten property as its value")
	}
	if err := p.ExpandShorthand(prop, "a_b"); !errors.IsCode(err, errors.CodeInvariant) {
		t.Errorf("expected second expansion to fail, got %v", err)
	}
}

func TestKindsHaveNames(t *testing.T) {
	for _, k := range Kinds() {
		if k.String() == "" || k.String() == "invalid" {
			t.Errorf("kind %d has no name", k)
		}
	}
}
