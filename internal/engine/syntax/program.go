// # internal/engine/syntax/program.go
package syntax

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
)

// NodeID identifies a node inside a Program. Zero is reserved.
type NodeID uint32

const NoNode NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNode }

// UnitID identifies a loaded source file. Zero is reserved.
type UnitID uint32

const NoUnit UnitID = 0

func (id UnitID) IsValid() bool { return id != NoUnit }

// Span is a half-open byte range in the unit's original source.
type Span struct {
	Start uint32
	End   uint32
}

func (s Span) Len() uint32 { return s.End - s.Start }

type node struct {
	kind     Kind
	raw      string
	field    string
	unit     UnitID
	parent   NodeID
	children []NodeID
	span     Span
	text     string

	// synthetic nodes have no source span; they print text followed by trail.
	synthetic bool
	trail     string
}

// Unit is one loaded source file.
type Unit struct {
	ID       UnitID
	Path     string
	Language string
	Source   []byte
	Root     NodeID
}

// Program is the arena owning all units of one run.
type Program struct {
	nodes   []node
	units   []Unit
	byPath  map[string]UnitID
	version uint64
}

// NewProgram creates an arena with an optional node capacity hint.
func NewProgram(capacity uint32) *Program {
	if capacity == 0 {
		capacity = 256
	}
	return &Program{
		nodes:  make([]node, 1, capacity+1), // index 0 reserved for NoNode
		units:  make([]Unit, 1, 8),          // index 0 reserved for NoUnit
		byPath: make(map[string]UnitID),
	}
}

// AddUnit registers a source file. Paths are unique within a program.
func (p *Program) AddUnit(path, language string, source []byte) (UnitID, error) {
	if _, exists := p.byPath[path]; exists {
		return NoUnit, fmt.Errorf("unit %s already loaded", path)
	}
	value, err := safecast.Conv[uint32](len(p.units))
	if err != nil {
		return NoUnit, fmt.Errorf("units arena overflow: %w", err)
	}
	id := UnitID(value)
	p.units = append(p.units, Unit{ID: id, Path: path, Language: language, Source: source})
	p.byPath[path] = id
	return id, nil
}

// RemoveUnit forgets a unit's path so it is no longer listed. Its nodes stay allocated.
func (p *Program) RemoveUnit(id UnitID) {
	if !p.validUnit(id) {
		return
	}
	delete(p.byPath, p.units[id].Path)
	p.units[id].Root = NoNode
}

// SetRoot records the unit's root node.
func (p *Program) SetRoot(unit UnitID, root NodeID) {
	if p.validUnit(unit) {
		p.units[unit].Root = root
	}
}

// AddNode appends a node to the arena and to its parent's children. Identifier-like leaves and
// modifiers take their text from the unit's source.
func (p *Program) AddNode(unit UnitID, kind Kind, raw, field string, parent NodeID, span Span) NodeID {
	value, err := safecast.Conv[uint32](len(p.nodes))
	if err != nil {
		panic(fmt.Errorf("nodes arena overflow: %w", err))
	}
	id := NodeID(value)
	n := node{
		kind:   kind,
		raw:    raw,
		field:  field,
		unit:   unit,
		parent: parent,
		span:   span,
	}
	if kind.IsIdentifier() || kind == KindModifier {
		src := p.units[unit].Source
		if int(span.End) <= len(src) && span.Start <= span.End {
			n.text = string(src[span.Start:span.End])
		}
	}
	p.nodes = append(p.nodes, n)
	if parent.IsValid() {
		p.nodes[parent].children = append(p.nodes[parent].children, id)
	}
	return id
}

func (p *Program) validNode(id NodeID) bool {
	return id.IsValid() && int(id) < len(p.nodes)
}

func (p *Program) validUnit(id UnitID) bool {
	return id.IsValid() && int(id) < len(p.units)
}

// Len reports the number of allocated nodes excluding the sentinel.
func (p *Program) Len() int { return len(p.nodes) - 1 }

// Version changes whenever a node is mutated.
func (p *Program) Version() uint64 { return p.version }

func (p *Program) Unit(id UnitID) Unit {
	if !p.validUnit(id) {
		return Unit{}
	}
	return p.units[id]
}

func (p *Program) UnitByPath(path string) (UnitID, bool) {
	id, ok := p.byPath[path]
	return id, ok
}

// Units returns the loaded unit IDs sorted by path.
func (p *Program) Units() []UnitID {
	out := make([]UnitID, 0, len(p.byPath))
	for _, id := range p.byPath {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return p.units[out[i]].Path < p.units[out[j]].Path
	})
	return out
}

func (p *Program) Kind(id NodeID) Kind {
	if !p.validNode(id) {
		return KindInvalid
	}
	return p.nodes[id].kind
}

// Raw returns the grammar kind the node was built from.
func (p *Program) Raw(id NodeID) string {
	if !p.validNode(id) {
		return ""
	}
	return p.nodes[id].raw
}

// Field returns the node's field label under its parent, or "".
func (p *Program) Field(id NodeID) string {
	if !p.validNode(id) {
		return ""
	}
	return p.nodes[id].field
}

func (p *Program) Parent(id NodeID) NodeID {
	if !p.validNode(id) {
		return NoNode
	}
	return p.nodes[id].parent
}

// Children returns the node's children in source order. The slice must not be modified.
func (p *Program) Children(id NodeID) []NodeID {
	if !p.validNode(id) {
		return nil
	}
	return p.nodes[id].children
}

// ChildByField returns the first child carrying the field label.
func (p *Program) ChildByField(id NodeID, field string) NodeID {
	for _, c := range p.Children(id) {
		if p.nodes[c].field == field {
			return c
		}
	}
	return NoNode
}

// ChildrenOfKind returns the children with the given kind.
func (p *Program) ChildrenOfKind(id NodeID, kind Kind) []NodeID {
	var out []NodeID
	for _, c := range p.Children(id) {
		if p.nodes[c].kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func (p *Program) UnitOf(id NodeID) UnitID {
	if !p.validNode(id) {
		return NoUnit
	}
	return p.nodes[id].unit
}

// PathOf is the path of the unit owning id.
func (p *Program) PathOf(id NodeID) string {
	return p.Unit(p.UnitOf(id)).Path
}

func (p *Program) Span(id NodeID) Span {
	if !p.validNode(id) {
		return Span{}
	}
	return p.nodes[id].span
}

func (p *Program) IsSynthetic(id NodeID) bool {
	return p.validNode(id) && p.nodes[id].synthetic
}

// Text returns the current text of identifier-like leaves and modifiers, and the original
// source text of every other node.
func (p *Program) Text(id NodeID) string {
	if !p.validNode(id) {
		return ""
	}
	n := &p.nodes[id]
	if n.kind.IsIdentifier() || n.kind == KindModifier || n.synthetic {
		return n.text
	}
	src := p.units[n.unit].Source
	if int(n.span.End) > len(src) || n.span.Start > n.span.End {
		return ""
	}
	return string(src[n.span.Start:n.span.End])
}

// Position returns the 1-based line and column of the node's start.
func (p *Program) Position(id NodeID) (line, col int) {
	if !p.validNode(id) {
		return 0, 0
	}
	src := p.units[p.nodes[id].unit].Source
	start := int(p.nodes[id].span.Start)
	line, col = 1, 1
	for i := 0; i < start && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// Walk visits id and its descendants in document order. Returning false from fn skips the
// node's children.
func (p *Program) Walk(id NodeID, fn func(NodeID) bool) {
	if !p.validNode(id) {
		return
	}
	if !fn(id) {
		return
	}
	for _, c := range p.nodes[id].children {
		p.Walk(c, fn)
	}
}

// Ancestor returns the nearest strict ancestor of id whose kind satisfies match.
func (p *Program) Ancestor(id NodeID, match func(Kind) bool) NodeID {
	for a := p.Parent(id); a.IsValid(); a = p.Parent(a) {
		if match(p.nodes[a].kind) {
			return a
		}
	}
	return NoNode
}

// Contains reports whether id is outer itself or one of its descendants.
func (p *Program) Contains(outer, id NodeID) bool {
	for n := id; n.IsValid(); n = p.Parent(n) {
		if n == outer {
			return true
		}
	}
	return false
}
