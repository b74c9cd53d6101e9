package syntax

import "bytes"

// Serialize prints a unit. Source between children is copied verbatim, so an unmutated unit
// round-trips byte for byte.
func (p *Program) Serialize(unit UnitID) []byte {
	u := p.Unit(unit)
	if !u.ID.IsValid() || !u.Root.IsValid() {
		return nil
	}
	var buf bytes.Buffer
	buf.Grow(len(u.Source) + 64)
	root := p.nodes[u.Root].span
	buf.Write(u.Source[:root.Start])
	p.print(&buf, u.Source, u.Root)
	buf.Write(u.Source[root.End:])
	return buf.Bytes()
}

func (p *Program) print(buf *bytes.Buffer, src []byte, id NodeID) {
	n := &p.nodes[id]
	if n.synthetic {
		buf.WriteString(n.text)
		buf.WriteString(n.trail)
		return
	}
	if len(n.children) == 0 {
		if n.kind.IsIdentifier() || n.kind == KindModifier {
			buf.WriteString(n.text)
			return
		}
		buf.Write(src[n.span.Start:n.span.End])
		return
	}

	cursor := n.span.Start
	for _, c := range n.children {
		child := &p.nodes[c]
		if child.synthetic {
			p.print(buf, src, c)
			continue
		}
		if child.span.Start > cursor {
			buf.Write(src[cursor:child.span.Start])
		}
		p.print(buf, src, c)
		if child.span.End > cursor {
			cursor = child.span.End
		}
	}
	if n.span.End > cursor {
		buf.Write(src[cursor:n.span.End])
	}
}
