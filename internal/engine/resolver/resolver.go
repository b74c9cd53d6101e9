// # internal/engine/resolver/resolver.go
package resolver

import (
	"sort"

	"camelize/internal/engine/syntax"
)

// Resolver answers reference queries. Results are valid until the program is next mutated;
// indexes are rebuilt lazily after a mutation.
type Resolver struct {
	prog    *syntax.Program
	indexes map[syntax.UnitID]*unitIndex
	version uint64
}

func New(prog *syntax.Program) *Resolver {
	return &Resolver{
		prog:    prog,
		indexes: make(map[syntax.UnitID]*unitIndex),
		version: prog.Version(),
	}
}

func (r *Resolver) index(unit syntax.UnitID) *unitIndex {
	if r.version != r.prog.Version() {
		r.indexes = make(map[syntax.UnitID]*unitIndex)
		r.version = r.prog.Version()
	}
	idx, ok := r.indexes[unit]
	if !ok {
		idx = buildIndex(r.prog, unit)
		r.indexes[unit] = idx
	}
	return idx
}

// Resolve returns the declaration name node ref binds to, or NoNode.
func (r *Resolver) Resolve(ref syntax.NodeID) syntax.NodeID {
	if r.prog.Kind(ref) != syntax.KindIdentifier || !r.isLocalReference(ref) {
		return syntax.NoNode
	}
	return r.index(r.prog.UnitOf(ref)).resolve(r.prog, ref)
}

type exportKey struct {
	unit syntax.UnitID
	name string
}

type refSet struct {
	seen  map[syntax.NodeID]bool
	nodes []syntax.NodeID
}

func (s *refSet) add(n syntax.NodeID) {
	if !n.IsValid() || s.seen[n] {
		return
	}
	s.seen[n] = true
	s.nodes = append(s.nodes, n)
}

// FindReferences returns decl and every node referring to its binding, sorted by unit path and
// position. A decl that binds nothing yields only itself.
func (r *Resolver) FindReferences(decl syntax.NodeID) []syntax.NodeID {
	p := r.prog
	set := &refSet{seen: make(map[syntax.NodeID]bool)}
	set.add(decl)

	bindings := []syntax.NodeID{decl}
	var exports []exportKey
	visitedBindings := make(map[syntax.NodeID]bool)
	visitedExports := make(map[exportKey]bool)

	for len(bindings) > 0 || len(exports) > 0 {
		if len(bindings) > 0 {
			b := bindings[0]
			bindings = bindings[1:]
			if visitedBindings[b] {
				continue
			}
			visitedBindings[b] = true

			unit := p.UnitOf(b)
			idx := r.index(unit)
			scope, ok := idx.scopeOf[b]
			if !ok {
				continue
			}
			local := r.localReferences(idx, scope, b)
			for _, n := range local {
				set.add(n)
			}
			if p.Kind(scope) == syntax.KindProgram {
				for _, name := range r.exportedNames(b, local) {
					exports = append(exports, exportKey{unit: unit, name: name})
				}
			}
			continue
		}

		e := exports[0]
		exports = exports[1:]
		if visitedExports[e] {
			continue
		}
		visitedExports[e] = true
		found := r.importers(e)
		for _, n := range found.nodes {
			set.add(n)
		}
		bindings = append(bindings, found.bindings...)
		exports = append(exports, found.reexports...)
	}

	for _, n := range r.thisAccesses(decl) {
		set.add(n)
	}
	for _, n := range r.contextualProperties(set.nodes) {
		set.add(n)
	}

	out := set.nodes
	sort.Slice(out, func(i, j int) bool {
		pi, pj := p.PathOf(out[i]), p.PathOf(out[j])
		if pi != pj {
			return pi < pj
		}
		return p.Span(out[i]).Start < p.Span(out[j]).Start
	})
	return out
}

// localReferences walks the binding's scope for identifiers resolving to decl.
func (r *Resolver) localReferences(idx *unitIndex, scope, decl syntax.NodeID) []syntax.NodeID {
	p := r.prog
	name := p.Text(decl)
	var out []syntax.NodeID
	p.Walk(scope, func(n syntax.NodeID) bool {
		if p.Kind(n) == syntax.KindIdentifier && p.Text(n) == name && r.isLocalReference(n) &&
			idx.resolve(p, n) == decl {
			out = append(out, n)
		}
		return true
	})
	return out
}

// isLocalReference rejects identifiers that name another module's export: the imported side of
// an aliased import, the exported side of an aliased export and re-export specifiers.
func (r *Resolver) isLocalReference(n syntax.NodeID) bool {
	p := r.prog
	parent := p.Parent(n)
	switch p.Kind(parent) {
	case syntax.KindImportSpecifier:
		return p.Field(n) == syntax.FieldAlias || !p.ChildByField(parent, syntax.FieldAlias).IsValid()
	case syntax.KindExportSpecifier:
		if p.Field(n) == syntax.FieldAlias {
			return false
		}
		return !p.ChildByField(exportStatement(p, parent), syntax.FieldSource).IsValid()
	default:
		return true
	}
}

func exportStatement(p *syntax.Program, spec syntax.NodeID) syntax.NodeID {
	return p.Ancestor(spec, func(k syntax.Kind) bool { return k == syntax.KindExportDeclaration })
}

// exportedNames lists the names under which a top-level binding leaves its unit.
func (r *Resolver) exportedNames(decl syntax.NodeID, local []syntax.NodeID) []string {
	p := r.prog
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	if exp := exportStatement(p, decl); exp.IsValid() && p.ChildByField(exp, syntax.FieldDecl).IsValid() {
		add(p.Text(decl))
	}
	for _, n := range local {
		if p.Kind(p.Parent(n)) != syntax.KindExportSpecifier {
			continue
		}
		if alias := p.ChildByField(p.Parent(n), syntax.FieldAlias); alias.IsValid() {
			add(p.Text(alias))
			continue
		}
		add(p.Text(n))
	}
	return names
}

type importResult struct {
	nodes     []syntax.NodeID
	bindings  []syntax.NodeID
	reexports []exportKey
}

// importers finds, in every other unit, the import and re-export sites of e.
func (r *Resolver) importers(e exportKey) importResult {
	p := r.prog
	var res importResult
	for _, u := range p.Units() {
		if u == e.unit {
			continue
		}
		root := p.Unit(u).Root
		for _, stmt := range p.Children(root) {
			switch p.Kind(stmt) {
			case syntax.KindImportDeclaration:
				if !r.importsFrom(u, stmt, e.unit) {
					continue
				}
				r.collectImport(u, stmt, e.name, &res)
			case syntax.KindExportDeclaration:
				if !r.importsFrom(u, stmt, e.unit) {
					continue
				}
				for _, spec := range descendantsOfKind(p, stmt, syntax.KindExportSpecifier) {
					name := p.ChildByField(spec, syntax.FieldName)
					if p.Text(name) != e.name {
						continue
					}
					res.nodes = append(res.nodes, name)
					if alias := p.ChildByField(spec, syntax.FieldAlias); alias.IsValid() {
						res.reexports = append(res.reexports, exportKey{unit: u, name: p.Text(alias)})
					} else {
						res.reexports = append(res.reexports, exportKey{unit: u, name: e.name})
					}
				}
			}
		}
	}
	return res
}

func (r *Resolver) collectImport(u syntax.UnitID, stmt syntax.NodeID, exported string, res *importResult) {
	p := r.prog
	for _, spec := range descendantsOfKind(p, stmt, syntax.KindImportSpecifier) {
		name := p.ChildByField(spec, syntax.FieldName)
		if p.Text(name) != exported {
			continue
		}
		if p.ChildByField(spec, syntax.FieldAlias).IsValid() {
			res.nodes = append(res.nodes, name)
			continue
		}
		res.bindings = append(res.bindings, name)
	}

	for _, ns := range descendantsOfKind(p, stmt, syntax.KindNamespaceImport) {
		local, _ := p.NameNode(ns)
		if !local.IsValid() {
			continue
		}
		idx := r.index(u)
		p.Walk(p.Unit(u).Root, func(n syntax.NodeID) bool {
			if p.Kind(n) != syntax.KindPropertyAccess {
				return true
			}
			obj := p.ChildByField(n, syntax.FieldObject)
			prop := p.ChildByField(n, syntax.FieldProperty)
			if p.Kind(obj) == syntax.KindIdentifier && p.Text(prop) == exported && idx.resolve(p, obj) == local {
				res.nodes = append(res.nodes, prop)
			}
			return true
		})
	}
}

// importsFrom reports whether an import or re-export statement in unit u loads target.
func (r *Resolver) importsFrom(u syntax.UnitID, stmt syntax.NodeID, target syntax.UnitID) bool {
	src := r.prog.ChildByField(stmt, syntax.FieldSource)
	if !src.IsValid() {
		return false
	}
	resolved, ok := r.ResolveModule(u, moduleSpecifier(r.prog.Text(src)))
	return ok && resolved == target
}

// thisAccesses returns `this.name` accesses in the class of a constructor parameter property.
func (r *Resolver) thisAccesses(decl syntax.NodeID) []syntax.NodeID {
	p := r.prog
	param := p.Parent(decl)
	if p.Kind(param) != syntax.KindParameter ||
		!p.HasModifier(param, "public", "private", "protected", "readonly", "override") {
		return nil
	}
	ctor := p.Ancestor(param, func(k syntax.Kind) bool { return k == syntax.KindConstructor })
	class := p.Ancestor(ctor, func(k syntax.Kind) bool { return k == syntax.KindClassDeclaration })
	if !ctor.IsValid() || !class.IsValid() {
		return nil
	}
	name := p.Text(decl)
	var out []syntax.NodeID
	p.Walk(class, func(n syntax.NodeID) bool {
		if p.Kind(n) != syntax.KindPropertyAccess {
			return true
		}
		prop := p.ChildByField(n, syntax.FieldProperty)
		if p.Raw(p.ChildByField(n, syntax.FieldObject)) == "this" && p.Text(prop) == name {
			out = append(out, prop)
		}
		return true
	})
	return out
}

func descendantsOfKind(p *syntax.Program, root syntax.NodeID, kind syntax.Kind) []syntax.NodeID {
	var out []syntax.NodeID
	p.Walk(root, func(n syntax.NodeID) bool {
		if p.Kind(n) == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}
