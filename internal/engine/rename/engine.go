// # internal/engine/rename/engine.go
package rename

import (
	"log/slog"
	"sort"
	"time"

	"camelize/internal/core/decision"
	"camelize/internal/core/errors"
	"camelize/internal/engine/classify"
	"camelize/internal/engine/naming"
	"camelize/internal/engine/resolver"
	"camelize/internal/engine/scope"
	"camelize/internal/engine/syntax"
	"camelize/internal/shared/observability"
)

// DirtySet collects paths of units that received at least one mutation.
type DirtySet struct {
	paths map[string]struct{}
}

func NewDirtySet() *DirtySet {
	return &DirtySet{paths: make(map[string]struct{})}
}

func (d *DirtySet) Add(path string) {
	if d.paths == nil {
		d.paths = make(map[string]struct{})
	}
	d.paths[path] = struct{}{}
}

func (d *DirtySet) Has(path string) bool {
	_, ok := d.paths[path]
	return ok
}

func (d *DirtySet) Len() int { return len(d.paths) }

// Paths returns the dirty paths sorted.
func (d *DirtySet) Paths() []string {
	out := make([]string, 0, len(d.paths))
	for p := range d.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Stats summarizes one Convert call.
type Stats struct {
	Candidates        int
	Renamed           int
	Skipped           int
	ShorthandRewrites int
}

func (s *Stats) Add(o Stats) {
	s.Candidates += o.Candidates
	s.Renamed += o.Renamed
	s.Skipped += o.Skipped
	s.ShorthandRewrites += o.ShorthandRewrites
}

type Options struct {
	Converter naming.Converter
	Sink      decision.Sink
	// Now stamps decision records; defaults to time.Now.
	Now func() time.Time
}

// Engine owns the scope model and resolver for one program. It is not safe for concurrent use.
type Engine struct {
	prog   *syntax.Program
	scopes *scope.Model
	refs   *resolver.Resolver
	conv   naming.Converter
	sink   decision.Sink
	now    func() time.Time
}

func NewEngine(prog *syntax.Program, opts Options) *Engine {
	e := &Engine{
		prog:   prog,
		scopes: scope.NewModel(prog),
		refs:   resolver.New(prog),
		conv:   opts.Converter,
		sink:   opts.Sink,
		now:    opts.Now,
	}
	if e.conv == nil {
		e.conv = naming.SnakeToCamel{}
	}
	if e.sink == nil {
		e.sink = decision.Discard
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Convert evaluates every identifier of unit in document order. Units matched by exclude are
// walked without producing decisions or mutations, and a rename whose references reach an
// excluded unit is abandoned. Every mutated path is added to dirty.
func (e *Engine) Convert(unit syntax.UnitID, exclude func(path string) bool, dirty *DirtySet) (Stats, error) {
	var stats Stats
	u := e.prog.Unit(unit)
	if !u.Root.IsValid() {
		return stats, errors.AddContext(errors.New(errors.CodeNotFound, "unit not loaded"), errors.CtxPath, u.Path)
	}
	if exclude == nil {
		exclude = func(string) bool { return false }
	}
	if exclude(u.Path) {
		slog.Debug("skipping excluded unit", "path", u.Path)
		return stats, nil
	}

	start := time.Now()
	defer func() {
		observability.ConvertDuration.Observe(time.Since(start).Seconds())
	}()

	for _, node := range e.candidates(u.Root) {
		if err := e.evaluate(u.Path, node, exclude, dirty, &stats); err != nil {
			return stats, errors.AddContext(err, errors.CtxPath, u.Path)
		}
	}
	return stats, nil
}

// candidates snapshots identifier-like leaves so shorthand rewrites during the walk do not
// disturb iteration.
func (e *Engine) candidates(root syntax.NodeID) []syntax.NodeID {
	var out []syntax.NodeID
	e.prog.Walk(root, func(n syntax.NodeID) bool {
		if e.prog.Kind(n).IsIdentifier() {
			out = append(out, n)
		}
		return true
	})
	return out
}

func (e *Engine) evaluate(path string, node syntax.NodeID, exclude func(string) bool, dirty *DirtySet, stats *Stats) error {
	p := e.prog
	snake := p.Text(node)
	if !e.conv.IsSource(snake) {
		return nil
	}
	parent := p.Parent(node)
	name, ok := p.NameNode(parent)
	if !ok || name != node {
		return nil
	}

	if classify.ClassifyDestructuring(p, parent) == classify.ShorthandDestructuring {
		stats.Candidates++
		return e.skip(path, snake, decision.ReasonShorthand, stats)
	}
	if !classify.IsEligibleDeclaration(p, parent) {
		return nil
	}
	stats.Candidates++

	camel := e.conv.ToTarget(snake)
	if camel == snake {
		return e.skip(path, snake, decision.ReasonAlreadyCamel, stats)
	}

	shadows, err := e.scopes.WouldShadowAncestor(node, camel)
	if err != nil {
		return err
	}
	if shadows {
		return e.skip(path, snake, decision.ReasonWouldShadow, stats)
	}
	shadowed, err := e.scopes.WouldShadowDescendant(node, camel)
	if err != nil {
		return err
	}
	if shadowed {
		return e.skip(path, snake, decision.ReasonWouldBeShadowed, stats)
	}

	refs := e.refs.FindReferences(node)
	for _, ref := range refs {
		if classify.IsTypeOrInterfacePropertyReference(p, ref) {
			return e.skip(path, snake, decision.ReasonTypeProperty, stats)
		}
	}
	for _, ref := range refs {
		if exclude(p.PathOf(ref)) {
			return e.skip(path, snake, decision.ReasonExcludedFile, stats)
		}
	}

	var shorthands []syntax.NodeID
	for _, ref := range refs {
		if owner := p.Parent(ref); p.IsShorthand(owner) {
			shorthands = append(shorthands, owner)
		}
	}

	for _, ref := range refs {
		if err := p.Rename(ref, camel); err != nil {
			return errors.AddContext(err, errors.CtxIdentifier, snake)
		}
		dirty.Add(p.PathOf(ref))
	}
	for _, owner := range shorthands {
		if err := p.ExpandShorthand(owner, snake); err != nil {
			return errors.AddContext(err, errors.CtxIdentifier, snake)
		}
	}

	stats.Renamed++
	stats.ShorthandRewrites += len(shorthands)
	observability.ShorthandRewritesTotal.Add(float64(len(shorthands)))
	observability.DecisionsTotal.WithLabelValues(string(decision.StatusSuccess), "").Inc()
	slog.Debug("renamed identifier", "path", path, "from", snake, "to", camel, "references", len(refs))
	return e.sink.Emit(decision.Success(e.now(), path, snake, len(shorthands) > 0))
}

func (e *Engine) skip(path, snake string, reason decision.Reason, stats *Stats) error {
	stats.Skipped++
	observability.DecisionsTotal.WithLabelValues(string(decision.StatusSkip), string(reason)).Inc()
	return e.sink.Emit(decision.Skip(e.now(), path, snake, reason))
}
