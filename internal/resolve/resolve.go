// Package resolve computes the export closure of a set of source files and
// produces the canonical declaration tree.
//
// One call runs three phases over state it owns exclusively:
//
//  1. Visit: root candidates are visited in file order. Every type
//     reference they contain is classified by the type resolver; references
//     to declarations not yet visited force those declarations in.
//  2. Canonicalize: each qualified name's bucket of raw declarations is
//     merged, in discovery order, into the source file of its main
//     declaration, and the module arena is indexed.
//  3. Bind: Declared references form a work queue that is drained to a
//     fixpoint against the arena. What remains is reported as unresolved and
//     erased to Any.
package resolve

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/jward/bindgen/internal/diag"
	"github.com/jward/bindgen/internal/facts"
	"github.com/jward/bindgen/internal/merge"
	"github.com/jward/bindgen/internal/model"
	"github.com/jward/bindgen/internal/typeres"
)

// DefaultModuleName names the module when WithModuleName is not given.
const DefaultModuleName = "module"

// Option configures a Resolve call.
type Option func(*options)

type options struct {
	moduleName string
	logger     *log.Logger
}

// WithModuleName sets the name of the produced module.
func WithModuleName(name string) Option {
	return func(o *options) {
		o.moduleName = name
	}
}

// WithLogger routes progress logging to l.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Resolve loads roots through src and returns the canonical module with the
// diagnostics of this call. Only a failure to load the inputs is returned as
// an error; everything else is a diagnostic.
func Resolve(src facts.Source, roots []string, implicitExport bool, opts ...Option) (*model.Module, *diag.Diagnostics, error) {
	o := options{moduleName: DefaultModuleName}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}

	files, err := src.Files(roots)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve: load sources: %w", err)
	}

	r := newRun(src, implicitExport, o.logger)
	for _, f := range files {
		r.files = append(r.files, f.Path)
		for _, n := range f.Nodes {
			if r.isRootCandidate(n) {
				r.visitRoot(n)
			}
		}
	}
	r.logger.Debug("visit pass complete", "names", len(r.order), "files", len(r.files))

	m := r.canonicalize(o.moduleName)
	r.bind(m)
	r.logger.Debug("resolve complete", "declarations", m.Len(), "diagnostics", r.diags.Len())
	return m, r.diags, nil
}

// bucket collects the raw declarations of one top-level qualified name.
type bucket struct {
	name  string
	raws  []facts.RawDeclaration
	nodes map[facts.Node]bool
}

func (b *bucket) add(raw facts.RawDeclaration) bool {
	if b.nodes[raw.Node] {
		return false
	}
	b.nodes[raw.Node] = true
	b.raws = append(b.raws, raw)
	return true
}

type run struct {
	src      facts.Source
	implicit bool
	logger   *log.Logger
	diags    *diag.Diagnostics
	types    *typeres.Resolver

	files   []string
	visited map[string]bool
	buckets map[string]*bucket
	order   []string
	forced  map[string]bool

	built map[facts.Node]model.Declaration
	raws  map[facts.Node]facts.RawDeclaration
}

func newRun(src facts.Source, implicit bool, logger *log.Logger) *run {
	r := &run{
		src:      src,
		implicit: implicit,
		logger:   logger,
		diags:    diag.New(),
		visited:  make(map[string]bool),
		buckets:  make(map[string]*bucket),
		forced:   make(map[string]bool),
		built:    make(map[facts.Node]model.Declaration),
		raws:     make(map[facts.Node]facts.RawDeclaration),
	}
	r.types = typeres.New(r.diags, r.reference)
	return r
}

// isRootCandidate reports whether a top-level node seeds the closure.
func (r *run) isRootCandidate(n facts.Node) bool {
	if r.implicit || r.src.IsExplicitlyExported(n) {
		return true
	}
	raw, ok := r.src.DeclarationAt(n)
	return ok && facts.ParseComment(raw.Doc).IsTagged("export")
}

// includeMember reports whether a namespace child belongs to the surface.
func (r *run) includeMember(n facts.Node) bool {
	if r.isRootCandidate(n) {
		return true
	}
	sym, ok := r.src.SymbolAt(n)
	return ok && r.forced[r.src.QualifiedName(sym)]
}

func (r *run) visitRoot(n facts.Node) {
	sym, ok := r.src.SymbolAt(n)
	if !ok {
		return
	}
	qname := r.src.QualifiedName(sym)
	if !r.visited[qname] {
		r.visitSymbol(sym)
		return
	}
	// A later occurrence of a visited name joins its bucket without
	// reprocessing the earlier ones.
	b := r.buckets[qname]
	if b == nil {
		return
	}
	if raw, ok := r.src.DeclarationAt(n); ok && b.add(raw) {
		r.inspect(sym, raw)
	}
}

func (r *run) visitSymbol(sym facts.Symbol) {
	qname := r.src.QualifiedName(sym)
	r.visited[qname] = true
	b := &bucket{name: qname, nodes: make(map[facts.Node]bool)}
	r.buckets[qname] = b
	r.order = append(r.order, qname)
	r.logger.Debug("visit", "name", qname)

	for _, raw := range r.src.RawDeclarationsOf(sym) {
		if b.add(raw) {
			r.inspect(sym, raw)
		}
	}
}

// reference is the type resolver's callback for user references. It forces
// the target into the closure and returns its qualified name. A reference
// without a symbol never binds, even when its text matches a qualified name.
func (r *run) reference(sym facts.Symbol, _ string) string {
	if sym == nil {
		return ""
	}
	r.force(sym)
	return r.src.QualifiedName(sym)
}

// force pulls sym into the closure even though it was not exported. A
// nested symbol is included in its enclosing namespaces, which are forced
// in turn.
func (r *run) force(sym facts.Symbol) {
	qname := r.src.QualifiedName(sym)
	parent, nested := r.src.Parent(sym)
	if !nested {
		if !r.visited[qname] {
			r.logger.Debug("force", "name", qname)
			r.visitSymbol(sym)
		}
		return
	}
	if r.forced[qname] {
		return
	}
	r.forced[qname] = true
	r.logger.Debug("force member", "name", qname)
	r.force(parent)
	for _, raw := range r.src.RawDeclarationsOf(sym) {
		r.inspect(sym, raw)
	}
}

func (r *run) resolveAt(sym facts.Symbol, n facts.Node) model.Type {
	return r.types.Resolve(r.src.TypeFactAt(sym, n))
}

// inspect builds the pre-merge declaration for raw, resolving every type it
// references. Results are cached per node.
func (r *run) inspect(sym facts.Symbol, raw facts.RawDeclaration) model.Declaration {
	if d, ok := r.built[raw.Node]; ok {
		return d
	}
	comment := facts.ParseComment(raw.Doc)
	base := model.Base{
		Name:     raw.Name,
		Doc:      comment.Text,
		Flags:    raw.Flags,
		Location: raw.Node.Location(),
	}

	var d model.Declaration
	switch raw.Kind {
	case facts.DeclVariable:
		v := &model.Variable{Base: base}
		d = v
		r.record(raw, d)
		v.Type = r.resolveAt(sym, raw.Node)
	case facts.DeclFunction:
		fn := &model.Function{Base: base, TypeParameters: raw.TypeParameters}
		d = fn
		r.record(raw, d)
		fn.Signature = r.signature(sym, raw, comment)
	case facts.DeclConstructor:
		base.Name = ""
		ctor := &model.Constructor{Base: base, TypeParameters: raw.TypeParameters}
		d = ctor
		r.record(raw, d)
		ctor.Signature = r.signature(sym, raw, comment)
	case facts.DeclClass:
		c := &model.Class{Base: base, TypeParameters: raw.TypeParameters}
		d = c
		r.record(raw, d)
		if len(raw.Heritage) > 0 {
			c.Superclass = r.resolveAt(sym, raw.Heritage[0])
		}
		for _, n := range raw.Implements {
			c.Implements = append(c.Implements, r.resolveAt(sym, n))
		}
		c.Members = r.members(sym, raw)
	case facts.DeclInterface:
		i := &model.Interface{Base: base, TypeParameters: raw.TypeParameters}
		d = i
		r.record(raw, d)
		for _, n := range raw.Heritage {
			i.Extends = append(i.Extends, r.resolveAt(sym, n))
		}
		i.Members = r.members(sym, raw)
	case facts.DeclNamespace:
		d = &model.Namespace{Base: base}
		r.record(raw, d)
		for _, n := range raw.Members {
			if !r.includeMember(n) {
				continue
			}
			if child, ok := r.src.DeclarationAt(n); ok {
				r.inspect(r.symbolOr(n, sym), child)
			}
		}
	default:
		return nil
	}
	return d
}

func (r *run) record(raw facts.RawDeclaration, d model.Declaration) {
	r.built[raw.Node] = d
	r.raws[raw.Node] = raw
}

func (r *run) symbolOr(n facts.Node, fallback facts.Symbol) facts.Symbol {
	if s, ok := r.src.SymbolAt(n); ok {
		return s
	}
	return fallback
}

// members builds the non-private members of a class or interface.
func (r *run) members(sym facts.Symbol, raw facts.RawDeclaration) []model.Declaration {
	var out []model.Declaration
	for _, n := range raw.Members {
		mraw, ok := r.src.DeclarationAt(n)
		if !ok || mraw.Private {
			continue
		}
		if m := r.inspect(r.symbolOr(n, sym), mraw); m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (r *run) signature(sym facts.Symbol, raw facts.RawDeclaration, comment facts.Comment) model.Signature {
	var sig model.Signature
	for _, p := range raw.Parameters {
		sig.Parameters = append(sig.Parameters, model.Parameter{
			Name:     p.Name,
			Type:     r.resolveAt(sym, p.Node),
			Optional: p.Optional || p.Rest,
			Rest:     p.Rest,
		})
	}
	sig.Return = r.resolveAt(sym, raw.Node)
	sig.Throws = r.types.Throws(comment, func(name string) facts.TypeFact {
		return r.src.LookupType(sym, name)
	})
	return sig
}

// assemble returns the built declaration for node with namespace members
// filled in. Namespaces are assembled last because forcing can add members
// after the namespace itself was inspected.
func (r *run) assemble(n facts.Node) model.Declaration {
	d := r.built[n]
	ns, ok := d.(*model.Namespace)
	if !ok {
		return d
	}
	ns.Members = nil
	for _, child := range r.raws[n].Members {
		if _, built := r.built[child]; !built || !r.includeMember(child) {
			continue
		}
		if m := r.assemble(child); m != nil {
			ns.Members = append(ns.Members, m)
		}
	}
	return ns
}

func (r *run) canonicalize(name string) *model.Module {
	m := model.NewModule(name)
	for _, p := range r.files {
		m.File(p)
	}
	for _, qname := range r.order {
		b := r.buckets[qname]
		decls := make([]model.Declaration, 0, len(b.raws))
		for _, raw := range b.raws {
			if d := r.assemble(raw.Node); d != nil {
				decls = append(decls, d)
			}
		}
		canon, ok := merge.MergeAll(qname, decls, r.diags)
		if !ok {
			r.logger.Debug("merge conflict, dropping", "name", qname)
			continue
		}
		for _, d := range canon {
			f := m.File(d.Common().Location.File)
			f.Declarations = append(f.Declarations, d)
		}
	}
	for _, f := range m.Files {
		f.Declarations = merge.MaterializeOverloads(f.Declarations)
	}
	m.Index()
	return m
}

type pending struct {
	slot *model.Type
	ref  *model.DeclaredType
}

// bind drains the Declared-reference queue to a fixpoint, then erases what
// is left.
func (r *run) bind(m *model.Module) {
	var queue []pending
	model.WalkModule(m, func(d model.Declaration) {
		model.TypeSlots(d, func(slot *model.Type) {
			if ref, ok := (*slot).(*model.DeclaredType); ok {
				queue = append(queue, pending{slot: slot, ref: ref})
			}
		})
	})

	for len(queue) > 0 {
		var next []pending
		for _, p := range queue {
			if id := targetOf(m, p.ref.Name); id != 0 {
				p.ref.Target = id
				continue
			}
			next = append(next, p)
		}
		if len(next) == len(queue) {
			break
		}
		queue = next
	}

	for _, p := range queue {
		r.diags.Reportf(diag.UnresolvedType, p.ref.Name, p.ref.Site,
			"unresolved type %s, erased to any", p.ref.Name)
		*p.slot = &model.AnyType{Opt: model.Opt{Optional: p.ref.Optional}}
	}
}

func targetOf(m *model.Module, qname string) int {
	d, ok := m.Lookup(qname)
	if !ok || !model.IsTypeDeclaration(d) {
		return 0
	}
	return d.Common().ID
}
