package resolve

import (
	"fmt"

	"github.com/jward/bindgen/internal/facts"
	"github.com/jward/bindgen/internal/model"
)

// fakeSource is an in-memory facts.Source. Declarations are registered in
// source order; type facts naming a known type symbol are bound lazily so
// forward references work the way they do in a real frontend.
type fakeSource struct {
	files  map[string]*facts.File
	syms   map[string]*fakeSym
	lines  map[string]int
	opaque map[string]bool
}

type fakeSym struct {
	name   string
	qname  string
	parent *fakeSym
	nodes  []*fakeNode
}

func (s *fakeSym) Name() string { return s.name }

type fakeNode struct {
	loc      model.Location
	raw      facts.RawDeclaration
	sym      *fakeSym
	exported bool
	typ      facts.TypeFact
	children []*fakeNode
}

func (n *fakeNode) Location() model.Location { return n.loc }

type fakeParam struct {
	loc model.Location
	typ facts.TypeFact
}

func (p *fakeParam) Location() model.Location { return p.loc }

func newFake() *fakeSource {
	return &fakeSource{
		files:  make(map[string]*facts.File),
		syms:   make(map[string]*fakeSym),
		lines:  make(map[string]int),
		opaque: make(map[string]bool),
	}
}

// add registers top-level declarations of path in order.
func (s *fakeSource) add(path string, nodes ...*fakeNode) *fakeSource {
	f, ok := s.files[path]
	if !ok {
		f = &facts.File{Path: path}
		s.files[path] = f
	}
	for _, n := range nodes {
		s.register(path, nil, n)
		f.Nodes = append(f.Nodes, n)
	}
	return s
}

func (s *fakeSource) register(path string, parent *fakeSym, n *fakeNode) {
	s.lines[path]++
	n.loc = model.Location{File: path, Line: s.lines[path], Col: 1}
	qname := n.raw.Name
	if parent != nil {
		qname = parent.qname + "." + qname
	}
	sym, ok := s.syms[qname]
	if !ok {
		sym = &fakeSym{name: n.raw.Name, qname: qname, parent: parent}
		s.syms[qname] = sym
	}
	sym.nodes = append(sym.nodes, n)
	n.sym = sym

	for _, c := range n.children {
		if n.raw.Kind == facts.DeclNamespace {
			s.register(path, sym, c)
		} else {
			s.lines[path]++
			c.loc = model.Location{File: path, Line: s.lines[path], Col: 3}
		}
		n.raw.Members = append(n.raw.Members, c)
	}
	for i := range n.raw.Parameters {
		p := n.raw.Parameters[i].Node.(*fakeParam)
		p.loc = n.loc
	}
}

func (s *fakeSource) Files(roots []string) ([]facts.File, error) {
	var out []facts.File
	for _, r := range roots {
		f, ok := s.files[r]
		if !ok {
			return nil, fmt.Errorf("fake: %s: %w", r, facts.ErrSourceNotFound)
		}
		out = append(out, *f)
	}
	return out, nil
}

func (s *fakeSource) SymbolAt(n facts.Node) (facts.Symbol, bool) {
	fn, ok := n.(*fakeNode)
	if !ok || fn.sym == nil {
		return nil, false
	}
	return fn.sym, true
}

func (s *fakeSource) QualifiedName(sym facts.Symbol) string { return sym.(*fakeSym).qname }

func (s *fakeSource) Parent(sym facts.Symbol) (facts.Symbol, bool) {
	p := sym.(*fakeSym).parent
	if p == nil {
		return nil, false
	}
	return p, true
}

func (s *fakeSource) RawDeclarationsOf(sym facts.Symbol) []facts.RawDeclaration {
	var out []facts.RawDeclaration
	for _, n := range sym.(*fakeSym).nodes {
		out = append(out, n.raw)
	}
	return out
}

func (s *fakeSource) DeclarationAt(n facts.Node) (facts.RawDeclaration, bool) {
	fn, ok := n.(*fakeNode)
	if !ok {
		return facts.RawDeclaration{}, false
	}
	return fn.raw, true
}

func (s *fakeSource) TypeFactAt(_ facts.Symbol, n facts.Node) facts.TypeFact {
	switch n := n.(type) {
	case *fakeNode:
		return s.bind(n.typ, n.loc)
	case *fakeParam:
		return s.bind(n.typ, n.loc)
	}
	return facts.TypeFact{Kind: facts.FactOther}
}

func (s *fakeSource) bind(f facts.TypeFact, loc model.Location) facts.TypeFact {
	if f.Kind == 0 {
		return facts.TypeFact{Kind: facts.FactKeyword, Name: "void", Location: loc}
	}
	f.Location = loc
	if f.Kind == facts.FactReference {
		if sym, ok := s.syms[f.Name]; ok && !s.opaque[f.Name] {
			f.Symbol = sym
		}
	}
	args := make([]facts.TypeFact, len(f.Args))
	for i, a := range f.Args {
		args[i] = s.bind(a, loc)
	}
	f.Args = args
	return f
}

func (s *fakeSource) IsExplicitlyExported(n facts.Node) bool {
	fn, ok := n.(*fakeNode)
	return ok && fn.exported
}

func (s *fakeSource) LookupType(_ facts.Symbol, name string) facts.TypeFact {
	return s.bind(ref(name), model.Location{})
}

// unbound makes references written as names resolve without a symbol, as
// when the name is not visible from the referencing scope.
func (s *fakeSource) unbound(names ...string) *fakeSource {
	for _, n := range names {
		s.opaque[n] = true
	}
	return s
}

// Declaration builders.

func kw(name string) facts.TypeFact { return facts.TypeFact{Kind: facts.FactKeyword, Name: name} }

func ref(name string) facts.TypeFact { return facts.TypeFact{Kind: facts.FactReference, Name: name} }

func arrayOf(f facts.TypeFact) facts.TypeFact {
	return facts.TypeFact{Kind: facts.FactArray, Args: []facts.TypeFact{f}}
}

func variable(name string, typ facts.TypeFact) *fakeNode {
	n := &fakeNode{typ: typ}
	n.raw = facts.RawDeclaration{Node: n, Kind: facts.DeclVariable, Name: name}
	return n
}

type paramSpec struct {
	name     string
	typ      facts.TypeFact
	optional bool
}

func function(name string, ret facts.TypeFact, params ...paramSpec) *fakeNode {
	n := &fakeNode{typ: ret}
	n.raw = facts.RawDeclaration{Node: n, Kind: facts.DeclFunction, Name: name}
	for _, p := range params {
		n.raw.Parameters = append(n.raw.Parameters, facts.Parameter{
			Node:     &fakeParam{typ: p.typ},
			Name:     p.name,
			Optional: p.optional,
		})
	}
	return n
}

func class(name string, members ...*fakeNode) *fakeNode {
	n := &fakeNode{children: members}
	n.raw = facts.RawDeclaration{Node: n, Kind: facts.DeclClass, Name: name}
	return n
}

func iface(name string, members ...*fakeNode) *fakeNode {
	n := &fakeNode{children: members}
	n.raw = facts.RawDeclaration{Node: n, Kind: facts.DeclInterface, Name: name}
	return n
}

func namespace(name string, members ...*fakeNode) *fakeNode {
	n := &fakeNode{children: members}
	n.raw = facts.RawDeclaration{Node: n, Kind: facts.DeclNamespace, Name: name}
	return n
}

func (n *fakeNode) export() *fakeNode {
	n.exported = true
	return n
}

func (n *fakeNode) doc(text string) *fakeNode {
	n.raw.Doc = text
	return n
}

func (n *fakeNode) extends(names ...string) *fakeNode {
	for _, name := range names {
		n.raw.Heritage = append(n.raw.Heritage, &fakeNode{typ: ref(name)})
	}
	return n
}
