// Package frontend is the TypeScript fact source. It parses .ts and .d.ts
// files with tree-sitter, builds a symbol table with global-script merge
// semantics (same-named declarations across files share one symbol) and
// answers the facts.Source queries over the parsed trees.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/bindgen/internal/facts"
	"github.com/jward/bindgen/internal/model"
)

// Source implements facts.Source for TypeScript.
type Source struct {
	ctx      context.Context
	logger   *log.Logger
	readFile func(string) ([]byte, error)

	files   []*parsedFile
	symbols map[string]*symbol
	aliases map[string]*alias
}

// Option configures a Source.
type Option func(*Source)

// WithContext bounds parsing by ctx.
func WithContext(ctx context.Context) Option {
	return func(s *Source) { s.ctx = ctx }
}

// WithLogger sets the logger used for skipped files and syntax errors.
func WithLogger(l *log.Logger) Option {
	return func(s *Source) { s.logger = l }
}

// WithFS reads input files from fsys instead of the operating system.
func WithFS(fsys fs.FS) Option {
	return func(s *Source) {
		s.readFile = func(p string) ([]byte, error) { return fs.ReadFile(fsys, p) }
	}
}

// WithFiles serves input files from an in-memory map keyed by path.
func WithFiles(files map[string]string) Option {
	return func(s *Source) {
		s.readFile = func(p string) ([]byte, error) {
			src, ok := files[p]
			if !ok {
				return nil, fs.ErrNotExist
			}
			return []byte(src), nil
		}
	}
}

// New returns a Source that reads from the operating system unless
// configured otherwise.
func New(opts ...Option) *Source {
	s := &Source{
		ctx:      context.Background(),
		logger:   log.Default(),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type parsedFile struct {
	path string
	src  []byte
	tree *sitter.Tree
	top  []*declNode
}

// symbol is one named entity. Class and interface members have no symbol.
type symbol struct {
	qname  string
	name   string
	parent *symbol
	decls  []*declNode
	scope  *scope // scope the symbol is declared in
}

func (s *symbol) Name() string { return s.name }

func (s *symbol) remove(d *declNode) {
	for i, e := range s.decls {
		if e == d {
			s.decls = append(s.decls[:i], s.decls[i+1:]...)
			return
		}
	}
}

// isType reports whether the symbol names a type (class, interface or
// namespace) rather than only a value.
func (s *symbol) isType() bool {
	for _, d := range s.decls {
		switch d.raw.Kind {
		case facts.DeclClass, facts.DeclInterface, facts.DeclNamespace:
			return true
		}
	}
	return false
}

// alias is a `type X = T` declaration, expanded at use sites.
type alias struct {
	node  *sitter.Node
	file  *parsedFile
	scope *scope
}

// scope is a lexical scope for type-name lookup.
type scope struct {
	ns         *symbol // enclosing namespace, nil at the top level
	typeParams map[string]bool
	parent     *scope
}

func (sc *scope) isTypeParam(name string) bool {
	for s := sc; s != nil; s = s.parent {
		if s.typeParams[name] {
			return true
		}
	}
	return false
}

func (sc *scope) withTypeParams(names []string) *scope {
	if len(names) == 0 {
		return sc
	}
	tp := make(map[string]bool, len(names))
	for _, n := range names {
		tp[n] = true
	}
	return &scope{ns: sc.ns, typeParams: tp, parent: sc}
}

// declNode is a facts.Node for one declaration occurrence.
type declNode struct {
	file     *parsedFile
	loc      model.Location
	raw      facts.RawDeclaration
	sym      *symbol
	exported bool
	typeNode *sitter.Node // variable type, or callable return type
	missing  string       // keyword used when typeNode is nil
	scope    *scope
	impl     bool // callable with a body
}

func (d *declNode) Location() model.Location { return d.loc }

// paramNode is a facts.Node for one parameter.
type paramNode struct {
	file     *parsedFile
	loc      model.Location
	typeNode *sitter.Node
	scope    *scope
}

func (p *paramNode) Location() model.Location { return p.loc }

// heritageNode is a facts.Node for one extends or implements entry.
type heritageNode struct {
	file  *parsedFile
	loc   model.Location
	node  *sitter.Node
	scope *scope
}

func (h *heritageNode) Location() model.Location { return h.loc }

// Files parses roots in order and returns their top-level declarations.
// Calling Files again discards the previous state.
func (s *Source) Files(roots []string) ([]facts.File, error) {
	s.files = nil
	s.symbols = make(map[string]*symbol)
	s.aliases = make(map[string]*alias)

	for _, path := range roots {
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}
		pf, err := s.parse(path)
		if err != nil {
			return nil, err
		}
		if pf == nil {
			continue
		}
		s.files = append(s.files, pf)
		x := &extractor{src: s, file: pf}
		pf.top = x.statements(pf.tree.RootNode(), &scope{})
	}

	out := make([]facts.File, 0, len(s.files))
	for _, pf := range s.files {
		f := facts.File{Path: pf.path}
		for _, d := range pf.top {
			f.Nodes = append(f.Nodes, d)
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *Source) parse(path string) (*parsedFile, error) {
	lang, ok := LanguageForFile(path)
	if !ok {
		s.logger.Warn("skipping file with unknown extension", "path", path)
		return nil, nil
	}
	grammar, _ := ParserForLanguage(lang)

	src, err := s.readFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("frontend: %s: %w", path, facts.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("frontend: read %s: %w", path, err)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)
	tree, err := parser.ParseCtx(s.ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("frontend: parse %s: %w", path, err)
	}
	if tree.RootNode().HasError() {
		s.logger.Warn("syntax errors in file, continuing with what parsed", "path", path)
	}
	return &parsedFile{path: path, src: src, tree: tree}, nil
}

// register adds d to the symbol named name inside ns.
func (s *Source) register(name string, ns *symbol, sc *scope, d *declNode) *symbol {
	qname := name
	if ns != nil {
		qname = ns.qname + "." + name
	}
	sym, ok := s.symbols[qname]
	if !ok {
		sym = &symbol{qname: qname, name: name, parent: ns, scope: sc}
		s.symbols[qname] = sym
	}
	sym.decls = append(sym.decls, d)
	d.sym = sym
	return sym
}

// lookup finds the symbol a dotted type name refers to from sc, searching
// enclosing namespaces outward.
func (s *Source) lookup(name string, sc *scope) *symbol {
	for ns := scopeNamespace(sc); ; ns = ns.parent {
		qname := name
		if ns != nil {
			qname = ns.qname + "." + name
		}
		if sym, ok := s.symbols[qname]; ok && sym.isType() {
			return sym
		}
		if ns == nil {
			return nil
		}
	}
}

func (s *Source) lookupAlias(name string, sc *scope) *alias {
	for ns := scopeNamespace(sc); ; ns = ns.parent {
		qname := name
		if ns != nil {
			qname = ns.qname + "." + name
		}
		if a, ok := s.aliases[qname]; ok {
			return a
		}
		if ns == nil {
			return nil
		}
	}
}

func scopeNamespace(sc *scope) *symbol {
	if sc == nil {
		return nil
	}
	return sc.ns
}

// SymbolAt implements facts.Source.
func (s *Source) SymbolAt(n facts.Node) (facts.Symbol, bool) {
	d, ok := n.(*declNode)
	if !ok || d.sym == nil {
		return nil, false
	}
	return d.sym, true
}

// QualifiedName implements facts.Source.
func (s *Source) QualifiedName(sym facts.Symbol) string {
	if ss, ok := sym.(*symbol); ok {
		return ss.qname
	}
	return sym.Name()
}

// Parent implements facts.Source.
func (s *Source) Parent(sym facts.Symbol) (facts.Symbol, bool) {
	ss, ok := sym.(*symbol)
	if !ok || ss.parent == nil {
		return nil, false
	}
	return ss.parent, true
}

// RawDeclarationsOf implements facts.Source.
func (s *Source) RawDeclarationsOf(sym facts.Symbol) []facts.RawDeclaration {
	ss, ok := sym.(*symbol)
	if !ok {
		return nil
	}
	out := make([]facts.RawDeclaration, 0, len(ss.decls))
	for _, d := range ss.decls {
		out = append(out, d.raw)
	}
	return out
}

// DeclarationAt implements facts.Source.
func (s *Source) DeclarationAt(n facts.Node) (facts.RawDeclaration, bool) {
	d, ok := n.(*declNode)
	if !ok {
		return facts.RawDeclaration{}, false
	}
	return d.raw, true
}

// IsExplicitlyExported implements facts.Source.
func (s *Source) IsExplicitlyExported(n facts.Node) bool {
	d, ok := n.(*declNode)
	return ok && d.exported
}

// TypeFactAt implements facts.Source.
func (s *Source) TypeFactAt(_ facts.Symbol, n facts.Node) facts.TypeFact {
	switch n := n.(type) {
	case *declNode:
		if n.typeNode == nil {
			return facts.TypeFact{Kind: facts.FactKeyword, Name: n.missing, Location: n.loc}
		}
		return s.typeFact(n.file, n.typeNode, n.scope)
	case *paramNode:
		if n.typeNode == nil {
			return facts.TypeFact{Kind: facts.FactKeyword, Name: "any", Location: n.loc}
		}
		return s.typeFact(n.file, n.typeNode, n.scope)
	case *heritageNode:
		return s.heritageFact(n)
	}
	return facts.TypeFact{Kind: facts.FactOther, Name: "unknown node"}
}

// LookupType implements facts.Source for names written in comments such as
// `@throws {ParseError}`.
func (s *Source) LookupType(sym facts.Symbol, name string) facts.TypeFact {
	name = strings.TrimSpace(name)
	var sc *scope
	if ss, ok := sym.(*symbol); ok {
		sc = ss.scope
	}
	if strings.HasSuffix(name, "[]") {
		elem := s.LookupType(sym, strings.TrimSuffix(name, "[]"))
		return facts.TypeFact{Kind: facts.FactArray, Args: []facts.TypeFact{elem}}
	}
	if isKeyword(name) {
		return facts.TypeFact{Kind: facts.FactKeyword, Name: name}
	}
	f := facts.TypeFact{Kind: facts.FactReference, Name: name}
	if target := s.lookup(name, sc); target != nil {
		f.Name = target.qname
		f.Symbol = target
	}
	return f
}

var keywordNames = map[string]bool{
	"any": true, "unknown": true, "object": true, "boolean": true,
	"number": true, "string": true, "void": true, "null": true,
	"undefined": true, "never": true, "symbol": true, "bigint": true,
}

func isKeyword(name string) bool { return keywordNames[name] }

// Close releases the parsed trees.
func (s *Source) Close() {
	for _, pf := range s.files {
		pf.tree.Close()
	}
	s.files = nil
}
