package frontend

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/bindgen/internal/facts"
	"github.com/jward/bindgen/internal/model"
)

// extractor walks one parsed file and builds declaration nodes, registering
// symbols as it goes.
type extractor struct {
	src     *Source
	file    *parsedFile
	ambient int // depth of enclosing `declare` contexts
}

func (x *extractor) text(n *sitter.Node) string { return n.Content(x.file.src) }

func location(pf *parsedFile, n *sitter.Node) model.Location {
	p := n.StartPoint()
	return model.Location{File: pf.path, Line: int(p.Row) + 1, Col: int(p.Column) + 1}
}

func (x *extractor) node(n *sitter.Node, sc *scope) *declNode {
	return &declNode{file: x.file, loc: location(x.file, n), scope: sc}
}

// statements extracts the declarations directly inside a program or
// statement block.
func (x *extractor) statements(block *sitter.Node, sc *scope) []*declNode {
	var out []*declNode
	for i := 0; i < int(block.NamedChildCount()); i++ {
		child := block.NamedChild(i)
		out = append(out, x.statement(child, child, false, sc)...)
	}
	return dropImplementations(out)
}

// statement classifies n. outer is the outermost wrapper (export, declare)
// and carries the leading comment.
func (x *extractor) statement(n, outer *sitter.Node, exported bool, sc *scope) []*declNode {
	switch n.Type() {
	case "export_statement":
		if d := n.ChildByFieldName("declaration"); d != nil {
			return x.statement(d, outer, true, sc)
		}
	case "ambient_declaration":
		x.ambient++
		defer func() { x.ambient-- }()
		var out []*declNode
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c.Type() == "statement_block" {
				// declare global { ... }
				out = append(out, x.statements(c, sc)...)
				continue
			}
			out = append(out, x.statement(c, outer, exported, sc)...)
		}
		return out
	case "expression_statement":
		if c := n.NamedChild(0); c != nil && c.Type() == "internal_module" {
			return x.statement(c, outer, exported, sc)
		}
	case "lexical_declaration", "variable_declaration":
		return x.variables(n, outer, exported, sc)
	case "function_declaration", "function_signature", "generator_function_declaration":
		if d := x.function(n, outer, exported, sc); d != nil {
			return []*declNode{d}
		}
	case "class_declaration", "abstract_class_declaration":
		if d := x.class(n, outer, exported, sc); d != nil {
			return []*declNode{d}
		}
	case "interface_declaration":
		if d := x.iface(n, outer, exported, sc); d != nil {
			return []*declNode{d}
		}
	case "internal_module", "module":
		if d := x.namespace(n, outer, exported, sc); d != nil {
			return []*declNode{d}
		}
	case "type_alias_declaration":
		x.alias(n, sc)
	}
	return nil
}

func (x *extractor) variables(n, outer *sitter.Node, exported bool, sc *scope) []*declNode {
	isConst := n.ChildCount() > 0 && n.Child(0).Type() == "const"
	doc := x.doc(outer)
	var out []*declNode
	for i := 0; i < int(n.NamedChildCount()); i++ {
		v := n.NamedChild(i)
		if v.Type() != "variable_declarator" {
			continue
		}
		name := v.ChildByFieldName("name")
		if name == nil || name.Type() != "identifier" {
			continue
		}
		d := x.node(v, sc)
		d.exported = exported
		d.typeNode = unwrapAnnotation(v.ChildByFieldName("type"))
		d.missing = "any"
		d.raw = facts.RawDeclaration{Node: d, Kind: facts.DeclVariable, Name: x.text(name), Doc: doc}
		if isConst {
			d.raw.Flags |= model.FlagConst
		}
		x.src.register(d.raw.Name, sc.ns, sc, d)
		out = append(out, d)
	}
	return out
}

func (x *extractor) function(n, outer *sitter.Node, exported bool, sc *scope) *declNode {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	d := x.callable(n, facts.DeclFunction, x.text(name), sc)
	d.exported = exported
	d.raw.Doc = x.doc(outer)
	d.impl = n.Type() != "function_signature"
	x.src.register(d.raw.Name, sc.ns, sc, d)
	return d
}

// callable builds a function or constructor node with its own type
// parameter scope. The return type of construct signatures is under "type".
func (x *extractor) callable(n *sitter.Node, kind facts.DeclKind, name string, sc *scope) *declNode {
	tps := x.typeParams(n)
	inner := sc.withTypeParams(tps)
	d := x.node(n, inner)
	d.raw = facts.RawDeclaration{
		Node:           d,
		Kind:           kind,
		Name:           name,
		TypeParameters: tps,
		Parameters:     x.params(n.ChildByFieldName("parameters"), inner),
	}
	ret := n.ChildByFieldName("return_type")
	if ret == nil {
		ret = n.ChildByFieldName("type")
	}
	d.typeNode = unwrapAnnotation(ret)
	d.missing = "void"
	return d
}

func (x *extractor) params(n *sitter.Node, sc *scope) []facts.Parameter {
	var out []facts.Parameter
	for _, p := range formalParameters(x.file, n) {
		out = append(out, facts.Parameter{
			Node:     &paramNode{file: x.file, loc: p.loc, typeNode: p.typeNode, scope: sc},
			Name:     p.name,
			Optional: p.optional,
			Rest:     p.rest,
		})
	}
	return out
}

func (x *extractor) typeParams(n *sitter.Node) []string {
	tp := n.ChildByFieldName("type_parameters")
	if tp == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(tp.NamedChildCount()); i++ {
		p := tp.NamedChild(i)
		if p.Type() != "type_parameter" {
			continue
		}
		if name := p.ChildByFieldName("name"); name != nil {
			out = append(out, x.text(name))
		}
	}
	return out
}

func (x *extractor) class(n, outer *sitter.Node, exported bool, sc *scope) *declNode {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	tps := x.typeParams(n)
	inner := sc.withTypeParams(tps)
	d := x.node(n, inner)
	d.exported = exported
	d.raw = facts.RawDeclaration{
		Node:           d,
		Kind:           facts.DeclClass,
		Name:           x.text(name),
		Doc:            x.doc(outer),
		TypeParameters: tps,
	}
	if n.Type() == "abstract_class_declaration" {
		d.raw.Flags |= model.FlagAbstract
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		h := n.NamedChild(i)
		if h.Type() != "class_heritage" {
			continue
		}
		for j := 0; j < int(h.NamedChildCount()); j++ {
			clause := h.NamedChild(j)
			switch clause.Type() {
			case "extends_clause":
				v := clause.ChildByFieldName("value")
				if v == nil {
					v = clause.NamedChild(0)
				}
				if v != nil {
					d.raw.Heritage = []facts.Node{x.heritage(v, inner)}
				}
			case "implements_clause":
				for k := 0; k < int(clause.NamedChildCount()); k++ {
					d.raw.Implements = append(d.raw.Implements, x.heritage(clause.NamedChild(k), inner))
				}
			}
		}
	}

	if body := n.ChildByFieldName("body"); body != nil {
		d.raw.Members = x.classMembers(body, inner)
	}
	x.src.register(d.raw.Name, sc.ns, sc, d)
	return d
}

func (x *extractor) heritage(n *sitter.Node, sc *scope) *heritageNode {
	return &heritageNode{file: x.file, loc: location(x.file, n), node: n, scope: sc}
}

func (x *extractor) classMembers(body *sitter.Node, sc *scope) []facts.Node {
	var members []*declNode
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		switch c.Type() {
		case "public_field_definition":
			name, ok := x.memberName(c)
			if !ok {
				continue
			}
			d := x.member(c, x.node(c, sc), facts.DeclVariable, name)
			d.typeNode = unwrapAnnotation(c.ChildByFieldName("type"))
			d.missing = "any"
			members = append(members, d)
		case "method_definition", "method_signature", "abstract_method_signature":
			name, ok := x.memberName(c)
			if !ok {
				continue
			}
			mods := x.modifiers(c)
			if mods.setter {
				continue
			}
			if mods.getter {
				// A getter surfaces as a property of its return type.
				d := x.member(c, x.node(c, sc), facts.DeclVariable, name)
				d.typeNode = unwrapAnnotation(c.ChildByFieldName("return_type"))
				d.missing = "any"
				members = append(members, d)
				continue
			}
			kind := facts.DeclFunction
			if name == "constructor" {
				kind = facts.DeclConstructor
			}
			d := x.callable(c, kind, name, sc)
			x.member(c, d, kind, name)
			d.impl = c.Type() == "method_definition"
			if c.Type() == "abstract_method_signature" {
				d.raw.Flags |= model.FlagAbstract
			}
			members = append(members, d)
		}
	}
	return memberNodes(dropImplementations(members))
}

func (x *extractor) iface(n, outer *sitter.Node, exported bool, sc *scope) *declNode {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	tps := x.typeParams(n)
	inner := sc.withTypeParams(tps)
	d := x.node(n, inner)
	d.exported = exported
	d.raw = facts.RawDeclaration{
		Node:           d,
		Kind:           facts.DeclInterface,
		Name:           x.text(name),
		Doc:            x.doc(outer),
		TypeParameters: tps,
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "extends_type_clause" {
			continue
		}
		for j := 0; j < int(c.NamedChildCount()); j++ {
			d.raw.Heritage = append(d.raw.Heritage, x.heritage(c.NamedChild(j), inner))
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		d.raw.Members = x.interfaceMembers(body, inner)
	}
	x.src.register(d.raw.Name, sc.ns, sc, d)
	return d
}

func (x *extractor) interfaceMembers(body *sitter.Node, sc *scope) []facts.Node {
	var members []*declNode
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		switch c.Type() {
		case "property_signature":
			name, ok := x.memberName(c)
			if !ok {
				continue
			}
			d := x.member(c, x.node(c, sc), facts.DeclVariable, name)
			d.typeNode = unwrapAnnotation(c.ChildByFieldName("type"))
			d.missing = "any"
			members = append(members, d)
		case "method_signature":
			name, ok := x.memberName(c)
			if !ok {
				continue
			}
			d := x.callable(c, facts.DeclFunction, name, sc)
			members = append(members, x.member(c, d, facts.DeclFunction, name))
		case "construct_signature":
			d := x.callable(c, facts.DeclConstructor, "", sc)
			members = append(members, x.member(c, d, facts.DeclConstructor, ""))
		}
	}
	return memberNodes(members)
}

// member fills the common fields of a class or interface member into d.
func (x *extractor) member(c *sitter.Node, d *declNode, kind facts.DeclKind, name string) *declNode {
	mods := x.modifiers(c)
	d.raw.Node = d
	d.raw.Kind = kind
	d.raw.Name = name
	d.raw.Doc = x.doc(c)
	d.raw.Flags |= mods.flags
	d.raw.Private = mods.private
	return d
}

type modifiers struct {
	flags   model.Flags
	private bool
	getter  bool
	setter  bool
}

// modifiers reads the keyword tokens attached directly to a member.
func (x *extractor) modifiers(c *sitter.Node) modifiers {
	var m modifiers
	for i := 0; i < int(c.ChildCount()); i++ {
		tok := c.Child(i)
		switch tok.Type() {
		case "static":
			m.flags |= model.FlagStatic
		case "abstract":
			m.flags |= model.FlagAbstract
		case "readonly":
			m.flags |= model.FlagConst
		case "?":
			m.flags |= model.FlagOptional
		case "get":
			m.getter = true
		case "set":
			m.setter = true
		case "accessibility_modifier":
			switch x.text(tok) {
			case "private":
				m.private = true
			case "protected":
				m.flags |= model.FlagProtected
			}
		case "private_property_identifier":
			m.private = true
		}
	}
	return m
}

func (x *extractor) memberName(c *sitter.Node) (string, bool) {
	n := c.ChildByFieldName("name")
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case "property_identifier", "identifier", "private_property_identifier", "type_identifier", "number":
		return x.text(n), true
	case "string":
		s, err := strconv.Unquote(x.text(n))
		if err != nil {
			return strings.Trim(x.text(n), `"'`), true
		}
		return s, true
	}
	return "", false
}

// namespace builds a namespace node. A dotted name `A.B` becomes A holding
// an exported B.
func (x *extractor) namespace(n, outer *sitter.Node, exported bool, sc *scope) *declNode {
	name := n.ChildByFieldName("name")
	if name == nil || name.Type() == "string" {
		// Ambient external modules (`declare module "x"`) are not namespaces.
		return nil
	}
	parts := strings.Split(strings.ReplaceAll(x.text(name), " ", ""), ".")
	return x.namespaceChain(parts, n, outer, exported, sc, n.ChildByFieldName("body"))
}

func (x *extractor) namespaceChain(parts []string, n, outer *sitter.Node, exported bool, sc *scope, body *sitter.Node) *declNode {
	d := x.node(n, sc)
	d.exported = exported
	d.raw = facts.RawDeclaration{Node: d, Kind: facts.DeclNamespace, Name: parts[0]}
	if outer != nil {
		d.raw.Doc = x.doc(outer)
	}
	sym := x.src.register(parts[0], sc.ns, sc, d)
	inner := &scope{ns: sym, parent: sc}
	switch {
	case len(parts) > 1:
		d.raw.Members = []facts.Node{x.namespaceChain(parts[1:], n, nil, true, inner, body)}
	case body != nil:
		children := x.statements(body, inner)
		if x.ambient > 0 {
			// Members of an ambient namespace are exported without the keyword.
			for _, c := range children {
				c.exported = true
			}
		}
		d.raw.Members = memberNodes(children)
	}
	return d
}

func (x *extractor) alias(n *sitter.Node, sc *scope) {
	name := n.ChildByFieldName("name")
	value := n.ChildByFieldName("value")
	if name == nil || value == nil {
		return
	}
	qname := x.text(name)
	if sc.ns != nil {
		qname = sc.ns.qname + "." + qname
	}
	x.src.aliases[qname] = &alias{node: value, file: x.file, scope: sc.withTypeParams(x.typeParams(n))}
}

// doc returns the comment immediately preceding n, joining a run of
// adjacent line comments.
func (x *extractor) doc(n *sitter.Node) string {
	prev := n.PrevSibling()
	if prev == nil || prev.Type() != "comment" || n.StartPoint().Row-prev.EndPoint().Row > 1 {
		return ""
	}
	text := x.text(prev)
	if !strings.HasPrefix(text, "//") {
		return text
	}
	lines := []string{text}
	row := prev.StartPoint().Row
	for p := prev.PrevSibling(); p != nil && p.Type() == "comment"; p = p.PrevSibling() {
		t := x.text(p)
		if !strings.HasPrefix(t, "//") || row-p.EndPoint().Row != 1 {
			break
		}
		lines = append([]string{t}, lines...)
		row = p.StartPoint().Row
	}
	return strings.Join(lines, "\n")
}

// dropImplementations removes function bodies that follow overload
// signatures of the same name; only the signatures are public.
func dropImplementations(decls []*declNode) []*declNode {
	signed := make(map[string]bool)
	for _, d := range decls {
		if isCallableKind(d.raw.Kind) && !d.impl {
			signed[d.raw.Name] = true
		}
	}
	out := decls[:0]
	for _, d := range decls {
		if d.impl && signed[d.raw.Name] {
			if d.sym != nil {
				d.sym.remove(d)
			}
			continue
		}
		out = append(out, d)
	}
	return out
}

func isCallableKind(k facts.DeclKind) bool {
	return k == facts.DeclFunction || k == facts.DeclConstructor
}

func memberNodes(decls []*declNode) []facts.Node {
	out := make([]facts.Node, 0, len(decls))
	for _, d := range decls {
		out = append(out, d)
	}
	return out
}

func unwrapAnnotation(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "type_annotation" {
		return n.NamedChild(0)
	}
	return n
}

// rawParam is one formal parameter as written.
type rawParam struct {
	name     string
	optional bool
	rest     bool
	typeNode *sitter.Node
	loc      model.Location
}

func formalParameters(pf *parsedFile, n *sitter.Node) []rawParam {
	if n == nil {
		return nil
	}
	var out []rawParam
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "required_parameter" && c.Type() != "optional_parameter" {
			continue
		}
		pat := c.ChildByFieldName("pattern")
		if pat == nil || pat.Type() == "this" {
			continue
		}
		p := rawParam{
			optional: c.Type() == "optional_parameter" || c.ChildByFieldName("value") != nil,
			typeNode: unwrapAnnotation(c.ChildByFieldName("type")),
			loc:      location(pf, c),
		}
		switch pat.Type() {
		case "rest_pattern":
			p.rest = true
			p.name = strings.TrimPrefix(pat.Content(pf.src), "...")
		case "identifier":
			p.name = pat.Content(pf.src)
		default:
			p.name = "arg" + strconv.Itoa(len(out))
		}
		out = append(out, p)
	}
	return out
}
