package frontend

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/bindgen/internal/facts"
)

// maxAliasDepth bounds alias expansion so self-referential aliases
// terminate.
const maxAliasDepth = 16

func (s *Source) typeFact(pf *parsedFile, n *sitter.Node, sc *scope) facts.TypeFact {
	return s.convert(pf, n, sc, 0)
}

// convert maps one tree-sitter type node to a raw type fact.
func (s *Source) convert(pf *parsedFile, n *sitter.Node, sc *scope, depth int) facts.TypeFact {
	loc := location(pf, n)
	text := n.Content(pf.src)

	switch n.Type() {
	case "type_annotation", "parenthesized_type":
		if c := n.NamedChild(0); c != nil {
			return s.convert(pf, c, sc, depth)
		}
	case "predefined_type":
		return facts.TypeFact{Kind: facts.FactKeyword, Name: text, Location: loc}
	case "type_identifier", "nested_type_identifier", "identifier", "member_expression":
		return s.reference(pf, n, text, nil, sc, depth)
	case "generic_type":
		name := n.ChildByFieldName("name")
		if name == nil {
			name = n.NamedChild(0)
		}
		var args []facts.TypeFact
		if ta := n.ChildByFieldName("type_arguments"); ta != nil {
			for i := 0; i < int(ta.NamedChildCount()); i++ {
				args = append(args, s.convert(pf, ta.NamedChild(i), sc, depth))
			}
		}
		return s.reference(pf, n, name.Content(pf.src), args, sc, depth)
	case "array_type":
		return facts.TypeFact{Kind: facts.FactArray, Args: s.children(pf, n, sc, depth), Location: loc}
	case "readonly_type":
		return facts.TypeFact{Kind: facts.FactReadonly, Args: s.children(pf, n, sc, depth), Location: loc}
	case "function_type":
		return s.function(pf, n, sc, depth)
	case "union_type":
		return facts.TypeFact{Kind: facts.FactUnion, Args: s.children(pf, n, sc, depth), Location: loc}
	case "intersection_type":
		return facts.TypeFact{Kind: facts.FactIntersection, Args: s.children(pf, n, sc, depth), Location: loc}
	case "literal_type":
		if c := n.NamedChild(0); c != nil && (c.Type() == "null" || c.Type() == "undefined") {
			return facts.TypeFact{Kind: facts.FactNull, Name: c.Type(), Location: loc}
		}
		return facts.TypeFact{Kind: facts.FactLiteral, Name: text, Location: loc}
	case "null", "undefined":
		return facts.TypeFact{Kind: facts.FactNull, Name: n.Type(), Location: loc}
	case "type_predicate", "type_predicate_annotation":
		return facts.TypeFact{Kind: facts.FactKeyword, Name: "boolean", Location: loc}
	case "asserts", "asserts_annotation":
		return facts.TypeFact{Kind: facts.FactKeyword, Name: "void", Location: loc}
	case "object_type":
		return facts.TypeFact{Kind: facts.FactObject, Location: loc}
	case "tuple_type":
		return facts.TypeFact{Kind: facts.FactTuple, Location: loc}
	}
	return facts.TypeFact{Kind: facts.FactOther, Name: n.Type(), Location: loc}
}

func (s *Source) children(pf *parsedFile, n *sitter.Node, sc *scope, depth int) []facts.TypeFact {
	var out []facts.TypeFact
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, s.convert(pf, n.NamedChild(i), sc, depth))
	}
	return out
}

func (s *Source) function(pf *parsedFile, n *sitter.Node, sc *scope, depth int) facts.TypeFact {
	f := facts.TypeFact{Kind: facts.FactFunction, Location: location(pf, n)}
	for _, p := range formalParameters(pf, n.ChildByFieldName("parameters")) {
		param := facts.ParamFact{Name: p.name, Optional: p.optional, Rest: p.rest}
		if p.typeNode != nil {
			param.Type = s.convert(pf, p.typeNode, sc, depth)
		} else {
			param.Type = facts.TypeFact{Kind: facts.FactKeyword, Name: "any", Location: p.loc}
		}
		f.Params = append(f.Params, param)
	}
	if ret := unwrapAnnotation(n.ChildByFieldName("return_type")); ret != nil {
		r := s.convert(pf, ret, sc, depth)
		f.Return = &r
	}
	return f
}

// reference resolves a written type name: null-likes, type parameters and
// aliases first, then the symbol table.
func (s *Source) reference(pf *parsedFile, n *sitter.Node, name string, args []facts.TypeFact, sc *scope, depth int) facts.TypeFact {
	loc := location(pf, n)
	name = strings.Join(strings.Fields(name), "")
	switch name {
	case "null", "undefined":
		return facts.TypeFact{Kind: facts.FactNull, Name: name, Location: loc}
	}
	if !strings.Contains(name, ".") && sc.isTypeParam(name) {
		return facts.TypeFact{Kind: facts.FactTypeParameter, Name: name, Location: loc}
	}
	if a := s.lookupAlias(name, sc); a != nil && depth < maxAliasDepth {
		f := s.convert(a.file, a.node, a.scope, depth+1)
		f.Location = loc
		return f
	}
	f := facts.TypeFact{Kind: facts.FactReference, Name: name, Args: args, Location: loc}
	if sym := s.lookup(name, sc); sym != nil {
		f.Symbol = sym
	}
	return f
}

func (s *Source) heritageFact(h *heritageNode) facts.TypeFact {
	switch h.node.Type() {
	case "identifier", "member_expression", "type_identifier", "nested_type_identifier":
		return s.reference(h.file, h.node, h.node.Content(h.file.src), nil, h.scope, 0)
	}
	return s.convert(h.file, h.node, h.scope, 0)
}
