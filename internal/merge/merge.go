// Package merge folds every raw declaration of one qualified name into a
// single canonical declaration.
//
// The fold starts from the main declaration (first class, else first
// non-namespace, else first occurrence) and combines the rest into it in
// source order:
//
//	existing   incoming   result
//	Interface  Interface  Interface, members unioned
//	Class      Interface  Class, missing members appended abstract
//	Class      Namespace  Class, namespace members appended static
//	Namespace  Namespace  Namespace, same-name children merged recursively
//
// Literal duplicates of any kind collapse. Functions (or constructors) that
// share a name are an overload set and keep one node per distinct
// signature. Every other pairing is a merge conflict and the name gets no
// canonical node.
package merge

import (
	"github.com/jward/bindgen/internal/diag"
	"github.com/jward/bindgen/internal/model"
)

// Merge returns the canonical declaration for decls, all of which share
// qname. It reports into d and returns false on a merge conflict. Members of
// the result are deduplicated and have their optional-parameter overloads
// materialized.
func Merge(qname string, decls []model.Declaration, d *diag.Diagnostics) (model.Declaration, bool) {
	if len(decls) == 0 {
		return nil, false
	}
	m := &merger{diags: d}
	out, ok := m.merge(qname, decls)
	if !ok {
		return nil, false
	}
	finalize(out)
	return out, true
}

// MergeAll is Merge for a group that may be an overload set. A group made
// only of functions, or only of constructors, keeps every distinct
// signature in source order. Any other group folds to one declaration.
func MergeAll(qname string, decls []model.Declaration, d *diag.Diagnostics) ([]model.Declaration, bool) {
	if isOverloadSet(decls) {
		return Dedupe(decls), true
	}
	canon, ok := Merge(qname, decls, d)
	if !ok {
		return nil, false
	}
	return []model.Declaration{canon}, true
}

// isOverloadSet reports whether decls are two or more callables of one kind.
func isOverloadSet(decls []model.Declaration) bool {
	if len(decls) < 2 {
		return false
	}
	k := decls[0].Kind()
	if k != model.KindFunction && k != model.KindConstructor {
		return false
	}
	for _, d := range decls[1:] {
		if d.Kind() != k {
			return false
		}
	}
	return true
}

type merger struct {
	diags *diag.Diagnostics
}

// mainIndex picks the declaration that hosts single-valued metadata.
func mainIndex(decls []model.Declaration) int {
	for i, d := range decls {
		if d.Kind() == model.KindClass {
			return i
		}
	}
	for i, d := range decls {
		if d.Kind() != model.KindNamespace {
			return i
		}
	}
	return 0
}

func (m *merger) merge(qname string, decls []model.Declaration) (model.Declaration, bool) {
	mi := mainIndex(decls)
	canon := shallowCopy(decls[mi])
	origin := decls[mi]

	// Namespaces folded into a class are pre-merged among themselves so
	// clashes between them follow the namespace rule.
	var pendingNS, nsOrigin model.Declaration
	for i, in := range decls {
		if i == mi {
			continue
		}
		if canon.Kind() == model.KindClass && in.Kind() == model.KindNamespace {
			if pendingNS == nil {
				pendingNS, nsOrigin = shallowCopy(in), in
				continue
			}
			merged, ok := m.combine(qname, pendingNS, nsOrigin, in)
			if !ok {
				return nil, false
			}
			pendingNS = merged
			continue
		}
		merged, ok := m.combine(qname, canon, origin, in)
		if !ok {
			return nil, false
		}
		canon = merged
	}
	if pendingNS != nil {
		merged, ok := m.combine(qname, canon, origin, pendingNS)
		if !ok {
			return nil, false
		}
		canon = merged
	}
	return canon, true
}

// combine applies the merge table. origin is the raw declaration canon was
// started from, used for conflict locations.
func (m *merger) combine(qname string, canon, origin, in model.Declaration) (model.Declaration, bool) {
	switch existing := canon.(type) {
	case *model.Interface:
		if inc, ok := in.(*model.Interface); ok {
			existing.Members = m.unionMembers(qname, existing.Members, inc.Members)
			existing.Extends = appendMissingTypes(existing.Extends, inc.Extends)
			existing.Doc = firstNonEmpty(existing.Doc, inc.Doc)
			return existing, true
		}
	case *model.Class:
		switch inc := in.(type) {
		case *model.Interface:
			existing.Members = appendAbstract(existing.Members, inc.Members)
			return existing, true
		case *model.Namespace:
			existing.Members = appendStatic(existing.Members, inc.Members)
			return existing, true
		}
	case *model.Namespace:
		if inc, ok := in.(*model.Namespace); ok {
			members, ok := m.mergeChildren(qname, append(existing.Members, inc.Members...))
			if !ok {
				return nil, false
			}
			existing.Members = members
			existing.Doc = firstNonEmpty(existing.Doc, inc.Doc)
			return existing, true
		}
	}
	if canon.Kind() == in.Kind() && model.SignatureKey(canon) == model.SignatureKey(in) {
		return canon, true
	}
	m.diags.Report(diag.Diagnostic{
		Kind:     diag.MergeConflict,
		Name:     qname,
		Location: in.Common().Location,
		Related:  []model.Location{origin.Common().Location},
		Message: "cannot merge " + in.Kind().String() + " " + qname + " at " +
			in.Common().Location.String() + " with " + origin.Kind().String() +
			" declared at " + origin.Common().Location.String(),
	})
	return nil, false
}

// unionMembers adds incoming interface members that are not already
// present. A property redeclared with a different type keeps the first
// declaration and reports a member conflict.
func (m *merger) unionMembers(qname string, existing, incoming []model.Declaration) []model.Declaration {
	out := append([]model.Declaration(nil), existing...)
	for _, in := range incoming {
		key := model.SignatureKey(in)
		dup := false
		for _, e := range out {
			if model.SignatureKey(e) == key {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		if prev := findProperty(out, in.Common().Name); prev != nil && in.Kind() == model.KindVariable {
			m.diags.Report(diag.Diagnostic{
				Kind:     diag.MemberConflict,
				Name:     qname + "." + in.Common().Name,
				Location: in.Common().Location,
				Related:  []model.Location{prev.Common().Location},
				Message: "property " + qname + "." + in.Common().Name +
					" redeclared with a different type or optionality, keeping the declaration at " +
					prev.Common().Location.String(),
			})
			continue
		}
		out = append(out, in)
	}
	return out
}

func findProperty(members []model.Declaration, name string) model.Declaration {
	for _, m := range members {
		if m.Kind() == model.KindVariable && m.Common().Name == name {
			return m
		}
	}
	return nil
}

// appendAbstract appends interface members missing from a class, flagged
// abstract.
func appendAbstract(class, iface []model.Declaration) []model.Declaration {
	present := make(map[string]bool, len(class))
	for _, m := range class {
		present[model.OverloadKey(m)] = true
	}
	out := class
	for _, m := range iface {
		key := model.OverloadKey(m)
		if present[key] {
			continue
		}
		present[key] = true
		c := shallowCopy(m)
		c.Common().Flags |= model.FlagAbstract
		out = append(out, c)
	}
	return out
}

// appendStatic appends namespace children to a class as static members,
// after the class's own members, each side keeping its internal order.
func appendStatic(class, ns []model.Declaration) []model.Declaration {
	out := class
	for _, m := range ns {
		c := shallowCopy(m)
		c.Common().Flags |= model.FlagStatic
		out = append(out, c)
	}
	return out
}

// mergeChildren groups namespace children by name in first-seen order and
// merges each group with the same table. Overload sets stay siblings and
// conflicting groups are dropped.
func (m *merger) mergeChildren(qname string, children []model.Declaration) ([]model.Declaration, bool) {
	var order []string
	groups := make(map[string][]model.Declaration)
	for _, c := range children {
		name := c.Common().Name
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], c)
	}
	out := make([]model.Declaration, 0, len(order))
	for _, name := range order {
		g := groups[name]
		if len(g) == 1 || isOverloadSet(g) {
			out = append(out, g...)
			continue
		}
		merged, ok := m.merge(qname+"."+name, g)
		if !ok {
			continue
		}
		out = append(out, merged)
	}
	return out, true
}

func appendMissingTypes(existing, incoming []model.Type) []model.Type {
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[model.TypeKey(t)] = true
	}
	for _, t := range incoming {
		if k := model.TypeKey(t); !seen[k] {
			seen[k] = true
			existing = append(existing, t)
		}
	}
	return existing
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// shallowCopy copies a declaration's own fields and member slice so the
// fold never mutates the raw declarations it was given.
func shallowCopy(d model.Declaration) model.Declaration {
	switch d := d.(type) {
	case *model.Variable:
		c := *d
		return &c
	case *model.Function:
		c := *d
		return &c
	case *model.Constructor:
		c := *d
		return &c
	case *model.Class:
		c := *d
		c.Members = append([]model.Declaration(nil), d.Members...)
		c.Implements = append([]model.Type(nil), d.Implements...)
		return &c
	case *model.Interface:
		c := *d
		c.Members = append([]model.Declaration(nil), d.Members...)
		c.Extends = append([]model.Type(nil), d.Extends...)
		return &c
	case *model.Namespace:
		c := *d
		c.Members = append([]model.Declaration(nil), d.Members...)
		return &c
	}
	return d
}

// finalize dedupes literal duplicates and materializes overloads in every
// member list below d.
func finalize(d model.Declaration) {
	c, ok := d.(model.Container)
	if !ok {
		return
	}
	members := c.MemberList()
	*members = MaterializeOverloads(Dedupe(*members))
	for _, mem := range *members {
		finalize(mem)
	}
}

// Dedupe drops declarations whose full signature repeats an earlier one.
func Dedupe(decls []model.Declaration) []model.Declaration {
	seen := make(map[string]bool, len(decls))
	out := decls[:0:0]
	for _, d := range decls {
		k := model.SignatureKey(d)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}
