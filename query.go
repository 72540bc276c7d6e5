package bindgen

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jward/bindgen/internal/model"
)

// ErrNotFound is returned when a qualified name names no declaration.
var ErrNotFound = errors.New("bindgen: declaration not found")

// QueryBuilder answers questions about a resolved module.
type QueryBuilder struct {
	m *model.Module
}

// Query returns a QueryBuilder over m.
func Query(m *model.Module) *QueryBuilder {
	return &QueryBuilder{m: m}
}

// Lookup returns the declaration with the given qualified name.
func (q *QueryBuilder) Lookup(qname string) (Declaration, error) {
	d, ok := q.m.Lookup(qname)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, qname)
	}
	return d, nil
}

// Dependencies lists the qualified names of the declarations referenced by
// the type slots of qname and everything below it, sorted and deduplicated.
// References to qname's own subtree are included.
func (q *QueryBuilder) Dependencies(qname string) ([]string, error) {
	d, err := q.Lookup(qname)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	model.Walk(d, func(n model.Declaration) {
		for _, id := range targets(n) {
			seen[q.m.QualifiedName(id)] = true
		}
	})
	return sortedKeys(seen), nil
}

// Dependents lists the qualified names of declarations whose own type
// slots reference qname, sorted.
func (q *QueryBuilder) Dependents(qname string) ([]string, error) {
	d, err := q.Lookup(qname)
	if err != nil {
		return nil, err
	}
	want := d.Common().ID
	seen := map[string]bool{}
	model.WalkModule(q.m, func(n model.Declaration) {
		for _, id := range targets(n) {
			if id == want {
				seen[q.m.QualifiedName(n.Common().ID)] = true
			}
		}
	})
	return sortedKeys(seen), nil
}

// targets returns the arena IDs bound by d's own type slots.
func targets(d model.Declaration) []int {
	var ids []int
	model.TypeSlots(d, func(slot *model.Type) {
		if dt, ok := (*slot).(*model.DeclaredType); ok && dt.Resolved() {
			ids = append(ids, dt.Target)
		}
	})
	return ids
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Summary holds module-wide counts.
type Summary struct {
	Module       string         `json:"module"`
	Files        int            `json:"files"`
	Declarations int            `json:"declarations"`
	TopLevel     int            `json:"top_level"`
	ByKind       map[string]int `json:"by_kind"`
}

// Summary counts the module's declarations by kind.
func (q *QueryBuilder) Summary() Summary {
	s := Summary{
		Module:       q.m.Name,
		Files:        len(q.m.Files),
		Declarations: q.m.Len(),
		ByKind:       map[string]int{},
	}
	for _, f := range q.m.Files {
		s.TopLevel += len(f.Declarations)
	}
	model.WalkModule(q.m, func(d model.Declaration) {
		s.ByKind[d.Kind().String()]++
	})
	return s
}
