// Package typeres reduces raw type facts to the closed model.Type set.
//
// Rules apply in priority order: primitive keywords, nominal built-ins,
// arrays, callables, user references, two-armed nullable unions. Anything
// else is erased to Any with an unsupported-type diagnostic; the caller
// keeps going.
package typeres

import (
	"github.com/jward/bindgen/internal/diag"
	"github.com/jward/bindgen/internal/facts"
	"github.com/jward/bindgen/internal/model"
)

// ReferenceFunc is called for every reference to a user declaration. It
// returns the qualified name the Declared type is keyed by, or "" when the
// reference cannot bind. sym is nil when the frontend could not find a
// declaring symbol.
type ReferenceFunc func(sym facts.Symbol, name string) string

// Resolver maps type facts to model types. It is not safe for concurrent use.
type Resolver struct {
	diags     *diag.Diagnostics
	reference ReferenceFunc
}

// New returns a Resolver reporting into d. ref may be nil, in which case
// references are keyed by their written name.
func New(d *diag.Diagnostics, ref ReferenceFunc) *Resolver {
	if ref == nil {
		ref = func(_ facts.Symbol, name string) string { return name }
	}
	return &Resolver{diags: d, reference: ref}
}

var keywords = map[string]model.TypeKind{
	"boolean": model.TypeBoolean,
	"number":  model.TypeNumber,
	"string":  model.TypeString,
	"void":    model.TypeVoid,
	// The "any object" markers.
	"any":     model.TypeAny,
	"unknown": model.TypeAny,
	"object":  model.TypeAny,
}

var builtins = map[string]model.TypeKind{
	"Error":  model.TypeError,
	"Date":   model.TypeDate,
	"Object": model.TypeAny,
}

var arrayNames = map[string]bool{
	"Array":         true,
	"ReadonlyArray": true,
}

// IsBuiltin reports whether name is reduced without a user declaration.
func IsBuiltin(name string) bool {
	return builtins[name] != 0 || arrayNames[name]
}

// Resolve returns a fresh Type for one reference site.
func (r *Resolver) Resolve(f facts.TypeFact) model.Type {
	switch f.Kind {
	case facts.FactKeyword:
		if k, ok := keywords[f.Name]; ok {
			return model.NewPrimitive(k)
		}
	case facts.FactReference:
		if k, ok := builtins[f.Name]; ok {
			return model.NewPrimitive(k)
		}
		if arrayNames[f.Name] {
			return r.array(f.Args)
		}
		name := r.reference(f.Symbol, f.Name)
		if name == "" {
			r.diags.Reportf(diag.UnresolvedType, f.Name, f.Location,
				"unresolved type %s, erased to any", f.Name)
			return &model.AnyType{}
		}
		return &model.DeclaredType{Name: name, Site: f.Location}
	case facts.FactArray:
		return r.array(f.Args)
	case facts.FactReadonly:
		if len(f.Args) == 1 && isArrayFact(f.Args[0]) {
			return r.Resolve(f.Args[0])
		}
	case facts.FactFunction:
		return &model.FunctionType{Signature: r.signature(f)}
	case facts.FactUnion:
		if t, ok := r.nullable(f); ok {
			return t
		}
	}
	return r.unsupported(f)
}

func isArrayFact(f facts.TypeFact) bool {
	return f.Kind == facts.FactArray || (f.Kind == facts.FactReference && arrayNames[f.Name])
}

func (r *Resolver) array(args []facts.TypeFact) model.Type {
	if len(args) == 0 {
		return &model.ArrayType{Element: &model.AnyType{}}
	}
	return &model.ArrayType{Element: r.Resolve(args[0])}
}

func (r *Resolver) signature(f facts.TypeFact) model.Signature {
	var sig model.Signature
	for _, p := range f.Params {
		sig.Parameters = append(sig.Parameters, model.Parameter{
			Name:     p.Name,
			Type:     r.Resolve(p.Type),
			Optional: p.Optional || p.Rest,
			Rest:     p.Rest,
		})
	}
	if f.Return != nil {
		sig.Return = r.Resolve(*f.Return)
	} else {
		sig.Return = &model.VoidType{}
	}
	return sig
}

// nullable handles `T | null` and `T | undefined`.
func (r *Resolver) nullable(f facts.TypeFact) (model.Type, bool) {
	arms := flattenUnion(f)
	if len(arms) != 2 {
		return nil, false
	}
	a, b := isNullFact(arms[0]), isNullFact(arms[1])
	if a == b {
		return nil, false
	}
	other := arms[0]
	if a {
		other = arms[1]
	}
	t := r.Resolve(other)
	t.SetOptional(true)
	return t, true
}

func flattenUnion(f facts.TypeFact) []facts.TypeFact {
	if f.Kind != facts.FactUnion {
		return []facts.TypeFact{f}
	}
	var out []facts.TypeFact
	for _, a := range f.Args {
		out = append(out, flattenUnion(a)...)
	}
	return out
}

func isNullFact(f facts.TypeFact) bool {
	if f.Kind == facts.FactNull {
		return true
	}
	return f.Kind == facts.FactKeyword && (f.Name == "null" || f.Name == "undefined")
}

func (r *Resolver) unsupported(f facts.TypeFact) model.Type {
	shape := describe(f)
	r.diags.Reportf(diag.UnsupportedType, shape, f.Location,
		"unsupported type construct %s, erased to any", shape)
	return &model.AnyType{}
}

func describe(f facts.TypeFact) string {
	if f.Name != "" && f.Kind != facts.FactUnion && f.Kind != facts.FactIntersection {
		return f.Kind.String() + " " + f.Name
	}
	return f.Kind.String()
}

// LookupFunc resolves a type name written in a doc comment.
type LookupFunc func(name string) facts.TypeFact

// Throws extracts thrown types from the @throws (or @exception) tags of c
// in document order. An untyped tag yields Error; a name that resolves to
// nothing yields Any. Duplicates by type identity are dropped.
func (r *Resolver) Throws(c facts.Comment, lookup LookupFunc) []model.Type {
	var out []model.Type
	seen := make(map[string]bool)
	for _, tag := range c.Tags {
		if tag.Name != "throws" && tag.Name != "exception" {
			continue
		}
		var t model.Type
		switch {
		case tag.Type == "":
			t = &model.ErrorType{}
		default:
			f := lookup(tag.Type)
			if f.Kind == facts.FactReference && f.Symbol == nil && !IsBuiltin(f.Name) {
				t = &model.AnyType{}
			} else {
				t = r.Resolve(f)
			}
		}
		key := model.TypeKey(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
