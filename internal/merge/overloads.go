package merge

import "github.com/jward/bindgen/internal/model"

// MaterializeOverloads expands every function or constructor in decls whose
// trailing parameters are optional. For parameters p[0..n) with p[k..n)
// optional, one sibling per arity n-1 down to k is inserted right after the
// original. An arity is skipped when a sibling with the same kind, name and
// exact parameter-type prefix already exists anywhere in the list, or was
// synthesized earlier.
func MaterializeOverloads(decls []model.Declaration) []model.Declaration {
	existing := make(map[string]bool, len(decls))
	for _, d := range decls {
		if _, ok := d.(model.Callable); ok {
			existing[model.OverloadKey(d)] = true
		}
	}

	out := make([]model.Declaration, 0, len(decls))
	for _, d := range decls {
		out = append(out, d)
		c, ok := d.(model.Callable)
		if !ok {
			continue
		}
		params := c.Sig().Parameters
		k := optionalSuffixStart(params)
		for arity := len(params) - 1; arity >= k; arity-- {
			syn := truncate(c, arity)
			key := model.OverloadKey(syn)
			if existing[key] {
				continue
			}
			existing[key] = true
			out = append(out, syn)
		}
	}
	return out
}

// optionalSuffixStart returns the index of the first parameter of the
// trailing run of optional (or rest) parameters, or len(params) when the
// last parameter is required.
func optionalSuffixStart(params []model.Parameter) int {
	k := len(params)
	for k > 0 && (params[k-1].Optional || params[k-1].Rest) {
		k--
	}
	return k
}

// truncate copies c keeping only the first arity parameters.
func truncate(c model.Callable, arity int) model.Declaration {
	sig := model.Signature{
		Parameters: model.CloneParameters(c.Sig().Parameters[:arity]),
		Return:     model.CloneType(c.Sig().Return),
	}
	for _, t := range c.Sig().Throws {
		sig.Throws = append(sig.Throws, model.CloneType(t))
	}
	base := *c.Common()
	tps := append([]string(nil), c.TypeParams()...)
	switch c.(type) {
	case *model.Constructor:
		base.Name = ""
		return &model.Constructor{Base: base, TypeParameters: tps, Signature: sig}
	default:
		return &model.Function{Base: base, TypeParameters: tps, Signature: sig}
	}
}
