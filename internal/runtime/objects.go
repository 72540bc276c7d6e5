package runtime

import (
	"github.com/risor-io/risor/object"

	"github.com/jward/bindgen/internal/diag"
	"github.com/jward/bindgen/internal/model"
)

// converter renders the canonical tree as Risor maps. Every map of a given
// variant carries the same keys, absent values being nil, so scripts can
// index without checking.
type converter struct {
	m *model.Module
}

var _ model.Emitter[object.Object] = converter{}

// ModuleObject converts m into the "module" global:
//
//	{name, files: [{path, declarations: [...]}]}
func ModuleObject(m *model.Module) object.Object {
	c := converter{m: m}
	files := []object.Object{}
	for _, f := range m.Files {
		files = append(files, object.NewMap(map[string]object.Object{
			"path":         object.NewString(f.Path),
			"declarations": c.declarations(f.Declarations),
		}))
	}
	return object.NewMap(map[string]object.Object{
		"name":  object.NewString(m.Name),
		"files": object.NewList(files),
	})
}

// DiagnosticsObject converts diags into a list of maps.
func DiagnosticsObject(diags *diag.Diagnostics) object.Object {
	items := []object.Object{}
	if diags == nil {
		return object.NewList(items)
	}
	for _, d := range diags.Items() {
		items = append(items, object.NewMap(map[string]object.Object{
			"kind":     object.NewString(string(d.Kind)),
			"severity": object.NewString(string(d.Severity)),
			"name":     object.NewString(d.Name),
			"message":  object.NewString(d.Message),
			"location": object.NewString(d.Location.String()),
		}))
	}
	return object.NewList(items)
}

func (c converter) declarations(ds []model.Declaration) object.Object {
	out := []object.Object{}
	for _, d := range ds {
		out = append(out, model.VisitDeclaration[object.Object](d, c))
	}
	return object.NewList(out)
}

// base fills the keys shared by every declaration.
func (c converter) base(d model.Declaration) map[string]object.Object {
	b := d.Common()
	flags := []object.Object{}
	for _, n := range b.Flags.Names() {
		flags = append(flags, object.NewString(n))
	}
	return map[string]object.Object{
		"kind":        object.NewString(d.Kind().String()),
		"id":          object.NewInt(int64(b.ID)),
		"parent_id":   object.NewInt(int64(b.ParentID)),
		"name":        object.NewString(b.Name),
		"qname":       object.NewString(c.m.QualifiedName(b.ID)),
		"doc":         object.NewString(b.Doc),
		"flags":       object.NewList(flags),
		"file":        object.NewString(b.File),
		"line":        object.NewInt(int64(b.Location.Line)),
		"col":         object.NewInt(int64(b.Location.Col)),
		"type":        object.Nil,
		"type_params": object.NewList([]object.Object{}),
		"params":      object.NewList([]object.Object{}),
		"return":      object.Nil,
		"throws":      object.NewList([]object.Object{}),
		"superclass":  object.Nil,
		"implements":  object.NewList([]object.Object{}),
		"extends":     object.NewList([]object.Object{}),
		"members":     object.NewList([]object.Object{}),
	}
}

func stringList(ss []string) object.Object {
	out := []object.Object{}
	for _, s := range ss {
		out = append(out, object.NewString(s))
	}
	return object.NewList(out)
}

func (c converter) typ(t model.Type) object.Object {
	if t == nil {
		return object.Nil
	}
	return model.VisitType[object.Object](t, c)
}

func (c converter) types(ts []model.Type) object.Object {
	out := []object.Object{}
	for _, t := range ts {
		out = append(out, c.typ(t))
	}
	return object.NewList(out)
}

func (c converter) params(ps []model.Parameter) object.Object {
	out := []object.Object{}
	for _, p := range ps {
		out = append(out, object.NewMap(map[string]object.Object{
			"name":     object.NewString(p.Name),
			"type":     c.typ(p.Type),
			"optional": object.NewBool(p.Optional),
			"rest":     object.NewBool(p.Rest),
		}))
	}
	return object.NewList(out)
}

func (c converter) callable(d model.Callable) object.Object {
	m := c.base(d)
	sig := d.Sig()
	m["type_params"] = stringList(d.TypeParams())
	m["params"] = c.params(sig.Parameters)
	m["return"] = c.typ(sig.Return)
	m["throws"] = c.types(sig.Throws)
	return object.NewMap(m)
}

func (c converter) VisitVariable(d *model.Variable) object.Object {
	m := c.base(d)
	m["type"] = c.typ(d.Type)
	return object.NewMap(m)
}

func (c converter) VisitFunction(d *model.Function) object.Object { return c.callable(d) }

func (c converter) VisitConstructor(d *model.Constructor) object.Object { return c.callable(d) }

func (c converter) VisitClass(d *model.Class) object.Object {
	m := c.base(d)
	m["type_params"] = stringList(d.TypeParameters)
	m["superclass"] = c.typ(d.Superclass)
	m["implements"] = c.types(d.Implements)
	m["members"] = c.declarations(d.Members)
	return object.NewMap(m)
}

func (c converter) VisitInterface(d *model.Interface) object.Object {
	m := c.base(d)
	m["type_params"] = stringList(d.TypeParameters)
	m["extends"] = c.types(d.Extends)
	m["members"] = c.declarations(d.Members)
	return object.NewMap(m)
}

func (c converter) VisitNamespace(d *model.Namespace) object.Object {
	m := c.base(d)
	m["members"] = c.declarations(d.Members)
	return object.NewMap(m)
}

// leaf returns the map shared by every type variant.
func leaf(t model.Type) map[string]object.Object {
	return map[string]object.Object{
		"kind":     object.NewString(t.Kind().String()),
		"optional": object.NewBool(t.IsOptional()),
		"element":  object.Nil,
		"params":   object.NewList([]object.Object{}),
		"return":   object.Nil,
		"name":     object.Nil,
		"target":   object.Nil,
	}
}

func (c converter) VisitAny(t *model.AnyType) object.Object         { return object.NewMap(leaf(t)) }
func (c converter) VisitBoolean(t *model.BooleanType) object.Object { return object.NewMap(leaf(t)) }
func (c converter) VisitNumber(t *model.NumberType) object.Object   { return object.NewMap(leaf(t)) }
func (c converter) VisitString(t *model.StringType) object.Object   { return object.NewMap(leaf(t)) }
func (c converter) VisitVoid(t *model.VoidType) object.Object       { return object.NewMap(leaf(t)) }
func (c converter) VisitDate(t *model.DateType) object.Object       { return object.NewMap(leaf(t)) }
func (c converter) VisitError(t *model.ErrorType) object.Object     { return object.NewMap(leaf(t)) }

func (c converter) VisitArray(t *model.ArrayType) object.Object {
	m := leaf(t)
	m["element"] = c.typ(t.Element)
	return object.NewMap(m)
}

func (c converter) VisitFunctionType(t *model.FunctionType) object.Object {
	m := leaf(t)
	m["params"] = c.params(t.Signature.Parameters)
	m["return"] = c.typ(t.Signature.Return)
	return object.NewMap(m)
}

// VisitDeclared exposes the bound declaration's qualified name as target.
func (c converter) VisitDeclared(t *model.DeclaredType) object.Object {
	m := leaf(t)
	m["name"] = object.NewString(t.Name)
	if t.Resolved() {
		m["target"] = object.NewString(c.m.QualifiedName(t.Target))
	}
	return object.NewMap(m)
}
