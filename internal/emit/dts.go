// Package emit renders a resolved module as TypeScript declaration text.
// It is the built-in emitter; script emitters live in internal/runtime.
package emit

import (
	"strings"

	"github.com/jward/bindgen/internal/model"
)

// context is the kind of scope a declaration is printed in.
type context int

const (
	topLevel context = iota
	inClass
	inInterface
	inNamespace
)

// Printer renders declarations and types. It implements model.Emitter, so
// a new declaration or type variant fails to compile here until handled.
type Printer struct {
	Indent string

	depth int
	ctx   context
}

var _ model.Emitter[string] = (*Printer)(nil)

// NewPrinter returns a Printer indenting by four spaces.
func NewPrinter() *Printer {
	return &Printer{Indent: "    "}
}

// Module renders every file of m, each introduced by a path comment.
func (p *Printer) Module(m *model.Module) string {
	var b strings.Builder
	for i, f := range m.Files {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("// " + f.Path + "\n")
		b.WriteString(p.File(f))
	}
	return b.String()
}

// File renders the declarations of one source file.
func (p *Printer) File(f *model.SourceFile) string {
	var b strings.Builder
	for _, d := range f.Declarations {
		b.WriteString(p.Declaration(d))
	}
	return b.String()
}

// Declaration renders d at top level.
func (p *Printer) Declaration(d model.Declaration) string {
	p.depth, p.ctx = 0, topLevel
	return model.VisitDeclaration[string](d, p)
}

// Type renders a single type.
func (p *Printer) Type(t model.Type) string {
	return model.VisitType[string](t, p)
}

func (p *Printer) pad() string { return strings.Repeat(p.Indent, p.depth) }

// doc renders d's doc comment on its own lines at the current depth.
func (p *Printer) doc(b *model.Base) string {
	if b.Doc == "" {
		return ""
	}
	var out strings.Builder
	for _, line := range strings.Split(b.Doc, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "*") {
			line = " " + line
		}
		out.WriteString(p.pad() + line + "\n")
	}
	return out.String()
}

// modifiers renders the leading keywords for d in the current context.
func (p *Printer) modifiers(b *model.Base) string {
	var mods []string
	switch p.ctx {
	case topLevel:
		mods = append(mods, "declare")
	case inNamespace:
		mods = append(mods, "export")
	case inClass:
		if b.Flags.Has(model.FlagProtected) {
			mods = append(mods, "protected")
		}
		if b.Flags.Has(model.FlagStatic) {
			mods = append(mods, "static")
		}
	}
	if p.ctx != inInterface && b.Flags.Has(model.FlagAbstract) {
		mods = append(mods, "abstract")
	}
	if len(mods) == 0 {
		return ""
	}
	return strings.Join(mods, " ") + " "
}

func (p *Printer) memberScope() bool { return p.ctx == inClass || p.ctx == inInterface }

func (p *Printer) optional(b *model.Base) string {
	if p.memberScope() && b.Flags.Has(model.FlagOptional) {
		return "?"
	}
	return ""
}

func typeParams(tps []string) string {
	if len(tps) == 0 {
		return ""
	}
	return "<" + strings.Join(tps, ", ") + ">"
}

func (p *Printer) params(ps []model.Parameter) string {
	parts := make([]string, 0, len(ps))
	for _, prm := range ps {
		s := prm.Name
		if prm.Rest {
			s = "..." + s
		} else if prm.Optional {
			s += "?"
		}
		parts = append(parts, s+": "+p.Type(prm.Type))
	}
	return strings.Join(parts, ", ")
}

func (p *Printer) VisitVariable(d *model.Variable) string {
	var kw string
	switch {
	case p.memberScope() && d.Flags.Has(model.FlagConst):
		kw = "readonly "
	case p.memberScope():
	case d.Flags.Has(model.FlagConst):
		kw = "const "
	default:
		kw = "let "
	}
	return p.doc(&d.Base) + p.pad() + p.modifiers(&d.Base) + kw + d.Name + p.optional(&d.Base) + ": " + p.Type(d.Type) + ";\n"
}

func (p *Printer) VisitFunction(d *model.Function) string {
	kw := "function "
	if p.memberScope() {
		kw = ""
	}
	return p.doc(&d.Base) + p.pad() + p.modifiers(&d.Base) + kw + d.Name + p.optional(&d.Base) +
		typeParams(d.TypeParameters) + "(" + p.params(d.Signature.Parameters) + "): " +
		p.Type(d.Signature.Return) + ";\n"
}

func (p *Printer) VisitConstructor(d *model.Constructor) string {
	if p.ctx == inInterface {
		return p.doc(&d.Base) + p.pad() + "new" + typeParams(d.TypeParameters) +
			"(" + p.params(d.Signature.Parameters) + "): " + p.Type(d.Signature.Return) + ";\n"
	}
	return p.doc(&d.Base) + p.pad() + p.modifiers(&d.Base) + "constructor(" + p.params(d.Signature.Parameters) + ");\n"
}

// body renders members one level deeper in ctx, restoring state after.
func (p *Printer) body(members []model.Declaration, ctx context) string {
	saved, savedCtx := p.depth, p.ctx
	p.depth++
	p.ctx = ctx
	var b strings.Builder
	for _, m := range members {
		b.WriteString(model.VisitDeclaration[string](m, p))
	}
	p.depth, p.ctx = saved, savedCtx
	return b.String()
}

func (p *Printer) VisitClass(d *model.Class) string {
	head := p.doc(&d.Base) + p.pad() + p.modifiers(&d.Base) + "class " + d.Name + typeParams(d.TypeParameters)
	if d.Superclass != nil {
		head += " extends " + p.Type(d.Superclass)
	}
	if len(d.Implements) > 0 {
		head += " implements " + p.typeList(d.Implements)
	}
	return head + " {\n" + p.body(d.Members, inClass) + p.pad() + "}\n"
}

func (p *Printer) VisitInterface(d *model.Interface) string {
	mods := ""
	if p.ctx == inNamespace {
		mods = "export "
	}
	head := p.doc(&d.Base) + p.pad() + mods + "interface " + d.Name + typeParams(d.TypeParameters)
	if len(d.Extends) > 0 {
		head += " extends " + p.typeList(d.Extends)
	}
	return head + " {\n" + p.body(d.Members, inInterface) + p.pad() + "}\n"
}

func (p *Printer) VisitNamespace(d *model.Namespace) string {
	return p.doc(&d.Base) + p.pad() + p.modifiers(&d.Base) + "namespace " + d.Name + " {\n" +
		p.body(d.Members, inNamespace) + p.pad() + "}\n"
}

func (p *Printer) typeList(ts []model.Type) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, p.Type(t))
	}
	return strings.Join(parts, ", ")
}

func withOptional(t model.Type, s string) string {
	if t.IsOptional() {
		return s + " | undefined"
	}
	return s
}

func (p *Printer) VisitAny(t *model.AnyType) string         { return withOptional(t, "any") }
func (p *Printer) VisitBoolean(t *model.BooleanType) string { return withOptional(t, "boolean") }
func (p *Printer) VisitNumber(t *model.NumberType) string   { return withOptional(t, "number") }
func (p *Printer) VisitString(t *model.StringType) string   { return withOptional(t, "string") }
func (p *Printer) VisitVoid(t *model.VoidType) string       { return withOptional(t, "void") }
func (p *Printer) VisitDate(t *model.DateType) string       { return withOptional(t, "Date") }
func (p *Printer) VisitError(t *model.ErrorType) string     { return withOptional(t, "Error") }

func (p *Printer) VisitArray(t *model.ArrayType) string {
	elem := p.Type(t.Element)
	if strings.ContainsAny(elem, " |=>") {
		elem = "(" + elem + ")"
	}
	return withOptional(t, elem+"[]")
}

func (p *Printer) VisitFunctionType(t *model.FunctionType) string {
	s := "(" + p.params(t.Signature.Parameters) + ") => " + p.Type(t.Signature.Return)
	if t.IsOptional() {
		return "(" + s + ") | undefined"
	}
	return s
}

func (p *Printer) VisitDeclared(t *model.DeclaredType) string { return withOptional(t, t.Name) }

// Signature renders the one-line head of d without doc, modifiers or body,
// for listings: "area(scale?: number): number", "class Circle extends Shape".
func (p *Printer) Signature(d model.Declaration) string {
	switch d := d.(type) {
	case *model.Variable:
		return d.Name + ": " + p.Type(d.Type)
	case *model.Function:
		return d.Name + typeParams(d.TypeParameters) + "(" + p.params(d.Signature.Parameters) + "): " + p.Type(d.Signature.Return)
	case *model.Constructor:
		return "constructor" + typeParams(d.TypeParameters) + "(" + p.params(d.Signature.Parameters) + ")"
	case *model.Class:
		s := "class " + d.Name + typeParams(d.TypeParameters)
		if d.Superclass != nil {
			s += " extends " + p.Type(d.Superclass)
		}
		if len(d.Implements) > 0 {
			s += " implements " + p.typeList(d.Implements)
		}
		return s
	case *model.Interface:
		s := "interface " + d.Name + typeParams(d.TypeParameters)
		if len(d.Extends) > 0 {
			s += " extends " + p.typeList(d.Extends)
		}
		return s
	case *model.Namespace:
		return "namespace " + d.Name
	}
	return ""
}
