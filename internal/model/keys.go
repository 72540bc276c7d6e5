package model

import "strings"

// TypeKey renders a structural identity string for t. Two types with the
// same key are interchangeable for deduplication. Declared types are keyed
// by qualified name, not by binding.
func TypeKey(t Type) string {
	var b strings.Builder
	writeTypeKey(&b, t)
	return b.String()
}

func writeTypeKey(b *strings.Builder, t Type) {
	if t == nil {
		b.WriteString("void")
		return
	}
	switch t := t.(type) {
	case *ArrayType:
		b.WriteString("Array<")
		writeTypeKey(b, t.Element)
		b.WriteString(">")
	case *FunctionType:
		b.WriteString("(")
		writeParamKeys(b, t.Signature.Parameters)
		b.WriteString(")=>")
		writeTypeKey(b, t.Signature.Return)
	case *DeclaredType:
		b.WriteString("@")
		b.WriteString(t.Name)
	default:
		b.WriteString(t.Kind().String())
	}
	if t.IsOptional() {
		b.WriteString("?")
	}
}

func writeParamKeys(b *strings.Builder, params []Parameter) {
	for i, p := range params {
		if i > 0 {
			b.WriteString(",")
		}
		if p.Rest {
			b.WriteString("...")
		}
		writeTypeKey(b, p.Type)
		if p.Optional {
			b.WriteString("=")
		}
	}
}

// ParamTypesKey keys a parameter list by types only.
func ParamTypesKey(params []Parameter) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteString(",")
		}
		writeTypeKey(&b, p.Type)
	}
	return b.String()
}

// OverloadKey identifies a member for "already present" checks: kind and
// name, plus parameter types for callables.
func OverloadKey(d Declaration) string {
	key := d.Kind().String() + " " + d.Common().Name
	if c, ok := d.(Callable); ok {
		key += "(" + ParamTypesKey(c.Sig().Parameters) + ")"
	}
	return key
}

// SignatureKey identifies a declaration's full literal signature. Two
// declarations with equal keys are duplicates.
func SignatureKey(d Declaration) string {
	var b strings.Builder
	b.WriteString(d.Kind().String())
	b.WriteString(" ")
	b.WriteString(d.Common().Name)
	b.WriteString(" [")
	b.WriteString(d.Common().Flags.String())
	b.WriteString("]")
	switch d := d.(type) {
	case *Variable:
		b.WriteString(": ")
		writeTypeKey(&b, d.Type)
	case Callable:
		if tps := d.TypeParams(); len(tps) > 0 {
			b.WriteString("<" + strings.Join(tps, ",") + ">")
		}
		b.WriteString("(")
		writeParamKeys(&b, d.Sig().Parameters)
		b.WriteString("): ")
		writeTypeKey(&b, d.Sig().Return)
	case Container:
		b.WriteString(" {")
		for i, m := range *d.MemberList() {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(SignatureKey(m))
		}
		b.WriteString("}")
	}
	return b.String()
}

// CloneType returns a deep copy of t so that it can be placed at a new
// reference site.
func CloneType(t Type) Type {
	switch t := t.(type) {
	case nil:
		return nil
	case *ArrayType:
		return &ArrayType{Opt: t.Opt, Element: CloneType(t.Element)}
	case *FunctionType:
		return &FunctionType{Opt: t.Opt, Signature: CloneSignature(t.Signature)}
	case *DeclaredType:
		c := *t
		return &c
	default:
		c := NewPrimitive(t.Kind())
		c.SetOptional(t.IsOptional())
		return c
	}
}

// CloneParameters deep-copies a parameter list.
func CloneParameters(params []Parameter) []Parameter {
	if params == nil {
		return nil
	}
	out := make([]Parameter, len(params))
	for i, p := range params {
		out[i] = p
		out[i].Type = CloneType(p.Type)
	}
	return out
}

// CloneSignature deep-copies a signature.
func CloneSignature(s Signature) Signature {
	out := Signature{
		Parameters: CloneParameters(s.Parameters),
		Return:     CloneType(s.Return),
	}
	for _, t := range s.Throws {
		out.Throws = append(out.Throws, CloneType(t))
	}
	return out
}
