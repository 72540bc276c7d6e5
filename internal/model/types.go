package model

// TypeKind enumerates the closed set of type shapes.
type TypeKind int

const (
	TypeAny TypeKind = iota + 1
	TypeBoolean
	TypeNumber
	TypeString
	TypeVoid
	TypeDate
	TypeError
	TypeArray
	TypeFunction
	TypeDeclared
)

var typeKindNames = map[TypeKind]string{
	TypeAny:      "any",
	TypeBoolean:  "boolean",
	TypeNumber:   "number",
	TypeString:   "string",
	TypeVoid:     "void",
	TypeDate:     "date",
	TypeError:    "error",
	TypeArray:    "array",
	TypeFunction: "function",
	TypeDeclared: "declared",
}

func (k TypeKind) String() string {
	if s, ok := typeKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseTypeKind maps a kind name back to its TypeKind.
func ParseTypeKind(s string) (TypeKind, bool) {
	for k, n := range typeKindNames {
		if n == s {
			return k, true
		}
	}
	return 0, false
}

// Type is a reference-site type. Instances are never shared between sites.
type Type interface {
	Kind() TypeKind
	IsOptional() bool
	SetOptional(bool)
	typ()
}

// Opt carries the optional bit shared by all type variants.
type Opt struct {
	Optional bool
}

func (o *Opt) IsOptional() bool   { return o.Optional }
func (o *Opt) SetOptional(v bool) { o.Optional = v }

type AnyType struct{ Opt }
type BooleanType struct{ Opt }
type NumberType struct{ Opt }
type StringType struct{ Opt }
type VoidType struct{ Opt }
type DateType struct{ Opt }
type ErrorType struct{ Opt }

type ArrayType struct {
	Opt
	Element Type
}

type FunctionType struct {
	Opt
	Signature Signature
}

// DeclaredType refers to a class, interface or namespace by qualified name.
// Target is the arena ID of the declaration once bound, 0 while unbound.
// Site is the reference location used for diagnostics.
type DeclaredType struct {
	Opt
	Name   string
	Target int
	Site   Location
}

func (*AnyType) Kind() TypeKind      { return TypeAny }
func (*BooleanType) Kind() TypeKind  { return TypeBoolean }
func (*NumberType) Kind() TypeKind   { return TypeNumber }
func (*StringType) Kind() TypeKind   { return TypeString }
func (*VoidType) Kind() TypeKind     { return TypeVoid }
func (*DateType) Kind() TypeKind     { return TypeDate }
func (*ErrorType) Kind() TypeKind    { return TypeError }
func (*ArrayType) Kind() TypeKind    { return TypeArray }
func (*FunctionType) Kind() TypeKind { return TypeFunction }
func (*DeclaredType) Kind() TypeKind { return TypeDeclared }

func (*AnyType) typ()      {}
func (*BooleanType) typ()  {}
func (*NumberType) typ()   {}
func (*StringType) typ()   {}
func (*VoidType) typ()     {}
func (*DateType) typ()     {}
func (*ErrorType) typ()    {}
func (*ArrayType) typ()    {}
func (*FunctionType) typ() {}
func (*DeclaredType) typ() {}

// Resolved reports whether the reference has been bound to a declaration.
func (d *DeclaredType) Resolved() bool { return d.Target != 0 }

// NewPrimitive returns a fresh leaf type of the given kind, or nil when kind
// is a compound shape.
func NewPrimitive(kind TypeKind) Type {
	switch kind {
	case TypeAny:
		return &AnyType{}
	case TypeBoolean:
		return &BooleanType{}
	case TypeNumber:
		return &NumberType{}
	case TypeString:
		return &StringType{}
	case TypeVoid:
		return &VoidType{}
	case TypeDate:
		return &DateType{}
	case TypeError:
		return &ErrorType{}
	}
	return nil
}
