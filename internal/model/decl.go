package model

import (
	"strconv"
	"strings"
)

// Location is a position in a source file. Line and Col are 1-based.
type Location struct {
	File string
	Line int
	Col  int
}

// IsZero reports whether the location is unset.
func (l Location) IsZero() bool { return l.File == "" && l.Line == 0 }

func (l Location) String() string {
	if l.IsZero() {
		return "<unknown>"
	}
	return l.File + ":" + strconv.Itoa(l.Line) + ":" + strconv.Itoa(l.Col)
}

// Flags is the modifier set carried by every declaration.
type Flags uint8

const (
	FlagStatic Flags = 1 << iota
	FlagAbstract
	FlagProtected
	FlagOptional
	FlagConst
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagStatic, "static"},
	{FlagAbstract, "abstract"},
	{FlagProtected, "protected"},
	{FlagOptional, "optional"},
	{FlagConst, "const"},
}

// Has reports whether all bits of x are set in f.
func (f Flags) Has(x Flags) bool { return f&x == x }

// Names returns the set flags in a fixed order.
func (f Flags) Names() []string {
	var out []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			out = append(out, fn.name)
		}
	}
	return out
}

func (f Flags) String() string { return strings.Join(f.Names(), ",") }

// ParseFlags is the inverse of Flags.Names. Unknown names are ignored.
func ParseFlags(names []string) Flags {
	var f Flags
	for _, n := range names {
		for _, fn := range flagNames {
			if fn.name == n {
				f |= fn.flag
			}
		}
	}
	return f
}

// DeclarationKind enumerates the closed set of declaration variants.
type DeclarationKind int

const (
	KindVariable DeclarationKind = iota + 1
	KindFunction
	KindConstructor
	KindClass
	KindInterface
	KindNamespace
)

var kindNames = map[DeclarationKind]string{
	KindVariable:    "variable",
	KindFunction:    "function",
	KindConstructor: "constructor",
	KindClass:       "class",
	KindInterface:   "interface",
	KindNamespace:   "namespace",
}

func (k DeclarationKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseDeclarationKind maps a kind name back to its DeclarationKind.
func ParseDeclarationKind(s string) (DeclarationKind, bool) {
	for k, n := range kindNames {
		if n == s {
			return k, true
		}
	}
	return 0, false
}

// Base holds the attributes shared by every declaration. ID, ParentID and
// File are assigned by Module.Index; ParentID is a non-owning reference
// into the module arena (0 means top level).
type Base struct {
	ID       int
	ParentID int
	Name     string
	Doc      string
	Flags    Flags
	File     string
	Location Location
}

// Common returns the shared attributes.
func (b *Base) Common() *Base { return b }

// Declaration is one element of the canonical tree. The set of
// implementations is closed; see VisitDeclaration.
type Declaration interface {
	Kind() DeclarationKind
	Common() *Base
	declaration()
}

// Container is implemented by declarations that own members.
type Container interface {
	Declaration
	MemberList() *[]Declaration
}

// Parameter is one formal parameter of a signature.
type Parameter struct {
	Name     string
	Type     Type
	Optional bool
	Rest     bool
}

// Signature describes a callable: parameters, return type and the types
// documented as thrown.
type Signature struct {
	Parameters []Parameter
	Return     Type
	Throws     []Type
}

// Callable is implemented by Function and Constructor.
type Callable interface {
	Declaration
	Sig() *Signature
	TypeParams() []string
}

type Variable struct {
	Base
	Type Type
}

type Function struct {
	Base
	TypeParameters []string
	Signature      Signature
}

// Constructor is a class or interface construct signature. Its Name is
// always empty.
type Constructor struct {
	Base
	TypeParameters []string
	Signature      Signature
}

type Class struct {
	Base
	TypeParameters []string
	Superclass     Type
	Implements     []Type
	Members        []Declaration
}

type Interface struct {
	Base
	TypeParameters []string
	Extends        []Type
	Members        []Declaration
}

type Namespace struct {
	Base
	Members []Declaration
}

func (*Variable) Kind() DeclarationKind    { return KindVariable }
func (*Function) Kind() DeclarationKind    { return KindFunction }
func (*Constructor) Kind() DeclarationKind { return KindConstructor }
func (*Class) Kind() DeclarationKind       { return KindClass }
func (*Interface) Kind() DeclarationKind   { return KindInterface }
func (*Namespace) Kind() DeclarationKind   { return KindNamespace }

func (*Variable) declaration()    {}
func (*Function) declaration()    {}
func (*Constructor) declaration() {}
func (*Class) declaration()       {}
func (*Interface) declaration()   {}
func (*Namespace) declaration()   {}

func (c *Class) MemberList() *[]Declaration     { return &c.Members }
func (i *Interface) MemberList() *[]Declaration { return &i.Members }
func (n *Namespace) MemberList() *[]Declaration { return &n.Members }

func (f *Function) Sig() *Signature    { return &f.Signature }
func (c *Constructor) Sig() *Signature { return &c.Signature }

func (f *Function) TypeParams() []string    { return f.TypeParameters }
func (c *Constructor) TypeParams() []string { return c.TypeParameters }

// IsTypeDeclaration reports whether d can be the target of a Declared type.
func IsTypeDeclaration(d Declaration) bool {
	switch d.Kind() {
	case KindClass, KindInterface, KindNamespace:
		return true
	}
	return false
}
