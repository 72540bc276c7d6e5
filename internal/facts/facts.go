// Package facts defines the contract between a source-language frontend and
// the resolver core. A frontend answers symbol, declaration and type queries
// about opaque nodes; the core never looks at source text.
package facts

import (
	"errors"

	"github.com/jward/bindgen/internal/model"
)

// ErrSourceNotFound is wrapped by frontends when an input file is missing.
var ErrSourceNotFound = errors.New("source not found")

// Node is an opaque handle to one syntactic declaration.
type Node interface {
	Location() model.Location
}

// Symbol is an opaque handle to a named entity that may be declared by
// several nodes.
type Symbol interface {
	Name() string
}

// File is one input file and its top-level declaration nodes in source order.
type File struct {
	Path  string
	Nodes []Node
}

// DeclKind is the syntactic kind of a raw declaration.
type DeclKind int

const (
	DeclVariable DeclKind = iota + 1
	DeclFunction
	DeclConstructor
	DeclClass
	DeclInterface
	DeclNamespace
)

func (k DeclKind) String() string {
	switch k {
	case DeclVariable:
		return "variable"
	case DeclFunction:
		return "function"
	case DeclConstructor:
		return "constructor"
	case DeclClass:
		return "class"
	case DeclInterface:
		return "interface"
	case DeclNamespace:
		return "namespace"
	}
	return "unknown"
}

// Parameter is one formal parameter of a raw callable.
type Parameter struct {
	Node     Node
	Name     string
	Optional bool
	Rest     bool
}

// RawDeclaration is one syntactic occurrence of a declaration, before
// merging.
type RawDeclaration struct {
	Node           Node
	Kind           DeclKind
	Name           string
	Doc            string // raw leading comment text
	Flags          model.Flags
	Private        bool
	TypeParameters []string
	Parameters     []Parameter
	Members        []Node // children, for classes, interfaces and namespaces
	Heritage       []Node // extends/implements references; first is the superclass for classes
	Implements     []Node // class implements clauses
}

// TypeFactKind tags the shape of a raw type fact.
type TypeFactKind int

const (
	FactKeyword TypeFactKind = iota + 1
	FactReference
	FactArray
	FactReadonly
	FactFunction
	FactUnion
	FactIntersection
	FactNull
	FactLiteral
	FactTypeParameter
	FactObject
	FactTuple
	FactOther
)

func (k TypeFactKind) String() string {
	switch k {
	case FactKeyword:
		return "keyword"
	case FactReference:
		return "reference"
	case FactArray:
		return "array"
	case FactReadonly:
		return "readonly"
	case FactFunction:
		return "function"
	case FactUnion:
		return "union"
	case FactIntersection:
		return "intersection"
	case FactNull:
		return "null"
	case FactLiteral:
		return "literal"
	case FactTypeParameter:
		return "type parameter"
	case FactObject:
		return "object literal type"
	case FactTuple:
		return "tuple"
	}
	return "other"
}

// ParamFact is one parameter of a callable type fact.
type ParamFact struct {
	Name     string
	Optional bool
	Rest     bool
	Type     TypeFact
}

// TypeFact is a tagged raw type shape at one reference site.
type TypeFact struct {
	Kind     TypeFactKind
	Name     string     // keyword, reference name, or shape description
	Args     []TypeFact // element, union arms, or type arguments
	Params   []ParamFact
	Return   *TypeFact
	Symbol   Symbol // declaring symbol of a reference; nil when unknown
	Location model.Location
}

// Source is the frontend contract. Implementations are used by one resolve
// call at a time.
type Source interface {
	// Files loads the given roots. Missing inputs are fatal and returned as
	// errors wrapping ErrSourceNotFound.
	Files(roots []string) ([]File, error)
	SymbolAt(n Node) (Symbol, bool)
	QualifiedName(s Symbol) string
	// Parent returns the enclosing namespace symbol of a nested symbol.
	Parent(s Symbol) (Symbol, bool)
	// RawDeclarationsOf returns every occurrence of s in source order.
	RawDeclarationsOf(s Symbol) []RawDeclaration
	DeclarationAt(n Node) (RawDeclaration, bool)
	// TypeFactAt returns the declared type of a variable or property node,
	// the return type of a callable node, the type of a parameter node, or
	// the referenced type of a heritage node.
	TypeFactAt(s Symbol, n Node) TypeFact
	IsExplicitlyExported(n Node) bool
	// LookupType resolves a type name written in a comment, as seen from
	// the scope of s.
	LookupType(s Symbol, name string) TypeFact
}
