package model

import "fmt"

// DeclarationVisitor has one method per declaration variant. Implementations
// are total by construction: adding a variant breaks every visitor.
type DeclarationVisitor[R any] interface {
	VisitVariable(*Variable) R
	VisitFunction(*Function) R
	VisitConstructor(*Constructor) R
	VisitClass(*Class) R
	VisitInterface(*Interface) R
	VisitNamespace(*Namespace) R
}

// TypeVisitor has one method per type variant.
type TypeVisitor[R any] interface {
	VisitAny(*AnyType) R
	VisitBoolean(*BooleanType) R
	VisitNumber(*NumberType) R
	VisitString(*StringType) R
	VisitVoid(*VoidType) R
	VisitDate(*DateType) R
	VisitError(*ErrorType) R
	VisitArray(*ArrayType) R
	VisitFunctionType(*FunctionType) R
	VisitDeclared(*DeclaredType) R
}

// Emitter is a per-target backend handling every declaration and type
// variant.
type Emitter[R any] interface {
	DeclarationVisitor[R]
	TypeVisitor[R]
}

// VisitDeclaration dispatches d to the matching visitor method.
func VisitDeclaration[R any](d Declaration, v DeclarationVisitor[R]) R {
	switch d := d.(type) {
	case *Variable:
		return v.VisitVariable(d)
	case *Function:
		return v.VisitFunction(d)
	case *Constructor:
		return v.VisitConstructor(d)
	case *Class:
		return v.VisitClass(d)
	case *Interface:
		return v.VisitInterface(d)
	case *Namespace:
		return v.VisitNamespace(d)
	}
	panic(fmt.Sprintf("model: unknown declaration %T", d))
}

// VisitType dispatches t to the matching visitor method. A nil type is
// visited as void.
func VisitType[R any](t Type, v TypeVisitor[R]) R {
	switch t := t.(type) {
	case nil:
		return v.VisitVoid(&VoidType{})
	case *AnyType:
		return v.VisitAny(t)
	case *BooleanType:
		return v.VisitBoolean(t)
	case *NumberType:
		return v.VisitNumber(t)
	case *StringType:
		return v.VisitString(t)
	case *VoidType:
		return v.VisitVoid(t)
	case *DateType:
		return v.VisitDate(t)
	case *ErrorType:
		return v.VisitError(t)
	case *ArrayType:
		return v.VisitArray(t)
	case *FunctionType:
		return v.VisitFunctionType(t)
	case *DeclaredType:
		return v.VisitDeclared(t)
	}
	panic(fmt.Sprintf("model: unknown type %T", t))
}

// Walk calls fn for d and every member below it, parents first.
func Walk(d Declaration, fn func(Declaration)) {
	fn(d)
	if c, ok := d.(Container); ok {
		for _, m := range *c.MemberList() {
			Walk(m, fn)
		}
	}
}

// WalkModule walks every declaration of every file in order.
func WalkModule(m *Module, fn func(Declaration)) {
	for _, f := range m.Files {
		for _, d := range f.Declarations {
			Walk(d, fn)
		}
	}
}

// TypeSlots calls fn with a pointer to every type slot owned directly by d
// (not by its members), including slots nested inside arrays and function
// types. Replacing *slot rewrites the type in place.
func TypeSlots(d Declaration, fn func(slot *Type)) {
	switch d := d.(type) {
	case *Variable:
		typeSlot(&d.Type, fn)
	case *Function:
		signatureSlots(&d.Signature, fn)
	case *Constructor:
		signatureSlots(&d.Signature, fn)
	case *Class:
		typeSlot(&d.Superclass, fn)
		for i := range d.Implements {
			typeSlot(&d.Implements[i], fn)
		}
	case *Interface:
		for i := range d.Extends {
			typeSlot(&d.Extends[i], fn)
		}
	}
}

func signatureSlots(s *Signature, fn func(*Type)) {
	for i := range s.Parameters {
		typeSlot(&s.Parameters[i].Type, fn)
	}
	typeSlot(&s.Return, fn)
	for i := range s.Throws {
		typeSlot(&s.Throws[i], fn)
	}
}

func typeSlot(slot *Type, fn func(*Type)) {
	if *slot == nil {
		return
	}
	switch t := (*slot).(type) {
	case *ArrayType:
		typeSlot(&t.Element, fn)
	case *FunctionType:
		signatureSlots(&t.Signature, fn)
	}
	fn(slot)
}
