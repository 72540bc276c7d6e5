package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleModule() *Module {
	m := NewModule("lib")
	f := m.File("a.ts")
	f.Declarations = []Declaration{
		&Class{
			Base: Base{Name: "Shape"},
			Members: []Declaration{
				&Variable{Base: Base{Name: "area"}, Type: &NumberType{}},
				&Constructor{},
			},
		},
		&Namespace{
			Base: Base{Name: "Geo"},
			Members: []Declaration{
				&Interface{Base: Base{Name: "Point"}},
			},
		},
	}
	m.File("b.ts").Declarations = []Declaration{
		&Function{Base: Base{Name: "draw"}, Signature: Signature{
			Parameters: []Parameter{{Name: "s", Type: &DeclaredType{Name: "Shape"}}},
		}},
	}
	m.Index()
	return m
}

func TestFlags(t *testing.T) {
	t.Parallel()
	f := FlagStatic | FlagOptional
	assert.True(t, f.Has(FlagStatic))
	assert.False(t, f.Has(FlagAbstract))
	assert.Equal(t, []string{"static", "optional"}, f.Names())
	assert.Equal(t, "static,optional", f.String())
	assert.Equal(t, f, ParseFlags([]string{"optional", "static", "bogus"}))
}

func TestDeclarationKindRoundTrip(t *testing.T) {
	t.Parallel()
	for k := KindVariable; k <= KindNamespace; k++ {
		got, ok := ParseDeclarationKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}
	_, ok := ParseDeclarationKind("enum")
	assert.False(t, ok)
}

func TestLocationString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a.ts:3:7", Location{File: "a.ts", Line: 3, Col: 7}.String())
	assert.Equal(t, "<unknown>", Location{}.String())
}

func TestIndex_PreOrderIDs(t *testing.T) {
	t.Parallel()
	m := sampleModule()
	require.Equal(t, 6, m.Len())

	var names []string
	for _, d := range m.Declarations() {
		names = append(names, m.QualifiedName(d.Common().ID))
	}
	assert.Equal(t, []string{"Shape", "Shape.area", "Shape", "Geo", "Geo.Point", "draw"}, names)

	point, ok := m.Lookup("Geo.Point")
	require.True(t, ok)
	assert.Equal(t, "a.ts", point.Common().File)
	assert.Equal(t, "Geo", m.Parent(point).Common().Name)

	draw, ok := m.Lookup("draw")
	require.True(t, ok)
	assert.Equal(t, "b.ts", draw.Common().File)
	assert.Nil(t, m.Parent(draw))

	shape, ok := m.Lookup("Shape")
	require.True(t, ok)
	assert.Equal(t, KindClass, shape.Kind(), "the constructor does not take over the class name")
}

func TestIndex_Stable(t *testing.T) {
	t.Parallel()
	a, b := sampleModule(), sampleModule()
	for i, d := range a.Declarations() {
		assert.Equal(t, d.Common().ID, b.Declarations()[i].Common().ID)
	}
	assert.Nil(t, a.Decl(0))
	assert.Nil(t, a.Decl(99))
}

func TestTypeKey(t *testing.T) {
	t.Parallel()
	opt := &StringType{}
	opt.SetOptional(true)
	tests := []struct {
		typ  Type
		want string
	}{
		{nil, "void"},
		{&NumberType{}, "number"},
		{opt, "string?"},
		{&ArrayType{Element: &BooleanType{}}, "Array<boolean>"},
		{&DeclaredType{Name: "A.B"}, "@A.B"},
		{&FunctionType{Signature: Signature{
			Parameters: []Parameter{{Type: &NumberType{}}, {Type: &StringType{}, Optional: true}},
			Return:     &VoidType{},
		}}, "(number,string=)=>void"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TypeKey(tt.typ))
	}
}

func TestOverloadAndSignatureKeys(t *testing.T) {
	t.Parallel()
	a := &Function{Base: Base{Name: "f"}, Signature: Signature{
		Parameters: []Parameter{{Name: "x", Type: &NumberType{}}},
		Return:     &VoidType{},
	}}
	b := &Function{Base: Base{Name: "f"}, Signature: Signature{
		Parameters: []Parameter{{Name: "y", Type: &NumberType{}}},
		Return:     &StringType{},
	}}
	assert.Equal(t, OverloadKey(a), OverloadKey(b), "overload keys ignore return types")
	assert.NotEqual(t, SignatureKey(a), SignatureKey(b))

	static := &Function{Base: Base{Name: "f", Flags: FlagStatic}, Signature: a.Signature}
	assert.NotEqual(t, SignatureKey(a), SignatureKey(static))
}

func TestCloneType_Deep(t *testing.T) {
	t.Parallel()
	orig := &ArrayType{Element: &DeclaredType{Name: "X", Target: 4}}
	c := CloneType(orig).(*ArrayType)
	require.NotSame(t, orig, c)
	require.NotSame(t, orig.Element, c.Element)
	c.Element.(*DeclaredType).Target = 0
	assert.Equal(t, 4, orig.Element.(*DeclaredType).Target)
}

type kindNamer struct{}

func (kindNamer) VisitVariable(*Variable) string       { return "variable" }
func (kindNamer) VisitFunction(*Function) string       { return "function" }
func (kindNamer) VisitConstructor(*Constructor) string { return "constructor" }
func (kindNamer) VisitClass(*Class) string             { return "class" }
func (kindNamer) VisitInterface(*Interface) string     { return "interface" }
func (kindNamer) VisitNamespace(*Namespace) string     { return "namespace" }

func TestVisitDeclaration(t *testing.T) {
	t.Parallel()
	m := sampleModule()
	var got []string
	WalkModule(m, func(d Declaration) {
		got = append(got, VisitDeclaration[string](d, kindNamer{}))
	})
	assert.Equal(t, []string{"class", "variable", "constructor", "namespace", "interface", "function"}, got)
}

func TestTypeSlots_RewritesInPlace(t *testing.T) {
	t.Parallel()
	fn := &Function{Signature: Signature{
		Parameters: []Parameter{{Type: &ArrayType{Element: &DeclaredType{Name: "Gone"}}}},
		Return:     &DeclaredType{Name: "Gone"},
	}}
	var seen int
	TypeSlots(fn, func(slot *Type) {
		if _, ok := (*slot).(*DeclaredType); ok {
			seen++
			*slot = &AnyType{}
		}
	})
	assert.Equal(t, 2, seen)
	assert.Equal(t, "(Array<any>)=>any", TypeKey(&FunctionType{Signature: fn.Signature}))
}
