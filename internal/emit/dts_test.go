package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jward/bindgen/internal/model"
)

func num() model.Type { return &model.NumberType{} }

func TestPrinter_Module(t *testing.T) {
	t.Parallel()

	m := model.NewModule("geo")
	a := m.File("a.ts")
	a.Declarations = append(a.Declarations,
		&model.Class{
			Base:       model.Base{Name: "Circle", Doc: "/**\n * A circle.\n */", Flags: model.FlagAbstract},
			Superclass: &model.DeclaredType{Name: "Shape"},
			Implements: []model.Type{&model.DeclaredType{Name: "Geo.Drawable"}},
			Members: []model.Declaration{
				&model.Variable{Base: model.Base{Name: "radius", Flags: model.FlagConst}, Type: num()},
				&model.Variable{Base: model.Base{Name: "label", Flags: model.FlagOptional | model.FlagProtected}, Type: &model.StringType{}},
				&model.Function{
					Base:      model.Base{Name: "unit", Flags: model.FlagStatic},
					Signature: model.Signature{Return: &model.DeclaredType{Name: "Circle"}},
				},
				&model.Constructor{Signature: model.Signature{
					Parameters: []model.Parameter{{Name: "r", Type: num(), Optional: true}},
				}},
			},
		},
		&model.Namespace{
			Base: model.Base{Name: "Geo"},
			Members: []model.Declaration{
				&model.Interface{
					Base:           model.Base{Name: "Drawable"},
					TypeParameters: []string{"T"},
					Members: []model.Declaration{
						&model.Function{
							Base: model.Base{Name: "draw"},
							Signature: model.Signature{
								Parameters: []model.Parameter{{Name: "args", Type: &model.ArrayType{Element: &model.AnyType{}}, Rest: true}},
								Return:     &model.VoidType{},
							},
						},
					},
				},
				&model.Variable{Base: model.Base{Name: "origin", Flags: model.FlagConst}, Type: &model.DateType{}},
			},
		},
	)
	b := m.File("b.ts")
	b.Declarations = append(b.Declarations,
		&model.Variable{Base: model.Base{Name: "count"}, Type: num()},
		&model.Function{
			Base:           model.Base{Name: "map"},
			TypeParameters: []string{"T", "U"},
			Signature: model.Signature{
				Parameters: []model.Parameter{
					{Name: "xs", Type: &model.ArrayType{Element: &model.NumberType{Opt: model.Opt{Optional: true}}}},
					{Name: "fn", Type: &model.FunctionType{Signature: model.Signature{
						Parameters: []model.Parameter{{Name: "x", Type: num()}},
						Return:     &model.BooleanType{},
					}}},
				},
				Return: &model.ArrayType{Element: &model.ErrorType{}},
			},
		},
	)
	m.Index()

	want := `// a.ts
/**
 * A circle.
 */
declare abstract class Circle extends Shape implements Geo.Drawable {
    readonly radius: number;
    protected label?: string;
    static unit(): Circle;
    constructor(r?: number);
}
declare namespace Geo {
    export interface Drawable<T> {
        draw(...args: any[]): void;
    }
    export const origin: Date;
}

// b.ts
declare let count: number;
declare function map<T, U>(xs: (number | undefined)[], fn: (x: number) => boolean): Error[];
`
	assert.Equal(t, want, NewPrinter().Module(m))
}

func TestPrinter_Types(t *testing.T) {
	t.Parallel()
	p := NewPrinter()

	tests := []struct {
		name string
		typ  model.Type
		want string
	}{
		{"nil is void", nil, "void"},
		{"optional", &model.StringType{Opt: model.Opt{Optional: true}}, "string | undefined"},
		{"nested array", &model.ArrayType{Element: &model.ArrayType{Element: num()}}, "number[][]"},
		{"function array", &model.ArrayType{Element: &model.FunctionType{}}, "(() => void)[]"},
		{"optional function", &model.FunctionType{Opt: model.Opt{Optional: true}}, "(() => void) | undefined"},
		{"declared", &model.DeclaredType{Name: "NS.Thing"}, "NS.Thing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, p.Type(tt.typ))
		})
	}
}

func TestPrinter_InterfaceConstructSignature(t *testing.T) {
	t.Parallel()
	i := &model.Interface{
		Base: model.Base{Name: "Ctor"},
		Members: []model.Declaration{
			&model.Constructor{Signature: model.Signature{Return: &model.DeclaredType{Name: "Thing"}}},
		},
	}
	assert.Equal(t, "interface Ctor {\n    new(): Thing;\n}\n", NewPrinter().Declaration(i))
}

func TestPrinter_Signature(t *testing.T) {
	t.Parallel()
	p := NewPrinter()

	tests := []struct {
		name string
		decl model.Declaration
		want string
	}{
		{"variable", &model.Variable{Base: model.Base{Name: "x", Flags: model.FlagConst}, Type: num()}, "x: number"},
		{"function", &model.Function{
			Base:           model.Base{Name: "id", Flags: model.FlagStatic},
			TypeParameters: []string{"T"},
			Signature: model.Signature{
				Parameters: []model.Parameter{{Name: "v", Type: &model.DeclaredType{Name: "T"}, Optional: true}},
				Return:     &model.DeclaredType{Name: "T"},
			},
		}, "id<T>(v?: T): T"},
		{"constructor", &model.Constructor{Signature: model.Signature{
			Parameters: []model.Parameter{{Name: "n", Type: num()}},
		}}, "constructor(n: number)"},
		{"class", &model.Class{
			Base:       model.Base{Name: "C"},
			Superclass: &model.DeclaredType{Name: "B"},
			Implements: []model.Type{&model.DeclaredType{Name: "I"}, &model.DeclaredType{Name: "J"}},
		}, "class C extends B implements I, J"},
		{"interface", &model.Interface{Base: model.Base{Name: "I"}, Extends: []model.Type{&model.DeclaredType{Name: "J"}}}, "interface I extends J"},
		{"namespace", &model.Namespace{Base: model.Base{Name: "NS"}}, "namespace NS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, p.Signature(tt.decl))
		})
	}
}
