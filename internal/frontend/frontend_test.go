package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/bindgen/internal/facts"
	"github.com/jward/bindgen/internal/model"
)

func load(t *testing.T, files map[string]string, order ...string) (*Source, []facts.File) {
	t.Helper()
	src := New(WithFiles(files))
	t.Cleanup(src.Close)
	out, err := src.Files(order)
	require.NoError(t, err)
	return src, out
}

// rawNamed returns the first top-level raw declaration called name.
func rawNamed(t *testing.T, src *Source, files []facts.File, name string) facts.RawDeclaration {
	t.Helper()
	for _, f := range files {
		for _, n := range f.Nodes {
			raw, ok := src.DeclarationAt(n)
			if ok && raw.Name == name {
				return raw
			}
		}
	}
	t.Fatalf("no declaration named %s", name)
	return facts.RawDeclaration{}
}

func memberNamed(t *testing.T, src *Source, raw facts.RawDeclaration, name string) (facts.RawDeclaration, bool) {
	t.Helper()
	for _, n := range raw.Members {
		m, ok := src.DeclarationAt(n)
		if ok && m.Name == name {
			return m, true
		}
	}
	return facts.RawDeclaration{}, false
}

// =============================================================================
// Languages
// =============================================================================

func TestLanguageForFile(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path string
		lang string
		ok   bool
	}{
		{"a.ts", "typescript", true},
		{"lib/a.d.ts", "typescript", true},
		{"A.TS", "typescript", true},
		{"view.tsx", "tsx", true},
		{"a.mts", "typescript", true},
		{"a.js", "", false},
		{"Makefile", "", false},
	}
	for _, tt := range tests {
		lang, ok := LanguageForFile(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.lang, lang, tt.path)
	}
}

func TestParserForLanguage(t *testing.T) {
	t.Parallel()
	l, ok := ParserForLanguage("typescript")
	require.True(t, ok)
	assert.NotNil(t, l)
	_, ok = ParserForLanguage("cobol")
	assert.False(t, ok)
}

func TestIsDeclarationFile(t *testing.T) {
	t.Parallel()
	assert.True(t, IsDeclarationFile("types/index.d.ts"))
	assert.False(t, IsDeclarationFile("index.ts"))
}

// =============================================================================
// Loading
// =============================================================================

func TestFiles_MissingSource(t *testing.T) {
	t.Parallel()
	src := New(WithFiles(map[string]string{}))
	_, err := src.Files([]string{"nope.ts"})
	require.Error(t, err)
	assert.ErrorIs(t, err, facts.ErrSourceNotFound)
}

func TestFiles_SkipsUnknownExtensions(t *testing.T) {
	t.Parallel()
	_, files := load(t, map[string]string{"a.ts": "let x: number;", "notes.md": "# hi"}, "a.ts", "notes.md")
	require.Len(t, files, 1)
	assert.Equal(t, "a.ts", files[0].Path)
}

func TestFiles_TopLevelOrderAndExport(t *testing.T) {
	t.Parallel()
	src, files := load(t, map[string]string{
		"a.ts": `
export function first(): void {}
function hidden(): void {}
export const answer: number = 42;
declare class Ambient {}
`,
	}, "a.ts")
	require.Len(t, files, 1)
	require.Len(t, files[0].Nodes, 4)

	var names []string
	var exported []bool
	for _, n := range files[0].Nodes {
		raw, ok := src.DeclarationAt(n)
		require.True(t, ok)
		names = append(names, raw.Name)
		exported = append(exported, src.IsExplicitlyExported(n))
	}
	assert.Equal(t, []string{"first", "hidden", "answer", "Ambient"}, names)
	assert.Equal(t, []bool{true, false, true, false}, exported)

	answer := rawNamed(t, src, files, "answer")
	assert.True(t, answer.Flags.Has(model.FlagConst))
	assert.Equal(t, model.Location{File: "a.ts", Line: 4, Col: 14}, answer.Node.Location())
}

func TestFiles_SymbolsMergeAcrossFiles(t *testing.T) {
	t.Parallel()
	src, files := load(t, map[string]string{
		"a.ts": "interface Shape { area(): number; }",
		"b.ts": "interface Shape { name: string; }",
	}, "a.ts", "b.ts")

	symA, ok := src.SymbolAt(files[0].Nodes[0])
	require.True(t, ok)
	symB, ok := src.SymbolAt(files[1].Nodes[0])
	require.True(t, ok)
	assert.Same(t, symA, symB)

	raws := src.RawDeclarationsOf(symA)
	require.Len(t, raws, 2)
	assert.Equal(t, "a.ts", raws[0].Node.Location().File)
	assert.Equal(t, "b.ts", raws[1].Node.Location().File)
}

// =============================================================================
// Declarations
// =============================================================================

func TestFunctionParameters(t *testing.T) {
	t.Parallel()
	src, files := load(t, map[string]string{
		"a.ts": "export function f(a: number, b?: string, c = 1, ...rest: string[]): boolean { return true; }",
	}, "a.ts")
	raw := rawNamed(t, src, files, "f")
	assert.Equal(t, facts.DeclFunction, raw.Kind)
	require.Len(t, raw.Parameters, 4)

	assert.Equal(t, "a", raw.Parameters[0].Name)
	assert.False(t, raw.Parameters[0].Optional)
	assert.True(t, raw.Parameters[1].Optional)
	assert.True(t, raw.Parameters[2].Optional, "initialized parameters are optional")
	assert.Equal(t, "rest", raw.Parameters[3].Name)
	assert.True(t, raw.Parameters[3].Rest)

	ret := src.TypeFactAt(nil, raw.Node)
	assert.Equal(t, facts.FactKeyword, ret.Kind)
	assert.Equal(t, "boolean", ret.Name)

	restType := src.TypeFactAt(nil, raw.Parameters[3].Node)
	assert.Equal(t, facts.FactArray, restType.Kind)
}

func TestMissingAnnotations(t *testing.T) {
	t.Parallel()
	src, files := load(t, map[string]string{
		"a.ts": "export function f(x) {}\nexport let v = 3;",
	}, "a.ts")
	f := rawNamed(t, src, files, "f")
	assert.Equal(t, "void", src.TypeFactAt(nil, f.Node).Name)
	assert.Equal(t, "any", src.TypeFactAt(nil, f.Parameters[0].Node).Name)
	v := rawNamed(t, src, files, "v")
	assert.Equal(t, "any", src.TypeFactAt(nil, v.Node).Name)
}

func TestOverloadImplementationDropped(t *testing.T) {
	t.Parallel()
	src, files := load(t, map[string]string{
		"a.ts": `
export function parse(s: string): number;
export function parse(s: string, radix: number): number;
export function parse(s: string, radix?: number): number { return 0; }
`,
	}, "a.ts")
	require.Len(t, files[0].Nodes, 2)
	sym, ok := src.SymbolAt(files[0].Nodes[0])
	require.True(t, ok)
	assert.Len(t, src.RawDeclarationsOf(sym), 2)
}

func TestClassMembers(t *testing.T) {
	t.Parallel()
	src, files := load(t, map[string]string{
		"a.ts": `
export abstract class Widget extends Base implements Drawable, Sized {
  static count: number;
  protected label?: string;
  private secret: string;
  readonly id: number;
  constructor(id: number) {}
  get size(): number { return 1; }
  set size(v: number) {}
  abstract draw(ctx: Canvas): void;
  render(): void {}
}
class Base {}
interface Drawable {}
interface Sized {}
interface Canvas {}
`,
	}, "a.ts")
	w := rawNamed(t, src, files, "Widget")
	assert.Equal(t, facts.DeclClass, w.Kind)
	assert.True(t, w.Flags.Has(model.FlagAbstract))
	require.Len(t, w.Heritage, 1)
	require.Len(t, w.Implements, 2)

	super := src.TypeFactAt(nil, w.Heritage[0])
	assert.Equal(t, facts.FactReference, super.Kind)
	assert.Equal(t, "Base", super.Name)
	assert.NotNil(t, super.Symbol)

	count, ok := memberNamed(t, src, w, "count")
	require.True(t, ok)
	assert.True(t, count.Flags.Has(model.FlagStatic))

	label, ok := memberNamed(t, src, w, "label")
	require.True(t, ok)
	assert.True(t, label.Flags.Has(model.FlagProtected))
	assert.True(t, label.Flags.Has(model.FlagOptional))

	secret, ok := memberNamed(t, src, w, "secret")
	require.True(t, ok)
	assert.True(t, secret.Private)

	id, ok := memberNamed(t, src, w, "id")
	require.True(t, ok)
	assert.True(t, id.Flags.Has(model.FlagConst))

	ctor, ok := memberNamed(t, src, w, "constructor")
	require.True(t, ok)
	assert.Equal(t, facts.DeclConstructor, ctor.Kind)

	size, ok := memberNamed(t, src, w, "size")
	require.True(t, ok)
	assert.Equal(t, facts.DeclVariable, size.Kind, "getter surfaces as property")
	assert.Equal(t, "number", src.TypeFactAt(nil, size.Node).Name)

	draw, ok := memberNamed(t, src, w, "draw")
	require.True(t, ok)
	assert.True(t, draw.Flags.Has(model.FlagAbstract))
	canvas := src.TypeFactAt(nil, draw.Parameters[0].Node)
	assert.Equal(t, "Canvas", canvas.Name)
	assert.NotNil(t, canvas.Symbol)
}

func TestInterfaceMembers(t *testing.T) {
	t.Parallel()
	src, files := load(t, map[string]string{
		"a.ts": `
interface Point extends Base<number> {
  x: number;
  y?: number;
  move(dx: number, dy?: number): Point;
  new (x: number): Point;
}
interface Base<T> {}
`,
	}, "a.ts")
	p := rawNamed(t, src, files, "Point")
	require.Len(t, p.Heritage, 1)
	ext := src.TypeFactAt(nil, p.Heritage[0])
	assert.Equal(t, facts.FactReference, ext.Kind)
	assert.Equal(t, "Base", ext.Name)

	require.Len(t, p.Members, 4)
	y, ok := memberNamed(t, src, p, "y")
	require.True(t, ok)
	assert.True(t, y.Flags.Has(model.FlagOptional))

	move, ok := memberNamed(t, src, p, "move")
	require.True(t, ok)
	assert.Equal(t, facts.DeclFunction, move.Kind)
	assert.True(t, move.Parameters[1].Optional)

	ctor, ok := memberNamed(t, src, p, "")
	require.True(t, ok)
	assert.Equal(t, facts.DeclConstructor, ctor.Kind)
}

func TestNamespaces(t *testing.T) {
	t.Parallel()
	src, files := load(t, map[string]string{
		"a.ts": `
namespace Outer.Inner {
  export class Leaf {}
  class Hidden {}
}
declare namespace Util {
  function helper(x: Outer.Inner.Leaf): void;
}
`,
	}, "a.ts")
	outer := rawNamed(t, src, files, "Outer")
	assert.Equal(t, facts.DeclNamespace, outer.Kind)
	require.Len(t, outer.Members, 1)

	inner, ok := src.DeclarationAt(outer.Members[0])
	require.True(t, ok)
	assert.Equal(t, "Inner", inner.Name)
	assert.True(t, src.IsExplicitlyExported(outer.Members[0]))
	require.Len(t, inner.Members, 2)

	leafSym, ok := src.SymbolAt(inner.Members[0])
	require.True(t, ok)
	assert.Equal(t, "Outer.Inner.Leaf", src.QualifiedName(leafSym))
	parent, ok := src.Parent(leafSym)
	require.True(t, ok)
	assert.Equal(t, "Outer.Inner", src.QualifiedName(parent))
	assert.True(t, src.IsExplicitlyExported(inner.Members[0]))
	assert.False(t, src.IsExplicitlyExported(inner.Members[1]))

	util := rawNamed(t, src, files, "Util")
	helper, ok := src.DeclarationAt(util.Members[0])
	require.True(t, ok)
	assert.True(t, src.IsExplicitlyExported(util.Members[0]), "ambient namespace members are exported")
	ref := src.TypeFactAt(nil, helper.Parameters[0].Node)
	assert.Equal(t, facts.FactReference, ref.Kind)
	require.NotNil(t, ref.Symbol)
	assert.Equal(t, "Outer.Inner.Leaf", src.QualifiedName(ref.Symbol))
}

func TestDocComments(t *testing.T) {
	t.Parallel()
	src, files := load(t, map[string]string{
		"a.ts": `
/**
 * Parses input.
 * @throws {ParseError} when malformed
 */
export function parse(s: string): number;

// @export
function tagged(): void {}

class ParseError {}
`,
	}, "a.ts")
	parse := rawNamed(t, src, files, "parse")
	c := facts.ParseComment(parse.Doc)
	assert.Equal(t, "Parses input.", c.Text)
	require.Len(t, c.Tags, 1)
	assert.Equal(t, "ParseError", c.Tags[0].Type)

	tagged := rawNamed(t, src, files, "tagged")
	assert.True(t, facts.ParseComment(tagged.Doc).IsTagged("export"))

	sym, _ := src.SymbolAt(parse.Node)
	f := src.LookupType(sym, "ParseError")
	assert.Equal(t, facts.FactReference, f.Kind)
	assert.NotNil(t, f.Symbol)
	assert.Equal(t, facts.FactArray, src.LookupType(sym, "string[]").Kind)
}

// =============================================================================
// Type facts
// =============================================================================

func TestTypeFacts(t *testing.T) {
	t.Parallel()
	src, files := load(t, map[string]string{
		"a.ts": `
type Names = string[];
interface Foo {}
export let a: Foo | null;
export let b: Array<number>;
export let c: readonly string[];
export let d: (x: number, y?: string) => void;
export let e: Names;
export let f: { x: number };
export let g: "lit";
export let h: Foo & Foo;
export function id<T>(x: T): T { return x; }
export let i: undefined | Foo;
`,
	}, "a.ts")
	at := func(name string) facts.TypeFact {
		return src.TypeFactAt(nil, rawNamed(t, src, files, name).Node)
	}

	a := at("a")
	assert.Equal(t, facts.FactUnion, a.Kind)
	require.Len(t, a.Args, 2)
	assert.Equal(t, facts.FactReference, a.Args[0].Kind)
	assert.Equal(t, facts.FactNull, a.Args[1].Kind)

	b := at("b")
	assert.Equal(t, facts.FactReference, b.Kind)
	assert.Equal(t, "Array", b.Name)
	require.Len(t, b.Args, 1)
	assert.Equal(t, "number", b.Args[0].Name)

	assert.Equal(t, facts.FactReadonly, at("c").Kind)

	d := at("d")
	assert.Equal(t, facts.FactFunction, d.Kind)
	require.Len(t, d.Params, 2)
	assert.True(t, d.Params[1].Optional)
	require.NotNil(t, d.Return)
	assert.Equal(t, "void", d.Return.Name)

	e := at("e")
	assert.Equal(t, facts.FactArray, e.Kind, "aliases expand at the use site")

	assert.Equal(t, facts.FactObject, at("f").Kind)
	assert.Equal(t, facts.FactLiteral, at("g").Kind)
	assert.Equal(t, facts.FactIntersection, at("h").Kind)

	id := rawNamed(t, src, files, "id")
	assert.Equal(t, facts.FactTypeParameter, src.TypeFactAt(nil, id.Node).Kind)
	assert.Equal(t, []string{"T"}, id.TypeParameters)

	i := at("i")
	require.Len(t, i.Args, 2)
	assert.Equal(t, facts.FactNull, i.Args[0].Kind)
}

func TestTypeFacts_UnknownReferenceHasNoSymbol(t *testing.T) {
	t.Parallel()
	src, files := load(t, map[string]string{"a.ts": "export let c: Custom;"}, "a.ts")
	f := src.TypeFactAt(nil, rawNamed(t, src, files, "c").Node)
	assert.Equal(t, facts.FactReference, f.Kind)
	assert.Equal(t, "Custom", f.Name)
	assert.Nil(t, f.Symbol)
}

func TestTypeFacts_ValueSymbolIsNotAType(t *testing.T) {
	t.Parallel()
	src, files := load(t, map[string]string{"a.ts": "let Thing = 1;\nexport let c: Thing;"}, "a.ts")
	f := src.TypeFactAt(nil, rawNamed(t, src, files, "c").Node)
	assert.Nil(t, f.Symbol)
}
