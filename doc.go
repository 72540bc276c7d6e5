// Package bindgen builds a language-neutral API model from TypeScript
// sources, for generating bindings in other languages.
//
// # Pipeline
//
// A run has three phases:
//
//  1. Facts: each input file is parsed with tree-sitter and its declarations
//     are reported through a fact source (internal/frontend).
//
//  2. Resolve: starting from the exported roots, declarations are converted
//     into the canonical tree, declared types are bound to their targets, and
//     duplicate declarations are merged (internal/resolve).
//
//  3. Emit: the module is printed as declaration text, or handed to a Risor
//     emitter script that writes any output it likes.
//
// With a store, every run is persisted to SQLite. A later run over
// byte-identical inputs is reloaded instead of recomputed, and two runs can
// be diffed declaration by declaration.
//
// # Usage
//
//	e, err := bindgen.New(bindgen.WithStore("bindgen.db"), bindgen.WithScriptsFS(scripts.FS))
//	if err != nil { ... }
//	defer e.Close()
//
//	res, err := e.ResolveDirectory(ctx, "path/to/project")
//	if err != nil { ... }
//	if err := res.Err(); err != nil { ... }
//
//	files, err := e.Emit(ctx, res, "manifest")
//	deps, err := res.Query().Dependencies("Geo.Point")
package bindgen
