package store

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/jward/bindgen/internal/model"
)

// FileDigest hashes one input file's content.
func FileDigest(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

// InputHash identifies the inputs of a resolve call. Path order matters
// because it decides the order of the output tree.
func InputHash(module string, implicitExport bool, paths []string, digests map[string]string) string {
	h := sha256.New()
	fmt.Fprintf(h, "module:%s\n", module)
	fmt.Fprintf(h, "implicit:%v\n", implicitExport)
	for _, p := range paths {
		fmt.Fprintf(h, "file:%s:%s\n", p, digests[p])
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// ComputeSignatureHash hashes a declaration's own API surface: kind, name,
// flags, type parameters and the type slots it owns. Members are hashed
// separately; location and doc changes do not affect the hash.
func ComputeSignatureHash(d model.Declaration) string {
	h := sha256.New()
	b := d.Common()
	fmt.Fprintf(h, "kind:%s\n", d.Kind())
	fmt.Fprintf(h, "name:%s\n", b.Name)
	fmt.Fprintf(h, "flags:%s\n", b.Flags)

	switch d := d.(type) {
	case *model.Variable:
		fmt.Fprintf(h, "type:%s\n", model.TypeKey(d.Type))
	case model.Callable:
		fmt.Fprintf(h, "typeparams:%s\n", strings.Join(d.TypeParams(), ","))
		sig := d.Sig()
		for i, p := range sig.Parameters {
			fmt.Fprintf(h, "param:%d:%s:%s:%v:%v\n", i, p.Name, model.TypeKey(p.Type), p.Optional, p.Rest)
		}
		fmt.Fprintf(h, "return:%s\n", model.TypeKey(sig.Return))
		for _, t := range sig.Throws {
			fmt.Fprintf(h, "throws:%s\n", model.TypeKey(t))
		}
	case *model.Class:
		fmt.Fprintf(h, "typeparams:%s\n", strings.Join(d.TypeParameters, ","))
		if d.Superclass != nil {
			fmt.Fprintf(h, "extends:%s\n", model.TypeKey(d.Superclass))
		}
		for _, t := range d.Implements {
			fmt.Fprintf(h, "implements:%s\n", model.TypeKey(t))
		}
	case *model.Interface:
		fmt.Fprintf(h, "typeparams:%s\n", strings.Join(d.TypeParameters, ","))
		for _, t := range d.Extends {
			fmt.Fprintf(h, "extends:%s\n", model.TypeKey(t))
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
