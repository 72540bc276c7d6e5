package store

import (
	"encoding/json"
	"fmt"

	"github.com/jward/bindgen/internal/model"
)

// typeJSON is the stored form of a model.Type.
type typeJSON struct {
	Kind      string         `json:"kind"`
	Optional  bool           `json:"optional,omitempty"`
	Element   *typeJSON      `json:"element,omitempty"`
	Signature *signatureJSON `json:"signature,omitempty"`
	Name      string         `json:"name,omitempty"`
	Target    int            `json:"target,omitempty"`
	Site      *locationJSON  `json:"site,omitempty"`
}

type paramJSON struct {
	Name     string    `json:"name"`
	Type     *typeJSON `json:"type,omitempty"`
	Optional bool      `json:"optional,omitempty"`
	Rest     bool      `json:"rest,omitempty"`
}

type signatureJSON struct {
	Params []paramJSON `json:"params,omitempty"`
	Return *typeJSON   `json:"return,omitempty"`
	Throws []*typeJSON `json:"throws,omitempty"`
}

type locationJSON struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

// payloadJSON holds the kind-specific fields of a declaration.
type payloadJSON struct {
	TypeParams []string       `json:"type_params,omitempty"`
	Type       *typeJSON      `json:"type,omitempty"`
	Signature  *signatureJSON `json:"signature,omitempty"`
	Superclass *typeJSON      `json:"superclass,omitempty"`
	Implements []*typeJSON    `json:"implements,omitempty"`
	Extends    []*typeJSON    `json:"extends,omitempty"`
}

func encodeType(t model.Type) *typeJSON {
	if t == nil {
		return nil
	}
	out := &typeJSON{Kind: t.Kind().String(), Optional: t.IsOptional()}
	switch t := t.(type) {
	case *model.ArrayType:
		out.Element = encodeType(t.Element)
	case *model.FunctionType:
		out.Signature = encodeSignature(t.Signature)
	case *model.DeclaredType:
		out.Name = t.Name
		out.Target = t.Target
		if !t.Site.IsZero() {
			out.Site = &locationJSON{File: t.Site.File, Line: t.Site.Line, Col: t.Site.Col}
		}
	}
	return out
}

func encodeTypes(ts []model.Type) []*typeJSON {
	var out []*typeJSON
	for _, t := range ts {
		out = append(out, encodeType(t))
	}
	return out
}

func encodeSignature(s model.Signature) *signatureJSON {
	out := &signatureJSON{Return: encodeType(s.Return), Throws: encodeTypes(s.Throws)}
	for _, p := range s.Parameters {
		out.Params = append(out.Params, paramJSON{
			Name:     p.Name,
			Type:     encodeType(p.Type),
			Optional: p.Optional,
			Rest:     p.Rest,
		})
	}
	return out
}

func decodeType(j *typeJSON) (model.Type, error) {
	if j == nil {
		return nil, nil
	}
	kind, ok := model.ParseTypeKind(j.Kind)
	if !ok {
		return nil, fmt.Errorf("decode type: unknown kind %q", j.Kind)
	}
	var t model.Type
	switch kind {
	case model.TypeArray:
		elem, err := decodeType(j.Element)
		if err != nil {
			return nil, err
		}
		t = &model.ArrayType{Element: elem}
	case model.TypeFunction:
		sig, err := decodeSignature(j.Signature)
		if err != nil {
			return nil, err
		}
		t = &model.FunctionType{Signature: sig}
	case model.TypeDeclared:
		d := &model.DeclaredType{Name: j.Name, Target: j.Target}
		if j.Site != nil {
			d.Site = model.Location{File: j.Site.File, Line: j.Site.Line, Col: j.Site.Col}
		}
		t = d
	default:
		t = model.NewPrimitive(kind)
	}
	t.SetOptional(j.Optional)
	return t, nil
}

func decodeTypes(js []*typeJSON) ([]model.Type, error) {
	var out []model.Type
	for _, j := range js {
		t, err := decodeType(j)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func decodeSignature(j *signatureJSON) (model.Signature, error) {
	var sig model.Signature
	if j == nil {
		return sig, nil
	}
	for _, p := range j.Params {
		t, err := decodeType(p.Type)
		if err != nil {
			return sig, err
		}
		sig.Parameters = append(sig.Parameters, model.Parameter{
			Name:     p.Name,
			Type:     t,
			Optional: p.Optional,
			Rest:     p.Rest,
		})
	}
	ret, err := decodeType(j.Return)
	if err != nil {
		return sig, err
	}
	sig.Return = ret
	if sig.Throws, err = decodeTypes(j.Throws); err != nil {
		return sig, err
	}
	return sig, nil
}

// encodePayload renders the kind-specific fields of d as JSON.
func encodePayload(d model.Declaration) (string, error) {
	var p payloadJSON
	switch d := d.(type) {
	case *model.Variable:
		p.Type = encodeType(d.Type)
	case *model.Function:
		p.TypeParams = d.TypeParameters
		p.Signature = encodeSignature(d.Signature)
	case *model.Constructor:
		p.TypeParams = d.TypeParameters
		p.Signature = encodeSignature(d.Signature)
	case *model.Class:
		p.TypeParams = d.TypeParameters
		p.Superclass = encodeType(d.Superclass)
		p.Implements = encodeTypes(d.Implements)
	case *model.Interface:
		p.TypeParams = d.TypeParameters
		p.Extends = encodeTypes(d.Extends)
	case *model.Namespace:
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(b), nil
}

// decodeDeclaration rebuilds a declaration from its row. Members are
// attached by the caller.
func decodeDeclaration(row *Declaration) (model.Declaration, error) {
	kind, ok := model.ParseDeclarationKind(row.Kind)
	if !ok {
		return nil, fmt.Errorf("decode declaration %q: unknown kind %q", row.QName, row.Kind)
	}
	var p payloadJSON
	if row.Payload != "" {
		if err := json.Unmarshal([]byte(row.Payload), &p); err != nil {
			return nil, fmt.Errorf("decode declaration %q: %w", row.QName, err)
		}
	}
	base := model.Base{
		Name:     row.Name,
		Doc:      row.Doc,
		Flags:    model.ParseFlags(row.Flags),
		Location: model.Location{File: row.LocFile, Line: row.Line, Col: row.Col},
	}

	var err error
	switch kind {
	case model.KindVariable:
		v := &model.Variable{Base: base}
		v.Type, err = decodeType(p.Type)
		return v, err
	case model.KindFunction:
		f := &model.Function{Base: base, TypeParameters: p.TypeParams}
		f.Signature, err = decodeSignature(p.Signature)
		return f, err
	case model.KindConstructor:
		c := &model.Constructor{Base: base, TypeParameters: p.TypeParams}
		c.Signature, err = decodeSignature(p.Signature)
		return c, err
	case model.KindClass:
		c := &model.Class{Base: base, TypeParameters: p.TypeParams}
		if c.Superclass, err = decodeType(p.Superclass); err != nil {
			return nil, err
		}
		c.Implements, err = decodeTypes(p.Implements)
		return c, err
	case model.KindInterface:
		i := &model.Interface{Base: base, TypeParameters: p.TypeParams}
		i.Extends, err = decodeTypes(p.Extends)
		return i, err
	default:
		return &model.Namespace{Base: base}, nil
	}
}
