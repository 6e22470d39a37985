package plugparam

import (
	"errors"
	"math"
	"net/url"
	"strings"
)

// Type is a coercion rule that converts one document node into a value of
// type V. Types are stateless and safe for concurrent use.
//
// The set of types is closed; use the constructors below.
type Type[V any] interface {
	// Name describes the accepted input, e.g. "int" or "array of string".
	Name() string

	coerce(doc Document, path Path) (V, error)
	clone(v V) V
	refs() []schemaNode
}

// Coerce applies t to a single document node.
func Coerce[V any](t Type[V], doc Document) (V, error) {
	return t.coerce(doc, nil)
}

type scalar[V any] struct{}

func (scalar[V]) clone(v V) V        { return v }
func (scalar[V]) refs() []schemaNode { return nil }

// String accepts string nodes.
func String() Type[string] { return stringType{} }

type stringType struct{ scalar[string] }

func (stringType) Name() string { return "string" }

func (stringType) coerce(doc Document, path Path) (string, error) {
	s, ok := doc.AsString()
	if !ok {
		return "", typeMismatch(path, "string", doc.Kind())
	}
	return s, nil
}

// Int accepts number nodes with an integral value that fits in an int.
// 4.5 is rejected; 4.0 is accepted.
func Int() Type[int] { return intType{} }

type intType struct{ scalar[int] }

func (intType) Name() string { return "int" }

func (intType) coerce(doc Document, path Path) (int, error) {
	if doc.Kind() != KindNumber {
		return 0, typeMismatch(path, "int", doc.Kind())
	}
	i, ok := doc.AsInt()
	if !ok {
		return 0, outOfRange(doc, path, "int")
	}
	return i, nil
}

// Double accepts any number node as a float64.
func Double() Type[float64] { return doubleType{} }

type doubleType struct{ scalar[float64] }

func (doubleType) Name() string { return "double" }

func (doubleType) coerce(doc Document, path Path) (float64, error) {
	if doc.Kind() != KindNumber {
		return 0, typeMismatch(path, "double", doc.Kind())
	}
	f, ok := doc.AsFloat()
	if !ok {
		return 0, outOfRange(doc, path, "double")
	}
	return f, nil
}

// Float accepts any number node within float32 range.
func Float() Type[float32] { return floatType{} }

type floatType struct{ scalar[float32] }

func (floatType) Name() string { return "float" }

func (floatType) coerce(doc Document, path Path) (float32, error) {
	if doc.Kind() != KindNumber {
		return 0, typeMismatch(path, "float", doc.Kind())
	}
	f, ok := doc.AsFloat()
	if !ok || math.Abs(f) > math.MaxFloat32 {
		return 0, outOfRange(doc, path, "float")
	}
	return float32(f), nil
}

// outOfRange reports a number node that does not fit want, quoting its
// text.
func outOfRange(doc Document, path Path, want string) *Error {
	text, _ := doc.NumberText()
	return &Error{Kind: KindTypeMismatch, Path: path, Want: want, Got: "number " + text}
}

// Bool accepts bool nodes.
func Bool() Type[bool] { return boolType{} }

type boolType struct{ scalar[bool] }

func (boolType) Name() string { return "bool" }

func (boolType) coerce(doc Document, path Path) (bool, error) {
	b, ok := doc.AsBool()
	if !ok {
		return false, typeMismatch(path, "bool", doc.Kind())
	}
	return b, nil
}

// URL accepts string nodes holding an absolute URL.
func URL() Type[*url.URL] { return urlType{} }

type urlType struct{}

func (urlType) Name() string       { return "url" }
func (urlType) refs() []schemaNode { return nil }

func (urlType) clone(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

func (urlType) coerce(doc Document, path Path) (*url.URL, error) {
	s, ok := doc.AsString()
	if !ok {
		return nil, typeMismatch(path, "url", doc.Kind())
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, &Error{Kind: KindMalformedURL, Path: path, Value: s, Cause: err}
	}
	if u.Scheme == "" {
		return nil, &Error{Kind: KindMalformedURL, Path: path, Value: s, Cause: errMissingScheme}
	}
	return u, nil
}

var errMissingScheme = errors.New("missing protocol scheme")

// Enum accepts string nodes naming one of names, compared
// case-insensitively. The bound value is the declared constant, so "north",
// "North" and "NORTH" all yield the same value.
func Enum[E ~string](names ...E) Type[E] {
	cp := make([]E, len(names))
	copy(cp, names)
	return enumType[E]{names: cp}
}

type enumType[E ~string] struct {
	scalar[E]
	names []E
}

func (enumType[E]) Name() string { return "enum" }

func (t enumType[E]) coerce(doc Document, path Path) (E, error) {
	s, ok := doc.AsString()
	if !ok {
		return "", typeMismatch(path, "enum", doc.Kind())
	}
	for _, n := range t.names {
		if strings.EqualFold(string(n), s) {
			return n, nil
		}
	}
	allowed := make([]string, len(t.names))
	for i, n := range t.names {
		allowed[i] = string(n)
	}
	return "", &Error{Kind: KindUnknownEnumValue, Path: path, Value: s, Allowed: allowed}
}

// RawDocument accepts an object node and passes it through uninterpreted.
func RawDocument() Type[Document] { return rawType{want: KindObject} }

// RawArray accepts an array node and passes it through uninterpreted.
func RawArray() Type[Document] { return rawType{want: KindArray} }

type rawType struct {
	scalar[Document]
	want Kind
}

func (t rawType) Name() string {
	if t.want == KindArray {
		return "raw array"
	}
	return "raw document"
}

func (t rawType) coerce(doc Document, path Path) (Document, error) {
	if doc.Kind() != t.want {
		return Document{}, typeMismatch(path, t.want.String(), doc.Kind())
	}
	return doc, nil
}

// Nested accepts an object node and binds it with schema, finalize
// included.
func Nested[P any](schema *Schema[P]) Type[*P] { return nestedType[P]{schema: schema} }

type nestedType[P any] struct {
	schema *Schema[P]
}

func (t nestedType[P]) Name() string       { return t.schema.name }
func (t nestedType[P]) refs() []schemaNode { return []schemaNode{t.schema} }

func (t nestedType[P]) clone(p *P) *P {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (t nestedType[P]) coerce(doc Document, path Path) (*P, error) {
	if doc.Kind() != KindObject {
		return nil, typeMismatch(path, "object", doc.Kind())
	}
	return t.schema.bind(doc, path)
}

// ArrayOf accepts an array node and coerces each element with elem. The
// first failing element aborts the field; its index is on the error path.
func ArrayOf[V any](elem Type[V]) Type[[]V] { return arrayType[V]{elem: elem} }

type arrayType[V any] struct {
	elem Type[V]
}

func (t arrayType[V]) Name() string       { return "array of " + t.elem.Name() }
func (t arrayType[V]) refs() []schemaNode { return t.elem.refs() }

func (t arrayType[V]) clone(vs []V) []V {
	if vs == nil {
		return nil
	}
	cp := make([]V, len(vs))
	for i, v := range vs {
		cp[i] = t.elem.clone(v)
	}
	return cp
}

func (t arrayType[V]) coerce(doc Document, path Path) ([]V, error) {
	if doc.Kind() != KindArray {
		return nil, typeMismatch(path, "array", doc.Kind())
	}
	out := make([]V, doc.Len())
	for i := range out {
		v, err := t.elem.coerce(doc.Index(i), path.Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
