package plugparam

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind identifies the shape of a Document node.
type Kind int

const (
	KindNull Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBool
)

var kindNames = [...]string{
	KindNull:   "null",
	KindObject: "object",
	KindArray:  "array",
	KindString: "string",
	KindNumber: "number",
	KindBool:   "bool",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Member is one key/value entry of an object Document.
type Member struct {
	Key   string
	Value Document
}

// Document is an immutable JSON-like tree node. The zero value is null.
//
// Objects keep their keys in input order. Numbers keep their original text
// so integral fields can be checked without float rounding.
//
// Documents are built with FromJSON, FromYAML, FromValue or the literal
// constructors (Object, Array, Str, Num, Boolean) and are safe to share between
// goroutines.
type Document struct {
	kind    Kind
	str     string // string value, or number text
	boolean bool
	members []Member
	index   map[string]int
	items   []Document
}

// Null returns the null document.
func Null() Document { return Document{} }

// Str returns a string document.
func Str(s string) Document { return Document{kind: KindString, str: s} }

// Num returns a number document from a float. It panics if f is NaN or
// infinite, which JSON cannot represent; FromValue reports those as errors.
func Num(f float64) Document {
	d, err := floatNum(f)
	if err != nil {
		panic(err)
	}
	return d
}

func floatNum(f float64) (Document, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Document{}, fmt.Errorf("%v is not a JSON number", f)
	}
	return Document{kind: KindNumber, str: strconv.FormatFloat(f, 'g', -1, 64)}, nil
}

// IntNum returns a number document from an integer.
func IntNum(i int64) Document {
	return Document{kind: KindNumber, str: strconv.FormatInt(i, 10)}
}

// NumText returns a number document from its textual form. The text must be
// a JSON number: NaN, Inf, hex floats and surrounding spaces are rejected.
func NumText(s string) (Document, error) {
	if !isJSONNumber(s) {
		return Document{}, fmt.Errorf("invalid number %q", s)
	}
	return Document{kind: KindNumber, str: s}, nil
}

// Boolean returns a bool document.
func Boolean(b bool) Document { return Document{kind: KindBool, boolean: b} }

// Object returns an object document with members in the given order. A key
// repeated later in the list replaces the earlier value but keeps its
// original position.
func Object(members ...Member) Document {
	d := Document{kind: KindObject, index: make(map[string]int, len(members))}
	for _, m := range members {
		if i, ok := d.index[m.Key]; ok {
			d.members[i].Value = m.Value
			continue
		}
		d.index[m.Key] = len(d.members)
		d.members = append(d.members, m)
	}
	return d
}

// Array returns an array document.
func Array(items ...Document) Document {
	cp := make([]Document, len(items))
	copy(cp, items)
	return Document{kind: KindArray, items: cp}
}

// M is shorthand for building a Member.
func M(key string, v Document) Member { return Member{Key: key, Value: v} }

// Kind reports the node kind.
func (d Document) Kind() Kind { return d.kind }

// IsNull reports whether the node is null.
func (d Document) IsNull() bool { return d.kind == KindNull }

// Get returns the member value for key in an object. It reports false for
// absent keys and for non-object documents. The lookup is case-sensitive.
func (d Document) Get(key string) (Document, bool) {
	if d.kind != KindObject {
		return Document{}, false
	}
	i, ok := d.index[key]
	if !ok {
		return Document{}, false
	}
	return d.members[i].Value, true
}

// Keys returns the object keys in input order.
func (d Document) Keys() []string {
	keys := make([]string, len(d.members))
	for i, m := range d.members {
		keys[i] = m.Key
	}
	return keys
}

// Members returns a copy of the object members in input order.
func (d Document) Members() []Member {
	cp := make([]Member, len(d.members))
	copy(cp, d.members)
	return cp
}

// Len returns the number of members or items. Scalars have length zero.
func (d Document) Len() int {
	switch d.kind {
	case KindObject:
		return len(d.members)
	case KindArray:
		return len(d.items)
	default:
		return 0
	}
}

// Index returns the i-th array item.
func (d Document) Index(i int) Document {
	if d.kind != KindArray || i < 0 || i >= len(d.items) {
		return Document{}
	}
	return d.items[i]
}

// Items returns a copy of the array items.
func (d Document) Items() []Document {
	cp := make([]Document, len(d.items))
	copy(cp, d.items)
	return cp
}

// AsString returns the string value, or false if the node is not a string.
func (d Document) AsString() (string, bool) {
	if d.kind != KindString {
		return "", false
	}
	return d.str, true
}

// AsFloat returns the numeric value, or false if the node is not a number.
func (d Document) AsFloat() (float64, bool) {
	if d.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(d.str, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// AsInt returns the value as an int when the node is a number with an
// integral value that fits. 4.0 and 4e2 are integral; 4.5 is not.
func (d Document) AsInt() (int, bool) {
	if d.kind != KindNumber {
		return 0, false
	}
	if i, err := strconv.ParseInt(d.str, 10, strconv.IntSize); err == nil {
		return int(i), true
	}
	f, err := strconv.ParseFloat(d.str, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}

// NumberText returns the original text of a number node.
func (d Document) NumberText() (string, bool) {
	if d.kind != KindNumber {
		return "", false
	}
	return d.str, true
}

// AsBool returns the boolean value, or false in the second result if the
// node is not a bool.
func (d Document) AsBool() (value, ok bool) {
	if d.kind != KindBool {
		return false, false
	}
	return d.boolean, true
}

// Interface converts the document to plain Go values: map[string]any,
// []any, string, float64, bool and nil.
func (d Document) Interface() any {
	switch d.kind {
	case KindObject:
		m := make(map[string]any, len(d.members))
		for _, mem := range d.members {
			m[mem.Key] = mem.Value.Interface()
		}
		return m
	case KindArray:
		s := make([]any, len(d.items))
		for i, it := range d.items {
			s[i] = it.Interface()
		}
		return s
	case KindString:
		return d.str
	case KindNumber:
		f, _ := d.AsFloat()
		return f
	case KindBool:
		return d.boolean
	default:
		return nil
	}
}

// Equal reports deep equality. Object member order is not significant.
// Numbers compare by value.
func (d Document) Equal(o Document) bool {
	if d.kind != o.kind {
		return false
	}
	switch d.kind {
	case KindNull:
		return true
	case KindString:
		return d.str == o.str
	case KindBool:
		return d.boolean == o.boolean
	case KindNumber:
		a, _ := d.AsFloat()
		b, _ := o.AsFloat()
		return a == b
	case KindArray:
		if len(d.items) != len(o.items) {
			return false
		}
		for i := range d.items {
			if !d.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(d.members) != len(o.members) {
			return false
		}
		for _, m := range d.members {
			ov, ok := o.Get(m.Key)
			if !ok || !m.Value.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// jsonNumber matches json.Number from encoding/json and goccy/go-json.
type jsonNumber interface {
	Float64() (float64, error)
	String() string
}

// FromValue builds a Document from plain Go values as produced by
// encoding/json or yaml decoding. Map keys are sorted since Go maps carry no
// order. Supported: nil, bool, string, all integer and float kinds,
// map[string]any, []any, []string, []float64, Document.
func FromValue(v any) (Document, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Document:
		return x, nil
	case bool:
		return Boolean(x), nil
	case string:
		return Str(x), nil
	case int:
		return IntNum(int64(x)), nil
	case int32:
		return IntNum(int64(x)), nil
	case int64:
		return IntNum(x), nil
	case uint:
		return NumText(strconv.FormatUint(uint64(x), 10))
	case uint64:
		return NumText(strconv.FormatUint(x, 10))
	case float32:
		return floatNum(float64(x))
	case float64:
		return floatNum(x)
	case jsonNumber:
		return NumText(x.String())
	case []any:
		items := make([]Document, len(x))
		for i, it := range x {
			d, err := FromValue(it)
			if err != nil {
				return Document{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = d
		}
		return Document{kind: KindArray, items: items}, nil
	case []string:
		items := make([]Document, len(x))
		for i, s := range x {
			items[i] = Str(s)
		}
		return Document{kind: KindArray, items: items}, nil
	case []float64:
		items := make([]Document, len(x))
		for i, f := range x {
			d, err := floatNum(f)
			if err != nil {
				return Document{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = d
		}
		return Document{kind: KindArray, items: items}, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make([]Member, len(keys))
		for i, k := range keys {
			d, err := FromValue(x[k])
			if err != nil {
				return Document{}, fmt.Errorf("%s: %w", k, err)
			}
			members[i] = Member{Key: k, Value: d}
		}
		return Object(members...), nil
	default:
		return Document{}, fmt.Errorf("unsupported document value %T", v)
	}
}

// MustFromValue is like FromValue but panics on error. Intended for tests
// and static fixtures.
func MustFromValue(v any) Document {
	d, err := FromValue(v)
	if err != nil {
		panic(err)
	}
	return d
}
