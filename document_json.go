package plugparam

import (
	"bytes"
	"errors"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when the input is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// FromJSON parses raw JSON into a Document, preserving object key order.
func FromJSON(raw []byte) (Document, error) {
	if !gjson.ValidBytes(raw) {
		return Document{}, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(raw)), nil
}

// MustFromJSON is like FromJSON but panics on error. Intended for tests and
// static fixtures.
func MustFromJSON(raw string) Document {
	d, err := FromJSON([]byte(raw))
	if err != nil {
		panic(err)
	}
	return d
}

// isJSONNumber reports whether s is exactly one JSON number literal.
func isJSONNumber(s string) bool {
	if s == "" || strings.TrimSpace(s) != s || !gjson.Valid(s) {
		return false
	}
	return gjson.Parse(s).Type == gjson.Number
}

func fromResult(r gjson.Result) Document {
	switch r.Type {
	case gjson.String:
		return Str(r.Str)
	case gjson.Number:
		return Document{kind: KindNumber, str: r.Raw}
	case gjson.True:
		return Boolean(true)
	case gjson.False:
		return Boolean(false)
	case gjson.JSON:
		if r.IsArray() {
			var items []Document
			r.ForEach(func(_, v gjson.Result) bool {
				items = append(items, fromResult(v))
				return true
			})
			if items == nil {
				items = []Document{}
			}
			return Document{kind: KindArray, items: items}
		}
		var members []Member
		r.ForEach(func(k, v gjson.Result) bool {
			members = append(members, Member{Key: k.Str, Value: fromResult(v)})
			return true
		})
		return Object(members...)
	default:
		return Null()
	}
}

// MarshalJSON encodes the document, keeping object key order.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes raw JSON into the document.
func (d *Document) UnmarshalJSON(raw []byte) error {
	doc, err := FromJSON(raw)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

func (d Document) writeJSON(buf *bytes.Buffer) error {
	switch d.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if d.boolean {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(d.str)
	case KindString:
		b, err := json.Marshal(d.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, it := range d.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range d.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := m.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// Decode unmarshals the document into v. Plugins use it to interpret
// RawDocument and RawArray fields with their own struct types.
func (d Document) Decode(v any) error {
	raw, err := d.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
