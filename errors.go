package plugparam

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFrozen is returned by Register once the registry has been frozen.
var ErrFrozen = errors.New("registry is frozen")

// ErrorKind classifies an Error.
type ErrorKind int

const (
	// Registration time.
	KindNameCollision ErrorKind = iota + 1
	KindSchemaCycle
	KindInvalidSchema

	// Dispatch time.
	KindUnknownType
	KindMissingField
	KindTypeMismatch
	KindMalformedURL
	KindUnknownEnumValue
	KindFinalize
	KindParseFailure
)

var errorKindNames = map[ErrorKind]string{
	KindNameCollision:    "name collision",
	KindSchemaCycle:      "schema cycle",
	KindInvalidSchema:    "invalid schema",
	KindUnknownType:      "unknown type",
	KindMissingField:     "missing field",
	KindTypeMismatch:     "type mismatch",
	KindMalformedURL:     "malformed url",
	KindUnknownEnumValue: "unknown enum value",
	KindFinalize:         "finalize failed",
	KindParseFailure:     "parse failure",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrNameCollision    = &Error{Kind: KindNameCollision}
	ErrSchemaCycle      = &Error{Kind: KindSchemaCycle}
	ErrInvalidSchema    = &Error{Kind: KindInvalidSchema}
	ErrUnknownType      = &Error{Kind: KindUnknownType}
	ErrMissingField     = &Error{Kind: KindMissingField}
	ErrTypeMismatch     = &Error{Kind: KindTypeMismatch}
	ErrMalformedURL     = &Error{Kind: KindMalformedURL}
	ErrUnknownEnumValue = &Error{Kind: KindUnknownEnumValue}
	ErrFinalize         = &Error{Kind: KindFinalize}
	ErrParseFailure     = &Error{Kind: KindParseFailure}
)

// PathElem is one step of a Path: a field name or an array index.
type PathElem struct {
	Field string
	Index int // valid when Field is empty
}

// Path locates a node inside a document, outermost first.
type Path []PathElem

// FieldPath builds a path of field names.
func FieldPath(fields ...string) Path {
	p := make(Path, len(fields))
	for i, f := range fields {
		p[i] = PathElem{Field: f}
	}
	return p
}

// Field returns p extended by a field name.
func (p Path) Field(name string) Path {
	return append(p[:len(p):len(p)], PathElem{Field: name})
}

// Index returns p extended by an array index.
func (p Path) Index(i int) Path {
	return append(p[:len(p):len(p)], PathElem{Index: i})
}

// String renders the path as "layers[2].url".
func (p Path) String() string {
	var b strings.Builder
	for _, e := range p {
		if e.Field == "" {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(e.Index))
			b.WriteByte(']')
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(e.Field)
	}
	return b.String()
}

// Error is the structured failure returned by registration, binding and
// dispatch.
type Error struct {
	Kind ErrorKind

	// TypeName is the plugin type name being dispatched or registered.
	TypeName string

	// Schema names the schema that was being bound or registered.
	Schema string

	// Path locates the failing field, when applicable.
	Path Path

	// Value is the offending input for enum and URL failures.
	Value string

	// Allowed lists the valid enum names for KindUnknownEnumValue.
	Allowed []string

	// Want and Got describe a type mismatch.
	Want string
	Got  string

	// Cause is the wrapped error, for finalize and parse failures.
	Cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(e.Path.String())
	}
	switch e.Kind {
	case KindNameCollision:
		fmt.Fprintf(&b, ": type name %q is already registered", e.TypeName)
	case KindSchemaCycle:
		fmt.Fprintf(&b, ": schema %q refers to itself", e.Schema)
	case KindUnknownType:
		fmt.Fprintf(&b, ": no plugin for type %q", e.TypeName)
	case KindMissingField:
		fmt.Fprintf(&b, ": required by %s", e.Schema)
	case KindTypeMismatch:
		fmt.Fprintf(&b, ": want %s, got %s", e.Want, e.Got)
	case KindMalformedURL:
		fmt.Fprintf(&b, ": %q", e.Value)
	case KindUnknownEnumValue:
		fmt.Fprintf(&b, ": %q is not one of [%s]", e.Value, strings.Join(e.Allowed, ", "))
	case KindFinalize, KindInvalidSchema:
		if e.Schema != "" {
			fmt.Fprintf(&b, ": schema %s", e.Schema)
		}
	case KindParseFailure:
		fmt.Fprintf(&b, ": type %q", e.TypeName)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same Kind, so callers can test with the
// package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the ErrorKind of the first *Error in err's chain, or zero.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func typeMismatch(p Path, want string, got Kind) *Error {
	return &Error{Kind: KindTypeMismatch, Path: p, Want: want, Got: got.String()}
}

func pathOf(err error) Path {
	var e *Error
	if errors.As(err, &e) {
		return e.Path
	}
	return nil
}

// withTypeName annotates a bind error with the type name being dispatched.
func withTypeName(err error, typeName string) error {
	e, ok := err.(*Error)
	if !ok || e.TypeName != "" {
		return err
	}
	cp := *e
	cp.TypeName = typeName
	return &cp
}
