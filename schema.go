package plugparam

import (
	"errors"
	"fmt"
)

// schemaNode is the type-erased view of a Schema used for registration
// checks.
type schemaNode interface {
	schemaName() string
	children() []schemaNode
	fieldNames() []string
	checkFields() error
}

// Schema describes how to build a *P from a document object: an ordered
// list of fields, a constructor, an optional finalize step and optional
// parent schemas bound into embedded structs.
//
// Schemas are assembled at startup and must not be changed once a plugin
// using them is registered.
//
// Example:
//
//	type Circle struct {
//	    Radius float64
//	    Color  Color
//	}
//
//	var circleSchema = plugparam.NewSchema[Circle]("circle").Add(
//	    plugparam.Required("radius", plugparam.Double(), func(c *Circle) *float64 { return &c.Radius }),
//	    plugparam.Optional("color", plugparam.Enum(Red, Green, Blue), func(c *Circle) *Color { return &c.Color }, Red),
//	)
type Schema[P any] struct {
	name      string
	construct func() *P
	finalize  func(*P) error
	fields    []*Field[P]
	parents   []parent[P]
}

// SchemaOption configures a Schema.
type SchemaOption[P any] func(*Schema[P])

// WithConstructor sets the function allocating a fresh *P for each bind.
// It must return a new value on every call. Defaults to new(P).
func WithConstructor[P any](fn func() *P) SchemaOption[P] {
	return func(s *Schema[P]) {
		s.construct = fn
	}
}

// WithFinalize sets a step run after every field is bound. A finalize error
// fails the bind and the value is discarded.
//
// Example:
//
//	plugparam.WithFinalize(func(p *WMSParam) error {
//	    if len(p.Layers) == 0 {
//	        return errors.New("at least one layer is required")
//	    }
//	    return nil
//	})
func WithFinalize[P any](fn func(*P) error) SchemaOption[P] {
	return func(s *Schema[P]) {
		s.finalize = fn
	}
}

// WithParent binds the fields of parent into the struct returned by embed,
// reading them from the same document object. Parent fields are bound
// before the schema's own fields and the parent's finalize runs before the
// schema's. Field names must not collide with the parent's.
//
// Example:
//
//	type TiledWMSParam struct {
//	    WMSParam
//	    TileSize []int
//	}
//
//	plugparam.WithParent(wmsSchema, func(p *TiledWMSParam) *WMSParam { return &p.WMSParam })
func WithParent[P, Q any](schema *Schema[Q], embed func(*P) *Q) SchemaOption[P] {
	return func(s *Schema[P]) {
		s.parents = append(s.parents, parent[P]{
			node: schema,
			bind: func(p *P, doc Document, path Path) error {
				return schema.bindFields(embed(p), doc, path)
			},
			finalize: func(p *P, path Path) error {
				return schema.runFinalize(embed(p), path)
			},
		})
	}
}

type parent[P any] struct {
	node     schemaNode
	bind     func(p *P, doc Document, path Path) error
	finalize func(p *P, path Path) error
}

// NewSchema creates an empty schema. Add fields with Add.
func NewSchema[P any](name string, opts ...SchemaOption[P]) *Schema[P] {
	s := &Schema[P]{
		name:      name,
		construct: func() *P { return new(P) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends fields in declaration order and returns s.
func (s *Schema[P]) Add(fields ...*Field[P]) *Schema[P] {
	s.fields = append(s.fields, fields...)
	return s
}

// Name returns the schema name.
func (s *Schema[P]) Name() string { return s.name }

// FieldNames returns the names of all fields, parents first.
func (s *Schema[P]) FieldNames() []string { return s.fieldNames() }

// New allocates a fresh, unbound param with the schema constructor.
func (s *Schema[P]) New() *P { return s.construct() }

// Validate checks the schema graph reachable from s: names must be
// non-empty and unique, parents must not redeclare fields, and no schema
// may reach itself through Nested fields or parents.
func (s *Schema[P]) Validate() error {
	return validateSchema(s)
}

func (s *Schema[P]) schemaName() string { return s.name }

func (s *Schema[P]) children() []schemaNode {
	var out []schemaNode
	for _, p := range s.parents {
		out = append(out, p.node)
	}
	for _, f := range s.fields {
		out = append(out, f.refs...)
	}
	return out
}

func (s *Schema[P]) fieldNames() []string {
	var names []string
	for _, p := range s.parents {
		names = append(names, p.node.fieldNames()...)
	}
	for _, f := range s.fields {
		names = append(names, f.name)
	}
	return names
}

func (s *Schema[P]) checkFields() error {
	if s.name == "" {
		return &Error{Kind: KindInvalidSchema, Cause: errors.New("schema name is empty")}
	}
	if s.construct == nil {
		return &Error{Kind: KindInvalidSchema, Schema: s.name, Cause: errors.New("constructor is nil")}
	}
	inherited := make(map[string]string)
	for _, p := range s.parents {
		for _, n := range p.node.fieldNames() {
			if owner, ok := inherited[n]; ok {
				return &Error{
					Kind:   KindInvalidSchema,
					Schema: s.name,
					Path:   FieldPath(n),
					Cause:  fmt.Errorf("declared by parents %s and %s", owner, p.node.schemaName()),
				}
			}
			inherited[n] = p.node.schemaName()
		}
	}
	own := make(map[string]bool, len(s.fields))
	for i, f := range s.fields {
		if f == nil {
			return &Error{Kind: KindInvalidSchema, Schema: s.name, Cause: fmt.Errorf("field %d is nil", i)}
		}
		if f.err != nil {
			return &Error{Kind: KindInvalidSchema, Schema: s.name, Path: FieldPath(f.name), Cause: f.err}
		}
		if owner, ok := inherited[f.name]; ok {
			return &Error{
				Kind:   KindInvalidSchema,
				Schema: s.name,
				Path:   FieldPath(f.name),
				Cause:  fmt.Errorf("collides with parent %s", owner),
			}
		}
		if own[f.name] {
			return &Error{Kind: KindInvalidSchema, Schema: s.name, Path: FieldPath(f.name), Cause: errors.New("duplicate field")}
		}
		own[f.name] = true
	}
	return nil
}

// validateSchema walks the schema graph depth first, checking each schema's
// fields once and rejecting back edges.
func validateSchema(root schemaNode) error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[schemaNode]int)
	var walk func(n schemaNode) error
	walk = func(n schemaNode) error {
		switch state[n] {
		case visiting:
			return &Error{Kind: KindSchemaCycle, Schema: n.schemaName()}
		case done:
			return nil
		}
		state[n] = visiting
		for _, c := range n.children() {
			if err := walk(c); err != nil {
				return err
			}
		}
		// Field checks after children so parent field lists are known to be
		// finite.
		if err := n.checkFields(); err != nil {
			return err
		}
		state[n] = done
		return nil
	}
	return walk(root)
}

// Field binds one document key into a field of *P. Create fields with
// Required or Optional.
type Field[P any] struct {
	name     string
	typeName string
	required bool
	refs     []schemaNode
	bind     func(p *P, doc Document, path Path) error
	setDef   func(p *P)
	err      error
}

// Required declares a field that must be present (and not null) in the
// document.
func Required[P, V any](name string, t Type[V], target func(*P) *V) *Field[P] {
	f := newField(name, t, target)
	f.required = true
	return f
}

// Optional declares a field that may be absent. When absent or null, the
// field is set to a copy of def.
func Optional[P, V any](name string, t Type[V], target func(*P) *V, def V) *Field[P] {
	f := newField(name, t, target)
	if f.err == nil {
		f.setDef = func(p *P) {
			*target(p) = t.clone(def)
		}
	}
	return f
}

func newField[P, V any](name string, t Type[V], target func(*P) *V) *Field[P] {
	f := &Field[P]{name: name}
	switch {
	case name == "":
		f.err = errors.New("field name is empty")
	case t == nil:
		f.err = errors.New("field type is nil")
	case target == nil:
		f.err = errors.New("field target is nil")
	}
	if f.err != nil {
		return f
	}
	f.typeName = t.Name()
	f.refs = t.refs()
	f.bind = func(p *P, doc Document, path Path) error {
		v, err := t.coerce(doc, path)
		if err != nil {
			return err
		}
		*target(p) = v
		return nil
	}
	return f
}

// Name returns the document key of the field.
func (f *Field[P]) Name() string { return f.name }

// TypeName describes the accepted input.
func (f *Field[P]) TypeName() string { return f.typeName }

// IsRequired reports whether the field must be present.
func (f *Field[P]) IsRequired() bool { return f.required }
