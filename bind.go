package plugparam

import "errors"

// Bind builds a fresh *P from an object document.
//
// Fields are bound in declaration order, parents first. Keys are matched
// exactly; keys the schema does not declare are ignored. A missing or null
// required field fails with ErrMissingField. A missing optional field takes
// its declared default. After all fields are bound the finalize steps run.
//
// Bind returns either a fully bound value or nil and an *Error; a partially
// bound value is never returned.
//
// Bind does not validate the schema graph. Registry.Register does that; call
// Schema.Validate first when binding with an unregistered schema.
func Bind[P any](s *Schema[P], doc Document) (*P, error) {
	if doc.Kind() != KindObject {
		return nil, &Error{Kind: KindTypeMismatch, Schema: s.name, Want: "object", Got: doc.Kind().String()}
	}
	return s.bind(doc, nil)
}

func (s *Schema[P]) bind(doc Document, path Path) (*P, error) {
	p := s.construct()
	if p == nil {
		return nil, &Error{Kind: KindInvalidSchema, Schema: s.name, Path: path, Cause: errNilParam}
	}
	if err := s.bindFields(p, doc, path); err != nil {
		return nil, err
	}
	if err := s.runFinalize(p, path); err != nil {
		return nil, err
	}
	return p, nil
}

var errNilParam = errors.New("constructor returned nil")

func (s *Schema[P]) bindFields(p *P, doc Document, path Path) error {
	for _, par := range s.parents {
		if err := par.bind(p, doc, path); err != nil {
			return err
		}
	}
	for _, f := range s.fields {
		if f.err != nil {
			return &Error{Kind: KindInvalidSchema, Schema: s.name, Path: path.Field(f.name), Cause: f.err}
		}
		node, ok := doc.Get(f.name)
		if !ok || node.IsNull() {
			if f.required {
				return &Error{Kind: KindMissingField, Schema: s.name, Path: path.Field(f.name)}
			}
			if f.setDef != nil {
				f.setDef(p)
			}
			continue
		}
		if err := f.bind(p, node, path.Field(f.name)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema[P]) runFinalize(p *P, path Path) error {
	for _, par := range s.parents {
		if err := par.finalize(p, path); err != nil {
			return err
		}
	}
	if s.finalize == nil {
		return nil
	}
	if err := s.finalize(p); err != nil {
		return &Error{Kind: KindFinalize, Schema: s.name, Path: path, Cause: err}
	}
	return nil
}
