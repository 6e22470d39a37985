package plugparam

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
)

// invoker wraps a typed plugin so plugins with different param types can
// share one map.
type invoker[C, L any] func(ctx context.Context, typeName string, doc Document, cfg C) (L, error)

type entry[C, L any] struct {
	desc   Descriptor
	invoke invoker[C, L]
}

// Registry maps case-insensitive type names to plugins and dispatches
// documents to them.
//
// Usage:
//  1. Create a registry with NewRegistry
//  2. Register every plugin with Register or MustRegister
//  3. Freeze it (optional; the first dispatch freezes it)
//  4. Dispatch documents from any number of goroutines
//
// Registry is safe for concurrent use. Registration is serialized and
// freezing waits for a Register in progress; after that Register fails with
// ErrFrozen and lookups read the table without locking.
type Registry[C, L any] struct {
	cfg     config
	mu      sync.Mutex // guards entries and names until frozen
	entries map[string]*entry[C, L]
	names   []string // registered aliases as given, in registration order
	frozen  atomic.Bool
}

// NewRegistry creates an empty Registry with the given options.
//
// Example:
//
//	r := plugparam.NewRegistry[*Template, MapLayer](
//	    plugparam.WithLogger(logger),
//	    plugparam.WithOnFailure(func(ctx context.Context, typeName string, err error, d time.Duration) {
//	        metrics.Incr("layer.failure", "type:"+typeName)
//	    }),
//	)
func NewRegistry[C, L any](opts ...Option) *Registry[C, L] {
	r := &Registry[C, L]{
		cfg:     config{typeKey: "type"},
		entries: make(map[string]*entry[C, L]),
	}
	for _, opt := range opts {
		opt(&r.cfg)
	}
	return r
}

// Register adds a plugin under each of its type names.
//
// It fails with ErrNameCollision if any name, compared case-insensitively,
// is already taken (including twice by the same plugin), with
// ErrSchemaCycle or ErrInvalidSchema if the param schema graph is broken,
// and with ErrFrozen after the registry is frozen. On failure the registry
// is unchanged.
//
// This is a package-level function (not a method) due to Go generics
// limitations: methods cannot have type parameters independent of the
// receiver.
func Register[C, P, L any](r *Registry[C, L], p Plugin[C, P, L]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return ErrFrozen
	}
	names := p.TypeNames()
	schema := p.Schema()
	if len(names) == 0 {
		return &Error{Kind: KindInvalidSchema, Cause: errors.New("plugin claims no type names")}
	}
	if schema == nil {
		return &Error{Kind: KindInvalidSchema, TypeName: names[0], Cause: errors.New("plugin has no schema")}
	}

	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" {
			return &Error{Kind: KindInvalidSchema, Schema: schema.name, Cause: errors.New("empty type name")}
		}
		key := strings.ToLower(n)
		if _, taken := r.entries[key]; taken || seen[key] {
			return &Error{Kind: KindNameCollision, TypeName: n, Schema: schema.name}
		}
		seen[key] = true
	}
	if err := schema.Validate(); err != nil {
		return withTypeName(err, names[0])
	}

	e := &entry[C, L]{
		desc: Descriptor{
			TypeNames: slices.Clone(names),
			Schema:    schema.name,
			Fields:    schema.FieldNames(),
		},
		invoke: func(ctx context.Context, typeName string, doc Document, cfg C) (L, error) {
			var zero L
			if doc.Kind() != KindObject {
				return zero, &Error{Kind: KindTypeMismatch, TypeName: typeName, Schema: schema.name, Want: "object", Got: doc.Kind().String()}
			}
			param, err := schema.bind(doc, nil)
			if err != nil {
				return zero, withTypeName(err, typeName)
			}
			l, err := p.Parse(ctx, cfg, param)
			if err != nil {
				return zero, &Error{Kind: KindParseFailure, TypeName: typeName, Schema: schema.name, Cause: err}
			}
			return l, nil
		},
	}
	for _, n := range names {
		r.entries[strings.ToLower(n)] = e
	}
	r.names = append(r.names, names...)
	return nil
}

// MustRegister is like Register but panics on error. Use it while
// assembling the registry at startup, where a broken registry must stop the
// process.
func MustRegister[C, P, L any](r *Registry[C, L], p Plugin[C, P, L]) {
	if err := Register(r, p); err != nil {
		panic(err)
	}
}

// Freeze ends registration. It is called implicitly by the first dispatch.
func (r *Registry[C, L]) Freeze() {
	if r.frozen.Load() {
		return
	}
	r.mu.Lock()
	r.frozen.Store(true)
	r.mu.Unlock()
}

// Frozen reports whether the registry no longer accepts plugins.
func (r *Registry[C, L]) Frozen() bool { return r.frozen.Load() }

// Lookup returns the plugin registered for typeName, compared
// case-insensitively, or ErrUnknownType.
func (r *Registry[C, L]) Lookup(typeName string) (Descriptor, error) {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	e, err := r.lookup(typeName)
	if err != nil {
		return Descriptor{}, err
	}
	d := e.desc
	d.TypeNames = slices.Clone(d.TypeNames)
	d.Fields = slices.Clone(d.Fields)
	return d, nil
}

func (r *Registry[C, L]) lookup(typeName string) (*entry[C, L], error) {
	e, ok := r.entries[strings.ToLower(typeName)]
	if !ok {
		return nil, &Error{Kind: KindUnknownType, TypeName: typeName}
	}
	return e, nil
}

// TypeNames returns every registered type name as given, in registration
// order.
func (r *Registry[C, L]) TypeNames() []string {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	return slices.Clone(r.names)
}

// Dispatch runs the pipeline for one document: look up the plugin for
// typeName, allocate a fresh param, bind doc into it, finalize it, and call
// the plugin's Parse with ctx and cfg.
//
// Every stage short-circuits. Errors are *Error values:
//   - ErrUnknownType when no plugin claims typeName
//   - ErrMissingField, ErrTypeMismatch, ErrMalformedURL, ErrUnknownEnumValue
//     when binding fails
//   - ErrFinalize when a finalize step fails
//   - ErrParseFailure wrapping the plugin's error
//
// No partially bound param ever reaches the plugin. Dispatch does no
// retries and does not inspect ctx or cfg.
func (r *Registry[C, L]) Dispatch(ctx context.Context, typeName string, doc Document, cfg C) (L, error) {
	r.Freeze()
	start := time.Now()

	e, err := r.lookup(typeName)
	if err != nil {
		r.cfg.hooks.callOnFailure(ctx, typeName, err, time.Since(start))
		var zero L
		return zero, err
	}

	r.cfg.hooks.callOnDispatch(ctx, typeName)

	l, err := e.invoke(ctx, typeName, doc, cfg)
	duration := time.Since(start)
	if err != nil {
		r.cfg.hooks.callOnFailure(ctx, typeName, err, duration)
		return l, err
	}
	r.cfg.hooks.callOnSuccess(ctx, typeName, duration)
	return l, nil
}

// DispatchDocument reads the type name from the document's type key (see
// WithTypeKey) and dispatches the document. A missing type key fails with
// ErrMissingField; a non-string one with ErrTypeMismatch.
func (r *Registry[C, L]) DispatchDocument(ctx context.Context, doc Document, cfg C) (L, error) {
	var zero L
	if doc.Kind() != KindObject {
		return zero, &Error{Kind: KindTypeMismatch, Want: "object", Got: doc.Kind().String()}
	}
	node, ok := doc.Get(r.cfg.typeKey)
	if !ok || node.IsNull() {
		return zero, &Error{Kind: KindMissingField, Path: FieldPath(r.cfg.typeKey)}
	}
	typeName, ok := node.AsString()
	if !ok {
		return zero, typeMismatch(FieldPath(r.cfg.typeKey), "string", node.Kind())
	}
	return r.Dispatch(ctx, typeName, doc, cfg)
}

// DispatchJSON resolves the plugin from the raw JSON type key before
// building the document, so documents with an unknown type are rejected
// without a full parse. Invalid JSON fails with ErrInvalidJSON.
//
// Example:
//
//	// In a report job
//	for _, raw := range job.Layers {
//	    layer, err := registry.DispatchJSON(ctx, raw, job.Template)
//	    if err != nil {
//	        return fmt.Errorf("layer: %w", err)
//	    }
//	    layers = append(layers, layer)
//	}
func (r *Registry[C, L]) DispatchJSON(ctx context.Context, raw []byte, cfg C) (L, error) {
	var zero L
	if !gjson.ValidBytes(raw) {
		return zero, ErrInvalidJSON
	}
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return zero, &Error{Kind: KindTypeMismatch, Want: "object", Got: fromResult(res).Kind().String()}
	}
	t := typeKeyResult(res, r.cfg.typeKey)
	switch {
	case !t.Exists() || t.Type == gjson.Null:
		return zero, &Error{Kind: KindMissingField, Path: FieldPath(r.cfg.typeKey)}
	case t.Type != gjson.String:
		return zero, typeMismatch(FieldPath(r.cfg.typeKey), "string", fromResult(t).Kind())
	}
	if _, err := r.lookup(t.Str); err != nil {
		r.Freeze()
		r.cfg.hooks.callOnFailure(ctx, t.Str, err, 0)
		return zero, err
	}
	return r.Dispatch(ctx, t.Str, fromResult(res), cfg)
}

// typeKeyResult returns the top-level member named key. The key is compared
// literally, never as a gjson path, and the last duplicate wins, as in
// Object.
func typeKeyResult(obj gjson.Result, key string) gjson.Result {
	var t gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			t = v
		}
		return true
	})
	return t
}
