// Package plugparam dispatches declarative documents to typed plugins.
//
// A document (a JSON-like tree) names a plugin by a type string. The plugin
// declares the shape of its parameters as a Schema; the registry binds the
// rest of the document into a fresh, strongly typed param struct, runs the
// schema's finalize step, and hands the param to the plugin, which builds
// the domain value. No plugin has to parse documents by hand.
//
// # Quick Start
//
// Define the param struct and its schema:
//
//	type CircleParam struct {
//	    Radius float64
//	    Color  Color
//	}
//
//	var circleSchema = plugparam.NewSchema[CircleParam]("circle").Add(
//	    plugparam.Required("radius", plugparam.Double(), func(p *CircleParam) *float64 { return &p.Radius }),
//	    plugparam.Optional("color", plugparam.Enum(Red, Green, Blue), func(p *CircleParam) *Color { return &p.Color }, Red),
//	)
//
// Implement the plugin:
//
//	type CirclePlugin struct{}
//
//	func (CirclePlugin) TypeNames() []string                    { return []string{"circle"} }
//	func (CirclePlugin) Schema() *plugparam.Schema[CircleParam] { return circleSchema }
//
//	func (CirclePlugin) Parse(ctx context.Context, c *Canvas, p *CircleParam) (Shape, error) {
//	    return &CircleShape{Radius: p.Radius, Color: p.Color}, nil
//	}
//
// Assemble the registry at startup and dispatch:
//
//	r := plugparam.NewRegistry[*Canvas, Shape]()
//	plugparam.MustRegister(r, CirclePlugin{})
//	r.Freeze()
//
//	shape, err := r.DispatchJSON(ctx, raw, canvas)
//
// # Design
//
// The package separates three concerns:
//
//   - Types: stateless coercion rules from one document node to one Go value
//   - Schemas: ordered field lists with required/optional policy, defaults,
//     finalize steps and parent schemas
//   - Registry: type-name lookup and the dispatch pipeline
//
// Dispatch is a linear pipeline; each stage short-circuits on failure:
//
//	lookup → construct → bind → finalize → parse
//
// # Field Types
//
// Each field type maps a document node kind to a Go type:
//
//	String()       string node          → string
//	Int()          integral number      → int      (4.5 is rejected)
//	Double()       number               → float64
//	Float()        number               → float32
//	Bool()         bool node            → bool
//	URL()          absolute URL string  → *url.URL
//	Enum(names...) string, any case     → E ~string
//	RawDocument()  object, unparsed     → Document
//	RawArray()     array, unparsed      → Document
//	Nested(s)      object               → *P (bound with s)
//	ArrayOf(t)     array                → []V
//
// # Required and Optional Fields
//
// Keys are matched exactly (case-sensitive). A missing or null required
// field fails with ErrMissingField; a missing or null optional field is set
// to a copy of its default. Keys the schema does not declare are ignored,
// so documents may carry extra data for other consumers.
//
// # Errors
//
// Every failure is an *Error carrying a Kind, the type name, the schema and
// a field path such as "layers[2].url". Test with errors.Is against the
// package sentinels:
//
//	_, err := r.Dispatch(ctx, "circle", doc, canvas)
//	switch {
//	case errors.Is(err, plugparam.ErrUnknownType):
//	    // no plugin claims the type name
//	case errors.Is(err, plugparam.ErrMissingField):
//	    // document incomplete
//	case errors.Is(err, plugparam.ErrParseFailure):
//	    // the plugin failed; errors.Unwrap(err) is its error
//	}
//
// Registration errors (ErrNameCollision, ErrSchemaCycle, ErrInvalidSchema)
// mean the registry is broken; MustRegister panics on them so the process
// never starts serving with a broken registry.
//
// # Concurrency
//
// Schemas and the registry are assembled once at startup and are read-only
// afterwards. Each dispatch allocates its own param, so any number of
// goroutines may dispatch at once without locking. A Register racing the
// first dispatch either lands before the freeze or fails with ErrFrozen.
// Nothing in the pipeline blocks; only a plugin's Parse may do I/O, and it
// receives the caller's context for that.
//
// # Hooks
//
// Hooks observe dispatches for logging and metrics:
//
//	r := plugparam.NewRegistry[*Canvas, Shape](
//	    plugparam.WithLogger(slog.Default()),
//	    plugparam.WithOnSuccess(func(ctx context.Context, typeName string, d time.Duration) {
//	        metrics.Timing("shape.parse", d, "type:"+typeName)
//	    }),
//	)
package plugparam
