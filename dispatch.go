package plugparam

import "context"

// Plugin builds a domain value of type L from a bound param *P.
//
// C is the per-job configuration passed through Dispatch untouched. The
// registry allocates and binds a fresh *P for every call using Schema, so
// Parse receives a value no other call can see.
//
// Example:
//
//	type WMSPlugin struct{}
//
//	func (WMSPlugin) TypeNames() []string                 { return []string{"wms"} }
//	func (WMSPlugin) Schema() *plugparam.Schema[WMSParam] { return wmsSchema }
//
//	func (WMSPlugin) Parse(ctx context.Context, t *Template, p *WMSParam) (MapLayer, error) {
//	    return &WMSLayer{BaseURL: p.BaseURL, Layers: p.Layers}, nil
//	}
type Plugin[C, P, L any] interface {
	// TypeNames returns the discriminator values this plugin claims.
	// Matching is case-insensitive.
	TypeNames() []string

	// Schema describes how to bind the document into *P.
	Schema() *Schema[P]

	// Parse builds the domain value. Any error is reported to the caller as
	// ErrParseFailure wrapping it.
	Parse(ctx context.Context, cfg C, param *P) (L, error)
}

// ParseFunc is the parse step of a plugin built with PluginFunc.
type ParseFunc[C, P, L any] func(ctx context.Context, cfg C, param *P) (L, error)

// PluginFunc creates a Plugin from a schema, a parse function and the type
// names it claims. Use for simple plugins that don't need a struct:
//
//	plugparam.MustRegister(r, plugparam.PluginFunc(circleSchema,
//	    func(ctx context.Context, cfg Config, c *Circle) (Shape, error) {
//	        return Shape{Radius: c.Radius}, nil
//	    },
//	    "circle",
//	))
func PluginFunc[C, P, L any](schema *Schema[P], parse ParseFunc[C, P, L], names ...string) Plugin[C, P, L] {
	return &pluginFunc[C, P, L]{names: names, schema: schema, parse: parse}
}

type pluginFunc[C, P, L any] struct {
	names  []string
	schema *Schema[P]
	parse  ParseFunc[C, P, L]
}

func (p *pluginFunc[C, P, L]) TypeNames() []string { return p.names }
func (p *pluginFunc[C, P, L]) Schema() *Schema[P]  { return p.schema }

func (p *pluginFunc[C, P, L]) Parse(ctx context.Context, cfg C, param *P) (L, error) {
	return p.parse(ctx, cfg, param)
}

// Descriptor describes a registered plugin.
type Descriptor struct {
	// TypeNames are the names the plugin was registered with, as given.
	TypeNames []string

	// Schema is the name of the plugin's param schema.
	Schema string

	// Fields lists the schema's field names in binding order.
	Fields []string
}
