package plugparam

import "context"

type Color string

const (
	Red   Color = "RED"
	Green Color = "GREEN"
	Blue  Color = "BLUE"
)

type Circle struct {
	Radius float64
	Color  Color
}

func newCircleSchema() *Schema[Circle] {
	return NewSchema[Circle]("circle").Add(
		Required("radius", Double(), func(c *Circle) *float64 { return &c.Radius }),
		Optional("color", Enum(Red, Green, Blue), func(c *Circle) *Color { return &c.Color }, Red),
	)
}

// Shape is the domain value produced by test plugins.
type Shape struct {
	Kind   string
	Radius float64
	Color  Color
	Job    string
}

// job is the per-dispatch configuration used by test plugins.
type job struct {
	ID string
}

type circlePlugin struct {
	names  []string
	schema *Schema[Circle]
	parse  func(ctx context.Context, j *job, c *Circle) (Shape, error)
}

func newCirclePlugin(names ...string) *circlePlugin {
	if len(names) == 0 {
		names = []string{"circle"}
	}
	return &circlePlugin{names: names, schema: newCircleSchema()}
}

func (p *circlePlugin) TypeNames() []string     { return p.names }
func (p *circlePlugin) Schema() *Schema[Circle] { return p.schema }

func (p *circlePlugin) Parse(ctx context.Context, j *job, c *Circle) (Shape, error) {
	if p.parse != nil {
		return p.parse(ctx, j, c)
	}
	s := Shape{Kind: "circle", Radius: c.Radius, Color: c.Color}
	if j != nil {
		s.Job = j.ID
	}
	return s, nil
}

var _ Plugin[*job, Circle, Shape] = (*circlePlugin)(nil)
