package plugparam_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bjaus/plugparam"
)

type Color string

const (
	Red   Color = "RED"
	Green Color = "GREEN"
	Blue  Color = "BLUE"
)

// CircleParam is bound from "circle" documents.
type CircleParam struct {
	Radius float64
	Color  Color
}

// Circle is the domain value built by the circle plugin.
type Circle struct {
	Radius float64
	Color  Color
}

// Canvas is the per-job configuration.
type Canvas struct {
	Scale float64
}

var circleSchema = plugparam.NewSchema[CircleParam]("circle").Add(
	plugparam.Required("radius", plugparam.Double(), func(p *CircleParam) *float64 { return &p.Radius }),
	plugparam.Optional("color", plugparam.Enum(Red, Green, Blue), func(p *CircleParam) *Color { return &p.Color }, Red),
)

// CirclePlugin handles "circle" documents.
type CirclePlugin struct{}

func (CirclePlugin) TypeNames() []string                    { return []string{"circle"} }
func (CirclePlugin) Schema() *plugparam.Schema[CircleParam] { return circleSchema }

func (CirclePlugin) Parse(ctx context.Context, c *Canvas, p *CircleParam) (Circle, error) {
	return Circle{Radius: p.Radius * c.Scale, Color: p.Color}, nil
}

func Example() {
	r := plugparam.NewRegistry[*Canvas, Circle]()
	plugparam.MustRegister(r, CirclePlugin{})
	r.Freeze()

	canvas := &Canvas{Scale: 2}
	circle, err := r.DispatchJSON(context.Background(), []byte(`{"type": "Circle", "radius": 4.5, "color": "green"}`), canvas)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(circle.Radius, circle.Color)

	// Output:
	// 9 GREEN
}

func Example_errors() {
	r := plugparam.NewRegistry[*Canvas, Circle]()
	plugparam.MustRegister(r, CirclePlugin{})

	ctx := context.Background()
	canvas := &Canvas{Scale: 1}

	_, err := r.Dispatch(ctx, "circle", plugparam.MustFromJSON(`{}`), canvas)
	fmt.Println(err)

	_, err = r.Dispatch(ctx, "circle", plugparam.MustFromJSON(`{"radius": 4.5, "color": "purple"}`), canvas)
	fmt.Println(err)
	fmt.Println(errors.Is(err, plugparam.ErrUnknownEnumValue))

	_, err = r.Dispatch(ctx, "unknownshape", plugparam.MustFromJSON(`{}`), canvas)
	fmt.Println(err)

	// Output:
	// missing field at radius: required by circle
	// unknown enum value at color: "purple" is not one of [RED, GREEN, BLUE]
	// true
	// unknown type: no plugin for type "unknownshape"
}

func Example_pluginFunc() {
	type Square struct{ Side int }

	schema := plugparam.NewSchema[Square]("square").Add(
		plugparam.Required("side", plugparam.Int(), func(s *Square) *int { return &s.Side }),
	)
	r := plugparam.NewRegistry[struct{}, int]()
	plugparam.MustRegister(r, plugparam.PluginFunc(schema, func(_ context.Context, _ struct{}, s *Square) (int, error) {
		return s.Side * s.Side, nil
	}, "square", "SQ"))

	area, err := r.DispatchDocument(context.Background(), plugparam.MustFromJSON(`{"type": "sq", "side": 3}`), struct{}{})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(area)

	// Output:
	// 9
}

func Example_yaml() {
	r := plugparam.NewRegistry[*Canvas, Circle]()
	plugparam.MustRegister(r, CirclePlugin{})

	doc, err := plugparam.FromYAML([]byte("type: circle\nradius: 1.5\ncolor: Blue\n"))
	if err != nil {
		log.Fatal(err)
	}
	circle, err := r.DispatchDocument(context.Background(), doc, &Canvas{Scale: 1})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(circle.Radius, circle.Color)

	// Output:
	// 1.5 BLUE
}
