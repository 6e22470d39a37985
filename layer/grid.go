package layer

import (
	"context"
	"fmt"

	"github.com/bjaus/plugparam"
)

// GridType selects how the grid is drawn.
type GridType string

const (
	GridLines  GridType = "LINES"
	GridPoints GridType = "POINTS"
)

// FontStyle of grid labels.
type FontStyle string

const (
	FontPlain  FontStyle = "PLAIN"
	FontBold   FontStyle = "BOLD"
	FontItalic FontStyle = "ITALIC"
)

// FontParam describes the label font.
type FontParam struct {
	Names []string
	Size  int
	Style FontStyle
}

var fontSchema = plugparam.NewSchema[FontParam]("font",
	plugparam.WithFinalize(func(p *FontParam) error {
		if p.Size <= 0 {
			return fmt.Errorf("font size must be positive, got %d", p.Size)
		}
		return nil
	}),
).Add(
	plugparam.Optional("name", plugparam.ArrayOf(plugparam.String()), func(p *FontParam) *[]string { return &p.Names },
		[]string{"Liberation Sans", "Helvetica", "Nimbus Sans L", "FreeSans", "Sans-serif"}),
	plugparam.Optional("size", plugparam.Int(), func(p *FontParam) *int { return &p.Size }, 8),
	plugparam.Optional("style", plugparam.Enum(FontPlain, FontBold, FontItalic), func(p *FontParam) *FontStyle { return &p.Style }, FontPlain),
)

// GridParam is bound from a "grid" layer document.
type GridParam struct {
	GridType      GridType
	NumberOfLines []int
	Spacing       []float64
	Origin        []float64
	HaloRadius    float32
	HaloColor     string
	LabelColor    string
	Font          *FontParam
	Opacity       float64
}

var gridSchema = plugparam.NewSchema[GridParam]("grid",
	plugparam.WithFinalize(func(p *GridParam) error {
		for name, v := range map[string][]float64{"spacing": p.Spacing, "origin": p.Origin} {
			if v != nil && len(v) != 2 {
				return fmt.Errorf("%s must have two values, got %d", name, len(v))
			}
		}
		if len(p.NumberOfLines) != 2 || p.NumberOfLines[0] <= 0 || p.NumberOfLines[1] <= 0 {
			return fmt.Errorf("numberOfLines must be two positive integers, got %v", p.NumberOfLines)
		}
		return validOpacity(p.Opacity)
	}),
).Add(
	plugparam.Optional("gridType", plugparam.Enum(GridLines, GridPoints), func(p *GridParam) *GridType { return &p.GridType }, GridLines),
	plugparam.Optional("numberOfLines", plugparam.ArrayOf(plugparam.Int()), func(p *GridParam) *[]int { return &p.NumberOfLines }, []int{10, 10}),
	plugparam.Optional("spacing", plugparam.ArrayOf(plugparam.Double()), func(p *GridParam) *[]float64 { return &p.Spacing }, nil),
	plugparam.Optional("origin", plugparam.ArrayOf(plugparam.Double()), func(p *GridParam) *[]float64 { return &p.Origin }, nil),
	plugparam.Optional("haloRadius", plugparam.Float(), func(p *GridParam) *float32 { return &p.HaloRadius }, 1),
	plugparam.Optional("haloColor", plugparam.String(), func(p *GridParam) *string { return &p.HaloColor }, "#FFF"),
	plugparam.Optional("labelColor", plugparam.String(), func(p *GridParam) *string { return &p.LabelColor }, "gray"),
	plugparam.Optional("font", plugparam.Nested(fontSchema), func(p *GridParam) **FontParam { return &p.Font }, nil),
	plugparam.Optional("opacity", plugparam.Double(), func(p *GridParam) *float64 { return &p.Opacity }, 1.0),
)

// GridLayer overlays a coordinate grid.
type GridLayer struct {
	Type          GridType
	NumberOfLines [2]int
	Spacing       []float64
	Origin        []float64
	HaloRadius    float32
	HaloColor     string
	LabelColor    string
	Font          FontParam
	opacity       float64
}

func (l *GridLayer) Kind() string     { return "grid" }
func (l *GridLayer) Opacity() float64 { return l.opacity }

// GridPlugin handles "grid" layers.
type GridPlugin struct{}

func (GridPlugin) TypeNames() []string                  { return []string{"grid"} }
func (GridPlugin) Schema() *plugparam.Schema[GridParam] { return gridSchema }

func (GridPlugin) Parse(_ context.Context, t *Template, p *GridParam) (MapLayer, error) {
	font := FontParam{Names: []string{"Sans-serif"}, Size: 8, Style: FontPlain}
	if p.Font != nil {
		font = *p.Font
	}
	if t != nil && t.DPI > 0 {
		// Font sizes are given at 72 dpi.
		font.Size = int(float64(font.Size) * t.DPI / 72)
	}
	return &GridLayer{
		Type:          p.GridType,
		NumberOfLines: [2]int{p.NumberOfLines[0], p.NumberOfLines[1]},
		Spacing:       p.Spacing,
		Origin:        p.Origin,
		HaloRadius:    p.HaloRadius,
		HaloColor:     p.HaloColor,
		LabelColor:    p.LabelColor,
		Font:          font,
		opacity:       p.Opacity,
	}, nil
}
