package layer

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/bjaus/plugparam"
)

// ServerType selects vendor specific WMS parameters.
type ServerType string

const (
	MapServer  ServerType = "MAPSERVER"
	GeoServer  ServerType = "GEOSERVER"
	QGISServer ServerType = "QGISSERVER"
)

// WMSParam is bound from a "wms" layer document.
type WMSParam struct {
	BaseURL        *url.URL
	Layers         []string
	Styles         []string
	ImageFormat    string
	Version        string
	Opacity        float64
	ServerType     ServerType
	UseNativeAngle bool
	CustomParams   plugparam.Document
}

var wmsSchema = plugparam.NewSchema[WMSParam]("wms",
	plugparam.WithFinalize(func(p *WMSParam) error {
		if len(p.Layers) == 0 {
			return errors.New("at least one layer is required")
		}
		if len(p.Styles) > 0 && len(p.Styles) != len(p.Layers) {
			return fmt.Errorf("got %d styles for %d layers", len(p.Styles), len(p.Layers))
		}
		return validOpacity(p.Opacity)
	}),
).Add(
	plugparam.Required("baseURL", plugparam.URL(), func(p *WMSParam) **url.URL { return &p.BaseURL }),
	plugparam.Required("layers", plugparam.ArrayOf(plugparam.String()), func(p *WMSParam) *[]string { return &p.Layers }),
	plugparam.Optional("styles", plugparam.ArrayOf(plugparam.String()), func(p *WMSParam) *[]string { return &p.Styles }, nil),
	plugparam.Optional("imageFormat", plugparam.String(), func(p *WMSParam) *string { return &p.ImageFormat }, "image/png"),
	plugparam.Optional("version", plugparam.String(), func(p *WMSParam) *string { return &p.Version }, "1.1.1"),
	plugparam.Optional("opacity", plugparam.Double(), func(p *WMSParam) *float64 { return &p.Opacity }, 1.0),
	plugparam.Optional("serverType",
		plugparam.Enum(MapServer, GeoServer, QGISServer),
		func(p *WMSParam) *ServerType { return &p.ServerType },
		MapServer,
	),
	plugparam.Optional("useNativeAngle", plugparam.Bool(), func(p *WMSParam) *bool { return &p.UseNativeAngle }, false),
	plugparam.Optional("customParams", plugparam.RawDocument(), func(p *WMSParam) *plugparam.Document { return &p.CustomParams }, plugparam.Null()),
)

// WMSLayer renders images from a WMS GetMap endpoint.
type WMSLayer struct {
	BaseURL        *url.URL
	Layers         []string
	Styles         []string
	ImageFormat    string
	Version        string
	ServerType     ServerType
	UseNativeAngle bool
	CustomParams   map[string]string
	opacity        float64
}

func (l *WMSLayer) Kind() string     { return "wms" }
func (l *WMSLayer) Opacity() float64 { return l.opacity }

// WMSPlugin handles "wms" layers.
type WMSPlugin struct{}

func (WMSPlugin) TypeNames() []string                 { return []string{"wms"} }
func (WMSPlugin) Schema() *plugparam.Schema[WMSParam] { return wmsSchema }

func (WMSPlugin) Parse(_ context.Context, t *Template, p *WMSParam) (MapLayer, error) {
	return newWMSLayer(t, p)
}

func newWMSLayer(t *Template, p *WMSParam) (*WMSLayer, error) {
	if err := t.CheckURL(p.BaseURL); err != nil {
		return nil, err
	}
	custom, err := customParams(p.CustomParams)
	if err != nil {
		return nil, err
	}
	return &WMSLayer{
		BaseURL:        p.BaseURL,
		Layers:         p.Layers,
		Styles:         p.Styles,
		ImageFormat:    p.ImageFormat,
		Version:        p.Version,
		ServerType:     p.ServerType,
		UseNativeAngle: p.UseNativeAngle,
		CustomParams:   custom,
		opacity:        p.Opacity,
	}, nil
}

// customParams flattens the free-form customParams object into query
// parameters. Values must be scalars.
func customParams(doc plugparam.Document) (map[string]string, error) {
	if doc.IsNull() {
		return nil, nil
	}
	out := make(map[string]string, doc.Len())
	for _, m := range doc.Members() {
		switch m.Value.Kind() {
		case plugparam.KindString:
			out[m.Key], _ = m.Value.AsString()
		case plugparam.KindNumber:
			out[m.Key], _ = m.Value.NumberText()
		case plugparam.KindBool:
			b, _ := m.Value.AsBool()
			out[m.Key] = fmt.Sprint(b)
		default:
			return nil, fmt.Errorf("customParams.%s: want scalar, got %s", m.Key, m.Value.Kind())
		}
	}
	return out, nil
}

// TiledWMSParam extends WMSParam with a tile size.
type TiledWMSParam struct {
	WMSParam
	TileSize []int
}

var tiledWMSSchema = plugparam.NewSchema[TiledWMSParam]("tiledwms",
	plugparam.WithParent(wmsSchema, func(p *TiledWMSParam) *WMSParam { return &p.WMSParam }),
	plugparam.WithFinalize(func(p *TiledWMSParam) error {
		if len(p.TileSize) != 2 || p.TileSize[0] <= 0 || p.TileSize[1] <= 0 {
			return fmt.Errorf("tileSize must be two positive integers, got %v", p.TileSize)
		}
		return nil
	}),
).Add(
	plugparam.Required("tileSize", plugparam.ArrayOf(plugparam.Int()), func(p *TiledWMSParam) *[]int { return &p.TileSize }),
)

// TiledWMSLayer requests a WMS layer in fixed size tiles.
type TiledWMSLayer struct {
	*WMSLayer
	TileWidth  int
	TileHeight int
}

func (l *TiledWMSLayer) Kind() string { return "tiledwms" }

// TiledWMSPlugin handles "tiledwms" layers.
type TiledWMSPlugin struct{}

func (TiledWMSPlugin) TypeNames() []string { return []string{"tiledwms", "tiled_wms"} }

func (TiledWMSPlugin) Schema() *plugparam.Schema[TiledWMSParam] { return tiledWMSSchema }

func (TiledWMSPlugin) Parse(_ context.Context, t *Template, p *TiledWMSParam) (MapLayer, error) {
	base, err := newWMSLayer(t, &p.WMSParam)
	if err != nil {
		return nil, err
	}
	return &TiledWMSLayer{WMSLayer: base, TileWidth: p.TileSize[0], TileHeight: p.TileSize[1]}, nil
}
