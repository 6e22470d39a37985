package layer

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/bjaus/plugparam"
)

// GeoJSONParam is bound from a "geojson" layer document. Exactly one of
// GeoJSON, Features and URL is set.
type GeoJSONParam struct {
	GeoJSON     plugparam.Document
	Features    plugparam.Document
	URL         *url.URL
	Style       plugparam.Document
	RenderAsSVG bool
	Opacity     float64
}

var geoJSONSchema = plugparam.NewSchema[GeoJSONParam]("geojson",
	plugparam.WithFinalize(func(p *GeoJSONParam) error {
		set := 0
		for _, ok := range []bool{!p.GeoJSON.IsNull(), !p.Features.IsNull(), p.URL != nil} {
			if ok {
				set++
			}
		}
		if set != 1 {
			return errors.New("exactly one of geoJson, features and url is required")
		}
		return validOpacity(p.Opacity)
	}),
).Add(
	plugparam.Optional("geoJson", plugparam.RawDocument(), func(p *GeoJSONParam) *plugparam.Document { return &p.GeoJSON }, plugparam.Null()),
	plugparam.Optional("features", plugparam.RawArray(), func(p *GeoJSONParam) *plugparam.Document { return &p.Features }, plugparam.Null()),
	plugparam.Optional("url", plugparam.URL(), func(p *GeoJSONParam) **url.URL { return &p.URL }, nil),
	plugparam.Optional("style", plugparam.RawDocument(), func(p *GeoJSONParam) *plugparam.Document { return &p.Style }, plugparam.Null()),
	plugparam.Optional("renderAsSvg", plugparam.Bool(), func(p *GeoJSONParam) *bool { return &p.RenderAsSVG }, false),
	plugparam.Optional("opacity", plugparam.Double(), func(p *GeoJSONParam) *float64 { return &p.Opacity }, 1.0),
)

// Feature is a GeoJSON feature with its geometry left encoded.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   map[string]any `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// GeoJSONLayer draws vector features. Features is empty when the data is
// referenced by URL.
type GeoJSONLayer struct {
	URL         *url.URL
	Features    []Feature
	Style       plugparam.Document
	RenderAsSVG bool
	opacity     float64
}

func (l *GeoJSONLayer) Kind() string     { return "geojson" }
func (l *GeoJSONLayer) Opacity() float64 { return l.opacity }

// GeoJSONPlugin handles "geojson" layers.
type GeoJSONPlugin struct{}

func (GeoJSONPlugin) TypeNames() []string { return []string{"geojson", "geo_json"} }

func (GeoJSONPlugin) Schema() *plugparam.Schema[GeoJSONParam] { return geoJSONSchema }

func (GeoJSONPlugin) Parse(_ context.Context, t *Template, p *GeoJSONParam) (MapLayer, error) {
	l := &GeoJSONLayer{
		URL:         p.URL,
		Style:       p.Style,
		RenderAsSVG: p.RenderAsSVG,
		opacity:     p.Opacity,
	}
	switch {
	case p.URL != nil:
		if err := t.CheckURL(p.URL); err != nil {
			return nil, err
		}
	case !p.Features.IsNull():
		if err := p.Features.Decode(&l.Features); err != nil {
			return nil, fmt.Errorf("decode features: %w", err)
		}
	default:
		var fc featureCollection
		if err := p.GeoJSON.Decode(&fc); err != nil {
			return nil, fmt.Errorf("decode geoJson: %w", err)
		}
		if fc.Type != "FeatureCollection" {
			return nil, fmt.Errorf("geoJson: want FeatureCollection, got %q", fc.Type)
		}
		l.Features = fc.Features
	}
	for i, f := range l.Features {
		if f.Type != "Feature" {
			return nil, fmt.Errorf("feature %d: want type Feature, got %q", i, f.Type)
		}
	}
	return l, nil
}
