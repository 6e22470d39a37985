// Package layer provides the built-in map layer plugins: WMS, tiled WMS,
// GeoJSON and grid overlays. Each plugin declares a typed param schema and
// turns a bound param into a MapLayer for one print job.
//
// Layers are only described here; fetching tiles or rendering is done by
// the renderer that consumes them.
package layer

import (
	"errors"
	"net/url"
	"slices"
	"strings"

	"github.com/bjaus/plugparam"
)

// ErrHostNotAllowed is returned when a layer references a host the
// template does not allow.
var ErrHostNotAllowed = errors.New("host not allowed by template")

// Template is the per-job print configuration handed to every plugin.
type Template struct {
	Name string

	// DPI of the output; plugins use it to size tiles and labels.
	DPI float64

	// AllowedHosts restricts the hosts layers may reference. Empty allows
	// every host.
	AllowedHosts []string
}

// CheckURL returns ErrHostNotAllowed if u's host is not allowed.
func (t *Template) CheckURL(u *url.URL) error {
	if t == nil || len(t.AllowedHosts) == 0 {
		return nil
	}
	host := strings.ToLower(u.Hostname())
	if slices.ContainsFunc(t.AllowedHosts, func(h string) bool { return strings.EqualFold(h, host) }) {
		return nil
	}
	return &HostError{Host: host}
}

// HostError reports a disallowed host. It matches ErrHostNotAllowed.
type HostError struct {
	Host string
}

func (e *HostError) Error() string        { return ErrHostNotAllowed.Error() + ": " + e.Host }
func (e *HostError) Is(target error) bool { return target == ErrHostNotAllowed }

// MapLayer is a layer ready to be rendered.
type MapLayer interface {
	// Kind names the layer implementation, e.g. "wms".
	Kind() string

	// Opacity in [0, 1].
	Opacity() float64
}

// Registry dispatches layer documents to plugins.
type Registry = plugparam.Registry[*Template, MapLayer]

// NewRegistry returns a frozen registry holding every built-in plugin.
func NewRegistry(opts ...plugparam.Option) (*Registry, error) {
	r := plugparam.NewRegistry[*Template, MapLayer](opts...)
	for _, register := range []func(*Registry) error{
		func(r *Registry) error { return plugparam.Register(r, WMSPlugin{}) },
		func(r *Registry) error { return plugparam.Register(r, TiledWMSPlugin{}) },
		func(r *Registry) error { return plugparam.Register(r, GeoJSONPlugin{}) },
		func(r *Registry) error { return plugparam.Register(r, GridPlugin{}) },
	} {
		if err := register(r); err != nil {
			return nil, err
		}
	}
	r.Freeze()
	return r, nil
}

// validOpacity is shared by every layer param.
func validOpacity(o float64) error {
	if o < 0 || o > 1 {
		return errors.New("opacity must be between 0 and 1")
	}
	return nil
}
