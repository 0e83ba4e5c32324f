// Package geo converts catalog extents to orb geometry: bounds and centers
// for the Locate action, and a GeoJSON overview of every layer extent.
package geo

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-irrigation/internal/service"
)

// ErrNoExtent is returned for a layer without a usable extent.
var ErrNoExtent = errors.New("layer has no extent")

// View is the camera target for a layer: its bounds and their center.
type View struct {
	Bound  orb.Bound
	Center orb.Point
}

// Bound converts an extent to an orb.Bound. Missing or inverted extents fail.
func Bound(e *service.Extent) (orb.Bound, error) {
	if e == nil {
		return orb.Bound{}, ErrNoExtent
	}
	b := orb.Bound{
		Min: orb.Point{e.MinLon, e.MinLat},
		Max: orb.Point{e.MaxLon, e.MaxLat},
	}
	if b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] {
		return orb.Bound{}, ErrNoExtent
	}
	return b, nil
}

// Locate returns the view that frames the layer's full extent.
func Locate(l service.Layer) (View, error) {
	b, err := Bound(l.Extent)
	if err != nil {
		return View{}, err
	}
	return View{Bound: b, Center: round(b.Center())}, nil
}

// Union returns the bound covering every layer extent in the tree, children
// included. ok is false when no layer has an extent.
func Union(layers []service.Layer) (orb.Bound, bool) {
	var (
		out orb.Bound
		ok  bool
	)
	walk(layers, func(l service.Layer) {
		b, err := Bound(l.Extent)
		if err != nil {
			return
		}
		if !ok {
			out, ok = b, true
			return
		}
		out = out.Union(b)
	})
	return out, ok
}

// FeatureCollection returns one polygon feature per layer extent with the
// layer id, title and kind as properties.
func FeatureCollection(layers []service.Layer) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	walk(layers, func(l service.Layer) {
		b, err := Bound(l.Extent)
		if err != nil {
			return
		}
		f := geojson.NewFeature(b.ToPolygon())
		f.ID = l.ID
		f.Properties["id"] = l.ID
		f.Properties["title"] = l.Title
		f.Properties["kind"] = l.Kind
		fc.Append(f)
	})
	return fc
}

func walk(layers []service.Layer, fn func(service.Layer)) {
	for _, l := range layers {
		fn(l)
		walk(l.Children, fn)
	}
}

func round(p orb.Point) orb.Point {
	const scale = 1e6
	return orb.Point{
		math.Round(p[0]*scale) / scale,
		math.Round(p[1]*scale) / scale,
	}
}
