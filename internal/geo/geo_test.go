package geo

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-irrigation/internal/service"
)

func TestLocate_CenterOfExtent(t *testing.T) {
	v, err := Locate(service.Layer{
		ID:     "zones",
		Extent: &service.Extent{MinLon: 60, MinLat: 24, MaxLon: 70, MaxLat: 32},
	})
	if err != nil {
		t.Fatal(err)
	}
	if v.Center != (orb.Point{65, 28}) {
		t.Fatalf("center=%v, want [65 28]", v.Center)
	}
}

func TestLocate_MissingOrInvertedExtent(t *testing.T) {
	if _, err := Locate(service.Layer{ID: "none"}); !errors.Is(err, ErrNoExtent) {
		t.Fatalf("nil extent err=%v", err)
	}
	inverted := &service.Extent{MinLon: 70, MinLat: 24, MaxLon: 60, MaxLat: 32}
	if _, err := Locate(service.Layer{Extent: inverted}); !errors.Is(err, ErrNoExtent) {
		t.Fatalf("inverted extent err=%v", err)
	}
}

func TestUnionAndFeatureCollection_IncludeChildren(t *testing.T) {
	layers := []service.Layer{
		{ID: "a", Title: "A", Kind: service.KindFeature, Extent: &service.Extent{MinLon: 60, MinLat: 25, MaxLon: 62, MaxLat: 27}},
		{ID: "g", Title: "G", Kind: service.KindGroup, Children: []service.Layer{
			{ID: "c", Title: "C", Kind: service.KindFeature, Extent: &service.Extent{MinLon: 66, MinLat: 28, MaxLon: 69, MaxLat: 31}},
		}},
	}

	b, ok := Union(layers)
	if !ok {
		t.Fatal("Union() found no extents")
	}
	if b.Min != (orb.Point{60, 25}) || b.Max != (orb.Point{69, 31}) {
		t.Fatalf("union=%v", b)
	}

	fc := FeatureCollection(layers)
	if len(fc.Features) != 2 {
		t.Fatalf("features=%d, want 2", len(fc.Features))
	}
	raw, err := json.Marshal(fc)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Type != "FeatureCollection" || decoded.Features[1].Geometry.Type != "Polygon" {
		t.Fatalf("decoded=%+v", decoded)
	}
	if decoded.Features[1].Properties["id"] != "c" {
		t.Fatalf("properties=%v", decoded.Features[1].Properties)
	}
}

func TestUnion_NoExtents(t *testing.T) {
	if _, ok := Union([]service.Layer{{ID: "x"}}); ok {
		t.Fatal("Union() ok=true without extents")
	}
}
