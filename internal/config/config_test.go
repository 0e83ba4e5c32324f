package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	d := Default()
	if d.PageSize != 5 {
		t.Fatalf("page size=%d, want 5", d.PageSize)
	}
	if d.Map.Basemap != "satellite" || d.Map.Zoom != 7 {
		t.Fatalf("map=%+v", d.Map)
	}
	if d.Map.Center[0] != 66.5 || d.Map.Center[1] != 28.3 {
		t.Fatalf("center=%v", d.Map.Center)
	}
	if d.Map.Labels.FontFamily != "Noto Sans" || d.Map.Labels.HaloSize != 1.5 {
		t.Fatalf("labels=%+v", d.Map.Labels)
	}
	if d.Map.Widgets.Legend != "bottom-right" {
		t.Fatalf("widgets=%+v", d.Map.Widgets)
	}
	if len(d.Layers) != 4 {
		t.Fatalf("layers=%d, want 4 top-level", len(d.Layers))
	}
}

func TestLoad_OverridesAndLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	body := `
page_size: 3
map:
  zoom: 9
  labels:
    color: navy
layers:
  - id: canals
    title: Canals
    url: https://example.test/MapServer/7
    opacity: 0.8
    extent:
      minlon: 61
      minlat: 25
      maxlon: 63
      maxlat: 27
  - id: wells
    title: Wells
    visible: false
  - id: zones
    title: Zones
    kind: group
    children:
      - id: north
        title: North
      - id: south
        title: South
        visible: false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if d.PageSize != 3 || d.Map.Zoom != 9 {
		t.Fatalf("page size=%d zoom=%d", d.PageSize, d.Map.Zoom)
	}
	if d.Map.Basemap != "satellite" {
		t.Fatalf("unset basemap lost its default: %q", d.Map.Basemap)
	}
	if d.Map.Labels.Color != "navy" || d.Map.Labels.Placement != "above-center" {
		t.Fatalf("labels=%+v", d.Map.Labels)
	}
	if len(d.Layers) != 3 || d.Layers[0].ID != "canals" || d.Layers[0].Opacity != 0.8 {
		t.Fatalf("layers=%+v", d.Layers)
	}
	if e := d.Layers[0].Extent; e == nil || e.MaxLon != 63 {
		t.Fatalf("extent=%+v", e)
	}

	if !d.Layers[0].Visible {
		t.Fatal("layer without visible key should default to visible")
	}
	if d.Layers[1].Visible {
		t.Fatal("visible: false was overridden")
	}
	zones := d.Layers[2]
	if !zones.Visible || len(zones.Children) != 2 {
		t.Fatalf("zones=%+v", zones)
	}
	if !zones.Children[0].Visible || zones.Children[1].Visible {
		t.Fatalf("children visible=%v,%v, want true,false", zones.Children[0].Visible, zones.Children[1].Visible)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file should fail")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("page_size: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("page_size 0 should fail")
	}
}
