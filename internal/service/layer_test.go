package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func seeded(t *testing.T, dir string, bus *EventBus) *LayerService {
	t.Helper()
	s := NewLayerService(dir, bus)
	if ok, err := s.Seed(DefaultLayers()); err != nil || !ok {
		t.Fatalf("Seed()=%v, %v", ok, err)
	}
	return s
}

func TestSeed_DefaultCatalogOrder(t *testing.T) {
	s := seeded(t, "", nil)

	tree := s.Tree()
	want := []string{"balochistan", "irrigation_zones", "irrigation_circle", "irrigation_divisions"}
	if len(tree) != len(want) {
		t.Fatalf("tree has %d layers, want %d", len(tree), len(want))
	}
	for i, id := range want {
		if tree[i].ID != id {
			t.Fatalf("tree[%d]=%q, want %q", i, tree[i].ID, id)
		}
	}

	group := tree[3]
	if !group.IsGroup() || len(group.Children) != 2 {
		t.Fatalf("group=%+v", group)
	}
	if group.Children[0].ID != "irrigation_divisions_child" {
		t.Fatalf("first child=%q", group.Children[0].ID)
	}
	if got := tree[0].Popup.Title; got != "Balochistan" {
		t.Fatalf("popup title=%q, want layer title", got)
	}
}

func TestSeed_SkipsNonEmptyCatalog(t *testing.T) {
	s := seeded(t, "", nil)
	ok, err := s.Seed(DefaultLayers())
	if err != nil || ok {
		t.Fatalf("second Seed()=%v, %v; want false, nil", ok, err)
	}
}

func TestSeed_InvalidLayerLeavesCatalogEmpty(t *testing.T) {
	tests := []struct {
		name   string
		layers []Layer
		want   error
	}{
		{
			name:   "missing title",
			layers: []Layer{{ID: "canals", Title: "Canals"}, {ID: "wells"}},
			want:   ErrInvalidLayer,
		},
		{
			name:   "duplicate ID",
			layers: []Layer{{ID: "canals", Title: "Canals"}, {ID: "canals", Title: "Canals again"}},
			want:   ErrDuplicateLayer,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLayerService("", nil)
			if ok, err := s.Seed(tt.layers); ok || !errors.Is(err, tt.want) {
				t.Fatalf("Seed()=%v, %v; want false, %v", ok, err, tt.want)
			}
			if got := len(s.List()); got != 0 {
				t.Fatalf("catalog has %d layers after failed seed", got)
			}
			if ok, err := s.Seed(tt.layers[:1]); !ok || err != nil {
				t.Fatalf("retry Seed()=%v, %v", ok, err)
			}
		})
	}
}

func TestGet_FindsGroupChildren(t *testing.T) {
	s := seeded(t, "", nil)
	l, ok := s.Get("irrigation_circle_child")
	if !ok {
		t.Fatal("child layer not found")
	}
	if len(l.Popup.Fields) != 1 || l.Popup.Fields[0].FieldName != "Circle" {
		t.Fatalf("popup=%+v", l.Popup)
	}
}

func TestCreate_GeneratesIDAndRejectsDuplicates(t *testing.T) {
	s := seeded(t, "", nil)

	created, err := s.Create(Layer{Title: "Canal Network", URL: "https://example.test/MapServer/6"})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != "canal_network" || created.Kind != KindFeature || created.Opacity != 1 {
		t.Fatalf("created=%+v", created)
	}
	if created.Order != 5 {
		t.Fatalf("order=%d, want 5", created.Order)
	}

	if _, err := s.Create(Layer{Title: "Canal Network"}); !errors.Is(err, ErrDuplicateLayer) {
		t.Fatalf("duplicate create err=%v", err)
	}
	if _, err := s.Create(Layer{ID: "irrigation_circle_child", Title: "Clash"}); !errors.Is(err, ErrDuplicateLayer) {
		t.Fatalf("child ID clash err=%v", err)
	}
}

func TestCreate_RejectsInvalidLayers(t *testing.T) {
	s := NewLayerService("", nil)
	cases := []Layer{
		{Title: "  "},
		{Title: "x", Kind: "raster"},
		{Title: "f", Children: []Layer{{Title: "c"}}},
		{Title: "g", Kind: KindGroup, Children: []Layer{{Title: "inner", Kind: KindGroup}}},
		{Title: "o", Opacity: 1.5},
	}
	for _, l := range cases {
		if _, err := s.Create(l); !errors.Is(err, ErrInvalidLayer) {
			t.Errorf("Create(%+v) err=%v, want ErrInvalidLayer", l, err)
		}
	}
}

func TestUpdateAndDelete(t *testing.T) {
	s := seeded(t, "", nil)

	updated, err := s.Update("irrigation_zones", Layer{Title: "Zones", Visible: false, Order: 2})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ID != "irrigation_zones" || updated.Title != "Zones" {
		t.Fatalf("updated=%+v", updated)
	}
	if _, err := s.Update("nope", Layer{Title: "x"}); !errors.Is(err, ErrLayerNotFound) {
		t.Fatalf("update missing err=%v", err)
	}

	if err := s.Delete("irrigation_divisions"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get("irrigation_divisions_child"); ok {
		t.Fatal("children should go with their group")
	}
	if err := s.Delete("irrigation_divisions"); !errors.Is(err, ErrLayerNotFound) {
		t.Fatalf("second delete err=%v", err)
	}
}

func TestPersistence_RoundTripsThroughDisk(t *testing.T) {
	dir := t.TempDir()
	seeded(t, dir, nil)

	if _, err := os.Stat(filepath.Join(dir, "layers.json")); err != nil {
		t.Fatalf("layers.json not written: %v", err)
	}

	reloaded := NewLayerService(dir, nil)
	if got := len(reloaded.List()); got != 4 {
		t.Fatalf("reloaded %d layers, want 4", got)
	}
	if _, ok := reloaded.Get("irrigation_divisions_child"); !ok {
		t.Fatal("child layer lost on reload")
	}
}

func TestMutations_PublishEvents(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	s := NewLayerService("", bus)
	if _, err := s.Create(Layer{Title: "Barrages"}); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-ch:
		if ev.Resource != ResourceLayers || ev.Action != ActionCreated || ev.ID != "barrages" {
			t.Fatalf("event=%+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
}
