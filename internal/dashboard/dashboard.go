// Package dashboard holds the per-session state of one map dashboard: the
// readings pager and the per-layer view settings driven by the layer card
// actions (labels, opacity, legend, locate).
package dashboard

import (
	"errors"
	"math"
	"sync"

	"github.com/joeblew999/plat-irrigation/internal/geo"
	"github.com/joeblew999/plat-irrigation/internal/pager"
	"github.com/joeblew999/plat-irrigation/internal/reading"
	"github.com/joeblew999/plat-irrigation/internal/service"
)

// ErrDashboardNotFound is returned for an unknown dashboard ID.
var ErrDashboardNotFound = errors.New("dashboard not found")

// Catalog looks up layers by ID, children included.
type Catalog interface {
	Get(id string) (service.Layer, bool)
}

// LayerView is the per-dashboard display state of one layer.
type LayerView struct {
	Opacity       float64 `json:"opacity" doc:"Layer opacity in [0,1]" example:"1"`
	LabelsVisible bool    `json:"labelsVisible" doc:"Whether feature labels are shown"`
}

// Snapshot is a consistent copy of a controller's state.
type Snapshot struct {
	ID     string               `json:"id" doc:"Dashboard ID"`
	Pager  pager.State          `json:"pager" doc:"Readings pager position"`
	Views  map[string]LayerView `json:"views" doc:"Per-layer view settings, keyed by layer ID"`
	Legend string               `json:"legend,omitempty" doc:"Layer whose legend is shown"`
}

// Controller owns one dashboard. All methods are safe for concurrent use.
type Controller struct {
	mu      sync.Mutex
	id      string
	data    reading.Dataset
	state   pager.State
	catalog Catalog
	views   map[string]LayerView
	legend  string
}

// NewController starts a dashboard on page 1 of ds.
func NewController(id string, ds reading.Dataset, pageSize int, catalog Catalog) *Controller {
	return &Controller{
		id:      id,
		data:    ds,
		state:   pager.New(len(ds), pageSize),
		catalog: catalog,
		views:   make(map[string]LayerView),
	}
}

// ID returns the dashboard ID.
func (c *Controller) ID() string { return c.id }

// Page renders the current page.
func (c *Controller) Page() pager.Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pager.Render(c.data, c.state)
}

// Next advances one page and renders it. On the last page it re-renders
// the same page.
func (c *Controller) Next() pager.Page {
	return c.apply(pager.State.Next)
}

// Previous goes back one page and renders it.
func (c *Controller) Previous() pager.Page {
	return c.apply(pager.State.Previous)
}

// GoTo jumps to page, clamped into range.
func (c *Controller) GoTo(page int) pager.Page {
	return c.apply(func(s pager.State) pager.State { return s.GoTo(page) })
}

func (c *Controller) apply(step func(pager.State) pager.State) pager.Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = step(c.state)
	return pager.Render(c.data, c.state)
}

// State returns the pager position.
func (c *Controller) State() pager.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns the display state of a layer. Layers never touched are
// fully opaque with labels hidden.
func (c *Controller) View(layerID string) (LayerView, error) {
	if _, err := c.layer(layerID); err != nil {
		return LayerView{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view(layerID), nil
}

func (c *Controller) view(layerID string) LayerView {
	if v, ok := c.views[layerID]; ok {
		return v
	}
	return LayerView{Opacity: 1}
}

// ToggleLabels flips label visibility for a layer.
func (c *Controller) ToggleLabels(layerID string) (LayerView, error) {
	if _, err := c.layer(layerID); err != nil {
		return LayerView{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.view(layerID)
	v.LabelsVisible = !v.LabelsVisible
	c.views[layerID] = v
	return v, nil
}

// SetOpacity sets a layer's opacity, clamped to [0,1] in steps of 0.01.
func (c *Controller) SetOpacity(layerID string, opacity float64) (LayerView, error) {
	if _, err := c.layer(layerID); err != nil {
		return LayerView{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.view(layerID)
	v.Opacity = ClampOpacity(opacity)
	c.views[layerID] = v
	return v, nil
}

// ClampOpacity limits o to [0,1] and rounds it to the slider step. NaN is
// treated as fully opaque.
func ClampOpacity(o float64) float64 {
	switch {
	case math.IsNaN(o):
		return 1
	case o < 0:
		return 0
	case o > 1:
		return 1
	}
	return math.Round(o*100) / 100
}

// ShowLegend makes layerID the active legend, replacing any other.
func (c *Controller) ShowLegend(layerID string) (string, error) {
	if _, err := c.layer(layerID); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.legend = layerID
	return c.legend, nil
}

// HideLegend clears the active legend.
func (c *Controller) HideLegend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.legend = ""
}

// Legend returns the layer whose legend is shown, or "" when none is.
func (c *Controller) Legend() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.legend
}

// Locate returns the view framing a layer's full extent.
func (c *Controller) Locate(layerID string) (geo.View, error) {
	l, err := c.layer(layerID)
	if err != nil {
		return geo.View{}, err
	}
	return geo.Locate(l)
}

// Snapshot returns a copy of the dashboard state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	views := make(map[string]LayerView, len(c.views))
	for k, v := range c.views {
		views[k] = v
	}
	return Snapshot{
		ID:     c.id,
		Pager:  c.state,
		Views:  views,
		Legend: c.legend,
	}
}

func (c *Controller) layer(id string) (service.Layer, error) {
	if c.catalog == nil {
		return service.Layer{}, service.ErrLayerNotFound
	}
	l, ok := c.catalog.Get(id)
	if !ok {
		return service.Layer{}, service.ErrLayerNotFound
	}
	return l, nil
}
