// Package ui contains the Datastar SSE handlers behind the dashboard page.
// Every handler patches HTML fragments into the page by element ID:
// #reading-table, #pager, #layer-list and #legend.
package ui

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-irrigation/internal/config"
	"github.com/joeblew999/plat-irrigation/internal/dashboard"
	"github.com/joeblew999/plat-irrigation/internal/geo"
	"github.com/joeblew999/plat-irrigation/internal/humastar"
	"github.com/joeblew999/plat-irrigation/internal/pager"
	"github.com/joeblew999/plat-irrigation/internal/service"
	"github.com/joeblew999/plat-irrigation/internal/templates"
)

// Tag groups the UI operations in the OpenAPI document. Link discovery
// skips it.
const Tag = "ui"

// DefaultTitle is the page title used when Deps.Title is empty.
const DefaultTitle = "Balochistan Irrigation Dashboard"

// Deps holds what the UI handlers need.
type Deps struct {
	Renderer   *templates.Renderer
	Dashboards *dashboard.Registry
	Layers     *service.LayerService
	Bus        *service.EventBus
	Map        config.MapConfig
	Title      string
}

// RegisterRoutes registers every SSE route on api. The page shell is a
// plain handler, see NewPageHandler.
func RegisterRoutes(api huma.API, d Deps) {
	NewTableHandler(d).RegisterRoutes(api)
	NewLayerHandler(d).RegisterRoutes(api)
	NewEventHandler(d).RegisterRoutes(api)
}

// TableData is the view model of the reading-table and pager-controls
// fragments.
type TableData struct {
	DashboardID string
	Page        pager.Page
}

// LayerCardData is the view model of one layer-card fragment.
type LayerCardData struct {
	DashboardID  string
	Layer        service.Layer
	View         dashboard.LayerView
	LegendActive bool
	Children     []LayerCardData
}

// LegendData is the view model of the legend fragment. Layer is nil when
// no legend is shown.
type LegendData struct {
	Layer *service.Layer
}

// PageData is the view model of the dashboard-page template.
type PageData struct {
	Title       string
	DashboardID string
	Map         config.MapConfig
}

type DashboardInput struct {
	ID string `path:"id" doc:"Dashboard ID"`
}

type DashboardLayerInput struct {
	ID      string `path:"id" doc:"Dashboard ID"`
	LayerID string `path:"layerId" doc:"Layer ID" example:"irrigation_zones"`
}

// base holds the lookups and renderers shared by the handlers.
type base struct {
	humastar.Handler
	dashboards *dashboard.Registry
	layers     *service.LayerService
}

func newBase(d Deps) base {
	return base{
		Handler:    humastar.Handler{Renderer: d.Renderer},
		dashboards: d.Dashboards,
		layers:     d.Layers,
	}
}

func (b *base) dashboard(id string) (*dashboard.Controller, error) {
	c, err := b.dashboards.Get(id)
	if err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	return c, nil
}

// patchTable sends the table and the pager controls for p.
func (b *base) patchTable(sse humastar.SSE, id string, p pager.Page) {
	data := TableData{DashboardID: id, Page: p}
	sse.Patch(b.Render("reading-table", data), "#reading-table")
	sse.Patch(b.Render("pager-controls", data), "#pager")
}

// patchLayers sends the layer list. c may be nil, in which case the cards
// carry no dashboard actions.
func (b *base) patchLayers(sse humastar.SSE, c *dashboard.Controller) {
	sse.Patch(b.renderLayerList(c), "#layer-list")
}

func (b *base) renderLayerList(c *dashboard.Controller) string {
	tree := b.layers.Tree()
	items := make([]any, len(tree))
	for i, l := range tree {
		items[i] = layerCard(c, l)
	}
	return b.RenderList("layer-card", items, "No layers", "The layer catalog is empty")
}

func (b *base) patchLegend(sse humastar.SSE, c *dashboard.Controller) {
	var data LegendData
	if id := c.Legend(); id != "" {
		if l, ok := b.layers.Get(id); ok {
			data.Layer = &l
		}
	}
	sse.Patch(b.Render("legend", data), "#legend")
}

func layerCard(c *dashboard.Controller, l service.Layer) LayerCardData {
	card := LayerCardData{Layer: l, View: dashboard.LayerView{Opacity: 1}}
	if c != nil {
		card.DashboardID = c.ID()
		if v, err := c.View(l.ID); err == nil {
			card.View = v
		}
		card.LegendActive = c.Legend() == l.ID
	}
	for _, child := range l.Children {
		card.Children = append(card.Children, layerCard(c, child))
	}
	return card
}

// problem maps domain errors to HTTP problems.
func problem(err error) error {
	switch {
	case errors.Is(err, service.ErrLayerNotFound),
		errors.Is(err, dashboard.ErrDashboardNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, geo.ErrNoExtent):
		return huma.Error422UnprocessableEntity(err.Error())
	default:
		return huma.Error500InternalServerError("internal error", err)
	}
}
