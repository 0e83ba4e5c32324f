package ui

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-irrigation/internal/dashboard"
	"github.com/joeblew999/plat-irrigation/internal/geo"
	"github.com/joeblew999/plat-irrigation/internal/humastar"
)

// LayerHandler renders the layer list and runs the layer card actions.
type LayerHandler struct {
	base
}

func NewLayerHandler(d Deps) *LayerHandler {
	return &LayerHandler{base: newBase(d)}
}

func (h *LayerHandler) RegisterRoutes(api huma.API) {
	tags := huma.OperationTags(Tag)
	huma.Get(api, "/api/v1/ui/layers", h.ListLayers, tags)
	huma.Post(api, "/api/v1/ui/dashboards/{id}/layers/{layerId}/labels", h.ToggleLabels, tags)
	huma.Put(api, "/api/v1/ui/dashboards/{id}/layers/{layerId}/opacity", h.SetOpacity, tags)
	huma.Post(api, "/api/v1/ui/dashboards/{id}/layers/{layerId}/legend", h.ToggleLegend, tags)
	huma.Get(api, "/api/v1/ui/dashboards/{id}/layers/{layerId}/locate", h.Locate, tags)
}

type ListLayersInput struct {
	Dashboard string `query:"dashboard" doc:"Dashboard whose layer views are shown"`
}

func (h *LayerHandler) ListLayers(ctx context.Context, input *ListLayersInput) (*huma.StreamResponse, error) {
	var c *dashboard.Controller
	if input.Dashboard != "" {
		var err error
		if c, err = h.dashboard(input.Dashboard); err != nil {
			return nil, err
		}
	}
	return h.Stream(func(sse humastar.SSE) {
		h.patchLayers(sse, c)
	}), nil
}

func (h *LayerHandler) ToggleLabels(ctx context.Context, input *DashboardLayerInput) (*huma.StreamResponse, error) {
	c, err := h.dashboard(input.ID)
	if err != nil {
		return nil, err
	}
	if _, err := c.ToggleLabels(input.LayerID); err != nil {
		return nil, problem(err)
	}
	h.dashboards.Changed(c.ID())
	return h.Stream(func(sse humastar.SSE) {
		h.patchLayers(sse, c)
	}), nil
}

type OpacityInput struct {
	ID      string `path:"id" doc:"Dashboard ID"`
	LayerID string `path:"layerId" doc:"Layer ID" example:"irrigation_zones"`
	RawBody []byte
}

// SetOpacity reads the opacity signal sent by the card's range input.
func (h *LayerHandler) SetOpacity(ctx context.Context, input *OpacityInput) (*huma.StreamResponse, error) {
	c, err := h.dashboard(input.ID)
	if err != nil {
		return nil, err
	}
	signals, err := (&humastar.SignalsInput{RawBody: input.RawBody}).MustParse()
	if err != nil {
		return nil, err
	}
	opacity, ok := signals.FloatOK("opacity")
	if !ok {
		return nil, huma.Error400BadRequest("opacity signal is required")
	}
	v, err := c.SetOpacity(input.LayerID, opacity)
	if err != nil {
		return nil, problem(err)
	}
	h.dashboards.Changed(c.ID())
	return h.Stream(func(sse humastar.SSE) {
		sse.Signals(map[string]any{"opacity": v.Opacity})
		h.patchLayers(sse, c)
	}), nil
}

// ToggleLegend shows the layer's legend, or hides it when it is already
// the one shown.
func (h *LayerHandler) ToggleLegend(ctx context.Context, input *DashboardLayerInput) (*huma.StreamResponse, error) {
	c, err := h.dashboard(input.ID)
	if err != nil {
		return nil, err
	}
	msg := "Legend hidden"
	if c.Legend() == input.LayerID {
		c.HideLegend()
	} else if _, err := c.ShowLegend(input.LayerID); err != nil {
		return nil, problem(err)
	} else {
		msg = "Legend shown for " + input.LayerID
	}
	h.dashboards.Changed(c.ID())
	return h.Stream(func(sse humastar.SSE) {
		h.patchLegend(sse, c)
		h.patchLayers(sse, c)
		sse.Success(msg)
	}), nil
}

// Locate sends the layer's extent as a "locate" window event for the map.
func (h *LayerHandler) Locate(ctx context.Context, input *DashboardLayerInput) (*huma.StreamResponse, error) {
	c, err := h.dashboard(input.ID)
	if err != nil {
		return nil, err
	}
	v, err := c.Locate(input.LayerID)
	if err != nil && !errors.Is(err, geo.ErrNoExtent) {
		return nil, problem(err)
	}
	return h.Stream(func(sse humastar.SSE) {
		if err != nil {
			sse.Error("Layer " + input.LayerID + " has no extent")
			return
		}
		sse.DispatchCustomEvent("locate", map[string]any{
			"layerId": input.LayerID,
			"bbox":    []float64{v.Bound.Min[0], v.Bound.Min[1], v.Bound.Max[0], v.Bound.Max[1]},
			"center":  []float64{v.Center[0], v.Center[1]},
		})
	}), nil
}
