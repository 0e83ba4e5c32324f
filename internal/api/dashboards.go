package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-irrigation/internal/dashboard"
	"github.com/joeblew999/plat-irrigation/internal/humastar"
	"github.com/joeblew999/plat-irrigation/internal/pager"
)

// dashboardActions are the state-dependent controls of a dashboard.
var dashboardActions = humastar.ActionDefs{
	{Rel: "prev", Pattern: "/api/v1/dashboards/%s/previous", Method: http.MethodPost, Title: "Previous page"},
	{Rel: "next", Pattern: "/api/v1/dashboards/%s/next", Method: http.MethodPost, Title: "Next page"},
	{Rel: "delete", Pattern: "/api/v1/dashboards/%s", Method: http.MethodDelete, Title: "Close dashboard"},
}

// RegisterDashboards registers dashboard state routes.
func (h *APIHandler) RegisterDashboards(api huma.API) {
	tags := huma.OperationTags("dashboards")
	huma.Post(api, "/api/v1/dashboards", h.CreateDashboard, tags, created)
	huma.Get(api, "/api/v1/dashboards/{id}", h.GetDashboard, tags)
	huma.Delete(api, "/api/v1/dashboards/{id}", h.DeleteDashboard, tags)
	huma.Post(api, "/api/v1/dashboards/{id}/next", h.NextPage, tags)
	huma.Post(api, "/api/v1/dashboards/{id}/previous", h.PreviousPage, tags)
	huma.Put(api, "/api/v1/dashboards/{id}/page", h.GoToPage, tags)
	huma.Post(api, "/api/v1/dashboards/{id}/layers/{layerId}/labels", h.ToggleLabels, tags)
	huma.Put(api, "/api/v1/dashboards/{id}/layers/{layerId}/opacity", h.SetOpacity, tags)
	huma.Get(api, "/api/v1/dashboards/{id}/layers/{layerId}/locate", h.LocateLayer, tags)
	huma.Put(api, "/api/v1/dashboards/{id}/legend", h.ShowLegend, tags)
	huma.Delete(api, "/api/v1/dashboards/{id}/legend", h.HideLegend, tags)
}

type DashboardIDInput struct {
	ID string `path:"id" doc:"Dashboard ID" example:"8a0c1d3e-6a53-4bb0-9b52-96d0c0d1b7e4"`
}

type DashboardLayerInput struct {
	DashboardIDInput
	LayerID string `path:"layerId" doc:"Layer ID" example:"irrigation_zones"`
}

// DashboardBody is the dashboard state plus the current table page.
type DashboardBody struct {
	dashboard.Snapshot
	Table ReadingsPage `json:"table" doc:"Current page of the readings table"`
}

// Actions exposes the enabled navigation controls as Link headers.
func (b DashboardBody) Actions() []humastar.Action {
	rels := []string{"delete"}
	if b.Table.HasPrevious {
		rels = append(rels, "prev")
	}
	if b.Table.HasNext {
		rels = append(rels, "next")
	}
	return humastar.ActionsFor(b.ID, dashboardActions.Only(rels...))
}

type DashboardOutput struct {
	Body DashboardBody
}

func dashboardOutput(c *dashboard.Controller, p pager.Page) *DashboardOutput {
	return &DashboardOutput{Body: DashboardBody{
		Snapshot: c.Snapshot(),
		Table:    newReadingsPage(p),
	}}
}

func (h *APIHandler) dashboard(id string) (*dashboard.Controller, error) {
	c, err := h.svc.Dashboards.Get(id)
	if err != nil {
		return nil, toHumaError(err)
	}
	return c, nil
}

type CreateDashboardInput struct {
	PageSize int `query:"pageSize" minimum:"0" maximum:"500" doc:"Rows per page; 0 uses the configured size"`
}

func (h *APIHandler) CreateDashboard(ctx context.Context, input *CreateDashboardInput) (*DashboardOutput, error) {
	c := h.svc.Dashboards.Create(input.PageSize)
	return dashboardOutput(c, c.Page()), nil
}

func (h *APIHandler) GetDashboard(ctx context.Context, input *DashboardIDInput) (*DashboardOutput, error) {
	c, err := h.dashboard(input.ID)
	if err != nil {
		return nil, err
	}
	return dashboardOutput(c, c.Page()), nil
}

func (h *APIHandler) DeleteDashboard(ctx context.Context, input *DashboardIDInput) (*struct{}, error) {
	if err := h.svc.Dashboards.Delete(input.ID); err != nil {
		return nil, toHumaError(err)
	}
	return &struct{}{}, nil
}

func (h *APIHandler) navigate(id string, step func(*dashboard.Controller) pager.Page) (*DashboardOutput, error) {
	c, err := h.dashboard(id)
	if err != nil {
		return nil, err
	}
	p := step(c)
	h.svc.Dashboards.Navigated(id)
	return dashboardOutput(c, p), nil
}

func (h *APIHandler) NextPage(ctx context.Context, input *DashboardIDInput) (*DashboardOutput, error) {
	return h.navigate(input.ID, (*dashboard.Controller).Next)
}

func (h *APIHandler) PreviousPage(ctx context.Context, input *DashboardIDInput) (*DashboardOutput, error) {
	return h.navigate(input.ID, (*dashboard.Controller).Previous)
}

type GoToPageInput struct {
	DashboardIDInput
	Body struct {
		Page int `json:"page" doc:"Target page; clamped into range" example:"2"`
	}
}

func (h *APIHandler) GoToPage(ctx context.Context, input *GoToPageInput) (*DashboardOutput, error) {
	return h.navigate(input.ID, func(c *dashboard.Controller) pager.Page {
		return c.GoTo(input.Body.Page)
	})
}

// LayerViewBody is the view state of one layer on one dashboard.
type LayerViewBody struct {
	LayerID string `json:"layerId" doc:"Layer ID"`
	dashboard.LayerView
}

type LayerViewOutput struct {
	Body LayerViewBody
}

func (h *APIHandler) ToggleLabels(ctx context.Context, input *DashboardLayerInput) (*LayerViewOutput, error) {
	c, err := h.dashboard(input.ID)
	if err != nil {
		return nil, err
	}
	v, err := c.ToggleLabels(input.LayerID)
	if err != nil {
		return nil, toHumaError(err)
	}
	h.svc.Dashboards.Changed(input.ID)
	return &LayerViewOutput{Body: LayerViewBody{LayerID: input.LayerID, LayerView: v}}, nil
}

type OpacityInput struct {
	DashboardLayerInput
	Body struct {
		Opacity float64 `json:"opacity" doc:"Opacity; clamped to [0,1] and rounded to 0.01" example:"0.6"`
	}
}

func (h *APIHandler) SetOpacity(ctx context.Context, input *OpacityInput) (*LayerViewOutput, error) {
	c, err := h.dashboard(input.ID)
	if err != nil {
		return nil, err
	}
	v, err := c.SetOpacity(input.LayerID, input.Body.Opacity)
	if err != nil {
		return nil, toHumaError(err)
	}
	h.svc.Dashboards.Changed(input.ID)
	return &LayerViewOutput{Body: LayerViewBody{LayerID: input.LayerID, LayerView: v}}, nil
}

// LocateBody is the camera target for a layer.
type LocateBody struct {
	LayerID string     `json:"layerId" doc:"Layer ID"`
	BBox    [4]float64 `json:"bbox" doc:"Extent as [minLon, minLat, maxLon, maxLat]"`
	Center  [2]float64 `json:"center" doc:"Extent center as [lon, lat]"`
}

func (h *APIHandler) LocateLayer(ctx context.Context, input *DashboardLayerInput) (*struct{ Body LocateBody }, error) {
	c, err := h.dashboard(input.ID)
	if err != nil {
		return nil, err
	}
	v, err := c.Locate(input.LayerID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &struct{ Body LocateBody }{Body: LocateBody{
		LayerID: input.LayerID,
		BBox:    [4]float64{v.Bound.Min[0], v.Bound.Min[1], v.Bound.Max[0], v.Bound.Max[1]},
		Center:  [2]float64{v.Center[0], v.Center[1]},
	}}, nil
}

type LegendBody struct {
	Legend string `json:"legend" doc:"Layer whose legend is shown; empty when hidden"`
}

type ShowLegendInput struct {
	DashboardIDInput
	Body struct {
		LayerID string `json:"layerId" minLength:"1" doc:"Layer to show the legend for" example:"balochistan"`
	}
}

func (h *APIHandler) ShowLegend(ctx context.Context, input *ShowLegendInput) (*struct{ Body LegendBody }, error) {
	c, err := h.dashboard(input.ID)
	if err != nil {
		return nil, err
	}
	legend, err := c.ShowLegend(input.Body.LayerID)
	if err != nil {
		return nil, toHumaError(err)
	}
	h.svc.Dashboards.Changed(input.ID)
	return &struct{ Body LegendBody }{Body: LegendBody{Legend: legend}}, nil
}

func (h *APIHandler) HideLegend(ctx context.Context, input *DashboardIDInput) (*struct{ Body LegendBody }, error) {
	c, err := h.dashboard(input.ID)
	if err != nil {
		return nil, err
	}
	c.HideLegend()
	h.svc.Dashboards.Changed(input.ID)
	return &struct{ Body LegendBody }{Body: LegendBody{}}, nil
}
