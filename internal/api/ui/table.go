package ui

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-irrigation/internal/dashboard"
	"github.com/joeblew999/plat-irrigation/internal/humastar"
	"github.com/joeblew999/plat-irrigation/internal/pager"
)

// TableHandler renders the readings table and drives its pager.
type TableHandler struct {
	base
}

func NewTableHandler(d Deps) *TableHandler {
	return &TableHandler{base: newBase(d)}
}

func (h *TableHandler) RegisterRoutes(api huma.API) {
	tags := huma.OperationTags(Tag)
	huma.Get(api, "/api/v1/ui/dashboards/{id}/table", h.Table, tags)
	huma.Post(api, "/api/v1/ui/dashboards/{id}/next", h.Next, tags)
	huma.Post(api, "/api/v1/ui/dashboards/{id}/previous", h.Previous, tags)
}

// Table patches the current page without moving.
func (h *TableHandler) Table(ctx context.Context, input *DashboardInput) (*huma.StreamResponse, error) {
	c, err := h.dashboard(input.ID)
	if err != nil {
		return nil, err
	}
	return h.Stream(func(sse humastar.SSE) {
		h.patchTable(sse, c.ID(), c.Page())
	}), nil
}

func (h *TableHandler) Next(ctx context.Context, input *DashboardInput) (*huma.StreamResponse, error) {
	return h.navigate(input.ID, (*dashboard.Controller).Next)
}

func (h *TableHandler) Previous(ctx context.Context, input *DashboardInput) (*huma.StreamResponse, error) {
	return h.navigate(input.ID, (*dashboard.Controller).Previous)
}

func (h *TableHandler) navigate(id string, step func(*dashboard.Controller) pager.Page) (*huma.StreamResponse, error) {
	c, err := h.dashboard(id)
	if err != nil {
		return nil, err
	}
	return h.Stream(func(sse humastar.SSE) {
		p := step(c)
		h.patchTable(sse, c.ID(), p)
		h.dashboards.Navigated(c.ID())
	}), nil
}
