package ui

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-irrigation/internal/dashboard"
	"github.com/joeblew999/plat-irrigation/internal/humastar"
	"github.com/joeblew999/plat-irrigation/internal/service"
)

// EventHandler streams bus events to the page so that every open view of
// a dashboard stays in sync. The followed dashboard is closed when its last
// stream ends.
type EventHandler struct {
	base
	bus *service.EventBus
}

func NewEventHandler(d Deps) *EventHandler {
	return &EventHandler{base: newBase(d), bus: d.Bus}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/ui/events", h.Events, huma.OperationTags(Tag))
}

type EventsInput struct {
	Dashboard string `query:"dashboard" doc:"Dashboard to follow"`
}

func (h *EventHandler) Events(ctx context.Context, input *EventsInput) (*huma.StreamResponse, error) {
	if h.bus == nil {
		return nil, huma.Error503ServiceUnavailable("event stream not available")
	}
	var c *dashboard.Controller
	release := func() {}
	if input.Dashboard != "" {
		var err error
		if c, release, err = h.dashboards.Follow(input.Dashboard); err != nil {
			return nil, huma.Error404NotFound(err.Error())
		}
	}

	return h.Stream(func(sse humastar.SSE) {
		defer release()
		ch := h.bus.Subscribe()
		defer h.bus.Unsubscribe(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if !h.apply(sse, c, ev) {
					return
				}
			}
		}
	}), nil
}

// apply patches what ev changed. It returns false once the followed
// dashboard is gone.
func (h *EventHandler) apply(sse humastar.SSE, c *dashboard.Controller, ev service.Event) bool {
	switch ev.Resource {
	case service.ResourceLayers:
		h.patchLayers(sse, c)
	case service.ResourceDashboards:
		if c == nil || ev.ID != c.ID() {
			break
		}
		switch ev.Action {
		case service.ActionNavigate:
			h.patchTable(sse, c.ID(), c.Page())
		case service.ActionUpdated:
			h.patchLayers(sse, c)
			h.patchLegend(sse, c)
		case service.ActionDeleted:
			sse.Error("Dashboard closed")
			return false
		}
	}
	sse.DispatchCustomEvent("resource-changed", map[string]any{
		"resource": ev.Resource,
		"action":   ev.Action,
		"id":       ev.ID,
	})
	return true
}
