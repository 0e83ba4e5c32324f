package ui

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/joeblew999/plat-irrigation/internal/config"
	"github.com/joeblew999/plat-irrigation/internal/dashboard"
	"github.com/joeblew999/plat-irrigation/internal/templates"
)

// PageHandler serves the dashboard page shell. Each request opens a new
// dashboard; the page then loads its fragments over SSE. The dashboard
// closes when the page's event stream ends, or after the registry's idle
// timeout if the stream is never opened.
type PageHandler struct {
	renderer   *templates.Renderer
	dashboards *dashboard.Registry
	title      string
	mapCfg     config.MapConfig
}

func NewPageHandler(d Deps) *PageHandler {
	title := d.Title
	if title == "" {
		title = DefaultTitle
	}
	return &PageHandler{
		renderer:   d.Renderer,
		dashboards: d.Dashboards,
		title:      title,
		mapCfg:     d.Map,
	}
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	pageSize = min(pageSize, dashboard.MaxPageSize)

	c := h.dashboards.Create(pageSize)
	var buf bytes.Buffer
	err := h.renderer.RenderToBuffer(&buf, "dashboard-page", PageData{
		Title:       h.title,
		DashboardID: c.ID(),
		Map:         h.mapCfg,
	})
	if err != nil {
		_ = h.dashboards.Delete(c.ID())
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
