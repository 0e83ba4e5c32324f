package api

import (
	"bytes"
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-irrigation/internal/chart"
	"github.com/joeblew999/plat-irrigation/internal/humastar"
	"github.com/joeblew999/plat-irrigation/internal/pager"
	"github.com/joeblew999/plat-irrigation/internal/reading"
)

// RegisterReadings registers the readings table and chart routes.
func (h *APIHandler) RegisterReadings(api huma.API) {
	huma.Get(api, "/api/v1/readings", h.GetReadings, huma.OperationTags("readings"))
	huma.Get(api, "/api/v1/readings/chart", h.GetReadingsChart, huma.OperationTags("readings"))
}

type ReadingsInput struct {
	Page     int `query:"page" default:"1" doc:"Page to show (1-indexed); out-of-range pages are clamped" example:"2"`
	PageSize int `query:"pageSize" minimum:"0" maximum:"500" doc:"Rows per page; 0 uses the configured size" example:"5"`
}

// ReadingsPage is one page of the readings table.
type ReadingsPage struct {
	humastar.PageBody[reading.Record]
	Header      []string `json:"header" doc:"Column names"`
	HasPrevious bool     `json:"hasPrevious" doc:"Whether a previous page exists"`
	HasNext     bool     `json:"hasNext" doc:"Whether a next page exists"`
}

func newReadingsPage(p pager.Page) ReadingsPage {
	header := p.Header
	if header == nil {
		header = []string{}
	}
	return ReadingsPage{
		PageBody: humastar.PageBody[reading.Record]{
			Page:       p.Number,
			PageSize:   p.PageSize,
			Total:      p.Total,
			TotalPages: p.TotalPages,
			Data:       p.Records,
		},
		Header:      header,
		HasPrevious: p.HasPrevious,
		HasNext:     p.HasNext,
	}
}

func (h *APIHandler) GetReadings(ctx context.Context, input *ReadingsInput) (*struct{ Body ReadingsPage }, error) {
	size := input.PageSize
	if size <= 0 {
		size = h.svc.Dashboards.PageSize()
	}
	p := pager.RenderPage(h.svc.Dashboards.Dataset(), input.Page, size)
	return &struct{ Body ReadingsPage }{Body: newReadingsPage(p)}, nil
}

type ChartInput struct {
	Title  string   `query:"title" default:"Canal readings" doc:"Chart title"`
	Width  int      `query:"width" default:"800" minimum:"200" maximum:"4000" doc:"Width in pixels"`
	Height int      `query:"height" default:"400" minimum:"150" maximum:"4000" doc:"Height in pixels"`
	Fields []string `query:"fields" doc:"Fields to plot; empty plots every numeric field"`
}

type ChartOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// GetReadingsChart renders the dataset as an SVG line chart.
func (h *APIHandler) GetReadingsChart(ctx context.Context, input *ChartInput) (*ChartOutput, error) {
	var buf bytes.Buffer
	err := chart.Render(&buf, h.svc.Dashboards.Dataset(), chart.Options{
		Title:  input.Title,
		Width:  input.Width,
		Height: input.Height,
		Fields: input.Fields,
	})
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ChartOutput{ContentType: "image/svg+xml", Body: buf.Bytes()}, nil
}
