package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	svc *Services
}

func NewInfoHandler(svc *Services) *InfoHandler {
	return &InfoHandler{svc: svc}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name       string   `json:"name" doc:"Service name"`
	Version    string   `json:"version" doc:"Service version"`
	DataDir    string   `json:"data_dir" doc:"Data directory path"`
	DB         bool     `json:"db" doc:"Whether readings come from a database"`
	DBDriver   string   `json:"db_driver,omitempty" doc:"Database driver" example:"duckdb"`
	Readings   int      `json:"readings" doc:"Records in the dataset" example:"13"`
	Layers     int      `json:"layers" doc:"Top-level catalog layers" example:"4"`
	Dashboards int      `json:"dashboards" doc:"Open dashboards"`
	Features   []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	body := InfoBody{
		Name:     "plat-irrigation",
		Version:  "0.1.0",
		DataDir:  h.svc.DataDir,
		DB:       h.svc.DB != nil,
		Features: []string{"readings", "pager", "chart", "layers", "dashboards", "geojson"},
	}
	if body.DB {
		body.DBDriver = h.svc.DBDriver
	}
	if h.svc.Dashboards != nil {
		body.Readings = len(h.svc.Dashboards.Dataset())
		body.Dashboards = h.svc.Dashboards.Len()
	}
	if h.svc.Layers != nil {
		body.Layers = len(h.svc.Layers.List())
	}
	return &struct{ Body InfoBody }{Body: body}, nil
}
