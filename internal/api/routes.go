// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"database/sql"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-irrigation/internal/chart"
	"github.com/joeblew999/plat-irrigation/internal/config"
	"github.com/joeblew999/plat-irrigation/internal/dashboard"
	"github.com/joeblew999/plat-irrigation/internal/geo"
	"github.com/joeblew999/plat-irrigation/internal/service"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Layers     *service.LayerService
	Dashboards *dashboard.Registry
	Map        config.MapConfig
	DB         *sql.DB // nil when the readings come from the built-in sample
	DBDriver   string
	DataDir    string
}

// Types

type IDInput struct {
	ID string `path:"id" doc:"Layer ID" example:"irrigation_zones"`
}

type LayerOutput struct {
	Body service.Layer
}

type LayersOutput struct {
	Body map[string]service.Layer
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type CreatedLayerBody struct {
	ID      string        `json:"id" doc:"Generated layer ID"`
	Layer   service.Layer `json:"layer" doc:"Created layer"`
	Message string        `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers every REST route on api.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
	NewInfoHandler(svc).RegisterRoutes(api)
	NewDBHandler(svc.DB, svc.DBDriver).RegisterRoutes(api)
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterMap registers the map view route.
func (h *APIHandler) RegisterMap(api huma.API) {
	huma.Get(api, "/api/v1/map", h.GetMap, huma.OperationTags("map"))
}

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetMap(ctx context.Context, input *struct{}) (*struct{ Body config.MapConfig }, error) {
	return &struct{ Body config.MapConfig }{Body: h.svc.Map}, nil
}

// toHumaError maps domain errors to HTTP problems.
func toHumaError(err error) error {
	switch {
	case errors.Is(err, service.ErrLayerNotFound),
		errors.Is(err, dashboard.ErrDashboardNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, service.ErrDuplicateLayer):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, service.ErrInvalidLayer):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, geo.ErrNoExtent),
		errors.Is(err, chart.ErrNotEnoughData):
		return huma.Error422UnprocessableEntity(err.Error())
	default:
		return huma.Error500InternalServerError("internal error", err)
	}
}
