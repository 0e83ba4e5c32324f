package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-irrigation/internal/geo"
	"github.com/joeblew999/plat-irrigation/internal/service"
)

// RegisterLayers registers layer catalog routes.
func (h *APIHandler) RegisterLayers(api huma.API) {
	huma.Get(api, "/api/v1/layers", h.GetLayers, huma.OperationTags("layers"))
	huma.Post(api, "/api/v1/layers", h.CreateLayer, huma.OperationTags("layers"), created)
	huma.Get(api, "/api/v1/layers/tree", h.GetLayerTree, huma.OperationTags("layers"))
	huma.Get(api, "/api/v1/layers/extents", h.GetLayerExtents, huma.OperationTags("layers"))
	huma.Get(api, "/api/v1/layers/{id}", h.GetLayer, huma.OperationTags("layers"))
	huma.Put(api, "/api/v1/layers/{id}", h.PutLayer, huma.OperationTags("layers"))
	huma.Delete(api, "/api/v1/layers/{id}", h.DeleteLayer, huma.OperationTags("layers"))
}

func created(o *huma.Operation) {
	o.DefaultStatus = http.StatusCreated
}

func (h *APIHandler) GetLayers(ctx context.Context, input *struct{}) (*LayersOutput, error) {
	return &LayersOutput{Body: h.svc.Layers.List()}, nil
}

func (h *APIHandler) GetLayerTree(ctx context.Context, input *struct{}) (*struct{ Body []service.Layer }, error) {
	tree := h.svc.Layers.Tree()
	if tree == nil {
		tree = []service.Layer{}
	}
	return &struct{ Body []service.Layer }{Body: tree}, nil
}

type ExtentsOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// GetLayerExtents returns every layer extent as a GeoJSON FeatureCollection.
func (h *APIHandler) GetLayerExtents(ctx context.Context, input *struct{}) (*ExtentsOutput, error) {
	raw, err := geo.FeatureCollection(h.svc.Layers.Tree()).MarshalJSON()
	if err != nil {
		return nil, huma.Error500InternalServerError("encode extents", err)
	}
	return &ExtentsOutput{ContentType: "application/geo+json", Body: raw}, nil
}

func (h *APIHandler) CreateLayer(ctx context.Context, input *struct{ Body service.Layer }) (*struct{ Body CreatedLayerBody }, error) {
	layer, err := h.svc.Layers.Create(input.Body)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &struct{ Body CreatedLayerBody }{Body: CreatedLayerBody{
		ID: layer.ID, Layer: layer, Message: "Layer created",
	}}, nil
}

func (h *APIHandler) GetLayer(ctx context.Context, input *IDInput) (*LayerOutput, error) {
	layer, ok := h.svc.Layers.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("layer not found")
	}
	return &LayerOutput{Body: layer}, nil
}

func (h *APIHandler) PutLayer(ctx context.Context, input *struct {
	IDInput
	Body service.Layer
}) (*LayerOutput, error) {
	layer, err := h.svc.Layers.Update(input.ID, input.Body)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &LayerOutput{Body: layer}, nil
}

func (h *APIHandler) DeleteLayer(ctx context.Context, input *IDInput) (*struct{ Body MessageBody }, error) {
	if err := h.svc.Layers.Delete(input.ID); err != nil {
		return nil, toHumaError(err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Layer deleted"}}, nil
}
