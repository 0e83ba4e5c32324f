package service

const irrigationBoundaries = "https://113.197.48.2:6443/arcgis/rest/services/BETA/Irrigation_Boundaries/MapServer/"

// balochistan covers the province; sublayers share it until the services
// report their own extents.
var balochistan = Extent{MinLon: 60.87, MinLat: 24.89, MaxLon: 70.30, MaxLat: 32.10}

func popup(fields ...string) *PopupTemplate {
	p := &PopupTemplate{}
	for _, f := range fields {
		p.Fields = append(p.Fields, FieldInfo{FieldName: f, Label: f})
	}
	return p
}

func featureLayer(id, title, sublayer string, fields ...string) Layer {
	ext := balochistan
	return Layer{
		ID:        id,
		Title:     title,
		Kind:      KindFeature,
		URL:       irrigationBoundaries + sublayer,
		Visible:   true,
		Opacity:   1,
		OutFields: []string{"*"},
		Popup:     popup(fields...),
		Extent:    &ext,
	}
}

// DefaultLayers returns the Balochistan irrigation boundaries catalog.
func DefaultLayers() []Layer {
	divisions := Layer{
		ID:      "irrigation_divisions",
		Title:   "Irrigation Divisions",
		Kind:    KindGroup,
		URL:     irrigationBoundaries + "3",
		Visible: true,
		Opacity: 1,
		Children: []Layer{
			featureLayer("irrigation_divisions_child", "Irrigation Divisions (Child)", "5", "Name", "Zone", "Circle"),
			featureLayer("irrigation_circle_child", "Irrigation Circle (Child)", "4", "Circle"),
		},
	}
	ext := balochistan
	divisions.Extent = &ext

	return []Layer{
		featureLayer("balochistan", "Balochistan", "0", "Name", "Zone", "Circle"),
		featureLayer("irrigation_zones", "Irrigation Zones", "1", "Zone"),
		featureLayer("irrigation_circle", "Irrigation Circle", "2", "Circle"),
		divisions,
	}
}
