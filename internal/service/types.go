// Package service contains the layer catalog and change notification for the
// irrigation dashboard.
package service

// Layer kinds.
const (
	KindFeature = "feature"
	KindGroup   = "group"
)

// Layer is one entry of the map layer catalog. Group layers carry their
// sublayers in Children; feature layers never have children.
type Layer struct {
	ID        string         `json:"id,omitempty" doc:"Unique layer identifier" example:"irrigation_zones"`
	Title     string         `json:"title" required:"true" minLength:"1" maxLength:"100" doc:"Display title" example:"Irrigation Zones"`
	Kind      string         `json:"kind" enum:"feature,group" default:"feature" doc:"Layer kind" example:"feature"`
	URL       string         `json:"url,omitempty" doc:"Map service endpoint" example:"https://113.197.48.2:6443/arcgis/rest/services/BETA/Irrigation_Boundaries/MapServer/1"`
	Visible   bool           `json:"visible" default:"true" doc:"Whether the layer is visible by default"`
	Opacity   float64        `json:"opacity,omitempty" minimum:"0" maximum:"1" default:"1" doc:"Default opacity (0-1)"`
	OutFields []string       `json:"outFields,omitempty" doc:"Attribute fields requested from the service"`
	Order     int            `json:"order" doc:"Display order, lowest first"`
	Popup     *PopupTemplate `json:"popup,omitempty" doc:"Popup shown when a feature is selected"`
	Extent    *Extent        `json:"extent,omitempty" doc:"Full extent in WGS84 degrees"`
	Children  []Layer        `json:"children,omitempty" doc:"Sublayers of a group layer"`
}

// PopupTemplate lists the attribute fields shown in a feature popup.
type PopupTemplate struct {
	Title  string      `json:"title,omitempty" doc:"Popup title, defaults to the layer title"`
	Fields []FieldInfo `json:"fields" doc:"Fields shown, in order"`
}

// FieldInfo maps an attribute field to a popup label.
type FieldInfo struct {
	FieldName string `json:"fieldName" required:"true" doc:"Attribute field name" example:"Zone"`
	Label     string `json:"label" doc:"Display label" example:"Zone"`
}

// Extent is a lon/lat bounding box.
type Extent struct {
	MinLon float64 `json:"minLon" minimum:"-180" maximum:"180" example:"60.87"`
	MinLat float64 `json:"minLat" minimum:"-90" maximum:"90" example:"24.89"`
	MaxLon float64 `json:"maxLon" minimum:"-180" maximum:"180" example:"70.30"`
	MaxLat float64 `json:"maxLat" minimum:"-90" maximum:"90" example:"32.10"`
}

// IsGroup reports whether the layer is a group layer.
func (l Layer) IsGroup() bool { return l.Kind == KindGroup }
