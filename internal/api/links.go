package api

import "github.com/joeblew999/plat-irrigation/internal/humastar"

// links maps operation paths to hand-written RFC 8288 Link header values.
// Structural links (collection, item, up) are discovered from the OpenAPI
// document by humastar.Links.
var links = map[string][]string{
	"/health": {
		`</dashboard>; rel="dashboard"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/readings>; rel="readings"`,
	},
	"/api/v1/map": {
		`</api/v1/layers/tree>; rel="layers"`,
		`</api/v1/layers/extents>; rel="extents"`,
	},
	"/api/v1/layers": {
		`</api/v1/layers/tree>; rel="tree"`,
		`</api/v1/map>; rel="map"`,
	},
	"/api/v1/layers/tree": {
		`</api/v1/layers>; rel="collection"`,
		`</api/v1/layers/extents>; rel="extents"`,
	},
	"/api/v1/readings": {
		`</api/v1/readings/chart>; rel="chart"`,
		`</api/v1/dashboards>; rel="dashboards"`,
	},
	"/api/v1/dashboards/{id}": {
		`</api/v1/readings>; rel="readings"`,
		`</api/v1/layers/tree>; rel="layers"`,
	},
}

// NewLinks returns the link table for the REST API. Datastar UI routes are
// excluded from discovery.
func NewLinks() *humastar.Links {
	return humastar.NewLinks(links, "ui")
}
