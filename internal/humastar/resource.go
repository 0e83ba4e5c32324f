// resource.go: Reusable action definitions.
//
// ActionDef is a URL pattern template for actions (e.g. "/api/v1/dashboards/%s/next").
// ActionsFor turns ActionDefs into concrete Action values for a resource ID,
// which the Links transformer then emits as Link headers.
package humastar

import "fmt"

// ActionDef is a reusable action template.
// Pattern uses a single %s verb for the resource ID.
type ActionDef struct {
	Rel     string // IANA or custom rel (e.g., "next", "prev")
	Pattern string // URL pattern with %s placeholder
	Method  string // HTTP method: POST, PUT, DELETE, etc.
	Title   string // human-readable label
	Schema  string // optional JSON Schema URL for the request body
}

// ActionDefs is an ordered set of action templates.
type ActionDefs []ActionDef

// Only returns the definitions whose rel is listed, keeping their order.
func (d ActionDefs) Only(rels ...string) ActionDefs {
	var out ActionDefs
	for _, def := range d {
		for _, rel := range rels {
			if def.Rel == rel {
				out = append(out, def)
				break
			}
		}
	}
	return out
}

// ActionsFor generates concrete Action values from ActionDefs for a given resource ID.
func ActionsFor(id string, defs []ActionDef) []Action {
	actions := make([]Action, len(defs))
	for i, d := range defs {
		actions[i] = Action{
			Rel:    d.Rel,
			Href:   fmt.Sprintf(d.Pattern, id),
			Method: d.Method,
			Title:  d.Title,
			Schema: d.Schema,
		}
	}
	return actions
}
