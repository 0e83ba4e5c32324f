package humastar

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

// Links holds RFC 8288 Link header values keyed by operation path. Entries
// come from a static map and from Discover, which derives relations from
// the registered OpenAPI paths.
type Links struct {
	mu       sync.RWMutex
	byPath   map[string][]string
	skipTags []string
	entry    string
}

// NewLinks creates a link table seeded with static links. Operations tagged
// with any of skipTags (e.g. Datastar SSE endpoints) are left out of
// discovery.
func NewLinks(static map[string][]string, skipTags ...string) *Links {
	l := &Links{
		byPath:   map[string][]string{},
		skipTags: skipTags,
		entry:    "/health",
	}
	for p, hs := range static {
		l.byPath[p] = append([]string(nil), hs...)
	}
	return l
}

// For returns the Link header values registered for an operation path.
func (l *Links) For(opPath string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.byPath[opPath])
}

// Root returns the entry point links, for use by non-Huma handlers.
func (l *Links) Root() []string {
	return l.For(l.entry)
}

// Discover walks the OpenAPI document and adds collection, item, up and
// edit relations, then documents every path's links as OpenAPI response
// links. Call after all routes are registered.
func (l *Links) Discover(api huma.API) {
	oapi := api.OpenAPI()

	l.mu.Lock()
	defer l.mu.Unlock()

	type pathInfo struct {
		path string
		tags []string
	}
	var collections, items []pathInfo

	for p, pi := range oapi.Paths {
		tags := primaryTags(pi)
		if l.skipped(tags) {
			continue
		}
		info := pathInfo{path: p, tags: tags}
		if strings.Contains(p, "{") {
			items = append(items, info)
		} else {
			collections = append(collections, info)
		}
	}
	byPath := func(a, b pathInfo) int { return strings.Compare(a.path, b.path) }
	slices.SortFunc(collections, byPath)
	slices.SortFunc(items, byPath)

	// Item → parent collection.
	for _, item := range items {
		parent := path.Dir(item.path)
		if _, ok := oapi.Paths[parent]; ok && !strings.Contains(parent, "{") {
			l.add(item.path, parent, "collection")
			l.add(item.path, parent, "up")
		}
	}

	// Collection → item template.
	for _, coll := range collections {
		for _, item := range items {
			if path.Dir(item.path) == coll.path {
				l.add(coll.path, item.path, "item")
			}
		}
	}

	// Collections → entry point, and entry point → collections.
	for _, coll := range collections {
		if coll.path == l.entry {
			continue
		}
		l.add(coll.path, l.entry, "up")
		l.add(l.entry, coll.path, lastSegment(coll.path))
	}
	if _, ok := oapi.Paths[l.entry]; ok {
		l.add(l.entry, "/openapi.json", "service-desc")
		l.add(l.entry, "/docs", "service-doc")
	}

	// Action rels from HTTP methods.
	for _, coll := range collections {
		if oapi.Paths[coll.path].Post != nil {
			l.add(coll.path, coll.path, "create-form")
		}
	}
	for _, item := range items {
		pi := oapi.Paths[item.path]
		if pi.Put != nil || pi.Patch != nil {
			l.add(item.path, item.path, "edit")
		}
	}

	// Per-resource schema.
	for _, all := range [][]pathInfo{collections, items} {
		for _, pi := range all {
			if ref := getResponseSchemaRef(oapi.Paths[pi.path]); ref != "" {
				l.add(pi.path, "/openapi.json#/components/schemas/"+ref, "describedby")
			}
		}
	}

	for p, pi := range oapi.Paths {
		headers, ok := l.byPath[p]
		if !ok {
			continue
		}
		for _, op := range operationsOf(pi) {
			if op != nil {
				injectResponseLinks(op, headers)
			}
		}
	}
}

// Transformer returns a Huma Transformer that adds Link headers at runtime:
// the table entries for the operation, a self link for item paths,
// pagination links from [Pager] bodies and action links from [Actor] bodies.
func (l *Links) Transformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil || !strings.HasPrefix(status, "2") {
			return v, nil
		}

		for _, link := range l.For(op.Path) {
			ctx.AppendHeader("Link", link)
		}

		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}

		if p, ok := v.(Pager); ok {
			for _, link := range p.PaginationLinks(ctx.URL().Path) {
				ctx.AppendHeader("Link", link)
			}
		}

		if a, ok := v.(Actor); ok {
			for _, action := range a.Actions() {
				ctx.AppendHeader("Link", action.LinkHeader())
			}
		}

		return v, nil
	}
}

// --- helpers ---

func (l *Links) skipped(tags []string) bool {
	for _, t := range tags {
		if slices.Contains(l.skipTags, t) {
			return true
		}
	}
	return false
}

func (l *Links) add(from, to, rel string) {
	val := fmt.Sprintf(`<%s>; rel="%s"`, to, rel)
	if slices.Contains(l.byPath[from], val) {
		return
	}
	l.byPath[from] = append(l.byPath[from], val)
}

func primaryTags(pi *huma.PathItem) []string {
	for _, op := range operationsOf(pi) {
		if op != nil && len(op.Tags) > 0 {
			return op.Tags
		}
	}
	return nil
}

func operationsOf(pi *huma.PathItem) []*huma.Operation {
	return []*huma.Operation{pi.Get, pi.Post, pi.Put, pi.Patch, pi.Delete}
}

func lastSegment(p string) string {
	parts := strings.Split(strings.TrimRight(p, "/"), "/")
	return parts[len(parts)-1]
}

// injectResponseLinks adds OpenAPI Link objects to the operation's success
// response so the document itself lists the relations.
func injectResponseLinks(op *huma.Operation, headers []string) {
	if op.Responses == nil {
		return
	}
	var resp *huma.Response
	for code, r := range op.Responses {
		if strings.HasPrefix(code, "2") {
			resp = r
			break
		}
	}
	if resp == nil {
		return
	}
	if resp.Links == nil {
		resp.Links = map[string]*huma.Link{}
	}
	for _, h := range headers {
		rel, href := parseLinkHeader(h)
		if rel == "" {
			continue
		}
		resp.Links[rel] = &huma.Link{
			OperationRef: href,
			Description:  fmt.Sprintf("Related: %s", rel),
		}
	}
}

func getResponseSchemaRef(pi *huma.PathItem) string {
	if pi.Get == nil || pi.Get.Responses == nil {
		return ""
	}
	for code, resp := range pi.Get.Responses {
		if !strings.HasPrefix(code, "2") || resp.Content == nil {
			continue
		}
		for _, mt := range resp.Content {
			if mt.Schema != nil && mt.Schema.Ref != "" {
				parts := strings.Split(mt.Schema.Ref, "/")
				return parts[len(parts)-1]
			}
		}
	}
	return ""
}

func parseLinkHeader(h string) (rel, href string) {
	parts := strings.SplitN(h, ";", 2)
	if len(parts) < 2 {
		return "", ""
	}
	href = strings.Trim(strings.TrimSpace(parts[0]), "<>")
	relPart := strings.TrimSpace(parts[1])
	if strings.HasPrefix(relPart, `rel="`) {
		rel = strings.Trim(relPart[4:], `"`)
	}
	return rel, href
}
