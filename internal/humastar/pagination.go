// pagination.go: HATEOAS pagination via RFC 8288 Link headers.
//
// Response bodies implement the Pager interface to emit first/prev/next/last
// Link headers. The Links transformer reads these and sets the headers.
package humastar

import "fmt"

// Pager is implemented by response bodies that carry pagination metadata.
type Pager interface {
	PaginationLinks(basePath string) []string
}

// PageBody is a generic page-numbered response envelope.
// Any handler returning PageBody[T] gets pagination Link headers.
type PageBody[T any] struct {
	Page       int `json:"page" doc:"Current page (1-indexed)" example:"1"`
	PageSize   int `json:"pageSize" doc:"Items per page" example:"5"`
	Total      int `json:"total" doc:"Total number of items" example:"13"`
	TotalPages int `json:"totalPages" doc:"Number of pages" example:"3"`
	Data       []T `json:"data" doc:"Items on this page"`
}

// PaginationLinks returns RFC 8288 Link header values for pagination rels.
// prev and next are left out at the first and last page.
func (p PageBody[T]) PaginationLinks(basePath string) []string {
	last := p.TotalPages
	if last < 1 {
		last = 1
	}
	link := func(page int, rel string) string {
		return fmt.Sprintf(`<%s?page=%d&pageSize=%d>; rel="%s"`, basePath, page, p.PageSize, rel)
	}

	links := []string{link(1, "first")}
	if p.Page > 1 {
		links = append(links, link(p.Page-1, "prev"))
	}
	if p.Page < last {
		links = append(links, link(p.Page+1, "next"))
	}
	return append(links, link(last, "last"))
}
