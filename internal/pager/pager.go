// Package pager splits a Dataset into fixed-size pages and models the
// table and prev/next controls for one page.
//
// Navigation is pure: State methods return a new State and never touch the
// dataset. Render turns a State into the rows to display.
package pager

import "github.com/joeblew999/plat-irrigation/internal/reading"

// DefaultPageSize is used when a non-positive page size is requested.
const DefaultPageSize = 5

// State is the pager position over a dataset of Total items.
type State struct {
	Current  int `json:"page" doc:"Current page (1-indexed)" example:"1"`
	PageSize int `json:"pageSize" doc:"Rows per page" example:"5"`
	Total    int `json:"total" doc:"Number of records" example:"13"`
}

// New returns the initial state for total items: page 1.
func New(total, pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}
	return State{Current: 1, PageSize: pageSize, Total: total}
}

// TotalPages returns ceil(total/pageSize), and 1 for an empty dataset.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// TotalPages returns the number of pages for s.
func (s State) TotalPages() int {
	return TotalPages(s.Total, s.PageSize)
}

// Clamp maps any page number into [1, TotalPages].
func (s State) Clamp(page int) int {
	if page < 1 {
		return 1
	}
	if last := s.TotalPages(); page > last {
		return last
	}
	return page
}

// GoTo moves to page, clamped.
func (s State) GoTo(page int) State {
	s.Current = s.Clamp(page)
	return s
}

// HasPrevious reports whether the previous control is enabled.
func (s State) HasPrevious() bool {
	return s.Total > 0 && s.Current > 1
}

// HasNext reports whether the next control is enabled.
func (s State) HasNext() bool {
	return s.Total > 0 && s.Current < s.TotalPages()
}

// Previous moves back one page; a no-op on the first page.
func (s State) Previous() State {
	if !s.HasPrevious() {
		return s
	}
	s.Current--
	return s
}

// Next moves forward one page; a no-op on the last page.
func (s State) Next() State {
	if !s.HasNext() {
		return s
	}
	s.Current++
	return s
}

// Bounds returns the half-open slice [start, end) of the current page.
// start == end when the page holds no items.
func (s State) Bounds() (start, end int) {
	page := s.Clamp(s.Current)
	start = (page - 1) * s.PageSize
	if start > s.Total {
		start = s.Total
	}
	end = start + s.PageSize
	if end > s.Total {
		end = s.Total
	}
	return start, end
}

// Page is the render model of one page: a header, the rows for the slice,
// and the enabled state of both navigation controls.
type Page struct {
	Number      int              `json:"page" doc:"Displayed page (1-indexed)"`
	PageSize    int              `json:"pageSize" doc:"Rows per page"`
	Total       int              `json:"total" doc:"Number of records in the dataset"`
	TotalPages  int              `json:"totalPages" doc:"Number of pages"`
	Header      []string         `json:"header" doc:"Column names"`
	Rows        [][]string       `json:"rows" doc:"Formatted cells, one row per record"`
	Records     []reading.Record `json:"records" doc:"Records on this page"`
	HasPrevious bool             `json:"hasPrevious" doc:"Whether the previous control is enabled"`
	HasNext     bool             `json:"hasNext" doc:"Whether the next control is enabled"`
}

// Empty reports whether the page shows no rows.
func (p Page) Empty() bool { return len(p.Rows) == 0 }

// Render builds the page for s over ds. The state's Total is taken from ds
// and the current page is clamped, so any state renders without error.
func Render(ds reading.Dataset, s State) Page {
	if s.PageSize <= 0 {
		s.PageSize = DefaultPageSize
	}
	s.Total = len(ds)
	s.Current = s.Clamp(s.Current)

	start, end := s.Bounds()
	slice := ds[start:end]
	header := ds.Fields()

	rows := make([][]string, len(slice))
	records := make([]reading.Record, len(slice))
	for i, r := range slice {
		row := make([]string, len(header))
		for j, name := range header {
			row[j] = r.Text(name)
		}
		rows[i] = row
		records[i] = r
	}

	return Page{
		Number:      s.Current,
		PageSize:    s.PageSize,
		Total:       s.Total,
		TotalPages:  s.TotalPages(),
		Header:      header,
		Rows:        rows,
		Records:     records,
		HasPrevious: s.HasPrevious(),
		HasNext:     s.HasNext(),
	}
}

// RenderPage renders page of ds with the given page size.
func RenderPage(ds reading.Dataset, page, pageSize int) Page {
	return Render(ds, New(len(ds), pageSize).GoTo(page))
}
