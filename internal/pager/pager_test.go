package pager

import (
	"reflect"
	"testing"

	"github.com/joeblew999/plat-irrigation/internal/reading"
)

func dates(p Page) []string {
	out := make([]string, len(p.Records))
	for i, r := range p.Records {
		out[i] = r.Text(reading.FieldDate)
	}
	return out
}

func TestTotalPages(t *testing.T) {
	for pageSize := 1; pageSize <= 7; pageSize++ {
		for total := 0; total <= 30; total++ {
			want := (total + pageSize - 1) / pageSize
			if want < 1 {
				want = 1
			}
			if got := TotalPages(total, pageSize); got != want {
				t.Fatalf("TotalPages(%d, %d)=%d, want %d", total, pageSize, got, want)
			}
		}
	}
}

func TestRender_SliceLengths(t *testing.T) {
	ds := reading.Sample()
	for pageSize := 1; pageSize <= 14; pageSize++ {
		last := TotalPages(len(ds), pageSize)
		for page := 1; page <= last; page++ {
			p := RenderPage(ds, page, pageSize)
			want := pageSize
			if page == last {
				want = len(ds) - pageSize*(last-1)
			}
			if len(p.Rows) != want {
				t.Fatalf("pageSize=%d page=%d rows=%d, want %d", pageSize, page, len(p.Rows), want)
			}
		}
	}
}

func TestRender_FirstPageOfSample(t *testing.T) {
	p := RenderPage(reading.Sample(), 1, 5)

	want := []string{"2023-01-01", "2023-01-02", "2023-01-03", "2023-01-04", "2023-01-05"}
	if got := dates(p); !reflect.DeepEqual(got, want) {
		t.Fatalf("dates=%v, want %v", got, want)
	}
	if p.HasPrevious {
		t.Fatal("previous should be disabled on page 1")
	}
	if !p.HasNext {
		t.Fatal("next should be enabled on page 1")
	}
	if p.TotalPages != 3 {
		t.Fatalf("TotalPages=%d, want 3", p.TotalPages)
	}
}

func TestRender_LastPageOfSample(t *testing.T) {
	p := RenderPage(reading.Sample(), 3, 5)

	want := []string{"2023-01-11", "2023-01-12", "2023-01-13"}
	if got := dates(p); !reflect.DeepEqual(got, want) {
		t.Fatalf("dates=%v, want %v", got, want)
	}
	if p.HasNext {
		t.Fatal("next should be disabled on the last page")
	}
	if !p.HasPrevious {
		t.Fatal("previous should be enabled on the last page")
	}
}

func TestNext_ClampsAtLastPage(t *testing.T) {
	ds := reading.Sample()
	s := New(len(ds), 5)
	for range 3 {
		s = s.Next()
	}
	if s.Current != 3 {
		t.Fatalf("Current=%d, want 3", s.Current)
	}
	if got := dates(Render(ds, s)); got[0] != "2023-01-11" {
		t.Fatalf("first date on page 3=%q", got[0])
	}
}

func TestPrevious_NoOpOnFirstPage(t *testing.T) {
	s := New(13, 5)
	if got := s.Previous(); got != s {
		t.Fatalf("Previous() on page 1 changed state: %+v", got)
	}
	s = s.GoTo(2).Previous()
	if s.Current != 1 {
		t.Fatalf("Current=%d, want 1", s.Current)
	}
}

func TestGoTo_ClampsOutOfRange(t *testing.T) {
	s := New(13, 5)
	if got := s.GoTo(0).Current; got != 1 {
		t.Fatalf("GoTo(0)=%d, want 1", got)
	}
	if got := s.GoTo(-4).Current; got != 1 {
		t.Fatalf("GoTo(-4)=%d, want 1", got)
	}
	if got := s.GoTo(99).Current; got != 3 {
		t.Fatalf("GoTo(99)=%d, want 3", got)
	}
	p := RenderPage(reading.Sample(), 99, 5)
	if p.Number != 3 || len(p.Rows) != 3 {
		t.Fatalf("RenderPage(99) page=%d rows=%d", p.Number, len(p.Rows))
	}
}

func TestRender_EmptyDataset(t *testing.T) {
	p := Render(nil, New(0, 5))
	if !p.Empty() {
		t.Fatalf("rows=%v, want none", p.Rows)
	}
	if p.Header != nil {
		t.Fatalf("header=%v, want none", p.Header)
	}
	if p.HasNext || p.HasPrevious {
		t.Fatal("both controls should be disabled for an empty dataset")
	}
	if p.TotalPages != 1 || p.Number != 1 {
		t.Fatalf("TotalPages=%d Number=%d, want 1/1", p.TotalPages, p.Number)
	}
}

func TestRender_SinglePageDisablesBoth(t *testing.T) {
	p := RenderPage(reading.Sample()[:4], 1, 5)
	if p.HasNext || p.HasPrevious {
		t.Fatal("both controls should be disabled on a single page")
	}
}

func TestRender_Idempotent(t *testing.T) {
	ds := reading.Sample()
	a := RenderPage(ds, 2, 5)
	b := RenderPage(ds, 2, 5)
	if !reflect.DeepEqual(a.Rows, b.Rows) || a.HasNext != b.HasNext || a.HasPrevious != b.HasPrevious {
		t.Fatal("rendering the same page twice differs")
	}
}

func TestRender_HeterogeneousRecordsLeaveBlankCells(t *testing.T) {
	p := RenderPage(reading.Sample(), 1, 5)
	wantHeader := []string{reading.FieldDate, reading.FieldWaterLevel, reading.FieldFlowRate, reading.FieldRainfall}
	if !reflect.DeepEqual(p.Header, wantHeader) {
		t.Fatalf("header=%v, want %v", p.Header, wantHeader)
	}
	// 2023-01-04 has no rainfall reading.
	if got := p.Rows[3][3]; got != "" {
		t.Fatalf("missing rainfall cell=%q, want blank", got)
	}
	if got := p.Rows[0]; !reflect.DeepEqual(got, []string{"2023-01-01", "12.4", "3400", "0"}) {
		t.Fatalf("row 0=%v", got)
	}
}

func TestNew_DefaultsPageSize(t *testing.T) {
	s := New(-3, 0)
	if s.PageSize != DefaultPageSize || s.Total != 0 || s.Current != 1 {
		t.Fatalf("New(-3, 0)=%+v", s)
	}
}
