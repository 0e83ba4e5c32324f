package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_RendersEmbeddedFragments(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	html, err := r.Render("empty-state", map[string]string{"Title": "No layers", "Message": "Add one"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "No layers") || !strings.Contains(html, "Add one") {
		t.Fatalf("html=%q", html)
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Render("missing", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestDict(t *testing.T) {
	dict := funcMap["dict"].(func(...any) map[string]any)
	m := dict("Title", "x", 3, "skipped", "Message", "y")
	if m["Title"] != "x" || m["Message"] != "y" || len(m) != 2 {
		t.Fatalf("dict=%v", m)
	}
	if dict("odd") != nil {
		t.Fatal("odd argument count should return nil")
	}
}

func TestNewAndReload_OverrideFromDisk(t *testing.T) {
	dir := t.TempDir()
	write := func(body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, "empty.html"), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(`{{define "empty-state"}}<em>{{.Title}}</em>{{end}}`)

	r, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.MustRender("empty-state", map[string]string{"Title": "v1"}); got != "<em>v1</em>" {
		t.Fatalf("got %q", got)
	}
	// Embedded fragments not overridden remain available.
	if _, err := r.Render("legend", map[string]any{"Layer": nil}); err != nil {
		t.Fatal(err)
	}

	write(`{{define "empty-state"}}<strong>{{.Title}}</strong>{{end}}`)
	if err := r.Reload(dir); err != nil {
		t.Fatal(err)
	}
	if got := r.MustRender("empty-state", map[string]string{"Title": "v2"}); got != "<strong>v2</strong>" {
		t.Fatalf("got %q after reload", got)
	}
}

func TestNew_MissingDir(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing dir")
	}
}
