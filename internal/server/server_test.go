package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joeblew999/plat-irrigation/internal/db"
	"github.com/joeblew999/plat-irrigation/internal/logger"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.Host == "" {
		cfg.Host, cfg.Port = "127.0.0.1", "0"
	}
	s, err := New(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_SampleWithoutDatabase(t *testing.T) {
	s := newTestServer(t, Config{DBDriver: DriverNone})

	rec := get(t, s, "/api/v1/readings?page=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	var page struct {
		Page  int              `json:"page"`
		Total int              `json:"total"`
		Data  []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.Page != 3 || page.Total != 13 || len(page.Data) != 3 {
		t.Fatalf("page=%+v", page)
	}

	if rec := get(t, s, "/api/v1/db/tables"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("tables status=%d", rec.Code)
	}
}

func TestServer_SQLiteStore(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, Config{DBDriver: db.DriverSQLite, DataDir: dir, PageSize: 4})

	if s.Services().DB == nil {
		t.Fatal("database not opened")
	}
	if got := len(s.Services().Dashboards.Dataset()); got != 13 {
		t.Fatalf("records=%d, want 13", got)
	}
	if got := s.Services().Dashboards.PageSize(); got != 4 {
		t.Fatalf("page size=%d, want 4", got)
	}

	rec := get(t, s, "/api/v1/db/tables")
	if !strings.Contains(rec.Body.String(), "readings") {
		t.Fatalf("tables=%s", rec.Body)
	}
	if _, err := os.Stat(filepath.Join(dir, "sqlite", "irrigation.db")); err != nil {
		t.Fatal(err)
	}
}

func TestServer_UnknownDriverFallsBack(t *testing.T) {
	s := newTestServer(t, Config{DBDriver: "oracle"})
	if s.Services().DB != nil {
		t.Fatal("unexpected database")
	}
	if got := len(s.Services().Dashboards.Dataset()); got != 13 {
		t.Fatalf("records=%d, want 13", got)
	}
}

func TestServer_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	yml := "page_size: 7\nmap:\n  basemap: topo\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, Config{DBDriver: DriverNone, ConfigFile: path})
	if got := s.Services().Dashboards.PageSize(); got != 7 {
		t.Fatalf("page size=%d, want 7", got)
	}
	if !strings.Contains(get(t, s, "/api/v1/map").Body.String(), `"basemap":"topo"`) {
		t.Fatal("map config not loaded from file")
	}

	if _, err := New(context.Background(), Config{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}, nil); err == nil {
		t.Fatal("missing config file should fail")
	}
}

func TestServer_RootAndPage(t *testing.T) {
	s := newTestServer(t, Config{DBDriver: DriverNone})

	rec := get(t, s, "/")
	if rec.Code != http.StatusOK || len(rec.Header().Values("Link")) == 0 {
		t.Fatalf("root status=%d links=%v", rec.Code, rec.Header().Values("Link"))
	}
	if rec := get(t, s, "/nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path status=%d", rec.Code)
	}

	rec = get(t, s, "/dashboard")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<!DOCTYPE html>") {
		t.Fatalf("page status=%d", rec.Code)
	}
	if s.Services().Dashboards.Len() != 1 {
		t.Fatal("page did not open a dashboard")
	}
}

func TestServer_WebDirOverridesFragments(t *testing.T) {
	web := t.TempDir()
	frag := filepath.Join(web, "templates", "fragments")
	if err := os.MkdirAll(frag, 0o755); err != nil {
		t.Fatal(err)
	}
	override := `{{define "empty-state"}}<p class="custom">{{.Title}}</p>{{end}}`
	if err := os.WriteFile(filepath.Join(frag, "empty-state.html"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}
	static := filepath.Join(web, "static")
	if err := os.MkdirAll(static, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(static, "dashboard.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newTestServer(t, Config{DBDriver: DriverNone, WebDir: web})
	if rec := get(t, s, "/static/dashboard.css"); rec.Body.String() != "body{}" {
		t.Fatalf("static=%q", rec.Body)
	}

	// Show, then hide, the legend so the empty state is rendered.
	c := s.Services().Dashboards.Create(0)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ui/dashboards/"+c.ID()+"/layers/balochistan/legend", nil))
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ui/dashboards/"+c.ID()+"/layers/balochistan/legend", nil))
	if !strings.Contains(rec.Body.String(), `class="custom"`) {
		t.Fatalf("override not applied:\n%s", rec.Body)
	}
}

func TestServer_OpenAPI(t *testing.T) {
	s := newTestServer(t, Config{DBDriver: DriverNone})
	doc := s.OpenAPI()
	for _, p := range []string{"/api/v1/readings", "/api/v1/dashboards/{id}/next", "/api/v1/ui/events"} {
		if _, ok := doc.Paths[p]; !ok {
			t.Errorf("missing path %s", p)
		}
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		t.Fatal(err)
	}
}

func TestServer_RunAndShutdown(t *testing.T) {
	s := newTestServer(t, Config{DBDriver: DriverNone})
	errc := make(chan error, 1)
	go func() { errc <- s.Run() }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("Run() = %v", err)
	}
}

func TestServer_ShutdownEndsEventStreams(t *testing.T) {
	s := newTestServer(t, Config{DBDriver: DriverNone})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ln) }()

	c := s.Services().Dashboards.Create(0)
	resp, err := http.Get("http://" + ln.Addr().String() + "/api/v1/ui/events?dashboard=" + c.ID())
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("events status=%d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() = %v after %v", err, time.Since(start))
	}
	if err := <-errc; err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if _, err := io.ReadAll(resp.Body); err != nil {
		t.Fatalf("stream did not end cleanly: %v", err)
	}
	if n := s.Services().Dashboards.Len(); n != 0 {
		t.Fatalf("dashboards=%d after shutdown, want 0", n)
	}
}
