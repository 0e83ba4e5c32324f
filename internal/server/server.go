package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/joeblew999/plat-irrigation/internal/api"
	"github.com/joeblew999/plat-irrigation/internal/api/ui"
	"github.com/joeblew999/plat-irrigation/internal/config"
	"github.com/joeblew999/plat-irrigation/internal/dashboard"
	"github.com/joeblew999/plat-irrigation/internal/db"
	"github.com/joeblew999/plat-irrigation/internal/humastar"
	"github.com/joeblew999/plat-irrigation/internal/logger"
	"github.com/joeblew999/plat-irrigation/internal/reading"
	"github.com/joeblew999/plat-irrigation/internal/service"
	"github.com/joeblew999/plat-irrigation/internal/templates"
)

// DriverNone serves the built-in sample without opening a database.
const DriverNone = "none"

// Config holds the server configuration.
type Config struct {
	Host       string
	Port       string
	DataDir    string // layers.json and the readings database; empty keeps everything in memory
	WebDir     string // web/ directory for static files and fragment overrides
	ConfigFile string // dashboard file; empty uses the built-in dashboard
	DBDriver   string // duckdb, sqlite or none
	PageSize   int    // overrides the dashboard file when positive
}

const (
	maxHeaderBytes    = 1 << 20 // 1 MB
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// Server is the irrigation dashboard HTTP server.
type Server struct {
	config     Config
	log        *logger.Logger
	mux        *http.ServeMux
	humaAPI    huma.API
	db         *sql.DB
	services   *api.Services
	links      *humastar.Links
	httpServer *http.Server
	stop       context.CancelFunc
}

// New loads the dashboard file and the readings, then wires every route.
// A database that cannot be opened is logged and the built-in sample is
// served instead.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = db.DriverDuckDB
	}
	dash, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	pageSize := dash.PageSize
	if cfg.PageSize > 0 {
		pageSize = cfg.PageSize
	}

	s := &Server{
		config: cfg,
		log:    log,
		mux:    http.NewServeMux(),
	}

	ds := s.loadReadings(ctx)

	bus := service.NewEventBus()
	layers := service.NewLayerService(cfg.DataDir, bus)
	seeded, err := layers.Seed(dash.Layers)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("seed layers: %w", err)
	}
	if seeded {
		log.Infow("seeded layer catalog", "layers", len(dash.Layers))
	}

	renderer, err := s.newRenderer()
	if err != nil {
		s.Close()
		return nil, err
	}

	s.services = &api.Services{
		Layers:     layers,
		Dashboards: dashboard.NewRegistry(ds, pageSize, layers, bus),
		Map:        dash.Map,
		DB:         s.db,
		DBDriver:   cfg.DBDriver,
		DataDir:    cfg.DataDir,
	}
	s.links = api.NewLinks()

	humaConfig := huma.DefaultConfig("plat-irrigation API", "1.0.0")
	humaConfig.Info.Description = "Canal readings table and irrigation layer dashboard for Balochistan."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// No $schema property in responses
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, s.links.Transformer())
	s.humaAPI = humago.New(s.mux, humaConfig)

	s.routes(ui.Deps{
		Renderer:   renderer,
		Dashboards: s.services.Dashboards,
		Layers:     layers,
		Bus:        bus,
		Map:        dash.Map,
	})
	baseCtx, stop := context.WithCancel(context.Background())
	s.stop = stop
	s.httpServer = newHTTPServer(baseCtx, s.Addr(), s)
	s.httpServer.RegisterOnShutdown(stop)
	return s, nil
}

// loadReadings opens the configured database, seeds it with the sample
// readings when empty and loads the dataset.
func (s *Server) loadReadings(ctx context.Context) reading.Dataset {
	if s.config.DBDriver == DriverNone {
		s.log.Infow("serving built-in readings", "records", len(reading.SampleReadings()))
		return reading.Sample()
	}

	conn, err := db.Open(ctx, db.Config{Driver: s.config.DBDriver, DataDir: s.config.DataDir})
	if err != nil {
		s.log.Warnw("database unavailable, serving built-in readings", "driver", s.config.DBDriver, "err", err)
		return reading.Sample()
	}

	store := reading.NewStore(conn)
	ds, err := func() (reading.Dataset, error) {
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		seeded, err := store.Seed(ctx, reading.SampleReadings())
		if err != nil {
			return nil, err
		}
		if seeded {
			s.log.Infow("seeded readings table", "records", len(reading.SampleReadings()))
		}
		return store.Load(ctx)
	}()
	if err != nil {
		conn.Close()
		s.log.Warnw("readings store failed, serving built-in readings", "driver", s.config.DBDriver, "err", err)
		return reading.Sample()
	}

	s.db = conn
	s.log.Infow("loaded readings", "driver", s.config.DBDriver, "records", len(ds))
	return ds
}

// newRenderer uses <web-dir>/templates/fragments when present, falling
// back to the embedded fragments.
func (s *Server) newRenderer() (*templates.Renderer, error) {
	if s.config.WebDir != "" {
		dir := filepath.Join(s.config.WebDir, "templates", "fragments")
		r, err := templates.New(dir)
		if err == nil {
			s.log.Infow("loaded fragment templates", "dir", dir)
			return r, nil
		}
		s.log.Debugw("using embedded fragment templates", "err", err)
	}
	return templates.Default()
}

func (s *Server) routes(deps ui.Deps) {
	api.RegisterRoutes(s.humaAPI, s.services)
	ui.RegisterRoutes(s.humaAPI, deps)
	s.links.Discover(s.humaAPI)

	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	s.mux.Handle("/dashboard", ui.NewPageHandler(deps))
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	for _, link := range s.links.Root() {
		w.Header().Add("Link", link)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-irrigation",
		"status":  "running",
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Services returns the wired services.
func (s *Server) Services() *api.Services {
	return s.services
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	port := strings.TrimPrefix(s.config.Port, ":")
	return s.config.Host + ":" + port
}

// newHTTPServer builds the listener for s. No write timeout is set: SSE
// streams stay open for the life of the page. Request contexts derive from
// base so that cancelling it ends the streams.
func newHTTPServer(base context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
}

// Run listens on Addr until Shutdown is called.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Infow("listening", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server. Open event streams are ended and
// other in-flight requests are allowed to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Close ends open streams and closes the database.
func (s *Server) Close() error {
	if s.stop != nil {
		s.stop()
	}
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
