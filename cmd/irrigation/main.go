package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-irrigation/internal/logger"
	"github.com/joeblew999/plat-irrigation/internal/pager"
	"github.com/joeblew999/plat-irrigation/internal/server"
)

// Options defines all CLI flags and env vars for the dashboard server.
// Flags: --host, --port, --data-dir, --web-dir, --config, --db-driver, --page-size, --log-level
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, ...
type Options struct {
	Host     string `doc:"Host to bind to" default:"0.0.0.0"`
	Port     int    `doc:"Port to listen on" short:"p" default:"8086"`
	DataDir  string `doc:"Directory for layers.json and the readings database" default:".data"`
	WebDir   string `doc:"Path to web/ directory" default:"web"`
	Config   string `doc:"Dashboard config file (yaml, json or toml)"`
	DBDriver string `doc:"Readings database: duckdb, sqlite or none" default:"duckdb"`
	PageSize int    `doc:"Rows per table page; 0 uses the dashboard config"`
	LogLevel string `doc:"Log level: debug, info, warn or error" default:"info"`
}

const shutdownTimeout = 10 * time.Second

func newServer(opts *Options, log *logger.Logger) (*server.Server, error) {
	return server.New(context.Background(), server.Config{
		Host:       opts.Host,
		Port:       strconv.Itoa(opts.Port),
		DataDir:    opts.DataDir,
		WebDir:     opts.WebDir,
		ConfigFile: opts.Config,
		DBDriver:   opts.DBDriver,
		PageSize:   opts.PageSize,
	}, log)
}

// mustServer builds a quiet server for the offline subcommands.
func mustServer(opts *Options) *server.Server {
	srv, err := newServer(opts, logger.Nop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return srv
}

// serve runs the server until it is shut down. The server is closed on
// every return path.
func serve(opts *Options, log *logger.Logger, running *atomic.Pointer[server.Server]) error {
	srv, err := newServer(opts, log)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer srv.Close()
	running.Store(srv)

	displayHost := opts.Host
	if displayHost == "0.0.0.0" {
		displayHost = "localhost"
	}
	baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)
	log.Infow("plat-irrigation server starting",
		"url", baseURL,
		"dashboard", baseURL+"/dashboard",
		"docs", baseURL+"/docs",
		"data", opts.DataDir,
	)
	return srv.Run()
}

func main() {
	var failed atomic.Bool
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		log := logger.New(opts.LogLevel)
		var running atomic.Pointer[server.Server]

		hooks.OnStart(func() {
			if err := serve(opts, log, &running); err != nil {
				log.Errorw("server error", "err", err)
				failed.Store(true)
			}
		})

		hooks.OnStop(func() {
			srv := running.Load()
			if srv == nil {
				return
			}
			log.Infow("shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Errorw("server forced to shutdown", "err", err)
			}
		})
	})

	cli.Root().Use = "irrigation"
	cli.Root().Short = "Canal readings and irrigation layer dashboard"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv := mustServer(opts)
			defer srv.Close()
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// readings subcommand: print one page of the table
	readingsCmd := &cobra.Command{
		Use:   "readings",
		Short: "Print one page of the readings table",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv := mustServer(opts)
			defer srv.Close()

			page, _ := cmd.Flags().GetInt("page")
			dashboards := srv.Services().Dashboards
			p := pager.RenderPage(dashboards.Dataset(), page, dashboards.PageSize())
			if err := printPage(os.Stdout, p); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}),
	}
	readingsCmd.Flags().Int("page", 1, "Page to print; out-of-range pages are clamped")
	cli.Root().AddCommand(readingsCmd)

	cli.Run()
	if failed.Load() {
		os.Exit(1)
	}
}

// printPage writes p as an aligned table followed by the page status.
func printPage(w io.Writer, p pager.Page) error {
	if p.Empty() {
		fmt.Fprintln(w, "No readings")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(p.Header, "\t"))
		for _, row := range p.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Page %d of %d\n", p.Number, p.TotalPages)
	return err
}
