// Command hurdat2 runs the full ETL pipeline: parse a HURDAT2 best-track
// file, annotate it, and load it into a SpatiaLite database.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"

	"github.com/couchcryptid/hurdat2-etl/internal/config"
	"github.com/couchcryptid/hurdat2-etl/internal/extract"
	"github.com/couchcryptid/hurdat2-etl/internal/load"
	"github.com/couchcryptid/hurdat2-etl/internal/observability"
	"github.com/couchcryptid/hurdat2-etl/internal/pipeline"
	"github.com/couchcryptid/hurdat2-etl/internal/transform"
)

type options struct {
	Input       string `short:"i" long:"input" env:"INPUT_PATH" description:"HURDAT2 best-track file to load"`
	Database    string `short:"d" long:"database" env:"DB_PATH" description:"target SQLite database path"`
	ConfigPath  string `short:"c" long:"config" env:"CONFIG_PATH" description:"YAML configuration file"`
	BatchSize   int    `long:"batch-size" description:"observations per insert batch"`
	MetricsAddr string `long:"metrics-addr" env:"METRICS_ADDR" description:"serve Prometheus metrics on this address"`
	NoProgress  bool   `long:"no-progress" description:"disable the progress bar"`
	Debug       bool   `long:"debug" description:"enable debug logging"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(&opts)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := metricsServer(cfg.MetricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown error", "error", err)
			}
		}()
		logger.Info("metrics server listening", "addr", cfg.MetricsAddr)
	}

	extractor := extract.NewExtractor(cfg, logger, metrics)
	annotator := transform.NewAnnotator(cfg.Bounds, logger, metrics)
	loader := load.NewLoader(cfg, logger, metrics, nil)

	if !opts.NoProgress {
		var bar *progressbar.ProgressBar
		loader.Progress = func(completed, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("loading storms"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionOnCompletion(func() { os.Stderr.WriteString("\n") }),
				)
			}
			bar.Set(completed) //nolint:errcheck
		}
	}

	p := pipeline.New(extractor, annotator, loader, logger, metrics)
	if err := p.Run(ctx); err != nil {
		logger.Error("pipeline failed", "error", err)
		return 1
	}
	logger.Info("database ready", "path", cfg.DBPath)
	return 0
}

// loadConfig layers: defaults, then YAML file, then environment (inside
// config.Load), then command-line flags.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Input != "" {
		cfg.InputPath = opts.Input
	}
	if opts.Database != "" {
		cfg.DBPath = opts.Database
	}
	if opts.BatchSize > 0 {
		cfg.BatchSize = opts.BatchSize
	}
	if opts.MetricsAddr != "" {
		cfg.MetricsAddr = opts.MetricsAddr
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
	}
	if cfg.InputPath == "" {
		return nil, errors.New("input path is required (use --input or INPUT_PATH)")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) //nolint:errcheck
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
