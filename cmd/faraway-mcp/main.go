package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ironsheep/faraway-scorer/internal/attributes"
	"github.com/ironsheep/faraway-scorer/internal/config"
	"github.com/ironsheep/faraway-scorer/internal/detection"
	"github.com/ironsheep/faraway-scorer/internal/imaging"
	"github.com/ironsheep/faraway-scorer/internal/inference"
	"github.com/ironsheep/faraway-scorer/internal/onnx"
	"github.com/ironsheep/faraway-scorer/internal/pipeline"
	"github.com/ironsheep/faraway-scorer/internal/scoresheet"
	"github.com/ironsheep/faraway-scorer/internal/scoring"
	"github.com/ironsheep/faraway-scorer/internal/server"
	"github.com/ironsheep/faraway-scorer/internal/taxonomy"
	"github.com/ironsheep/faraway-scorer/pkg/logger"
	"github.com/ironsheep/faraway-scorer/pkg/metrics"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	mode := "serve"
	var arg string
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("faraway-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		case "analyze", "score":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "%s needs a file argument\n\n", os.Args[1])
				usage()
				os.Exit(2)
			}
			mode, arg = os.Args[1], os.Args[2]
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, mode, arg); err != nil {
		fmt.Fprintf(os.Stderr, "faraway-mcp: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("faraway-mcp - MCP server that scores photographed Faraway layouts")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  faraway-mcp                 Serve MCP over stdin/stdout")
	fmt.Println("  faraway-mcp analyze PHOTO   Analyze one photo and print the result")
	fmt.Println("  faraway-mcp score LAYOUT    Score a JSON layout {\"cards\": [...], \"temples\": [...]}")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  FARAWAY_CONFIG=path.yaml               YAML configuration file")
	fmt.Println("  FARAWAY_LOG_LEVEL=debug                Log level")
	fmt.Println("  FARAWAY_SCENE_MODEL__PATH=scene.onnx   Scene model (also CARD_MODEL, TEMPLE_MODEL)")
	fmt.Println("  FARAWAY_ONNX_LIBRARY=libonnxruntime.so onnxruntime shared library")
	fmt.Println("  FARAWAY_METRICS_ADDR=127.0.0.1:9464    Serve Prometheus metrics")
}

func run(ctx context.Context, mode, arg string) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	// stdout is the MCP channel
	if err := logger.Init(os.Stderr); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Get()
	log.Debug(ctx, "starting",
		logger.String("version", Version),
		logger.String("build_time", BuildTime),
		logger.String("commit", GitCommit))

	if mode == "score" {
		return scoreFile(arg)
	}

	taxonomies := taxonomy.Default()
	if cfg.TaxonomyFile != "" {
		if taxonomies, err = taxonomy.LoadFile(cfg.TaxonomyFile); err != nil {
			return err
		}
	}

	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(ctx, cfg.MetricsAddr, log)
		defer shutdown()
	}

	rt := onnx.NewRuntime(cfg.ONNXLibrary, log.Named("onnx"))
	defer func() {
		if err := rt.Close(); err != nil {
			log.Warn(ctx, "onnxruntime shutdown", logger.Error(err))
		}
	}()

	registry := detection.NewRegistry(rt,
		detection.WithLogger(log.Named("registry")),
		detection.WithMetrics(metrics.Default()))
	defer func() {
		if err := registry.Close(); err != nil {
			log.Warn(ctx, "closing models", logger.Error(err))
		}
	}()
	// A model that fails to load stays unregistered; analyses report it.
	if err := pipeline.LoadModels(ctx, registry, cfg.ModelSpecs()...); err != nil {
		log.Error(ctx, "model load failed", logger.Error(err))
	}

	decoder := detection.NewDecoder(detection.WithPool(detection.NewPool[float64](cfg.PoolBuffers)))
	service := inference.New(registry,
		inference.WithDecoder(decoder),
		inference.WithLogger(log.Named("inference")),
		inference.WithMetrics(metrics.Default()))

	analyzer := pipeline.New(service,
		pipeline.WithTaxonomies(taxonomies),
		pipeline.WithThresholds(cfg.SceneThreshold, cfg.AnalysisThreshold),
		pipeline.WithColorFallback(cfg.ColorFallback, imaging.DefaultPalette),
		pipeline.WithLogger(log.Named("pipeline")),
		pipeline.WithMetrics(metrics.Default()))

	if mode == "analyze" {
		img, err := imaging.NewImageCache().Load(arg)
		if err != nil {
			return err
		}
		an, err := analyzer.Analyze(ctx, img)
		if err != nil {
			return err
		}
		return printJSON(an)
	}

	var store scoresheet.Store = scoresheet.NewMemoryStore()
	if cfg.ScoresheetFile != "" {
		if store, err = scoresheet.OpenFileStore(cfg.ScoresheetFile); err != nil {
			return err
		}
	}

	srv := server.New(
		server.WithAnalyzer(analyzer),
		server.WithDetector(service),
		server.WithStore(store),
		server.WithCropDir(cfg.CropDir),
		server.WithLogger(log.Named("server")))
	log.Info(ctx, "serving MCP on stdio", logger.Any("models", registry.Names()))
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// scoreFile scores a layout file without loading any model.
func scoreFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var layout attributes.Layout
	if err := json.Unmarshal(data, &layout); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	res := scoring.Calculate(layout.Cards, layout.Temples)
	for _, line := range res.Details {
		fmt.Println(line)
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// serveMetrics starts the /metrics listener and returns its shutdown func.
func serveMetrics(ctx context.Context, addr string, log logger.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info(ctx, "metrics listening", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics listener", logger.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
