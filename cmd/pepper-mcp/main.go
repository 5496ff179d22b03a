package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ironsheep/pepper-quality-mcp/internal/config"
	"github.com/ironsheep/pepper-quality-mcp/internal/detection"
	"github.com/ironsheep/pepper-quality-mcp/internal/logger"
	"github.com/ironsheep/pepper-quality-mcp/internal/metrics"
	"github.com/ironsheep/pepper-quality-mcp/internal/pipeline"
	"github.com/ironsheep/pepper-quality-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const envLogLevel = "PEPPER_MCP_LOG_LEVEL"

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("pepper-quality-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	// Logging goes to stderr (stdout is for MCP protocol)
	level, err := logger.ParseLevel(os.Getenv(envLogLevel))
	logger.Init(level, os.Stderr)
	if err != nil {
		logger.Warn("main", "%s: %v, using %s", envLogLevel, err, level)
	}
	logger.Info("main", "Pepper MCP Server %s (built %s, commit %s)", Version, BuildTime, GitCommit)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("main", "configuration: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pc, err := newPipeline(ctx, cfg)
	if err != nil {
		logger.Error("main", "pipeline: %v", err)
		os.Exit(1)
	}

	server.Version = Version
	if err := server.New(pc).Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("main", "server error: %v", err)
		os.Exit(1)
	}
}

// newPipeline wires the model adapters and the metrics observer.
func newPipeline(ctx context.Context, cfg *config.Config) (*pipeline.PipelineContext, error) {
	detector := detection.NewHTTPDetector(cfg.DetectorURL, cfg.Timeout())
	checkHealth(ctx, "detector", detector.HTTPModel)

	opts := []pipeline.Option{
		pipeline.WithConfig(cfg),
		pipeline.WithDetector(detector),
	}
	if cfg.GeneralDetectorURL != "" {
		general := detection.NewHTTPDetector(cfg.GeneralDetectorURL, cfg.Timeout())
		checkHealth(ctx, "general detector", general.HTTPModel)
		opts = append(opts, pipeline.WithGeneralDetector(general))
	}
	if cfg.ClassifierURL != "" {
		classifier := detection.NewHTTPClassifier(cfg.ClassifierURL, cfg.Timeout())
		checkHealth(ctx, "classifier", classifier.HTTPModel)
		opts = append(opts, pipeline.WithClassifier(classifier))
	}

	if cfg.MetricsAddr != "" {
		m := metrics.New()
		go func() {
			logger.Info("main", "serving metrics on %s/metrics", cfg.MetricsAddr)
			if err := m.StartServer(cfg.MetricsAddr); err != nil {
				logger.Error("main", "metrics listener: %v", err)
			}
		}()
		opts = append(opts, pipeline.WithObserver(m))
	}
	return pipeline.NewContext(opts...)
}

// checkHealth warns when a model service is not reachable yet; the server
// still starts and the tools report the failure per call.
func checkHealth(ctx context.Context, name string, m *detection.HTTPModel) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := m.CheckHealth(ctx); err != nil {
		logger.Warn("main", "%s at %s is not healthy: %v", name, m.URL(), err)
		return
	}
	logger.Debug("main", "%s at %s is healthy", name, m.URL())
}

func printHelp() {
	fmt.Println("pepper-quality-mcp - MCP server for bell pepper quality analysis")
	fmt.Println()
	fmt.Println("Usage: pepper-quality-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	for _, v := range [][2]string{
		{envLogLevel + "=debug", "Log level (debug, info, warn, error, silent)"},
		{config.EnvDetectorURL + "=URL", "Pepper detector endpoint"},
		{config.EnvGeneralDetectorURL + "=URL", "General object detector (forbidden zones)"},
		{config.EnvClassifierURL + "=URL", "Image classifier cross-check"},
		{config.EnvConfig + "=FILE", "JSON file overriding the default thresholds"},
		{config.EnvMetricsAddr + "=HOST:PORT", "Serve Prometheus metrics"},
		{config.EnvWorkers + "=N", "Peppers processed in parallel per photo"},
		{config.EnvHTTPTimeout + "=30s", "Model request timeout"},
	} {
		fmt.Printf("  %-38s %s\n", v[0], v[1])
	}
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
