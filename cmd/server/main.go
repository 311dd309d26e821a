// Package main provides the tidewatch HTTP server.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"go.ngs.io/tidewatch/internal/adapter/store/catalog"
	httpHandler "go.ngs.io/tidewatch/internal/http"
	"go.ngs.io/tidewatch/internal/metrics"
	"go.ngs.io/tidewatch/internal/usecase"
)

const version = "0.1.0"

// Config is read from the environment.
type Config struct {
	Port               string `default:"8080"`
	DataDir            string `split_words:"true"`
	NetCDFDir          string `envconfig:"NETCDF_DIR"`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS"`
	GinMode            string `split_words:"true" default:"release"`
}

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("tidewatch-server version %s\n", version)
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Load configuration from environment.
	var env Config
	if err := envconfig.Process("", &env); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	gin.SetMode(env.GinMode)

	logger.Info("starting tidewatch server",
		zap.String("version", version),
		zap.String("port", env.Port),
		zap.String("data_dir", orEmbedded(env.DataDir)),
		zap.String("netcdf_dir", env.NetCDFDir),
	)

	// Load dataset.
	cat, err := catalog.Open(catalog.Config{DataDir: env.DataDir, NetCDFDir: env.NetCDFDir})
	if err != nil {
		logger.Fatal("failed to load dataset", zap.Error(err))
	}
	logger.Info("dataset loaded", zap.Int("stations", cat.Registry.Len()))

	// Initialize use case.
	tides := usecase.NewTideService(cat.Registry, cat.Fixtures, metrics.Recorder{})

	// Setup router.
	var origins []string
	if env.CORSAllowedOrigins != "" {
		origins = strings.Split(env.CORSAllowedOrigins, ",")
	}
	router := httpHandler.SetupRouter(tides, logger, origins)

	// Start server.
	addr := fmt.Sprintf(":%s", env.Port)
	logger.Info("server listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

func orEmbedded(dir string) string {
	if dir == "" {
		return "(embedded)"
	}
	return dir
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Tidewatch Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  tidewatch-server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  DATA_DIR                Directory with stations.json and fixtures/ (default: embedded dataset)")
	fmt.Println("  NETCDF_DIR              Directory of extra *.nc station files (optional)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  GIN_MODE                Gin mode: release, debug or test (default: release)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                       Health check")
	fmt.Println("  GET /metrics                      Prometheus metrics")
	fmt.Println("  GET /v1/stations                  List stations")
	fmt.Println("  GET /v1/stations/nearest          Nearest station to lat/lon")
	fmt.Println("  GET /v1/stations/:name            Station constituents")
	fmt.Println("  GET /v1/tides/table               Tide table (station, time, tz, days, year)")
	fmt.Println("  GET /v1/tides/verify              Check a station against its fixtures")
	fmt.Println()
}
