// Package main provides the almanac API HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"go.ngs.io/almanac-api/internal/adapter/store"
	"go.ngs.io/almanac-api/internal/adapter/store/csv"
	"go.ngs.io/almanac-api/internal/adapter/timescale"
	"go.ngs.io/almanac-api/internal/config"
	"go.ngs.io/almanac-api/internal/domain"
	httpHandler "go.ngs.io/almanac-api/internal/http"
	"go.ngs.io/almanac-api/internal/logging"
	"go.ngs.io/almanac-api/internal/usecase"
)

const version = "0.1.0"

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
		fmt.Printf("almanac-api version %s\n", version)
		return
	}

	// Load configuration from file and environment.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New("almanac-api", cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting almanac API server",
		"version", version,
		"port", cfg.Server.Port,
		"data_dir", cfg.Data.Dir,
		"no_event_policy", cfg.Almanac.NoEventPolicy,
		"round_to_nearest_minute", cfg.Almanac.RoundToNearestMinute)

	riseFallback, err := config.ParseClock(cfg.Almanac.RiseFallback)
	if err != nil {
		return err
	}
	setFallback, err := config.ParseClock(cfg.Almanac.SetFallback)
	if err != nil {
		return err
	}

	// Initialize stores.
	var stations store.StationLoader = csv.NewStationStore(cfg.Data.Dir)
	if list, err := stations.ListStations(); err != nil {
		logger.Warn("station catalogue unavailable, station_id queries will fail", "error", err)
	} else {
		logger.Info("station catalogue loaded", "stations", len(list))
	}

	// Initialize use cases.
	ts := timescale.NewMeeus()
	solver := domain.NewSolver(ts, domain.SolverOptions{
		RoundToNearestMinute: cfg.Almanac.RoundToNearestMinute,
	})
	almanacUC := usecase.NewAlmanacUseCase(solver, stations, usecase.AlmanacOptions{
		NoEventPolicy: cfg.Almanac.NoEventPolicy,
		RiseFallback:  riseFallback,
		SetFallback:   setFallback,
		MaxRangeDays:  cfg.Almanac.MaxRangeDays,
		Workers:       cfg.Almanac.Workers,
	}, logger)
	moonUC := usecase.NewMoonPhaseUseCase(ts, cfg.Almanac.MaxRangeDays)

	// Setup router.
	gin.SetMode(cfg.Server.GinMode)
	router := httpHandler.SetupRouter(almanacUC, moonUC, httpHandler.RouterConfig{
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr,
			"health", fmt.Sprintf("http://localhost:%s/health", cfg.Server.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Almanac API Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  almanac-api [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("CONFIGURATION:")
	fmt.Println("  CONFIG_PATH                               YAML config file (default: configs/config.yaml if present)")
	fmt.Println("  ALMANAC_SERVER_PORT                       Server port (default: 8080)")
	fmt.Println("  ALMANAC_SERVER_CORS_ALLOWED_ORIGINS       Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  ALMANAC_DATA_DIR                          Directory holding stations.csv (default: ./data)")
	fmt.Println("  ALMANAC_ALMANAC_ROUND_TO_NEAREST_MINUTE   Round event times to the minute (default: false)")
	fmt.Println("  ALMANAC_ALMANAC_NO_EVENT_POLICY           fallback_time or classification (default: fallback_time)")
	fmt.Println("  ALMANAC_ALMANAC_RISE_FALLBACK             Clock time reported for a missing rise (default: 06:00)")
	fmt.Println("  ALMANAC_ALMANAC_SET_FALLBACK              Clock time reported for a missing set (default: 18:00)")
	fmt.Println("  ALMANAC_LOG_LEVEL                         debug, info, warn or error (default: info)")
	fmt.Println("  ALMANAC_LOG_ENCODING                      console or json (default: console)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with default settings")
	fmt.Println("  almanac-api")
	fmt.Println()
	fmt.Println("  # Start server on custom port")
	fmt.Println("  ALMANAC_SERVER_PORT=3000 almanac-api")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                    Health check")
	fmt.Println("  GET /v1/sun/events             Sunrise, sunset, twilight and transit times")
	fmt.Println("  GET /v1/moon/phases            Principal lunar phases")
	fmt.Println("  GET /v1/events                 List solar events")
	fmt.Println("  GET /v1/stations               List stations")
	fmt.Println()
}
