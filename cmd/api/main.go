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
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jzmtracker.nyc/internal/app"
	"jzmtracker.nyc/internal/logging"
	"jzmtracker.nyc/internal/metrics"
	"jzmtracker.nyc/internal/realtime"
	"jzmtracker.nyc/internal/restapi"
	"jzmtracker.nyc/internal/transit"
	"jzmtracker.nyc/internal/walking"
)

const defaultStaticGTFS = "http://web.mta.info/developers/data/nyct/subway/google_transit.zip"

// envDefault lets a .env file or the environment override a flag default.
func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Load .env into the environment; missing files are fine.
	_ = godotenv.Load()

	var cfg app.Config
	var feedURLsFlag string

	flag.IntVar(&cfg.Port, "port", 4000, "API server port")
	flag.StringVar(&cfg.Env, "env", envDefault("ENV", "development"), "Environment (development|staging|production)")
	flag.StringVar(&cfg.StaticGTFSSource, "gtfs-url", envDefault("GTFS_URL", defaultStaticGTFS), "URL or path for the static GTFS zip file")
	flag.StringVar(&feedURLsFlag, "feed-urls", envDefault("FEED_URLS", strings.Join(realtime.DefaultFeedURLs, ",")), "Comma separated GTFS-RT trip update feed URLs (empty disables realtime)")
	flag.DurationVar(&cfg.RefreshInterval, "refresh-interval", 30*time.Second, "How often to refresh the realtime feeds")
	flag.DurationVar(&cfg.FetchTimeout, "fetch-timeout", 15*time.Second, "Timeout for a single feed fetch")
	flag.DurationVar(&cfg.StalenessThreshold, "staleness-threshold", 120*time.Second, "Maximum age of a live prediction before falling back to the schedule")
	flag.DurationVar(&cfg.Lookahead, "lookahead", 60*time.Minute, "How far ahead arrivals and recommendations look")
	flag.StringVar(&cfg.WalkRouterURL, "walk-router-url", envDefault("WALK_ROUTER_URL", walking.DefaultRouterURL), "OSRM-compatible router for foot routing")
	flag.Parse()

	if feedURLsFlag != "" {
		for _, url := range strings.Split(feedURLsFlag, ",") {
			if url = strings.TrimSpace(url); url != "" {
				cfg.FeedURLs = append(cfg.FeedURLs, url)
			}
		}
	}

	logger := logging.NewStructuredLogger(os.Stdout, slog.LevelInfo)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	collector := metrics.NewCollector()

	manager, err := transit.InitManager(cfg.TransitConfig(), logger, collector)
	if err != nil {
		logger.Error("failed to initialize transit manager", "error", err)
		os.Exit(1)
	}
	defer manager.Shutdown()

	application := &app.Application{
		Config:  cfg,
		Logger:  logger,
		Manager: manager,
		Walking: walking.NewEstimator(cfg.WalkRouterURL, logger),
		Metrics: collector,
	}

	api := restapi.NewRestAPI(application)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownErr := make(chan error)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		logger.Info("shutting down server", "signal", s.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(ctx)
	}()

	logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env)
	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		logger.Error(err.Error())
		os.Exit(1)
	}

	if err := <-shutdownErr; err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
