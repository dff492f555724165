package app

import (
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"jzmtracker.nyc/internal/metrics"
	"jzmtracker.nyc/internal/transit"
	"jzmtracker.nyc/internal/walking"
)

// Application holds the dependencies for our HTTP handlers, helpers, and
// middleware.
type Application struct {
	Config  Config
	Logger  *slog.Logger
	Manager *transit.Manager
	Walking *walking.Estimator
	Metrics *metrics.Collector
}

// Config holds all the configuration settings for the Application, read
// from command-line flags (with .env defaults) at startup.
type Config struct {
	Port int    `validate:"required,min=1,max=65535"`
	Env  string `validate:"required,oneof=development staging production"`

	StaticGTFSSource string   `validate:"required"`
	FeedURLs         []string `validate:"dive,url"`

	RefreshInterval    time.Duration `validate:"min=0"`
	FetchTimeout       time.Duration `validate:"min=0"`
	StalenessThreshold time.Duration `validate:"min=0"`
	Lookahead          time.Duration `validate:"min=0"`

	WalkRouterURL string `validate:"omitempty,url"`
}

// Validate checks the configuration before anything gets wired up.
func (c Config) Validate() error {
	return validator.New().Struct(c)
}

// TransitConfig maps the application settings onto the transit manager.
func (c Config) TransitConfig() transit.Config {
	cfg := transit.Config{
		StaticGTFSSource: c.StaticGTFSSource,
		FeedURLs:         c.FeedURLs,
		RefreshInterval:  c.RefreshInterval,
		FetchTimeout:     c.FetchTimeout,
	}
	cfg.Tracker.StalenessThreshold = c.StalenessThreshold
	cfg.Tracker.Lookahead = c.Lookahead
	return cfg
}
