package transit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"jzmtracker.nyc/internal/logging"
	"jzmtracker.nyc/internal/metrics"
	"jzmtracker.nyc/internal/realtime"
	"jzmtracker.nyc/internal/schedule"
	"jzmtracker.nyc/internal/tracker"
)

// Config carries everything the manager needs to load schedule data and
// keep the realtime snapshot fresh.
type Config struct {
	// StaticGTFSSource is a URL or local path to the static GTFS zip.
	StaticGTFSSource string

	// FeedURLs are the GTFS-realtime trip update feeds. Empty disables
	// realtime refresh entirely (static-only operation).
	FeedURLs []string

	RefreshInterval time.Duration
	FetchTimeout    time.Duration

	Tracker tracker.Options
}

func (c Config) withDefaults() Config {
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 30 * time.Second
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	return c
}

func (c Config) realTimeDataEnabled() bool {
	return len(c.FeedURLs) > 0
}

// Manager owns the immutable schedule index, the latest realtime snapshot,
// and the background goroutine that refreshes it. The snapshot is replaced
// wholesale under the mutex; readers never see a half-applied feed fetch.
type Manager struct {
	index   *schedule.Index
	tracker *tracker.Tracker
	feeds   *realtime.FeedClient
	config  Config
	logger  *slog.Logger
	metrics *metrics.Collector

	snapshotMutex sync.RWMutex
	snapshot      *realtime.Snapshot

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// InitManager loads the static bundle, performs an initial realtime fetch,
// and starts the periodic refresh goroutine.
func InitManager(config Config, logger *slog.Logger, collector *metrics.Collector) (*Manager, error) {
	index, err := schedule.LoadIndex(config.StaticGTFSSource, schedule.TrackedRoutes)
	if err != nil {
		return nil, err
	}
	return initWithIndex(index, config, logger, collector), nil
}

// InitManagerWithIndex wires a manager over an already-built index. Used by
// tests and anywhere the static bundle is assembled in memory.
func InitManagerWithIndex(index *schedule.Index, config Config, logger *slog.Logger, collector *metrics.Collector) *Manager {
	return initWithIndex(index, config, logger, collector)
}

func initWithIndex(index *schedule.Index, config Config, logger *slog.Logger, collector *metrics.Collector) *Manager {
	config = config.withDefaults()

	manager := &Manager{
		index:        index,
		tracker:      tracker.New(index, config.Tracker, logger),
		config:       config,
		logger:       logger,
		metrics:      collector,
		shutdownChan: make(chan struct{}),
	}

	logging.LogOperation(logger, "schedule index built",
		slog.Int("routes", len(index.Routes())),
		slog.Int("stops", len(index.Stops())),
		slog.Int("skipped_records", index.SkippedRecords()),
		slog.String("component", "transit"))

	if config.realTimeDataEnabled() {
		manager.feeds = realtime.NewFeedClient(config.FeedURLs, schedule.TrackedRoutes, logger)

		ctx, cancel := context.WithTimeout(context.Background(), config.FetchTimeout)
		manager.refreshRealtime(ctx)
		cancel()

		manager.wg.Add(1)
		go manager.refreshPeriodically()
	}

	return manager
}

// Shutdown stops the refresh goroutine and waits for it to exit. Safe to
// call more than once.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.shutdownChan)
		m.wg.Wait()
	})
}

// Index exposes the immutable schedule index.
func (m *Manager) Index() *schedule.Index {
	return m.index
}

// Snapshot returns the latest realtime snapshot, or nil when none has been
// fetched yet.
func (m *Manager) Snapshot() *realtime.Snapshot {
	m.snapshotMutex.RLock()
	defer m.snapshotMutex.RUnlock()
	return m.snapshot
}

func (m *Manager) setSnapshot(s *realtime.Snapshot) {
	m.snapshotMutex.Lock()
	defer m.snapshotMutex.Unlock()
	m.snapshot = s
}

func (m *Manager) refreshRealtime(ctx context.Context) {
	start := time.Now()
	snapshot, err := m.feeds.FetchSnapshot(ctx)
	if err != nil {
		// Keep serving the last-known-good snapshot; the tracker falls
		// back to the static schedule once it goes stale.
		logging.LogError(m.logger, "realtime refresh failed", err,
			slog.String("component", "transit"))
		if m.metrics != nil {
			m.metrics.ObserveRefresh(0, 0, 0, err)
		}
		return
	}

	m.setSnapshot(snapshot)
	if m.metrics != nil {
		m.metrics.ObserveRefresh(snapshot.TripCount(), snapshot.Age(time.Now()), time.Since(start), nil)

		clamped := 0
		for _, tt := range m.tracker.Timetables(snapshot, time.Now()) {
			clamped += tt.Clamped
		}
		if clamped > 0 {
			m.metrics.ClampedUpdates.Add(float64(clamped))
		}
	}
}

func (m *Manager) refreshPeriodically() {
	defer m.wg.Done()

	logger := m.logger.With(slog.String("component", "realtime_updater"))
	ticker := time.NewTicker(m.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), m.config.FetchTimeout)
			ctx = logging.WithLogger(ctx, logger)
			m.refreshRealtime(ctx)
			cancel()
		case <-m.shutdownChan:
			return
		}
	}
}

// GetPositions interpolates the current map position of every active
// train.
func (m *Manager) GetPositions(now time.Time) []tracker.Position {
	return m.tracker.Positions(m.Snapshot(), now)
}

// GetRecommendation computes the leave-now advice for a platform.
func (m *Manager) GetRecommendation(stopID, direction string, walk, buffer time.Duration, now time.Time) (tracker.Recommendation, error) {
	return m.tracker.Recommend(m.Snapshot(), stopID, direction, walk, buffer, now)
}

// GetArrivals returns the upcoming arrivals board for a platform.
func (m *Manager) GetArrivals(stopID, direction string, now time.Time) []tracker.Arrival {
	return m.tracker.ArrivalsAt(m.Snapshot(), stopID, direction, now)
}
