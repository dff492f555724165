package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the process metrics behind the /metrics endpoint. It
// carries its own registry so tests can build collectors independently.
type Collector struct {
	reg *prometheus.Registry

	FeedRefreshes   prometheus.Counter
	FeedRefreshErrs prometheus.Counter
	LiveTrips       prometheus.Gauge
	SnapshotAge     prometheus.Gauge

	ClampedUpdates prometheus.Counter

	HTTPRequests *prometheus.CounterVec // route, status labels

	FeedFetchDuration prometheus.Histogram
	RequestDuration   prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		FeedRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jzm_feed_refreshes_total",
			Help: "Total realtime feed refresh attempts that produced a snapshot.",
		}),
		FeedRefreshErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jzm_feed_refresh_errors_total",
			Help: "Total realtime feed refreshes where every feed failed.",
		}),
		LiveTrips: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jzm_live_trips",
			Help: "Trips covered by the current realtime snapshot.",
		}),
		SnapshotAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jzm_snapshot_age_seconds",
			Help: "Age of the current realtime snapshot at last refresh.",
		}),
		ClampedUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jzm_clamped_updates_total",
			Help: "Live predictions pulled forward to keep stop ordering.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jzm_http_requests_total",
			Help: "API requests served.",
		}, []string{"route", "status"}),
		FeedFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jzm_feed_fetch_duration_seconds",
			Help:    "Duration of realtime feed refreshes.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jzm_request_duration_seconds",
			Help:    "Duration of API request handling.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
	}

	reg.MustRegister(
		c.FeedRefreshes, c.FeedRefreshErrs, c.LiveTrips, c.SnapshotAge,
		c.ClampedUpdates, c.HTTPRequests,
		c.FeedFetchDuration, c.RequestDuration,
	)

	return c
}

// ObserveRefresh records the outcome of one realtime refresh cycle.
func (c *Collector) ObserveRefresh(trips int, age time.Duration, took time.Duration, err error) {
	if err != nil {
		c.FeedRefreshErrs.Inc()
		return
	}
	c.FeedRefreshes.Inc()
	c.LiveTrips.Set(float64(trips))
	c.SnapshotAge.Set(age.Seconds())
	c.FeedFetchDuration.Observe(took.Seconds())
}

// ObserveRequest records one served API request.
func (c *Collector) ObserveRequest(route string, status int, took time.Duration) {
	c.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.RequestDuration.Observe(took.Seconds())
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }
