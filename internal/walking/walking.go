package walking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/bluele/gcache"

	"jzmtracker.nyc/internal/logging"
	"jzmtracker.nyc/internal/utils"
)

// DefaultRouterURL is the public OSRM demo router.
const DefaultRouterURL = "https://router.project-osrm.org"

// Result is a foot-routing answer from OSRM.
type Result struct {
	Duration time.Duration `json:"seconds"`
	Distance float64       `json:"meters"`

	// Estimated is true when OSRM was unreachable and the duration is a
	// straight-line fallback.
	Estimated bool `json:"estimated,omitempty"`
}

// Estimator answers "how long is the walk from here to that platform",
// caching results since rider origins cluster heavily. Walking times do
// not change, so entries live for a day under LRU eviction.
type Estimator struct {
	routerURL string
	client    *http.Client
	cache     gcache.Cache
	logger    *slog.Logger
}

// NewEstimator builds an estimator against an OSRM-compatible router.
func NewEstimator(routerURL string, logger *slog.Logger) *Estimator {
	if routerURL == "" {
		routerURL = DefaultRouterURL
	}
	return &Estimator{
		routerURL: routerURL,
		client:    &http.Client{Timeout: 12 * time.Second},
		cache:     gcache.New(10000).LRU().Expiration(24 * time.Hour).Build(),
		logger:    logger,
	}
}

// quantize rounds a coordinate to about 11 meters so nearby origins share
// a cache entry.
func quantize(coord float64) float64 {
	return math.Round(coord*10000) / 10000
}

func cacheKey(fromLat, fromLon, toLat, toLon float64) string {
	// Rider origins are quantized; platform coordinates stay precise.
	return fmt.Sprintf("%.4f,%.4f,%.6f,%.6f", quantize(fromLat), quantize(fromLon), toLat, toLon)
}

// WalkingTime returns the foot-routing duration from an origin to a
// platform, consulting the cache first.
func (e *Estimator) WalkingTime(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (Result, error) {
	key := cacheKey(fromLat, fromLon, toLat, toLon)
	if cached, err := e.cache.Get(key); err == nil {
		if result, ok := cached.(Result); ok {
			return result, nil
		}
	}

	result, err := e.route(ctx, fromLat, fromLon, toLat, toLon)
	if err != nil {
		return Result{}, err
	}

	_ = e.cache.Set(key, result)
	return result, nil
}

// Straight-line pace used when the router is unreachable.
const fallbackPaceMetersPerSecond = 1.3

// WalkingTimeOrEstimate is WalkingTime with a straight-line fallback at a
// typical walking pace, so advice keeps flowing when OSRM is down.
func (e *Estimator) WalkingTimeOrEstimate(ctx context.Context, fromLat, fromLon, toLat, toLon float64) Result {
	result, err := e.WalkingTime(ctx, fromLat, fromLon, toLat, toLon)
	if err == nil {
		return result
	}

	logging.LogError(e.logger, "foot routing failed, estimating", err,
		slog.String("component", "walking"))

	meters := utils.Haversine(fromLat, fromLon, toLat, toLon)
	return Result{
		Duration:  time.Duration(meters / fallbackPaceMetersPerSecond * float64(time.Second)),
		Distance:  meters,
		Estimated: true,
	}
}

func (e *Estimator) route(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (Result, error) {
	url := fmt.Sprintf("%s/route/v1/foot/%f,%f;%f,%f?overview=false",
		e.routerURL, fromLon, fromLat, toLon, toLat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("error calling foot router: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, e.logger, "osrm response body")

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("foot router returned HTTP %d", resp.StatusCode)
	}

	var obj struct {
		Routes []struct {
			Duration float64 `json:"duration"`
			Distance float64 `json:"distance"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return Result{}, fmt.Errorf("error decoding foot router response: %w", err)
	}
	if len(obj.Routes) == 0 {
		return Result{}, errors.New("foot router found no route")
	}

	return Result{
		Duration: time.Duration(obj.Routes[0].Duration * float64(time.Second)),
		Distance: obj.Routes[0].Distance,
	}, nil
}
