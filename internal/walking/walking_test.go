package walking

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jzmtracker.nyc/internal/logging"
)

func testLogger() *slog.Logger {
	return logging.NewStructuredLogger(io.Discard, slog.LevelError)
}

func TestWalkingTimeCachesRouterResults(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Contains(t, r.URL.Path, "/route/v1/foot/")
		_, _ = w.Write([]byte(`{"routes":[{"duration":372.5,"distance":490.2}]}`))
	}))
	defer srv.Close()

	e := NewEstimator(srv.URL, testLogger())

	result, err := e.WalkingTime(context.Background(), 40.7000, -73.9400, 40.697207, -73.935657)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(372.5*float64(time.Second)), result.Duration)
	assert.InDelta(t, 490.2, result.Distance, 1e-9)
	assert.False(t, result.Estimated)

	// Same origin again, and one a few meters away: both served from cache.
	_, err = e.WalkingTime(context.Background(), 40.7000, -73.9400, 40.697207, -73.935657)
	require.NoError(t, err)
	_, err = e.WalkingTime(context.Background(), 40.70002, -73.94003, 40.697207, -73.935657)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestWalkingTimeRouterErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "no routes",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"routes":[]}`))
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			e := NewEstimator(srv.URL, testLogger())
			_, err := e.WalkingTime(context.Background(), 40.70, -73.94, 40.697, -73.935)
			assert.Error(t, err)
		})
	}
}

func TestWalkingTimeOrEstimateFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	e := NewEstimator(srv.URL, testLogger())
	result := e.WalkingTimeOrEstimate(context.Background(), 40.70026, -73.941126, 40.697207, -73.935657)

	assert.True(t, result.Estimated)
	assert.Greater(t, result.Distance, 400.0)
	assert.Less(t, result.Distance, 800.0)
	assert.Greater(t, result.Duration, 3*time.Minute)
}
