package restapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jzmtracker.nyc/internal/app"
	"jzmtracker.nyc/internal/logging"
	"jzmtracker.nyc/internal/metrics"
	"jzmtracker.nyc/internal/models"
	"jzmtracker.nyc/internal/schedule"
	"jzmtracker.nyc/internal/transit"
	"jzmtracker.nyc/internal/walking"
)

func newTestAPI(t *testing.T, osrmURL string) http.Handler {
	t.Helper()
	logger := logging.NewStructuredLogger(io.Discard, slog.LevelError)

	manager := transit.InitManagerWithIndex(schedule.NewMockIndex(), transit.Config{}, logger, nil)
	t.Cleanup(manager.Shutdown)

	api := NewRestAPI(&app.Application{
		Config:  app.Config{Port: 4000, Env: "development", StaticGTFSSource: "mock"},
		Logger:  logger,
		Manager: manager,
		Walking: walking.NewEstimator(osrmURL, logger),
		Metrics: metrics.NewCollector(),
	})
	return api.Routes()
}

func doRequest(t *testing.T, handler http.Handler, path string) (*httptest.ResponseRecorder, models.ResponseModel) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var envelope models.ResponseModel
	if rec.Code == http.StatusOK || rec.Code == http.StatusNotFound {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec, envelope
}

func TestStopsEndpoint(t *testing.T) {
	handler := newTestAPI(t, "")

	rec, envelope := doRequest(t, handler, "/api/stops")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 200, envelope.Code)
	assert.Equal(t, "OK", envelope.Text)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	stops, ok := envelope.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, stops, 6)
}

func TestStopsEndpointFiltersByRoute(t *testing.T) {
	handler := newTestAPI(t, "")

	rec, envelope := doRequest(t, handler, "/api/stops?route=M&direction=S")
	assert.Equal(t, http.StatusOK, rec.Code)
	stops, ok := envelope.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, stops, 3)

	first, ok := stops[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "M10S", first["id"])

	rec, envelope = doRequest(t, handler, "/api/stops?route=L")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 404, envelope.Code)
}

func TestRoutesEndpoint(t *testing.T) {
	handler := newTestAPI(t, "")

	rec, envelope := doRequest(t, handler, "/api/routes")
	assert.Equal(t, http.StatusOK, rec.Code)

	routes, ok := envelope.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, routes, 3)

	byID := make(map[string]map[string]interface{})
	for _, raw := range routes {
		route := raw.(map[string]interface{})
		byID[route["id"].(string)] = route
	}
	assert.Equal(t, "996633", byID["J"]["color"])
	assert.Equal(t, "2850AD", byID["M"]["color"])
	assert.NotEmpty(t, byID["M"]["polyline"])
}

func TestShapeEndpoint(t *testing.T) {
	handler := newTestAPI(t, "")

	rec, envelope := doRequest(t, handler, "/api/routes/M/shape")
	assert.Equal(t, http.StatusOK, rec.Code)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "M", data["routeId"])
	assert.NotEmpty(t, data["polyline"])
	assert.Len(t, data["points"], 3)

	rec, _ = doRequest(t, handler, "/api/routes/L/shape")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestArrivalsEndpoint(t *testing.T) {
	handler := newTestAPI(t, "")

	rec, envelope := doRequest(t, handler, "/api/arrivals/M11S")
	assert.Equal(t, http.StatusOK, rec.Code)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	stop, ok := data["stop"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Myrtle Av", stop["name"])

	rec, _ = doRequest(t, handler, "/api/arrivals/X99X")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPositionsEndpoint(t *testing.T) {
	handler := newTestAPI(t, "")

	rec, envelope := doRequest(t, handler, "/api/positions")
	assert.Equal(t, http.StatusOK, rec.Code)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, data["live"])
}

func TestRecommendationValidation(t *testing.T) {
	handler := newTestAPI(t, "")

	tests := []struct {
		name string
		path string
	}{
		{name: "missing stop", path: "/api/recommendation?walk=6m"},
		{name: "bad stop characters", path: "/api/recommendation?stop=a%20b&walk=6m"},
		{name: "missing walk and origin", path: "/api/recommendation?stop=M11S"},
		{name: "bad walk", path: "/api/recommendation?stop=M11S&walk=soon"},
		{name: "bad buffer", path: "/api/recommendation?stop=M11S&walk=6m&buffer=-2m"},
		{name: "bad origin", path: "/api/recommendation?stop=M11S&lat=91&lon=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "fieldErrors")
		})
	}
}

func TestRecommendationUnknownStop(t *testing.T) {
	handler := newTestAPI(t, "")

	rec, _ := doRequest(t, handler, "/api/recommendation?stop=X99X&walk=6m")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecommendationWithOriginUsesFootRouter(t *testing.T) {
	var osrmCalls int
	osrm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		osrmCalls++
		_, _ = w.Write([]byte(`{"routes":[{"duration":360,"distance":480}]}`))
	}))
	defer osrm.Close()

	handler := newTestAPI(t, osrm.URL)

	rec, envelope := doRequest(t, handler, "/api/recommendation?stop=M11S&lat=40.7005&lon=-73.9412")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 200, envelope.Code)
	assert.Equal(t, 1, osrmCalls)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	handler := newTestAPI(t, "")

	rec, envelope := doRequest(t, handler, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "UP", data["status"])

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jzm_http_requests_total")
}
