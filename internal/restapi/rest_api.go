package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"jzmtracker.nyc/internal/app"
)

type RestAPI struct {
	*app.Application
}

// NewRestAPI creates a new RestAPI instance over the application wiring.
func NewRestAPI(application *app.Application) *RestAPI {
	return &RestAPI{Application: application}
}

// Routes builds the router with the shared middleware chain applied.
func (api *RestAPI) Routes() http.Handler {
	router := httprouter.New()

	router.Handler(http.MethodGet, "/api/stops", http.HandlerFunc(api.stopsHandler))
	router.Handler(http.MethodGet, "/api/positions", http.HandlerFunc(api.positionsHandler))
	router.Handler(http.MethodGet, "/api/arrivals/:stopID", http.HandlerFunc(api.arrivalsHandler))
	router.Handler(http.MethodGet, "/api/recommendation", http.HandlerFunc(api.recommendationHandler))
	router.Handler(http.MethodGet, "/api/routes", http.HandlerFunc(api.routesHandler))
	router.Handler(http.MethodGet, "/api/routes/:routeID/shape", http.HandlerFunc(api.shapeHandler))
	router.Handler(http.MethodGet, "/health", http.HandlerFunc(api.healthHandler))

	if api.Metrics != nil {
		router.Handler(http.MethodGet, "/metrics", api.Metrics.Handler())
	}

	handler := NewCORSMiddleware()(router)
	return NewRequestLoggingMiddleware(api.Logger, api.Metrics)(handler)
}
