package restapi

import (
	"errors"
	"net/http"

	"github.com/twpayne/go-polyline"

	"jzmtracker.nyc/internal/models"
	"jzmtracker.nyc/internal/schedule"
	"jzmtracker.nyc/internal/utils"
)

func encodeShape(points [][2]float64) string {
	if len(points) == 0 {
		return ""
	}
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p[0], p[1]}
	}
	return string(polyline.EncodeCoords(coords))
}

// routesHandler lists the tracked routes with their colors and map
// geometry.
func (api *RestAPI) routesHandler(w http.ResponseWriter, r *http.Request) {
	index := api.Manager.Index()

	routes := index.Routes()
	payload := make([]models.Route, 0, len(routes))
	for _, route := range routes {
		payload = append(payload, models.NewRoute(route, encodeShape(index.ShapeForRoute(route.ID))))
	}
	api.sendResponse(w, r, models.NewOKResponse(payload))
}

// shapeHandler returns one route's geometry, both as raw coordinates and
// as an encoded polyline.
func (api *RestAPI) shapeHandler(w http.ResponseWriter, r *http.Request) {
	routeID := utils.ParamFromRequest(r, "routeID")
	if err := utils.ValidateID(routeID); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"routeID": {err.Error()}})
		return
	}

	index := api.Manager.Index()
	route, err := index.RouteByID(routeID)
	if err != nil {
		var notFound *schedule.NotFoundError
		if errors.As(err, &notFound) {
			api.sendNotFound(w, r, notFound.Error())
			return
		}
		api.serverErrorResponse(w, r, err)
		return
	}

	points := index.ShapeForRoute(route.ID)
	payload := struct {
		RouteID  string       `json:"routeId"`
		Color    string       `json:"color"`
		Polyline string       `json:"polyline"`
		Points   [][2]float64 `json:"points"`
	}{
		RouteID:  route.ID,
		Color:    route.Color,
		Polyline: encodeShape(points),
		Points:   points,
	}
	api.sendResponse(w, r, models.NewOKResponse(payload))
}
