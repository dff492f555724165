package restapi

import (
	"errors"
	"net/http"

	"jzmtracker.nyc/internal/models"
	"jzmtracker.nyc/internal/schedule"
	"jzmtracker.nyc/internal/utils"
)

// stopsHandler lists tracked platforms. Optional query parameters narrow
// the list to one route (in travel order) and direction.
func (api *RestAPI) stopsHandler(w http.ResponseWriter, r *http.Request) {
	routeID := r.URL.Query().Get("route")
	direction := r.URL.Query().Get("direction")

	if routeID == "" {
		stops := api.Manager.Index().Stops()
		api.sendResponse(w, r, models.NewOKResponse(models.NewStops(stops)))
		return
	}

	if err := utils.ValidateID(routeID); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"route": {err.Error()}})
		return
	}

	stops, err := api.Manager.Index().StopsForRoute(routeID, direction)
	if err != nil {
		var notFound *schedule.NotFoundError
		if errors.As(err, &notFound) {
			api.sendNotFound(w, r, notFound.Error())
			return
		}
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewOKResponse(models.NewStops(stops)))
}
