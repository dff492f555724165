package restapi

import (
	"errors"
	"net/http"
	"time"

	"jzmtracker.nyc/internal/models"
	"jzmtracker.nyc/internal/schedule"
	"jzmtracker.nyc/internal/utils"
)

// arrivalsHandler returns the upcoming arrivals board for one platform.
func (api *RestAPI) arrivalsHandler(w http.ResponseWriter, r *http.Request) {
	stopID := utils.ParamFromRequest(r, "stopID")
	if err := utils.ValidateID(stopID); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"stopID": {err.Error()}})
		return
	}
	direction := r.URL.Query().Get("direction")

	stop, err := api.Manager.Index().StopByID(stopID)
	if err != nil {
		var notFound *schedule.NotFoundError
		if errors.As(err, &notFound) {
			api.sendNotFound(w, r, notFound.Error())
			return
		}
		api.serverErrorResponse(w, r, err)
		return
	}

	payload := models.ArrivalList{
		Stop:     models.NewStop(stop),
		Arrivals: api.Manager.GetArrivals(stopID, direction, time.Now()),
	}
	api.sendResponse(w, r, models.NewOKResponse(payload))
}
