package restapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"jzmtracker.nyc/internal/models"
	"jzmtracker.nyc/internal/schedule"
	"jzmtracker.nyc/internal/tracker"
	"jzmtracker.nyc/internal/utils"
	"jzmtracker.nyc/internal/walking"
)

const defaultBuffer = 2 * time.Minute

// recommendationHandler computes the leave-now advice for a platform.
//
// Query parameters: stop (required), direction, buffer, and either walk
// (a duration such as "6m") or lat/lon, in which case the walk time is
// foot-routed from that origin to the platform.
func (api *RestAPI) recommendationHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	fieldErrors := make(map[string][]string)

	stopID := query.Get("stop")
	if err := utils.ValidateID(stopID); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"stop": {err.Error()}})
		return
	}
	direction := query.Get("direction")

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

	buffer := defaultBuffer
	if raw := query.Get("buffer"); raw != "" {
		parsed, err := utils.ValidateDuration(raw)
		if err != nil {
			fieldErrors["buffer"] = []string{err.Error()}
		} else {
			buffer = parsed
		}
	}

	var walk time.Duration
	var walkResult *walking.Result
	switch {
	case query.Get("walk") != "":
		parsed, err := utils.ValidateDuration(query.Get("walk"))
		if err != nil {
			fieldErrors["walk"] = []string{err.Error()}
		} else {
			walk = parsed
		}
	case query.Get("lat") != "" || query.Get("lon") != "":
		lat, lon, errs := parseOrigin(query.Get("lat"), query.Get("lon"))
		if len(errs) > 0 {
			for field, msg := range errs {
				fieldErrors[field] = []string{msg}
			}
			break
		}
		result := api.Walking.WalkingTimeOrEstimate(r.Context(), lat, lon, stop.Lat, stop.Lon)
		walk = result.Duration
		walkResult = &result
	default:
		fieldErrors["walk"] = []string{"walk duration or an origin lat/lon is required"}
	}

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	rec, err := api.Manager.GetRecommendation(stopID, direction, walk, buffer, time.Now())
	if err != nil {
		var noTrip *tracker.NoUpcomingTripError
		var notFound *schedule.NotFoundError
		switch {
		case errors.As(err, &noTrip):
			// An explicit empty state, not a failure.
			response := models.NewOKResponse(models.NoTrains{
				StopID:    stopID,
				Direction: direction,
				Reason:    noTrip.Error(),
			})
			response.Text = "no upcoming trains"
			api.sendResponse(w, r, response)
		case errors.As(err, &notFound):
			api.sendNotFound(w, r, notFound.Error())
		default:
			api.serverErrorResponse(w, r, err)
		}
		return
	}

	payload := models.RecommendationResponse{Recommendation: rec, Walk: walkResult}
	api.sendResponse(w, r, models.NewOKResponse(payload))
}

func parseOrigin(rawLat, rawLon string) (lat, lon float64, errs map[string]string) {
	errs = make(map[string]string)

	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		errs["lat"] = "invalid latitude"
	} else if err := utils.ValidateLatitude(lat); err != nil {
		errs["lat"] = err.Error()
	}

	lon, err = strconv.ParseFloat(rawLon, 64)
	if err != nil {
		errs["lon"] = "invalid longitude"
	} else if err := utils.ValidateLongitude(lon); err != nil {
		errs["lon"] = err.Error()
	}

	if len(errs) == 0 {
		return lat, lon, nil
	}
	return 0, 0, errs
}
