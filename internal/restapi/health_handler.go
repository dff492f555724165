package restapi

import (
	"net/http"
	"time"

	"jzmtracker.nyc/internal/models"
)

// healthHandler reports process liveness plus how fresh the realtime data
// is.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Status      string  `json:"status"`
		Env         string  `json:"env"`
		Live        bool    `json:"live"`
		LiveTrips   int     `json:"liveTrips"`
		SnapshotAge float64 `json:"snapshotAgeSeconds,omitempty"`
	}{
		Status: "UP",
		Env:    api.Config.Env,
	}

	if snapshot := api.Manager.Snapshot(); snapshot != nil {
		payload.Live = true
		payload.LiveTrips = snapshot.TripCount()
		payload.SnapshotAge = snapshot.Age(time.Now()).Seconds()
	}

	api.sendResponse(w, r, models.NewOKResponse(payload))
}
