package restapi

import (
	"net/http"
	"time"

	"jzmtracker.nyc/internal/models"
)

// positionsHandler returns the interpolated position of every active train
// for map rendering.
func (api *RestAPI) positionsHandler(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	payload := models.PositionList{
		Positions: api.Manager.GetPositions(now),
		Live:      api.Manager.Snapshot() != nil,
		AsOf:      now,
	}
	api.sendResponse(w, r, models.NewOKResponse(payload))
}
