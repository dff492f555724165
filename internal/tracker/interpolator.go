package tracker

import (
	"time"

	"jzmtracker.nyc/internal/realtime"
	"jzmtracker.nyc/internal/utils"
)

// Train movement states reported on the map.
const (
	StatusIdle      = "idle"
	StatusAtStop    = "at_stop"
	StatusInTransit = "in_transit"
)

// Position is a train's interpolated place on the map at one instant.
type Position struct {
	TripID    string  `json:"tripId"`
	RouteID   string  `json:"routeId"`
	Direction string  `json:"direction"`
	Headsign  string  `json:"headsign,omitempty"`
	Status    string  `json:"status"`
	FromStop  string  `json:"fromStop"`
	ToStop    string  `json:"toStop"`
	Progress  float64 `json:"progress"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Bearing   float64 `json:"bearing"`
	Compass   string  `json:"compass,omitempty"`

	NextStop    string    `json:"nextStop"`
	NextArrival time.Time `json:"nextArrival"`
}

// Positions interpolates a map position for every active trip. Completed
// trips and trips whose stops the schedule cannot place are excluded.
// Progress is recomputed from the current timetable on every call; nothing
// is carried over between snapshots.
func (t *Tracker) Positions(snapshot *realtime.Snapshot, now time.Time) []Position {
	timetables := t.Timetables(snapshot, now)

	out := make([]Position, 0, len(timetables))
	for _, tt := range timetables {
		if p, ok := t.Interpolate(tt, now); ok {
			out = append(out, p)
		}
	}
	return out
}

// Interpolate places one trip on the map. The second return value is false
// when the trip has finished its run or its stops have no known
// coordinates.
func (t *Tracker) Interpolate(tt Timetable, now time.Time) (Position, bool) {
	if len(tt.Stops) == 0 {
		return Position{}, false
	}

	last := tt.Stops[len(tt.Stops)-1]
	if now.After(last.Arrival) {
		// Run complete, off the map.
		return Position{}, false
	}

	first := tt.Stops[0]
	if now.Before(first.Departure) || len(tt.Stops) == 1 {
		lat, lon, ok := t.index.StopCoordinates(first.StopID)
		if !ok {
			return Position{}, false
		}
		return Position{
			TripID:      tt.TripID,
			RouteID:     tt.RouteID,
			Direction:   tt.Direction,
			Headsign:    tt.Headsign,
			Status:      StatusIdle,
			FromStop:    first.StopID,
			ToStop:      first.StopID,
			Progress:    0,
			Lat:         lat,
			Lon:         lon,
			NextStop:    first.StopID,
			NextArrival: first.Departure,
		}, true
	}

	for i := 1; i < len(tt.Stops); i++ {
		if now.After(tt.Stops[i].Arrival) {
			continue
		}
		return t.segmentPosition(tt, tt.Stops[i-1], tt.Stops[i], now)
	}

	// now == last.Arrival with every earlier arrival already passed.
	return t.segmentPosition(tt, tt.Stops[len(tt.Stops)-2], last, now)
}

func (t *Tracker) segmentPosition(tt Timetable, from, to EffectiveStopTime, now time.Time) (Position, bool) {
	fromLat, fromLon, ok := t.index.StopCoordinates(from.StopID)
	if !ok {
		return Position{}, false
	}
	toLat, toLon, ok := t.index.StopCoordinates(to.StopID)
	if !ok {
		return Position{}, false
	}

	// progress = (now - dep(A)) / (arr(B) - dep(A)), clamped to [0,1]. A
	// same-instant segment means the train has effectively just left A.
	var progress float64
	span := to.Arrival.Sub(from.Departure)
	if span <= 0 {
		progress = 1.0
	} else {
		progress = utils.Clamp(now.Sub(from.Departure).Seconds()/span.Seconds(), 0, 1)
	}

	status := StatusInTransit
	if progress == 0 {
		// Dwelling at the from stop.
		status = StatusAtStop
	}

	lat, lon := utils.InterpolatePoint(fromLat, fromLon, toLat, toLon, progress)
	bearing := utils.BearingBetweenPoints(fromLat, fromLon, toLat, toLon)

	return Position{
		TripID:      tt.TripID,
		RouteID:     tt.RouteID,
		Direction:   tt.Direction,
		Headsign:    tt.Headsign,
		Status:      status,
		FromStop:    from.StopID,
		ToStop:      to.StopID,
		Progress:    progress,
		Lat:         lat,
		Lon:         lon,
		Bearing:     bearing,
		Compass:     utils.BearingToCompass(bearing),
		NextStop:    to.StopID,
		NextArrival: to.Arrival,
	}, true
}
