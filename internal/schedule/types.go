package schedule

import "time"

// Route is a subway service pattern (J, Z, or M).
type Route struct {
	ID        string
	ShortName string
	Color     string
}

// Stop is a platform, not a station: MTA stop IDs carry a trailing N or S for
// the direction the platform serves (e.g. "M11S").
type Stop struct {
	ID        string
	Name      string
	Lat       float64
	Lon       float64
	Direction string
}

// StopTime is a scheduled call of a trip at a platform. Times are offsets from
// the start of the service day and may exceed 24h for after-midnight trips.
type StopTime struct {
	StopID    string
	Arrival   time.Duration
	Departure time.Duration
	Sequence  int
}

// Trip is a static itinerary: an ordered, strictly time-sorted sequence of
// platform calls.
type Trip struct {
	ID        string
	RouteID   string
	Direction string
	Headsign  string
	ShapeID   string
	StopTimes []StopTime
}

// FirstStopID returns the first platform of the itinerary, or "".
func (t *Trip) FirstStopID() string {
	if len(t.StopTimes) == 0 {
		return ""
	}
	return t.StopTimes[0].StopID
}

// LastStopID returns the final platform of the itinerary, or "".
func (t *Trip) LastStopID() string {
	if len(t.StopTimes) == 0 {
		return ""
	}
	return t.StopTimes[len(t.StopTimes)-1].StopID
}
