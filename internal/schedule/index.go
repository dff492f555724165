package schedule

import (
	"sort"
	"strings"

	"github.com/jamespfennell/gtfs"

	"jzmtracker.nyc/internal/utils"
)

// Colors used when routes.txt carries no route_color.
var fallbackRouteColors = map[string]string{
	"J": "FF7F00",
	"Z": "FFD300",
	"M": "2850AD",
}

// Index is the immutable schedule lookup built once at startup from the
// static GTFS bundle. No mutation happens after construction, so it is safe
// for concurrent readers without locking.
type Index struct {
	routes       map[string]Route
	stops        map[string]Stop
	trips        map[string]*Trip
	tripsByRoute map[string][]*Trip

	// MTA realtime trip IDs drop the schedule prefix of the static trip ID
	// ("AFA23GEN-J038-Weekday-00_123450_J..N03R" appears in feeds as
	// "123450_J..N"), so trips are also indexed by their origin-time token.
	tripsByOrigin map[string][]*Trip

	shapes map[string][][2]float64

	skippedTrips int
	skippedStops int
}

// NewIndex builds an Index from parsed static GTFS data, keeping only the
// requested routes. Malformed records (stops without coordinates, trips with
// fewer than two calls or out-of-order times) are rejected at this boundary
// and counted rather than propagated.
func NewIndex(staticData *gtfs.Static, wantedRoutes []string) *Index {
	wanted := make(map[string]bool, len(wantedRoutes))
	for _, r := range wantedRoutes {
		wanted[r] = true
	}

	idx := &Index{
		routes:        make(map[string]Route),
		stops:         make(map[string]Stop),
		trips:         make(map[string]*Trip),
		tripsByRoute:  make(map[string][]*Trip),
		tripsByOrigin: make(map[string][]*Trip),
		shapes:        make(map[string][][2]float64),
	}

	for _, r := range staticData.Routes {
		if !wanted[r.Id] {
			continue
		}
		color := r.Color
		if color == "" || color == "FFFFFF" {
			color = fallbackRouteColors[r.Id]
		}
		idx.routes[r.Id] = Route{ID: r.Id, ShortName: r.ShortName, Color: color}
	}

	stopCoords := make(map[string]*gtfs.Stop, len(staticData.Stops))
	for i := range staticData.Stops {
		stopCoords[staticData.Stops[i].Id] = &staticData.Stops[i]
	}

	for i := range staticData.Trips {
		t := &staticData.Trips[i]
		if t.Route == nil || !wanted[t.Route.Id] {
			continue
		}
		trip := idx.buildTrip(t, stopCoords)
		if trip == nil {
			idx.skippedTrips++
			continue
		}
		idx.trips[trip.ID] = trip
		idx.tripsByRoute[trip.RouteID] = append(idx.tripsByRoute[trip.RouteID], trip)
		if origin := originToken(trip.ID); origin != "" {
			idx.tripsByOrigin[origin] = append(idx.tripsByOrigin[origin], trip)
		}

		if t.Shape != nil && len(t.Shape.Points) > len(idx.shapes[trip.RouteID]) {
			points := make([][2]float64, len(t.Shape.Points))
			for j, p := range t.Shape.Points {
				points[j] = [2]float64{p.Latitude, p.Longitude}
			}
			idx.shapes[trip.RouteID] = points
		}
	}

	for _, trips := range idx.tripsByRoute {
		sort.Slice(trips, func(i, j int) bool { return trips[i].ID < trips[j].ID })
	}

	return idx
}

func (idx *Index) buildTrip(t *gtfs.ScheduledTrip, stopCoords map[string]*gtfs.Stop) *Trip {
	if len(t.StopTimes) < 2 {
		return nil
	}

	trip := &Trip{
		ID:       t.ID,
		RouteID:  t.Route.Id,
		Headsign: t.Headsign,
	}
	if t.Shape != nil {
		trip.ShapeID = t.Shape.ID
	}

	for _, st := range t.StopTimes {
		if st.Stop == nil {
			return nil
		}
		src, ok := stopCoords[st.Stop.Id]
		if !ok || src.Latitude == nil || src.Longitude == nil {
			return nil
		}
		if _, seen := idx.stops[src.Id]; !seen {
			idx.stops[src.Id] = Stop{
				ID:        src.Id,
				Name:      src.Name,
				Lat:       *src.Latitude,
				Lon:       *src.Longitude,
				Direction: utils.PlatformDirection(src.Id),
			}
		}
		trip.StopTimes = append(trip.StopTimes, StopTime{
			StopID:    st.Stop.Id,
			Arrival:   st.ArrivalTime,
			Departure: st.DepartureTime,
			Sequence:  st.StopSequence,
		})
	}

	// Static itineraries must be strictly time-ordered; a bundle violating
	// that is malformed and the trip is dropped.
	for i, st := range trip.StopTimes {
		if st.Departure < st.Arrival {
			return nil
		}
		if i > 0 && st.Arrival < trip.StopTimes[i-1].Departure {
			return nil
		}
	}

	trip.Direction = utils.PlatformDirection(trip.FirstStopID())

	return trip
}

// TripByID returns the static trip with the exact given ID.
func (idx *Index) TripByID(id string) (*Trip, error) {
	if trip, ok := idx.trips[id]; ok {
		return trip, nil
	}
	return nil, newTripNotFound(id)
}

// ResolveTrip matches either a static trip ID or an MTA realtime trip ID
// against the index. Realtime IDs are matched by origin-time token and then
// by prefix against the static ID's core.
func (idx *Index) ResolveTrip(id string) (*Trip, error) {
	if trip, ok := idx.trips[id]; ok {
		return trip, nil
	}

	origin := originToken(id)
	for _, trip := range idx.tripsByOrigin[origin] {
		core := tripIDCore(trip.ID)
		if strings.HasPrefix(core, id) || strings.HasPrefix(id, core) {
			return trip, nil
		}
	}

	return nil, newTripNotFound(id)
}

// StopByID returns the platform with the given ID.
func (idx *Index) StopByID(id string) (Stop, error) {
	if stop, ok := idx.stops[id]; ok {
		return stop, nil
	}
	return Stop{}, newStopNotFound(id)
}

// StopCoordinates implements the locator needed for position interpolation.
func (idx *Index) StopCoordinates(id string) (lat, lon float64, ok bool) {
	stop, found := idx.stops[id]
	if !found {
		return 0, 0, false
	}
	return stop.Lat, stop.Lon, true
}

// RouteByID returns route metadata.
func (idx *Index) RouteByID(id string) (Route, error) {
	if route, ok := idx.routes[id]; ok {
		return route, nil
	}
	return Route{}, newRouteNotFound(id)
}

// Routes lists the indexed routes, sorted by ID.
func (idx *Index) Routes() []Route {
	out := make([]Route, 0, len(idx.routes))
	for _, r := range idx.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Stops lists every indexed platform, sorted by ID.
func (idx *Index) Stops() []Stop {
	out := make([]Stop, 0, len(idx.stops))
	for _, s := range idx.stops {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// StopsForRoute returns the platforms served by a route in travel order for
// the given direction ("N", "S", or "" for both, ordered by the northbound
// pattern). The ordering comes from the longest itinerary of the route.
func (idx *Index) StopsForRoute(routeID, direction string) ([]Stop, error) {
	if _, ok := idx.routes[routeID]; !ok {
		return nil, newRouteNotFound(routeID)
	}

	var longest *Trip
	for _, trip := range idx.tripsByRoute[routeID] {
		if direction != "" && !strings.EqualFold(trip.Direction, direction) {
			continue
		}
		if longest == nil || len(trip.StopTimes) > len(longest.StopTimes) {
			longest = trip
		}
	}
	if longest == nil {
		return nil, nil
	}

	stops := make([]Stop, 0, len(longest.StopTimes))
	for _, st := range longest.StopTimes {
		stops = append(stops, idx.stops[st.StopID])
	}
	return stops, nil
}

// TripsForRoute returns the static trips of a route, sorted by ID.
func (idx *Index) TripsForRoute(routeID string) []*Trip {
	return idx.tripsByRoute[routeID]
}

// ShapeForRoute returns the densest shape geometry seen for a route as
// (lat, lon) pairs, or nil when the bundle has no shapes for it.
func (idx *Index) ShapeForRoute(routeID string) [][2]float64 {
	return idx.shapes[routeID]
}

// SkippedRecords reports how many malformed trips were rejected during
// construction. Used for startup logging only.
func (idx *Index) SkippedRecords() int {
	return idx.skippedTrips
}

// originToken extracts the origin-time token shared by static and realtime
// MTA trip IDs: the first all-digit underscore-separated field.
func originToken(tripID string) string {
	for _, part := range strings.Split(tripID, "_") {
		if part != "" && isDigits(part) {
			return part
		}
	}
	return ""
}

// tripIDCore strips the schedule prefix from a static trip ID, leaving the
// "<origin>_<route>..<direction>" core that realtime feeds use.
func tripIDCore(tripID string) string {
	origin := originToken(tripID)
	if origin == "" {
		return tripID
	}
	if i := strings.Index(tripID, origin); i >= 0 {
		return tripID[i:]
	}
	return tripID
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
