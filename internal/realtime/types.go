package realtime

import (
	"sort"
	"time"
)

// LiveArrival is one predicted call from a trip update: when a specific
// train reaches a specific platform according to the realtime feed.
type LiveArrival struct {
	TripID  string
	RouteID string
	StopID  string

	// Arrival or Departure may be zero when the feed carries only one of
	// the two events for a call.
	Arrival   time.Time
	Departure time.Time

	// FeedTimestamp is when the feed (or the individual trip update, when
	// it carries its own timestamp) was generated. Conflicting predictions
	// for the same call are resolved in its favor.
	FeedTimestamp time.Time
}

// When returns the best single time for the call: the arrival when
// present, otherwise the departure.
func (a LiveArrival) When() time.Time {
	if !a.Arrival.IsZero() {
		return a.Arrival
	}
	return a.Departure
}

// DepartureOrArrival returns the departure when present, otherwise the
// arrival. Terminal calls in MTA feeds often carry only one of the two.
func (a LiveArrival) DepartureOrArrival() time.Time {
	if !a.Departure.IsZero() {
		return a.Departure
	}
	return a.Arrival
}

// Snapshot is one complete read of the realtime feeds. Snapshots are
// immutable after construction and replaced wholesale on each refresh.
type Snapshot struct {
	FetchedAt time.Time

	byTrip  map[string][]LiveArrival
	routeOf map[string]string
}

// NewSnapshot groups arrivals by trip, resolving duplicate predictions for
// the same (trip, stop) call in favor of the most recent feed timestamp.
// Each trip's calls are sorted by predicted time.
func NewSnapshot(fetchedAt time.Time, arrivals []LiveArrival) *Snapshot {
	s := &Snapshot{
		FetchedAt: fetchedAt,
		byTrip:    make(map[string][]LiveArrival),
		routeOf:   make(map[string]string),
	}

	type callKey struct{ trip, stop string }
	best := make(map[callKey]LiveArrival, len(arrivals))
	for _, a := range arrivals {
		key := callKey{a.TripID, a.StopID}
		if prev, ok := best[key]; ok && !a.FeedTimestamp.After(prev.FeedTimestamp) {
			continue
		}
		best[key] = a
	}

	for _, a := range best {
		s.byTrip[a.TripID] = append(s.byTrip[a.TripID], a)
		if a.RouteID != "" {
			s.routeOf[a.TripID] = a.RouteID
		}
	}
	for _, calls := range s.byTrip {
		sort.Slice(calls, func(i, j int) bool { return calls[i].When().Before(calls[j].When()) })
	}

	return s
}

// ForTrip returns the live calls known for a realtime trip ID, in time
// order, or nil when the feeds said nothing about it.
func (s *Snapshot) ForTrip(tripID string) []LiveArrival {
	return s.byTrip[tripID]
}

// TripIDs lists every realtime trip ID in the snapshot, sorted.
func (s *Snapshot) TripIDs() []string {
	ids := make([]string, 0, len(s.byTrip))
	for id := range s.byTrip {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RouteForTrip returns the route the feed assigned to a trip, or "" when
// the trip descriptor carried none.
func (s *Snapshot) RouteForTrip(tripID string) string {
	return s.routeOf[tripID]
}

// TripCount reports how many trips the snapshot covers.
func (s *Snapshot) TripCount() int {
	return len(s.byTrip)
}

// Age reports how long ago the snapshot was fetched.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}
