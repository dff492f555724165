package tracker

import (
	"log/slog"
	"sort"
	"time"

	"jzmtracker.nyc/internal/logging"
	"jzmtracker.nyc/internal/realtime"
	"jzmtracker.nyc/internal/schedule"
	"jzmtracker.nyc/internal/utils"
)

const (
	// DefaultStalenessThreshold is how old a live prediction may be before
	// the static schedule is used instead.
	DefaultStalenessThreshold = 120 * time.Second

	// DefaultLookahead bounds how far into the future the advisor and the
	// arrivals board look.
	DefaultLookahead = 60 * time.Minute
)

// Options tune the merge and advisory behavior. The source feeds pin down
// neither value, so both are configurable with conservative defaults.
type Options struct {
	StalenessThreshold time.Duration
	Lookahead          time.Duration
}

func (o Options) withDefaults() Options {
	if o.StalenessThreshold <= 0 {
		o.StalenessThreshold = DefaultStalenessThreshold
	}
	if o.Lookahead <= 0 {
		o.Lookahead = DefaultLookahead
	}
	return o
}

// EffectiveStopTime is one resolved call of a trip: the live prediction
// when one is present and fresh, otherwise the static scheduled time.
type EffectiveStopTime struct {
	StopID    string
	Arrival   time.Time
	Departure time.Time
	Live      bool
}

// Timetable is the effective itinerary of one trip for the current
// snapshot and wall-clock time. Already-departed calls are retained so the
// interpolator can place the train between stops.
type Timetable struct {
	TripID    string
	RouteID   string
	Direction string
	Headsign  string
	Stops     []EffectiveStopTime

	// Clamped counts live predictions that were pulled forward to keep the
	// itinerary time-ordered.
	Clamped int
}

// Tracker derives positions, timetables, and recommendations from the
// immutable schedule index plus the latest realtime snapshot. All methods
// are pure functions of (index, snapshot, now); the Tracker itself holds
// no mutable state and is safe for concurrent use.
type Tracker struct {
	index  *schedule.Index
	opts   Options
	logger *slog.Logger
}

// New builds a Tracker over a schedule index.
func New(index *schedule.Index, opts Options, logger *slog.Logger) *Tracker {
	return &Tracker{index: index, opts: opts.withDefaults(), logger: logger}
}

// serviceDay anchors the static schedule's since-midnight durations to the
// calendar day of the given instant.
func serviceDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Timetables resolves every trip in the snapshot against the schedule and
// merges live predictions over static times. A nil or stale snapshot falls
// back to the static schedule alone.
func (t *Tracker) Timetables(snapshot *realtime.Snapshot, now time.Time) []Timetable {
	if snapshot == nil {
		return t.staticTimetables(now)
	}
	if age := snapshot.Age(now); age > t.opts.StalenessThreshold {
		staleErr := &StaleDataError{Age: age, Threshold: t.opts.StalenessThreshold}
		logging.LogOperation(t.logger, "falling back to static schedule",
			slog.String("reason", staleErr.Error()),
			slog.String("component", "tracker"))
		return t.staticTimetables(now)
	}

	var out []Timetable
	merged := make(map[string]bool)
	for _, rtID := range snapshot.TripIDs() {
		calls := snapshot.ForTrip(rtID)
		trip, err := t.index.ResolveTrip(rtID)
		if err != nil {
			if tt, ok := t.liveOnlyTimetable(rtID, snapshot.RouteForTrip(rtID), calls); ok {
				out = append(out, tt)
			}
			continue
		}
		if merged[trip.ID] {
			continue
		}
		merged[trip.ID] = true
		out = append(out, t.MergeTrip(trip, calls, now))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TripID < out[j].TripID })
	return out
}

// staticTimetables builds schedule-only timetables for trips that are
// running now or start within the lookahead window.
func (t *Tracker) staticTimetables(now time.Time) []Timetable {
	day := serviceDay(now)
	horizon := now.Add(t.opts.Lookahead)

	var out []Timetable
	for _, route := range t.index.Routes() {
		for _, trip := range t.index.TripsForRoute(route.ID) {
			first := day.Add(trip.StopTimes[0].Departure)
			last := day.Add(trip.StopTimes[len(trip.StopTimes)-1].Arrival)
			if last.Before(now) || first.After(horizon) {
				continue
			}
			out = append(out, t.MergeTrip(trip, nil, now))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TripID < out[j].TripID })
	return out
}

// MergeTrip resolves one trip's effective timetable: for each static call,
// the freshest live prediction wins when it is younger than the staleness
// threshold, and the result is clamped to preserve stop ordering. Live
// data may move times, never stops.
func (t *Tracker) MergeTrip(trip *schedule.Trip, calls []realtime.LiveArrival, now time.Time) Timetable {
	day := serviceDay(now)

	liveByStop := make(map[string]realtime.LiveArrival, len(calls))
	for _, c := range calls {
		liveByStop[c.StopID] = c
	}

	tt := Timetable{
		TripID:    trip.ID,
		RouteID:   trip.RouteID,
		Direction: trip.Direction,
		Headsign:  trip.Headsign,
		Stops:     make([]EffectiveStopTime, 0, len(trip.StopTimes)),
	}

	for _, st := range trip.StopTimes {
		est := EffectiveStopTime{
			StopID:    st.StopID,
			Arrival:   day.Add(st.Arrival),
			Departure: day.Add(st.Departure),
		}
		if c, ok := liveByStop[st.StopID]; ok && now.Sub(c.FeedTimestamp) <= t.opts.StalenessThreshold {
			est.Arrival = c.When()
			est.Departure = c.DepartureOrArrival()
			est.Live = true
		}
		tt.Stops = append(tt.Stops, est)
	}

	t.clampOrdering(&tt)
	return tt
}

// clampOrdering enforces arrival[i-1] <= departure[i-1] <= arrival[i] by
// pulling violating times forward. Out-of-order live updates are a known
// feed glitch; clamping recovers locally and the event is only logged.
func (t *Tracker) clampOrdering(tt *Timetable) {
	for i := range tt.Stops {
		if i > 0 && tt.Stops[i].Arrival.Before(tt.Stops[i-1].Departure) {
			ordErr := &InconsistentOrderingError{
				TripID:    tt.TripID,
				StopID:    tt.Stops[i].StopID,
				Reported:  tt.Stops[i].Arrival,
				ClampedTo: tt.Stops[i-1].Departure,
			}
			logging.LogOperation(t.logger, "clamped out-of-order live update",
				slog.String("detail", ordErr.Error()),
				slog.String("component", "tracker"))
			tt.Stops[i].Arrival = tt.Stops[i-1].Departure
			tt.Clamped++
		}
		if tt.Stops[i].Departure.Before(tt.Stops[i].Arrival) {
			tt.Stops[i].Departure = tt.Stops[i].Arrival
		}
	}
}

// liveOnlyTimetable builds a timetable for a realtime trip that has no
// static counterpart, common for unscheduled extra service. The itinerary
// is whatever the feed predicted, in time order.
func (t *Tracker) liveOnlyTimetable(tripID, routeID string, calls []realtime.LiveArrival) (Timetable, bool) {
	if len(calls) == 0 {
		return Timetable{}, false
	}

	tt := Timetable{
		TripID:    tripID,
		RouteID:   routeID,
		Direction: utils.PlatformDirection(calls[0].StopID),
		Stops:     make([]EffectiveStopTime, 0, len(calls)),
	}
	for _, c := range calls {
		tt.Stops = append(tt.Stops, EffectiveStopTime{
			StopID:    c.StopID,
			Arrival:   c.When(),
			Departure: c.DepartureOrArrival(),
			Live:      true,
		})
	}
	t.clampOrdering(&tt)
	return tt, true
}
