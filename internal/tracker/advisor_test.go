package tracker

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jamespfennell/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jzmtracker.nyc/internal/logging"
	"jzmtracker.nyc/internal/realtime"
	"jzmtracker.nyc/internal/schedule"
)

// singleTripTracker serves exactly one northbound J train, departing the
// target platform J91N at 10:10:00.
func singleTripTracker(t *testing.T, opts Options) *Tracker {
	t.Helper()

	coord := func(v float64) *float64 { return &v }
	routeJ := &gtfs.Route{Id: "J"}
	stopA := gtfs.Stop{Id: "J90N", Name: "Gates Av", Latitude: coord(40.68963), Longitude: coord(-73.92227)}
	stopB := gtfs.Stop{Id: "J91N", Name: "Kosciuszko St", Latitude: coord(40.693342), Longitude: coord(-73.928814)}

	at := func(h, m, s int) time.Duration {
		return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
	}

	staticData := &gtfs.Static{
		Routes: []gtfs.Route{*routeJ},
		Stops:  []gtfs.Stop{stopA, stopB},
		Trips: []gtfs.ScheduledTrip{{
			ID:    "SCHED-J038-Weekday-00_060500_J..N",
			Route: routeJ,
			StopTimes: []gtfs.ScheduledStopTime{
				{Stop: &stopA, ArrivalTime: at(10, 4, 0), DepartureTime: at(10, 4, 30), StopSequence: 1},
				{Stop: &stopB, ArrivalTime: at(10, 9, 30), DepartureTime: at(10, 10, 0), StopSequence: 2},
			},
		}},
	}

	logger := logging.NewStructuredLogger(io.Discard, slog.LevelError)
	return New(schedule.NewIndex(staticData, []string{"J"}), opts, logger)
}

func TestRecommendTimeToSpare(t *testing.T) {
	tr := singleTripTracker(t, Options{})

	rec, err := tr.Recommend(nil, "J91N", "N", 6*time.Minute, 2*time.Minute, clock(10, 1, 0))
	require.NoError(t, err)

	assert.Equal(t, clock(10, 2, 0), rec.LeaveBy)
	assert.Equal(t, StatusTimeToSpare, rec.Status)
	assert.Equal(t, time.Minute, rec.Slack)
	assert.Equal(t, clock(10, 10, 0), rec.Departure)
	assert.Equal(t, "J", rec.RouteID)
}

func TestRecommendLeaveNow(t *testing.T) {
	tr := singleTripTracker(t, Options{})

	// Past the leave-by time but the train has not departed yet.
	rec, err := tr.Recommend(nil, "J91N", "N", 6*time.Minute, 2*time.Minute, clock(10, 3, 0))
	require.NoError(t, err)

	assert.Equal(t, StatusLeaveNow, rec.Status)
	assert.Zero(t, rec.Slack)
}

func TestRecommendNoUpcomingTrip(t *testing.T) {
	tr := singleTripTracker(t, Options{})

	// The only train departed at 10:10 and nothing else follows.
	_, err := tr.Recommend(nil, "J91N", "N", 6*time.Minute, 2*time.Minute, clock(10, 11, 0))

	var noTrip *NoUpcomingTripError
	require.ErrorAs(t, err, &noTrip)
	assert.Equal(t, "J91N", noTrip.StopID)
}

func TestRecommendHonorsLookaheadWindow(t *testing.T) {
	tr := singleTripTracker(t, Options{Lookahead: 60 * time.Minute})

	// The 10:10 departure is beyond the window at 08:00.
	_, err := tr.Recommend(nil, "J91N", "N", 6*time.Minute, 2*time.Minute, clock(8, 0, 0))

	var noTrip *NoUpcomingTripError
	assert.ErrorAs(t, err, &noTrip)
}

func TestRecommendAcceptsParentStation(t *testing.T) {
	tr := singleTripTracker(t, Options{})

	rec, err := tr.Recommend(nil, "J91", "N", 6*time.Minute, 2*time.Minute, clock(10, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, clock(10, 2, 0), rec.LeaveBy)
}

func TestRecommendMovesToNextTrainWhenMissed(t *testing.T) {
	tr := newTestTracker(t, Options{})

	// The 10:03:30 departure from M11S is gone by 10:04; the advisor
	// falls through to the 10:10:00 train.
	rec, err := tr.Recommend(nil, "M11S", "S", 2*time.Minute, 2*time.Minute, clock(10, 4, 0))
	require.NoError(t, err)

	assert.Equal(t, mockTripM2, rec.TripID)
	assert.Equal(t, clock(10, 10, 0), rec.Departure)
	assert.Equal(t, StatusTimeToSpare, rec.Status)
	assert.Equal(t, 2*time.Minute, rec.Slack)
}

func TestRecommendUsesLivePredictions(t *testing.T) {
	tr := singleTripTracker(t, Options{})
	now := clock(10, 1, 0)

	// Live feed says the train runs 3 minutes late.
	snapshot := realtime.NewSnapshot(now, []realtime.LiveArrival{{
		TripID: "060500_J..N", RouteID: "J", StopID: "J91N",
		Arrival:       clock(10, 12, 30),
		Departure:     clock(10, 13, 0),
		FeedTimestamp: now,
	}})

	rec, err := tr.Recommend(snapshot, "J91N", "N", 6*time.Minute, 2*time.Minute, now)
	require.NoError(t, err)

	assert.True(t, rec.Live)
	assert.Equal(t, clock(10, 13, 0), rec.Departure)
	assert.Equal(t, clock(10, 5, 0), rec.LeaveBy)
	assert.Equal(t, StatusTimeToSpare, rec.Status)
	assert.Equal(t, 4*time.Minute, rec.Slack)
}

func TestArrivalsBoard(t *testing.T) {
	tr := newTestTracker(t, Options{})
	now := clock(10, 0, 0)

	arrivals := tr.ArrivalsAt(nil, "M11S", "S", now)
	require.Len(t, arrivals, 2)
	assert.Equal(t, mockTripM1, arrivals[0].TripID)
	assert.Equal(t, clock(10, 3, 0), arrivals[0].Arrival)
	assert.Equal(t, mockTripM2, arrivals[1].TripID)

	// Direction filter: no northbound service at a southbound platform.
	assert.Empty(t, tr.ArrivalsAt(nil, "M11S", "N", now))
}
