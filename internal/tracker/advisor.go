package tracker

import (
	"sort"
	"strings"
	"time"

	"jzmtracker.nyc/internal/realtime"
	"jzmtracker.nyc/internal/utils"
)

// Advisory statuses.
const (
	StatusTimeToSpare = "time to spare"
	StatusLeaveNow    = "leave now"
)

// Recommendation tells the rider when to leave for a platform to catch the
// next reachable train there.
type Recommendation struct {
	StopID    string `json:"stopId"`
	Direction string `json:"direction,omitempty"`

	TripID    string    `json:"tripId"`
	RouteID   string    `json:"routeId"`
	Headsign  string    `json:"headsign,omitempty"`
	Departure time.Time `json:"departure"`
	Live      bool      `json:"live"`

	WalkDuration   time.Duration `json:"walkSeconds"`
	BufferDuration time.Duration `json:"bufferSeconds"`

	LeaveBy time.Time `json:"leaveBy"`
	Status  string    `json:"status"`

	// Slack is how much margin remains before LeaveBy. Zero unless Status
	// is "time to spare".
	Slack time.Duration `json:"slackSeconds"`
}

// Arrival is one upcoming call at a platform, for the arrivals board.
type Arrival struct {
	TripID    string    `json:"tripId"`
	RouteID   string    `json:"routeId"`
	Direction string    `json:"direction,omitempty"`
	Headsign  string    `json:"headsign,omitempty"`
	StopID    string    `json:"stopId"`
	Arrival   time.Time `json:"arrival"`
	Departure time.Time `json:"departure"`
	Live      bool      `json:"live"`
}

// upcomingCalls lists every not-yet-departed call matching the platform
// and direction within the lookahead window, earliest departure first.
func (t *Tracker) upcomingCalls(snapshot *realtime.Snapshot, stopID, direction string, now time.Time) []Arrival {
	horizon := now.Add(t.opts.Lookahead)

	var calls []Arrival
	for _, tt := range t.Timetables(snapshot, now) {
		if direction != "" && tt.Direction != "" && !strings.EqualFold(tt.Direction, direction) {
			continue
		}
		for _, est := range tt.Stops {
			if !stopMatches(est.StopID, stopID, direction) {
				continue
			}
			if est.Departure.Before(now) || est.Departure.After(horizon) {
				continue
			}
			calls = append(calls, Arrival{
				TripID:    tt.TripID,
				RouteID:   tt.RouteID,
				Direction: tt.Direction,
				Headsign:  tt.Headsign,
				StopID:    est.StopID,
				Arrival:   est.Arrival,
				Departure: est.Departure,
				Live:      est.Live,
			})
		}
	}

	sort.Slice(calls, func(i, j int) bool { return calls[i].Departure.Before(calls[j].Departure) })
	return calls
}

// stopMatches accepts either an exact platform ID or a parent station ID
// plus a direction.
func stopMatches(platformID, target, direction string) bool {
	if platformID != target && utils.ParentStation(platformID) != target {
		return false
	}
	return direction == "" || utils.MatchesDirection(platformID, direction)
}

// ArrivalsAt returns the upcoming arrivals board for a platform.
func (t *Tracker) ArrivalsAt(snapshot *realtime.Snapshot, stopID, direction string, now time.Time) []Arrival {
	return t.upcomingCalls(snapshot, stopID, direction, now)
}

// Recommend says when to leave for the earliest train still catchable at
// the platform. Trains that have already departed are passed over by the
// upcoming-call filter, which is what moves the advice to the next train
// once one is missed. Returns NoUpcomingTripError when nothing remains
// within the lookahead window.
func (t *Tracker) Recommend(snapshot *realtime.Snapshot, stopID, direction string, walk, buffer time.Duration, now time.Time) (Recommendation, error) {
	for _, call := range t.upcomingCalls(snapshot, stopID, direction, now) {
		leaveBy := call.Departure.Add(-walk - buffer)

		rec := Recommendation{
			StopID:         stopID,
			Direction:      direction,
			TripID:         call.TripID,
			RouteID:        call.RouteID,
			Headsign:       call.Headsign,
			Departure:      call.Departure,
			Live:           call.Live,
			WalkDuration:   walk,
			BufferDuration: buffer,
			LeaveBy:        leaveBy,
		}

		if !now.After(leaveBy) {
			rec.Status = StatusTimeToSpare
			rec.Slack = leaveBy.Sub(now)
		} else {
			rec.Status = StatusLeaveNow
		}
		return rec, nil
	}

	return Recommendation{}, &NoUpcomingTripError{
		StopID:    stopID,
		Direction: direction,
		Lookahead: t.opts.Lookahead,
	}
}
