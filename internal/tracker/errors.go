package tracker

import (
	"fmt"
	"time"
)

// NoUpcomingTripError reports that no reachable train serves a platform
// within the lookahead window. Callers render it as an explicit "no trains"
// state rather than a failure.
type NoUpcomingTripError struct {
	StopID    string
	Direction string
	Lookahead time.Duration
}

func (e *NoUpcomingTripError) Error() string {
	if e.Direction != "" {
		return fmt.Sprintf("no upcoming trips at %s (%s) within %s", e.StopID, e.Direction, e.Lookahead)
	}
	return fmt.Sprintf("no upcoming trips at %s within %s", e.StopID, e.Lookahead)
}

// StaleDataError reports a realtime snapshot older than the staleness
// threshold. It is recovered locally by falling back to the static
// schedule and only ever shows up in logs.
type StaleDataError struct {
	Age       time.Duration
	Threshold time.Duration
}

func (e *StaleDataError) Error() string {
	return fmt.Sprintf("realtime snapshot is %s old, threshold %s", e.Age, e.Threshold)
}

// InconsistentOrderingError reports a live prediction that would place a
// stop earlier than its predecessor. It is recovered locally by clamping
// and only ever shows up in logs.
type InconsistentOrderingError struct {
	TripID    string
	StopID    string
	Reported  time.Time
	ClampedTo time.Time
}

func (e *InconsistentOrderingError) Error() string {
	return fmt.Sprintf("trip %s stop %s reported %s before previous stop, clamped to %s",
		e.TripID, e.StopID, e.Reported.Format(time.TimeOnly), e.ClampedTo.Format(time.TimeOnly))
}
