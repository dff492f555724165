package schedule

import "fmt"

// NotFoundError reports a lookup for a trip, stop, or route that the static
// bundle does not contain. It is surfaced to callers and is never fatal.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func newTripNotFound(id string) *NotFoundError {
	return &NotFoundError{Kind: "trip", ID: id}
}

func newStopNotFound(id string) *NotFoundError {
	return &NotFoundError{Kind: "stop", ID: id}
}

func newRouteNotFound(id string) *NotFoundError {
	return &NotFoundError{Kind: "route", ID: id}
}
