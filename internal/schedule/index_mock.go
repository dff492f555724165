package schedule

import (
	"time"

	"github.com/jamespfennell/gtfs"
)

// MockStatic builds a small in-memory static bundle covering the J and M
// routes. Tests across packages share it instead of carrying zip fixtures.
func MockStatic() *gtfs.Static {
	routeJ := &gtfs.Route{Id: "J", ShortName: "J", Color: "996633"}
	routeM := &gtfs.Route{Id: "M", ShortName: "M"}
	routeZ := &gtfs.Route{Id: "Z", ShortName: "Z"}

	coord := func(v float64) *float64 { return &v }

	stops := []gtfs.Stop{
		{Id: "M10S", Name: "Flushing Av", Latitude: coord(40.70026), Longitude: coord(-73.941126)},
		{Id: "M11S", Name: "Myrtle Av", Latitude: coord(40.697207), Longitude: coord(-73.935657)},
		{Id: "M12S", Name: "Central Av", Latitude: coord(40.697857), Longitude: coord(-73.927397)},
		{Id: "J12N", Name: "Marcy Av", Latitude: coord(40.708359), Longitude: coord(-73.957757)},
		{Id: "J13N", Name: "Hewes St", Latitude: coord(40.70687), Longitude: coord(-73.953431)},
		{Id: "J14N", Name: "Lorimer St", Latitude: coord(40.703869), Longitude: coord(-73.947408)},
	}

	at := func(h, m, s int) time.Duration {
		return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
	}

	shapeM := &gtfs.Shape{
		ID: "M..S14R",
		Points: []gtfs.ShapePoint{
			{Latitude: 40.70026, Longitude: -73.941126},
			{Latitude: 40.697207, Longitude: -73.935657},
			{Latitude: 40.697857, Longitude: -73.927397},
		},
	}

	trips := []gtfs.ScheduledTrip{
		{
			ID:       "SCHED-M060-Weekday-00_060000_M..S14R",
			Route:    routeM,
			Headsign: "Middle Village-Metropolitan Av",
			Shape:    shapeM,
			StopTimes: []gtfs.ScheduledStopTime{
				{Stop: &stops[0], ArrivalTime: at(10, 0, 0), DepartureTime: at(10, 0, 30), StopSequence: 1},
				{Stop: &stops[1], ArrivalTime: at(10, 3, 0), DepartureTime: at(10, 3, 30), StopSequence: 2},
				{Stop: &stops[2], ArrivalTime: at(10, 6, 0), DepartureTime: at(10, 6, 0), StopSequence: 3},
			},
		},
		{
			ID:       "SCHED-M060-Weekday-00_061000_M..S14R",
			Route:    routeM,
			Headsign: "Middle Village-Metropolitan Av",
			Shape:    shapeM,
			StopTimes: []gtfs.ScheduledStopTime{
				{Stop: &stops[0], ArrivalTime: at(10, 7, 0), DepartureTime: at(10, 7, 30), StopSequence: 1},
				{Stop: &stops[1], ArrivalTime: at(10, 10, 0), DepartureTime: at(10, 10, 0), StopSequence: 2},
			},
		},
		{
			ID:       "SCHED-J038-Weekday-00_058000_J..N03R",
			Route:    routeJ,
			Headsign: "Jamaica Center-Parsons/Archer",
			StopTimes: []gtfs.ScheduledStopTime{
				{Stop: &stops[3], ArrivalTime: at(10, 0, 0), DepartureTime: at(10, 0, 30), StopSequence: 1},
				{Stop: &stops[4], ArrivalTime: at(10, 4, 0), DepartureTime: at(10, 4, 30), StopSequence: 2},
				{Stop: &stops[5], ArrivalTime: at(10, 8, 0), DepartureTime: at(10, 8, 0), StopSequence: 3},
			},
		},
	}

	return &gtfs.Static{
		Routes: []gtfs.Route{*routeJ, *routeM, *routeZ},
		Stops:  stops,
		Trips:  trips,
	}
}

// NewMockIndex builds an Index over MockStatic for the tracked routes.
func NewMockIndex() *Index {
	return NewIndex(MockStatic(), TrackedRoutes)
}
