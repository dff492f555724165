package models

import (
	"time"

	"jzmtracker.nyc/internal/schedule"
	"jzmtracker.nyc/internal/tracker"
	"jzmtracker.nyc/internal/walking"
)

// Stop is the API shape of a platform.
type Stop struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Direction string  `json:"direction,omitempty"`
}

func NewStop(s schedule.Stop) Stop {
	return Stop{ID: s.ID, Name: s.Name, Lat: s.Lat, Lon: s.Lon, Direction: s.Direction}
}

func NewStops(stops []schedule.Stop) []Stop {
	out := make([]Stop, 0, len(stops))
	for _, s := range stops {
		out = append(out, NewStop(s))
	}
	return out
}

// Route is the API shape of a route, including its map geometry as an
// encoded polyline.
type Route struct {
	ID        string `json:"id"`
	ShortName string `json:"shortName"`
	Color     string `json:"color"`
	Polyline  string `json:"polyline,omitempty"`
}

func NewRoute(r schedule.Route, encodedShape string) Route {
	return Route{ID: r.ID, ShortName: r.ShortName, Color: r.Color, Polyline: encodedShape}
}

// PositionList is the payload behind the positions endpoint.
type PositionList struct {
	Positions []tracker.Position `json:"positions"`
	Live      bool               `json:"live"`
	AsOf      time.Time          `json:"asOf"`
}

// ArrivalList is the payload behind the per-stop arrivals endpoint.
type ArrivalList struct {
	Stop     Stop              `json:"stop"`
	Arrivals []tracker.Arrival `json:"arrivals"`
}

// RecommendationResponse pairs the advice with the walk estimate used to
// compute it, when one was requested.
type RecommendationResponse struct {
	Recommendation tracker.Recommendation `json:"recommendation"`
	Walk           *walking.Result        `json:"walk,omitempty"`
}

// NoTrains is the explicit empty state for the recommendation panel.
type NoTrains struct {
	StopID    string `json:"stopId"`
	Direction string `json:"direction,omitempty"`
	Reason    string `json:"reason"`
}
