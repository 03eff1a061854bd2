package model

import (
	"encoding/json"
	"fmt"
)

// RouteRow is the flat CSV form of a Route: scalar fields directly,
// geometry and stops as embedded JSON columns.
type RouteRow struct {
	Route
	Coordinates string `csv:"coordinates"`
	StopsJSON   string `csv:"stops_json"`
	TotalStops  int    `csv:"total_stops"`
}

// NewRouteRow flattens a Route for CSV output.
func NewRouteRow(r Route) (RouteRow, error) {
	coords, err := json.Marshal(r.Geometry)
	if err != nil {
		return RouteRow{}, fmt.Errorf("failed to encode geometry: %w", err)
	}
	stops, err := json.Marshal(r.Stops)
	if err != nil {
		return RouteRow{}, fmt.Errorf("failed to encode stops: %w", err)
	}
	return RouteRow{
		Route:       r,
		Coordinates: string(coords),
		StopsJSON:   string(stops),
		TotalStops:  len(r.Stops),
	}, nil
}

// ToRoute restores the Route from its CSV form.
func (row *RouteRow) ToRoute() (Route, error) {
	r := row.Route
	if row.Coordinates != "" {
		if err := json.Unmarshal([]byte(row.Coordinates), &r.Geometry); err != nil {
			return Route{}, fmt.Errorf("failed to decode geometry for %s: %w", r.ID, err)
		}
	}
	if row.StopsJSON != "" {
		if err := json.Unmarshal([]byte(row.StopsJSON), &r.Stops); err != nil {
			return Route{}, fmt.Errorf("failed to decode stops for %s: %w", r.ID, err)
		}
	}
	return r, nil
}

// StationRow is the CSV form of a merged, deduplicated station.
type StationRow struct {
	NameCN   string  `csv:"name_cn"`
	NameEN   string  `csv:"name_en"`
	UniqueID string  `csv:"stop_unique_id"`
	Lng      float64 `csv:"longitude"`
	Lat      float64 `csv:"latitude"`
	Routes   int     `csv:"num_routes"`
}
