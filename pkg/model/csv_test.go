package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteRowRoundTrip(t *testing.T) {
	r := Route{
		NameCN: "1路", ID: "r1", CityCN: "北京",
		Geometry: []Coordinate{{Lng: 116.37, Lat: 39.90}, {Lng: 116.38, Lat: 39.91}},
		Stops: []Stop{
			{NameCN: "西单", UniqueID: "abc123def456", Lng: 116.374, Lat: 39.907, Sequence: 1},
		},
	}

	row, err := NewRouteRow(r)
	assert.NoError(t, err)
	assert.Equal(t, 1, row.TotalStops)
	assert.NotEmpty(t, row.Coordinates)
	assert.NotEmpty(t, row.StopsJSON)

	got, err := row.ToRoute()
	assert.NoError(t, err)
	assert.Equal(t, r.Geometry, got.Geometry)
	assert.Equal(t, r.Stops, got.Stops)
	assert.Equal(t, "1路", got.NameCN)
}

func TestRouteRowToRoute_BadJSON(t *testing.T) {
	row := RouteRow{Route: Route{ID: "r1"}, Coordinates: "{not json"}
	_, err := row.ToRoute()
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	r := Route{NameCN: "1路", NameEN: "Route 1", ID: "r1"}
	assert.Equal(t, "Route 1", r.DisplayName())

	r.NameEN = ""
	assert.Equal(t, "1路", r.DisplayName())

	r.NameCN = ""
	assert.Equal(t, "r1", r.DisplayName())
}
