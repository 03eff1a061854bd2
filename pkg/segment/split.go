// Package segment cuts each route into its stop-to-stop pieces and
// aggregates the pieces that several routes share. The results feed the
// per-city shapefiles and reports.
package segment

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"transitatlas/pkg/geo"
	"transitatlas/pkg/model"
)

// minAlongGap is the along-line spread, in meters, below which two
// projected stops are treated as co-located and joined by a chord
// instead of a line substring.
const minAlongGap = 1.0

// RouteSegments splits one route into the pieces between consecutive
// stops. Stops are ordered by their projection onto the route geometry,
// not by their advertised sequence, because the two regularly disagree
// in the source data.
func RouteSegments(r *model.Route) []model.Segment {
	if len(r.Geometry) < 2 || len(r.Stops) < 2 {
		return nil
	}

	ls := make(orb.LineString, len(r.Geometry))
	for i, p := range r.Geometry {
		ls[i] = orb.Point{p.Lng, p.Lat}
	}

	type placed struct {
		stop  *model.Stop
		along float64
		point orb.Point
	}
	stops := make([]placed, len(r.Stops))
	for i := range r.Stops {
		s := &r.Stops[i]
		along, pt := geo.Project(ls, orb.Point{s.Lng, s.Lat})
		stops[i] = placed{stop: s, along: along, point: pt}
	}
	sort.SliceStable(stops, func(i, j int) bool { return stops[i].along < stops[j].along })

	segments := make([]model.Segment, 0, len(stops)-1)
	for i := 0; i < len(stops)-1; i++ {
		a, b := stops[i], stops[i+1]

		var piece orb.LineString
		if b.along-a.along > minAlongGap {
			piece = geo.Substring(ls, a.along, b.along)
		} else {
			piece = orb.LineString{a.point, b.point}
		}

		geom := make([]model.Coordinate, len(piece))
		for k, p := range piece {
			geom[k] = model.Coordinate{Lng: p[0], Lat: p[1]}
		}

		segments = append(segments, model.Segment{
			StartNameCN: a.stop.NameCN,
			StartNameEN: a.stop.NameEN,
			StartStopID: a.stop.UniqueID,
			EndNameCN:   b.stop.NameCN,
			EndNameEN:   b.stop.NameEN,
			EndStopID:   b.stop.UniqueID,
			DistanceKM:  geo.RoundKM(geo.LengthM(piece)),
			Routes:      1,
			CityCN:      a.stop.CityCN,
			CityEN:      a.stop.CityEN,
			Geometry:    geom,
		})
	}
	return segments
}

// Aggregate merges segments that connect the same stop pair: the route
// count accumulates and the distance becomes the mean. The geometry of
// the first occurrence is kept. Input order is preserved.
func Aggregate(segments []model.Segment) []model.Segment {
	type acc struct {
		seg   model.Segment
		total float64
		n     int
	}
	byPair := make(map[string]*acc)
	var order []string

	for _, s := range segments {
		key := s.StartStopID + "|" + s.EndStopID
		a, ok := byPair[key]
		if !ok {
			a = &acc{seg: s}
			byPair[key] = a
			order = append(order, key)
		}
		a.total += s.DistanceKM
		a.n++
	}

	out := make([]model.Segment, 0, len(order))
	for _, key := range order {
		a := byPair[key]
		a.seg.DistanceKM = math.Round(a.total/float64(a.n)*1000) / 1000
		a.seg.Routes = a.n
		out = append(out, a.seg)
	}
	return out
}

// UniqueStops deduplicates the stops of many routes by their stable id
// and counts how many distinct routes serve each one.
func UniqueStops(routes []model.Route) []model.UniqueStop {
	type acc struct {
		stop   model.UniqueStop
		routes map[string]bool
	}
	byID := make(map[string]*acc)
	var order []string

	for i := range routes {
		r := &routes[i]
		for j := range r.Stops {
			s := &r.Stops[j]
			if s.UniqueID == "" {
				continue
			}
			a, ok := byID[s.UniqueID]
			if !ok {
				a = &acc{
					stop: model.UniqueStop{
						NameCN: s.NameCN,
						NameEN: s.NameEN,
						ID:     s.UniqueID,
						CityCN: s.CityCN,
						CityEN: s.CityEN,
						Lng:    s.Lng,
						Lat:    s.Lat,
					},
					routes: make(map[string]bool),
				}
				byID[s.UniqueID] = a
				order = append(order, s.UniqueID)
			}
			a.routes[s.RouteID] = true
		}
	}

	out := make([]model.UniqueStop, 0, len(order))
	for _, id := range order {
		a := byID[id]
		a.stop.Routes = len(a.routes)
		out = append(out, a.stop)
	}
	return out
}
