package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// LengthM returns the haversine length of a polyline in meters.
func LengthM(ls orb.LineString) float64 {
	var total float64
	for i := 0; i < len(ls)-1; i++ {
		total += orbgeo.Distance(ls[i], ls[i+1])
	}
	return total
}

// Project returns the distance in meters along the line to the point on the
// line closest to p, plus that closest point. The line must have at least
// two vertices.
func Project(ls orb.LineString, p orb.Point) (float64, orb.Point) {
	best := math.MaxFloat64
	bestAlong := 0.0
	bestPoint := ls[0]
	along := 0.0

	for i := 0; i < len(ls)-1; i++ {
		a, b := ls[i], ls[i+1]
		t := segmentParam(p, a, b)
		closest := orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}

		d := planar.Distance(p, closest)
		if d < best {
			best = d
			bestPoint = closest
			bestAlong = along + orbgeo.Distance(a, closest)
		}
		along += orbgeo.Distance(a, b)
	}

	return bestAlong, bestPoint
}

// Substring extracts the portion of the line between two along-line
// distances (meters from the start). from must not exceed to. Degenerate
// input collapses to a two-point straight line between the interpolated
// endpoints.
func Substring(ls orb.LineString, from, to float64) orb.LineString {
	if from > to {
		from, to = to, from
	}

	start := Interpolate(ls, from)
	end := Interpolate(ls, to)

	out := orb.LineString{start}
	along := 0.0
	for i := 0; i < len(ls)-1; i++ {
		segLen := orbgeo.Distance(ls[i], ls[i+1])
		vertexDist := along + segLen
		if vertexDist > from && vertexDist < to {
			out = append(out, ls[i+1])
		}
		along = vertexDist
	}
	out = append(out, end)

	return out
}

// Interpolate returns the point at the given along-line distance in meters.
// Distances beyond the line clamp to its endpoints.
func Interpolate(ls orb.LineString, dist float64) orb.Point {
	if dist <= 0 {
		return ls[0]
	}

	along := 0.0
	for i := 0; i < len(ls)-1; i++ {
		a, b := ls[i], ls[i+1]
		segLen := orbgeo.Distance(a, b)
		if along+segLen >= dist {
			if segLen == 0 {
				return a
			}
			t := (dist - along) / segLen
			return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
		}
		along += segLen
	}

	return ls[len(ls)-1]
}

// segmentParam returns the clamped projection parameter of p onto segment ab.
func segmentParam(p, a, b orb.Point) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]

	if dx == 0 && dy == 0 {
		return 0
	}

	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / (dx*dx + dy*dy)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
