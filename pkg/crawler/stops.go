package crawler

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"

	"github.com/uber/h3-go/v4"

	"transitatlas/pkg/geo"
	"transitatlas/pkg/model"
)

// StopID derives the stable 12-hex-char identifier of a stop from its
// name and position.
func StopID(name string, lng, lat float64) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%.6f,%.6f", name, lng, lat)))
	return hex.EncodeToString(sum[:])[:12]
}

// resolutionForRadius picks the H3 resolution whose cells are on the
// order of the merge radius. Approximate hexagon edge lengths: res 8
// ~460m, res 9 ~174m, res 10 ~66m.
func resolutionForRadius(radiusM float64) int {
	switch {
	case radiusM <= 0:
		return 9
	case radiusM <= 75:
		return 10
	case radiusM <= 250:
		return 9
	case radiusM <= 600:
		return 8
	default:
		return 7
	}
}

type stopCluster struct {
	nameEN string
	points []geo.Point
	routes map[string]bool
}

// MergeStops collapses same-named stops within the merge radius into
// single stations at their centroid. Same-named stops far apart, which
// are distinct stations sharing a name, stay separate. Proximity is
// judged by H3 cell adjacency at a resolution matching the radius.
func MergeStops(stops []model.Stop, radiusM float64) []model.StationRow {
	res := resolutionForRadius(radiusM)

	groups := make(map[string][]model.Stop)
	var names []string
	for _, s := range stops {
		if s.NameCN == "" {
			continue
		}
		if _, ok := groups[s.NameCN]; !ok {
			names = append(names, s.NameCN)
		}
		groups[s.NameCN] = append(groups[s.NameCN], s)
	}
	sort.Strings(names)

	var out []model.StationRow
	for _, name := range names {
		group := groups[name]
		cellOf := make(map[h3.Cell]int)
		var clusters []*stopCluster

		for i := range group {
			s := &group[i]
			cell, err := h3.LatLngToCell(h3.NewLatLng(s.Lat, s.Lng), res)
			if err != nil {
				slog.Warn("failed to index stop", "stop", s.NameCN, "error", err)
				continue
			}

			neighborhood, err := h3.GridDisk(cell, 1)
			if err != nil {
				neighborhood = []h3.Cell{cell}
			}
			idx := -1
			for _, n := range neighborhood {
				if j, ok := cellOf[n]; ok {
					idx = j
					break
				}
			}
			if idx < 0 {
				idx = len(clusters)
				clusters = append(clusters, &stopCluster{routes: make(map[string]bool)})
			}

			cl := clusters[idx]
			cl.points = append(cl.points, geo.Point{Lat: s.Lat, Lon: s.Lng})
			if cl.nameEN == "" {
				cl.nameEN = s.NameEN
			}
			if s.RouteID != "" {
				cl.routes[s.RouteID] = true
			}
			cellOf[cell] = idx
		}

		for _, cl := range clusters {
			center := geo.Centroid(cl.points)
			out = append(out, model.StationRow{
				NameCN:   name,
				NameEN:   cl.nameEN,
				UniqueID: StopID(name, center.Lon, center.Lat),
				Lng:      center.Lon,
				Lat:      center.Lat,
				Routes:   len(cl.routes),
			})
		}
	}
	return out
}
