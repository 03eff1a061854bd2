// Package dataset converts the crawler's CSV output into per-city
// shapefiles: one polyline layer for routes, one point layer for stops.
// Coordinates are validated, Taiwan positions corrected and duplicate
// records dropped along the way.
package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/jszwec/csvutil"
	"github.com/paulmach/orb"

	"transitatlas/pkg/amap"
	"transitatlas/pkg/config"
	"transitatlas/pkg/coord"
	"transitatlas/pkg/geo"
	"transitatlas/pkg/model"
)

// Converter turns one crawl mode's CSV tree into shapefiles.
type Converter struct {
	cfg    config.DatasetConfig
	mode   model.TransitMode
	bounds coord.Bounds
}

// New creates a Converter. Bus data is mainland-only and validated
// against the China rectangle; metro data may include Hong Kong and
// Taiwan systems and only gets the world sanity check.
func New(cfg config.DatasetConfig, mode model.TransitMode) *Converter {
	bounds := coord.ChinaBounds
	if mode == model.ModeMetro {
		bounds = coord.WorldBounds
	}
	return &Converter{cfg: cfg, mode: mode, bounds: bounds}
}

// Run converts every city found under the input directory.
func (c *Converter) Run() (*Report, error) {
	enhancedDir := filepath.Join(c.cfg.InputDir, "enhanced")
	entries, err := os.ReadDir(enhancedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", enhancedDir, err)
	}

	report := NewReport(string(c.mode))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		city := entry.Name()

		cr, err := c.convertCity(enhancedDir, city)
		if err != nil {
			slog.Error("city conversion failed", "city", city, "error", err)
			report.FailedCities = append(report.FailedCities, city)
			continue
		}
		if cr != nil {
			report.Add(*cr)
		}
	}

	sort.Slice(report.Cities, func(i, j int) bool {
		return report.Cities[i].City < report.Cities[j].City
	})
	if err := report.Write(c.cfg.OutputDir); err != nil {
		return nil, err
	}
	slog.Info("conversion finished", "mode", c.mode,
		"cities", len(report.Cities), "routes", report.TotalRoutes, "stops", report.TotalStops)
	return report, nil
}

// convertCity converts one city directory. A nil report means the city
// has no data for this mode.
func (c *Converter) convertCity(enhancedDir, city string) (*CityReport, error) {
	path := filepath.Join(enhancedDir, city, fmt.Sprintf("%s_%s_enhanced.csv", city, c.mode))
	routes, err := ReadEnhanced(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cr := &CityReport{City: city}
	var keep []model.Route
	var stops []model.Stop
	seenRoutes := make(map[string]bool)
	seenStops := make(map[string]bool)

	for i := range routes {
		r := &routes[i]

		if isMetro := amap.IsMetroType(r.Type); isMetro != (c.mode == model.ModeMetro) {
			cr.RoutesSkipped++
			continue
		}
		key := r.NameCN + "|" + r.CityCN
		if seenRoutes[key] {
			cr.RouteDupes++
			continue
		}
		seenRoutes[key] = true

		geom := c.validGeometry(r)
		if len(geom) < 2 {
			slog.Warn("route geometry unusable", "city", city, "route", r.DisplayName())
			cr.RoutesSkipped++
			continue
		}
		r.Geometry = geom
		if r.DistanceKM == 0 {
			ls := make(orb.LineString, len(geom))
			for j, p := range geom {
				ls[j] = orb.Point{p.Lng, p.Lat}
			}
			r.DistanceKM = geo.RoundKM(geo.LengthM(ls))
		}
		keep = append(keep, *r)
		cr.RoutesWritten++

		for _, s := range r.Stops {
			skey := fmt.Sprintf("%s|%s|%s|%d|%s", s.NameCN, s.ID, s.RouteCN, s.Sequence, s.CityCN)
			if seenStops[skey] {
				cr.StopDupes++
				continue
			}
			seenStops[skey] = true

			lng, lat := coord.FixTaiwan(s.Lng, s.Lat, r.CityCN)
			lng, lat, ok := coord.Validate(lng, lat, c.bounds)
			if !ok {
				cr.StopsSkipped++
				continue
			}
			s.Lng, s.Lat = lng, lat
			stops = append(stops, s)
			cr.StopsWritten++
		}
	}

	if len(keep) == 0 {
		return nil, nil
	}

	outDir := filepath.Join(c.cfg.OutputDir, string(c.mode), city)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	if err := writeRouteShapefile(filepath.Join(outDir, city+"_routes.shp"), keep); err != nil {
		return nil, err
	}
	if len(stops) > 0 {
		if err := writeStopShapefile(filepath.Join(outDir, city+"_stops.shp"), stops); err != nil {
			return nil, err
		}
	}
	return cr, nil
}

// validGeometry applies the Taiwan correction and drops vertices outside
// the validation bounds.
func (c *Converter) validGeometry(r *model.Route) []model.Coordinate {
	out := make([]model.Coordinate, 0, len(r.Geometry))
	for _, p := range r.Geometry {
		lng, lat := coord.FixTaiwan(p.Lng, p.Lat, r.CityCN)
		lng, lat, ok := coord.Validate(lng, lat, c.bounds)
		if !ok {
			continue
		}
		out = append(out, model.Coordinate{Lng: lng, Lat: lat})
	}
	return out
}

// ReadEnhanced loads one city's enhanced route CSV, decoding the
// geometry and stops JSON columns.
func ReadEnhanced(path string) ([]model.Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rows []model.RouteRow
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	routes := make([]model.Route, 0, len(rows))
	for i := range rows {
		r, err := rows[i].ToRoute()
		if err != nil {
			slog.Warn("skipping undecodable route", "path", path, "error", err)
			continue
		}
		routes = append(routes, r)
	}
	return routes, nil
}
