package dataset

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	shp "github.com/jonas-p/go-shp"

	"transitatlas/pkg/model"
)

// DBF string widths. Attribute values are truncated to fit.
const (
	widthName = 80
	widthID   = 50
	widthEN   = 150
	widthCity = 30
	widthOps  = 10
)

// wgs84WKT is written as the .prj sidecar so GIS tools pick up the CRS.
const wgs84WKT = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

func routeFields() []shp.Field {
	return []shp.Field{
		shp.StringField("NAME_CN", widthName),
		shp.StringField("NAME_EN", widthEN),
		shp.StringField("ROUTE_ID", widthID),
		shp.StringField("TYPE", widthCity),
		shp.StringField("CITY_CN", widthCity),
		shp.StringField("CITY_EN", widthCity),
		shp.FloatField("DISTANCE", 12, 3),
		shp.StringField("START_T", widthOps),
		shp.StringField("END_T", widthOps),
		shp.StringField("LOOP", widthOps),
		shp.StringField("STATUS", widthOps),
	}
}

func stopFields() []shp.Field {
	return []shp.Field{
		shp.StringField("NAME_CN", widthName),
		shp.StringField("NAME_EN", widthEN),
		shp.StringField("STOP_ID", widthID),
		shp.StringField("UNIQUE_ID", widthID),
		shp.NumberField("SEQUENCE", 6),
		shp.StringField("ROUTE_CN", widthName),
		shp.StringField("ROUTE_EN", widthEN),
		shp.StringField("ROUTE_ID", widthID),
		shp.StringField("CITY_CN", widthCity),
		shp.StringField("CITY_EN", widthCity),
	}
}

// attrWriter latches the first DBF write failure so a bad attribute
// table surfaces as an error instead of a silently truncated file.
type attrWriter struct {
	w   *shp.Writer
	row int
	err error
}

func (a *attrWriter) set(col int, val interface{}) {
	if a.err != nil {
		return
	}
	if err := a.w.WriteAttribute(a.row, col, val); err != nil {
		a.err = fmt.Errorf("failed to write attribute %d of record %d: %w", col, a.row, err)
	}
}

func writeRouteShapefile(path string, routes []model.Route) error {
	w, err := shp.Create(path, shp.POLYLINE)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer w.Close()
	w.SetFields(routeFields())

	for n := range routes {
		r := &routes[n]
		points := make([]shp.Point, len(r.Geometry))
		for i, p := range r.Geometry {
			points[i] = shp.Point{X: p.Lng, Y: p.Lat}
		}
		w.Write(shp.NewPolyLine([][]shp.Point{points}))

		a := &attrWriter{w: w, row: n}
		a.set(0, truncate(r.NameCN, widthName))
		a.set(1, truncate(r.NameEN, widthEN))
		a.set(2, truncate(r.ID, widthID))
		a.set(3, truncate(r.Type, widthCity))
		a.set(4, truncate(r.CityCN, widthCity))
		a.set(5, truncate(r.CityEN, widthCity))
		a.set(6, r.DistanceKM)
		a.set(7, truncate(r.StartTime, widthOps))
		a.set(8, truncate(r.EndTime, widthOps))
		a.set(9, truncate(r.Loop, widthOps))
		a.set(10, truncate(r.Status, widthOps))
		if a.err != nil {
			return fmt.Errorf("failed to write %s: %w", path, a.err)
		}
	}

	return writePrj(path)
}

func writeStopShapefile(path string, stops []model.Stop) error {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer w.Close()
	w.SetFields(stopFields())

	for n := range stops {
		s := &stops[n]
		w.Write(&shp.Point{X: s.Lng, Y: s.Lat})

		a := &attrWriter{w: w, row: n}
		a.set(0, truncate(s.NameCN, widthName))
		a.set(1, truncate(s.NameEN, widthEN))
		a.set(2, truncate(s.ID, widthID))
		a.set(3, truncate(s.UniqueID, widthID))
		a.set(4, s.Sequence)
		a.set(5, truncate(s.RouteCN, widthName))
		a.set(6, truncate(s.RouteEN, widthEN))
		a.set(7, truncate(s.RouteID, widthID))
		a.set(8, truncate(s.CityCN, widthCity))
		a.set(9, truncate(s.CityEN, widthCity))
		if a.err != nil {
			return fmt.Errorf("failed to write %s: %w", path, a.err)
		}
	}

	return writePrj(path)
}

func writePrj(shpPath string) error {
	path := strings.TrimSuffix(shpPath, ".shp") + ".prj"
	return os.WriteFile(path, []byte(wgs84WKT), 0o644)
}

// truncate cuts a string to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
