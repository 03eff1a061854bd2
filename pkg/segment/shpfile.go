package segment

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	shp "github.com/jonas-p/go-shp"

	"transitatlas/pkg/model"
)

const (
	widthName = 80
	widthID   = 50
	widthEN   = 150
	widthCity = 30
)

const wgs84WKT = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

func segmentFields() []shp.Field {
	return []shp.Field{
		shp.StringField("S_STOP_CN", widthName),
		shp.StringField("S_STOP_EN", widthEN),
		shp.StringField("S_STOPID", widthID),
		shp.StringField("E_STOP_CN", widthName),
		shp.StringField("E_STOP_EN", widthEN),
		shp.StringField("E_STOPID", widthID),
		shp.FloatField("DISTANCE", 12, 3),
		shp.NumberField("NUM", 6),
		shp.StringField("CITY_CN", widthCity),
		shp.StringField("CITY_EN", widthCity),
	}
}

func uniqueStopFields() []shp.Field {
	return []shp.Field{
		shp.StringField("STOP_CN", widthName),
		shp.StringField("STOP_EN", widthEN),
		shp.StringField("STOP_ID", widthID),
		shp.NumberField("NUM", 6),
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

func writeSegmentShapefile(path string, segments []model.Segment) error {
	w, err := shp.Create(path, shp.POLYLINE)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer w.Close()
	w.SetFields(segmentFields())

	for n := range segments {
		s := &segments[n]
		points := make([]shp.Point, len(s.Geometry))
		for i, p := range s.Geometry {
			points[i] = shp.Point{X: p.Lng, Y: p.Lat}
		}
		w.Write(shp.NewPolyLine([][]shp.Point{points}))

		a := &attrWriter{w: w, row: n}
		a.set(0, truncate(s.StartNameCN, widthName))
		a.set(1, truncate(s.StartNameEN, widthEN))
		a.set(2, truncate(s.StartStopID, widthID))
		a.set(3, truncate(s.EndNameCN, widthName))
		a.set(4, truncate(s.EndNameEN, widthEN))
		a.set(5, truncate(s.EndStopID, widthID))
		a.set(6, s.DistanceKM)
		a.set(7, s.Routes)
		a.set(8, truncate(s.CityCN, widthCity))
		a.set(9, truncate(s.CityEN, widthCity))
		if a.err != nil {
			return fmt.Errorf("failed to write %s: %w", path, a.err)
		}
	}

	return writePrj(path)
}

func writeUniqueStopShapefile(path string, stops []model.UniqueStop) error {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer w.Close()
	w.SetFields(uniqueStopFields())

	for n := range stops {
		s := &stops[n]
		w.Write(&shp.Point{X: s.Lng, Y: s.Lat})

		a := &attrWriter{w: w, row: n}
		a.set(0, truncate(s.NameCN, widthName))
		a.set(1, truncate(s.NameEN, widthEN))
		a.set(2, truncate(s.ID, widthID))
		a.set(3, s.Routes)
		a.set(4, truncate(s.CityCN, widthCity))
		a.set(5, truncate(s.CityEN, widthCity))
		if a.err != nil {
			return fmt.Errorf("failed to write %s: %w", path, a.err)
		}
	}

	return writePrj(path)
}

// writeSegmentInfo renders the human-readable per-city listing.
func writeSegmentInfo(path, city string, segments []model.Segment) error {
	var b strings.Builder
	fmt.Fprintf(&b, "segments for %s\n\n", city)
	for _, s := range segments {
		fmt.Fprintf(&b, "%s -> %s: %.3f km (%d routes)\n",
			s.StartNameCN, s.EndNameCN, s.DistanceKM, s.Routes)
	}
	fmt.Fprintf(&b, "\ntotal: %d segments\n", len(segments))
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func writePrj(shpPath string) error {
	path := strings.TrimSuffix(shpPath, ".shp") + ".prj"
	return os.WriteFile(path, []byte(wgs84WKT), 0o644)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
