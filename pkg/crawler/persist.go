package crawler

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"

	"transitatlas/pkg/model"
	"transitatlas/pkg/pinyin"
)

// Writer persists one crawl mode under the output root:
//
//	<mode>_routes/<CityEN>/<CityEN>_<RouteEN>_route.csv   polyline vertices
//	<mode>_stops/<CityEN>/<CityEN>_<RouteEN>_stops.csv    per-route stops
//	enhanced/<CityEN>/<CityEN>_<mode>_enhanced.csv        route metadata
//	enhanced/<CityEN>/<CityEN>_stations_enhanced.csv      merged stations
type Writer struct {
	root string
	mode string
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir, mode string) *Writer {
	return &Writer{root: dir, mode: mode}
}

type vertexRow struct {
	NameCN   string  `csv:"name_cn"`
	NameEN   string  `csv:"name_en"`
	Lng      float64 `csv:"longitude"`
	Lat      float64 `csv:"latitude"`
	Sequence int     `csv:"sequence"`
	RouteID  string  `csv:"route_id"`
}

// WriteCity writes all files for one city. The routes must already
// carry their English names.
func (w *Writer) WriteCity(routes []model.Route, stations []model.StationRow) error {
	if len(routes) == 0 {
		return nil
	}
	cityDir := folderName(routes[0].CityEN)

	for i := range routes {
		if err := w.writeRoute(cityDir, &routes[i]); err != nil {
			return err
		}
	}
	if err := w.writeEnhanced(cityDir, routes); err != nil {
		return err
	}
	if err := w.writeStations(cityDir, stations); err != nil {
		return err
	}

	slog.Info("city written", "city", cityDir, "routes", len(routes), "stations", len(stations))
	return nil
}

func (w *Writer) writeRoute(cityDir string, r *model.Route) error {
	base := cityDir + "_" + fileComponent(r.DisplayName())

	vertices := make([]vertexRow, len(r.Geometry))
	for i, p := range r.Geometry {
		vertices[i] = vertexRow{
			NameCN:   r.NameCN,
			NameEN:   r.NameEN,
			Lng:      p.Lng,
			Lat:      p.Lat,
			Sequence: i + 1,
			RouteID:  r.ID,
		}
	}
	path := filepath.Join(w.root, w.mode+"_routes", cityDir, base+"_route.csv")
	if err := writeCSV(path, vertices); err != nil {
		return fmt.Errorf("failed to write geometry for %s: %w", r.DisplayName(), err)
	}

	path = filepath.Join(w.root, w.mode+"_stops", cityDir, base+"_stops.csv")
	if err := writeCSV(path, r.Stops); err != nil {
		return fmt.Errorf("failed to write stops for %s: %w", r.DisplayName(), err)
	}
	return nil
}

func (w *Writer) writeEnhanced(cityDir string, routes []model.Route) error {
	rows := make([]model.RouteRow, 0, len(routes))
	for i := range routes {
		row, err := model.NewRouteRow(routes[i])
		if err != nil {
			slog.Warn("skipping route in enhanced file", "route", routes[i].DisplayName(), "error", err)
			continue
		}
		rows = append(rows, row)
	}

	path := filepath.Join(w.root, "enhanced", cityDir, cityDir+"_"+w.mode+"_enhanced.csv")
	if err := writeCSV(path, rows); err != nil {
		return fmt.Errorf("failed to write enhanced routes for %s: %w", cityDir, err)
	}
	return nil
}

func (w *Writer) writeStations(cityDir string, stations []model.StationRow) error {
	if len(stations) == 0 {
		return nil
	}
	path := filepath.Join(w.root, "enhanced", cityDir, cityDir+"_stations_enhanced.csv")
	if err := writeCSV(path, stations); err != nil {
		return fmt.Errorf("failed to write stations for %s: %w", cityDir, err)
	}
	return nil
}

func writeCSV(path string, rows any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadCities reads the configured city list CSV (site slug + Chinese name).
func LoadCities(path string) ([]model.City, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read city list: %w", err)
	}

	var cities []model.City
	if err := csvutil.Unmarshal(data, &cities); err != nil {
		return nil, fmt.Errorf("failed to parse city list: %w", err)
	}

	out := cities[:0]
	for _, c := range cities {
		c.Slug = strings.TrimSpace(c.Slug)
		c.NameCN = strings.TrimSpace(c.NameCN)
		if c.NameCN == "" {
			continue
		}
		if c.Slug == "" {
			c.Slug = pinyin.CitySlug(c.NameCN)
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("city list %s has no usable entries", path)
	}
	return out, nil
}

// folderName compacts an English city name for the directory layout:
// "Bei Jing" becomes "BeiJing".
func folderName(cityEN string) string {
	name := strings.ReplaceAll(pinyin.SanitizeFolder(cityEN), " ", "")
	if name == "" {
		return "UnknownCity"
	}
	return name
}

// fileComponent makes a name safe for use inside a file name.
func fileComponent(name string) string {
	return strings.ReplaceAll(pinyin.SanitizeFolder(name), " ", "")
}
