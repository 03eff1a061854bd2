package segment

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"transitatlas/pkg/config"
	"transitatlas/pkg/dataset"
	"transitatlas/pkg/model"
)

// Segmenter processes every city of one crawl mode.
type Segmenter struct {
	cfg  config.SegmentConfig
	mode model.TransitMode
}

// New creates a Segmenter reading the crawler's enhanced CSV tree.
func New(cfg config.SegmentConfig, mode model.TransitMode) *Segmenter {
	return &Segmenter{cfg: cfg, mode: mode}
}

// Run segments every city found under the input directory and writes
// the per-city shapefiles, info files and the run report.
func (s *Segmenter) Run() (*Report, error) {
	enhancedDir := filepath.Join(s.cfg.InputDir, "enhanced")
	entries, err := os.ReadDir(enhancedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", enhancedDir, err)
	}

	report := NewReport(string(s.mode))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		city := entry.Name()

		cr, err := s.segmentCity(enhancedDir, city)
		if err != nil {
			slog.Error("city segmentation failed", "city", city, "error", err)
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
	if err := report.Write(s.cfg.OutputDir); err != nil {
		return nil, err
	}
	slog.Info("segmentation finished", "mode", s.mode,
		"cities", len(report.Cities), "segments", report.TotalSegments, "stops", report.TotalStops)
	return report, nil
}

func (s *Segmenter) segmentCity(enhancedDir, city string) (*CityReport, error) {
	path := filepath.Join(enhancedDir, city, fmt.Sprintf("%s_%s_enhanced.csv", city, s.mode))
	routes, err := dataset.ReadEnhanced(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var all []model.Segment
	skipped := 0
	for i := range routes {
		segs := RouteSegments(&routes[i])
		if segs == nil {
			skipped++
			continue
		}
		all = append(all, segs...)
	}
	if len(all) == 0 {
		return nil, nil
	}

	aggregated := Aggregate(all)
	stops := UniqueStops(routes)

	outDir := filepath.Join(s.cfg.OutputDir, string(s.mode), city)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	if err := writeSegmentShapefile(filepath.Join(outDir, city+"_segments.shp"), aggregated); err != nil {
		return nil, err
	}
	if err := writeUniqueStopShapefile(filepath.Join(outDir, city+"_stations.shp"), stops); err != nil {
		return nil, err
	}
	if err := writeSegmentInfo(filepath.Join(outDir, "segment_info.txt"), city, aggregated); err != nil {
		return nil, err
	}

	return &CityReport{
		City:          city,
		Routes:        len(routes),
		RoutesSkipped: skipped,
		Segments:      len(aggregated),
		UniqueStops:   len(stops),
	}, nil
}
