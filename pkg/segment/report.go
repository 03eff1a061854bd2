package segment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CityReport counts one city's segmentation results.
type CityReport struct {
	City          string `json:"city"`
	Routes        int    `json:"routes"`
	RoutesSkipped int    `json:"routes_skipped"`
	Segments      int    `json:"segments"`
	UniqueStops   int    `json:"unique_stops"`
}

// Report summarizes one segmentation run.
type Report struct {
	Mode          string       `json:"mode"`
	Generated     time.Time    `json:"generated"`
	Cities        []CityReport `json:"cities"`
	FailedCities  []string     `json:"failed_cities,omitempty"`
	TotalSegments int          `json:"total_segments"`
	TotalStops    int          `json:"total_stops"`
}

// NewReport creates an empty report for a mode.
func NewReport(mode string) *Report {
	return &Report{Mode: mode, Generated: time.Now().UTC()}
}

// Add accumulates one city's counts.
func (r *Report) Add(cr CityReport) {
	r.Cities = append(r.Cities, cr)
	r.TotalSegments += cr.Segments
	r.TotalStops += cr.UniqueStops
}

// Write stores the report as <mode>_segments_report.json and .txt.
func (r *Report) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	base := filepath.Join(dir, r.Mode+"_segments_report")
	if err := os.WriteFile(base+".json", data, 0o644); err != nil {
		return err
	}
	return os.WriteFile(base+".txt", []byte(r.Text()), 0o644)
}

// Text renders the human-readable summary.
func (r *Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s segmentation report\n", r.Mode)
	fmt.Fprintf(&b, "generated: %s\n\n", r.Generated.Format(time.RFC3339))

	for _, c := range r.Cities {
		fmt.Fprintf(&b, "%s: %d routes -> %d segments, %d unique stops",
			c.City, c.Routes, c.Segments, c.UniqueStops)
		if c.RoutesSkipped > 0 {
			fmt.Fprintf(&b, " (%d routes skipped)", c.RoutesSkipped)
		}
		b.WriteString("\n")
	}
	for _, c := range r.FailedCities {
		fmt.Fprintf(&b, "%s: FAILED\n", c)
	}

	fmt.Fprintf(&b, "\ntotal: %d cities, %d segments, %d unique stops\n",
		len(r.Cities), r.TotalSegments, r.TotalStops)
	return b.String()
}
