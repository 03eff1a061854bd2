package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CityReport counts what happened to one city's records.
type CityReport struct {
	City          string `json:"city"`
	RoutesWritten int    `json:"routes_written"`
	RoutesSkipped int    `json:"routes_skipped"`
	RouteDupes    int    `json:"route_duplicates"`
	StopsWritten  int    `json:"stops_written"`
	StopsSkipped  int    `json:"stops_skipped"`
	StopDupes     int    `json:"stop_duplicates"`
}

// Report summarizes one conversion run. It is written as JSON for
// machines and as a plain text summary next to it.
type Report struct {
	Mode         string       `json:"mode"`
	Generated    time.Time    `json:"generated"`
	Cities       []CityReport `json:"cities"`
	FailedCities []string     `json:"failed_cities,omitempty"`
	TotalRoutes  int          `json:"total_routes"`
	TotalStops   int          `json:"total_stops"`
}

// NewReport creates an empty report for a mode.
func NewReport(mode string) *Report {
	return &Report{Mode: mode, Generated: time.Now().UTC()}
}

// Add accumulates one city's counts.
func (r *Report) Add(cr CityReport) {
	r.Cities = append(r.Cities, cr)
	r.TotalRoutes += cr.RoutesWritten
	r.TotalStops += cr.StopsWritten
}

// Write stores the report as <mode>_report.json and <mode>_report.txt.
func (r *Report) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, r.Mode+"_report.json"), data, 0o644); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, r.Mode+"_report.txt"), []byte(r.Text()), 0o644)
}

// Text renders the human-readable summary.
func (r *Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s conversion report\n", r.Mode)
	fmt.Fprintf(&b, "generated: %s\n\n", r.Generated.Format(time.RFC3339))

	for _, c := range r.Cities {
		fmt.Fprintf(&b, "%s: %d routes, %d stops", c.City, c.RoutesWritten, c.StopsWritten)
		if skipped := c.RoutesSkipped + c.StopsSkipped; skipped > 0 {
			fmt.Fprintf(&b, " (%d skipped)", skipped)
		}
		if dupes := c.RouteDupes + c.StopDupes; dupes > 0 {
			fmt.Fprintf(&b, " (%d duplicates)", dupes)
		}
		b.WriteString("\n")
	}
	for _, c := range r.FailedCities {
		fmt.Fprintf(&b, "%s: FAILED\n", c)
	}

	fmt.Fprintf(&b, "\ntotal: %d cities, %d routes, %d stops\n",
		len(r.Cities), r.TotalRoutes, r.TotalStops)
	return b.String()
}
