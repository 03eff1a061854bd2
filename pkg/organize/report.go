package organize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CityReport counts one organized city.
type CityReport struct {
	City  string `json:"city"`
	Files int    `json:"files"`
}

// Report summarizes one organization run.
type Report struct {
	Generated    time.Time    `json:"generated"`
	Cities       []CityReport `json:"cities"`
	FailedCities []string     `json:"failed_cities,omitempty"`
	TotalFiles   int          `json:"total_files"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{Generated: time.Now().UTC()}
}

// Add accumulates one city.
func (r *Report) Add(cr CityReport) {
	r.Cities = append(r.Cities, cr)
	r.TotalFiles += cr.Files
}

// Write stores the report as organize_report.json and .txt.
func (r *Report) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	base := filepath.Join(dir, "organize_report")
	if err := os.WriteFile(base+".json", data, 0o644); err != nil {
		return err
	}
	return os.WriteFile(base+".txt", []byte(r.Text()), 0o644)
}

// Text renders the human-readable summary.
func (r *Report) Text() string {
	var b strings.Builder
	b.WriteString("organization report\n")
	fmt.Fprintf(&b, "generated: %s\n\n", r.Generated.Format(time.RFC3339))

	for _, c := range r.Cities {
		fmt.Fprintf(&b, "%s: %d files\n", c.City, c.Files)
	}
	for _, c := range r.FailedCities {
		fmt.Fprintf(&b, "%s: FAILED\n", c)
	}

	fmt.Fprintf(&b, "\ntotal: %d cities, %d files\n", len(r.Cities), r.TotalFiles)
	return b.String()
}
