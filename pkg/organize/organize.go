// Package organize arranges the generated shapefiles into one folder
// per city. Output from the conversion and segmentation stages is
// merged, city names matched case-insensitively, and each city folder
// gets an index file with its geographic bounds.
package organize

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	shp "github.com/jonas-p/go-shp"

	"transitatlas/pkg/config"
	"transitatlas/pkg/pinyin"
)

// Organizer merges product trees into the per-city layout.
type Organizer struct {
	cfg config.OrganizeConfig
}

// New creates an Organizer.
func New(cfg config.OrganizeConfig) *Organizer {
	return &Organizer{cfg: cfg}
}

// cityFiles collects everything found for one city across input trees.
type cityFiles struct {
	display string // canonical folder name
	files   []sourceFile
	bounds  bounds
}

type sourceFile struct {
	path    string // absolute source path
	mode    string // subtree the file came from, e.g. "bus"
	name    string
	records int // shapefile record count, 0 for sidecar files
}

type bounds struct {
	minLng, minLat float64
	maxLng, maxLat float64
	valid          bool
}

func (b *bounds) extend(minX, minY, maxX, maxY float64) {
	if !b.valid {
		b.minLng, b.minLat, b.maxLng, b.maxLat = minX, minY, maxX, maxY
		b.valid = true
		return
	}
	b.minLng = math.Min(b.minLng, minX)
	b.minLat = math.Min(b.minLat, minY)
	b.maxLng = math.Max(b.maxLng, maxX)
	b.maxLat = math.Max(b.maxLat, maxY)
}

// Run scans the input trees, which are laid out as <mode>/<City>/files,
// and copies everything into <output>/<City>/<mode>/.
func (o *Organizer) Run() (*Report, error) {
	cities := make(map[string]*cityFiles)

	for _, root := range o.cfg.InputDirs {
		if err := o.scanTree(root, cities); err != nil {
			return nil, err
		}
	}
	if len(cities) == 0 {
		return nil, fmt.Errorf("no city data found under %v", o.cfg.InputDirs)
	}

	report := NewReport()
	keys := make([]string, 0, len(cities))
	for k := range cities {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		c := cities[key]
		n, err := o.writeCity(c)
		if err != nil {
			slog.Error("failed to organize city", "city", c.display, "error", err)
			report.FailedCities = append(report.FailedCities, c.display)
			continue
		}
		report.Add(CityReport{City: c.display, Files: n})
	}

	if err := report.Write(o.cfg.OutputDir); err != nil {
		return nil, err
	}
	slog.Info("organization finished", "cities", len(report.Cities), "files", report.TotalFiles)
	return report, nil
}

func (o *Organizer) scanTree(root string, cities map[string]*cityFiles) error {
	modes, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		slog.Warn("input tree missing", "dir", root)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", root, err)
	}

	for _, mode := range modes {
		if !mode.IsDir() {
			continue
		}
		modeDir := filepath.Join(root, mode.Name())
		cityDirs, err := os.ReadDir(modeDir)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", modeDir, err)
		}

		for _, cityDir := range cityDirs {
			if !cityDir.IsDir() {
				continue
			}
			display := NormalizeCity(cityDir.Name())
			key := strings.ToLower(display)

			c, ok := cities[key]
			if !ok {
				c = &cityFiles{display: display}
				cities[key] = c
			}

			srcDir := filepath.Join(modeDir, cityDir.Name())
			files, err := os.ReadDir(srcDir)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", srcDir, err)
			}
			for _, f := range files {
				if f.IsDir() {
					continue
				}
				path := filepath.Join(srcDir, f.Name())
				sf := sourceFile{path: path, mode: mode.Name(), name: f.Name()}
				if strings.HasSuffix(f.Name(), ".shp") {
					sf.records = extendFromShapefile(&c.bounds, path)
				}
				c.files = append(c.files, sf)
			}
		}
	}
	return nil
}

// extendFromShapefile widens b by the shapefile's bounding box and
// returns its record count.
func extendFromShapefile(b *bounds, path string) int {
	r, err := shp.Open(path)
	if err != nil {
		slog.Warn("failed to read shapefile bounds", "path", path, "error", err)
		return 0
	}
	defer r.Close()

	box := r.BBox()
	b.extend(box.MinX, box.MinY, box.MaxX, box.MaxY)

	records := 0
	for r.Next() {
		records++
	}
	return records
}

func (o *Organizer) writeCity(c *cityFiles) (int, error) {
	cityDir := filepath.Join(o.cfg.OutputDir, pinyin.SanitizeFolder(c.display))

	copied := 0
	for _, f := range c.files {
		dstDir := filepath.Join(cityDir, f.mode)
		if err := os.MkdirAll(dstDir, 0o755); err != nil {
			return copied, err
		}
		if err := copyFile(f.path, filepath.Join(dstDir, f.name)); err != nil {
			return copied, fmt.Errorf("failed to copy %s: %w", f.name, err)
		}
		copied++
	}

	if err := writeCityInfo(filepath.Join(cityDir, "city_info.txt"), c); err != nil {
		return copied, err
	}
	return copied, nil
}

func writeCityInfo(path string, c *cityFiles) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", c.display)
	if c.bounds.valid {
		fmt.Fprintf(&b, "bounds:\n")
		fmt.Fprintf(&b, "  longitude: %.6f .. %.6f\n", c.bounds.minLng, c.bounds.maxLng)
		fmt.Fprintf(&b, "  latitude:  %.6f .. %.6f\n", c.bounds.minLat, c.bounds.maxLat)
		b.WriteString("\n")
	}

	b.WriteString("files:\n")
	for _, f := range c.files {
		if f.records > 0 {
			fmt.Fprintf(&b, "  %s/%s (%d records)\n", f.mode, f.name, f.records)
		} else {
			fmt.Fprintf(&b, "  %s/%s\n", f.mode, f.name)
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// NormalizeCity canonicalizes a city folder name: the first letter
// upper-cased, separators removed. "bei jing", "Bei_Jing" and "BeiJing"
// all map to "BeiJing".
func NormalizeCity(name string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range name {
		if r == ' ' || r == '_' || r == '-' {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
