// transit-geojson exports generated shapefiles as GeoJSON for quick
// inspection in web tools. It accepts a single .shp file or a directory
// tree, e.g. the per-city output of transit-organize.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func main() {
	input := flag.String("input", "", "Path to a .shp file or a directory of shapefiles")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		log.Fatal("Input path is required")
	}

	n, err := run(*input)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Converted %d shapefile(s)\n", n)
}

func run(input string) (int, error) {
	info, err := os.Stat(input)
	if err != nil {
		return 0, err
	}

	if !info.IsDir() {
		return 1, convert(input)
	}

	count := 0
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".shp") {
			return nil
		}
		if err := convert(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		count++
		return nil
	})
	return count, err
}

// convert writes the .geojson next to the shapefile.
func convert(shpPath string) error {
	shape, err := shp.Open(shpPath)
	if err != nil {
		return fmt.Errorf("failed to open shapefile: %w", err)
	}
	defer shape.Close()

	fields := shape.Fields()
	fieldNames := make([]string, len(fields))
	for i, f := range fields {
		fieldNames[i] = f.String()
	}

	fc := geojson.NewFeatureCollection()
	for shape.Next() {
		n, p := shape.Shape()

		var geometry orb.Geometry
		switch s := p.(type) {
		case *shp.Null:
			continue
		case *shp.PolyLine:
			geometry = polylineGeometry(s)
		case *shp.Point:
			geometry = orb.Point{s.X, s.Y}
		default:
			log.Printf("Skipping unsupported shape type: %T", p)
			continue
		}

		f := geojson.NewFeature(geometry)
		for i, name := range fieldNames {
			f.Properties[name] = shape.ReadAttribute(n, i)
		}
		fc.Append(f)
	}
	if err := shape.Err(); err != nil {
		return fmt.Errorf("error iterating shapes: %w", err)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("failed to marshal GeoJSON: %w", err)
	}
	out := strings.TrimSuffix(shpPath, ".shp") + ".geojson"
	return os.WriteFile(out, data, 0o644)
}

func polylineGeometry(s *shp.PolyLine) orb.Geometry {
	var multiline orb.MultiLineString
	for i := 0; i < int(s.NumParts); i++ {
		start := s.Parts[i]
		end := s.NumPoints
		if i < int(s.NumParts)-1 {
			end = s.Parts[i+1]
		}

		var line orb.LineString
		for j := start; j < end; j++ {
			line = append(line, orb.Point{s.Points[j].X, s.Points[j].Y})
		}
		multiline = append(multiline, line)
	}
	if len(multiline) == 1 {
		return multiline[0]
	}
	return multiline
}
