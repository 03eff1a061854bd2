// transit-geocode resolves a Chinese address through the AMap or Baidu
// geocoder and prints the position in all three datums. Handy for spot
// checking collected coordinates against a known address.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"transitatlas/pkg/amap"
	"transitatlas/pkg/baidu"
	"transitatlas/pkg/cache"
	"transitatlas/pkg/config"
	"transitatlas/pkg/coord"
	"transitatlas/pkg/db"
	"transitatlas/pkg/request"
	"transitatlas/pkg/tracker"
)

var (
	configPath = flag.String("config", "configs/transitatlas.yaml", "Path to config file")
	address    = flag.String("address", "", "Address to resolve (required)")
	city       = flag.String("city", "", "City to narrow the search")
	provider   = flag.String("provider", "amap", "Geocoder to use (amap, baidu)")
)

func main() {
	flag.Parse()

	if *address == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Geocoding failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	d, err := db.Init(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer d.Close()

	client := request.New(cache.NewSQLiteCache(d), tracker.New())

	// Both geocoders answer in GCJ02.
	var gLng, gLat float64
	switch *provider {
	case "amap":
		gLng, gLat, err = amap.New(client, cfg.AMap.Key, nil).Geocode(ctx, *address, *city)
	case "baidu":
		gLng, gLat, err = baidu.New(client, cfg.Baidu.Key).Geocode(ctx, *address, *city)
	default:
		return fmt.Errorf("unknown provider %q", *provider)
	}
	if err != nil {
		return err
	}

	wLng, wLat := coord.GCJ02ToWGS84(gLng, gLat)
	bLng, bLat := coord.GCJ02ToBD09(gLng, gLat)

	fmt.Printf("%s\n", *address)
	fmt.Printf("  GCJ02: %.6f, %.6f\n", gLng, gLat)
	fmt.Printf("  WGS84: %.6f, %.6f\n", wLng, wLat)
	fmt.Printf("  BD09:  %.6f, %.6f\n", bLng, bLat)
	return nil
}
