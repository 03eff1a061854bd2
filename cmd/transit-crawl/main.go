package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transitatlas/pkg/amap"
	"transitatlas/pkg/cache"
	"transitatlas/pkg/config"
	"transitatlas/pkg/crawler"
	"transitatlas/pkg/db"
	"transitatlas/pkg/lines8684"
	"transitatlas/pkg/logging"
	"transitatlas/pkg/request"
	"transitatlas/pkg/tracker"
	"transitatlas/pkg/translate"
	"transitatlas/pkg/version"
)

var (
	configPath = flag.String("config", "configs/transitatlas.yaml", "Path to config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	mode       = flag.String("mode", "", "Override crawl mode (bus, metro)")
	cityFile   = flag.String("city-file", "", "Override city list CSV")
	noCache    = flag.Bool("no-cache", false, "Bypass the response cache and hit the APIs directly")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Crawl failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *mode != "" {
		cfg.Crawler.Mode = *mode
	}
	if *cityFile != "" {
		cfg.Crawler.CityFile = *cityFile
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("TransitAtlas crawl started", "version", version.Version, "mode", cfg.Crawler.Mode)

	d, err := db.Init(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer d.Close()

	if err := d.PruneCache(30 * 24 * time.Hour); err != nil {
		slog.Warn("cache pruning failed", "error", err)
	}

	track := tracker.New()
	var cacher cache.Cacher = cache.NewSQLiteCache(d)
	if *noCache {
		slog.Info("response cache disabled")
		cacher = cache.NullCache{}
	}
	client := request.New(cacher, track)

	codes, err := amap.LoadCityCodes(cfg.AMap.CityCodeFile)
	if err != nil {
		slog.Warn("city code table unavailable, falling back to raw codes",
			"path", cfg.AMap.CityCodeFile, "error", err)
		codes = nil
	}

	c := crawler.New(
		amap.New(client, cfg.AMap.Key, codes),
		lines8684.New(client),
		translate.New(client, d, cfg.Translator),
		d, track, cfg.Crawler,
	)

	stats, err := c.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Crawled %d routes across %d cities (%d cities failed)\n",
		stats.Routes, stats.Cities, stats.FailedCities)
	return nil
}
