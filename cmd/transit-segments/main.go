package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"transitatlas/pkg/config"
	"transitatlas/pkg/logging"
	"transitatlas/pkg/model"
	"transitatlas/pkg/segment"
	"transitatlas/pkg/version"
)

var (
	configPath = flag.String("config", "configs/transitatlas.yaml", "Path to config file")
	mode       = flag.String("mode", "", "Transit mode to segment (bus, metro); defaults to the crawler mode")
)

func main() {
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Segmentation failed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	m := model.TransitMode(cfg.Crawler.Mode)
	if *mode != "" {
		m = model.TransitMode(*mode)
	}
	if m != model.ModeBus && m != model.ModeMetro {
		return fmt.Errorf("unknown mode %q", m)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("TransitAtlas segmentation started", "version", version.Version, "mode", m)

	report, err := segment.New(cfg.Segment, m).Run()
	if err != nil {
		return err
	}
	fmt.Printf("Built %d segments and %d unique stops across %d cities\n",
		report.TotalSegments, report.TotalStops, len(report.Cities))
	return nil
}
