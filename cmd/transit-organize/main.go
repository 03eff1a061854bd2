package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"transitatlas/pkg/config"
	"transitatlas/pkg/logging"
	"transitatlas/pkg/organize"
	"transitatlas/pkg/version"
)

var configPath = flag.String("config", "configs/transitatlas.yaml", "Path to config file")

func main() {
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Organization failed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("TransitAtlas organization started", "version", version.Version)

	report, err := organize.New(cfg.Organize).Run()
	if err != nil {
		return err
	}
	fmt.Printf("Organized %d files into %d city folders\n",
		report.TotalFiles, len(report.Cities))
	return nil
}
