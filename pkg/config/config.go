package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Request    RequestConfig    `yaml:"request"`
	Log        LogConfig        `yaml:"log"`
	DB         DBConfig         `yaml:"db"`
	AMap       AMapConfig       `yaml:"amap"`
	Baidu      BaiduConfig      `yaml:"baidu"`
	Translator TranslatorConfig `yaml:"translator"`
	Crawler    CrawlerConfig    `yaml:"crawler"`
	Dataset    DatasetConfig    `yaml:"dataset"`
	Segment    SegmentConfig    `yaml:"segment"`
	Organize   OrganizeConfig   `yaml:"organize"`
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// AMapConfig holds settings for the AMap web service API.
type AMapConfig struct {
	Key string `yaml:"key"` // API Key
	// CityCodeFile is the published adcode/citycode table.
	CityCodeFile string `yaml:"city_code_file"`
}

// BaiduConfig holds settings for the Baidu Maps geocoding API.
type BaiduConfig struct {
	Key string `yaml:"key"` // AK
}

// TranslatorConfig holds settings for the Azure Translator service.
type TranslatorConfig struct {
	Key      string `yaml:"key"`
	Region   string `yaml:"region"`   // e.g. "eastasia"
	Endpoint string `yaml:"endpoint"` // override for sovereign clouds
	// BatchSize caps the number of strings per translate request.
	BatchSize int `yaml:"batch_size"`
}

// CrawlerConfig holds settings for route collection.
type CrawlerConfig struct {
	Mode        string   `yaml:"mode"` // "bus", "metro"
	CityFile    string   `yaml:"city_file"`
	OutputDir   string   `yaml:"output_dir"`
	Incremental bool     `yaml:"incremental"`
	Pause       Duration `yaml:"pause"`
	// MergeRadius groups nearby same-named stops for centroid merging.
	MergeRadius Distance `yaml:"merge_radius"`
}

// DatasetConfig holds settings for CSV to shapefile conversion.
type DatasetConfig struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
}

// SegmentConfig holds settings for stop-to-stop segmentation.
type SegmentConfig struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
}

// OrganizeConfig holds settings for the per-city output layout.
type OrganizeConfig struct {
	// InputDirs are merged; typically the shapefile and segment trees.
	InputDirs []string `yaml:"input_dirs"`
	OutputDir string   `yaml:"output_dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Main     LogSettings `yaml:"main"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Request: RequestConfig{
			Retries: 5,
			Timeout: Duration(60 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(1 * time.Second),
				MaxDelay:  Duration(60 * time.Second),
			},
		},
		Log: LogConfig{
			Main: LogSettings{
				Path:  "./logs/transitatlas.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/transitatlas.db",
		},
		AMap: AMapConfig{
			CityCodeFile: "./data/citycode.csv",
		},
		Translator: TranslatorConfig{
			Region:    "eastasia",
			Endpoint:  "https://api.cognitive.microsofttranslator.com",
			BatchSize: 100,
		},
		Crawler: CrawlerConfig{
			Mode:        "bus",
			CityFile:    "./data/citys.csv",
			OutputDir:   "./data/raw",
			Incremental: true,
			Pause:       Duration(500 * time.Millisecond),
			MergeRadius: Distance(100), // 100m
		},
		Dataset: DatasetConfig{
			InputDir:  "./data/raw",
			OutputDir: "./data/shapefiles",
		},
		Segment: SegmentConfig{
			InputDir:  "./data/raw",
			OutputDir: "./data/segments",
		},
		Organize: OrganizeConfig{
			InputDirs: []string{"./data/shapefiles", "./data/segments"},
			OutputDir: "./data/cities",
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	// API keys may also live in a .env next to the binary.
	_ = godotenv.Load()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		applyEnv(cfg)
		return cfg, nil
	}

	// If file does not exist, save defaults
	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv fills empty API credentials from the environment.
func applyEnv(cfg *Config) {
	if cfg.AMap.Key == "" {
		cfg.AMap.Key = os.Getenv("AMAP_API_KEY")
	}
	if cfg.Baidu.Key == "" {
		cfg.Baidu.Key = os.Getenv("BAIDU_API_KEY")
	}
	if cfg.Translator.Key == "" {
		cfg.Translator.Key = os.Getenv("AZURE_TRANSLATOR_KEY")
	}
	if region := os.Getenv("AZURE_TRANSLATOR_REGION"); region != "" && cfg.Translator.Region == "eastasia" {
		cfg.Translator.Region = region
	}
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# TransitAtlas Configuration
# --------------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers)

`)
	data = append(header, data...)

	// Inject comments for Enum fields
	reMode := regexp.MustCompile(`(?m)^(\s+)mode:`)
	data = reMode.ReplaceAll(data, []byte("${1}# Options: bus, metro\n${1}mode:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // File exists, do nothing
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
