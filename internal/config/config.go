package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file used when --config is not given.
const DefaultPath = "eradio.yaml"

// Config represents the application configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Data    DataConfig    `yaml:"data"`
	Sitemap SitemapConfig `yaml:"sitemap"`
	Source  SourceConfig  `yaml:"source"`
	Retry   RetryConfig   `yaml:"retry"`
	Geocode GeocodeConfig `yaml:"geocode"`
	Serve   ServeConfig   `yaml:"serve"`
	Notify  NotifyConfig  `yaml:"notify"`
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig describes the public site the sitemap points at.
type SiteConfig struct {
	BaseURL     string   `yaml:"base_url"`
	Title       string   `yaml:"title,omitempty"`
	StaticPages []string `yaml:"static_pages,omitempty"` // informational pages, e.g. /about/
}

// DataConfig locates the dataset and its derived artifacts.
type DataConfig struct {
	StationsPath   string `yaml:"stations_path"`
	IconsDir       string `yaml:"icons_dir"`
	IconsURLPrefix string `yaml:"icons_url_prefix"`
	StateDB        string `yaml:"state_db"`        // SQLite file for progress and metadata cache
	CityRegionMap  string `yaml:"city_region_map"` // JSON object city -> region
}

// SitemapConfig controls pagination and bucketing.
type SitemapConfig struct {
	OutputPath          string `yaml:"output_path"`
	HomePageSize        int    `yaml:"home_page_size"`
	HighQualityPageSize int    `yaml:"high_quality_page_size"`
	BucketPageSize      int    `yaml:"bucket_page_size"`
	HighQualityBitrate  int    `yaml:"high_quality_bitrate"`
	Placeholder         string `yaml:"placeholder"`
	DefaultGenre        string `yaml:"default_genre"`
	FallbackSlug        string `yaml:"fallback_slug"`
}

// SourceConfig configures the radio-browser API client.
type SourceConfig struct {
	ServersURL  string `yaml:"servers_url"`
	CountryCode string `yaml:"country_code"`
	UserAgent   string `yaml:"user_agent"`
	Timeout     string `yaml:"timeout"`
}

// RetryConfig configures backoff for outbound HTTP calls.
type RetryConfig struct {
	Backoff      RetryBackoffMode `yaml:"backoff"`
	InitialDelay string           `yaml:"initial_delay"`
	MaxDelay     string           `yaml:"max_delay"`
	MaxRetries   int              `yaml:"max_retries"`
}

// GeocodeConfig configures reverse geocoding (Nominatim).
type GeocodeConfig struct {
	URL      string `yaml:"url"`
	Language string `yaml:"language"`
	Sleep    string `yaml:"sleep"`
}

// ServeConfig configures the long-running serve mode.
type ServeConfig struct {
	Addr            string `yaml:"addr"`
	RefreshInterval string `yaml:"refresh_interval,omitempty"` // empty disables scheduled refresh
	Watch           bool   `yaml:"watch"`
}

// NotifyConfig configures dataset change notifications over NATS.
type NotifyConfig struct {
	Enabled  bool   `yaml:"enabled"`
	NATSURL  string `yaml:"nats_url,omitempty"`
	Subject  string `yaml:"subject,omitempty"`
	Stream   string `yaml:"stream,omitempty"`    // JetStream stream bound to Subject
	KVBucket string `yaml:"kv_bucket,omitempty"` // last event per task
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads the YAML file at path, expands ${VAR} references, applies defaults and validates.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes raw YAML into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = applyDefaults(cfg)
	return cfg
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	example := Default()
	example.Site.Title = "E-Radio"
	example.Serve.RefreshInterval = "24h"

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
