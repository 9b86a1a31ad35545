package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Reference ReferenceConfig `yaml:"reference" envconfig:"REFERENCE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// AnalysisConfig carries the default assumptions used when a caller does not
// supply its own
type AnalysisConfig struct {
	DefaultIndustry string    `yaml:"default_industry" envconfig:"DEFAULT_INDUSTRY"`
	DCF             DCFConfig `yaml:"dcf" envconfig:"DCF"`
	RunStressSuite  bool      `yaml:"run_stress_suite" envconfig:"RUN_STRESS_SUITE"`
}

// DCFConfig holds default DCF assumptions
type DCFConfig struct {
	ProjectionYears    int     `yaml:"projection_years" envconfig:"PROJECTION_YEARS"`
	DiscountRate       float64 `yaml:"discount_rate" envconfig:"DISCOUNT_RATE"`
	TerminalGrowthRate float64 `yaml:"terminal_growth_rate" envconfig:"TERMINAL_GROWTH_RATE"`
}

// ReferenceConfig points at optional YAML files that replace the built-in
// peer and benchmark catalogues. Empty paths keep the built-in data.
type ReferenceConfig struct {
	PeerCataloguePath string `yaml:"peer_catalogue_path" envconfig:"PEER_CATALOGUE_PATH"`
	BandCataloguePath string `yaml:"band_catalogue_path" envconfig:"BAND_CATALOGUE_PATH"`
}

// Load builds the configuration from defaults, an optional YAML file, and
// FINSIGHT_* environment variables, in that order of precedence (environment
// wins). An empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("FINSIGHT", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML file values onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate checks the configuration and normalizes logging settings
func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/finsight.log"
	}

	if c.Analysis.DCF.ProjectionYears < 1 {
		return fmt.Errorf("projection years must be at least 1, got %d", c.Analysis.DCF.ProjectionYears)
	}
	if c.Analysis.DCF.DiscountRate <= c.Analysis.DCF.TerminalGrowthRate {
		return fmt.Errorf("default discount rate %.2f%% must exceed terminal growth rate %.2f%%",
			c.Analysis.DCF.DiscountRate, c.Analysis.DCF.TerminalGrowthRate)
	}

	return nil
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/finsight.log",
		},
		Analysis: AnalysisConfig{
			DefaultIndustry: "Technology",
			DCF: DCFConfig{
				ProjectionYears:    5,
				DiscountRate:       10,
				TerminalGrowthRate: 2.5,
			},
			RunStressSuite: true,
		},
	}
}
