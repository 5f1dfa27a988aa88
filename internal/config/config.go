// Package config loads the tool configuration. Values are resolved in this
// order, later sources winning: struct defaults, a .env file, FOOTBALL_*
// environment variables, an optional YAML file, and finally CLI flags applied
// by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const envPrefix = "FOOTBALL"

// Default CSV sources.
const (
	DefaultGoalsURL     = "https://raw.githubusercontent.com/matheussardeli/ppgi-projeto-linguagem-programacao/main/goalscorers.csv"
	DefaultResultsURL   = "https://raw.githubusercontent.com/matheussardeli/ppgi-projeto-linguagem-programacao/main/results.csv"
	DefaultShootoutsURL = "https://raw.githubusercontent.com/matheussardeli/ppgi-projeto-linguagem-programacao/main/shootouts.csv"
)

// Config represents the complete tool configuration.
type Config struct {
	Sources SourcesConfig `yaml:"sources" envconfig:"SOURCES"`
	Fetch   FetchConfig   `yaml:"fetch" envconfig:"FETCH"`
	Charts  ChartsConfig  `yaml:"charts" envconfig:"CHARTS"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`

	// DateLayout is the Go time layout of every date column.
	DateLayout string `yaml:"date_layout" envconfig:"DATE_LAYOUT" default:"2006-01-02" validate:"required"`
	CacheDir   string `yaml:"cache_dir" envconfig:"CACHE_DIR" default:".football-insights/cache" validate:"required"`
}

// SourcesConfig holds the location of each dataset, an http(s) URL or a local path.
type SourcesConfig struct {
	Goals     string `yaml:"goals" envconfig:"GOALS" validate:"required"`
	Results   string `yaml:"results" envconfig:"RESULTS" validate:"required"`
	Shootouts string `yaml:"shootouts" envconfig:"SHOOTOUTS" validate:"required"`
}

// FetchConfig controls remote downloads.
type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s" validate:"gt=0"`
	RPS     float64       `yaml:"rps" envconfig:"RPS" default:"3" validate:"gt=0"`
	Burst   int           `yaml:"burst" envconfig:"BURST" default:"3" validate:"min=1"`
	MaxBody int64         `yaml:"max_body" envconfig:"MAX_BODY" default:"67108864" validate:"min=1"`
}

// ChartsConfig controls aggregation and rendering.
type ChartsConfig struct {
	MinuteBins int    `yaml:"minute_bins" envconfig:"MINUTE_BINS" default:"45" validate:"min=1"`
	TopN       int    `yaml:"top_n" envconfig:"TOP_N" default:"10" validate:"min=1"`
	Format     string `yaml:"format" envconfig:"FORMAT" default:"png" validate:"oneof=png svg pdf"`
	OutputDir  string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"charts" validate:"required"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
}

// Load resolves the configuration. configPath may be empty; a missing .env
// file is not an error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := Default()
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configPath != "" {
		if err := cfg.mergeFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with the built-in sources and no other
// values set; envconfig fills the rest from struct tags.
func Default() *Config {
	return &Config{
		Sources: SourcesConfig{
			Goals:     DefaultGoalsURL,
			Results:   DefaultResultsURL,
			Shootouts: DefaultShootoutsURL,
		},
	}
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Validate checks the configuration after every source has been applied.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config validation failed: %s fails %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
