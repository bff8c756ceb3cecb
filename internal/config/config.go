// Package config loads application configuration from an optional YAML
// file with environment overrides, plus a best-effort .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the top-level application configuration.
type Config struct {
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Store   StoreConfig   `mapstructure:"store"`
	Time    TimeConfig    `mapstructure:"time"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// GeminiConfig controls the LLM-assisted resolver. An empty APIKey
// means the assistant runs in rule-only fallback mode.
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout bounds one intent-extraction call to the language service.
func (g GeminiConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// StoreConfig selects and configures the transaction store backend.
type StoreConfig struct {
	// Backend is "memory" (CSV dataset) or "bigquery".
	Backend string `mapstructure:"backend"`

	// DatasetPath is the transaction CSV for the memory backend:
	// a local path or a gs:// URI.
	DatasetPath string `mapstructure:"dataset_path"`

	ProjectID string `mapstructure:"project_id"`
	DatasetID string `mapstructure:"dataset_id"`
}

// TimeConfig controls how relative time expressions are anchored.
type TimeConfig struct {
	// Reference is "dataset" (latest date in the client's history) or
	// "wallclock" (real current date).
	Reference string `mapstructure:"reference"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads config.yaml (working directory or ./configs), applies env
// overrides like GEMINI_API_KEY, fills defaults and validates. A
// missing config file is fine; defaults plus env cover the demo setup.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("store.dataset_path", "DATASET_PATH")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.5-flash"
	}
	if cfg.Gemini.TimeoutSeconds <= 0 {
		cfg.Gemini.TimeoutSeconds = 10
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Store.DatasetPath == "" {
		cfg.Store.DatasetPath = "data/transactions.csv"
	}
	if cfg.Time.Reference == "" {
		cfg.Time.Reference = "dataset"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func validate(cfg *Config) error {
	switch cfg.Store.Backend {
	case "memory":
	case "bigquery":
		if cfg.Store.ProjectID == "" || cfg.Store.DatasetID == "" {
			return fmt.Errorf("bigquery backend requires store.project_id and store.dataset_id")
		}
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	switch cfg.Time.Reference {
	case "dataset", "wallclock":
	default:
		return fmt.Errorf("time.reference must be \"dataset\" or \"wallclock\", got %q", cfg.Time.Reference)
	}
	return nil
}
