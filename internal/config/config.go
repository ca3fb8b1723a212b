package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// KnownSources lists every source adapter that can be enabled, in the
// default collection order
var KnownSources = []string{"yahoo", "stooq", "nasdaq", "investing", "alphavantage"}

// ErrUnknownSource is returned for a source name no adapter exists for
var ErrUnknownSource = errors.New("unknown source")

// Config holds all configuration for the stock comparison service.
type Config struct {
	// Web form
	ServerAddr string `mapstructure:"server_addr"`

	// Logging
	LogDir     string `mapstructure:"log_dir"`
	LogLevel   string `mapstructure:"log_level"`
	LogConsole bool   `mapstructure:"log_console"`

	// Per-run artifacts
	DataDir   string `mapstructure:"data_dir"`
	ChartsDir string `mapstructure:"charts_dir"`

	// Outbound requests
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"`
	SourceTimeout time.Duration `mapstructure:"source_timeout"`
	UserAgent     string        `mapstructure:"user_agent"`

	// Sources to collect from, in order
	Sources []string `mapstructure:"sources"`

	// Base URLs for provider endpoints (configurable for testing)
	YahooBaseURL        string `mapstructure:"yahoo_base_url"`
	YahooSearchURL      string `mapstructure:"yahoo_search_url"`
	StooqBaseURL        string `mapstructure:"stooq_base_url"`
	NasdaqBaseURL       string `mapstructure:"nasdaq_base_url"`
	InvestingBaseURL    string `mapstructure:"investing_base_url"`
	AlphavantageBaseURL string `mapstructure:"alphavantage_base_url"`

	// Provider specifics
	StooqSuffix        string `mapstructure:"stooq_suffix"`
	InvestingLocale    string `mapstructure:"investing_locale"`
	AlphavantageAPIKey string `mapstructure:"alphavantage_api_key"`
}

var defaults = map[string]any{
	"server_addr":           ":8000",
	"log_dir":               "logs",
	"log_level":             "INFO",
	"log_console":           true,
	"data_dir":              "data",
	"charts_dir":            "charts",
	"http_timeout":          "15s",
	"source_timeout":        "20s",
	"user_agent":            "",
	"sources":               []string{"yahoo", "stooq", "nasdaq", "investing"},
	"yahoo_base_url":        "https://query2.finance.yahoo.com",
	"yahoo_search_url":      "https://query2.finance.yahoo.com",
	"stooq_base_url":        "https://stooq.com",
	"nasdaq_base_url":       "https://api.nasdaq.com",
	"investing_base_url":    "https://www.investing.com",
	"alphavantage_base_url": "https://www.alphavantage.co/query",
	"stooq_suffix":          ".us",
	"investing_locale":      "en",
	"alphavantage_api_key":  "",
}

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over config file values,
// and a .env file in the working directory is loaded into the environment first.
//
// Every key can be set through its upper-case environment variable, e.g.
//   - LOG_LEVEL (DEBUG, INFO, WARNING, ERROR)
//   - SOURCES (comma separated, e.g. "yahoo,stooq")
//   - ALPHAVANTAGE_API_KEY (required only when alphavantage is enabled)
//   - YAHOO_BASE_URL, STOOQ_BASE_URL, ... (optional, default to production)
func Load() (*Config, error) {
	v := viper.New()

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.stockcompare")

	// Read config file (ignore if not found)
	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return load(v)
}

// LoadFile reads configuration from the YAML file at path, with environment
// variables taking precedence.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	// A missing .env is fine; existing environment variables are never overridden
	_ = godotenv.Load()

	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	// Unmarshal config into struct (durations and comma lists are decoded by viper's hooks)
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Sources = normalizeSources(config.Sources)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	for _, s := range c.Sources {
		if !slices.Contains(KnownSources, s) {
			return fmt.Errorf("invalid configuration: %w %q", ErrUnknownSource, s)
		}
	}

	var problems []string
	if len(c.Sources) == 0 {
		problems = append(problems, "at least one source must be enabled")
	}
	if c.HTTPTimeout <= 0 {
		problems = append(problems, "http_timeout must be positive")
	}
	if c.SourceTimeout <= 0 {
		problems = append(problems, "source_timeout must be positive")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARNING", "WARN", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("invalid log_level %q", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	// Validate required fields
	var missing []string
	if slices.Contains(c.Sources, "alphavantage") && c.AlphavantageAPIKey == "" {
		missing = append(missing, "ALPHAVANTAGE_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}

// normalizeSources lower-cases and trims names, dropping blanks and repeats
func normalizeSources(in []string) []string {
	var out []string
	for _, raw := range in {
		for _, s := range strings.Split(raw, ",") {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" && !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
	}
	return out
}
