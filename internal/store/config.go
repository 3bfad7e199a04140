package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the calendar date format used in config, query strings and
// upstream requests.
const DateLayout = "2006-01-02"

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	HTTP struct {
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		UserAgent      string `yaml:"user_agent"`
	} `yaml:"http"`
	Finnhub struct {
		BaseURL   string `yaml:"base_url"`
		APIKeyEnv string `yaml:"api_key_env"`
	} `yaml:"finnhub"`
	Yahoo struct {
		ChartURL string `yaml:"chart_url"`
	} `yaml:"yahoo"`
	Tickers struct {
		PageURL string `yaml:"page_url"`
	} `yaml:"tickers"`
	Defaults struct {
		StartDate      string `yaml:"start_date"`
		EndDate        string `yaml:"end_date"`
		NewsWindowDays int    `yaml:"news_window_days"`
	} `yaml:"defaults"`
	Cache struct {
		// TTLSeconds of 0 keeps memoized results for the process lifetime.
		TTLSeconds int `yaml:"ttl_seconds"`
	} `yaml:"cache"`
	Terminal struct {
		MaxBars int `yaml:"max_bars"`
	} `yaml:"terminal"`
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr cannot be empty")
	}
	if c.Finnhub.APIKeyEnv == "" {
		return errors.New("finnhub.api_key_env cannot be empty")
	}
	start, err := time.Parse(DateLayout, c.Defaults.StartDate)
	if err != nil {
		return fmt.Errorf("invalid defaults.start_date '%s': %w", c.Defaults.StartDate, err)
	}
	end, err := time.Parse(DateLayout, c.Defaults.EndDate)
	if err != nil {
		return fmt.Errorf("invalid defaults.end_date '%s': %w", c.Defaults.EndDate, err)
	}
	if start.After(end) {
		return fmt.Errorf("defaults.start_date %s is after defaults.end_date %s", c.Defaults.StartDate, c.Defaults.EndDate)
	}
	if c.Defaults.NewsWindowDays <= 0 {
		return fmt.Errorf("defaults.news_window_days must be positive, got %d", c.Defaults.NewsWindowDays)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds cannot be negative, got %d", c.Cache.TTLSeconds)
	}
	if c.HTTP.TimeoutSeconds < 0 {
		return fmt.Errorf("http.timeout_seconds cannot be negative, got %d", c.HTTP.TimeoutSeconds)
	}
	return nil
}

// LoadConfig reads the YAML file at path. A missing file is not an error:
// defaults and environment overrides still apply.
func LoadConfig(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(b) > 0 {
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnvOverrides(&c)
	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("DASHBOARD_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("FINNHUB_BASE_URL"); v != "" {
		c.Finnhub.BaseURL = v
	}
	if v := os.Getenv("YAHOO_CHART_URL"); v != "" {
		c.Yahoo.ChartURL = v
	}
	if v := os.Getenv("TICKERS_PAGE_URL"); v != "" {
		c.Tickers.PageURL = v
	}
}

func applyDefaults(c *Config) {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8501"
	}
	if c.HTTP.TimeoutSeconds == 0 {
		c.HTTP.TimeoutSeconds = 30
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.Finnhub.APIKeyEnv == "" {
		c.Finnhub.APIKeyEnv = "FINNHUB_API_KEY"
	}
	if c.Defaults.StartDate == "" {
		c.Defaults.StartDate = "2009-01-01"
	}
	if c.Defaults.EndDate == "" {
		c.Defaults.EndDate = "2023-10-01"
	}
	if c.Defaults.NewsWindowDays == 0 {
		c.Defaults.NewsWindowDays = 30
	}
	if c.Terminal.MaxBars == 0 {
		c.Terminal.MaxBars = 10
	}
}

// APIKey reads the Finnhub credential from the configured environment variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.Finnhub.APIKeyEnv)
}

// HTTPTimeout returns the upstream request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// CacheTTL returns the memoization expiry; zero means never expire.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// DefaultRange returns the parsed default start and end dates.
func (c *Config) DefaultRange() (start, end time.Time) {
	start, _ = time.Parse(DateLayout, c.Defaults.StartDate)
	end, _ = time.Parse(DateLayout, c.Defaults.EndDate)
	return start, end
}
