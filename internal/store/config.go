package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Data struct {
		Source        string `yaml:"source"`          // KRX or MOCK
		Dir           string `yaml:"dir"`             // daily snapshot directory
		CacheDir      string `yaml:"cache_dir"`       // provider response cache
		CacheTTLHours int    `yaml:"cache_ttl_hours"` // cache entry lifetime
	} `yaml:"data"`
	Filter struct {
		ActiveMarker string  `yaml:"active_marker"` // name substring identifying active ETFs
		MinReturns   float64 `yaml:"min_returns"`   // lookback-return floor (%), 0 keeps all
		TopN         int     `yaml:"top_n"`         // keep top N by lookback return, 0 keeps all
		LookbackDays int     `yaml:"lookback_days"` // return window length
	} `yaml:"filter"`
	Retry struct {
		MaxAttempts  int `yaml:"max_attempts"`
		DelaySeconds int `yaml:"delay_seconds"`
	} `yaml:"retry"`
	Schema struct {
		WeightColumns []string `yaml:"weight_columns"`
		NameColumns   []string `yaml:"name_columns"`
		AmountColumn  string   `yaml:"amount_column"`
	} `yaml:"schema"`
	Report struct {
		TopN      int    `yaml:"top_n"`      // rows shown in report tables
		OutputDir string `yaml:"output_dir"` // rendered reports land here
		Format    string `yaml:"format"`     // markdown, csv, or json
	} `yaml:"report"`
	Naver struct {
		Enabled bool `yaml:"enabled"` // scrape fallback when the primary source has no data
	} `yaml:"naver"`
}

func (c *Config) Validate() error {
	if c.Data.Source != "KRX" && c.Data.Source != "MOCK" {
		return fmt.Errorf("invalid data.source '%s': must be 'KRX' or 'MOCK'", c.Data.Source)
	}
	if c.Filter.LookbackDays <= 0 {
		return fmt.Errorf("filter.lookback_days must be positive, got %d", c.Filter.LookbackDays)
	}
	if c.Filter.MinReturns < 0 {
		return fmt.Errorf("filter.min_returns must not be negative, got %.2f", c.Filter.MinReturns)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry.max_attempts must be positive, got %d", c.Retry.MaxAttempts)
	}
	if c.Report.TopN <= 0 {
		return fmt.Errorf("report.top_n must be positive, got %d", c.Report.TopN)
	}
	if c.Report.Format != "markdown" && c.Report.Format != "csv" && c.Report.Format != "json" {
		return fmt.Errorf("report.format must be 'markdown', 'csv', or 'json', got '%s'", c.Report.Format)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

func applyDefaults(c *Config) {
	if c.Data.Source == "" {
		c.Data.Source = "KRX"
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.CacheDir == "" {
		c.Data.CacheDir = "cache/provider"
	}
	if c.Data.CacheTTLHours == 0 {
		c.Data.CacheTTLHours = 24
	}
	if c.Filter.ActiveMarker == "" {
		c.Filter.ActiveMarker = "액티브"
	}
	if c.Filter.TopN == 0 {
		c.Filter.TopN = 20
	}
	if c.Filter.LookbackDays == 0 {
		c.Filter.LookbackDays = 90
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.DelaySeconds == 0 {
		c.Retry.DelaySeconds = 1
	}
	if c.Report.TopN == 0 {
		c.Report.TopN = 10
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "reports"
	}
	if c.Report.Format == "" {
		c.Report.Format = "markdown"
	}
}
