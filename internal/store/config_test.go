package store

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config fixture: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "data:\n  source: MOCK\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Data.Source != "MOCK" {
		t.Errorf("Expected source MOCK, got %s", cfg.Data.Source)
	}
	if cfg.Data.Dir != "data" || cfg.Data.CacheDir != "cache/provider" {
		t.Errorf("Unexpected data dirs: %+v", cfg.Data)
	}
	if cfg.Data.CacheTTLHours != 24 {
		t.Errorf("Expected 24h cache TTL default, got %d", cfg.Data.CacheTTLHours)
	}
	if cfg.Filter.ActiveMarker != "액티브" {
		t.Errorf("Expected default active marker, got %q", cfg.Filter.ActiveMarker)
	}
	if cfg.Filter.TopN != 20 || cfg.Filter.LookbackDays != 90 {
		t.Errorf("Unexpected filter defaults: %+v", cfg.Filter)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.DelaySeconds != 1 {
		t.Errorf("Unexpected retry defaults: %+v", cfg.Retry)
	}
	if cfg.Report.TopN != 10 || cfg.Report.OutputDir != "reports" || cfg.Report.Format != "markdown" {
		t.Errorf("Unexpected report defaults: %+v", cfg.Report)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	content := `
data:
  source: KRX
  dir: /tmp/snaps
  cache_ttl_hours: 6
filter:
  active_marker: ACTIVE
  min_returns: 5.5
  top_n: 7
  lookback_days: 30
retry:
  max_attempts: 5
  delay_seconds: 2
report:
  top_n: 15
  format: csv
naver:
  enabled: true
`
	cfg, err := LoadConfig(writeConfig(t, content))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Data.Dir != "/tmp/snaps" || cfg.Data.CacheTTLHours != 6 {
		t.Errorf("Unexpected data section: %+v", cfg.Data)
	}
	if cfg.Filter.ActiveMarker != "ACTIVE" || cfg.Filter.MinReturns != 5.5 || cfg.Filter.TopN != 7 || cfg.Filter.LookbackDays != 30 {
		t.Errorf("Unexpected filter section: %+v", cfg.Filter)
	}
	if cfg.Retry.MaxAttempts != 5 || cfg.Retry.DelaySeconds != 2 {
		t.Errorf("Unexpected retry section: %+v", cfg.Retry)
	}
	if cfg.Report.TopN != 15 || cfg.Report.Format != "csv" {
		t.Errorf("Unexpected report section: %+v", cfg.Report)
	}
	if !cfg.Naver.Enabled {
		t.Error("Expected naver fallback enabled")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad source", "data:\n  source: YAHOO\n"},
		{"negative min returns", "filter:\n  min_returns: -1\n"},
		{"negative lookback", "filter:\n  lookback_days: -5\n"},
		{"negative retries", "retry:\n  max_attempts: -1\n"},
		{"bad report format", "report:\n  format: pdf\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, c.content)); err == nil {
				t.Errorf("Expected validation error for %s", c.name)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}
