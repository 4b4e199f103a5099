package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testConfig = `
server:
  port: "9090"
  mode: debug
database:
  driver: sqlite
  path: raid.db
jwt:
  secret: short
  expire_hours: 2
ledger:
  timezone: Asia/Seoul
  reset_weekday: 3
  reset_hour: 6
  gold_group_cap: 3
lostark:
  timeout_seconds: 5
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.JWT.ExpireTime != 2*time.Hour {
		t.Errorf("JWT.ExpireTime = %v, want 2h", cfg.JWT.ExpireTime)
	}
	if cfg.LostArk.Timeout != 5*time.Second {
		t.Errorf("LostArk.Timeout = %v, want 5s", cfg.LostArk.Timeout)
	}
	if cfg.Ledger.RetentionWeeks != 4 {
		t.Errorf("Ledger.RetentionWeeks default = %d, want 4", cfg.Ledger.RetentionWeeks)
	}
	if cfg.RateLimit.MaxRequests != 6000 {
		t.Errorf("RateLimit.MaxRequests default = %d, want 6000", cfg.RateLimit.MaxRequests)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Error("LoadConfig() on an empty directory should fail")
	}
}

func TestConfigValidation(t *testing.T) {
	valid := Config{
		Server:   ServerConfig{Mode: "debug"},
		Database: DatabaseConfig{Driver: "mysql"},
		Ledger: LedgerConfig{
			Timezone:     "Asia/Seoul",
			ResetWeekday: 3,
			ResetHour:    6,
			GoldGroupCap: 3,
		},
	}
	if err := valid.validate(); err != nil {
		t.Fatalf("valid config returned error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"short secret in release mode", func(c *Config) { c.Server.Mode = "release"; c.JWT.Secret = "abc" }},
		{"unknown timezone", func(c *Config) { c.Ledger.Timezone = "Mars/Olympus" }},
		{"weekday out of range", func(c *Config) { c.Ledger.ResetWeekday = 7 }},
		{"hour out of range", func(c *Config) { c.Ledger.ResetHour = 24 }},
		{"zero gold cap", func(c *Config) { c.Ledger.GoldGroupCap = 0 }},
		{"unsupported driver", func(c *Config) { c.Database.Driver = "oracle" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.validate(); err == nil {
				t.Errorf("validate() should fail for %s", tt.name)
			}
		})
	}
}
