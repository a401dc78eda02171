package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalConfig = `
site:
  id: gh-test
  timezone: UTC
gateway:
  base_url: http://localhost:8080
state:
  dir: /tmp/hothouse-test
database:
  path: /tmp/hothouse-test/journal.db
`

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Control.ChannelMax != 8 {
		t.Errorf("ChannelMax = %d, want 8", cfg.Control.ChannelMax)
	}
	if cfg.Control.MaxActionDuration != 3600 {
		t.Errorf("MaxActionDuration = %d, want 3600", cfg.Control.MaxActionDuration)
	}
	if cfg.Interlock.Cooldown != 300 {
		t.Errorf("Interlock.Cooldown = %d, want 300", cfg.Interlock.Cooldown)
	}
	if got := cfg.InterlockCooldown(); got != 300*time.Second {
		t.Errorf("InterlockCooldown() = %v, want 300s", got)
	}
	if cfg.Planner.HistoryCount != 3 {
		t.Errorf("HistoryCount = %d, want 3", cfg.Planner.HistoryCount)
	}
	if got := cfg.PlanHorizon(); got != time.Hour {
		t.Errorf("PlanHorizon() = %v, want 1h", got)
	}
	if len(cfg.Control.Temperature.WindowChannels) != 4 {
		t.Errorf("WindowChannels = %v, want 4 channels", cfg.Control.Temperature.WindowChannels)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
control:
  temperature:
    target_day: 24.5
    window_channels: [1, 2]
  rain:
    threshold_mm_h: 1.0
interlock:
  high_bound_c: 30.0
  low_bound_c: 8.0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Control.Temperature.TargetDay != 24.5 {
		t.Errorf("TargetDay = %v, want 24.5", cfg.Control.Temperature.TargetDay)
	}
	if cfg.Control.Rain.ThresholdMMH != 1.0 {
		t.Errorf("Rain.ThresholdMMH = %v, want 1.0", cfg.Control.Rain.ThresholdMMH)
	}
	if cfg.Interlock.HighBoundC != 30.0 {
		t.Errorf("HighBoundC = %v, want 30.0", cfg.Interlock.HighBoundC)
	}
	if got := cfg.Control.Temperature.WindowChannels; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("WindowChannels = %v, want [1 2]", got)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	t.Setenv("HOTHOUSE_GATEWAY_BASE_URL", "http://gateway:9090")
	t.Setenv("HOTHOUSE_STATE_DIR", "/var/lib/override")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Gateway.BaseURL != "http://gateway:9090" {
		t.Errorf("Gateway.BaseURL = %q, want env override", cfg.Gateway.BaseURL)
	}
	if cfg.State.Dir != "/var/lib/override" {
		t.Errorf("State.Dir = %q, want env override", cfg.State.Dir)
	}
	if got := cfg.StatePath("lockout.json"); got != "/var/lib/override/lockout.json" {
		t.Errorf("StatePath = %q", got)
	}
	if got := cfg.LockPath("rules"); got != "/var/lib/override/locks/rules.lock" {
		t.Errorf("LockPath = %q", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "missing site id",
			mutate: func(c *Config) { c.Site.ID = "" },
			want:   "site.id",
		},
		{
			name:   "inverted temperature bounds",
			mutate: func(c *Config) { c.Interlock.HighBoundC = 5.0; c.Interlock.LowBoundC = 27.0 },
			want:   "interlock.high_bound_c",
		},
		{
			name:   "window channel out of range",
			mutate: func(c *Config) { c.Control.Temperature.WindowChannels = []int{9} },
			want:   "window_channels",
		},
		{
			name:   "wind sector out of range",
			mutate: func(c *Config) { c.Control.Wind.NorthSectors = []int{17} },
			want:   "compass sector",
		},
		{
			name:   "zero plan horizon",
			mutate: func(c *Config) { c.Planner.HorizonMinutes = 0 },
			want:   "horizon_minutes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestTimezoneLocation_Fallback(t *testing.T) {
	cfg := defaultConfig()
	cfg.Site.Timezone = "Not/AZone"
	if loc := cfg.TimezoneLocation(); loc != time.UTC {
		t.Errorf("expected UTC fallback, got %v", loc)
	}
}
