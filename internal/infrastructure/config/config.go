package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Hothouse Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Control   ControlConfig   `yaml:"control"`
	Interlock InterlockConfig `yaml:"interlock"`
	Planner   PlannerConfig   `yaml:"planner"`
	State     StateConfig     `yaml:"state"`
	Database  DatabaseConfig  `yaml:"database"`
	Notify    NotifyConfig    `yaml:"notify"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Timezone string         `yaml:"timezone"`
	Location LocationConfig `yaml:"location"`
}

// LocationConfig contains geographic coordinates for sunrise/sunset calculations.
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// GatewayConfig contains connection settings for the actuator/sensor gateway.
type GatewayConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Timeout int    `yaml:"timeout"` // seconds
}

// ControlConfig groups the shared control thresholds and channel assignments.
// The Rule Engine and Plan Executor both read from this section so weather
// suppression uses the same values as rule evaluation.
type ControlConfig struct {
	Temperature TemperatureConfig `yaml:"temperature"`
	Wind        WindConfig        `yaml:"wind"`
	Rain        RainConfig        `yaml:"rain"`
	Irrigation  IrrigationConfig  `yaml:"irrigation"`
	Sensors     SensorSources     `yaml:"sensors"`

	// ChannelMax is the highest valid relay channel. Actions addressing
	// channels outside [1, ChannelMax] are rejected.
	ChannelMax int `yaml:"channel_max"`

	// MaxActionDuration is the hard ceiling for timed relay commands (seconds).
	// Longer durations are clamped, never rejected.
	MaxActionDuration int `yaml:"max_action_duration"`
}

// SensorSources names the sensor source IDs rule evaluation reads.
// Weather fields (rain, wind) are located by field alias instead and
// need no source name here.
type SensorSources struct {
	Temperature string `yaml:"temperature"`
	Solar       string `yaml:"solar"`
}

// TemperatureConfig contains temperature-band window control settings.
type TemperatureConfig struct {
	TargetDay   float64 `yaml:"target_day"`
	TargetNight float64 `yaml:"target_night"`
	MarginOpen  float64 `yaml:"margin_open"`
	MarginClose float64 `yaml:"margin_close"`

	// WindowChannels are the relay channels driving side windows.
	WindowChannels []int `yaml:"window_channels"`
}

// WindConfig contains strong-wind protection settings.
//
// Wind direction arrives as a 1-16 compass sector index. Sectors listed in
// NorthSectors close NorthChannels, SouthSectors close SouthChannels; a
// strong wind from an unlisted sector closes all window channels.
type WindConfig struct {
	StrongThresholdMS float64 `yaml:"strong_threshold_ms"`
	NorthSectors      []int   `yaml:"north_sectors"`
	SouthSectors      []int   `yaml:"south_sectors"`
	NorthChannels     []int   `yaml:"north_channels"`
	SouthChannels     []int   `yaml:"south_channels"`
}

// RainConfig contains rainfall protection settings.
type RainConfig struct {
	ThresholdMMH float64 `yaml:"threshold_mm_h"`
}

// IrrigationConfig contains solar-proportional irrigation settings.
type IrrigationConfig struct {
	Channel int `yaml:"channel"`

	// SolarThresholdMJ is the accumulated solar dose (MJ/m²) that triggers
	// one irrigation.
	SolarThresholdMJ float64 `yaml:"solar_threshold_mj"`

	// Duration is the irrigation valve open time per trigger (seconds).
	Duration int `yaml:"duration"`

	// TickSeconds is the Rule Engine cadence used for dose integration.
	TickSeconds int `yaml:"tick_seconds"`
}

// InterlockConfig contains Emergency Interlock settings.
type InterlockConfig struct {
	HighBoundC float64 `yaml:"high_bound_c"`
	LowBoundC  float64 `yaml:"low_bound_c"`

	// Cooldown is the self-lockout window written after a trigger (seconds).
	Cooldown int `yaml:"cooldown"`

	// TemperatureSource is the preferred sensor source ID for indoor
	// temperature. FallbackSource is consulted when it is absent.
	TemperatureSource string `yaml:"temperature_source"`
	FallbackSource    string `yaml:"fallback_source"`
}

// PlannerConfig contains Forecast Planner settings.
type PlannerConfig struct {
	Advisor AdvisorConfig `yaml:"advisor"`

	SystemPromptPath string `yaml:"system_prompt_path"`

	// HistoryCount is the number of recent decision journal entries
	// included in the planning prompt.
	HistoryCount int `yaml:"history_count"`

	// HorizonMinutes is the plan validity window; valid_until is always
	// generated_at plus exactly this interval.
	HorizonMinutes int `yaml:"horizon_minutes"`
}

// AdvisorConfig contains connection settings for the LLM advisory service
// (an OpenAI-compatible chat completions endpoint).
type AdvisorConfig struct {
	BaseURL       string  `yaml:"base_url"`
	APIKey        string  `yaml:"api_key"`
	Model         string  `yaml:"model"`
	MaxTokens     int     `yaml:"max_tokens"`
	MaxToolRounds int     `yaml:"max_tool_rounds"`
	Temperature   float64 `yaml:"temperature"`
	Timeout       int     `yaml:"timeout"` // seconds
}

// StateConfig contains paths for the persisted coordination artifacts.
type StateConfig struct {
	// Dir is the directory holding the JSON state documents and the
	// per-component lock files.
	Dir string `yaml:"dir"`
}

// DatabaseConfig contains SQLite settings for the decision journal.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// NotifyConfig contains notification settings.
// Notifications are published over MQTT and are always best-effort.
type NotifyConfig struct {
	Enabled bool       `yaml:"enabled"`
	MQTT    MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker MQTTBrokerConfig `yaml:"broker"`
	Auth   MQTTAuthConfig   `yaml:"auth"`
	QoS    int              `yaml:"qos"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// InfluxDBConfig contains InfluxDB telemetry settings.
type InfluxDBConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`

	// WriteTimeout bounds each synchronous point write, in seconds.
	WriteTimeout int `yaml:"write_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HOTHOUSE_SECTION_KEY
// For example: HOTHOUSE_GATEWAY_BASE_URL, HOTHOUSE_DATABASE_PATH
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
//
// Every control parameter has a documented last-known-good default so a
// partially malformed file degrades to safe behaviour rather than crashing
// mid-evaluation.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "gh-001",
			Name:     "Hothouse",
			Timezone: "UTC",
			Location: LocationConfig{
				Latitude:  42.888,
				Longitude: 141.603,
			},
		},
		Gateway: GatewayConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 10,
		},
		Control: ControlConfig{
			Temperature: TemperatureConfig{
				TargetDay:      26.0,
				TargetNight:    15.0,
				MarginOpen:     1.0,
				MarginClose:    1.0,
				WindowChannels: []int{5, 6, 7, 8},
			},
			Wind: WindConfig{
				StrongThresholdMS: 5.0,
				NorthSectors:      []int{15, 16, 1, 2, 3},
				SouthSectors:      []int{7, 8, 9, 10, 11},
				NorthChannels:     []int{5, 6},
				SouthChannels:     []int{7, 8},
			},
			Rain: RainConfig{
				ThresholdMMH: 0.5,
			},
			Irrigation: IrrigationConfig{
				Channel:          4,
				SolarThresholdMJ: 0.9,
				Duration:         270,
				TickSeconds:      300,
			},
			Sensors: SensorSources{
				Temperature: "house/climate/air_temp",
				Solar:       "farm/weather/insolar",
			},
			ChannelMax:        8,
			MaxActionDuration: 3600,
		},
		Interlock: InterlockConfig{
			HighBoundC:        27.0,
			LowBoundC:         5.0,
			Cooldown:          300,
			TemperatureSource: "house/climate/air_temp",
			FallbackSource:    "farm/weather/station",
		},
		Planner: PlannerConfig{
			Advisor: AdvisorConfig{
				BaseURL:       "http://localhost:8081",
				Model:         "advisory-local",
				MaxTokens:     1024,
				MaxToolRounds: 5,
				Temperature:   0.1,
				Timeout:       30,
			},
			SystemPromptPath: "/etc/hothouse/system_prompt.txt",
			HistoryCount:     3,
			HorizonMinutes:   60,
		},
		State: StateConfig{
			Dir: "/var/lib/hothouse",
		},
		Database: DatabaseConfig{
			Path:        "/var/lib/hothouse/journal.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Notify: NotifyConfig{
			Enabled: false,
			MQTT: MQTTConfig{
				Broker: MQTTBrokerConfig{
					Host:     "localhost",
					Port:     1883,
					ClientID: "hothouse-core",
				},
				QoS: 1,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HOTHOUSE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HOTHOUSE_GATEWAY_BASE_URL"); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := os.Getenv("HOTHOUSE_GATEWAY_API_KEY"); v != "" {
		cfg.Gateway.APIKey = v
	}
	if v := os.Getenv("HOTHOUSE_STATE_DIR"); v != "" {
		cfg.State.Dir = v
	}
	if v := os.Getenv("HOTHOUSE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("HOTHOUSE_ADVISOR_BASE_URL"); v != "" {
		cfg.Planner.Advisor.BaseURL = v
	}
	if v := os.Getenv("HOTHOUSE_ADVISOR_API_KEY"); v != "" {
		cfg.Planner.Advisor.APIKey = v
	}
	if v := os.Getenv("HOTHOUSE_MQTT_HOST"); v != "" {
		cfg.Notify.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HOTHOUSE_MQTT_USERNAME"); v != "" {
		cfg.Notify.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HOTHOUSE_MQTT_PASSWORD"); v != "" {
		cfg.Notify.MQTT.Auth.Password = v
	}
	if v := os.Getenv("HOTHOUSE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
	if v := os.Getenv("HOTHOUSE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}
	if c.Site.Location.Latitude < -90 || c.Site.Location.Latitude > 90 {
		errs = append(errs, "site.location.latitude must be between -90 and 90")
	}
	if c.Site.Location.Longitude < -180 || c.Site.Location.Longitude > 180 {
		errs = append(errs, "site.location.longitude must be between -180 and 180")
	}

	if c.Gateway.BaseURL == "" {
		errs = append(errs, "gateway.base_url is required")
	}

	if c.Control.ChannelMax < 1 {
		errs = append(errs, "control.channel_max must be at least 1")
	}
	if c.Control.MaxActionDuration < 1 {
		errs = append(errs, "control.max_action_duration must be at least 1")
	}
	if len(c.Control.Temperature.WindowChannels) == 0 {
		errs = append(errs, "control.temperature.window_channels is required")
	}
	for _, ch := range c.Control.Temperature.WindowChannels {
		if ch < 1 || ch > c.Control.ChannelMax {
			errs = append(errs, fmt.Sprintf("control.temperature.window_channels: channel %d out of range [1,%d]", ch, c.Control.ChannelMax))
		}
	}
	if c.Control.Irrigation.Channel < 1 || c.Control.Irrigation.Channel > c.Control.ChannelMax {
		errs = append(errs, "control.irrigation.channel out of range")
	}
	if c.Control.Irrigation.TickSeconds < 1 {
		errs = append(errs, "control.irrigation.tick_seconds must be at least 1")
	}
	for _, s := range append(append([]int{}, c.Control.Wind.NorthSectors...), c.Control.Wind.SouthSectors...) {
		if s < 1 || s > 16 {
			errs = append(errs, fmt.Sprintf("control.wind: compass sector %d out of range [1,16]", s))
		}
	}

	if c.Interlock.HighBoundC <= c.Interlock.LowBoundC {
		errs = append(errs, "interlock.high_bound_c must be greater than interlock.low_bound_c")
	}
	if c.Interlock.Cooldown < 1 {
		errs = append(errs, "interlock.cooldown must be at least 1 second")
	}

	if c.Planner.HorizonMinutes < 1 {
		errs = append(errs, "planner.horizon_minutes must be at least 1")
	}
	if c.Planner.Advisor.MaxToolRounds < 1 {
		errs = append(errs, "planner.advisor.max_tool_rounds must be at least 1")
	}

	if c.State.Dir == "" {
		errs = append(errs, "state.dir is required")
	}
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.Notify.Enabled {
		if c.Notify.MQTT.QoS < 0 || c.Notify.MQTT.QoS > 2 {
			errs = append(errs, "notify.mqtt.qos must be 0, 1, or 2")
		}
		if c.Notify.MQTT.Broker.Host == "" {
			errs = append(errs, "notify.mqtt.broker.host is required when notify is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// TimezoneLocation returns the site's time.Location, falling back to UTC if
// the configured zone name cannot be resolved.
func (c *Config) TimezoneLocation() *time.Location {
	loc, err := time.LoadLocation(c.Site.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GatewayTimeout returns the gateway request timeout as a Duration.
func (c *Config) GatewayTimeout() time.Duration {
	return time.Duration(c.Gateway.Timeout) * time.Second
}

// AdvisorTimeout returns the advisory service timeout as a Duration.
func (c *Config) AdvisorTimeout() time.Duration {
	return time.Duration(c.Planner.Advisor.Timeout) * time.Second
}

// InterlockCooldown returns the interlock self-lockout window as a Duration.
func (c *Config) InterlockCooldown() time.Duration {
	return time.Duration(c.Interlock.Cooldown) * time.Second
}

// PlanHorizon returns the plan validity window as a Duration.
func (c *Config) PlanHorizon() time.Duration {
	return time.Duration(c.Planner.HorizonMinutes) * time.Minute
}

// StatePath returns the path of a named state document under the state directory.
func (c *Config) StatePath(name string) string {
	return filepath.Join(c.State.Dir, name)
}

// LockPath returns the lock file path for a component under the state directory.
func (c *Config) LockPath(component string) string {
	return filepath.Join(c.State.Dir, "locks", component+".lock")
}

// ParseChannel parses a relay channel from its string form, used when
// reading channel keys out of gateway status payloads.
func ParseChannel(s string) (int, error) {
	ch, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parsing channel %q: %w", s, err)
	}
	return ch, nil
}
