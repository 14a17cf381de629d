package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Button   ButtonConfig   `yaml:"button"`
	Pihole   PiholeConfig   `yaml:"pihole"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Logger   LoggerConfig   `yaml:"logger"`
	Tracer   TracerConfig   `yaml:"tracer"`
}

// ButtonConfig holds push button and status LED pin settings.
type ButtonConfig struct {
	// Pin is the BCM name of the push button input (board pin 40 on the
	// reference wiring).
	Pin string `yaml:"pin"`
	// LEDPin is the BCM name of the status LED output (board pin 38).
	LEDPin string `yaml:"led_pin"`
	// Debounce is the hardware debounce window. The edge callback must
	// return faster than this or the interrupt source re-enters.
	Debounce time.Duration `yaml:"debounce"`
	// InvertIndicator flips the LED polarity. Default polarity is
	// LED off = blocking enabled, LED on = blocking disabled.
	InvertIndicator bool `yaml:"invert_indicator"`
}

// PiholeConfig holds settings for talking to the Pi-hole.
type PiholeConfig struct {
	// Backend selects how the Pi-hole is queried: "cli" runs the pihole
	// binary, "http" talks to the admin API.
	Backend        string        `yaml:"backend"`
	Bin            string        `yaml:"bin"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	// DisableDuration is passed to timed disables; zero disables
	// indefinitely.
	DisableDuration time.Duration        `yaml:"disable_duration"`
	API             APIConfig            `yaml:"api"`
	CircuitBreaker  CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// APIConfig holds Pi-hole admin API settings for the http backend.
type APIConfig struct {
	URL         string        `yaml:"url"`
	Token       string        `yaml:"token"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	RespTimeout time.Duration `yaml:"resp_timeout"`
}

// CircuitBreakerConfig holds circuit breaker settings for the http backend.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// ScheduleConfig holds the optional blocking schedule.
type ScheduleConfig struct {
	Enabled bool                  `yaml:"enabled"`
	Tasks   []ScheduledTaskConfig `yaml:"tasks"`
}

// ScheduledTaskConfig defines a single scheduled enable/disable task.
type ScheduledTaskConfig struct {
	Name     string        `yaml:"name"`
	Schedule string        `yaml:"schedule"` // cron expression or duration string
	Action   string        `yaml:"action"`   // "enable" or "disable"
	Duration time.Duration `yaml:"duration,omitempty"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// Defaults returns a Config with sensible defaults matching the reference
// deployment: button on GPIO21, LED on GPIO20, 500ms debounce, 10s polling.
func Defaults() *Config {
	return &Config{
		Button: ButtonConfig{
			Pin:      "GPIO21",
			LEDPin:   "GPIO20",
			Debounce: 500 * time.Millisecond,
		},
		Pihole: PiholeConfig{
			Backend:        "cli",
			Bin:            "pihole",
			CommandTimeout: 10 * time.Second,
			PollInterval:   10 * time.Second,
			API: APIConfig{
				ConnTimeout: 5 * time.Second,
				RespTimeout: 10 * time.Second,
			},
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:     false,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// Load reads a YAML config file and applies env var overrides.
// A missing file is not an error: defaults plus env overrides are returned,
// so the daemon runs with the reference wiring out of the box.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps PIHOLEBUTTON_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PIHOLEBUTTON_BUTTON_PIN"); v != "" {
		cfg.Button.Pin = v
	}
	if v := os.Getenv("PIHOLEBUTTON_LED_PIN"); v != "" {
		cfg.Button.LEDPin = v
	}
	if v := os.Getenv("PIHOLEBUTTON_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Button.Debounce = d
		}
	}
	if v := os.Getenv("PIHOLEBUTTON_INVERT_INDICATOR"); v == "true" {
		cfg.Button.InvertIndicator = true
	}
	if v := os.Getenv("PIHOLEBUTTON_BACKEND"); v != "" {
		cfg.Pihole.Backend = v
	}
	if v := os.Getenv("PIHOLEBUTTON_BIN"); v != "" {
		cfg.Pihole.Bin = v
	}
	if v := os.Getenv("PIHOLEBUTTON_COMMAND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Pihole.CommandTimeout = d
		}
	}
	if v := os.Getenv("PIHOLEBUTTON_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Pihole.PollInterval = d
		}
	}
	if v := os.Getenv("PIHOLEBUTTON_DISABLE_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.Pihole.DisableDuration = d
		}
	}
	if v := os.Getenv("PIHOLEBUTTON_API_URL"); v != "" {
		cfg.Pihole.API.URL = v
	}
	if v := os.Getenv("PIHOLEBUTTON_API_TOKEN"); v != "" {
		cfg.Pihole.API.Token = v
	}
	if v := os.Getenv("PIHOLEBUTTON_CIRCUIT_BREAKER_ENABLED"); v == "true" {
		cfg.Pihole.CircuitBreaker.Enabled = true
	}
	if v := os.Getenv("PIHOLEBUTTON_CIRCUIT_BREAKER_MAX_FAILURES"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			cfg.Pihole.CircuitBreaker.MaxFailures = uint32(n)
		}
	}
	if v := os.Getenv("PIHOLEBUTTON_SCHEDULE_ENABLED"); v == "true" {
		cfg.Schedule.Enabled = true
	}
	if v := os.Getenv("PIHOLEBUTTON_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("PIHOLEBUTTON_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("PIHOLEBUTTON_LOGGER_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("PIHOLEBUTTON_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("PIHOLEBUTTON_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
}
