package config

import (
	"fmt"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateButton(cfg, ve)
	validatePihole(cfg, ve)
	validateSchedule(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateButton(cfg *Config, ve *ValidationError) {
	if cfg.Button.Pin == "" {
		ve.Add("button.pin must not be empty")
	}
	if cfg.Button.LEDPin == "" {
		ve.Add("button.led_pin must not be empty")
	}
	if cfg.Button.Pin != "" && cfg.Button.Pin == cfg.Button.LEDPin {
		ve.Add("button.pin and button.led_pin must differ (both %q)", cfg.Button.Pin)
	}
	if cfg.Button.Debounce <= 0 {
		ve.Add("button.debounce must be > 0")
	}
}

var validBackends = map[string]bool{
	"cli":  true,
	"http": true,
}

func validatePihole(cfg *Config, ve *ValidationError) {
	if !validBackends[cfg.Pihole.Backend] {
		ve.Add("pihole.backend %q is invalid (want: cli, http)", cfg.Pihole.Backend)
	}
	if cfg.Pihole.Backend == "cli" && cfg.Pihole.Bin == "" {
		ve.Add("pihole.bin is required when backend is cli")
	}
	if cfg.Pihole.Backend == "http" && cfg.Pihole.API.URL == "" {
		ve.Add("pihole.api.url is required when backend is http (set via PIHOLEBUTTON_API_URL)")
	}
	if cfg.Pihole.CommandTimeout <= 0 {
		ve.Add("pihole.command_timeout must be > 0")
	}
	if cfg.Pihole.PollInterval <= 0 {
		ve.Add("pihole.poll_interval must be > 0")
	}
	if cfg.Pihole.DisableDuration < 0 {
		ve.Add("pihole.disable_duration must be >= 0")
	}
	if cfg.Pihole.CircuitBreaker.Enabled {
		if cfg.Pihole.Backend != "http" {
			ve.Add("pihole.circuit_breaker requires the http backend")
		}
		if cfg.Pihole.CircuitBreaker.MaxFailures == 0 {
			ve.Add("pihole.circuit_breaker.max_failures must be > 0")
		}
	}
}

var validScheduleActions = map[string]bool{
	"enable":  true,
	"disable": true,
}

func validateSchedule(cfg *Config, ve *ValidationError) {
	if !cfg.Schedule.Enabled {
		return
	}
	if len(cfg.Schedule.Tasks) == 0 {
		ve.Add("schedule.tasks must not be empty when schedule is enabled")
	}
	for i, t := range cfg.Schedule.Tasks {
		if t.Name == "" {
			ve.Add("schedule.tasks[%d].name is required", i)
		}
		if t.Schedule == "" {
			ve.Add("schedule.tasks[%d].schedule is required", i)
		}
		if !validScheduleActions[t.Action] {
			ve.Add("schedule.tasks[%d].action %q is invalid (want: enable, disable)", i, t.Action)
		}
		if t.Duration < 0 {
			ve.Add("schedule.tasks[%d].duration must be >= 0", i)
		}
	}
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

func validateLogger(cfg *Config, ve *ValidationError) {
	if !validLogLevels[strings.ToLower(cfg.Logger.Level)] {
		ve.Add("logger.level %q is invalid (want: debug, info, warn, error)", cfg.Logger.Level)
	}
	if !validLogFormats[strings.ToLower(cfg.Logger.Format)] {
		ve.Add("logger.format %q is invalid (want: text, json)", cfg.Logger.Format)
	}
}

var validExporters = map[string]bool{
	"noop":   true,
	"stdout": true,
	"":       true,
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if cfg.Tracer.Enabled && !validExporters[cfg.Tracer.Exporter] {
		ve.Add("tracer.exporter %q is invalid (want: noop, stdout)", cfg.Tracer.Exporter)
	}
}
