package pihole

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"pihole-button/internal/domain"
)

// commandRunner abstracts subprocess execution so tests can inject a fake.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// execRunner runs commands on the local system with a per-command timeout.
type execRunner struct {
	timeout time.Duration
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// CLIOracle drives the Pi-hole through its command line binary.
// Status parsing matches the pihole CLI output: a status line containing
// "Enabled" means blocking is active.
type CLIOracle struct {
	bin    string
	runner commandRunner
	logger *slog.Logger
}

// NewCLIOracle creates a CLI-backed oracle running bin with the given
// per-command timeout.
func NewCLIOracle(bin string, timeout time.Duration, logger *slog.Logger) *CLIOracle {
	return &CLIOracle{
		bin:    bin,
		runner: &execRunner{timeout: timeout},
		logger: logger,
	}
}

// Name identifies the backend in logs.
func (o *CLIOracle) Name() string { return "cli" }

// Status runs `pihole status` and parses the blocking state from stdout.
func (o *CLIOracle) Status(ctx context.Context) (domain.FilterState, error) {
	stdout, stderr, err := o.runner.Run(ctx, o.bin, "status")
	if err != nil {
		return domain.StateDisabled, fmt.Errorf("pihole status: %w (stderr: %s)", err, strings.TrimSpace(stderr))
	}
	if strings.Contains(stdout, "Enabled") || strings.Contains(stdout, "enabled") {
		return domain.StateEnabled, nil
	}
	return domain.StateDisabled, nil
}

// Enable runs `pihole enable`.
func (o *CLIOracle) Enable(ctx context.Context) error {
	_, stderr, err := o.runner.Run(ctx, o.bin, "enable")
	if err != nil {
		return fmt.Errorf("pihole enable: %w (stderr: %s)", err, strings.TrimSpace(stderr))
	}
	o.logger.Debug("pihole enable issued", "bin", o.bin)
	return nil
}

// Disable runs `pihole disable`, passing a duration in seconds when d > 0.
// A zero duration disables blocking until re-enabled.
func (o *CLIOracle) Disable(ctx context.Context, d time.Duration) error {
	args := []string{"disable"}
	if d > 0 {
		args = append(args, fmt.Sprintf("%ds", int(d.Seconds())))
	}
	_, stderr, err := o.runner.Run(ctx, o.bin, args...)
	if err != nil {
		return fmt.Errorf("pihole disable: %w (stderr: %s)", err, strings.TrimSpace(stderr))
	}
	o.logger.Debug("pihole disable issued", "bin", o.bin, "duration", d)
	return nil
}

var _ domain.StatusOracle = (*CLIOracle)(nil)
