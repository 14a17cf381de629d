package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"pihole-button/internal/adapter/gpio"
	"pihole-button/internal/adapter/pihole"
	"pihole-button/internal/domain"
	"pihole-button/internal/infra/config"
	"pihole-button/internal/infra/logger"
	"pihole-button/internal/infra/tracer"
	"pihole-button/internal/usecase"
	"pihole-button/internal/usecase/eventbus"
	"pihole-button/internal/usecase/schedule"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`buttond - Pi-hole push button controller

Toggles Pi-hole blocking from a physical button and mirrors the blocking
state on a status LED.

USAGE:
    buttond [FLAGS]

FLAGS:
    -h, --help         Show this help message
    --config PATH      Config file path (default: ./config.yaml)
    --loglevel LEVEL   Override log level (debug, info, warn, error)
    --logfile PATH     Override log output (stdout, stderr, or a file path)

CONFIGURATION:
    Config file: ./config.yaml (missing file runs reference wiring defaults)
    Environment: PIHOLEBUTTON_* variables override config

EXAMPLES:
    buttond                              # GPIO21 button, GPIO20 LED, pihole CLI
    buttond --config /etc/buttond.yaml
    buttond --loglevel debug --logfile /var/log/buttond.log`)
}

// cliFlags holds command line overrides.
type cliFlags struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
}

// parseFlags extracts --config, --loglevel, --logfile from os.Args.
func parseFlags() cliFlags {
	flags := cliFlags{ConfigPath: "config.yaml"}
	for i := 1; i < len(os.Args); i++ {
		switch {
		case os.Args[i] == "--config" && i+1 < len(os.Args):
			flags.ConfigPath = os.Args[i+1]
			i++
		case strings.HasPrefix(os.Args[i], "--config="):
			flags.ConfigPath = strings.TrimPrefix(os.Args[i], "--config=")
		case os.Args[i] == "--loglevel" && i+1 < len(os.Args):
			flags.LogLevel = os.Args[i+1]
			i++
		case strings.HasPrefix(os.Args[i], "--loglevel="):
			flags.LogLevel = strings.TrimPrefix(os.Args[i], "--loglevel=")
		case os.Args[i] == "--logfile" && i+1 < len(os.Args):
			flags.LogFile = os.Args[i+1]
			i++
		case strings.HasPrefix(os.Args[i], "--logfile="):
			flags.LogFile = strings.TrimPrefix(os.Args[i], "--logfile=")
		}
	}
	return flags
}

func run() error {
	// 1. Config
	flags := parseFlags()

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if flags.LogLevel != "" {
		cfg.Logger.Level = flags.LogLevel
	}
	if flags.LogFile != "" {
		cfg.Logger.Output = flags.LogFile
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	// 3. Pi-hole oracle
	oracle, err := buildOracle(cfg, log)
	if err != nil {
		return fmt.Errorf("pihole backend: %w", err)
	}

	// 4. GPIO board
	board, err := gpio.NewPeriphBoard(cfg.Button, log)
	if err != nil {
		return fmt.Errorf("gpio: %w", err)
	}

	// 5. Event bus with a log observer
	bus := eventbus.New(log)
	defer bus.Close()
	bus.SubscribeAll(func(_ context.Context, ev domain.Event) {
		log.Debug("event", "type", string(ev.Type), "source", string(ev.Source), "detail", ev.Detail)
	})

	// 6. Scheduler
	if cfg.Schedule.Enabled {
		sched := schedule.New(oracle, bus, log)
		for _, task := range cfg.Schedule.Tasks {
			if err := sched.AddTask(task); err != nil {
				return fmt.Errorf("schedule: %w", err)
			}
		}
		sched.Start(ctx)
		defer sched.Stop()
	}

	// 7. Control loops
	latch := usecase.NewPressLatch()
	worker := usecase.NewToggleWorker(oracle, board, latch, bus, log,
		cfg.Pihole.DisableDuration, cfg.Button.InvertIndicator)
	poller := usecase.NewStatusPoller(oracle, board, bus, log,
		cfg.Pihole.PollInterval, cfg.Button.InvertIndicator)
	controller := usecase.NewController(oracle, board, latch, worker, poller, log,
		cfg.Button.Debounce, cfg.Button.InvertIndicator)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("buttond starting",
		"button", cfg.Button.Pin,
		"led", cfg.Button.LEDPin,
		"backend", cfg.Pihole.Backend,
		"poll_interval", cfg.Pihole.PollInterval,
	)

	return controller.Run(ctx)
}

// buildOracle creates the configured Pi-hole backend, optionally wrapped
// with a circuit breaker.
func buildOracle(cfg *config.Config, log *slog.Logger) (domain.StatusOracle, error) {
	var oracle domain.StatusOracle
	switch cfg.Pihole.Backend {
	case "cli":
		oracle = pihole.NewCLIOracle(cfg.Pihole.Bin, cfg.Pihole.CommandTimeout, log)
	case "http":
		oracle = pihole.NewHTTPOracle(cfg.Pihole.API, log)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Pihole.Backend)
	}

	if cfg.Pihole.CircuitBreaker.Enabled {
		oracle = pihole.NewCircuitBreakerOracle(oracle, cfg.Pihole.CircuitBreaker, log)
	}
	return oracle, nil
}
