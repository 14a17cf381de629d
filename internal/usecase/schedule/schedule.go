package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"pihole-button/internal/domain"
	"pihole-button/internal/infra/config"
)

// Default per-task timeout. Enable/disable commands are quick; a task that
// takes longer than this is stuck.
const taskTimeout = time.Minute

// Scheduler fires timed enable/disable actions against the Pi-hole, e.g.
// "disable blocking every evening for an hour". Schedules are cron
// expressions or plain duration strings.
type Scheduler struct {
	cron   *cron.Cron
	oracle domain.StatusOracle
	bus    domain.EventBus
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a scheduler bound to an oracle.
func New(oracle domain.StatusOracle, bus domain.EventBus, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		oracle: oracle,
		bus:    bus,
		logger: logger,
	}
}

// AddTask registers a configured task. The schedule can be a cron expression
// or a duration string.
func (s *Scheduler) AddTask(task config.ScheduledTaskConfig) error {
	sched, err := parseSchedule(task.Schedule)
	if err != nil {
		return fmt.Errorf("scheduler: invalid schedule %q for task %q: %w", task.Schedule, task.Name, err)
	}

	run, err := s.actionFunc(task)
	if err != nil {
		return err
	}

	s.cron.Schedule(sched, cron.FuncJob(func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()

		if ctx == nil {
			s.logger.Debug("scheduler stopped, skipping task", "task", task.Name)
			return
		}

		taskCtx, cancel := context.WithTimeout(ctx, taskTimeout)
		defer cancel()

		start := time.Now()
		if err := run(taskCtx); err != nil {
			s.logger.Warn("scheduled task failed",
				"task", task.Name,
				"action", task.Action,
				"error", err,
				"duration", time.Since(start))
			return
		}
		s.logger.Info("scheduled task completed",
			"task", task.Name,
			"action", task.Action,
			"duration", time.Since(start))

		if s.bus != nil {
			s.bus.Publish(taskCtx, domain.Event{
				Type:      domain.EventScheduleFired,
				Timestamp: time.Now(),
				Source:    domain.SourceSchedule,
				Detail:    task.Name,
			})
		}
	}))

	s.logger.Info("task added to scheduler", "name", task.Name, "schedule", task.Schedule, "action", task.Action)
	return nil
}

// actionFunc maps a task action to the oracle call it performs.
func (s *Scheduler) actionFunc(task config.ScheduledTaskConfig) (func(ctx context.Context) error, error) {
	switch task.Action {
	case "enable":
		return s.oracle.Enable, nil
	case "disable":
		d := task.Duration
		return func(ctx context.Context) error {
			return s.oracle.Disable(ctx, d)
		}, nil
	default:
		return nil, fmt.Errorf("scheduler: unknown action %q for task %q", task.Action, task.Name)
	}
}

// Start begins running the scheduler. Idempotent.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.started = true
}

// Stop signals the scheduler to stop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.started = false
}

// parseSchedule tries to parse a schedule string as a cron expression first,
// then falls back to time.ParseDuration.
func parseSchedule(schedule string) (cron.Schedule, error) {
	if schedule == "" {
		return nil, fmt.Errorf("empty schedule")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if sched, err := parser.Parse(schedule); err == nil {
		return sched, nil
	}

	dur, err := time.ParseDuration(schedule)
	if err != nil {
		return nil, fmt.Errorf("not a valid cron expression or duration: %q", schedule)
	}
	if dur <= 0 {
		return nil, fmt.Errorf("duration must be positive: %q", schedule)
	}
	return &constantDelay{delay: dur}, nil
}

// constantDelay implements cron.Schedule for a fixed interval.
// Unlike cron.Every(), it supports sub-second durations.
type constantDelay struct {
	delay time.Duration
}

func (d *constantDelay) Next(t time.Time) time.Time {
	return t.Add(d.delay)
}
