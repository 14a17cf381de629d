package schedule

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pihole-button/internal/adapter/pihole"
	"pihole-button/internal/domain"
	"pihole-button/internal/infra/config"
)

func TestParseScheduleCron(t *testing.T) {
	sched, err := parseSchedule("0 23 * * *")
	require.NoError(t, err)
	assert.NotNil(t, sched)
}

func TestParseScheduleDuration(t *testing.T) {
	sched, err := parseSchedule("90m")
	require.NoError(t, err)

	now := time.Now()
	assert.Equal(t, now.Add(90*time.Minute), sched.Next(now))
}

func TestParseScheduleSubSecondDuration(t *testing.T) {
	sched, err := parseSchedule("500ms")
	require.NoError(t, err)

	now := time.Now()
	assert.Equal(t, now.Add(500*time.Millisecond), sched.Next(now))
}

func TestParseScheduleInvalid(t *testing.T) {
	for _, in := range []string{"", "nonsense", "-5m"} {
		_, err := parseSchedule(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestAddTaskUnknownAction(t *testing.T) {
	s := New(pihole.NewMockOracle(domain.StateEnabled), nil, slog.Default())

	err := s.AddTask(config.ScheduledTaskConfig{
		Name:     "bad",
		Schedule: "1h",
		Action:   "reboot",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestAddTaskInvalidSchedule(t *testing.T) {
	s := New(pihole.NewMockOracle(domain.StateEnabled), nil, slog.Default())

	err := s.AddTask(config.ScheduledTaskConfig{
		Name:     "bad",
		Schedule: "whenever",
		Action:   "enable",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")
}

func TestScheduledDisableFires(t *testing.T) {
	oracle := pihole.NewMockOracle(domain.StateEnabled)
	s := New(oracle, nil, slog.Default())

	require.NoError(t, s.AddTask(config.ScheduledTaskConfig{
		Name:     "homework-hour",
		Schedule: "20ms",
		Action:   "disable",
		Duration: time.Hour,
	}))

	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return oracle.CallCount("disable") >= 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, time.Hour, oracle.LastDisableDuration)
}

func TestScheduledEnableFiresAndPublishes(t *testing.T) {
	oracle := pihole.NewMockOracle(domain.StateDisabled)
	bus := &captureBus{fired: make(chan domain.Event, 8)}
	s := New(oracle, bus, slog.Default())

	require.NoError(t, s.AddTask(config.ScheduledTaskConfig{
		Name:     "morning-on",
		Schedule: "20ms",
		Action:   "enable",
	}))

	s.Start(context.Background())
	defer s.Stop()

	select {
	case ev := <-bus.fired:
		assert.Equal(t, domain.EventScheduleFired, ev.Type)
		assert.Equal(t, domain.SourceSchedule, ev.Source)
		assert.Equal(t, "morning-on", ev.Detail)
	case <-time.After(time.Second):
		t.Fatal("schedule did not fire")
	}
	assert.GreaterOrEqual(t, oracle.CallCount("enable"), 1)
}

func TestStopPreventsFurtherRuns(t *testing.T) {
	oracle := pihole.NewMockOracle(domain.StateEnabled)
	s := New(oracle, nil, slog.Default())

	require.NoError(t, s.AddTask(config.ScheduledTaskConfig{
		Name:     "tick",
		Schedule: "20ms",
		Action:   "enable",
	}))

	s.Start(context.Background())
	require.Eventually(t, func() bool {
		return oracle.CallCount("enable") >= 1
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	count := oracle.CallCount("enable")
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, count, oracle.CallCount("enable"), "no runs after Stop")
}

// captureBus forwards published events to a channel.
type captureBus struct {
	fired chan domain.Event
}

func (b *captureBus) Publish(_ context.Context, ev domain.Event) {
	select {
	case b.fired <- ev:
	default:
	}
}
func (b *captureBus) Subscribe(domain.EventType, domain.EventHandler) func() { return func() {} }
func (b *captureBus) SubscribeAll(domain.EventHandler) func()                { return func() {} }
func (b *captureBus) Close()                                                 {}
