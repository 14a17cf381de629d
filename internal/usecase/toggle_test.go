package usecase

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pihole-button/internal/adapter/gpio"
	"pihole-button/internal/adapter/pihole"
	"pihole-button/internal/domain"
)

func newTestWorker(oracle *pihole.MockOracle, board *gpio.MockBoard) (*ToggleWorker, *PressLatch) {
	latch := NewPressLatch()
	w := NewToggleWorker(oracle, board, latch, nil, slog.Default(), 0, false)
	return w, latch
}

func TestToggleFlipsEnabledToDisabled(t *testing.T) {
	oracle := pihole.NewMockOracle(domain.StateEnabled)
	board := gpio.NewMockBoard()
	w, _ := newTestWorker(oracle, board)

	w.handlePress(context.Background())

	assert.Equal(t, []string{"status", "disable"}, oracle.Calls)
	last, ok := board.LastIndicator()
	require.True(t, ok)
	assert.True(t, last, "LED should be on while blocking is disabled")
}

func TestToggleFlipsDisabledToEnabled(t *testing.T) {
	oracle := pihole.NewMockOracle(domain.StateDisabled)
	board := gpio.NewMockBoard()
	w, _ := newTestWorker(oracle, board)

	w.handlePress(context.Background())

	assert.Equal(t, []string{"status", "enable"}, oracle.Calls)
	last, ok := board.LastIndicator()
	require.True(t, ok)
	assert.False(t, last, "LED should be off while blocking is enabled")
}

func TestDoubleToggleRoundTrips(t *testing.T) {
	oracle := pihole.NewMockOracle(domain.StateEnabled)
	board := gpio.NewMockBoard()
	w, _ := newTestWorker(oracle, board)

	w.handlePress(context.Background())
	w.handlePress(context.Background())

	state, err := oracle.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StateEnabled, state)
	assert.Equal(t, []string{"status", "disable", "status", "enable", "status"}, oracle.Calls)
}

func TestToggleUsesFreshStateAtConsumption(t *testing.T) {
	oracle := pihole.NewMockOracle(domain.StateEnabled)
	board := gpio.NewMockBoard()
	w, _ := newTestWorker(oracle, board)

	// External actor disables blocking before the press is handled.
	oracle.SetState(domain.StateDisabled)
	w.handlePress(context.Background())

	// The toggle went from the fresh reading, so it enabled.
	assert.Equal(t, 1, oracle.CallCount("enable"))
	assert.Equal(t, 0, oracle.CallCount("disable"))
}

func TestToggleStatusFailureDropsPress(t *testing.T) {
	oracle := pihole.NewMockOracle(domain.StateEnabled)
	oracle.StatusErr = errors.New("pihole unreachable")
	board := gpio.NewMockBoard()
	w, _ := newTestWorker(oracle, board)

	w.handlePress(context.Background())

	assert.Equal(t, 0, oracle.CallCount("enable"))
	assert.Equal(t, 0, oracle.CallCount("disable"))
	assert.Zero(t, board.WriteCount(), "indicator untouched on failure")
}

func TestToggleCommandFailureLeavesIndicator(t *testing.T) {
	oracle := pihole.NewMockOracle(domain.StateEnabled)
	oracle.DisableErr = errors.New("exit status 1")
	board := gpio.NewMockBoard()
	w, _ := newTestWorker(oracle, board)

	w.handlePress(context.Background())

	assert.Zero(t, board.WriteCount(), "indicator untouched when command fails")

	// The worker survives: a later press still toggles.
	oracle.DisableErr = nil
	w.handlePress(context.Background())
	assert.Equal(t, 1, board.WriteCount())
}

func TestTogglePassesDisableDuration(t *testing.T) {
	oracle := pihole.NewMockOracle(domain.StateEnabled)
	board := gpio.NewMockBoard()
	latch := NewPressLatch()
	w := NewToggleWorker(oracle, board, latch, nil, slog.Default(), 5*time.Minute, false)

	w.handlePress(context.Background())

	assert.Equal(t, 5*time.Minute, oracle.LastDisableDuration)
}

func TestRunStopsOnShutdownWithoutCommands(t *testing.T) {
	oracle := pihole.NewMockOracle(domain.StateEnabled)
	board := gpio.NewMockBoard()
	w, latch := newTestWorker(oracle, board)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(context.Background())
	}()

	latch.Shutdown()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on shutdown")
	}
	assert.Empty(t, oracle.Calls, "no commands issued on shutdown wake")
}

func TestRunHandlesPressThenShutdown(t *testing.T) {
	oracle := pihole.NewMockOracle(domain.StateEnabled)
	board := gpio.NewMockBoard()
	w, latch := newTestWorker(oracle, board)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(context.Background())
	}()

	latch.Notify()
	require.Eventually(t, func() bool {
		return oracle.CallCount("disable") == 1
	}, time.Second, 5*time.Millisecond)

	latch.Shutdown()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on shutdown")
	}
}
