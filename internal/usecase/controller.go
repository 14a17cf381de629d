package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pihole-button/internal/adapter/gpio"
	"pihole-button/internal/domain"
)

// Controller owns the daemon lifecycle: it arms the button, runs the toggle
// worker and the status poller, and tears everything down in order when the
// context is cancelled.
type Controller struct {
	oracle domain.StatusOracle
	board  gpio.Board
	latch  *PressLatch
	worker *ToggleWorker
	poller *StatusPoller
	logger *slog.Logger

	debounce        time.Duration
	invertIndicator bool
}

// NewController wires the control loops together.
func NewController(
	oracle domain.StatusOracle,
	board gpio.Board,
	latch *PressLatch,
	worker *ToggleWorker,
	poller *StatusPoller,
	logger *slog.Logger,
	debounce time.Duration,
	invertIndicator bool,
) *Controller {
	return &Controller{
		oracle:          oracle,
		board:           board,
		latch:           latch,
		worker:          worker,
		poller:          poller,
		logger:          logger,
		debounce:        debounce,
		invertIndicator: invertIndicator,
	}
}

// Run blocks until ctx is cancelled, then shuts down in order: latch first
// so the worker drains, then edge detection, then the board. It returns an
// error only when the daemon could not start or the board could not be
// released; everything else is logged and survived.
func (c *Controller) Run(ctx context.Context) error {
	// Seed the indicator before the first poll tick so the LED is not dark
	// for a full interval at startup. A failed read here is survivable: the
	// poller repairs it.
	if state, err := c.oracle.Status(ctx); err != nil {
		c.logger.Warn("initial status read failed", "error", err)
	} else {
		c.logger.Info("initial blocking state", "state", state)
		if err := c.board.SetIndicator(gpio.IndicatorFor(state, c.invertIndicator)); err != nil {
			c.logger.Warn("indicator write failed", "error", err)
		}
	}

	// Without edge detection the daemon is useless, so this one is fatal.
	if err := c.board.SubscribeRisingEdge(c.debounce, c.latch.Notify); err != nil {
		return fmt.Errorf("arm button: %w", err)
	}

	// The worker is stopped through the latch, never through the context:
	// an in-flight Pi-hole command is allowed to land before shutdown is
	// observed, so the command path must not die with the signal context.
	// Per-command timeouts still apply inside the oracle.
	workerDone := make(chan struct{})
	workerCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(workerDone)
		c.worker.Run(workerCtx)
	}()

	c.logger.Info("controller running", "debounce", c.debounce)
	c.poller.Run(ctx)

	// Shutdown: wake and drain the worker before touching the hardware so
	// an in-flight toggle finishes (or fails) before edges are disarmed.
	c.logger.Info("shutting down")
	c.latch.Shutdown()
	<-workerDone

	if err := c.board.Unsubscribe(); err != nil {
		c.logger.Warn("disarm button failed", "error", err)
	}
	if err := c.board.Close(); err != nil {
		return fmt.Errorf("release board: %w", err)
	}

	c.logger.Info("shutdown complete")
	return nil
}
