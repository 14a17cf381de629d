package usecase

import (
	"context"
	"log/slog"
	"time"

	"pihole-button/internal/adapter/gpio"
	"pihole-button/internal/domain"
	"pihole-button/internal/infra/tracer"
)

// ToggleWorker consumes button presses from the latch and flips the Pi-hole
// to the opposite of its current state. The current state is re-read at
// consumption time rather than cached, so a press always toggles relative
// to what the Pi-hole actually is, even if an external actor changed it
// since the last poll.
//
// Errors are fail-open: a failed read or command is logged and the press is
// dropped, the indicator is left untouched, and the worker waits for the
// next press. The next poll tick repairs the indicator if it is stale.
type ToggleWorker struct {
	oracle domain.StatusOracle
	board  gpio.Board
	latch  *PressLatch
	bus    domain.EventBus
	logger *slog.Logger

	disableDuration time.Duration
	invertIndicator bool
}

// NewToggleWorker wires a worker to its latch and hardware.
func NewToggleWorker(
	oracle domain.StatusOracle,
	board gpio.Board,
	latch *PressLatch,
	bus domain.EventBus,
	logger *slog.Logger,
	disableDuration time.Duration,
	invertIndicator bool,
) *ToggleWorker {
	return &ToggleWorker{
		oracle:          oracle,
		board:           board,
		latch:           latch,
		bus:             bus,
		logger:          logger,
		disableDuration: disableDuration,
		invertIndicator: invertIndicator,
	}
}

// Run blocks consuming presses until the latch reports shutdown. It issues
// no Pi-hole commands after that point.
func (w *ToggleWorker) Run(ctx context.Context) {
	for {
		if w.latch.WaitAndConsume() == WakeShutdownRequested {
			w.logger.Debug("toggle worker stopping")
			return
		}
		w.handlePress(ctx)
	}
}

// handlePress performs one toggle cycle: fresh read, opposite command,
// indicator write.
func (w *ToggleWorker) handlePress(ctx context.Context) {
	ctx, span := tracer.StartSpan(ctx, "toggle")
	defer span.End()

	w.publish(ctx, domain.Event{
		Type:      domain.EventButtonPressed,
		Timestamp: time.Now(),
		Source:    domain.SourceButton,
	})

	current, err := w.oracle.Status(ctx)
	if err != nil {
		w.logger.Warn("toggle skipped: status read failed", "error", err)
		tracer.RecordError(span, err)
		w.publish(ctx, domain.Event{
			Type:      domain.EventToggleFailed,
			Timestamp: time.Now(),
			Source:    domain.SourceButton,
			Detail:    err.Error(),
		})
		return
	}

	target := current.Opposite()
	span.SetAttributes(tracer.StringAttr("state.target", target.String()))

	if target == domain.StateEnabled {
		err = w.oracle.Enable(ctx)
	} else {
		err = w.oracle.Disable(ctx, w.disableDuration)
	}
	if err != nil {
		w.logger.Warn("toggle failed", "target", target, "error", err)
		tracer.RecordError(span, err)
		w.publish(ctx, domain.Event{
			Type:      domain.EventToggleFailed,
			Timestamp: time.Now(),
			Source:    domain.SourceButton,
			State:     target,
			Detail:    err.Error(),
		})
		return
	}

	if err := w.board.SetIndicator(gpio.IndicatorFor(target, w.invertIndicator)); err != nil {
		w.logger.Warn("indicator write failed", "error", err)
	}

	w.logger.Info("blocking toggled", "from", current, "to", target)
	tracer.SetOK(span)
	w.publish(ctx, domain.Event{
		Type:      domain.EventStateChanged,
		Timestamp: time.Now(),
		Source:    domain.SourceButton,
		State:     target,
	})
}

func (w *ToggleWorker) publish(ctx context.Context, ev domain.Event) {
	if w.bus != nil {
		w.bus.Publish(ctx, ev)
	}
}
