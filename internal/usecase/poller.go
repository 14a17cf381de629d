package usecase

import (
	"context"
	"log/slog"
	"time"

	"pihole-button/internal/adapter/gpio"
	"pihole-button/internal/domain"
)

// StatusPoller periodically reads the Pi-hole state and rewrites the
// indicator, so toggles made outside the button (web UI, CLI, a timed
// disable expiring) show on the LED within one interval. The indicator is
// written on every successful tick from the fresh reading; the last observed
// state exists only to log transitions, never to decide whether to write.
type StatusPoller struct {
	oracle domain.StatusOracle
	board  gpio.Board
	bus    domain.EventBus
	logger *slog.Logger

	interval        time.Duration
	invertIndicator bool

	lastObserved *domain.FilterState
}

// NewStatusPoller wires a poller to its oracle and board.
func NewStatusPoller(
	oracle domain.StatusOracle,
	board gpio.Board,
	bus domain.EventBus,
	logger *slog.Logger,
	interval time.Duration,
	invertIndicator bool,
) *StatusPoller {
	return &StatusPoller{
		oracle:          oracle,
		board:           board,
		bus:             bus,
		logger:          logger,
		interval:        interval,
		invertIndicator: invertIndicator,
	}
}

// Run blocks ticking at the configured interval until ctx is cancelled.
func (p *StatusPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("status poller stopping")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick performs one poll cycle. A read failure leaves the indicator and the
// last observed state untouched; the next tick retries naturally.
func (p *StatusPoller) tick(ctx context.Context) {
	state, err := p.oracle.Status(ctx)
	if err != nil {
		p.logger.Warn("poll failed", "error", err)
		return
	}

	if err := p.board.SetIndicator(gpio.IndicatorFor(state, p.invertIndicator)); err != nil {
		p.logger.Warn("indicator write failed", "error", err)
	}

	if p.lastObserved != nil && *p.lastObserved != state {
		p.logger.Info("blocking state changed externally", "from", *p.lastObserved, "to", state)
		if p.bus != nil {
			p.bus.Publish(ctx, domain.Event{
				Type:      domain.EventStateChanged,
				Timestamp: time.Now(),
				Source:    domain.SourcePoller,
				State:     state,
			})
		}
	}
	s := state
	p.lastObserved = &s
}
