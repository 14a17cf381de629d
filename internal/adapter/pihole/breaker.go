package pihole

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"pihole-button/internal/domain"
	"pihole-button/internal/infra/config"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// namedOracle is implemented by oracles that identify their backend.
type namedOracle interface {
	Name() string
}

// CircuitBreakerOracle wraps a StatusOracle with circuit breaker protection.
// When the wrapped oracle fails repeatedly, the circuit opens and subsequent
// calls fail fast without reaching the Pi-hole, so a dead admin API does not
// pile up blocked HTTP requests behind every poll tick.
type CircuitBreakerOracle struct {
	inner   domain.StatusOracle
	breaker *gobreaker.CircuitBreaker[domain.FilterState]
	logger  *slog.Logger
}

// NewCircuitBreakerOracle wraps inner with a circuit breaker.
// Zero-valued settings fall back to defaults.
func NewCircuitBreakerOracle(inner domain.StatusOracle, cfg config.CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerOracle {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	name := "pihole"
	if n, ok := inner.(namedOracle); ok {
		name = "pihole:" + n.Name()
	}

	cb := gobreaker.NewCircuitBreaker[domain.FilterState](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return &CircuitBreakerOracle{
		inner:   inner,
		breaker: cb,
		logger:  logger,
	}
}

// Status implements domain.StatusOracle through the breaker.
func (o *CircuitBreakerOracle) Status(ctx context.Context) (domain.FilterState, error) {
	state, err := o.breaker.Execute(func() (domain.FilterState, error) {
		return o.inner.Status(ctx)
	})
	if err != nil {
		return domain.StateDisabled, o.wrapBreakerErr(err)
	}
	return state, nil
}

// Enable implements domain.StatusOracle through the breaker.
func (o *CircuitBreakerOracle) Enable(ctx context.Context) error {
	_, err := o.breaker.Execute(func() (domain.FilterState, error) {
		return domain.StateEnabled, o.inner.Enable(ctx)
	})
	return o.wrapBreakerErr(err)
}

// Disable implements domain.StatusOracle through the breaker.
func (o *CircuitBreakerOracle) Disable(ctx context.Context, d time.Duration) error {
	_, err := o.breaker.Execute(func() (domain.FilterState, error) {
		return domain.StateDisabled, o.inner.Disable(ctx, d)
	})
	return o.wrapBreakerErr(err)
}

// State returns the current circuit breaker state for monitoring.
func (o *CircuitBreakerOracle) State() gobreaker.State {
	return o.breaker.State()
}

func (o *CircuitBreakerOracle) wrapBreakerErr(err error) error {
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return fmt.Errorf("pihole circuit open: %w", err)
	}
	return err
}

var _ domain.StatusOracle = (*CircuitBreakerOracle)(nil)
