package domain

import (
	"context"
	"time"
)

// FilterState is the blocking state of the Pi-hole. The Pi-hole itself is
// the source of truth; every FilterState held by this process is a cache
// and must be refreshed before acting on it.
type FilterState int

const (
	StateDisabled FilterState = iota
	StateEnabled
)

func (s FilterState) String() string {
	if s == StateEnabled {
		return "enabled"
	}
	return "disabled"
}

// Opposite returns the state a toggle should command.
func (s FilterState) Opposite() FilterState {
	if s == StateEnabled {
		return StateDisabled
	}
	return StateEnabled
}

// StatusOracle is the authoritative query/command interface to the Pi-hole.
// All three calls are synchronous; callers impose timeouts via ctx.
type StatusOracle interface {
	// Status reports the current blocking state.
	Status(ctx context.Context) (FilterState, error)
	// Enable turns blocking on.
	Enable(ctx context.Context) error
	// Disable turns blocking off. A non-zero duration requests a timed
	// disable after which the Pi-hole re-enables itself; zero disables
	// indefinitely.
	Disable(ctx context.Context, d time.Duration) error
}
