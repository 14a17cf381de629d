package pihole

import (
	"context"
	"sync"
	"time"

	"pihole-button/internal/domain"
)

// MockOracle is an in-memory StatusOracle for tests. It tracks the blocking
// state locally and records every command issued against it.
type MockOracle struct {
	mu sync.Mutex

	state domain.FilterState

	// Calls records method names in invocation order.
	Calls []string
	// LastDisableDuration holds the duration of the most recent Disable call.
	LastDisableDuration time.Duration

	// StatusErr, EnableErr and DisableErr are returned by the corresponding
	// methods when set.
	StatusErr  error
	EnableErr  error
	DisableErr error
}

// NewMockOracle creates a mock oracle starting in the given state.
func NewMockOracle(initial domain.FilterState) *MockOracle {
	return &MockOracle{state: initial}
}

func (m *MockOracle) Name() string { return "mock" }

func (m *MockOracle) Status(ctx context.Context) (domain.FilterState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "status")
	if m.StatusErr != nil {
		return domain.StateDisabled, m.StatusErr
	}
	return m.state, nil
}

func (m *MockOracle) Enable(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "enable")
	if m.EnableErr != nil {
		return m.EnableErr
	}
	m.state = domain.StateEnabled
	return nil
}

func (m *MockOracle) Disable(ctx context.Context, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "disable")
	m.LastDisableDuration = d
	if m.DisableErr != nil {
		return m.DisableErr
	}
	m.state = domain.StateDisabled
	return nil
}

// SetState changes the tracked state out of band, simulating an external
// actor flipping the Pi-hole behind the controller's back.
func (m *MockOracle) SetState(s domain.FilterState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

// CallCount returns how many times the named method was invoked.
func (m *MockOracle) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == name {
			n++
		}
	}
	return n
}

var _ domain.StatusOracle = (*MockOracle)(nil)
