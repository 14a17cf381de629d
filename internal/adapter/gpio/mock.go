package gpio

import (
	"sync"
	"time"
)

// MockBoard is an in-memory Board for tests. TriggerEdge simulates a button
// press; indicator writes are recorded for inspection.
type MockBoard struct {
	mu sync.Mutex

	subscribed bool
	debounce   time.Duration
	fn         func()

	// IndicatorWrites records every SetIndicator call in order.
	IndicatorWrites []bool

	// SubscribeErr, IndicatorErr and CloseErr are returned by the
	// corresponding methods when set.
	SubscribeErr error
	IndicatorErr error
	CloseErr     error

	Unsubscribed bool
	Closed       bool
}

// NewMockBoard creates an idle mock board.
func NewMockBoard() *MockBoard {
	return &MockBoard{}
}

func (m *MockBoard) SubscribeRisingEdge(debounce time.Duration, fn func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SubscribeErr != nil {
		return m.SubscribeErr
	}
	m.subscribed = true
	m.debounce = debounce
	m.fn = fn
	return nil
}

func (m *MockBoard) Unsubscribe() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribed = false
	m.Unsubscribed = true
	return nil
}

func (m *MockBoard) SetIndicator(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IndicatorErr != nil {
		return m.IndicatorErr
	}
	m.IndicatorWrites = append(m.IndicatorWrites, on)
	return nil
}

func (m *MockBoard) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return m.CloseErr
}

// TriggerEdge simulates an accepted button press. It is a no-op when no
// subscription is active, matching disarmed hardware.
func (m *MockBoard) TriggerEdge() {
	m.mu.Lock()
	fn := m.fn
	active := m.subscribed
	m.mu.Unlock()
	if active && fn != nil {
		fn()
	}
}

// LastIndicator returns the most recent indicator write.
func (m *MockBoard) LastIndicator() (on bool, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.IndicatorWrites) == 0 {
		return false, false
	}
	return m.IndicatorWrites[len(m.IndicatorWrites)-1], true
}

// WriteCount returns how many indicator writes were recorded.
func (m *MockBoard) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.IndicatorWrites)
}

var _ Board = (*MockBoard)(nil)
