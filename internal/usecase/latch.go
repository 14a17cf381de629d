package usecase

import "sync"

// WakeReason tells a latch consumer why it was woken.
type WakeReason int

const (
	// WakeButtonPressed means at least one button press occurred since the
	// last consumption.
	WakeButtonPressed WakeReason = iota
	// WakeShutdownRequested means the daemon is stopping and no further
	// presses will be delivered.
	WakeShutdownRequested
)

// PressLatch coalesces button presses into a single pending signal. Any
// number of Notify calls between two consumptions collapse into one wake,
// so a worker mid-toggle never builds a queue of stale presses. Notify
// never blocks, which keeps it safe to call from an interrupt dispatch
// goroutine.
type PressLatch struct {
	pressed  chan struct{}
	shutdown chan struct{}
	once     sync.Once
}

// NewPressLatch creates an idle latch.
func NewPressLatch() *PressLatch {
	return &PressLatch{
		pressed:  make(chan struct{}, 1),
		shutdown: make(chan struct{}),
	}
}

// Notify records a button press. If a press is already pending it is
// absorbed silently.
func (l *PressLatch) Notify() {
	select {
	case l.pressed <- struct{}{}:
	default:
	}
}

// Shutdown wakes any blocked consumer with WakeShutdownRequested and makes
// every future WaitAndConsume return immediately. Safe to call more than
// once.
func (l *PressLatch) Shutdown() {
	l.once.Do(func() { close(l.shutdown) })
}

// WaitAndConsume blocks until a press is pending or shutdown is requested,
// clears the pending press, and reports why it woke. Shutdown wins when
// both are observable so a stopping daemon never starts a fresh toggle.
func (l *PressLatch) WaitAndConsume() WakeReason {
	select {
	case <-l.shutdown:
		return WakeShutdownRequested
	default:
	}

	select {
	case <-l.pressed:
		return WakeButtonPressed
	case <-l.shutdown:
		return WakeShutdownRequested
	}
}
