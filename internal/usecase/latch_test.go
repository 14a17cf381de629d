package usecase

import (
	"testing"
	"time"
)

func TestLatchCoalescesPresses(t *testing.T) {
	l := NewPressLatch()

	for i := 0; i < 10; i++ {
		l.Notify()
	}

	if got := l.WaitAndConsume(); got != WakeButtonPressed {
		t.Fatalf("WaitAndConsume = %v, want WakeButtonPressed", got)
	}

	// All ten notifies collapsed into one wake; the latch is now empty.
	done := make(chan WakeReason, 1)
	go func() { done <- l.WaitAndConsume() }()

	select {
	case r := <-done:
		t.Fatalf("latch should be empty, got wake %v", r)
	case <-time.After(50 * time.Millisecond):
	}

	l.Notify()
	select {
	case r := <-done:
		if r != WakeButtonPressed {
			t.Fatalf("wake = %v, want WakeButtonPressed", r)
		}
	case <-time.After(time.Second):
		t.Fatal("consumer not woken by Notify")
	}
}

func TestLatchShutdownWakesBlockedConsumer(t *testing.T) {
	l := NewPressLatch()

	done := make(chan WakeReason, 1)
	go func() { done <- l.WaitAndConsume() }()

	time.Sleep(20 * time.Millisecond)
	l.Shutdown()

	select {
	case r := <-done:
		if r != WakeShutdownRequested {
			t.Fatalf("wake = %v, want WakeShutdownRequested", r)
		}
	case <-time.After(time.Second):
		t.Fatal("consumer not woken by Shutdown")
	}
}

func TestLatchShutdownWinsOverPendingPress(t *testing.T) {
	l := NewPressLatch()
	l.Notify()
	l.Shutdown()

	if got := l.WaitAndConsume(); got != WakeShutdownRequested {
		t.Fatalf("WaitAndConsume = %v, want WakeShutdownRequested", got)
	}
}

func TestLatchShutdownIsSticky(t *testing.T) {
	l := NewPressLatch()
	l.Shutdown()
	l.Shutdown() // idempotent

	for i := 0; i < 3; i++ {
		if got := l.WaitAndConsume(); got != WakeShutdownRequested {
			t.Fatalf("WaitAndConsume #%d = %v, want WakeShutdownRequested", i, got)
		}
	}
}

func TestLatchNotifyNeverBlocks(t *testing.T) {
	l := NewPressLatch()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			l.Notify()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked with no consumer")
	}
}
