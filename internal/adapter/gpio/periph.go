package gpio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"pihole-button/internal/infra/config"
)

// PeriphBoard implements Board using periph.io for real hardware GPIO.
type PeriphBoard struct {
	button gpio.PinIO
	led    gpio.PinIO
	logger *slog.Logger

	mu         sync.Mutex
	subscribed bool
	stop       chan struct{}
	wg         sync.WaitGroup
}

// NewPeriphBoard initializes periph.io and resolves the button and LED pins
// by their BCM names (e.g. "GPIO21").
func NewPeriphBoard(cfg config.ButtonConfig, logger *slog.Logger) (*PeriphBoard, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	button := gpioreg.ByName(cfg.Pin)
	if button == nil {
		return nil, fmt.Errorf("button pin %q not found in hardware", cfg.Pin)
	}
	led := gpioreg.ByName(cfg.LEDPin)
	if led == nil {
		return nil, fmt.Errorf("led pin %q not found in hardware", cfg.LEDPin)
	}

	return &PeriphBoard{
		button: button,
		led:    led,
		logger: logger,
	}, nil
}

// SubscribeRisingEdge implements Board. The dispatch goroutine blocks on
// hardware edge interrupts and applies a software debounce window on top,
// since WaitForEdge reports every electrical transition of a bouncy switch.
func (b *PeriphBoard) SubscribeRisingEdge(debounce time.Duration, fn func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribed {
		return fmt.Errorf("button pin %s already subscribed", b.button.Name())
	}

	if err := b.button.In(gpio.PullUp, gpio.RisingEdge); err != nil {
		return fmt.Errorf("arm button pin %s: %w", b.button.Name(), err)
	}

	b.stop = make(chan struct{})
	b.subscribed = true
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()
		var lastAccepted time.Time
		for {
			if !b.button.WaitForEdge(-1) {
				// Halt() or pin teardown woke us up.
				select {
				case <-b.stop:
					return
				default:
					continue
				}
			}
			now := time.Now()
			if now.Sub(lastAccepted) < debounce {
				continue
			}
			lastAccepted = now
			fn()
		}
	}()

	b.logger.Debug("button armed", "pin", b.button.Name(), "debounce", debounce)
	return nil
}

// Unsubscribe implements Board.
func (b *PeriphBoard) Unsubscribe() error {
	b.mu.Lock()
	if !b.subscribed {
		b.mu.Unlock()
		return nil
	}
	b.subscribed = false
	close(b.stop)
	err := b.button.Halt()
	b.mu.Unlock()

	b.wg.Wait()
	if err != nil {
		return fmt.Errorf("halt button pin %s: %w", b.button.Name(), err)
	}
	return nil
}

// SetIndicator implements Board.
func (b *PeriphBoard) SetIndicator(on bool) error {
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := b.led.Out(level); err != nil {
		return fmt.Errorf("write led pin %s: %w", b.led.Name(), err)
	}
	return nil
}

// Close implements Board. Any active subscription is torn down first. The
// LED pin is not reset, so the indicator keeps showing the last known state
// after the daemon exits.
func (b *PeriphBoard) Close() error {
	if err := b.Unsubscribe(); err != nil {
		return err
	}
	if err := b.button.Halt(); err != nil {
		return fmt.Errorf("release button pin %s: %w", b.button.Name(), err)
	}
	return nil
}

var _ Board = (*PeriphBoard)(nil)
