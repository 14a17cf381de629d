package gpio

import (
	"time"

	"pihole-button/internal/domain"
)

// Board abstracts the push button input and the status LED output so the
// control loops can be exercised without hardware.
type Board interface {
	// SubscribeRisingEdge arms the button pin for rising edge interrupts and
	// invokes fn once per accepted press. Edges arriving within the debounce
	// window after an accepted press are discarded. Only one subscription may
	// be active at a time.
	SubscribeRisingEdge(debounce time.Duration, fn func()) error
	// Unsubscribe disarms edge detection and stops the dispatch goroutine.
	Unsubscribe() error
	// SetIndicator drives the status LED.
	SetIndicator(on bool) error
	// Close releases pin handles. The LED is left in its last written state.
	Close() error
}

// IndicatorFor maps a blocking state to the LED level. Default polarity
// matches the reference wiring: LED off while blocking is enabled, LED on
// while it is disabled, so a lit LED means "ads are getting through".
func IndicatorFor(state domain.FilterState, invert bool) bool {
	on := state == domain.StateDisabled
	if invert {
		on = !on
	}
	return on
}
