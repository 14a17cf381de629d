package gpio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pihole-button/internal/domain"
)

func TestIndicatorFor(t *testing.T) {
	// Default polarity: LED off = blocking enabled.
	assert.False(t, IndicatorFor(domain.StateEnabled, false))
	assert.True(t, IndicatorFor(domain.StateDisabled, false))

	// Inverted polarity flips both.
	assert.True(t, IndicatorFor(domain.StateEnabled, true))
	assert.False(t, IndicatorFor(domain.StateDisabled, true))
}

func TestMockBoardEdgeDispatch(t *testing.T) {
	b := NewMockBoard()

	presses := 0
	require.NoError(t, b.SubscribeRisingEdge(500*time.Millisecond, func() { presses++ }))

	b.TriggerEdge()
	b.TriggerEdge()
	assert.Equal(t, 2, presses)

	require.NoError(t, b.Unsubscribe())
	b.TriggerEdge()
	assert.Equal(t, 2, presses, "no dispatch after unsubscribe")
}

func TestMockBoardIndicatorRecording(t *testing.T) {
	b := NewMockBoard()

	require.NoError(t, b.SetIndicator(true))
	require.NoError(t, b.SetIndicator(false))

	assert.Equal(t, []bool{true, false}, b.IndicatorWrites)
	last, ok := b.LastIndicator()
	require.True(t, ok)
	assert.False(t, last)
}
