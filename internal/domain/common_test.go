package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventTypeIntent(t *testing.T) {
	tests := []struct {
		event  EventType
		intent IntentType
	}{
		{EventOpen, IntentOpen},
		{EventIncrease, IntentIncrease},
		{EventDecrease, IntentDecrease},
		{EventClose, IntentClose},
		{EventUpdateTpSl, IntentUpdateTpSl},
		{EventCancelOrder, IntentCancelOrder},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.intent, tt.event.Intent(), string(tt.event))
	}
}

func TestIsKnownEventType(t *testing.T) {
	assert.True(t, IsKnownEventType(EventOpen))
	assert.True(t, IsKnownEventType(EventCancelOrder))
	assert.False(t, IsKnownEventType(EventType("LIQUIDATE")))
	assert.False(t, IsKnownEventType(EventType("")))
}
