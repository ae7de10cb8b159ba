package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventFromCommandKnown(t *testing.T) {
	event, ok := EventFromCommand(ReadZonesViolation)
	assert.True(t, ok)
	assert.Equal(t, EventZonesViolation, event)
}

func TestEventFromCommandUnknown(t *testing.T) {
	_, ok := EventFromCommand(ExecArmMode0)
	assert.False(t, ok)
}

func TestCommandFromEventRoundTrip(t *testing.T) {
	cmd, ok := CommandFromEvent(EventOutputPower)
	assert.True(t, ok)
	assert.Equal(t, ReadOutputPower, cmd)
}

func TestBroadcastEligibleOpcodes(t *testing.T) {
	assert.True(t, ReadZonesViolation.Broadcast())
	assert.True(t, ReadOutputPower.Broadcast())
	assert.True(t, ReadZoneTemperature.Broadcast())
	assert.False(t, ExecArmMode0.Broadcast())
}
