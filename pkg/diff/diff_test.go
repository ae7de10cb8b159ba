package diff

import (
	"testing"

	"github.com/gosatel/integra/pkg/proto"
	"github.com/stretchr/testify/assert"
)

func TestBitsDetectsFlippedBit(t *testing.T) {
	prev := []byte{0x00, 0x00}
	curr := []byte{0x01, 0x00}
	deltas := Bits(prev, curr, 2)
	assert.Equal(t, []Delta{{Index: 1, Value: true}}, deltas)
}

func TestBitsNoChangeNoDeltas(t *testing.T) {
	same := []byte{0xFF, 0x01}
	assert.Empty(t, Bits(same, same, 2))
}

func TestComplementFlipsAllBits(t *testing.T) {
	assert.Equal(t, []byte{0xFF, 0x00}, Complement([]byte{0x00, 0xFF}))
}

func TestEngineFirstObservationReportsEverySetBit(t *testing.T) {
	e := New()
	deltas := e.Update(proto.EventZonesViolation, []byte{0x01, 0x00}, Capacities{Zones: 16})
	// The synthesized complement differs from curr in all 16 bits, so every
	// bit is reported; only the set bit carries Value true.
	assert.Len(t, deltas, 16)
	assert.Equal(t, Delta{Index: 1, Value: true}, deltas[0])
}

func TestEngineSecondObservationOnlyReportsChanges(t *testing.T) {
	e := New()
	e.Update(proto.EventZonesViolation, []byte{0x01, 0x00}, Capacities{Zones: 16})
	deltas := e.Update(proto.EventZonesViolation, []byte{0x03, 0x00}, Capacities{Zones: 16})
	assert.Equal(t, []Delta{{Index: 2, Value: true}}, deltas)
}

func TestEngineTruncatesToCapacity(t *testing.T) {
	e := New()
	// 8 zones of capacity -> only the first byte is considered even
	// though curr carries two: its 8 bits are reported, the second
	// byte's are not.
	deltas := e.Update(proto.EventZonesViolation, []byte{0x00, 0xFF}, Capacities{Zones: 8})
	assert.Len(t, deltas, 8)
}

func TestEngineResetClearsCache(t *testing.T) {
	e := New()
	e.Update(proto.EventZonesViolation, []byte{0xFF}, Capacities{Zones: 8})
	e.Reset()
	deltas := e.Update(proto.EventZonesViolation, []byte{0xFF}, Capacities{Zones: 8})
	assert.Len(t, deltas, 8)
}

func TestEngineUnknownEventNotTruncated(t *testing.T) {
	e := New()
	deltas := e.Update(proto.EventRtcAndStatus, []byte{0x01}, Capacities{})
	assert.Len(t, deltas, 8)
}
