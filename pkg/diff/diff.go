// Package diff implements the per-notify-event bitmap change detector
// (component C6): given successive raw snapshots of a parts/zones/outputs/
// doors bitmap, it reports which object indices flipped and their new
// value.
//
// Grounded on original_source/satel_integra_api (the diff behaviour
// implicit in how notify handlers compare successive bitmaps) and on the
// teacher's own "keep last value, XOR on update" style used for SDO/PDO
// change tracking.
package diff

import "github.com/gosatel/integra/pkg/proto"

// Delta is one object whose bit flipped between two observations of the
// same bitmap.
type Delta struct {
	// Index is 1-based: byte*8 + bit + 1.
	Index int
	Value bool
}

// Bits compares prev and curr over the first n bytes and returns one
// Delta per bit that differs. curr is assumed to be at least n bytes
// long; prev shorter than n is treated as zero-padded.
func Bits(prev, curr []byte, n int) []Delta {
	var deltas []Delta
	for i := 0; i < n; i++ {
		var p byte
		if i < len(prev) {
			p = prev[i]
		}
		var c byte
		if i < len(curr) {
			c = curr[i]
		}
		x := p ^ c
		if x == 0 {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			if x&(1<<uint(bit)) == 0 {
				continue
			}
			deltas = append(deltas, Delta{
				Index: i*8 + bit + 1,
				Value: c&(1<<uint(bit)) != 0,
			})
		}
	}
	return deltas
}

// Complement returns the bitwise complement of data. Used as the previous
// value, it makes a first observation report every bit of curr as a
// change: set bits with Value true, clear bits with Value false.
func Complement(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = ^b
	}
	return out
}

// Engine keeps the last-seen bitmap for each NotifyEvent it has been
// shown and reports the deltas between observations.
type Engine struct {
	prev map[proto.NotifyEvent][]byte
}

// New returns an empty Engine.
func New() *Engine {
	return &Engine{prev: make(map[proto.NotifyEvent][]byte)}
}

func contains(events []proto.NotifyEvent, event proto.NotifyEvent) bool {
	for _, e := range events {
		if e == event {
			return true
		}
	}
	return false
}

// capacityBits reports the event's category bit-capacity from c, or -1
// if event doesn't carry a bitmap this engine recognizes.
func capacityBits(event proto.NotifyEvent, c Capacities) int {
	switch {
	case contains(proto.ZonesNotifyEvents, event):
		return c.Zones
	case contains(proto.PartsNotifyEvents, event):
		return c.Parts
	case contains(proto.OutputsNotifyEvents, event):
		return c.Outputs
	case contains(proto.DoorsNotifyEvents, event):
		return c.Doors
	default:
		return -1
	}
}

// Capacities is the subset of panel capability counts the diff engine
// needs to bound a bitmap snapshot. Use caps.Caps's same-named fields.
type Capacities struct {
	Parts   int
	Zones   int
	Outputs int
	Doors   int
}

// Update feeds a fresh snapshot of event's bitmap through the engine and
// returns the deltas against the previous observation. On the very first
// call for a given event the previous snapshot is synthesized as the
// bitwise complement of curr, so every bit within the considered length
// is reported, each with its current value.
func (e *Engine) Update(event proto.NotifyEvent, curr []byte, caps Capacities) []Delta {
	prev, seen := e.prev[event]
	if !seen {
		prev = Complement(curr)
	}

	n := len(curr)
	if bits := capacityBits(event, caps); bits >= 0 {
		byteCap := (bits + 7) / 8
		if byteCap < n {
			n = byteCap
		}
	}

	deltas := Bits(prev, curr, n)

	stored := make([]byte, len(curr))
	copy(stored, curr)
	e.prev[event] = stored

	return deltas
}

// Reset discards all cached snapshots, forcing the next Update for every
// event to behave as a first observation again. Used on reconnect, since
// a fresh session has no guarantee the panel's state matches what this
// engine last saw.
func (e *Engine) Reset() {
	e.prev = make(map[proto.NotifyEvent][]byte)
}
