package encoder

import (
	"periph.io/x/conn/v3/gpio"
)

// Button reports released→pressed edges of an active-low push button.
// A level change within Debounce milliseconds of the last accepted one is
// treated as bounce and ignored.
type Button struct {
	Debounce uint32

	pin        Pin
	down       bool
	lastChange uint32
	changed    bool
}

// NewButton samples the pin once so a button held at boot does not count
// as a press.
func NewButton(pin Pin, debounceMs uint32) *Button {
	return &Button{pin: pin, Debounce: debounceMs, down: pin.Read() == gpio.Low}
}

// Pressed polls the pin and returns true exactly once per press.
func (b *Button) Pressed(now uint32) bool {
	down := b.pin.Read() == gpio.Low
	if down == b.down {
		return false
	}
	if b.changed && now-b.lastChange < b.Debounce {
		return false
	}
	b.down = down
	b.lastChange = now
	b.changed = true
	return down
}

// Down is the debounced level.
func (b *Button) Down() bool { return b.down }
