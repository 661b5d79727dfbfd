// Package clock provides the monotonic millisecond time base the control loop
// and the effects' rate gates run on. Readings wrap at 2^32 ms (~49.7 days);
// consumers compare with unsigned subtraction, which stays correct across the
// wrap.
package clock

import (
	"sync/atomic"
	"time"
)

type Clock interface {
	NowMillis() uint32
}

// System counts milliseconds since it was created.
type System struct {
	start time.Time
}

func NewSystem() *System {
	return &System{start: time.Now()}
}

func (s *System) NowMillis() uint32 {
	return uint32(time.Since(s.start).Milliseconds())
}

// Fake is a manually advanced clock for tests and the simulator.
type Fake struct {
	now atomic.Uint32
}

func NewFake(start uint32) *Fake {
	f := &Fake{}
	f.now.Store(start)
	return f
}

func (f *Fake) NowMillis() uint32 {
	return f.now.Load()
}

func (f *Fake) Advance(ms uint32) {
	f.now.Add(ms)
}

func (f *Fake) Set(ms uint32) {
	f.now.Store(ms)
}

// Since returns now-then in wraparound-safe unsigned arithmetic.
func Since(now, then uint32) uint32 {
	return now - then
}
