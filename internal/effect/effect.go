// Package effect holds the animation engine: stateful, non-blocking effects
// that are called once per control-loop tick and rate-limit themselves
// against a millisecond clock, plus the Engine that selects which one runs.
package effect

import (
	"github.com/coreman2200/funtimes-lightstrip/internal/model"
)

// Buffer is the pixel buffer an effect draws into. *model.Strip implements it.
type Buffer interface {
	Len() int
	SetPixel(i int, c model.Color)
	Pixel(i int) model.Color
	Fill(c model.Color)
	Clear()
}

// Effect is one animation. Update is called every tick with the current
// clock reading and reports whether it redrew buf. State lives in the effect
// value and survives until Reset.
type Effect interface {
	Name() string
	Update(now uint32, buf Buffer) bool
	Reset()
}

// Rand is the subset of *rand.Rand the stochastic effects use.
type Rand interface {
	Intn(n int) int
}

// Gate lets an effect advance at most once per Interval milliseconds. The
// first call after construction or Reset always fires. A late call fires
// once and restarts the interval from that call, so a long stall never
// produces a burst of catch-up frames.
type Gate struct {
	Interval uint32

	last   uint32
	primed bool
}

func (g *Gate) Ready(now uint32) bool {
	if g.primed && now-g.last < g.Interval {
		return false
	}
	g.last = now
	g.primed = true
	return true
}

func (g *Gate) Reset() {
	g.last = 0
	g.primed = false
}
