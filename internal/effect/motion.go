package effect

import (
	"github.com/coreman2200/funtimes-lightstrip/internal/model"
)

// Wave scrolls a sine brightness pattern of Color along the strip. One
// period spans Wavelength pixels; the phase advances one step (of 256) per
// interval.
type Wave struct {
	Color      model.Color
	Wavelength int

	gate  Gate
	phase int
	drawn bool
}

func NewWave(c model.Color, wavelength int, speedMs uint32) *Wave {
	if wavelength < 1 {
		wavelength = 1
	}
	return &Wave{Color: c, Wavelength: wavelength, gate: Gate{Interval: speedMs}}
}

func (w *Wave) Name() string { return "wave" }

func (w *Wave) Phase() int { return w.phase }

// Brightness of pixel i at the current phase.
func (w *Wave) Brightness(i int) uint8 {
	return model.Sin8(uint8(i*256/w.Wavelength + w.phase))
}

func (w *Wave) Update(now uint32, buf Buffer) bool {
	if !w.gate.Ready(now) {
		return false
	}
	if w.drawn {
		w.phase = (w.phase + 1) % 256
	}
	w.drawn = true
	for i := 0; i < buf.Len(); i++ {
		buf.SetPixel(i, w.Color.FadeToBlackBy(255-w.Brightness(i)))
	}
	return true
}

func (w *Wave) Reset() {
	w.gate.Reset()
	w.phase = 0
	w.drawn = false
}

// Rainbow spreads HueRange hue steps across the strip and rotates the base
// hue by one step per interval. An interval of 0 rotates on every tick.
type Rainbow struct {
	HueRange int

	gate  Gate
	hue   int
	drawn bool
}

func NewRainbow(hueRange int, intervalMs uint32) *Rainbow {
	if hueRange < 1 || hueRange > 256 {
		hueRange = 256
	}
	return &Rainbow{HueRange: hueRange, gate: Gate{Interval: intervalMs}}
}

func (r *Rainbow) Name() string { return "rainbow" }

func (r *Rainbow) BaseHue() int { return r.hue }

// HueAt is the hue of pixel i on an n pixel strip.
func (r *Rainbow) HueAt(i, n int) int {
	if n < 1 {
		n = 1
	}
	return (r.hue + i*r.HueRange/n) % r.HueRange
}

func (r *Rainbow) Update(now uint32, buf Buffer) bool {
	if !r.gate.Ready(now) {
		return false
	}
	if r.drawn {
		r.hue = (r.hue + 1) % r.HueRange
	}
	r.drawn = true
	n := buf.Len()
	for i := 0; i < n; i++ {
		buf.SetPixel(i, model.Hue(uint8(r.HueAt(i, n))))
	}
	return true
}

func (r *Rainbow) Reset() {
	r.gate.Reset()
	r.hue = 0
	r.drawn = false
}

// Comet bounces a Size-pixel head between the strip ends. Every step a
// random subset of all pixels fades by Fade before the head is redrawn,
// which leaves a sparkling tail.
type Comet struct {
	Color model.Color
	Size  int
	Fade  uint8

	gate Gate
	rnd  Rand
	pos  int
	dir  int
}

func NewComet(c model.Color, size int, fade uint8, intervalMs uint32, rnd Rand) *Comet {
	if size < 1 {
		size = 1
	}
	return &Comet{Color: c, Size: size, Fade: fade, gate: Gate{Interval: intervalMs}, rnd: rnd, dir: 1}
}

func (c *Comet) Name() string { return "comet" }

func (c *Comet) Position() int { return c.pos }

func (c *Comet) Direction() int { return c.dir }

func (c *Comet) Update(now uint32, buf Buffer) bool {
	if !c.gate.Ready(now) {
		return false
	}
	n := buf.Len()
	last := n - c.Size
	if last < 0 {
		last = 0
	}

	for j := 0; j < n; j++ {
		if c.rnd.Intn(10) > 5 {
			buf.SetPixel(j, buf.Pixel(j).FadeToBlackBy(c.Fade))
		}
	}
	for i := 0; i < c.Size; i++ {
		buf.SetPixel(c.pos+i, c.Color)
	}

	if last == 0 {
		return true
	}
	c.pos += c.dir
	if c.pos <= 0 {
		c.pos = 0
		c.dir = 1
	} else if c.pos >= last {
		c.pos = last
		c.dir = -1
	}
	return true
}

func (c *Comet) Reset() {
	c.gate.Reset()
	c.pos = 0
	c.dir = 1
}

// Twinkle ignites random pixels in one of two colors at a random intensity
// and fades every lit pixel a little each step.
type Twinkle struct {
	A, B model.Color
	Fade uint8

	gate Gate
	rnd  Rand
}

// Ignition chance per pixel per step is twinkleChance/twinkleOutOf.
const (
	twinkleChance = 2
	twinkleOutOf  = 20
)

func NewTwinkle(a, b model.Color, fade uint8, intervalMs uint32, rnd Rand) *Twinkle {
	return &Twinkle{A: a, B: b, Fade: fade, gate: Gate{Interval: intervalMs}, rnd: rnd}
}

func (t *Twinkle) Name() string { return "twinkle" }

func (t *Twinkle) Update(now uint32, buf Buffer) bool {
	if !t.gate.Ready(now) {
		return false
	}
	for i := 0; i < buf.Len(); i++ {
		c := buf.Pixel(i)
		if !c.IsBlack() {
			c = c.FadeToBlackBy(t.Fade)
		}
		if t.rnd.Intn(twinkleOutOf) < twinkleChance {
			base := t.A
			if t.rnd.Intn(2) == 1 {
				base = t.B
			}
			c = base.Scale(uint8(64 + t.rnd.Intn(192)))
		}
		buf.SetPixel(i, c)
	}
	return true
}

func (t *Twinkle) Reset() {
	t.gate.Reset()
}

// Stripes scrolls alternating 3-pixel bands of A and B.
type Stripes struct {
	A, B model.Color

	gate   Gate
	offset int
	drawn  bool
}

const (
	stripeBand   = 3
	stripePeriod = 2 * stripeBand
	// the offset moves the pattern by one pixel every two steps
	stripeOffsets = 2 * stripePeriod
)

func NewStripes(a, b model.Color, intervalMs uint32) *Stripes {
	return &Stripes{A: a, B: b, gate: Gate{Interval: intervalMs}}
}

func (s *Stripes) Name() string { return "stripes" }

func (s *Stripes) Offset() int { return s.offset }

func (s *Stripes) Update(now uint32, buf Buffer) bool {
	if !s.gate.Ready(now) {
		return false
	}
	if s.drawn {
		s.offset = (s.offset + 1) % stripeOffsets
	}
	s.drawn = true
	for i := 0; i < buf.Len(); i++ {
		if (i+s.offset/2)%stripePeriod < stripeBand {
			buf.SetPixel(i, s.A)
		} else {
			buf.SetPixel(i, s.B)
		}
	}
	return true
}

func (s *Stripes) Reset() {
	s.gate.Reset()
	s.offset = 0
	s.drawn = false
}

// Breathe cross-fades the whole strip between A and B along a triangle
// wave: progress walks [0,1] by Step per interval and turns around at
// either end.
type Breathe struct {
	A, B model.Color
	Step float64

	gate     Gate
	progress float64
	dir      float64
	drawn    bool
}

func NewBreathe(a, b model.Color, step float64, intervalMs uint32) *Breathe {
	if step <= 0 || step > 1 {
		step = 0.01
	}
	return &Breathe{A: a, B: b, Step: step, gate: Gate{Interval: intervalMs}, dir: 1}
}

func (b *Breathe) Name() string { return "breathe" }

func (b *Breathe) Progress() float64 { return b.progress }

func (b *Breathe) Direction() float64 { return b.dir }

func (b *Breathe) Update(now uint32, buf Buffer) bool {
	if !b.gate.Ready(now) {
		return false
	}
	if b.drawn {
		b.progress += b.Step * b.dir
		if b.progress >= 1 {
			b.progress = 1
			b.dir = -1
		} else if b.progress <= 0 {
			b.progress = 0
			b.dir = 1
		}
	}
	b.drawn = true
	buf.Fill(model.Blend(b.A, b.B, b.progress))
	return true
}

func (b *Breathe) Reset() {
	b.gate.Reset()
	b.progress = 0
	b.dir = 1
	b.drawn = false
}
