package effect

import (
	"github.com/coreman2200/funtimes-lightstrip/internal/model"
)

// Solid fills the strip with one color on every call.
type Solid struct {
	name  string
	Color model.Color
}

func NewSolid(name string, c model.Color) *Solid { return &Solid{name: name, Color: c} }

func (s *Solid) Name() string { return s.name }

func (s *Solid) Update(_ uint32, buf Buffer) bool {
	buf.Fill(s.Color)
	return true
}

func (s *Solid) Reset() {}

// Strobe alternates the whole strip between Color and black.
type Strobe struct {
	Color model.Color

	gate Gate
	on   bool
}

func NewStrobe(c model.Color, intervalMs uint32) *Strobe {
	return &Strobe{Color: c, gate: Gate{Interval: intervalMs}}
}

func (s *Strobe) Name() string { return "strobe" }

func (s *Strobe) On() bool { return s.on }

func (s *Strobe) Update(now uint32, buf Buffer) bool {
	if !s.gate.Ready(now) {
		return false
	}
	s.on = !s.on
	if s.on {
		buf.Fill(s.Color)
	} else {
		buf.Clear()
	}
	return true
}

func (s *Strobe) Reset() {
	s.gate.Reset()
	s.on = false
}

// Theater lights every third pixel and shifts the lit set by one each step.
type Theater struct {
	Color model.Color

	gate  Gate
	step  int
	drawn bool
}

func NewTheater(c model.Color, intervalMs uint32) *Theater {
	return &Theater{Color: c, gate: Gate{Interval: intervalMs}}
}

func (t *Theater) Name() string { return "theater" }

func (t *Theater) Update(now uint32, buf Buffer) bool {
	if !t.gate.Ready(now) {
		return false
	}
	if t.drawn {
		t.step = (t.step + 1) % 3
	}
	t.drawn = true
	for i := 0; i < buf.Len(); i++ {
		if i%3 == t.step {
			buf.SetPixel(i, t.Color)
		} else {
			buf.SetPixel(i, model.Black)
		}
	}
	return true
}

func (t *Theater) Reset() {
	t.gate.Reset()
	t.step = 0
	t.drawn = false
}

// Split paints the first Percent of the strip with A and the rest with B.
type Split struct {
	Percent float64
	A, B    model.Color
}

func (s *Split) Name() string { return "split" }

func (s *Split) Update(_ uint32, buf Buffer) bool {
	n := buf.Len()
	cut := int(float64(n) * clampUnit(s.Percent))
	for i := 0; i < n; i++ {
		if i < cut {
			buf.SetPixel(i, s.A)
		} else {
			buf.SetPixel(i, s.B)
		}
	}
	return true
}

func (s *Split) Reset() {}

// Middle lights a centered band of Percent of the strip, black borders.
type Middle struct {
	Percent float64
	Color   model.Color
}

func (m *Middle) Name() string { return "middle" }

func (m *Middle) Update(_ uint32, buf Buffer) bool {
	n := buf.Len()
	lit := int(float64(n) * clampUnit(m.Percent))
	border := (n - lit) / 2
	for i := 0; i < n; i++ {
		if i >= border && i < border+lit {
			buf.SetPixel(i, m.Color)
		} else {
			buf.SetPixel(i, model.Black)
		}
	}
	return true
}

func (m *Middle) Reset() {}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
