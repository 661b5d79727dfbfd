package effect

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/coreman2200/funtimes-lightstrip/internal/model"
)

// Spec describes one effect instance: the effect name plus its parameters.
// Zero values select the effect's defaults; IntervalMs is a pointer so an
// explicit 0 (run every tick) can be told apart from "unset".
type Spec struct {
	Effect     string        `yaml:"effect" toml:"effect"`
	Colors     []model.Color `yaml:"colors,flow,omitempty" toml:"colors,omitempty"`
	IntervalMs *uint32       `yaml:"interval_ms,omitempty" toml:"interval_ms,omitempty"`
	Wavelength int           `yaml:"wavelength,omitempty" toml:"wavelength,omitempty"`
	Size       int           `yaml:"size,omitempty" toml:"size,omitempty"`
	Fade       uint8         `yaml:"fade,omitempty" toml:"fade,omitempty"`
	Step       float64       `yaml:"step,omitempty" toml:"step,omitempty"`
	Percent    float64       `yaml:"percent,omitempty" toml:"percent,omitempty"`
	HueRange   int           `yaml:"hue_range,omitempty" toml:"hue_range,omitempty"`
}

// Interval returns the configured interval or def.
func (s Spec) Interval(def uint32) uint32 {
	if s.IntervalMs == nil {
		return def
	}
	return *s.IntervalMs
}

// Color returns the i-th configured color or def.
func (s Spec) Color(i int, def model.Color) model.Color {
	if i < len(s.Colors) {
		return s.Colors[i]
	}
	return def
}

// Ms is a convenience for building Specs in code.
func Ms(v uint32) *uint32 { return &v }

// Factory builds a fresh effect instance from a Spec.
type Factory func(s Spec, rnd Rand) (Effect, error)

// Registry maps effect names to factories. Stochastic effects share the
// registry's random source.
type Registry struct {
	m   map[string]Factory
	rnd Rand
}

// NewRegistry returns a registry with every built-in effect registered.
func NewRegistry(rnd Rand) *Registry {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(1))
	}
	r := &Registry{m: map[string]Factory{}, rnd: rnd}
	for name, f := range builtins {
		r.Register(name, f)
	}
	return r
}

func (r *Registry) Register(name string, f Factory) {
	if f == nil {
		return
	}
	r.m[name] = f
}

func (r *Registry) Get(name string) (Factory, bool) { f, ok := r.m[name]; return f, ok }

func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Build(s Spec) (Effect, error) {
	f, ok := r.m[s.Effect]
	if !ok {
		return nil, fmt.Errorf("unknown effect %q", s.Effect)
	}
	return f(s, r.rnd)
}

var builtins = map[string]Factory{
	"solid": func(s Spec, _ Rand) (Effect, error) {
		return NewSolid("solid", s.Color(0, model.White)), nil
	},
	"off": func(Spec, Rand) (Effect, error) {
		return NewSolid("off", model.Black), nil
	},
	"strobe": func(s Spec, _ Rand) (Effect, error) {
		return NewStrobe(s.Color(0, model.White), s.Interval(100)), nil
	},
	"wave": func(s Spec, _ Rand) (Effect, error) {
		wl := s.Wavelength
		if wl == 0 {
			wl = 20
		}
		return NewWave(s.Color(0, model.Blue), wl, s.Interval(30)), nil
	},
	"rainbow": func(s Spec, _ Rand) (Effect, error) {
		return NewRainbow(s.HueRange, s.Interval(20)), nil
	},
	"comet": func(s Spec, rnd Rand) (Effect, error) {
		size := s.Size
		if size == 0 {
			size = 5
		}
		fade := s.Fade
		if fade == 0 {
			fade = 128
		}
		return NewComet(s.Color(0, model.Red), size, fade, s.Interval(50), rnd), nil
	},
	"twinkle": func(s Spec, rnd Rand) (Effect, error) {
		fade := s.Fade
		if fade == 0 {
			fade = 40
		}
		return NewTwinkle(s.Color(0, model.White), s.Color(1, model.Blue), fade, s.Interval(50), rnd), nil
	},
	"stripes": func(s Spec, _ Rand) (Effect, error) {
		return NewStripes(s.Color(0, model.White), s.Color(1, model.Black), s.Interval(0)), nil
	},
	"breathe": func(s Spec, _ Rand) (Effect, error) {
		return NewBreathe(s.Color(0, model.Black), s.Color(1, model.White), s.Step, s.Interval(10)), nil
	},
	"theater": func(s Spec, _ Rand) (Effect, error) {
		return NewTheater(s.Color(0, model.White), s.Interval(50)), nil
	},
	"split": func(s Spec, _ Rand) (Effect, error) {
		if s.Percent < 0 || s.Percent > 1 {
			return nil, fmt.Errorf("split: percent %v outside [0,1]", s.Percent)
		}
		return &Split{Percent: s.Percent, A: s.Color(0, model.White), B: s.Color(1, model.Black)}, nil
	},
	"middle": func(s Spec, _ Rand) (Effect, error) {
		if s.Percent < 0 || s.Percent > 1 {
			return nil, fmt.Errorf("middle: percent %v outside [0,1]", s.Percent)
		}
		return &Middle{Percent: s.Percent, Color: s.Color(0, model.White)}, nil
	},
}
