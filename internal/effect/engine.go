package effect

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-lightstrip/internal/model"
)

// Engine owns the strip and a table of effects keyed by case id. Each tick
// the caller names a case; the engine updates that case's effect and flushes
// the strip when the effect redrew it. Unbound cases run the fallback.
type Engine struct {
	Strip *model.Strip

	// ResetOnSelect resets an effect whenever it becomes the active one.
	// Off by default: a reselected effect resumes where it left off.
	ResetOnSelect bool

	slots    map[int]Effect
	fallback Effect

	active    Effect
	hasActive bool

	log zerolog.Logger

	// last tick, for diagnostics
	Last struct {
		Case    int
		Effect  string
		Redrawn bool
		FlushMS float64
	}
}

// NewEngine returns an Engine drawing into strip. fallback runs for any
// case without a bound effect.
func NewEngine(strip *model.Strip, fallback Effect, log zerolog.Logger) (*Engine, error) {
	if strip == nil {
		return nil, errors.New("engine needs a strip")
	}
	if fallback == nil {
		return nil, errors.New("engine needs a fallback effect")
	}
	return &Engine{
		Strip:    strip,
		slots:    map[int]Effect{},
		fallback: fallback,
		log:      log,
	}, nil
}

// Bind assigns fx to case id, replacing any previous binding.
func (e *Engine) Bind(id int, fx Effect) {
	if fx == nil {
		delete(e.slots, id)
		return
	}
	e.slots[id] = fx
}

// Effect returns the effect that runs for case id.
func (e *Engine) Effect(id int) Effect {
	if fx, ok := e.slots[id]; ok {
		return fx
	}
	return e.fallback
}

// Active returns the effect run on the last tick, or nil.
func (e *Engine) Active() Effect {
	if !e.hasActive {
		return nil
	}
	return e.active
}

// Run advances the effect for case id by one tick. It reports whether the
// strip was redrawn; a flush error is returned after the buffer has already
// been updated.
func (e *Engine) Run(id int, now uint32) (bool, error) {
	fx := e.Effect(id)
	if !e.hasActive || fx != e.active {
		e.log.Debug().Int("case", id).Str("effect", fx.Name()).Msg("effect selected")
		if e.ResetOnSelect {
			fx.Reset()
		}
		e.active = fx
		e.hasActive = true
	}

	redrawn := fx.Update(now, e.Strip)
	e.Last.Case = id
	e.Last.Effect = fx.Name()
	e.Last.Redrawn = redrawn
	if !redrawn {
		return false, nil
	}
	return true, e.Flush()
}

// Flush pushes the strip to its sink.
func (e *Engine) Flush() error {
	start := time.Now()
	err := e.Strip.Flush()
	e.Last.FlushMS = float64(time.Since(start).Microseconds()) / 1000.0
	return err
}

// Deselect forgets the active effect so the next Run counts as a fresh
// selection. Used when the strip is handed to something else.
func (e *Engine) Deselect() {
	e.active = nil
	e.hasActive = false
}

// Reset returns every bound effect and the fallback to its initial state.
func (e *Engine) Reset() {
	for _, fx := range e.slots {
		fx.Reset()
	}
	e.fallback.Reset()
	e.Deselect()
}
