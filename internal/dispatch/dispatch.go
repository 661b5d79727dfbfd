// Package dispatch is the top-level control loop: it samples the encoder,
// watches the button and either runs the selected effect (Manual) or hands
// the strip to the external controller (Driven).
package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-lightstrip/internal/clock"
	"github.com/coreman2200/funtimes-lightstrip/internal/effect"
	"github.com/coreman2200/funtimes-lightstrip/internal/encoder"
	"github.com/coreman2200/funtimes-lightstrip/internal/events"
	"github.com/coreman2200/funtimes-lightstrip/internal/model"
)

// Strip is the buffer handed to External.
type Strip = *model.Strip

// Deps are the collaborators a Dispatcher drives. Link must be set;
// External and Bus are optional.
type Deps struct {
	Tracker  *encoder.Tracker
	Button   *encoder.Button
	Engine   *effect.Engine
	Clock    clock.Clock
	Link     Link
	External External
	Bus      *events.Bus
}

type Dispatcher struct {
	Deps
	log zerolog.Logger

	mode     atomic.Int32
	lastCase encoder.Case
	ticks    atomic.Uint64
	failing  bool
}

func New(d Deps, log zerolog.Logger) (*Dispatcher, error) {
	switch {
	case d.Tracker == nil:
		return nil, errors.New("dispatch: no encoder tracker")
	case d.Button == nil:
		return nil, errors.New("dispatch: no button")
	case d.Engine == nil:
		return nil, errors.New("dispatch: no engine")
	case d.Clock == nil:
		return nil, errors.New("dispatch: no clock")
	case d.Link == nil:
		return nil, errors.New("dispatch: no link")
	}
	ds := &Dispatcher{Deps: d, log: log, lastCase: d.Tracker.Case()}
	ds.mode.Store(int32(Manual))
	return ds, nil
}

func (d *Dispatcher) Mode() Mode { return Mode(d.mode.Load()) }

// Ticks counts completed Tick calls.
func (d *Dispatcher) Ticks() uint64 { return d.ticks.Load() }

// Tick runs one pass of the control loop. It never blocks.
func (d *Dispatcher) Tick() {
	defer d.ticks.Add(1)
	now := d.Clock.NowMillis()

	if step := d.Tracker.Sample(); step != 0 {
		d.Bus.Publish(events.PositionChangedEvent{Position: d.Tracker.Position(), Step: step})
	}
	c := d.Tracker.Case()
	if c != d.lastCase {
		d.lastCase = c
		d.Bus.Publish(events.CaseChangedEvent{
			Case:     int(c),
			Position: d.Tracker.Position(),
			Effect:   d.Engine.Effect(int(c)).Name(),
		})
	}
	pressed := d.Button.Pressed(now)

	switch d.Mode() {
	case Manual:
		if pressed {
			if d.Link.IsLinked() {
				d.setMode(Driven)
				d.Engine.Deselect()
				if a, ok := d.External.(Activator); ok {
					a.Activate()
				}
				return
			}
			d.log.Info().Msg("button pressed but no link; staying manual")
		}
		redrawn, err := d.Engine.Run(int(c), now)
		if redrawn {
			d.flushed(d.Engine.Last.Effect, err)
		}
	case Driven:
		if pressed {
			d.setMode(Manual)
			return
		}
		if d.External != nil && d.External.ApplyExternal(d.Engine.Strip) {
			d.flushed("external", d.Engine.Flush())
		}
	}
}

func (d *Dispatcher) setMode(m Mode) {
	prev := Mode(d.mode.Swap(int32(m)))
	d.log.Info().Str("from", prev.String()).Str("to", m.String()).Msg("mode changed")
	d.Bus.Publish(events.ModeChangedEvent{From: prev.String(), To: m.String()})
}

// flushed reports a flush. Driver errors are logged once per failure streak
// and never stop the loop.
func (d *Dispatcher) flushed(source string, err error) {
	ev := events.FrameFlushedEvent{Source: source, FlushMS: d.Engine.Last.FlushMS}
	if err != nil {
		ev.Err = err.Error()
		if !d.failing {
			d.log.Error().Err(err).Str("source", source).Msg("strip write failed")
		}
		d.failing = true
	} else if d.failing {
		d.log.Info().Msg("strip write recovered")
		d.failing = false
	}
	d.Bus.Publish(ev)
}

// Run ticks every period until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, period time.Duration) error {
	if period <= 0 {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	d.log.Info().Dur("period", period).Str("mode", d.Mode().String()).Msg("control loop started")
	for {
		select {
		case <-ctx.Done():
			d.log.Info().Uint64("ticks", d.Ticks()).Msg("control loop stopped")
			return nil
		case <-ticker.C:
			d.Tick()
		}
	}
}
