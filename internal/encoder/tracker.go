// Package encoder decodes a quadrature rotary encoder into a wrapping
// position, maps positions to cases, and edge-detects the push button.
package encoder

import (
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
)

// Pin is the one capability the tracker needs from a GPIO line.
// periph's gpio.PinIn satisfies it.
type Pin interface {
	Read() gpio.Level
}

// Tracker follows the encoder by polling. Sample must be called from a
// single goroutine; Position and Case may be read from any.
//
// Direction convention: on a CLK change, DT differing from the new CLK
// level counts as clockwise (+1), DT equal to it as counter-clockwise (-1).
type Tracker struct {
	clk, dt Pin
	table   *CaseTable
	log     zerolog.Logger

	lastClk gpio.Level
	pos     atomic.Int32
	cse     atomic.Int32
}

func NewTracker(clk, dt Pin, table *CaseTable, log zerolog.Logger) (*Tracker, error) {
	if clk == nil || dt == nil {
		return nil, errors.New("encoder needs clk and dt pins")
	}
	if table == nil {
		table = DefaultCaseTable()
	}
	t := &Tracker{clk: clk, dt: dt, table: table, log: log}
	t.lastClk = clk.Read()
	t.cse.Store(int32(table.Lookup(0)))
	return t, nil
}

// Sample reads the pins once and returns the step taken: +1, -1 or 0.
// The case is recomputed on every call.
func (t *Tracker) Sample() int {
	step := 0
	clk := t.clk.Read()
	if clk != t.lastClk {
		if t.dt.Read() != clk {
			step = 1
		} else {
			step = -1
		}
		t.lastClk = clk
		t.move(step)
	}
	c := t.table.Lookup(t.Position())
	if prev := Case(t.cse.Swap(int32(c))); prev != c {
		t.log.Info().Int("case", int(c)).Int("was", int(prev)).Msg("case changed")
	}
	return step
}

func (t *Tracker) move(step int) {
	span := t.table.Max() + 1
	pos := (t.Position() + step + span) % span
	t.pos.Store(int32(pos))
	t.log.Debug().Int("position", pos).Int("step", step).Msg("encoder moved")
}

func (t *Tracker) Position() int { return int(t.pos.Load()) }

func (t *Tracker) Case() Case { return Case(t.cse.Load()) }

func (t *Tracker) Max() int { return t.table.Max() }

func (t *Tracker) Table() *CaseTable { return t.table }

// Reset returns the position to 0 and resynchronizes with the CLK line.
func (t *Tracker) Reset() {
	t.pos.Store(0)
	t.lastClk = t.clk.Read()
	t.cse.Store(int32(t.table.Lookup(0)))
	t.log.Debug().Msg("encoder reset")
}
