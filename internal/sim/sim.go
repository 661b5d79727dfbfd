// Package sim runs the controller in a terminal: the encoder and button are
// virtual pins driven from the keyboard and the strip is drawn as colored
// cells.
package sim

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/coreman2200/funtimes-lightstrip/internal/app"
)

const (
	drawEvery = 33 * time.Millisecond
	pressHold = 60 * time.Millisecond
)

// Keys: left/right turn the encoder, space presses the button, l toggles
// the link, r resets the encoder and the effects, q or Esc quits.
type Sim struct {
	Core   *app.Core
	Linked atomic.Bool

	screen      tcell.Screen
	clk, dt, sw *gpiotest.Pin
	releaseAt   time.Time
	now         func() time.Time
}

// New takes ownership of an initialized screen. Core must be set before
// Run, built on the same pins and with the Sim as its link.
func New(screen tcell.Screen, clk, dt, sw *gpiotest.Pin) *Sim {
	return &Sim{screen: screen, clk: clk, dt: dt, sw: sw, now: time.Now}
}

// IsLinked lets the simulator stand in for the link.
func (s *Sim) IsLinked() bool { return s.Linked.Load() }

// Run ticks the dispatcher every period and redraws until ctx ends or the
// user quits. Pins are only touched from this goroutine.
func (s *Sim) Run(ctx context.Context, period time.Duration) error {
	defer s.screen.Fini()

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go s.screen.ChannelEvents(events, quit)

	tick := time.NewTicker(period)
	defer tick.Stop()
	draw := time.NewTicker(drawEvery)
	defer draw.Stop()

	s.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok || !s.Handle(ev) {
				return nil
			}
		case <-tick.C:
			s.Step()
		case <-draw.C:
			s.Draw()
		}
	}
}

// Step releases a held button once its hold time has passed and runs one
// dispatcher tick.
func (s *Sim) Step() {
	if !s.releaseAt.IsZero() && !s.now().Before(s.releaseAt) {
		s.sw.Out(gpio.High)
		s.releaseAt = time.Time{}
	}
	s.Core.Dispatcher.Tick()
}

// Handle applies one terminal event and reports whether to keep running.
func (s *Sim) Handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		s.screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRight, tcell.KeyUp:
			s.Turn(true)
		case tcell.KeyLeft, tcell.KeyDown:
			s.Turn(false)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				s.Press()
			case 'l':
				s.Linked.Store(!s.Linked.Load())
			case 'r':
				s.Core.Tracker.Reset()
				s.Core.Eng.Reset()
			}
		}
	}
	return true
}

// Turn moves the encoder one detent and ticks so the tracker sees it.
func (s *Sim) Turn(cw bool) {
	next := !s.clk.Read()
	s.dt.Out(gpio.Level(next != gpio.Level(cw)))
	s.clk.Out(next)
	s.Core.Dispatcher.Tick()
}

// Press holds the button down for a short while.
func (s *Sim) Press() {
	if !s.releaseAt.IsZero() {
		return
	}
	s.sw.Out(gpio.Low)
	s.releaseAt = s.now().Add(pressHold)
	s.Core.Dispatcher.Tick()
}

// Draw renders a status line, the strip wrapped to the screen width, and
// a key help line.
func (s *Sim) Draw() {
	s.screen.Clear()
	w, h := s.screen.Size()
	st := s.Core.Status()
	link := "down"
	if s.IsLinked() {
		link = "up"
	}
	status := fmt.Sprintf("mode %-6v pos %2v case %v effect %-8v link %s",
		st["mode"], st["position"], st["case"], st["effect"], link)
	s.text(0, 0, status, tcell.StyleDefault.Bold(true))

	row := 2
	x := 0
	for _, px := range s.Core.Strip.Pixels() {
		if w <= 0 || row >= h-1 {
			break
		}
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(px.R), int32(px.G), int32(px.B)))
		s.screen.SetContent(x, row, '█', nil, style)
		if x++; x >= w {
			x = 0
			row++
		}
	}
	s.text(0, h-1, "←/→ turn  space press  l link  r reset  q quit", tcell.StyleDefault.Dim(true))
	s.screen.Show()
}

func (s *Sim) text(x, y int, str string, style tcell.Style) {
	for _, r := range str {
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
