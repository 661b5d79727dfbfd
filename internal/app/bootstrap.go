package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-lightstrip/internal/clock"
	"github.com/coreman2200/funtimes-lightstrip/internal/config"
	"github.com/coreman2200/funtimes-lightstrip/internal/diagnostics"
	"github.com/coreman2200/funtimes-lightstrip/internal/dispatch"
	"github.com/coreman2200/funtimes-lightstrip/internal/effect"
	"github.com/coreman2200/funtimes-lightstrip/internal/encoder"
	"github.com/coreman2200/funtimes-lightstrip/internal/events"
	"github.com/coreman2200/funtimes-lightstrip/internal/hw"
	"github.com/coreman2200/funtimes-lightstrip/internal/led"
	"github.com/coreman2200/funtimes-lightstrip/internal/link"
	"github.com/coreman2200/funtimes-lightstrip/internal/model"
)

// Core is a fully wired controller.
type Core struct {
	Cfg        *config.Config
	Strip      *model.Strip
	Reg        *effect.Registry
	Eng        *effect.Engine
	Tracker    *encoder.Tracker
	Dispatcher *dispatch.Dispatcher
	Bus        *events.Bus
	Server     *link.Server // nil unless link.mode is "ws"
	Driver     led.Driver   // what the strip writes to, pipeline included
	Diag       []diagnostics.Diagnostic

	log zerolog.Logger
}

// HW is what Build needs from the outside world.
type HW struct {
	Pins   hw.Pins
	Driver led.Driver // raw strip driver, before brightness and limiting
	Clock  clock.Clock
	// Link, when set, replaces the "always" and "never" link modes.
	Link dispatch.Link
}

// Build wires a Core from cfg. Configuration errors are returned wrapped;
// nothing here touches hardware beyond what h already holds.
func Build(cfg *config.Config, h HW, log zerolog.Logger) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if h.Clock == nil {
		h.Clock = clock.NewSystem()
	}
	c := &Core{Cfg: cfg, Bus: events.New(), log: log}
	c.Diag = diagnostics.Check(cfg)
	for _, d := range c.Diag {
		ev := log.Info()
		if d.Severity != diagnostics.Info {
			ev = log.Warn()
		}
		ev.Str("code", d.Code).Msg(d.Summary)
	}

	// 1) Output pipeline: brightness, power limit, channel order
	order, err := led.ParseOrder(cfg.Strip.ColorOrder)
	if err != nil {
		return nil, fmt.Errorf("strip: %w", err)
	}
	lim := &led.Limiter{
		WhiteCap: cfg.Power.WhiteCap,
		ChanmA:   cfg.Power.ChanmA,
		BudgetmA: cfg.Power.BudgetmA(),
		Knee:     cfg.Power.Knee,
	}
	var out led.Driver = led.NewOutput(h.Driver, uint8(cfg.Strip.Brightness), order, lim)

	// 2) Link
	var lnk dispatch.Link
	var ext dispatch.External
	switch cfg.Link.Mode {
	case "ws":
		c.Server = link.NewServer(time.Duration(cfg.Link.TimeoutMs)*time.Millisecond, cfg.Link.Color, c.Bus, log.With().Str("component", "link").Logger())
		lnk, ext = c.Server, c.Server
		out = led.Tee{out, c.Server}
	case "never":
		lnk = link.Never{}
	default:
		lnk, ext = link.Always{}, &link.Indicator{Color: cfg.Link.Color}
	}
	if h.Link != nil && c.Server == nil {
		lnk, ext = h.Link, &link.Indicator{Color: cfg.Link.Color}
	}
	c.Driver = out

	// 3) Strip and engine
	c.Strip = model.NewStrip(cfg.Strip.Length, out)
	c.Strip.Reverse = cfg.Strip.Reverse

	c.Reg = effect.NewRegistry(rand.New(rand.NewSource(cfg.Seed)))
	fallback, err := c.Reg.Build(cfg.Default)
	if err != nil {
		return nil, fmt.Errorf("default effect: %w", err)
	}
	c.Eng, err = effect.NewEngine(c.Strip, fallback, log.With().Str("component", "engine").Logger())
	if err != nil {
		return nil, err
	}
	c.Eng.ResetOnSelect = cfg.ResetOnSelect
	for _, cc := range cfg.Cases {
		fx, err := c.Reg.Build(cc.Spec)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", cc.Case, err)
		}
		c.Eng.Bind(cc.Case, fx)
	}

	// 4) Encoder
	table, err := cfg.CaseTable()
	if err != nil {
		return nil, err
	}
	if h.Pins.CLK == nil || h.Pins.DT == nil || h.Pins.SW == nil {
		return nil, fmt.Errorf("encoder: missing pins")
	}
	c.Tracker, err = encoder.NewTracker(h.Pins.CLK, h.Pins.DT, table, log.With().Str("component", "encoder").Logger())
	if err != nil {
		return nil, err
	}

	// 5) Dispatcher
	c.Dispatcher, err = dispatch.New(dispatch.Deps{
		Tracker:  c.Tracker,
		Button:   encoder.NewButton(h.Pins.SW, cfg.Pins.DebounceMs),
		Engine:   c.Eng,
		Clock:    h.Clock,
		Link:     lnk,
		External: ext,
		Bus:      c.Bus,
	}, log.With().Str("component", "dispatch").Logger())
	if err != nil {
		return nil, err
	}
	if c.Server != nil {
		c.Server.Status = c.Status
	}
	return c, nil
}

// OpenDriver opens the strip driver cfg names. A missing SPI port falls
// back to the console, the way a dev machine without a strip behaves.
func OpenDriver(cfg *config.Config, log zerolog.Logger) (led.Driver, error) {
	n := cfg.Strip.Length
	switch cfg.Strip.Driver {
	case "sim":
		return led.NewSim(log.With().Str("driver", "sim").Logger()), nil
	case "console":
		return led.NewConsole(n), nil
	case "spi":
		freq := physic.Frequency(cfg.Strip.SPIFreqKHz) * physic.KiloHertz
		d, err := led.OpenSPI(cfg.Strip.SPIPort, n, freq)
		if err != nil {
			log.Warn().Err(err).
				Str("driver", "spi").
				Str("port", cfg.Strip.SPIPort).
				Msg("SPI init failed; printing at the console")
			return led.NewConsole(n), nil
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown strip driver %q", cfg.Strip.Driver)
	}
}

// Status summarizes the controller for /health and the simulator.
func (c *Core) Status() map[string]any {
	return map[string]any{
		"mode":     c.Dispatcher.Mode().String(),
		"position": c.Tracker.Position(),
		"case":     int(c.Tracker.Case()),
		"effect":   c.Eng.Effect(int(c.Tracker.Case())).Name(),
		"ticks":    c.Dispatcher.Ticks(),
		"pixels":   c.Strip.Len(),
		"warnings": c.warnings(),
	}
}

func (c *Core) warnings() []string {
	var out []string
	for _, d := range c.Diag {
		if d.Severity != diagnostics.Info {
			out = append(out, d.Code)
		}
	}
	return out
}
