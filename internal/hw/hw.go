// Package hw brings up the host and resolves the encoder's GPIO lines.
package hw

import (
	"fmt"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/host/v3"
)

// Init loads the periph host drivers.
func Init(log zerolog.Logger) error {
	state, err := host.Init()
	if err != nil {
		return fmt.Errorf("host init: %w", err)
	}
	for _, d := range state.Loaded {
		log.Debug().Str("driver", d.String()).Msg("host driver loaded")
	}
	for _, f := range state.Failed {
		log.Debug().Str("driver", f.D.String()).Err(f.Err).Msg("host driver failed")
	}
	return nil
}

// Pins are the encoder's three input lines.
type Pins struct {
	CLK, DT, SW gpio.PinIn
}

// Open looks up each line by name ("GPIO17", "17", ...) and configures it
// as an input with the pull-up the encoder board expects.
func Open(clk, dt, sw string) (Pins, error) {
	var p Pins
	var err error
	if p.CLK, err = input("clk", clk); err != nil {
		return Pins{}, err
	}
	if p.DT, err = input("dt", dt); err != nil {
		return Pins{}, err
	}
	if p.SW, err = input("sw", sw); err != nil {
		return Pins{}, err
	}
	return p, nil
}

func input(role, name string) (gpio.PinIn, error) {
	if name == "" {
		return nil, fmt.Errorf("%s pin not configured", role)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%s pin %q not found", role, name)
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("%s pin %s: %w", role, p, err)
	}
	return p, nil
}

// Virtual returns idle (pulled-up) fake lines that a simulator or test can
// drive with Out.
func Virtual() (Pins, *gpiotest.Pin, *gpiotest.Pin, *gpiotest.Pin) {
	clk := &gpiotest.Pin{N: "CLK", L: gpio.High}
	dt := &gpiotest.Pin{N: "DT", L: gpio.High}
	sw := &gpiotest.Pin{N: "SW", L: gpio.High}
	return Pins{CLK: clk, DT: dt, SW: sw}, clk, dt, sw
}
