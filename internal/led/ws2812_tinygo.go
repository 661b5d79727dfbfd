//go:build tinygo

package led

import (
	"errors"
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// Pin drives a strip bit-banged from one microcontroller pin.
type Pin struct {
	dev ws2812.Device
	px  []color.RGBA
}

func NewPin(pin machine.Pin, n int) *Pin {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &Pin{dev: ws2812.New(pin), px: make([]color.RGBA, n)}
}

var errShortFrame = errors.New("ws2812: short frame")

func (p *Pin) Write(rgb []byte) error {
	if len(rgb) < len(p.px)*3 {
		return errShortFrame
	}
	for i := range p.px {
		p.px[i] = color.RGBA{R: rgb[i*3], G: rgb[i*3+1], B: rgb[i*3+2], A: 255}
	}
	return p.dev.WriteColors(p.px)
}

func (p *Pin) Close() error {
	for i := range p.px {
		p.px[i] = color.RGBA{}
	}
	return p.dev.WriteColors(p.px)
}
