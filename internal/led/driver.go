// Package led turns RGB frames into light: the periph nrzled SPI driver,
// a console fallback, a logging simulator, and the output pipeline
// (brightness, power limiting, channel order) that sits in front of them.
package led

import (
	"errors"
)

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

// Tee writes every frame to all drivers; the first error wins but every
// driver still sees the frame.
type Tee []Driver

func (t Tee) Write(rgb []byte) error {
	var first error
	for _, d := range t {
		if err := d.Write(rgb); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t Tee) Close() error {
	var errs []error
	for _, d := range t {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Func adapts a function to a Driver with a no-op Close.
type Func func(rgb []byte) error

func (f Func) Write(rgb []byte) error { return f(rgb) }
func (f Func) Close() error           { return nil }
