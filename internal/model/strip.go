package model

import (
	"errors"
	"image"
)

// Sink receives serialized RGB frames (3 bytes per pixel, logical order).
type Sink interface {
	Write(rgb []byte) error
}

// Strip is the pixel buffer: a fixed number of colors mutated in place and
// pushed to a Sink on Flush.
type Strip struct {
	Reverse bool // mounted end-to-start

	pixels []Color
	frame  []byte
	sink   Sink
}

func NewStrip(n int, sink Sink) *Strip {
	if n < 0 {
		n = 0
	}
	return &Strip{
		pixels: make([]Color, n),
		frame:  make([]byte, n*3),
		sink:   sink,
	}
}

func (s *Strip) Len() int {
	return len(s.pixels)
}

// SetPixel ignores indices outside [0, Len).
func (s *Strip) SetPixel(i int, c Color) {
	if i < 0 || i >= len(s.pixels) {
		return
	}
	s.pixels[i] = c
}

// Pixel returns black for indices outside [0, Len).
func (s *Strip) Pixel(i int) Color {
	if i < 0 || i >= len(s.pixels) {
		return Black
	}
	return s.pixels[i]
}

func (s *Strip) Fill(c Color) {
	for i := range s.pixels {
		s.pixels[i] = c
	}
}

func (s *Strip) Clear() {
	s.Fill(Black)
}

// Pixels exposes the backing slice. Callers must not grow it.
func (s *Strip) Pixels() []Color {
	return s.pixels
}

// Attach replaces the output sink.
func (s *Strip) Attach(sink Sink) {
	s.sink = sink
}

// Bytes serializes the buffer in physical order.
func (s *Strip) Bytes() []byte {
	n := len(s.pixels)
	for i, c := range s.pixels {
		j := i
		if s.Reverse {
			j = n - 1 - i
		}
		s.frame[j*3+0] = c.R
		s.frame[j*3+1] = c.G
		s.frame[j*3+2] = c.B
	}
	return s.frame
}

// Image renders the buffer as a 1-pixel-high image in physical order, the
// shape display.Drawer implementations expect.
func (s *Strip) Image() *image.NRGBA {
	n := len(s.pixels)
	im := image.NewNRGBA(image.Rect(0, 0, n, 1))
	for x := 0; x < n; x++ {
		i := x
		if s.Reverse {
			i = n - 1 - x
		}
		im.SetNRGBA(x, 0, s.pixels[i].ToNRGBA())
	}
	return im
}

// Flush pushes the current buffer to the sink.
func (s *Strip) Flush() error {
	if s.sink == nil {
		return errors.New("strip has no sink")
	}
	return s.sink.Write(s.Bytes())
}
