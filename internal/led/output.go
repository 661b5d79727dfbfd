package led

import (
	"sync"
)

// Output is the pipeline between the strip and a Driver: global
// brightness, power limiting, then channel order. The caller's frame is
// never modified.
type Output struct {
	Next       Driver
	Brightness uint8
	Order      Order
	Limiter    *Limiter

	mu  sync.Mutex
	buf []byte
}

func NewOutput(next Driver, brightness uint8, order Order, lim *Limiter) *Output {
	return &Output{Next: next, Brightness: brightness, Order: order, Limiter: lim}
}

func (o *Output) Write(rgb []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if cap(o.buf) < len(rgb) {
		o.buf = make([]byte, len(rgb))
	}
	b := o.buf[:len(rgb)]
	copy(b, rgb)

	if o.Brightness < 255 {
		for i, v := range b {
			b[i] = byte(uint16(v) * (uint16(o.Brightness) + 1) >> 8)
		}
	}
	if o.Limiter != nil {
		o.Limiter.Apply(b)
	}
	o.Order.Apply(b)
	return o.Next.Write(b)
}

func (o *Output) Close() error {
	return o.Next.Close()
}
