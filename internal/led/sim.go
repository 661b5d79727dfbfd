package led

import (
	"sync"

	"github.com/rs/zerolog"
)

// Sim logs a compact summary of every Every-th frame (average and first
// pixel), for headless runs. It also keeps the last frame for inspection.
type Sim struct {
	Every int

	mu    sync.Mutex
	count int
	last  []byte
	log   zerolog.Logger
}

func NewSim(log zerolog.Logger) *Sim {
	return &Sim{Every: 100, log: log}
}

func (d *Sim) Write(rgb []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count++
	d.last = append(d.last[:0], rgb...)
	if d.Every <= 0 || d.count%d.Every != 0 || len(rgb) < 3 {
		return nil
	}
	var r, g, b int
	for i := 0; i+2 < len(rgb); i += 3 {
		r += int(rgb[i])
		g += int(rgb[i+1])
		b += int(rgb[i+2])
	}
	n := len(rgb) / 3
	d.log.Debug().
		Int("frame", d.count).
		Ints("avg", []int{r / n, g / n, b / n}).
		Ints("first", []int{int(rgb[0]), int(rgb[1]), int(rgb[2])}).
		Msg("sim frame")
	return nil
}

func (d *Sim) Close() error { return nil }

// Count is the number of frames written.
func (d *Sim) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Last returns a copy of the most recent frame.
func (d *Sim) Last() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte{}, d.last...)
}
