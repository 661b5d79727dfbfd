package led

import (
	"fmt"
	"image"
	"io"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
)

// Drawer drives any periph display.Drawer that is one pixel high. Devices
// that also take raw bytes (nrzled does) get the frame as-is; the rest get
// it as an image.
type Drawer struct {
	dev    display.Drawer
	n      int
	closer io.Closer
	img    *image.NRGBA
}

func NewDrawer(dev display.Drawer, n int) *Drawer {
	return &Drawer{dev: dev, n: n, img: image.NewNRGBA(image.Rect(0, 0, n, 1))}
}

func (d *Drawer) String() string { return d.dev.String() }

func (d *Drawer) Write(rgb []byte) error {
	if len(rgb) != d.n*3 {
		return fmt.Errorf("frame is %d bytes, want %d", len(rgb), d.n*3)
	}
	if w, ok := d.dev.(io.Writer); ok {
		_, err := w.Write(rgb)
		return err
	}
	for i := 0; i < d.n; i++ {
		o := i * 4
		d.img.Pix[o+0] = rgb[i*3+0]
		d.img.Pix[o+1] = rgb[i*3+1]
		d.img.Pix[o+2] = rgb[i*3+2]
		d.img.Pix[o+3] = 255
	}
	return d.dev.Draw(d.dev.Bounds(), d.img, image.Point{})
}

// Close blanks the strip and releases the port.
func (d *Drawer) Close() error {
	err := d.dev.Halt()
	if d.closer != nil {
		if cerr := d.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// NRZFreq is the SPI clock for WS2812 timing: three SPI bits per data bit
// at 800kHz, plus headroom.
const NRZFreq = (800*3 + 100) * physic.KiloHertz

// NewNRZ wraps an already opened SPI port in the nrzled WS2812 driver.
func NewNRZ(port spi.Port, n int, freq physic.Frequency) (*Drawer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", n)
	}
	if freq == 0 {
		freq = NRZFreq
	}
	dev, err := nrzled.NewSPI(port, &nrzled.Opts{NumPixels: n, Channels: 3, Freq: freq})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return NewDrawer(dev, n), nil
}

// OpenSPI opens the named SPI port ("" picks the first one) for a strip of
// n pixels.
func OpenSPI(name string, n int, freq physic.Frequency) (*Drawer, error) {
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", name, err)
	}
	d, err := NewNRZ(p, n, freq)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	d.closer = p
	return d, nil
}

// NewConsole prints frames as colored blocks on stdout.
func NewConsole(n int) *Drawer {
	return NewDrawer(screen.New(n), n)
}
