package model

import (
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	RED_OFFSET   uint8 = 0x10
	GREEN_OFFSET uint8 = 0x08
	BLUE_OFFSET  uint8 = 0x0
)

// Color is one pixel: three 8-bit channel intensities.
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{}
	White = Color{255, 255, 255}
	Red   = Color{R: 255}
	Green = Color{G: 255}
	Blue  = Color{B: 255}
)

// NewColor unpacks a 0xRRGGBB value.
func NewColor(c uint32) Color {
	return Color{
		R: getcolor(c, RED_OFFSET),
		G: getcolor(c, GREEN_OFFSET),
		B: getcolor(c, BLUE_OFFSET),
	}
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & mask) >> off)
}

// Packed returns the color as 0xRRGGBB.
func (c Color) Packed() uint32 {
	return uint32(c.R)<<RED_OFFSET | uint32(c.G)<<GREEN_OFFSET | uint32(c.B)<<BLUE_OFFSET
}

func (c Color) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

func (c Color) ToNRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// FadeToBlackBy attenuates every channel by amount/256, so 0 leaves the
// color untouched and 255 takes any channel to (almost always) zero.
func (c Color) FadeToBlackBy(amount uint8) Color {
	keep := 256 - uint16(amount)
	return Color{
		R: uint8(uint16(c.R) * keep >> 8),
		G: uint8(uint16(c.G) * keep >> 8),
		B: uint8(uint16(c.B) * keep >> 8),
	}
}

// Scale keeps brightness/255 of each channel.
func (c Color) Scale(brightness uint8) Color {
	if brightness == 255 {
		return c
	}
	return c.FadeToBlackBy(255 - brightness)
}

// Blend mixes a and b linearly; t is clamped to [0,1].
func Blend(a, b Color, t float64) Color {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return Color{
		R: lerp(a.R, b.R, t),
		G: lerp(a.G, b.G, t),
		B: lerp(a.B, b.B, t),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	v := float64(a) + (float64(b)-float64(a))*t
	return uint8(math.Round(v))
}

// Hue converts an 8-bit hue (0..255 spanning the color wheel) to a fully
// saturated, full value color.
func Hue(h uint8) Color {
	r, g, b := colorful.Hsv(float64(h)*360.0/256.0, 1, 1).RGB255()
	return Color{r, g, b}
}

// ParseHex accepts "#rrggbb" or "#rgb".
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Black, err
	}
	r, g, b := c.RGB255()
	return Color{r, g, b}, nil
}

func (c Color) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hex()
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText accepts hex with or without the leading '#', so config
// files do not need to quote around YAML comments.
func (c *Color) UnmarshalText(b []byte) error {
	s := string(b)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	v, err := ParseHex(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Sin8 is an 8-bit sine: one full period over x in [0,256), output 1..255
// centered on 128.
func Sin8(x uint8) uint8 {
	return sin8Table[x]
}

var sin8Table [256]uint8

func init() {
	for i := range sin8Table {
		v := 128 + 127*math.Sin(2*math.Pi*float64(i)/256.0)
		sin8Table[i] = uint8(math.Round(v))
	}
}
