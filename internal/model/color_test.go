package model_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/coreman2200/funtimes-lightstrip/internal/model"
)

var TestPackedIsExpectedColor = []struct {
	Packed uint32
	Expect Color
}{
	{0x112233, Color{0x11, 0x22, 0x33}},
	{0xFF0000, Red},
	{0x00FF00, Green},
	{0x0000FF, Blue},
	{0x202A44, Color{0x20, 0x2A, 0x44}},
}

var TestFadeToBlackBy = []struct {
	Start  Color
	Amount uint8
	Expect Color
}{
	{White, 0, White},
	{White, 128, Color{127, 127, 127}},
	{White, 255, Black},
	{Color{200, 100, 50}, 64, Color{150, 75, 37}},
	{Black, 10, Black},
}

func TestColorsPacked(t *testing.T) {
	for k, v := range TestPackedIsExpectedColor {
		t.Run("Given packed "+strconv.FormatUint(uint64(k), 10), func(t *testing.T) {
			col := NewColor(v.Packed)
			assert.Equal(t, v.Expect, col, "should unpack")
			assert.Equal(t, v.Packed, col.Packed(), "should round trip")
		})
	}
}

func TestColorsFade(t *testing.T) {
	for k, v := range TestFadeToBlackBy {
		t.Run("Given fade "+strconv.FormatUint(uint64(k), 10), func(t *testing.T) {
			assert.Equal(t, v.Expect, v.Start.FadeToBlackBy(v.Amount))
		})
	}
}

func TestBlendEndpoints(t *testing.T) {
	a := Color{32, 42, 68}
	b := Color{192, 180, 91}

	assert.Equal(t, a, Blend(a, b, 0))
	assert.Equal(t, b, Blend(a, b, 1))
	assert.Equal(t, a, Blend(a, b, -0.5), "t clamps low")
	assert.Equal(t, b, Blend(a, b, 1.5), "t clamps high")
	assert.Equal(t, Color{112, 111, 80}, Blend(a, b, 0.5))
}

func TestHueWheel(t *testing.T) {
	assert.Equal(t, Red, Hue(0))
	// a third of the way around the wheel is green
	g := Hue(85)
	assert.Greater(t, g.G, g.R)
	assert.Greater(t, g.G, g.B)
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#202a44")
	require.NoError(t, err)
	assert.Equal(t, Color{0x20, 0x2A, 0x44}, c)
	assert.Equal(t, "#202a44", c.Hex())

	_, err = ParseHex("nope")
	assert.Error(t, err)
}

func TestSin8(t *testing.T) {
	assert.Equal(t, uint8(128), Sin8(0))
	assert.Equal(t, uint8(255), Sin8(64))
	assert.Equal(t, uint8(128), Sin8(128))
	assert.Equal(t, uint8(1), Sin8(192))
}

func TestColorTextRoundTrip(t *testing.T) {
	var c Color
	require.NoError(t, c.UnmarshalText([]byte("ff8000")))
	assert.Equal(t, Color{255, 128, 0}, c)
	require.NoError(t, c.UnmarshalText([]byte("#00ff00")))
	assert.Equal(t, Green, c)

	b, err := Blue.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "#0000ff", string(b))

	assert.Error(t, c.UnmarshalText([]byte("zz")))
}
