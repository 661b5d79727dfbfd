package encoder

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type rig struct {
	clk, dt *gpiotest.Pin
	tr      *Tracker
}

func newRig(t *testing.T, table *CaseTable) *rig {
	t.Helper()
	r := &rig{
		clk: &gpiotest.Pin{N: "CLK", L: gpio.High},
		dt:  &gpiotest.Pin{N: "DT", L: gpio.High},
	}
	tr, err := NewTracker(r.clk, r.dt, table, zerolog.Nop())
	require.NoError(t, err)
	r.tr = tr
	return r
}

// turn produces one CLK transition in the given direction and samples it.
func (r *rig) turn(cw bool) int {
	next := !r.clk.Read()
	if cw {
		r.dt.Out(!next)
	} else {
		r.dt.Out(next)
	}
	r.clk.Out(next)
	return r.tr.Sample()
}

func TestTrackerDirection(t *testing.T) {
	r := newRig(t, nil)
	assert.Equal(t, 1, r.turn(true))
	assert.Equal(t, 1, r.tr.Position())
	assert.Equal(t, 1, r.turn(true))
	assert.Equal(t, -1, r.turn(false))
	assert.Equal(t, 1, r.tr.Position())
}

func TestTrackerIgnoresDTWithoutClockEdge(t *testing.T) {
	r := newRig(t, nil)
	for i := 0; i < 5; i++ {
		r.dt.Out(gpio.Level(i%2 == 0))
		assert.Equal(t, 0, r.tr.Sample())
	}
	assert.Equal(t, 0, r.tr.Position())
}

func TestTrackerWrapsBothWays(t *testing.T) {
	r := newRig(t, nil)
	r.turn(false)
	assert.Equal(t, DefaultMax, r.tr.Position(), "0 - 1 wraps to max")
	assert.Equal(t, Case(4), r.tr.Case())
	r.turn(true)
	assert.Equal(t, 0, r.tr.Position(), "max + 1 wraps to 0")
	assert.Equal(t, Case(1), r.tr.Case())
}

func TestTrackerStaysInBounds(t *testing.T) {
	r := newRig(t, nil)
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		r.turn(rnd.Intn(2) == 0)
		pos := r.tr.Position()
		require.GreaterOrEqual(t, pos, 0)
		require.LessOrEqual(t, pos, DefaultMax)
		require.Equal(t, r.tr.Table().Lookup(pos), r.tr.Case())
	}
}

func TestTrackerFullRevolution(t *testing.T) {
	r := newRig(t, nil)
	for i := 0; i <= DefaultMax; i++ {
		r.turn(true)
	}
	assert.Equal(t, 0, r.tr.Position())
}

func TestTrackerReset(t *testing.T) {
	r := newRig(t, nil)
	for i := 0; i < 12; i++ {
		r.turn(true)
	}
	require.Equal(t, Case(3), r.tr.Case())
	r.tr.Reset()
	assert.Equal(t, 0, r.tr.Position())
	assert.Equal(t, Case(1), r.tr.Case())
	assert.Equal(t, 0, r.tr.Sample(), "reset resyncs clk")
}

func TestTrackerNeedsPins(t *testing.T) {
	_, err := NewTracker(nil, &gpiotest.Pin{}, nil, zerolog.Nop())
	assert.Error(t, err)
}

var TestLookupIsExpectedCase = []struct {
	Pos    int
	Expect Case
}{
	{0, 1}, {3, 1}, {4, 1},
	{5, 2}, {9, 2},
	{10, 3}, {14, 3},
	{15, 4}, {20, 4},
	{21, DefaultCase}, {-1, DefaultCase},
}

func TestDefaultCaseTableLookup(t *testing.T) {
	table := DefaultCaseTable()
	for _, tc := range TestLookupIsExpectedCase {
		assert.Equal(t, tc.Expect, table.Lookup(tc.Pos), "position %d", tc.Pos)
	}
}

func TestDefaultCaseTableIsTotal(t *testing.T) {
	table := DefaultCaseTable()
	for pos := 0; pos <= table.Max(); pos++ {
		assert.NotEqual(t, DefaultCase, table.Lookup(pos), "position %d uncovered", pos)
	}
	assert.Equal(t, []Case{0, 1, 2, 3, 4}, table.Cases())
}

func TestNewCaseTableRejects(t *testing.T) {
	bad := map[string][]Range{
		"empty":       nil,
		"inverted":    {{Lo: 4, Hi: 0, Case: 1}},
		"overlapping": {{Lo: 0, Hi: 5, Case: 1}, {Lo: 5, Hi: 9, Case: 2}},
		"gap":         {{Lo: 0, Hi: 4, Case: 1}, {Lo: 6, Hi: 9, Case: 2}},
		"decreasing":  {{Lo: 5, Hi: 9, Case: 2}, {Lo: 0, Hi: 4, Case: 1}},
		"past max":    {{Lo: 0, Hi: 21, Case: 1}},
		"negative":    {{Lo: -1, Hi: 3, Case: 1}},
	}
	for name, ranges := range bad {
		_, err := NewCaseTable(20, ranges...)
		assert.Error(t, err, name)
	}
	_, err := NewCaseTable(-1, Range{Lo: 0, Hi: 0, Case: 1})
	assert.Error(t, err)
}

func TestCaseTablePartialCoverage(t *testing.T) {
	table, err := NewCaseTable(10, Range{Lo: 2, Hi: 3, Case: 7})
	require.NoError(t, err)
	assert.Equal(t, DefaultCase, table.Lookup(0))
	assert.Equal(t, Case(7), table.Lookup(3))
	assert.Equal(t, DefaultCase, table.Lookup(10))
}

func TestButtonEdge(t *testing.T) {
	pin := &gpiotest.Pin{N: "SW", L: gpio.High}
	b := NewButton(pin, 0)

	assert.False(t, b.Pressed(0))
	pin.Out(gpio.Low)
	assert.True(t, b.Pressed(1))
	assert.False(t, b.Pressed(2), "held is not a new press")
	assert.False(t, b.Pressed(3))
	pin.Out(gpio.High)
	assert.False(t, b.Pressed(4), "release is not a press")
	pin.Out(gpio.Low)
	assert.True(t, b.Pressed(5))
}

func TestButtonHeldAtBoot(t *testing.T) {
	pin := &gpiotest.Pin{N: "SW", L: gpio.Low}
	b := NewButton(pin, 0)
	assert.False(t, b.Pressed(0))
	pin.Out(gpio.High)
	b.Pressed(1)
	pin.Out(gpio.Low)
	assert.True(t, b.Pressed(2))
}

func TestButtonDebounce(t *testing.T) {
	pin := &gpiotest.Pin{N: "SW", L: gpio.High}
	b := NewButton(pin, 20)

	pin.Out(gpio.Low)
	require.True(t, b.Pressed(100))

	// contact bounce
	pin.Out(gpio.High)
	assert.False(t, b.Pressed(105))
	pin.Out(gpio.Low)
	assert.False(t, b.Pressed(108))
	assert.True(t, b.Down())

	pin.Out(gpio.High)
	assert.False(t, b.Pressed(130))
	assert.False(t, b.Down())
	pin.Out(gpio.Low)
	assert.False(t, b.Pressed(140), "inside window after release")
	assert.True(t, b.Pressed(150))
}
