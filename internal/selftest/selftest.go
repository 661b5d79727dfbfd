// Package selftest drives bring-up patterns through the strip: a single
// white pixel walking the strip (checks count and direction) and the three
// channels in turn (checks color order).
package selftest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-lightstrip/internal/model"
)

type Kind string

const (
	None       Kind = ""
	IndexSweep Kind = "index_sweep"
	RGBTest    Kind = "rgb_channels"
)

// Kinds lists the runnable patterns.
func Kinds() []Kind { return []Kind{IndexSweep, RGBTest} }

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return None, fmt.Errorf("unknown self-test %q", s)
}

type Plan struct {
	Kind Kind
	// Cycles bounds RGBTest; each cycle shows red, green, blue.
	Cycles int
}

type Runner struct {
	plan Plan
	step int
}

func NewRunner(plan Plan) *Runner {
	if plan.Cycles <= 0 {
		plan.Cycles = 1
	}
	return &Runner{plan: plan}
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Step draws the next pattern frame into strip; returns false when complete.
func (r *Runner) Step(strip *model.Strip) bool {
	n := strip.Len()
	switch r.plan.Kind {
	case IndexSweep:
		if r.step >= n {
			return false
		}
		strip.Clear()
		strip.SetPixel(r.step, model.White)
	case RGBTest:
		if r.step >= 3*r.plan.Cycles {
			return false
		}
		strip.Fill([]model.Color{model.Red, model.Green, model.Blue}[r.step%3])
	default:
		return false
	}
	r.step++
	return true
}

// Run steps the plan every period, flushing each frame, and blanks the
// strip at the end.
func (r *Runner) Run(ctx context.Context, strip *model.Strip, period time.Duration, log zerolog.Logger) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	log.Info().Str("test", string(r.plan.Kind)).Int("pixels", strip.Len()).Msg("self-test running")
	for r.Step(strip) {
		if err := strip.Flush(); err != nil {
			return fmt.Errorf("self-test %s step %d: %w", r.plan.Kind, r.step, err)
		}
		select {
		case <-ctx.Done():
			strip.Clear()
			_ = strip.Flush()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	strip.Clear()
	log.Info().Str("test", string(r.plan.Kind)).Int("steps", r.step).Msg("self-test complete")
	return strip.Flush()
}
