package led

import "math"

// Limiter applies a two-stage power limiter to 8-bit RGB frames:
//  1. Per-LED white cap: scales a pixel so the sum of its channel fractions
//     stays under WhiteCap (3.0 = no cap).
//  2. Global current budget: estimates draw at ChanmA per channel at full
//     scale and scales the whole frame to stay under BudgetmA. Draw above
//     Knee*BudgetmA is compressed exponentially toward BudgetmA, so the
//     limit eases in instead of clipping.
//
// A zero BudgetmA disables stage 2.
type Limiter struct {
	WhiteCap float64
	ChanmA   float64
	BudgetmA float64
	Knee     float64
}

// DefaultLimiter matches a 5V strip on a 2.5A supply.
func DefaultLimiter() Limiter {
	return Limiter{WhiteCap: 3.0, ChanmA: 20, BudgetmA: 2500, Knee: 0.9}
}

// CurrentmA estimates what rgb draws with chanmA per channel at full scale.
func CurrentmA(rgb []byte, chanmA float64) float64 {
	var sum int
	for _, v := range rgb {
		sum += int(v)
	}
	return float64(sum) / 255.0 * chanmA
}

// Apply limits rgb in place.
func (l Limiter) Apply(rgb []byte) {
	if l.WhiteCap > 0 && l.WhiteCap < 3 {
		limit := l.WhiteCap * 255
		for i := 0; i+2 < len(rgb); i += 3 {
			s := float64(rgb[i]) + float64(rgb[i+1]) + float64(rgb[i+2])
			if s > limit {
				scale(rgb[i:i+3], limit/s)
			}
		}
	}

	if l.BudgetmA <= 0 {
		return
	}
	chanmA := l.ChanmA
	if chanmA <= 0 {
		chanmA = 20
	}
	knee := l.Knee
	if knee <= 0 || knee >= 1 {
		knee = 0.9
	}
	total := CurrentmA(rgb, chanmA)
	if total <= 0 {
		return
	}
	start := knee * l.BudgetmA
	if total <= start {
		return
	}
	width := l.BudgetmA - start
	target := start + width*(1-math.Exp(-(total-start)/width))
	scale(rgb, target/total)
}

// scale multiplies every byte by s < 1, rounding down so the result never
// exceeds the target.
func scale(b []byte, s float64) {
	if s >= 1 {
		return
	}
	for i := range b {
		b[i] = byte(float64(b[i]) * s)
	}
}
