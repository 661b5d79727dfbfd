package led

import (
	"fmt"
	"strings"
)

// Order is a channel permutation: Order{1,0,2} emits G,R,B from an R,G,B
// frame. The zero value passes frames through.
type Order [3]int

var RGB = Order{0, 1, 2}

// ParseOrder accepts any permutation of "RGB", case-insensitive.
func ParseOrder(s string) (Order, error) {
	if s == "" {
		return RGB, nil
	}
	s = strings.ToUpper(s)
	if len(s) != 3 {
		return RGB, fmt.Errorf("color order %q: want three letters", s)
	}
	var o Order
	seen := map[byte]bool{}
	for i := 0; i < 3; i++ {
		idx := strings.IndexByte("RGB", s[i])
		if idx < 0 || seen[s[i]] {
			return RGB, fmt.Errorf("color order %q: not a permutation of RGB", s)
		}
		seen[s[i]] = true
		o[i] = idx
	}
	return o, nil
}

func (o Order) String() string {
	if o == (Order{}) {
		o = RGB
	}
	b := make([]byte, 3)
	for i, idx := range o {
		b[i] = "RGB"[idx]
	}
	return string(b)
}

// Apply permutes rgb in place.
func (o Order) Apply(rgb []byte) {
	if o == RGB || o == (Order{}) {
		return
	}
	for i := 0; i+2 < len(rgb); i += 3 {
		p := [3]byte{rgb[i], rgb[i+1], rgb[i+2]}
		rgb[i], rgb[i+1], rgb[i+2] = p[o[0]], p[o[1]], p[o[2]]
	}
}
