package encoder

import (
	"errors"
	"fmt"
)

// Case identifies the effect a range of encoder positions selects.
type Case int

// DefaultCase is returned for positions no range covers.
const DefaultCase Case = 0

// DefaultMax is the highest encoder position before wrapping to 0.
const DefaultMax = 20

// Range maps the closed interval [Lo, Hi] of positions to a Case.
type Range struct {
	Lo   int  `yaml:"lo" toml:"lo"`
	Hi   int  `yaml:"hi" toml:"hi"`
	Case Case `yaml:"case" toml:"case"`
}

func (r Range) String() string { return fmt.Sprintf("[%d,%d]->%d", r.Lo, r.Hi, r.Case) }

// DefaultRanges partitions [0, DefaultMax] into four cases.
func DefaultRanges() []Range {
	return []Range{
		{Lo: 0, Hi: 4, Case: 1},
		{Lo: 5, Hi: 9, Case: 2},
		{Lo: 10, Hi: 14, Case: 3},
		{Lo: 15, Hi: 20, Case: 4},
	}
}

// CaseTable is a validated, ordered partition of encoder positions.
type CaseTable struct {
	max    int
	ranges []Range
}

// NewCaseTable checks that ranges are strictly increasing, contiguous and
// inside [0, max]. They need not cover the whole domain; uncovered
// positions resolve to DefaultCase.
func NewCaseTable(max int, ranges ...Range) (*CaseTable, error) {
	if max < 0 {
		return nil, fmt.Errorf("max position %d is negative", max)
	}
	if len(ranges) == 0 {
		return nil, errors.New("case table needs at least one range")
	}
	for i, r := range ranges {
		if r.Lo > r.Hi {
			return nil, fmt.Errorf("range %d %v: lo above hi", i, r)
		}
		if r.Lo < 0 || r.Hi > max {
			return nil, fmt.Errorf("range %d %v: outside [0,%d]", i, r, max)
		}
		if i > 0 && r.Lo != ranges[i-1].Hi+1 {
			return nil, fmt.Errorf("range %d %v does not start right after %v", i, r, ranges[i-1])
		}
	}
	return &CaseTable{max: max, ranges: append([]Range{}, ranges...)}, nil
}

// DefaultCaseTable is the stock four-case table.
func DefaultCaseTable() *CaseTable {
	t, err := NewCaseTable(DefaultMax, DefaultRanges()...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *CaseTable) Max() int { return t.max }

func (t *CaseTable) Ranges() []Range { return append([]Range{}, t.ranges...) }

// Lookup returns the case of the first range containing pos.
func (t *CaseTable) Lookup(pos int) Case {
	for _, r := range t.ranges {
		if pos >= r.Lo && pos <= r.Hi {
			return r.Case
		}
	}
	return DefaultCase
}

// Cases lists every case the table can produce, DefaultCase included.
func (t *CaseTable) Cases() []Case {
	out := []Case{DefaultCase}
	seen := map[Case]bool{DefaultCase: true}
	for _, r := range t.ranges {
		if !seen[r.Case] {
			seen[r.Case] = true
			out = append(out, r.Case)
		}
	}
	return out
}
