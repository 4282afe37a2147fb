package gapcalc

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tschart/go-libtschart/timeseries"
)

// Calculator sums the gap time found in ranges of values.
type Calculator struct {
	gaps []Range
}

// New creates a Calculator for gaps ordered by ascending start that do not
// overlap.
func New(gaps []Range) *Calculator {
	cp := make([]Range, len(gaps))
	copy(cp, gaps)
	return &Calculator{
		gaps: cp,
	}
}

// FromGaps creates a Calculator from time series gaps, using Unix millisecond
// values.
func FromGaps(gaps []timeseries.Gap) *Calculator {
	ranges := make([]Range, len(gaps))
	for i, gap := range gaps {
		ranges[i] = NewRange(Millis(gap.StartTime), Millis(gap.EndTime))
	}
	return &Calculator{
		gaps: ranges,
	}
}

// Millis returns t as a Unix millisecond value.
func Millis(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// Gaps returns a copy of the gap ranges.
func (c *Calculator) Gaps() []Range {
	gaps := make([]Range, len(c.gaps))
	copy(gaps, c.gaps)
	return gaps
}

// Snap returns the end of the gap that contains value, or value if it is not
// in any gap.
func (c *Calculator) Snap(value float64) float64 {
	for _, gap := range c.gaps {
		if value < gap.Start {
			break
		}
		if gap.Contains(value) {
			return gap.End
		}
	}
	return value
}

// GapAmount returns the amount of gap time up to value. See GapAmountBetween.
// Every gap before value is counted, including gaps before the Unix epoch.
func (c *Calculator) GapAmount(value float64, project, full bool) float64 {
	return c.GapAmountBetween(-math.MaxFloat64, value, project, full)
}

// GapAmountBetween returns the amount of gap time between v1 and v2.
//
// If full is false, only the part of each gap inside [v1, v2] is counted.
// Otherwise every gap that touches [v1, v2] is counted whole.
//
// If project is true, the end of the range is moved forward by the amount
// counted so far before each gap is tested. This lets a value on the
// compressed axis reach over gaps that follow each other.
func (c *Calculator) GapAmountBetween(v1, v2 float64, project, full bool) float64 {
	base := NewRange(v1, v2)
	var acc float64
	for _, gap := range c.gaps {
		limit := base
		if project {
			limit = base.GrowEnd(acc)
		}
		acc += magnitude(gap, limit, full)
	}
	return acc
}

func (c *Calculator) String() string {
	var b strings.Builder
	for _, gap := range c.gaps {
		start := time.UnixMilli(int64(gap.Start)).UTC()
		end := time.UnixMilli(int64(gap.End)).UTC()
		size := time.Duration(gap.Size()) * time.Millisecond
		fmt.Fprintf(&b, "%s - %s -> %s\n", start.Format(time.RFC3339), end.Format(time.RFC3339), size)
	}
	return b.String()
}

func magnitude(gap, limit Range, full bool) float64 {
	if !gap.IntersectsWith(limit) {
		return 0
	}
	if full {
		return gap.Size()
	}
	return gap.Intersection(limit).Size()
}
