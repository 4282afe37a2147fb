package gapcalc

import (
	"fmt"
	"math"
)

// EmptyRange is the range [0, 0].
var EmptyRange = Range{}

// Range is a closed range of values [Start, End].
type Range struct {
	Start float64
	End   float64
}

// NewRange creates a Range from two values given in any order.
func NewRange(v1, v2 float64) Range {
	return Range{Start: math.Min(v1, v2), End: math.Max(v1, v2)}
}

func (r Range) Size() float64 {
	return r.End - r.Start
}

func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Contains returns true if v is in the range, including both ends.
func (r Range) Contains(v float64) bool {
	return !(v < r.Start) && !(v > r.End)
}

func (r Range) IntersectsWith(other Range) bool {
	return r.Contains(other.Start) || r.Contains(other.End) || other.Contains(r.Start) || other.Contains(r.End)
}

// Intersection returns the values shared by both ranges, or EmptyRange if the
// ranges do not intersect.
func (r Range) Intersection(other Range) Range {
	if !r.IntersectsWith(other) {
		return EmptyRange
	}
	return NewRange(math.Max(r.Start, other.Start), math.Min(r.End, other.End))
}

// GrowEnd returns the range with its end moved by amount.
func (r Range) GrowEnd(amount float64) Range {
	return NewRange(r.Start, r.End+amount)
}

func (r Range) String() string {
	return fmt.Sprintf("%g - %g", r.Start, r.End)
}
