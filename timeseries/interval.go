package timeseries

import (
	"fmt"
	"time"
)

// EmptyInterval is the interval of a time series that has no items.
var EmptyInterval = Interval{Start: time.UnixMilli(0).UTC(), End: time.UnixMilli(0).UTC()}

// Interval describes the closed time range [Start, End].
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval creates an Interval from two times given in any order.
func NewInterval(t1, t2 time.Time) Interval {
	if t2.Before(t1) {
		t1, t2 = t2, t1
	}
	return Interval{Start: t1, End: t2}
}

// IsEmpty returns true if the interval has zero duration.
func (i Interval) IsEmpty() bool {
	return i.Start.Equal(i.End)
}

// Equal returns true if both intervals start and end at the same instants.
func (i Interval) Equal(other Interval) bool {
	return i.Start.Equal(other.Start) && i.End.Equal(other.End)
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Contains returns true if t is within the interval, including both ends.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && !t.After(i.End)
}

// Encloses returns true if other lies entirely within the interval.
func (i Interval) Encloses(other Interval) bool {
	return i.Contains(other.Start) && i.Contains(other.End)
}

// IntersectsWith returns true if the intervals share at least one instant.
func (i Interval) IntersectsWith(other Interval) bool {
	return i.Contains(other.Start) || i.Contains(other.End) || other.Contains(i.Start) || other.Contains(i.End)
}

// Intersection returns the shared part of both intervals, or EmptyInterval if
// they do not intersect.
func (i Interval) Intersection(other Interval) Interval {
	if !i.IntersectsWith(other) {
		return EmptyInterval
	}
	start := i.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := i.End
	if other.End.Before(end) {
		end = other.End
	}
	return Interval{Start: start, End: end}
}

func (i Interval) String() string {
	return fmt.Sprintf("%s - %s", i.Start.UTC().Format(time.RFC3339), i.End.UTC().Format(time.RFC3339))
}
