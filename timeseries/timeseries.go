package timeseries

import (
	"math"
	"time"
)

// gapTolerance is the slack allowed on item spacing before a gap is reported.
const gapTolerance = time.Millisecond

// TimeSeries is an immutable sequence of items with strictly increasing
// timestamps. It carries the nominal spacing of its items, and whether its
// first and last items are known to be the first and last data that exists.
type TimeSeries struct {
	fullStart bool
	fullEnd   bool
	timeUnit  time.Duration
	items     []Item
	interval  Interval
}

// New creates a TimeSeries from items ordered by ascending unique timestamps.
// The items are copied.
func New(timeUnit time.Duration, items []Item, fullStart, fullEnd bool) *TimeSeries {
	cp := make([]Item, len(items))
	copy(cp, items)
	return &TimeSeries{
		fullStart: fullStart,
		fullEnd:   fullEnd,
		timeUnit:  timeUnit,
		items:     cp,
		interval:  intervalOf(cp),
	}
}

// Empty creates a TimeSeries with no items.
func Empty(timeUnit time.Duration) *TimeSeries {
	return New(timeUnit, nil, false, false)
}

// FromSlice creates a TimeSeries holding the items of a slice, keeping the
// slice's time unit and full data flags.
func FromSlice(slice *ItemSlice) *TimeSeries {
	return New(slice.timeUnit, slice.items, slice.ContainsFullDataStart, slice.ContainsFullDataEnd)
}

// Interval returns the range from the first to the last item, or
// EmptyInterval if there are no items.
func (ts *TimeSeries) Interval() Interval {
	return ts.interval
}

func (ts *TimeSeries) TimeUnit() time.Duration {
	return ts.timeUnit
}

// ContainsFullDataStart returns true if no data exists before the first item.
func (ts *TimeSeries) ContainsFullDataStart() bool {
	return ts.fullStart
}

// ContainsFullDataEnd returns true if no data exists after the last item.
func (ts *TimeSeries) ContainsFullDataEnd() bool {
	return ts.fullEnd
}

func (ts *TimeSeries) Len() int {
	return len(ts.items)
}

func (ts *TimeSeries) IsEmpty() bool {
	return len(ts.items) == 0
}

// Items returns a copy of all items.
func (ts *TimeSeries) Items() []Item {
	items := make([]Item, len(ts.items))
	copy(items, ts.items)
	return items
}

// EnclosesInterval returns true if the other interval lies within the
// interval of the series.
func (ts *TimeSeries) EnclosesInterval(other Interval) bool {
	return ts.interval.Encloses(other)
}

// HasFullItemSection returns true if every item the section asks for is held
// by the series.
func (ts *TimeSeries) HasFullItemSection(section Section) bool {
	index := ts.closestIndex(section.Time)
	if index < 0 {
		return false
	}
	start := satSub(index, section.BeforeCount)
	end := satAdd(index, section.AfterCount)
	n := len(ts.items)
	return start >= 0 && start < n && end >= 0 && end < n
}

// ItemSlice returns the items covered by the section. Requested items that
// lie beyond either end of the series are reported as missing. Returns nil if
// the section anchor is outside the series interval.
func (ts *TimeSeries) ItemSlice(section Section) *ItemSlice {
	index := ts.closestIndex(section.Time)
	if index < 0 {
		return nil
	}
	n := len(ts.items)
	start := satSub(index, section.BeforeCount)
	end := satAdd(index, section.AfterCount)

	var missingLeft, missingRight int
	if start < 0 {
		missingLeft = satSub(0, start)
	}
	if end >= n {
		missingRight = satAdd(satSub(end, n), 1)
	}

	lo := clamp(start, 0, n-1)
	hi := clamp(satAdd(end, 1), 0, n)
	var items []Item
	if lo < hi {
		items = make([]Item, hi-lo)
		copy(items, ts.items[lo:hi])
	}
	return NewItemSlice(items, ts.timeUnit, missingLeft, missingRight,
		ts.fullStart && start <= 0, ts.fullEnd && end >= n-1)
}

// Gaps returns the ranges between consecutive items whose spacing exceeds the
// time unit.
func (ts *TimeSeries) Gaps() []Gap {
	var gaps []Gap
	for i := 1; i < len(ts.items); i++ {
		prev := ts.items[i-1].time
		cur := ts.items[i].time
		t1 := prev.Add(ts.timeUnit + gapTolerance)
		t2 := cur.Add(-gapTolerance)
		if t2.After(t1) {
			gaps = append(gaps, Gap{
				StartTime: prev.Add(ts.timeUnit),
				EndTime:   cur,
			})
		}
	}
	return gaps
}

// closestIndex returns the index of the item nearest to t, preferring an exact
// match and then the earlier of two equally distant items. Returns -1 if t is
// outside the series interval.
func (ts *TimeSeries) closestIndex(t time.Time) int {
	if len(ts.items) == 0 || !ts.interval.Contains(t) {
		return -1
	}
	last := len(ts.items) - 1
	for i, cur := range ts.items {
		if t.Equal(cur.time) || i == last {
			return i
		}
		next := ts.items[i+1].time
		if t.Before(next) && absDuration(t.Sub(cur.time)) <= absDuration(next.Sub(t)) {
			return i
		}
	}
	return -1
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func satAdd(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	if b < 0 && a < math.MinInt-b {
		return math.MinInt
	}
	return a + b
}

func satSub(a, b int) int {
	if b == math.MinInt {
		if a >= 0 {
			return math.MaxInt
		}
		return a - b
	}
	return satAdd(a, -b)
}
