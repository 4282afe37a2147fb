package timeseries

import (
	"fmt"
	"math"
	"time"
)

// Section is a query window expressed as a number of items before and after
// an anchor time.
type Section struct {
	Time        time.Time
	BeforeCount int
	AfterCount  int
}

// NewSection creates a Section anchored at t.
func NewSection(t time.Time, beforeCount, afterCount int) Section {
	return Section{
		Time:        t,
		BeforeCount: beforeCount,
		AfterCount:  afterCount,
	}
}

// Size returns the number of items the section covers, including the anchor
// item.
func (s Section) Size() int {
	return satAdd(satAdd(s.BeforeCount, s.AfterCount), 1)
}

// IsEmpty returns true if the section requests no items on either side of the
// anchor.
func (s Section) IsEmpty() bool {
	return s.BeforeCount <= 0 && s.AfterCount <= 0
}

// Equal returns true if both sections have the same anchor and counts.
func (s Section) Equal(other Section) bool {
	return s.Time.Equal(other.Time) && s.BeforeCount == other.BeforeCount && s.AfterCount == other.AfterCount
}

// ExpandBy returns a section with both counts multiplied by m and rounded to
// the nearest integer.
func (s Section) ExpandBy(m float64) Section {
	return Section{
		Time:        s.Time,
		BeforeCount: scale(s.BeforeCount, m),
		AfterCount:  scale(s.AfterCount, m),
	}
}

func (s Section) String() string {
	return fmt.Sprintf("%s -%d/+%d", s.Time.UTC().Format(time.RFC3339), s.BeforeCount, s.AfterCount)
}

func scale(count int, m float64) int {
	v := math.Round(float64(count) * m)
	switch {
	case v >= math.MaxInt:
		return math.MaxInt
	case v <= math.MinInt:
		return math.MinInt
	}
	return int(v)
}

// ItemSlice is the result of slicing a TimeSeries by a Section. It holds the
// items that were available, plus how many requested items lay beyond each
// edge of the series.
type ItemSlice struct {
	// MissingItemCountLeft is the number of requested items before the first
	// available item.
	MissingItemCountLeft int
	// MissingItemCountRight is the number of requested items after the last
	// available item.
	MissingItemCountRight int
	// ContainsFullDataStart is true if the slice reaches the first item of a
	// series known to have no earlier data.
	ContainsFullDataStart bool
	// ContainsFullDataEnd is true if the slice reaches the last item of a
	// series known to have no later data.
	ContainsFullDataEnd bool

	timeUnit time.Duration
	items    []Item
}

// NewItemSlice creates an ItemSlice from items that are already ordered.
func NewItemSlice(items []Item, timeUnit time.Duration, missingLeft, missingRight int, fullStart, fullEnd bool) *ItemSlice {
	return &ItemSlice{
		MissingItemCountLeft:  missingLeft,
		MissingItemCountRight: missingRight,
		ContainsFullDataStart: fullStart,
		ContainsFullDataEnd:   fullEnd,
		timeUnit:              timeUnit,
		items:                 items,
	}
}

// TimeUnit returns the nominal spacing of items in the series the slice was
// taken from.
func (s *ItemSlice) TimeUnit() time.Duration {
	return s.timeUnit
}

// Interval returns the time range from the first to the last item in the
// slice, or EmptyInterval if the slice has no items.
func (s *ItemSlice) Interval() Interval {
	return intervalOf(s.items)
}

func (s *ItemSlice) IsMissingItemsLeft() bool {
	return s.MissingItemCountLeft > 0
}

func (s *ItemSlice) IsMissingItemsRight() bool {
	return s.MissingItemCountRight > 0
}

// HasCompleteItems returns true if no requested items are missing on either
// side.
func (s *ItemSlice) HasCompleteItems() bool {
	return !s.IsMissingItemsLeft() && !s.IsMissingItemsRight()
}

func (s *ItemSlice) IsEmpty() bool {
	return len(s.items) == 0
}

func (s *ItemSlice) Len() int {
	return len(s.items)
}

// Items returns a copy of the items in the slice.
func (s *ItemSlice) Items() []Item {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// Gap is a range of time, [StartTime, EndTime), in which items were expected
// but none exist.
type Gap struct {
	StartTime time.Time
	EndTime   time.Time
}

// Duration returns the length of the gap.
func (g Gap) Duration() time.Duration {
	return g.EndTime.Sub(g.StartTime)
}

func (g Gap) String() string {
	return fmt.Sprintf("%s - %s", g.StartTime.UTC().Format(time.RFC3339), g.EndTime.UTC().Format(time.RFC3339))
}

func intervalOf(items []Item) Interval {
	if len(items) == 0 {
		return EmptyInterval
	}
	return Interval{Start: items[0].time, End: items[len(items)-1].time}
}
