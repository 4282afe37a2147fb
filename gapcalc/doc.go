// Package gapcalc translates between real time and a gap-compressed axis.
//
// A chart that hides the time ranges in which no data exists (nights,
// weekends, outages) needs to know, for any value on its time axis, how much
// hidden time lies before it. A Calculator holds the hidden ranges, as Unix
// millisecond values, and sums them over a range of values.
//
// The gap list given to a Calculator must be ordered by ascending start and
// must not contain overlapping ranges. This is not checked. A new Calculator
// is created whenever the set of visible gaps changes, typically from
// timeseries.TimeSeries.Gaps using FromGaps.
package gapcalc
