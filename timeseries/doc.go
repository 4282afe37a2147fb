// Package timeseries provides the value types used to hold chart data that is
// loaded in pieces.
//
// A TimeSeries is an immutable, ordered window of items, each a timestamp plus
// a raw record. Besides the items, a series knows the nominal spacing of its
// items (the time unit) and whether its first and last items are the true
// start and end of all available data.
//
// A Section describes a window to read from a series as an anchor time plus a
// count of items before and after it. Slicing a series by a section yields an
// ItemSlice, which reports how many of the requested items were beyond the
// edges of the series. Callers use these counts to decide what more to load.
//
// Gaps are detected between consecutive items that are more than one time unit
// (plus 1ms of tolerance) apart.
package timeseries
