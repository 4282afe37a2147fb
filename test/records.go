package test

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/tschart/go-libtschart/timeseries"
)

const day = 24 * time.Hour

var globalSeed atomic.Int64

// DailyRecords returns one record per day, from before days before anchor to
// after days after it. Each record has a "time" field holding an RFC 3339
// string, and a "value" field that starts at the day of month of the first
// record and counts up by one.
func DailyRecords(anchor time.Time, before, after int) []timeseries.Record {
	t := anchor.Add(-time.Duration(before) * day)
	end := anchor.Add(time.Duration(after) * day)
	value := t.Day()
	records := make([]timeseries.Record, 0, before+after+1)
	for !t.After(end) {
		records = append(records, timeseries.Record{
			"time":  t.UTC().Format(time.RFC3339),
			"value": value,
		})
		value++
		t = t.Add(day)
	}
	return records
}

// LoadDaily is a load function that answers every request with DailyRecords.
func LoadDaily(_ context.Context, anchor time.Time, before, after int, _ string) ([]timeseries.Record, error) {
	return DailyRecords(anchor, before, after), nil
}

// RandomRecords returns n records at daily intervals starting at start, with
// random "value" fields.
func RandomRecords(start time.Time, n int) []timeseries.Record {
	rng := rand.New(rand.NewSource(globalSeed.Add(1)))
	records := make([]timeseries.Record, n)
	for i := range records {
		records[i] = timeseries.Record{
			"time":  start.Add(time.Duration(i) * day).UTC(),
			"value": 100 + rng.Float64()*100,
		}
	}
	return records
}

// Calendar generates daily records without an end in either direction,
// leaving out the days listed in Gaps.
type Calendar struct {
	Gaps []time.Time
}

// Load returns beforeCount+afterCount+1 records, starting beforeCount days
// before the anchor and skipping over gap days. The returned count is always
// the requested count, so gap days move the end of the result later.
func (c *Calendar) Load(ctx context.Context, anchor time.Time, beforeCount, afterCount int, _ string) ([]timeseries.Record, error) {
	gaps := make(map[int64]struct{}, len(c.Gaps))
	for _, g := range c.Gaps {
		gaps[g.UnixMilli()] = struct{}{}
	}
	want := beforeCount + afterCount + 1
	records := make([]timeseries.Record, 0, want)
	for offset := -beforeCount; len(records) < want; offset++ {
		if offset%1000 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		t := anchor.Add(time.Duration(offset) * day)
		if _, ok := gaps[t.UnixMilli()]; ok {
			continue
		}
		n := len(records)
		records = append(records, timeseries.Record{
			"time":   t.UTC().Format(time.RFC3339),
			"value1": float64(n%2) * 4000,
			"value2": float64(n%2)*3 - 1,
		})
	}
	return records, nil
}

func (c *Calendar) String() string {
	return fmt.Sprintf("calendar with %d gap days", len(c.Gaps))
}
