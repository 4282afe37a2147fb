package tsdata

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tschart/go-libtschart/timeseries"
)

// Cache holds a single window of time series data and plans the requests
// needed to extend it. Reads are lock-free; the held series is immutable and
// is replaced whole on every change.
type Cache struct {
	read atomic.Pointer[timeseries.TimeSeries]
	// mu serializes read-modify-write updates of the held series.
	mu sync.Mutex
}

// NewCache creates an empty cache with the given time unit.
func NewCache(timeUnit time.Duration) *Cache {
	c := &Cache{}
	c.read.Store(timeseries.Empty(timeUnit))
	return c
}

// TimeSeries returns the currently cached series. Do not hold on to it when
// up-to-date data is needed; later updates replace it.
func (c *Cache) TimeSeries() *timeseries.TimeSeries {
	return c.read.Load()
}

func (c *Cache) TimeUnit() time.Duration {
	return c.read.Load().TimeUnit()
}

// CachedInterval returns the time range of the cached items.
func (c *Cache) CachedInterval() timeseries.Interval {
	return c.read.Load().Interval()
}

// HasMatchingTimeUnit returns true if the cache holds data at the query's
// time unit.
func (c *Cache) HasMatchingTimeUnit(q *Query) bool {
	return hasMatchingTimeUnit(c.read.Load(), q)
}

// HasFullData returns true if every item the query asks for is cached.
func (c *Cache) HasFullData(q *Query) bool {
	ts := c.read.Load()
	return hasMatchingTimeUnit(ts, q) && ts.HasFullItemSection(q.Section)
}

// GetData returns the cached items for the query, or nil if the query anchor
// is not within cached data at the query's time unit.
func (c *Cache) GetData(q *Query) *timeseries.ItemSlice {
	ts := c.read.Load()
	if !hasMatchingTimeUnit(ts, q) {
		return nil
	}
	return ts.ItemSlice(q.Section)
}

// IsOutOfDataRange returns true if t lies beyond an edge of the cached data
// that is known to be the end of all available data.
func (c *Cache) IsOutOfDataRange(t time.Time) bool {
	return isOutOfDataRange(c.read.Load(), t)
}

// CreateRequests returns the requests needed to load the data for the query
// that is not yet cached. Sections are enlarged by m+1 so that nearby queries
// can be answered from the cache. Returns no requests if nothing needs to be
// loaded, or if the query time unit does not match the cache.
func (c *Cache) CreateRequests(q *Query, m float64) []*Request {
	ts := c.read.Load()
	if !hasMatchingTimeUnit(ts, q) || isOutOfDataRange(ts, q.Section.Time) {
		return nil
	}
	requestSection := q.Section.ExpandBy(m + 1)

	var requests []*Request
	slice := ts.ItemSlice(q.Section)
	if slice == nil {
		requests = append(requests, NewResetRequest(requestSection.Time, requestSection.BeforeCount, requestSection.AfterCount))
	} else if !slice.HasCompleteItems() {
		if slice.IsMissingItemsLeft() && !ts.ContainsFullDataStart() {
			requests = append(requests, NewLeftExpandRequest(ts.Interval().Start, requestSection.BeforeCount))
		}
		if slice.IsMissingItemsRight() && !ts.ContainsFullDataEnd() {
			requests = append(requests, NewRightExpandRequest(ts.Interval().End, requestSection.AfterCount))
		}
	}

	var i int
	for _, req := range requests {
		if !req.IsEmpty() {
			requests[i] = req
			i++
		}
	}
	if i == 0 {
		return nil
	}
	return requests[:i]
}

// StoreData merges items loaded for a request into the cache. A reset
// request replaces the cached data. An expand request is merged only when its
// items connect to the cached items; otherwise the items are discarded.
func (c *Cache) StoreData(req *Request, items []timeseries.Item) {
	if len(items) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.read.Load()
	switch req.Type {
	case Reset:
		c.setItems(ts, req.Section, items)
	case LeftExpand:
		last := items[len(items)-1]
		slice := ts.ItemSlice(timeseries.NewSection(last.Time(), 0, math.MaxInt))
		if slice == nil {
			log.Warnw("Cannot expand cached data to left, no connecting item", "time", last.Time(), "request", req.ID)
			return
		}
		connect := slice.Items()
		merged := make([]timeseries.Item, 0, len(items)+len(connect)-1)
		merged = append(merged, items...)
		merged = append(merged, connect[1:]...)
		c.setItems(ts, req.Section, merged)
	case RightExpand:
		first := items[0]
		slice := ts.ItemSlice(timeseries.NewSection(first.Time(), math.MaxInt, 0))
		if slice == nil {
			log.Warnw("Cannot expand cached data to right, no connecting item", "time", first.Time(), "request", req.ID)
			return
		}
		connect := slice.Items()
		merged := make([]timeseries.Item, 0, len(items)+len(connect)-1)
		merged = append(merged, connect[:len(connect)-1]...)
		merged = append(merged, items...)
		c.setItems(ts, req.Section, merged)
	default:
		log.Errorw("Unknown request type", "type", req.Type, "request", req.ID)
	}
}

// setItems replaces the cached series with items. The full data flag of each
// edge the request section asked items for is recomputed: the edge is the end
// of all data if the loaded items fell short of the section by more than one
// item. Edges the section did not ask for keep their flag.
func (c *Cache) setItems(cur *timeseries.TimeSeries, section timeseries.Section, items []timeseries.Item) {
	unit := cur.TimeUnit()
	slice := timeseries.New(unit, items, false, false).ItemSlice(section)

	fullStart := cur.ContainsFullDataStart()
	if section.BeforeCount > 0 {
		fullStart = slice == nil || slice.MissingItemCountLeft > 1
	}
	fullEnd := cur.ContainsFullDataEnd()
	if section.AfterCount > 0 {
		fullEnd = slice == nil || slice.MissingItemCountRight > 1
	}
	c.read.Store(timeseries.New(unit, items, fullStart, fullEnd))
}

// ClearOutside discards cached items outside of the query section enlarged
// by m. Nothing is discarded unless the enlarged section lies within the
// cached data on at least one side, so that a known end of data is not lost.
func (c *Cache) ClearOutside(q *Query, m float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.read.Load()
	if !hasMatchingTimeUnit(ts, q) {
		return
	}
	keep := ts.ItemSlice(q.Section.ExpandBy(m))
	if keep != nil && (!keep.IsMissingItemsLeft() || !keep.IsMissingItemsRight()) {
		c.read.Store(timeseries.FromSlice(keep))
	}
}

// Reset discards all cached data and sets a new time unit.
func (c *Cache) Reset(timeUnit time.Duration) {
	c.mu.Lock()
	c.read.Store(timeseries.Empty(timeUnit))
	c.mu.Unlock()
}

func hasMatchingTimeUnit(ts *timeseries.TimeSeries, q *Query) bool {
	return ts.TimeUnit() == q.TimeUnit
}

func isOutOfDataRange(ts *timeseries.TimeSeries, t time.Time) bool {
	iv := ts.Interval()
	if ts.ContainsFullDataStart() && t.Before(iv.Start) {
		return true
	}
	if ts.ContainsFullDataEnd() && t.After(iv.End) {
		return true
	}
	return false
}
