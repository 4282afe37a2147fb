package tsdata_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tschart/go-libtschart/test"
	"github.com/tschart/go-libtschart/timeseries"
	"github.com/tschart/go-libtschart/tsdata"
)

const (
	day  = 24 * time.Hour
	hour = time.Hour
)

func utc(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func query1D(t time.Time, before, after int) *tsdata.Query {
	return tsdata.NewQuery(day, timeseries.NewSection(t, before, after))
}

func query1H(t time.Time, before, after int) *tsdata.Query {
	return tsdata.NewQuery(hour, timeseries.NewSection(t, before, after))
}

func storeData(t *testing.T, cache *tsdata.Cache, req *tsdata.Request) {
	t.Helper()
	items, err := req.LoadData(context.Background(), tsdata.LoadFunc(test.LoadDaily), "time")
	require.NoError(t, err)
	cache.StoreData(req, items)
}

func storeRecords(t *testing.T, cache *tsdata.Cache, req *tsdata.Request, records []timeseries.Record) {
	t.Helper()
	items, err := timeseries.ToItems("time", records)
	require.NoError(t, err)
	cache.StoreData(req, items)
}

func requireInterval(t *testing.T, cache *tsdata.Cache, start, end time.Time) {
	t.Helper()
	iv := cache.CachedInterval()
	require.True(t, iv.Equal(timeseries.NewInterval(start, end)), "expected %s - %s, got %s", start, end, iv)
}

func requireRequest(t *testing.T, req *tsdata.Request, typ tsdata.RequestType, anchor time.Time, before, after int) {
	t.Helper()
	require.Equal(t, typ, req.Type)
	require.True(t, anchor.Equal(req.Section.Time), "expected anchor %s, got %s", anchor, req.Section.Time)
	require.Equal(t, before, req.Section.BeforeCount)
	require.Equal(t, after, req.Section.AfterCount)
}

func TestCacheHasFullData(t *testing.T) {
	cache := tsdata.NewCache(day)
	require.False(t, cache.HasFullData(query1D(utc(2021, 3, 10), 5, 5)))

	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 3, 10), 5, 5))
	require.True(t, cache.HasFullData(query1D(utc(2021, 3, 10), 4, 4)))
	require.True(t, cache.HasFullData(query1D(utc(2021, 3, 10), 4, 5)))
	require.True(t, cache.HasFullData(query1D(utc(2021, 3, 10), 5, 4)))
	require.True(t, cache.HasFullData(query1D(utc(2021, 3, 10), 5, 5)))
	require.False(t, cache.HasFullData(query1D(utc(2021, 3, 10), 6, 5)))
	require.False(t, cache.HasFullData(query1D(utc(2021, 3, 10), 5, 6)))
	require.False(t, cache.HasFullData(query1H(utc(2021, 3, 10), 4, 4)))
	require.False(t, cache.HasFullData(query1H(utc(2021, 3, 10), 6, 5)))
}

func TestCacheGetData(t *testing.T) {
	cache := tsdata.NewCache(day)
	require.Nil(t, cache.GetData(query1D(utc(2021, 3, 10), 5, 5)))

	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 3, 10), 5, 5))

	slice := cache.GetData(query1D(utc(2021, 3, 10), 5, 5))
	require.NotNil(t, slice)
	items := slice.Items()
	require.Len(t, items, 11)
	for i, item := range items {
		require.True(t, utc(2021, 3, 5+i).Equal(item.Time()))
	}

	slice = cache.GetData(query1D(utc(2021, 3, 10), 1, 1))
	items = slice.Items()
	require.Len(t, items, 3)
	require.True(t, utc(2021, 3, 9).Equal(items[0].Time()))
	require.True(t, utc(2021, 3, 11).Equal(items[2].Time()))

	require.Nil(t, cache.GetData(query1H(utc(2021, 3, 10), 5, 5)))
	require.Nil(t, cache.GetData(query1H(utc(2022, 3, 10), 5, 5)))
}

func TestCacheNoRequestsNeeded(t *testing.T) {
	cache := tsdata.NewCache(day)
	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 3, 10), 5, 5))
	require.Empty(t, cache.CreateRequests(query1D(utc(2021, 3, 10), 4, 4), 2))
	require.Empty(t, cache.CreateRequests(query1D(utc(2021, 3, 10), 4, 5), 2))
	require.Empty(t, cache.CreateRequests(query1D(utc(2021, 3, 10), 5, 4), 2))
	require.Empty(t, cache.CreateRequests(query1D(utc(2021, 3, 10), 5, 5), 2))
	require.Empty(t, cache.CreateRequests(query1H(utc(2022, 3, 10), 5, 5), 2))
}

func TestCacheCreateResetRequest(t *testing.T) {
	cache := tsdata.NewCache(day)
	requests := cache.CreateRequests(query1D(utc(2021, 3, 10), 5, 5), 2)
	require.Len(t, requests, 1)
	requireRequest(t, requests[0], tsdata.Reset, utc(2021, 3, 10), 15, 15)

	// Anchor outside of cached data.
	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 3, 10), 5, 5))
	requests = cache.CreateRequests(query1D(utc(2021, 4, 10), 5, 5), 2)
	require.Len(t, requests, 1)
	requireRequest(t, requests[0], tsdata.Reset, utc(2021, 4, 10), 15, 15)
}

func TestCacheCreateExpandRequests(t *testing.T) {
	cache := tsdata.NewCache(day)
	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 3, 10), 5, 5))

	requests := cache.CreateRequests(query1D(utc(2021, 3, 5), 5, 5), 2)
	require.Len(t, requests, 1)
	requireRequest(t, requests[0], tsdata.LeftExpand, utc(2021, 3, 5), 15, 0)

	requests = cache.CreateRequests(query1D(utc(2021, 3, 7), 5, 5), 2)
	require.Len(t, requests, 1)
	requireRequest(t, requests[0], tsdata.LeftExpand, utc(2021, 3, 5), 15, 0)

	requests = cache.CreateRequests(query1D(utc(2021, 3, 15), 5, 5), 2)
	require.Len(t, requests, 1)
	requireRequest(t, requests[0], tsdata.RightExpand, utc(2021, 3, 15), 0, 15)

	requests = cache.CreateRequests(query1D(utc(2021, 3, 13), 5, 5), 2)
	require.Len(t, requests, 1)
	requireRequest(t, requests[0], tsdata.RightExpand, utc(2021, 3, 15), 0, 15)

	requests = cache.CreateRequests(query1D(utc(2021, 3, 7), 10, 10), 2)
	require.Len(t, requests, 2)
	requireRequest(t, requests[0], tsdata.LeftExpand, utc(2021, 3, 5), 30, 0)
	requireRequest(t, requests[1], tsdata.RightExpand, utc(2021, 3, 15), 0, 30)
	require.NotEqual(t, requests[0].ID, requests[1].ID)
}

func TestCacheStoreReset(t *testing.T) {
	cache := tsdata.NewCache(day)
	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 3, 10), 5, 5))
	requireInterval(t, cache, utc(2021, 3, 5), utc(2021, 3, 15))
	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 3, 10), 2, 3))
	requireInterval(t, cache, utc(2021, 3, 8), utc(2021, 3, 13))

	// Empty results do not change the cache.
	cache.StoreData(tsdata.NewResetRequest(utc(2021, 6, 1), 2, 3), nil)
	requireInterval(t, cache, utc(2021, 3, 8), utc(2021, 3, 13))
}

func TestCacheStoreExpand(t *testing.T) {
	cache := tsdata.NewCache(day)
	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 3, 10), 5, 5))
	storeData(t, cache, tsdata.NewLeftExpandRequest(utc(2021, 3, 5), 3))
	storeData(t, cache, tsdata.NewRightExpandRequest(utc(2021, 3, 14), 3))
	requireInterval(t, cache, utc(2021, 3, 2), utc(2021, 3, 17))

	items := cache.TimeSeries().Items()
	require.Len(t, items, 16)
	for i := 1; i < len(items); i++ {
		require.Equal(t, day, items[i].Time().Sub(items[i-1].Time()))
	}
}

func TestCacheStoreExpandNotConnected(t *testing.T) {
	cache := tsdata.NewCache(day)
	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 3, 10), 5, 5))
	storeData(t, cache, tsdata.NewLeftExpandRequest(utc(2021, 3, 4), 3))
	storeData(t, cache, tsdata.NewRightExpandRequest(utc(2021, 3, 16), 3))
	requireInterval(t, cache, utc(2021, 3, 5), utc(2021, 3, 15))
}

func TestCacheFullDataFlags(t *testing.T) {
	cache := tsdata.NewCache(day)

	// Exactly the requested items: nothing known about the ends.
	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 3, 10), 5, 5))
	ts := cache.TimeSeries()
	require.False(t, ts.ContainsFullDataStart())
	require.False(t, ts.ContainsFullDataEnd())

	// One item short is tolerated.
	req := tsdata.NewResetRequest(utc(2021, 3, 10), 5, 5)
	storeRecords(t, cache, req, test.DailyRecords(utc(2021, 3, 10), 4, 4))
	ts = cache.TimeSeries()
	require.False(t, ts.ContainsFullDataStart())
	require.False(t, ts.ContainsFullDataEnd())

	// More than one item short marks the end of data.
	req = tsdata.NewResetRequest(utc(2021, 3, 10), 5, 5)
	storeRecords(t, cache, req, test.DailyRecords(utc(2021, 3, 10), 2, 5))
	ts = cache.TimeSeries()
	require.True(t, ts.ContainsFullDataStart())
	require.False(t, ts.ContainsFullDataEnd())

	require.True(t, cache.IsOutOfDataRange(utc(2021, 3, 1)))
	require.False(t, cache.IsOutOfDataRange(utc(2021, 3, 8)))
	require.False(t, cache.IsOutOfDataRange(utc(2021, 3, 20)))
	require.Empty(t, cache.CreateRequests(query1D(utc(2021, 3, 1), 2, 2), 4))
	require.Empty(t, cache.CreateRequests(query1D(utc(2021, 3, 9), 5, 0), 4))

	requests := cache.CreateRequests(query1D(utc(2021, 3, 9), 5, 10), 4)
	require.Len(t, requests, 1)
	requireRequest(t, requests[0], tsdata.RightExpand, utc(2021, 3, 15), 0, 50)

	// Right expand keeps the start flag and sets the end flag.
	storeRecords(t, cache, requests[0], test.DailyRecords(utc(2021, 3, 15), 0, 3))
	ts = cache.TimeSeries()
	require.True(t, ts.ContainsFullDataStart())
	require.True(t, ts.ContainsFullDataEnd())
	requireInterval(t, cache, utc(2021, 3, 8), utc(2021, 3, 18))
	require.Empty(t, cache.CreateRequests(query1D(utc(2021, 3, 9), 50, 50), 4))
}

func TestCacheLeftExpandFullDataStart(t *testing.T) {
	cache := tsdata.NewCache(day)
	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 3, 10), 5, 5))

	req := tsdata.NewLeftExpandRequest(utc(2021, 3, 5), 3)
	storeRecords(t, cache, req, test.DailyRecords(utc(2021, 3, 5), 1, 0))
	requireInterval(t, cache, utc(2021, 3, 4), utc(2021, 3, 15))
	require.True(t, cache.TimeSeries().ContainsFullDataStart())
	require.False(t, cache.TimeSeries().ContainsFullDataEnd())
}

func TestCacheClearOutside(t *testing.T) {
	cache := tsdata.NewCache(day)

	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 6, 1), 100, 100))
	requireInterval(t, cache, utc(2021, 2, 21), utc(2021, 9, 9))
	cache.ClearOutside(query1D(utc(2021, 6, 1), 5, 5), 5)
	requireInterval(t, cache, utc(2021, 5, 7), utc(2021, 6, 26))

	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 6, 1), 100, 100))
	requireInterval(t, cache, utc(2021, 2, 21), utc(2021, 9, 9))
	cache.ClearOutside(query1D(utc(2021, 2, 21), 5, 5), 5)
	requireInterval(t, cache, utc(2021, 2, 21), utc(2021, 3, 18))

	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 6, 1), 100, 100))
	requireInterval(t, cache, utc(2021, 2, 21), utc(2021, 9, 9))
	cache.ClearOutside(query1D(utc(2021, 9, 9), 5, 5), 5)
	requireInterval(t, cache, utc(2021, 8, 15), utc(2021, 9, 9))

	// Missing on both sides, nothing is cleared.
	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 6, 1), 10, 10))
	cache.ClearOutside(query1D(utc(2021, 6, 1), 5, 5), 5)
	requireInterval(t, cache, utc(2021, 5, 22), utc(2021, 6, 11))
}

func TestCacheReset(t *testing.T) {
	cache := tsdata.NewCache(day)
	storeData(t, cache, tsdata.NewResetRequest(utc(2021, 3, 10), 5, 5))
	requireInterval(t, cache, utc(2021, 3, 5), utc(2021, 3, 15))

	cache.Reset(day)
	require.True(t, cache.CachedInterval().Equal(timeseries.EmptyInterval))
	require.False(t, cache.HasFullData(query1D(utc(2021, 3, 10), 5, 5)))

	cache.Reset(hour)
	require.Equal(t, hour, cache.TimeUnit())
	require.True(t, cache.HasMatchingTimeUnit(query1H(utc(2021, 3, 10), 1, 1)))
}
