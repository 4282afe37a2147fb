package timeseries_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tschart/go-libtschart/timeseries"
)

const unit = 24 * time.Hour

func daily(t *testing.T, first, last int) []timeseries.Item {
	var items []timeseries.Item
	for d := first; d <= last; d++ {
		item, err := timeseries.NewItem("time", timeseries.Record{"time": day(d), "value": d})
		require.NoError(t, err)
		items = append(items, item)
	}
	return items
}

func requireDays(t *testing.T, items []timeseries.Item, first, last int) {
	t.Helper()
	require.Len(t, items, last-first+1)
	for i, item := range items {
		require.Equal(t, day(first+i), item.Time())
	}
}

func TestEmpty(t *testing.T) {
	ts := timeseries.Empty(unit)
	require.True(t, ts.IsEmpty())
	require.Equal(t, unit, ts.TimeUnit())
	require.True(t, ts.Interval().Equal(timeseries.EmptyInterval))
	require.Nil(t, ts.ItemSlice(timeseries.NewSection(day(5), 1, 1)))
	require.Nil(t, ts.ItemSlice(timeseries.NewSection(time.UnixMilli(0), 1, 1)))
	require.False(t, ts.HasFullItemSection(timeseries.NewSection(day(5), 0, 0)))
	require.Empty(t, ts.Gaps())
}

func TestItemSlice(t *testing.T) {
	ts := timeseries.New(unit, daily(t, 5, 15), false, false)
	require.Equal(t, 11, ts.Len())
	require.True(t, ts.Interval().Equal(timeseries.NewInterval(day(5), day(15))))

	slice := ts.ItemSlice(timeseries.NewSection(day(10), 2, 3))
	require.NotNil(t, slice)
	requireDays(t, slice.Items(), 8, 13)
	require.True(t, slice.HasCompleteItems())
	require.Equal(t, unit, slice.TimeUnit())
	require.True(t, slice.Interval().Equal(timeseries.NewInterval(day(8), day(13))))

	slice = ts.ItemSlice(timeseries.NewSection(day(6), 3, 12))
	requireDays(t, slice.Items(), 5, 15)
	require.Equal(t, 2, slice.MissingItemCountLeft)
	require.Equal(t, 3, slice.MissingItemCountRight)
	require.True(t, slice.IsMissingItemsLeft())
	require.True(t, slice.IsMissingItemsRight())
	require.False(t, slice.ContainsFullDataStart)
	require.False(t, slice.ContainsFullDataEnd)

	require.Nil(t, ts.ItemSlice(timeseries.NewSection(day(4), 1, 1)))
	require.Nil(t, ts.ItemSlice(timeseries.NewSection(day(16), 1, 1)))
}

func TestItemSliceFullData(t *testing.T) {
	ts := timeseries.New(unit, daily(t, 5, 15), true, true)

	slice := ts.ItemSlice(timeseries.NewSection(day(10), 5, 5))
	require.True(t, slice.ContainsFullDataStart)
	require.True(t, slice.ContainsFullDataEnd)

	slice = ts.ItemSlice(timeseries.NewSection(day(10), 4, 4))
	require.False(t, slice.ContainsFullDataStart)
	require.False(t, slice.ContainsFullDataEnd)

	slice = ts.ItemSlice(timeseries.NewSection(day(10), 8, 0))
	require.True(t, slice.ContainsFullDataStart)
	require.False(t, slice.ContainsFullDataEnd)

	cp := timeseries.FromSlice(slice)
	require.True(t, cp.ContainsFullDataStart())
	require.False(t, cp.ContainsFullDataEnd())
	require.Equal(t, 6, cp.Len())
}

func TestItemSliceUnlimited(t *testing.T) {
	ts := timeseries.New(unit, daily(t, 5, 15), false, false)

	slice := ts.ItemSlice(timeseries.NewSection(day(12), 0, math.MaxInt))
	requireDays(t, slice.Items(), 12, 15)
	require.Equal(t, 0, slice.MissingItemCountLeft)
	require.True(t, slice.IsMissingItemsRight())

	slice = ts.ItemSlice(timeseries.NewSection(day(7), math.MaxInt, 0))
	requireDays(t, slice.Items(), 5, 7)
	require.Equal(t, 0, slice.MissingItemCountRight)
	require.True(t, slice.IsMissingItemsLeft())

	require.False(t, ts.HasFullItemSection(timeseries.NewSection(day(7), math.MaxInt, math.MaxInt)))
}

func TestClosestItem(t *testing.T) {
	ts := timeseries.New(unit, daily(t, 5, 15), false, false)

	// Nearer to the earlier item.
	slice := ts.ItemSlice(timeseries.NewSection(day(7).Add(11*time.Hour), 0, 0))
	requireDays(t, slice.Items(), 7, 7)

	// Nearer to the later item.
	slice = ts.ItemSlice(timeseries.NewSection(day(7).Add(13*time.Hour), 0, 0))
	requireDays(t, slice.Items(), 8, 8)

	// Tie goes to the earlier item.
	slice = ts.ItemSlice(timeseries.NewSection(day(7).Add(12*time.Hour), 0, 0))
	requireDays(t, slice.Items(), 7, 7)

	slice = ts.ItemSlice(timeseries.NewSection(day(15), 0, 0))
	requireDays(t, slice.Items(), 15, 15)
}

func TestHasFullItemSection(t *testing.T) {
	ts := timeseries.New(unit, daily(t, 5, 15), false, false)
	require.True(t, ts.HasFullItemSection(timeseries.NewSection(day(10), 5, 5)))
	require.True(t, ts.HasFullItemSection(timeseries.NewSection(day(10), 4, 5)))
	require.False(t, ts.HasFullItemSection(timeseries.NewSection(day(10), 6, 5)))
	require.False(t, ts.HasFullItemSection(timeseries.NewSection(day(10), 5, 6)))
	require.False(t, ts.HasFullItemSection(timeseries.NewSection(day(20), 0, 0)))
	require.True(t, ts.EnclosesInterval(timeseries.NewInterval(day(6), day(15))))
	require.False(t, ts.EnclosesInterval(timeseries.NewInterval(day(4), day(15))))
}

func TestGaps(t *testing.T) {
	items := daily(t, 1, 3)
	items = append(items, daily(t, 6, 7)...)
	items = append(items, daily(t, 10, 10)...)
	late, err := timeseries.NewItem("time", timeseries.Record{"time": day(11).Add(time.Millisecond)})
	require.NoError(t, err)
	items = append(items, late)
	late, err = timeseries.NewItem("time", timeseries.Record{"time": day(12).Add(4 * time.Millisecond)})
	require.NoError(t, err)
	items = append(items, late)

	ts := timeseries.New(unit, items, false, false)
	gaps := ts.Gaps()
	require.Len(t, gaps, 3)
	require.Equal(t, timeseries.Gap{StartTime: day(4), EndTime: day(6)}, gaps[0])
	require.Equal(t, 2*unit, gaps[0].Duration())
	require.Equal(t, timeseries.Gap{StartTime: day(8), EndTime: day(10)}, gaps[1])
	// A spacing of one unit plus 3ms is over the tolerance.
	require.Equal(t, timeseries.Gap{
		StartTime: day(12).Add(time.Millisecond),
		EndTime:   day(12).Add(4 * time.Millisecond),
	}, gaps[2])
}

func TestSection(t *testing.T) {
	s := timeseries.NewSection(day(10), 2, 3)
	require.Equal(t, 6, s.Size())
	require.False(t, s.IsEmpty())
	require.True(t, timeseries.NewSection(day(10), 0, 0).IsEmpty())
	require.True(t, timeseries.NewSection(day(10), -1, 0).IsEmpty())

	exp := s.ExpandBy(2.5)
	require.True(t, exp.Equal(timeseries.NewSection(day(10), 5, 8)))
	require.False(t, exp.Equal(s))
	require.Equal(t, math.MaxInt, timeseries.NewSection(day(1), math.MaxInt, 0).Size())
}
