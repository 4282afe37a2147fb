package timeseries_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tschart/go-libtschart/timeseries"
)

func day(d int) time.Time {
	return time.Date(2021, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestInterval(t *testing.T) {
	iv := timeseries.NewInterval(day(10), day(5))
	require.Equal(t, day(5), iv.Start)
	require.Equal(t, day(10), iv.End)
	require.Equal(t, 5*24*time.Hour, iv.Duration())
	require.False(t, iv.IsEmpty())

	require.True(t, iv.Contains(day(5)))
	require.True(t, iv.Contains(day(10)))
	require.False(t, iv.Contains(day(11)))

	require.True(t, iv.Encloses(timeseries.NewInterval(day(6), day(10))))
	require.False(t, iv.Encloses(timeseries.NewInterval(day(6), day(11))))

	other := timeseries.NewInterval(day(10), day(20))
	require.True(t, iv.IntersectsWith(other))
	require.True(t, iv.Intersection(other).Equal(timeseries.NewInterval(day(10), day(10))))

	inner := timeseries.NewInterval(day(6), day(7))
	require.True(t, iv.IntersectsWith(inner))
	require.True(t, inner.IntersectsWith(iv))
	require.True(t, iv.Intersection(inner).Equal(inner))

	far := timeseries.NewInterval(day(11), day(20))
	require.False(t, iv.IntersectsWith(far))
	require.True(t, iv.Intersection(far).Equal(timeseries.EmptyInterval))
	require.True(t, timeseries.EmptyInterval.IsEmpty())
}
