package tsdata

import (
	"context"
	"time"

	"github.com/tschart/go-libtschart/timeseries"
)

// DataSource is the interface the Provider uses to load records. A source
// returns the records around the anchor time: beforeCount records before it,
// afterCount records after it, and the record at or nearest to it. Fewer
// records are returned when no more data exists in a direction.
type DataSource interface {
	// Load gets the records for a section of the series.
	Load(ctx context.Context, anchor time.Time, beforeCount, afterCount int, requestID string) ([]timeseries.Record, error)
	// String returns a description of the source.
	String() string
}

// LoadFunc adapts a function to the DataSource interface.
type LoadFunc func(ctx context.Context, anchor time.Time, beforeCount, afterCount int, requestID string) ([]timeseries.Record, error)

func (f LoadFunc) Load(ctx context.Context, anchor time.Time, beforeCount, afterCount int, requestID string) ([]timeseries.Record, error) {
	return f(ctx, anchor, beforeCount, afterCount, requestID)
}

func (f LoadFunc) String() string {
	return "load function"
}
