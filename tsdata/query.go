package tsdata

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tschart/go-libtschart/timeseries"
)

// Query is a request for the items of a section at a given time unit. Each
// Query carries a completion signal that is closed when the Provider is done
// with it. A Query must not be passed to Provider.LoadData more than once.
type Query struct {
	ID       string
	TimeUnit time.Duration
	Section  timeseries.Section

	done      chan struct{}
	closeOnce sync.Once
}

// NewQuery creates a Query for the section at the given time unit.
func NewQuery(timeUnit time.Duration, section timeseries.Section) *Query {
	return &Query{
		ID:       "QUERY-" + uuid.NewString(),
		TimeUnit: timeUnit,
		Section:  section,
		done:     make(chan struct{}),
	}
}

// Done returns a channel that is closed when the query completes.
func (q *Query) Done() <-chan struct{} {
	return q.done
}

// Wait blocks until the query completes or the context is canceled.
func (q *Query) Wait(ctx context.Context) error {
	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close signals that the query has completed. It is safe to call more than
// once.
func (q *Query) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}
