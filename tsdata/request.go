package tsdata

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tschart/go-libtschart/timeseries"
)

// RequestType tells how the data loaded for a request is merged into the
// cache.
type RequestType int

const (
	// Reset replaces all cached data.
	Reset RequestType = iota
	// LeftExpand extends the cached data toward earlier times.
	LeftExpand
	// RightExpand extends the cached data toward later times.
	RightExpand
)

func (t RequestType) String() string {
	switch t {
	case Reset:
		return "reset"
	case LeftExpand:
		return "left-expand"
	case RightExpand:
		return "right-expand"
	}
	return fmt.Sprintf("RequestType(%d)", int(t))
}

// Request describes one load from a DataSource.
type Request struct {
	ID      string
	Type    RequestType
	Section timeseries.Section
}

func newRequest(typ RequestType, section timeseries.Section) *Request {
	return &Request{
		ID:      "REQUEST-" + uuid.NewString(),
		Type:    typ,
		Section: section,
	}
}

// NewResetRequest creates a request that replaces the cached data with the
// items around t.
func NewResetRequest(t time.Time, beforeCount, afterCount int) *Request {
	return newRequest(Reset, timeseries.NewSection(t, beforeCount, afterCount))
}

// NewLeftExpandRequest creates a request for count items before t.
func NewLeftExpandRequest(t time.Time, count int) *Request {
	return newRequest(LeftExpand, timeseries.NewSection(t, count, 0))
}

// NewRightExpandRequest creates a request for count items after t.
func NewRightExpandRequest(t time.Time, count int) *Request {
	return newRequest(RightExpand, timeseries.NewSection(t, 0, count))
}

// IsEmpty returns true if the request asks for no items besides the anchor.
func (r *Request) IsEmpty() bool {
	return r.Section.IsEmpty()
}

// LoadData loads the records for the request from the source and converts
// them to items ordered by time.
func (r *Request) LoadData(ctx context.Context, src DataSource, timeField string) ([]timeseries.Item, error) {
	records, err := src.Load(ctx, r.Section.Time, r.Section.BeforeCount, r.Section.AfterCount, r.ID)
	if err != nil {
		return nil, err
	}
	return timeseries.ToItems(timeField, records)
}

func (r *Request) String() string {
	return fmt.Sprintf("%s %s %s", r.ID, r.Type, r.Section)
}
