package timeseries

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNoValue is returned by value accessors when a record has no value for the
// requested field.
var ErrNoValue = errors.New("no data value")

// Record is one raw data record as returned by a data source. It must contain
// a timestamp under some field name, and may contain any number of additional
// number or string fields.
type Record map[string]any

// DataAccessor provides typed access to the fields of a single data record.
type DataAccessor interface {
	// Time returns the timestamp of the record.
	Time() time.Time
	// NumberValue returns the numeric value of a field.
	NumberValue(field string) (float64, error)
	// StringValue returns the string value of a field.
	StringValue(field string) (string, error)
}

var _ DataAccessor = Item{}

// Item is a single time series data record. The zero value is not usable;
// create items with NewItem or ToItems.
type Item struct {
	time   time.Time
	record Record
}

// NewItem creates an Item from a raw record, reading the item time from the
// timeField field. An error is returned if the field is missing or cannot be
// converted to a time.
func NewItem(timeField string, record Record) (Item, error) {
	t, err := timeValue(record, timeField)
	if err != nil {
		return Item{}, err
	}
	return Item{
		time:   t,
		record: record,
	}, nil
}

// ToItems converts raw records into items ordered by ascending time. Records
// with a duplicate timestamp are dropped; the first record seen for a
// timestamp is kept. The first malformed record aborts the conversion.
func ToItems(timeField string, records []Record) ([]Item, error) {
	items := make([]Item, 0, len(records))
	seen := make(map[int64]struct{}, len(records))
	for i, rec := range records {
		item, err := NewItem(timeField, rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		ts := item.Timestamp()
		if _, ok := seen[ts]; ok {
			continue
		}
		seen[ts] = struct{}{}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].time.Before(items[j].time)
	})
	return items, nil
}

func (it Item) Time() time.Time {
	return it.time
}

// Timestamp returns the item time as Unix milliseconds.
func (it Item) Timestamp() int64 {
	return it.time.UnixMilli()
}

// Record returns the raw record the item was created from. Do not modify the
// returned record.
func (it Item) Record() Record {
	return it.record
}

// HasAllValues returns true if the record has a non-nil value for every one
// of the given fields.
func (it Item) HasAllValues(fields ...string) bool {
	for _, field := range fields {
		if it.record[field] == nil {
			return false
		}
	}
	return true
}

func (it Item) NumberValue(field string) (float64, error) {
	return numberValue(it.record, field)
}

// NumberValueOr returns the numeric value of a field, or def if the record has
// no value for the field. A value that cannot be converted is still an error.
func (it Item) NumberValueOr(field string, def float64) (float64, error) {
	if it.record[field] == nil {
		return def, nil
	}
	return numberValue(it.record, field)
}

func (it Item) StringValue(field string) (string, error) {
	return stringValue(it.record, field)
}

// StringValueOr returns the string value of a field, or def if the record has
// no value for the field.
func (it Item) StringValueOr(field string, def string) (string, error) {
	if it.record[field] == nil {
		return def, nil
	}
	return stringValue(it.record, field)
}

func (it Item) String() string {
	return fmt.Sprintf("%s %v", it.time.UTC().Format(time.RFC3339), map[string]any(it.record))
}

func lookup(rec Record, field string) (any, error) {
	v := rec[field]
	if v == nil {
		return nil, fmt.Errorf("%w for field %q in record %v", ErrNoValue, field, map[string]any(rec))
	}
	return v, nil
}

func numberValue(rec Record, field string) (float64, error) {
	v, err := lookup(rec, field)
	if err != nil {
		return 0, err
	}
	if f, ok := asNumber(v); ok {
		return f, nil
	}
	return 0, conversionError(v, "number", field)
}

func stringValue(rec Record, field string) (string, error) {
	v, err := lookup(rec, field)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), nil
	case json.Number:
		return x.String(), nil
	}
	if f, ok := asNumber(v); ok {
		return fmt.Sprint(f), nil
	}
	return "", conversionError(v, "string", field)
}

func timeValue(rec Record, field string) (time.Time, error) {
	v, err := lookup(rec, field)
	if err != nil {
		return time.Time{}, err
	}
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return time.Time{}, fmt.Errorf("cannot parse time value %q for field %q: %w", x, field, err)
		}
		return t.UTC(), nil
	}
	return time.Time{}, conversionError(v, "time", field)
}

func asNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func conversionError(v any, to, field string) error {
	return fmt.Errorf("no conversion from %T to %s for field %q", v, to, field)
}
