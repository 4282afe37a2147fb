package rwriter

import (
	"github.com/tschart/go-libtschart/timeseries"
)

// RecordsResponseWriter writes data records as a JSON array, or as one JSON
// object per line when NDJSON was negotiated.
type RecordsResponseWriter struct {
	ResponseWriter
	count   int
	records []timeseries.Record
}

func NewRecordsResponseWriter(w *ResponseWriter) *RecordsResponseWriter {
	return &RecordsResponseWriter{
		ResponseWriter: *w,
	}
}

// WriteRecord writes a single record. NDJSON records are written and flushed
// immediately. JSON records are held until Close.
func (rw *RecordsResponseWriter) WriteRecord(rec timeseries.Record) error {
	if rw.nd {
		err := rw.encoder.Encode(rec)
		if err != nil {
			return err
		}
		rw.Flush()
	} else {
		rw.records = append(rw.records, rec)
	}
	rw.count++
	return nil
}

// WriteRecords writes each of the records.
func (rw *RecordsResponseWriter) WriteRecords(records []timeseries.Record) error {
	for _, rec := range records {
		if err := rw.WriteRecord(rec); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of records written.
func (rw *RecordsResponseWriter) Count() int {
	return rw.count
}

// Close completes the response. An empty result is written as an empty JSON
// array.
func (rw *RecordsResponseWriter) Close() error {
	if rw.nd {
		return nil
	}
	if rw.records == nil {
		rw.records = []timeseries.Record{}
	}
	return rw.encoder.Encode(rw.records)
}
