// Package sqlsource provides a time series data source backed by a SQLite
// database.
//
// Points are stored in a single table, keyed by series name and Unix
// millisecond timestamp, with the point fields held as a JSON object. A Source
// reads one series and returns its points as timeseries records, so it can be
// used directly as the data source of a tsdata.Provider or served over HTTP.
package sqlsource

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	logging "github.com/ipfs/go-log/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/tschart/go-libtschart/timeseries"
	"github.com/tschart/go-libtschart/tsdata"
)

var log = logging.Logger("sqlsource")

var _ tsdata.DataSource = (*Source)(nil)

// Source is a tsdata.DataSource that reads points of one series from a SQLite
// database.
type Source struct {
	db        *sql.DB
	path      string
	series    string
	timeField string
}

// Open opens the SQLite database at path, creating it and the points table
// if they do not exist.
func Open(path string, options ...Option) (*Source, error) {
	opts, err := getOpts(options)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err = createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Source{
		db:        db,
		path:      path,
		series:    opts.series,
		timeField: opts.timeField,
	}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS points (
			series TEXT NOT NULL,
			ts INTEGER NOT NULL,
			data TEXT NOT NULL,
			PRIMARY KEY (series, ts)
		);
	`)
	if err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Source) Close() error {
	return s.db.Close()
}

// Save stores a point of a series at time t, replacing any point the series
// already has at that millisecond.
func (s *Source) Save(ctx context.Context, series string, t time.Time, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO points (series, ts, data) VALUES (?, ?, ?)`,
		series, t.UnixMilli(), string(data))
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

// SaveItems stores the items of a series in a single transaction. The item
// times are the point times; the time field itself is not stored.
func (s *Source) SaveItems(ctx context.Context, series string, timeField string, items []timeseries.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO points (series, ts, data) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		fields := make(map[string]any, len(item.Record()))
		for k, v := range item.Record() {
			if k != timeField {
				fields[k] = v
			}
		}
		data, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("marshal fields: %w", err)
		}
		if _, err = stmt.ExecContext(ctx, series, item.Timestamp(), string(data)); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
	}
	return tx.Commit()
}

// Load returns the point at or before the anchor, beforeCount points before
// it, and afterCount points after the anchor, ordered by time. Fewer points
// are returned where the series has no more.
func (s *Source) Load(ctx context.Context, anchor time.Time, beforeCount, afterCount int, requestID string) ([]timeseries.Record, error) {
	if beforeCount < 0 || afterCount < 0 {
		return nil, errors.New("counts cannot be negative")
	}
	ts := anchor.UnixMilli()

	before, err := s.query(ctx,
		`SELECT ts, data FROM points WHERE series = ? AND ts <= ? ORDER BY ts DESC LIMIT ?`,
		s.series, ts, satInc(beforeCount))
	if err != nil {
		return nil, err
	}
	after, err := s.query(ctx,
		`SELECT ts, data FROM points WHERE series = ? AND ts > ? ORDER BY ts ASC LIMIT ?`,
		s.series, ts, afterCount)
	if err != nil {
		return nil, err
	}

	records := make([]timeseries.Record, 0, len(before)+len(after))
	for i := len(before) - 1; i >= 0; i-- {
		records = append(records, before[i])
	}
	records = append(records, after...)

	log.Debugw("Loaded points", "series", s.series, "anchor", anchor, "before", beforeCount, "after", afterCount,
		"count", len(records), "request", requestID)
	return records, nil
}

func (s *Source) query(ctx context.Context, query string, args ...any) ([]timeseries.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	var records []timeseries.Record
	for rows.Next() {
		var ts int64
		var data string
		if err = rows.Scan(&ts, &data); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		rec := make(timeseries.Record)
		if err = json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal point at %d: %w", ts, err)
		}
		rec[s.timeField] = time.UnixMilli(ts).UTC()
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating points: %w", err)
	}
	return records, nil
}

// Series returns the names of all series in the database.
func (s *Source) Series(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT series FROM points ORDER BY series`)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Source) String() string {
	return fmt.Sprintf("sqlite %s series %s", s.path, s.series)
}

// satInc returns n+1, or n if that would overflow.
func satInc(n int) int {
	if n == math.MaxInt {
		return n
	}
	return n + 1
}
