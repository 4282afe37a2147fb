package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tschart/go-libtschart/http/records"
	"github.com/tschart/go-libtschart/sqlsource"
	"github.com/tschart/go-libtschart/test"
	"github.com/tschart/go-libtschart/timeseries"
	"github.com/tschart/go-libtschart/tsdata"
	"github.com/urfave/cli/v2"
)

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "Serve records over HTTP",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "listen",
			Usage: "HTTP listen address",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "SQLite points database to serve instead of synthetic records",
		},
		&cli.DurationFlag{
			Name:  "load-timeout",
			Usage: "Limit on the time to load the records of one request",
		},
	},
	Action: serveAction,
}

func serveAction(cctx *cli.Context) error {
	cfg := getConfig(cctx)
	if cctx.IsSet("listen") {
		cfg.Listen = cctx.String("listen")
	}
	if cctx.IsSet("db") {
		cfg.Source.DB = cctx.String("db")
	}

	src, closeSrc, err := openSource(cctx.Context, cfg.Source)
	if err != nil {
		return err
	}
	defer closeSrc()

	srv, err := records.New(cfg.Listen, src, records.WithLoadTimeout(cctx.Duration("load-timeout")))
	if err != nil {
		return err
	}
	fmt.Fprintln(cctx.App.Writer, "Serving records at", srv.URL())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigs:
		log.Infow("Shutting down", "signal", sig.String())
	case <-cctx.Context.Done():
	}
	return srv.Close()
}

// openSource returns the data source described by cfg, and a function that
// releases it.
func openSource(ctx context.Context, cfg SourceConfig) (tsdata.DataSource, func(), error) {
	gaps, err := cfg.gapDays()
	if err != nil {
		return nil, nil, err
	}
	cal := &test.Calendar{Gaps: gaps}
	if cfg.DB == "" {
		return cal, func() {}, nil
	}

	var options []sqlsource.Option
	if cfg.Series != "" {
		options = append(options, sqlsource.WithSeries(cfg.Series))
	}
	src, err := sqlsource.Open(cfg.DB, options...)
	if err != nil {
		return nil, nil, err
	}
	closeSrc := func() {
		if err := src.Close(); err != nil {
			log.Errorw("Cannot close database", "err", err)
		}
	}

	if cfg.Seed != nil {
		if err = seed(ctx, src, cal, cfg); err != nil {
			closeSrc()
			return nil, nil, err
		}
	}
	return src, closeSrc, nil
}

// seed stores synthetic daily records into the database.
func seed(ctx context.Context, src *sqlsource.Source, cal *test.Calendar, cfg SourceConfig) error {
	start, err := time.Parse(dateLayout, cfg.Seed.Start)
	if err != nil {
		return err
	}
	recs, err := cal.Load(ctx, start, 0, cfg.Seed.Days-1, "")
	if err != nil {
		return err
	}
	items, err := timeseries.ToItems("time", recs)
	if err != nil {
		return err
	}
	series := cfg.Series
	if series == "" {
		series = "default"
	}
	if err = src.SaveItems(ctx, series, "time", items); err != nil {
		return fmt.Errorf("cannot seed database: %w", err)
	}
	log.Infow("Seeded database", "db", cfg.DB, "series", series, "count", len(items))
	return nil
}
