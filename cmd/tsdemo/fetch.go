package main

import (
	"fmt"
	"io"
	"time"

	"github.com/tschart/go-libtschart/gapcalc"
	"github.com/tschart/go-libtschart/timeseries"
	"github.com/tschart/go-libtschart/tsdata"
	"github.com/urfave/cli/v2"
)

var fetchCmd = &cli.Command{
	Name:  "fetch",
	Usage: "Load a section of records from a records server through a provider",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "url",
			Usage:    "Base URL of the records server",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "anchor",
			Usage:    "Anchor time, as YYYY-MM-DD or RFC 3339",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "before",
			Usage: "Number of items before the anchor",
			Value: 20,
		},
		&cli.IntFlag{
			Name:  "after",
			Usage: "Number of items after the anchor",
			Value: 20,
		},
		&cli.DurationFlag{
			Name:  "unit",
			Usage: "Time unit of the items",
		},
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "Discard cached data before loading",
		},
	},
	Action: fetchAction,
}

func fetchAction(cctx *cli.Context) error {
	cfg := getConfig(cctx)
	if cctx.IsSet("unit") {
		cfg.Provider.TimeUnit = cctx.Duration("unit")
	}
	anchor, err := parseAnchor(cctx.String("anchor"))
	if err != nil {
		return err
	}

	src, err := tsdata.NewHTTPSource(cctx.String("url"), nil)
	if err != nil {
		return err
	}
	p, err := tsdata.New(src,
		tsdata.WithTimeUnit(cfg.Provider.TimeUnit),
		tsdata.WithRequestTimeout(cfg.Provider.RequestTimeout),
		tsdata.WithExpandMultiplier(cfg.Provider.ExpandMultiplier),
		tsdata.WithClearMultiplier(cfg.Provider.ClearMultiplier))
	if err != nil {
		return err
	}
	defer p.Close()

	events, cancel := p.OnRequestEvent()
	defer cancel()
	go func() {
		for ev := range events {
			log.Infow("Request event", "type", ev.Type.String(), "request", ev.RequestID, "anchor", ev.Time)
		}
	}()

	section := timeseries.NewSection(anchor, cctx.Int("before"), cctx.Int("after"))
	q := tsdata.NewQuery(cfg.Provider.TimeUnit, section)
	slice, err := p.LoadData(cctx.Context, q, cctx.Bool("reset"))
	if err != nil {
		return err
	}
	if slice == nil {
		return fmt.Errorf("no data loaded for %s", section)
	}

	printResult(cctx.App.Writer, slice, p.TimeSeries())
	return nil
}

func parseAnchor(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid anchor %q: %w", s, err)
	}
	return t.UTC(), nil
}

func printResult(w io.Writer, slice *timeseries.ItemSlice, ts *timeseries.TimeSeries) {
	fmt.Fprintf(w, "Items %s (%d)\n", slice.Interval(), slice.Len())
	for _, item := range slice.Items() {
		fmt.Fprintln(w, " ", item)
	}
	if slice.IsMissingItemsLeft() || slice.IsMissingItemsRight() {
		fmt.Fprintf(w, "Missing items: %d before, %d after\n", slice.MissingItemCountLeft, slice.MissingItemCountRight)
	}

	fmt.Fprintf(w, "Cached %s (%d items, full start %t, full end %t)\n",
		ts.Interval(), ts.Len(), ts.ContainsFullDataStart(), ts.ContainsFullDataEnd())

	gaps := ts.Gaps()
	if len(gaps) == 0 {
		return
	}
	calc := gapcalc.FromGaps(gaps)
	fmt.Fprintln(w, "Gaps:")
	fmt.Fprint(w, calc)

	start := gapcalc.Millis(slice.Interval().Start)
	end := gapcalc.Millis(slice.Interval().End)
	hidden := time.Duration(calc.GapAmountBetween(start, end, false, true)) * time.Millisecond
	fmt.Fprintf(w, "Gap time within items: %s, compressed span %s\n",
		hidden, slice.Interval().Duration()-hidden)
}
