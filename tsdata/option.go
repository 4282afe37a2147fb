package tsdata

import (
	"errors"
	"fmt"
	"time"
)

const (
	defaultRequestTimeout   = 30 * time.Second
	defaultTimeField        = "time"
	defaultTimeUnit         = 24 * time.Hour
	defaultExpandMultiplier = 4
	defaultClearMultiplier  = 12
)

// RequestFunc is called with the ID and anchor time of a request.
type RequestFunc func(requestID string, anchor time.Time)

type config struct {
	clearMult      float64
	expandMult     float64
	onFinish       RequestFunc
	onStart        RequestFunc
	requestTimeout time.Duration
	timeField      string
	timeUnit       time.Duration
}

// Option is a function that sets a value in a config.
type Option func(*config) error

// getOpts creates a config and applies Options to it.
func getOpts(opts []Option) (config, error) {
	cfg := config{
		clearMult:      defaultClearMultiplier,
		expandMult:     defaultExpandMultiplier,
		requestTimeout: defaultRequestTimeout,
		timeField:      defaultTimeField,
		timeUnit:       defaultTimeUnit,
	}
	for i, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, fmt.Errorf("option %d failed: %s", i, err)
		}
	}
	return cfg, nil
}

// WithRequestTimeout sets the time to wait for a data source to answer a
// single request. A request that takes longer is finished without its data,
// and any data that arrives later is ignored.
//
// Default is 30 seconds.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(cfg *config) error {
		if timeout <= 0 {
			return errors.New("request timeout must be greater than zero")
		}
		cfg.requestTimeout = timeout
		return nil
	}
}

// WithRequestStarted sets a function that is called each time a request is
// sent to the data source.
func WithRequestStarted(fn RequestFunc) Option {
	return func(cfg *config) error {
		cfg.onStart = fn
		return nil
	}
}

// WithRequestFinished sets a function that is called once for each started
// request when it completes, fails, or times out.
func WithRequestFinished(fn RequestFunc) Option {
	return func(cfg *config) error {
		cfg.onFinish = fn
		return nil
	}
}

// WithTimeField sets the name of the record field holding the record time.
//
// Default is "time".
func WithTimeField(name string) Option {
	return func(cfg *config) error {
		if name == "" {
			return errors.New("time field name is empty")
		}
		cfg.timeField = name
		return nil
	}
}

// WithTimeUnit sets the time unit of the initially empty cache.
//
// Default is 24 hours.
func WithTimeUnit(unit time.Duration) Option {
	return func(cfg *config) error {
		if unit <= 0 {
			return errors.New("time unit must be greater than zero")
		}
		cfg.timeUnit = unit
		return nil
	}
}

// WithExpandMultiplier sets how many extra query sections worth of items are
// requested on each side of a query, to reduce the number of requests made
// while panning.
//
// Default is 4.
func WithExpandMultiplier(m float64) Option {
	return func(cfg *config) error {
		if m < 0 {
			return errors.New("expand multiplier must not be negative")
		}
		cfg.expandMult = m
		return nil
	}
}

// WithClearMultiplier sets how many query sections worth of items are kept in
// the cache around the last query. Items farther away are discarded.
//
// Default is 12.
func WithClearMultiplier(m float64) Option {
	return func(cfg *config) error {
		if m < 1 {
			return errors.New("clear multiplier must be at least 1")
		}
		cfg.clearMult = m
		return nil
	}
}
