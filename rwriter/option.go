package rwriter

import (
	"errors"
	"fmt"

	"github.com/tschart/go-libtschart/tsdata"
)

// DefaultMaxCount is the default limit on the before and after counts of a
// request.
const DefaultMaxCount = 10000

type config struct {
	anchorParam    string
	afterParam     string
	beforeParam    string
	maxCount       int
	preferJson     bool
	requestIDParam string
}

// Option is a function that sets a value in a config.
type Option func(*config) error

// getOpts creates a config and applies Options to it.
func getOpts(opts []Option) (config, error) {
	cfg := config{
		anchorParam:    tsdata.ParamAnchor,
		afterParam:     tsdata.ParamAfter,
		beforeParam:    tsdata.ParamBefore,
		maxCount:       DefaultMaxCount,
		requestIDParam: tsdata.ParamRequestID,
	}
	for i, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, fmt.Errorf("option %d failed: %s", i, err)
		}
	}
	return cfg, nil
}

// WithParamNames sets the names of the query parameters holding the anchor
// time and the before and after counts.
func WithParamNames(anchor, before, after string) Option {
	return func(cfg *config) error {
		if anchor == "" || before == "" || after == "" {
			return errors.New("parameter name cannot be empty")
		}
		cfg.anchorParam = anchor
		cfg.beforeParam = before
		cfg.afterParam = after
		return nil
	}
}

// WithRequestIDParam sets the name of the query parameter holding the ID of
// the data request.
func WithRequestIDParam(name string) Option {
	return func(cfg *config) error {
		if name == "" {
			return errors.New("parameter name cannot be empty")
		}
		cfg.requestIDParam = name
		return nil
	}
}

// WithMaxCount sets the largest before or after count accepted in a request.
func WithMaxCount(n int) Option {
	return func(cfg *config) error {
		if n < 0 {
			return errors.New("max count cannot be negative")
		}
		cfg.maxCount = n
		return nil
	}
}

func WithPreferJson(preferJson bool) Option {
	return func(cfg *config) error {
		cfg.preferJson = preferJson
		return nil
	}
}
