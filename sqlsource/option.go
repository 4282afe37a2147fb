package sqlsource

import (
	"errors"
	"fmt"
)

const (
	defaultSeries    = "default"
	defaultTimeField = "time"
)

type config struct {
	series    string
	timeField string
}

// Option is a function that sets a value in a config.
type Option func(*config) error

// getOpts creates a config and applies Options to it.
func getOpts(opts []Option) (config, error) {
	cfg := config{
		series:    defaultSeries,
		timeField: defaultTimeField,
	}
	for i, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, fmt.Errorf("option %d failed: %s", i, err)
		}
	}
	return cfg, nil
}

// WithSeries sets the name of the series that Load reads.
func WithSeries(name string) Option {
	return func(c *config) error {
		if name == "" {
			return errors.New("series name cannot be empty")
		}
		c.series = name
		return nil
	}
}

// WithTimeField sets the record field that Load puts the point time into.
func WithTimeField(name string) Option {
	return func(c *config) error {
		if name == "" {
			return errors.New("time field name cannot be empty")
		}
		c.timeField = name
		return nil
	}
}
