package records

import (
	"errors"
	"fmt"
	"time"

	"github.com/tschart/go-libtschart/rwriter"
)

type config struct {
	handlerPath string
	loadTimeout time.Duration
	rwOpts      []rwriter.Option
	startServer bool
}

// Option is a function that sets a value in a config.
type Option func(*config) error

// getOpts creates a config and applies Options to it.
func getOpts(opts []Option) (config, error) {
	cfg := config{
		startServer: true,
	}
	for i, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, fmt.Errorf("option %d failed: %s", i, err)
		}
	}
	return cfg, nil
}

// WithHandlerPath sets the path prefix used to handle requests to this server.
// Records are served at <handlerPath>/records.
func WithHandlerPath(urlPath string) Option {
	return func(c *config) error {
		c.handlerPath = urlPath
		return nil
	}
}

// WithLoadTimeout limits how long a call to the data source may take. A value
// of zero means no limit.
func WithLoadTimeout(timeout time.Duration) Option {
	return func(c *config) error {
		if timeout < 0 {
			return errors.New("load timeout cannot be negative")
		}
		c.loadTimeout = timeout
		return nil
	}
}

// WithResponseWriterOptions sets the options used to parse requests and write
// responses.
func WithResponseWriterOptions(options ...rwriter.Option) Option {
	return func(c *config) error {
		c.rwOpts = append(c.rwOpts, options...)
		return nil
	}
}

// WithServer, if true, starts an http server listening on the given address.
// If false, no server is started and the caller must serve requests using
// ServeHTTP.
func WithServer(serve bool) Option {
	return func(c *config) error {
		c.startServer = serve
		return nil
	}
}
