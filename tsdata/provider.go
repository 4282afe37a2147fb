package tsdata

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
	"github.com/tschart/go-libtschart/timeseries"
)

var log = logging.Logger("tsdata")

// Provider loads time series data from a DataSource into a Cache and answers
// queries from it. Only one query is processed at a time; concurrent calls to
// LoadData wait for the active query to complete, and then see the cache as
// that query left it.
type Provider struct {
	cache          *Cache
	clearMult      float64
	expandMult     float64
	onFinish       RequestFunc
	onStart        RequestFunc
	requestTimeout time.Duration
	src            DataSource
	timeField      string

	// mu protects the fields below.
	mu             sync.Mutex
	activeQuery    *Query
	activeRequests map[string]*Request
	closed         bool

	closing   chan struct{}
	closeOnce sync.Once

	inEvents     chan RequestEvent
	addEventChan chan chan<- RequestEvent
	rmEventChan  chan chan<- RequestEvent
}

// New creates a Provider that loads data from src.
func New(src DataSource, options ...Option) (*Provider, error) {
	if src == nil {
		return nil, errors.New("nil data source")
	}
	opts, err := getOpts(options)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		cache:          NewCache(opts.timeUnit),
		clearMult:      opts.clearMult,
		expandMult:     opts.expandMult,
		onFinish:       opts.onFinish,
		onStart:        opts.onStart,
		requestTimeout: opts.requestTimeout,
		src:            src,
		timeField:      opts.timeField,

		activeRequests: make(map[string]*Request),
		closing:        make(chan struct{}),

		inEvents:     make(chan RequestEvent, 1),
		addEventChan: make(chan chan<- RequestEvent),
		rmEventChan:  make(chan chan<- RequestEvent),
	}
	go p.distributeEvents()

	return p, nil
}

// CachedInterval returns the time range of the cached data.
func (p *Provider) CachedInterval() timeseries.Interval {
	return p.cache.CachedInterval()
}

// DataFromCache returns the cached items for the query without loading
// anything. Returns nil if the query anchor is not within the cached data.
func (p *Provider) DataFromCache(q *Query) *timeseries.ItemSlice {
	return p.cache.GetData(q)
}

// TimeSeries returns the currently cached series.
func (p *Provider) TimeSeries() *timeseries.TimeSeries {
	return p.cache.TimeSeries()
}

// LoadData returns the items for the query, first loading whatever is not
// already cached. If forceReset is true, all cached data is discarded and
// reloaded.
//
// Requests that fail are reported together as a single error, after the
// data from any successful requests has been merged into the cache. A request
// that times out is not an error; its data is simply absent. If the provider
// is closed, LoadData returns nil and no error.
//
// A nil slice with a nil error means there is no data for the query anchor,
// for example because the request timed out before any data was cached.
func (p *Provider) LoadData(ctx context.Context, q *Query, forceReset bool) (*timeseries.ItemSlice, error) {
	ok, err := p.acquire(ctx, q)
	if err != nil || !ok {
		return nil, err
	}
	defer p.release(q)

	if forceReset || !p.cache.HasMatchingTimeUnit(q) {
		p.cache.Reset(q.TimeUnit)
	}
	if forceReset || !p.cache.HasFullData(q) {
		err = p.fetch(ctx, q)
	}
	if p.isClosed() {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.cache.GetData(q), nil
}

// Close marks the provider as closed. Active and waiting calls to LoadData
// return without data, and the results of requests still in progress are
// ignored. Channels returned by OnRequestEvent are closed.
func (p *Provider) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		p.closed = true
		close(p.closing)
		if p.activeQuery != nil {
			p.activeQuery.Close()
			p.activeQuery = nil
		}
		clear(p.activeRequests)
		// Stop the distribution goroutine.
		close(p.inEvents)
	})
}

// acquire waits until no other query is active and makes q the active query.
// Returns false if the provider is closed.
func (p *Provider) acquire(ctx context.Context, q *Query) (bool, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return false, nil
		}
		active := p.activeQuery
		if active == nil {
			p.activeQuery = q
			p.mu.Unlock()
			return true, nil
		}
		p.mu.Unlock()

		if err := active.Wait(ctx); err != nil {
			return false, err
		}
	}
}

func (p *Provider) release(q *Query) {
	p.mu.Lock()
	if p.isActiveQuery(q) {
		p.activeQuery = nil
	}
	p.mu.Unlock()
	q.Close()
}

func (p *Provider) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// fetch runs the requests needed to load the data for q into the cache and
// waits for all of them to finish.
func (p *Provider) fetch(ctx context.Context, q *Query) error {
	requests := p.cache.CreateRequests(q, p.expandMult)
	if len(requests) == 0 {
		return nil
	}

	errs := make([]error, len(requests))
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req *Request) {
			defer wg.Done()
			errs[i] = p.execute(ctx, q, req)
		}(i, req)
	}
	wg.Wait()

	p.cache.ClearOutside(q, p.clearMult)

	var merr error
	for _, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if merr != nil {
		return fmt.Errorf("error loading chart data: %w", merr)
	}
	return nil
}

// execute runs a single request. It returns when the data source answers,
// the request times out, the provider closes, or ctx is canceled, whichever
// happens first. The data source call is not awaited after that; its result
// is discarded.
func (p *Provider) execute(ctx context.Context, q *Query, req *Request) error {
	if !p.startRequest(q, req) {
		return nil
	}
	defer p.finishRequest(q, req)

	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so that an abandoned load does not block.
	resCh := make(chan error, 1)
	go func() {
		resCh <- p.load(loadCtx, q, req)
	}()

	timer := time.NewTimer(p.requestTimeout)
	defer timer.Stop()

	select {
	case err := <-resCh:
		return err
	case <-timer.C:
		log.Warnw("Request timed out", "request", req.ID, "timeout", p.requestTimeout, "source", p.src)
		return nil
	case <-p.closing:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// load calls the data source and stores the result in the cache if the
// request is still current.
func (p *Provider) load(ctx context.Context, q *Query, req *Request) error {
	items, err := req.LoadData(ctx, p.src, p.timeField)

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isActiveQuery(q) || p.activeRequests[req.ID] == nil {
		if err != nil {
			log.Debugw("Ignoring error from inactive request", "err", err, "request", req.ID)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("request %s (%s): %w", req.ID, req.Type, err)
	}
	p.cache.StoreData(req, items)
	return nil
}

// startRequest registers req as active if q is the active query.
func (p *Provider) startRequest(q *Query, req *Request) bool {
	p.mu.Lock()
	if !p.isActiveQuery(q) {
		p.mu.Unlock()
		return false
	}
	p.activeRequests[req.ID] = req
	p.inEvents <- RequestEvent{Type: RequestStarted, RequestID: req.ID, Time: req.Section.Time}
	p.mu.Unlock()

	log.Debugw("Request started", "request", req)
	if p.onStart != nil {
		p.onStart(req.ID, req.Section.Time)
	}
	return true
}

// finishRequest removes req from the active requests. The finish callback is
// called only by the first finish of an active request.
func (p *Provider) finishRequest(q *Query, req *Request) {
	p.mu.Lock()
	if !p.isActiveQuery(q) || p.activeRequests[req.ID] == nil {
		p.mu.Unlock()
		return
	}
	delete(p.activeRequests, req.ID)
	p.inEvents <- RequestEvent{Type: RequestFinished, RequestID: req.ID, Time: req.Section.Time}
	p.mu.Unlock()

	log.Debugw("Request finished", "request", req.ID)
	if p.onFinish != nil {
		p.onFinish(req.ID, req.Section.Time)
	}
}

// isActiveQuery must be called with mu held.
func (p *Provider) isActiveQuery(q *Query) bool {
	return p.activeQuery != nil && p.activeQuery.ID == q.ID
}
