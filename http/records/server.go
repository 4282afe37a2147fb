package records

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/tschart/go-libtschart/apierror"
	"github.com/tschart/go-libtschart/rwriter"
	"github.com/tschart/go-libtschart/tsdata"
)

// RecordsPath is the last path element of the records resource.
const RecordsPath = "records"

var log = logging.Logger("records")

// Server serves the records of a data source over HTTP.
type Server struct {
	addr        net.Addr
	handlerPath string
	opts        config
	server      *http.Server
	src         tsdata.DataSource
}

var _ http.Handler = (*Server)(nil)

// New creates a new records server for src. Unless WithServer(false) is
// given, an HTTP server is started listening on address.
func New(address string, src tsdata.DataSource, options ...Option) (*Server, error) {
	opts, err := getOpts(options)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, errors.New("nil data source")
	}

	handlerPath := strings.TrimPrefix(opts.handlerPath, "/")
	if handlerPath != "" {
		handlerPath = "/" + handlerPath
	}

	s := &Server{
		handlerPath: path.Join("/", handlerPath, RecordsPath),
		opts:        opts,
		src:         src,
	}

	if opts.startServer {
		l, err := net.Listen("tcp", address)
		if err != nil {
			return nil, err
		}
		s.addr = l.Addr()

		// Run service on configured port.
		s.server = &http.Server{
			Handler: s,
			Addr:    l.Addr().String(),
		}
		go func() {
			if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("Records server stopped", "err", err)
			}
		}()
		log.Infow("Serving records", "addr", s.addr.String(), "path", s.handlerPath, "source", src)
	} else {
		s.addr, err = net.ResolveTCPAddr("tcp", address)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// URL returns the base URL of the server, suitable for tsdata.NewHTTPSource.
func (s *Server) URL() string {
	return "http://" + s.addr.String() + strings.TrimSuffix(s.handlerPath, "/"+RecordsPath)
}

// Close stops the HTTP server, if one was started.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	return s.server.Close()
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != s.handlerPath {
		apierror.WriteError(w, apierror.New(errors.New("invalid request path: "+r.URL.Path), http.StatusNotFound), 0)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		apierror.WriteError(w, apierror.New(nil, http.StatusMethodNotAllowed), 0)
		return
	}

	respW, err := rwriter.New(w, r, s.opts.rwOpts...)
	if err != nil {
		log.Debugw("Bad records request", "err", err, "query", r.URL.RawQuery)
		apierror.WriteError(w, err, http.StatusBadRequest)
		return
	}
	rw := rwriter.NewRecordsResponseWriter(respW)
	sec := rw.Section()

	ctx := r.Context()
	if s.opts.loadTimeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.loadTimeout)
		defer cancel()
	}

	records, err := s.src.Load(ctx, sec.Time, sec.BeforeCount, sec.AfterCount, rw.RequestID())
	if err != nil {
		log.Errorw("Failed to load records", "err", err, "section", sec, "request", rw.RequestID(), "source", s.src)
		var apiErr *apierror.Error
		if !errors.As(err, &apiErr) {
			status := http.StatusInternalServerError
			if errors.Is(err, context.DeadlineExceeded) {
				status = http.StatusGatewayTimeout
			}
			err = apierror.New(err, status).ForRequest(rw.RequestID())
		}
		apierror.WriteError(w, err, http.StatusInternalServerError)
		return
	}

	if err = rw.WriteRecords(records); err != nil {
		log.Errorw("Failed to write records", "err", err, "request", rw.RequestID())
		return
	}
	if err = rw.Close(); err != nil {
		log.Errorw("Failed to write records", "err", err, "request", rw.RequestID())
		return
	}
	log.Debugw("Served records", "count", rw.Count(), "section", sec, "request", rw.RequestID())
}
