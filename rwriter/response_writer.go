package rwriter

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tschart/go-libtschart/apierror"
	"github.com/tschart/go-libtschart/timeseries"
)

const (
	mediaTypeNDJson = "application/x-ndjson"
	mediaTypeJson   = "application/json"
	mediaTypeAny    = "*/*"
)

// ResponseWriter wraps the http.ResponseWriter of a records request. It holds
// the negotiated media type and the section that the request asks for.
type ResponseWriter struct {
	w         http.ResponseWriter
	f         http.Flusher
	encoder   *json.Encoder
	nd        bool
	requestID string
	section   timeseries.Section
	status    int
}

// New negotiates the response media type from the request Accept header and
// parses the requested section from the query parameters. Invalid requests
// are reported with an apierror.Error having status 400.
func New(w http.ResponseWriter, r *http.Request, options ...Option) (*ResponseWriter, error) {
	opts, err := getOpts(options)
	if err != nil {
		return nil, err
	}

	query := r.URL.Query()
	requestID := query.Get(opts.requestIDParam)
	badRequest := func(err error) error {
		return apierror.New(err, http.StatusBadRequest).ForRequest(requestID)
	}

	accepts := r.Header.Values("Accept")
	var nd, okJson bool
	for _, accept := range accepts {
		amts := strings.Split(accept, ",")
		for _, amt := range amts {
			mt, _, err := mime.ParseMediaType(amt)
			if err != nil {
				return nil, badRequest(errors.New("invalid Accept header"))
			}
			switch mt {
			case mediaTypeNDJson:
				nd = true
			case mediaTypeJson:
				okJson = true
			case mediaTypeAny:
				nd = !opts.preferJson
				okJson = true
			}
		}
	}

	if len(accepts) == 0 {
		if !opts.preferJson {
			// If there is no `Accept` header and JSON is preferred then be
			// forgiving and fall back onto JSON media type. Otherwise,
			// strictly require `Accept` header.
			return nil, badRequest(errors.New("accept header must be specified"))
		}
	} else if !okJson && !nd {
		return nil, badRequest(fmt.Errorf("media type not supported: %s", accepts))
	}
	// Prefer JSON when both are acceptable and JSON is preferred.
	if nd && okJson && opts.preferJson {
		nd = false
	}

	anchorStr := strings.TrimSpace(query.Get(opts.anchorParam))
	if anchorStr == "" {
		return nil, badRequest(fmt.Errorf("missing %s parameter", opts.anchorParam))
	}
	anchor, err := time.Parse(time.RFC3339Nano, anchorStr)
	if err != nil {
		return nil, badRequest(fmt.Errorf("invalid %s parameter: %w", opts.anchorParam, err))
	}
	before, err := parseCount(query.Get(opts.beforeParam), opts.beforeParam, opts.maxCount)
	if err != nil {
		return nil, badRequest(err)
	}
	after, err := parseCount(query.Get(opts.afterParam), opts.afterParam, opts.maxCount)
	if err != nil {
		return nil, badRequest(err)
	}

	flusher, _ := w.(http.Flusher)
	if nd {
		w.Header().Set("Content-Type", mediaTypeNDJson)
		w.Header().Set("Connection", "Keep-Alive")
		w.Header().Set("X-Content-Type-Options", "nosniff")
	} else {
		w.Header().Set("Content-Type", mediaTypeJson)
	}

	return &ResponseWriter{
		w:         w,
		f:         flusher,
		encoder:   json.NewEncoder(w),
		nd:        nd,
		requestID: requestID,
		section:   timeseries.NewSection(anchor.UTC(), before, after),
		status:    http.StatusOK,
	}, nil
}

// parseCount parses an item count. A missing count is zero.
func parseCount(s, name string, max int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter: %w", name, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s parameter cannot be negative", name)
	}
	if n > max {
		return 0, fmt.Errorf("%s parameter exceeds maximum of %d", name, max)
	}
	return n, nil
}

// Section returns the section requested by the client.
func (w *ResponseWriter) Section() timeseries.Section {
	return w.section
}

// RequestID returns the data request ID sent by the client, if any.
func (w *ResponseWriter) RequestID() string {
	return w.requestID
}

func (w *ResponseWriter) IsND() bool {
	return w.nd
}

func (w *ResponseWriter) Flush() {
	if w.f != nil {
		w.f.Flush()
	}
}

func (w *ResponseWriter) Encoder() *json.Encoder {
	return w.encoder
}

func (w *ResponseWriter) Header() http.Header {
	return w.w.Header()
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	return w.w.Write(b)
}

func (w *ResponseWriter) WriteHeader(statusCode int) {
	if statusCode != http.StatusOK {
		w.status = statusCode
		w.w.WriteHeader(statusCode)
	}
}

func (w *ResponseWriter) StatusCode() int {
	return w.status
}
