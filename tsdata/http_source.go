package tsdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tschart/go-libtschart/apierror"
	"github.com/tschart/go-libtschart/timeseries"
)

var _ DataSource = (*HTTPSource)(nil)

const recordsPath = "records"

// Query parameter names used by the HTTP source and the records server.
const (
	ParamAnchor    = "anchor"
	ParamBefore    = "before"
	ParamAfter     = "after"
	ParamRequestID = "requestId"
)

// HTTPSource is a DataSource that loads records from a records server over HTTP.
type HTTPSource struct {
	url    *url.URL
	client *http.Client
	header http.Header
}

// NewHTTPSource creates an HTTPSource for the records server at srcURL. Records
// are requested from the records resource below the path of srcURL.
func NewHTTPSource(srcURL string, client *http.Client) (*HTTPSource, error) {
	u, err := url.Parse(srcURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("url must have http or https scheme: %s", srcURL)
	}
	u = u.JoinPath(recordsPath)

	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPSource{
		url:    u,
		client: client,
	}, nil
}

// AddHeader adds a header to every request sent to the records server.
func (s *HTTPSource) AddHeader(key, value string) {
	if s.header == nil {
		s.header = make(map[string][]string)
	}
	s.header.Add(key, value)
}

func (s *HTTPSource) Load(ctx context.Context, anchor time.Time, beforeCount, afterCount int, requestID string) ([]timeseries.Record, error) {
	u := *s.url
	q := u.Query()
	q.Set(ParamAnchor, anchor.UTC().Format(time.RFC3339Nano))
	q.Set(ParamBefore, strconv.Itoa(beforeCount))
	q.Set(ParamAfter, strconv.Itoa(afterCount))
	if requestID != "" {
		q.Set(ParamRequestID, requestID)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	for key, vals := range s.header {
		for _, val := range vals {
			req.Header.Add(key, val)
		}
	}
	req.Header.Add("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr *apierror.Error
		if errors.As(apierror.DecodeError(body), &apiErr) {
			return nil, apiErr
		}
		return nil, apierror.FromResponse(resp.StatusCode, body)
	}

	var records []timeseries.Record
	if err = json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("cannot decode records: %w", err)
	}
	return records, nil
}

func (s *HTTPSource) String() string {
	return s.url.String()
}
