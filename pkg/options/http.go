package options

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/goliatone/go-dynform/pkg/schema"
)

const (
	defaultSearchParam   = "q"
	defaultPageSizeParam = "pageSize"
	defaultHTTPTimeout   = 15 * time.Second
)

// StatusError reports a non-2xx response from a values endpoint.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("options: unexpected status %s", e.Status)
}

// HTTPOption customises an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithBaseURL resolves relative hrefs against base.
func WithBaseURL(base string) HTTPOption {
	return func(f *HTTPFetcher) {
		if base == "" {
			return
		}
		parsed, err := url.Parse(base)
		if err == nil {
			f.base = parsed
		}
	}
}

// WithSearchParam names the query parameter carrying the search text.
func WithSearchParam(name string) HTTPOption {
	return func(f *HTTPFetcher) {
		if name != "" {
			f.searchParam = name
		}
	}
}

// WithPageSize asks the server for size elements per page via param.
func WithPageSize(param string, size int) HTTPOption {
	return func(f *HTTPFetcher) {
		if param != "" {
			f.pageSizeParam = param
		}
		f.pageSize = size
	}
}

// WithHeader adds a header to every request.
func WithHeader(name, value string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.header.Add(name, value)
	}
}

// HTTPFetcher follows allowed-values links over HTTP and decodes HAL
// collections of the shape {"count", "total", "_embedded": {"elements"}}.
type HTTPFetcher struct {
	client        *http.Client
	base          *url.URL
	searchParam   string
	pageSizeParam string
	pageSize      int
	header        http.Header
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher constructs a fetcher with sensible defaults.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:        &http.Client{Timeout: defaultHTTPTimeout},
		searchParam:   defaultSearchParam,
		pageSizeParam: defaultPageSizeParam,
		header:        make(http.Header),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

type halCollection struct {
	Count    *int `json:"count"`
	Total    *int `json:"total"`
	Embedded struct {
		Elements []gojson.RawMessage `json:"elements"`
	} `json:"_embedded"`
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, href string, filter Filter) (Collection, error) {
	target, err := f.resolve(href, filter)
	if err != nil {
		return Collection{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Collection{}, fmt.Errorf("options: build request: %w", err)
	}
	req.Header.Set("Accept", "application/hal+json, application/json")
	for name, values := range f.header {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Collection{}, fmt.Errorf("options: get %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Collection{}, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var payload halCollection
	if err := gojson.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Collection{}, fmt.Errorf("options: decode collection: %w", err)
	}

	collection := Collection{
		Count:    payload.Count,
		Total:    payload.Total,
		Elements: make([]schema.Value, 0, len(payload.Embedded.Elements)),
	}
	for _, raw := range payload.Embedded.Elements {
		value, ok := schema.DecodeValue(raw)
		if !ok {
			continue
		}
		collection.Elements = append(collection.Elements, value)
	}
	return collection, nil
}

func (f *HTTPFetcher) resolve(href string, filter Filter) (string, error) {
	parsed, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("options: parse href %q: %w", href, err)
	}
	if !parsed.IsAbs() {
		if f.base == nil {
			return "", fmt.Errorf("options: relative href %q without base url", href)
		}
		parsed = f.base.ResolveReference(parsed)
	}

	query := parsed.Query()
	if filter.Query != "" {
		query.Set(f.searchParam, filter.Query)
	}
	for name, value := range filter.Params {
		query.Set(name, value)
	}
	if f.pageSize > 0 && query.Get(f.pageSizeParam) == "" {
		query.Set(f.pageSizeParam, strconv.Itoa(f.pageSize))
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
