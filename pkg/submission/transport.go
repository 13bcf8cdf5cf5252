package submission

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-Id"

const defaultTimeout = 30 * time.Second

// Transport sends formatted models to the API. Implementations return the
// response body on 2xx and a *StatusError otherwise.
type Transport interface {
	// Create sends payload to endpoint with method (POST unless set).
	Create(ctx context.Context, endpoint, method string, payload map[string]any) ([]byte, error)
	// Update patches the resource at url.
	Update(ctx context.Context, url string, payload map[string]any) ([]byte, error)
}

// HTTPOption customises an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient overrides the HTTP client. The client keeps its own jar.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		if client != nil {
			t.client = client
		}
	}
}

// WithBaseURL resolves relative endpoints against base.
func WithBaseURL(base string) HTTPOption {
	return func(t *HTTPTransport) {
		if base == "" {
			return
		}
		if parsed, err := url.Parse(base); err == nil {
			t.base = parsed
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(name, value string) HTTPOption {
	return func(t *HTTPTransport) {
		t.header.Add(name, value)
	}
}

// WithRequestID overrides how request ids are generated.
func WithRequestID(fn func() string) HTTPOption {
	return func(t *HTTPTransport) {
		if fn != nil {
			t.requestID = fn
		}
	}
}

// HTTPTransport is the JSON-over-HTTP Transport. Requests carry the
// client's cookies so session-authenticated APIs accept them.
type HTTPTransport struct {
	client    *http.Client
	base      *url.URL
	header    http.Header
	requestID func() string
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport builds a transport with a cookie-jar backed client.
func NewHTTPTransport(opts ...HTTPOption) *HTTPTransport {
	jar, _ := cookiejar.New(nil)
	t := &HTTPTransport{
		client:    &http.Client{Timeout: defaultTimeout, Jar: jar},
		header:    make(http.Header),
		requestID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Create implements Transport.
func (t *HTTPTransport) Create(ctx context.Context, endpoint, method string, payload map[string]any) ([]byte, error) {
	if method == "" {
		method = http.MethodPost
	}
	return t.do(ctx, strings.ToUpper(method), endpoint, payload)
}

// Update implements Transport.
func (t *HTTPTransport) Update(ctx context.Context, target string, payload map[string]any) ([]byte, error) {
	return t.do(ctx, http.MethodPatch, target, payload)
}

func (t *HTTPTransport) do(ctx context.Context, method, target string, payload map[string]any) ([]byte, error) {
	resolved, err := t.resolve(target)
	if err != nil {
		return nil, err
	}

	body, err := gojson.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("submission: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, resolved, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("submission: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/hal+json, application/json")
	req.Header.Set(RequestIDHeader, t.requestID())
	for name, values := range t.header {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submission: %s %s: %w", method, resolved, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("submission: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Method: method,
			URL:    resolved,
			Body:   data,
		}
	}
	return data, nil
}

func (t *HTTPTransport) resolve(target string) (string, error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("submission: parse url %q: %w", target, err)
	}
	if parsed.IsAbs() {
		return parsed.String(), nil
	}
	if t.base == nil {
		return "", fmt.Errorf("submission: relative url %q without base url", target)
	}
	return t.base.ResolveReference(parsed).String(), nil
}
