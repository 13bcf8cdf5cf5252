package values

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-dynform/pkg/schema"
)

const (
	halContentType  = "application/hal+json; charset=utf-8"
	defaultPageSize = 20
	maxPageSize     = 200
)

// GuardFunc authorises a request before any value is listed. Returning a
// StatusError picks the response status; any other error answers 403.
type GuardFunc func(r *http.Request) error

// ProviderFunc returns the full value list for a request.
type ProviderFunc func(ctx context.Context) ([]schema.Value, error)

// StatusError carries the HTTP status a guard or provider wants answered.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

// Option configures an Endpoint.
type Option func(*Endpoint)

// WithValues serves a static list. A provider takes precedence.
func WithValues(values []schema.Value) Option {
	return func(e *Endpoint) {
		e.values = append([]schema.Value(nil), values...)
	}
}

// WithProvider resolves the list per request.
func WithProvider(provider ProviderFunc) Option {
	return func(e *Endpoint) {
		e.provider = provider
	}
}

// WithGuard rejects requests before listing.
func WithGuard(guard GuardFunc) Option {
	return func(e *Endpoint) {
		e.guard = guard
	}
}

// WithPageSize sets the page size used when a request names none and the
// largest one a request may ask for.
func WithPageSize(def, max int) Option {
	return func(e *Endpoint) {
		if def > 0 {
			e.defaultSize = def
		}
		if max > 0 {
			e.maxSize = max
		}
	}
}

// WithParams renames the search, page size and offset query parameters.
// Empty names keep the defaults.
func WithParams(search, pageSize, offset string) Option {
	return func(e *Endpoint) {
		if search != "" {
			e.searchParam = search
		}
		if pageSize != "" {
			e.pageSizeParam = pageSize
		}
		if offset != "" {
			e.offsetParam = offset
		}
	}
}

// Endpoint serves one allowed-values list at a fixed path. Forms point a
// field at it through the allowedValues link returned by Link.
type Endpoint struct {
	path          string
	searchParam   string
	pageSizeParam string
	offsetParam   string
	defaultSize   int
	maxSize       int
	guard         GuardFunc
	values        []schema.Value
	provider      ProviderFunc
}

var _ http.Handler = (*Endpoint)(nil)

// New builds an endpoint served at route.
func New(route string, opts ...Option) *Endpoint {
	e := &Endpoint{
		path:          cleanRoute(route),
		searchParam:   "q",
		pageSizeParam: "pageSize",
		offsetParam:   "offset",
		defaultSize:   defaultPageSize,
		maxSize:       maxPageSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.defaultSize > e.maxSize {
		e.defaultSize = e.maxSize
	}
	return e
}

// Path returns the route the endpoint answers on.
func (e *Endpoint) Path() string {
	return e.path
}

// Link returns the allowedValues link a form schema embeds to have its
// options fetched from this endpoint.
func (e *Endpoint) Link(title string) schema.RemoteValues {
	return schema.RemoteValues{Href: e.path, Title: title}
}

// Mount registers the endpoint for GET and HEAD on r.
func (e *Endpoint) Mount(r chi.Router) {
	r.Get(e.path, e.ServeHTTP)
	r.Head(e.path, e.ServeHTTP)
}

// ServeHTTP answers with one page of the list as a HAL collection.
func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, StatusError{Code: http.StatusMethodNotAllowed}, http.StatusMethodNotAllowed)
		return
	}
	if e.guard != nil {
		if err := e.guard(r); err != nil {
			writeError(w, err, http.StatusForbidden)
			return
		}
	}

	list := e.values
	if e.provider != nil {
		provided, err := e.provider(r.Context())
		if err != nil {
			writeError(w, err, http.StatusInternalServerError)
			return
		}
		list = provided
	}

	page := Search(list, e.query(r))
	w.Header().Set("Content-Type", halContentType)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_ = gojson.NewEncoder(w).Encode(collectionOf(page))
}

// query reads the page request. Missing or unparsable sizes fall back to
// the default size; sizes above the maximum are capped.
func (e *Endpoint) query(r *http.Request) Query {
	params := r.URL.Query()
	q := Query{
		Text:   params.Get(e.searchParam),
		Offset: atoi(params.Get(e.offsetParam)),
		Limit:  e.defaultSize,
	}
	if raw := params.Get(e.pageSizeParam); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			q.Limit = n
		}
	}
	if q.Limit > e.maxSize {
		q.Limit = e.maxSize
	}
	return q
}

type halLink struct {
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
}

type halElement struct {
	Name  string `json:"name,omitempty"`
	Links *struct {
		Self halLink `json:"self"`
	} `json:"_links,omitempty"`
}

type halCollection struct {
	Type     string `json:"_type"`
	Count    int    `json:"count"`
	Total    int    `json:"total"`
	PageSize int    `json:"pageSize"`
	Offset   int    `json:"offset"`
	Embedded struct {
		Elements []halElement `json:"elements"`
	} `json:"_embedded"`
}

// collectionOf renders a page. Values without an href are emitted by name
// only so loaders keep them as inline options.
func collectionOf(page Page) halCollection {
	out := halCollection{
		Type:     "Collection",
		Count:    len(page.Elements),
		Total:    page.Total,
		PageSize: page.Limit,
		Offset:   page.Offset,
	}
	out.Embedded.Elements = make([]halElement, 0, len(page.Elements))
	for _, value := range page.Elements {
		el := halElement{Name: value.DisplayName()}
		if value.Href != "" {
			el.Links = &struct {
				Self halLink `json:"self"`
			}{Self: halLink{Href: value.Href, Title: value.DisplayName()}}
		}
		out.Embedded.Elements = append(out.Embedded.Elements, el)
	}
	return out
}

type halError struct {
	Type    string `json:"_type"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error, fallback int) {
	code := fallback
	var status StatusError
	if errors.As(err, &status) && status.Code > 0 {
		code = status.Code
	}
	w.Header().Set("Content-Type", halContentType)
	w.WriteHeader(code)
	_ = gojson.NewEncoder(w).Encode(halError{Type: "Error", Message: http.StatusText(code)})
}

func cleanRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return "/"
	}
	return path.Clean("/" + route)
}

func atoi(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
