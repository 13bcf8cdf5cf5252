package options

import (
	"context"
	"fmt"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// Collection is one page of remote values.
type Collection struct {
	Elements []schema.Value
	// Count is the number of elements on this page; nil when the server does
	// not paginate.
	Count *int
	// Total is the size of the whole universe of values; nil when unknown.
	Total *int
}

func (c Collection) clone() Collection {
	out := c
	if c.Elements != nil {
		out.Elements = append([]schema.Value(nil), c.Elements...)
	}
	return out
}

// Complete reports whether the page holds every value the server knows of.
func (c Collection) Complete() bool {
	return c.Count == nil || c.Total == nil || *c.Count == *c.Total
}

// Filter parameterises a remote fetch.
type Filter struct {
	Query  string
	Params map[string]string
}

// FilterFunc builds the filter used for a free-text query. Override it to
// narrow remote values server-side in domain-specific ways.
type FilterFunc func(query string) Filter

// DefaultFilter forwards the query untouched.
func DefaultFilter(query string) Filter {
	return Filter{Query: query}
}

// Fetcher retrieves a page of values from a remote allowed-values link.
type Fetcher interface {
	Fetch(ctx context.Context, href string, filter Filter) (Collection, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc func(ctx context.Context, href string, filter Filter) (Collection, error)

// Fetch calls the underlying function.
func (fn FetcherFunc) Fetch(ctx context.Context, href string, filter Filter) (Collection, error) {
	return fn(ctx, href, filter)
}

// FetchError reports a failed remote option fetch. It is never retried.
type FetchError struct {
	Href  string
	Query string
	Err   error
}

func (e *FetchError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("options: fetch %s (query %q): %v", e.Href, e.Query, e.Err)
	}
	return fmt.Sprintf("options: fetch %s: %v", e.Href, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
