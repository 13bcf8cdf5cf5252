package options

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/i18n"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// ErrNoFetcher is returned when a field advertises remote values but the
// loader was built without a Fetcher.
var ErrNoFetcher = errors.New("options: remote values require a fetcher")

// State tracks the lifecycle of a Loader.
type State int32

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "unloaded"
	}
}

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

// WithCache shares a settled-fetch cache between loaders.
func WithCache(cache *Cache) LoaderOption {
	return func(l *Loader) {
		l.cache = cache
	}
}

// WithFetcher injects the capability used to follow remote allowed values.
func WithFetcher(fetcher Fetcher) LoaderOption {
	return func(l *Loader) {
		l.fetcher = fetcher
	}
}

// WithSorter overrides the ordering applied to values.
func WithSorter(sorter Sorter) LoaderOption {
	return func(l *Loader) {
		if sorter != nil {
			l.sorter = sorter
		}
	}
}

// WithFilter overrides how a search query becomes a remote filter.
func WithFilter(filter FilterFunc) LoaderOption {
	return func(l *Loader) {
		if filter != nil {
			l.filter = filter
		}
	}
}

// WithCurrent registers the values currently held by the resource so they
// stay selectable when the server returns a partial page.
func WithCurrent(values ...schema.Value) LoaderOption {
	return func(l *Loader) {
		l.current = append(l.current, values...)
	}
}

// WithTranslator sets the translator used for the placeholder label.
func WithTranslator(translator i18n.Translator) LoaderOption {
	return func(l *Loader) {
		l.translator = translator
	}
}

// WithLocale sets the locale used for the placeholder label.
func WithLocale(locale i18n.LocaleFunc) LoaderOption {
	return func(l *Loader) {
		l.locale = locale
	}
}

// WithPlaceholder replaces the translated placeholder label.
func WithPlaceholder(text string) LoaderOption {
	return func(l *Loader) {
		l.placeholder = text
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loader produces the option list of one field. It implements
// model.OptionSource and does no work until Load is called.
type Loader struct {
	field       schema.FieldSchema
	cache       *Cache
	fetcher     Fetcher
	sorter      Sorter
	filter      FilterFunc
	current     []schema.Value
	translator  i18n.Translator
	locale      i18n.LocaleFunc
	placeholder string
	logger      *zap.Logger

	mu          sync.Mutex
	state       State
	inflight    int
	loaded      bool
	fullyLoaded bool
	baseline    []model.OptionEntry

	ready     chan struct{}
	readyOnce sync.Once
}

var _ model.OptionSource = (*Loader)(nil)

// NewLoader builds the loader for field.
func NewLoader(field schema.FieldSchema, opts ...LoaderOption) *Loader {
	l := &Loader{
		field:  field,
		sorter: KeepOrder,
		filter: DefaultFilter,
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(l)
	}
	if l.logger == nil {
		l.logger = zap.L()
	}
	return l
}

// Field returns the schema the loader serves.
func (l *Loader) Field() schema.FieldSchema {
	return l.field
}

// State reports the current lifecycle state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// FullyLoaded reports whether every allowed value is known locally.
func (l *Loader) FullyLoaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fullyLoaded
}

// Ready is closed after the first successful load.
func (l *Loader) Ready() <-chan struct{} {
	return l.ready
}

// Wait blocks until Ready is closed or ctx is done.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Load returns the option list for query. Inline values never touch the
// network. Remote values are fetched through the cache when query is empty
// and fetched fresh otherwise, unless a previous load already saw the whole
// universe of values.
func (l *Loader) Load(ctx context.Context, query string) ([]model.OptionEntry, error) {
	switch values := l.field.AllowedValues.(type) {
	case schema.InlineValues:
		return l.settleLocal([]schema.Value(values)), nil
	case schema.RemoteValues:
		if entries, ok := l.baselineEntries(); ok {
			return entries, nil
		}
		return l.loadRemote(ctx, values, query)
	default:
		return l.settleLocal(l.current), nil
	}
}

func (l *Loader) settleLocal(values []schema.Value) []model.OptionEntry {
	l.begin()
	entries := l.entries(values)
	l.finish(true, true, entries)
	return cloneEntries(entries)
}

func (l *Loader) loadRemote(ctx context.Context, remote schema.RemoteValues, query string) ([]model.OptionEntry, error) {
	if l.fetcher == nil {
		return nil, &FetchError{Href: remote.Href, Query: query, Err: ErrNoFetcher}
	}

	l.begin()

	var (
		collection Collection
		err        error
	)
	if query == "" {
		collection, err = l.cache.Get(ctx, remote.Href, func(ctx context.Context) (Collection, error) {
			return l.fetcher.Fetch(ctx, remote.Href, Filter{})
		})
	} else {
		collection, err = l.fetcher.Fetch(ctx, remote.Href, l.filter(query))
	}
	if err != nil {
		l.finish(false, false, nil)
		l.logger.Warn("option fetch failed",
			zap.String("key", l.field.Key),
			zap.String("href", remote.Href),
			zap.String("query", query),
			zap.Error(err),
		)
		return nil, &FetchError{Href: remote.Href, Query: query, Err: err}
	}

	complete := query == "" && collection.Complete()
	values := append([]schema.Value(nil), collection.Elements...)
	if !complete {
		values = appendMissing(values, l.current)
	}

	entries := l.entries(values)
	l.finish(true, complete, entries)
	return cloneEntries(entries), nil
}

func (l *Loader) baselineEntries() ([]model.OptionEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.fullyLoaded {
		return nil, false
	}
	return cloneEntries(l.baseline), true
}

func (l *Loader) begin() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inflight++
	l.state = StateLoading
}

// finish settles one load. A failed load leaves the state as it was before
// the load began; a fully loaded baseline is kept once reached.
func (l *Loader) finish(ok, complete bool, entries []model.OptionEntry) {
	l.mu.Lock()
	if ok {
		l.loaded = true
		if complete && !l.fullyLoaded {
			l.fullyLoaded = true
			l.baseline = cloneEntries(entries)
		}
	}
	l.inflight--
	if l.inflight == 0 {
		if l.loaded {
			l.state = StateLoaded
		} else {
			l.state = StateUnloaded
		}
	}
	l.mu.Unlock()

	if ok {
		l.readyOnce.Do(func() { close(l.ready) })
	}
}

// entries sorts values and turns them into option entries. Fields that are
// neither required nor multi-valued get exactly one placeholder at the head.
// A schema value is taken as that placeholder only when it has no href and
// its name is empty or the placeholder text; other values without an href
// are ordinary inline options.
func (l *Loader) entries(values []schema.Value) []model.OptionEntry {
	sorted := l.sorter.Sort(append([]schema.Value(nil), values...))
	text := l.placeholderText()

	out := make([]model.OptionEntry, 0, len(sorted)+1)
	optional := !l.field.Required && !l.field.MultiValue()
	if optional {
		out = append(out, model.PlaceholderEntry(text))
	}
	for _, value := range sorted {
		entry := toEntry(value)
		if entry.Href == "" && (entry.Name == "" || entry.Name == text) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func (l *Loader) placeholderText() string {
	if l.placeholder != "" {
		return l.placeholder
	}
	locale := ""
	if l.locale != nil {
		locale = l.locale()
	}
	return i18n.Text(l.translator, locale, i18n.KeyPlaceholderDefault, "-")
}

func toEntry(value schema.Value) model.OptionEntry {
	return model.OptionEntry{
		Name: sanitizeName(value.DisplayName()),
		Href: value.Href,
	}
}

// appendMissing adds every current value whose href is not already listed.
func appendMissing(values, current []schema.Value) []schema.Value {
	if len(current) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		if value.Href != "" {
			seen[value.Href] = struct{}{}
		}
	}
	for _, value := range current {
		if value.Href == "" {
			continue
		}
		if _, ok := seen[value.Href]; ok {
			continue
		}
		seen[value.Href] = struct{}{}
		values = append(values, value)
	}
	return values
}

func cloneEntries(entries []model.OptionEntry) []model.OptionEntry {
	if entries == nil {
		return nil
	}
	return append([]model.OptionEntry(nil), entries...)
}
