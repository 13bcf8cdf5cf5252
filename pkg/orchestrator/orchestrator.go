package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	internalmodel "github.com/goliatone/go-dynform/internal/model"
	"github.com/goliatone/go-dynform/pkg/groups"
	"github.com/goliatone/go-dynform/pkg/i18n"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/options"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/widgets"
)

const defaultConcurrency = 8

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry injects a widget catalogue. Locale and translator options do
// not apply to an injected registry.
func WithRegistry(registry *widgets.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithCache shares an option cache, for example across orchestrators of the
// same session.
func WithCache(cache *options.Cache) Option {
	return func(o *Orchestrator) {
		o.cache = cache
	}
}

// WithFetcher injects the remote allowed-values fetcher.
func WithFetcher(fetcher options.Fetcher) Option {
	return func(o *Orchestrator) {
		o.fetcher = fetcher
	}
}

// WithSorter injects the domain ordering of option lists.
func WithSorter(sorter options.Sorter) Option {
	return func(o *Orchestrator) {
		o.sorter = sorter
	}
}

// WithFilter overrides how option search queries become remote filters.
func WithFilter(filter options.FilterFunc) Option {
	return func(o *Orchestrator) {
		o.filter = filter
	}
}

// WithTranslator injects the label translator.
func WithTranslator(translator i18n.Translator) Option {
	return func(o *Orchestrator) {
		o.translator = translator
	}
}

// WithLocale injects the current-locale provider.
func WithLocale(locale i18n.LocaleFunc) Option {
	return func(o *Orchestrator) {
		o.locale = locale
	}
}

// WithLogger sets the logger used by the engine.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithLabeler overrides how labels are derived for fields without a name.
func WithLabeler(labeler func(string) string) Option {
	return func(o *Orchestrator) {
		o.labeler = labeler
	}
}

// WithFieldGroups registers group definitions applied to every form.
func WithFieldGroups(defs ...model.FieldGroupConfig) Option {
	return func(o *Orchestrator) {
		o.fieldGroups = append(o.fieldGroups, defs...)
	}
}

// WithGroupsFS loads JSON/YAML group definitions from fsys.
func WithGroupsFS(fsys fs.FS) Option {
	return func(o *Orchestrator) {
		o.groupsFS = fsys
	}
}

// WithSchemaTransformer registers a Transformer that rewrites normalised
// field schemas before widgets are resolved.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithDecorators registers decorators that run against the assembled field
// tree.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithConcurrency bounds the number of option lists ResolveOptions loads at
// once.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// Orchestrator coordinates the pipeline from form schema to field tree. It
// applies defaults (built-in widget catalogue, fresh option cache) while
// remaining open to dependency injection.
type Orchestrator struct {
	registry    *widgets.Registry
	cache       *options.Cache
	fetcher     options.Fetcher
	sorter      options.Sorter
	filter      options.FilterFunc
	translator  i18n.Translator
	locale      i18n.LocaleFunc
	logger      *zap.Logger
	labeler     func(string) string
	fieldGroups []model.FieldGroupConfig
	groupsFS    fs.FS
	transformer Transformer
	decorators  []model.Decorator
	concurrency int

	builder       *internalmodel.Builder
	initialiseErr error
}

// New constructs an Orchestrator applying any provided options.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{concurrency: defaultConcurrency}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.logger == nil {
		o.logger = zap.L()
	}
	if o.cache == nil {
		o.cache = options.NewCache()
	}
	if o.registry == nil {
		o.registry = widgets.NewRegistry(
			widgets.WithLocale(o.locale),
			widgets.WithTranslator(o.translator),
		)
	}

	if o.groupsFS != nil {
		defs, err := groups.LoadFS(o.groupsFS)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: load field groups: %w", err)
		} else {
			o.fieldGroups = append(o.fieldGroups, groups.Configs(defs)...)
		}
	}

	loaderOpts := []options.LoaderOption{
		options.WithCache(o.cache),
		options.WithFetcher(o.fetcher),
		options.WithSorter(o.sorter),
		options.WithFilter(o.filter),
		options.WithTranslator(o.translator),
		options.WithLocale(o.locale),
		options.WithLogger(o.logger),
	}
	o.builder = internalmodel.New(internalmodel.Options{
		Registry:      o.registry,
		LoaderOptions: loaderOpts,
		Labeler:       o.labeler,
		Logger:        o.logger,
	})
}

// Cache returns the session option cache.
func (o *Orchestrator) Cache() *options.Cache {
	return o.cache
}

// Registry returns the widget catalogue in use.
func (o *Orchestrator) Registry() *widgets.Registry {
	return o.registry
}

// GetConfig builds the field tree for doc and payload. Group definitions
// passed here win over the configured ones; without either, the schema's
// own attribute groups are used.
func (o *Orchestrator) GetConfig(ctx context.Context, doc schema.Document, payload map[string]any, defs ...model.FieldGroupConfig) ([]model.FieldConfig, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	fields := schema.Normalize(doc)
	if o.transformer != nil {
		transformed, err := o.transformer.Transform(ctx, fields)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: transform schema: %w", err)
		}
		fields = transformed
	}

	configs := o.builder.Build(fields, payload)
	configs = groups.Assemble(o.groupsFor(doc, defs), configs)

	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		decorated, err := decorator.Decorate(configs)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: decorate fields: %w", err)
		}
		configs = decorated
	}
	return configs, nil
}

// GetConfigFromJSON parses raw schema JSON and builds its field tree.
func (o *Orchestrator) GetConfigFromJSON(ctx context.Context, data []byte, payload map[string]any, defs ...model.FieldGroupConfig) ([]model.FieldConfig, error) {
	doc, err := schema.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: parse schema: %w", err)
	}
	return o.GetConfig(ctx, doc, payload, defs...)
}

// GetModel normalises a resource payload for binding into a form.
func (o *Orchestrator) GetModel(payload map[string]any) map[string]any {
	return internalmodel.FormatPayload(payload)
}

// ResolveOptions loads the unfiltered option list of every field that has
// one, concurrently, keyed by field key. The first failure cancels the rest.
func (o *Orchestrator) ResolveOptions(ctx context.Context, fields []model.FieldConfig) (map[string][]model.OptionEntry, error) {
	var sources []model.FieldConfig
	for _, field := range groups.Flatten(fields) {
		if field.Options != nil {
			sources = append(sources, field)
		}
	}

	results := make([][]model.OptionEntry, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for idx, field := range sources {
		idx, field := idx, field
		g.Go(func() error {
			entries, err := field.Options.Load(gctx, "")
			if err != nil {
				return fmt.Errorf("orchestrator: options for %s: %w", field.Key, err)
			}
			results[idx] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]model.OptionEntry, len(sources))
	for idx, field := range sources {
		out[field.Key] = results[idx]
	}
	return out, nil
}

func (o *Orchestrator) groupsFor(doc schema.Document, defs []model.FieldGroupConfig) []model.FieldGroupConfig {
	switch {
	case len(defs) > 0:
		return defs
	case len(o.fieldGroups) > 0:
		return o.fieldGroups
	default:
		return groups.FromAttributeGroups(doc.AttributeGroups)
	}
}
