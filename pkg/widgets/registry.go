package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-dynform/pkg/i18n"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// Template is the static part of a widget configuration.
type Template struct {
	Kind         string
	ClassName    string
	DefaultValue any
	Props        map[string]any
	Expressions  map[string]model.Expression
}

// Context carries the session-level collaborators templates may read.
type Context struct {
	Locale     string
	Translator i18n.Translator
}

// Text translates key for the context locale.
func (c Context) Text(key, fallback string) string {
	return i18n.Text(c.Translator, c.Locale, key, fallback)
}

// Entry maps a set of schema base types onto a widget template.
type Entry struct {
	Name  string
	Types []string
	// Template builds the widget template for the session context.
	Template func(ctx Context) Template
	// Customize returns per-field template options. A "className" entry
	// becomes the field class unless the template sets one. Optional.
	Customize func(field schema.FieldSchema, ctx Context) map[string]any
}

func (e Entry) handles(baseType string) bool {
	for _, candidate := range e.Types {
		if candidate == baseType {
			return true
		}
	}
	return false
}

// Resolution is the outcome of resolving one field.
type Resolution struct {
	Entry    string
	Template Template
	// Custom holds the per-field customisation computed by the entry.
	Custom map[string]any
}

type rule struct {
	entry    Entry
	priority int
	order    int
}

// Option customises a Registry.
type Option func(*Registry)

// WithLocale sets the locale handed to templates (numeric inputs use it).
func WithLocale(locale i18n.LocaleFunc) Option {
	return func(r *Registry) {
		r.locale = locale
	}
}

// WithTranslator sets the translator handed to templates.
func WithTranslator(translator i18n.Translator) Option {
	return func(r *Registry) {
		r.translator = translator
	}
}

// WithoutBuiltins starts from an empty catalogue.
func WithoutBuiltins() Option {
	return func(r *Registry) {
		r.skipBuiltins = true
	}
}

// Registry is the ordered widget catalogue. Higher priority wins; ties fall
// back to registration order. The first entry handling a field's base type
// is used.
type Registry struct {
	mu    sync.RWMutex
	rules []rule

	locale       i18n.LocaleFunc
	translator   i18n.Translator
	skipBuiltins bool
}

// NewRegistry constructs a registry with the built-in catalogue registered at
// priority 0.
func NewRegistry(opts ...Option) *Registry {
	reg := &Registry{}
	for _, opt := range opts {
		if opt != nil {
			opt(reg)
		}
	}
	if !reg.skipBuiltins {
		reg.registerBuiltins()
	}
	return reg
}

// Register adds an entry. Entries without a name, types or template are
// ignored.
func (r *Registry) Register(priority int, entry Entry) {
	if r == nil || entry.Template == nil || len(entry.Types) == 0 {
		return
	}
	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		entry:    entry,
		priority: priority,
		order:    len(r.rules),
	})
}

// Names lists the registered entry names in resolution order.
func (r *Registry) Names() []string {
	rules := r.sorted()
	names := make([]string, 0, len(rules))
	for _, entry := range rules {
		names = append(names, entry.entry.Name)
	}
	return names
}

// Context returns the session context templates are built with.
func (r *Registry) Context() Context {
	ctx := Context{}
	if r == nil {
		return ctx
	}
	if r.locale != nil {
		ctx.Locale = r.locale()
	}
	ctx.Translator = r.translator
	return ctx
}

// Resolve picks the widget for field by its base type.
func (r *Registry) Resolve(field schema.FieldSchema) (Resolution, bool) {
	baseType := field.BaseType()
	if baseType == "" {
		return Resolution{}, false
	}
	for _, candidate := range r.sorted() {
		if !candidate.entry.handles(baseType) {
			continue
		}
		ctx := r.Context()
		res := Resolution{
			Entry:    candidate.entry.Name,
			Template: candidate.entry.Template(ctx),
		}
		if candidate.entry.Customize != nil {
			res.Custom = candidate.entry.Customize(field, ctx)
		}
		return res, true
	}
	return Resolution{}, false
}

func (r *Registry) sorted() []rule {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	return rules
}
