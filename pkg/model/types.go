package model

import (
	"context"
	"encoding/json"
)

// GroupWidgetType marks FieldConfig nodes that wrap other fields.
const GroupWidgetType = "fieldGroup"

// Class names and wrappers attached to assembled nodes.
const (
	FieldClassName      = "dynform--field"
	FieldWrapper        = "dynform-field-wrapper"
	GroupClassName      = "dynform--fieldset"
	GroupWrapper        = "dynform-field-group-wrapper"
	CollapsedExpression = "templateOptions.collapsibleFieldGroupsCollapsed"
)

// OptionEntry is a selectable entry exposed to select-like widgets. Entries
// of relation-typed fields carry the related resource's Href; plain inline
// values (for example "low") have none. The "no selection" entry is marked
// by Blank and never carries an Href.
type OptionEntry struct {
	Name  string `json:"name"`
	Href  string `json:"href"`
	Blank bool   `json:"-"`
}

// PlaceholderEntry returns the "no selection" entry labelled name.
func PlaceholderEntry(name string) OptionEntry {
	return OptionEntry{Name: name, Blank: true}
}

// Placeholder reports whether the entry represents "no selection".
func (e OptionEntry) Placeholder() bool {
	return e.Blank
}

// Value returns what selecting the entry stores in the model: a link
// object for relations, the plain name for inline values and nil for the
// placeholder.
func (e OptionEntry) Value() any {
	switch {
	case e.Blank:
		return nil
	case e.Href == "":
		return e.Name
	default:
		return map[string]any{"href": e.Href, "title": e.Name}
	}
}

// MarshalJSON emits a null href for entries without one and flags the
// placeholder.
func (e OptionEntry) MarshalJSON() ([]byte, error) {
	type wire struct {
		Name        string  `json:"name"`
		Href        *string `json:"href"`
		Placeholder bool    `json:"placeholder,omitempty"`
	}
	out := wire{Name: e.Name, Placeholder: e.Blank}
	if e.Href != "" && !e.Blank {
		href := e.Href
		out.Href = &href
	}
	return json.Marshal(out)
}

// OptionSource lazily produces the option list for one field. Load does no
// work until it is called; Ready is closed once the first load succeeded.
type OptionSource interface {
	Load(ctx context.Context, query string) ([]OptionEntry, error)
	Ready() <-chan struct{}
}

// ExpressionContext carries the live form state an Expression may read.
type ExpressionContext struct {
	Model     map[string]any
	Field     *FieldConfig
	Submitted bool
	// Invalid reports whether the control addressed by key currently holds
	// validation errors. Nil means no control is in error.
	Invalid func(key string) bool
}

// IsInvalid is a nil-safe wrapper around Invalid.
func (c ExpressionContext) IsInvalid(key string) bool {
	if c.Invalid == nil {
		return false
	}
	return c.Invalid(key)
}

// Expression computes a property from the live form state.
type Expression func(ctx ExpressionContext) any

// FieldConfig is one node of the renderable field tree.
type FieldConfig struct {
	Key          string         `json:"key,omitempty"`
	WidgetType   string         `json:"type,omitempty"`
	ClassName    string         `json:"className,omitempty"`
	Wrappers     []string       `json:"wrappers,omitempty"`
	Property     string         `json:"property,omitempty"`
	Required     bool           `json:"required,omitempty"`
	Label        string         `json:"label,omitempty"`
	HasDefault   bool           `json:"hasDefault,omitempty"`
	PayloadValue any            `json:"payloadValue,omitempty"`
	MinLength    *int           `json:"minLength,omitempty"`
	MaxLength    *int           `json:"maxLength,omitempty"`
	DefaultValue any            `json:"defaultValue,omitempty"`
	Props        map[string]any `json:"templateOptions,omitempty"`
	Hide         bool           `json:"hide,omitempty"`

	Options     OptionSource          `json:"-"`
	Expressions map[string]Expression `json:"-"`

	FieldGroup          []FieldConfig `json:"fieldGroup,omitempty"`
	FieldGroupClassName string        `json:"fieldGroupClassName,omitempty"`
}

// IsGroup reports whether the node wraps other fields.
func (f FieldConfig) IsGroup() bool {
	return f.WidgetType == GroupWidgetType || len(f.FieldGroup) > 0
}

// Prop returns a template option by name.
func (f FieldConfig) Prop(name string) (any, bool) {
	if f.Props == nil {
		return nil, false
	}
	value, ok := f.Props[name]
	return value, ok
}

// BoolProp returns a boolean template option, false when absent.
func (f FieldConfig) BoolProp(name string) bool {
	value, _ := f.Prop(name)
	b, _ := value.(bool)
	return b
}

// Evaluate runs every expression of the node against ctx and returns the
// computed properties keyed by expression name.
func (f FieldConfig) Evaluate(ctx ExpressionContext) map[string]any {
	if len(f.Expressions) == 0 {
		return nil
	}
	if ctx.Field == nil {
		ctx.Field = &f
	}
	out := make(map[string]any, len(f.Expressions))
	for name, expr := range f.Expressions {
		if expr == nil {
			continue
		}
		out[name] = expr(ctx)
	}
	return out
}

// GroupSettings overrides the defaults applied to an assembled group node.
type GroupSettings struct {
	Props       map[string]any        `json:"templateOptions,omitempty" yaml:"templateOptions,omitempty"`
	Expressions map[string]Expression `json:"-" yaml:"-"`
}

// FieldGroupConfig defines a group externally. A nil Filter matches every
// field.
type FieldGroupConfig struct {
	Name     string
	Filter   func(FieldConfig) bool
	Settings *GroupSettings
}

// Matches applies the group filter to field.
func (g FieldGroupConfig) Matches(field FieldConfig) bool {
	if g.Filter == nil {
		return true
	}
	return g.Filter(field)
}

// ValidationError is a server-side validation message addressed to a form key.
type ValidationError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// ErrorDetail is the payload attached to a form control for one error.
type ErrorDetail struct {
	Message string `json:"message"`
}
