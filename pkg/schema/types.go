package schema

import "strings"

// Location identifies the payload namespace an attribute lives under.
type Location string

const (
	LocationAttribute Location = "attribute"
	LocationLinks     Location = "_links"
	LocationMeta      Location = "_meta"
)

// MultiValueMarker prefixes the type of attributes that accept several values
// (for example "[]User").
const MultiValueMarker = "[]"

// Value is a single selectable value advertised by a schema or fetched from a
// remote collection.
type Value struct {
	Name       string         `json:"name,omitempty"`
	Href       string         `json:"href,omitempty"`
	Title      string         `json:"title,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// DisplayName prefers the self-link title, falling back to the plain name.
func (v Value) DisplayName() string {
	if title := strings.TrimSpace(v.Title); title != "" {
		return title
	}
	return v.Name
}

// AllowedValues is the source of selectable values for a field. It is either
// InlineValues or RemoteValues.
type AllowedValues interface {
	allowedValues()
}

// InlineValues lists every allowed value directly in the schema.
type InlineValues []Value

func (InlineValues) allowedValues() {}

// RemoteValues points at a paginated collection that must be fetched.
type RemoteValues struct {
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
}

func (RemoteValues) allowedValues() {}

// FieldSchema is the normalised description of one editable attribute.
type FieldSchema struct {
	Key           string         `json:"key"`
	Attribute     string         `json:"attribute"`
	Type          string         `json:"type"`
	Name          string         `json:"name,omitempty"`
	Required      bool           `json:"required"`
	HasDefault    bool           `json:"hasDefault"`
	Writable      bool           `json:"writable"`
	MinLength     *int           `json:"minLength,omitempty"`
	MaxLength     *int           `json:"maxLength,omitempty"`
	Location      Location       `json:"location,omitempty"`
	AllowedValues AllowedValues  `json:"-"`
	Options       map[string]any `json:"options,omitempty"`
}

// BaseType returns the declared type with the multi-value marker stripped.
func (f FieldSchema) BaseType() string {
	return strings.Replace(f.Type, MultiValueMarker, "", 1)
}

// MultiValue reports whether the attribute accepts several values.
func (f FieldSchema) MultiValue() bool {
	return strings.HasPrefix(f.Type, MultiValueMarker)
}

// Property maps a namespaced key such as "_links.assignee" back to the bare
// attribute name.
func (f FieldSchema) Property() string {
	return PropertyOf(f.Key)
}

// PropertyOf returns the last dotted segment of key.
func PropertyOf(key string) string {
	if idx := strings.LastIndex(key, "."); idx >= 0 {
		return key[idx+1:]
	}
	return key
}

// KeyFor derives the namespaced form key for an attribute.
func KeyFor(location Location, attribute string) string {
	switch location {
	case LocationLinks, LocationMeta:
		return string(location) + "." + attribute
	default:
		return attribute
	}
}

// AttributeGroup is a schema-supplied grouping of attribute names.
type AttributeGroup struct {
	Name       string   `json:"name"`
	Attributes []string `json:"attributes,omitempty"`
}
