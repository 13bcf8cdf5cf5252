package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type rawField struct {
	Type          string          `json:"type"`
	Name          string          `json:"name"`
	Required      bool            `json:"required"`
	HasDefault    bool            `json:"hasDefault"`
	Writable      bool            `json:"writable"`
	MinLength     *int            `json:"minLength"`
	MaxLength     *int            `json:"maxLength"`
	Location      string          `json:"location"`
	Options       map[string]any  `json:"options"`
	AllowedValues json.RawMessage `json:"allowedValues"`
	Embedded      struct {
		AllowedValues json.RawMessage `json:"allowedValues"`
	} `json:"_embedded"`
	Links struct {
		AllowedValues json.RawMessage `json:"allowedValues"`
	} `json:"_links"`
}

type rawValue struct {
	Name  string `json:"name"`
	Href  string `json:"href"`
	Title string `json:"title"`
	Links struct {
		Self struct {
			Href  string `json:"href"`
			Title string `json:"title"`
		} `json:"self"`
	} `json:"_links"`
}

// Normalize turns the document entries into field descriptors. Entries that
// are not field descriptors (no type) and read-only attributes are skipped
// silently. Input order is preserved; when two entries derive the same key
// the first one wins.
func Normalize(doc Document) []FieldSchema {
	fields := make([]FieldSchema, 0, len(doc.Entries))
	seen := make(map[string]struct{}, len(doc.Entries))

	for _, entry := range doc.Entries {
		field, ok := normalizeEntry(entry)
		if !ok || !field.Writable {
			continue
		}
		if _, exists := seen[field.Key]; exists {
			continue
		}
		seen[field.Key] = struct{}{}
		fields = append(fields, field)
	}
	return fields
}

func normalizeEntry(entry Entry) (FieldSchema, bool) {
	trimmed := bytes.TrimSpace(entry.Raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return FieldSchema{}, false
	}

	var raw rawField
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return FieldSchema{}, false
	}
	if raw.Type == "" {
		return FieldSchema{}, false
	}

	location := resolveLocation(raw.Location, entry.Location)
	return FieldSchema{
		Key:        KeyFor(location, entry.Name),
		Attribute:  entry.Name,
		Type:       raw.Type,
		Name:       raw.Name,
		Required:   raw.Required,
		HasDefault: raw.HasDefault,
		Writable:   raw.Writable,
		MinLength:  raw.MinLength,
		MaxLength:  raw.MaxLength,
		Location:   location,
		Options:    raw.Options,
		AllowedValues: parseAllowedValues(
			raw.Embedded.AllowedValues,
			raw.Links.AllowedValues,
			raw.AllowedValues,
		),
	}, true
}

func resolveLocation(declared string, parent Location) Location {
	switch Location(declared) {
	case LocationLinks, LocationMeta, LocationAttribute:
		return Location(declared)
	}
	if parent != "" {
		return parent
	}
	return LocationAttribute
}

func parseAllowedValues(candidates ...json.RawMessage) AllowedValues {
	for _, candidate := range candidates {
		trimmed := bytes.TrimSpace(candidate)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			continue
		}
		switch trimmed[0] {
		case '[':
			if values, ok := parseInlineValues(trimmed); ok {
				return values
			}
		case '{':
			var link RemoteValues
			if err := json.Unmarshal(trimmed, &link); err == nil && link.Href != "" {
				return link
			}
		}
	}
	return nil
}

func parseInlineValues(data []byte) (InlineValues, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}

	values := make(InlineValues, 0, len(items))
	for _, item := range items {
		value, ok := parseValue(item)
		if !ok {
			continue
		}
		values = append(values, value)
	}
	return values, true
}

func parseValue(data json.RawMessage) (Value, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Value{}, false
	}

	if trimmed[0] != '{' {
		var scalar any
		if err := json.Unmarshal(trimmed, &scalar); err != nil || scalar == nil {
			return Value{}, false
		}
		return Value{Name: fmt.Sprint(scalar)}, true
	}

	return DecodeValue(trimmed)
}

// DecodeValue decodes one HAL resource or link object into a Value. The
// identity comes from href, falling back to the self link; the self link
// title is kept as the display title.
func DecodeValue(data []byte) (Value, bool) {
	var raw rawValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return Value{}, false
	}
	var attributes map[string]any
	if err := json.Unmarshal(data, &attributes); err != nil {
		return Value{}, false
	}

	value := Value{
		Name:       raw.Name,
		Href:       raw.Href,
		Title:      raw.Links.Self.Title,
		Attributes: attributes,
	}
	if value.Href == "" {
		value.Href = raw.Links.Self.Href
	}
	if value.Title == "" {
		value.Title = raw.Title
	}
	return value, true
}

// ValueFromMap converts an already decoded resource (for example a payload
// link such as {"href": "/api/users/3", "title": "Jane"}) into a Value.
func ValueFromMap(resource map[string]any) (Value, bool) {
	if resource == nil {
		return Value{}, false
	}
	value := Value{
		Name:       stringOf(resource["name"]),
		Href:       stringOf(resource["href"]),
		Title:      stringOf(resource["title"]),
		Attributes: resource,
	}
	if links, ok := resource["_links"].(map[string]any); ok {
		if self, ok := links["self"].(map[string]any); ok {
			if value.Href == "" {
				value.Href = stringOf(self["href"])
			}
			if title := stringOf(self["title"]); title != "" {
				value.Title = title
			}
		}
	}
	if value.Href == "" && value.Name == "" && value.Title == "" {
		return Value{}, false
	}
	return value, true
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}
