package model

import (
	"github.com/goliatone/go-dynform/pkg/schema"
)

// PayloadValue returns the current resource value for field. Relation and
// meta attributes are read from their namespace first; a bare property at the
// top level is accepted as a fallback.
func PayloadValue(payload map[string]any, field schema.FieldSchema) any {
	if len(payload) == 0 {
		return nil
	}
	property := field.Property()
	switch field.Location {
	case schema.LocationLinks, schema.LocationMeta:
		if ns, ok := payload[string(field.Location)].(map[string]any); ok {
			if value, ok := ns[property]; ok && isValue(value) {
				return value
			}
		}
	}
	if value, ok := payload[property]; ok && isValue(value) {
		return value
	}
	return nil
}

// CurrentValues extracts the referenced resources from a relation payload
// value, which is either one link object or a list of them.
func CurrentValues(payloadValue any) []schema.Value {
	switch v := payloadValue.(type) {
	case map[string]any:
		if value, ok := schema.ValueFromMap(v); ok {
			return []schema.Value{value}
		}
	case []any:
		var out []schema.Value
		for _, item := range v {
			resource, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if value, ok := schema.ValueFromMap(resource); ok {
				out = append(out, value)
			}
		}
		return out
	}
	return nil
}

// FormatPayload normalises a resource payload into the live form model:
// empty scalars are dropped, _meta is kept as is, and _links keeps only
// resources carrying an href, with name filled from title so option widgets
// can label them.
func FormatPayload(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload)+1)
	for key, value := range payload {
		switch key {
		case string(schema.LocationLinks), string(schema.LocationMeta):
			continue
		}
		if isValue(value) {
			out[key] = value
		}
	}
	if meta, ok := payload[string(schema.LocationMeta)]; ok && meta != nil {
		out[string(schema.LocationMeta)] = meta
	}

	links, _ := payload[string(schema.LocationLinks)].(map[string]any)
	formatted := make(map[string]any, len(links))
	for key, resource := range links {
		switch v := resource.(type) {
		case []any:
			list := make([]any, 0, len(v))
			for _, item := range v {
				if named, ok := namedResource(item); ok {
					list = append(list, named)
				}
			}
			formatted[key] = list
		default:
			if named, ok := namedResource(v); ok {
				formatted[key] = named
			}
		}
	}
	out[string(schema.LocationLinks)] = formatted
	return out
}

func namedResource(resource any) (map[string]any, bool) {
	m, ok := resource.(map[string]any)
	if !ok {
		return nil, false
	}
	if href, _ := m["href"].(string); href == "" {
		return nil, false
	}
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	if name, _ := out["name"].(string); name == "" {
		if title, _ := m["title"].(string); title != "" {
			out["name"] = title
		}
	}
	return out, true
}

func isValue(value any) bool {
	if value == nil {
		return false
	}
	if s, ok := value.(string); ok && s == "" {
		return false
	}
	return true
}
