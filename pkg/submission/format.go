package submission

import "github.com/goliatone/go-dynform/pkg/schema"

// FormatModel prepares a form model for submission. Every relation under
// _links is reduced to {href} (or a list of them), taking the href from the
// value itself or from its self link; unset relations become {href: nil}.
// Formatting an already formatted model returns an equal model.
func FormatModel(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for key, value := range m {
		out[key] = value
	}

	links, _ := m[string(schema.LocationLinks)].(map[string]any)
	formatted := make(map[string]any, len(links))
	for key, resource := range links {
		switch v := resource.(type) {
		case []any:
			list := make([]any, 0, len(v))
			for _, item := range v {
				list = append(list, hrefObject(item))
			}
			formatted[key] = list
		case []map[string]any:
			list := make([]any, 0, len(v))
			for _, item := range v {
				list = append(list, hrefObject(item))
			}
			formatted[key] = list
		default:
			formatted[key] = hrefObject(v)
		}
	}
	out[string(schema.LocationLinks)] = formatted
	return out
}

func hrefObject(resource any) map[string]any {
	return map[string]any{"href": hrefOf(resource)}
}

func hrefOf(resource any) any {
	m, ok := resource.(map[string]any)
	if !ok {
		return nil
	}
	if href, _ := m["href"].(string); href != "" {
		return href
	}
	if links, ok := m["_links"].(map[string]any); ok {
		if self, ok := links["self"].(map[string]any); ok {
			if href, _ := self["href"].(string); href != "" {
				return href
			}
		}
	}
	return nil
}
