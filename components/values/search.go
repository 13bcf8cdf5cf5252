package values

import (
	"sort"
	"strings"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// Query selects one page of a value list. Text filters by display name.
type Query struct {
	Text   string
	Offset int
	Limit  int
}

// Page is one slice of a search result.
type Page struct {
	Elements []schema.Value
	Total    int
	Offset   int
	Limit    int
}

// Search filters values by display name and returns the requested page. An
// empty text matches everything in list order; otherwise prefix matches come
// before substring matches, each alphabetical. A limit below one yields an
// empty page that still reports the total.
func Search(values []schema.Value, q Query) Page {
	offset, limit := q.Offset, q.Limit
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	matches := filter(values, strings.TrimSpace(q.Text))
	page := Page{Total: len(matches), Offset: offset, Limit: limit}
	if limit == 0 || offset >= len(matches) {
		page.Elements = []schema.Value{}
		return page
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	page.Elements = append([]schema.Value{}, matches[offset:end]...)
	return page
}

func filter(values []schema.Value, query string) []schema.Value {
	if query == "" {
		return values
	}

	q := strings.ToLower(query)
	matches := make([]matchedValue, 0, 32)
	for _, value := range values {
		name := strings.ToLower(value.DisplayName())
		if !strings.Contains(name, q) {
			continue
		}
		matches = append(matches, matchedValue{
			value:    value,
			name:     name,
			isPrefix: strings.HasPrefix(name, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].name < matches[j].name
	})

	out := make([]schema.Value, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.value)
	}
	return out
}

type matchedValue struct {
	value    schema.Value
	name     string
	isPrefix bool
}
