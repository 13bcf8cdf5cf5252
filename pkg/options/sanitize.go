package options

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	namePolicyOnce sync.Once
	namePolicy     *bluemonday.Policy
)

// sanitizeName strips markup from option names; options are plain text.
func sanitizeName(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	namePolicyOnce.Do(func() {
		namePolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(namePolicy.Sanitize(trimmed)))
}
