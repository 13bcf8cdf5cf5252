package model

import (
	"strings"
	"unicode"
)

// DefaultLabeler turns an attribute name such as "dueDate" or
// "estimated_time" into "Due Date" / "Estimated Time". It is only used when
// the schema carries no display name.
func DefaultLabeler(name string) string {
	var (
		words   []string
		current []rune
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		word := current
		word[0] = unicode.ToUpper(word[0])
		words = append(words, string(word))
		current = nil
	}

	runes := []rune(strings.TrimSpace(name))
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
			continue
		case i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]):
			flush()
		case i > 0 && unicode.IsDigit(r) != unicode.IsDigit(runes[i-1]) && len(current) > 0:
			flush()
		}
		current = append(current, r)
	}
	flush()
	return strings.Join(words, " ")
}
