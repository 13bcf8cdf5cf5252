// Package i18n holds the label and locale collaborators the engine consumes:
// placeholder text, action labels and the locale hint passed into numeric
// widget templates.
package i18n

import (
	"errors"
	"fmt"
	"strings"
)

// Well known translation keys used by the engine.
const (
	KeyPlaceholderDefault   = "js.placeholders.default"
	KeyPlaceholderSelection = "js.placeholders.selection"
	KeyLabelCreate          = "js.label_create"
)

// ErrMissingTranslator is reported to MissingHandler when no translator is
// configured.
var ErrMissingTranslator = errors.New("i18n: translator is not configured")

// ErrMissingTranslation is returned by MapTranslator for unknown keys.
var ErrMissingTranslation = errors.New("i18n: missing translation")

// Translator resolves a key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate calls the underlying function.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingHandler decides what text to use when a translation is missing.
type MissingHandler func(locale, key, fallback string, err error) string

// LocaleFunc returns the locale of the current session.
type LocaleFunc func() string

// StaticLocale returns a LocaleFunc that always reports locale.
func StaticLocale(locale string) LocaleFunc {
	return func() string { return locale }
}

// MapTranslator is an in-memory Translator keyed by locale, then key. Keys
// missing from the requested locale fall back to the "" locale bucket.
// Arguments are applied with fmt.Sprintf when present.
type MapTranslator map[string]map[string]string

// Translate implements Translator.
func (m MapTranslator) Translate(locale, key string, args ...any) (string, error) {
	for _, candidate := range []string{locale, baseLocale(locale), ""} {
		bucket, ok := m[candidate]
		if !ok {
			continue
		}
		if msg, ok := bucket[key]; ok {
			if len(args) > 0 {
				return fmt.Sprintf(msg, args...), nil
			}
			return msg, nil
		}
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrMissingTranslation, key, locale)
}

// Defaults carries the built-in English texts so the engine renders sensible
// labels without a configured translator.
var Defaults = MapTranslator{
	"": {
		KeyPlaceholderDefault:   "-",
		KeyPlaceholderSelection: "Please select",
		KeyLabelCreate:          "Create",
	},
}

// Text translates key, falling back to the built-in defaults, then to
// fallback, then to the key itself.
func Text(t Translator, locale, key, fallback string) string {
	return TextWith(t, locale, key, fallback, nil)
}

// TextWith is Text with an explicit missing-translation handler.
func TextWith(t Translator, locale, key, fallback string, onMissing MissingHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	var err error
	if t != nil {
		var msg string
		msg, err = t.Translate(locale, key)
		if err == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
	} else {
		err = ErrMissingTranslator
	}

	if onMissing != nil {
		return onMissing(locale, key, fallback, err)
	}
	if msg, derr := Defaults.Translate(locale, key); derr == nil {
		return msg
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

func baseLocale(locale string) string {
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		return locale[:idx]
	}
	return locale
}
