package prompt

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/groups"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/widgets"
)

// DateLayout is the only accepted date input format.
const DateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Option configures a Filler.
type Option func(*Filler)

// WithDriver overrides the prompt driver.
func WithDriver(driver Driver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithLogger sets the logger used for skipped fields.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithPageSize sets how many options a select shows at once.
func WithPageSize(n int) Option {
	return func(f *Filler) {
		f.pageSize = n
	}
}

// Filler asks for every visible field of a tree and stores the answers in a
// form.
type Filler struct {
	driver   Driver
	logger   *zap.Logger
	pageSize int
}

// New constructs a Filler with the survey driver by default.
func New(opts ...Option) *Filler {
	f := &Filler{driver: NewSurveyDriver(), logger: zap.L(), pageSize: 10}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Fill prompts for each visible field in order. Current control values are
// offered as defaults and control errors are shown before the prompt.
func (f *Filler) Fill(ctx context.Context, fields []model.FieldConfig, target *form.Form) error {
	if ctx == nil {
		return errors.New("prompt: context is required")
	}
	if f.driver == nil {
		return ErrNoDriver
	}
	if target == nil {
		return errors.New("prompt: form is nil")
	}

	for _, field := range groups.Flatten(fields) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if field.Hide || field.Key == "" {
			continue
		}
		for _, detail := range target.Get(field.Key).Errors() {
			_ = f.driver.Notify(ctx, fmt.Sprintf("%s: %s", label(field), detail.Message))
		}
		value, ok, err := f.ask(ctx, field, target.Get(field.Key).Value())
		if err != nil {
			return fmt.Errorf("prompt: %s: %w", field.Key, err)
		}
		if !ok {
			continue
		}
		target.SetValue(field.Key, value)
	}
	return nil
}

func (f *Filler) ask(ctx context.Context, field model.FieldConfig, current any) (any, bool, error) {
	switch field.WidgetType {
	case widgets.KindText:
		kind, _ := field.Props["type"].(string)
		v, err := f.driver.Text(ctx, TextPrompt{
			Label:    label(field),
			Default:  stringValue(current),
			Secret:   kind == "password",
			Validate: textValidator(field),
		})
		return v, err == nil, err
	case widgets.KindInteger:
		return f.askNumber(ctx, field, current)
	case widgets.KindBoolean:
		def, _ := current.(bool)
		v, err := f.driver.Confirm(ctx, label(field), def)
		return v, err == nil, err
	case widgets.KindDate:
		v, err := f.driver.Text(ctx, TextPrompt{
			Label:    label(field),
			Default:  stringValue(current),
			Help:     "YYYY-MM-DD",
			Validate: dateValidator(field.Required),
		})
		if err != nil {
			return nil, false, err
		}
		if strings.TrimSpace(v) == "" {
			return nil, true, nil
		}
		return v, true, nil
	case widgets.KindFormattable:
		raw := ""
		if m, ok := current.(map[string]any); ok {
			raw = stringValue(m["raw"])
		}
		v, err := f.driver.Text(ctx, TextPrompt{Label: label(field), Default: raw, Multiline: true})
		if err != nil {
			return nil, false, err
		}
		return map[string]any{"raw": v}, true, nil
	case widgets.KindSelect, widgets.KindSelectProjectStatus:
		return f.askSelect(ctx, field, current)
	default:
		f.logger.Debug("prompt: no prompt for widget",
			zap.String("key", field.Key),
			zap.String("widget", field.WidgetType),
		)
		return nil, false, nil
	}
}

func (f *Filler) askNumber(ctx context.Context, field model.FieldConfig, current any) (any, bool, error) {
	def := ""
	if current != nil {
		def = fmt.Sprint(current)
	}
	for {
		input, err := f.driver.Text(ctx, TextPrompt{Label: label(field), Default: def})
		if err != nil {
			return nil, false, err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			if field.Required {
				_ = f.driver.Notify(ctx, fmt.Sprintf("Invalid %s: required", field.Key))
				continue
			}
			return nil, true, nil
		}
		if i, err := strconv.ParseInt(input, 10, 64); err == nil {
			return i, true, nil
		}
		n, err := strconv.ParseFloat(input, 64)
		if err != nil {
			_ = f.driver.Notify(ctx, fmt.Sprintf("Invalid %s: not a number", field.Key))
			continue
		}
		return n, true, nil
	}
}

// askSelect offers the field's allowed values. Relations are stored as
// {href, title}, inline values as their name and the placeholder as nil.
func (f *Filler) askSelect(ctx context.Context, field model.FieldConfig, current any) (any, bool, error) {
	if field.Options == nil {
		return nil, false, nil
	}
	entries, err := field.Options.Load(ctx, "")
	if err != nil {
		return nil, false, err
	}
	if len(entries) == 0 {
		_ = f.driver.Notify(ctx, fmt.Sprintf("%s: no values available", label(field)))
		return nil, false, nil
	}

	multiple := field.BoolProp("multiple")
	chosen, err := f.driver.Choose(ctx, ChoicePrompt{
		Label:    label(field),
		Entries:  entries,
		Selected: selectedEntries(entries, current),
		Multiple: multiple,
		PageSize: f.pageSize,
	})
	if err != nil {
		return nil, false, err
	}

	if multiple {
		out := make([]any, 0, len(chosen))
		for _, entry := range chosen {
			if !entry.Placeholder() {
				out = append(out, entry.Value())
			}
		}
		return out, true, nil
	}
	if len(chosen) == 0 {
		return nil, true, nil
	}
	return chosen[0].Value(), true, nil
}

// selectedEntries finds the entries matching the stored value: links by
// href, inline values by name.
func selectedEntries(entries []model.OptionEntry, current any) []model.OptionEntry {
	hrefs := make(map[string]struct{})
	names := make(map[string]struct{})
	collect := func(v any) {
		switch item := v.(type) {
		case map[string]any:
			if href, ok := item["href"].(string); ok && href != "" {
				hrefs[href] = struct{}{}
			}
		case string:
			if item != "" {
				names[item] = struct{}{}
			}
		}
	}
	if list, ok := current.([]any); ok {
		for _, item := range list {
			collect(item)
		}
	} else {
		collect(current)
	}

	var out []model.OptionEntry
	for _, entry := range entries {
		if entry.Placeholder() {
			continue
		}
		if entry.Href != "" {
			if _, ok := hrefs[entry.Href]; ok {
				out = append(out, entry)
			}
			continue
		}
		if _, ok := names[entry.Name]; ok {
			out = append(out, entry)
		}
	}
	return out
}

func textValidator(field model.FieldConfig) func(string) error {
	return func(value string) error {
		n := utf8.RuneCountInString(value)
		if n == 0 {
			if field.Required {
				return errors.New("required")
			}
			return nil
		}
		if field.MinLength != nil && n < *field.MinLength {
			return fmt.Errorf("must be at least %d characters", *field.MinLength)
		}
		if field.MaxLength != nil && n > *field.MaxLength {
			return fmt.Errorf("must be at most %d characters", *field.MaxLength)
		}
		return nil
	}
}

// dateValidator accepts only calendar dates written as YYYY-MM-DD.
func dateValidator(required bool) func(string) error {
	return func(value string) error {
		value = strings.TrimSpace(value)
		if value == "" {
			if required {
				return errors.New("required")
			}
			return nil
		}
		return ValidateDate(value)
	}
}

// ValidateDate reports whether value is a real calendar date in DateLayout.
func ValidateDate(value string) error {
	if !datePattern.MatchString(value) {
		return fmt.Errorf("%q is not in YYYY-MM-DD format", value)
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return fmt.Errorf("%q is not a valid date", value)
	}
	return nil
}

func label(field model.FieldConfig) string {
	text := field.Label
	if text == "" {
		text = field.Key
	}
	if field.Required {
		text += " *"
	}
	return text
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
