package widgets

import (
	"github.com/goliatone/go-dynform/pkg/i18n"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// Built-in widget kinds.
const (
	KindText                = "textInput"
	KindInteger             = "integerInput"
	KindBoolean             = "booleanInput"
	KindDate                = "dateInput"
	KindFormattable         = "formattableInput"
	KindSelect              = "selectInput"
	KindSelectProjectStatus = "selectProjectStatusInput"
)

// Built-in entry names.
const (
	EntryText                = "text"
	EntryPassword            = "password"
	EntryInteger             = "integer"
	EntryBoolean             = "boolean"
	EntryDate                = "date"
	EntryFormattable         = "formattable"
	EntrySelect              = "select"
	EntrySelectProjectStatus = "select-project-status"
)

// ClearableExpression is the expression key toggling the clear button of
// select widgets.
const ClearableExpression = "templateOptions.clearable"

// SelectTypes lists the resource types rendered as searchable selects.
var SelectTypes = []string{
	"Priority", "Status", "Type", "User", "Version", "TimeEntriesActivity",
	"Category", "CustomOption", "Project",
}

func (r *Registry) registerBuiltins() {
	r.Register(0, Entry{
		Name:  EntryText,
		Types: []string{"String"},
		Template: func(Context) Template {
			return Template{Kind: KindText, Props: map[string]any{"type": "text"}}
		},
	})

	r.Register(0, Entry{
		Name:  EntryPassword,
		Types: []string{"Password"},
		Template: func(Context) Template {
			return Template{Kind: KindText, Props: map[string]any{"type": "password"}}
		},
	})

	r.Register(0, Entry{
		Name:  EntryInteger,
		Types: []string{"Integer", "Float"},
		Template: func(ctx Context) Template {
			return Template{
				Kind:  KindInteger,
				Props: map[string]any{"type": "number", "locale": ctx.Locale},
			}
		},
		Customize: selectCustomizer,
	})

	r.Register(0, Entry{
		Name:  EntryBoolean,
		Types: []string{"Boolean"},
		Template: func(Context) Template {
			return Template{Kind: KindBoolean, Props: map[string]any{"type": "checkbox"}}
		},
	})

	r.Register(0, Entry{
		Name:  EntryDate,
		Types: []string{"Date", "DateTime"},
		Template: func(Context) Template {
			return Template{Kind: KindDate}
		},
	})

	r.Register(0, Entry{
		Name:  EntryFormattable,
		Types: []string{"Formattable"},
		Template: func(Context) Template {
			return Template{
				Kind:  KindFormattable,
				Props: map[string]any{"editorType": "full", "noWrapLabel": true},
			}
		},
		Customize: func(field schema.FieldSchema, _ Context) map[string]any {
			props := map[string]any{"name": field.Name}
			if rtl, ok := field.Options["rtl"]; ok {
				props["rtl"] = rtl
			}
			return props
		},
	})

	r.Register(0, Entry{
		Name:  EntrySelect,
		Types: SelectTypes,
		Template: func(ctx Context) Template {
			return Template{
				Kind:         KindSelect,
				DefaultValue: selectDefault(ctx),
				Props: map[string]any{
					"type":             "number",
					"locale":           ctx.Locale,
					"bindLabel":        "name",
					"searchable":       true,
					"virtualScroll":    true,
					"clearOnBackspace": false,
					"clearSearchOnAdd": false,
					"hideSelected":     false,
					"text": map[string]any{
						"add_new_action": ctx.Text(i18n.KeyLabelCreate, "Create"),
					},
				},
				Expressions: map[string]model.Expression{ClearableExpression: clearable},
			}
		},
		Customize: selectCustomizer,
	})

	r.Register(0, Entry{
		Name:  EntrySelectProjectStatus,
		Types: []string{"ProjectStatus"},
		Template: func(ctx Context) Template {
			return Template{
				Kind:         KindSelectProjectStatus,
				DefaultValue: selectDefault(ctx),
				Props: map[string]any{
					"type":       "number",
					"locale":     ctx.Locale,
					"bindLabel":  "name",
					"searchable": true,
				},
				Expressions: map[string]model.Expression{ClearableExpression: clearable},
			}
		},
		Customize: selectCustomizer,
	})
}

// selectCustomizer applies the per-field options shared by numeric and
// select widgets.
func selectCustomizer(field schema.FieldSchema, _ Context) map[string]any {
	props := map[string]any{"className": field.Name}
	if field.MultiValue() {
		props["multiple"] = true
	}
	if field.BaseType() == "User" {
		props["showAddNewUserButton"] = true
	}
	return props
}

func selectDefault(ctx Context) model.OptionEntry {
	return model.PlaceholderEntry(ctx.Text(i18n.KeyPlaceholderDefault, "-"))
}

func clearable(ctx model.ExpressionContext) any {
	if ctx.Field == nil {
		return true
	}
	return !ctx.Field.Required
}
