package widgets

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/i18n"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/schema"
)

func TestResolve_Builtins(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name      string
		fieldType string
		entry     string
		kind      string
	}{
		{name: "string", fieldType: "String", entry: EntryText, kind: KindText},
		{name: "password", fieldType: "Password", entry: EntryPassword, kind: KindText},
		{name: "integer", fieldType: "Integer", entry: EntryInteger, kind: KindInteger},
		{name: "float", fieldType: "Float", entry: EntryInteger, kind: KindInteger},
		{name: "boolean", fieldType: "Boolean", entry: EntryBoolean, kind: KindBoolean},
		{name: "date", fieldType: "Date", entry: EntryDate, kind: KindDate},
		{name: "datetime", fieldType: "DateTime", entry: EntryDate, kind: KindDate},
		{name: "formattable", fieldType: "Formattable", entry: EntryFormattable, kind: KindFormattable},
		{name: "user", fieldType: "User", entry: EntrySelect, kind: KindSelect},
		{name: "multi version", fieldType: "[]Version", entry: EntrySelect, kind: KindSelect},
		{name: "project status", fieldType: "ProjectStatus", entry: EntrySelectProjectStatus, kind: KindSelectProjectStatus},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res, ok := reg.Resolve(schema.FieldSchema{Key: "f", Type: tc.fieldType})
			if !ok {
				t.Fatalf("expected %s to resolve", tc.fieldType)
			}
			if res.Entry != tc.entry || res.Template.Kind != tc.kind {
				t.Fatalf("resolve(%s) = %s/%s, want %s/%s", tc.fieldType, res.Entry, res.Template.Kind, tc.entry, tc.kind)
			}
		})
	}
}

func TestResolve_UnknownType(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.Resolve(schema.FieldSchema{Key: "x", Type: "Geometry"}); ok {
		t.Fatalf("expected unknown type to stay unresolved")
	}
	if _, ok := reg.Resolve(schema.FieldSchema{Key: "x"}); ok {
		t.Fatalf("expected empty type to stay unresolved")
	}
}

func TestResolve_SelectCustomisation(t *testing.T) {
	reg := NewRegistry()

	res, ok := reg.Resolve(schema.FieldSchema{Key: "_links.watchers", Name: "Watchers", Type: "[]User"})
	if !ok {
		t.Fatalf("expected select to resolve")
	}
	want := map[string]any{
		"className":            "Watchers",
		"multiple":             true,
		"showAddNewUserButton": true,
	}
	if diff := cmp.Diff(want, res.Custom); diff != "" {
		t.Fatalf("customisation mismatch (-want +got):\n%s", diff)
	}

	res, _ = reg.Resolve(schema.FieldSchema{Key: "_links.status", Name: "Status", Type: "Status"})
	if diff := cmp.Diff(map[string]any{"className": "Status"}, res.Custom); diff != "" {
		t.Fatalf("status customisation mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_FormattableCustomisation(t *testing.T) {
	reg := NewRegistry()
	res, _ := reg.Resolve(schema.FieldSchema{
		Key:     "description",
		Name:    "Description",
		Type:    "Formattable",
		Options: map[string]any{"rtl": true},
	})
	want := map[string]any{"name": "Description", "rtl": true}
	if diff := cmp.Diff(want, res.Custom); diff != "" {
		t.Fatalf("customisation mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_LocaleAndTranslator(t *testing.T) {
	translator := i18n.MapTranslator{"de": {
		i18n.KeyLabelCreate:        "Erstellen",
		i18n.KeyPlaceholderDefault: "–",
	}}
	reg := NewRegistry(WithLocale(i18n.StaticLocale("de")), WithTranslator(translator))

	res, _ := reg.Resolve(schema.FieldSchema{Key: "estimate", Type: "Float"})
	if got := res.Template.Props["locale"]; got != "de" {
		t.Fatalf("expected locale prop de, got %v", got)
	}

	res, _ = reg.Resolve(schema.FieldSchema{Key: "_links.type", Type: "Type"})
	text, _ := res.Template.Props["text"].(map[string]any)
	if text["add_new_action"] != "Erstellen" {
		t.Fatalf("expected translated action, got %v", text["add_new_action"])
	}
	if diff := cmp.Diff(model.PlaceholderEntry("–"), res.Template.DefaultValue); diff != "" {
		t.Fatalf("default value mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_ClearableExpression(t *testing.T) {
	reg := NewRegistry()
	res, _ := reg.Resolve(schema.FieldSchema{Key: "_links.priority", Type: "Priority"})
	expr := res.Template.Expressions[ClearableExpression]
	if expr == nil {
		t.Fatalf("expected clearable expression")
	}
	if got := expr(model.ExpressionContext{Field: &model.FieldConfig{Required: true}}); got != false {
		t.Fatalf("required select must not be clearable, got %v", got)
	}
	if got := expr(model.ExpressionContext{Field: &model.FieldConfig{}}); got != true {
		t.Fatalf("optional select must be clearable, got %v", got)
	}
}

func TestRegister_PriorityAndOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(10, Entry{
		Name:  "markdown",
		Types: []string{"Formattable"},
		Template: func(Context) Template {
			return Template{Kind: "markdownInput"}
		},
	})
	reg.Register(10, Entry{
		Name:  "markdown-late",
		Types: []string{"Formattable"},
		Template: func(Context) Template {
			return Template{Kind: "lateInput"}
		},
	})

	res, ok := reg.Resolve(schema.FieldSchema{Key: "description", Type: "Formattable"})
	if !ok || res.Entry != "markdown" {
		t.Fatalf("expected higher priority earliest entry to win, got %q", res.Entry)
	}
	if names := reg.Names(); names[0] != "markdown" || names[1] != "markdown-late" {
		t.Fatalf("unexpected resolution order %v", names)
	}
}

func TestRegister_IgnoresIncompleteEntries(t *testing.T) {
	reg := NewRegistry(WithoutBuiltins())
	reg.Register(0, Entry{Name: "", Types: []string{"String"}, Template: func(Context) Template { return Template{} }})
	reg.Register(0, Entry{Name: "no-types", Template: func(Context) Template { return Template{} }})
	reg.Register(0, Entry{Name: "no-template", Types: []string{"String"}})
	if names := reg.Names(); len(names) != 0 {
		t.Fatalf("expected empty registry, got %v", names)
	}
}
