package model

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	pkgmodel "github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/options"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/widgets"
)

func TestBuild_DateField(t *testing.T) {
	doc := schema.MustParse([]byte(`{"dueDate": {"type": "Date", "writable": true, "location": "attribute"}}`))
	fields := New(Options{}).Build(schema.Normalize(doc), nil)

	if len(fields) != 1 {
		t.Fatalf("expected one field, got %d", len(fields))
	}
	got := fields[0]
	if got.Key != "dueDate" || got.WidgetType != widgets.KindDate {
		t.Fatalf("unexpected field %s/%s", got.Key, got.WidgetType)
	}
	if got.Options != nil {
		t.Fatalf("date field must not carry options")
	}
	if got.Label != "Due Date" {
		t.Fatalf("expected derived label, got %q", got.Label)
	}
	if diff := cmp.Diff([]string{pkgmodel.FieldWrapper}, got.Wrappers); diff != "" {
		t.Fatalf("wrappers mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_RelationField(t *testing.T) {
	doc := schema.MustParse([]byte(`{
		"assignee": {
			"type": "User",
			"name": "Assignee",
			"writable": true,
			"location": "_links",
			"allowedValues": {"href": "/api/users"}
		}
	}`))
	payload := map[string]any{
		"_links": map[string]any{
			"assignee": map[string]any{"href": "/api/users/3", "title": "Jane"},
		},
	}

	fetcher := options.FetcherFunc(func(context.Context, string, options.Filter) (options.Collection, error) {
		one, hundred := 1, 100
		return options.Collection{
			Elements: []schema.Value{{Name: "Max", Href: "/api/users/4"}},
			Count:    &one,
			Total:    &hundred,
		}, nil
	})
	builder := New(Options{LoaderOptions: []options.LoaderOption{options.WithFetcher(fetcher)}})
	fields := builder.Build(schema.Normalize(doc), payload)
	if len(fields) != 1 {
		t.Fatalf("expected one field, got %d", len(fields))
	}
	got := fields[0]

	if got.Key != "_links.assignee" || got.Property != "assignee" {
		t.Fatalf("unexpected key %q property %q", got.Key, got.Property)
	}
	value, _ := got.PayloadValue.(map[string]any)
	if value["href"] != "/api/users/3" {
		t.Fatalf("expected payload href, got %v", got.PayloadValue)
	}
	if !got.BoolProp("showAddNewUserButton") {
		t.Fatalf("expected showAddNewUserButton")
	}
	if got.ClassName != "dynform--field Assignee" {
		t.Fatalf("unexpected class name %q", got.ClassName)
	}
	if _, ok := got.Prop("className"); ok {
		t.Fatalf("className must not leak into template options")
	}
	if got.Expressions[widgets.ClearableExpression] == nil {
		t.Fatalf("expected clearable expression")
	}

	entries, err := got.Options.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("load options: %v", err)
	}
	want := []pkgmodel.OptionEntry{
		pkgmodel.PlaceholderEntry("-"),
		{Name: "Max", Href: "/api/users/4"},
		{Name: "Jane", Href: "/api/users/3"},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_PropsMergeOrder(t *testing.T) {
	minLen, maxLen := 0, 255
	field := schema.FieldSchema{
		Key:       "subject",
		Attribute: "subject",
		Type:      "String",
		Name:      "Subject",
		Required:  true,
		Writable:  true,
		MinLength: &minLen,
		MaxLength: &maxLen,
	}
	reg := widgets.NewRegistry()
	reg.Register(5, widgets.Entry{
		Name:  "override",
		Types: []string{"String"},
		Template: func(widgets.Context) widgets.Template {
			return widgets.Template{Kind: "textInput", Props: map[string]any{"type": "text", "label": "from template"}}
		},
		Customize: func(schema.FieldSchema, widgets.Context) map[string]any {
			return map[string]any{"label": "from customisation"}
		},
	})

	got, ok := New(Options{Registry: reg}).BuildField(field, map[string]any{"subject": "Hello"})
	if !ok {
		t.Fatalf("expected field to build")
	}
	want := map[string]any{
		"property":     "subject",
		"required":     true,
		"label":        "from template",
		"hasDefault":   false,
		"payloadValue": "Hello",
		"maxLength":    255,
		"type":         "text",
	}
	if diff := cmp.Diff(want, got.Props); diff != "" {
		t.Fatalf("props mismatch (-want +got):\n%s", diff)
	}
	if got.Label != "Subject" {
		t.Fatalf("typed label must come from the schema, got %q", got.Label)
	}
}

func TestBuild_SchemaMappingGapIsLoggedAndDropped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	builder := New(Options{Logger: zap.New(core)})

	fields := builder.Build([]schema.FieldSchema{
		{Key: "geometry", Type: "Geometry", Writable: true},
		{Key: "subject", Type: "String", Writable: true},
	}, nil)

	if diff := cmp.Diff([]string{"subject"}, keys(fields)); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["type"] != "Geometry" || ctx["key"] != "geometry" {
		t.Fatalf("unexpected log context %v", ctx)
	}
}

func TestFormatPayload(t *testing.T) {
	payload := map[string]any{
		"subject":     "Task",
		"description": "",
		"estimate":    nil,
		"_meta":       map[string]any{"note": "x"},
		"_links": map[string]any{
			"assignee": map[string]any{"href": "/api/users/3", "title": "Jane"},
			"status":   map[string]any{"href": nil},
			"watchers": []any{
				map[string]any{"href": "/api/users/1", "name": "Ann", "title": "Ann T."},
				map[string]any{"href": nil},
			},
			"self": map[string]any{"href": "/api/work_packages/1"},
		},
	}

	want := map[string]any{
		"subject": "Task",
		"_meta":   map[string]any{"note": "x"},
		"_links": map[string]any{
			"assignee": map[string]any{"href": "/api/users/3", "title": "Jane", "name": "Jane"},
			"watchers": []any{
				map[string]any{"href": "/api/users/1", "name": "Ann", "title": "Ann T."},
			},
			"self": map[string]any{"href": "/api/work_packages/1"},
		},
	}
	if diff := cmp.Diff(want, FormatPayload(payload), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"dueDate":        "Due Date",
		"estimated_time": "Estimated Time",
		"version2":       "Version 2",
		"":               "",
	}
	for in, want := range cases {
		if got := DefaultLabeler(in); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", in, got, want)
		}
	}
}

func keys(fields []pkgmodel.FieldConfig) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, field.Key)
	}
	return out
}
