package schema_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/schema"
)

const workPackageSchema = `{
  "_type": "Schema",
  "subject": {"type": "String", "name": "Subject", "required": true, "writable": true, "minLength": 1, "maxLength": 255},
  "dueDate": {"type": "Date", "name": "Finish date", "writable": true},
  "createdAt": {"type": "DateTime", "name": "Created on", "writable": false},
  "assignee": {
    "type": "User", "name": "Assignee", "writable": true, "location": "_links",
    "_links": {"allowedValues": {"href": "/api/v3/projects/1/available_assignees"}}
  },
  "status": {
    "type": "Status", "name": "Status", "required": true, "writable": true, "location": "_links",
    "_embedded": {"allowedValues": [
      {"_type": "Status", "name": "New", "_links": {"self": {"href": "/api/v3/statuses/1", "title": "New"}}},
      {"_type": "Status", "name": "Closed", "_links": {"self": {"href": "/api/v3/statuses/2", "title": "Closed"}}}
    ]}
  },
  "_meta": {
    "subject": {"type": "String", "name": "Meta subject", "writable": true}
  },
  "_links": {
    "self": {"href": "/api/v3/work_packages/schemas/1-1"}
  },
  "_attributeGroups": [
    {"_type": "WorkPackageFormAttributeGroup", "name": "People", "attributes": ["assignee"]},
    {"name": "", "attributes": ["ignored"]}
  ]
}`

func TestNormalize_KeysOrderAndFiltering(t *testing.T) {
	doc, err := schema.Parse([]byte(workPackageSchema))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	fields := schema.Normalize(doc)

	var keys []string
	for _, field := range fields {
		keys = append(keys, field.Key)
	}
	want := []string{"subject", "dueDate", "_links.assignee", "_links.status", "_meta.subject"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	seen := make(map[string]struct{})
	for _, field := range fields {
		if !field.Writable {
			t.Fatalf("read-only field %q leaked into output", field.Key)
		}
		if _, dup := seen[field.Key]; dup {
			t.Fatalf("duplicate key %q", field.Key)
		}
		seen[field.Key] = struct{}{}
	}
}

func TestNormalize_AllowedValues(t *testing.T) {
	fields := schema.Normalize(schema.MustParse([]byte(workPackageSchema)))
	byKey := make(map[string]schema.FieldSchema, len(fields))
	for _, field := range fields {
		byKey[field.Key] = field
	}

	remote, ok := byKey["_links.assignee"].AllowedValues.(schema.RemoteValues)
	if !ok {
		t.Fatalf("expected remote values for assignee, got %T", byKey["_links.assignee"].AllowedValues)
	}
	if remote.Href != "/api/v3/projects/1/available_assignees" {
		t.Fatalf("unexpected href %q", remote.Href)
	}

	inline, ok := byKey["_links.status"].AllowedValues.(schema.InlineValues)
	if !ok {
		t.Fatalf("expected inline values for status, got %T", byKey["_links.status"].AllowedValues)
	}
	got := make([]schema.Value, len(inline))
	for i, value := range inline {
		got[i] = schema.Value{Name: value.DisplayName(), Href: value.Href}
	}
	want := []schema.Value{
		{Name: "New", Href: "/api/v3/statuses/1"},
		{Name: "Closed", Href: "/api/v3/statuses/2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("inline values mismatch (-want +got):\n%s", diff)
	}

	if byKey["subject"].AllowedValues != nil {
		t.Fatalf("expected no allowed values for subject")
	}
	if got := *byKey["subject"].MaxLength; got != 255 {
		t.Fatalf("expected maxLength 255, got %d", got)
	}
}

func TestParse_AttributeGroups(t *testing.T) {
	doc := schema.MustParse([]byte(workPackageSchema))

	want := []schema.AttributeGroup{{Name: "People", Attributes: []string{"assignee"}}}
	if diff := cmp.Diff(want, doc.AttributeGroups); diff != "" {
		t.Fatalf("attribute groups mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_DueDateExample(t *testing.T) {
	doc := schema.MustParse([]byte(`{"dueDate": {"type": "Date", "writable": true, "location": "attribute"}}`))

	fields := schema.Normalize(doc)
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != "dueDate" || fields[0].Location != schema.LocationAttribute {
		t.Fatalf("unexpected field %+v", fields[0])
	}
}

func TestNormalize_DuplicateKeysKeepFirst(t *testing.T) {
	doc := schema.MustParse([]byte(`{
	  "_links": {"project": {"type": "Project", "name": "From links", "writable": true}},
	  "project": {"type": "Project", "name": "Declared", "writable": true, "location": "_links"}
	}`))

	fields := schema.Normalize(doc)
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != "_links.project" || fields[0].Name != "From links" {
		t.Fatalf("unexpected field %+v", fields[0])
	}
}

func TestFieldSchema_TypeHelpers(t *testing.T) {
	field := schema.FieldSchema{Key: "_links.watchers", Type: "[]User"}

	if !field.MultiValue() {
		t.Fatalf("expected multi value")
	}
	if field.BaseType() != "User" {
		t.Fatalf("expected base type User, got %q", field.BaseType())
	}
	if field.Property() != "watchers" {
		t.Fatalf("expected property watchers, got %q", field.Property())
	}
}

func TestParse_RejectsNonObject(t *testing.T) {
	if _, err := schema.Parse([]byte(`[1,2]`)); err == nil {
		t.Fatalf("expected error for array document")
	}
}

func TestValueFromMap(t *testing.T) {
	value, ok := schema.ValueFromMap(map[string]any{
		"href":   nil,
		"_links": map[string]any{"self": map[string]any{"href": "/api/projects/5", "title": "Demo"}},
	})
	if !ok {
		t.Fatalf("expected value")
	}
	if value.Href != "/api/projects/5" || value.DisplayName() != "Demo" {
		t.Fatalf("unexpected value %+v", value)
	}
}
