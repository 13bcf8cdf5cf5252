package groups_test

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/groups"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/schema"
)

func field(key string) model.FieldConfig {
	return model.FieldConfig{Key: key, WidgetType: "textInput", Property: schema.PropertyOf(key)}
}

func keysOf(fields []model.FieldConfig) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.IsGroup() {
			out = append(out, "group:"+f.Label)
			continue
		}
		out = append(out, f.Key)
	}
	return out
}

func TestAssemble_PartitionAndOrder(t *testing.T) {
	fields := []model.FieldConfig{
		field("subject"),
		field("_links.assignee"),
		field("estimatedTime"),
		field("_links.status"),
		{WidgetType: "textInput"},
	}
	defs := []model.FieldGroupConfig{
		{Name: "People", Filter: groups.ByProperty("assignee", "responsible")},
		{Name: "Empty", Filter: groups.ByProperty("nothing")},
		{Name: "Rest", Filter: groups.ByProperty("assignee", "estimatedTime")},
	}

	got := groups.Assemble(defs, fields)

	want := []string{"subject", "_links.status", "", "group:People", "group:Rest"}
	if diff := cmp.Diff(want, keysOf(got)); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"_links.assignee"}, keysOf(got[3].FieldGroup)); diff != "" {
		t.Fatalf("first matching group must win (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"estimatedTime"}, keysOf(got[4].FieldGroup)); diff != "" {
		t.Fatalf("rest group mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_NilFilterTakesAllKeyedFields(t *testing.T) {
	got := groups.Assemble(
		[]model.FieldGroupConfig{{Name: "All"}},
		[]model.FieldConfig{field("a"), {WidgetType: "textInput"}, field("b")},
	)
	if diff := cmp.Diff([]string{"", "group:All"}, keysOf(got)); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
	if len(got[1].FieldGroup) != 2 {
		t.Fatalf("expected both keyed fields grouped")
	}
}

func TestAssemble_FlattensPreviousGrouping(t *testing.T) {
	first := groups.Assemble(
		[]model.FieldGroupConfig{{Name: "Details", Filter: groups.ByProperty("a")}},
		[]model.FieldConfig{field("a"), field("b")},
	)
	regrouped := groups.Assemble(
		[]model.FieldGroupConfig{{Name: "Other", Filter: groups.ByProperty("b")}},
		first,
	)
	if diff := cmp.Diff([]string{"a", "group:Other"}, keysOf(regrouped)); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_GroupNodeDefaultsAndSettings(t *testing.T) {
	got := groups.Assemble([]model.FieldGroupConfig{{
		Name:   "Details",
		Filter: groups.ByProperty("a"),
		Settings: &model.GroupSettings{
			Props: map[string]any{"collapsibleFieldGroupsCollapsed": false, "icon": "info"},
		},
	}}, []model.FieldConfig{field("a")})

	node := got[0]
	if node.WidgetType != model.GroupWidgetType || node.FieldGroupClassName != model.GroupClassName {
		t.Fatalf("unexpected group node %+v", node)
	}
	if diff := cmp.Diff([]string{model.GroupWrapper}, node.Wrappers); diff != "" {
		t.Fatalf("wrappers mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{
		"label":                           "Details",
		"isFieldGroup":                    true,
		"collapsibleFieldGroups":          true,
		"collapsibleFieldGroupsCollapsed": false,
		"icon":                            "info",
	}
	if diff := cmp.Diff(want, node.Props); diff != "" {
		t.Fatalf("props mismatch (-want +got):\n%s", diff)
	}
	if node.Expressions[model.CollapsedExpression] == nil {
		t.Fatalf("expected collapse expression")
	}
}

func TestAssemble_SettingsLabelRenamesNode(t *testing.T) {
	cases := []struct {
		name  string
		label any
		want  string
	}{
		{name: "string label wins", label: "Scheduling", want: "Scheduling"},
		{name: "empty label keeps name", label: "", want: "Details"},
		{name: "non-string label keeps name", label: 42, want: "Details"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			node := groups.Assemble([]model.FieldGroupConfig{{
				Name:     "Details",
				Filter:   groups.ByProperty("a"),
				Settings: &model.GroupSettings{Props: map[string]any{"label": tc.label}},
			}}, []model.FieldConfig{field("a")})[0]
			if node.Label != tc.want {
				t.Fatalf("expected label %q, got %q", tc.want, node.Label)
			}
			if node.Props["label"] != tc.want {
				t.Fatalf("label prop %v disagrees with node label %q", node.Props["label"], tc.want)
			}
		})
	}
}

func TestCollapsed(t *testing.T) {
	group := groups.Assemble(
		[]model.FieldGroupConfig{{Name: "Details"}},
		[]model.FieldConfig{field("subject"), {Key: "secret", Hide: true}},
	)[0]
	invalid := func(keys ...string) func(string) bool {
		return func(key string) bool {
			for _, k := range keys {
				if k == key {
					return true
				}
			}
			return false
		}
	}

	cases := []struct {
		name      string
		submitted bool
		invalid   func(string) bool
		want      bool
	}{
		{name: "pristine", submitted: false, invalid: invalid("subject"), want: true},
		{name: "submitted valid", submitted: true, invalid: invalid(), want: true},
		{name: "submitted invalid member", submitted: true, invalid: invalid("subject"), want: false},
		{name: "hidden invalid member", submitted: true, invalid: invalid("secret"), want: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := groups.Collapsed(group, tc.submitted, tc.invalid); got != tc.want {
				t.Fatalf("Collapsed() = %v, want %v", got, tc.want)
			}
		})
	}

	expr := group.Expressions[model.CollapsedExpression]
	if got := group.Evaluate(model.ExpressionContext{Submitted: true, Invalid: invalid("subject")}); got[model.CollapsedExpression] != false {
		t.Fatalf("expression should expand group, got %v", got)
	}
	if expr(model.ExpressionContext{}) != false {
		t.Fatalf("expression without field must report false")
	}

	if groups.Collapsed(field("plain"), true, nil) {
		t.Fatalf("plain fields are never collapsed")
	}
}

func TestFromAttributeGroups(t *testing.T) {
	defs := groups.FromAttributeGroups([]schema.AttributeGroup{
		{Name: "People", Attributes: []string{"assignee"}},
	})
	got := groups.Assemble(defs, []model.FieldConfig{field("subject"), field("_links.assignee")})
	if diff := cmp.Diff([]string{"subject", "group:People"}, keysOf(got)); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"a_people.yaml": {Data: []byte(`
groups:
  - name: People
    attributes: [assignee, responsible]
    templateOptions:
      collapsibleFieldGroupsCollapsed: false
`)},
		"b_dates.json": {Data: []byte(`{"groups": [{"name": "Dates", "widgets": ["dateInput"]}]}`)},
		"README.md":    {Data: []byte("ignored")},
	}

	defs, err := groups.LoadFS(fsys)
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if len(defs) != 2 || defs[0].Name != "People" || defs[1].Name != "Dates" {
		t.Fatalf("unexpected definitions %+v", defs)
	}
	if defs[0].Source != "a_people.yaml" {
		t.Fatalf("source mismatch: %s", defs[0].Source)
	}

	dueDate := model.FieldConfig{Key: "dueDate", WidgetType: "dateInput"}
	got := groups.Assemble(groups.Configs(defs), []model.FieldConfig{field("_links.responsible"), dueDate})
	if diff := cmp.Diff([]string{"group:People", "group:Dates"}, keysOf(got)); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
	if got[0].BoolProp("collapsibleFieldGroupsCollapsed") {
		t.Fatalf("yaml templateOptions must override defaults")
	}
}

func TestLoadFS_Errors(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"empty file":   {"g.yaml": {Data: []byte("  ")}},
		"missing name": {"g.json": {Data: []byte(`{"groups": [{"attributes": ["a"]}]}`)}},
		"duplicate": {
			"a.json": {Data: []byte(`{"groups": [{"name": "X"}]}`)},
			"b.json": {Data: []byte(`{"groups": [{"name": "X"}]}`)},
		},
		"invalid": {"g.yaml": {Data: []byte("groups: [")}},
	}
	for name, fsys := range cases {
		if _, err := groups.LoadFS(fsys); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
